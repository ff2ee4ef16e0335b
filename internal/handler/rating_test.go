package handler

import (
	"database/sql"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/service-marketplace/internal/model"
	"github.com/iliyamo/service-marketplace/internal/repository"
)

var serviceCols = []string{"id", "name", "description", "location", "latitude",
	"longitude", "average_rating", "featured", "professional_id", "subcategory_id"}

func serviceRow() *sqlmock.Rows {
	return sqlmock.NewRows(serviceCols).
		AddRow(int64(3), "Pipe repair", "", "Lisbon", 38.72, -9.14, 4.5, false, int64(7), int64(2))
}

func expectServiceLookup(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT .+ FROM professional_services WHERE id=").
		WillReturnRows(serviceRow())
	mock.ExpectQuery("SELECT id, url, service_id FROM service_images").
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "service_id"}))
	mock.ExpectQuery("SELECT id, service_id, weekday, opens_at, closes_at FROM work_schedules").
		WillReturnRows(sqlmock.NewRows([]string{"id", "service_id", "weekday", "opens_at", "closes_at"}))
}

func newRatingHandler(t *testing.T) (*RatingHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	h := NewRatingHandler(repository.NewRatingRepo(db), repository.NewServiceRepo(db))
	return h, mock, func() { db.Close() }
}

func TestRatingCreate(t *testing.T) {
	h, mock, closeDB := newRatingHandler(t)
	defer closeDB()

	expectServiceLookup(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM ratings WHERE").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO ratings").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec("UPDATE professional_services").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := postJSON("/v1/ratings", `{"professional_service_id":3,"rating":4}`)
	asUser(c, model.User{ID: 9, RoleName: model.RoleCommon, IsActive: true})

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}

func TestRatingCreateDuplicate(t *testing.T) {
	h, mock, closeDB := newRatingHandler(t)
	defer closeDB()

	expectServiceLookup(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM ratings WHERE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectRollback()

	c, rec := postJSON("/v1/ratings", `{"professional_service_id":3,"rating":4}`)
	asUser(c, model.User{ID: 9, RoleName: model.RoleCommon, IsActive: true})

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decodeError(t, rec); got != "You have already rated this service" {
		t.Fatalf("error = %q", got)
	}
}

func TestRatingCreateOutOfRange(t *testing.T) {
	h, _, closeDB := newRatingHandler(t)
	defer closeDB()

	c, rec := postJSON("/v1/ratings", `{"professional_service_id":3,"rating":6}`)
	asUser(c, model.User{ID: 9, RoleName: model.RoleCommon, IsActive: true})

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
