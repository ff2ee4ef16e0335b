package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/service-marketplace/internal/model"
	"github.com/iliyamo/service-marketplace/internal/repository"
)

func newSubscriptionHandler(t *testing.T) (*SubscriptionHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	h := NewSubscriptionHandler(repository.NewSubscriptionRepo(db))
	return h, mock, func() { db.Close() }
}

func TestPurchaseUnknownPlan(t *testing.T) {
	h, mock, closeDB := newSubscriptionHandler(t)
	defer closeDB()

	mock.ExpectQuery("SELECT id, name, price FROM subscription_types").
		WillReturnError(sql.ErrNoRows)

	c, rec := postJSON("/v1/subscription", `{"subscription_type_id":99}`)
	asUser(c, model.User{ID: 7, Email: "pro@example.com", IsActive: true})

	if err := h.Purchase(c); err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestPurchaseWhileActive(t *testing.T) {
	h, mock, closeDB := newSubscriptionHandler(t)
	defer closeDB()

	now := time.Now().UTC()
	subCols := []string{"id", "start_date", "end_date", "user_id", "subscription_type_id"}

	mock.ExpectQuery("SELECT id, name, price FROM subscription_types").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}).
			AddRow(int64(1), "basic", 49.99))
	// Renewal probe sees the active row...
	mock.ExpectQuery("SELECT id, start_date, end_date").
		WillReturnRows(sqlmock.NewRows(subCols).
			AddRow(int64(3), now.AddDate(0, -1, 0), now.AddDate(0, 11, 0), int64(7), int64(1)))
	// ...and so does the purchase itself, which then refuses.
	mock.ExpectQuery("SELECT id, start_date, end_date").
		WillReturnRows(sqlmock.NewRows(subCols).
			AddRow(int64(3), now.AddDate(0, -1, 0), now.AddDate(0, 11, 0), int64(7), int64(1)))

	c, rec := postJSON("/v1/subscription", `{"subscription_type_id":1}`)
	asUser(c, model.User{ID: 7, Email: "pro@example.com", IsActive: true})

	if err := h.Purchase(c); err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decodeError(t, rec); got != "user already has an active subscription" {
		t.Fatalf("error = %q", got)
	}
}

func TestCurrentSubscription(t *testing.T) {
	h, mock, closeDB := newSubscriptionHandler(t)
	defer closeDB()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, start_date, end_date").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "start_date", "end_date", "user_id", "subscription_type_id"}).
			AddRow(int64(3), now.AddDate(0, -1, 0), now.AddDate(0, 11, 0), int64(7), int64(1)))

	c, rec := getReq("/v1/subscription")
	asUser(c, model.User{ID: 7, Email: "pro@example.com", IsActive: true})

	if err := h.Current(c); err != nil {
		t.Fatalf("Current: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Active bool `json:"active"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Active {
		t.Fatal("active = false, want true for an unexpired subscription")
	}
}

func TestCurrentSubscriptionNone(t *testing.T) {
	h, mock, closeDB := newSubscriptionHandler(t)
	defer closeDB()

	mock.ExpectQuery("SELECT id, start_date, end_date").
		WillReturnError(sql.ErrNoRows)

	c, rec := getReq("/v1/subscription")
	asUser(c, model.User{ID: 7, Email: "pro@example.com", IsActive: true})

	if err := h.Current(c); err != nil {
		t.Fatalf("Current: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
