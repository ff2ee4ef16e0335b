package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/service-marketplace/internal/repository"
)

var userCols = []string{"id", "first_name", "last_name", "email", "password",
	"receive_promotions", "apple_id", "facebook_id", "google_id", "is_active",
	"birth_date", "role_id", "name", "latitude", "longitude"}

func runIdentity(t *testing.T, users *repository.UserRepo, email string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if email != "" {
		c.Set("email", email)
	}

	h := Identity(users)(func(c echo.Context) error {
		u, ok := CurrentUser(c)
		if !ok {
			t.Fatal("CurrentUser not set after Identity ran")
		}
		return c.JSON(http.StatusOK, u)
	})
	if err := h(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec
}

func TestIdentityResolvesActiveUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM users u JOIN roles r").
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(int64(42), "Jane", "Doe", "jane@example.com", nil,
				false, nil, nil, nil, true, nil, int64(1), "common", nil, nil))

	rec := runIdentity(t, repository.NewUserRepo(db), "jane@example.com")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestIdentityUnknownSubject(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM users u JOIN roles r").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	rec := runIdentity(t, repository.NewUserRepo(db), "ghost@example.com")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestIdentitySuspendedUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM users u JOIN roles r").
		WithArgs("banned@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(int64(9), "B", "User", "banned@example.com", nil,
				false, nil, nil, nil, false, nil, int64(1), "common", nil, nil))

	rec := runIdentity(t, repository.NewUserRepo(db), "banned@example.com")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestIdentityNoSubjectInContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	_ = mock

	rec := runIdentity(t, repository.NewUserRepo(db), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
