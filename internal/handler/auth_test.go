package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/service-marketplace/internal/config"
	"github.com/iliyamo/service-marketplace/internal/repository"
	"github.com/iliyamo/service-marketplace/internal/utils"
)

var testCfg = config.Config{
	JWTSecret:      "handler-test-secret",
	AccessTTLMin:   15,
	RefreshTTLDays: 7,
	BcryptCost:     4, // minimum cost keeps the test fast
}

var userCols = []string{"id", "first_name", "last_name", "email", "password",
	"receive_promotions", "apple_id", "facebook_id", "google_id", "is_active",
	"birth_date", "role_id", "name", "latitude", "longitude"}

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	h := NewAuthHandler(testCfg,
		repository.NewUserRepo(db),
		repository.NewRoleRepo(db),
		repository.NewRevokedTokenRepo(db))
	return h, mock, func() { db.Close() }
}

func postJSON(path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	msg, _ := body["error"].(string)
	return msg
}

func TestRegisterCreatesUserAndIssuesTokens(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	mock.ExpectQuery("SELECT .+ FROM users u JOIN roles r").
		WithArgs("jane@example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT id, name FROM roles WHERE id=").
		WithArgs(uint8(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "common"))
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(42, 1))

	c, rec := postJSON("/v1/auth/register",
		`{"first_name":"Jane","last_name":"Doe","email":"Jane@Example.com","password":"s3cret!","role_id":1}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		User struct {
			ID    uint64 `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
		Access  struct{ Token string } `json:"access"`
		Refresh struct{ Token string } `json:"refresh"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.Email != "jane@example.com" {
		t.Fatalf("email = %q, want normalized", resp.User.Email)
	}
	if strings.Contains(rec.Body.String(), "s3cret!") {
		t.Fatal("plaintext password leaked into the response")
	}

	// Both tokens verify against their own type and carry the new subject.
	if email, err := utils.VerifyToken(testCfg.JWTSecret, resp.Access.Token, utils.TokenTypeAccess); err != nil || email != "jane@example.com" {
		t.Fatalf("access token: email=%q err=%v", email, err)
	}
	if email, err := utils.VerifyToken(testCfg.JWTSecret, resp.Refresh.Token, utils.TokenTypeRefresh); err != nil || email != "jane@example.com" {
		t.Fatalf("refresh token: email=%q err=%v", email, err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	mock.ExpectQuery("SELECT .+ FROM users u JOIN roles r").
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(int64(42), "Jane", "Doe", "jane@example.com", nil,
				false, nil, nil, nil, true, nil, int64(1), "common", nil, nil))

	c, rec := postJSON("/v1/auth/register",
		`{"email":"jane@example.com","password":"s3cret!","role_id":1}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decodeError(t, rec); got != "email already registered" {
		t.Fatalf("error = %q", got)
	}
}

func TestRegisterUnknownRole(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	mock.ExpectQuery("SELECT .+ FROM users u JOIN roles r").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT id, name FROM roles WHERE id=").
		WillReturnError(sql.ErrNoRows)

	c, rec := postJSON("/v1/auth/register",
		`{"email":"jane@example.com","password":"s3cret!","role_id":9}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func loginRow(t *testing.T, password string, active bool) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return sqlmock.NewRows(userCols).
		AddRow(int64(42), "Jane", "Doe", "jane@example.com", hash,
			false, nil, nil, nil, active, nil, int64(1), "common", nil, nil)
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	mock.ExpectQuery("SELECT .+ FROM users u JOIN roles r").
		WithArgs("jane@example.com").
		WillReturnRows(loginRow(t, "right-password", true))

	c, rec := postJSON("/v1/auth/login",
		`{"email":"jane@example.com","password":"wrong-password"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := decodeError(t, rec); got != "incorrect email or password" {
		t.Fatalf("error = %q", got)
	}
}

func TestLoginUnknownEmailSameMessage(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	mock.ExpectQuery("SELECT .+ FROM users u JOIN roles r").
		WillReturnError(sql.ErrNoRows)

	c, rec := postJSON("/v1/auth/login",
		`{"email":"ghost@example.com","password":"whatever"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	// Unknown account and wrong password are indistinguishable.
	if got := decodeError(t, rec); got != "incorrect email or password" {
		t.Fatalf("error = %q", got)
	}
}

func TestLoginSuspendedUser(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	mock.ExpectQuery("SELECT .+ FROM users u JOIN roles r").
		WillReturnRows(loginRow(t, "s3cret!", false))

	c, rec := postJSON("/v1/auth/login",
		`{"email":"jane@example.com","password":"s3cret!"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if got := decodeError(t, rec); got != "user is suspended" {
		t.Fatalf("error = %q", got)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	h, _, closeDB := newAuthHandler(t)
	defer closeDB()

	st, err := utils.NewAccessToken(testCfg.JWTSecret, "jane@example.com", 15)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	c, rec := postJSON("/v1/auth/refresh", `{"refresh_token":"`+st.Token+`"}`)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRefreshIssuesNewPair(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	mock.ExpectQuery("SELECT .+ FROM users u JOIN roles r").
		WithArgs("jane@example.com").
		WillReturnRows(loginRow(t, "s3cret!", true))

	st, err := utils.NewRefreshToken(testCfg.JWTSecret, "jane@example.com", 7)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	c, rec := postJSON("/v1/auth/refresh", `{"refresh_token":"`+st.Token+`"}`)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestLogoutStoresHashedToken(t *testing.T) {
	h, mock, closeDB := newAuthHandler(t)
	defer closeDB()

	st, err := utils.NewRefreshToken(testCfg.JWTSecret, "jane@example.com", 7)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	mock.ExpectExec("INSERT INTO revoked_tokens").
		WithArgs(utils.HashTokenRaw(st.Token)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := postJSON("/v1/auth/logout", `{"refresh_token":"`+st.Token+`"}`)
	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
