package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/service-marketplace/internal/model"
)

func runRoleGuard(t *testing.T, userRole string, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/professional-services", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userRole != "" {
		c.Set(userKey, model.User{ID: 1, RoleName: userRole, IsActive: true})
	}

	h := RequireRole(allowed...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec
}

func TestRequireRoleAllows(t *testing.T) {
	rec := runRoleGuard(t, model.RoleProfessional, model.RoleProfessional)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireRoleRejectsOtherRole(t *testing.T) {
	rec := runRoleGuard(t, model.RoleCommon, model.RoleProfessional)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireRoleRejectsMissingUser(t *testing.T) {
	rec := runRoleGuard(t, "", model.RoleProfessional)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
