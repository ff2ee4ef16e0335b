package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireRole returns a middleware function that enforces that the
// authenticated user holds one of the specified roles.  Role names come
// from the closed set in the model package (model.RoleCommon,
// model.RoleProfessional); string literals should never appear at call
// sites.  The check runs against the user resolved by the Identity
// middleware, not against a token claim, so a role change takes effect on
// the next request rather than at the next token refresh.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	// Build a set of allowed roles for constant‑time lookups.
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok || !allowed[u.RoleName] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized"})
			}
			return next(c)
		}
	}
}
