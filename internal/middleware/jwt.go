package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"errors"   // error comparison against token sentinels
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/service-marketplace/internal/utils" // token verification helpers
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject (the user's email) into the request context.
// The provided secret must match the one used when issuing tokens.  A refresh
// token presented here is rejected with its own message: the type mismatch is
// a named failure, never a silent pass.  This middleware should wrap
// protected routes so that the Identity middleware behind it can load the
// full user record via `c.Get("email")`.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Read the Authorization header.  A valid header should start
			// with "Bearer " followed by the JWT.  If it doesn't, respond
			// with 401 Unauthorized indicating that authentication is
			// required.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			email, err := utils.VerifyToken(secret, raw, utils.TokenTypeAccess)
			if err != nil {
				if errors.Is(err, utils.ErrWrongTokenType) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "wrong token type"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			// Store the subject in the context.  Downstream middleware and
			// handlers read it via c.Get("email").
			c.Set("email", email)
			return next(c)
		}
	}
}
