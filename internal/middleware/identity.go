package middleware

// identity.go holds the identity resolution step of the request pipeline.
// JWTAuth only proves the bearer owns a signed access token; Identity turns
// the token's subject into a live user record and is where suspension is
// enforced.  Everything behind it can assume CurrentUser returns a valid,
// active user.

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/service-marketplace/internal/model"
	"github.com/iliyamo/service-marketplace/internal/repository"
)

// userKey is the context key the resolved user is stored under.
const userKey = "user"

// Identity returns a middleware that resolves the email stored by JWTAuth
// into a full user row.  It fails with 404 when the subject no longer maps
// to a user and 403 when the account is suspended.
func Identity(users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email, _ := c.Get("email").(string)
			if email == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := users.GetByEmail(ctx, email)
			if err == sql.ErrNoRows {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "user not exists"})
			}
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
			}
			if !u.IsActive {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "user is suspended"})
			}

			c.Set(userKey, u)
			return next(c)
		}
	}
}

// CurrentUser returns the user resolved by the Identity middleware.  The
// boolean is false when the middleware did not run on this route.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(userKey).(model.User)
	return u, ok
}
