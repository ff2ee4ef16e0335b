package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/service-marketplace/internal/repository"
)

// RequireActiveSubscription guards routes that are part of a paid plan.  It
// runs after Identity and fails with 403 when no subscription row for the
// user has an end date in the future.
func RequireActiveSubscription(subs *repository.SubscriptionRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			active, err := subs.HasActive(ctx, u.ID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
			}
			if !active {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "user does not have an active subscription"})
			}
			return next(c)
		}
	}
}
