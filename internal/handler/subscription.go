package handler

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/service-marketplace/internal/middleware"
	"github.com/iliyamo/service-marketplace/internal/model"
	"github.com/iliyamo/service-marketplace/internal/queue"
	"github.com/iliyamo/service-marketplace/internal/repository"
	queue_publisher "github.com/iliyamo/service-marketplace/internal/service"
)

// SubscriptionHandler sells yearly plans and reports the caller's current
// subscription.
type SubscriptionHandler struct {
	Subs *repository.SubscriptionRepo
}

func NewSubscriptionHandler(s *repository.SubscriptionRepo) *SubscriptionHandler {
	return &SubscriptionHandler{Subs: s}
}

type purchaseReq struct {
	SubscriptionTypeID uint64 `json:"subscription_type_id"`
}

// ListTypes returns the purchasable plans.
func (h *SubscriptionHandler) ListTypes(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	types, err := h.Subs.ListTypes(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if types == nil {
		types = []model.SubscriptionType{}
	}
	return c.JSON(http.StatusOK, types)
}

// Purchase grants the caller a year of the chosen plan, renewing an expired
// row in place.  A still-active subscription cannot be bought again.  The
// purchase event goes to the broker after commit; a publish failure is
// logged, never surfaced, because the subscription is already real.
func (h *SubscriptionHandler) Purchase(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
	}
	var req purchaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	plan, err := h.Subs.GetType(ctx, req.SubscriptionTypeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "subscription type not exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	_, lookupErr := h.Subs.GetByUser(ctx, u.ID)
	renewal := lookupErr == nil // a pre-existing row means this purchase renews it

	sub, err := h.Subs.Purchase(ctx, u.ID, plan.ID)
	switch err {
	case nil:
	case repository.ErrConflict:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user already has an active subscription"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "purchase failed"})
	}

	event := queue.SubscriptionPurchasedEvent{
		SubscriptionID: sub.ID,
		UserID:         u.ID,
		UserEmail:      u.Email,
		PlanID:         plan.ID,
		PlanName:       plan.Name,
		Price:          plan.Price,
		Renewal:        renewal,
		StartsAt:       sub.StartDate.Format(time.RFC3339),
		EndsAt:         sub.EndDate.Format(time.RFC3339),
	}
	if err := queue_publisher.PublishSubscriptionPurchased(ctx, event); err != nil {
		log.Printf("WARN: publish subscription.purchased: %v", err)
	}

	return c.JSON(http.StatusCreated, sub)
}

// Current returns the caller's subscription row with an active flag.
func (h *SubscriptionHandler) Current(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sub, err := h.Subs.GetByUser(ctx, u.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user has no subscription"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"subscription": sub,
		"active":       sub.EndDate.After(time.Now().UTC()),
	})
}
