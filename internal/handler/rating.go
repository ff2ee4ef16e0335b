package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/service-marketplace/internal/middleware"
	"github.com/iliyamo/service-marketplace/internal/model"
	"github.com/iliyamo/service-marketplace/internal/repository"
)

// RatingHandler records one rating per user per service and keeps the
// service's average in step.
type RatingHandler struct {
	Ratings  *repository.RatingRepo
	Services *repository.ServiceRepo
}

func NewRatingHandler(r *repository.RatingRepo, s *repository.ServiceRepo) *RatingHandler {
	return &RatingHandler{Ratings: r, Services: s}
}

type ratingReq struct {
	ProfessionalServiceID uint64 `json:"professional_service_id"`
	Rating                uint8  `json:"rating"`
}

// Create stores a rating.  A second rating from the same user on the same
// service is rejected rather than averaged twice.
func (h *RatingHandler) Create(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
	}
	var req ratingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Services.GetByID(ctx, req.ProfessionalServiceID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	rt := model.Rating{
		Rating:                req.Rating,
		UserID:                u.ID,
		ProfessionalServiceID: req.ProfessionalServiceID,
	}
	switch err := h.Ratings.Create(ctx, &rt); err {
	case nil:
		return c.JSON(http.StatusCreated, rt)
	case repository.ErrConflict:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "You have already rated this service"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create rating failed"})
	}
}
