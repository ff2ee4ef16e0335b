package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/service-marketplace/internal/middleware"
	"github.com/iliyamo/service-marketplace/internal/model"
	"github.com/iliyamo/service-marketplace/internal/repository"
)

// CommentHandler lets authenticated users comment on services and everyone
// read the thread.
type CommentHandler struct {
	Comments *repository.CommentRepo
	Services *repository.ServiceRepo
}

func NewCommentHandler(cm *repository.CommentRepo, s *repository.ServiceRepo) *CommentHandler {
	return &CommentHandler{Comments: cm, Services: s}
}

type commentReq struct {
	ProfessionalServiceID uint64  `json:"professional_service_id"`
	Text                  string  `json:"text"`
	Rating                float64 `json:"rating"` // display-only score shown with the comment
}

// Create posts a comment on an existing service.
func (h *CommentHandler) Create(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Services.GetByID(ctx, req.ProfessionalServiceID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	cm := model.Comment{
		Text:                  req.Text,
		Rating:                req.Rating,
		UserID:                u.ID,
		ProfessionalServiceID: req.ProfessionalServiceID,
	}
	if err := h.Comments.Create(ctx, &cm); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create comment failed"})
	}
	return c.JSON(http.StatusCreated, cm)
}

// ListByService returns a service's comments, newest first.
func (h *CommentHandler) ListByService(c echo.Context) error {
	serviceID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Comments.ListByService(ctx, serviceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if list == nil {
		list = []model.Comment{}
	}
	return c.JSON(http.StatusOK, list)
}
