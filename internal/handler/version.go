package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/service-marketplace/internal/repository"
)

// VersionHandler reports the latest published client version so apps can
// prompt for updates.
type VersionHandler struct {
	Versions *repository.VersionRepo
}

func NewVersionHandler(v *repository.VersionRepo) *VersionHandler {
	return &VersionHandler{Versions: v}
}

// Latest returns the most recently released version row.
func (h *VersionHandler) Latest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Versions.Latest(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no version published"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, v)
}

// Check compares the client's reported version against the latest release.
func (h *VersionHandler) Check(c echo.Context) error {
	reported := c.QueryParam("version")
	if reported == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "version required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Versions.Latest(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no version published"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"latest":        v.Version,
		"reported":      reported,
		"update_needed": reported != v.Version,
	})
}
