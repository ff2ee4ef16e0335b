package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/service-marketplace/internal/config"
	"github.com/iliyamo/service-marketplace/internal/middleware"
	"github.com/iliyamo/service-marketplace/internal/repository"
	"github.com/iliyamo/service-marketplace/internal/utils"
)

// ImageHandler attaches and removes gallery images on services.  Uploads are
// all-or-nothing: one bad file or a blown cap rejects the whole batch before
// anything touches disk.
type ImageHandler struct {
	Cfg      config.Config
	Images   *repository.ImageRepo
	Services *repository.ServiceRepo
}

func NewImageHandler(cfg config.Config, i *repository.ImageRepo, s *repository.ServiceRepo) *ImageHandler {
	return &ImageHandler{Cfg: cfg, Images: i, Services: s}
}

// Upload stores a batch of images on a service the caller owns.
func (h *ImageHandler) Upload(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
	}
	serviceID, err := strconv.ParseUint(c.Param("service_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "multipart form required"})
	}
	files := form.File["images"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no images provided"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	s, err := h.Services.GetByID(ctx, serviceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if s.ProfessionalID != u.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not the owner of this service"})
	}

	current, err := h.Images.CountForService(ctx, serviceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if current+len(files) > repository.MaxServiceImages {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "image limit exceeded: a service may hold at most " +
				strconv.Itoa(repository.MaxServiceImages) + " images",
		})
	}
	if _, errs := utils.ValidateImages(files); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid images", "details": errs})
	}

	urls, err := utils.SaveImages(u.ID, files, h.Cfg.ServiceImageDir)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store images failed"})
	}
	if err := h.Images.AddServiceImages(ctx, serviceID, urls); err != nil {
		for _, url := range urls {
			utils.RemoveImageFile(h.Cfg.ServiceImageDir, url)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store images failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"service_id": serviceID, "urls": urls})
}

// Delete removes one image from a service the caller owns, row first, file
// second.  A leftover file after a failed unlink is harmless; a dangling row
// would not be.
func (h *ImageHandler) Delete(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
	}
	imageID, err := strconv.ParseUint(c.Param("image_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid image id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	img, ownerID, err := h.Images.GetServiceImage(ctx, imageID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "image not exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if ownerID != u.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not the owner of this service"})
	}
	if err := h.Images.DeleteServiceImage(ctx, imageID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	utils.RemoveImageFile(h.Cfg.ServiceImageDir, img.URL)
	return c.NoContent(http.StatusNoContent)
}
