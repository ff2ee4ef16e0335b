package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/service-marketplace/internal/middleware"
	"github.com/iliyamo/service-marketplace/internal/model"
	"github.com/iliyamo/service-marketplace/internal/repository"
	"github.com/iliyamo/service-marketplace/internal/utils"
)

// ServiceHandler exposes the professional-services catalogue: creation and
// editing for professionals, browsing and geo search for everyone.
type ServiceHandler struct {
	Services   *repository.ServiceRepo
	Categories *repository.CategoryRepo
}

func NewServiceHandler(s *repository.ServiceRepo, cat *repository.CategoryRepo) *ServiceHandler {
	return &ServiceHandler{Services: s, Categories: cat}
}

// ----- DTOs -----

type scheduleEntryReq struct {
	Weekday  uint8  `json:"weekday"` // 0 (Sunday) through 6 (Saturday)
	OpensAt  string `json:"opens_at"`
	ClosesAt string `json:"closes_at"`
}
type serviceReq struct {
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Location      string             `json:"location"`
	Latitude      float64            `json:"latitude"`
	Longitude     float64            `json:"longitude"`
	SubCategoryID uint64             `json:"subcategory_id"`
	Schedule      []scheduleEntryReq `json:"work_schedules"`
}
type featureReq struct {
	Featured bool `json:"featured"`
}

func (r serviceReq) validate() string {
	if r.Name == "" {
		return "name required"
	}
	if r.SubCategoryID == 0 {
		return "subcategory_id required"
	}
	for _, w := range r.Schedule {
		if w.Weekday > 6 {
			return "weekday must be between 0 and 6"
		}
		if _, err := time.Parse("15:04", w.OpensAt); err != nil {
			return "opens_at must be HH:MM"
		}
		if _, err := time.Parse("15:04", w.ClosesAt); err != nil {
			return "closes_at must be HH:MM"
		}
	}
	return ""
}

// Create registers a new service for the calling professional together with
// its weekly schedule.
func (h *ServiceHandler) Create(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
	}
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Categories.GetSubCategory(ctx, req.SubCategoryID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "subcategory not exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	s := model.ProfessionalService{
		Name:           req.Name,
		Description:    req.Description,
		Location:       req.Location,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		ProfessionalID: u.ID,
		SubCategoryID:  req.SubCategoryID,
	}
	schedule := make([]model.WorkSchedule, 0, len(req.Schedule))
	for _, w := range req.Schedule {
		schedule = append(schedule, model.WorkSchedule{
			Weekday: w.Weekday, OpensAt: w.OpensAt, ClosesAt: w.ClosesAt,
		})
	}
	if err := h.Services.CreateWithSchedule(ctx, &s, schedule); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create service failed"})
	}
	return c.JSON(http.StatusCreated, s)
}

// List returns one page of services.  Optional query params: subcategory_id,
// latitude+longitude+range_km for geo search, limit and offset for paging.
func (h *ServiceHandler) List(c echo.Context) error {
	return h.list(c, false)
}

// Filter is the geo search endpoint: latitude, longitude and range_km are
// mandatory here, unlike on the plain listing.
func (h *ServiceHandler) Filter(c echo.Context) error {
	return h.list(c, true)
}

func (h *ServiceHandler) list(c echo.Context, geoRequired bool) error {
	var f repository.ServiceFilter
	if v := c.QueryParam("subcategory_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid subcategory_id"})
		}
		f.SubCategoryID = id
	}
	lat, lon, rng := c.QueryParam("latitude"), c.QueryParam("longitude"), c.QueryParam("range_km")
	if geoRequired && (lat == "" || lon == "" || rng == "") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "latitude, longitude and range_km required"})
	}
	if lat != "" || lon != "" || rng != "" {
		if lat == "" || lon == "" || rng == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "latitude, longitude and range_km must be given together"})
		}
		var err error
		if f.Lat, err = strconv.ParseFloat(lat, 64); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid latitude"})
		}
		if f.Lon, err = strconv.ParseFloat(lon, 64); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid longitude"})
		}
		if f.RangeKM, err = strconv.ParseFloat(rng, 64); err != nil || f.RangeKM <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid range_km"})
		}
		f.ByDistance = true
	}
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	f.Offset, _ = strconv.Atoi(c.QueryParam("offset"))
	if f.Limit < 1 {
		f.Limit = 15
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Services.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if items == nil {
		items = []model.ProfessionalService{}
	}
	return c.JSON(http.StatusOK, utils.NewPage(c.Request().URL, f.Limit, f.Offset, total, items))
}

// Get returns a single service with images and schedule.
func (h *ServiceHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Services.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, s)
}

// Update rewrites a service the caller owns.
func (h *ServiceHandler) Update(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
	}
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Categories.GetSubCategory(ctx, req.SubCategoryID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "subcategory not exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	s := model.ProfessionalService{
		Name:          req.Name,
		Description:   req.Description,
		Location:      req.Location,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		SubCategoryID: req.SubCategoryID,
	}
	switch err := h.Services.Update(ctx, id, u.ID, &s); err {
	case nil:
	case sql.ErrNoRows:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "service not exists"})
	case repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not the owner of this service"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	fresh, err := h.Services.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, fresh)
}

// Feature toggles paid placement for a service the caller owns.  The route
// sits behind the active-subscription guard.
func (h *ServiceHandler) Feature(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
	}
	var req featureReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch err := h.Services.SetFeatured(ctx, id, u.ID, req.Featured); err {
	case nil:
		return c.JSON(http.StatusOK, echo.Map{"id": id, "featured": req.Featured})
	case sql.ErrNoRows:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "service not exists"})
	case repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not the owner of this service"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
}

// ListCategories returns the full browse tree.
func (h *ServiceHandler) ListCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cats, err := h.Categories.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, cats)
}
