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

// UserHandler serves profile management and public user lookup.
type UserHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Roles  *repository.RoleRepo
	Images *repository.ImageRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo, r *repository.RoleRepo, i *repository.ImageRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Roles: r, Images: i}
}

// ----- DTOs -----

type updateProfileReq struct {
	FirstName         *string  `json:"first_name"`
	LastName          *string  `json:"last_name"`
	ReceivePromotions *bool    `json:"receive_promotions"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
}
type changeRoleReq struct {
	RoleID uint8 `json:"role_id"`
}
type changePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
type completeProfileReq struct {
	BirthDate string `json:"birth_date"` // "2006-01-02"
}

// UpdateProfile patches the caller's own editable fields.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, u.ID, req.FirstName, req.LastName, req.ReceivePromotions, req.Latitude, req.Longitude); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	fresh, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, fresh)
}

// ChangeRole moves the caller onto another existing role.
func (h *UserHandler) ChangeRole(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
	}
	var req changeRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	role, err := h.Roles.GetByID(ctx, req.RoleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "role not exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Users.UpdateRole(ctx, u.ID, role.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	u.RoleID = role.ID
	u.RoleName = role.Name
	return c.JSON(http.StatusOK, u)
}

// Suspend deactivates the caller's own account.  Every token they already
// hold stops resolving on the next request because the identity middleware
// re-reads the flag.
func (h *UserHandler) Suspend(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.SetActive(ctx, u.ID, false); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user suspended"})
}

// ChangePassword verifies the current password and swaps in a new hash.
// Social-only accounts have no password to verify and are told so.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_password required"})
	}
	if u.Password == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "account has no password set"})
	}
	if !utils.VerifyPassword(*u.Password, req.CurrentPassword) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect password"})
	}
	if req.CurrentPassword == req.NewPassword {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new password must differ from the current one"})
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// CompleteSocialProfile lets a social-login account record its birth date
// once.  A second attempt is rejected instead of silently overwriting.
func (h *UserHandler) CompleteSocialProfile(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
	}
	if u.BirthDate != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user already has a birth date"})
	}
	var req completeProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	bd, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid birth_date"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.SetBirthDate(ctx, u.ID, bd); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	u.BirthDate = &bd
	return c.JSON(http.StatusOK, u)
}

// Get returns a user's public view with their profile image, if any.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	img, err := h.Images.GetProfileImage(ctx, u.ID)
	resp := echo.Map{"user": u}
	if err == nil {
		resp["profile_image"] = img
	}
	return c.JSON(http.StatusOK, resp)
}

// ListRoles returns the selectable roles.
func (h *UserHandler) ListRoles(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	roles, err := h.Roles.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, roles)
}

// UploadProfileImage replaces the caller's single profile image.  The old
// file is removed from disk after the row swap succeeds.
func (h *UserHandler) UploadProfileImage(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "multipart form required"})
	}
	files := form.File["image"]
	if len(files) != 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "exactly one image required"})
	}
	if _, errs := utils.ValidateImages(files); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": errs[0]})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	old, oldErr := h.Images.GetProfileImage(ctx, u.ID)

	urls, err := utils.SaveImages(u.ID, files, h.Cfg.ProfileImageDir)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
	}
	img, err := h.Images.ReplaceProfileImage(ctx, u.ID, urls[0])
	if err != nil {
		utils.RemoveImageFile(h.Cfg.ProfileImageDir, urls[0])
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
	}
	if oldErr == nil {
		utils.RemoveImageFile(h.Cfg.ProfileImageDir, old.URL)
	}
	return c.JSON(http.StatusCreated, img)
}
