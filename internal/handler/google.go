package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/service-marketplace/internal/config"
	"github.com/iliyamo/service-marketplace/internal/model"
	"github.com/iliyamo/service-marketplace/internal/oauth"
	"github.com/iliyamo/service-marketplace/internal/repository"
)

// GoogleHandler drives the Google sign-in flow: redirect out, then on the
// callback exchange the code, verify the identity token and map it onto a
// local account.
type GoogleHandler struct {
	Cfg    config.Config
	Bridge *oauth.GoogleBridge
	Users  *repository.UserRepo
	Roles  *repository.RoleRepo
	Auth   *AuthHandler
}

func NewGoogleHandler(cfg config.Config, b *oauth.GoogleBridge, u *repository.UserRepo, r *repository.RoleRepo, a *AuthHandler) *GoogleHandler {
	return &GoogleHandler{Cfg: cfg, Bridge: b, Users: u, Roles: r, Auth: a}
}

// Redirect sends the browser to Google's consent screen.
func (h *GoogleHandler) Redirect(c echo.Context) error {
	return c.Redirect(http.StatusTemporaryRedirect, h.Bridge.AuthURL("login"))
}

// Callback completes the flow.  New identities become active common-role
// accounts; a returning email gets its google_id backfilled once so future
// logins are matched by provider id as well as by address.
func (h *GoogleHandler) Callback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "authorization code not provided"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rawID, err := h.Bridge.Exchange(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, oauth.ErrMissingIDToken):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "id token not provided by provider"})
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "code exchange failed"})
		}
	}

	id, err := h.Bridge.VerifyIDToken(ctx, rawID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id token"})
	}

	u, err := h.Users.GetByEmail(ctx, id.Email)
	switch {
	case err == sql.ErrNoRows:
		u, err = h.createSocialUser(ctx, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
		}
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	default:
		if u.GoogleID == nil || *u.GoogleID != id.Subject {
			if err := h.Users.SetGoogleID(ctx, u.ID, id.Subject); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
			}
			u.GoogleID = &id.Subject
		}
	}

	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "user is suspended"})
	}

	access, refresh, err := h.Auth.issueTokenPair(u.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		User:    u,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Token, Expires: refresh.Exp},
	})
}

func (h *GoogleHandler) createSocialUser(ctx context.Context, id oauth.Identity) (model.User, error) {
	role, err := h.Roles.GetByName(ctx, model.RoleCommon)
	if err != nil {
		return model.User{}, err
	}
	sub := id.Subject
	u := model.User{
		FirstName: id.GivenName,
		LastName:  id.FamilyName,
		Email:     id.Email,
		Password:  nil, // social-only: password login stays disabled until one is set
		GoogleID:  &sub,
		IsActive:  true,
		RoleID:    role.ID,
		RoleName:  role.Name,
	}
	if _, err := h.Users.Create(ctx, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}
