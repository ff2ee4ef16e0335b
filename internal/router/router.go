package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/service-marketplace/internal/config"
	"github.com/iliyamo/service-marketplace/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/service-marketplace/internal/middleware" // import middleware for JWT authentication and guards
	"github.com/iliyamo/service-marketplace/internal/model"
	"github.com/iliyamo/service-marketplace/internal/repository"
)

// Deps bundles everything route registration needs.  The redis client may be
// nil; rate limiting and response caching then register as no-ops.
type Deps struct {
	Cfg   config.Config
	Redis *redis.Client

	Auth          *handler.AuthHandler
	Google        *handler.GoogleHandler
	Users         *handler.UserHandler
	Services      *handler.ServiceHandler
	Images        *handler.ImageHandler
	Comments      *handler.CommentHandler
	Ratings       *handler.RatingHandler
	Subscriptions *handler.SubscriptionHandler
	Versions      *handler.VersionHandler

	UserRepo *repository.UserRepo
	SubRepo  *repository.SubscriptionRepo
}

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring probe this endpoint.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers registration, login, token refresh, logout and the
// Google sign-in flow.  A Redis-backed token bucket throttles the
// credential endpoints; without Redis the limiter is skipped entirely.
func RegisterAuth(e *echo.Echo, d Deps) {
	g := e.Group("/v1/auth")
	if d.Redis != nil {
		g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis))
	}
	// Register a POST endpoint to handle user registration at /v1/auth/register.
	g.POST("/register", d.Auth.Register)
	// Register a POST endpoint to handle user login at /v1/auth/login.
	g.POST("/login", d.Auth.Login)
	// Rotates the refresh token and returns a fresh pair.
	g.POST("/refresh", d.Auth.Refresh)
	// Logout does not require JWT authentication: the handler accepts a JSON
	// body containing a refresh_token and records it as revoked.
	g.POST("/logout", d.Auth.Logout)

	// Google sign-in: browser redirect out, provider calls back with a code
	// on the bare /v1/auth path.
	g.GET("/login/google", d.Google.Redirect)
	e.GET("/v1/auth", d.Google.Callback)
}

// RegisterPublic registers unauthenticated browse endpoints.  Listing pages
// are cached in Redis when a client is available; guests can browse the full
// catalogue, read comments and look up users without a token.
func RegisterPublic(e *echo.Echo, d Deps) {
	cached := func(h echo.HandlerFunc) echo.HandlerFunc { return h }
	if d.Redis != nil {
		mw := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)
		cached = func(h echo.HandlerFunc) echo.HandlerFunc { return mw(h) }
	}

	// Browse tree and service catalogue.
	e.GET("/v1/categories", cached(d.Services.ListCategories))
	e.GET("/v1/professional-services", cached(d.Services.List))
	e.GET("/v1/professional-services/filter", d.Services.Filter)
	e.GET("/v1/professional-services/:id", d.Services.Get)
	e.GET("/v1/professional-services/:id/comments", d.Comments.ListByService)

	// Public user lookup and the selectable roles.
	e.GET("/v1/users/:id", d.Users.Get)
	e.GET("/v1/roles", cached(d.Users.ListRoles))

	// Purchasable plans and client version checks.
	e.GET("/v1/subscriptions", cached(d.Subscriptions.ListTypes))
	e.GET("/v1/version", d.Versions.Latest)
	e.GET("/v1/check-version", d.Versions.Check)

	// Uploaded files are served straight from the configured directories, so
	// overriding UPLOAD_DIR_SERVICES or UPLOAD_DIR_PROFILES moves the static
	// roots along with the writes.
	e.Static("/uploaded_images/services", d.Cfg.ServiceImageDir)
	e.Static("/uploaded_images/profiles", d.Cfg.ProfileImageDir)
}

// RegisterProtected registers every endpoint that needs a resolved, active
// user.  JWTAuth validates the access token, Identity loads the account and
// rejects suspended users, and per-route guards narrow further by role or
// subscription.
func RegisterProtected(e *echo.Echo, d Deps) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(d.Cfg.JWTSecret))
	auth.Use(middleware.Identity(d.UserRepo))

	// Session and profile self-service.
	auth.GET("/me", d.Auth.Me)
	auth.PUT("/users", d.Users.UpdateProfile)
	auth.PUT("/users/change-role", d.Users.ChangeRole)
	auth.PUT("/users/suspend", d.Users.Suspend)
	auth.PUT("/user/change-password", d.Users.ChangePassword)
	auth.PUT("/users/social/complete-profile", d.Users.CompleteSocialProfile)
	auth.POST("/users/profile-image", d.Users.UploadProfileImage)

	// Social interactions: any active user may comment and rate.
	auth.POST("/comments", d.Comments.Create)
	auth.POST("/ratings", d.Ratings.Create)

	// Subscriptions.
	auth.POST("/subscription", d.Subscriptions.Purchase)
	auth.GET("/subscription", d.Subscriptions.Current)

	// Service management is restricted to professionals.
	pro := auth.Group("", middleware.RequireRole(model.RoleProfessional))
	pro.POST("/professional-services", d.Services.Create)
	pro.PUT("/professional-services/:id", d.Services.Update)
	pro.POST("/upload-images/:service_id", d.Images.Upload)
	pro.DELETE("/delete-image/:image_id", d.Images.Delete)

	// Paid placement additionally requires an active subscription.
	featured := pro.Group("", middleware.RequireActiveSubscription(d.SubRepo))
	featured.PUT("/professional-services/:id/feature", d.Services.Feature)
}
