package main // Entry point package

import (
	"context" // Context for startup DB calls
	"log"     // Logging library
	"net/http"
	"time"

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/service-marketplace/internal/config"   // Internal config loader
	"github.com/iliyamo/service-marketplace/internal/database" // MySQL pool and seeding
	"github.com/iliyamo/service-marketplace/internal/handler"  // HTTP handlers
	"github.com/iliyamo/service-marketplace/internal/oauth"    // Google sign-in bridge
	"github.com/iliyamo/service-marketplace/internal/queue"    // Broker consumer
	"github.com/iliyamo/service-marketplace/internal/repository"
	"github.com/iliyamo/service-marketplace/internal/router" // Internal router setup
)

func main() {
	// A missing .env is fine in environments that inject real variables.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.Seed(ctx, db); err != nil {
		cancel()
		log.Fatalf("seed: %v", err)
	}
	cancel()

	// Redis is optional: without it the API still serves, just without the
	// response cache and the login rate limiter.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}

	// Drain subscription purchase events in the background.  The consumer
	// reconnects on its own; a broker outage never blocks the API.
	go func() {
		if err := queue.StartSubscriptionConsumer(); err != nil {
			log.Printf("WARN: subscription consumer stopped: %v", err)
		}
	}()

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	revoked := repository.NewRevokedTokenRepo(db)
	categories := repository.NewCategoryRepo(db)
	services := repository.NewServiceRepo(db)
	images := repository.NewImageRepo(db)
	comments := repository.NewCommentRepo(db)
	ratings := repository.NewRatingRepo(db)
	subs := repository.NewSubscriptionRepo(db)
	versions := repository.NewVersionRepo(db)

	authH := handler.NewAuthHandler(cfg, users, roles, revoked)
	googleH := handler.NewGoogleHandler(cfg, oauth.NewGoogleBridge(cfg.Google), users, roles, authH)

	deps := router.Deps{
		Cfg:           cfg,
		Redis:         rdb,
		Auth:          authH,
		Google:        googleH,
		Users:         handler.NewUserHandler(cfg, users, roles, images),
		Services:      handler.NewServiceHandler(services, categories),
		Images:        handler.NewImageHandler(cfg, images, services),
		Comments:      handler.NewCommentHandler(comments, services),
		Ratings:       handler.NewRatingHandler(ratings, services),
		Subscriptions: handler.NewSubscriptionHandler(subs),
		Versions:      handler.NewVersionHandler(versions),
		UserRepo:      users,
		SubRepo:       subs,
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if he, ok := err.(*echo.HTTPError); ok {
			msg, ok := he.Message.(string)
			if !ok {
				msg = http.StatusText(he.Code)
			}
			_ = c.JSON(he.Code, echo.Map{"error": msg})
			return
		}
		log.Printf("ERROR: %v", err)
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	router.RegisterRoutes(e) // Register application routes
	router.RegisterAuth(e, deps)
	router.RegisterPublic(e, deps)
	router.RegisterProtected(e, deps)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
