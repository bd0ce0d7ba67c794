// Package server contains the HTTP handlers for the partnership and
// application API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "capstone/docs" // swagger docs
	"capstone/internal/cache"
	"capstone/internal/config"
	"capstone/internal/database"
	"capstone/internal/featureflags"
	"capstone/internal/middleware"
	"capstone/internal/models"
	"capstone/internal/repository"
	"capstone/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager
	store          *repository.Store
	partnerships   *service.PartnershipService
	applications   *service.ApplicationService
	capacityViews  *service.CapacityViewService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; the capacity cache and rate limits are then off.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires config and database")
	}
	middleware.InitMiddleware(cfg)

	store := repository.NewStore(db,
		repository.WithMaxAttempts(cfg.TxMaxAttempts),
		repository.WithBackoff(cfg.TxRetryBackoff()),
	)
	flags := featureflags.NewManager(cfg.FeatureFlags)
	views := service.NewCapacityViewService(store, cache.NewCapacityCache(redisClient, cfg.CapacityCacheTTL()), flags)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("capstone-api"),
		featureFlags:   flags,
		store:          store,
		partnerships:   service.NewPartnershipService(store),
		applications:   service.NewApplicationService(store, views),
		capacityViews:  views,
	}, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected browser requests still carry
	// CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	protected := api.Group("", middleware.AuthRequired)
	students := middleware.RequireRole(middleware.RoleStudent)
	supervisors := middleware.RequireRole(middleware.RoleSupervisor, middleware.RoleAdmin)

	partnerships := protected.Group("/partnerships", students)
	partnerships.Get("/me", s.GetPartnershipStatus)
	partnerships.Delete("/me", s.Unpair)
	partnerships.Get("/available", s.ListAvailableStudents)
	partnerships.Get("/requests", s.ListPartnershipRequests)
	partnerships.Post("/requests", s.requestRateLimit(), s.SendPartnershipRequest)
	partnerships.Post("/requests/:requestId/respond", s.RespondToPartnershipRequest)
	partnerships.Post("/requests/:requestId/cancel", s.CancelPartnershipRequest)

	applications := protected.Group("/applications")
	applications.Get("/", s.ListApplications)
	applications.Post("/", students, s.SubmitApplication)
	applications.Post("/:id/decision", supervisors, s.DecideApplication)
	applications.Post("/:id/resubmit", students, s.ResubmitApplication)
	applications.Get("/:id", s.GetApplication)

	sups := protected.Group("/supervisors")
	sups.Get("/capacity", s.ListSupervisorCapacity)
	sups.Get("/:id/capacity", s.GetSupervisorCapacity)

	admin := protected.Group("/admin", middleware.RequireRole(middleware.RoleAdmin))
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Post("/supervisors/:id/reconcile", s.ReconcileSupervisorCapacity)
}

// requestRateLimit throttles partnership request creation per student when
// Redis is available and the partnership_rate_limit flag allows it.
func (s *Server) requestRateLimit() fiber.Handler {
	limit := s.config.RequestRateLimit
	window := time.Duration(s.config.RequestRateWindowMinutes) * time.Minute
	limited := middleware.RateLimit(s.redis, limit, window, "partnership_request")

	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(middleware.LocalUserID).(uint)
		if s.redis == nil || limit <= 0 || window <= 0 ||
			!s.featureFlags.EnabledOr(featureflags.PartnershipRateLimit, userID, true) {
			return c.Next()
		}
		return limited(c)
	}
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: without
// it the service runs uncached, so it is reported but never fails readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// App builds the Fiber app with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Capstone Partnership API",
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := models.CodeValidation
		if fe.Code == fiber.StatusNotFound {
			code = models.CodeNotFound
		}
		return models.RespondWithError(c, fe.Code, &models.AppError{Code: code, Message: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// Start builds the Fiber app and listens on the configured port.
func (s *Server) Start() error {
	s.app = s.App()

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			errs = append(errs, fmt.Errorf("close database: %w", cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", rerr))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return errors.Join(errs...)
}
