// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"time"

	"reelhub/internal/bootstrap"
	"reelhub/internal/config"
	"reelhub/internal/database"
	"reelhub/internal/featureflags"
	"reelhub/internal/middleware"
	"reelhub/internal/models"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	rt             *bootstrap.Runtime
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
}

// NewServer creates a server on top of an initialized runtime.
func NewServer(rt *bootstrap.Runtime) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		config:         rt.Config,
		rt:             rt,
		redis:          rt.Backend.Redis(),
		promMiddleware: middleware.InitMetrics("reelhub-api"),
		shutdownCtx:    ctx,
		shutdownFn:     cancel,
	}
}

// App builds the Fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:   "reelhub",
		BodyLimit: int(s.config.MaxVideoBytes()) + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, models.NewValidationError(fe.Message))
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err.Error())
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
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
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses carry the headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.config.IsProduction()
		},
		KeyGenerator: func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	sessions := s.rt.Auth
	optional := middleware.OptionalSession(sessions)
	required := middleware.SessionRequired(sessions)

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// OAuth round-trip
	app.Get("/auth/login", middleware.RateLimit(s.redis, 20, 5*time.Minute, "login", middleware.FailOpen), s.Login)
	app.Get("/auth-callback", s.AuthCallback)
	app.Get("/auth/failure", s.AuthFailure)

	// Object storage
	files := app.Group("/storage/buckets/:bucket/files/:id")
	files.Get("/view", s.ViewFile)
	files.Get("/preview", s.PreviewFile)

	api := app.Group("/api", optional)
	api.Get("/session", s.GetSession)
	api.Post("/session/logout", s.Logout)
	api.Post("/log", middleware.RateLimit(s.redis, 60, time.Minute, "client_log", middleware.FailOpen), s.LogClientEvent)

	profiles := api.Group("/profiles")
	profiles.Get("/search", middleware.RateLimit(s.redis, 60, time.Minute, "search", middleware.FailOpen), s.SearchProfiles)
	profiles.Put("/me", required, s.UpdateMyProfile)
	profiles.Post("/me/avatar", required, s.UploadAvatar)
	profiles.Get("/:userId", s.GetProfile)

	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/following", required, s.rt.Flags.Require(featureflags.FollowingFeed), s.GetFollowingFeed)
	posts.Post("/", required, middleware.RateLimit(s.redis, 10, 10*time.Minute, "create_post", middleware.FailClosed), s.CreatePost)
	// Specific /:id/:resource routes before the generic /:id routes.
	posts.Get("/:id/share", s.SharePost)
	posts.Get("/:id/likes/count", s.GetLikeCount)
	posts.Post("/:id/like", required, s.ToggleLike)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", required, middleware.RateLimit(s.redis, 20, time.Minute, "create_comment", middleware.FailOpen), s.CreateComment)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", required, s.UpdatePost)
	posts.Delete("/:id", required, s.DeletePost)

	api.Delete("/comments/:id", required, s.DeleteComment)

	users := api.Group("/users/:userId")
	users.Get("/posts", s.GetUserPosts)
	users.Get("/liked", s.GetLikedPosts)
	users.Get("/following", s.GetFollowing)
	users.Post("/follow", required, s.ToggleFollow)

	ws := api.Group("/ws")
	ws.Get("/search", s.rt.Flags.Require(featureflags.LiveSearch), s.LiveSearchHandler())
	ws.Get("/notifications", required, s.NotificationsHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.rt.Backend.DB()); err != nil {
		dbStatus = "unhealthy"
	}
	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}
	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start wires the notification hub and serves HTTP on the configured port.
func (s *Server) Start() error {
	app := s.App()
	go func() {
		if err := s.rt.Hub.StartWiring(s.shutdownCtx, s.rt.Notifier); err != nil {
			middleware.Logger.Error("failed to start notification wiring", "error", err.Error())
		}
	}()
	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownFn()
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err.Error())
		}
	}
	if err := s.rt.Close(ctx); err != nil {
		middleware.Logger.Error("error closing backend", "error", err.Error())
		return err
	}
	middleware.Logger.Info("server shutdown complete")
	return nil
}
