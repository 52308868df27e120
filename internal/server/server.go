// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"log"
	"strconv"
	"time"

	_ "ripple/docs" // swagger docs
	"ripple/internal/config"
	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Hidden header names of the rotating session triple.
const (
	HeaderAccessToken = "access-token"
	HeaderClient      = "client"
	HeaderUID         = "uid"
	HeaderExpiry      = "expiry"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	likeRepo       repository.LikeRepository
	relRepo        repository.RelationshipRepository
	roomRepo       repository.RoomRepository
	tokenService   *service.TokenService
	userService    *service.UserService
	postService    *service.PostService
	likeService    *service.LikeService
	relService     *service.RelationshipService
	roomService    *service.RoomService
}

// NewServerWithDeps creates a Server from already-initialized dependencies.
// The bootstrap package establishes DB and Redis; tests pass their own.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	relRepo := repository.NewRelationshipRepository(db)
	roomRepo := repository.NewRoomRepository(db)

	prom := middleware.InitMetrics("ripple-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		postRepo:       postRepo,
		likeRepo:       likeRepo,
		relRepo:        relRepo,
		roomRepo:       roomRepo,
	}

	server.tokenService = service.NewTokenService(
		redisClient,
		cfg.JWTSecret,
		time.Duration(cfg.TokenLifetimeHours)*time.Hour,
		time.Duration(cfg.TokenBatchSeconds)*time.Second,
	)
	server.userService = service.NewUserService(userRepo, relRepo)
	server.postService = service.NewPostService(postRepo)
	server.likeService = service.NewLikeService(likeRepo, postRepo)
	server.relService = service.NewRelationshipService(relRepo, userRepo)
	server.roomService = service.NewRoomService(roomRepo, userRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses. The session triple headers must be exposed or the browser
	// client can never read the rotated credentials.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, access-token, client, uid",
		ExposeHeaders:    "access-token, client, uid, expiry",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
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
	api := app.Group("/api/v1")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Ripple Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/sign_in", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "sign_in"), s.SignIn)
	auth.Get("/sessions", s.SessionsProbe)
	auth.Post("/", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "sign_up"), s.SignUp)
	auth.Delete("/sign_out", s.AuthRequired(), s.SignOut)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// User routes: specific /:id/:resource routes BEFORE generic /:id
	users := protected.Group("/users")
	users.Get("/", s.GetUsers)
	users.Post("/:id/relationships", s.Follow)
	users.Post("/:id/rooms", s.OpenRoom)
	users.Get("/:id", s.GetUser)
	users.Put("/:id", s.UpdateUser)
	users.Delete("/:id", s.DeleteUser)

	// Post routes
	posts := protected.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/", middleware.RateLimit(
		s.redis, 30, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/likes", s.LikePost)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	// Unlike carries the post id, not the like row id
	protected.Delete("/likes/:id", s.UnlikePost)

	// Relationship routes
	protected.Get("/relationships", s.GetRelationships)
	protected.Delete("/relationships/:id", s.Unfollow)

	// Room routes
	rooms := protected.Group("/rooms")
	rooms.Get("/", s.GetRooms)
	rooms.Post("/:id/messages", middleware.RateLimit(
		s.redis, 30, time.Minute, "send_message"), s.SendMessage)
	rooms.Get("/:id", s.GetRoom)
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
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis holds the session store, so it is required for readiness
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. It validates the
// rotating session triple, runs the handler, then rotates the session and
// re-emits the fresh triple on the response.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(HeaderAccessToken)
		client := c.Get(HeaderClient)
		uid := c.Get(HeaderUID)

		userID, err := s.tokenService.Validate(c.Context(), token, client, uid)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		// Store user ID in context
		c.Locals("userID", userID)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)

		handlerErr := c.Next()

		// Sign-out tears the session down; re-issuing credentials for it
		// would resurrect the session.
		if revoked, ok := c.Locals("sessionRevoked").(bool); ok && revoked {
			return handlerErr
		}

		rotated, rotErr := s.tokenService.Rotate(c.Context(), userID, uid, client, token)
		if rotErr != nil {
			log.Printf("session rotation failed for user %d: %v", userID, rotErr)
			return handlerErr
		}
		s.setSessionHeaders(c, rotated)
		return handlerErr
	}
}

// setSessionHeaders writes the session triple onto the response.
func (s *Server) setSessionHeaders(c *fiber.Ctx, token *models.SessionToken) {
	c.Set(HeaderAccessToken, token.AccessToken)
	c.Set(HeaderClient, token.Client)
	c.Set(HeaderUID, token.UID)
	c.Set(HeaderExpiry, strconv.FormatInt(token.ExpiresAt.Unix(), 10))
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Ripple API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
