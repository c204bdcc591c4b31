// Package server contains the HTTP handlers of the food feed.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"foodfeed/internal/auth"
	"foodfeed/internal/cache"
	"foodfeed/internal/config"
	"foodfeed/internal/database"
	"foodfeed/internal/flash"
	"foodfeed/internal/imagestore"
	"foodfeed/internal/middleware"
	"foodfeed/internal/models"
	"foodfeed/internal/repository"
	"foodfeed/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// MediaPath is where the local image store is served.
const MediaPath = "/media"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	store          repository.Store
	images         imagestore.Store
	tokens         *auth.Tokens
	limiter        *middleware.Limiter
	flash          flash.Store
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	postService    *service.PostService
	commentService *service.CommentService
	profileService *service.ProfileService
	authService    *service.AuthService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	images, err := NewImageStore(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("image store: %w", err)
	}

	return NewServerWithDeps(cfg, db, cache.GetClient(), images)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, in which case flash messages are kept in memory
// and tokens cannot be revoked.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, images imagestore.Store) (*Server, error) {
	if images == nil {
		return nil, fmt.Errorf("image store is required")
	}
	store := repository.NewStore(db)

	var messages flash.Store
	if redisClient != nil {
		messages = flash.NewRedisStore(redisClient, flash.DefaultTTL)
	} else {
		messages = flash.NewMemoryStore()
	}

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		store:          store,
		images:         images,
		tokens:         auth.NewTokens(cfg.JWTSecret, redisClient),
		limiter:        middleware.NewLimiter(redisClient, cfg.RateLimitEnabled()),
		flash:          messages,
		promMiddleware: middleware.InitMetrics("foodfeed-api"),
		postService:    service.NewPostService(store, images),
		commentService: service.NewCommentService(store),
		profileService: service.NewProfileService(store, images),
		authService:    service.NewAuthService(store, images),
	}, nil
}

// NewImageStore builds the configured image store with a per-call timeout
// and metrics.
func NewImageStore(ctx context.Context, cfg *config.Config) (imagestore.Store, error) {
	var backend imagestore.Store
	switch cfg.ImageStore {
	case "minio":
		ms, err := imagestore.NewMinioStore(ctx, imagestore.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		})
		if err != nil {
			return nil, err
		}
		backend = ms
	default:
		backend = imagestore.NewLocalStore(cfg.ImageUploadDir, MediaPath)
	}
	return imagestore.Instrumented(imagestore.WithTimeout(backend, cfg.ImageStoreTimeout()), cfg.ImageStore), nil
}

// App returns the Fiber app with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:   "foodfeed",
		BodyLimit: int(s.config.MaxUploadBytes()) + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) && fe.Code == fiber.StatusNotFound {
				return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Route", c.Path()))
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Identity before ContextMiddleware so the user ID reaches the logger.
	app.Use(middleware.Identify(s.tokens))
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" || origins == "*" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
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

// mediaHeaders stops uploaded files from running script on this origin.
// SVGs are downloaded when opened directly; <img> ignores the disposition.
func mediaHeaders(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentSecurityPolicy, "default-src 'none'; style-src 'unsafe-inline'; sandbox")
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	if strings.EqualFold(path.Ext(c.Path()), ".svg") {
		c.Set(fiber.HeaderContentDisposition, "attachment")
	}
	return nil
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if s.config.ImageStore == "" || s.config.ImageStore == "local" {
		app.Static(MediaPath, s.config.ImageUploadDir, fiber.Static{ModifyResponse: mediaHeaders})
	}

	// Auth routes
	accounts := app.Group("/accounts")
	accounts.Post("/signup", s.limiter.Handler(middleware.SignupRule, nil), s.Signup)
	accounts.Post("/login", s.limiter.Handler(middleware.LoginRule, nil), s.Login)
	accounts.Post("/logout", s.Logout)
	accounts.Post("/delete", s.DeleteAccount)

	// Feed and posts
	app.Get("/", s.Feed)
	app.Get("/create-post", s.CreatePostForm)
	app.Post("/create-post", s.limiter.Handler(middleware.CreatePostRule,
		s.slowDown(service.MsgPostCreateFailed)), s.CreatePost)
	app.Get("/view-post/:postId", s.ViewPost)
	app.Get("/edit-post/:postId", s.EditPostForm)
	app.Post("/edit-post/:postId", s.EditPost)
	app.Post("/delete-post/:postId", s.DeletePost)

	// Comments
	app.Get("/create-comment/:postId", s.CreateCommentForm)
	app.Post("/create-comment/:postId", s.limiter.Handler(middleware.CreateCommentRule,
		s.slowDown(service.MsgCommentCreateFailed)), s.CreateComment)
	app.Get("/view-post/:postId/view-comment/:commentId", s.ViewComment)
	app.Get("/edit-post/:postId/edit-comment/:commentId", s.EditCommentForm)
	app.Post("/edit-post/:postId/edit-comment/:commentId", s.EditComment)
	app.Post("/delete-comment/:commentId", s.DeleteComment)

	// Profiles
	app.Get("/user-profile/:profileId", s.ViewProfile)
	app.Get("/user-profile/:profileId/edit", s.EditProfileForm)
	app.Post("/user-profile/:profileId/edit", s.EditProfile)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so
// only the database decides the status.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := s.store.Ping(ctx); err != nil {
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

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
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
