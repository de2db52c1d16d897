// Package server
//
// @title Graylock API
// @version 1.0
// @description Content and commerce API for the Graylock Security site
// @host localhost:8080
// @BasePath /
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/graylock-sec/graylock/internal/auth"
	"github.com/graylock-sec/graylock/internal/cache"
	"github.com/graylock-sec/graylock/internal/config"
	"github.com/graylock-sec/graylock/internal/models"
	"github.com/graylock-sec/graylock/internal/payments"
	"github.com/graylock-sec/graylock/internal/seed"
	"github.com/graylock-sec/graylock/internal/uploads"
)

// Server represents the HTTP server
type Server struct {
	router       *gin.Engine
	db           *gorm.DB
	config       *config.Config
	logger       zerolog.Logger
	validator    *validator.Validate
	resolver     *auth.Resolver
	asynqClient  *asynq.Client
	payments     payments.Provider
	cache        *cache.Cache
	uploads      *uploads.Writer
	loginLimiter *ipLimiter
	version      string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}

	// Run database migrations
	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}

	// Load JWT secret persisted during first setup. Until setup runs,
	// every session resolution fails closed.
	var setting models.Setting
	if err := db.First(&setting).Error; err == nil {
		auth.InitializeJWT(setting.JWTSecret)
		zlog.Debug().Msg("Loaded JWT secret from database")
	} else {
		zlog.Info().Msg("No settings found - JWT will be initialized during first setup")
	}

	// Register the slug validator used by create/update request bindings
	validate := validator.New()
	slugFn := func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return false
		}
		for _, char := range value {
			if !((char >= 'a' && char <= 'z') ||
				(char >= '0' && char <= '9') ||
				char == '-') {
				return false
			}
		}
		return true
	}
	if err := validate.RegisterValidation("slug", slugFn); err != nil {
		return nil, fmt.Errorf("failed to register slug validator: %w", err)
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("slug", slugFn); err != nil {
			return nil, fmt.Errorf("failed to register slug validator: %w", err)
		}
	}

	// Initialize Asynq client for enqueueing email tasks
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.Redis.Address,
	})

	uploadWriter, err := uploads.NewWriter(cfg.Uploads.Dir, cfg.Uploads.MaxSizeMB)
	if err != nil {
		return nil, err
	}

	server := &Server{
		db:           db,
		config:       cfg,
		logger:       zlog,
		validator:    validate,
		resolver:     auth.NewResolver(db, zlog),
		asynqClient:  asynqClient,
		payments:     payments.New(cfg.Payments, zlog),
		cache:        cache.New(cfg.Redis.Address),
		uploads:      uploadWriter,
		loginLimiter: newIPLimiter(),
		version:      version,
	}

	// Optional catalog seed for fresh installs
	if cfg.SeedFile != "" {
		if err := seed.Apply(db, cfg.SeedFile, zlog); err != nil {
			zlog.Warn().Err(err).Str("file", cfg.SeedFile).Msg("Failed to apply seed file")
		}
	}

	server.setupRouter()

	return server, nil
}

// initDatabase initializes the database connection with production settings
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.Database.URL), gormCfg)
	default:
		db, err = gorm.Open(sqlite.Open(cfg.Database.URL), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Get underlying sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(8)
	sqlDB.SetMaxIdleConns(4)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.Database.Driver == "sqlite" {
		// WAL mode must be set first for optimal concurrency
		pragmas := []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA synchronous=NORMAL",
			"PRAGMA busy_timeout=5000",
			"PRAGMA foreign_keys=1",
		}
		for _, pragma := range pragmas {
			if err := db.Exec(pragma).Error; err != nil {
				zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
			}
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.requestIDMiddleware())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(s.metricsMiddleware())

	// CORS middleware
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.HTTP.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check and metrics (no auth required)
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Uploaded gallery files
	s.router.Static("/uploads", s.uploads.Dir())

	// Public auth endpoints
	s.router.POST("/api/setup", s.setupFirstAdmin)
	s.router.POST("/api/auth/login", s.rateLimitLogin(), s.login)
	s.router.POST("/api/auth/logout", s.logout)
	s.router.GET("/api/auth/me", s.getCurrentUser)

	// Public content endpoints
	api := s.router.Group("/api")
	{
		api.GET("/categories", s.listCategories)
		api.GET("/articles", s.listPublishedArticles)
		api.GET("/articles/:slug", s.getArticleBySlug)
		api.GET("/videos", s.listPublishedVideos)
		api.GET("/videos/:slug", s.getVideoBySlug)
		api.GET("/courses", s.listPublishedCourses)
		api.GET("/courses/:slug", s.getCourseBySlug)
		api.GET("/products", s.listProducts)
		api.GET("/products/:slug", s.getProductBySlug)
		api.GET("/gallery", s.listGalleryImages)
		api.POST("/comments", s.createComment)
		api.POST("/orders", s.createOrder)
		api.GET("/orders/:id", s.getOrder)
	}

	// Admin API routes. The group middleware is one guard layer;
	// mutating handlers repeat the check inline so no handler depends
	// on the group wiring staying intact.
	adminAPI := s.router.Group("/api/admin")
	adminAPI.Use(s.adminAPIGuard())
	{
		adminAPI.GET("/articles", s.adminListArticles)
		adminAPI.POST("/articles", s.adminCreateArticle)
		adminAPI.GET("/articles/:id", s.adminGetArticle)
		adminAPI.PATCH("/articles/:id", s.adminUpdateArticle)
		adminAPI.DELETE("/articles/:id", s.adminDeleteArticle)

		adminAPI.GET("/categories", s.adminListCategories)
		adminAPI.POST("/categories", s.adminUpsertCategory)
		adminAPI.DELETE("/categories/:id", s.adminDeleteCategory)

		adminAPI.GET("/videos", s.adminListVideos)
		adminAPI.POST("/videos", s.adminCreateVideo)
		adminAPI.PATCH("/videos/:id", s.adminUpdateVideo)
		adminAPI.DELETE("/videos/:id", s.adminDeleteVideo)

		adminAPI.GET("/courses", s.adminListCourses)
		adminAPI.POST("/courses", s.adminCreateCourse)
		adminAPI.PATCH("/courses/:id", s.adminUpdateCourse)
		adminAPI.DELETE("/courses/:id", s.adminDeleteCourse)

		adminAPI.GET("/products", s.adminListProducts)
		adminAPI.POST("/products", s.adminCreateProduct)
		adminAPI.PATCH("/products/:id", s.adminUpdateProduct)
		adminAPI.DELETE("/products/:id", s.adminDeleteProduct)

		adminAPI.GET("/orders", s.adminListOrders)
		adminAPI.GET("/orders/:id", s.adminGetOrder)
		adminAPI.PATCH("/orders/:id/status", s.adminUpdateOrderStatus)

		adminAPI.GET("/comments", s.adminListComments)
		adminAPI.POST("/comments/:id/approve", s.adminApproveComment)
		adminAPI.DELETE("/comments/:id", s.adminDeleteComment)

		adminAPI.POST("/gallery", s.adminUploadGalleryImage)
		adminAPI.DELETE("/gallery/:id", s.adminDeleteGalleryImage)

		adminAPI.GET("/users", s.adminListUsers)
		adminAPI.POST("/users", s.adminCreateUser)
		adminAPI.DELETE("/users/:id", s.adminDeleteUser)
	}

	// Admin page shell. The guard redirects to the login page instead
	// of returning JSON; the login path itself is allowlisted.
	pages := s.router.Group("/admin")
	pages.Use(s.adminPageGuard())
	{
		pages.GET("/login", s.adminLoginPage)
		pages.GET("", s.adminShellPage)
		pages.GET("/:section", s.adminShellPage)
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("HTTP request")
	}
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "graylock-api",
	})
}

// GetDB returns the database connection for use by workers
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Router returns the configured gin engine (exposed for tests)
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              s.config.HTTP.Addr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       300 * time.Second,
	}

	go func() {
		s.logger.Info().Str("addr", s.config.HTTP.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	if err := s.asynqClient.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Error closing Asynq client")
	}

	if err := s.cache.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Error closing cache connection")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	// Close database connection to flush WAL writes
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}

	s.logger.Info().Msg("Server shutdown complete")

	return nil
}
