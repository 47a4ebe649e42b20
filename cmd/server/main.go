package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/oticonnect/backend/internal/config"
	"github.com/oticonnect/backend/internal/middleware"
	"github.com/oticonnect/backend/internal/org/entity"
	"github.com/oticonnect/backend/internal/org/handler"
	"github.com/oticonnect/backend/internal/org/repository"
	"github.com/oticonnect/backend/internal/org/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting oticonnect backend",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Division{},
		&entity.Event{},
		&entity.Room{},
		&entity.RoomBooking{},
		&entity.Feedback{},
		&entity.DivisionProgressReport{},
	); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, db, rdb, cfg, zapLogger)
	handlers := handler.NewHandlers(services)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	api := r.Group("/api")
	{
		// Authentication (no login required)
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.GET("/google", h.Auth.GoogleLogin)
			auth.GET("/google/callback", h.Auth.GoogleCallback)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// Anonymous feedback intake (no login required)
		api.POST("/feedback", h.Feedback.Create)

		// SSE stream (authenticated, token accepted as query param)
		sseGroup := api.Group("/sse")
		sseGroup.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			sseGroup.GET("/events", h.SSE.Stream)
		}

		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			users := authorized.Group("/users")
			{
				users.GET("", h.User.List)
				users.GET("/me", h.User.Profile)
				users.PUT("/me", h.User.UpdateProfile)
				users.GET("/me/available-times", h.User.AvailableTimes)
				users.PUT("/me/available-times", h.User.UpdateAvailableTimes)
				users.POST("/:id/transition", h.Transition.TransitionRole)
				users.POST("/:id/handover/complete", h.Transition.CompleteHandover)
			}

			retirement := authorized.Group("/retirement")
			{
				retirement.POST("/request", h.Transition.RequestRetirement)
				retirement.GET("/pending", h.Transition.PendingRetirements)
				retirement.POST("/:id/approve", h.Transition.ApproveRetirement)
				retirement.POST("/:id/reject", h.Transition.RejectRetirement)
			}
			authorized.GET("/handovers/pending", h.Transition.PendingHandovers)

			divisions := authorized.Group("/divisions")
			{
				divisions.GET("", h.Division.List)
				divisions.GET("/:id", h.Division.Get)
				divisions.POST("", h.Division.Create)
				divisions.PUT("/:id", h.Division.Update)
				divisions.POST("/:id/members/confirm", h.Division.ConfirmMember)
				divisions.PUT("/:id/tasks", h.Division.UpdateTasks)
			}

			events := authorized.Group("/events")
			{
				events.GET("", h.Event.List)
				events.GET("/:id", h.Event.Get)
				events.POST("", h.Event.Create)
				events.PUT("/:id", h.Event.Update)
				events.DELETE("/:id", h.Event.Delete)
				events.POST("/:id/approve", h.Event.Approve)
				events.POST("/:id/reject", h.Event.Reject)
				events.POST("/:id/cancel", h.Event.Cancel)
				events.POST("/:id/complete", h.Event.Complete)
			}

			calendar := authorized.Group("/calendar")
			{
				calendar.GET("", h.Event.OrganizationCalendar)
				calendar.GET("/me", h.Event.MyCalendar)
				calendar.GET("/range", h.Event.CalendarRange)
				calendar.GET("/mandatory", h.Event.MandatoryCalendar)
				calendar.GET("/division/:id", h.Event.DivisionCalendar)
			}

			rooms := authorized.Group("/rooms")
			{
				rooms.GET("", h.Room.List)
				rooms.GET("/:id", h.Room.Get)
				rooms.POST("", h.Room.Create)
				rooms.PUT("/:id", h.Room.Update)
				rooms.GET("/:id/bookings", h.Room.RoomBookings)
			}

			bookings := authorized.Group("/bookings")
			{
				bookings.GET("", h.Room.ListBookings)
				bookings.POST("", h.Room.Book)
				bookings.POST("/:id/approve", h.Room.Approve)
				bookings.POST("/:id/reject", h.Room.Reject)
				bookings.DELETE("/:id", h.Room.Cancel)
			}

			feedback := authorized.Group("/feedback")
			{
				feedback.GET("", h.Feedback.List)
				feedback.GET("/:id", h.Feedback.Get)
				feedback.PUT("/:id/status", h.Feedback.UpdateStatus)
				feedback.POST("/:id/respond", h.Feedback.Respond)
				feedback.DELETE("/:id", h.Feedback.Delete)
			}

			reports := authorized.Group("/reports")
			{
				reports.GET("", h.Report.ListSubmissions)
				reports.POST("", h.Report.SubmitReport)
				reports.GET("/divisions", h.Report.DivisionProgress)
				reports.GET("/divisions/:id", h.Report.DivisionReport)
				reports.GET("/organization", h.Report.OrganizationReport)
				reports.GET("/organization/export", h.Report.ExportOrganizationReport)
			}
		}
	}
}
