package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/skillmatch/internal/api"
	"github.com/lalith-99/skillmatch/internal/config"
	"github.com/lalith-99/skillmatch/internal/db"
	"github.com/lalith-99/skillmatch/internal/events"
	"github.com/lalith-99/skillmatch/internal/jobs"
	"github.com/lalith-99/skillmatch/internal/middleware"
	"github.com/lalith-99/skillmatch/internal/observ"
	"github.com/lalith-99/skillmatch/internal/repository/postgres"
	"github.com/lalith-99/skillmatch/internal/service"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Load config
	// ---------------------------------------------------------------
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// ---------------------------------------------------------------
	// 2. Create logger
	// ---------------------------------------------------------------
	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// ctx is cancelled on SIGINT/SIGTERM and drives graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------------------------------------------------------
	// 3. Connect to Postgres, apply schema
	// ---------------------------------------------------------------
	database, err := db.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// ---------------------------------------------------------------
	// 4. Connect to Redis
	// ---------------------------------------------------------------
	rdb, err := db.NewRedis(ctx, cfg.RedisURL, logger)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	// ---------------------------------------------------------------
	// 5. Create repositories
	//
	// Every store shares the pool; pgxpool is goroutine-safe.
	// ---------------------------------------------------------------
	pool := database.Pool()
	matchRepo := postgres.NewMatchStore(pool)
	participantRepo := postgres.NewParticipantStore(pool)
	applicationRepo := postgres.NewApplicationStore(pool)
	reviewRepo := postgres.NewReviewStore(pool)
	messageRepo := postgres.NewMessageStore(pool)
	notificationRepo := postgres.NewNotificationStore(pool)
	userRepo := postgres.NewUserStore(pool)

	// ---------------------------------------------------------------
	// 6. Event pipeline
	//
	// Services publish to the Recorder, which writes the inbox row and
	// then fans the event out over Redis to whichever instance holds
	// the recipient's websocket.
	// ---------------------------------------------------------------
	bus := events.NewBus(rdb, logger)
	publisher := events.NewRecorder(notificationRepo, bus)

	// ---------------------------------------------------------------
	// 7. Services
	// ---------------------------------------------------------------
	matchSvc := service.NewMatchService(matchRepo, participantRepo, reviewRepo, messageRepo, publisher, logger)
	reviewSvc := service.NewReviewService(reviewRepo, matchRepo, participantRepo, publisher, logger)
	applicationSvc := service.NewApplicationService(applicationRepo, publisher, logger)
	chatSvc := service.NewChatService(messageRepo, participantRepo, publisher, logger)

	// ---------------------------------------------------------------
	// 8. Background jobs
	// ---------------------------------------------------------------
	scheduler := jobs.NewScheduler(logger)
	reminder := jobs.NewConfirmationReminder(matchRepo, participantRepo, publisher, cfg.ReminderAfter, logger)
	if err := scheduler.RegisterReminder(cfg.ReminderSchedule, reminder); err != nil {
		return fmt.Errorf("register reminder: %w", err)
	}
	scheduler.Start()

	// ---------------------------------------------------------------
	// 9. HTTP routes
	// ---------------------------------------------------------------
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := gin.New()
	srv.Use(gin.Recovery(), observ.RequestLogger(logger, middleware.ContextKeyUserID))

	// Health check is PUBLIC so load balancers can probe it.
	srv.GET("/v1/health", func(c *gin.Context) {
		if err := database.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := srv.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	matchHandler := api.NewMatchHandler(matchSvc, logger)
	reviewHandler := api.NewReviewHandler(reviewSvc, logger)
	applicationHandler := api.NewApplicationHandler(applicationSvc, logger)
	messageHandler := api.NewMessageHandler(chatSvc, logger)
	notificationHandler := api.NewNotificationHandler(notificationRepo, bus, cfg.AllowedOrigins, logger)
	userHandler := api.NewUserHandler(userRepo, logger)

	v1.GET("/users/me", userHandler.GetMe)
	v1.GET("/roles", api.DeriveRole)
	v1.GET("/badges", api.ListBadges)

	v1.POST("/applications/:id/accept", applicationHandler.Accept)

	v1.GET("/matches", matchHandler.List)
	v1.GET("/matches/:id", matchHandler.Get)
	v1.POST("/matches/:id/report", matchHandler.Report)
	v1.POST("/matches/:id/confirm", matchHandler.Confirm)
	v1.POST("/matches/:id/cancel", matchHandler.Cancel)

	v1.GET("/matches/:id/reviews", reviewHandler.List)
	v1.POST("/matches/:id/reviews", reviewHandler.Submit)
	v1.GET("/matches/:id/reviews/eligibility", reviewHandler.Eligibility)

	v1.GET("/matches/:id/messages", messageHandler.List)
	v1.POST("/matches/:id/messages", messageHandler.Create)

	v1.GET("/notifications", notificationHandler.List)
	v1.POST("/notifications/:id/read", notificationHandler.MarkRead)
	v1.GET("/notifications/stream", notificationHandler.Stream)

	// ---------------------------------------------------------------
	// 10. Serve until signalled, then shut down in reverse order
	// ---------------------------------------------------------------
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting skillmatch",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)

	return nil
}
