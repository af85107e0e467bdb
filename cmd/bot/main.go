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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"finbot/internal/auth"
	"finbot/internal/bot"
	"finbot/internal/client/groq"
	vertexclient "finbot/internal/client/vertex"
	"finbot/internal/config"
	"finbot/internal/conversation"
	"finbot/internal/database"
	_ "finbot/internal/docs" // Import swagger docs
	"finbot/internal/events"
	"finbot/internal/handlers"
	"finbot/internal/logger"
	"finbot/internal/middleware"
	"finbot/internal/scheduler"
	"finbot/internal/services"
)

const shutdownTimeout = 15 * time.Second

// @title       finbot API
// @version     1.0
// @description HTTP surface of the finbot Telegram finance bot.
// @BasePath    /

// @securityDefinitions.apikey TelegramSecret
// @in header
// @name X-Telegram-Bot-Api-Secret-Token
// @description Secret token registered with setWebhook.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() { _ = dbManager.Close() }()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	cron := scheduler.New(log)
	store, closeStore, err := newConversationStore(appConfig, cron, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()
	cron.Start()
	defer func() { <-cron.Stop().Done() }()

	publisher, err := newPublisher(appConfig, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	transcriber := groq.NewTranscriber(appConfig.GroqAPIKey, appConfig.GroqBaseURL,
		appConfig.TranscriptionModel, appConfig.TranscriptionLanguage)

	extractor, err := vertexclient.NewAdapter(ctx, log, appConfig.GoogleProjectID, appConfig.GoogleRegion,
		appConfig.VertexModel, appConfig.Currency, appConfig.GoogleCredentialsFile)
	if err != nil {
		return fmt.Errorf("failed to create extraction client: %w", err)
	}
	defer func() { _ = extractor.Close() }()

	// Initialize services
	db := dbManager.DB()
	hasher := auth.NewPinHasher(appConfig.PinHashCost)
	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db, hasher, auditService)
	cardService := services.NewCardService(db, auditService)
	categoryService := services.NewCategoryService(db, auditService)
	expenseService := services.NewExpenseService(transcriber, extractor, publisher,
		appConfig.ExternalCallTimeout, appConfig.Location())

	client, err := bot.NewClient(appConfig.TelegramToken, appConfig.TelegramDebug)
	if err != nil {
		return fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	log.Infof("Authorized as @%s", client.Username())

	// Initialize handlers
	machine := conversation.NewMachine(store)
	authHandler := handlers.NewAuthHandler(userService, hasher, machine)
	cardHandler := handlers.NewCardHandler(userService, cardService, machine)
	categoryHandler := handlers.NewCategoryHandler(userService, categoryService)
	voiceHandler := handlers.NewVoiceHandler(userService, expenseService, client, handlers.VoiceConfig{
		MaxDuration: appConfig.AudioMaxDuration,
		Currency:    appConfig.Currency,
	})
	router := handlers.NewRouter(machine, authHandler, cardHandler, categoryHandler, voiceHandler)
	if err := client.SetCommands(router.Commands()); err != nil {
		log.Warnw("command menu not published", "error", err)
	}

	// Replies outlive the signal context so queued updates can finish on shutdown.
	dispatcher := bot.NewDispatcher(context.WithoutCancel(ctx), router, client, log)

	server := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           newEngine(appConfig, dispatcher, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting finbot HTTP server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	if appConfig.TelegramWebhookURL != "" {
		if err := client.SetWebhook(appConfig.TelegramWebhookURL, appConfig.TelegramWebhookSecret); err != nil {
			return fmt.Errorf("failed to register webhook: %w", err)
		}
		log.Infow("receiving updates via webhook", "url", appConfig.TelegramWebhookURL)
	} else {
		if err := client.DeleteWebhook(); err != nil {
			return fmt.Errorf("failed to remove webhook: %w", err)
		}
		log.Info("receiving updates via long polling")
		go bot.Poll(ctx, client.API(), dispatcher, log)
	}

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnw("http server shutdown incomplete", "error", err)
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.Warnw("pending updates abandoned", "pending", dispatcher.Pending(), "error", err)
	}
	log.Info("finbot stopped")
	return nil
}

func newEngine(appConfig *config.Config, dispatcher *bot.Dispatcher, log *zap.SugaredLogger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogging())
	engine.Use(middleware.ErrorHandler())

	engine.GET("/api/health", healthCheck)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	engine.POST("/telegram/webhook",
		middleware.WebhookAuth(appConfig.TelegramWebhookSecret),
		bot.WebhookHandler(dispatcher, log),
	)
	return engine
}

// healthCheck godoc
// @Summary     Health check
// @Description Reports that the process is up
// @Tags        system
// @Produce     json
// @Success     200 {object} map[string]string "Service is running"
// @Router      /api/health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// newConversationStore picks Redis when configured. The in-memory store is
// swept on a schedule instead of relying on key expiry. The returned func
// releases the store's connection.
func newConversationStore(appConfig *config.Config, cron *scheduler.Scheduler, log *zap.SugaredLogger) (conversation.Store, func() error, error) {
	if appConfig.RedisURL != "" {
		opts, err := redis.ParseURL(appConfig.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		log.Info("conversation state stored in redis")
		return conversation.NewRedisStore(client, appConfig.ConversationTTL), client.Close, nil
	}

	store := conversation.NewMemoryStore(appConfig.ConversationTTL)
	if err := cron.Add(scheduler.ConversationSweepJob(store, appConfig.SweepSchedule, log)); err != nil {
		return nil, nil, fmt.Errorf("invalid CONVERSATION_SWEEP_SCHEDULE: %w", err)
	}
	log.Info("conversation state stored in memory")
	return store, func() error { return nil }, nil
}

func newPublisher(appConfig *config.Config, log *zap.SugaredLogger) (events.Publisher, error) {
	if appConfig.RabbitMQURL == "" {
		return events.NewNoopPublisher(log), nil
	}
	publisher, err := events.NewRabbitPublisher(appConfig.RabbitMQURL, appConfig.EventsExchange, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return publisher, nil
}
