package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"travelbro-server/internal/config"
	"travelbro-server/internal/domain/chat"
	"travelbro-server/internal/domain/llm"
	"travelbro-server/internal/domain/tool"
	"travelbro-server/internal/domain/vision"
	"travelbro-server/internal/infrastructure/database"
	"travelbro-server/internal/infrastructure/googlemaps"
	"travelbro-server/internal/infrastructure/llmprovider"
	"travelbro-server/internal/infrastructure/logger"
	"travelbro-server/internal/infrastructure/observability"
	auditrepo "travelbro-server/internal/infrastructure/repository/audit"
	conversationrepo "travelbro-server/internal/infrastructure/repository/conversation"
	intakerepo "travelbro-server/internal/infrastructure/repository/intake"
	slotsrepo "travelbro-server/internal/infrastructure/repository/slots"
	triprepo "travelbro-server/internal/infrastructure/repository/trip"
	"travelbro-server/internal/infrastructure/sessionlock"
	"travelbro-server/internal/infrastructure/storage"
	"travelbro-server/internal/infrastructure/websearch"
	"travelbro-server/internal/interfaces/httpserver"
)

// Application bundles the long-running pieces of the chat service.
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	tripRepository := triprepo.NewRepository(db)
	turnRepository := conversationrepo.NewTurnRepository(db)
	attachmentRepository := conversationrepo.NewAttachmentRepository(db)
	slotStore := slotsrepo.NewStore(db, log)
	intakeRepository := intakerepo.NewRepository(db, log)
	auditRepository := auditrepo.NewRepository(db)

	// The turn lease is a hardening layer; a missing Redis degrades to
	// unguarded turns instead of blocking startup.
	var locker chat.SessionLocker
	if redisClient, err := database.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, session lease disabled")
	} else {
		defer redisClient.Close()
		locker = sessionlock.NewLocker(redisClient, cfg.SessionLockTTL, log)
	}

	attachmentStorage, err := storage.NewS3Storage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize attachment storage")
	}
	var uploader chat.AttachmentStore
	if attachmentStorage.Enabled() {
		uploader = attachmentStorage
	}

	var (
		provider       llm.Provider
		visionAnalyzer chat.VisionAnalyzer
	)
	if cfg.HasChatProvider() {
		client := llmprovider.NewClient(cfg.ChatBaseURL, cfg.ChatAPIKey)
		provider = client
		visionAnalyzer = vision.NewService(client, auditRepository, tripRepository, cfg.VisionModel, log)
	} else {
		log.Warn().Msg("OPENAI_API_KEY is not set; turns will fail until configured")
	}

	var (
		places     tool.PlacesAdapter
		directions tool.DirectionsAdapter
		webSearch  tool.WebSearchAdapter
	)
	if cfg.HasMapsProvider() {
		mapsClient := googlemaps.NewClient(cfg.GoogleMapsAPIKey, cfg.PlacesRadius, log)
		places = mapsClient
		directions = mapsClient
	} else {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY is not set; places and directions tools disabled")
	}
	if cfg.HasWebSearch() {
		webSearch = websearch.NewClient(cfg.SearchAPIKey, cfg.SearchEngineID, log)
	} else {
		log.Warn().Msg("google search credentials are not set; web search tool disabled")
	}

	chatService := chat.NewService(
		tripRepository,
		tripRepository,
		turnRepository,
		attachmentRepository,
		slotStore,
		intakeRepository,
		places,
		directions,
		webSearch,
		visionAnalyzer,
		provider,
		auditRepository,
		uploader,
		locker,
		chat.Options{
			Model:        cfg.ChatModel,
			Temperature:  cfg.ChatTemperature,
			MaxTokens:    cfg.ChatMaxTokens,
			HistoryLimit: cfg.HistoryLimit,
		},
		log,
	)

	httpServer := httpserver.New(cfg, log, chatService, attachmentStorage)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
