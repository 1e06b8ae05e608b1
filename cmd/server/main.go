package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RG-1903/Urban-Drive-sub000/internal/application"
	"github.com/RG-1903/Urban-Drive-sub000/internal/config"
	draftDomain "github.com/RG-1903/Urban-Drive-sub000/internal/domain/draft"
	wizardEvents "github.com/RG-1903/Urban-Drive-sub000/internal/events"
	"github.com/RG-1903/Urban-Drive-sub000/internal/gateway"
	"github.com/RG-1903/Urban-Drive-sub000/internal/handler"
	"github.com/RG-1903/Urban-Drive-sub000/internal/repository"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/auth"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/database"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/health"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/kafka"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/logger"
	"github.com/RG-1903/Urban-Drive-sub000/pkg/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-rental-wizard")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-rental-wizard",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(&repository.DraftModel{}); err != nil {
		log.Fatal("failed to run auto-migration", zap.Error(err))
	}
	log.Info("database migration completed")

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repository and domain services
	draftRepo := repository.NewGormDraftRepository(db)
	pricingStrategy := draftDomain.NewStandardPricingStrategy()
	availabilityChecker := draftDomain.NewAlwaysAvailableChecker()

	// Initialize collaborator clients
	catalogClient := gateway.NewCatalogClient(cfg.CatalogBaseURL, log)
	reservationClient := gateway.NewReservationClient(cfg.ReservationBaseURL, log)

	// Initialize application service
	wizardService := application.NewWizardService(
		draftRepo,
		pricingStrategy,
		availabilityChecker,
		catalogClient,
		reservationClient,
		kafkaProducer,
		log,
	)

	// Initialize and start session event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "rental-wizard-service"
	sessionConsumer := wizardEvents.NewSessionEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		wizardService,
		log,
	)
	defer func() { _ = sessionConsumer.Close() }()

	go func() {
		log.Info("starting session event consumer")
		if err := sessionConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("session event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	wizardHandler := handler.NewWizardHandler(wizardService)
	adminHandler := handler.NewAdminWizardHandler(wizardService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-rental-wizard")
	healthHandler.RegisterRoutes(router)

	// Register routes
	wizardHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-rental-wizard...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-rental-wizard stopped")
}
