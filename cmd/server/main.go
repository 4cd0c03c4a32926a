package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agrihub/internal/config"
	"agrihub/internal/database"
	"agrihub/internal/handlers"
	"agrihub/internal/logger"
	"agrihub/internal/migrations"
	"agrihub/internal/redis"
	"agrihub/internal/repository"
	"agrihub/internal/services"
	"agrihub/internal/storage"
	"agrihub/pkg/whatsapp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if _, err := logger.Initialize(cfg.Env, cfg.LogLevel); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Close()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.LogLevel == "debug")
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := migrations.RunMigrations(context.Background(), db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	var sender services.MessageSender
	if cfg.NotificationsEnabled() {
		sender = whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)
	} else {
		logger.Info("WhatsApp notifications disabled")
	}

	// Initialize repositories
	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	farmerRepo := repository.NewFarmerProfileRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	inquiryRepo := repository.NewInquiryRepository(db)

	// Initialize services
	images := storage.NewLocalImageStore(cfg.MediaRoot)
	notifier := services.NewNotificationService(sender, cfg.OperatorPhone)
	roleService := services.NewRoleService(groupRepo)
	sessions := services.NewSessionService(redisClient, cfg.JWTSecret,
		time.Duration(cfg.SessionTimeout)*time.Second, time.Duration(cfg.FlashTTL)*time.Second)

	apiHandler := handlers.NewAPIHandler(handlers.Services{
		Catalog:  services.NewCatalogService(categoryRepo, productRepo),
		Cart:     services.NewCartService(cartRepo, productRepo, addressRepo),
		Orders:   services.NewOrderService(tx, orderRepo, cartRepo, addressRepo, notifier),
		Produce:  services.NewProduceService(productRepo, categoryRepo, images, services.ProducePolicy{Enforced: cfg.ProduceOwnershipEnforced}),
		Inquiry:  services.NewInquiryService(inquiryRepo, notifier),
		Users:    services.NewUserService(tx, userRepo, farmerRepo, addressRepo, roleService),
		Address:  services.NewAddressService(addressRepo),
		Sessions: sessions,
		Export:   services.NewExportService(productRepo),
	})

	router := handlers.NewRouter(handlers.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		MediaURL:    cfg.MediaURL,
		MediaRoot:   cfg.MediaRoot,
	}, apiHandler, sessions)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	srvErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-srvErr:
		logger.Fatal("Server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
