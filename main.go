package main

import (
	"context"

	"github.com/KRaymonne/pro/internal/config"
	"github.com/KRaymonne/pro/internal/database"
	logger "github.com/KRaymonne/pro/internal/logging"
	"github.com/KRaymonne/pro/internal/router"
	"github.com/KRaymonne/pro/internal/services"

	"go.uber.org/zap"
)

func main() {
	// The rotating file logger reads its settings from the configuration,
	// so the configuration loads first under a plain console logger.
	boot, err := zap.NewDevelopment()
	if err != nil {
		panic("failed to initialize bootstrap logger: " + err.Error())
	}
	if err := config.Init(".", boot); err != nil {
		boot.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Logger
	log, err := logger.Init(".")
	if err != nil {
		boot.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer log.Sync()
	config.SetLogger(log)

	// Initialize Database
	database.Init(log)

	// Seed the poem library on first boot
	if err := services.SeedLibrary(context.Background(), log); err != nil {
		log.Fatal("Failed to seed poem library", zap.Error(err))
	}

	// Recording storage on local disk
	storage, err := services.NewDiskStorage(config.Conf.Uploads.Directory, config.Conf.Uploads.BaseURL, log)
	if err != nil {
		log.Fatal("Failed to initialize media storage", zap.Error(err))
	}
	sessionService := services.NewSessionService(log, storage)

	// Setup router, passing the logger to it
	r := router.Setup(log, sessionService)

	// Start the Gin server
	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
