package main

import (
	"os"
	"os/signal"
	"syscall"

	"gudang/internal/config"

	"github.com/apex/log"
	"github.com/spf13/viper"
)

func main() {
	cfg, err := config.Load(viper.New())
	if err != nil {
		log.WithFields(appLogTags).WithError(err).Fatal("Failed to load configuration")
	}
	if err := setupLogging(cfg); err != nil {
		log.WithFields(appLogTags).WithError(err).Fatal("Failed to configure logging")
	}

	app, cleanup, err := NewApp(cfg)
	if err != nil {
		log.WithFields(appLogTags).WithError(err).Fatal("Failed to create app")
	}
	defer cleanup()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithFields(appLogTags).Infof("Starting server on port %s", cfg.AppPort)
		if err := app.Listen(cfg.AppPort); err != nil {
			log.WithFields(appLogTags).WithError(err).Fatal("Server failed to start")
		}
	}()

	<-quit
	log.WithFields(appLogTags).Info("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.WithFields(appLogTags).WithError(err).Error("Error during Fiber shutdown")
	}
	log.WithFields(appLogTags).Info("Server gracefully stopped")
}
