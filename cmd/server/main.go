package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Techtuskers-redefined/shopgenie/internal/app"
	"github.com/Techtuskers-redefined/shopgenie/internal/config"
	"github.com/Techtuskers-redefined/shopgenie/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(0).Fatal("failed to load config", "error", err.Error())
	}

	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize app", "error", err.Error())
	}

	go func() {
		if err := application.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", "error", err.Error())
		}
	}()

	log.Info("shopgenie auth started", "port", cfg.AppPort)

	<-ctx.Done()

	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Fatal("graceful shutdown failed", "error", err.Error())
	}

	log.Info("shopgenie auth stopped cleanly")
}
