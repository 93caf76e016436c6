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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"call-quality-go/internal/api"
	"call-quality-go/internal/app"
	"call-quality-go/internal/config"
	"call-quality-go/internal/logger"
)

func main() {
	_ = godotenv.Load() // loads .env

	cfg := config.Load()
	log := logger.New()
	log.WithField("service", "call-quality-go").WithField("env", cfg.Environment).Info("starting service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := app.Build(ctx, cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		log.WithError(err).Fatal("failed to wire services")
	}
	defer services.Close()

	handler := api.New(&api.Config{
		Logger:         log,
		Sessions:       services.Sessions,
		Transcripts:    services.Transcripts,
		Analyzer:       services.Analyzer,
		MetricsHandler: promhttp.Handler(),
		SignedURLTTL:   cfg.SignedURLTTL,
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.OracleTimeout + time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("shutdown failed")
		}
	}()

	log.WithComponent("server").WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server terminated")
	}
	log.Info("server stopped")
}
