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

	"github.com/ajitkushawaha/KwickLingoApp/internal/config"
	"github.com/ajitkushawaha/KwickLingoApp/internal/handler"
	"github.com/ajitkushawaha/KwickLingoApp/internal/hub"
	"github.com/ajitkushawaha/KwickLingoApp/internal/kafka"
	"github.com/ajitkushawaha/KwickLingoApp/internal/log"
	"github.com/ajitkushawaha/KwickLingoApp/internal/metrics"
	"github.com/ajitkushawaha/KwickLingoApp/internal/pubsub"
	"github.com/ajitkushawaha/KwickLingoApp/internal/service"
	"github.com/ajitkushawaha/KwickLingoApp/internal/state"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.L().Fatal().Err(err).Msg("failed to load configuration")
	}

	cfg.Log.ServiceName = "signaling-server"
	log.Init(cfg.Log)
	logger := log.L()

	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting signaling server")

	// Optional Redis pub/sub for cross-instance announcements
	var ps pubsub.PubSub
	if cfg.PubSub.Enabled {
		rps, err := pubsub.NewRedisPubSub(cfg.PubSub)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, cross-instance announcements disabled")
		} else {
			ps = rps
			defer rps.Close()
			logger.Info().Str("address", cfg.PubSub.Address).Msg("connected to redis pubsub")
		}
	}

	// Optional Kafka producer for analytics events
	var producer kafka.EventProducer
	if cfg.Kafka.Enabled {
		p, err := kafka.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to create kafka producer, analytics events disabled")
		} else {
			producer = p
			defer p.Close()
			logger.Info().Str("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("connected to kafka")
		}
	}

	// Initialize hub and shared state
	wsHub := hub.NewHub(cfg.WebSocket)
	go wsHub.Run()

	st := state.New()
	m := metrics.New()

	// Initialize service
	signalSvc := service.NewSignalService(wsHub, st, producer, ps, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := signalSvc.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start signal service")
	}
	defer signalSvc.Stop()

	// Setup routes
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(log.GinMiddleware(*logger), gin.Recovery())

	wsHandler := handler.NewWSHandler(wsHub, signalSvc, m)
	httpHandler := handler.NewHTTPHandler(st, wsHub, m)
	httpHandler.RegisterRoutes(router, wsHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("signaling server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down signaling server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("signaling server stopped")
}
