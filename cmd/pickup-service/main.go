package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/asram/pickup-service/internal/auth"
	"github.com/asram/pickup-service/internal/cache"
	"github.com/asram/pickup-service/internal/config"
	"github.com/asram/pickup-service/internal/db"
	"github.com/asram/pickup-service/internal/excel"
	httphandler "github.com/asram/pickup-service/internal/http"
	"github.com/asram/pickup-service/internal/http/middleware"
	"github.com/asram/pickup-service/internal/logger"
	"github.com/asram/pickup-service/internal/pdf"
	"github.com/asram/pickup-service/internal/repository"
	"github.com/asram/pickup-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	pickupRepo := repository.NewPickupRepository(database)
	clientRepo := repository.NewClientRepository(database)

	var historyCache service.HistoryCache
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init redis cache")
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			cancel()
			log.Fatal().Err(err).Msg("redis unreachable")
		}
		cancel()
		defer redisCache.Close()
		historyCache = redisCache
		log.Info().Msg("history cache enabled")
	}

	pickupService := service.NewPickupService(pickupRepo, clientRepo, historyCache, cfg, log)
	historyService := service.NewHistoryService(
		pickupRepo,
		clientRepo,
		historyCache,
		cfg.Redis.HistoryTTL,
		excel.NewGenerator(),
		pdf.NewGenerator(),
		log,
	)

	loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := pickupRepo.Reload(loadCtx); err != nil {
		log.Error().Err(err).Msg("initial pickup load failed, serving empty snapshot")
	}
	cancel()

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(pickupService, historyService, clientRepo, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting pickup service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
