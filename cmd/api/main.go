package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"skincraft-api/internal/api"
	"skincraft-api/internal/cache"
	"skincraft-api/internal/capes"
	"skincraft-api/internal/config"
	"skincraft-api/internal/gallery"
	"skincraft-api/internal/laby"
	"skincraft-api/internal/logging"
	"skincraft-api/internal/names"
	"skincraft-api/internal/profile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting_api", "service", "skincraft-api", "http_addr", cfg.HTTPAddr)

	// The response cache is optional; the facade works without it.
	var responseCache *cache.Cache
	if cfg.RedisDSN != "" {
		responseCache, err = cache.New(cfg.RedisDSN, cfg.CacheTTL)
		if err != nil {
			logger.Warn("redis_connect_failed", "error", err, "caching", "disabled")
			responseCache = nil
		} else {
			logger.Info("response_cache_enabled", "ttl", cfg.CacheTTL.String())
		}
	}

	labyClient := laby.New(cfg.LabyBaseURL, logger)
	catalog := capes.NewCatalog()
	profiles := profile.NewService(labyClient, catalog, logger)
	predictor := names.NewPredictor(labyClient, logger)
	extractor := gallery.NewExtractor(cfg.GalleryBaseURL, cfg.ScrapeTimeout, logger)

	gin.SetMode(gin.ReleaseMode)
	srv := api.NewServer(logger, cfg, responseCache, catalog, profiles, predictor, labyClient, extractor)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_listen_failed", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("api_started", "addr", cfg.HTTPAddr)

	// graceful shutdown
	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_failed", "error", err)
	} else {
		logger.Info("http_server_stopped")
	}

	if responseCache != nil {
		if err := responseCache.Close(); err != nil {
			logger.Warn("redis_close_error", "error", err)
		}
	}

	logger.Info("api_stopped")
}
