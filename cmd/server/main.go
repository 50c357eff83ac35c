package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"jobtrail-utils/internal/api/routes"
	"jobtrail-utils/internal/capture"
	capturefirecrawl "jobtrail-utils/internal/capture/firecrawl"
	"jobtrail-utils/internal/capture/headed"
	"jobtrail-utils/internal/capture/hybrid"
	"jobtrail-utils/internal/config"
	"jobtrail-utils/internal/extractor"
	"jobtrail-utils/internal/extractor/breaker"
	"jobtrail-utils/internal/extractor/cache"
	"jobtrail-utils/internal/llm"
	"jobtrail-utils/internal/logging"
)

func main() {
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.InitializeLogging(cfg.Logging.Level, cfg.Logging.Adapters); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting JobTrail Extraction Service", map[string]interface{}{
		"cache_backend": cfg.Cache.Backend,
	})

	store, err := cache.New(cfg)
	if err != nil {
		logger.Error("Failed to initialize result cache", map[string]interface{}{
			"backend": cfg.Cache.Backend,
			"error":   err.Error(),
		})
		os.Exit(1)
	}

	providers, err := llm.NewRegistry(cfg)
	if err != nil {
		logger.Error("Failed to initialize LLM providers", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	breakers := breaker.NewRegistry()
	for _, id := range providers.IDs() {
		breakers.Register(id, breaker.Settings{
			FailureThreshold: cfg.CircuitBreaker.FailureThreshold,
			SuccessThreshold: cfg.CircuitBreaker.SuccessThreshold,
			OpenTimeout:      cfg.CircuitBreaker.OpenTimeout,
		})
	}

	limiter := capture.NewDomainLimiter(cfg.Scraper.RateLimit)
	defer limiter.Stop()

	headedEngine := headed.New(cfg)
	acquirers := map[string]capture.Acquirer{
		"headed": headedEngine,
	}

	var firecrawlEngine capture.Acquirer
	if fc, err := capturefirecrawl.New(cfg); err != nil {
		logger.Warn("Firecrawl engine unavailable, rendered capture has no fallback", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		firecrawlEngine = fc
		acquirers["firecrawl"] = fc
	}

	hybridEngine := hybrid.New(headedEngine, firecrawlEngine, limiter)
	acquirers["auto"] = hybridEngine
	defer hybridEngine.Close()

	orch := extractor.New(cfg, store, breakers, providers, acquirers)

	e := echo.New()
	e.HideBanner = true
	routes.SetupRoutes(e, cfg, orch)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...", map[string]interface{}{})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{
				"error": err.Error(),
			})
		}

		logger.Info("Server shutdown complete", map[string]interface{}{})
	}()

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{
		"address": address,
	})

	if err := e.Start(address); err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed to start", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}
