package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/maltedev/amazon-reviews-scraper/internal/api"
	"github.com/maltedev/amazon-reviews-scraper/internal/auth"
	"github.com/maltedev/amazon-reviews-scraper/internal/browser"
	"github.com/maltedev/amazon-reviews-scraper/internal/config"
	"github.com/maltedev/amazon-reviews-scraper/internal/database"
	"github.com/maltedev/amazon-reviews-scraper/internal/diag"
	"github.com/maltedev/amazon-reviews-scraper/internal/events"
	"github.com/maltedev/amazon-reviews-scraper/internal/jobs"
	"github.com/maltedev/amazon-reviews-scraper/internal/ratelimit"
	"github.com/maltedev/amazon-reviews-scraper/internal/scraper"
	"github.com/maltedev/amazon-reviews-scraper/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}
	log := logger.NewFromConfig(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store *database.ReviewStore
	if cfg.Database.Enabled {
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		store = database.NewReviewStore(db)
		if err := store.Migrate(ctx); err != nil {
			log.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	var publisher *events.Publisher
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		publisher = events.NewPublisher(redisClient, cfg.Redis.Stream, log)
	}

	runner := newScrapeRunner(cfg, store, publisher, log)
	manager := jobs.NewManager(runner, log)
	handlers := api.NewHandlers(manager, store, log)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      api.NewRouter(handlers),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down server...")
		cancel()
		manager.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	log.Info("server starting", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}

	manager.Wait()
	log.Info("server stopped")
}

// newScrapeRunner builds the per-job execution path: fresh browser and page
// per job, one pipeline run, optional persistence and event publishing.
func newScrapeRunner(cfg *config.Config, store *database.ReviewStore, publisher *events.Publisher, log *slog.Logger) jobs.Runner {
	selectors, err := scraper.LoadSelectors(cfg.Scraper.SelectorsFile)
	if err != nil {
		log.Warn("falling back to built-in selectors", "error", err)
		selectors = scraper.DefaultSelectors()
	}

	return jobs.RunnerFunc(func(ctx context.Context, scrapeCfg config.ScrapeConfig) (*scraper.Result, error) {
		publisher.Publish(ctx, events.TypeScrapeStarted, scrapeCfg.Keyword, 0, 0, nil)

		b, err := browser.New(&browser.Options{
			Headless:       scrapeCfg.Headless,
			Timeout:        cfg.Browser.Timeout,
			UserAgent:      cfg.Browser.UserAgent,
			ViewportWidth:  cfg.Browser.ViewportWidth,
			ViewportHeight: cfg.Browser.ViewportHeight,
			AcceptLanguage: cfg.Browser.AcceptLanguage,
			TimezoneID:     cfg.Browser.TimezoneID,
			Locale:         cfg.Browser.Locale,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		defer b.Close()

		if scrapeCfg.CookiesPath != "" {
			if _, err := b.LoadCookies(scrapeCfg.CookiesPath); err != nil {
				log.Warn("could not load cookies", "path", scrapeCfg.CookiesPath, "error", err)
			}
		}

		page, err := b.NewPage()
		if err != nil {
			return nil, fmt.Errorf("failed to open page: %w", err)
		}
		defer page.Close()

		recorder := diag.NewRecorder()
		discovery := scraper.NewDiscovery(cfg.Scraper.BaseURL, selectors, log, recorder)
		harvester := scraper.NewHarvester(cfg.Scraper.BaseURL, selectors,
			ratelimit.NewFixedPacer(cfg.Scraper.PageDelay), log, recorder)
		if cfg.Scraper.Screenshots {
			discovery.EnableScreenshots(cfg.Scraper.ScreenshotDir)
			harvester.EnableScreenshots(cfg.Scraper.ScreenshotDir)
		}

		// The server never signs in; sessions come from cookie jars.
		pipeline := scraper.NewPipeline(nil, discovery, harvester, log, recorder)
		pipeline.SetProductPacer(ratelimit.NewFixedPacer(cfg.Scraper.ProductDelay))

		result, runErr := pipeline.Run(ctx, page, scrapeCfg, auth.Credentials{})

		if result != nil {
			if store != nil && len(result.Reviews) > 0 {
				if err := store.SaveRun(ctx, scrapeCfg.Keyword, result.Products, result.Reviews); err != nil {
					log.Error("failed to persist results", "error", err)
				}
			}
			eventType := events.TypeScrapeCompleted
			if runErr != nil {
				eventType = events.TypeScrapeFailed
			}
			publisher.Publish(ctx, eventType, scrapeCfg.Keyword, len(result.Products), len(result.Reviews), runErr)
		}

		return result, runErr
	})
}
