package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/term"

	"github.com/maltedev/amazon-reviews-scraper/internal/auth"
	"github.com/maltedev/amazon-reviews-scraper/internal/browser"
	"github.com/maltedev/amazon-reviews-scraper/internal/config"
	"github.com/maltedev/amazon-reviews-scraper/internal/database"
	"github.com/maltedev/amazon-reviews-scraper/internal/diag"
	"github.com/maltedev/amazon-reviews-scraper/internal/events"
	"github.com/maltedev/amazon-reviews-scraper/internal/export"
	"github.com/maltedev/amazon-reviews-scraper/internal/models"
	"github.com/maltedev/amazon-reviews-scraper/internal/ratelimit"
	"github.com/maltedev/amazon-reviews-scraper/internal/scraper"
	"github.com/maltedev/amazon-reviews-scraper/pkg/logger"
)

func main() {
	var (
		keyword     = flag.String("keyword", "", "search keyword (prompted when omitted)")
		starFilter  = flag.String("stars", "all", "star filter: 1-5, positive, critical or all")
		maxProducts = flag.Int("max-products", 5, "maximum products to scrape")
		maxPages    = flag.Int("max-pages", 3, "maximum review pages per product")
		headless    = flag.Bool("headless", false, "run the browser headless")
		cookiesPath = flag.String("cookies", "amazon_cookies.json", "cookie jar file")
		outputDir   = flag.String("output", ".", "directory for result files")
		login       = flag.Bool("login", false, "attempt sign-in before scraping")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	log := logger.NewFromConfig(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scrapeCfg := config.ScrapeConfig{
		Keyword:     *keyword,
		StarFilter:  *starFilter,
		MaxProducts: *maxProducts,
		MaxPages:    *maxPages,
		Headless:    *headless,
		CookiesPath: *cookiesPath,
	}
	if scrapeCfg.Keyword == "" {
		promptScrapeConfig(&scrapeCfg)
	}
	if err := scrapeCfg.Validate(); err != nil {
		log.Error("invalid scrape configuration", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, scrapeCfg, *login, *outputDir, log); err != nil {
		log.Error("scrape failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, scrapeCfg config.ScrapeConfig, login bool, outputDir string, log *slog.Logger) error {
	browserOpts := browserOptions(cfg, scrapeCfg.Headless)
	b, err := browser.New(browserOpts)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer b.Close()

	haveCookies := false
	if scrapeCfg.CookiesPath != "" {
		if count, err := b.LoadCookies(scrapeCfg.CookiesPath); err == nil {
			haveCookies = count > 0
		} else {
			log.Warn("could not load cookies, continuing without", "path", scrapeCfg.CookiesPath, "error", err)
		}
	}

	var creds auth.Credentials
	if login {
		var ok bool
		creds, ok = auth.CredentialsFromEnv()
		if !ok {
			creds, err = promptCredentials()
			if err != nil {
				return err
			}
		}
	}

	page, err := b.NewPage()
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	selectors, err := scraper.LoadSelectors(cfg.Scraper.SelectorsFile)
	if err != nil {
		return err
	}

	recorder := diag.NewRecorder()
	pacer := ratelimit.NewFixedPacer(cfg.Scraper.PageDelay)

	var authenticator scraper.Authenticator
	if login && !haveCookies {
		authenticator = auth.New(auth.Options{
			BaseURL: cfg.Scraper.BaseURL,
			Settle:  cfg.Scraper.SettleDelay,
		}, log, recorder)
	}

	discovery := scraper.NewDiscovery(cfg.Scraper.BaseURL, selectors, log, recorder)
	harvester := scraper.NewHarvester(cfg.Scraper.BaseURL, selectors, pacer, log, recorder)
	if cfg.Scraper.Screenshots {
		discovery.EnableScreenshots(cfg.Scraper.ScreenshotDir)
		harvester.EnableScreenshots(cfg.Scraper.ScreenshotDir)
	}

	pipeline := scraper.NewPipeline(authenticator, discovery, harvester, log, recorder)
	pipeline.SetProductPacer(ratelimit.NewFixedPacer(cfg.Scraper.ProductDelay))

	result, runErr := pipeline.Run(ctx, page, scrapeCfg, creds)
	if runErr != nil && result == nil {
		return runErr
	}
	if runErr != nil {
		// Partial results are still worth keeping.
		log.Warn("run ended early, exporting what was collected", "error", runErr)
		if cfg.Scraper.Screenshots {
			shot := filepath.Join(cfg.Scraper.ScreenshotDir, "failure.png")
			if err := page.Screenshot(shot); err != nil {
				log.Warn("failed to capture screenshot", "error", err)
			}
		}
	}

	if len(result.Reviews) == 0 {
		log.Warn("no reviews collected")
	}

	if err := writeOutputs(outputDir, scrapeCfg.Keyword, result.Reviews); err != nil {
		return err
	}
	publishAndPersist(ctx, cfg, scrapeCfg.Keyword, result, runErr, log)

	log.Info("done",
		"products", len(result.Products),
		"reviews", len(result.Reviews),
		"degradations", len(result.Degradations))

	if runErr != nil && !errors.Is(runErr, scraper.ErrSessionInvalid) {
		return runErr
	}
	return nil
}

func writeOutputs(dir, keyword string, reviews []models.Review) error {
	csvPath := filepath.Join(dir, export.OutputName(keyword, "csv"))
	if err := export.WriteCSVFile(csvPath, reviews); err != nil {
		return err
	}

	jsonPath := filepath.Join(dir, export.OutputName(keyword, "json"))
	if err := export.WriteJSONFile(jsonPath, models.NewReviewDocument(reviews)); err != nil {
		return err
	}

	fmt.Println("results written to", csvPath, "and", jsonPath)
	return nil
}

// publishAndPersist runs the optional sinks. Failures are logged, never
// fatal: the files on disk are the primary output.
func publishAndPersist(ctx context.Context, cfg *config.Config, keyword string, result *scraper.Result, runErr error, log *slog.Logger) {
	if cfg.Database.Enabled {
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
		} else {
			defer db.Close()
			store := database.NewReviewStore(db)
			if err := store.Migrate(ctx); err != nil {
				log.Error("failed to migrate database", "error", err)
			} else if err := store.SaveRun(ctx, keyword, result.Products, result.Reviews); err != nil {
				log.Error("failed to persist results", "error", err)
			}
		}
	}

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer client.Close()

		publisher := events.NewPublisher(client, cfg.Redis.Stream, log)
		eventType := events.TypeScrapeCompleted
		if runErr != nil {
			eventType = events.TypeScrapeFailed
		}
		publisher.Publish(ctx, eventType, keyword, len(result.Products), len(result.Reviews), runErr)
	}
}

func browserOptions(cfg *config.Config, headless bool) *browser.Options {
	return &browser.Options{
		Headless:       headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      cfg.Browser.UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
	}
}

func promptScrapeConfig(cfg *config.ScrapeConfig) {
	reader := bufio.NewReader(os.Stdin)

	cfg.Keyword = promptString(reader, "Search keyword: ")

	fmt.Println("Star filter options: 1, 2, 3, 4, 5, positive, critical, all")
	if v := promptString(reader, "Star filter [all]: "); v != "" {
		cfg.StarFilter = v
	}
	if v := promptInt(reader, fmt.Sprintf("Max products [%d]: ", cfg.MaxProducts)); v > 0 {
		cfg.MaxProducts = v
	}
	if v := promptInt(reader, fmt.Sprintf("Max review pages per product [%d]: ", cfg.MaxPages)); v > 0 {
		cfg.MaxPages = v
	}
}

func promptString(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptInt(reader *bufio.Reader, prompt string) int {
	v, err := strconv.Atoi(promptString(reader, prompt))
	if err != nil {
		return 0
	}
	return v
}

// promptCredentials asks on the terminal; the password never echoes and is
// held in memory only.
func promptCredentials() (auth.Credentials, error) {
	reader := bufio.NewReader(os.Stdin)
	email := promptString(reader, "Amazon email: ")

	fmt.Print("Amazon password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return auth.Credentials{}, fmt.Errorf("failed to read password: %w", err)
	}

	creds := auth.Credentials{Email: email, Password: string(raw)}
	if !creds.Valid() {
		return creds, fmt.Errorf("email and password are both required")
	}
	return creds, nil
}
