package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/maltedev/amazon-reviews-scraper/internal/auth"
	"github.com/maltedev/amazon-reviews-scraper/internal/browser"
	"github.com/maltedev/amazon-reviews-scraper/internal/config"
	"github.com/maltedev/amazon-reviews-scraper/internal/diag"
	"github.com/maltedev/amazon-reviews-scraper/pkg/logger"
)

// cookie-extractor signs in to Amazon once and dumps the session cookies to a
// jar file for later scraper runs. The browser always runs headful so the
// user can finish CAPTCHAs or MFA by hand.
func main() {
	var (
		output  = flag.String("output", "amazon_cookies.json", "cookie jar file to write")
		baseURL = flag.String("base-url", "", "marketplace URL (defaults to SCRAPER_BASE_URL)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	if *baseURL == "" {
		*baseURL = cfg.Scraper.BaseURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	creds, ok := auth.CredentialsFromEnv()
	if !ok {
		creds, err = promptCredentials()
		if err != nil {
			log.Error("could not read credentials", "error", err)
			os.Exit(1)
		}
	}

	opts := browserOptions(cfg)
	b, err := browser.New(opts)
	if err != nil {
		log.Error("failed to start browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	page, err := b.NewPage()
	if err != nil {
		log.Error("failed to open page", "error", err)
		os.Exit(1)
	}
	defer page.Close()

	recorder := diag.NewRecorder()
	automaton := auth.New(auth.Options{
		BaseURL: *baseURL,
		Settle:  cfg.Scraper.SettleDelay,
	}, log, recorder)

	state, err := automaton.Run(ctx, page, creds)
	if err != nil {
		log.Error("sign-in attempt failed", "error", err)
		os.Exit(1)
	}
	log.Info("sign-in attempt finished", "state", state.String())

	if state.NeedsManual() {
		fmt.Println()
		fmt.Println("Automatic sign-in did not complete:", state.String())
		fmt.Println("Finish signing in inside the browser window, then press Enter.")
		bufio.NewReader(os.Stdin).ReadString('\n')
	}

	count, err := b.SaveCookies(*output)
	if err != nil {
		log.Error("failed to save cookies", "error", err)
		os.Exit(1)
	}

	fmt.Printf("saved %d cookies to %s\n", count, *output)
}

func browserOptions(cfg *config.Config) *browser.Options {
	return &browser.Options{
		Headless:       false,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      cfg.Browser.UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
	}
}

func promptCredentials() (auth.Credentials, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Amazon email: ")
	email, _ := reader.ReadString('\n')

	fmt.Print("Amazon password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return auth.Credentials{}, fmt.Errorf("failed to read password: %w", err)
	}

	creds := auth.Credentials{
		Email:    strings.TrimSpace(email),
		Password: string(raw),
	}
	if !creds.Valid() {
		return creds, fmt.Errorf("email and password are both required")
	}
	return creds, nil
}
