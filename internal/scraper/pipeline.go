package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maltedev/amazon-reviews-scraper/internal/auth"
	"github.com/maltedev/amazon-reviews-scraper/internal/config"
	"github.com/maltedev/amazon-reviews-scraper/internal/diag"
	"github.com/maltedev/amazon-reviews-scraper/internal/models"
	"github.com/maltedev/amazon-reviews-scraper/internal/ratelimit"
)

// Authenticator is the unattended sign-in attempt the pipeline may run once
// before discovery.
type Authenticator interface {
	Run(ctx context.Context, page auth.Page, creds auth.Credentials) (auth.State, error)
}

// Result is everything one pipeline run produced. Partial results survive
// mid-run failures: SessionExpired marks a harvest cut short by a sign-in
// redirect.
type Result struct {
	Keyword        string           `json:"keyword"`
	StarFilter     string           `json:"star_filter"`
	AuthState      string           `json:"auth_state,omitempty"`
	Products       []models.Product `json:"products"`
	Reviews        []models.Review  `json:"reviews"`
	SessionExpired bool             `json:"session_expired"`
	Degradations   []diag.Event     `json:"degradations,omitempty"`
	StartedAt      time.Time        `json:"started_at"`
	Duration       time.Duration    `json:"duration"`
}

// Pipeline sequences authentication, discovery and harvesting over a single
// page. Stages run strictly in order; reviews are harvested product by
// product so one bad product cannot poison another's results.
type Pipeline struct {
	auth       Authenticator
	discovery  *Discovery
	harvester  *Harvester
	productGap ratelimit.Pacer
	logger     *slog.Logger
	diag       *diag.Recorder
}

func NewPipeline(authenticator Authenticator, discovery *Discovery, harvester *Harvester, logger *slog.Logger, rec *diag.Recorder) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		auth:      authenticator,
		discovery: discovery,
		harvester: harvester,
		logger:    logger.With("component", "pipeline"),
		diag:      rec,
	}
}

// SetProductPacer adds a wait between consecutive products, on top of the
// harvester's per-page pacing.
func (p *Pipeline) SetProductPacer(pacer ratelimit.Pacer) {
	p.productGap = pacer
}

// Run executes one scrape. Authentication runs only when credentials are
// supplied; an unverified outcome is logged and the run continues without a
// session, harvesting whatever the anonymous listing serves.
func (p *Pipeline) Run(ctx context.Context, page Page, cfg config.ScrapeConfig, creds auth.Credentials) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scrape config: %w", err)
	}

	result := &Result{
		Keyword:    cfg.Keyword,
		StarFilter: cfg.StarFilter,
		Products:   []models.Product{},
		Reviews:    []models.Review{},
		StartedAt:  time.Now(),
	}
	defer func() {
		result.Duration = time.Since(result.StartedAt)
		result.Degradations = p.diag.Events()
	}()

	if p.auth != nil && creds.Valid() {
		state, err := p.auth.Run(ctx, page, creds)
		result.AuthState = state.String()
		if err != nil {
			return result, fmt.Errorf("authentication failed: %w", err)
		}
		if state.NeedsManual() {
			p.logger.Warn("continuing without a verified session", "state", state.String())
		}
	}

	products, err := p.discovery.Discover(ctx, page, cfg.Keyword, cfg.MaxProducts)
	if err != nil {
		return result, err
	}
	result.Products = products
	if len(products) == 0 {
		// Legitimate zero-result keyword, not a failure.
		p.logger.Info("no products found", "keyword", cfg.Keyword)
		return result, nil
	}

	starFilter := cfg.StarFilterParam()
	for i, product := range products {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if i > 0 && p.productGap != nil {
			if err := p.productGap.Wait(ctx); err != nil {
				return result, err
			}
		}

		reviews, err := p.harvester.Harvest(ctx, page, product, cfg.MaxPages, starFilter)
		result.Reviews = append(result.Reviews, reviews...)

		if errors.Is(err, ErrSessionInvalid) {
			// No point visiting further products with a dead session.
			result.SessionExpired = true
			p.logger.Warn("session expired mid-run, stopping",
				"asin", product.ASIN, "reviews_so_far", len(result.Reviews))
			return result, err
		}
		if err != nil {
			p.logger.Error("harvest failed for product", "asin", product.ASIN, "error", err)
			continue
		}
	}

	p.logger.Info("pipeline complete",
		"products", len(result.Products),
		"reviews", len(result.Reviews),
		"duration", time.Since(result.StartedAt))
	return result, nil
}
