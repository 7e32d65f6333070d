package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maltedev/amazon-reviews-scraper/internal/diag"
	"github.com/maltedev/amazon-reviews-scraper/internal/metrics"
	"github.com/maltedev/amazon-reviews-scraper/internal/models"
	"github.com/maltedev/amazon-reviews-scraper/internal/parser"
	"github.com/maltedev/amazon-reviews-scraper/internal/ratelimit"
	"github.com/maltedev/amazon-reviews-scraper/internal/resolver"
)

// Harvester walks a product's review pages in order and extracts reviews
// field-by-field.
type Harvester struct {
	resolver  *resolver.Resolver
	selectors SelectorSet
	baseURL   string
	pacer     ratelimit.Pacer
	logger    *slog.Logger
	diag      *diag.Recorder
	shots     Shots
}

func NewHarvester(baseURL string, selectors SelectorSet, pacer ratelimit.Pacer, logger *slog.Logger, rec *diag.Recorder) *Harvester {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = "https://www.amazon.com"
	}
	return &Harvester{
		resolver:  resolver.New(logger, rec),
		selectors: selectors,
		baseURL:   strings.TrimRight(baseURL, "/"),
		pacer:     pacer,
		logger:    logger.With("component", "harvester"),
		diag:      rec,
	}
}

// EnableScreenshots turns on debug screenshots at degradation points.
func (h *Harvester) EnableScreenshots(dir string) {
	h.shots = Shots{Enabled: true, Dir: dir}
}

// ReviewPageURL builds the review listing URL for one page. starFilter is
// the query parameter value ("five_star", "critical", ...), empty for all.
func (h *Harvester) ReviewPageURL(asin string, pageNumber int, starFilter string) string {
	u := fmt.Sprintf("%s/product-reviews/%s/?pageNumber=%d", h.baseURL, asin, pageNumber)
	if starFilter != "" {
		u += "&filterByStar=" + starFilter
	}
	return u
}

// Harvest collects reviews for one product, visiting pages 1..maxPages and
// stopping early at the first page with no review containers. A sign-in
// redirect ends the harvest with ErrSessionInvalid; reviews collected before
// the failure are still returned.
func (h *Harvester) Harvest(ctx context.Context, page Page, product models.Product, maxPages int, starFilter string) ([]models.Review, error) {
	var reviews []models.Review

	for pageNum := 1; pageNum <= maxPages; pageNum++ {
		if h.pacer != nil {
			if err := h.pacer.Wait(ctx); err != nil {
				return reviews, err
			}
		}

		pageURL := h.ReviewPageURL(product.ASIN, pageNum, starFilter)
		h.logger.Info("fetching review page", "asin", product.ASIN, "page", pageNum)

		if err := page.Navigate(pageURL); err != nil {
			return reviews, fmt.Errorf("failed to load review page %d: %w", pageNum, err)
		}
		metrics.PagesFetched.WithLabelValues("reviews").Inc()

		if h.redirectedToSignIn(page.URL()) {
			h.logger.Warn("review page redirected to sign-in", "asin", product.ASIN, "page", pageNum)
			h.diag.Record(diag.KindSessionInvalid, "harvester", "", page.URL())
			metrics.SessionInvalidations.Inc()
			h.shots.capture(page, "debug_login_redirect.png", h.logger)
			return reviews, ErrSessionInvalid
		}

		containers, ok := h.resolver.Containers(page, h.selectors.ReviewContainer)
		if !ok || len(containers) == 0 {
			h.logger.Info("no reviews on page, stopping", "asin", product.ASIN, "page", pageNum)
			h.shots.capture(page, fmt.Sprintf("debug_reviews_page_%d.png", pageNum), h.logger)
			break
		}

		for _, container := range containers {
			if err := ctx.Err(); err != nil {
				return reviews, err
			}
			reviews = append(reviews, h.extractReview(container, product))
			metrics.ReviewsScraped.Inc()
		}
		h.logger.Info("review page harvested", "asin", product.ASIN, "page", pageNum, "total", len(reviews))
	}

	return reviews, nil
}

// redirectedToSignIn detects the auth redirect by URL shape alone.
func (h *Harvester) redirectedToSignIn(url string) bool {
	lower := strings.ToLower(url)
	return strings.Contains(lower, "signin") || strings.Contains(lower, "/ap/")
}

// extractReview reads one review container. Every field degrades
// independently to its zero value; the review is emitted regardless.
func (h *Harvester) extractReview(container resolver.Element, product models.Product) models.Review {
	review := models.Review{
		ProductID:    product.ASIN,
		ProductTitle: product.Title,
	}

	if name, ok := h.resolver.Text(container, h.selectors.ReviewerName); ok {
		review.Reviewer = name
	}

	if label, ok := h.resolver.AttributeOrText(container, h.selectors.ReviewRating, "aria-label"); ok {
		review.Rating = parser.ParseRating(label)
	}

	if date, ok := h.resolver.Text(container, h.selectors.ReviewDate); ok {
		review.Date = parser.NormalizeDate(date)
	}

	if body, ok := h.resolver.Text(container, h.selectors.ReviewBody); ok {
		review.Content = body
	}

	// Badge presence is the signal; its text is irrelevant.
	review.VerifiedPurchase = h.resolver.Visible(container, h.selectors.VerifiedBadge)

	if votes, ok := h.resolver.Text(container, h.selectors.HelpfulVotes); ok {
		review.HelpfulVotes = parser.ParseHelpfulVotes(votes)
	}

	return review
}
