package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/maltedev/amazon-reviews-scraper/internal/diag"
	"github.com/maltedev/amazon-reviews-scraper/internal/metrics"
	"github.com/maltedev/amazon-reviews-scraper/internal/models"
	"github.com/maltedev/amazon-reviews-scraper/internal/parser"
	"github.com/maltedev/amazon-reviews-scraper/internal/resolver"
)

// Discovery resolves a keyword search into a bounded list of products.
type Discovery struct {
	resolver  *resolver.Resolver
	selectors SelectorSet
	baseURL   string
	logger    *slog.Logger
	diag      *diag.Recorder
	shots     Shots
}

func NewDiscovery(baseURL string, selectors SelectorSet, logger *slog.Logger, rec *diag.Recorder) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = "https://www.amazon.com"
	}
	return &Discovery{
		resolver:  resolver.New(logger, rec),
		selectors: selectors,
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger.With("component", "discovery"),
		diag:      rec,
	}
}

// EnableScreenshots turns on debug screenshots at degradation points.
func (d *Discovery) EnableScreenshots(dir string) {
	d.shots = Shots{Enabled: true, Dir: dir}
}

// SearchURL builds the keyword search URL.
func (d *Discovery) SearchURL(keyword string) string {
	return fmt.Sprintf("%s/s?k=%s", d.baseURL, url.QueryEscape(keyword))
}

// Discover navigates the keyword search and extracts up to maxProducts
// products. Containers without a usable ASIN are skipped and do not count
// against the limit. Positions are assigned in result order, starting at 1.
func (d *Discovery) Discover(ctx context.Context, page Page, keyword string, maxProducts int) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	searchURL := d.SearchURL(keyword)
	d.logger.Info("searching products", "keyword", keyword, "url", searchURL)

	if err := page.Navigate(searchURL); err != nil {
		return nil, fmt.Errorf("failed to load search results: %w", err)
	}
	metrics.PagesFetched.WithLabelValues("search").Inc()

	products := []models.Product{}

	// No matching container is the documented "no results" outcome, not a
	// failure; only transport problems surface as errors.
	containers, ok := d.resolver.Containers(page, d.selectors.SearchContainer)
	if !ok || len(containers) == 0 {
		d.logger.Info("no search result containers", "keyword", keyword)
		d.shots.capture(page, "debug_no_products.png", d.logger)
		return products, nil
	}
	d.logger.Info("search containers resolved", "count", len(containers))

	for _, container := range containers {
		if maxProducts > 0 && len(products) >= maxProducts {
			break
		}
		if err := ctx.Err(); err != nil {
			return products, err
		}

		product, ok := d.extractProduct(container)
		if !ok {
			continue
		}
		product.Position = len(products) + 1
		products = append(products, product)
		metrics.ProductsDiscovered.Inc()
	}

	if len(products) == 0 {
		d.logger.Info("containers resolved but none yielded a product", "keyword", keyword)
		d.shots.capture(page, "debug_no_products.png", d.logger)
		return products, nil
	}
	d.logger.Info("products discovered", "count", len(products))
	return products, nil
}

// extractProduct reads one search result container. The ASIN is the identity
// field: without it the container is dropped. Everything else degrades to its
// zero value.
func (d *Discovery) extractProduct(container resolver.Element) (models.Product, bool) {
	asin, err := container.GetAttribute("data-asin")
	if err != nil || strings.TrimSpace(asin) == "" {
		return models.Product{}, false
	}

	product := models.Product{ASIN: strings.TrimSpace(asin)}

	if title, ok := d.resolver.Text(container, d.selectors.ProductTitle); ok {
		product.Title = title
	}

	if href, ok := d.resolver.Attribute(container, d.selectors.ProductLink, "href"); ok && href != "" {
		product.Link = d.absoluteURL(href)
	}

	if price, ok := d.resolver.Text(container, d.selectors.ProductPrice); ok {
		product.Price = price
	}

	if label, ok := d.resolver.AttributeOrText(container, d.selectors.ProductRating, "aria-label"); ok {
		product.Rating = parser.ParseRating(label)
	}

	return product, true
}

func (d *Discovery) absoluteURL(href string) string {
	if strings.HasPrefix(href, "/") {
		return d.baseURL + href
	}
	return href
}
