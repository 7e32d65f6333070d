// Package scraper implements product discovery and review harvesting on top
// of the selector-fallback resolver. Both stages degrade field-by-field: a
// review with an unreadable rating is still a review, and a page that fails
// entirely ends the harvest for that product without discarding what was
// already collected.
package scraper

import (
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/maltedev/amazon-reviews-scraper/internal/resolver"
)

// ErrSessionInvalid is returned when a review page redirects to sign-in,
// meaning the session cookies no longer authenticate.
var ErrSessionInvalid = errors.New("session invalid: redirected to sign-in")

// Page is the navigable browser surface both stages drive.
type Page interface {
	resolver.Queryable
	Navigate(url string) error
	URL() string
	Title() (string, error)
	Content() (string, error)
}

// Shots captures debug screenshots at degradation points: empty search
// results, empty review pages, sign-in redirects. Disabled by default.
type Shots struct {
	Enabled bool
	Dir     string
}

// capture writes a screenshot when enabled and the page supports it. Capture
// failures are logged, never surfaced.
func (s Shots) capture(page Page, name string, logger *slog.Logger) {
	if !s.Enabled {
		return
	}
	shooter, ok := page.(interface{ Screenshot(path string) error })
	if !ok {
		return
	}
	path := filepath.Join(s.Dir, name)
	if err := shooter.Screenshot(path); err != nil {
		logger.Warn("failed to capture debug screenshot", "path", path, "error", err)
		return
	}
	logger.Info("debug screenshot captured", "path", path)
}
