package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/maltedev/amazon-reviews-scraper/internal/resolver"
)

// Page wraps a live playwright page with the small surface the automaton and
// the scrapers need: navigation, current URL, selector queries, screenshots.
type Page struct {
	page    playwright.Page
	timeout time.Duration
}

// Navigate loads a URL and waits for the DOM to be ready. A timeout is a
// step-local failure for the caller to absorb, not a crash.
func (p *Page) Navigate(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(p.timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (p *Page) URL() string {
	return p.page.URL()
}

func (p *Page) Title() (string, error) {
	return p.page.Title()
}

// Content returns the full page HTML, used only for secondary text
// heuristics.
func (p *Page) Content() (string, error) {
	return p.page.Content()
}

func (p *Page) Locator(selector string) resolver.Element {
	return resolver.WrapLocator(p.page.Locator(selector))
}

// Screenshot captures the viewport to the given path for debugging
// degraded states. Failures are returned but callers usually only log them.
func (p *Page) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path: playwright.String(path),
	})
	if err != nil {
		return fmt.Errorf("failed to take screenshot: %w", err)
	}
	return nil
}

func (p *Page) Close() error {
	return p.page.Close()
}
