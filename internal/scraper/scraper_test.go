package scraper

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maltedev/amazon-reviews-scraper/internal/resolver"
)

// stubPage serves canned HTML per URL and records every navigation.
type stubPage struct {
	*resolver.HTMLDocument
	url     string
	content string

	// pages maps a URL to the HTML served for it. A urlAfter entry rewrites
	// the page URL after navigation, simulating a redirect.
	pages    map[string]string
	urlAfter map[string]string
	visited  []string
	shots    []string
}

func newStubPage(t *testing.T) *stubPage {
	t.Helper()
	doc, err := resolver.ParseHTMLDocument("<html></html>")
	require.NoError(t, err)
	return &stubPage{
		HTMLDocument: doc,
		pages:        make(map[string]string),
		urlAfter:     make(map[string]string),
	}
}

func (p *stubPage) Navigate(url string) error {
	p.visited = append(p.visited, url)
	p.url = url
	if redirect, ok := p.urlAfter[url]; ok {
		p.url = redirect
	}
	html, ok := p.pages[url]
	if !ok {
		html = "<html><body></body></html>"
	}
	p.content = html
	return p.SetHTML(html)
}

func (p *stubPage) URL() string              { return p.url }
func (p *stubPage) Title() (string, error)   { return "Amazon.com", nil }
func (p *stubPage) Content() (string, error) { return p.content, nil }

func (p *stubPage) Screenshot(path string) error {
	p.shots = append(p.shots, path)
	return nil
}
