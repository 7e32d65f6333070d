package browser

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/playwright-community/playwright-go"
)

// Cookie mirrors the JSON cookie records produced by the cookie extractor.
// The core treats cookies as opaque pass-through data.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// ReadCookieFile parses a cookie jar file.
func ReadCookieFile(path string) ([]Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("failed to parse cookie file: %w", err)
	}

	return cookies, nil
}

// WriteCookieFile writes the jar atomically (temp file, then rename).
func WriteCookieFile(path string, cookies []Cookie) error {
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write cookie file: %w", err)
	}

	return os.Rename(tmpFile, path)
}

// LoadCookies injects a cookie jar file into the browser context before any
// navigation. Returns the number of cookies loaded.
func (b *Browser) LoadCookies(path string) (int, error) {
	cookies, err := ReadCookieFile(path)
	if err != nil {
		return 0, err
	}

	optional := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		cookie := playwright.OptionalCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   playwright.String(c.Domain),
			Path:     playwright.String(c.Path),
			HttpOnly: playwright.Bool(c.HTTPOnly),
			Secure:   playwright.Bool(c.Secure),
			SameSite: sameSiteAttribute(c.SameSite),
		}
		if c.Expires != 0 {
			cookie.Expires = playwright.Float(c.Expires)
		}
		optional = append(optional, cookie)
	}

	if err := b.context.AddCookies(optional); err != nil {
		return 0, fmt.Errorf("failed to add cookies to context: %w", err)
	}

	b.logger.Info("loaded cookies", "count", len(optional), "path", path)
	return len(optional), nil
}

// SaveCookies dumps the context's current cookie jar to a file. Returns the
// number of cookies written.
func (b *Browser) SaveCookies(path string) (int, error) {
	raw, err := b.context.Cookies()
	if err != nil {
		return 0, fmt.Errorf("failed to read context cookies: %w", err)
	}

	cookies := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		cookie := Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != nil {
			cookie.SameSite = string(*c.SameSite)
		}
		cookies = append(cookies, cookie)
	}

	if err := WriteCookieFile(path, cookies); err != nil {
		return 0, err
	}

	b.logger.Info("saved cookies", "count", len(cookies), "path", path)
	return len(cookies), nil
}

func sameSiteAttribute(value string) *playwright.SameSiteAttribute {
	switch value {
	case "Strict":
		return playwright.SameSiteAttributeStrict
	case "None":
		return playwright.SameSiteAttributeNone
	case "Lax":
		return playwright.SameSiteAttributeLax
	default:
		return nil
	}
}
