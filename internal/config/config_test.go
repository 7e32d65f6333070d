package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrapeConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ScrapeConfig
		wantErr bool
	}{
		{"Valid minimal", ScrapeConfig{Keyword: "laptop bag", MaxProducts: 3, MaxPages: 2}, false},
		{"Valid with filter", ScrapeConfig{Keyword: "mouse", StarFilter: "positive", MaxProducts: 1, MaxPages: 1}, false},
		{"All filter", ScrapeConfig{Keyword: "mouse", StarFilter: "all", MaxProducts: 1, MaxPages: 1}, false},
		{"Empty keyword", ScrapeConfig{MaxProducts: 3, MaxPages: 2}, true},
		{"Bad filter", ScrapeConfig{Keyword: "x", StarFilter: "six", MaxProducts: 3, MaxPages: 2}, true},
		{"Zero products", ScrapeConfig{Keyword: "x", MaxProducts: 0, MaxPages: 2}, true},
		{"Zero pages", ScrapeConfig{Keyword: "x", MaxProducts: 3, MaxPages: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStarFilterParam(t *testing.T) {
	tests := []struct {
		filter   string
		expected string
	}{
		{"", ""},
		{"all", ""},
		{"5", "five_star"},
		{"1", "one_star"},
		{"positive", "positive"},
		{"critical", "critical"},
	}

	for _, tt := range tests {
		sc := ScrapeConfig{StarFilter: tt.filter}
		assert.Equal(t, tt.expected, sc.StarFilterParam(), "filter %q", tt.filter)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://www.amazon.com", cfg.Scraper.BaseURL)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "8080", cfg.Server.Port)
}
