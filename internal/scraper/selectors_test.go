package scraper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSelectorsEmptyPathKeepsDefaults(t *testing.T) {
	set, err := LoadSelectors("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSelectors(), set)
}

func TestLoadSelectorsOverridesListedFieldsOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	content := `review_container:
  - ".custom-review"
  - "[data-hook=\"review\"]"
product_title:
  - "h2 .custom-title"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	set, err := LoadSelectors(path)
	require.NoError(t, err)

	assert.Equal(t, []string{".custom-review", `[data-hook="review"]`}, set.ReviewContainer.Selectors)
	assert.Equal(t, []string{"h2 .custom-title"}, set.ProductTitle.Selectors)
	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultSelectors().ReviewBody, set.ReviewBody)
}

func TestLoadSelectorsRejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("no_such_field:\n  - .x\n"), 0644))

	_, err := LoadSelectors(path)
	assert.Error(t, err)
}

func TestLoadSelectorsRejectsEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("review_body: []\n"), 0644))

	_, err := LoadSelectors(path)
	assert.Error(t, err)
}

func TestLoadSelectorsMissingFile(t *testing.T) {
	_, err := LoadSelectors(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
