package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/amazon-reviews-scraper/internal/diag"
)

const searchResultsHTML = `<html><body>
	<div data-component-type="s-search-result" data-asin="B0A">
		<h2><a href="/dp/B0A"><span>Wireless Headphones</span></a></h2>
		<span class="a-price-whole">59</span>
		<span aria-label="4.5 out of 5 stars"></span>
	</div>
	<div data-component-type="s-search-result" data-asin="">
		<h2><a href="/dp/AD1"><span>Sponsored placeholder</span></a></h2>
	</div>
	<div data-component-type="s-search-result" data-asin="B0B">
		<h2><span>Earbuds, no link</span></h2>
	</div>
	<div data-component-type="s-search-result" data-asin="B0C">
		<h2><a href="https://www.amazon.com/dp/B0C"><span>Speaker</span></a></h2>
		<span class="a-price-whole">120</span>
	</div>
	<div data-component-type="s-search-result" data-asin="B0D">
		<h2><a href="/dp/B0D"><span>Soundbar</span></a></h2>
	</div>
</body></html>`

func TestDiscoverBoundsAndSkipsMissingASIN(t *testing.T) {
	page := newStubPage(t)
	d := NewDiscovery("https://www.amazon.com", DefaultSelectors(), nil, nil)
	page.pages[d.SearchURL("headphones")] = searchResultsHTML

	products, err := d.Discover(context.Background(), page, "headphones", 3)
	require.NoError(t, err)

	// The empty-ASIN container is skipped without consuming a slot, so the
	// three slots go to B0A, B0B and B0C.
	require.Len(t, products, 3)
	assert.Equal(t, "B0A", products[0].ASIN)
	assert.Equal(t, "B0B", products[1].ASIN)
	assert.Equal(t, "B0C", products[2].ASIN)
	assert.Equal(t, []int{1, 2, 3}, []int{products[0].Position, products[1].Position, products[2].Position})
}

func TestDiscoverFieldExtraction(t *testing.T) {
	page := newStubPage(t)
	d := NewDiscovery("https://www.amazon.com", DefaultSelectors(), nil, nil)
	page.pages[d.SearchURL("headphones")] = searchResultsHTML

	products, err := d.Discover(context.Background(), page, "headphones", 5)
	require.NoError(t, err)
	require.Len(t, products, 4)

	full := products[0]
	assert.Equal(t, "Wireless Headphones", full.Title)
	assert.Equal(t, "https://www.amazon.com/dp/B0A", full.Link)
	assert.Equal(t, "59", full.Price)
	assert.Equal(t, 4.5, full.Rating)

	// Absolute links pass through untouched.
	assert.Equal(t, "https://www.amazon.com/dp/B0C", products[2].Link)

	// Degraded container: title resolved, everything else zero.
	degraded := products[1]
	assert.Equal(t, "Earbuds, no link", degraded.Title)
	assert.Empty(t, degraded.Link)
	assert.Empty(t, degraded.Price)
	assert.Zero(t, degraded.Rating)
}

func TestDiscoverRecordsUnresolvedFields(t *testing.T) {
	rec := diag.NewRecorder()
	page := newStubPage(t)
	d := NewDiscovery("https://www.amazon.com", DefaultSelectors(), nil, rec)
	page.pages[d.SearchURL("headphones")] = searchResultsHTML

	_, err := d.Discover(context.Background(), page, "headphones", 5)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rec.Count(diag.KindFieldUnresolved), 1)
}

func TestDiscoverNoResultsIsEmptyList(t *testing.T) {
	// A keyword with no results yields an empty list, not an error; errors
	// are reserved for transport failures.
	page := newStubPage(t)
	d := NewDiscovery("https://www.amazon.com", DefaultSelectors(), nil, nil)
	page.pages[d.SearchURL("asdfqwerty")] = "<html><body><p>No results</p></body></html>"

	products, err := d.Discover(context.Background(), page, "asdfqwerty", 5)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestDiscoverAllContainersWithoutASIN(t *testing.T) {
	page := newStubPage(t)
	d := NewDiscovery("https://www.amazon.com", DefaultSelectors(), nil, nil)
	page.pages[d.SearchURL("ads")] = `<html><body>
		<div data-component-type="s-search-result" data-asin=""></div>
		<div data-component-type="s-search-result" data-asin=" "></div>
	</body></html>`

	products, err := d.Discover(context.Background(), page, "ads", 5)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestDiscoverNoResultsCapturesScreenshot(t *testing.T) {
	page := newStubPage(t)
	d := NewDiscovery("https://www.amazon.com", DefaultSelectors(), nil, nil)
	d.EnableScreenshots("/tmp/shots")
	page.pages[d.SearchURL("asdfqwerty")] = "<html><body><p>No results</p></body></html>"

	_, err := d.Discover(context.Background(), page, "asdfqwerty", 5)
	require.NoError(t, err)
	require.Len(t, page.shots, 1)
	assert.Equal(t, "/tmp/shots/debug_no_products.png", page.shots[0])
}

func TestDiscoverNoScreenshotWhenDisabled(t *testing.T) {
	page := newStubPage(t)
	d := NewDiscovery("https://www.amazon.com", DefaultSelectors(), nil, nil)
	page.pages[d.SearchURL("asdfqwerty")] = "<html><body><p>No results</p></body></html>"

	_, err := d.Discover(context.Background(), page, "asdfqwerty", 5)
	require.NoError(t, err)
	assert.Empty(t, page.shots)
}

func TestSearchURLEscapesKeyword(t *testing.T) {
	d := NewDiscovery("https://www.amazon.com", DefaultSelectors(), nil, nil)
	assert.Equal(t, "https://www.amazon.com/s?k=usb+c+cable", d.SearchURL("usb c cable"))
}
