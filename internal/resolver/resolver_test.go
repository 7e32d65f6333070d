package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/amazon-reviews-scraper/internal/diag"
)

func mustParse(t *testing.T, html string) *HTMLDocument {
	t.Helper()
	doc, err := ParseHTMLDocument(html)
	require.NoError(t, err)
	return doc
}

func TestTextFirstMatchWins(t *testing.T) {
	// Candidates 1 and 3 both match; the result must come from candidate 1.
	doc := mustParse(t, `<div>
		<span class="primary">first value</span>
		<span class="fallback">third value</span>
	</div>`)

	r := New(nil, nil)
	value, found := r.Text(doc, Candidate{
		Field:     "test field",
		Selectors: []string{".primary", ".missing", ".fallback"},
	})

	require.True(t, found)
	assert.Equal(t, "first value", value)
}

func TestTextSkipsMissingCandidates(t *testing.T) {
	doc := mustParse(t, `<div><span class="late">found late</span></div>`)

	r := New(nil, nil)
	value, found := r.Text(doc, Candidate{
		Field:     "late field",
		Selectors: []string{".nope", "#nothing", ".late"},
	})

	require.True(t, found)
	assert.Equal(t, "found late", value)
}

func TestTextExhaustionReturnsDefaultAndRecordsDiagnostic(t *testing.T) {
	doc := mustParse(t, `<div><span>irrelevant</span></div>`)
	rec := diag.NewRecorder()

	r := New(nil, rec)
	value, found := r.Text(doc, Candidate{
		Field:     "absent field",
		Selectors: []string{".a", ".b"},
	})

	assert.False(t, found)
	assert.Empty(t, value)
	assert.Equal(t, 1, rec.Count(diag.KindFieldUnresolved))
}

func TestAttributeResolution(t *testing.T) {
	doc := mustParse(t, `<div data-asin="B000TEST12"><a href="/dp/B000TEST12">link</a></div>`)

	r := New(nil, nil)
	asin, found := r.Attribute(doc, Candidate{Field: "asin", Selectors: []string{"div[data-asin]"}}, "data-asin")
	require.True(t, found)
	assert.Equal(t, "B000TEST12", asin)

	// Missing attribute on a matched element resolves to empty, still found.
	href, found := r.Attribute(doc, Candidate{Field: "href", Selectors: []string{"div[data-asin]"}}, "href")
	assert.True(t, found)
	assert.Empty(t, href)
}

func TestAttributeOrTextFallsBackToText(t *testing.T) {
	doc := mustParse(t, `<div>
		<i class="rating">4.5 out of 5 stars</i>
		<i class="labeled" aria-label="3.0 out of 5 stars">ignored</i>
	</div>`)

	r := New(nil, nil)

	value, found := r.AttributeOrText(doc, Candidate{Field: "rating", Selectors: []string{".labeled"}}, "aria-label")
	require.True(t, found)
	assert.Equal(t, "3.0 out of 5 stars", value)

	value, found = r.AttributeOrText(doc, Candidate{Field: "rating", Selectors: []string{".rating"}}, "aria-label")
	require.True(t, found)
	assert.Equal(t, "4.5 out of 5 stars", value)
}

func TestFillActsOnFirstVisibleCandidate(t *testing.T) {
	doc := mustParse(t, `<form>
		<input id="hidden-input">
		<input id="email">
	</form>`)
	doc.Hide("#hidden-input")

	r := New(nil, nil)
	ok := r.Fill(doc, Candidate{
		Field:     "email input",
		Selectors: []string{"#hidden-input", "#email"},
	}, "user@example.com")

	require.True(t, ok)
	require.Len(t, doc.Fills, 1)
	assert.Equal(t, "#email", doc.Fills[0].Selector)
	assert.Equal(t, "user@example.com", doc.Fills[0].Value)
}

func TestClickRecordsInteraction(t *testing.T) {
	doc := mustParse(t, `<div><button id="continue">Continue</button></div>`)

	r := New(nil, nil)
	ok := r.Click(doc, Candidate{Field: "continue button", Selectors: []string{"#continue"}})

	require.True(t, ok)
	assert.Equal(t, []string{"#continue"}, doc.Clicks)
}

func TestClickFailsWhenNothingVisible(t *testing.T) {
	doc := mustParse(t, `<div><button id="submit">Go</button></div>`)
	doc.Hide("#submit")

	r := New(nil, nil)
	ok := r.Click(doc, Candidate{Field: "submit button", Selectors: []string{"#submit"}})

	assert.False(t, ok)
	assert.Empty(t, doc.Clicks)
}

func TestContainersFirstSelectorWithMatchesWins(t *testing.T) {
	doc := mustParse(t, `<div>
		<div class="review">one</div>
		<div class="review">two</div>
		<div class="review">three</div>
		<div class="fallback-review">never picked</div>
	</div>`)

	r := New(nil, nil)
	containers, found := r.Containers(doc, Candidate{
		Field:     "review container",
		Selectors: []string{".no-match", ".review", ".fallback-review"},
	})

	require.True(t, found)
	require.Len(t, containers, 3)

	// Elements come back in DOM order.
	first, err := containers[0].TextContent()
	require.NoError(t, err)
	assert.Equal(t, "one", first)
}

func TestContainersExhaustion(t *testing.T) {
	doc := mustParse(t, `<div></div>`)

	r := New(nil, nil)
	containers, found := r.Containers(doc, Candidate{
		Field:     "review container",
		Selectors: []string{".a", ".b"},
	})

	assert.False(t, found)
	assert.Nil(t, containers)
}

func TestNestedLocatorScopesToContainer(t *testing.T) {
	doc := mustParse(t, `<div>
		<div class="card"><span class="name">alpha</span></div>
		<div class="card"><span class="name">beta</span></div>
	</div>`)

	r := New(nil, nil)
	containers, found := r.Containers(doc, Candidate{Field: "cards", Selectors: []string{".card"}})
	require.True(t, found)
	require.Len(t, containers, 2)

	name, found := r.Text(containers[1], Candidate{Field: "name", Selectors: []string{".name"}})
	require.True(t, found)
	assert.Equal(t, "beta", name)
}
