package scraper

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/maltedev/amazon-reviews-scraper/internal/resolver"
)

// SelectorSet carries every candidate list both stages use. Candidate order
// is significance order: the most specific selector first, the loosest last.
type SelectorSet struct {
	SearchContainer resolver.Candidate
	ProductTitle    resolver.Candidate
	ProductLink     resolver.Candidate
	ProductPrice    resolver.Candidate
	ProductRating   resolver.Candidate

	ReviewContainer resolver.Candidate
	ReviewerName    resolver.Candidate
	ReviewRating    resolver.Candidate
	ReviewDate      resolver.Candidate
	ReviewBody      resolver.Candidate
	VerifiedBadge   resolver.Candidate
	HelpfulVotes    resolver.Candidate
}

// DefaultSelectors returns the built-in candidate tables.
func DefaultSelectors() SelectorSet {
	return SelectorSet{
		SearchContainer: resolver.Candidate{
			Field: "search result container",
			Selectors: []string{
				`[data-component-type="s-search-result"]`,
				`[data-asin]:not([data-asin=""])`,
				`.s-result-item[data-asin]`,
				`div.s-card-container`,
			},
		},
		ProductTitle: resolver.Candidate{
			Field: "product title",
			Selectors: []string{
				"h2 a span",
				"h2 span",
				".a-text-normal",
				".s-link-style span",
			},
		},
		ProductLink: resolver.Candidate{
			Field: "product link",
			Selectors: []string{
				"h2 a",
				"a.s-link-style",
				`a[href*="/dp/"]`,
			},
		},
		ProductPrice: resolver.Candidate{
			Field: "product price",
			Selectors: []string{
				".a-price-whole",
				".a-price .a-offscreen",
				".a-price span",
			},
		},
		ProductRating: resolver.Candidate{
			Field: "product rating",
			Selectors: []string{
				`[aria-label*="out of 5 stars"]`,
				".a-icon-star-small .a-icon-alt",
				".a-icon-star-small",
			},
		},

		ReviewContainer: resolver.Candidate{
			Field: "review container",
			Selectors: []string{
				`[data-hook="review"]`,
				`div[id^="customer_review"]`,
				".review",
			},
		},
		ReviewerName: resolver.Candidate{
			Field: "reviewer name",
			Selectors: []string{
				".a-profile-name",
				`[data-hook="review-author"]`,
				".author",
			},
		},
		ReviewRating: resolver.Candidate{
			Field: "review rating",
			Selectors: []string{
				`[data-hook="review-star-rating"] .a-icon-alt`,
				`[data-hook="review-star-rating"]`,
				`[data-hook="cmps-review-star-rating"] .a-icon-alt`,
				`[data-hook="cmps-review-star-rating"]`,
				".review-rating",
			},
		},
		ReviewDate: resolver.Candidate{
			Field: "review date",
			Selectors: []string{
				`[data-hook="review-date"]`,
				".review-date",
			},
		},
		ReviewBody: resolver.Candidate{
			Field: "review body",
			Selectors: []string{
				`[data-hook="review-body"] span`,
				`[data-hook="review-body"]`,
				".review-text-content span",
				".review-text",
			},
		},
		VerifiedBadge: resolver.Candidate{
			Field: "verified purchase badge",
			Selectors: []string{
				`[data-hook="avp-badge"]`,
				".avp-badge",
			},
		},
		HelpfulVotes: resolver.Candidate{
			Field: "helpful votes",
			Selectors: []string{
				`[data-hook="helpful-vote-statement"]`,
				".cr-vote-text",
			},
		},
	}
}

// selector override file: a mapping of field keys to selector lists. Only
// listed fields are overridden; the rest keep their defaults.
type selectorOverrides map[string][]string

// LoadSelectors merges a YAML override file into the defaults. Operators use
// this to patch a broken selector without a rebuild.
func LoadSelectors(path string) (SelectorSet, error) {
	set := DefaultSelectors()
	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return set, fmt.Errorf("failed to read selector overrides: %w", err)
	}

	var overrides selectorOverrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return set, fmt.Errorf("failed to parse selector overrides: %w", err)
	}

	fields := map[string]*resolver.Candidate{
		"search_container": &set.SearchContainer,
		"product_title":    &set.ProductTitle,
		"product_link":     &set.ProductLink,
		"product_price":    &set.ProductPrice,
		"product_rating":   &set.ProductRating,
		"review_container": &set.ReviewContainer,
		"reviewer_name":    &set.ReviewerName,
		"review_rating":    &set.ReviewRating,
		"review_date":      &set.ReviewDate,
		"review_body":      &set.ReviewBody,
		"verified_badge":   &set.VerifiedBadge,
		"helpful_votes":    &set.HelpfulVotes,
	}

	for key, selectors := range overrides {
		candidate, ok := fields[key]
		if !ok {
			return set, fmt.Errorf("unknown selector field %q", key)
		}
		if len(selectors) == 0 {
			return set, fmt.Errorf("selector field %q must list at least one selector", key)
		}
		candidate.Selectors = selectors
	}

	return set, nil
}
