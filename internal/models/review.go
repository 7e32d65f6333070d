package models

import (
	"time"
)

// Product is one search result, immutable after discovery.
type Product struct {
	ASIN     string  `json:"asin"`
	Title    string  `json:"title"`
	Link     string  `json:"link"`
	Price    string  `json:"price"`
	Rating   float64 `json:"rating"`
	Position int     `json:"position"`
}

// Review is one parsed customer review, immutable after extraction.
// Unresolved fields keep their zero value; the review is still emitted.
type Review struct {
	ProductID        string  `json:"product_id"`
	ProductTitle     string  `json:"product_title"`
	Reviewer         string  `json:"reviewer"`
	Rating           float64 `json:"rating"`
	Date             string  `json:"date"`
	VerifiedPurchase bool    `json:"verified_purchase"`
	Content          string  `json:"content"`
	HelpfulVotes     int     `json:"helpful_votes"`
}

// ReviewDocument is the JSON output envelope.
type ReviewDocument struct {
	ScrapeDate   time.Time `json:"scrape_date"`
	TotalReviews int       `json:"total_reviews"`
	Reviews      []Review  `json:"reviews"`
}

func NewReviewDocument(reviews []Review) *ReviewDocument {
	if reviews == nil {
		reviews = []Review{}
	}
	return &ReviewDocument{
		ScrapeDate:   time.Now(),
		TotalReviews: len(reviews),
		Reviews:      reviews,
	}
}

// StarFilters maps user-facing filter names to the query parameter values
// understood by the review listing.
var StarFilters = map[string]string{
	"1":        "one_star",
	"2":        "two_star",
	"3":        "three_star",
	"4":        "four_star",
	"5":        "five_star",
	"positive": "positive",
	"critical": "critical",
}

// ValidStarFilter reports whether name is a known filter or the "all"
// sentinel (empty string and "all" both mean unfiltered).
func ValidStarFilter(name string) bool {
	if name == "" || name == "all" {
		return true
	}
	_, ok := StarFilters[name]
	return ok
}
