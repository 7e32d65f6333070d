// Package parser holds the pure text normalizers used by discovery and the
// review harvester. All functions are total: bad input yields the zero value.
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	ratingOutOfPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s+out of\s+5`)
	ratingStarsPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s+stars?`)
	reviewedInPattern  = regexp.MustCompile(`^Reviewed in .*? on\s+`)
	helpfulPattern     = regexp.MustCompile(`(\d+)\s+(?:people|person)\s+found`)
)

// ParseRating extracts a star rating from text like "4.5 out of 5 stars".
// Falls back to the "N star(s)" form. Returns 0.0 when neither matches;
// callers must pass text already isolated to the rating element, a nearby
// price would otherwise be ambiguous.
func ParseRating(text string) float64 {
	if text == "" {
		return 0
	}
	if m := ratingOutOfPattern.FindStringSubmatch(text); m != nil {
		return parseFloat(m[1])
	}
	if m := ratingStarsPattern.FindStringSubmatch(text); m != nil {
		return parseFloat(m[1])
	}
	return 0
}

// NormalizeDate strips the "Reviewed in <region> on " preface and trims the
// remainder. No calendar parsing happens; the remainder is kept verbatim.
// Applying it to already-clean input is a no-op.
func NormalizeDate(text string) string {
	return strings.TrimSpace(reviewedInPattern.ReplaceAllString(strings.TrimSpace(text), ""))
}

// ParseHelpfulVotes extracts the vote count from "N people found this
// helpful" or "1 person found this helpful". Returns 0 when the leading
// token is not numeric ("One person found this helpful") or the pattern is
// absent.
func ParseHelpfulVotes(text string) int {
	if text == "" {
		return 0
	}
	m := helpfulPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
