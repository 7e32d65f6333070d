// Package export writes scrape results to CSV and JSON files. Writers take
// an io.Writer; the file-path helpers wrap them with atomic create-and-close
// handling and derive output names from the search keyword.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/maltedev/amazon-reviews-scraper/internal/models"
)

var csvHeader = []string{
	"product_id",
	"product_title",
	"reviewer",
	"rating",
	"date",
	"verified_purchase",
	"content",
	"helpful_votes",
}

// WriteCSV writes one row per review with a fixed header. Zero-value fields
// come out as empty strings, "false" and "0".
func WriteCSV(w io.Writer, reviews []models.Review) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, r := range reviews {
		record := []string{
			r.ProductID,
			r.ProductTitle,
			r.Reviewer,
			formatRating(r.Rating),
			r.Date,
			strconv.FormatBool(r.VerifiedPurchase),
			r.Content,
			strconv.Itoa(r.HelpfulVotes),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the review document envelope, indented for hand
// inspection.
func WriteJSON(w io.Writer, doc *models.ReviewDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode json document: %w", err)
	}
	return nil
}

// WriteCSVFile writes reviews to path via a temp file and rename.
func WriteCSVFile(path string, reviews []models.Review) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteCSV(w, reviews)
	})
}

// WriteJSONFile writes the document to path via a temp file and rename.
func WriteJSONFile(path string, doc *models.ReviewDocument) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteJSON(w, doc)
	})
}

// OutputName derives a file name from the search keyword: spaces become
// underscores, anything but letters, digits, dash and underscore is dropped.
func OutputName(keyword, extension string) string {
	var b strings.Builder
	for _, r := range strings.ReplaceAll(strings.TrimSpace(keyword), " ", "_") {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" {
		name = "reviews"
	}
	return fmt.Sprintf("reviews_%s.%s", name, extension)
}

func writeFile(path string, write func(io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close output file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move output file into place: %w", err)
	}
	return nil
}

func formatRating(rating float64) string {
	if rating == 0 {
		return ""
	}
	return strconv.FormatFloat(rating, 'f', 1, 64)
}
