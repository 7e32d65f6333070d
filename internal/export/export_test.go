package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/amazon-reviews-scraper/internal/models"
)

func sampleReviews() []models.Review {
	return []models.Review{
		{
			ProductID:        "B0A",
			ProductTitle:     "Wireless Headphones",
			Reviewer:         "Alice",
			Rating:           4.5,
			Date:             "March 5, 2024",
			VerifiedPurchase: true,
			Content:          "Great sound, \"studio quality\"",
			HelpfulVotes:     12,
		},
		{
			ProductID:    "B0A",
			ProductTitle: "Wireless Headphones",
			Reviewer:     "Bob",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReviews()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{
		"B0A", "Wireless Headphones", "Alice", "4.5", "March 5, 2024",
		"true", `Great sound, "studio quality"`, "12",
	}, records[1])

	// Zero-value fields degrade to empty, false and 0.
	assert.Equal(t, []string{"B0A", "Wireless Headphones", "Bob", "", "", "false", "", "0"}, records[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "header only")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	doc := models.NewReviewDocument(sampleReviews())
	require.NoError(t, WriteJSON(&buf, doc))

	var decoded models.ReviewDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 2, decoded.TotalReviews)
	assert.Equal(t, "Alice", decoded.Reviews[0].Reviewer)
}

func TestWriteFilesAtomically(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "reviews.csv")
	require.NoError(t, WriteCSVFile(csvPath, sampleReviews()))
	_, err := os.Stat(csvPath)
	require.NoError(t, err)
	_, err = os.Stat(csvPath + ".tmp")
	assert.True(t, os.IsNotExist(err))

	jsonPath := filepath.Join(dir, "reviews.json")
	require.NoError(t, WriteJSONFile(jsonPath, models.NewReviewDocument(nil)))
	_, err = os.Stat(jsonPath)
	require.NoError(t, err)
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		keyword   string
		extension string
		want      string
	}{
		{"wireless headphones", "csv", "reviews_wireless_headphones.csv"},
		{"usb-c cable", "json", "reviews_usb-c_cable.json"},
		{"  padded  ", "csv", "reviews_padded.csv"},
		{"日本語", "csv", "reviews_reviews.csv"},
		{"", "json", "reviews_reviews.json"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputName(tt.keyword, tt.extension), "keyword %q", tt.keyword)
	}
}
