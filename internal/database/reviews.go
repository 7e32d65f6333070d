package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/maltedev/amazon-reviews-scraper/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	asin       TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	link       TEXT NOT NULL DEFAULT '',
	price      TEXT NOT NULL DEFAULT '',
	rating     DOUBLE PRECISION NOT NULL DEFAULT 0,
	keyword    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reviews (
	id                BIGSERIAL PRIMARY KEY,
	product_id        TEXT NOT NULL REFERENCES products(asin),
	product_title     TEXT NOT NULL DEFAULT '',
	reviewer          TEXT NOT NULL DEFAULT '',
	rating            DOUBLE PRECISION NOT NULL DEFAULT 0,
	review_date       TEXT NOT NULL DEFAULT '',
	verified_purchase BOOLEAN NOT NULL DEFAULT false,
	content           TEXT NOT NULL DEFAULT '',
	helpful_votes     INT NOT NULL DEFAULT 0,
	scraped_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (product_id, reviewer, review_date, content)
);

CREATE INDEX IF NOT EXISTS idx_reviews_product ON reviews(product_id);
`

// ReviewStore saves discovered products and their reviews.
type ReviewStore struct {
	db *DB
}

func NewReviewStore(db *DB) *ReviewStore {
	return &ReviewStore{db: db}
}

// Migrate creates the tables when they do not exist yet.
func (s *ReviewStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// SaveRun stores one scrape's products and reviews in a single transaction.
// Products upsert on ASIN; duplicate reviews are skipped so re-running the
// same keyword does not multiply rows.
func (s *ReviewStore) SaveRun(ctx context.Context, keyword string, products []models.Product, reviews []models.Review) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		for _, p := range products {
			_, err := tx.Exec(ctx, `
				INSERT INTO products (asin, title, link, price, rating, keyword)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (asin) DO UPDATE SET
					title = EXCLUDED.title,
					link = EXCLUDED.link,
					price = EXCLUDED.price,
					rating = EXCLUDED.rating,
					keyword = EXCLUDED.keyword,
					updated_at = now()`,
				p.ASIN, p.Title, p.Link, p.Price, p.Rating, keyword)
			if err != nil {
				return fmt.Errorf("failed to upsert product %s: %w", p.ASIN, err)
			}
		}

		batch := &pgx.Batch{}
		for _, r := range reviews {
			batch.Queue(`
				INSERT INTO reviews (product_id, product_title, reviewer, rating,
					review_date, verified_purchase, content, helpful_votes)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (product_id, reviewer, review_date, content) DO NOTHING`,
				r.ProductID, r.ProductTitle, r.Reviewer, r.Rating,
				r.Date, r.VerifiedPurchase, r.Content, r.HelpfulVotes)
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()
		for range reviews {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("failed to insert review: %w", err)
			}
		}
		return nil
	})
}

// ReviewsByProduct returns stored reviews for one ASIN, newest first.
func (s *ReviewStore) ReviewsByProduct(ctx context.Context, asin string) ([]models.Review, error) {
	rows, err := s.db.Query(ctx, `
		SELECT product_id, product_title, reviewer, rating, review_date,
			verified_purchase, content, helpful_votes
		FROM reviews
		WHERE product_id = $1
		ORDER BY scraped_at DESC`, asin)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ProductID, &r.ProductTitle, &r.Reviewer, &r.Rating,
			&r.Date, &r.VerifiedPurchase, &r.Content, &r.HelpfulVotes); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
