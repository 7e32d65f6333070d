// Package metrics exposes the scraper's Prometheus collectors. All
// collectors are registered on the default registry and served from the
// server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProductsDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_products_discovered_total",
		Help: "Products extracted from search results.",
	})

	ReviewsScraped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_reviews_scraped_total",
		Help: "Reviews extracted from review pages.",
	})

	PagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scraper_pages_fetched_total",
		Help: "Pages navigated to, by kind.",
	}, []string{"kind"})

	FieldsUnresolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_fields_unresolved_total",
		Help: "Fields where every selector candidate was exhausted.",
	})

	SessionInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_session_invalidations_total",
		Help: "Harvest runs cut short by a sign-in redirect.",
	})

	JobsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_jobs_started_total",
		Help: "Scrape jobs accepted by the job manager.",
	})

	JobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_jobs_failed_total",
		Help: "Scrape jobs that ended in an error.",
	})
)
