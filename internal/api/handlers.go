// Package api exposes the scraper over HTTP: submit a scrape job, poll its
// status, fetch stored reviews.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maltedev/amazon-reviews-scraper/internal/config"
	"github.com/maltedev/amazon-reviews-scraper/internal/database"
	"github.com/maltedev/amazon-reviews-scraper/internal/jobs"
)

type Handlers struct {
	jobs   *jobs.Manager
	store  *database.ReviewStore
	logger *slog.Logger
}

// NewHandlers wires the API surface. store may be nil when persistence is
// disabled; the stored-reviews endpoint then answers 404.
func NewHandlers(manager *jobs.Manager, store *database.ReviewStore, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		jobs:   manager,
		store:  store,
		logger: logger.With("component", "api"),
	}
}

// CreateJobResponse represents the job creation response
type CreateJobResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CreateJob accepts a scrape config and starts it asynchronously.
func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req config.ScrapeConfig
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.MaxProducts <= 0 {
		req.MaxProducts = 5
	}
	if req.MaxPages <= 0 {
		req.MaxPages = 3
	}
	req.Headless = true

	job, err := h.jobs.Submit(req)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, CreateJobResponse{
		JobID:   job.ID,
		Status:  string(job.Status),
		Message: "Job created successfully",
	})
}

// GetJob returns job status and, once finished, its result.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		h.respondError(w, http.StatusBadRequest, "job ID is required")
		return
	}

	job := h.jobs.Get(jobID)
	if job == nil {
		h.respondError(w, http.StatusNotFound, "job not found")
		return
	}

	h.respondJSON(w, http.StatusOK, job)
}

// ListJobs returns all known jobs.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.jobs.List())
}

// GetProductReviews returns persisted reviews for one ASIN.
func (h *Handlers) GetProductReviews(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.respondError(w, http.StatusNotFound, "persistence is disabled")
		return
	}

	asin := chi.URLParam(r, "asin")
	if asin == "" {
		h.respondError(w, http.StatusBadRequest, "asin is required")
		return
	}

	reviews, err := h.store.ReviewsByProduct(r.Context(), asin)
	if err != nil {
		h.logger.Error("failed to load reviews", "asin", asin, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to load reviews")
		return
	}

	h.respondJSON(w, http.StatusOK, reviews)
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
