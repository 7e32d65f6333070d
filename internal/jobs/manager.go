// Package jobs runs scrapes asynchronously for the HTTP API. Jobs are kept in
// memory only; restarting the server forgets finished jobs.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maltedev/amazon-reviews-scraper/internal/config"
	"github.com/maltedev/amazon-reviews-scraper/internal/metrics"
	"github.com/maltedev/amazon-reviews-scraper/internal/scraper"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Runner executes one scrape. The manager does not know about browsers; the
// composition root supplies a runner that owns page lifecycles.
type Runner interface {
	Run(ctx context.Context, cfg config.ScrapeConfig) (*scraper.Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, cfg config.ScrapeConfig) (*scraper.Result, error)

func (f RunnerFunc) Run(ctx context.Context, cfg config.ScrapeConfig) (*scraper.Result, error) {
	return f(ctx, cfg)
}

type Job struct {
	ID         string              `json:"id"`
	Status     Status              `json:"status"`
	Config     config.ScrapeConfig `json:"config"`
	Result     *scraper.Result     `json:"result,omitempty"`
	Error      string              `json:"error,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	StartedAt  *time.Time          `json:"started_at,omitempty"`
	FinishedAt *time.Time          `json:"finished_at,omitempty"`
}

type Manager struct {
	runner Runner
	logger *slog.Logger

	// jobs outlive the submitting request, so they run on the manager's own
	// context rather than the caller's.
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.RWMutex
	jobs map[string]*Job
	wg   sync.WaitGroup

	// serialize gates job execution so only one browser session runs at a
	// time.
	serialize chan struct{}
}

func NewManager(runner Runner, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		runner:    runner,
		logger:    logger.With("component", "jobs"),
		ctx:       ctx,
		cancel:    cancel,
		jobs:      make(map[string]*Job),
		serialize: make(chan struct{}, 1),
	}
	return m
}

// Submit validates the config, registers a job and starts it in the
// background.
func (m *Manager) Submit(cfg config.ScrapeConfig) (*Job, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job config: %w", err)
	}

	job := &Job{
		ID:        uuid.New().String(),
		Status:    StatusPending,
		Config:    cfg,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	metrics.JobsStarted.Inc()
	m.logger.Info("job submitted", "job_id", job.ID, "keyword", cfg.Keyword)

	m.wg.Add(1)
	go m.run(m.ctx, job.ID)

	return m.snapshot(job.ID), nil
}

// Get returns a copy of the job, or nil when unknown.
func (m *Manager) Get(id string) *Job {
	return m.snapshot(id)
}

// List returns copies of all jobs, unordered.
func (m *Manager) List() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]*Job, 0, len(m.jobs))
	for id := range m.jobs {
		jobs = append(jobs, m.copyLocked(id))
	}
	return jobs
}

// Stop cancels running jobs. Pending jobs fail with context.Canceled.
func (m *Manager) Stop() {
	m.cancel()
}

// Wait blocks until all running jobs finish. Used during shutdown.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context, id string) {
	defer m.wg.Done()

	select {
	case m.serialize <- struct{}{}:
		defer func() { <-m.serialize }()
	case <-ctx.Done():
		m.finish(id, nil, ctx.Err())
		return
	}

	now := time.Now()
	m.update(id, func(j *Job) {
		j.Status = StatusRunning
		j.StartedAt = &now
	})

	job := m.snapshot(id)
	result, err := m.runner.Run(ctx, job.Config)
	m.finish(id, result, err)
}

func (m *Manager) finish(id string, result *scraper.Result, err error) {
	now := time.Now()
	m.update(id, func(j *Job) {
		j.Result = result
		j.FinishedAt = &now
		if err != nil {
			j.Status = StatusFailed
			j.Error = err.Error()
			metrics.JobsFailed.Inc()
			m.logger.Error("job failed", "job_id", id, "error", err)
			return
		}
		j.Status = StatusCompleted
		m.logger.Info("job completed", "job_id", id,
			"products", len(result.Products), "reviews", len(result.Reviews))
	})
}

func (m *Manager) update(id string, fn func(*Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		fn(job)
	}
}

func (m *Manager) snapshot(id string) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.copyLocked(id)
}

func (m *Manager) copyLocked(id string) *Job {
	job, ok := m.jobs[id]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}
