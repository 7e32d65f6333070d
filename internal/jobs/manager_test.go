package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/amazon-reviews-scraper/internal/config"
	"github.com/maltedev/amazon-reviews-scraper/internal/models"
	"github.com/maltedev/amazon-reviews-scraper/internal/scraper"
)

func validConfig() config.ScrapeConfig {
	return config.ScrapeConfig{
		Keyword:     "headphones",
		MaxProducts: 1,
		MaxPages:    1,
	}
}

func TestSubmitRunsJobToCompletion(t *testing.T) {
	runner := RunnerFunc(func(ctx context.Context, cfg config.ScrapeConfig) (*scraper.Result, error) {
		return &scraper.Result{
			Keyword:  cfg.Keyword,
			Products: []models.Product{{ASIN: "B0A", Position: 1}},
			Reviews:  []models.Review{{ProductID: "B0A"}},
		}, nil
	})
	m := NewManager(runner, nil)

	job, err := m.Submit(validConfig())
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)

	m.Wait()

	done := m.Get(job.ID)
	require.NotNil(t, done)
	assert.Equal(t, StatusCompleted, done.Status)
	require.NotNil(t, done.Result)
	assert.Len(t, done.Result.Reviews, 1)
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.FinishedAt)
}

func TestSubmitRecordsFailure(t *testing.T) {
	runner := RunnerFunc(func(ctx context.Context, cfg config.ScrapeConfig) (*scraper.Result, error) {
		return nil, errors.New("browser crashed")
	})
	m := NewManager(runner, nil)

	job, err := m.Submit(validConfig())
	require.NoError(t, err)

	m.Wait()

	done := m.Get(job.ID)
	assert.Equal(t, StatusFailed, done.Status)
	assert.Equal(t, "browser crashed", done.Error)
}

func TestSubmitRejectsInvalidConfig(t *testing.T) {
	m := NewManager(RunnerFunc(func(ctx context.Context, cfg config.ScrapeConfig) (*scraper.Result, error) {
		return &scraper.Result{}, nil
	}), nil)

	_, err := m.Submit(config.ScrapeConfig{})
	assert.Error(t, err)
	assert.Empty(t, m.List())
}

func TestJobsRunOneAtATime(t *testing.T) {
	var mu sync.Mutex
	running := 0
	maxRunning := 0

	runner := RunnerFunc(func(ctx context.Context, cfg config.ScrapeConfig) (*scraper.Result, error) {
		mu.Lock()
		running++
		if running > maxRunning {
			maxRunning = running
		}
		mu.Unlock()

		mu.Lock()
		running--
		mu.Unlock()
		return &scraper.Result{}, nil
	})
	m := NewManager(runner, nil)

	for i := 0; i < 5; i++ {
		_, err := m.Submit(validConfig())
		require.NoError(t, err)
	}
	m.Wait()

	assert.Equal(t, 1, maxRunning)
	assert.Len(t, m.List(), 5)
}

func TestGetUnknownJob(t *testing.T) {
	m := NewManager(RunnerFunc(func(ctx context.Context, cfg config.ScrapeConfig) (*scraper.Result, error) {
		return &scraper.Result{}, nil
	}), nil)
	assert.Nil(t, m.Get("nope"))
}

func TestSnapshotsAreCopies(t *testing.T) {
	block := make(chan struct{})
	runner := RunnerFunc(func(ctx context.Context, cfg config.ScrapeConfig) (*scraper.Result, error) {
		<-block
		return &scraper.Result{}, nil
	})
	m := NewManager(runner, nil)

	job, err := m.Submit(validConfig())
	require.NoError(t, err)

	// Mutating the snapshot must not touch the manager's copy.
	job.Status = StatusFailed
	assert.NotEqual(t, StatusFailed, m.Get(job.ID).Status)

	close(block)
	m.Wait()
}
