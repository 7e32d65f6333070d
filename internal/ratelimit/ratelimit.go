// Package ratelimit paces page fetches. The default policy is a fixed delay
// between actions; a token bucket is available as a drop-in replacement
// behind the same interface.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedPacer enforces a constant minimum gap between consecutive actions.
type FixedPacer struct {
	delay      time.Duration
	lastAction time.Time
	mu         sync.Mutex
}

func NewFixedPacer(delay time.Duration) *FixedPacer {
	return &FixedPacer{delay: delay}
}

func (p *FixedPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.lastAction)
	if elapsed < p.delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.delay - elapsed):
		}
	}

	p.lastAction = time.Now()
	return nil
}

// TokenBucketPacer allows short bursts while keeping the long-run rate at
// one action per refill interval.
type TokenBucketPacer struct {
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
	mu         sync.Mutex
}

func NewTokenBucketPacer(maxTokens int, refillRate time.Duration) *TokenBucketPacer {
	return &TokenBucketPacer{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

func (p *TokenBucketPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.refill()

	for p.tokens <= 0 {
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			p.mu.Lock()
			return ctx.Err()
		case <-time.After(p.refillRate):
		}

		p.mu.Lock()
		p.refill()
	}

	p.tokens--
	return nil
}

func (p *TokenBucketPacer) refill() {
	elapsed := time.Since(p.lastRefill)
	tokensToAdd := int(elapsed / p.refillRate)

	if tokensToAdd > 0 {
		p.tokens += tokensToAdd
		if p.tokens > p.maxTokens {
			p.tokens = p.maxTokens
		}
		p.lastRefill = time.Now()
	}
}
