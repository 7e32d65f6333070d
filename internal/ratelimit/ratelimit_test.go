package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestFixedPacerEnforcesDelay(t *testing.T) {
	p := NewFixedPacer(50 * time.Millisecond)
	ctx := context.Background()

	if err := p.Wait(ctx); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	start := time.Now()
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("second wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("second wait returned after %v, want at least ~50ms", elapsed)
	}
}

func TestFixedPacerRespectsCancellation(t *testing.T) {
	p := NewFixedPacer(5 * time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	if err := p.Wait(ctx); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	cancel()
	if err := p.Wait(ctx); err == nil {
		t.Error("expected context error after cancellation")
	}
}

func TestTokenBucketAllowsBurst(t *testing.T) {
	p := NewTokenBucketPacer(3, time.Second)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("wait %d failed: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("burst of 3 took %v, expected near-immediate", elapsed)
	}
}
