// Package diag collects structured degradation signals so that callers can
// inspect what was skipped or defaulted during a run instead of grepping logs.
package diag

import (
	"sync"
	"time"
)

type Kind string

const (
	KindTransportTimeout  Kind = "transport_timeout"
	KindFieldUnresolved   Kind = "field_unresolved"
	KindChallengeDetected Kind = "challenge_detected"
	KindSessionInvalid    Kind = "session_invalid"
)

// Event is one recorded degradation. Field is the semantic field name for
// resolver events, empty otherwise.
type Event struct {
	Kind      Kind      `json:"kind"`
	Component string    `json:"component"`
	Field     string    `json:"field,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Time      time.Time `json:"time"`
}

// Recorder accumulates events. A nil *Recorder is valid and drops everything.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Record(kind Kind, component, field, detail string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{
		Kind:      kind,
		Component: component,
		Field:     field,
		Detail:    detail,
		Time:      time.Now(),
	})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many events of the given kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
