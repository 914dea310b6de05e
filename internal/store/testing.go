package store

import (
	"sync"
	"testing"
)

// Recorder is a Dispatcher that records every action it receives.
// Use it in place of a real store to assert on dispatch calls.
type Recorder struct {
	mu      sync.Mutex
	actions []Action
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Dispatch records the action.
func (r *Recorder) Dispatch(action Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

// Actions returns a copy of the recorded actions.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Action(nil), r.actions...)
}

// OfType returns recorded actions with the given type.
func (r *Recorder) OfType(t ActionType) []Action {
	var out []Action
	for _, a := range r.Actions() {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// Len returns the number of recorded actions.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actions)
}

// AssertNotCalled fails if any action was recorded.
func (r *Recorder) AssertNotCalled(tb testing.TB) {
	tb.Helper()
	if n := r.Len(); n != 0 {
		tb.Errorf("expected no dispatch, got %d: %+v", n, r.Actions())
	}
}
