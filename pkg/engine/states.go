package engine

import "sync"

type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// RequestState is the per-key state of one cell or assignment mutation.
type RequestState struct {
	Status Status
	Err    string
}

// RequestStates tracks mutations per key so concurrent operations on
// different cells do not interfere. Missing keys are idle.
type RequestStates struct {
	mu sync.Mutex
	m  map[string]RequestState
}

func NewRequestStates() *RequestStates {
	return &RequestStates{m: make(map[string]RequestState)}
}

func (r *RequestStates) Get(key string) RequestState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m[key]
}

func (r *RequestStates) Pending(key string) bool {
	return r.Get(key).Status == StatusPending
}

// Begin marks key pending, refusing a second submit while one is in flight.
func (r *RequestStates) Begin(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.m[key].Status == StatusPending {
		return ErrPending
	}
	r.m[key] = RequestState{Status: StatusPending}
	return nil
}

// Finish ends the in-flight mutation for key: idle on success, error with
// msg otherwise.
func (r *RequestStates) Finish(key string, msg string, failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if failed {
		r.m[key] = RequestState{Status: StatusError, Err: msg}
		return
	}
	delete(r.m, key)
}

// Fail records a local rejection for key without it ever going pending.
func (r *RequestStates) Fail(key, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.m[key].Status == StatusPending {
		return
	}
	r.m[key] = RequestState{Status: StatusError, Err: msg}
}

// Clear drops the recorded state of key unless it is pending.
func (r *RequestStates) Clear(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.m[key].Status != StatusPending {
		delete(r.m, key)
	}
}

// AnyPending reports whether any mutation is in flight.
func (r *RequestStates) AnyPending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.m {
		if s.Status == StatusPending {
			return true
		}
	}
	return false
}

// Snapshot copies the current states.
func (r *RequestStates) Snapshot() map[string]RequestState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]RequestState, len(r.m))
	for k, v := range r.m {
		out[k] = v
	}
	return out
}
