package storefront

import (
	"context"
	"sync"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// State is a point-in-time copy of a Slice.
type State[T any] struct {
	Status Status
	Data   T
	Err    error
}

func (s State[T]) Loading() bool { return s.Status == StatusLoading }

// Slice tracks one async call: idle, then loading, then succeeded or failed.
// Data from the last success is kept when a later call fails.
type Slice[T any] struct {
	mu     sync.RWMutex
	status Status
	data   T
	err    error
}

// Run marks the slice loading, calls fn and records its outcome.
func (s *Slice[T]) Run(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	s.mu.Lock()
	s.status = StatusLoading
	s.err = nil
	s.mu.Unlock()

	data, err := fn(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status = StatusFailed
		s.err = err
		var zero T
		return zero, err
	}
	s.status = StatusSucceeded
	s.data = data
	return data, nil
}

// Set stores data as a success without a call, e.g. when hydrating.
func (s *Slice[T]) Set(data T) {
	s.mu.Lock()
	s.status = StatusSucceeded
	s.data = data
	s.err = nil
	s.mu.Unlock()
}

func (s *Slice[T]) Reset() {
	s.mu.Lock()
	var zero T
	s.status = StatusIdle
	s.data = zero
	s.err = nil
	s.mu.Unlock()
}

func (s *Slice[T]) Snapshot() State[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	if st == "" {
		st = StatusIdle
	}
	return State[T]{Status: st, Data: s.data, Err: s.err}
}
