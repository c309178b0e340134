// Package resource manages the lifecycle of a single fetched value: idle
// until first load, loading while a request is in flight, then ready or
// error. Reloading with new inputs cancels the superseded request and
// discards its response even if it lands late, so the value shown always
// belongs to the most recent load.
package resource

import (
	"context"
	"sync"
)

// State is the lifecycle phase of a fetched value.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time view of a fetcher. Value is only meaningful
// when State is StateReady, Err only when State is StateError.
type Snapshot[T any] struct {
	State State
	Value T
	Err   error
}

// FetchFunc loads the value. It must honor ctx: a superseded load has its
// context cancelled and its result is dropped either way.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Fetcher runs loads one at a time, newest wins. The zero value is not
// usable; construct with New.
type Fetcher[T any] struct {
	fetch FetchFunc[T]

	mu     sync.Mutex
	state  State
	value  T
	err    error
	gen    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a Fetcher in StateIdle.
func New[T any](fetch FetchFunc[T]) *Fetcher[T] {
	return &Fetcher[T]{fetch: fetch}
}

// Snapshot returns the current state, value and error.
func (f *Fetcher[T]) Snapshot() Snapshot[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot[T]{State: f.state, Value: f.value, Err: f.err}
}

// Load starts a fetch. Any in-flight load is cancelled first and its
// response, should it still arrive, is discarded. The returned channel
// closes when this load has either committed its result or been
// superseded.
func (f *Fetcher[T]) Load(ctx context.Context) <-chan struct{} {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.gen++
	gen := f.gen
	loadCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.state = StateLoading
	f.err = nil
	f.wg.Add(1)
	f.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer f.wg.Done()
		defer close(done)
		defer cancel()

		value, err := f.fetch(loadCtx)

		f.mu.Lock()
		defer f.mu.Unlock()
		if gen != f.gen {
			// A newer load took over while this one was in flight.
			return
		}
		if err != nil {
			f.state = StateError
			f.err = err
			return
		}
		f.state = StateReady
		f.value = value
	}()
	return done
}

// Get runs a load and blocks until this load finishes or is superseded,
// then returns the current snapshot. Pages that fetch sequentially use
// this; pages that fetch in parallel use Load and join on the channels.
func (f *Fetcher[T]) Get(ctx context.Context) Snapshot[T] {
	<-f.Load(ctx)
	return f.Snapshot()
}

// Close cancels any in-flight load and waits for its goroutine to exit.
func (f *Fetcher[T]) Close() {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.mu.Unlock()
	f.wg.Wait()
}
