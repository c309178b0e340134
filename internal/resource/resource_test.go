package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetcherStartsIdle(t *testing.T) {
	f := New(func(ctx context.Context) (int, error) { return 0, nil })
	defer f.Close()

	snap := f.Snapshot()
	if snap.State != StateIdle {
		t.Fatalf("state = %v, want idle", snap.State)
	}
}

func TestFetcherLoadSuccess(t *testing.T) {
	f := New(func(ctx context.Context) (string, error) { return "hello", nil })
	defer f.Close()

	snap := f.Get(context.Background())
	if snap.State != StateReady {
		t.Fatalf("state = %v, err = %v", snap.State, snap.Err)
	}
	if snap.Value != "hello" {
		t.Errorf("value = %q", snap.Value)
	}
}

func TestFetcherLoadError(t *testing.T) {
	boom := errors.New("boom")
	f := New(func(ctx context.Context) (string, error) { return "", boom })
	defer f.Close()

	snap := f.Get(context.Background())
	if snap.State != StateError {
		t.Fatalf("state = %v, want error", snap.State)
	}
	if !errors.Is(snap.Err, boom) {
		t.Errorf("err = %v", snap.Err)
	}
}

// A late response from a superseded load must never overwrite the result of
// the load that replaced it, no matter which resolves first.
func TestFetcherDiscardsStaleResponse(t *testing.T) {
	slow := make(chan string)
	fast := make(chan string)
	started := make(chan struct{}, 2)
	var calls atomic.Int32
	f := New(func(ctx context.Context) (string, error) {
		n := calls.Add(1)
		started <- struct{}{}
		if n == 1 {
			return <-slow, nil // ignores cancellation: resolves late with a value
		}
		return <-fast, nil
	})
	defer f.Close()

	first := f.Load(context.Background())
	<-started // the first fetch is in flight before the reload
	second := f.Load(context.Background())
	<-started

	fast <- "fresh"
	<-second

	// The superseded load now resolves, after the replacement committed.
	slow <- "stale"
	<-first

	snap := f.Snapshot()
	if snap.State != StateReady || snap.Value != "fresh" {
		t.Fatalf("snapshot = %+v, want ready/fresh", snap)
	}
}

func TestFetcherSupersededLoadIsCancelled(t *testing.T) {
	cancelled := make(chan struct{})
	started := make(chan struct{}, 2)
	var calls atomic.Int32
	f := New(func(ctx context.Context) (int, error) {
		n := calls.Add(1)
		started <- struct{}{}
		if n == 1 {
			<-ctx.Done()
			close(cancelled)
			return 0, ctx.Err()
		}
		return 2, nil
	})
	defer f.Close()

	f.Load(context.Background())
	<-started
	done := f.Load(context.Background())
	<-started

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("superseded load was never cancelled")
	}

	<-done
	if snap := f.Snapshot(); snap.State != StateReady || snap.Value != 2 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestFetcherParentContextCancel(t *testing.T) {
	f := New(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	defer f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := f.Load(ctx)
	cancel()
	<-done

	snap := f.Snapshot()
	if snap.State != StateError {
		t.Fatalf("state = %v, want error", snap.State)
	}
	if !errors.Is(snap.Err, context.Canceled) {
		t.Errorf("err = %v", snap.Err)
	}
}

func TestFetcherCloseCancelsInFlight(t *testing.T) {
	started := make(chan struct{})
	f := New(func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})

	f.Load(context.Background())
	<-started
	f.Close() // must not hang, and the goroutine must exit
}
