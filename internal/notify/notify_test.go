package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/Gerri254/chainctl/pkg/chainapi"
)

func quietFeed() *Feed {
	SetLogger(slog.New(slog.NewTextHandler(discard{}, nil)))
	f := NewFeed()
	f.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestFeedNewestFirst(t *testing.T) {
	f := quietFeed()
	f.Info("first")
	f.Success("second")
	f.Error("third")

	got := f.Recent(0)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Message != "third" || got[2].Message != "first" {
		t.Errorf("order = [%s %s %s]", got[0].Message, got[1].Message, got[2].Message)
	}
	if got[0].Severity != SeverityError || got[1].Severity != SeveritySuccess {
		t.Errorf("severities = [%s %s]", got[0].Severity, got[1].Severity)
	}
}

func TestFeedRecentLimit(t *testing.T) {
	f := quietFeed()
	for i := 0; i < 5; i++ {
		f.Info(fmt.Sprintf("n%d", i))
	}
	if got := f.Recent(2); len(got) != 2 || got[0].Message != "n4" {
		t.Fatalf("recent(2) = %+v", got)
	}
}

func TestFailurePrefersServerMessage(t *testing.T) {
	f := quietFeed()
	err := fmt.Errorf("submit bid: %w", &chainapi.APIError{StatusCode: 409, Message: "You have already submitted a bid for this procurement"})

	n := f.Failure(err, "Failed to submit bid")
	if n.Severity != SeverityError {
		t.Errorf("severity = %s", n.Severity)
	}
	if n.Message != "You have already submitted a bid for this procurement" {
		t.Errorf("message = %q", n.Message)
	}
}

func TestFailureFallsBackOnTransportError(t *testing.T) {
	f := quietFeed()
	n := f.Failure(errors.New("dial tcp: connection refused"), "Failed to load jobs")
	if n.Message != "Failed to load jobs" {
		t.Errorf("message = %q", n.Message)
	}
}

func TestClear(t *testing.T) {
	f := quietFeed()
	f.Info("x")
	f.Clear()
	if got := f.Recent(0); len(got) != 0 {
		t.Fatalf("recent after clear = %+v", got)
	}
}
