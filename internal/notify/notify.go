// Package notify is the single feedback channel for user-visible outcomes.
// Every mutation result, success or failure, goes through a Feed with one
// severity taxonomy, so callers never invent their own ad-hoc messaging.
package notify

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Gerri254/chainctl/pkg/chainapi"
)

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is one entry in the feed.
type Notification struct {
	ID       string
	Severity Severity
	Message  string
	At       time.Time
}

var logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))

// SetLogger sets the logger used by notify. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// Feed accumulates notifications newest-first and mirrors each one to the
// package logger. Safe for concurrent use.
type Feed struct {
	mu      sync.Mutex
	entries []Notification
	now     func() time.Time
}

// NewFeed returns an empty feed.
func NewFeed() *Feed {
	return &Feed{now: time.Now}
}

func (f *Feed) push(sev Severity, msg string) Notification {
	n := Notification{
		ID:       uuid.NewString(),
		Severity: sev,
		Message:  msg,
		At:       f.now(),
	}

	f.mu.Lock()
	f.entries = append([]Notification{n}, f.entries...)
	f.mu.Unlock()

	switch sev {
	case SeverityError:
		logger.Error(msg, "severity", sev)
	case SeverityWarning:
		logger.Warn(msg, "severity", sev)
	default:
		logger.Info(msg, "severity", sev)
	}
	return n
}

func (f *Feed) Info(msg string) Notification    { return f.push(SeverityInfo, msg) }
func (f *Feed) Success(msg string) Notification { return f.push(SeveritySuccess, msg) }
func (f *Feed) Warning(msg string) Notification { return f.push(SeverityWarning, msg) }
func (f *Feed) Error(msg string) Notification   { return f.push(SeverityError, msg) }

// Failure records err as an error notification. When err carries a server
// message it is shown verbatim; otherwise fallback is shown and the raw
// error only goes to the log.
func (f *Feed) Failure(err error, fallback string) Notification {
	if apiErr, ok := chainapi.AsAPIError(err); ok && apiErr.Message != "" {
		return f.push(SeverityError, apiErr.Message)
	}
	logger.Error(fallback, "error", err)
	return f.push(SeverityError, fallback)
}

// Recent returns up to n notifications, newest first. n <= 0 returns all.
func (f *Feed) Recent(n int) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n <= 0 || n > len(f.entries) {
		n = len(f.entries)
	}
	out := make([]Notification, n)
	copy(out, f.entries[:n])
	return out
}

// Clear empties the feed.
func (f *Feed) Clear() {
	f.mu.Lock()
	f.entries = nil
	f.mu.Unlock()
}
