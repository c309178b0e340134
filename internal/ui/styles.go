// Package ui renders status badges and plain tables for the terminal
// output. The badge color is a pure function of the status string, the
// same switch-on-status the pages apply everywhere.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Gerri254/chainctl/internal/notify"
	"github.com/Gerri254/chainctl/pkg/models"
)

// Semantic colors shared by every badge.
var (
	ColorNeutral = lipgloss.Color("#9e9e9e") // gray
	ColorInfo    = lipgloss.Color("#2196F3") // blue
	ColorSuccess = lipgloss.Color("#4CAF50") // green
	ColorWarning = lipgloss.Color("#FFC107") // yellow
	ColorDanger  = lipgloss.Color("#e53935") // red
	ColorAccent  = lipgloss.Color("#9C27B0") // purple
)

var badgeBase = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func badge(color lipgloss.Color, label string) string {
	return badgeBase.Foreground(color).Render(strings.ToUpper(label))
}

// ApplicationBadge renders an application status badge.
func ApplicationBadge(s models.ApplicationStatus) string {
	switch s {
	case models.ApplicationPending:
		return badge(ColorWarning, string(s))
	case models.ApplicationReviewed:
		return badge(ColorInfo, string(s))
	case models.ApplicationShortlisted:
		return badge(ColorAccent, string(s))
	case models.ApplicationAccepted:
		return badge(ColorSuccess, string(s))
	case models.ApplicationRejected:
		return badge(ColorDanger, string(s))
	default:
		return badge(ColorNeutral, string(s))
	}
}

// JobBadge renders a job posting status badge.
func JobBadge(s models.JobStatus) string {
	switch s {
	case models.JobActive:
		return badge(ColorSuccess, string(s))
	case models.JobDraft:
		return badge(ColorNeutral, string(s))
	case models.JobClosed, models.JobExpired:
		return badge(ColorDanger, string(s))
	default:
		return badge(ColorNeutral, string(s))
	}
}

// ProcurementBadge renders a procurement status badge.
func ProcurementBadge(s models.ProcurementStatus) string {
	switch s {
	case models.ProcurementPublished:
		return badge(ColorInfo, string(s))
	case models.ProcurementAwarded, models.ProcurementCompleted:
		return badge(ColorSuccess, string(s))
	case models.ProcurementCancelled:
		return badge(ColorDanger, string(s))
	default:
		return badge(ColorNeutral, string(s))
	}
}

// SeverityBadge renders an anomaly severity badge.
func SeverityBadge(s models.AnomalySeverity) string {
	switch s {
	case models.SeverityLow:
		return badge(ColorInfo, string(s))
	case models.SeverityMedium:
		return badge(ColorWarning, string(s))
	case models.SeverityHigh, models.SeverityCritical:
		return badge(ColorDanger, string(s))
	default:
		return badge(ColorNeutral, string(s))
	}
}

// NotificationBadge renders a feed severity badge.
func NotificationBadge(s notify.Severity) string {
	switch s {
	case notify.SeveritySuccess:
		return badge(ColorSuccess, string(s))
	case notify.SeverityWarning:
		return badge(ColorWarning, string(s))
	case notify.SeverityError:
		return badge(ColorDanger, string(s))
	default:
		return badge(ColorInfo, string(s))
	}
}
