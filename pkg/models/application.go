// Application status graph:
//
//	pending ──► reviewed ──► shortlisted ──► accepted
//	   │            │
//	   └────────────┴──► rejected
//
// accepted and rejected are terminal. The client only decides which action
// buttons to show; the server owns the actual transition and the client
// re-fetches after every mutation.
package models

import (
	"fmt"
	"time"
)

// ApplicationStatus mirrors the backend's application status enum.
type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationReviewed    ApplicationStatus = "reviewed"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationAccepted    ApplicationStatus = "accepted"
	ApplicationRejected    ApplicationStatus = "rejected"
)

// ParseApplicationStatus converts a raw string to an ApplicationStatus,
// returning an error for unknown values.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	switch st {
	case ApplicationPending, ApplicationReviewed, ApplicationShortlisted,
		ApplicationAccepted, ApplicationRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// applicationTransitions lists every allowed (from → to) pair.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending:     {ApplicationReviewed, ApplicationShortlisted, ApplicationRejected},
	ApplicationReviewed:    {ApplicationShortlisted, ApplicationRejected},
	ApplicationShortlisted: {ApplicationAccepted},
	// accepted and rejected are terminal
}

// NextStatuses returns the statuses an application may move to from its
// current one. This is exactly the set of action buttons the applicant-review
// page renders.
func (s ApplicationStatus) NextStatuses() []ApplicationStatus {
	return applicationTransitions[s]
}

// CanTransition reports whether moving from s to next is permitted.
func (s ApplicationStatus) CanTransition(next ApplicationStatus) bool {
	for _, n := range applicationTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions exist.
func (s ApplicationStatus) Terminal() bool {
	return len(applicationTransitions[s]) == 0
}

// ActionLabel is the button label shown for a transition target.
func (s ApplicationStatus) ActionLabel() string {
	switch s {
	case ApplicationReviewed:
		return "Mark Reviewed"
	case ApplicationShortlisted:
		return "Shortlist"
	case ApplicationAccepted:
		return "Accept"
	case ApplicationRejected:
		return "Reject"
	default:
		return string(s)
	}
}

// JobApplication is a learner's application to a job posting. MatchData and
// ApplicantProfile are attached server-side by the matching service when the
// employer lists applicants.
type JobApplication struct {
	ID               string            `json:"_id"`
	JobID            string            `json:"job_id"`
	UserID           string            `json:"user_id"`
	ApplicantName    string            `json:"applicant_name"`
	ApplicantEmail   string            `json:"applicant_email"`
	CoverLetter      string            `json:"cover_letter,omitempty"`
	ResumeURL        string            `json:"resume_url,omitempty"`
	PortfolioURL     string            `json:"portfolio_url,omitempty"`
	Status           ApplicationStatus `json:"status"`
	Notes            string            `json:"notes,omitempty"`
	AppliedAt        time.Time         `json:"applied_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	ReviewedAt       *time.Time        `json:"reviewed_at,omitempty"`
	MatchData        *MatchData        `json:"match_data,omitempty"`
	ApplicantProfile *UserProfile      `json:"applicant_profile,omitempty"`
}
