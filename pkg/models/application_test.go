package models

import (
	"testing"
	"time"
)

func TestApplicationStatus_NextStatuses(t *testing.T) {
	tests := []struct {
		status ApplicationStatus
		want   []ApplicationStatus
	}{
		{ApplicationPending, []ApplicationStatus{ApplicationReviewed, ApplicationShortlisted, ApplicationRejected}},
		{ApplicationReviewed, []ApplicationStatus{ApplicationShortlisted, ApplicationRejected}},
		{ApplicationShortlisted, []ApplicationStatus{ApplicationAccepted}},
		{ApplicationAccepted, nil},
		{ApplicationRejected, nil},
	}

	for _, tc := range tests {
		got := tc.status.NextStatuses()
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.status, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("%s: action %d = %s, want %s", tc.status, i, got[i], tc.want[i])
			}
		}
	}
}

func TestApplicationStatus_ActionVisibility(t *testing.T) {
	// The applicant-review page renders exactly one button per next status.
	pending := ApplicationPending.NextStatuses()
	labels := make([]string, 0, len(pending))
	for _, s := range pending {
		labels = append(labels, s.ActionLabel())
	}
	want := []string{"Mark Reviewed", "Shortlist", "Reject"}
	for i, l := range labels {
		if l != want[i] {
			t.Errorf("pending label %d = %q, want %q", i, l, want[i])
		}
	}

	short := ApplicationShortlisted.NextStatuses()
	if len(short) != 1 || short[0].ActionLabel() != "Accept" {
		t.Fatalf("shortlisted must render only Accept, got %v", short)
	}
}

func TestApplicationStatus_Transitions(t *testing.T) {
	if !ApplicationPending.CanTransition(ApplicationReviewed) {
		t.Error("pending -> reviewed should be allowed")
	}
	if ApplicationShortlisted.CanTransition(ApplicationRejected) {
		t.Error("shortlisted -> rejected should not be offered")
	}
	if !ApplicationAccepted.Terminal() || !ApplicationRejected.Terminal() {
		t.Error("accepted and rejected are terminal")
	}
}

func TestParseApplicationStatus(t *testing.T) {
	if _, err := ParseApplicationStatus("pending"); err != nil {
		t.Fatalf("parse pending: %v", err)
	}
	if _, err := ParseApplicationStatus("archived"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	s := Session{AccessToken: "tok"}
	if s.Expired(now) {
		t.Error("zero expiry must not count as expired")
	}
	s.ExpiresAt = now.Add(-time.Minute)
	if !s.Expired(now) {
		t.Error("past expiry must count as expired")
	}
}

func TestRole_LandingRoute(t *testing.T) {
	if got := RoleEmployer.LandingRoute(); got != "/employer/dashboard" {
		t.Errorf("employer landing = %q", got)
	}
	if got := Role("mystery").LandingRoute(); got != "/" {
		t.Errorf("unknown role landing = %q", got)
	}
}
