// Package derive holds the pure selector functions the pages use to turn
// fetched lists into display aggregates. Everything here is a function of
// its inputs only, so applying the same selector twice to the same data
// always yields the same result.
package derive

import "github.com/Gerri254/chainctl/pkg/models"

// ApplicationStats is the per-status count block shown on the learner and
// employer dashboards.
type ApplicationStats struct {
	Total       int
	Pending     int
	Reviewed    int
	Shortlisted int
	Accepted    int
	Rejected    int
}

// ApplicationStatsFrom tallies applications by status.
func ApplicationStatsFrom(apps []models.JobApplication) ApplicationStats {
	var s ApplicationStats
	s.Total = len(apps)
	for _, a := range apps {
		switch a.Status {
		case models.ApplicationPending:
			s.Pending++
		case models.ApplicationReviewed:
			s.Reviewed++
		case models.ApplicationShortlisted:
			s.Shortlisted++
		case models.ApplicationAccepted:
			s.Accepted++
		case models.ApplicationRejected:
			s.Rejected++
		}
	}
	return s
}

// CountByStatus groups applications into a status histogram.
func CountByStatus(apps []models.JobApplication) map[models.ApplicationStatus]int {
	out := make(map[models.ApplicationStatus]int, len(apps))
	for _, a := range apps {
		out[a.Status]++
	}
	return out
}

// FilterByStatus returns the applications currently in the given status.
func FilterByStatus(apps []models.JobApplication, status models.ApplicationStatus) []models.JobApplication {
	var out []models.JobApplication
	for _, a := range apps {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out
}

// ActiveApplications returns the applications still in flight, i.e. not in
// a terminal status.
func ActiveApplications(apps []models.JobApplication) []models.JobApplication {
	var out []models.JobApplication
	for _, a := range apps {
		if !a.Status.Terminal() {
			out = append(out, a)
		}
	}
	return out
}
