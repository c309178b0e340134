package derive

import (
	"strings"

	"github.com/Gerri254/chainctl/pkg/models"
)

// SkillMatch splits a posting's required skills into those covered by the
// learner's verified skills and those missing. Matching is case-insensitive
// substring in either direction ("React" covers "react.js" and vice versa),
// the same loose rule the job pages apply.
func SkillMatch(required []string, verified []models.VerifiedSkill) (matched, missing []string) {
	for _, req := range required {
		reqLower := strings.ToLower(strings.TrimSpace(req))
		if reqLower == "" {
			continue
		}
		found := false
		for _, v := range verified {
			have := strings.ToLower(strings.TrimSpace(v.Name))
			if have == "" {
				continue
			}
			if strings.Contains(have, reqLower) || strings.Contains(reqLower, have) {
				found = true
				break
			}
		}
		if found {
			matched = append(matched, req)
		} else {
			missing = append(missing, req)
		}
	}
	return matched, missing
}

// FilterByMinScore keeps jobs whose attached match score is at or above
// minScore. Jobs without match data are dropped: no score, no ranking.
func FilterByMinScore(jobs []models.JobPosting, minScore float64) []models.JobPosting {
	var out []models.JobPosting
	for _, j := range jobs {
		if j.MatchData != nil && j.MatchData.MatchScore >= minScore {
			out = append(out, j)
		}
	}
	return out
}

// PostingStatsFrom recomputes the employer dashboard counters from the
// postings list, for when the stats endpoint has not been fetched yet.
func PostingStatsFrom(postings []models.JobPosting) models.JobPostingStats {
	var s models.JobPostingStats
	s.TotalPostings = len(postings)
	for _, p := range postings {
		if p.Status == models.JobActive {
			s.ActivePostings++
		}
		s.TotalViews += p.ViewsCount
		s.TotalApplications += p.ApplicationsCnt
	}
	return s
}

// VerifiedSkillNames flattens assessments into the learner's verified skill
// list, keeping the best score per skill.
func VerifiedSkillNames(assessments []models.SkillAssessment) []models.VerifiedSkill {
	best := make(map[string]models.SkillAssessment)
	var order []string
	for _, a := range assessments {
		if !a.Passed {
			continue
		}
		key := strings.ToLower(a.SkillName)
		prev, seen := best[key]
		if !seen {
			order = append(order, key)
		}
		if !seen || a.Score > prev.Score {
			best[key] = a
		}
	}

	out := make([]models.VerifiedSkill, 0, len(order))
	for _, key := range order {
		a := best[key]
		completed := a.CompletedAt
		out = append(out, models.VerifiedSkill{
			Name:       a.SkillName,
			Score:      a.Score,
			VerifiedAt: &completed,
		})
	}
	return out
}
