package models

import "time"

// JobStatus is the lifecycle of an employer job posting.
type JobStatus string

const (
	JobDraft   JobStatus = "draft"
	JobActive  JobStatus = "active"
	JobClosed  JobStatus = "closed"
	JobExpired JobStatus = "expired"
)

// JobPosting is the primary listable entity of the SkillChain side. Derived
// counters (views, applications, days until expiry) are computed server-side
// and displayed as-is.
type JobPosting struct {
	ID              string     `json:"_id"`
	EmployerID      string     `json:"employer_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CompanyName     string     `json:"company_name,omitempty"`
	Location        string     `json:"location,omitempty"`
	LocationType    string     `json:"location_type,omitempty"`
	EmploymentType  string     `json:"employment_type,omitempty"`
	ExperienceLevel string     `json:"experience_level,omitempty"`
	SkillsRequired  []string   `json:"skills_required,omitempty"`
	MinimumScore    int        `json:"minimum_score,omitempty"`
	SalaryMin       *int       `json:"salary_min,omitempty"`
	SalaryMax       *int       `json:"salary_max,omitempty"`
	SalaryCurrency  string     `json:"salary_currency,omitempty"`
	SalaryPeriod    string     `json:"salary_period,omitempty"`
	Benefits        []string   `json:"benefits,omitempty"`
	Status          JobStatus  `json:"status"`
	PostedAt        time.Time  `json:"posted_at"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	ViewsCount      int        `json:"views_count"`
	ApplicationsCnt int        `json:"applications_count"`
	MatchData       *MatchData `json:"match_data,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// DaysUntilExpiry returns whole days between now and ExpiresAt, negative when
// already past. Jobs without an expiry return 0 and false.
func (j JobPosting) DaysUntilExpiry(now time.Time) (int, bool) {
	if j.ExpiresAt == nil {
		return 0, false
	}
	return int(j.ExpiresAt.Sub(now).Hours() / 24), true
}

// MatchData is the server-computed match breakdown attached to job and
// application records. Purely displayed, never recomputed client-side.
type MatchData struct {
	MatchScore    float64        `json:"match_score"`
	MatchedSkills []string       `json:"matched_skills,omitempty"`
	MissingSkills []string       `json:"missing_skills,omitempty"`
	Breakdown     MatchBreakdown `json:"breakdown"`
}

// MatchBreakdown holds the four weighted sub-scores, each 0-100.
type MatchBreakdown struct {
	SkillMatch       float64 `json:"skill_match"`
	ExperienceMatch  float64 `json:"experience_match"`
	FreshnessScore   float64 `json:"freshness_score"`
	PerformanceScore float64 `json:"performance_score"`
}

// JobPostingStats is the employer-facing aggregate returned by the stats
// endpoint.
type JobPostingStats struct {
	TotalPostings     int `json:"total_postings"`
	ActivePostings    int `json:"active_postings"`
	TotalViews        int `json:"total_views"`
	TotalApplications int `json:"total_applications"`
}

// SkillAssessment is a completed skill-verification challenge result.
type SkillAssessment struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"user_id"`
	SkillName   string    `json:"skill_name"`
	Score       float64   `json:"score"`
	MaxScore    float64   `json:"max_score"`
	Passed      bool      `json:"passed"`
	CompletedAt time.Time `json:"completed_at"`
}
