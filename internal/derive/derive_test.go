package derive_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/Gerri254/chainctl/internal/derive"
	"github.com/Gerri254/chainctl/pkg/models"
)

func appsWithStatuses(statuses ...models.ApplicationStatus) []models.JobApplication {
	out := make([]models.JobApplication, len(statuses))
	for i, s := range statuses {
		out[i] = models.JobApplication{ID: string(rune('a' + i)), Status: s}
	}
	return out
}

func TestApplicationStatsFrom(t *testing.T) {
	apps := appsWithStatuses(
		models.ApplicationPending,
		models.ApplicationPending,
		models.ApplicationReviewed,
		models.ApplicationShortlisted,
	)

	got := derive.ApplicationStatsFrom(apps)
	want := derive.ApplicationStats{Total: 4, Pending: 2, Reviewed: 1, Shortlisted: 1}
	if got != want {
		t.Fatalf("stats = %+v, want %+v", got, want)
	}
}

func TestApplicationStatsFrom_Empty(t *testing.T) {
	if got := derive.ApplicationStatsFrom(nil); got != (derive.ApplicationStats{}) {
		t.Fatalf("empty list must yield zero stats, got %+v", got)
	}
}

func TestCountByStatus(t *testing.T) {
	apps := appsWithStatuses(models.ApplicationAccepted, models.ApplicationAccepted, models.ApplicationRejected)
	got := derive.CountByStatus(apps)
	if got[models.ApplicationAccepted] != 2 || got[models.ApplicationRejected] != 1 {
		t.Fatalf("histogram = %v", got)
	}
}

func TestSkillMatch(t *testing.T) {
	verified := []models.VerifiedSkill{
		{Name: "React.js", Score: 88},
		{Name: "golang", Score: 92},
	}
	required := []string{"React", "Go", "Kubernetes"}

	matched, missing := derive.SkillMatch(required, verified)
	if !reflect.DeepEqual(matched, []string{"React", "Go"}) {
		t.Errorf("matched = %v", matched)
	}
	if !reflect.DeepEqual(missing, []string{"Kubernetes"}) {
		t.Errorf("missing = %v", missing)
	}
}

func TestSkillMatch_CaseInsensitive(t *testing.T) {
	matched, missing := derive.SkillMatch(
		[]string{"PYTHON"},
		[]models.VerifiedSkill{{Name: "python"}},
	)
	if len(matched) != 1 || len(missing) != 0 {
		t.Fatalf("matched=%v missing=%v", matched, missing)
	}
}

func TestFilterByMinScore_Idempotent(t *testing.T) {
	score := func(v float64) *models.MatchData { return &models.MatchData{MatchScore: v} }
	jobs := []models.JobPosting{
		{ID: "j1", MatchData: score(75)},
		{ID: "j2", MatchData: score(59.9)},
		{ID: "j3", MatchData: score(60)},
		{ID: "j4"}, // no match data
	}

	once := derive.FilterByMinScore(jobs, 60)
	twice := derive.FilterByMinScore(once, 60)

	if len(once) != 2 || once[0].ID != "j1" || once[1].ID != "j3" {
		t.Fatalf("filtered = %+v", once)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Fatal("re-applying the same filter must not change the result set")
	}
}

func TestPostingStatsFrom(t *testing.T) {
	postings := []models.JobPosting{
		{Status: models.JobActive, ViewsCount: 10, ApplicationsCnt: 3},
		{Status: models.JobClosed, ViewsCount: 5, ApplicationsCnt: 1},
		{Status: models.JobActive, ViewsCount: 7, ApplicationsCnt: 0},
	}

	got := derive.PostingStatsFrom(postings)
	want := models.JobPostingStats{TotalPostings: 3, ActivePostings: 2, TotalViews: 22, TotalApplications: 4}
	if got != want {
		t.Fatalf("stats = %+v, want %+v", got, want)
	}
}

func TestVerifiedSkillNames_KeepsBestScore(t *testing.T) {
	now := time.Now()
	assessments := []models.SkillAssessment{
		{SkillName: "Go", Score: 70, Passed: true, CompletedAt: now},
		{SkillName: "go", Score: 85, Passed: true, CompletedAt: now},
		{SkillName: "Rust", Score: 40, Passed: false, CompletedAt: now},
	}

	skills := derive.VerifiedSkillNames(assessments)
	if len(skills) != 1 {
		t.Fatalf("skills = %+v", skills)
	}
	if skills[0].Score != 85 {
		t.Errorf("score = %v, want best attempt", skills[0].Score)
	}
}

func TestProcurementDashboardFrom(t *testing.T) {
	items := []models.Procurement{
		{Status: models.ProcurementPublished, Category: "works", EstimatedValue: 100, Metadata: models.ProcurementMetadata{RiskScore: 80, HasAnomalies: true}},
		{Status: models.ProcurementPublished, Category: "supplies", EstimatedValue: 50},
		{Status: models.ProcurementAwarded, Category: "works", EstimatedValue: 200},
	}

	d := derive.ProcurementDashboardFrom(items, 70)
	if d.Total != 3 || d.TotalValue != 350 {
		t.Fatalf("dashboard = %+v", d)
	}
	if d.ByStatus[models.ProcurementPublished] != 2 || d.ByCategory["works"] != 2 {
		t.Fatalf("groupings = %+v", d)
	}
	if d.Flagged != 1 || d.HighRisk != 1 {
		t.Fatalf("risk counts = %+v", d)
	}
}

func TestBidSummaryFrom(t *testing.T) {
	bids := []models.Bid{{Amount: 300}, {Amount: 100}, {Amount: 200}}
	s := derive.BidSummaryFrom(bids)
	if s.Count != 3 || s.Lowest != 100 || s.Highest != 300 || s.Average != 200 {
		t.Fatalf("summary = %+v", s)
	}

	if z := derive.BidSummaryFrom(nil); z != (derive.BidSummary{}) {
		t.Fatalf("empty bids must yield zero summary, got %+v", z)
	}
}

func TestUnresolvedAnomalies(t *testing.T) {
	items := []models.Anomaly{
		{ID: "a1", Resolved: true},
		{ID: "a2"},
		{ID: "a3"},
	}
	open := derive.UnresolvedAnomalies(items)
	if len(open) != 2 || open[0].ID != "a2" {
		t.Fatalf("open = %+v", open)
	}
}
