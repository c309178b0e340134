package pages

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Gerri254/chainctl/internal/derive"
	"github.com/Gerri254/chainctl/internal/resource"
	"github.com/Gerri254/chainctl/internal/ui"
	"github.com/Gerri254/chainctl/pkg/chainapi"
	"github.com/Gerri254/chainctl/pkg/models"
)

// LearnerDashboard is the learner's home view: application pipeline plus
// verified skills.
type LearnerDashboard struct {
	env Env
	res *resource.Fetcher[LearnerDashboardView]
}

type LearnerDashboardView struct {
	User         models.User
	Stats        derive.ApplicationStats
	Applications []models.JobApplication
	Skills       []models.VerifiedSkill
}

func NewLearnerDashboard(env Env) *LearnerDashboard {
	p := &LearnerDashboard{env: env}
	p.res = resource.New(p.fetch)
	return p
}

func (p *LearnerDashboard) fetch(ctx context.Context) (LearnerDashboardView, error) {
	var view LearnerDashboardView
	view.User = p.env.Session.Current().User

	g, ctx := errgroup.WithContext(ctx)
	var assessments []models.SkillAssessment
	g.Go(func() error {
		apps, err := p.env.Client.Applications.Mine(ctx)
		if err != nil {
			return fmt.Errorf("load applications: %w", err)
		}
		view.Applications = apps
		return nil
	})
	g.Go(func() error {
		a, err := p.env.Client.Assessments.Mine(ctx)
		if err != nil {
			return fmt.Errorf("load assessments: %w", err)
		}
		assessments = a
		return nil
	})
	if err := g.Wait(); err != nil {
		return LearnerDashboardView{}, err
	}

	view.Stats = derive.ApplicationStatsFrom(view.Applications)
	view.Skills = derive.VerifiedSkillNames(assessments)
	return view, nil
}

func (p *LearnerDashboard) Load(ctx context.Context) (LearnerDashboardView, error) {
	if _, err := p.env.check(models.RoleLearner); err != nil {
		return LearnerDashboardView{}, err
	}
	snap := p.res.Get(ctx)
	if snap.State == resource.StateError {
		return LearnerDashboardView{}, snap.Err
	}
	return snap.Value, nil
}

func (p *LearnerDashboard) Close() { p.res.Close() }

func (v LearnerDashboardView) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Welcome back, %s\n\n", v.User.FullName)
	fmt.Fprintf(&sb, "Applications: %d total, %d pending, %d reviewed, %d shortlisted, %d accepted\n\n",
		v.Stats.Total, v.Stats.Pending, v.Stats.Reviewed, v.Stats.Shortlisted, v.Stats.Accepted)

	tbl := ui.NewTable("Recent Applications", "JOB", "STATUS", "APPLIED")
	for _, a := range v.Applications {
		tbl.AddRow(a.JobID, string(a.Status), a.AppliedAt.Format("2006-01-02"))
	}
	sb.WriteString(tbl.View())

	skills := ui.NewTable("Verified Skills", "SKILL", "SCORE")
	skills.Empty = "No verified skills yet. Complete an assessment to get matched."
	for _, s := range v.Skills {
		skills.AddRow(s.Name, fmt.Sprintf("%.0f", s.Score))
	}
	sb.WriteString("\n")
	sb.WriteString(skills.View())
	return sb.String()
}

// JobBrowse is the job search page: filterable, paginated. Changing
// filters reloads; an in-flight load for old filters is superseded.
type JobBrowse struct {
	env     Env
	filters chainapi.JobFilters
	res     *resource.Fetcher[chainapi.Page[models.JobPosting]]
}

func NewJobBrowse(env Env) *JobBrowse {
	p := &JobBrowse{env: env}
	p.res = resource.New(p.fetch)
	return p
}

func (p *JobBrowse) fetch(ctx context.Context) (chainapi.Page[models.JobPosting], error) {
	return p.env.Client.Jobs.Browse(ctx, p.filters)
}

// SetFilters replaces the filter set; the next Load fetches fresh.
func (p *JobBrowse) SetFilters(f chainapi.JobFilters) { p.filters = f }

func (p *JobBrowse) Load(ctx context.Context) (chainapi.Page[models.JobPosting], error) {
	if _, err := p.env.check(); err != nil {
		return chainapi.Page[models.JobPosting]{}, err
	}
	snap := p.res.Get(ctx)
	if snap.State == resource.StateError {
		return chainapi.Page[models.JobPosting]{}, snap.Err
	}
	return snap.Value, nil
}

func (p *JobBrowse) Close() { p.res.Close() }

func RenderJobPage(page chainapi.Page[models.JobPosting]) string {
	tbl := ui.NewTable(fmt.Sprintf("Jobs (page %d of %d, %d total)", page.Page, page.Pages, page.Total),
		"ID", "TITLE", "LOCATION", "SKILLS", "STATUS")
	tbl.Empty = "No jobs match your filters."
	for _, j := range page.Items {
		tbl.AddRow(j.ID, j.Title, j.Location, strings.Join(j.SkillsRequired, ", "), ui.JobBadge(j.Status))
	}
	out := tbl.View()
	if page.HasPrev() || page.HasNext() {
		out += fmt.Sprintf("\nPrev: %v  Next: %v\n", page.HasPrev(), page.HasNext())
	}
	return out
}

// JobDetail is one posting plus whether the viewer already applied.
type JobDetail struct {
	env   Env
	jobID string
	res   *resource.Fetcher[JobDetailView]
}

type JobDetailView struct {
	Job        models.JobPosting
	HasApplied bool
	Matched    []string
	Missing    []string
}

func NewJobDetail(env Env, jobID string) *JobDetail {
	p := &JobDetail{env: env, jobID: jobID}
	p.res = resource.New(p.fetch)
	return p
}

func (p *JobDetail) fetch(ctx context.Context) (JobDetailView, error) {
	var view JobDetailView
	sess := p.env.Session.Current()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		job, err := p.env.Client.Jobs.Get(ctx, p.jobID)
		if err != nil {
			return fmt.Errorf("load job: %w", err)
		}
		view.Job = *job
		return nil
	})

	var mine []models.JobApplication
	var assessments []models.SkillAssessment
	if sess.User.EffectiveRole() == models.RoleLearner {
		g.Go(func() error {
			apps, err := p.env.Client.Applications.Mine(ctx)
			if err != nil {
				return fmt.Errorf("load applications: %w", err)
			}
			mine = apps
			return nil
		})
		g.Go(func() error {
			a, err := p.env.Client.Assessments.Mine(ctx)
			if err != nil {
				return fmt.Errorf("load assessments: %w", err)
			}
			assessments = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return JobDetailView{}, err
	}

	for _, a := range mine {
		if a.JobID == p.jobID {
			view.HasApplied = true
		}
	}
	view.Matched, view.Missing = derive.SkillMatch(view.Job.SkillsRequired, derive.VerifiedSkillNames(assessments))
	return view, nil
}

func (p *JobDetail) Load(ctx context.Context) (JobDetailView, error) {
	if _, err := p.env.check(); err != nil {
		return JobDetailView{}, err
	}
	snap := p.res.Get(ctx)
	if snap.State == resource.StateError {
		return JobDetailView{}, snap.Err
	}
	return snap.Value, nil
}

// Apply submits an application and reloads the view. The feed carries the
// outcome either way.
func (p *JobDetail) Apply(ctx context.Context, coverLetter string) (JobDetailView, error) {
	if _, err := p.env.check(models.RoleLearner); err != nil {
		return JobDetailView{}, err
	}
	_, err := p.env.Client.Applications.Create(ctx, chainapi.ApplicationInput{
		JobID:       p.jobID,
		CoverLetter: coverLetter,
	})
	if err != nil {
		p.env.Feed.Failure(err, "Failed to submit application")
		return JobDetailView{}, err
	}
	p.env.Feed.Success("Application submitted")
	return p.Load(ctx)
}

func (p *JobDetail) Close() { p.res.Close() }

func (v JobDetailView) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s\n%s\n\n%s\n\n", v.Job.Title, ui.JobBadge(v.Job.Status), v.Job.CompanyName, v.Job.Description)
	if len(v.Matched) > 0 {
		fmt.Fprintf(&sb, "Skills you have: %s\n", strings.Join(v.Matched, ", "))
	}
	if len(v.Missing) > 0 {
		fmt.Fprintf(&sb, "Skills to verify: %s\n", strings.Join(v.Missing, ", "))
	}
	if v.HasApplied {
		sb.WriteString("\nYou have already applied for this job.\n")
	}
	return sb.String()
}

// EmployerPostings is the employer's home view: their postings plus the
// headline counters.
type EmployerPostings struct {
	env Env
	res *resource.Fetcher[EmployerPostingsView]
}

type EmployerPostingsView struct {
	Postings []models.JobPosting
	Stats    models.JobPostingStats
}

func NewEmployerPostings(env Env) *EmployerPostings {
	p := &EmployerPostings{env: env}
	p.res = resource.New(p.fetch)
	return p
}

func (p *EmployerPostings) fetch(ctx context.Context) (EmployerPostingsView, error) {
	var view EmployerPostingsView

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		postings, err := p.env.Client.Jobs.MyPostings(ctx, 0, 0)
		if err != nil {
			return fmt.Errorf("load postings: %w", err)
		}
		view.Postings = postings.Items
		return nil
	})
	g.Go(func() error {
		stats, err := p.env.Client.Jobs.Stats(ctx)
		if err != nil {
			return fmt.Errorf("load posting stats: %w", err)
		}
		view.Stats = *stats
		return nil
	})
	if err := g.Wait(); err != nil {
		return EmployerPostingsView{}, err
	}
	return view, nil
}

func (p *EmployerPostings) Load(ctx context.Context) (EmployerPostingsView, error) {
	if _, err := p.env.check(models.RoleEmployer); err != nil {
		return EmployerPostingsView{}, err
	}
	snap := p.res.Get(ctx)
	if snap.State == resource.StateError {
		return EmployerPostingsView{}, snap.Err
	}
	return snap.Value, nil
}

func (p *EmployerPostings) Close() { p.res.Close() }

func (v EmployerPostingsView) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Postings: %d total, %d active  Views: %d  Applications: %d\n\n",
		v.Stats.TotalPostings, v.Stats.ActivePostings, v.Stats.TotalViews, v.Stats.TotalApplications)

	tbl := ui.NewTable("My Postings", "ID", "TITLE", "STATUS", "VIEWS", "APPLICANTS")
	tbl.Empty = "No postings yet."
	for _, j := range v.Postings {
		tbl.AddRow(j.ID, j.Title, ui.JobBadge(j.Status),
			fmt.Sprintf("%d", j.ViewsCount), fmt.Sprintf("%d", j.ApplicationsCnt))
	}
	sb.WriteString(tbl.View())
	return sb.String()
}

// ApplicantReview is the employer's per-posting applicant pipeline. The
// actions offered for each applicant come from the status graph alone.
type ApplicantReview struct {
	env   Env
	jobID string
	res   *resource.Fetcher[[]models.JobApplication]
}

func NewApplicantReview(env Env, jobID string) *ApplicantReview {
	p := &ApplicantReview{env: env, jobID: jobID}
	p.res = resource.New(p.fetch)
	return p
}

func (p *ApplicantReview) fetch(ctx context.Context) ([]models.JobApplication, error) {
	return p.env.Client.Applications.ForJob(ctx, p.jobID)
}

func (p *ApplicantReview) Load(ctx context.Context) ([]models.JobApplication, error) {
	if _, err := p.env.check(models.RoleEmployer); err != nil {
		return nil, err
	}
	snap := p.res.Get(ctx)
	if snap.State == resource.StateError {
		return nil, snap.Err
	}
	return snap.Value, nil
}

// Actions lists the status moves currently offered for an application.
func (p *ApplicantReview) Actions(a models.JobApplication) []models.ApplicationStatus {
	return a.Status.NextStatuses()
}

// Advance moves an application to the next status and reloads the list.
func (p *ApplicantReview) Advance(ctx context.Context, appID string, next models.ApplicationStatus, notes string) ([]models.JobApplication, error) {
	if _, err := p.env.check(models.RoleEmployer); err != nil {
		return nil, err
	}
	if err := p.env.Client.Applications.UpdateStatus(ctx, appID, next, notes); err != nil {
		p.env.Feed.Failure(err, "Failed to update application status")
		return nil, err
	}
	p.env.Feed.Success(fmt.Sprintf("Application marked %s", next))
	return p.Load(ctx)
}

func (p *ApplicantReview) Close() { p.res.Close() }

func RenderApplicants(apps []models.JobApplication) string {
	tbl := ui.NewTable("Applicants", "NAME", "STATUS", "MATCH", "ACTIONS")
	tbl.Empty = "No applications yet."
	for _, a := range apps {
		match := "-"
		if a.MatchData != nil {
			match = fmt.Sprintf("%.0f%%", a.MatchData.MatchScore)
		}
		var labels []string
		for _, next := range a.Status.NextStatuses() {
			labels = append(labels, next.ActionLabel())
		}
		tbl.AddRow(a.ApplicantName, ui.ApplicationBadge(a.Status), match, strings.Join(labels, " | "))
	}
	return tbl.View()
}

// MatchedJobs ranks active postings against the learner's verified
// skills, cut off below the chosen score.
type MatchedJobs struct {
	env      Env
	minScore int
	res      *resource.Fetcher[[]models.JobPosting]
}

func NewMatchedJobs(env Env, minScore int) *MatchedJobs {
	p := &MatchedJobs{env: env, minScore: minScore}
	p.res = resource.New(p.fetch)
	return p
}

func (p *MatchedJobs) fetch(ctx context.Context) ([]models.JobPosting, error) {
	jobs, err := p.env.Client.Applications.MatchedJobs(ctx, p.minScore)
	if err != nil {
		return nil, err
	}
	// The server already filters, but a re-applied cutoff keeps the view
	// honest when the threshold changed between fetches.
	return derive.FilterByMinScore(jobs, float64(p.minScore)), nil
}

// SetMinScore changes the cutoff; the next Load fetches fresh.
func (p *MatchedJobs) SetMinScore(min int) { p.minScore = min }

func (p *MatchedJobs) Load(ctx context.Context) ([]models.JobPosting, error) {
	if _, err := p.env.check(models.RoleLearner); err != nil {
		return nil, err
	}
	snap := p.res.Get(ctx)
	if snap.State == resource.StateError {
		return nil, snap.Err
	}
	return snap.Value, nil
}

func (p *MatchedJobs) Close() { p.res.Close() }

func RenderMatchedJobs(jobs []models.JobPosting) string {
	tbl := ui.NewTable("Matched Jobs", "TITLE", "SCORE", "MATCHED", "MISSING")
	tbl.Empty = "No matches at this score. Verify more skills or lower the cutoff."
	for _, j := range jobs {
		if j.MatchData == nil {
			continue
		}
		tbl.AddRow(j.Title, fmt.Sprintf("%.0f%%", j.MatchData.MatchScore),
			strings.Join(j.MatchData.MatchedSkills, ", "),
			strings.Join(j.MatchData.MissingSkills, ", "))
	}
	return tbl.View()
}
