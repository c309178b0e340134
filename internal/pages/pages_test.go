package pages_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Gerri254/chainctl/internal/apitest"
	"github.com/Gerri254/chainctl/internal/config"
	"github.com/Gerri254/chainctl/internal/forms"
	"github.com/Gerri254/chainctl/internal/notify"
	"github.com/Gerri254/chainctl/internal/pages"
	"github.com/Gerri254/chainctl/internal/session"
	"github.com/Gerri254/chainctl/internal/store"
	"github.com/Gerri254/chainctl/pkg/chainapi"
	"github.com/Gerri254/chainctl/pkg/models"
)

func newEnv(t *testing.T) (pages.Env, *apitest.Server) {
	t.Helper()
	backend := apitest.NewServer()
	srv := httptest.NewServer(backend.Router())
	t.Cleanup(srv.Close)

	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	sess, err := session.NewManager(context.Background(), st)
	if err != nil {
		t.Fatalf("new session manager: %v", err)
	}

	cfg := config.ClientConfig{
		Timeout:                 5 * time.Second,
		Backoff:                 10 * time.Millisecond,
		CircuitFailureThreshold: 3,
		CircuitReset:            time.Minute,
	}
	client, err := chainapi.NewClient(srv.URL, cfg, sess)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	return pages.Env{Session: sess, Client: client, Feed: notify.NewFeed()}, backend
}

func login(t *testing.T, env pages.Env, email string) {
	t.Helper()
	res, err := env.Client.Auth.Login(context.Background(), chainapi.Credentials{
		Email:    email,
		Password: apitest.Password,
	})
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	if err := env.Session.Establish(context.Background(), res.User, res.AccessToken, res.RefreshToken); err != nil {
		t.Fatalf("establish session: %v", err)
	}
}

func TestGuardRedirects(t *testing.T) {
	env, _ := newEnv(t)
	ctx := context.Background()

	p := pages.NewLearnerDashboard(env)
	defer p.Close()

	_, err := p.Load(ctx)
	to, ok := pages.IsRedirect(err)
	if !ok || to != "/login" {
		t.Fatalf("unauthenticated load: redirect=%q ok=%v err=%v", to, ok, err)
	}

	login(t, env, apitest.EmployerEmail)
	_, err = p.Load(ctx)
	to, ok = pages.IsRedirect(err)
	if !ok || to != "/employer/dashboard" {
		t.Fatalf("employer on learner page: redirect=%q ok=%v err=%v", to, ok, err)
	}
}

func TestSuspendedAccountCannotLogin(t *testing.T) {
	env, _ := newEnv(t)

	_, err := env.Client.Auth.Login(context.Background(), chainapi.Credentials{
		Email:    apitest.SuspendedEmail,
		Password: apitest.Password,
	})
	apiErr, ok := chainapi.AsAPIError(err)
	if !ok || apiErr.StatusCode != 403 || apiErr.Message != "Account is suspended" {
		t.Fatalf("err = %v", err)
	}
}

// Creating a posting and reloading my-postings must show the new posting.
func TestEmployerPostingRoundTrip(t *testing.T) {
	env, _ := newEnv(t)
	ctx := context.Background()
	login(t, env, apitest.EmployerEmail)

	p := pages.NewEmployerPostings(env)
	defer p.Close()

	before, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	form := forms.JobPosting{
		Title:          "Platform Engineer",
		Description:    "Operate the verification platform's build and deploy pipeline end to end.",
		SkillsRequired: []string{"Go", "Kubernetes"},
		Location:       "Mombasa",
		EmploymentType: "full_time",
	}
	created, fieldErrs, err := form.Submit(ctx, env.Client.Jobs)
	if err != nil || !fieldErrs.Valid() {
		t.Fatalf("submit: errs=%v err=%v", fieldErrs, err)
	}

	after, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(after.Postings) != len(before.Postings)+1 {
		t.Fatalf("postings = %d, want %d", len(after.Postings), len(before.Postings)+1)
	}
	found := false
	for _, j := range after.Postings {
		if j.ID == created.ID && j.Title == "Platform Engineer" {
			found = true
		}
	}
	if !found {
		t.Fatal("created posting missing from my-postings")
	}
	if after.Stats.TotalPostings != before.Stats.TotalPostings+1 {
		t.Errorf("stats postings = %d, want %d", after.Stats.TotalPostings, before.Stats.TotalPostings+1)
	}
}

func TestLearnerApplyAndDashboard(t *testing.T) {
	env, backend := newEnv(t)
	ctx := context.Background()
	login(t, env, apitest.LearnerEmail)

	detail := pages.NewJobDetail(env, backend.Fix().JobGoBackendID)
	defer detail.Close()

	view, err := detail.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if view.HasApplied {
		t.Fatal("fresh learner must not have applied yet")
	}
	// The learner has passed Go and PostgreSQL assessments; the posting
	// wants Go, PostgreSQL and Docker.
	if len(view.Matched) != 2 || len(view.Missing) != 1 {
		t.Fatalf("matched=%v missing=%v", view.Matched, view.Missing)
	}

	view, err = detail.Apply(ctx, "I have been running Go services in production for three years.")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !view.HasApplied {
		t.Fatal("view must reflect the application after refetch")
	}

	// Applying twice is a conflict, surfaced through the feed verbatim.
	if _, err := detail.Apply(ctx, "again"); err == nil {
		t.Fatal("second apply must fail")
	}
	recent := env.Feed.Recent(1)
	if len(recent) != 1 || recent[0].Message != "You have already applied for this job" {
		t.Fatalf("feed = %+v", recent)
	}

	dash := pages.NewLearnerDashboard(env)
	defer dash.Close()
	dv, err := dash.Load(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dv.Stats.Total != 1 || dv.Stats.Pending != 1 {
		t.Fatalf("stats = %+v", dv.Stats)
	}
	if len(dv.Skills) != 2 {
		t.Fatalf("skills = %+v", dv.Skills)
	}
}

func TestApplicantReviewPipeline(t *testing.T) {
	env, backend := newEnv(t)
	ctx := context.Background()
	jobID := backend.Fix().JobGoBackendID

	login(t, env, apitest.LearnerEmail)
	if _, err := env.Client.Applications.Create(ctx, chainapi.ApplicationInput{JobID: jobID}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	login(t, env, apitest.EmployerEmail)
	review := pages.NewApplicantReview(env, jobID)
	defer review.Close()

	apps, err := review.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(apps) != 1 || apps[0].Status != models.ApplicationPending {
		t.Fatalf("apps = %+v", apps)
	}
	if apps[0].MatchData == nil || len(apps[0].MatchData.MatchedSkills) == 0 {
		t.Fatalf("match data missing: %+v", apps[0].MatchData)
	}

	apps, err = review.Advance(ctx, apps[0].ID, models.ApplicationReviewed, "solid profile")
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if apps[0].Status != models.ApplicationReviewed || apps[0].ReviewedAt == nil {
		t.Fatalf("after review: %+v", apps[0])
	}

	apps, err = review.Advance(ctx, apps[0].ID, models.ApplicationShortlisted, "")
	if err != nil {
		t.Fatalf("shortlist: %v", err)
	}

	// A shortlisted application offers exactly one action.
	actions := review.Actions(apps[0])
	if len(actions) != 1 || actions[0] != models.ApplicationAccepted {
		t.Fatalf("actions = %v", actions)
	}

	// Rejecting from shortlisted is not a legal move.
	if _, err := review.Advance(ctx, apps[0].ID, models.ApplicationRejected, ""); err == nil {
		t.Fatal("shortlisted -> rejected must be refused")
	}
}

func TestProcurementSearchIsPublic(t *testing.T) {
	env, _ := newEnv(t)
	ctx := context.Background()

	p := pages.NewProcurementSearch(env)
	defer p.Close()

	page, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 3 {
		t.Fatalf("page = %+v", page)
	}

	p.SetFilters(chainapi.ProcurementFilters{Status: "published"})
	page, err = p.Load(ctx)
	if err != nil {
		t.Fatalf("filtered load: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("published total = %d", page.Total)
	}
}

func TestProcurementDetailAndBidding(t *testing.T) {
	env, backend := newEnv(t)
	ctx := context.Background()
	tender := backend.Fix().TenderRoadID

	login(t, env, apitest.VendorEmail)
	detail := pages.NewProcurementDetail(env, tender)
	defer detail.Close()

	view, err := detail.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !view.Procurement.Metadata.HasAnomalies || len(view.Anomalies) != 2 {
		t.Fatalf("anomalies = %+v", view.Anomalies)
	}
	if view.BidSummary.Count != 0 {
		t.Fatalf("bid summary = %+v", view.BidSummary)
	}

	form := forms.Bid{BidAmount: 45_500_000, Currency: "KES", DeliveryTimeline: "9 months"}
	view, fieldErrs, err := detail.SubmitBid(ctx, form)
	if err != nil || !fieldErrs.Valid() {
		t.Fatalf("bid: errs=%v err=%v", fieldErrs, err)
	}
	if view.BidSummary.Count != 1 || view.BidSummary.Lowest != 45_500_000 {
		t.Fatalf("bid summary after submit = %+v", view.BidSummary)
	}

	// Second bid on the same tender is a conflict.
	if _, _, err := detail.SubmitBid(ctx, form); err == nil {
		t.Fatal("duplicate bid must fail")
	}
	recent := env.Feed.Recent(1)
	if recent[0].Message != "You have already submitted a bid for this procurement" {
		t.Fatalf("feed = %+v", recent)
	}

	view, fieldErrs, err = detail.FileReport(ctx, forms.Report{
		Category:    "pricing",
		Description: "The estimate is far above comparable projects in this county.",
	})
	if err != nil || !fieldErrs.Valid() {
		t.Fatalf("report: errs=%v err=%v", fieldErrs, err)
	}
	if view.ReportCount != 1 {
		t.Fatalf("report count = %d", view.ReportCount)
	}
}

func TestAnomalyDashboardResolve(t *testing.T) {
	env, backend := newEnv(t)
	ctx := context.Background()
	login(t, env, apitest.AuditorEmail)

	dash := pages.NewAnomalyDashboard(env)
	defer dash.Close()

	view, err := dash.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if view.Stats.Total != 2 || view.Stats.Unresolved != 1 {
		t.Fatalf("stats = %+v", view.Stats)
	}
	if len(view.HighRisk) != 1 {
		t.Fatalf("high risk = %+v", view.HighRisk)
	}

	view, err = dash.Resolve(ctx, backend.Fix().AnomalyOpenID, "Verified against market rates, pricing justified")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if view.Stats.Unresolved != 0 || len(view.HighRisk) != 0 {
		t.Fatalf("after resolve: %+v", view)
	}
}

func TestOfficerDashboard(t *testing.T) {
	env, _ := newEnv(t)
	ctx := context.Background()
	login(t, env, apitest.OfficerEmail)

	dash := pages.NewOfficerDashboard(env)
	defer dash.Close()

	view, err := dash.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if view.Metrics.TotalProcurements != 3 || view.Metrics.FlaggedCount != 1 {
		t.Fatalf("metrics = %+v", view.Metrics)
	}

	view, err = dash.PublishTender(ctx, chainapi.ProcurementInput{
		Title:          "School desks supply",
		Category:       "supplies",
		EstimatedValue: 2_400_000,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if view.Metrics.TotalProcurements != 4 {
		t.Fatalf("after publish: %+v", view.Metrics)
	}
}

func TestVendorDirectoryRegistration(t *testing.T) {
	env, _ := newEnv(t)
	ctx := context.Background()
	login(t, env, apitest.VendorEmail)

	dir := pages.NewVendorDirectory(env)
	defer dir.Close()

	view, err := dir.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(view.Vendors) != 2 {
		t.Fatalf("vendors = %d", len(view.Vendors))
	}

	view, fieldErrs, err := dir.Register(ctx, forms.VendorRegistration{
		Name:           "Rift Valley Logistics",
		RegistrationNo: "REG-2024-0031",
		Categories:     []string{"services"},
		ContactEmail:   "ops@riftlogistics.example",
	})
	if err != nil || !fieldErrs.Valid() {
		t.Fatalf("register: errs=%v err=%v", fieldErrs, err)
	}
	if len(view.Vendors) != 3 {
		t.Fatalf("vendors after register = %d", len(view.Vendors))
	}
}
