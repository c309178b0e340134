package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Gerri254/chainctl/internal/derive"
	"github.com/Gerri254/chainctl/internal/forms"
	"github.com/Gerri254/chainctl/internal/resource"
	"github.com/Gerri254/chainctl/internal/ui"
	"github.com/Gerri254/chainctl/pkg/chainapi"
	"github.com/Gerri254/chainctl/pkg/models"
)

// ProcurementSearch is the public tender browser. No guard: anyone can
// see published tenders.
type ProcurementSearch struct {
	env     Env
	filters chainapi.ProcurementFilters
	res     *resource.Fetcher[chainapi.Page[models.Procurement]]
}

func NewProcurementSearch(env Env) *ProcurementSearch {
	p := &ProcurementSearch{env: env}
	p.res = resource.New(p.fetch)
	return p
}

func (p *ProcurementSearch) fetch(ctx context.Context) (chainapi.Page[models.Procurement], error) {
	return p.env.Client.Procurements.PublicList(ctx, p.filters)
}

// SetFilters replaces the filter set; the next Load fetches fresh.
func (p *ProcurementSearch) SetFilters(f chainapi.ProcurementFilters) { p.filters = f }

func (p *ProcurementSearch) Load(ctx context.Context) (chainapi.Page[models.Procurement], error) {
	snap := p.res.Get(ctx)
	if snap.State == resource.StateError {
		return chainapi.Page[models.Procurement]{}, snap.Err
	}
	return snap.Value, nil
}

func (p *ProcurementSearch) Close() { p.res.Close() }

func RenderProcurementPage(page chainapi.Page[models.Procurement], now time.Time) string {
	tbl := ui.NewTable(fmt.Sprintf("Tenders (page %d of %d, %d total)", page.Page, page.Pages, page.Total),
		"TENDER", "TITLE", "CATEGORY", "VALUE", "DEADLINE", "STATUS")
	tbl.Empty = "No tenders match your filters."
	for _, p := range page.Items {
		deadline := "-"
		if days, ok := p.DaysUntilDeadline(now); ok {
			deadline = fmt.Sprintf("%dd", days)
		}
		tbl.AddRow(p.TenderNumber, p.Title, p.Category,
			fmt.Sprintf("%.0f", p.EstimatedValue), deadline, ui.ProcurementBadge(p.Status))
	}
	return tbl.View()
}

// ProcurementDetail is one tender with its bids, report count and
// anomalies, fetched together.
type ProcurementDetail struct {
	env Env
	id  string
	res *resource.Fetcher[ProcurementDetailView]
}

type ProcurementDetailView struct {
	Procurement models.Procurement
	Bids        []models.Bid
	BidSummary  derive.BidSummary
	ReportCount int
	Anomalies   []models.Anomaly
}

func NewProcurementDetail(env Env, id string) *ProcurementDetail {
	p := &ProcurementDetail{env: env, id: id}
	p.res = resource.New(p.fetch)
	return p
}

func (p *ProcurementDetail) fetch(ctx context.Context) (ProcurementDetailView, error) {
	var view ProcurementDetailView

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		proc, err := p.env.Client.Procurements.Get(ctx, p.id)
		if err != nil {
			return fmt.Errorf("load procurement: %w", err)
		}
		view.Procurement = *proc
		return nil
	})
	g.Go(func() error {
		bids, err := p.env.Client.Bids.ForProcurement(ctx, p.id)
		if err != nil {
			return fmt.Errorf("load bids: %w", err)
		}
		view.Bids = bids
		return nil
	})
	g.Go(func() error {
		count, err := p.env.Client.Reports.CountForProcurement(ctx, p.id)
		if err != nil {
			return fmt.Errorf("load report count: %w", err)
		}
		view.ReportCount = count
		return nil
	})
	g.Go(func() error {
		anomalies, err := p.env.Client.Anomalies.ForProcurement(ctx, p.id)
		if err != nil {
			return fmt.Errorf("load anomalies: %w", err)
		}
		view.Anomalies = anomalies
		return nil
	})
	if err := g.Wait(); err != nil {
		return ProcurementDetailView{}, err
	}

	view.BidSummary = derive.BidSummaryFrom(view.Bids)
	return view, nil
}

func (p *ProcurementDetail) Load(ctx context.Context) (ProcurementDetailView, error) {
	if _, err := p.env.check(); err != nil {
		return ProcurementDetailView{}, err
	}
	snap := p.res.Get(ctx)
	if snap.State == resource.StateError {
		return ProcurementDetailView{}, snap.Err
	}
	return snap.Value, nil
}

// SubmitBid runs the bid form against this tender and reloads on success.
func (p *ProcurementDetail) SubmitBid(ctx context.Context, form forms.Bid) (ProcurementDetailView, forms.FieldErrors, error) {
	if _, err := p.env.check(models.RoleVendor); err != nil {
		return ProcurementDetailView{}, nil, err
	}
	form.ProcurementID = p.id
	_, fieldErrs, err := form.Submit(ctx, p.env.Client.Bids)
	if err != nil {
		p.env.Feed.Failure(err, "Failed to submit bid")
		return ProcurementDetailView{}, fieldErrs, err
	}
	if !fieldErrs.Valid() {
		return ProcurementDetailView{}, fieldErrs, nil
	}
	p.env.Feed.Success("Bid submitted")
	view, err := p.Load(ctx)
	return view, nil, err
}

// FileReport runs the report form against this tender and reloads.
func (p *ProcurementDetail) FileReport(ctx context.Context, form forms.Report) (ProcurementDetailView, forms.FieldErrors, error) {
	form.ProcurementID = p.id
	_, fieldErrs, err := form.Submit(ctx, p.env.Client.Reports)
	if err != nil {
		p.env.Feed.Failure(err, "Failed to submit report")
		return ProcurementDetailView{}, fieldErrs, err
	}
	if !fieldErrs.Valid() {
		return ProcurementDetailView{}, fieldErrs, nil
	}
	p.env.Feed.Success("Report submitted. Thank you for keeping procurement honest.")
	view, err := p.Load(ctx)
	return view, nil, err
}

func (p *ProcurementDetail) Close() { p.res.Close() }

func (v ProcurementDetailView) Render(now time.Time) string {
	var sb strings.Builder
	proc := v.Procurement
	fmt.Fprintf(&sb, "%s  %s\n%s\n", proc.TenderNumber, ui.ProcurementBadge(proc.Status), proc.Title)
	fmt.Fprintf(&sb, "Estimated value: %.0f %s\n", proc.EstimatedValue, proc.Currency)
	if days, ok := proc.DaysUntilDeadline(now); ok {
		fmt.Fprintf(&sb, "Deadline: %d days\n", days)
	}
	if proc.Metadata.HasAnomalies {
		fmt.Fprintf(&sb, "Flagged: risk score %.0f\n", proc.Metadata.RiskScore)
	}
	fmt.Fprintf(&sb, "Citizen reports: %d\n\n", v.ReportCount)

	if v.BidSummary.Count > 0 {
		fmt.Fprintf(&sb, "Bids: %d (low %.0f, high %.0f, avg %.0f)\n",
			v.BidSummary.Count, v.BidSummary.Lowest, v.BidSummary.Highest, v.BidSummary.Average)
	}

	anomalies := ui.NewTable("Anomalies", "TYPE", "SEVERITY", "RISK", "RESOLVED")
	anomalies.Empty = "No anomalies detected."
	for _, a := range v.Anomalies {
		anomalies.AddRow(a.Type, ui.SeverityBadge(a.Severity),
			fmt.Sprintf("%.0f", a.RiskScore), fmt.Sprintf("%v", a.Resolved))
	}
	sb.WriteString(anomalies.View())
	return sb.String()
}

// VendorDirectory is the public supplier register plus the top-awarded
// list.
type VendorDirectory struct {
	env Env
	res *resource.Fetcher[VendorDirectoryView]
}

type VendorDirectoryView struct {
	Vendors []models.Vendor
	Top     []models.Vendor
}

func NewVendorDirectory(env Env) *VendorDirectory {
	p := &VendorDirectory{env: env}
	p.res = resource.New(p.fetch)
	return p
}

func (p *VendorDirectory) fetch(ctx context.Context) (VendorDirectoryView, error) {
	var view VendorDirectoryView

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vendors, err := p.env.Client.Vendors.PublicList(ctx)
		if err != nil {
			return fmt.Errorf("load vendors: %w", err)
		}
		view.Vendors = vendors
		return nil
	})
	if p.env.Session.Current().Authenticated() {
		g.Go(func() error {
			top, err := p.env.Client.Vendors.Top(ctx, 5)
			if err != nil {
				return fmt.Errorf("load top vendors: %w", err)
			}
			view.Top = top
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return VendorDirectoryView{}, err
	}
	return view, nil
}

func (p *VendorDirectory) Load(ctx context.Context) (VendorDirectoryView, error) {
	snap := p.res.Get(ctx)
	if snap.State == resource.StateError {
		return VendorDirectoryView{}, snap.Err
	}
	return snap.Value, nil
}

// Register runs the vendor registration form and reloads the directory.
func (p *VendorDirectory) Register(ctx context.Context, form forms.VendorRegistration) (VendorDirectoryView, forms.FieldErrors, error) {
	_, fieldErrs, err := form.Submit(ctx, p.env.Client.Vendors)
	if err != nil {
		p.env.Feed.Failure(err, "Failed to register vendor")
		return VendorDirectoryView{}, fieldErrs, err
	}
	if !fieldErrs.Valid() {
		return VendorDirectoryView{}, fieldErrs, nil
	}
	p.env.Feed.Success("Vendor registered")
	view, err := p.Load(ctx)
	return view, nil, err
}

func (p *VendorDirectory) Close() { p.res.Close() }

func (v VendorDirectoryView) Render() string {
	tbl := ui.NewTable("Vendors", "NAME", "CATEGORIES", "VERIFIED", "AWARDED")
	tbl.Empty = "No vendors registered."
	for _, vendor := range v.Vendors {
		tbl.AddRow(vendor.Name, strings.Join(vendor.Categories, ", "),
			fmt.Sprintf("%v", vendor.Verified), fmt.Sprintf("%.0f", vendor.TotalAwardedValue))
	}
	return tbl.View()
}

// AnomalyDashboard is the auditor's view: aggregates plus the open
// high-risk queue.
type AnomalyDashboard struct {
	env Env
	res *resource.Fetcher[AnomalyDashboardView]
}

type AnomalyDashboardView struct {
	Stats      models.AnomalyStats
	HighRisk   []models.Anomaly
	BySeverity map[models.AnomalySeverity]int
}

func NewAnomalyDashboard(env Env) *AnomalyDashboard {
	p := &AnomalyDashboard{env: env}
	p.res = resource.New(p.fetch)
	return p
}

func (p *AnomalyDashboard) fetch(ctx context.Context) (AnomalyDashboardView, error) {
	var view AnomalyDashboardView

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := p.env.Client.Anomalies.Statistics(ctx)
		if err != nil {
			return fmt.Errorf("load anomaly stats: %w", err)
		}
		view.Stats = *stats
		return nil
	})
	g.Go(func() error {
		items, err := p.env.Client.Anomalies.HighRisk(ctx)
		if err != nil {
			return fmt.Errorf("load high-risk anomalies: %w", err)
		}
		view.HighRisk = derive.UnresolvedAnomalies(items)
		return nil
	})
	if err := g.Wait(); err != nil {
		return AnomalyDashboardView{}, err
	}

	view.BySeverity = view.Stats.BySeverity
	return view, nil
}

func (p *AnomalyDashboard) Load(ctx context.Context) (AnomalyDashboardView, error) {
	if _, err := p.env.check(models.RoleAuditor, models.RoleGovernmentOfficial); err != nil {
		return AnomalyDashboardView{}, err
	}
	snap := p.res.Get(ctx)
	if snap.State == resource.StateError {
		return AnomalyDashboardView{}, snap.Err
	}
	return snap.Value, nil
}

// Resolve closes an anomaly with a note and reloads the queue.
func (p *AnomalyDashboard) Resolve(ctx context.Context, anomalyID, note string) (AnomalyDashboardView, error) {
	if _, err := p.env.check(models.RoleAuditor, models.RoleGovernmentOfficial); err != nil {
		return AnomalyDashboardView{}, err
	}
	if err := p.env.Client.Anomalies.Resolve(ctx, anomalyID, note); err != nil {
		p.env.Feed.Failure(err, "Failed to resolve anomaly")
		return AnomalyDashboardView{}, err
	}
	p.env.Feed.Success("Anomaly resolved")
	return p.Load(ctx)
}

func (p *AnomalyDashboard) Close() { p.res.Close() }

func (v AnomalyDashboardView) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Anomalies: %d total, %d unresolved\n\n", v.Stats.Total, v.Stats.Unresolved)

	tbl := ui.NewTable("High-Risk Queue", "ID", "TYPE", "SEVERITY", "RISK")
	tbl.Empty = "Nothing in the queue."
	for _, a := range v.HighRisk {
		tbl.AddRow(a.ID, a.Type, ui.SeverityBadge(a.Severity), fmt.Sprintf("%.0f", a.RiskScore))
	}
	sb.WriteString(tbl.View())
	return sb.String()
}

// OfficerDashboard is the procurement official's home view: headline
// metrics, spending trend and the open report queue.
type OfficerDashboard struct {
	env Env
	res *resource.Fetcher[OfficerDashboardView]
}

type OfficerDashboardView struct {
	Metrics chainapi.KeyMetrics
	Trends  []chainapi.TrendPoint
	Stats   models.ProcurementStats
	Reports []models.Report
}

func NewOfficerDashboard(env Env) *OfficerDashboard {
	p := &OfficerDashboard{env: env}
	p.res = resource.New(p.fetch)
	return p
}

func (p *OfficerDashboard) fetch(ctx context.Context) (OfficerDashboardView, error) {
	var view OfficerDashboardView

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := p.env.Client.Analytics.Metrics(ctx)
		if err != nil {
			return fmt.Errorf("load metrics: %w", err)
		}
		view.Metrics = *m
		return nil
	})
	g.Go(func() error {
		t, err := p.env.Client.Analytics.Trends(ctx)
		if err != nil {
			return fmt.Errorf("load trends: %w", err)
		}
		view.Trends = t
		return nil
	})
	g.Go(func() error {
		st, err := p.env.Client.Procurements.Statistics(ctx)
		if err != nil {
			return fmt.Errorf("load procurement stats: %w", err)
		}
		view.Stats = *st
		return nil
	})
	g.Go(func() error {
		page, err := p.env.Client.Reports.List(ctx, models.ReportPending, 0, 0)
		if err != nil {
			return fmt.Errorf("load pending reports: %w", err)
		}
		view.Reports = page.Items
		return nil
	})
	if err := g.Wait(); err != nil {
		return OfficerDashboardView{}, err
	}
	return view, nil
}

func (p *OfficerDashboard) Load(ctx context.Context) (OfficerDashboardView, error) {
	if _, err := p.env.check(models.RoleProcurementOfficer, models.RoleGovernmentOfficial); err != nil {
		return OfficerDashboardView{}, err
	}
	snap := p.res.Get(ctx)
	if snap.State == resource.StateError {
		return OfficerDashboardView{}, snap.Err
	}
	return snap.Value, nil
}

// PublishTender creates a tender and reloads the dashboard.
func (p *OfficerDashboard) PublishTender(ctx context.Context, in chainapi.ProcurementInput) (OfficerDashboardView, error) {
	if _, err := p.env.check(models.RoleProcurementOfficer, models.RoleGovernmentOfficial); err != nil {
		return OfficerDashboardView{}, err
	}
	if _, err := p.env.Client.Procurements.Create(ctx, in); err != nil {
		p.env.Feed.Failure(err, "Failed to publish tender")
		return OfficerDashboardView{}, err
	}
	p.env.Feed.Success("Tender published")
	return p.Load(ctx)
}

func (p *OfficerDashboard) Close() { p.res.Close() }

func (v OfficerDashboardView) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Procurements: %d  Total value: %.0f  Active: %d  Flagged: %d\n\n",
		v.Metrics.TotalProcurements, v.Metrics.TotalValue, v.Metrics.ActiveTenders, v.Metrics.FlaggedCount)

	trend := ui.NewTable("Spending by Month", "PERIOD", "COUNT", "VALUE")
	for _, t := range v.Trends {
		trend.AddRow(t.Period, fmt.Sprintf("%d", t.Count), fmt.Sprintf("%.0f", t.Value))
	}
	sb.WriteString(trend.View())

	reports := ui.NewTable("Pending Reports", "ID", "TENDER", "CATEGORY")
	reports.Empty = "No pending reports."
	for _, r := range v.Reports {
		reports.AddRow(r.ID, r.ProcurementID, r.Category)
	}
	sb.WriteString("\n")
	sb.WriteString(reports.View())
	return sb.String()
}
