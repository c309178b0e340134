package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Gerri254/chainctl/internal/pages"
	"github.com/Gerri254/chainctl/internal/ui"
	"github.com/Gerri254/chainctl/pkg/models"
)

var (
	resolveNote      string
	reportStatus     string
	reportResolution string
)

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies",
	Short: "Work the anomaly queue (auditors)",
}

var anomaliesQueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show anomaly aggregates and the open high-risk queue",
	RunE:  runAnomaliesQueue,
}

var anomaliesResolveCmd = &cobra.Command{
	Use:   "resolve <anomaly-id>",
	Short: "Close an anomaly with a resolution note",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnomaliesResolve,
}

var anomaliesAnalyzeCmd = &cobra.Command{
	Use:   "analyze <procurement-id>",
	Short: "Run anomaly detection against a tender",
	RunE:  runAnomaliesAnalyze,
	Args:  cobra.ExactArgs(1),
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Triage transparency reports (officers and auditors)",
}

var reportsQueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List pending reports",
	RunE:  runReportsQueue,
}

var reportsUpdateCmd = &cobra.Command{
	Use:   "update <report-id>",
	Short: "Move a report through the triage pipeline",
	Long: `Update a report's status.

Legal moves: pending -> investigating or dismissed;
investigating -> resolved or dismissed.`,
	Args: cobra.ExactArgs(1),
	RunE: runReportsUpdate,
}

func init() {
	anomaliesResolveCmd.Flags().StringVar(&resolveNote, "note", "", "resolution note")
	reportsUpdateCmd.Flags().StringVar(&reportStatus, "status", "", "new status")
	reportsUpdateCmd.Flags().StringVar(&reportResolution, "resolution", "", "resolution note")

	anomaliesCmd.AddCommand(anomaliesQueueCmd, anomaliesResolveCmd, anomaliesAnalyzeCmd)
	reportsCmd.AddCommand(reportsQueueCmd, reportsUpdateCmd)
	rootCmd.AddCommand(anomaliesCmd, reportsCmd)
}

func runAnomaliesQueue(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p := pages.NewAnomalyDashboard(a.env())
	defer p.Close()

	view, err := p.Load(ctx)
	if err != nil {
		return friendly(err)
	}
	fmt.Println(view.Render())
	return nil
}

func runAnomaliesResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p := pages.NewAnomalyDashboard(a.env())
	defer p.Close()

	view, err := p.Resolve(ctx, args[0], resolveNote)
	if err != nil {
		a.printFeed()
		return friendly(err)
	}
	a.printFeed()
	fmt.Println(view.Render())
	return nil
}

func runAnomaliesAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.client.Anomalies.Analyze(ctx, args[0]); err != nil {
		a.feed.Failure(err, "Analysis failed")
		a.printFeed()
		return err
	}

	anomalies, err := a.client.Anomalies.ForProcurement(ctx, args[0])
	if err != nil {
		return err
	}
	tbl := ui.NewTable("Detected Anomalies", "ID", "TYPE", "SEVERITY", "RISK", "RESOLVED")
	tbl.Empty = "No anomalies detected."
	for _, an := range anomalies {
		tbl.AddRow(an.ID, an.Type, ui.SeverityBadge(an.Severity),
			fmt.Sprintf("%.0f", an.RiskScore), fmt.Sprintf("%v", an.Resolved))
	}
	fmt.Println(tbl.View())
	return nil
}

func runReportsQueue(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	page, err := a.client.Reports.List(ctx, models.ReportPending, 0, 0)
	if err != nil {
		a.feed.Failure(err, "Failed to load reports")
		a.printFeed()
		return err
	}

	tbl := ui.NewTable("Pending Reports", "ID", "TENDER", "CATEGORY", "FILED")
	tbl.Empty = "No pending reports."
	for _, r := range page.Items {
		tbl.AddRow(r.ID, r.ProcurementID, r.Category, r.CreatedAt.Format("2006-01-02"))
	}
	fmt.Println(tbl.View())
	return nil
}

func runReportsUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	next := models.ReportStatus(reportStatus)
	if err := a.client.Reports.UpdateStatus(ctx, args[0], next, reportResolution); err != nil {
		a.feed.Failure(err, "Failed to update report")
		a.printFeed()
		return err
	}
	fmt.Printf("Report %s marked %s\n", args[0], next)
	return nil
}
