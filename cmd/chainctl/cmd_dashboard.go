package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Gerri254/chainctl/internal/pages"
	"github.com/Gerri254/chainctl/internal/ui"
	"github.com/Gerri254/chainctl/pkg/models"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the dashboard for your role",
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sess := a.sess.Current()
	if !sess.Authenticated() {
		return fmt.Errorf("not signed in; run \"chainctl auth login\" first")
	}

	switch sess.User.EffectiveRole() {
	case models.RoleLearner:
		p := pages.NewLearnerDashboard(a.env())
		defer p.Close()
		view, err := p.Load(ctx)
		if err != nil {
			return friendly(err)
		}
		fmt.Println(view.Render())

	case models.RoleEmployer:
		p := pages.NewEmployerPostings(a.env())
		defer p.Close()
		view, err := p.Load(ctx)
		if err != nil {
			return friendly(err)
		}
		fmt.Println(view.Render())

	case models.RoleProcurementOfficer, models.RoleGovernmentOfficial, models.RoleAdmin:
		p := pages.NewOfficerDashboard(a.env())
		defer p.Close()
		view, err := p.Load(ctx)
		if err != nil {
			return friendly(err)
		}
		fmt.Println(view.Render())

	case models.RoleAuditor:
		p := pages.NewAnomalyDashboard(a.env())
		defer p.Close()
		view, err := p.Load(ctx)
		if err != nil {
			return friendly(err)
		}
		fmt.Println(view.Render())

	case models.RoleVendor:
		bids, err := a.client.Bids.Mine(ctx)
		if err != nil {
			a.feed.Failure(err, "Failed to load bids")
			a.printFeed()
			return err
		}
		tbl := ui.NewTable("My Bids", "ID", "TENDER", "AMOUNT", "STATUS")
		tbl.Empty = "No bids submitted. Find open tenders with \"chainctl procurements list\"."
		for _, b := range bids {
			tbl.AddRow(b.ID, b.ProcurementID,
				fmt.Sprintf("%.0f %s", b.Amount, b.Currency), string(b.Status))
		}
		fmt.Println(tbl.View())

	default:
		fmt.Println("No dashboard for your role. Try \"chainctl procurements list\".")
	}
	return nil
}
