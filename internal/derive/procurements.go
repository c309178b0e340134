package derive

import "github.com/Gerri254/chainctl/pkg/models"

// ProcurementDashboard is the aggregate block on the official and public
// dashboards, recomputed from whatever list the page holds.
type ProcurementDashboard struct {
	Total      int
	TotalValue float64
	ByStatus   map[models.ProcurementStatus]int
	ByCategory map[string]int
	Flagged    int
	HighRisk   int
}

// ProcurementDashboardFrom tallies the list. Tenders whose risk score is at
// or above riskThreshold count as high risk.
func ProcurementDashboardFrom(items []models.Procurement, riskThreshold float64) ProcurementDashboard {
	d := ProcurementDashboard{
		Total:      len(items),
		ByStatus:   make(map[models.ProcurementStatus]int),
		ByCategory: make(map[string]int),
	}
	for _, p := range items {
		d.TotalValue += p.EstimatedValue
		d.ByStatus[p.Status]++
		if p.Category != "" {
			d.ByCategory[p.Category]++
		}
		if p.Metadata.HasAnomalies {
			d.Flagged++
		}
		if p.Metadata.RiskScore >= riskThreshold {
			d.HighRisk++
		}
	}
	return d
}

// AnomaliesBySeverity groups anomalies into a severity histogram.
func AnomaliesBySeverity(items []models.Anomaly) map[models.AnomalySeverity]int {
	out := make(map[models.AnomalySeverity]int, len(items))
	for _, a := range items {
		out[a.Severity]++
	}
	return out
}

// UnresolvedAnomalies keeps the anomalies still open, ordered as given.
func UnresolvedAnomalies(items []models.Anomaly) []models.Anomaly {
	var out []models.Anomaly
	for _, a := range items {
		if !a.Resolved {
			out = append(out, a)
		}
	}
	return out
}

// BidSummary is the spread block on the bid-evaluation view.
type BidSummary struct {
	Count   int
	Lowest  float64
	Highest float64
	Average float64
}

// BidSummaryFrom computes the bid spread. An empty list yields a zero
// summary.
func BidSummaryFrom(bids []models.Bid) BidSummary {
	var s BidSummary
	s.Count = len(bids)
	if s.Count == 0 {
		return s
	}

	s.Lowest = bids[0].Amount
	s.Highest = bids[0].Amount
	var sum float64
	for _, b := range bids {
		sum += b.Amount
		if b.Amount < s.Lowest {
			s.Lowest = b.Amount
		}
		if b.Amount > s.Highest {
			s.Highest = b.Amount
		}
	}
	s.Average = sum / float64(s.Count)
	return s
}

// ReportsByStatus groups citizen reports into a status histogram.
func ReportsByStatus(items []models.Report) map[models.ReportStatus]int {
	out := make(map[models.ReportStatus]int, len(items))
	for _, r := range items {
		out[r.Status]++
	}
	return out
}
