package apitest

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Gerri254/chainctl/pkg/models"
)

func (s *Server) sortedProcurements(keep func(*models.Procurement) bool) []models.Procurement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Procurement
	for _, p := range s.procurements {
		if keep == nil || keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].CreatedAt.After(out[k].CreatedAt)
		}
		return out[i].ID < out[k].ID
	})
	return out
}

func procurementFilter(r *http.Request, publicOnly bool) func(*models.Procurement) bool {
	q := r.URL.Query()
	status := q.Get("status")
	category := q.Get("category")
	search := strings.ToLower(q.Get("search"))
	return func(p *models.Procurement) bool {
		if publicOnly && p.Status == models.ProcurementDraft {
			return false
		}
		if status != "" && string(p.Status) != status {
			return false
		}
		if category != "" && p.Category != category {
			return false
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.TenderNumber), search) {
			return false
		}
		return true
	}
}

func (s *Server) listPublicProcurements(w http.ResponseWriter, r *http.Request) {
	items := s.sortedProcurements(procurementFilter(r, true))
	page, limit := pageParams(r, 10)
	writeResultsPage(w, items, page, limit)
}

func (s *Server) listProcurements(w http.ResponseWriter, r *http.Request) {
	items := s.sortedProcurements(procurementFilter(r, false))
	page, limit := pageParams(r, 10)
	writeResultsPage(w, items, page, limit)
}

func canManageProcurements(u *models.User) bool {
	switch u.EffectiveRole() {
	case models.RoleProcurementOfficer, models.RoleGovernmentOfficial, models.RoleAdmin:
		return true
	}
	return false
}

func (s *Server) createProcurement(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if !canManageProcurements(user) {
		writeError(w, http.StatusForbidden, "Only procurement officers can publish tenders")
		return
	}

	var in models.Procurement
	if !decodeBody(w, r, &in) {
		return
	}
	fields := map[string]any{}
	if in.Title == "" {
		fields["title"] = "Title is required"
	}
	if in.Category == "" {
		fields["category"] = "Category is required"
	}
	if in.EstimatedValue <= 0 {
		fields["estimated_value"] = "Estimated value must be positive"
	}
	if len(fields) > 0 {
		writeFieldErrors(w, "Validation failed", fields)
		return
	}

	now := s.now()
	in.ID = uuid.NewString()
	if in.TenderNumber == "" {
		in.TenderNumber = fmt.Sprintf("TN-%d-%s", now.Year(), uuid.NewString()[:8])
	}
	if in.Status == "" {
		in.Status = models.ProcurementPublished
	}
	if in.PublishedDate == nil && in.Status == models.ProcurementPublished {
		in.PublishedDate = &now
	}
	in.CreatedBy = user.ID
	in.CreatedAt = now
	in.UpdatedAt = now

	s.mu.Lock()
	s.procurements[in.ID] = &in
	s.mu.Unlock()

	writeData(w, http.StatusCreated, in)
}

func (s *Server) getProcurement(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p := s.procurements[mux.Vars(r)["id"]]
	s.mu.Unlock()
	if p == nil {
		writeError(w, http.StatusNotFound, "Procurement not found")
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) updateProcurement(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if !canManageProcurements(user) {
		writeError(w, http.StatusForbidden, "Only procurement officers can manage tenders")
		return
	}
	var in models.Procurement
	if !decodeBody(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.procurements[mux.Vars(r)["id"]]
	if p == nil {
		writeError(w, http.StatusNotFound, "Procurement not found")
		return
	}
	if in.Title != "" {
		p.Title = in.Title
	}
	if in.Description != "" {
		p.Description = in.Description
	}
	if in.Status != "" {
		p.Status = in.Status
	}
	if in.Deadline != nil {
		p.Deadline = in.Deadline
	}
	p.UpdatedAt = s.now()
	writeData(w, http.StatusOK, p)
}

func (s *Server) deleteProcurement(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if !canManageProcurements(user) {
		writeError(w, http.StatusForbidden, "Only procurement officers can manage tenders")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := mux.Vars(r)["id"]
	if s.procurements[id] == nil {
		writeError(w, http.StatusNotFound, "Procurement not found")
		return
	}
	delete(s.procurements, id)
	writeMessage(w, http.StatusOK, "Procurement deleted")
}

func (s *Server) procurementStats(w http.ResponseWriter, r *http.Request) {
	stats := models.ProcurementStats{
		ByStatus:   map[models.ProcurementStatus]int{},
		ByCategory: map[string]int{},
	}
	for _, p := range s.sortedProcurements(nil) {
		stats.Total++
		stats.TotalValue += p.EstimatedValue
		stats.ByStatus[p.Status]++
		stats.ByCategory[p.Category]++
		if p.AwardedAmount != nil {
			stats.AwardedValue += *p.AwardedAmount
		}
	}
	writeData(w, http.StatusOK, stats)
}

func (s *Server) submitBid(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user.EffectiveRole() != models.RoleVendor {
		writeError(w, http.StatusForbidden, "Only registered vendors can submit bids")
		return
	}

	var in struct {
		BidAmount        float64 `json:"bid_amount"`
		Currency         string  `json:"currency"`
		DeliveryTimeline string  `json:"delivery_timeline"`
		BidValidityDays  int     `json:"bid_validity_days"`
		Remarks          string  `json:"remarks"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.BidAmount <= 0 {
		writeFieldErrors(w, "Validation failed", map[string]any{"bid_amount": "Bid amount must be positive"})
		return
	}

	procurementID := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.procurements[procurementID]
	if p == nil {
		writeError(w, http.StatusNotFound, "Procurement not found")
		return
	}
	if p.Status != models.ProcurementPublished {
		writeError(w, http.StatusBadRequest, "This tender is not open for bids")
		return
	}
	for _, b := range s.bids {
		if b.ProcurementID == procurementID && b.VendorID == user.ID {
			writeError(w, http.StatusConflict, "You have already submitted a bid for this procurement")
			return
		}
	}

	bid := &models.Bid{
		ID:            uuid.NewString(),
		ProcurementID: procurementID,
		VendorID:      user.ID,
		VendorName:    user.FullName,
		Amount:        in.BidAmount,
		Currency:      in.Currency,
		Status:        models.BidSubmitted,
		SubmittedAt:   s.now(),
	}
	s.bids[bid.ID] = bid
	writeData(w, http.StatusCreated, bid)
}

func (s *Server) sortedBids(keep func(*models.Bid) bool) []models.Bid {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Bid
	for _, b := range s.bids {
		if keep(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].SubmittedAt.Equal(out[k].SubmittedAt) {
			return out[i].SubmittedAt.After(out[k].SubmittedAt)
		}
		return out[i].ID < out[k].ID
	})
	return out
}

func (s *Server) bidsForProcurement(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	bids := s.sortedBids(func(b *models.Bid) bool { return b.ProcurementID == id })
	page, limit := pageParams(r, 50)
	writeResultsPage(w, bids, page, limit)
}

func (s *Server) myBids(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	bids := s.sortedBids(func(b *models.Bid) bool { return b.VendorID == user.ID })
	page, limit := pageParams(r, 20)
	writeResultsPage(w, bids, page, limit)
}

func (s *Server) getBid(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	b := s.bids[mux.Vars(r)["id"]]
	s.mu.Unlock()
	if b == nil {
		writeError(w, http.StatusNotFound, "Bid not found")
		return
	}
	writeData(w, http.StatusOK, b)
}

func (s *Server) awardBid(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if !canManageProcurements(user) {
		writeError(w, http.StatusForbidden, "Only procurement officers can award bids")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	winner := s.bids[mux.Vars(r)["id"]]
	if winner == nil {
		writeError(w, http.StatusNotFound, "Bid not found")
		return
	}
	p := s.procurements[winner.ProcurementID]
	if p == nil {
		writeError(w, http.StatusNotFound, "Procurement not found")
		return
	}

	now := s.now()
	for _, b := range s.bids {
		if b.ProcurementID != winner.ProcurementID {
			continue
		}
		if b.ID == winner.ID {
			b.Status = models.BidAwarded
		} else {
			b.Status = models.BidRejected
		}
	}
	p.Status = models.ProcurementAwarded
	p.AwardedVendorID = winner.VendorID
	amount := winner.Amount
	p.AwardedAmount = &amount
	p.AwardedDate = &now
	p.UpdatedAt = now

	writeData(w, http.StatusOK, winner)
}

func (s *Server) sortedVendors() []models.Vendor {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Vendor
	for _, v := range s.vendors {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

func (s *Server) listPublicVendors(w http.ResponseWriter, r *http.Request) {
	vendors := s.sortedVendors()
	page, limit := pageParams(r, 20)
	writeResultsPage(w, vendors, page, limit)
}

func (s *Server) listVendors(w http.ResponseWriter, r *http.Request) {
	s.listPublicVendors(w, r)
}

func (s *Server) getVendor(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	v := s.vendors[mux.Vars(r)["id"]]
	s.mu.Unlock()
	if v == nil {
		writeError(w, http.StatusNotFound, "Vendor not found")
		return
	}
	writeData(w, http.StatusOK, v)
}

func (s *Server) createVendor(w http.ResponseWriter, r *http.Request) {
	var in models.Vendor
	if !decodeBody(w, r, &in) {
		return
	}
	fields := map[string]any{}
	if in.Name == "" {
		fields["name"] = "Name is required"
	}
	if len(in.Categories) == 0 {
		fields["categories"] = "At least one category is required"
	}
	if len(fields) > 0 {
		writeFieldErrors(w, "Validation failed", fields)
		return
	}

	s.mu.Lock()
	for _, v := range s.vendors {
		if in.RegistrationNo != "" && v.RegistrationNo == in.RegistrationNo {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "Vendor with this registration number already exists")
			return
		}
	}
	in.ID = uuid.NewString()
	in.CreatedAt = s.now()
	s.vendors[in.ID] = &in
	s.mu.Unlock()

	writeData(w, http.StatusCreated, in)
}

func (s *Server) updateVendor(w http.ResponseWriter, r *http.Request) {
	var in models.Vendor
	if !decodeBody(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.vendors[mux.Vars(r)["id"]]
	if v == nil {
		writeError(w, http.StatusNotFound, "Vendor not found")
		return
	}
	if in.Name != "" {
		v.Name = in.Name
	}
	if in.ContactEmail != "" {
		v.ContactEmail = in.ContactEmail
	}
	if len(in.Categories) > 0 {
		v.Categories = in.Categories
	}
	writeData(w, http.StatusOK, v)
}

func (s *Server) topVendors(w http.ResponseWriter, r *http.Request) {
	vendors := s.sortedVendors()
	sort.Slice(vendors, func(i, k int) bool {
		return vendors[i].TotalAwardedValue > vendors[k].TotalAwardedValue
	})
	if len(vendors) > 5 {
		vendors = vendors[:5]
	}
	page, limit := pageParams(r, 5)
	writeResultsPage(w, vendors, page, limit)
}

var reportTransitions = map[models.ReportStatus][]models.ReportStatus{
	models.ReportPending:       {models.ReportInvestigating, models.ReportDismissed},
	models.ReportInvestigating: {models.ReportResolved, models.ReportDismissed},
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request) {
	var in models.Report
	if !decodeBody(w, r, &in) {
		return
	}
	fields := map[string]any{}
	if in.ProcurementID == "" {
		fields["procurement_id"] = "Procurement is required"
	}
	if in.Description == "" {
		fields["description"] = "Description is required"
	}
	if len(fields) > 0 {
		writeFieldErrors(w, "Validation failed", fields)
		return
	}

	s.mu.Lock()
	if s.procurements[in.ProcurementID] == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Procurement not found")
		return
	}
	now := s.now()
	in.ID = uuid.NewString()
	in.Status = models.ReportPending
	in.CreatedAt = now
	in.UpdatedAt = now
	s.reports[in.ID] = &in
	s.mu.Unlock()

	writeData(w, http.StatusCreated, in)
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	s.mu.Lock()
	var out []models.Report
	for _, rep := range s.reports {
		if status != "" && string(rep.Status) != status {
			continue
		}
		out = append(out, *rep)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, k int) bool {
		if !out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].CreatedAt.After(out[k].CreatedAt)
		}
		return out[i].ID < out[k].ID
	})

	page, limit := pageParams(r, 20)
	writeResultsPage(w, out, page, limit)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rep := s.reports[mux.Vars(r)["id"]]
	s.mu.Unlock()
	if rep == nil {
		writeError(w, http.StatusNotFound, "Report not found")
		return
	}
	writeData(w, http.StatusOK, rep)
}

func (s *Server) updateReportStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status     string `json:"status"`
		Resolution string `json:"resolution"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rep := s.reports[mux.Vars(r)["id"]]
	if rep == nil {
		writeError(w, http.StatusNotFound, "Report not found")
		return
	}

	next := models.ReportStatus(req.Status)
	allowed := false
	for _, cand := range reportTransitions[rep.Status] {
		if cand == next {
			allowed = true
		}
	}
	if !allowed {
		writeError(w, http.StatusBadRequest, "Invalid status transition")
		return
	}
	rep.Status = next
	if req.Resolution != "" {
		rep.Resolution = req.Resolution
	}
	rep.UpdatedAt = s.now()
	writeData(w, http.StatusOK, rep)
}

func (s *Server) reportCount(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	count := 0
	for _, rep := range s.reports {
		if rep.ProcurementID == id {
			count++
		}
	}
	s.mu.Unlock()
	writeData(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) analyzeProcurement(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.procurements[mux.Vars(r)["id"]]
	if p == nil {
		writeError(w, http.StatusNotFound, "Procurement not found")
		return
	}

	now := s.now()
	p.Metadata.AIAnalyzed = true
	p.Metadata.AIAnalysisDate = &now
	if p.EstimatedValue > 20_000_000 && !p.Metadata.HasAnomalies {
		p.Metadata.HasAnomalies = true
		p.Metadata.RiskScore = 75
		a := &models.Anomaly{
			ID:            uuid.NewString(),
			ProcurementID: p.ID,
			Type:          "price_deviation",
			Severity:      models.SeverityHigh,
			RiskScore:     75,
			Description:   "Estimated value well above category baseline",
			DetectedAt:    now,
		}
		s.anomalies[a.ID] = a
	}
	writeMessage(w, http.StatusOK, "Analysis complete")
}

func (s *Server) sortedAnomalies(keep func(*models.Anomaly) bool) []models.Anomaly {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Anomaly
	for _, a := range s.anomalies {
		if keep == nil || keep(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].RiskScore != out[k].RiskScore {
			return out[i].RiskScore > out[k].RiskScore
		}
		return out[i].ID < out[k].ID
	})
	return out
}

func (s *Server) listAnomalies(w http.ResponseWriter, r *http.Request) {
	severity := r.URL.Query().Get("severity")
	items := s.sortedAnomalies(func(a *models.Anomaly) bool {
		return severity == "" || string(a.Severity) == severity
	})
	page, limit := pageParams(r, 20)
	writeResultsPage(w, items, page, limit)
}

func (s *Server) getAnomaly(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	a := s.anomalies[mux.Vars(r)["id"]]
	s.mu.Unlock()
	if a == nil {
		writeError(w, http.StatusNotFound, "Anomaly not found")
		return
	}
	writeData(w, http.StatusOK, a)
}

func (s *Server) resolveAnomaly(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req struct {
		ResolutionNote string `json:"resolution_note"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.anomalies[mux.Vars(r)["id"]]
	if a == nil {
		writeError(w, http.StatusNotFound, "Anomaly not found")
		return
	}
	a.Resolved = true
	a.ResolvedBy = user.ID
	a.ResolvedNote = req.ResolutionNote
	writeData(w, http.StatusOK, a)
}

func (s *Server) highRiskAnomalies(w http.ResponseWriter, r *http.Request) {
	items := s.sortedAnomalies(func(a *models.Anomaly) bool {
		return !a.Resolved && a.RiskScore >= 70
	})
	page, limit := pageParams(r, 20)
	writeResultsPage(w, items, page, limit)
}

func (s *Server) anomaliesForProcurement(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	items := s.sortedAnomalies(func(a *models.Anomaly) bool { return a.ProcurementID == id })
	page, limit := pageParams(r, 20)
	writeResultsPage(w, items, page, limit)
}

func (s *Server) anomalyStats(w http.ResponseWriter, r *http.Request) {
	stats := models.AnomalyStats{BySeverity: map[models.AnomalySeverity]int{}}
	for _, a := range s.sortedAnomalies(nil) {
		stats.Total++
		if !a.Resolved {
			stats.Unresolved++
		}
		stats.BySeverity[a.Severity]++
	}
	writeData(w, http.StatusOK, stats)
}

func (s *Server) spendingTrends(w http.ResponseWriter, r *http.Request) {
	byPeriod := map[string][2]float64{} // count, value
	for _, p := range s.sortedProcurements(nil) {
		period := p.CreatedAt.Format("2006-01")
		agg := byPeriod[period]
		agg[0]++
		agg[1] += p.EstimatedValue
		byPeriod[period] = agg
	}

	periods := make([]string, 0, len(byPeriod))
	for period := range byPeriod {
		periods = append(periods, period)
	}
	sort.Strings(periods)

	type trendPoint struct {
		Period string  `json:"period"`
		Count  int     `json:"count"`
		Value  float64 `json:"value"`
	}
	out := make([]trendPoint, 0, len(periods))
	for _, period := range periods {
		agg := byPeriod[period]
		out = append(out, trendPoint{Period: period, Count: int(agg[0]), Value: agg[1]})
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) keyMetrics(w http.ResponseWriter, r *http.Request) {
	var total, active, flagged int
	var value float64
	for _, p := range s.sortedProcurements(nil) {
		total++
		value += p.EstimatedValue
		if p.Status == models.ProcurementPublished {
			if p.Deadline == nil || p.Deadline.After(time.Now()) {
				active++
			}
		}
		if p.Metadata.HasAnomalies {
			flagged++
		}
	}
	writeData(w, http.StatusOK, map[string]any{
		"total_procurements": total,
		"total_value":        value,
		"active_tenders":     active,
		"flagged_count":      flagged,
	})
}
