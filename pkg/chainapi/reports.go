package chainapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Gerri254/chainctl/pkg/models"
)

// ReportsService covers /api/reports.
type ReportsService struct {
	c *Client
}

// ReportInput is the citizen-report submission payload.
type ReportInput struct {
	ProcurementID string `json:"procurement_id"`
	Category      string `json:"category,omitempty"`
	Description   string `json:"description"`
}

func (s *ReportsService) Create(ctx context.Context, in ReportInput) (*models.Report, error) {
	raw, err := s.c.post(ctx, "/api/reports", in)
	if err != nil {
		return nil, err
	}
	var r models.Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

// List lists reports for auditors, optionally filtered by status.
func (s *ReportsService) List(ctx context.Context, status models.ReportStatus, page, limit int) (Page[models.Report], error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	raw, err := s.c.get(ctx, "/api/reports", q)
	if err != nil {
		return Page[models.Report]{}, err
	}
	return decodePage[models.Report](raw)
}

func (s *ReportsService) Get(ctx context.Context, id string) (*models.Report, error) {
	raw, err := s.c.get(ctx, "/api/reports/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var r models.Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

// UpdateStatus moves a report along the investigation pipeline.
func (s *ReportsService) UpdateStatus(ctx context.Context, id string, status models.ReportStatus, resolution string) error {
	body := map[string]string{"status": string(status)}
	if resolution != "" {
		body["resolution"] = resolution
	}
	_, err := s.c.patch(ctx, "/api/reports/"+url.PathEscape(id)+"/status", body)
	return err
}

// CountForProcurement returns how many reports a tender has attracted.
func (s *ReportsService) CountForProcurement(ctx context.Context, procurementID string) (int, error) {
	raw, err := s.c.get(ctx, "/api/reports/procurement/"+url.PathEscape(procurementID)+"/count", nil)
	if err != nil {
		return 0, err
	}
	var out struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, fmt.Errorf("decode report count: %w", err)
	}
	return out.Count, nil
}
