package chainapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Gerri254/chainctl/pkg/models"
)

// AnomaliesService covers /api/analysis.
type AnomaliesService struct {
	c *Client
}

// Analyze asks the server to run anomaly detection on a tender.
func (s *AnomaliesService) Analyze(ctx context.Context, procurementID string) error {
	_, err := s.c.post(ctx, "/api/analysis/anomaly/"+url.PathEscape(procurementID), nil)
	return err
}

// List lists detected anomalies, optionally filtered by severity.
func (s *AnomaliesService) List(ctx context.Context, severity models.AnomalySeverity, page, limit int) (Page[models.Anomaly], error) {
	q := url.Values{}
	if severity != "" {
		q.Set("severity", string(severity))
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	raw, err := s.c.get(ctx, "/api/analysis/anomalies", q)
	if err != nil {
		return Page[models.Anomaly]{}, err
	}
	return decodePage[models.Anomaly](raw)
}

func (s *AnomaliesService) Get(ctx context.Context, id string) (*models.Anomaly, error) {
	raw, err := s.c.get(ctx, "/api/analysis/anomalies/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var a models.Anomaly
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode anomaly: %w", err)
	}
	return &a, nil
}

// Resolve closes an anomaly with a note.
func (s *AnomaliesService) Resolve(ctx context.Context, id, note string) error {
	_, err := s.c.patch(ctx, "/api/analysis/anomalies/"+url.PathEscape(id)+"/resolve",
		map[string]string{"resolution_note": note})
	return err
}

// HighRisk lists unresolved anomalies above the server's risk threshold.
func (s *AnomaliesService) HighRisk(ctx context.Context) ([]models.Anomaly, error) {
	raw, err := s.c.get(ctx, "/api/analysis/anomalies/high-risk", nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[models.Anomaly](raw)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ForProcurement lists the anomalies on one tender.
func (s *AnomaliesService) ForProcurement(ctx context.Context, procurementID string) ([]models.Anomaly, error) {
	raw, err := s.c.get(ctx, "/api/analysis/anomalies/procurement/"+url.PathEscape(procurementID), nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[models.Anomaly](raw)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Statistics returns the anomaly aggregates for the audit dashboard.
func (s *AnomaliesService) Statistics(ctx context.Context) (*models.AnomalyStats, error) {
	raw, err := s.c.get(ctx, "/api/analysis/anomalies/statistics", nil)
	if err != nil {
		return nil, err
	}
	var st models.AnomalyStats
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode anomaly stats: %w", err)
	}
	return &st, nil
}

// AnalyticsService covers /api/analytics.
type AnalyticsService struct {
	c *Client
}

// TrendPoint is one month of spending data.
type TrendPoint struct {
	Period string  `json:"period"`
	Count  int     `json:"count"`
	Value  float64 `json:"value"`
}

func (s *AnalyticsService) Trends(ctx context.Context) ([]TrendPoint, error) {
	raw, err := s.c.get(ctx, "/api/analytics/trends", nil)
	if err != nil {
		return nil, err
	}
	var out []TrendPoint
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode trends: %w", err)
	}
	return out, nil
}

// KeyMetrics is the headline figures block on the official dashboard.
type KeyMetrics struct {
	TotalProcurements int     `json:"total_procurements"`
	TotalValue        float64 `json:"total_value"`
	ActiveTenders     int     `json:"active_tenders"`
	FlaggedCount      int     `json:"flagged_count"`
}

func (s *AnalyticsService) Metrics(ctx context.Context) (*KeyMetrics, error) {
	raw, err := s.c.get(ctx, "/api/analytics/metrics", nil)
	if err != nil {
		return nil, err
	}
	var m KeyMetrics
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode metrics: %w", err)
	}
	return &m, nil
}
