package chainapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Gerri254/chainctl/pkg/models"
)

// ProcurementsService covers /api/procurement.
type ProcurementsService struct {
	c *Client
}

// ProcurementFilters are the list/search query parameters.
type ProcurementFilters struct {
	Status   string
	Category string
	Search   string
	Page     int
	Limit    int
}

func (f ProcurementFilters) values() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// PublicList lists published tenders without authentication.
func (s *ProcurementsService) PublicList(ctx context.Context, f ProcurementFilters) (Page[models.Procurement], error) {
	raw, err := s.c.get(ctx, "/api/procurement/public", f.values())
	if err != nil {
		return Page[models.Procurement]{}, err
	}
	return decodePage[models.Procurement](raw)
}

// List lists all tenders for authenticated officials.
func (s *ProcurementsService) List(ctx context.Context, f ProcurementFilters) (Page[models.Procurement], error) {
	raw, err := s.c.get(ctx, "/api/procurement", f.values())
	if err != nil {
		return Page[models.Procurement]{}, err
	}
	return decodePage[models.Procurement](raw)
}

func (s *ProcurementsService) Get(ctx context.Context, id string) (*models.Procurement, error) {
	raw, err := s.c.get(ctx, "/api/procurement/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var p models.Procurement
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode procurement: %w", err)
	}
	return &p, nil
}

// ProcurementInput is the create/update payload for a tender.
type ProcurementInput struct {
	TenderNumber   string   `json:"tender_number,omitempty"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Category       string   `json:"category"`
	EstimatedValue float64  `json:"estimated_value"`
	Currency       string   `json:"currency,omitempty"`
	Status         string   `json:"status,omitempty"`
	PublishedDate  string   `json:"published_date,omitempty"`
	Deadline       string   `json:"deadline,omitempty"`
	Eligibility    []string `json:"eligibility_criteria,omitempty"`
	Evaluation     []string `json:"evaluation_criteria,omitempty"`
}

func (s *ProcurementsService) Create(ctx context.Context, in ProcurementInput) (*models.Procurement, error) {
	raw, err := s.c.post(ctx, "/api/procurement", in)
	if err != nil {
		return nil, err
	}
	var p models.Procurement
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode procurement: %w", err)
	}
	return &p, nil
}

func (s *ProcurementsService) Update(ctx context.Context, id string, in ProcurementInput) (*models.Procurement, error) {
	raw, err := s.c.put(ctx, "/api/procurement/"+url.PathEscape(id), in)
	if err != nil {
		return nil, err
	}
	var p models.Procurement
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode procurement: %w", err)
	}
	return &p, nil
}

func (s *ProcurementsService) Delete(ctx context.Context, id string) error {
	_, err := s.c.delete(ctx, "/api/procurement/"+url.PathEscape(id))
	return err
}

// Statistics returns tender aggregates for the dashboard views.
func (s *ProcurementsService) Statistics(ctx context.Context) (*models.ProcurementStats, error) {
	raw, err := s.c.get(ctx, "/api/procurement/statistics", nil)
	if err != nil {
		return nil, err
	}
	var st models.ProcurementStats
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode procurement stats: %w", err)
	}
	return &st, nil
}
