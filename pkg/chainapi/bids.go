package chainapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/Gerri254/chainctl/pkg/models"
)

// BidsService covers /api/bids.
type BidsService struct {
	c *Client
}

// BidInput is the vendor's bid submission payload.
type BidInput struct {
	BidAmount        float64 `json:"bid_amount"`
	Currency         string  `json:"currency,omitempty"`
	DeliveryTimeline string  `json:"delivery_timeline,omitempty"`
	BidValidityDays  int     `json:"bid_validity_days,omitempty"`
	Remarks          string  `json:"remarks,omitempty"`
}

// Submit files a bid on a tender (vendors only).
func (s *BidsService) Submit(ctx context.Context, procurementID string, in BidInput) (*models.Bid, error) {
	raw, err := s.c.post(ctx, "/api/bids/procurement/"+url.PathEscape(procurementID), in)
	if err != nil {
		return nil, err
	}
	var b models.Bid
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode bid: %w", err)
	}
	return &b, nil
}

// ForProcurement lists the bids filed against a tender.
func (s *BidsService) ForProcurement(ctx context.Context, procurementID string) ([]models.Bid, error) {
	raw, err := s.c.get(ctx, "/api/bids/procurement/"+url.PathEscape(procurementID), nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[models.Bid](raw)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Mine lists the authenticated vendor's bids.
func (s *BidsService) Mine(ctx context.Context) ([]models.Bid, error) {
	raw, err := s.c.get(ctx, "/api/bids/vendor/my-bids", nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[models.Bid](raw)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *BidsService) Get(ctx context.Context, id string) (*models.Bid, error) {
	raw, err := s.c.get(ctx, "/api/bids/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var b models.Bid
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode bid: %w", err)
	}
	return &b, nil
}

// Award marks a bid as the winner; the server updates the tender.
func (s *BidsService) Award(ctx context.Context, id string) error {
	_, err := s.c.post(ctx, "/api/bids/"+url.PathEscape(id)+"/award", nil)
	return err
}
