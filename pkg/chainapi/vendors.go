package chainapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Gerri254/chainctl/pkg/models"
)

// VendorsService covers /api/vendors.
type VendorsService struct {
	c *Client
}

// PublicList lists verified vendors without authentication.
func (s *VendorsService) PublicList(ctx context.Context) ([]models.Vendor, error) {
	raw, err := s.c.get(ctx, "/api/vendors/public", nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[models.Vendor](raw)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *VendorsService) List(ctx context.Context, page, limit int) (Page[models.Vendor], error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	raw, err := s.c.get(ctx, "/api/vendors", q)
	if err != nil {
		return Page[models.Vendor]{}, err
	}
	return decodePage[models.Vendor](raw)
}

func (s *VendorsService) Get(ctx context.Context, id string) (*models.Vendor, error) {
	raw, err := s.c.get(ctx, "/api/vendors/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var v models.Vendor
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode vendor: %w", err)
	}
	return &v, nil
}

// VendorInput is the registration/update payload.
type VendorInput struct {
	Name           string   `json:"name"`
	RegistrationNo string   `json:"registration_number,omitempty"`
	Categories     []string `json:"categories"`
	ContactEmail   string   `json:"contact_email,omitempty"`
	ContactPhone   string   `json:"contact_phone,omitempty"`
	Address        string   `json:"address,omitempty"`
}

func (s *VendorsService) Create(ctx context.Context, in VendorInput) (*models.Vendor, error) {
	raw, err := s.c.post(ctx, "/api/vendors", in)
	if err != nil {
		return nil, err
	}
	var v models.Vendor
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode vendor: %w", err)
	}
	return &v, nil
}

func (s *VendorsService) Update(ctx context.Context, id string, in VendorInput) (*models.Vendor, error) {
	raw, err := s.c.put(ctx, "/api/vendors/"+url.PathEscape(id), in)
	if err != nil {
		return nil, err
	}
	var v models.Vendor
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode vendor: %w", err)
	}
	return &v, nil
}

// Top lists the vendors with the most awarded value.
func (s *VendorsService) Top(ctx context.Context, limit int) ([]models.Vendor, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	raw, err := s.c.get(ctx, "/api/vendors/top", q)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[models.Vendor](raw)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}
