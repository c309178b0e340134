package chainapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Gerri254/chainctl/pkg/models"
)

// JobsService covers /api/jobs.
type JobsService struct {
	c *Client
}

// JobFilters are the browse query parameters. Zero values are omitted.
type JobFilters struct {
	Skills          []string
	Location        string
	EmploymentType  string
	ExperienceLevel string
	LocationType    string
	MinSalary       int
	Search          string
	Page            int
	PerPage         int
}

func (f JobFilters) values() url.Values {
	q := url.Values{}
	if len(f.Skills) > 0 {
		q.Set("skills", strings.Join(f.Skills, ","))
	}
	if f.Location != "" {
		q.Set("location", f.Location)
	}
	if f.EmploymentType != "" {
		q.Set("employment_type", f.EmploymentType)
	}
	if f.ExperienceLevel != "" {
		q.Set("experience_level", f.ExperienceLevel)
	}
	if f.LocationType != "" {
		q.Set("location_type", f.LocationType)
	}
	if f.MinSalary > 0 {
		q.Set("min_salary", strconv.Itoa(f.MinSalary))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(f.PerPage))
	}
	return q
}

// Browse lists active job postings with filters.
func (s *JobsService) Browse(ctx context.Context, f JobFilters) (Page[models.JobPosting], error) {
	raw, err := s.c.get(ctx, "/api/jobs", f.values())
	if err != nil {
		return Page[models.JobPosting]{}, err
	}
	return decodePage[models.JobPosting](raw)
}

func (s *JobsService) Get(ctx context.Context, id string) (*models.JobPosting, error) {
	raw, err := s.c.get(ctx, "/api/jobs/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var j models.JobPosting
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, fmt.Errorf("decode job posting: %w", err)
	}
	return &j, nil
}

// JobPostingInput is the create/update payload for a posting.
type JobPostingInput struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	CompanyName     string   `json:"company_name,omitempty"`
	Location        string   `json:"location,omitempty"`
	LocationType    string   `json:"location_type,omitempty"`
	EmploymentType  string   `json:"employment_type,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	SkillsRequired  []string `json:"skills_required,omitempty"`
	MinimumScore    int      `json:"minimum_score,omitempty"`
	SalaryMin       *int     `json:"salary_min,omitempty"`
	SalaryMax       *int     `json:"salary_max,omitempty"`
	SalaryCurrency  string   `json:"salary_currency,omitempty"`
	Benefits        []string `json:"benefits,omitempty"`
	Status          string   `json:"status,omitempty"`
	ExpiryDays      int      `json:"expiry_days,omitempty"`
}

func (s *JobsService) Create(ctx context.Context, in JobPostingInput) (*models.JobPosting, error) {
	raw, err := s.c.post(ctx, "/api/jobs", in)
	if err != nil {
		return nil, err
	}
	var j models.JobPosting
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, fmt.Errorf("decode job posting: %w", err)
	}
	return &j, nil
}

func (s *JobsService) Update(ctx context.Context, id string, in JobPostingInput) (*models.JobPosting, error) {
	raw, err := s.c.put(ctx, "/api/jobs/"+url.PathEscape(id), in)
	if err != nil {
		return nil, err
	}
	var j models.JobPosting
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, fmt.Errorf("decode job posting: %w", err)
	}
	return &j, nil
}

func (s *JobsService) Delete(ctx context.Context, id string) error {
	_, err := s.c.delete(ctx, "/api/jobs/"+url.PathEscape(id))
	return err
}

// MyPostings lists the authenticated employer's own postings.
func (s *JobsService) MyPostings(ctx context.Context, page, perPage int) (Page[models.JobPosting], error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	raw, err := s.c.get(ctx, "/api/jobs/my-postings", q)
	if err != nil {
		return Page[models.JobPosting]{}, err
	}
	return decodePage[models.JobPosting](raw)
}

// Stats returns the employer's posting aggregates.
func (s *JobsService) Stats(ctx context.Context) (*models.JobPostingStats, error) {
	raw, err := s.c.get(ctx, "/api/jobs/stats", nil)
	if err != nil {
		return nil, err
	}
	var st models.JobPostingStats
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode job stats: %w", err)
	}
	return &st, nil
}
