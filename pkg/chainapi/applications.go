package chainapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Gerri254/chainctl/pkg/models"
)

// ApplicationsService covers /api/applications.
type ApplicationsService struct {
	c *Client
}

// ApplicationInput is the payload for applying to a job.
type ApplicationInput struct {
	JobID        string `json:"job_id"`
	CoverLetter  string `json:"cover_letter,omitempty"`
	ResumeURL    string `json:"resume_url,omitempty"`
	PortfolioURL string `json:"portfolio_url,omitempty"`
}

func (s *ApplicationsService) Create(ctx context.Context, in ApplicationInput) (*models.JobApplication, error) {
	raw, err := s.c.post(ctx, "/api/applications/", in)
	if err != nil {
		return nil, err
	}
	var a models.JobApplication
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode application: %w", err)
	}
	return &a, nil
}

// Mine lists the authenticated learner's applications.
func (s *ApplicationsService) Mine(ctx context.Context) ([]models.JobApplication, error) {
	raw, err := s.c.get(ctx, "/api/applications/my-applications", nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[models.JobApplication](raw)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ForJob lists applicants for one of the employer's postings, match data
// attached.
func (s *ApplicationsService) ForJob(ctx context.Context, jobID string) ([]models.JobApplication, error) {
	raw, err := s.c.get(ctx, "/api/applications/job/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[models.JobApplication](raw)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// UpdateStatus moves an application along the review pipeline. The server
// owns transition validity; callers re-fetch afterwards.
func (s *ApplicationsService) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, notes string) error {
	body := map[string]string{"status": string(status)}
	if notes != "" {
		body["notes"] = notes
	}
	_, err := s.c.put(ctx, "/api/applications/"+url.PathEscape(id)+"/status", body)
	return err
}

// MatchedJobs lists postings ranked against the learner's verified skills,
// optionally cut off below minScore.
func (s *ApplicationsService) MatchedJobs(ctx context.Context, minScore int) ([]models.JobPosting, error) {
	q := url.Values{}
	if minScore > 0 {
		q.Set("min_score", strconv.Itoa(minScore))
	}
	raw, err := s.c.get(ctx, "/api/applications/matched-jobs", q)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[models.JobPosting](raw)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// AssessmentsService covers /api/assessments.
type AssessmentsService struct {
	c *Client
}

// Mine lists the authenticated learner's completed assessments.
func (s *AssessmentsService) Mine(ctx context.Context) ([]models.SkillAssessment, error) {
	raw, err := s.c.get(ctx, "/api/assessments/my-assessments", nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[models.SkillAssessment](raw)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}
