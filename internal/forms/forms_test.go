package forms_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Gerri254/chainctl/internal/config"
	"github.com/Gerri254/chainctl/internal/forms"
	"github.com/Gerri254/chainctl/pkg/chainapi"
)

func testClient(t *testing.T, handler http.Handler) (*chainapi.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.ClientConfig{
		Timeout:                 2 * time.Second,
		Backoff:                 10 * time.Millisecond,
		CircuitFailureThreshold: 3,
		CircuitReset:            time.Minute,
	}
	c, err := chainapi.NewClient(srv.URL, cfg, nil)
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	return c, srv
}

func countingHandler(hits *atomic.Int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{}}`))
	})
}

func TestRegistrationShortPassword(t *testing.T) {
	f := forms.Registration{
		Email:           "amina@example.com",
		Password:        "short",
		ConfirmPassword: "short",
		FullName:        "Amina Hassan",
		Role:            "learner",
	}

	errs := f.Validate(context.Background())
	if errs.Valid() {
		t.Fatal("password under 8 characters must fail validation")
	}
	if _, ok := errs["password"]; !ok {
		t.Errorf("errors = %v, want a password entry", errs)
	}
}

func TestRegistrationConfirmMismatch(t *testing.T) {
	f := forms.Registration{
		Email:           "amina@example.com",
		Password:        "password123",
		ConfirmPassword: "password124",
		FullName:        "Amina Hassan",
		Role:            "learner",
	}

	errs := f.Validate(context.Background())
	if errs["confirm_password"] != "Passwords do not match" {
		t.Fatalf("errors = %v", errs)
	}
}

func TestRegistrationValid(t *testing.T) {
	f := forms.Registration{
		Email:           "amina@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		FullName:        "Amina Hassan",
		Role:            "learner",
	}
	if errs := f.Validate(context.Background()); !errs.Valid() {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

// An invalid form must not produce a request.
func TestInvalidFormNeverCallsAPI(t *testing.T) {
	var hits atomic.Int32
	c, _ := testClient(t, countingHandler(&hits))
	ctx := context.Background()

	if _, errs, err := (forms.Registration{Email: "bad"}).Submit(ctx, c.Auth); err != nil || errs.Valid() {
		t.Fatalf("errs = %v, err = %v", errs, err)
	}
	if _, errs, _ := (forms.Login{Email: "a@b.co"}).Submit(ctx, c.Auth); errs.Valid() {
		t.Fatal("login without password must fail")
	}
	if _, errs, _ := (forms.JobPosting{Title: "Go Developer"}).Submit(ctx, c.Jobs); errs.Valid() {
		t.Fatal("job posting without description/skills must fail")
	}
	if _, errs, _ := (forms.Bid{ProcurementID: "p1"}).Submit(ctx, c.Bids); errs.Valid() {
		t.Fatal("bid with zero amount must fail")
	}

	if n := hits.Load(); n != 0 {
		t.Fatalf("server saw %d requests, want 0", n)
	}
}

func TestValidFormCallsAPIOnce(t *testing.T) {
	var hits atomic.Int32
	c, _ := testClient(t, countingHandler(&hits))

	f := forms.Login{Email: "amina@example.com", Password: "password123"}
	if _, errs, err := f.Submit(context.Background(), c.Auth); err != nil || !errs.Valid() {
		t.Fatalf("errs = %v, err = %v", errs, err)
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("server saw %d requests, want 1", n)
	}
}

func TestJobPostingDescriptionTooShort(t *testing.T) {
	f := forms.JobPosting{
		Title:          "Go Developer",
		Description:    "Too short.",
		SkillsRequired: []string{"Go"},
		Location:       "Nairobi",
		EmploymentType: "full_time",
	}
	errs := f.Validate(context.Background())
	if _, ok := errs["description"]; !ok {
		t.Fatalf("errors = %v, want a description entry", errs)
	}
}

func TestJobPostingNeedsSkill(t *testing.T) {
	f := forms.JobPosting{
		Title:          "Go Developer",
		Description:    "We are hiring a backend engineer to build and operate Go services.",
		Location:       "Nairobi",
		EmploymentType: "full_time",
	}
	errs := f.Validate(context.Background())
	if _, ok := errs["skills_required"]; !ok {
		t.Fatalf("errors = %v, want a skills_required entry", errs)
	}
}

func TestVendorNeedsCategory(t *testing.T) {
	f := forms.VendorRegistration{
		Name:           "Acme Supplies Ltd",
		RegistrationNo: "REG-001",
		ContactEmail:   "tenders@acme.example",
	}
	errs := f.Validate(context.Background())
	if _, ok := errs["categories"]; !ok {
		t.Fatalf("errors = %v, want a categories entry", errs)
	}
}

func TestReportDescriptionMinimum(t *testing.T) {
	f := forms.Report{ProcurementID: "p1", Category: "overpricing", Description: "too short"}
	errs := f.Validate(context.Background())
	if _, ok := errs["description"]; !ok {
		t.Fatalf("errors = %v", errs)
	}

	f.Description = "The awarded amount is well above the market rate for these items."
	if errs := f.Validate(context.Background()); !errs.Valid() {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestServerFieldErrors(t *testing.T) {
	srvErr := &chainapi.APIError{
		StatusCode: 400,
		Message:    "Validation failed",
		Fields:     map[string]any{"email": "Email already registered"},
	}
	errs := forms.ServerFieldErrors(srvErr)
	if errs["email"] != "Email already registered" {
		t.Fatalf("errs = %v", errs)
	}
}
