// Package forms holds the client-side form controllers: each form carries
// its field values, validates them against a schema, and only talks to the
// API once validation passes. Invalid forms never produce a request.
package forms

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"

	"github.com/Gerri254/chainctl/pkg/chainapi"
	"github.com/Gerri254/chainctl/pkg/models"
)

// FieldErrors maps a field name to its first validation message. The same
// shape holds client-side rule failures and the server's errors map, so a
// page renders both identically.
type FieldErrors map[string]string

// Valid reports whether the form passed validation.
func (e FieldErrors) Valid() bool { return len(e) == 0 }

// ServerFieldErrors extracts the per-field errors map from a server error,
// if err carries one.
func ServerFieldErrors(err error) FieldErrors {
	apiErr, ok := chainapi.AsAPIError(err)
	if !ok || len(apiErr.Fields) == 0 {
		return nil
	}
	out := make(FieldErrors, len(apiErr.Fields))
	for field, msg := range apiErr.Fields {
		out[field] = fmt.Sprint(msg)
	}
	return out
}

// fieldFromPath turns a schema error path like "/skills_required/0" into
// the top-level field name. Root-level errors land under "form".
func fieldFromPath(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return "form"
	}
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return trimmed
}

func validate(ctx context.Context, schema *jsonschema.Schema, payload any) FieldErrors {
	raw, err := json.Marshal(payload)
	if err != nil {
		return FieldErrors{"form": fmt.Sprintf("invalid form payload: %v", err)}
	}
	keyErrs, err := schema.ValidateBytes(ctx, raw)
	if err != nil {
		return FieldErrors{"form": fmt.Sprintf("validation failed: %v", err)}
	}

	out := FieldErrors{}
	for _, ke := range keyErrs {
		field := fieldFromPath(ke.PropertyPath)
		if _, seen := out[field]; !seen {
			out[field] = ke.Message
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Registration is the sign-up form for both apps.
type Registration struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name"`
	Role            string `json:"role"`
	CompanyName     string `json:"company_name,omitempty"`
}

func (f Registration) Validate(ctx context.Context) FieldErrors {
	errs := validate(ctx, registrationSchema, f)
	if f.Password != f.ConfirmPassword {
		if errs == nil {
			errs = FieldErrors{}
		}
		if _, seen := errs["confirm_password"]; !seen {
			errs["confirm_password"] = "Passwords do not match"
		}
	}
	return errs
}

// Submit validates and registers. The request is only sent when the form
// is valid.
func (f Registration) Submit(ctx context.Context, auth *chainapi.AuthService) (*chainapi.AuthResult, FieldErrors, error) {
	if errs := f.Validate(ctx); !errs.Valid() {
		return nil, errs, nil
	}
	res, err := auth.Register(ctx, chainapi.RegisterInput{
		Email:       f.Email,
		Password:    f.Password,
		FullName:    f.FullName,
		UserType:    f.Role,
		CompanyName: f.CompanyName,
	})
	if err != nil {
		return nil, ServerFieldErrors(err), err
	}
	return res, nil, nil
}

// Login is the credentials form.
type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (f Login) Validate(ctx context.Context) FieldErrors {
	return validate(ctx, loginSchema, f)
}

func (f Login) Submit(ctx context.Context, auth *chainapi.AuthService) (*chainapi.AuthResult, FieldErrors, error) {
	if errs := f.Validate(ctx); !errs.Valid() {
		return nil, errs, nil
	}
	res, err := auth.Login(ctx, chainapi.Credentials{Email: f.Email, Password: f.Password})
	if err != nil {
		return nil, ServerFieldErrors(err), err
	}
	return res, nil, nil
}

// JobPosting is the employer's job creation form.
type JobPosting struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	SkillsRequired  []string `json:"skills_required"`
	Location        string   `json:"location"`
	LocationType    string   `json:"location_type,omitempty"`
	EmploymentType  string   `json:"employment_type"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	MinimumScore    int      `json:"minimum_score,omitempty"`
	SalaryMin       *int     `json:"salary_min,omitempty"`
	SalaryMax       *int     `json:"salary_max,omitempty"`
	SalaryCurrency  string   `json:"salary_currency,omitempty"`
	ExpiryDays      int      `json:"expiry_days,omitempty"`
}

func (f JobPosting) Validate(ctx context.Context) FieldErrors {
	if f.SkillsRequired == nil {
		f.SkillsRequired = []string{} // marshal as [] so the array rule fires
	}
	return validate(ctx, jobSchema, f)
}

func (f JobPosting) Submit(ctx context.Context, jobs *chainapi.JobsService) (*models.JobPosting, FieldErrors, error) {
	if errs := f.Validate(ctx); !errs.Valid() {
		return nil, errs, nil
	}
	posting, err := jobs.Create(ctx, chainapi.JobPostingInput{
		Title:           f.Title,
		Description:     f.Description,
		SkillsRequired:  f.SkillsRequired,
		Location:        f.Location,
		LocationType:    f.LocationType,
		EmploymentType:  f.EmploymentType,
		ExperienceLevel: f.ExperienceLevel,
		MinimumScore:    f.MinimumScore,
		SalaryMin:       f.SalaryMin,
		SalaryMax:       f.SalaryMax,
		SalaryCurrency:  f.SalaryCurrency,
		ExpiryDays:      f.ExpiryDays,
	})
	if err != nil {
		return nil, ServerFieldErrors(err), err
	}
	return posting, nil, nil
}

// Profile is the account settings form.
type Profile struct {
	FullName   string `json:"full_name"`
	Department string `json:"department,omitempty"`
}

func (f Profile) Validate(ctx context.Context) FieldErrors {
	return validate(ctx, profileSchema, f)
}

func (f Profile) Submit(ctx context.Context, auth *chainapi.AuthService) (*models.User, FieldErrors, error) {
	if errs := f.Validate(ctx); !errs.Valid() {
		return nil, errs, nil
	}
	user, err := auth.UpdateMe(ctx, chainapi.UserUpdate{FullName: f.FullName, Department: f.Department})
	if err != nil {
		return nil, ServerFieldErrors(err), err
	}
	return user, nil, nil
}

// VendorRegistration is the vendor sign-up form.
type VendorRegistration struct {
	Name           string   `json:"name"`
	RegistrationNo string   `json:"registration_number"`
	Categories     []string `json:"categories"`
	ContactEmail   string   `json:"contact_email"`
	ContactPhone   string   `json:"contact_phone,omitempty"`
	Address        string   `json:"address,omitempty"`
}

func (f VendorRegistration) Validate(ctx context.Context) FieldErrors {
	if f.Categories == nil {
		f.Categories = []string{}
	}
	return validate(ctx, vendorSchema, f)
}

func (f VendorRegistration) Submit(ctx context.Context, vendors *chainapi.VendorsService) (*models.Vendor, FieldErrors, error) {
	if errs := f.Validate(ctx); !errs.Valid() {
		return nil, errs, nil
	}
	vendor, err := vendors.Create(ctx, chainapi.VendorInput{
		Name:           f.Name,
		RegistrationNo: f.RegistrationNo,
		Categories:     f.Categories,
		ContactEmail:   f.ContactEmail,
		ContactPhone:   f.ContactPhone,
		Address:        f.Address,
	})
	if err != nil {
		return nil, ServerFieldErrors(err), err
	}
	return vendor, nil, nil
}

// Report is the citizen irregularity report form.
type Report struct {
	ProcurementID string `json:"procurement_id"`
	Category      string `json:"category"`
	Description   string `json:"description"`
}

func (f Report) Validate(ctx context.Context) FieldErrors {
	return validate(ctx, reportSchema, f)
}

func (f Report) Submit(ctx context.Context, reports *chainapi.ReportsService) (*models.Report, FieldErrors, error) {
	if errs := f.Validate(ctx); !errs.Valid() {
		return nil, errs, nil
	}
	report, err := reports.Create(ctx, chainapi.ReportInput{
		ProcurementID: f.ProcurementID,
		Category:      f.Category,
		Description:   f.Description,
	})
	if err != nil {
		return nil, ServerFieldErrors(err), err
	}
	return report, nil, nil
}

// Bid is the vendor's bid submission form.
type Bid struct {
	ProcurementID    string  `json:"-"`
	BidAmount        float64 `json:"bid_amount"`
	Currency         string  `json:"currency"`
	DeliveryTimeline string  `json:"delivery_timeline"`
	BidValidityDays  int     `json:"bid_validity_days,omitempty"`
	Remarks          string  `json:"remarks,omitempty"`
}

func (f Bid) Validate(ctx context.Context) FieldErrors {
	errs := validate(ctx, bidSchema, f)
	if f.ProcurementID == "" {
		if errs == nil {
			errs = FieldErrors{}
		}
		errs["procurement_id"] = "Procurement is required"
	}
	return errs
}

func (f Bid) Submit(ctx context.Context, bids *chainapi.BidsService) (*models.Bid, FieldErrors, error) {
	if errs := f.Validate(ctx); !errs.Valid() {
		return nil, errs, nil
	}
	bid, err := bids.Submit(ctx, f.ProcurementID, chainapi.BidInput{
		BidAmount:        f.BidAmount,
		Currency:         f.Currency,
		DeliveryTimeline: f.DeliveryTimeline,
		BidValidityDays:  f.BidValidityDays,
		Remarks:          f.Remarks,
	})
	if err != nil {
		return nil, ServerFieldErrors(err), err
	}
	return bid, nil, nil
}
