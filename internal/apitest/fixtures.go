package apitest

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Gerri254/chainctl/pkg/models"
)

// Password is the password every seeded account accepts.
const Password = "password123"

// Fixtures holds the ids of the seeded records tests address directly.
type Fixtures struct {
	LearnerID  string
	EmployerID string
	EducatorID string
	AdminID    string
	OfficerID  string
	AuditorID  string
	VendorUser string

	JobGoBackendID  string
	JobReactID      string
	JobClosedID     string
	TenderRoadID    string // published, flagged, high risk
	TenderMedicalID string // published, clean
	TenderAwardedID string
	VendorAcmeID    string
	BidAcmeID       string
	AnomalyOpenID   string
}

// Seeded fixture emails.
const (
	LearnerEmail   = "amina@example.com"
	EmployerEmail  = "recruiting@technova.example"
	EducatorEmail  = "educator@skillchain.example"
	AdminEmail     = "admin@example.com"
	OfficerEmail   = "officer@treasury.example"
	AuditorEmail   = "auditor@oag.example"
	VendorEmail    = "tenders@acme.example"
	SuspendedEmail = "suspended@example.com"
)

// Fix exposes the seeded ids.
func (s *Server) Fix() Fixtures { return s.fixtures }

func (s *Server) seed() {
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("apitest: hash password: %v", err))
	}

	now := s.now()
	addUser := func(email, name string, role models.Role, skillChain bool) string {
		u := &models.User{
			ID:        uuid.NewString(),
			Email:     email,
			FullName:  name,
			Status:    models.AccountActive,
			CreatedAt: now.AddDate(0, -6, 0),
		}
		if skillChain {
			u.UserType = role
		} else {
			u.Role = role
		}
		s.users[u.ID] = u
		s.passwords[u.ID] = string(hash)
		return u.ID
	}

	f := &s.fixtures
	f.LearnerID = addUser(LearnerEmail, "Amina Hassan", models.RoleLearner, true)
	f.EmployerID = addUser(EmployerEmail, "TechNova Recruiting", models.RoleEmployer, true)
	f.EducatorID = addUser(EducatorEmail, "Joseph Mwangi", models.RoleEducator, true)
	f.AdminID = addUser(AdminEmail, "Site Admin", models.RoleAdmin, false)
	f.OfficerID = addUser(OfficerEmail, "Grace Njeri", models.RoleProcurementOfficer, false)
	f.AuditorID = addUser(AuditorEmail, "Daniel Otieno", models.RoleAuditor, false)
	f.VendorUser = addUser(VendorEmail, "Acme Supplies Ltd", models.RoleVendor, false)

	suspended := addUser(SuspendedEmail, "Suspended Account", models.RoleLearner, true)
	s.users[suspended].Status = models.AccountSuspended

	// Job postings
	salaryMin, salaryMax := 90000, 140000
	expiry := now.AddDate(0, 1, 0)
	addJob := func(title, desc string, skills []string, status models.JobStatus, views, apps int) string {
		j := &models.JobPosting{
			ID:              uuid.NewString(),
			EmployerID:      f.EmployerID,
			Title:           title,
			Description:     desc,
			CompanyName:     "TechNova",
			Location:        "Nairobi",
			LocationType:    "hybrid",
			EmploymentType:  "full_time",
			ExperienceLevel: "mid",
			SkillsRequired:  skills,
			SalaryMin:       &salaryMin,
			SalaryMax:       &salaryMax,
			SalaryCurrency:  "KES",
			Status:          status,
			PostedAt:        now.AddDate(0, 0, -14),
			ExpiresAt:       &expiry,
			ViewsCount:      views,
			ApplicationsCnt: apps,
			CreatedAt:       now.AddDate(0, 0, -14),
			UpdatedAt:       now.AddDate(0, 0, -2),
		}
		s.jobs[j.ID] = j
		return j.ID
	}
	f.JobGoBackendID = addJob("Backend Engineer (Go)",
		"Design and operate Go services handling verification workloads at scale.",
		[]string{"Go", "PostgreSQL", "Docker"}, models.JobActive, 210, 12)
	f.JobReactID = addJob("Frontend Engineer",
		"Build learner-facing dashboards and assessment flows.",
		[]string{"React", "TypeScript"}, models.JobActive, 154, 8)
	f.JobClosedID = addJob("DevOps Engineer",
		"Own the deployment pipeline for the assessment platform.",
		[]string{"Kubernetes", "Terraform"}, models.JobClosed, 98, 5)

	// Completed assessments for the learner
	addAssessment := func(skill string, score float64, passed bool, daysAgo int) {
		a := &models.SkillAssessment{
			ID:          uuid.NewString(),
			UserID:      f.LearnerID,
			SkillName:   skill,
			Score:       score,
			MaxScore:    100,
			Passed:      passed,
			CompletedAt: now.AddDate(0, 0, -daysAgo),
		}
		s.assessments[a.ID] = a
	}
	addAssessment("Go", 86, true, 30)
	addAssessment("PostgreSQL", 74, true, 21)
	addAssessment("Kubernetes", 41, false, 10)

	// Procurements
	published := now.AddDate(0, 0, -20)
	deadline := now.AddDate(0, 0, 10)
	addTender := func(number, title, category string, value float64, status models.ProcurementStatus, risk float64, flagged bool) string {
		p := &models.Procurement{
			ID:             uuid.NewString(),
			TenderNumber:   number,
			Title:          title,
			Category:       category,
			EstimatedValue: value,
			Currency:       "KES",
			Status:         status,
			PublishedDate:  &published,
			Deadline:       &deadline,
			Metadata: models.ProcurementMetadata{
				AIAnalyzed:   risk > 0,
				HasAnomalies: flagged,
				RiskScore:    risk,
			},
			CreatedBy: f.OfficerID,
			CreatedAt: published,
			UpdatedAt: now.AddDate(0, 0, -1),
		}
		s.procurements[p.ID] = p
		return p.ID
	}
	f.TenderRoadID = addTender("TN-2026-014", "County road rehabilitation, phase II",
		"works", 48_000_000, models.ProcurementPublished, 82, true)
	f.TenderMedicalID = addTender("TN-2026-021", "Medical consumables supply",
		"supplies", 7_500_000, models.ProcurementPublished, 18, false)
	f.TenderAwardedID = addTender("TN-2025-097", "ICT equipment for county offices",
		"equipment", 12_300_000, models.ProcurementAwarded, 35, false)

	// Vendors
	f.VendorAcmeID = uuid.NewString()
	s.vendors[f.VendorAcmeID] = &models.Vendor{
		ID:                f.VendorAcmeID,
		Name:              "Acme Supplies Ltd",
		RegistrationNo:    "REG-2019-4471",
		Categories:        []string{"supplies", "equipment"},
		ContactEmail:      VendorEmail,
		Verified:          true,
		AwardedContracts:  4,
		TotalAwardedValue: 21_800_000,
		CreatedAt:         now.AddDate(-2, 0, 0),
	}
	otherVendorID := uuid.NewString()
	s.vendors[otherVendorID] = &models.Vendor{
		ID:             otherVendorID,
		Name:           "Savanna Works Co",
		RegistrationNo: "REG-2021-1187",
		Categories:     []string{"works"},
		Verified:       false,
		CreatedAt:      now.AddDate(-1, 0, 0),
	}

	// One standing bid on the awarded tender
	f.BidAcmeID = uuid.NewString()
	s.bids[f.BidAcmeID] = &models.Bid{
		ID:            f.BidAcmeID,
		ProcurementID: f.TenderAwardedID,
		VendorID:      f.VendorUser,
		VendorName:    "Acme Supplies Ltd",
		Amount:        11_900_000,
		Currency:      "KES",
		Status:        models.BidAwarded,
		SubmittedAt:   now.AddDate(0, -1, 0),
	}

	// Anomalies on the flagged tender
	f.AnomalyOpenID = uuid.NewString()
	s.anomalies[f.AnomalyOpenID] = &models.Anomaly{
		ID:            f.AnomalyOpenID,
		ProcurementID: f.TenderRoadID,
		Type:          "price_deviation",
		Severity:      models.SeverityHigh,
		RiskScore:     82,
		Description:   "Estimated value exceeds category median by 240%",
		DetectedAt:    now.AddDate(0, 0, -5),
	}
	resolvedID := uuid.NewString()
	s.anomalies[resolvedID] = &models.Anomaly{
		ID:            resolvedID,
		ProcurementID: f.TenderRoadID,
		Type:          "timeline_compression",
		Severity:      models.SeverityMedium,
		RiskScore:     55,
		Description:   "Submission window shorter than the statutory minimum",
		Resolved:      true,
		ResolvedBy:    f.AuditorID,
		ResolvedNote:  "Deadline extended by addendum 1",
		DetectedAt:    now.AddDate(0, 0, -12),
	}
}
