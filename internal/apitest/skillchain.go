package apitest

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/Gerri254/chainctl/pkg/models"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	UserType    string `json:"user_type"`
	CompanyName string `json:"company_name"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fields := map[string]any{}
	if !strings.Contains(req.Email, "@") {
		fields["email"] = "A valid email is required"
	}
	if len(req.Password) < 8 {
		fields["password"] = "Password must be at least 8 characters"
	}
	if req.FullName == "" {
		fields["full_name"] = "Full name is required"
	}
	if len(fields) > 0 {
		writeFieldErrors(w, "Validation failed", fields)
		return
	}

	s.mu.Lock()
	for _, u := range s.users {
		if u.Email == req.Email {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		s.mu.Unlock()
		writeError(w, http.StatusInternalServerError, "Could not create account")
		return
	}
	user := &models.User{
		ID:        uuid.NewString(),
		Email:     req.Email,
		FullName:  req.FullName,
		UserType:  models.Role(req.UserType),
		Status:    models.AccountActive,
		CreatedAt: s.now(),
	}
	s.users[user.ID] = user
	s.passwords[user.ID] = string(hash)
	s.mu.Unlock()

	writeData(w, http.StatusCreated, map[string]any{
		"user":          user,
		"access_token":  s.issueToken(user.ID, user.EffectiveRole(), s.tokenDuration, ""),
		"refresh_token": s.issueToken(user.ID, user.EffectiveRole(), 7*24*time.Hour, "refresh"),
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	var user *models.User
	for _, u := range s.users {
		if u.Email == req.Email {
			user = u
			break
		}
	}
	var hash string
	if user != nil {
		hash = s.passwords[user.ID]
	}
	s.mu.Unlock()

	if user == nil || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if user.Status == models.AccountSuspended {
		writeError(w, http.StatusForbidden, "Account is suspended")
		return
	}

	s.mu.Lock()
	now := s.now()
	user.LastLogin = &now
	s.mu.Unlock()

	writeData(w, http.StatusOK, map[string]any{
		"user":          user,
		"access_token":  s.issueToken(user.ID, user.EffectiveRole(), s.tokenDuration, ""),
		"refresh_token": s.issueToken(user.ID, user.EffectiveRole(), 7*24*time.Hour, "refresh"),
	})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := jwt.Parse(req.RefreshToken, func(token *jwt.Token) (any, error) {
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		writeError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}
	claims, _ := token.Claims.(jwt.MapClaims)
	if t, _ := claims["type"].(string); t != "refresh" {
		writeError(w, http.StatusUnauthorized, "Not a refresh token")
		return
	}
	userID, _ := claims["user_id"].(string)

	s.mu.Lock()
	user := s.users[userID]
	s.mu.Unlock()
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unknown user")
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"access_token": s.issueToken(user.ID, user.EffectiveRole(), s.tokenDuration, ""),
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Logged out")
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, currentUser(r))
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName   string `json:"full_name"`
		Department string `json:"department"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user := currentUser(r)
	s.mu.Lock()
	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Department != "" {
		user.Department = req.Department
	}
	s.mu.Unlock()
	writeData(w, http.StatusOK, user)
}

func (s *Server) sortedJobs(keep func(*models.JobPosting) bool) []models.JobPosting {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.JobPosting
	for _, j := range s.jobs {
		if keep == nil || keep(j) {
			out = append(out, *j)
		}
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].PostedAt.Equal(out[k].PostedAt) {
			return out[i].PostedAt.After(out[k].PostedAt)
		}
		return out[i].ID < out[k].ID
	})
	return out
}

func (s *Server) browseJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))
	location := strings.ToLower(q.Get("location"))
	var skills []string
	if raw := q.Get("skills"); raw != "" {
		skills = strings.Split(strings.ToLower(raw), ",")
	}
	minSalary, _ := strconv.Atoi(q.Get("min_salary"))

	jobs := s.sortedJobs(func(j *models.JobPosting) bool {
		if j.Status != models.JobActive {
			return false
		}
		if search != "" && !strings.Contains(strings.ToLower(j.Title), search) &&
			!strings.Contains(strings.ToLower(j.Description), search) {
			return false
		}
		if location != "" && !strings.Contains(strings.ToLower(j.Location), location) {
			return false
		}
		if v := q.Get("employment_type"); v != "" && j.EmploymentType != v {
			return false
		}
		if v := q.Get("location_type"); v != "" && j.LocationType != v {
			return false
		}
		if v := q.Get("experience_level"); v != "" && j.ExperienceLevel != v {
			return false
		}
		if minSalary > 0 && (j.SalaryMax == nil || *j.SalaryMax < minSalary) {
			return false
		}
		if len(skills) > 0 {
			found := false
			for _, want := range skills {
				for _, have := range j.SkillsRequired {
					if strings.Contains(strings.ToLower(have), strings.TrimSpace(want)) {
						found = true
					}
				}
			}
			if !found {
				return false
			}
		}
		return true
	})

	page, perPage := pageParams(r, 10)
	writeKeyedPage(w, "jobs", jobs, page, perPage)
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if role := user.EffectiveRole(); role != models.RoleEmployer && role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "Only employers can post jobs")
		return
	}

	var in models.JobPosting
	if !decodeBody(w, r, &in) {
		return
	}
	fields := map[string]any{}
	if in.Title == "" {
		fields["title"] = "Title is required"
	}
	if in.Description == "" {
		fields["description"] = "Description is required"
	}
	if len(fields) > 0 {
		writeFieldErrors(w, "Validation failed", fields)
		return
	}

	now := s.now()
	in.ID = uuid.NewString()
	in.EmployerID = user.ID
	if in.Status == "" {
		in.Status = models.JobActive
	}
	in.PostedAt = now
	in.CreatedAt = now
	in.UpdatedAt = now

	s.mu.Lock()
	s.jobs[in.ID] = &in
	s.mu.Unlock()

	writeData(w, http.StatusCreated, in)
}

func (s *Server) myPostings(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	jobs := s.sortedJobs(func(j *models.JobPosting) bool { return j.EmployerID == user.ID })
	page, perPage := pageParams(r, 20)
	writeKeyedPage(w, "jobs", jobs, page, perPage)
}

func (s *Server) jobStats(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var stats models.JobPostingStats
	for _, j := range s.sortedJobs(func(j *models.JobPosting) bool { return j.EmployerID == user.ID }) {
		stats.TotalPostings++
		if j.Status == models.JobActive {
			stats.ActivePostings++
		}
		stats.TotalViews += j.ViewsCount
		stats.TotalApplications += j.ApplicationsCnt
	}
	writeData(w, http.StatusOK, stats)
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	j := s.jobs[mux.Vars(r)["id"]]
	if j != nil {
		j.ViewsCount++
	}
	s.mu.Unlock()

	if j == nil {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}
	writeData(w, http.StatusOK, j)
}

func (s *Server) updateJob(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var in models.JobPosting
	if !decodeBody(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.jobs[mux.Vars(r)["id"]]
	if j == nil {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}
	if j.EmployerID != user.ID && user.EffectiveRole() != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "Not your posting")
		return
	}
	if in.Title != "" {
		j.Title = in.Title
	}
	if in.Description != "" {
		j.Description = in.Description
	}
	if in.Status != "" {
		j.Status = in.Status
	}
	if len(in.SkillsRequired) > 0 {
		j.SkillsRequired = in.SkillsRequired
	}
	j.UpdatedAt = s.now()
	writeData(w, http.StatusOK, j)
}

func (s *Server) deleteJob(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	id := mux.Vars(r)["id"]
	j := s.jobs[id]
	if j == nil {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}
	if j.EmployerID != user.ID && user.EffectiveRole() != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "Not your posting")
		return
	}
	delete(s.jobs, id)
	writeMessage(w, http.StatusOK, "Job deleted")
}

// matchFor fabricates the match block the real matching service attaches,
// from the learner's passed assessments against the posting's skill list.
func (s *Server) matchFor(userID string, job *models.JobPosting) *models.MatchData {
	passed := map[string]float64{}
	s.mu.Lock()
	for _, a := range s.assessments {
		if a.UserID == userID && a.Passed {
			passed[strings.ToLower(a.SkillName)] = a.Score
		}
	}
	s.mu.Unlock()

	var matched, missing []string
	var sum float64
	for _, skill := range job.SkillsRequired {
		if score, ok := passed[strings.ToLower(skill)]; ok {
			matched = append(matched, skill)
			sum += score
		} else {
			missing = append(missing, skill)
		}
	}

	skillMatch := 0.0
	if len(job.SkillsRequired) > 0 {
		skillMatch = 100 * float64(len(matched)) / float64(len(job.SkillsRequired))
	}
	avg := 0.0
	if len(matched) > 0 {
		avg = sum / float64(len(matched))
	}
	return &models.MatchData{
		MatchScore:    0.6*skillMatch + 0.4*avg,
		MatchedSkills: matched,
		MissingSkills: missing,
		Breakdown: models.MatchBreakdown{
			SkillMatch:       skillMatch,
			ExperienceMatch:  avg,
			FreshnessScore:   80,
			PerformanceScore: avg,
		},
	}
}

func (s *Server) createApplication(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user.EffectiveRole() != models.RoleLearner {
		writeError(w, http.StatusForbidden, "Only learners can apply to jobs")
		return
	}

	var in models.JobApplication
	if !decodeBody(w, r, &in) {
		return
	}

	s.mu.Lock()
	job := s.jobs[in.JobID]
	s.mu.Unlock()
	if job == nil {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}
	if job.Status != models.JobActive {
		writeError(w, http.StatusBadRequest, "This job is no longer accepting applications")
		return
	}

	s.mu.Lock()
	for _, a := range s.applications {
		if a.JobID == in.JobID && a.UserID == user.ID {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "You have already applied for this job")
			return
		}
	}
	now := s.now()
	app := &models.JobApplication{
		ID:             uuid.NewString(),
		JobID:          in.JobID,
		UserID:         user.ID,
		ApplicantName:  user.FullName,
		ApplicantEmail: user.Email,
		CoverLetter:    in.CoverLetter,
		ResumeURL:      in.ResumeURL,
		PortfolioURL:   in.PortfolioURL,
		Status:         models.ApplicationPending,
		AppliedAt:      now,
		UpdatedAt:      now,
	}
	s.applications[app.ID] = app
	job.ApplicationsCnt++
	s.mu.Unlock()

	writeData(w, http.StatusCreated, app)
}

func (s *Server) sortedApplications(keep func(*models.JobApplication) bool) []models.JobApplication {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.JobApplication
	for _, a := range s.applications {
		if keep(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].AppliedAt.Equal(out[k].AppliedAt) {
			return out[i].AppliedAt.After(out[k].AppliedAt)
		}
		return out[i].ID < out[k].ID
	})
	return out
}

func (s *Server) myApplications(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	apps := s.sortedApplications(func(a *models.JobApplication) bool { return a.UserID == user.ID })
	page, perPage := pageParams(r, 20)
	writeKeyedPage(w, "applications", apps, page, perPage)
}

func (s *Server) applicationsForJob(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	jobID := mux.Vars(r)["id"]

	s.mu.Lock()
	job := s.jobs[jobID]
	s.mu.Unlock()
	if job == nil {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}
	if job.EmployerID != user.ID && user.EffectiveRole() != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "Not your posting")
		return
	}

	apps := s.sortedApplications(func(a *models.JobApplication) bool { return a.JobID == jobID })
	for i := range apps {
		apps[i].MatchData = s.matchFor(apps[i].UserID, job)
	}
	page, perPage := pageParams(r, 50)
	writeKeyedPage(w, "applications", apps, page, perPage)
}

func (s *Server) updateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	next, err := models.ParseApplicationStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown status")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	app := s.applications[mux.Vars(r)["id"]]
	if app == nil {
		writeError(w, http.StatusNotFound, "Application not found")
		return
	}
	job := s.jobs[app.JobID]
	if job == nil || (job.EmployerID != user.ID && user.EffectiveRole() != models.RoleAdmin) {
		writeError(w, http.StatusForbidden, "Not your posting")
		return
	}
	if !app.Status.CanTransition(next) {
		writeError(w, http.StatusBadRequest, "Invalid status transition")
		return
	}

	now := s.now()
	app.Status = next
	app.UpdatedAt = now
	if req.Notes != "" {
		app.Notes = req.Notes
	}
	if next == models.ApplicationReviewed && app.ReviewedAt == nil {
		app.ReviewedAt = &now
	}
	writeData(w, http.StatusOK, app)
}

func (s *Server) matchedJobs(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	minScore, _ := strconv.Atoi(r.URL.Query().Get("min_score"))

	jobs := s.sortedJobs(func(j *models.JobPosting) bool { return j.Status == models.JobActive })
	var out []models.JobPosting
	for _, j := range jobs {
		j.MatchData = s.matchFor(user.ID, &j)
		if j.MatchData.MatchScore >= float64(minScore) {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool {
		return out[i].MatchData.MatchScore > out[k].MatchData.MatchScore
	})

	page, perPage := pageParams(r, 20)
	writeKeyedPage(w, "jobs", out, page, perPage)
}

func (s *Server) myAssessments(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	s.mu.Lock()
	var out []models.SkillAssessment
	for _, a := range s.assessments {
		if a.UserID == user.ID {
			out = append(out, *a)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, k int) bool {
		if !out[i].CompletedAt.Equal(out[k].CompletedAt) {
			return out[i].CompletedAt.After(out[k].CompletedAt)
		}
		return out[i].ID < out[k].ID
	})

	page, perPage := pageParams(r, 50)
	writeKeyedPage(w, "assessments", out, page, perPage)
}
