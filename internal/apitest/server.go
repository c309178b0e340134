// Package apitest is an in-process stand-in for the real backend. It
// speaks the same envelope and both pagination shapes over the same
// routes, with bcrypt-checked users and HS256 tokens, so the SDK and the
// page controllers can be exercised end to end without a network.
package apitest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/Gerri254/chainctl/pkg/models"
)

type ctxKey string

const ctxUser ctxKey = "user"

var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs a logger for apitest. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// Server holds the in-memory state behind the fake routes.
type Server struct {
	mu sync.Mutex

	jwtSecret     string
	tokenDuration time.Duration
	now           func() time.Time

	users        map[string]*models.User // by id
	passwords    map[string]string       // user id -> bcrypt hash
	jobs         map[string]*models.JobPosting
	applications map[string]*models.JobApplication
	assessments  map[string]*models.SkillAssessment
	procurements map[string]*models.Procurement
	bids         map[string]*models.Bid
	vendors      map[string]*models.Vendor
	reports      map[string]*models.Report
	anomalies    map[string]*models.Anomaly

	fixtures Fixtures
	router   *mux.Router
}

// NewServer returns a server pre-loaded with the standard fixtures.
func NewServer() *Server {
	s := &Server{
		jwtSecret:     "apitest-secret",
		tokenDuration: 15 * time.Minute,
		now:           time.Now,
		users:         make(map[string]*models.User),
		passwords:     make(map[string]string),
		jobs:          make(map[string]*models.JobPosting),
		applications:  make(map[string]*models.JobApplication),
		assessments:   make(map[string]*models.SkillAssessment),
		procurements:  make(map[string]*models.Procurement),
		bids:          make(map[string]*models.Bid),
		vendors:       make(map[string]*models.Vendor),
		reports:       make(map[string]*models.Report),
		anomalies:     make(map[string]*models.Anomaly),
	}
	s.seed()
	s.router = s.routes()
	return s
}

// Router returns the handler; hand it to httptest.NewServer.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(recoveryMiddleware)

	// Open endpoints
	r.HandleFunc("/api/auth/register", s.register).Methods("POST")
	r.HandleFunc("/api/auth/login", s.login).Methods("POST")
	r.HandleFunc("/api/auth/refresh", s.refresh).Methods("POST")
	r.HandleFunc("/api/procurement/public", s.listPublicProcurements).Methods("GET")
	r.HandleFunc("/api/vendors/public", s.listPublicVendors).Methods("GET")
	r.HandleFunc("/api/reports", s.createReport).Methods("POST")

	// Protected endpoints
	p := r.PathPrefix("/api").Subrouter()
	p.Use(s.authMiddleware)

	p.HandleFunc("/auth/logout", s.logout).Methods("POST")
	p.HandleFunc("/auth/me", s.me).Methods("GET")
	p.HandleFunc("/auth/me", s.updateMe).Methods("PUT")

	p.HandleFunc("/jobs", s.browseJobs).Methods("GET")
	p.HandleFunc("/jobs", s.createJob).Methods("POST")
	p.HandleFunc("/jobs/my-postings", s.myPostings).Methods("GET")
	p.HandleFunc("/jobs/stats", s.jobStats).Methods("GET")
	p.HandleFunc("/jobs/{id}", s.getJob).Methods("GET")
	p.HandleFunc("/jobs/{id}", s.updateJob).Methods("PUT")
	p.HandleFunc("/jobs/{id}", s.deleteJob).Methods("DELETE")

	p.HandleFunc("/applications/", s.createApplication).Methods("POST")
	p.HandleFunc("/applications/my-applications", s.myApplications).Methods("GET")
	p.HandleFunc("/applications/matched-jobs", s.matchedJobs).Methods("GET")
	p.HandleFunc("/applications/job/{id}", s.applicationsForJob).Methods("GET")
	p.HandleFunc("/applications/{id}/status", s.updateApplicationStatus).Methods("PUT")

	p.HandleFunc("/assessments/my-assessments", s.myAssessments).Methods("GET")

	p.HandleFunc("/procurement", s.listProcurements).Methods("GET")
	p.HandleFunc("/procurement", s.createProcurement).Methods("POST")
	p.HandleFunc("/procurement/statistics", s.procurementStats).Methods("GET")
	p.HandleFunc("/procurement/{id}", s.getProcurement).Methods("GET")
	p.HandleFunc("/procurement/{id}", s.updateProcurement).Methods("PUT")
	p.HandleFunc("/procurement/{id}", s.deleteProcurement).Methods("DELETE")

	p.HandleFunc("/bids/procurement/{id}", s.submitBid).Methods("POST")
	p.HandleFunc("/bids/procurement/{id}", s.bidsForProcurement).Methods("GET")
	p.HandleFunc("/bids/vendor/my-bids", s.myBids).Methods("GET")
	p.HandleFunc("/bids/{id}", s.getBid).Methods("GET")
	p.HandleFunc("/bids/{id}/award", s.awardBid).Methods("POST")

	p.HandleFunc("/vendors", s.listVendors).Methods("GET")
	p.HandleFunc("/vendors", s.createVendor).Methods("POST")
	p.HandleFunc("/vendors/top", s.topVendors).Methods("GET")
	p.HandleFunc("/vendors/{id}", s.getVendor).Methods("GET")
	p.HandleFunc("/vendors/{id}", s.updateVendor).Methods("PUT")

	p.HandleFunc("/reports", s.listReports).Methods("GET")
	p.HandleFunc("/reports/procurement/{id}/count", s.reportCount).Methods("GET")
	p.HandleFunc("/reports/{id}", s.getReport).Methods("GET")
	p.HandleFunc("/reports/{id}/status", s.updateReportStatus).Methods("PATCH")

	p.HandleFunc("/analysis/anomaly/{id}", s.analyzeProcurement).Methods("POST")
	p.HandleFunc("/analysis/anomalies", s.listAnomalies).Methods("GET")
	p.HandleFunc("/analysis/anomalies/high-risk", s.highRiskAnomalies).Methods("GET")
	p.HandleFunc("/analysis/anomalies/statistics", s.anomalyStats).Methods("GET")
	p.HandleFunc("/analysis/anomalies/procurement/{id}", s.anomaliesForProcurement).Methods("GET")
	p.HandleFunc("/analysis/anomalies/{id}", s.getAnomaly).Methods("GET")
	p.HandleFunc("/analysis/anomalies/{id}/resolve", s.resolveAnomaly).Methods("PATCH")

	p.HandleFunc("/analytics/trends", s.spendingTrends).Methods("GET")
	p.HandleFunc("/analytics/metrics", s.keyMetrics).Methods("GET")

	return r
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic", slog.Any("err", err))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tokenString string
		if h := r.Header.Get("Authorization"); h != "" {
			fmt.Sscanf(h, "Bearer %s", &tokenString)
		}
		if tokenString == "" {
			writeError(w, http.StatusUnauthorized, "Missing Authorization header")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(s.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid token claims")
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

		ctx := context.WithValue(r.Context(), ctxUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUser(r *http.Request) *models.User {
	u, _ := r.Context().Value(ctxUser).(*models.User)
	return u
}

func (s *Server) issueToken(userID string, role models.Role, ttl time.Duration, tokenType string) string {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     s.now().Add(ttl).Unix(),
	}
	if tokenType != "" {
		claims["type"] = tokenType
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		panic(fmt.Sprintf("apitest: sign token: %v", err))
	}
	return signed
}

type envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
	Errors  map[string]any `json:"errors,omitempty"`
	Data    any            `json:"data,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Message: msg})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

func writeFieldErrors(w http.ResponseWriter, msg string, fields map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: msg, Errors: fields})
}

func pageParams(r *http.Request, defaultLimit int) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

func paginate[T any](items []T, page, limit int) ([]T, int) {
	total := len(items)
	pages := (total + limit - 1) / limit
	if pages == 0 {
		pages = 1
	}
	start := (page - 1) * limit
	if start >= total {
		return []T{}, pages
	}
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end], pages
}

// writeResultsPage answers in the procurement-side shape:
// results/total/page/limit/pages.
func writeResultsPage[T any](w http.ResponseWriter, items []T, page, limit int) {
	window, pages := paginate(items, page, limit)
	writeData(w, http.StatusOK, map[string]any{
		"results": window,
		"total":   len(items),
		"page":    page,
		"limit":   limit,
		"pages":   pages,
	})
}

// writeKeyedPage answers in the jobs-side shape:
// <key>/total/page/per_page/total_pages.
func writeKeyedPage[T any](w http.ResponseWriter, key string, items []T, page, perPage int) {
	window, pages := paginate(items, page, perPage)
	writeData(w, http.StatusOK, map[string]any{
		key:           window,
		"total":       len(items),
		"page":        page,
		"per_page":    perPage,
		"total_pages": pages,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
