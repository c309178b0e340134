package chainapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/Gerri254/chainctl/internal/config"
)

var ErrCircuitOpen = errors.New("api circuit open")

// TokenSource supplies the bearer token attached to authenticated requests.
// An empty string means the request goes out unauthenticated.
type TokenSource interface {
	AccessToken() string
}

// StaticToken is a fixed TokenSource, mostly useful in tests.
type StaticToken string

func (s StaticToken) AccessToken() string { return string(s) }

// Client is the typed HTTP client for the platform REST API. It normalizes
// the {success, data, error} envelope, attaches bearer tokens, retries
// transient failures with backoff, and trips a circuit breaker after
// consecutive failures.
type Client struct {
	rc     *resty.Client
	cfg    config.ClientConfig
	tokens TokenSource

	// circuit breaker state
	failures  int32
	openUntil int64 // unix nano

	Auth         *AuthService
	Jobs         *JobsService
	Applications *ApplicationsService
	Assessments  *AssessmentsService
	Procurements *ProcurementsService
	Bids         *BidsService
	Vendors      *VendorsService
	Reports      *ReportsService
	Anomalies    *AnomaliesService
	Analytics    *AnalyticsService
}

// NewClient creates a client for the API at baseURL. A nil TokenSource is
// treated as always-anonymous.
func NewClient(baseURL string, cfg config.ClientConfig, tokens TokenSource) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(cfg.Backoff).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// retry network errors and server-side failures, never 4xx
			return err != nil || r.StatusCode() >= 500
		})

	c := &Client{rc: rc, cfg: cfg, tokens: tokens}
	c.Auth = &AuthService{c: c}
	c.Jobs = &JobsService{c: c}
	c.Applications = &ApplicationsService{c: c}
	c.Assessments = &AssessmentsService{c: c}
	c.Procurements = &ProcurementsService{c: c}
	c.Bids = &BidsService{c: c}
	c.Vendors = &VendorsService{c: c}
	c.Reports = &ReportsService{c: c}
	c.Anomalies = &AnomaliesService{c: c}
	c.Analytics = &AnalyticsService{c: c}

	logger.Info("chainapi: client created",
		slog.String("base_url", baseURL),
		slog.Duration("timeout", cfg.Timeout))
	return c, nil
}

// package-level logger for chainapi; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by chainapi. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.failures) < int32(c.cfg.CircuitFailureThreshold) {
		return false
	}

	if time.Now().UnixNano() < atomic.LoadInt64(&c.openUntil) {
		return true
	}

	// half-open: reset failures and allow a request through
	atomic.StoreInt32(&c.failures, 0)
	return false
}

func (c *Client) recordFailure() {
	v := atomic.AddInt32(&c.failures, 1)
	if v >= int32(c.cfg.CircuitFailureThreshold) {
		atomic.StoreInt64(&c.openUntil, time.Now().Add(c.cfg.CircuitReset).UnixNano())
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt32(&c.failures, 0)
}

// do issues a request and returns the raw bytes of the envelope's data
// field. Non-2xx responses and success=false envelopes become *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	if c.cfg.CircuitFailureThreshold > 0 && c.isCircuitOpen() {
		return nil, ErrCircuitOpen
	}

	req := c.rc.R().SetContext(ctx)
	req.SetHeader("X-Request-ID", uuid.NewString())
	if tok := c.tokens.AccessToken(); tok != "" {
		req.SetHeader("Authorization", "Bearer "+tok)
	}
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	logger.Debug("chainapi: request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode()),
		slog.Duration("latency", time.Since(start)))

	env, envErr := decodeEnvelope(resp.Body())

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		if resp.StatusCode() >= 500 {
			c.recordFailure()
		} else {
			c.recordSuccess()
		}
		return nil, newAPIError(resp.StatusCode(), env)
	}
	if envErr != nil {
		c.recordFailure()
		return nil, fmt.Errorf("%s %s: decode envelope: %w", method, path, envErr)
	}
	if !env.Success {
		c.recordSuccess()
		return nil, newAPIError(resp.StatusCode(), env)
	}

	c.recordSuccess()
	return env.Data, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, resty.MethodGet, path, query, nil)
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, resty.MethodPost, path, nil, body)
}

func (c *Client) put(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, resty.MethodPut, path, nil, body)
}

func (c *Client) patch(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, resty.MethodPatch, path, nil, body)
}

func (c *Client) delete(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, resty.MethodDelete, path, nil, nil)
}
