package chainapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Envelope is the wire wrapper every endpoint responds with.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Errors  map[string]any  `json:"errors,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func decodeEnvelope(body []byte) (Envelope, error) {
	var env Envelope
	if len(body) == 0 {
		return env, fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return env, err
	}
	return env, nil
}

// APIError carries the server-provided message for a failed call, plus any
// field-level validation errors.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]any
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: %s (status %d)", e.Message, e.StatusCode)
}

func newAPIError(status int, env Envelope) *APIError {
	msg := env.Error
	if msg == "" {
		msg = env.Message
	}
	return &APIError{StatusCode: status, Message: msg, Fields: env.Errors}
}

// AsAPIError unwraps err to the server error it carries, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// Page is the one pagination envelope the SDK exposes. The backend answers
// with two shapes, `results/total/page/limit/pages` on the procurement side
// and `<resource-name>/total/page/per_page/total_pages` on the jobs side;
// both are folded into this type at the client boundary so the variance
// never leaks into callers.
type Page[T any] struct {
	Items   []T `json:"items"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Pages   int `json:"pages"`
}

// HasNext reports whether a further page exists. The last page, or any page
// requested beyond the end, disables the Next control.
func (p Page[T]) HasNext() bool { return p.Page < p.Pages }

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Page > 1 }

// listKeys are the field names the backend uses for the embedded list,
// checked in order.
var listKeys = []string{
	"items", "results", "jobs", "applications", "assessments",
	"procurements", "bids", "vendors", "reports", "anomalies", "postings",
}

// decodePage folds either server pagination shape into a Page[T].
func decodePage[T any](raw []byte) (Page[T], error) {
	var page Page[T]

	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		// bare array response: single page, no counts
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return page, fmt.Errorf("decode list: %w", err)
		}
		page.Items = items
		page.Total = len(items)
		page.Page = 1
		page.PerPage = len(items)
		page.Pages = 1
		return page, nil
	}

	var arr gjson.Result
	for _, key := range listKeys {
		if v := gjson.GetBytes(raw, key); v.IsArray() {
			arr = v
			break
		}
	}
	if !arr.Exists() {
		return page, fmt.Errorf("no list field found in response (keys tried: %s)", strings.Join(listKeys, ", "))
	}

	if err := json.Unmarshal([]byte(arr.Raw), &page.Items); err != nil {
		return page, fmt.Errorf("decode list items: %w", err)
	}

	page.Total = firstInt(raw, len(page.Items), "total", "pagination.total")
	page.Page = firstInt(raw, 1, "page", "pagination.page")
	page.PerPage = firstInt(raw, len(page.Items), "per_page", "limit", "pagination.per_page")
	page.Pages = firstInt(raw, 0, "pages", "total_pages", "pagination.pages")
	if page.Pages == 0 && page.PerPage > 0 {
		page.Pages = (page.Total + page.PerPage - 1) / page.PerPage
	}

	return page, nil
}

func firstInt(raw []byte, def int, paths ...string) int {
	for _, p := range paths {
		if v := gjson.GetBytes(raw, p); v.Exists() {
			return int(v.Int())
		}
	}
	return def
}
