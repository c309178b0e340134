package chainapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Gerri254/chainctl/internal/config"
	"github.com/Gerri254/chainctl/pkg/chainapi"
)

func testConfig() config.ClientConfig {
	return config.ClientConfig{
		Timeout:                 2 * time.Second,
		Retries:                 0,
		Backoff:                 10 * time.Millisecond,
		CircuitFailureThreshold: 3,
		CircuitReset:            time.Minute,
	}
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"_id":"u1","email":"a@b.c","role":"learner","status":"active"}}`))
	}))
	defer srv.Close()

	c, err := chainapi.NewClient(srv.URL, testConfig(), chainapi.StaticToken("tok-123"))
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	if _, err := c.Auth.Me(context.Background()); err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("unexpected Authorization header: %q", gotAuth)
	}
}

func TestClient_NoTokenMeansNoHeader(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"results":[],"total":0,"page":1,"limit":20,"pages":0}}`))
	}))
	defer srv.Close()

	c, err := chainapi.NewClient(srv.URL, testConfig(), nil)
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	if _, err := c.Procurements.PublicList(context.Background(), chainapi.ProcurementFilters{}); err != nil {
		t.Fatalf("PublicList failed: %v", err)
	}
	if sawAuth {
		t.Fatal("anonymous request must not carry an Authorization header")
	}
}

func TestClient_ServerErrorMessageSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"error":"Email already registered"}`))
	}))
	defer srv.Close()

	c, err := chainapi.NewClient(srv.URL, testConfig(), nil)
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	_, err = c.Auth.Register(context.Background(), chainapi.RegisterInput{
		Email: "a@b.c", Password: "longenough", FullName: "A B",
	})
	if err == nil {
		t.Fatal("expected error for 409 response")
	}
	apiErr, ok := err.(*chainapi.APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", apiErr.StatusCode)
	}
	if apiErr.Message != "Email already registered" {
		t.Errorf("message = %q, want server-provided message", apiErr.Message)
	}
}

func TestClient_IsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":"Invalid email or password"}`))
	}))
	defer srv.Close()

	c, err := chainapi.NewClient(srv.URL, testConfig(), nil)
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	_, err = c.Auth.Login(context.Background(), chainapi.Credentials{Email: "a@b.c", Password: "nope"})
	if !chainapi.IsUnauthorized(err) {
		t.Fatalf("expected IsUnauthorized, got %v", err)
	}
}

func TestClient_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"boom"}`))
	}))
	defer srv.Close()

	c, err := chainapi.NewClient(srv.URL, testConfig(), nil)
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := c.Jobs.Get(ctx, "j1"); err == nil {
			t.Fatal("expected failure from 500 response")
		}
	}

	_, err = c.Jobs.Get(ctx, "j1")
	if err != chainapi.ErrCircuitOpen {
		t.Fatalf("expected ErrCircuitOpen after threshold, got %v", err)
	}
}

func TestClient_ContextCancellationAborts(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"success":true,"data":{}}`))
	}))
	defer srv.Close()
	defer close(release)

	c, err := chainapi.NewClient(srv.URL, testConfig(), nil)
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Jobs.Get(ctx, "j1")
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error after context cancellation")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("request did not abort after cancellation")
	}
}

func TestClient_InvalidBaseURL(t *testing.T) {
	if _, err := chainapi.NewClient("not a url", testConfig(), nil); err == nil {
		t.Fatal("expected error for invalid base url")
	}
}
