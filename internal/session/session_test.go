package session_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Gerri254/chainctl/internal/session"
	"github.com/Gerri254/chainctl/internal/store"
	"github.com/Gerri254/chainctl/pkg/models"
)

func openStore(t *testing.T, path string) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open store failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"role":    "employer",
		"exp":     exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestManager_StartsSignedOut(t *testing.T) {
	st := openStore(t, filepath.Join(t.TempDir(), "s.db"))

	m, err := session.NewManager(context.Background(), st)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if m.Current().Authenticated() {
		t.Fatal("fresh store must yield a signed-out session")
	}
	if m.AccessToken() != "" {
		t.Fatal("signed-out session must expose no token")
	}
}

func TestManager_EstablishAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.db")
	ctx := context.Background()
	st := openStore(t, path)

	m, err := session.NewManager(ctx, st)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	user := models.User{ID: "u1", Email: "e@x.co", Role: models.RoleEmployer, Status: models.AccountActive}
	if err := m.Establish(ctx, user, signedToken(t, exp), "refresh-1"); err != nil {
		t.Fatalf("Establish failed: %v", err)
	}

	cur := m.Current()
	if !cur.Authenticated() || cur.User.ID != "u1" || cur.RefreshToken != "refresh-1" {
		t.Fatalf("unexpected session: %+v", cur)
	}
	if !cur.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", cur.ExpiresAt, exp)
	}

	// a second manager over the same store sees the persisted session
	st2 := openStore(t, path)
	m2, err := session.NewManager(ctx, st2)
	if err != nil {
		t.Fatalf("reload NewManager failed: %v", err)
	}
	if got := m2.Current(); got.User.Email != "e@x.co" || !got.Authenticated() {
		t.Fatalf("reloaded session lost state: %+v", got)
	}
}

func TestManager_UpdateAccessToken(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, filepath.Join(t.TempDir(), "s.db"))
	m, _ := session.NewManager(ctx, st)

	user := models.User{ID: "u1", Role: models.RoleLearner}
	_ = m.Establish(ctx, user, signedToken(t, time.Now().Add(time.Minute)), "r1")

	newExp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	if err := m.UpdateAccessToken(ctx, signedToken(t, newExp)); err != nil {
		t.Fatalf("UpdateAccessToken failed: %v", err)
	}

	cur := m.Current()
	if !cur.ExpiresAt.Equal(newExp) {
		t.Errorf("ExpiresAt = %v, want %v", cur.ExpiresAt, newExp)
	}
	if cur.RefreshToken != "r1" || cur.User.ID != "u1" {
		t.Error("refresh token and user must survive an access-token update")
	}
}

func TestManager_Clear(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "s.db")
	st := openStore(t, path)
	m, _ := session.NewManager(ctx, st)

	_ = m.Establish(ctx, models.User{ID: "u1"}, signedToken(t, time.Now().Add(time.Hour)), "r1")
	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if m.Current().Authenticated() {
		t.Fatal("cleared session must be signed out")
	}

	// and stays signed out across a reload
	st2 := openStore(t, path)
	m2, _ := session.NewManager(ctx, st2)
	if m2.Current().Authenticated() {
		t.Fatal("cleared session must not reappear after reload")
	}
}

func TestManager_OpaqueTokenHasZeroExpiry(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, filepath.Join(t.TempDir(), "s.db"))
	m, _ := session.NewManager(ctx, st)

	_ = m.Establish(ctx, models.User{ID: "u1"}, "not-a-jwt", "r1")
	if !m.Current().ExpiresAt.IsZero() {
		t.Fatal("undecodable token must yield zero expiry")
	}
	if m.Current().Expired(time.Now()) {
		t.Fatal("zero expiry must not count as expired")
	}
}
