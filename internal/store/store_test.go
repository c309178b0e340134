package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Gerri254/chainctl/internal/store"
)

func openTemp(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SetGetRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if err := s.Set(ctx, "access_token", "tok-1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, ok, err := s.Get(ctx, "access_token")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || v != "tok-1" {
		t.Fatalf("got (%q, %v), want (tok-1, true)", v, ok)
	}
}

func TestStore_SetOverwrites(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_ = s.Set(ctx, "k", "old")
	if err := s.Set(ctx, "k", "new"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, _, _ := s.Get(ctx, "k")
	if v != "new" {
		t.Fatalf("got %q, want new", v)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := openTemp(t)

	_, ok, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Fatal("missing key must report ok=false")
	}
}

func TestStore_DeleteMany(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_ = s.Set(ctx, "access_token", "a")
	_ = s.Set(ctx, "refresh_token", "r")
	_ = s.Set(ctx, "user", "{}")

	if err := s.Delete(ctx, "access_token", "refresh_token", "user", "never_set"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	for _, k := range []string{"access_token", "refresh_token", "user"} {
		if _, ok, _ := s.Get(ctx, k); ok {
			t.Errorf("key %s should be gone", k)
		}
	}
}

func TestStore_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	s1, err := store.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	_ = s1.Set(ctx, "user", `{"_id":"u1"}`)
	_ = s1.Close()

	s2, err := store.Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	v, ok, err := s2.Get(ctx, "user")
	if err != nil || !ok || v != `{"_id":"u1"}` {
		t.Fatalf("got (%q, %v, %v), want persisted value", v, ok, err)
	}
}
