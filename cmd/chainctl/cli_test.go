package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/Gerri254/chainctl/internal/pages"
)

func TestCommandsRegistered(t *testing.T) {
	want := []string{
		"auth", "jobs", "procurements", "bid", "bids", "report",
		"vendors", "anomalies", "reports", "dashboard",
	}
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestFriendlyRedirects(t *testing.T) {
	err := friendly(&pages.RedirectError{To: "/login"})
	if !strings.Contains(err.Error(), "auth login") {
		t.Errorf("login redirect: %v", err)
	}

	err = friendly(&pages.RedirectError{To: "/employer/dashboard"})
	if !strings.Contains(err.Error(), "role") {
		t.Errorf("role redirect: %v", err)
	}

	plain := errors.New("connection refused")
	if friendly(plain) != plain {
		t.Error("non-redirect errors must pass through unchanged")
	}
}

func TestTendersAlias(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"tenders", "list"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if cmd.Name() != "list" {
		t.Fatalf("resolved %q", cmd.Name())
	}
}
