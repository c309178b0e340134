package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/Gerri254/chainctl/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Ensure environment does not interfere
	_ = os.Unsetenv("CHAINCTL_API_BASE_URL")
	_ = os.Unsetenv("CHAINCTL_STATE_PATH")
	_ = os.Unsetenv("CHAINCTL_RETRIES")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.APIBaseURL != "http://localhost:5000" {
		t.Fatalf("unexpected APIBaseURL: got %q", cfg.APIBaseURL)
	}
	if cfg.StatePath == "" {
		t.Fatalf("expected StatePath default to be populated")
	}
	if cfg.Client.Timeout != 15*time.Second {
		t.Fatalf("unexpected Timeout: got %v want %v", cfg.Client.Timeout, 15*time.Second)
	}
	if cfg.Client.Retries != 2 {
		t.Fatalf("unexpected Retries: got %d want 2", cfg.Client.Retries)
	}
	if cfg.Client.CircuitFailureThreshold <= 0 {
		t.Fatalf("expected CircuitFailureThreshold > 0")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	os.Setenv("CHAINCTL_API_BASE_URL", "https://api.example.test")
	os.Setenv("CHAINCTL_RETRIES", "7")
	defer os.Unsetenv("CHAINCTL_API_BASE_URL")
	defer os.Unsetenv("CHAINCTL_RETRIES")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.APIBaseURL != "https://api.example.test" {
		t.Fatalf("unexpected APIBaseURL: got %q", cfg.APIBaseURL)
	}
	if cfg.Client.Retries != 7 {
		t.Fatalf("unexpected Retries: got %d want 7", cfg.Client.Retries)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	content := []byte("api_base_url: \"https://file.example.test\"\nstate_path: \"state-test.db\"\nclient:\n  timeout: \"30s\"\n  retries: 4\n")
	if err := os.WriteFile(f.Name(), content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(f.Name())
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.APIBaseURL != "https://file.example.test" {
		t.Fatalf("unexpected APIBaseURL: got %q", cfg.APIBaseURL)
	}
	if cfg.StatePath != "state-test.db" {
		t.Fatalf("unexpected StatePath: got %q", cfg.StatePath)
	}
	if cfg.Client.Timeout != 30*time.Second {
		t.Fatalf("unexpected Timeout: got %v", cfg.Client.Timeout)
	}
	if cfg.Client.Retries != 4 {
		t.Fatalf("unexpected Retries: got %d", cfg.Client.Retries)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	f, err := os.CreateTemp("", "bad-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	if err := os.WriteFile(f.Name(), []byte("::: not yaml :::"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(f.Name()); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}
