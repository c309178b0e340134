package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	APIBaseURL string       `yaml:"api_base_url"`
	StatePath  string       `yaml:"state_path"`
	Client     ClientConfig `yaml:"client"`
}

// ClientConfig carries the transport knobs for the API client.
type ClientConfig struct {
	Timeout                 time.Duration `yaml:"timeout"`
	Retries                 int           `yaml:"retries"`
	Backoff                 time.Duration `yaml:"backoff"`
	CircuitFailureThreshold int           `yaml:"circuit_failure_threshold"`
	CircuitReset            time.Duration `yaml:"circuit_reset"`
}

// LoadConfig builds the configuration from defaults, environment variables,
// and an optional YAML file. A .env file in the working directory is loaded
// first when present; a missing .env is not an error.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL: getEnv("CHAINCTL_API_BASE_URL", "http://localhost:5000"),
		StatePath:  getEnv("CHAINCTL_STATE_PATH", defaultStatePath()),
		Client: ClientConfig{
			Timeout:                 15 * time.Second,
			Retries:                 getEnvInt("CHAINCTL_RETRIES", 2),
			Backoff:                 500 * time.Millisecond,
			CircuitFailureThreshold: 5,
			CircuitReset:            30 * time.Second,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "chainctl.db"
	}
	return home + "/.chainctl/state.db"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return def
}
