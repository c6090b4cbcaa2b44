package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	defaultSecretsDir = "/run/secrets"
	defaultStatsPath  = "data/arima_data.xlsx"
)

type Config struct {
	Port        string
	Provider    string
	APIKey      string
	RosterPath  string
	StatsPath   string
	FrontendURL string
}

// Load resolves configuration from the environment. The API key is looked
// up in a Docker-style secrets directory first, then in the environment;
// its absence is not an error here, the caller downgrades to a
// static-only page.
func Load() Config {
	cfg := Config{
		Port:        envOr("PORT", "8080"),
		Provider:    strings.ToLower(envOr("LLM_PROVIDER", ProviderOpenAI)),
		RosterPath:  os.Getenv("ROSTER_PATH"),
		StatsPath:   envOr("STATS_PATH", defaultStatsPath),
		FrontendURL: os.Getenv("FRONTEND_URL"),
	}

	switch cfg.Provider {
	case ProviderAnthropic:
		cfg.APIKey = Secret("ANTHROPIC_API_KEY")
	default:
		cfg.Provider = ProviderOpenAI
		cfg.APIKey = Secret("OPENAI_API_KEY")
	}

	return cfg
}

// Secret resolves name from the secrets directory (SECRETS_DIR, defaulting
// to /run/secrets, file named after the lowercased key), falling back to
// the environment variable of the same name.
func Secret(name string) string {
	dir := envOr("SECRETS_DIR", defaultSecretsDir)
	if b, err := os.ReadFile(filepath.Join(dir, strings.ToLower(name))); err == nil {
		if v := strings.TrimSpace(string(b)); v != "" {
			return v
		}
	}
	return os.Getenv(name)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
