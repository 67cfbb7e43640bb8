package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"round/internal/round"
)

type Mode string

const (
	ModeWorker Mode = "worker"
	ModeAPI    Mode = "api"
)

// Config holds service configuration shared by the worker and API server.
type Config struct {
	DatabaseURL       string
	SupabaseURL       string
	SupabaseSecretKey string
	Port              string
	DefaultCurrency   string
	IdentityRules     round.IdentityRules
	WSAllowedOrigins  []string
	FXProviderName    string
	FXProviderBaseURL string
	FXProviderAPIKey  string
	FXRefreshInterval time.Duration
	FXMaxAge          time.Duration
}

func LoadForWorker() (Config, error) {
	return load(ModeWorker)
}

func LoadForAPI() (Config, error) {
	return load(ModeAPI)
}

func load(mode Mode) (Config, error) {
	cfg := Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SupabaseURL:       os.Getenv("SUPABASE_URL"),
		SupabaseSecretKey: os.Getenv("SUPABASE_SECRET_KEY"),
		Port:              envDefault("PORT", "8080"),
		DefaultCurrency:   strings.ToUpper(envDefault("DEFAULT_CURRENCY", round.DefaultCurrency)),
		WSAllowedOrigins:  splitList(os.Getenv("WS_ALLOWED_ORIGINS")),
		FXProviderName:    os.Getenv("FX_PROVIDER_NAME"),
		FXProviderBaseURL: os.Getenv("FX_PROVIDER_BASE_URL"),
		FXProviderAPIKey:  os.Getenv("FX_PROVIDER_API_KEY"),
	}

	var validationErrs []string
	requireEnv("DATABASE_URL", cfg.DatabaseURL, &validationErrs)

	rules, err := round.RulesByName(os.Getenv("IDENTITY_RULES"))
	if err != nil {
		validationErrs = append(validationErrs, "IDENTITY_RULES must be standard or exact")
	}
	cfg.IdentityRules = rules

	if !round.KnownCurrency(cfg.DefaultCurrency) {
		validationErrs = append(validationErrs, "DEFAULT_CURRENCY must be an ISO 4217 code")
	}

	cfg.FXRefreshInterval = envDuration("FX_REFRESH_INTERVAL", time.Hour, &validationErrs)
	cfg.FXMaxAge = envDuration("FX_MAX_AGE", 12*time.Hour, &validationErrs)

	switch mode {
	case ModeWorker:
		requireEnv("FX_PROVIDER_NAME", cfg.FXProviderName, &validationErrs)
	case ModeAPI:
		requireEnv("SUPABASE_URL", cfg.SupabaseURL, &validationErrs)
		requireEnv("SUPABASE_SECRET_KEY", cfg.SupabaseSecretKey, &validationErrs)
	default:
		validationErrs = append(validationErrs, "unknown service mode")
	}

	if len(validationErrs) > 0 {
		return cfg, errors.New(strings.Join(validationErrs, "; "))
	}

	return cfg, nil
}

func envDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration, errs *[]string) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		*errs = append(*errs, key+" must be a positive duration")
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func requireEnv(name, value string, errs *[]string) {
	if strings.TrimSpace(value) == "" {
		*errs = append(*errs, name+" is required")
	}
}
