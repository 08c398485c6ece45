package config

import "testing"

func TestLoadUsesDefaults(t *testing.T) {
	t.Setenv("API_PORT", "")
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("API_RATE_LIMIT_RPS", "")

	cfg := Load()
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.APIPort)
	}
	if cfg.NATSSubject != "doccontrol.revisions" {
		t.Fatalf("expected default subject, got %q", cfg.NATSSubject)
	}
	if cfg.APIRateLimitRPS != 0 {
		t.Fatalf("expected rate limiting off by default, got %v", cfg.APIRateLimitRPS)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("API_RATE_LIMIT_RPS", "12.5")
	t.Setenv("API_RATE_LIMIT_BURST", "25")
	t.Setenv("API_MAX_CONCURRENT", "64")
	t.Setenv("REFERENCE_SEED_PATH", "/etc/doccontrol/vocabulary.yaml")

	cfg := Load()
	if cfg.APIRateLimitRPS != 12.5 {
		t.Fatalf("expected rate limit 12.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.APIRateLimitBurst != 25 {
		t.Fatalf("expected burst 25, got %d", cfg.APIRateLimitBurst)
	}
	if cfg.APIMaxConcurrent != 64 {
		t.Fatalf("expected max concurrent 64, got %d", cfg.APIMaxConcurrent)
	}
	if cfg.ReferenceSeedPath != "/etc/doccontrol/vocabulary.yaml" {
		t.Fatalf("expected seed path override, got %q", cfg.ReferenceSeedPath)
	}
}

func TestLoadFallsBackOnInvalidNumbers(t *testing.T) {
	t.Setenv("API_RATE_LIMIT_RPS", "not-a-number")
	t.Setenv("API_RATE_LIMIT_BURST", "also-not")

	cfg := Load()
	if cfg.APIRateLimitRPS != 0 || cfg.APIRateLimitBurst != 0 {
		t.Fatalf("expected fallbacks for invalid numbers, got %v %d", cfg.APIRateLimitRPS, cfg.APIRateLimitBurst)
	}
}
