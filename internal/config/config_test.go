package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Paths.APIBind != "127.0.0.1:8484" {
		t.Errorf("api bind default: got %q", cfg.Paths.APIBind)
	}
	if cfg.Conference.DefaultID != "ai-engineer-worlds-fair-2025" {
		t.Errorf("conference default: got %q", cfg.Conference.DefaultID)
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
api_bind = "0.0.0.0:9000"

[redis]
url = "redis://cache.internal:6379"

[serper]
api_key = "from-file"

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Errorf("resolution: exists=%v path=%q", exists, resolved)
	}
	if cfg.Paths.APIBind != "0.0.0.0:9000" || cfg.Redis.URL != "redis://cache.internal:6379" {
		t.Errorf("overrides not applied: %+v", cfg.Paths)
	}
	if cfg.Serper.APIKey != "from-file" {
		t.Errorf("serper key: got %q", cfg.Serper.APIKey)
	}
	// Untouched sections keep defaults.
	if cfg.Gladia.SampleRate != 16000 || cfg.BrightData.MaxPolls != 15 {
		t.Errorf("defaults lost: gladia=%+v brightdata=%+v", cfg.Gladia, cfg.BrightData)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Error("missing file must report exists=false")
	}
	if cfg.Redis.URL == "" {
		t.Error("defaults must still apply")
	}
}

func TestEnvFallbacksFillEmptySecrets(t *testing.T) {
	t.Setenv("SERPER_API_KEY", "env-serper")
	t.Setenv("AIRIA_SESSION_PREP_PIPELINE_ID", "env-pipeline")
	t.Setenv("REDIS_URL", "redis://from-env:6379")

	cfg := Default()
	cfg.Redis.URL = ""
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if cfg.Serper.APIKey != "env-serper" {
		t.Errorf("serper env fallback: got %q", cfg.Serper.APIKey)
	}
	if cfg.Airia.PipelineID != "env-pipeline" {
		t.Errorf("pipeline env fallback: got %q", cfg.Airia.PipelineID)
	}
	if cfg.Redis.URL != "redis://from-env:6379" {
		t.Errorf("redis env fallback: got %q", cfg.Redis.URL)
	}
}

func TestEnvDoesNotOverrideFileValue(t *testing.T) {
	t.Setenv("SERPER_API_KEY", "env-serper")
	cfg := Default()
	cfg.Serper.APIKey = "explicit"
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if cfg.Serper.APIKey != "explicit" {
		t.Errorf("explicit value lost: got %q", cfg.Serper.APIKey)
	}
}

func TestNormalizeTrimsBaseURLs(t *testing.T) {
	cfg := Default()
	cfg.Serper.BaseURL = "https://google.serper.dev/ "
	cfg.Gladia.BaseURL = "https://api.gladia.io/v2///"
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if cfg.Serper.BaseURL != "https://google.serper.dev" {
		t.Errorf("serper base: got %q", cfg.Serper.BaseURL)
	}
	if cfg.Gladia.BaseURL != "https://api.gladia.io/v2" {
		t.Errorf("gladia base: got %q", cfg.Gladia.BaseURL)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		keyword string
	}{
		{"empty redis", func(c *Config) { c.Redis.URL = "" }, "redis.url"},
		{"bad bind", func(c *Config) { c.Paths.APIBind = "no-port" }, "api_bind"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad sample rate", func(c *Config) { c.Gladia.SampleRate = 0 }, "sample_rate"},
		{"bad channels", func(c *Config) { c.Gladia.Channels = -1 }, "channels"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.keyword) {
				t.Errorf("expected %q problem, got %v", tc.keyword, err)
			}
		})
	}
}

func TestExpandPathResolvesHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	expanded, err := ExpandPath("~/confpilot/logs")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if !strings.HasPrefix(expanded, home) {
		t.Errorf("expanded path %q not under home %q", expanded, home)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Paths.LockFile = filepath.Join(dir, "run", "confpilotd.lock")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, path := range []string{cfg.Paths.LogDir, filepath.Join(dir, "run")} {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %q missing: %v", path, err)
		}
	}
}
