package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory, lock and bind address configuration.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	LockFile string `toml:"lock_file"`
	APIBind  string `toml:"api_bind"`
}

// Redis contains configuration for the key-value cache.
type Redis struct {
	URL string `toml:"url"`
}

// Supabase contains configuration for conference and transcript storage.
type Supabase struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
}

// Serper contains configuration for the web search provider.
type Serper struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Apify contains configuration for the web scraping provider.
type Apify struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// BrightData contains configuration for the people-data discovery provider.
type BrightData struct {
	APIKey              string `toml:"api_key"`
	BaseURL             string `toml:"base_url"`
	DatasetID           string `toml:"dataset_id"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	MaxPolls            int    `toml:"max_polls"`
}

// Airia contains configuration for the LLM pipeline provider.
type Airia struct {
	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url"`
	PipelineID string `toml:"pipeline_id"`
}

// OpenAI contains configuration for schedule generation.
type OpenAI struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// Gladia contains configuration for live transcription sessions.
type Gladia struct {
	APIKey               string `toml:"api_key"`
	BaseURL              string `toml:"base_url"`
	SampleRate           int    `toml:"sample_rate"`
	Channels             int    `toml:"channels"`
	BitDepth             int    `toml:"bit_depth"`
	Model                string `toml:"model"`
	ReconnectMaxAttempts int    `toml:"reconnect_max_attempts"`
	ReconnectDelayMillis int    `toml:"reconnect_delay_millis"`
}

// Conference contains configuration for conference material loading.
type Conference struct {
	DefaultID    string `toml:"default_id"`
	MaterialPath string `toml:"material_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for confpilot.
//
// Configuration sections by subsystem:
//   - Paths: log directory, daemon lock file, API bind address
//   - Redis: key-value cache behind the research store
//   - Supabase: conference documents and saved transcripts
//   - Serper / Apify / BrightData / Airia: research providers
//   - OpenAI: personalized schedule generation
//   - Gladia: live transcription sessions
//   - Conference: default conference id and fallback material file
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Redis      Redis      `toml:"redis"`
	Supabase   Supabase   `toml:"supabase"`
	Serper     Serper     `toml:"serper"`
	Apify      Apify      `toml:"apify"`
	BrightData BrightData `toml:"bright_data"`
	Airia      Airia      `toml:"airia"`
	OpenAI     OpenAI     `toml:"openai"`
	Gladia     Gladia     `toml:"gladia"`
	Conference Conference `toml:"conference"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/confpilot/config.toml")
}

// ExpandPath resolves ~ prefixes and returns an absolute, cleaned path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("confpilot.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, filepath.Dir(c.Paths.LockFile)} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CreateSample writes the embedded sample configuration to the target path.
func CreateSample(target string) error {
	return os.WriteFile(target, []byte(sampleConfig), 0o644)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
