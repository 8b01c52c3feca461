package config

import (
	"fmt"
	"os"
	"strings"
)

// envFallbacks maps secret fields to the environment variables that populate
// them when the config file leaves them empty. API keys never have defaults.
func (c *Config) applyEnvFallbacks() {
	fallback := func(target *string, envKeys ...string) {
		if strings.TrimSpace(*target) != "" {
			return
		}
		for _, key := range envKeys {
			if value := strings.TrimSpace(os.Getenv(key)); value != "" {
				*target = value
				return
			}
		}
	}

	fallback(&c.Serper.APIKey, "SERPER_API_KEY")
	fallback(&c.Apify.APIKey, "APIFY_API_KEY")
	fallback(&c.BrightData.APIKey, "BRIGHTDATA_API_KEY")
	fallback(&c.Airia.APIKey, "AIRIA_API_KEY")
	fallback(&c.Airia.PipelineID, "AIRIA_SESSION_PREP_PIPELINE_ID")
	fallback(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	fallback(&c.Gladia.APIKey, "GLADIA_API_KEY")
	fallback(&c.Supabase.URL, "SUPABASE_URL")
	fallback(&c.Supabase.APIKey, "SUPABASE_ANON_KEY")
	fallback(&c.Redis.URL, "REDIS_URL")
}

func (c *Config) normalize() error {
	c.applyEnvFallbacks()

	for name, field := range map[string]*string{
		"log_dir":   &c.Paths.LogDir,
		"lock_file": &c.Paths.LockFile,
	} {
		expanded, err := expandPath(*field)
		if err != nil {
			return fmt.Errorf("expand %s: %w", name, err)
		}
		*field = expanded
	}

	if strings.TrimSpace(c.Conference.MaterialPath) != "" {
		expanded, err := expandPath(c.Conference.MaterialPath)
		if err != nil {
			return fmt.Errorf("expand material_path: %w", err)
		}
		c.Conference.MaterialPath = expanded
	}

	for _, field := range []*string{
		&c.Serper.BaseURL,
		&c.Apify.BaseURL,
		&c.BrightData.BaseURL,
		&c.Airia.BaseURL,
		&c.OpenAI.BaseURL,
		&c.Gladia.BaseURL,
	} {
		*field = strings.TrimRight(strings.TrimSpace(*field), "/")
	}

	c.Conference.DefaultID = strings.TrimSpace(c.Conference.DefaultID)
	if c.Conference.DefaultID == "" {
		c.Conference.DefaultID = defaultConferenceID
	}

	if c.BrightData.PollIntervalSeconds <= 0 {
		c.BrightData.PollIntervalSeconds = defaultBrightDataPoll
	}
	if c.BrightData.MaxPolls <= 0 {
		c.BrightData.MaxPolls = defaultBrightDataPolls
	}
	if c.Gladia.ReconnectMaxAttempts <= 0 {
		c.Gladia.ReconnectMaxAttempts = defaultReconnectAttempts
	}
	if c.Gladia.ReconnectDelayMillis <= 0 {
		c.Gladia.ReconnectDelayMillis = defaultReconnectDelayMS
	}

	return nil
}
