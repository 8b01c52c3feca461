package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate checks structural configuration problems that would prevent the
// daemon from starting. Missing provider API keys are not fatal here; each
// client reports its own configuration error when first used.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Redis.URL) == "" {
		problems = append(problems, "redis.url must not be empty")
	}

	if bind := strings.TrimSpace(c.Paths.APIBind); bind != "" {
		if _, _, err := net.SplitHostPort(bind); err != nil {
			problems = append(problems, fmt.Sprintf("paths.api_bind %q is not host:port", bind))
		}
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not console or json", c.Logging.Format))
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is not debug, info, warn or error", c.Logging.Level))
	}

	if c.Gladia.SampleRate <= 0 {
		problems = append(problems, "gladia.sample_rate must be positive")
	}
	if c.Gladia.Channels <= 0 {
		problems = append(problems, "gladia.channels must be positive")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
