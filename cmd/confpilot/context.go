package main

import (
	"fmt"
	"strings"
	"sync"

	"confpilot/internal/config"
)

// commandContext lazily loads configuration and resolves the daemon API
// address shared by the CLI commands.
type commandContext struct {
	addrFlag   *string
	configFlag *string

	mu  sync.Mutex
	cfg *config.Config
}

func newCommandContext(addrFlag, configFlag *string) *commandContext {
	return &commandContext{addrFlag: addrFlag, configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg != nil {
		return c.cfg, nil
	}

	path := ""
	if c.configFlag != nil {
		path = strings.TrimSpace(*c.configFlag)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

// apiBaseURL resolves the daemon address, preferring the --addr flag over the
// configured bind address.
func (c *commandContext) apiBaseURL() (string, error) {
	if c.addrFlag != nil && strings.TrimSpace(*c.addrFlag) != "" {
		return normalizeBaseURL(*c.addrFlag), nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return "", fmt.Errorf("no api address configured; set paths.api_bind or pass --addr")
	}
	return normalizeBaseURL(bind), nil
}

func normalizeBaseURL(addr string) string {
	addr = strings.TrimSpace(addr)
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return strings.TrimRight(addr, "/")
}
