// Package config loads, validates, and normalizes confpilot's TOML
// configuration, applying environment fallbacks for provider secrets.
package config
