// Package cache provides the key-value store behind the research layer:
// JSON and string values with per-key TTLs, backed by Redis in production
// and by an in-memory store in tests.
package cache
