// Package research defines the session research data model and the typed
// cache store in front of it. The key naming scheme and JSON field names are
// load-bearing: existing cached entries written by earlier deployments must
// stay readable.
package research
