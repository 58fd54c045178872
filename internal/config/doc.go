// Package config provides configuration structures and utilities for
// previewscan. It defines the defaults for catalog paging, probe timeouts,
// politeness delays, and the blank-render size threshold, plus the optional
// YAML overrides file.
package config
