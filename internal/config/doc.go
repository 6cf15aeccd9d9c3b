// Package config loads, normalizes, and validates scribe's TOML configuration.
//
// Configuration is resolved from an explicit --config path, then
// ~/.config/scribe/config.toml, then a project-local scribe.toml. Missing
// files fall back to built-in defaults; the only hard requirement is
// summarizer.api_key.
package config
