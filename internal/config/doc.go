// Package config provides environment-driven configuration for the
// docquery CLI.
//
// Configuration is loaded from environment variables with sensible
// defaults; the library itself is configured through functional options
// and does not read the environment.
package config
