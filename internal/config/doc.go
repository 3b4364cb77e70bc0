// Package config loads application configuration from environment
// variables (12-factor), with defaults suitable for local development.
package config
