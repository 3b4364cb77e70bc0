// Package middleware provides Gin middleware for the HTTP surface:
// CORS and per-client rate limiting.
package middleware
