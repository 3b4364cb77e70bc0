// Package http contains the Gin handlers for the CRUD surface: feature
// sets, pipelines, and the process endpoint that runs the cleaner.
package http
