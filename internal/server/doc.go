// Package server assembles the HTTP service: router, middleware, routes
// and stores, plus the supervisor target that runs its serve loop.
package server
