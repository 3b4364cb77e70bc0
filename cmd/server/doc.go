// Package main is the entry point for the scrubd backend server.
//
// The HTTP service runs as a supervised worker: main launches it via the
// supervisor and a SIGINT/SIGTERM kills it through the same path the
// embedding API uses, so both entry points share one lifecycle contract.
//
// Usage:
//
//	# defaults: localhost:5789, storage in ~/.scrubd
//	./server
//
//	# development mode (colored logs, gin debug)
//	./server -debug -port 6789 -storage /tmp/scrubd
//
// Configuration comes from environment variables (12-factor); CLI flags
// override.
package main
