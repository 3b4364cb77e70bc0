// Package logging provides structured logging built on zap.
//
// Production mode emits JSON to stdout; development mode emits colored
// console output with stacktraces enabled.
package logging
