// Package pipeline holds the transformation pipeline model: an ordered
// list of frame actions bound to a feature set, with a file-backed
// store.
package pipeline
