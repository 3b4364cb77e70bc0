// Package dataset holds the tabular feature set model and its
// file-backed store. Each feature set is a directory of JSON documents:
// descriptor metadata, current and original data, and the artifacts the
// cleaner produces (statistics, insights, suggestions, sample).
package dataset
