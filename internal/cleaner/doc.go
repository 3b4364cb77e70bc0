// Package cleaner computes column types, statistics, insights and
// cleanup suggestions for tabular frames, and applies the suggested
// transformations. Statistics lean on gonum.
package cleaner
