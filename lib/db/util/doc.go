// Package util provides statistics helpers used for the info reporting of the
// database engines and the store.
//
// The package contains:
//   - Summarize / KeyDistribution: summary statistics, used to describe how keys are spread over column families
//   - SizeHistogram: an exponential bucket histogram for estimating entry sizes from a sample
//     without a full scan
package util
