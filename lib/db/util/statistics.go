package util

import (
	"math"
	"sort"
)

// ----------------------------------------------------------------------------
// Summary statistics
// ----------------------------------------------------------------------------

// Summary describes a set of samples
type Summary struct {
	Count        int     `json:"count"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	StdDeviation float64 `json:"std_deviation"`
}

// Summarize computes the summary of values (population standard deviation).
// An empty input yields the zero Summary.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	s := Summary{Count: len(values), Min: values[0], Max: values[0]}

	var sum float64
	for _, v := range values {
		sum += v
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
	}
	s.Mean = sum / float64(len(values))

	var sumSquaredDiffs float64
	for _, v := range values {
		diff := v - s.Mean
		sumSquaredDiffs += diff * diff
	}
	s.StdDeviation = math.Sqrt(sumSquaredDiffs / float64(len(values)))

	return s
}

// KeyDistribution describes how keys are spread over the column families of a store
type KeyDistribution struct {
	Summary

	// CoefficientOfVariation is StdDeviation / Mean (0 for a perfectly even spread)
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`

	// MinMaxRatio is Min / Max (1 for a perfectly even spread, also 1 without keys)
	MinMaxRatio float64 `json:"min_max_ratio"`
}

// NewKeyDistribution computes the distribution of the given per-family key counts
func NewKeyDistribution(keysPerFamily []float64) KeyDistribution {
	d := KeyDistribution{Summary: Summarize(keysPerFamily), MinMaxRatio: 1}

	if d.Mean > 0 {
		d.CoefficientOfVariation = d.StdDeviation / d.Mean
	}
	if d.Max > 0 {
		d.MinMaxRatio = d.Min / d.Max
	}
	return d
}

// ----------------------------------------------------------------------------
// SizeHistogram
// ----------------------------------------------------------------------------

// sizeBoundaries are the upper bounds (inclusive) of the histogram buckets.
// Exponential steps cover single bytes up to 4GB, one extra bucket holds everything larger.
var sizeBoundaries = []int{
	16, 64, 256, 1024, 4096,
	16384, 65536, 262144, 1048576,
	4194304, 16777216, 67108864,
	268435456, 1073741824, 4294967296,
}

// SizeHistogram collects entry sizes into exponential buckets so that size
// estimates can be reported without keeping every sample.
//
// A SizeHistogram is not safe for concurrent use.
type SizeHistogram struct {
	buckets [16]int64
	count   int64
	sum     int64
}

// NewSizeHistogram creates an empty histogram
func NewSizeHistogram() *SizeHistogram {
	return &SizeHistogram{}
}

// AddSample records one size (in bytes)
func (h *SizeHistogram) AddSample(size int) {
	h.buckets[sort.SearchInts(sizeBoundaries, size)]++
	h.count++
	h.sum += int64(size)
}

// Count returns the number of samples
func (h *SizeHistogram) Count() int64 {
	return h.count
}

// Mean returns the exact average of all samples
func (h *SizeHistogram) Mean() int {
	if h.count == 0 {
		return 0
	}
	return int(h.sum / h.count)
}

// Percentile estimates the p-th percentile (0-100) of the samples.
// The estimate is the midpoint of the bucket holding the percentile; the first bucket
// reports half its bound and the overflow bucket twice the largest bound.
func (h *SizeHistogram) Percentile(p int) int {
	if h.count == 0 || p < 0 || p > 100 {
		return 0
	}

	target := max(1, int64(math.Ceil(float64(h.count)*float64(p)/100.0)))

	var cumulative int64
	for i, n := range h.buckets {
		cumulative += n
		if cumulative < target {
			continue
		}
		switch {
		case i == 0:
			return sizeBoundaries[0] / 2
		case i < len(sizeBoundaries):
			return (sizeBoundaries[i-1] + sizeBoundaries[i]) / 2
		default:
			return sizeBoundaries[len(sizeBoundaries)-1] * 2
		}
	}
	return h.Mean()
}
