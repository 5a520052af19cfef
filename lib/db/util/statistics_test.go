package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	s := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 8, s.Count)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)
	assert.InDelta(t, 5.0, s.Mean, 1e-9)
	assert.InDelta(t, 2.0, s.StdDeviation, 1e-9)
}

func TestKeyDistribution(t *testing.T) {
	even := NewKeyDistribution([]float64{10, 10, 10})
	assert.InDelta(t, 0.0, even.CoefficientOfVariation, 1e-9)
	assert.InDelta(t, 1.0, even.MinMaxRatio, 1e-9)

	skewed := NewKeyDistribution([]float64{1, 9})
	assert.InDelta(t, 0.8, skewed.CoefficientOfVariation, 1e-9)
	assert.InDelta(t, 1.0/9.0, skewed.MinMaxRatio, 1e-9)

	empty := NewKeyDistribution(nil)
	assert.Equal(t, 0, empty.Count)
	assert.InDelta(t, 1.0, empty.MinMaxRatio, 1e-9)
}

func TestSizeHistogram(t *testing.T) {
	h := NewSizeHistogram()
	assert.Equal(t, 0, h.Percentile(50))
	assert.Equal(t, 0, h.Mean())

	for i := 0; i < 90; i++ {
		h.AddSample(10) // first bucket (<= 16)
	}
	for i := 0; i < 10; i++ {
		h.AddSample(1000) // 256 < size <= 1024
	}

	assert.Equal(t, int64(100), h.Count())
	assert.Equal(t, (90*10+10*1000)/100, h.Mean())
	assert.Equal(t, 8, h.Percentile(50))
	assert.Equal(t, (256+1024)/2, h.Percentile(95))
	assert.Equal(t, 8, h.Percentile(0))
	assert.Equal(t, 0, h.Percentile(101))

	h.AddSample(5 << 30)
	assert.Equal(t, 4294967296*2, h.Percentile(100))
}
