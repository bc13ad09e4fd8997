// Package stats computes the per-window latency summaries and the
// end-of-run ON/OFF aggregation.
package stats

import (
	"math"
	"sort"
)

// Summary holds the core statistics for one latency set.
//
// Percentiles use the index rule sorted[floor(n*q)]. The rule is biased
// toward higher values for small n; it is kept because downstream tooling
// depends on the exact values it produces.
type Summary struct {
	Count  uint64
	Min    uint64
	Max    uint64
	Sum    uint64
	P50    uint64
	P95    uint64
	P99    uint64
	P999   uint64
	Stddev float64
}

// Mean returns the integer mean in nanoseconds, 0 for an empty summary.
func (s Summary) Mean() uint64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / s.Count
}

// Compute summarizes latencies (nanoseconds). The slice is sorted in place.
// An empty input yields the zero Summary.
func Compute(latencies []uint64) Summary {
	var s Summary
	n := len(latencies)
	if n == 0 {
		return s
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	s.Count = uint64(n)
	s.Min = latencies[0]
	s.Max = latencies[n-1]
	s.P50 = latencies[n*50/100]
	s.P95 = latencies[n*95/100]
	s.P99 = latencies[n*99/100]
	s.P999 = latencies[n*999/1000]

	var sum, sumSq float64
	for _, v := range latencies {
		f := float64(v)
		sum += f
		sumSq += f * f
	}
	s.Sum = uint64(sum)
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance > 0 {
		s.Stddev = math.Sqrt(variance)
	}
	return s
}

// NumBuckets is the fixed histogram size.
const NumBuckets = 8

// BucketBounds are inclusive upper bounds in nanoseconds; the last bucket
// catches everything.
var BucketBounds = [NumBuckets]uint64{
	500, 1000, 2000, 4000, 8000, 16000, 32000, math.MaxUint64,
}

// BucketLabels align with BucketBounds for display.
var BucketLabels = [NumBuckets]string{
	"  0-0.5us", "0.5-1.0us", "1.0-2.0us", "2.0-4.0us",
	"4.0-8.0us", " 8.0-16us", "  16-32us", "    >32us",
}

// Histogram counts latencies into the fixed buckets. Each value lands in the
// first bucket whose bound is >= the value, so the counts always sum to
// len(latencies).
func Histogram(latencies []uint64) [NumBuckets]uint64 {
	var h [NumBuckets]uint64
	for _, v := range latencies {
		for b := 0; b < NumBuckets; b++ {
			if v <= BucketBounds[b] {
				h[b]++
				break
			}
		}
	}
	return h
}
