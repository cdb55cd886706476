// Package distribution holds integer-keyed outcome counters and the empirical
// probability mass functions built from them.
package distribution

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// Counter tallies integer outcomes. It is not safe for concurrent use; each
// worker owns one and the results are merged afterwards.
type Counter struct {
	counts map[int]int64
	total  int64
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[int]int64)}
}

// Add records one observation of key.
func (c *Counter) Add(key int) { c.AddN(key, 1) }

// AddN records n observations of key.
func (c *Counter) AddN(key int, n int64) {
	if n <= 0 {
		return
	}
	c.counts[key] += n
	c.total += n
}

// Merge folds other into c. Merging is commutative.
func (c *Counter) Merge(other *Counter) {
	if other == nil {
		return
	}
	for k, n := range other.counts {
		c.AddN(k, n)
	}
}

// Total is the number of observations recorded.
func (c *Counter) Total() int64 { return c.total }

// Count returns the observations recorded for key.
func (c *Counter) Count(key int) int64 { return c.counts[key] }

// PMF freezes the counter into a probability mass function.
func (c *Counter) PMF() PMF {
	return FromCounts(c.counts)
}

// Bucket is one point of a PMF.
type Bucket struct {
	Key   int
	Count int64
	Prob  float64
}

// PMF is an immutable empirical distribution over integer keys, sorted by key.
type PMF struct {
	buckets []Bucket
	total   int64
}

// FromCounts builds a PMF from raw counts. Keys with no mass are dropped.
func FromCounts(counts map[int]int64) PMF {
	var total int64
	keys := make([]int, 0, len(counts))
	for k, n := range counts {
		if n <= 0 {
			continue
		}
		keys = append(keys, k)
		total += n
	}
	sort.Ints(keys)
	buckets := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		n := counts[k]
		buckets = append(buckets, Bucket{Key: k, Count: n, Prob: float64(n) / float64(total)})
	}
	return PMF{buckets: buckets, total: total}
}

// Empty reports whether the PMF carries no mass.
func (p PMF) Empty() bool { return p.total == 0 }

// Total is the number of observations behind the PMF.
func (p PMF) Total() int64 { return p.total }

// Buckets returns a copy of the buckets in key order.
func (p PMF) Buckets() []Bucket {
	out := make([]Bucket, len(p.buckets))
	copy(out, p.buckets)
	return out
}

// Prob returns the mass at key.
func (p PMF) Prob(key int) float64 {
	i := sort.Search(len(p.buckets), func(i int) bool { return p.buckets[i].Key >= key })
	if i < len(p.buckets) && p.buckets[i].Key == key {
		return p.buckets[i].Prob
	}
	return 0
}

// MassAbove returns the mass strictly above x. Counts are summed before
// dividing so complementary masses add up exactly.
func (p PMF) MassAbove(x float64) float64 {
	return p.mass(func(k int) bool { return float64(k) > x })
}

// MassBelow returns the mass strictly below x.
func (p PMF) MassBelow(x float64) float64 {
	return p.mass(func(k int) bool { return float64(k) < x })
}

func (p PMF) mass(keep func(int) bool) float64 {
	if p.total == 0 {
		return 0
	}
	var n int64
	for _, b := range p.buckets {
		if keep(b.Key) {
			n += b.Count
		}
	}
	return float64(n) / float64(p.total)
}

// Sum returns the total probability, 1 for any non-empty PMF up to rounding.
func (p PMF) Sum() float64 {
	s := 0.0
	for _, b := range p.buckets {
		s += b.Prob
	}
	return s
}

// Mean returns the expected key.
func (p PMF) Mean() float64 {
	m := 0.0
	for _, b := range p.buckets {
		m += float64(b.Key) * b.Prob
	}
	return m
}

// Variance returns the population variance of the key.
func (p PMF) Variance() float64 {
	mean := p.Mean()
	v := 0.0
	for _, b := range p.buckets {
		d := float64(b.Key) - mean
		v += d * d * b.Prob
	}
	return v
}

// Summary is the descriptive statistics of one market dimension.
type Summary struct {
	Mean     float64
	Variance float64
	StdDev   float64
	Min      float64
	Max      float64
	P5       float64
	P25      float64
	P50      float64
	P75      float64
	P95      float64
}

// Summary computes descriptive statistics over the sample the PMF was built
// from. The sample is expanded in key order so results are deterministic.
func (p PMF) Summary() (Summary, error) {
	if p.total == 0 {
		return Summary{}, ErrEmpty
	}
	data := make(stats.Float64Data, 0, p.total)
	for _, b := range p.buckets {
		for i := int64(0); i < b.Count; i++ {
			data = append(data, float64(b.Key))
		}
	}

	var s Summary
	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return Summary{}, fmt.Errorf("mean: %w", err)
	}
	if s.Variance, err = stats.Variance(data); err != nil {
		return Summary{}, fmt.Errorf("variance: %w", err)
	}
	if s.StdDev, err = stats.StandardDeviation(data); err != nil {
		return Summary{}, fmt.Errorf("std dev: %w", err)
	}
	s.Min, _ = stats.Min(data)
	s.Max, _ = stats.Max(data)
	s.P5 = percentile(data, 5, s.Min)
	s.P25 = percentile(data, 25, s.Min)
	s.P50 = percentile(data, 50, s.Min)
	s.P75 = percentile(data, 75, s.Min)
	s.P95 = percentile(data, 95, s.Min)
	return s, nil
}

// percentile falls back to floor when the sample is too small for the rank.
func percentile(data stats.Float64Data, pct, floor float64) float64 {
	v, err := stats.Percentile(data, pct)
	if err != nil || math.IsNaN(v) {
		return floor
	}
	return v
}

// ToMap returns the buckets and observation count as plain values.
func (p PMF) ToMap() map[string]any {
	buckets := make(map[string]any, len(p.buckets))
	for _, b := range p.buckets {
		buckets[fmt.Sprintf("%d", b.Key)] = b.Prob
	}
	return map[string]any{
		"total":   p.total,
		"buckets": buckets,
	}
}

// ToMap returns the summary as plain values.
func (s Summary) ToMap() map[string]any {
	return map[string]any{
		"mean":     s.Mean,
		"variance": s.Variance,
		"std_dev":  s.StdDev,
		"min":      s.Min,
		"max":      s.Max,
		"p5":       s.P5,
		"p25":      s.P25,
		"p50":      s.P50,
		"p75":      s.P75,
		"p95":      s.P95,
	}
}
