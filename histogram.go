package covkit

import (
	"fmt"
	"math"
)

// Histogram counts values in a fixed number of equally wide buckets spanning [min,max].
//
// Values equal to max land in the last bucket. Values outside [min,max] are
// clamped into the first or last bucket unless the histogram was created with
// ExcludeOutOfRange(). NaN values are never counted.
type Histogram struct {
	min, max float64
	counts   []uint64
	exclude  bool
}

// Bucket is a histogram entry. It spans [Min,Max] and contains Count entries.
type Bucket struct {
	Min, Max float64
	Count    uint64
}

type histogramOpts struct {
	excludeOutside bool
}

// HistogramOption is an option that can be passed to NewHistogram()
//
// Available HistogramOptions are:
//
// • ExcludeOutOfRange() to drop values under/over the histogram min/max instead of
// counting them in the first/last bucket
type HistogramOption interface {
	setHistogramOpt(ho *histogramOpts)
}

type excludeOutsideOpt struct{}

func (eoo excludeOutsideOpt) setHistogramOpt(ho *histogramOpts) {
	ho.excludeOutside = true
}

// ExcludeOutOfRange drops values under/over the histogram's min/max.
func ExcludeOutOfRange() interface {
	HistogramOption
} {
	return excludeOutsideOpt{}
}

// NewHistogram creates an empty histogram of count buckets spanning [min,max].
// min == max is accepted: every value then lands in the first bucket.
func NewHistogram(count int, min, max float64, opts ...HistogramOption) (*Histogram, error) {
	if count < 1 {
		return nil, fmt.Errorf("invalid bucket count %d", count)
	}
	if !(min <= max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil, fmt.Errorf("invalid histogram range [%g,%g]", min, max)
	}
	ho := histogramOpts{}
	for _, o := range opts {
		o.setHistogramOpt(&ho)
	}
	return &Histogram{
		min:     min,
		max:     max,
		counts:  make([]uint64, count),
		exclude: ho.excludeOutside,
	}, nil
}

// Len returns the number of buckets contained in the histogram
func (h *Histogram) Len() int {
	return len(h.counts)
}

// Min returns the lower bound of the first bucket.
func (h *Histogram) Min() float64 {
	return h.min
}

// Max returns the upper bound of the last bucket.
func (h *Histogram) Max() float64 {
	return h.max
}

// Bucket returns the i'th bucket in the histogram. i must be between 0 and Len()-1.
func (h *Histogram) Bucket(i int) Bucket {
	return Bucket{
		Min:   h.edge(float64(i)),
		Max:   h.edge(float64(i + 1)),
		Count: h.counts[i],
	}
}

// Counts returns a copy of the bucket counts.
func (h *Histogram) Counts() []uint64 {
	return append([]uint64(nil), h.counts...)
}

// Total returns the sum of all bucket counts.
func (h *Histogram) Total() uint64 {
	t := uint64(0)
	for _, c := range h.counts {
		t += c
	}
	return t
}

// width is +Inf when max-min overflows.
func (h *Histogram) width() float64 {
	return (h.max - h.min) / float64(len(h.counts))
}

// edge returns the value at position i of the bucket scale, i.e. min for 0
// and max for Len().
func (h *Histogram) edge(i float64) float64 {
	if w := h.width(); !math.IsInf(w, 0) {
		return h.min + w*i
	}
	f := i / float64(len(h.counts))
	return h.min*(1-f) + h.max*f
}

// index returns the bucket of v, or -1 if v must not be counted.
func (h *Histogram) index(v float64) int {
	if math.IsNaN(v) {
		return -1
	}
	if h.exclude && (v < h.min || v > h.max) {
		return -1
	}
	last := len(h.counts) - 1
	w := h.width()
	if w == 0 {
		if h.exclude && v != h.min {
			return -1
		}
		return 0
	}
	var b float64
	if math.IsInf(w, 0) {
		b = math.Floor((0.5*v - 0.5*h.min) / (0.5*h.max - 0.5*h.min) * float64(len(h.counts)))
	} else {
		b = math.Floor((v - h.min) / w)
	}
	switch {
	case math.IsNaN(b) || b > float64(last):
		return last
	case b < 0:
		return 0
	}
	return int(b)
}

// Add counts v once.
func (h *Histogram) Add(v float64) {
	h.AddN(v, 1)
}

// AddN counts v n times.
func (h *Histogram) AddN(v float64, n uint64) {
	if i := h.index(v); i >= 0 {
		h.counts[i] += n
	}
}

// Clone returns an independent copy of h.
func (h *Histogram) Clone() *Histogram {
	c := *h
	c.counts = h.Counts()
	return &c
}

// MergeHistograms returns a new histogram spanning the union of the ranges of
// h1 and h2, with as many buckets as h1. The counts of each source bucket are
// re-added at the bucket's midpoint, so the merge assumes a uniform density
// inside source buckets and is not an exact reconstruction.
//
// Either argument may be nil, in which case a copy of the other is returned.
func MergeHistograms(h1, h2 *Histogram) *Histogram {
	switch {
	case h1 == nil && h2 == nil:
		return nil
	case h1 == nil:
		return h2.Clone()
	case h2 == nil:
		return h1.Clone()
	}
	m := &Histogram{
		min:     math.Min(h1.min, h2.min),
		max:     math.Max(h1.max, h2.max),
		counts:  make([]uint64, len(h1.counts)),
		exclude: h1.exclude,
	}
	for _, src := range []*Histogram{h1, h2} {
		for i, c := range src.counts {
			if c == 0 {
				continue
			}
			m.AddN(src.edge(float64(i)+0.5), c)
		}
	}
	return m
}
