// Copyright 2021 Airbus Defence and Space
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package covkit

import "math"

// ordinates is the storage shared by Envelope, EnvelopeBuilder and Envelope2D.
// lower[i] > upper[i] encodes an interval crossing the anti-meridian of a
// wraparound axis. fullTurn[i] marks the zero-length crossing interval that
// covers a whole period, which lower/upper alone cannot distinguish from a point.
type ordinates struct {
	lower, upper []float64
	fullTurn     []bool
}

func newOrdinates(dim int) ordinates {
	return ordinates{
		lower:    make([]float64, dim),
		upper:    make([]float64, dim),
		fullTurn: make([]bool, dim),
	}
}

func (o ordinates) dim() int {
	return len(o.lower)
}

func (o ordinates) clone() ordinates {
	return ordinates{
		lower:    append([]float64(nil), o.lower...),
		upper:    append([]float64(nil), o.upper...),
		fullTurn: append([]bool(nil), o.fullTurn...),
	}
}

func (o ordinates) crossing(i int) bool {
	return o.lower[i] > o.upper[i] || o.fullTurn[i]
}

func (o ordinates) set(i int, lo, hi float64) {
	o.lower[i], o.upper[i], o.fullTurn[i] = lo, hi, false
}

func (o ordinates) setFull(md AxisMetadata, i int) {
	lo, hi := axisBounds(md, i)
	o.set(i, lo, hi)
}

func (o ordinates) span(md AxisMetadata, i int) float64 {
	s := o.upper[i] - o.lower[i]
	if o.crossing(i) && isWraparound(md, i) {
		s += period(md, i)
	}
	return s
}

func (o ordinates) extent(i int) Extent {
	return Extent{Length: o.upper[i] - o.lower[i], Crossing: o.crossing(i)}
}

func (o ordinates) median(md AxisMetadata, i int) float64 {
	if !o.crossing(i) || !isWraparound(md, i) {
		return 0.5 * (o.lower[i] + o.upper[i])
	}
	m := o.lower[i] + 0.5*o.span(md, i)
	lo, hi := axisBounds(md, i)
	p := hi - lo
	if m > hi {
		m -= p
	} else if m < lo {
		m += p
	}
	return m
}

func (o ordinates) minimum(md AxisMetadata, i int) float64 {
	if o.crossing(i) && isWraparound(md, i) {
		return md.Minimum(i)
	}
	return o.lower[i]
}

func (o ordinates) maximum(md AxisMetadata, i int) float64 {
	if o.crossing(i) && isWraparound(md, i) {
		return md.Maximum(i)
	}
	return o.upper[i]
}

func (o ordinates) containsValue(md AxisMetadata, i int, v float64) bool {
	if o.crossing(i) && isWraparound(md, i) {
		return v >= o.lower[i] || v <= o.upper[i]
	}
	return v >= o.lower[i] && v <= o.upper[i]
}

// ge and le are >= and <= when inclusive, > and < otherwise.
func ge(a, b float64, inclusive bool) bool {
	if inclusive {
		return a >= b
	}
	return a > b
}

func le(a, b float64, inclusive bool) bool {
	if inclusive {
		return a <= b
	}
	return a < b
}

func (o ordinates) containsRange(md AxisMetadata, i int, other ordinates, inclusive bool) bool {
	lo0, hi0 := o.lower[i], o.upper[i]
	lo1, hi1 := other.lower[i], other.upper[i]
	if !isWraparound(md, i) {
		return ge(lo1, lo0, inclusive) && le(hi1, hi0, inclusive)
	}
	c0, c1 := o.crossing(i), other.crossing(i)
	switch {
	case !c0 && !c1, c0 && c1:
		if o.fullTurn[i] {
			return true
		}
		if other.fullTurn[i] {
			return false
		}
		return ge(lo1, lo0, inclusive) && le(hi1, hi0, inclusive)
	case c0:
		return ge(lo1, lo0, inclusive) || le(hi1, hi0, inclusive)
	default:
		min, max := axisBounds(md, i)
		return le(lo0, min, inclusive) && ge(hi0, max, inclusive)
	}
}

func (o ordinates) intersectsRange(md AxisMetadata, i int, other ordinates, inclusive bool) bool {
	lo0, hi0 := o.lower[i], o.upper[i]
	lo1, hi1 := other.lower[i], other.upper[i]
	if math.IsNaN(lo0) || math.IsNaN(hi0) || math.IsNaN(lo1) || math.IsNaN(hi1) {
		return false
	}
	c0, c1 := o.crossing(i), other.crossing(i)
	if !isWraparound(md, i) || (!c0 && !c1) {
		return le(lo1, hi0, inclusive) && ge(hi1, lo0, inclusive)
	}
	switch {
	case c0 && c1:
		return true
	case c0:
		return ge(hi1, lo0, inclusive) || le(lo1, hi0, inclusive)
	default:
		return ge(hi0, lo1, inclusive) || le(lo0, hi1, inclusive)
	}
}

// addPoint extends dimension i so that it contains v. NaN values are ignored.
func (o ordinates) addPoint(md AxisMetadata, i int, v float64) {
	if math.IsNaN(v) {
		return
	}
	lo, hi := o.lower[i], o.upper[i]
	if math.IsNaN(lo) || math.IsNaN(hi) {
		o.set(i, v, v)
		return
	}
	if o.crossing(i) && isWraparound(md, i) {
		if v > hi && v < lo {
			// in the gap: extend the closest side
			if v-hi < lo-v {
				o.upper[i] = v
			} else {
				o.lower[i] = v
			}
		}
		return
	}
	if v < lo {
		o.lower[i] = v
	}
	if v > hi {
		o.upper[i] = v
	}
}

// addRange extends dimension i to the union with the same dimension of other.
// A NaN bound of other leaves the corresponding bound unchanged.
func (o ordinates) addRange(md AxisMetadata, i int, other ordinates) {
	lo1, hi1 := other.lower[i], other.upper[i]
	if math.IsNaN(lo1) && math.IsNaN(hi1) {
		return
	}
	lo0, hi0 := o.lower[i], o.upper[i]
	if math.IsNaN(lo0) && math.IsNaN(hi0) {
		o.lower[i], o.upper[i], o.fullTurn[i] = lo1, hi1, other.fullTurn[i]
		return
	}
	if !isWraparound(md, i) || math.IsNaN(lo1) || math.IsNaN(hi1) {
		if lo1 < lo0 || math.IsNaN(lo0) {
			o.lower[i] = lo1
		}
		if hi1 > hi0 || math.IsNaN(hi0) {
			o.upper[i] = hi1
		}
		return
	}
	if o.fullTurn[i] || other.fullTurn[i] {
		o.setFull(md, i)
		return
	}
	c0, c1 := lo0 > hi0, lo1 > hi1
	switch {
	case c0 == c1:
		lo, hi := math.Min(lo0, lo1), math.Max(hi0, hi1)
		if c0 && lo <= hi {
			// both sides of the anti-meridian merged
			o.setFull(md, i)
			return
		}
		o.set(i, lo, hi)
	case c0:
		o.addToCrossing(md, i, lo0, hi0, lo1, hi1)
	default:
		o.addToCrossing(md, i, lo1, hi1, lo0, hi0)
	}
}

// addToCrossing sets dimension i to the union of the crossing interval [clo,chi]
// and the plain interval [plo,phi], growing whichever side of the gap is closest.
func (o ordinates) addToCrossing(md AxisMetadata, i int, clo, chi, plo, phi float64) {
	if phi <= chi || plo >= clo {
		o.set(i, clo, chi)
		return
	}
	left, right := plo-chi, clo-phi
	if left <= 0 && right <= 0 {
		o.setFull(md, i)
		return
	}
	if left >= right {
		clo = plo
	} else {
		chi = phi
	}
	o.set(i, clo, chi)
}

// intersectRange restricts dimension i to its intersection with other.
// An empty intersection collapses to a point at the middle of the inverted range.
func (o ordinates) intersectRange(md AxisMetadata, i int, other ordinates) {
	lo1, hi1 := other.lower[i], other.upper[i]
	lo0, hi0 := o.lower[i], o.upper[i]
	if !isWraparound(md, i) {
		if lo1 > lo0 || math.IsNaN(lo0) {
			lo0 = lo1
		}
		if hi1 < hi0 || math.IsNaN(hi0) {
			hi0 = hi1
		}
		if lo0 > hi0 {
			lo0 = 0.5 * (lo0 + hi0)
			hi0 = lo0
		}
		o.set(i, lo0, hi0)
		return
	}
	if other.fullTurn[i] || math.IsNaN(lo1) || math.IsNaN(hi1) {
		return
	}
	if o.fullTurn[i] {
		o.lower[i], o.upper[i], o.fullTurn[i] = lo1, hi1, false
		return
	}
	c0, c1 := lo0 > hi0, lo1 > hi1
	switch {
	case c0 == c1:
		lo, hi := math.Max(lo0, lo1), math.Min(hi0, hi1)
		if !c0 && lo > hi {
			lo = 0.5 * (lo + hi)
			hi = lo
		}
		o.set(i, lo, hi)
	default:
		// one side crosses the anti-meridian, the other is a plain interval
		clo, chi, plo, phi := lo0, hi0, lo1, hi1
		if c1 {
			clo, chi, plo, phi = lo1, hi1, lo0, hi0
		}
		east := math.Max(clo, plo) <= phi
		west := plo <= math.Min(chi, phi)
		switch {
		case east && west:
			// two disjoint pieces: keep the plain interval which covers both
			o.set(i, plo, phi)
		case east:
			o.set(i, math.Max(clo, plo), phi)
		case west:
			o.set(i, plo, math.Min(chi, phi))
		default:
			m := 0.5 * (math.Max(clo, plo) + phi)
			o.set(i, m, m)
		}
	}
}

// reduce brings dimension i into the axis domain and reports whether it changed.
func (o ordinates) reduce(md AxisMetadata, i int) bool {
	if md == nil {
		return false
	}
	lo, hi := o.lower[i], o.upper[i]
	min, max := md.Minimum(i), md.Maximum(i)
	switch md.RangeMeaning(i) {
	case Exact:
		changed := false
		if lo < min {
			lo, changed = min, true
		}
		if lo > max {
			lo, changed = max, true
		}
		if hi > max {
			hi, changed = max, true
		}
		if hi < min {
			hi, changed = min, true
		}
		if changed {
			o.set(i, lo, hi)
		}
		return changed
	case Wraparound:
		if math.IsNaN(lo) || math.IsNaN(hi) {
			return false
		}
		p := max - min
		if o.fullTurn[i] || hi-lo >= p {
			o.set(i, min, max)
			return true
		}
		k := math.Floor((lo - min) / p)
		if k != 0 {
			lo -= k * p
			hi -= k * p
		}
		if hi > max || hi < min {
			// lower and upper fall in different periods: keep the conservative full range
			o.set(i, min, max)
			return true
		}
		if k != 0 {
			o.set(i, lo, hi)
			return true
		}
	}
	return false
}
