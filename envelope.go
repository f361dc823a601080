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

import (
	"fmt"
	"math"
	"strings"
)

// Extent is the raw length of an envelope along one axis, tagged with whether
// the interval crosses the anti-meridian of a wraparound axis.
//
// Length is upper-lower as stored, hence negative for crossing intervals. A
// zero Length with Crossing set denotes an interval covering a whole period.
type Extent struct {
	Length   float64
	Crossing bool
}

// Envelope is an immutable N-dimensional bounding box. Along a wraparound axis
// a lower bound greater than the upper bound denotes an interval crossing the
// anti-meridian.
//
// The zero Envelope has no dimension. Use an EnvelopeBuilder to compute unions,
// intersections or reductions to the CRS domain.
type Envelope struct {
	ords ordinates
	crs  AxisMetadata
}

// NewEnvelope creates an envelope from its lower and upper corners. crs may be
// nil, in which case all axes are considered exact and unbounded.
//
// A DimensionMismatchError is returned if the corners do not have the same
// length or do not match the CRS dimension. An InvalidRangeError is returned if
// lower[i] > upper[i] along an exact axis. NaN ordinates are accepted.
func NewEnvelope(crs AxisMetadata, lower, upper []float64) (Envelope, error) {
	if len(lower) != len(upper) {
		return Envelope{}, &DimensionMismatchError{Expected: len(lower), Got: len(upper)}
	}
	if err := checkCRSDimension(crs, len(lower)); err != nil {
		return Envelope{}, err
	}
	ords := newOrdinates(len(lower))
	copy(ords.lower, lower)
	copy(ords.upper, upper)
	if err := validate(crs, ords); err != nil {
		return Envelope{}, err
	}
	return Envelope{ords: ords, crs: crs}, nil
}

// EmptyEnvelope returns an envelope of the given dimension with all ordinates set to zero.
func EmptyEnvelope(crs AxisMetadata, dim int) (Envelope, error) {
	if err := checkCRSDimension(crs, dim); err != nil {
		return Envelope{}, err
	}
	return Envelope{ords: newOrdinates(dim), crs: crs}, nil
}

func checkCRSDimension(crs AxisMetadata, dim int) error {
	if dim < 0 {
		return &DimensionMismatchError{Expected: 0, Got: dim}
	}
	if crs != nil && crs.Dimension() != dim {
		return &DimensionMismatchError{Expected: crs.Dimension(), Got: dim}
	}
	return nil
}

func validate(crs AxisMetadata, o ordinates) error {
	for i := 0; i < o.dim(); i++ {
		if meaningOf(crs, i) == Exact && o.crossing(i) {
			return &InvalidRangeError{Dim: i, Lower: o.lower[i], Upper: o.upper[i]}
		}
	}
	return nil
}

func checkDimensions(a, b int) error {
	if a != b {
		return &DimensionMismatchError{Expected: a, Got: b}
	}
	return nil
}

// Dimension returns the number of dimensions of the envelope.
func (e Envelope) Dimension() int {
	return e.ords.dim()
}

// CRS returns the axis metadata the envelope was created with (possibly nil).
func (e Envelope) CRS() AxisMetadata {
	return e.crs
}

// Lower returns the stored lower bound along dim. It panics with an *IndexError
// if dim is out of range, as do all per-dimension accessors.
func (e Envelope) Lower(dim int) float64 {
	checkIndex(dim, e.Dimension())
	return e.ords.lower[dim]
}

// Upper returns the stored upper bound along dim.
func (e Envelope) Upper(dim int) float64 {
	checkIndex(dim, e.Dimension())
	return e.ords.upper[dim]
}

// LowerCorner returns a copy of the lower bounds.
func (e Envelope) LowerCorner() []float64 {
	return append([]float64(nil), e.ords.lower...)
}

// UpperCorner returns a copy of the upper bounds.
func (e Envelope) UpperCorner() []float64 {
	return append([]float64(nil), e.ords.upper...)
}

// Minimum returns the smallest value contained along dim. For an interval
// crossing the anti-meridian this is the axis minimum.
func (e Envelope) Minimum(dim int) float64 {
	checkIndex(dim, e.Dimension())
	return e.ords.minimum(e.crs, dim)
}

// Maximum returns the largest value contained along dim. For an interval
// crossing the anti-meridian this is the axis maximum.
func (e Envelope) Maximum(dim int) float64 {
	checkIndex(dim, e.Dimension())
	return e.ords.maximum(e.crs, dim)
}

// Span returns the length of the interval along dim, measured through the
// anti-meridian when the interval crosses it. Along other axes an inverted
// interval returns its negative raw length.
func (e Envelope) Span(dim int) float64 {
	checkIndex(dim, e.Dimension())
	return e.ords.span(e.crs, dim)
}

// Extent returns the raw, uncorrected length along dim.
func (e Envelope) Extent(dim int) Extent {
	checkIndex(dim, e.Dimension())
	return e.ords.extent(dim)
}

// Median returns the middle of the interval along dim, folded back into the
// axis range for intervals crossing the anti-meridian.
func (e Envelope) Median(dim int) float64 {
	checkIndex(dim, e.Dimension())
	return e.ords.median(e.crs, dim)
}

// IsEmpty reports whether the envelope has no dimension, a NaN bound, or an
// inverted interval along an axis that does not wrap around. A degenerate
// (zero span) interval is not empty.
func (e Envelope) IsEmpty() bool {
	if e.Dimension() == 0 {
		return true
	}
	for i := 0; i < e.Dimension(); i++ {
		s := e.ords.span(e.crs, i)
		if math.IsNaN(s) || s < 0 {
			return true
		}
		if e.ords.crossing(i) && !isWraparound(e.crs, i) {
			return true
		}
	}
	return false
}

// IsAllNaN reports whether every ordinate is NaN.
func (e Envelope) IsAllNaN() bool {
	for i := 0; i < e.Dimension(); i++ {
		if !math.IsNaN(e.ords.lower[i]) || !math.IsNaN(e.ords.upper[i]) {
			return false
		}
	}
	return true
}

// Contains reports whether point lies inside the envelope, edges included.
// Along a wraparound axis with inverted bounds a value is inside when it is
// either above the lower bound or below the upper bound. NaN ordinates are
// never inside.
func (e Envelope) Contains(point []float64) (bool, error) {
	if err := checkDimensions(e.Dimension(), len(point)); err != nil {
		return false, err
	}
	for i, v := range point {
		if !e.ords.containsValue(e.crs, i, v) {
			return false, nil
		}
	}
	return true, nil
}

// ContainsEnvelope reports whether other is fully inside e. When edgesInclusive
// is false other must be strictly inside.
func (e Envelope) ContainsEnvelope(other Envelope, edgesInclusive bool) (bool, error) {
	if err := checkDimensions(e.Dimension(), other.Dimension()); err != nil {
		return false, err
	}
	for i := 0; i < e.Dimension(); i++ {
		if !e.ords.containsRange(e.crs, i, other.ords, edgesInclusive) {
			return false, nil
		}
	}
	return true, nil
}

// Intersects reports whether e and other share at least one point (or, when
// edgesInclusive is false, a region of non zero extent in every dimension).
func (e Envelope) Intersects(other Envelope, edgesInclusive bool) (bool, error) {
	if err := checkDimensions(e.Dimension(), other.Dimension()); err != nil {
		return false, err
	}
	for i := 0; i < e.Dimension(); i++ {
		if !e.ords.intersectsRange(e.crs, i, other.ords, edgesInclusive) {
			return false, nil
		}
	}
	return true, nil
}

// Equals compares the bounds of both envelopes within eps. If relative is set,
// eps is a fraction of the span along each dimension. Envelopes with different
// dimensions or axis metadata are never equal; NaN bounds equal NaN bounds.
func (e Envelope) Equals(other Envelope, eps float64, relative bool) bool {
	if e.Dimension() != other.Dimension() || !sameAxes(e.crs, other.crs) {
		return false
	}
	for i := 0; i < e.Dimension(); i++ {
		tol := eps
		if relative {
			tol *= math.Max(math.Abs(e.ords.span(e.crs, i)), math.Abs(other.ords.span(other.crs, i)))
		}
		if !closeTo(e.ords.lower[i], other.ords.lower[i], tol) ||
			!closeTo(e.ords.upper[i], other.ords.upper[i], tol) ||
			e.ords.fullTurn[i] != other.ords.fullTurn[i] {
			return false
		}
	}
	return true
}

func closeTo(a, b, tol float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b || math.Abs(a-b) <= tol
}

// Builder returns a mutable copy of the envelope.
func (e Envelope) Builder() *EnvelopeBuilder {
	return &EnvelopeBuilder{ords: e.ords.clone(), crs: e.crs}
}

// String formats the envelope as BOX(lower corner, upper corner).
func (e Envelope) String() string {
	sb := strings.Builder{}
	sb.WriteString("BOX(")
	corner := func(c []float64) {
		for i, v := range c {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%g", v)
		}
	}
	corner(e.ords.lower)
	sb.WriteString(", ")
	corner(e.ords.upper)
	sb.WriteByte(')')
	return sb.String()
}
