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

// EnvelopeBuilder is the mutable counterpart of Envelope, used to accumulate
// unions, compute intersections or reduce bounds to the CRS domain before
// freezing the result with Envelope().
//
// An EnvelopeBuilder must not be used concurrently from several goroutines.
type EnvelopeBuilder struct {
	ords ordinates
	crs  AxisMetadata
}

// NewEnvelopeBuilder creates a builder of the given dimension with all ordinates
// set to zero.
func NewEnvelopeBuilder(crs AxisMetadata, dim int) (*EnvelopeBuilder, error) {
	if err := checkCRSDimension(crs, dim); err != nil {
		return nil, err
	}
	return &EnvelopeBuilder{ords: newOrdinates(dim), crs: crs}, nil
}

// Dimension returns the number of dimensions of the builder.
func (b *EnvelopeBuilder) Dimension() int {
	return b.ords.dim()
}

// Envelope returns a frozen copy of the current bounds. Later changes to b do
// not affect the returned envelope.
func (b *EnvelopeBuilder) Envelope() Envelope {
	return Envelope{ords: b.ords.clone(), crs: b.crs}
}

func (b *EnvelopeBuilder) index(dim int) error {
	if dim < 0 || dim >= b.Dimension() {
		return &IndexError{Index: dim, Dimension: b.Dimension()}
	}
	return nil
}

// SetRange sets the bounds along dim. lower > upper is only accepted along
// axes that are not exact.
func (b *EnvelopeBuilder) SetRange(dim int, lower, upper float64) error {
	if err := b.index(dim); err != nil {
		return err
	}
	if lower > upper && meaningOf(b.crs, dim) == Exact {
		return &InvalidRangeError{Dim: dim, Lower: lower, Upper: upper}
	}
	b.ords.set(dim, lower, upper)
	return nil
}

// SetExtent sets the bounds along dim from a lower bound and a raw extent. A
// crossing extent of zero length covers the whole period of the axis.
func (b *EnvelopeBuilder) SetExtent(dim int, lower float64, ext Extent) error {
	if err := b.index(dim); err != nil {
		return err
	}
	crossing := ext.Crossing || ext.Length < 0
	if (ext.Crossing && ext.Length > 0) || (crossing && meaningOf(b.crs, dim) == Exact) {
		return &InvalidRangeError{Dim: dim, Lower: lower, Upper: lower + ext.Length}
	}
	upper := lower + ext.Length
	b.ords.set(dim, lower, upper)
	b.ords.fullTurn[dim] = crossing && upper == lower
	return nil
}

// SetToNaN sets all ordinates to NaN. Subsequent calls to Add start from the
// first added point.
func (b *EnvelopeBuilder) SetToNaN() {
	for i := range b.ords.lower {
		b.ords.set(i, math.NaN(), math.NaN())
	}
}

// Add extends the bounds so that they contain point. NaN ordinates leave the
// corresponding dimension unchanged.
func (b *EnvelopeBuilder) Add(point []float64) error {
	if err := checkDimensions(b.Dimension(), len(point)); err != nil {
		return err
	}
	for i, v := range point {
		b.ords.addPoint(b.crs, i, v)
	}
	return nil
}

// AddEnvelope extends the bounds to the union with e. Along wraparound axes two
// intervals that do not cross the anti-meridian give their plain min/max
// range. When an operand crosses it, the gap is closed on the side nearest to
// the other operand, and both sides merging gives the full axis range.
func (b *EnvelopeBuilder) AddEnvelope(e Envelope) error {
	if err := checkDimensions(b.Dimension(), e.Dimension()); err != nil {
		return err
	}
	for i := 0; i < b.Dimension(); i++ {
		b.ords.addRange(b.crs, i, e.ords)
	}
	return nil
}

// Intersect restricts the bounds to their intersection with e. Along a
// dimension where both do not overlap, the result collapses to a point in the
// middle of the inverted range instead of failing.
func (b *EnvelopeBuilder) Intersect(e Envelope) error {
	if err := checkDimensions(b.Dimension(), e.Dimension()); err != nil {
		return err
	}
	for i := 0; i < b.Dimension(); i++ {
		b.ords.intersectRange(b.crs, i, e.ords)
	}
	return nil
}

// ReduceToDomain clamps exact axes to their bounds and shifts wraparound axes by
// a multiple of their period so that the lower bound falls inside the axis
// range. If the upper bound still falls outside, the whole axis range is used.
//
// If useDomainOfCRS is set and the CRS declares a domain of validity, the
// bounds are further intersected with that domain, axes being matched by
// direction. ReduceToDomain reports whether any bound changed.
func (b *EnvelopeBuilder) ReduceToDomain(useDomainOfCRS bool) bool {
	changed := false
	for i := 0; i < b.Dimension(); i++ {
		if b.ords.reduce(b.crs, i) {
			changed = true
		}
	}
	if !useDomainOfCRS {
		return changed
	}
	dv, ok := b.crs.(DomainOfValidity)
	if !ok {
		return changed
	}
	domain, ok := dv.Domain()
	if !ok {
		return changed
	}
	for i := 0; i < b.Dimension(); i++ {
		j := matchAxis(dv.AxisDirection(i), domain, i)
		if j < 0 {
			continue
		}
		ref := newOrdinates(b.Dimension())
		ref.lower[i], ref.upper[i], ref.fullTurn[i] = domain.ords.lower[j], domain.ords.upper[j], domain.ords.fullTurn[j]
		lo, hi, ft := b.ords.lower[i], b.ords.upper[i], b.ords.fullTurn[i]
		b.ords.intersectRange(b.crs, i, ref)
		if lo != b.ords.lower[i] || hi != b.ords.upper[i] || ft != b.ords.fullTurn[i] {
			changed = true
		}
	}
	return changed
}

// matchAxis returns the dimension of domain whose axis points in dir. If the
// domain carries no direction information, the same index is used.
func matchAxis(dir AxisDirection, domain Envelope, fallback int) int {
	ddv, ok := domain.crs.(DomainOfValidity)
	if !ok {
		if fallback < domain.Dimension() {
			return fallback
		}
		return -1
	}
	for j := 0; j < domain.Dimension(); j++ {
		if ddv.AxisDirection(j) == dir {
			return j
		}
	}
	return -1
}
