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

import "fmt"

// Envelope2D is a two dimensional view of an Envelope, exposed the way 2-D
// rectangle consumers expect it: an origin (X,Y) and a width and height.
//
// The raw width and height are tagged Extents: a crossing extent along a
// wraparound axis is corrected by Width/Height to the distance measured
// through the anti-meridian. All algebra is delegated to Envelope.
type Envelope2D struct {
	env Envelope
}

// NewEnvelope2D creates an Envelope2D from its origin and raw extents.
func NewEnvelope2D(crs AxisMetadata, x, y float64, width, height Extent) (Envelope2D, error) {
	b, err := NewEnvelopeBuilder(crs, 2)
	if err != nil {
		return Envelope2D{}, err
	}
	if err = b.SetExtent(0, x, width); err != nil {
		return Envelope2D{}, err
	}
	if err = b.SetExtent(1, y, height); err != nil {
		return Envelope2D{}, err
	}
	return Envelope2D{env: b.Envelope()}, nil
}

// Envelope2DFromBounds creates an Envelope2D from its corners. minx > maxx is
// only accepted when the x axis wraps around.
func Envelope2DFromBounds(crs AxisMetadata, minx, miny, maxx, maxy float64) (Envelope2D, error) {
	env, err := NewEnvelope(crs, []float64{minx, miny}, []float64{maxx, maxy})
	if err != nil {
		return Envelope2D{}, err
	}
	return Envelope2D{env: env}, nil
}

// Envelope2DFrom wraps a two dimensional envelope.
func Envelope2DFrom(e Envelope) (Envelope2D, error) {
	if e.Dimension() != 2 {
		return Envelope2D{}, &DimensionMismatchError{Expected: 2, Got: e.Dimension()}
	}
	return Envelope2D{env: e}, nil
}

// Envelope returns the underlying N-dimensional envelope.
func (r Envelope2D) Envelope() Envelope {
	return r.env
}

func (r Envelope2D) CRS() AxisMetadata {
	return r.env.crs
}

func (r Envelope2D) X() float64 {
	return r.env.ords.lower[0]
}

func (r Envelope2D) Y() float64 {
	return r.env.ords.lower[1]
}

// RawWidth returns the stored width, without wraparound correction.
func (r Envelope2D) RawWidth() Extent {
	return r.env.ords.extent(0)
}

// RawHeight returns the stored height, without wraparound correction.
func (r Envelope2D) RawHeight() Extent {
	return r.env.ords.extent(1)
}

// Width returns the span along x. A crossing width along a wraparound axis is
// corrected by the axis period; along other axes a negative value flags an
// empty box.
func (r Envelope2D) Width() float64 {
	return r.env.ords.span(r.env.crs, 0)
}

// Height returns the span along y, corrected like Width.
func (r Envelope2D) Height() float64 {
	return r.env.ords.span(r.env.crs, 1)
}

func (r Envelope2D) MinX() float64 {
	return r.env.ords.minimum(r.env.crs, 0)
}

func (r Envelope2D) MinY() float64 {
	return r.env.ords.minimum(r.env.crs, 1)
}

func (r Envelope2D) MaxX() float64 {
	return r.env.ords.maximum(r.env.crs, 0)
}

func (r Envelope2D) MaxY() float64 {
	return r.env.ords.maximum(r.env.crs, 1)
}

func (r Envelope2D) CenterX() float64 {
	return r.env.ords.median(r.env.crs, 0)
}

func (r Envelope2D) CenterY() float64 {
	return r.env.ords.median(r.env.crs, 1)
}

func (r Envelope2D) IsEmpty() bool {
	return r.env.IsEmpty()
}

// Contains reports whether the point x,y is inside the box, edges included.
func (r Envelope2D) Contains(x, y float64) bool {
	return r.env.ords.containsValue(r.env.crs, 0, x) && r.env.ords.containsValue(r.env.crs, 1, y)
}

// ContainsEnvelope reports whether other is inside r.
func (r Envelope2D) ContainsEnvelope(other Envelope2D, edgesInclusive bool) bool {
	ok, _ := r.env.ContainsEnvelope(other.env, edgesInclusive)
	return ok
}

// Intersects reports whether r and other overlap.
func (r Envelope2D) Intersects(other Envelope2D, edgesInclusive bool) bool {
	ok, _ := r.env.Intersects(other.env, edgesInclusive)
	return ok
}

// Union returns the smallest box containing r and other, in r's CRS.
func (r Envelope2D) Union(other Envelope2D) Envelope2D {
	b := r.env.Builder()
	_ = b.AddEnvelope(other.env)
	return Envelope2D{env: b.Envelope()}
}

// Intersection returns the intersection of r and other, in r's CRS. Disjoint
// boxes give a degenerate box, see EnvelopeBuilder.Intersect.
func (r Envelope2D) Intersection(other Envelope2D) Envelope2D {
	b := r.env.Builder()
	_ = b.Intersect(other.env)
	return Envelope2D{env: b.Envelope()}
}

// Bounds returns the stored corners as minx,miny,maxx,maxy. Boxes crossing the
// anti-meridian keep minx > maxx.
func (r Envelope2D) Bounds() Bounds {
	return Bounds{r.env.ords.lower[0], r.env.ords.lower[1], r.env.ords.upper[0], r.env.ords.upper[1]}
}

// Equals compares the raw rectangle fields and the axis metadata.
//
// No hashing counterpart is provided: two boxes equal here may still hash
// differently when handed to generic rectangle code.
func (r Envelope2D) Equals(other Envelope2D) bool {
	if !sameAxes(r.env.crs, other.env.crs) {
		return false
	}
	return r.X() == other.X() && r.Y() == other.Y() &&
		r.RawWidth() == other.RawWidth() && r.RawHeight() == other.RawHeight()
}

func (r Envelope2D) String() string {
	return fmt.Sprintf("Envelope2D[%g : %g, %g : %g]", r.env.ords.lower[0], r.env.ords.upper[0], r.env.ords.lower[1], r.env.ords.upper[1])
}
