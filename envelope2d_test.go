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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope2D(t *testing.T) {
	r, err := Envelope2DFromBounds(WGS84, -10, -5, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, -10.0, r.X())
	assert.Equal(t, -5.0, r.Y())
	assert.Equal(t, 20.0, r.Width())
	assert.Equal(t, 10.0, r.Height())
	assert.Equal(t, 0.0, r.CenterX())
	assert.Equal(t, Bounds{-10, -5, 10, 5}, r.Bounds())
	assert.True(t, r.Contains(0, 0))
	assert.False(t, r.Contains(11, 0))
	assert.Equal(t, "Envelope2D[-10 : 10, -5 : 5]", r.String())

	_, err = Envelope2DFromBounds(WGS84, -10, 5, 10, -5)
	var ire *InvalidRangeError
	assert.True(t, errors.As(err, &ire))

	n, err := Envelope2DFrom(env(t, nil, []float64{1}, []float64{2}))
	var dme *DimensionMismatchError
	assert.True(t, errors.As(err, &dme))
	assert.True(t, n.IsEmpty())
}

func TestEnvelope2DCrossing(t *testing.T) {
	r, err := Bounds{170, -10, -170, 10}.Envelope2D(WGS84)
	require.NoError(t, err)
	assert.Equal(t, 20.0, r.Width())
	assert.Equal(t, Extent{Length: -340, Crossing: true}, r.RawWidth())
	assert.Equal(t, -180.0, r.MinX())
	assert.Equal(t, 180.0, r.MaxX())
	assert.Equal(t, 180.0, r.CenterX())
	assert.True(t, r.Contains(175, 0))
	assert.True(t, r.Contains(-175, 0))
	assert.False(t, r.Contains(0, 0))
	assert.False(t, r.IsEmpty())

	o, _ := Envelope2DFromBounds(WGS84, -175, 0, -160, 20)
	assert.True(t, r.Intersects(o, true))
	assert.False(t, r.ContainsEnvelope(o, true))

	u := r.Union(o)
	assert.Equal(t, Bounds{170, -10, -160, 20}, u.Bounds())
	assert.Equal(t, 30.0, u.Width())
	assert.Equal(t, 30.0, u.Height())
	assert.Equal(t, -175.0, u.CenterX())
	assert.True(t, u.ContainsEnvelope(r, true))
	assert.True(t, u.ContainsEnvelope(o, true))

	i := r.Intersection(o)
	assert.Equal(t, Bounds{-175, 0, -170, 10}, i.Bounds())
}

func TestNewEnvelope2D(t *testing.T) {
	r, err := NewEnvelope2D(WGS84, 170, 0, Extent{Length: -340}, Extent{Length: 10})
	require.NoError(t, err)
	assert.Equal(t, Bounds{170, 0, -170, 10}, r.Bounds())

	world, err := NewEnvelope2D(WGS84, -30, -90, Extent{Crossing: true}, Extent{Length: 180})
	require.NoError(t, err)
	assert.Equal(t, 360.0, world.Width())
	assert.True(t, world.ContainsEnvelope(r, true))
	assert.True(t, world.Contains(-31, 0))

	// a zero width is a valid degenerate box, a crossing zero width covers the axis
	point, err := NewEnvelope2D(WGS84, -30, 0, Extent{}, Extent{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, point.Width())
	assert.False(t, point.IsEmpty())
	assert.False(t, point.Equals(world))

	_, err = NewEnvelope2D(WGS84, 0, 10, Extent{Length: 1}, Extent{Length: -1})
	assert.Error(t, err)
	_, err = NewEnvelope2D(WGS84, 0, 10, Extent{Length: 1}, Extent{Crossing: true})
	assert.Error(t, err)
}

func TestEnvelope2DEquals(t *testing.T) {
	a, _ := Envelope2DFromBounds(WGS84, 0, 0, 1, 1)
	b, _ := NewEnvelope2D(WGS84, 0, 0, Extent{Length: 1}, Extent{Length: 1})
	c, _ := Envelope2DFromBounds(WGS84LatLon, 0, 0, 1, 1)
	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.Equal(t, WGS84, a.CRS())
	assert.True(t, a.Envelope().Equals(b.Envelope(), 0, false))
}
