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
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCRS(t *testing.T) {
	crs, err := NewCRS("time", Axis{Name: "t", Direction: Past, Min: math.Inf(-1), Max: math.Inf(1), Meaning: Unbounded})
	require.NoError(t, err)
	assert.Equal(t, 1, crs.Dimension())
	assert.Equal(t, Unbounded, crs.RangeMeaning(0))
	assert.Equal(t, Past, crs.AxisDirection(0))
	assert.Equal(t, "time", crs.String())
	_, ok := crs.Domain()
	assert.False(t, ok)

	_, err = NewCRS("empty")
	assert.Error(t, err)
	_, err = NewCRS("inverted", Axis{Name: "x", Min: 1, Max: 0})
	var ire *InvalidRangeError
	assert.True(t, errors.As(err, &ire))
	_, err = NewCRS("nan", Axis{Name: "x", Min: math.NaN(), Max: 0})
	assert.Error(t, err)
	_, err = NewCRS("infinite period", Axis{Name: "x", Min: 0, Max: math.Inf(1), Meaning: Wraparound})
	assert.Error(t, err)
	_, err = NewCRS("no period", Axis{Name: "x", Min: 1, Max: 1, Meaning: Wraparound})
	assert.Error(t, err)

	axes := []Axis{{Name: "x", Min: 0, Max: 1}}
	crs, _ = NewCRS("copy", axes...)
	axes[0].Max = 10
	assert.Equal(t, 1.0, crs.Maximum(0))
}

func TestRangeMeaning(t *testing.T) {
	assert.Equal(t, "exact", Exact.String())
	assert.Equal(t, "wraparound", Wraparound.String())
	assert.Equal(t, "unbounded", Unbounded.String())
	assert.Equal(t, "RangeMeaning(7)", RangeMeaning(7).String())
	assert.Equal(t, Wraparound, WGS84.RangeMeaning(0))
	assert.Equal(t, Wraparound, WGS84LatLon.RangeMeaning(1))
	assert.Equal(t, 360.0, period(WGS84, 0))
	assert.True(t, math.IsNaN(period(WGS84, 1)))
	assert.True(t, math.IsNaN(period(nil, 0)))
	assert.True(t, sameAxes(nil, nil))
	assert.False(t, sameAxes(WGS84, nil))
}

func TestLogger(t *testing.T) {
	defer SetLogger(nil)
	buf := bytes.Buffer{}
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	src := memSource(t, 2, 1, 2, 1, 2, Float64, []float64{1, math.NaN(), 2, math.NaN()})
	_, err := ComputeStatistics(src)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "range pass done")
	assert.Contains(t, buf.String(), "band has no valid sample")

	SetLogger(nil)
	buf.Reset()
	_, err = ComputeStatistics(src)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}
