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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogram(t *testing.T) {
	hist, err := NewHistogram(256, -0.5, 255.5)
	require.NoError(t, err)
	for i := 0; i < 256; i++ {
		hist.Add(float64(i))
	}
	ll := hist.Len()
	assert.Equal(t, 256, ll)
	for i := 0; i < ll; i++ {
		b := hist.Bucket(i)
		assert.Equal(t, float64(i)-0.5, b.Min)
		assert.Equal(t, float64(i+1)-0.5, b.Max)
		assert.Equal(t, uint64(1), b.Count)
	}

	hist, err = NewHistogram(64, 63.5, 191.5)
	require.NoError(t, err)
	for i := 0; i < 256; i++ {
		hist.Add(float64(i))
	}
	ll = hist.Len()
	assert.Equal(t, 64, ll)
	for i := 0; i < ll; i++ {
		b := hist.Bucket(i)
		assert.Equal(t, 63.5+float64(i*2), b.Min)
		assert.Equal(t, 63.5+float64(i*2+2), b.Max)
		if i == 0 || i == ll-1 {
			assert.Equal(t, uint64(66), b.Count) //66 is the 64 preceding + the 2 of the actual bucket
		} else {
			assert.Equal(t, uint64(2), b.Count)
		}
	}

	hist, err = NewHistogram(64, 63.5, 191.5, ExcludeOutOfRange())
	require.NoError(t, err)
	for i := 0; i < 256; i++ {
		hist.Add(float64(i))
	}
	assert.Equal(t, uint64(2), hist.Bucket(0).Count)
	assert.Equal(t, uint64(128), hist.Total())

	_, err = NewHistogram(0, 0, 1)
	assert.Error(t, err)
	_, err = NewHistogram(10, 1, 0)
	assert.Error(t, err)
	_, err = NewHistogram(10, math.NaN(), 0)
	assert.Error(t, err)
	_, err = NewHistogram(10, 0, math.Inf(1))
	assert.Error(t, err)
}

func TestHistogramEdges(t *testing.T) {
	hist, err := NewHistogram(10, 0, 100)
	require.NoError(t, err)
	hist.Add(100)
	hist.Add(0)
	hist.Add(math.NaN())
	hist.AddN(55, 3)
	assert.Equal(t, uint64(1), hist.Bucket(9).Count)
	assert.Equal(t, uint64(1), hist.Bucket(0).Count)
	assert.Equal(t, uint64(3), hist.Bucket(5).Count)
	assert.Equal(t, uint64(5), hist.Total())

	counts := hist.Counts()
	counts[0] = 42
	assert.Equal(t, uint64(1), hist.Bucket(0).Count)
}

func TestHistogramDegenerate(t *testing.T) {
	hist, err := NewHistogram(10, 7, 7)
	require.NoError(t, err)
	hist.Add(7)
	hist.Add(7)
	hist.Add(100)
	assert.Equal(t, uint64(3), hist.Bucket(0).Count)
	assert.Equal(t, uint64(3), hist.Total())

	hist, err = NewHistogram(10, 7, 7, ExcludeOutOfRange())
	require.NoError(t, err)
	hist.Add(7)
	hist.Add(8)
	assert.Equal(t, uint64(1), hist.Total())
}

func TestMergeHistograms(t *testing.T) {
	h1, _ := NewHistogram(10, 0, 50)
	h2, _ := NewHistogram(10, 50, 100)
	for v := 0.0; v < 50; v += 0.5 {
		h1.Add(v)
	}
	for v := 50.0; v <= 100; v++ {
		h2.Add(v)
	}
	m := MergeHistograms(h1, h2)
	assert.Equal(t, 0.0, m.Min())
	assert.Equal(t, 100.0, m.Max())
	assert.Equal(t, 10, m.Len())
	assert.Equal(t, h1.Total()+h2.Total(), m.Total())
	// h1 midpoints 2.5 and 7.5 both fall in the first merged bucket
	assert.Equal(t, h1.Bucket(0).Count+h1.Bucket(1).Count, m.Bucket(0).Count)

	assert.Nil(t, MergeHistograms(nil, nil))
	c := MergeHistograms(nil, h2)
	assert.Equal(t, h2.Counts(), c.Counts())
	c.Add(60)
	assert.NotEqual(t, h2.Total(), c.Total())
	assert.Equal(t, h1.Counts(), MergeHistograms(h1, nil).Counts())

	// bucket count follows the first histogram
	h3, _ := NewHistogram(4, -10, 10)
	h3.AddN(0, 8)
	m = MergeHistograms(h3, h1)
	assert.Equal(t, 4, m.Len())
	assert.Equal(t, -10.0, m.Min())
	assert.Equal(t, 50.0, m.Max())
	assert.Equal(t, h1.Total()+8, m.Total())
}

func TestHistogramOverflowingRange(t *testing.T) {
	h, err := NewHistogram(10, -1e308, 1e308)
	require.NoError(t, err)
	h.Add(-1e308)
	h.Add(0)
	h.Add(1e308)
	assert.Equal(t, []uint64{1, 0, 0, 0, 0, 1, 0, 0, 0, 1}, h.Counts())

	h, err = NewHistogram(4, -math.MaxFloat64, math.MaxFloat64)
	require.NoError(t, err)
	h.Add(-math.MaxFloat64)
	h.Add(math.MaxFloat64)
	assert.Equal(t, []uint64{1, 0, 0, 1}, h.Counts())
	assert.Equal(t, -math.MaxFloat64, h.Bucket(0).Min)
	assert.Equal(t, 0.0, h.Bucket(2).Min)
	assert.Equal(t, math.MaxFloat64, h.Bucket(3).Max)

	small, _ := NewHistogram(4, 0, 1)
	small.Add(0.5)
	m := MergeHistograms(h, small)
	assert.Equal(t, []uint64{1, 0, 1, 1}, m.Counts())
}
