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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructure(t *testing.T) {
	st := BandStructure{SizeX: 64, SizeY: 64, BlockSizeX: 32, BlockSizeY: 32, DataType: Byte}
	if x, y := st.BlockCount(); x != 2 || y != 2 {
		t.Errorf("cx,cy: %d,%d", x, y)
	}
	if x, y := st.ActualBlockSize(0, 0); x != 32 || y != 32 {
		t.Errorf("abx,abyy: %d,%d", x, y)
	}
	if x, y := st.ActualBlockSize(1, 1); x != 32 || y != 32 {
		t.Errorf("abx,abyy: %d,%d", x, y)
	}
	if x, y := st.ActualBlockSize(2, 2); x != 0 || y != 0 {
		t.Errorf("abx,abyy: %d,%d", x, y)
	}

	st.SizeX, st.SizeY = 65, 65
	if x, y := st.BlockCount(); x != 3 || y != 3 {
		t.Errorf("cx,cy: %d,%d", x, y)
	}
	if x, y := st.ActualBlockSize(2, 2); x != 1 || y != 1 {
		t.Errorf("abx,abyy: %d,%d", x, y)
	}
	if x, y := st.ActualBlockSize(1, 1); x != 32 || y != 32 {
		t.Errorf("abx,abyy: %d,%d", x, y)
	}
	if x, y := st.ActualBlockSize(3, 3); x != 0 || y != 0 {
		t.Errorf("abx,abyy: %d,%d", x, y)
	}

	st.SizeX, st.SizeY = 63, 63
	if x, y := st.BlockCount(); x != 2 || y != 2 {
		t.Errorf("cx,cy: %d,%d", x, y)
	}
	if x, y := st.ActualBlockSize(1, 1); x != 31 || y != 31 {
		t.Errorf("abx,abyy: %d,%d", x, y)
	}
	if x, y := st.ActualBlockSize(-1, 0); x != 0 || y != 0 {
		t.Errorf("abx,abyy: %d,%d", x, y)
	}
}

func TestValidate(t *testing.T) {
	ds := DatasetStructure{BandStructure: BandStructure{SizeX: 1, SizeY: 1, BlockSizeX: 1, BlockSizeY: 1}, NBands: 1}
	assert.NoError(t, ds.Validate())
	bad := ds
	bad.SizeY = 0
	assert.Error(t, bad.Validate())
	bad = ds
	bad.BlockSizeX = -1
	assert.Error(t, bad.Validate())
	bad = ds
	bad.NBands = 0
	assert.Error(t, bad.Validate())
}

func TestBlockIterator(t *testing.T) {
	st := BandStructure{SizeX: 63, SizeY: 65, BlockSizeX: 32, BlockSizeY: 32}
	ibl := 0
	for bl, ok := st.FirstBlock(), true; ok; bl, ok = bl.Next() {
		expc := 0
		switch ibl {
		case 0, 2, 4:
			expc = 0
		case 1, 3, 5:
			expc = 32
		default:
			t.Errorf("block %d reached", ibl)
		}
		assert.Equal(t, expc, bl.X0, "block %d x=%d", ibl, bl.X0)
		expc = 0
		switch ibl {
		case 0, 1:
			expc = 0
		case 2, 3:
			expc = 32
		case 4, 5:
			expc = 64
		default:
			t.Errorf("block %d reached", ibl)
		}
		assert.Equal(t, expc, bl.Y0, "block %d y=%d", ibl, bl.Y0)

		expc = 0
		switch ibl {
		case 0, 2, 4:
			expc = 32
		case 1, 3, 5:
			expc = 31
		default:
			t.Errorf("block %d reached", ibl)
		}
		assert.Equal(t, expc, bl.W, "block %d w=%d", ibl, bl.W)
		expc = 0
		switch ibl {
		case 0, 1, 2, 3:
			expc = 32
		case 4, 5:
			expc = 1
		default:
			t.Errorf("block %d reached", ibl)
		}
		assert.Equal(t, expc, bl.H, "block %d w=%d", ibl, bl.H)

		x, y := bl.Index()
		assert.Equal(t, ibl%2, x)
		assert.Equal(t, ibl/2, y)
		ibl++
	}
	assert.Equal(t, 6, ibl)
}

func TestDataType(t *testing.T) {
	for _, dt := range []DataType{Byte, UInt16, Int8, Int16, UInt32, Int32, Float32, Float64} {
		parsed, err := ParseDataType(dt.String())
		require.NoError(t, err)
		assert.Equal(t, dt, parsed)
	}
	dt, err := ParseDataType("UInt8")
	require.NoError(t, err)
	assert.Equal(t, Byte, dt)
	assert.Equal(t, 1, Byte.Size())
	assert.Equal(t, 2, Int16.Size())
	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 8, Float64.Size())
	assert.Panics(t, func() { _ = Unknown.Size() })
	_, err = ParseDataType("complex64")
	assert.Error(t, err)
}
