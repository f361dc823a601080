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
	"image"
)

// MemorySource is a TiledSource over an in-memory slice of band-interleaved samples.
type MemorySource struct {
	st      DatasetStructure
	samples []float64
	nodata  [][]float64
	missing map[image.Point]bool
	area    *image.Rectangle
	scan    scan
	cur     float64
}

var (
	_ TiledSource  = &MemorySource{}
	_ NoDataSource = &MemorySource{}
)

// NewMemorySource wraps samples laid out row by row, pixel by pixel, band by
// band. len(samples) must equal SizeX*SizeY*NBands. The slice is not copied.
func NewMemorySource(st DatasetStructure, samples []float64) (*MemorySource, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	if n := st.SizeX * st.SizeY * st.NBands; len(samples) != n {
		return nil, fmt.Errorf("expected %d samples, got %d", n, len(samples))
	}
	return &MemorySource{
		st:      st,
		samples: samples,
		nodata:  make([][]float64, st.NBands),
		missing: map[image.Point]bool{},
		scan:    newScan(image.Rect(0, 0, st.SizeX, st.SizeY), st.NBands),
	}, nil
}

// SetNoData declares the no-data values of a band.
func (m *MemorySource) SetNoData(band int, values ...float64) error {
	if band < 0 || band >= m.st.NBands {
		return &IndexError{Index: band, Dimension: m.st.NBands}
	}
	m.nodata[band] = append([]float64(nil), values...)
	return nil
}

// SetTileMissing flags tile x,y as missing.
func (m *MemorySource) SetTileMissing(x, y int) {
	m.missing[image.Pt(x, y)] = true
}

// SetDataArea restricts the tiles visited by a tiled scan to those overlapping r.
func (m *MemorySource) SetDataArea(r image.Rectangle) {
	m.area = &r
}

func (m *MemorySource) Structure() DatasetStructure {
	return m.st
}

func (m *MemorySource) NoData(band int) []float64 {
	return m.nodata[band]
}

func (m *MemorySource) Rewind() error {
	m.scan.rewind()
	return nil
}

func (m *MemorySource) Next() bool {
	x, y, b, ok := m.scan.next()
	if !ok {
		return false
	}
	m.cur = m.samples[(y*m.st.SizeX+x)*m.st.NBands+b]
	return true
}

func (m *MemorySource) Sample() float64 {
	return m.cur
}

func (m *MemorySource) Err() error {
	return nil
}

func (m *MemorySource) TileMissing(x, y int) bool {
	return m.missing[image.Pt(x, y)]
}

func (m *MemorySource) DataArea() *image.Rectangle {
	return m.area
}

// Tile returns a source over tile x,y sharing the samples of m.
func (m *MemorySource) Tile(x, y int) (SampleSource, error) {
	r := blockRect(m.st.BandStructure, x, y)
	if r.Empty() {
		return nil, fmt.Errorf("tile %d,%d out of range", x, y)
	}
	return &memoryTile{parent: m, st: tileStructure(m.st, r), scan: newScan(r, m.st.NBands)}, nil
}

type memoryTile struct {
	parent *MemorySource
	st     DatasetStructure
	scan   scan
	cur    float64
}

func (t *memoryTile) Structure() DatasetStructure {
	return t.st
}

func (t *memoryTile) Rewind() error {
	t.scan.rewind()
	return nil
}

func (t *memoryTile) Next() bool {
	x, y, b, ok := t.scan.next()
	if !ok {
		return false
	}
	p := t.parent
	t.cur = p.samples[(y*p.st.SizeX+x)*p.st.NBands+b]
	return true
}

func (t *memoryTile) Sample() float64 {
	return t.cur
}

func (t *memoryTile) Err() error {
	return nil
}
