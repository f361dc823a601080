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

import "image"

// SampleSource iterates over the samples of a raster, band-interleaved by
// pixel: the i'th sample returned by Next/Sample belongs to band i%NBands.
//
// Rewind restarts the iteration from the first sample. It must be supported:
// statistics are computed in two passes over the same source. As with
// bufio.Scanner, Next returns false at the end of the samples or on failure,
// and Err returns the failure, if any.
type SampleSource interface {
	Structure() DatasetStructure
	Rewind() error
	Next() bool
	Sample() float64
	Err() error
}

// TiledSource is a SampleSource that can also be read tile by tile. The tile
// grid is given by Structure().BlockCount().
type TiledSource interface {
	SampleSource
	// Tile returns a source iterating over the samples of tile x,y only.
	Tile(x, y int) (SampleSource, error)
	// TileMissing reports whether tile x,y holds no data and should be skipped.
	TileMissing(x, y int) bool
	// DataArea returns the pixel area holding valid data, or nil if the whole
	// raster is valid. Tiles outside the area are skipped.
	DataArea() *image.Rectangle
}

// NoDataSource is implemented by sources declaring per-band no-data values.
type NoDataSource interface {
	NoData(band int) []float64
}

// scan walks a window of a band-interleaved raster sample by sample.
type scan struct {
	win   image.Rectangle
	bands int
	k     int
}

func newScan(win image.Rectangle, bands int) scan {
	return scan{win: win, bands: bands, k: -1}
}

func (s *scan) rewind() {
	s.k = -1
}

// next advances to the following sample and returns its pixel and band.
func (s *scan) next() (x, y, band int, ok bool) {
	n := s.win.Dx() * s.win.Dy() * s.bands
	if s.k+1 >= n {
		s.k = n
		return 0, 0, 0, false
	}
	s.k++
	p := s.k / s.bands
	return s.win.Min.X + p%s.win.Dx(), s.win.Min.Y + p/s.win.Dx(), s.k % s.bands, true
}

// blockRect returns the pixel area of block x,y of st.
func blockRect(st BandStructure, x, y int) image.Rectangle {
	w, h := st.ActualBlockSize(x, y)
	x0, y0 := x*st.BlockSizeX, y*st.BlockSizeY
	return image.Rect(x0, y0, x0+w, y0+h)
}

// tileStructure returns the structure of a source restricted to r.
func tileStructure(st DatasetStructure, r image.Rectangle) DatasetStructure {
	ts := st
	ts.SizeX, ts.SizeY = r.Dx(), r.Dy()
	ts.BlockSizeX, ts.BlockSizeY = r.Dx(), r.Dy()
	return ts
}
