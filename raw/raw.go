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

// Package raw reads band-interleaved-by-pixel raw rasters (headerless BIP
// files, optionally preceded by a fixed size header) as covkit sample sources.
package raw

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/airbusgeo/covkit"
	"github.com/airbusgeo/covkit/internal/blockcache"
)

// KeyReaderAt reads bytes of the resource identified by key. Readers that also
// implement Size(key string) (int64, error) get their size checked on Open.
type KeyReaderAt interface {
	ReadAt(key string, p []byte, off int64) (int, error)
}

// Layout describes the organization of a raw raster.
type Layout struct {
	covkit.DatasetStructure
	// ByteOrder defaults to binary.LittleEndian.
	ByteOrder binary.ByteOrder
	// Offset is the number of header bytes preceding the samples.
	Offset int64
}

type options struct {
	nodata      map[int][]float64
	area        *image.Rectangle
	cacheBlocks int
	blockSize   uint
}

// Option is an option that can be passed to Open
type Option func(o *options)

// NoData declares the no-data values of a band.
func NoData(band int, values ...float64) Option {
	return func(o *options) {
		o.nodata[band] = append([]float64(nil), values...)
	}
}

// DataArea restricts tiled scans to tiles overlapping r.
func DataArea(r image.Rectangle) Option {
	return func(o *options) {
		o.area = &r
	}
}

// CacheBlocks routes reads through an lru cache of n blocks of blockSize bytes
// (64k if 0), so that rows shared by neighbouring tiles are only read once.
func CacheBlocks(n int, blockSize uint) Option {
	if n < 1 {
		panic("invalid cached block count")
	}
	return func(o *options) {
		o.cacheBlocks = n
		o.blockSize = blockSize
	}
}

// Source is a covkit.TiledSource over a raw raster.
type Source struct {
	*window
	nodata [][]float64
	area   *image.Rectangle
}

var (
	_ covkit.TiledSource  = &Source{}
	_ covkit.NoDataSource = &Source{}
)

// Open creates a Source reading the raster stored under key in r.
func Open(r KeyReaderAt, key string, layout Layout, opts ...Option) (*Source, error) {
	if r == nil {
		return nil, &covkit.NullInputError{What: "reader"}
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("raw layout: %w", err)
	}
	if err := checkType(layout.DataType); err != nil {
		return nil, err
	}
	if layout.ByteOrder == nil {
		layout.ByteOrder = binary.LittleEndian
	}
	o := options{nodata: map[int][]float64{}}
	for _, opt := range opts {
		opt(&o)
	}
	if sz, ok := r.(blockcache.KeySizer); ok {
		size, err := sz.Size(key)
		if err != nil {
			return nil, &covkit.DataAccessError{Op: "size " + key, Err: err}
		}
		need := layout.Offset + int64(layout.SizeX)*int64(layout.SizeY)*int64(layout.NBands*layout.DataType.Size())
		if size < need {
			return nil, fmt.Errorf("%s: %d bytes, expected at least %d", key, size, need)
		}
	}
	if o.cacheBlocks > 0 {
		cache, err := blockcache.NewCache(uint(o.cacheBlocks))
		if err != nil {
			return nil, err
		}
		r = blockcache.New(r, cache, o.blockSize)
	}
	s := &Source{
		nodata: make([][]float64, layout.NBands),
		area:   o.area,
	}
	for b, v := range o.nodata {
		if b < 0 || b >= layout.NBands {
			return nil, &covkit.IndexError{Index: b, Dimension: layout.NBands}
		}
		s.nodata[b] = v
	}
	s.window = newWindow(r, key, layout, image.Rect(0, 0, layout.SizeX, layout.SizeY))
	return s, nil
}

func checkType(dt covkit.DataType) error {
	switch dt {
	case covkit.Byte, covkit.Int8, covkit.UInt16, covkit.Int16,
		covkit.UInt32, covkit.Int32, covkit.Float32, covkit.Float64:
		return nil
	}
	return fmt.Errorf("unsupported data type %v", dt)
}

func (s *Source) NoData(band int) []float64 {
	return s.nodata[band]
}

// TileMissing always returns false: raw rasters are dense.
func (s *Source) TileMissing(x, y int) bool {
	return false
}

func (s *Source) DataArea() *image.Rectangle {
	return s.area
}

// Tile returns a source over tile x,y. Tiles are independent of each other and
// of s and may be read concurrently.
func (s *Source) Tile(x, y int) (covkit.SampleSource, error) {
	st := s.layout.BandStructure
	w, h := st.ActualBlockSize(x, y)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("tile %d,%d out of range", x, y)
	}
	x0, y0 := x*st.BlockSizeX, y*st.BlockSizeY
	return newWindow(s.r, s.key, s.layout, image.Rect(x0, y0, x0+w, y0+h)), nil
}

// window iterates over the samples of a rectangular area, one row at a time.
type window struct {
	r      KeyReaderAt
	key    string
	layout Layout
	win    image.Rectangle
	st     covkit.DatasetStructure
	row    []byte
	vals   []float64
	y      int
	k      int
	err    error
}

func newWindow(r KeyReaderAt, key string, layout Layout, win image.Rectangle) *window {
	st := layout.DatasetStructure
	if win.Dx() != st.SizeX || win.Dy() != st.SizeY {
		st.SizeX, st.SizeY = win.Dx(), win.Dy()
		st.BlockSizeX, st.BlockSizeY = win.Dx(), win.Dy()
	}
	n := win.Dx() * layout.NBands
	w := &window{
		r:      r,
		key:    key,
		layout: layout,
		win:    win,
		st:     st,
		row:    make([]byte, n*layout.DataType.Size()),
		vals:   make([]float64, n),
	}
	_ = w.Rewind()
	return w
}

func (w *window) Structure() covkit.DatasetStructure {
	return w.st
}

func (w *window) Rewind() error {
	w.y = w.win.Min.Y - 1
	w.k = len(w.vals)
	w.err = nil
	return nil
}

func (w *window) Next() bool {
	if w.err != nil {
		return false
	}
	if w.k+1 < len(w.vals) {
		w.k++
		return true
	}
	if w.y+1 >= w.win.Max.Y {
		return false
	}
	w.y++
	if err := w.load(); err != nil {
		w.err = &covkit.DataAccessError{Op: fmt.Sprintf("read %s row %d", w.key, w.y), Err: err}
		return false
	}
	w.k = 0
	return true
}

func (w *window) Sample() float64 {
	return w.vals[w.k]
}

func (w *window) Err() error {
	return w.err
}

func (w *window) load() error {
	size := int64(w.layout.NBands * w.layout.DataType.Size())
	off := w.layout.Offset + (int64(w.y)*int64(w.layout.SizeX)+int64(w.win.Min.X))*size
	n, err := w.r.ReadAt(w.key, w.row, off)
	if n < len(w.row) {
		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	decode(w.vals, w.row, w.layout.DataType, w.layout.ByteOrder)
	return nil
}

func decode(dst []float64, src []byte, dt covkit.DataType, bo binary.ByteOrder) {
	sz := dt.Size()
	for i := range dst {
		b := src[i*sz : (i+1)*sz]
		switch dt {
		case covkit.Byte:
			dst[i] = float64(b[0])
		case covkit.Int8:
			dst[i] = float64(int8(b[0]))
		case covkit.UInt16:
			dst[i] = float64(bo.Uint16(b))
		case covkit.Int16:
			dst[i] = float64(int16(bo.Uint16(b)))
		case covkit.UInt32:
			dst[i] = float64(bo.Uint32(b))
		case covkit.Int32:
			dst[i] = float64(int32(bo.Uint32(b)))
		case covkit.Float32:
			dst[i] = float64(math.Float32frombits(bo.Uint32(b)))
		case covkit.Float64:
			dst[i] = math.Float64frombits(bo.Uint64(b))
		}
	}
}
