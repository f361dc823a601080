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
	"image/color"
)

// ImageSource is a TiledSource over an image.Image.
//
// Gray and paletted images have a single Byte band (palette indexes for the
// latter), Gray16 a single UInt16 band, RGBA/NRGBA four Byte bands and any
// other image four UInt16 bands (red, green, blue, alpha).
type ImageSource struct {
	img    image.Image
	st     DatasetStructure
	area   *image.Rectangle
	nodata [][]float64
	scan   scan
	px     []float64
	band   int
}

var (
	_ TiledSource  = &ImageSource{}
	_ NoDataSource = &ImageSource{}
)

// NewImageSource wraps img, exposing it as tiles of blockSizeX*blockSizeY
// pixels. Block sizes <= 0 mean a single tile spanning the whole image.
func NewImageSource(img image.Image, blockSizeX, blockSizeY int) (*ImageSource, error) {
	if img == nil {
		return nil, &NullInputError{What: "image"}
	}
	b := img.Bounds()
	st := DatasetStructure{
		BandStructure: BandStructure{
			SizeX:      b.Dx(),
			SizeY:      b.Dy(),
			BlockSizeX: blockSizeX,
			BlockSizeY: blockSizeY,
		},
	}
	if st.BlockSizeX <= 0 {
		st.BlockSizeX = st.SizeX
	}
	if st.BlockSizeY <= 0 {
		st.BlockSizeY = st.SizeY
	}
	switch img.(type) {
	case *image.Gray, *image.Paletted:
		st.NBands, st.DataType = 1, Byte
	case *image.Gray16:
		st.NBands, st.DataType = 1, UInt16
	case *image.RGBA, *image.NRGBA:
		st.NBands, st.DataType = 4, Byte
	default:
		st.NBands, st.DataType = 4, UInt16
	}
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("image source: %w", err)
	}
	return &ImageSource{
		img:    img,
		st:     st,
		nodata: make([][]float64, st.NBands),
		scan:   newScan(image.Rect(0, 0, st.SizeX, st.SizeY), st.NBands),
		px:     make([]float64, st.NBands),
	}, nil
}

// SetNoData declares the no-data values of a band.
func (s *ImageSource) SetNoData(band int, values ...float64) error {
	if band < 0 || band >= s.st.NBands {
		return &IndexError{Index: band, Dimension: s.st.NBands}
	}
	s.nodata[band] = append([]float64(nil), values...)
	return nil
}

// SetDataArea restricts the tiles visited by a tiled scan to those overlapping r,
// expressed in pixels relative to the image origin.
func (s *ImageSource) SetDataArea(r image.Rectangle) {
	s.area = &r
}

func (s *ImageSource) Structure() DatasetStructure {
	return s.st
}

func (s *ImageSource) NoData(band int) []float64 {
	return s.nodata[band]
}

func (s *ImageSource) Rewind() error {
	s.scan.rewind()
	return nil
}

func (s *ImageSource) Next() bool {
	return s.advance(&s.scan)
}

func (s *ImageSource) advance(sc *scan) bool {
	x, y, b, ok := sc.next()
	if !ok {
		return false
	}
	if b == 0 {
		o := s.img.Bounds().Min
		s.pixel(o.X+x, o.Y+y)
	}
	s.band = b
	return true
}

func (s *ImageSource) Sample() float64 {
	return s.px[s.band]
}

func (s *ImageSource) Err() error {
	return nil
}

// TileMissing always returns false: images are fully populated.
func (s *ImageSource) TileMissing(x, y int) bool {
	return false
}

func (s *ImageSource) DataArea() *image.Rectangle {
	return s.area
}

// Tile returns a source over tile x,y of the image.
func (s *ImageSource) Tile(x, y int) (SampleSource, error) {
	r := blockRect(s.st.BandStructure, x, y)
	if r.Empty() {
		return nil, fmt.Errorf("tile %d,%d out of range", x, y)
	}
	t := &imageTile{
		parent: &ImageSource{img: s.img, st: s.st, px: make([]float64, s.st.NBands)},
		st:     tileStructure(s.st, r),
	}
	t.scan = newScan(r, s.st.NBands)
	return t, nil
}

// pixel loads the band values of pixel x,y (absolute image coordinates) into s.px.
func (s *ImageSource) pixel(x, y int) {
	switch im := s.img.(type) {
	case *image.Gray:
		s.px[0] = float64(im.GrayAt(x, y).Y)
	case *image.Paletted:
		s.px[0] = float64(im.ColorIndexAt(x, y))
	case *image.Gray16:
		s.px[0] = float64(im.Gray16At(x, y).Y)
	case *image.RGBA:
		c := im.RGBAAt(x, y)
		s.px[0], s.px[1], s.px[2], s.px[3] = float64(c.R), float64(c.G), float64(c.B), float64(c.A)
	case *image.NRGBA:
		c := im.NRGBAAt(x, y)
		s.px[0], s.px[1], s.px[2], s.px[3] = float64(c.R), float64(c.G), float64(c.B), float64(c.A)
	default:
		c := color.RGBA64Model.Convert(im.At(x, y)).(color.RGBA64)
		s.px[0], s.px[1], s.px[2], s.px[3] = float64(c.R), float64(c.G), float64(c.B), float64(c.A)
	}
}

type imageTile struct {
	parent *ImageSource
	st     DatasetStructure
	scan   scan
}

func (t *imageTile) Structure() DatasetStructure {
	return t.st
}

func (t *imageTile) Rewind() error {
	t.scan.rewind()
	return nil
}

func (t *imageTile) Next() bool {
	return t.parent.advance(&t.scan)
}

func (t *imageTile) Sample() float64 {
	return t.parent.Sample()
}

func (t *imageTile) Err() error {
	return nil
}
