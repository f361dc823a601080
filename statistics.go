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
	"fmt"
	"image"
	"log/slog"
	"math"
	"reflect"
	"sort"
)

// Statistics on a given band.
type Statistics struct {
	Min, Max, Mean, Std float64
}

// BandStatistics are the statistics computed for one band by ComputeStatistics.
// Std is the unbiased sample standard deviation. A band without any valid
// sample has NaN statistics and a nil Histogram.
type BandStatistics struct {
	Statistics
	// Count is the number of samples that were taken into account.
	Count     uint64
	Histogram *Histogram
	// NoData holds the sorted no-data values declared for the band.
	NoData []float64
}

const (
	byteBins    = 255
	defaultBins = 1000
)

// ComputeStatistics scans src twice: a first pass computes the per-band
// minimum, maximum, mean and standard deviation, a second pass builds a
// per-band histogram spanning [min,max]. NaN and infinite samples are always
// skipped, no-data samples are skipped when ExcludeNoData() is given.
//
// If src is a TiledSource with more than one tile, both passes are run tile by
// tile (skipping missing tiles and tiles outside the data area) and the
// per-tile results are merged; histograms are then merged with
// MergeHistograms.
//
// Failures of src are returned as *DataAccessError and no partial result is
// returned.
func ComputeStatistics(src SampleSource, opts ...StatisticsOption) ([]BandStatistics, error) {
	if isNil(src) {
		return nil, &NullInputError{What: "sample source"}
	}
	so := statisticsOpts{}
	for _, o := range opts {
		o.setStatisticsOpt(&so)
	}
	st := src.Structure()
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("sample source: %w", err)
	}
	e := &engine{
		nbands:   st.NBands,
		exclude:  so.excludeNoData,
		bins:     so.bins,
		progress: so.progress,
		last:     math.Inf(-1),
	}
	if e.bins == 0 {
		e.bins = defaultBins
		if st.DataType == Byte {
			e.bins = byteBins
		}
	}
	if e.bins < 0 {
		return nil, fmt.Errorf("invalid bin count %d", e.bins)
	}
	nodata, err := resolveNoData(src, st.NBands, so.noData)
	if err != nil {
		return nil, err
	}
	e.nodata = nodata

	ts, tiled := src.(TiledSource)
	nx, ny := st.BlockCount()
	if tiled && !so.ignoreTiling && nx*ny > 1 {
		err = e.scanTiles(ts)
	} else {
		e.acc, e.hists, err = e.scan(src, true)
	}
	if err != nil {
		return nil, err
	}
	e.report(100)
	return e.results(), nil
}

// isNil reports whether src is nil or holds a nil pointer.
func isNil(src SampleSource) bool {
	if src == nil {
		return true
	}
	v := reflect.ValueOf(src)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

func resolveNoData(src SampleSource, nbands int, override map[int][]float64) ([][]float64, error) {
	nodata := make([][]float64, nbands)
	if nds, ok := src.(NoDataSource); ok {
		for b := range nodata {
			nodata[b] = append([]float64(nil), nds.NoData(b)...)
		}
	}
	for b, v := range override {
		if b < 0 || b >= nbands {
			return nil, &IndexError{Index: b, Dimension: nbands}
		}
		nodata[b] = append([]float64(nil), v...)
	}
	for _, nd := range nodata {
		sort.Float64s(nd)
	}
	return nodata, nil
}

type engine struct {
	nbands   int
	exclude  bool
	nodata   [][]float64
	bins     int
	progress func(float64)
	last     float64

	acc   []runningStats
	hists []*Histogram
}

// report forwards a progress percentage, never going backwards.
func (e *engine) report(pct float64) {
	if e.progress == nil || pct <= e.last {
		return
	}
	e.last = pct
	e.progress(pct)
}

func (e *engine) valid(band int, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	if !e.exclude {
		return true
	}
	nd := e.nodata[band]
	i := sort.SearchFloat64s(nd, v)
	return i >= len(nd) || nd[i] != v
}

func dataAccess(op string, err error) error {
	var dae *DataAccessError
	if errors.As(err, &dae) {
		return err
	}
	return &DataAccessError{Op: op, Err: err}
}

// scan runs both passes over src. If top is set, half-way progress is reported.
func (e *engine) scan(src SampleSource, top bool) ([]runningStats, []*Histogram, error) {
	if err := src.Rewind(); err != nil {
		return nil, nil, dataAccess("rewind", err)
	}
	acc := make([]runningStats, e.nbands)
	for b := range acc {
		acc[b] = newRunningStats()
	}
	band := 0
	for src.Next() {
		if v := src.Sample(); e.valid(band, v) {
			acc[band].add(v)
		}
		if band++; band == e.nbands {
			band = 0
		}
	}
	if err := src.Err(); err != nil {
		return nil, nil, dataAccess("read samples", err)
	}
	Logger().Debug("range pass done", slog.Int("bands", e.nbands))
	if top {
		e.report(50)
	}

	hists := make([]*Histogram, e.nbands)
	for b := range hists {
		if acc[b].count == 0 {
			continue
		}
		h, err := NewHistogram(e.bins, acc[b].min, acc[b].max)
		if err != nil {
			return nil, nil, fmt.Errorf("band %d: %w", b, err)
		}
		hists[b] = h
	}
	if err := src.Rewind(); err != nil {
		return nil, nil, dataAccess("rewind", err)
	}
	band = 0
	for src.Next() {
		if v := src.Sample(); hists[band] != nil && e.valid(band, v) {
			hists[band].Add(v)
		}
		if band++; band == e.nbands {
			band = 0
		}
	}
	if err := src.Err(); err != nil {
		return nil, nil, dataAccess("read samples", err)
	}
	Logger().Debug("histogram pass done", slog.Int("bands", e.nbands), slog.Int("bins", e.bins))
	return acc, hists, nil
}

func (e *engine) scanTiles(ts TiledSource) error {
	st := ts.Structure()
	nx, ny := st.BlockCount()
	total := float64(nx * ny)
	area := ts.DataArea()

	e.acc = make([]runningStats, e.nbands)
	for b := range e.acc {
		e.acc[b] = newRunningStats()
	}
	e.hists = make([]*Histogram, e.nbands)

	done := 0
	for blk, ok := st.FirstBlock(), true; ok; blk, ok = blk.Next() {
		done++
		x, y := blk.Index()
		r := image.Rect(blk.X0, blk.Y0, blk.X0+blk.W, blk.Y0+blk.H)
		if ts.TileMissing(x, y) || (area != nil && !r.Overlaps(*area)) {
			Logger().Debug("skipping tile", slog.Int("x", x), slog.Int("y", y))
			e.report(100 * float64(done) / total)
			continue
		}
		tile, err := ts.Tile(x, y)
		if err != nil {
			return dataAccess(fmt.Sprintf("tile %d,%d", x, y), err)
		}
		acc, hists, err := e.scan(tile, false)
		if err != nil {
			return fmt.Errorf("tile %d,%d: %w", x, y, err)
		}
		for b := range acc {
			e.acc[b].merge(acc[b])
			if hists[b] != nil {
				e.hists[b] = MergeHistograms(e.hists[b], hists[b])
			}
		}
		e.report(100 * float64(done) / total)
	}
	return nil
}

func (e *engine) results() []BandStatistics {
	res := make([]BandStatistics, e.nbands)
	for b := range res {
		acc := e.acc[b]
		res[b].NoData = e.nodata[b]
		res[b].Count = acc.count
		if acc.count == 0 {
			Logger().Warn("band has no valid sample", slog.Int("band", b))
			nan := math.NaN()
			res[b].Statistics = Statistics{Min: nan, Max: nan, Mean: nan, Std: nan}
			continue
		}
		res[b].Statistics = Statistics{Min: acc.min, Max: acc.max, Mean: acc.mean, Std: acc.std()}
		res[b].Histogram = e.hists[b]
	}
	return res
}
