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

type statisticsOpts struct {
	excludeNoData bool
	noData        map[int][]float64
	bins          int
	progress      func(float64)
	ignoreTiling  bool
}

// StatisticsOption is an option that can be passed to ComputeStatistics()
//
// Available StatisticsOptions are:
//
// • ExcludeNoData() to skip the no-data values of each band
//
// • NoData(band, values...) to declare or override the no-data values of a band
//
// • Bins(n) to force the histogram bucket count (defaults to 255 for Byte sources, 1000 otherwise)
//
// • Progress(fn) to be notified of the completion percentage
//
// • IgnoreTiling() to scan a TiledSource as a single contiguous source
type StatisticsOption interface {
	setStatisticsOpt(so *statisticsOpts)
}

type excludeNoDataOpt struct{}

func (o excludeNoDataOpt) setStatisticsOpt(so *statisticsOpts) {
	so.excludeNoData = true
}

// ExcludeNoData skips samples equal to one of the no-data values of their band.
func ExcludeNoData() interface {
	StatisticsOption
} {
	return excludeNoDataOpt{}
}

type noDataOpt struct {
	band   int
	values []float64
}

func (o noDataOpt) setStatisticsOpt(so *statisticsOpts) {
	if so.noData == nil {
		so.noData = map[int][]float64{}
	}
	so.noData[o.band] = o.values
}

// NoData sets the no-data values of band, replacing those declared by the
// source. It has no effect on the computation unless ExcludeNoData() is also given.
func NoData(band int, values ...float64) interface {
	StatisticsOption
} {
	return noDataOpt{band: band, values: append([]float64(nil), values...)}
}

type binsOpt int

func (o binsOpt) setStatisticsOpt(so *statisticsOpts) {
	so.bins = int(o)
}

// Bins sets the number of histogram buckets.
func Bins(n int) interface {
	StatisticsOption
} {
	if n < 1 {
		n = -1
	}
	return binsOpt(n)
}

type progressOpt func(float64)

func (o progressOpt) setStatisticsOpt(so *statisticsOpts) {
	so.progress = o
}

// Progress registers fn to be called with a non-decreasing completion
// percentage, ending with 100. fn is called on the computing goroutine.
func Progress(fn func(pct float64)) interface {
	StatisticsOption
} {
	return progressOpt(fn)
}

type ignoreTilingOpt struct{}

func (o ignoreTilingOpt) setStatisticsOpt(so *statisticsOpts) {
	so.ignoreTiling = true
}

// IgnoreTiling scans a TiledSource as a single source.
func IgnoreTiling() interface {
	StatisticsOption
} {
	return ignoreTilingOpt{}
}
