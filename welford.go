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

import "math"

// runningStats accumulates min, max, mean and variance of a stream of values
// with Welford's online algorithm.
type runningStats struct {
	count    uint64
	min, max float64
	mean, m2 float64
}

func newRunningStats() runningStats {
	return runningStats{min: math.Inf(1), max: math.Inf(-1)}
}

func (r *runningStats) add(v float64) {
	r.count++
	if v < r.min {
		r.min = v
	}
	if v > r.max {
		r.max = v
	}
	delta := v - r.mean
	r.mean += delta / float64(r.count)
	r.m2 += delta * (v - r.mean)
}

// merge combines the accumulator of a disjoint set of values into r
// (Chan et al. parallel variance).
func (r *runningStats) merge(o runningStats) {
	if o.count == 0 {
		return
	}
	if r.count == 0 {
		*r = o
		return
	}
	n := r.count + o.count
	delta := o.mean - r.mean
	r.mean += delta * float64(o.count) / float64(n)
	r.m2 += o.m2 + delta*delta*float64(r.count)*float64(o.count)/float64(n)
	r.count = n
	r.min = math.Min(r.min, o.min)
	r.max = math.Max(r.max, o.max)
}

// std returns the unbiased sample standard deviation, 0 for a single value and
// NaN when empty.
func (r runningStats) std() float64 {
	switch r.count {
	case 0:
		return math.NaN()
	case 1:
		return 0
	}
	return math.Sqrt(r.m2 / float64(r.count-1))
}
