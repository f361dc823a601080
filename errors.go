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

import "fmt"

// InvalidRangeError is returned when an envelope is built with a lower bound
// greater than its upper bound along an axis that does not wrap around.
type InvalidRangeError struct {
	Dim          int
	Lower, Upper float64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range along dimension %d: lower %g is greater than upper %g", e.Dim, e.Lower, e.Upper)
}

// DimensionMismatchError is returned when the operands of an envelope operation
// do not share the same number of dimensions.
type DimensionMismatchError struct {
	Expected, Got int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}

// IndexError is raised (as a panic value by accessors, as a returned error by
// mutators) when a dimension index is outside [0,Dimension).
type IndexError struct {
	Index, Dimension int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("dimension index %d out of range [0,%d)", e.Index, e.Dimension)
}

// NullInputError is returned when a required input is nil.
type NullInputError struct {
	What string
}

func (e *NullInputError) Error() string {
	return fmt.Sprintf("nil %s", e.What)
}

// DataAccessError wraps a failure of an underlying sample source or storage.
// It is never swallowed by the statistics engine.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

func checkIndex(i, dim int) {
	if i < 0 || i >= dim {
		panic(&IndexError{Index: i, Dimension: dim})
	}
}
