/*
 *	Copyright 2024 The tensorlang Authors
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

// Package shapes defines Shape, the static type of every value in the IR.
//
// A Shape combines the element DataType (see types/dtypes) with an ordered
// sequence of non-negative dimension sizes. Rank 0 (no dimensions) is a
// scalar. Shapes are immutable value types: every shape-producing
// operation returns a new Shape, it never mutates its receiver.
//
// ## Glossary
//
//   - Rank: number of axes (dimensions) of a tensor.
//   - Axis: the index of a dimension. Negative axes count from the end,
//     so axis -1 is the last one.
//   - Dimension: the size of a tensor along one of its axes.
//   - Scalar: a shape with no axes, holding a single value of its DataType.
package shapes

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/tensorlang/tir/types/dtypes"
)

// Shape is the static type of a value: element data type plus dimensions.
//
// Use Make to create one. The zero value is the invalid Shape.
type Shape struct {
	DType      dtypes.DataType
	Dimensions []int
}

// Make returns a Shape with the given element type and dimensions.
// Dimensions must be non-negative; a negative dimension is a programming
// error and panics.
func Make(dtype dtypes.DataType, dimensions ...int) Shape {
	s := Shape{DType: dtype, Dimensions: slices.Clone(dimensions)}
	for _, dim := range dimensions {
		if dim < 0 {
			exceptions.Panicf("shapes.Make(%s): cannot create a shape with a negative dimension", s)
		}
	}
	return s
}

// Scalar returns a rank-0 Shape of the given element type.
func Scalar(dtype dtypes.DataType) Shape {
	return Shape{DType: dtype}
}

// Invalid returns the invalid Shape. Invalid().Ok() == false.
func Invalid() Shape { return Shape{} }

// Ok returns whether this is a valid Shape. The zero value Shape{} is
// invalid.
func (s Shape) Ok() bool { return s.DType.Valid() }

// Rank of the shape, that is, the number of dimensions.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape represents a scalar: a valid shape
// of rank 0.
func (s Shape) IsScalar() bool { return s.Ok() && s.Rank() == 0 }

// Dim returns the dimension of the given axis. Negative axes count from
// the end, so axis -1 is the last one. It panics on an out-of-bounds
// axis, like slice indexing would.
func (s Shape) Dim(axis int) int {
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += s.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjustedAxis]
}

// Size returns the number of elements of DType needed for this shape:
// the product of all dimensions, 1 for scalars (empty product).
func (s Shape) Size() (size int) {
	size = 1
	for _, d := range s.Dimensions {
		size *= d
	}
	return
}

// Memory returns the bytes needed to store a dense value of this shape.
func (s Shape) Memory() int {
	return s.DType.Size() * s.Size()
}

// Equal compares two shapes for equality: dtype and dimensions.
func (s Shape) Equal(s2 Shape) bool {
	if s.DType != s2.DType {
		return false
	}
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// EqualDimensions compares the dimensions only; dtypes may differ.
func (s Shape) EqualDimensions(s2 Shape) bool {
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// Clone returns a new deep copy of the shape.
func (s Shape) Clone() (s2 Shape) {
	s2.DType = s.DType
	s2.Dimensions = slices.Clone(s.Dimensions)
	return
}

// Shape returns a shallow copy of itself. It implements the HasShape
// interface.
func (s Shape) Shape() Shape { return s }

// HasShape is anything with an associated Shape: shapes themselves,
// definitions, uses.
type HasShape interface {
	Shape() Shape
}

// String implements fmt.Stringer, printing the form used by the textual
// listing: "f32[2,3]", or just "f32" for scalars.
func (s Shape) String() string {
	if !s.Ok() {
		return "invalid"
	}
	if s.IsScalar() {
		return s.DType.String()
	}
	dims := make([]string, len(s.Dimensions))
	for ii, dim := range s.Dimensions {
		dims[ii] = strconv.Itoa(dim)
	}
	return fmt.Sprintf("%s[%s]", s.DType, strings.Join(dims, ","))
}

// FromString parses a shape in the form printed by String.
func FromString(str string) (Shape, error) {
	open := strings.IndexByte(str, '[')
	if open < 0 {
		dtype, err := dtypes.FromString(str)
		if err != nil {
			return Invalid(), err
		}
		return Scalar(dtype), nil
	}
	dtype, err := dtypes.FromString(str[:open])
	if err != nil {
		return Invalid(), err
	}
	if !strings.HasSuffix(str, "]") {
		return Invalid(), fmt.Errorf("cannot parse shape from %q: missing closing bracket", str)
	}
	inner := str[open+1 : len(str)-1]
	var dims []int
	if inner != "" {
		for _, part := range strings.Split(inner, ",") {
			dim, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || dim < 0 {
				return Invalid(), fmt.Errorf("cannot parse shape from %q: bad dimension %q", str, part)
			}
			dims = append(dims, dim)
		}
	}
	return Make(dtype, dims...), nil
}
