// Package shapeinference calculates the shape resulting from every
// operation of the IR and validates its inputs.
//
// All functions here are pure: they take shapes, return a new shape or an
// error, and never mutate state. Instruction constructors in package ir
// call them to derive the shape of each definition, so shapes are never
// stored and mutated out of sync with their operands.
//
// Shape or dtype mismatches are hard errors identifying the operands and
// the rule violated. Historically this dialect fell back to the first
// operand's shape when broadcasting failed, leaving validation to the
// front end; that leniency masked genuine type errors and is gone.
package shapeinference

import (
	"slices"

	"github.com/pkg/errors"
	"github.com/tensorlang/tir/ops"
	"github.com/tensorlang/tir/types"
	"github.com/tensorlang/tir/types/dtypes"
	"github.com/tensorlang/tir/types/shapes"
)

var (
	// BooleanOperations take booleans as input, aka. logical operations.
	BooleanOperations = types.SetWith(
		ops.OpTypeAnd,
		ops.OpTypeOr,
		ops.OpTypeXor,
		ops.OpTypeNot,
	)

	// NumberOperations can take any integer or float as input.
	NumberOperations = types.SetWith(
		ops.OpTypeNeg,
		ops.OpTypeAbs,
		ops.OpTypeAdd,
		ops.OpTypeSub,
		ops.OpTypeMul,
		ops.OpTypeDiv,
		ops.OpTypeMod,
		ops.OpTypePow,
		ops.OpTypeMin,
		ops.OpTypeMax,
	)

	// FloatOperations operate only on floating point inputs.
	FloatOperations = types.SetWith(
		ops.OpTypeExp,
		ops.OpTypeLog,
		ops.OpTypeSqrt,
		ops.OpTypeTanh,
		ops.OpTypeSigmoid,
	)

	// StandardUnaryOperations have a single operand and preserve its
	// shape.
	StandardUnaryOperations = types.SetWith(
		ops.OpTypeNeg,
		ops.OpTypeAbs,
		ops.OpTypeExp,
		ops.OpTypeLog,
		ops.OpTypeSqrt,
		ops.OpTypeTanh,
		ops.OpTypeSigmoid,
		ops.OpTypeNot,
	)

	// StandardBinaryOperations have two operands, usually named lhs and
	// rhs, whose shapes are mutually broadcast.
	StandardBinaryOperations = types.SetWith(
		ops.OpTypeAdd,
		ops.OpTypeSub,
		ops.OpTypeMul,
		ops.OpTypeDiv,
		ops.OpTypeMod,
		ops.OpTypePow,
		ops.OpTypeMin,
		ops.OpTypeMax,
		ops.OpTypeAnd,
		ops.OpTypeOr,
		ops.OpTypeXor,
	)

	// ComparisonOperations broadcast like binary operations but return
	// booleans.
	ComparisonOperations = types.SetWith(
		ops.OpTypeEq,
		ops.OpTypeNe,
		ops.OpTypeLt,
		ops.OpTypeLe,
		ops.OpTypeGt,
		ops.OpTypeGe,
	)

	// ReduceOperations drop the reduced axes.
	ReduceOperations = types.SetWith(
		ops.OpTypeReduceSum,
		ops.OpTypeReduceProduct,
		ops.OpTypeReduceMin,
		ops.OpTypeReduceMax,
	)

	// ScanOperations preserve the operand shape.
	ScanOperations = types.SetWith(
		ops.OpTypeScanSum,
		ops.OpTypeScanProduct,
	)
)

// MutuallyBroadcast returns the shape two operands broadcast to, aligning
// from the trailing dimension: two dimensions are compatible if they are
// equal or either is 1, and the result takes the larger of each pair.
// The result is symmetric in its arguments. It returns an error if any
// pair mismatches and neither side is 1, or if the dtypes differ.
func MutuallyBroadcast(lhs, rhs shapes.Shape) (output shapes.Shape, err error) {
	if !lhs.Ok() || !rhs.Ok() {
		return shapes.Invalid(), errors.Errorf("invalid shape for broadcasting: %s and %s", lhs, rhs)
	}
	if lhs.DType != rhs.DType {
		return shapes.Invalid(), errors.Errorf("data types must match for broadcasting, got %s and %s", lhs, rhs)
	}
	rank := max(lhs.Rank(), rhs.Rank())
	output = shapes.Make(lhs.DType)
	output.Dimensions = make([]int, rank)
	for ii := 0; ii < rank; ii++ {
		// Align from the trailing axis; missing leading axes count as 1.
		lhsDim, rhsDim := 1, 1
		if ii < lhs.Rank() {
			lhsDim = lhs.Dimensions[lhs.Rank()-1-ii]
		}
		if ii < rhs.Rank() {
			rhsDim = rhs.Dimensions[rhs.Rank()-1-ii]
		}
		if lhsDim != 1 && rhsDim != 1 && lhsDim != rhsDim {
			return shapes.Invalid(), errors.Errorf(
				"dimensions of axis #%d (from the end) don't match and cannot be broadcast, got shapes %s and %s",
				ii, lhs, rhs)
		}
		output.Dimensions[rank-1-ii] = max(lhsDim, rhsDim)
	}
	return output, nil
}

// BinaryOp returns the output shape for ops in the
// StandardBinaryOperations set. It returns an error if the dtype is
// invalid for the operation class or if broadcasting fails.
func BinaryOp(opType ops.OpType, lhs, rhs shapes.Shape) (output shapes.Shape, err error) {
	if !StandardBinaryOperations.Has(opType) {
		return shapes.Invalid(), errors.Errorf(
			"operation %s is not in the StandardBinaryOperations set, cannot process it with BinaryOp", opType)
	}
	if err = checkOperandClass(opType, lhs); err != nil {
		return shapes.Invalid(), err
	}
	return MutuallyBroadcast(lhs, rhs)
}

// ComparisonOp returns the broadcast shape with dtype set to Bool, for
// comparison operations (eq, lt, ge, etc.).
func ComparisonOp(opType ops.OpType, lhs, rhs shapes.Shape) (output shapes.Shape, err error) {
	if !ComparisonOperations.Has(opType) {
		return shapes.Invalid(), errors.Errorf(
			"operation %s is not in the ComparisonOperations set, cannot process it with ComparisonOp", opType)
	}
	output, err = MutuallyBroadcast(lhs, rhs)
	if err != nil {
		return shapes.Invalid(), errors.Wrapf(err, "ComparisonOp %s", opType)
	}
	output.DType = dtypes.Bool
	return output, nil
}

// UnaryOp checks the validity of the dtype for StandardUnaryOperations
// and returns the output shape, which is the same as the operand.
func UnaryOp(opType ops.OpType, operand shapes.Shape) (output shapes.Shape, err error) {
	if !StandardUnaryOperations.Has(opType) {
		return shapes.Invalid(), errors.Errorf(
			"operation %s is not in the StandardUnaryOperations set, cannot process it with UnaryOp", opType)
	}
	if err = checkOperandClass(opType, operand); err != nil {
		return shapes.Invalid(), err
	}
	return operand, nil
}

// checkOperandClass validates the operand dtype against the class of the
// operation.
func checkOperandClass(opType ops.OpType, operand shapes.Shape) error {
	if !operand.Ok() {
		return errors.Errorf("invalid shape %s for operation %s", operand, opType)
	}
	if BooleanOperations.Has(opType) && !operand.DType.IsBool() {
		return errors.Errorf("logical operation %s must have boolean (bool) operands, got %s", opType, operand)
	}
	if NumberOperations.Has(opType) && !(operand.DType.IsInt() || operand.DType.IsFloat()) {
		return errors.Errorf("numeric operation %s must have number (i32, f64, ...) operands, got %s", opType, operand)
	}
	if FloatOperations.Has(opType) && !operand.DType.IsFloat() {
		return errors.Errorf("float operation %s must have float (f16, f32, f64) operands, got %s", opType, operand)
	}
	return nil
}

// MatMulOp returns the shape of a (batched) matrix multiplication: the
// two trailing axes are contracted (lhs columns against rhs rows) and the
// leading (batch) axes broadcast like binary elementwise operations do.
// A rank-1 rhs is treated as a column vector whose column axis is dropped
// from the result.
func MatMulOp(lhs, rhs shapes.Shape) (output shapes.Shape, err error) {
	if !lhs.Ok() || !rhs.Ok() {
		return shapes.Invalid(), errors.Errorf("invalid shape for MatMulOp: %s and %s", lhs, rhs)
	}
	if lhs.DType != rhs.DType {
		return shapes.Invalid(), errors.Errorf("data types must match for MatMulOp, got %s and %s", lhs, rhs)
	}
	if !lhs.DType.IsInt() && !lhs.DType.IsFloat() {
		return shapes.Invalid(), errors.Errorf("MatMulOp requires number operands, got %s", lhs)
	}
	if lhs.Rank() < 2 || rhs.Rank() < 1 {
		return shapes.Invalid(), errors.Errorf("MatMulOp requires lhs of rank >= 2 and rhs of rank >= 1, got %s and %s", lhs, rhs)
	}
	lhsRows, lhsCols := lhs.Dim(-2), lhs.Dim(-1)

	if rhs.Rank() == 1 {
		// Matrix × vector: contract lhs columns against the vector.
		if lhsCols != rhs.Dim(0) {
			return shapes.Invalid(), errors.Errorf(
				"MatMulOp inner dimensions must match, got %s (columns=%d) and %s (rows=%d)",
				lhs, lhsCols, rhs, rhs.Dim(0))
		}
		output = shapes.Make(lhs.DType, append(slices.Clone(lhs.Dimensions[:lhs.Rank()-2]), lhsRows)...)
		return output, nil
	}

	rhsRows, rhsCols := rhs.Dim(-2), rhs.Dim(-1)
	if lhsCols != rhsRows {
		return shapes.Invalid(), errors.Errorf(
			"MatMulOp inner dimensions must match, got %s (columns=%d) and %s (rows=%d)",
			lhs, lhsCols, rhs, rhsRows)
	}

	// Leading (batch) axes broadcast.
	lhsBatch := shapes.Make(lhs.DType, lhs.Dimensions[:lhs.Rank()-2]...)
	rhsBatch := shapes.Make(rhs.DType, rhs.Dimensions[:rhs.Rank()-2]...)
	batch, err := MutuallyBroadcast(lhsBatch, rhsBatch)
	if err != nil {
		return shapes.Invalid(), errors.Wrapf(err, "MatMulOp batch dimensions of %s and %s", lhs, rhs)
	}
	output = shapes.Make(lhs.DType, append(slices.Clone(batch.Dimensions), lhsRows, rhsCols)...)
	return output, nil
}

// TensorDotOp returns the shape of the generalized tensor multiplication
// (⊗): the full trailing axis of lhs is contracted against the full
// leading axis of rhs; the remaining axes are concatenated.
func TensorDotOp(lhs, rhs shapes.Shape) (output shapes.Shape, err error) {
	if !lhs.Ok() || !rhs.Ok() {
		return shapes.Invalid(), errors.Errorf("invalid shape for TensorDotOp: %s and %s", lhs, rhs)
	}
	if lhs.DType != rhs.DType {
		return shapes.Invalid(), errors.Errorf("data types must match for TensorDotOp, got %s and %s", lhs, rhs)
	}
	if lhs.Rank() < 1 || rhs.Rank() < 1 {
		return shapes.Invalid(), errors.Errorf("TensorDotOp requires operands of rank >= 1, got %s and %s", lhs, rhs)
	}
	if lhs.Dim(-1) != rhs.Dim(0) {
		return shapes.Invalid(), errors.Errorf(
			"TensorDotOp contraction dimensions must match, got %s (trailing=%d) and %s (leading=%d)",
			lhs, lhs.Dim(-1), rhs, rhs.Dim(0))
	}
	dims := make([]int, 0, lhs.Rank()+rhs.Rank()-2)
	dims = append(dims, lhs.Dimensions[:lhs.Rank()-1]...)
	dims = append(dims, rhs.Dimensions[1:]...)
	return shapes.Make(lhs.DType, dims...), nil
}

// ConcatenateOp calculates the output shape of a concatenation along
// axis: all inputs must agree on every dimension except the axis, whose
// output dimension is the sum of the inputs'.
func ConcatenateOp(inputs []shapes.Shape, axis int) (output shapes.Shape, err error) {
	if len(inputs) == 0 {
		return shapes.Invalid(), errors.Errorf("ConcatenateOp requires at least one input shape")
	}
	firstShape := inputs[0]
	if !firstShape.Ok() {
		return shapes.Invalid(), errors.Errorf("invalid shape %s for input #0 of ConcatenateOp", firstShape)
	}
	rank := firstShape.Rank()
	if axis < 0 || axis >= rank {
		return shapes.Invalid(), errors.Errorf("invalid concatenation axis %d for shapes with rank %d", axis, rank)
	}
	output = firstShape.Clone()
	for i := 1; i < len(inputs); i++ {
		currentShape := inputs[i]
		if currentShape.DType != firstShape.DType {
			return shapes.Invalid(), errors.Errorf("mismatched dtypes for ConcatenateOp: input #0 has %s, input #%d has %s",
				firstShape.DType, i, currentShape.DType)
		}
		if currentShape.Rank() != rank {
			return shapes.Invalid(), errors.Errorf("mismatched ranks for ConcatenateOp: input #0 has rank %d, input #%d has rank %d",
				rank, i, currentShape.Rank())
		}
		for d := 0; d < rank; d++ {
			if d == axis {
				output.Dimensions[d] += currentShape.Dimensions[d]
			} else if currentShape.Dimensions[d] != output.Dimensions[d] {
				return shapes.Invalid(), errors.Errorf(
					"mismatched dimensions for ConcatenateOp at axis %d (non-concatenation axis): input #0 has %d, input #%d has %d",
					d, firstShape.Dimensions[d], i, currentShape.Dimensions[d])
			}
		}
	}
	return output, nil
}

// ReduceOp returns the shape of a reduction over the given axes: the
// reduced axes are dropped. Reducing over no axes (nil) collapses the
// operand to a scalar.
func ReduceOp(operand shapes.Shape, axes []int) (output shapes.Shape, err error) {
	if !operand.Ok() {
		return shapes.Invalid(), errors.Errorf("invalid operand shape %s for ReduceOp", operand)
	}
	if len(axes) == 0 {
		return shapes.Scalar(operand.DType), nil
	}
	for _, axis := range axes {
		if axis < 0 || axis >= operand.Rank() {
			return shapes.Invalid(), errors.Errorf(
				"ReduceOp requires each axis to be 0 <= axis < rank, but got invalid axis %d for shape %s", axis, operand)
		}
	}
	axesSet := types.SetWith(axes...)
	if axesSet.Len() != len(axes) {
		return shapes.Invalid(), errors.Errorf("ReduceOp axes %v repeat an axis for shape %s", axes, operand)
	}
	output = shapes.Make(operand.DType)
	for axis, dim := range operand.Dimensions {
		if !axesSet.Has(axis) {
			output.Dimensions = append(output.Dimensions, dim)
		}
	}
	return output, nil
}

// ScanOp returns the shape of a scan (cumulative reduction) along axis:
// the operand shape, unchanged.
func ScanOp(operand shapes.Shape, axis int) (output shapes.Shape, err error) {
	if !operand.Ok() {
		return shapes.Invalid(), errors.Errorf("invalid operand shape %s for ScanOp", operand)
	}
	if axis < 0 || axis >= operand.Rank() {
		return shapes.Invalid(), errors.Errorf("ScanOp axis %d is out of range for shape %s", axis, operand)
	}
	return operand, nil
}

// TransposeOp permutes all axes of the operand. There must be one value
// in permutations for each axis: output.Dimensions[ii] =
// operand.Dimensions[permutations[ii]].
func TransposeOp(operand shapes.Shape, permutations []int) (output shapes.Shape, err error) {
	rank := operand.Rank()
	if len(permutations) != rank {
		return shapes.Invalid(), errors.Errorf(
			"TransposeOp requires all axes permutations to be defined, operand has shape %s, but %d permutations were given",
			operand, len(permutations))
	}
	if rank == 0 {
		return operand, nil
	}
	// Permutation axes must be within range and unique.
	axesSet := slices.Clone(permutations)
	slices.Sort(axesSet)
	for ii, srcAxis := range axesSet {
		if srcAxis < 0 || srcAxis >= rank {
			return shapes.Invalid(), errors.Errorf(
				"invalid permutation axis %d given to TransposeOp(%s), it must be within the range of its rank",
				srcAxis, operand)
		}
		if ii > 0 && srcAxis == axesSet[ii-1] {
			return shapes.Invalid(), errors.Errorf(
				"invalid permutations given to TransposeOp(%s, %v), each axis must appear exactly once",
				operand, permutations)
		}
	}
	output = operand.Clone()
	for axis := range output.Dimensions {
		output.Dimensions[axis] = operand.Dimensions[permutations[axis]]
	}
	return output, nil
}

// ElementOp returns the shape of extracting one element along the leading
// axis: that axis is dropped, the rest is unchanged. The index must be a
// scalar integer.
func ElementOp(operand, index shapes.Shape) (output shapes.Shape, err error) {
	if !operand.Ok() {
		return shapes.Invalid(), errors.Errorf("invalid operand shape %s for ElementOp", operand)
	}
	if operand.IsScalar() {
		return shapes.Invalid(), errors.Errorf("ElementOp requires a non-scalar operand, got %s", operand)
	}
	if !index.IsScalar() || !index.DType.IsInt() {
		return shapes.Invalid(), errors.Errorf("ElementOp index must be a scalar integer, got %s", index)
	}
	return shapes.Make(operand.DType, operand.Dimensions[1:]...), nil
}

// SubtensorOp returns the shape of extracting a sub-range of count
// elements along the leading axis: the leading dimension becomes count,
// the rest is unchanged. The start index must be a scalar integer.
func SubtensorOp(operand, start shapes.Shape, count int) (output shapes.Shape, err error) {
	if !operand.Ok() {
		return shapes.Invalid(), errors.Errorf("invalid operand shape %s for SubtensorOp", operand)
	}
	if operand.IsScalar() {
		return shapes.Invalid(), errors.Errorf("SubtensorOp requires a non-scalar operand, got %s", operand)
	}
	if !start.IsScalar() || !start.DType.IsInt() {
		return shapes.Invalid(), errors.Errorf("SubtensorOp start index must be a scalar integer, got %s", start)
	}
	if count <= 0 || count > operand.Dim(0) {
		return shapes.Invalid(), errors.Errorf(
			"SubtensorOp count %d is out of range for the leading dimension of %s", count, operand)
	}
	output = operand.Clone()
	output.Dimensions[0] = count
	return output, nil
}

// ReshapeOp returns the shape-cast of operand to the given dimensions.
// The total element counts must match.
func ReshapeOp(operand shapes.Shape, dims []int) (output shapes.Shape, err error) {
	if !operand.Ok() {
		return shapes.Invalid(), errors.Errorf("invalid operand shape %s for ReshapeOp", operand)
	}
	output = shapes.Make(operand.DType, dims...)
	if operand.Size() != output.Size() {
		return shapes.Invalid(), errors.Errorf(
			"ReshapeOp cannot reshape %s to dimensions %v, their total element counts don't match (%d vs %d)",
			operand, dims, operand.Size(), output.Size())
	}
	return output, nil
}

// ConvertOp returns the type-cast of operand to the target dtype: the
// shape is unchanged, the dtype is exactly the requested one.
func ConvertOp(operand shapes.Shape, dtype dtypes.DataType) (output shapes.Shape, err error) {
	if !operand.Ok() {
		return shapes.Invalid(), errors.Errorf("invalid operand shape %s for ConvertOp", operand)
	}
	if !dtype.Valid() {
		return shapes.Invalid(), errors.Errorf("invalid target data type for ConvertOp on %s", operand)
	}
	output = operand.Clone()
	output.DType = dtype
	return output, nil
}
