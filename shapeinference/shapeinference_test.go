package shapeinference

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tensorlang/tir/ops"
	"github.com/tensorlang/tir/types/dtypes"
	"github.com/tensorlang/tir/types/shapes"
)

// Aliases
var (
	Bool = dtypes.Bool
	I32  = dtypes.Int32
	F32  = dtypes.Float32
	F64  = dtypes.Float64

	MS = shapes.Make
)

// must1 panics if there is an error.
func must1[T any](value T, err error) T {
	if err != nil {
		panic(err)
	}
	return value
}

func TestMutuallyBroadcast(t *testing.T) {
	// Commutative, and broadcast(A, A) == A.
	a := MS(F32, 2, 1, 3)
	b := MS(F32, 1, 4, 3)
	want := MS(F32, 2, 4, 3)
	require.True(t, want.Equal(must1(MutuallyBroadcast(a, b))))
	require.True(t, want.Equal(must1(MutuallyBroadcast(b, a))))
	require.True(t, a.Equal(must1(MutuallyBroadcast(a, a))))

	// Different ranks align from the trailing axis.
	require.True(t, MS(F32, 2, 3).Equal(must1(MutuallyBroadcast(MS(F32, 2, 3), MS(F32, 3)))))
	require.True(t, MS(F32, 2, 3).Equal(must1(MutuallyBroadcast(MS(F32), MS(F32, 2, 3)))))

	// Mismatching dimensions where neither side is 1 fail -- no lenient
	// fallback to the first operand's shape.
	_, err := MutuallyBroadcast(MS(F32, 2, 3), MS(F32, 3, 2))
	require.Error(t, err)

	// Mismatching dtypes fail.
	_, err = MutuallyBroadcast(MS(F32, 2), MS(F64, 2))
	require.Error(t, err)
}

func TestBinaryOp(t *testing.T) {
	// Invalid data types check.
	var err error
	_, err = BinaryOp(ops.OpTypeAnd, MS(I32, 2), MS(I32, 2))
	require.Error(t, err)
	_, err = BinaryOp(ops.OpTypeMul, MS(Bool, 1), MS(Bool, 1))
	require.Error(t, err)

	// Invalid operation type (not a binary op).
	_, err = BinaryOp(ops.OpTypeExp, MS(F32), MS(F32))
	require.Error(t, err)

	// Scalar with matrix.
	scalarShape := MS(F32)
	matrixShape := MS(F32, 2, 3)
	output, err := BinaryOp(ops.OpTypeAdd, scalarShape, matrixShape)
	require.NoError(t, err)
	require.True(t, matrixShape.Equal(output))

	// Broadcasting on both sides.
	require.True(t, MS(F32, 2, 4, 3).Equal(
		must1(BinaryOp(ops.OpTypeMul, MS(F32, 2, 1, 3), MS(F32, 1, 4, 3)))))

	// Logical ops on booleans are fine.
	require.True(t, MS(Bool, 2).Equal(must1(BinaryOp(ops.OpTypeAnd, MS(Bool, 2), MS(Bool, 2)))))

	// Invalid broadcast is a hard error.
	_, err = BinaryOp(ops.OpTypeAdd, MS(F32, 2, 3), MS(F32, 3, 2))
	require.Error(t, err)
}

func TestComparisonOp(t *testing.T) {
	output := must1(ComparisonOp(ops.OpTypeLt, MS(F32, 2, 1), MS(F32, 2, 3)))
	require.True(t, MS(Bool, 2, 3).Equal(output))

	_, err := ComparisonOp(ops.OpTypeAdd, MS(F32, 2), MS(F32, 2))
	require.Error(t, err)
}

func TestUnaryOp(t *testing.T) {
	// Invalid data types check.
	var err error
	_, err = UnaryOp(ops.OpTypeNot, MS(F32, 2))
	require.Error(t, err)
	_, err = UnaryOp(ops.OpTypeExp, MS(I32, 2))
	require.Error(t, err)

	// Invalid operation type (not a unary op).
	_, err = UnaryOp(ops.OpTypeAdd, MS(F32))
	require.Error(t, err)

	// Valid operations preserve the shape.
	floatShape := MS(F32, 2, 3)
	require.True(t, floatShape.Equal(must1(UnaryOp(ops.OpTypeExp, floatShape))))
	require.True(t, floatShape.Equal(must1(UnaryOp(ops.OpTypeNeg, floatShape))))
	boolShape := MS(Bool, 2)
	require.True(t, boolShape.Equal(must1(UnaryOp(ops.OpTypeNot, boolShape))))
}

func TestMatMulOp(t *testing.T) {
	// Plain matrix multiplication.
	require.True(t, MS(F32, 2, 5).Equal(must1(MatMulOp(MS(F32, 2, 3), MS(F32, 3, 5)))))

	// Batch dimension preserved: [4,2,3] x [3,5] -> [4,2,5].
	require.True(t, MS(F32, 4, 2, 5).Equal(must1(MatMulOp(MS(F32, 4, 2, 3), MS(F32, 3, 5)))))

	// Batch dimensions broadcast.
	require.True(t, MS(F32, 4, 6, 2, 5).Equal(
		must1(MatMulOp(MS(F32, 4, 1, 2, 3), MS(F32, 6, 3, 5)))))

	// Matrix x vector drops the column axis.
	require.True(t, MS(F32, 2).Equal(must1(MatMulOp(MS(F32, 2, 3), MS(F32, 3)))))

	// Inner dimension mismatch.
	_, err := MatMulOp(MS(F32, 2, 3), MS(F32, 4, 5))
	require.Error(t, err)

	// DType mismatch.
	_, err = MatMulOp(MS(F32, 2, 3), MS(F64, 3, 5))
	require.Error(t, err)
}

func TestTensorDotOp(t *testing.T) {
	// Full trailing axis contracted against full leading axis.
	require.True(t, MS(F32, 2, 3, 5, 6).Equal(
		must1(TensorDotOp(MS(F32, 2, 3, 4), MS(F32, 4, 5, 6)))))

	// Vector ⊗ vector contracts to a scalar.
	require.True(t, MS(F32).Equal(must1(TensorDotOp(MS(F32, 3), MS(F32, 3)))))

	_, err := TensorDotOp(MS(F32, 2, 3), MS(F32, 4, 5))
	require.Error(t, err)
}

func TestConcatenateOp(t *testing.T) {
	// [2,3] ++ [2,5] along axis 1 -> [2,8].
	output := must1(ConcatenateOp([]shapes.Shape{MS(F32, 2, 3), MS(F32, 2, 5)}, 1))
	require.True(t, MS(F32, 2, 8).Equal(output))

	// Along axis 0 it fails: non-axis dims 3 != 5.
	_, err := ConcatenateOp([]shapes.Shape{MS(F32, 2, 3), MS(F32, 2, 5)}, 0)
	require.Error(t, err)

	// Axis out of range.
	_, err = ConcatenateOp([]shapes.Shape{MS(F32, 2, 3)}, 2)
	require.Error(t, err)

	// DType mismatch.
	_, err = ConcatenateOp([]shapes.Shape{MS(F32, 2, 3), MS(F64, 2, 3)}, 1)
	require.Error(t, err)
}

func TestReduceAndScanOp(t *testing.T) {
	// Reducing over axis k drops one axis: rank r -> r-1.
	operand := MS(F32, 2, 3, 4)
	for axis := 0; axis < operand.Rank(); axis++ {
		output := must1(ReduceOp(operand, []int{axis}))
		require.Equal(t, operand.Rank()-1, output.Rank())
	}
	require.True(t, MS(F32, 2, 4).Equal(must1(ReduceOp(operand, []int{1}))))

	// Reducing over no axes collapses to a scalar.
	output := must1(ReduceOp(operand, nil))
	require.Equal(t, 0, output.Rank())
	require.True(t, output.IsScalar())

	// Out-of-range and repeated axes fail.
	_, err := ReduceOp(operand, []int{3})
	require.Error(t, err)
	_, err = ReduceOp(operand, []int{1, 1})
	require.Error(t, err)

	// Scan preserves the shape.
	require.True(t, operand.Equal(must1(ScanOp(operand, 1))))
	_, err = ScanOp(operand, 3)
	require.Error(t, err)
}

func TestTransposeOp(t *testing.T) {
	operand := MS(F32, 2, 3, 4)
	require.True(t, MS(F32, 4, 2, 3).Equal(must1(TransposeOp(operand, []int{2, 0, 1}))))

	// Wrong number of permutations, out-of-range and repeated axes.
	var err error
	_, err = TransposeOp(operand, []int{1, 0})
	require.Error(t, err)
	_, err = TransposeOp(operand, []int{0, 1, 3})
	require.Error(t, err)
	_, err = TransposeOp(operand, []int{0, 1, 1})
	require.Error(t, err)
}

func TestIndexingOps(t *testing.T) {
	operand := MS(F32, 5, 3, 2)
	index := MS(I32)

	// Element indexing drops the leading axis.
	require.True(t, MS(F32, 3, 2).Equal(must1(ElementOp(operand, index))))
	_, err := ElementOp(operand, MS(F32))
	require.Error(t, err)
	_, err = ElementOp(MS(F32), index)
	require.Error(t, err)

	// Subtensor indexing restricts the leading axis to count.
	require.True(t, MS(F32, 2, 3, 2).Equal(must1(SubtensorOp(operand, index, 2))))
	_, err = SubtensorOp(operand, index, 6)
	require.Error(t, err)
	_, err = SubtensorOp(operand, index, 0)
	require.Error(t, err)
}

func TestReshapeAndConvertOp(t *testing.T) {
	operand := MS(F32, 2, 3)

	// Shape-cast requires equal total element counts.
	require.True(t, MS(F32, 6).Equal(must1(ReshapeOp(operand, []int{6}))))
	require.True(t, MS(F32, 3, 2, 1).Equal(must1(ReshapeOp(operand, []int{3, 2, 1}))))
	_, err := ReshapeOp(operand, []int{4})
	require.Error(t, err)

	// Type-cast replaces the dtype, shape unchanged.
	output := must1(ConvertOp(operand, dtypes.Int32))
	require.True(t, MS(I32, 2, 3).Equal(output))
	_, err = ConvertOp(operand, dtypes.InvalidDType)
	require.Error(t, err)
}
