// Package ops defines the closed sets of operation (OpType) and control
// (ControlType) variants of the IR.
//
// The instruction set is deliberately closed: shape inference (package
// shapeinference) and the verifier switch exhaustively over these values,
// and backends map each variant to a target-specific sequence. Adding a
// variant means updating those switches, which the generated IsAOpType /
// IsAControlType helpers and the classification tables in shapeinference
// make mechanical.
package ops

// OpType identifies a value-producing operation. Operations never
// terminate a basic block; see ControlType for terminators.
type OpType int

//go:generate go tool enumer -type=OpType -trimprefix=OpType -transform=lower -output=gen_optype_enumer.go optype.go

const (
	OpTypeInvalid OpType = iota

	// Unary elementwise operations: shape preserved.
	OpTypeNeg
	OpTypeAbs
	OpTypeExp
	OpTypeLog
	OpTypeSqrt
	OpTypeTanh
	OpTypeSigmoid
	OpTypeNot

	// Binary elementwise operations: operand shapes are mutually
	// broadcast.
	OpTypeAdd
	OpTypeSub
	OpTypeMul
	OpTypeDiv
	OpTypeMod
	OpTypePow
	OpTypeMin
	OpTypeMax
	OpTypeAnd
	OpTypeOr
	OpTypeXor

	// Comparisons: broadcast like binary elementwise, result dtype Bool.
	OpTypeEq
	OpTypeNe
	OpTypeLt
	OpTypeLe
	OpTypeGt
	OpTypeGe

	// Reductions drop the reduced axes (all axes when none given); scans
	// preserve the operand shape.
	OpTypeReduceSum
	OpTypeReduceProduct
	OpTypeReduceMin
	OpTypeReduceMax
	OpTypeScanSum
	OpTypeScanProduct

	// Structural operations.
	OpTypeMatMul
	OpTypeTensorDot
	OpTypeConcatenate
	OpTypeTranspose
	OpTypeReshape
	OpTypeConvert
	OpTypeElement
	OpTypeSubtensor

	// Calls and the differentiation request.
	OpTypeIntrinsic
	OpTypeCall
	OpTypeDiff
)
