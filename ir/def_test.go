package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tensorlang/tir/ir"
	"github.com/tensorlang/tir/ops"
	"github.com/tensorlang/tir/types/dtypes"
	"github.com/tensorlang/tir/types/shapes"
)

// Aliases
var (
	F32 = dtypes.Float32
	I32 = dtypes.Int32

	MS = shapes.Make
)

// must1 panics if there is an error.
func must1[T any](value T, err error) T {
	if err != nil {
		panic(err)
	}
	return value
}

// buildSample returns a module with one global and one two-block
// function:
//
//	func @addmul(%a: f32[2,3], %b: f32[2,3]) -> f32[2,3] {
//	^entry:
//	  %0 = add %a, %b : f32[2,3]
//	  %1 = mul %0, @w : f32[2,3]
//	  br ^exit(%1)
//	^exit(%r: f32[2,3]):
//	  ret %r
//	}
func buildSample(t *testing.T) (*ir.Module, *ir.Function) {
	m := ir.NewModule("main")
	w := m.NewVariable("w", MS(F32, 2, 3), nil)
	f := m.NewFunction("addmul", MS(F32, 2, 3))
	a := f.NewArgument("a", MS(F32, 2, 3))
	b := f.NewArgument("b", MS(F32, 2, 3))
	entry := f.NewBlock("entry")
	exit := f.NewBlock("exit")
	r := exit.NewArgument("r", MS(F32, 2, 3))

	add := must1(ir.NewBinary("0", ops.OpTypeAdd, ir.UseDef(a.Def()), ir.UseDef(b.Def())))
	entry.Append(add)
	mul := must1(ir.NewBinary("1", ops.OpTypeMul, ir.UseDef(add.Def()), ir.UseDef(w.Def())))
	entry.Append(mul)
	entry.Append(must1(ir.NewBranch(exit, []ir.Use{ir.UseDef(mul.Def())})))
	exit.Append(must1(ir.NewReturn(ir.UseDef(r.Def()))))

	require.NoError(t, ir.Verify(m))
	return m, f
}

func TestLiterals(t *testing.T) {
	half := ir.NewScalarLiteral(F32, 0.5)
	assert.Equal(t, "0.5:f32", half.String())
	assert.True(t, half.Shape().IsScalar())

	vec := must1(ir.NewTensorLiteral(MS(I32, 3), []float64{1, 2, 3}))
	assert.Equal(t, "[1,2,3]:i32[3]", vec.String())

	// Values are quantized to the literal's dtype.
	trunc := ir.NewScalarLiteral(I32, 2.7)
	assert.Equal(t, 2.0, trunc.Value())

	_, err := ir.NewTensorLiteral(MS(I32, 3), []float64{1, 2})
	require.Error(t, err)
}

func TestUseEqual(t *testing.T) {
	m := ir.NewModule("m")
	v := m.NewVariable("v", MS(F32, 2), nil)
	w := m.NewVariable("w", MS(F32, 2), nil)

	assert.True(t, ir.UseDef(v.Def()).Equal(ir.UseDef(v.Def())))
	assert.False(t, ir.UseDef(v.Def()).Equal(ir.UseDef(w.Def())))

	// Literal uses compare structurally.
	assert.True(t, ir.UseScalar(F32, 1.5).Equal(ir.UseScalar(F32, 1.5)))
	assert.False(t, ir.UseScalar(F32, 1.5).Equal(ir.UseScalar(F32, 2)))
	assert.False(t, ir.UseScalar(F32, 1.5).Equal(ir.UseDef(v.Def())))
}

func TestSubstituteUseReplacesAllOccurrences(t *testing.T) {
	m := ir.NewModule("m")
	f := m.NewFunction("f", MS(F32, 2))
	a := f.NewArgument("a", MS(F32, 2))
	b := f.NewArgument("b", MS(F32, 2))
	entry := f.NewBlock("entry")

	// %0 = add %a, %a: the same value twice.
	add := must1(ir.NewBinary("0", ops.OpTypeAdd, ir.UseDef(a.Def()), ir.UseDef(a.Def())))
	entry.Append(add)
	assert.Equal(t, 1, a.Def().NumUsers())

	n := add.SubstituteUse(ir.UseDef(a.Def()), ir.UseDef(b.Def()))
	assert.Equal(t, 2, n)
	for _, u := range add.Operands() {
		assert.Equal(t, b.Def(), u.Def())
	}

	// SubstituteUse does no bookkeeping, ReplaceUsesOf does.
	assert.Equal(t, 1, a.Def().NumUsers())
	n = add.ReplaceUsesOf(b.Def(), ir.UseDef(a.Def()))
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, a.Def().NumUsers())
	assert.Equal(t, 0, b.Def().NumUsers())
}

func TestReplaceAllUsesWith(t *testing.T) {
	_, f := buildSample(t)
	entry := f.Entry()
	add := entry.Instructions()[0]
	mul := entry.Instructions()[1]
	a := f.Arguments()[0]

	// Replace %0 (the add) with %a everywhere.
	add.Def().ReplaceAllUsesWith(ir.UseDef(a.Def()))
	assert.Equal(t, 0, add.Def().NumUsers())
	assert.Equal(t, a.Def(), mul.Operands()[0].Def())
	assert.True(t, a.Def().Users().Has(mul))

	// Replacing with a literal drops the graph edge entirely.
	mulUsers := mul.Def().NumUsers()
	require.Equal(t, 1, mulUsers)
	mul.Def().ReplaceAllUsesWith(ir.UseScalar(F32, 0))
	assert.Equal(t, 0, mul.Def().NumUsers())
	br := entry.Terminator()
	assert.True(t, br.Operands()[0].IsLiteral())
}

func TestRemovalProtocol(t *testing.T) {
	_, f := buildSample(t)
	entry := f.Entry()
	add := entry.Instructions()[0]
	mul := entry.Instructions()[1]

	// Removing from the block detaches but keeps the use-def edges, so
	// the instruction can be re-inserted elsewhere.
	entry.Remove(mul)
	assert.Nil(t, mul.Block())
	assert.Equal(t, 1, add.Def().NumUsers())

	entry.InsertAfter(add, mul)
	assert.Equal(t, entry, mul.Block())
	require.NoError(t, ir.Verify(f.Module()))

	// ReleaseUses requires the instruction to be detached first.
	require.Panics(t, func() { mul.ReleaseUses() })
	entry.Remove(mul)
	mul.ReleaseUses()
	assert.Equal(t, 0, add.Def().NumUsers())
}

func TestInsertionOwnership(t *testing.T) {
	_, f := buildSample(t)
	entry := f.Entry()
	add := entry.Instructions()[0]

	// An instruction cannot be inserted while still owned by a block.
	require.Panics(t, func() { entry.Append(add) })

	other := f.Blocks()[1]
	require.Panics(t, func() { other.Append(add) })
}
