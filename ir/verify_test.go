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

func TestVerifySample(t *testing.T) {
	m, _ := buildSample(t)
	require.NoError(t, ir.Verify(m))
}

func TestVerifyEmptyBlock(t *testing.T) {
	m, f := buildSample(t)
	f.NewBlock("empty")
	err := ir.Verify(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestVerifyDanglingOperand(t *testing.T) {
	m, f := buildSample(t)
	entry := f.Entry()
	add := entry.Instructions()[0]

	// Detaching the producer while its user stays behind leaves a
	// dangling reference.
	entry.Remove(add)
	err := ir.Verify(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dangling")
}

func TestVerifyMisplacedControl(t *testing.T) {
	m, f := buildSample(t)
	entry := f.Entry()
	mul := entry.Instructions()[1]

	extra := must1(ir.NewUnary("9", ops.OpTypeNeg, ir.UseDef(mul.Def())))
	entry.Append(extra) // after the terminator
	err := ir.Verify(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "control")
}

func TestVerifyBranchArgs(t *testing.T) {
	m, f := buildSample(t)
	entry := f.Entry()
	exit := f.BlockByName("exit")

	// A branch passing the wrong number of values to the target.
	br := entry.Terminator()
	entry.Remove(br)
	br.ReleaseUses()
	entry.Append(must1(ir.NewBranch(exit, nil)))
	err := ir.Verify(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects")
}

func TestVerifyCallArgs(t *testing.T) {
	m := ir.NewModule("m")
	w := m.NewVariable("w", MS(F32, 5), nil)

	loss := m.NewFunction("loss", shapes.Scalar(F32))
	p := loss.NewArgument("p", MS(F32, 2))
	le := loss.NewBlock("entry")
	sq := must1(ir.NewBinary("0", ops.OpTypeMul, ir.UseDef(p.Def()), ir.UseDef(p.Def())))
	le.Append(sq)
	total := must1(ir.NewReduce("1", ops.OpTypeReduceSum, ir.UseDef(sq.Def()), nil))
	le.Append(total)
	le.Append(must1(ir.NewReturn(ir.UseDef(total.Def()))))

	f := m.NewFunction("main", shapes.Scalar(F32))
	x := f.NewArgument("x", MS(F32, 2))
	entry := f.NewBlock("entry")
	call := must1(ir.NewCall("2", loss, []ir.Use{ir.UseDef(x.Def())}))
	entry.Append(call)
	entry.Append(must1(ir.NewReturn(ir.UseDef(call.Def()))))
	require.NoError(t, ir.Verify(m))

	// Substitution can retarget a call argument after construction; the
	// verifier must re-check it against the callee's signature.
	x.Def().ReplaceAllUsesWith(ir.UseDef(w.Def()))
	err := ir.Verify(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects")
}

func TestControlConstructors(t *testing.T) {
	m, f := buildSample(t)
	entry := f.Entry()
	add := entry.Instructions()[0]
	exit := f.BlockByName("exit")

	// condbr requires a scalar boolean condition.
	_, err := ir.NewCondBranch(ir.UseDef(add.Def()), exit, nil, exit, nil)
	require.Error(t, err)

	// store requires matching shapes.
	w := m.VariableByName("w")
	_, err = ir.NewStore(ir.UseScalar(F32, 1), w)
	require.Error(t, err)

	// pull requires a recurrent placeholder.
	plain := m.NewPlaceholder("x", MS(F32, 3), false)
	_, err = ir.NewPull(plain, entry, nil, exit, nil)
	require.Error(t, err)
}

func TestVerifyYieldResult(t *testing.T) {
	// Yielding functions must declare a result, it is the shape of the
	// output stream every yield is checked against.
	m := ir.NewModule("m")
	f := m.NewFunction("emit", shapes.Invalid())
	a := f.NewArgument("a", MS(F32, 2))
	entry := f.NewBlock("entry")
	done := f.NewBlock("done")
	entry.Append(must1(ir.NewYield(ir.UseDef(a.Def()), done, nil)))
	done.Append(must1(ir.NewReturn()))
	err := ir.Verify(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declares no result")

	// With a declared result, mismatched yield values are rejected.
	m2 := ir.NewModule("m")
	g := m2.NewFunction("emit", shapes.Scalar(F32))
	b := g.NewArgument("a", MS(F32, 2))
	e2 := g.NewBlock("entry")
	d2 := g.NewBlock("done")
	e2.Append(must1(ir.NewYield(ir.UseDef(b.Def()), d2, nil)))
	d2.Append(must1(ir.NewReturn(ir.UseScalar(F32, 0))))
	err = ir.Verify(m2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yield value")
}

func TestVerifyPullBody(t *testing.T) {
	m := ir.NewModule("stream")
	xs := m.NewPlaceholder("xs", MS(F32, 3), true)
	f := m.NewFunction("consume", MS(F32, 3))
	head := f.NewBlock("head")
	body := f.NewBlock("body")
	done := f.NewBlock("done")
	elem := body.NewArgument("e", MS(F32, 3))
	acc := f.NewArgument("acc", MS(F32, 3))

	head.Append(must1(ir.NewPull(xs, body, nil, done, nil)))
	sum := must1(ir.NewBinary("0", ops.OpTypeAdd, ir.UseDef(elem.Def()), ir.UseDef(acc.Def())))
	body.Append(sum)
	body.Append(must1(ir.NewContinue(head, nil)))
	done.Append(must1(ir.NewReturn(ir.UseDef(acc.Def()))))
	require.NoError(t, ir.Verify(m))

	// The body's first argument must carry the pulled element's shape.
	bad := ir.NewModule("stream")
	badXs := bad.NewPlaceholder("xs", MS(F32, 3), true)
	g := bad.NewFunction("consume", MS(F32, 3))
	h := g.NewBlock("head")
	bb := g.NewBlock("body")
	dd := g.NewBlock("done")
	bb.NewArgument("e", MS(dtypes.Float64, 3))
	h.Append(must1(ir.NewPull(badXs, bb, nil, dd, nil)))
	bb.Append(must1(ir.NewContinue(h, nil)))
	dd.Append(must1(ir.NewReturn(ir.UseScalar(F32, 0))))
	err := ir.Verify(bad)
	require.Error(t, err)
}
