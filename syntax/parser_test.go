package syntax

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

// buildRich returns a module exercising every declaration and
// instruction form of the listing syntax.
func buildRich(t *testing.T) *ir.Module {
	m := ir.NewModule("demo")
	m.NewAlias("vec", MS(F32, 4))
	m.NewStruct("pair", []ir.Field{{Name: "x", Shape: MS(F32, 2)}, {Name: "y", Shape: shapes.Scalar(I32)}})
	m.NewEnum("mode", []string{"train", "eval"})
	w := m.NewVariable("w", MS(F32, 2), must1(ir.NewTensorLiteral(MS(F32, 2), []float64{1, 2})))
	m.NewPlaceholder("x", MS(F32, 2), false)
	xs := m.NewPlaceholder("xs", MS(F32, 2), true)

	loss := m.NewFunction("loss", shapes.Scalar(F32))
	p := loss.NewArgument("p", MS(F32, 2))
	le := loss.NewBlock("entry")
	sq := must1(ir.NewBinary("0", ops.OpTypeMul, ir.UseDef(p.Def()), ir.UseDef(p.Def())))
	le.Append(sq)
	total := must1(ir.NewReduce("1", ops.OpTypeReduceSum, ir.UseDef(sq.Def()), nil))
	le.Append(total)
	le.Append(must1(ir.NewReturn(ir.UseDef(total.Def()))))

	f := m.NewFunction("main", MS(F32, 2))
	a := f.NewArgument("a", MS(F32, 2, 2))
	i := f.NewArgument("i", shapes.Scalar(I32))
	entry := f.NewBlock("entry")
	stream := f.NewBlock("stream")
	acc := stream.NewArgument("acc", MS(F32, 2))
	body := f.NewBlock("body")
	e := body.NewArgument("e", MS(F32, 2))
	fin := f.NewBlock("fin")
	r := fin.NewArgument("r", MS(F32, 2))
	out := f.NewBlock("out")
	v := out.NewArgument("v", MS(F32, 2))

	mm := must1(ir.NewMatMul("0", ir.UseDef(a.Def()), ir.UseDef(a.Def())))
	entry.Append(mm)
	tr := must1(ir.NewTranspose("1", ir.UseDef(mm.Def()), []int{1, 0}))
	entry.Append(tr)
	rs := must1(ir.NewReshape("2", ir.UseDef(tr.Def()), []int{4}))
	entry.Append(rs)
	cv := must1(ir.NewConvert("3", ir.UseDef(i.Def()), F32))
	entry.Append(cv)
	tail := ir.UseLiteral(must1(ir.NewTensorLiteral(MS(F32, 4), []float64{1, 2, 3, 4})))
	cat := must1(ir.NewConcatenate("4", []ir.Use{ir.UseDef(rs.Def()), tail}, 0))
	entry.Append(cat)
	sub := must1(ir.NewSubtensor("5", ir.UseDef(cat.Def()), ir.UseDef(i.Def()), 2))
	entry.Append(sub)
	el := must1(ir.NewElement("6", ir.UseDef(mm.Def()), ir.UseDef(i.Def())))
	entry.Append(el)
	sc := must1(ir.NewScan("7", ops.OpTypeScanSum, ir.UseDef(sub.Def()), 0))
	entry.Append(sc)
	relu := must1(ir.NewIntrinsic("8", "relu", []ir.Use{ir.UseDef(sc.Def())}, MS(F32, 2)))
	entry.Append(relu)
	call := must1(ir.NewCall("9", loss, []ir.Use{ir.UseDef(relu.Def())}))
	entry.Append(call)
	grad := must1(ir.NewDiff("10", loss, 0))
	entry.Append(grad)
	small := must1(ir.NewComparison("11", ops.OpTypeLt, ir.UseDef(call.Def()), ir.UseScalar(F32, 1.5)))
	entry.Append(small)
	entry.Append(must1(ir.NewCondBranch(ir.UseDef(small.Def()),
		stream, []ir.Use{ir.UseDef(relu.Def())},
		out, []ir.Use{ir.UseDef(grad.Def())})))

	stream.Append(must1(ir.NewPull(xs, body, nil, fin, []ir.Use{ir.UseDef(acc.Def())})))

	upd := must1(ir.NewBinary("12", ops.OpTypeAdd, ir.UseDef(e.Def()), ir.UseDef(w.Def())))
	body.Append(upd)
	body.Append(must1(ir.NewContinue(stream, []ir.Use{ir.UseDef(upd.Def())})))

	flush := f.NewBlock("flush")
	s := flush.NewArgument("s", MS(F32, 2))
	flush.Append(must1(ir.NewStore(ir.UseDef(s.Def()), w)))

	fin.Append(must1(ir.NewYield(ir.UseDef(r.Def()), out, []ir.Use{ir.UseDef(r.Def())})))
	out.Append(must1(ir.NewReturn(ir.UseDef(v.Def()))))

	require.NoError(t, ir.Verify(m))
	return m
}

func TestRoundTrip(t *testing.T) {
	m := buildRich(t)
	text1 := m.String()

	m2, err := Parse(text1)
	require.NoError(t, err, "parsing:\n%s", text1)
	require.NoError(t, ir.Verify(m2))
	text2 := m2.String()
	assert.Equal(t, text1, text2)
}

func TestRoundTripFinished(t *testing.T) {
	m := buildRich(t)
	require.NoError(t, m.Finish())
	text := m.String()
	assert.Contains(t, text, "stage optimizable")

	m2, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, ir.StageOptimizable, m2.Stage())
	require.NoError(t, m2.RunTransform(ir.DeadCodeElimination()))
}

func TestParseListing(t *testing.T) {
	src := `
module @tiny stage raw

alias $vec = f32[3]

var @w: $vec = [0.5, 1, -2]:f32[3]

// Comments run to the end of the line.
func @scale(%x: $vec) -> f32[3] {
^entry:
  %0 = mul %x, @w : f32[3]
  %1 = add %0, 1e-3:f32 : f32[3]
  ret %1
}
`
	m, err := Parse(src)
	require.NoError(t, err)
	require.NoError(t, ir.Verify(m))
	assert.Equal(t, "tiny", m.Name())
	assert.Equal(t, ir.StageRaw, m.Stage())

	w := m.VariableByName("w")
	require.NotNil(t, w)
	assert.Equal(t, []float64{0.5, 1, -2}, w.Init().Values())

	f := m.FunctionByName("scale")
	require.NotNil(t, f)
	require.Len(t, f.Entry().Instructions(), 3)
	assert.True(t, f.Result().Equal(MS(F32, 3)))
}

func TestParseForwardBranch(t *testing.T) {
	src := `
module @fwd stage raw

func @pick(%c: bool, %a: f32) -> f32 {
^entry:
  condbr %c, ^yes, ^no
^yes:
  ret %a
^no:
  %0 = neg %a : f32
  ret %0
}
`
	m, err := Parse(src)
	require.NoError(t, err)
	require.NoError(t, ir.Verify(m))
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
	}{
		{"missing header", "func @f() { }"},
		{"bad stage", "module @m stage cooked"},
		{"unknown value", "module @m stage raw\nfunc @f() -> f32 {\n^entry:\n  ret %nope\n}"},
		{"unknown block", "module @m stage raw\nfunc @f() {\n^entry:\n  br ^nowhere\n}"},
		{"shape mismatch", "module @m stage raw\nfunc @f(%a: f32[2], %b: f32[3]) -> f32[2] {\n^entry:\n  %0 = add %a, %b : f32[2]\n  ret %0\n}"},
		{"wrong declared shape", "module @m stage raw\nfunc @f(%a: f32[2]) -> f32[2] {\n^entry:\n  %0 = neg %a : f32[3]\n  ret %0\n}"},
		{"duplicate label", "module @m stage raw\nfunc @f() {\n^entry:\n  ret\n^entry:\n  ret\n}"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			require.Error(t, err)
		})
	}
}
