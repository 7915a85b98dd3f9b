package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tensorlang/tir/codegen"
	"github.com/tensorlang/tir/ir"
	"github.com/tensorlang/tir/types/dtypes"
	"github.com/tensorlang/tir/types/shapes"
)

func TestPrepare(t *testing.T) {
	m := ir.NewModule("m")
	f := m.NewFunction("id", shapes.Make(dtypes.Float32, 2))
	a := f.NewArgument("a", shapes.Make(dtypes.Float32, 2))
	entry := f.NewBlock("entry")
	ret, err := ir.NewReturn(ir.UseDef(a.Def()))
	require.NoError(t, err)
	entry.Append(ret)

	// Raw modules are not ready for code generation.
	require.Error(t, codegen.Prepare(m))

	require.NoError(t, m.Finish())
	require.NoError(t, codegen.Prepare(m))

	// A broken module is rejected even when finished.
	f.NewBlock("empty")
	require.Error(t, codegen.Prepare(m))
}
