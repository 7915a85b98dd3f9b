package ir_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tensorlang/tir/ir"
	"github.com/tensorlang/tir/ops"
)

func TestModuleContainers(t *testing.T) {
	m, f := buildSample(t)

	assert.Equal(t, f, m.FunctionByName("addmul"))
	assert.Nil(t, m.FunctionByName("missing"))
	assert.NotNil(t, m.VariableByName("w"))

	g := m.NewFunction("helper", MS(F32, 2))
	require.Len(t, m.Functions(), 2)
	m.RemoveFunction(g)
	require.Len(t, m.Functions(), 1)

	// Insertion at an index keeps order.
	m.InsertFunctionAt(0, g)
	assert.Equal(t, "helper", m.Functions()[0].Name())
	assert.Equal(t, "addmul", m.Functions()[1].Name())
	m.RemoveFunction(g)
}

func TestBlockContainers(t *testing.T) {
	_, f := buildSample(t)
	entry := f.Entry()
	assert.Equal(t, "entry", entry.Name())
	assert.Equal(t, entry, f.BlockByName("entry"))

	b := f.NewBlock("extra")
	require.Len(t, f.Blocks(), 3)
	f.RemoveBlock(b)
	require.Len(t, f.Blocks(), 2)

	f.InsertBlockBefore(f.BlockByName("exit"), b)
	assert.Equal(t, "extra", f.Blocks()[1].Name())
	f.RemoveBlock(b)
}

func TestStageLifecycle(t *testing.T) {
	m, _ := buildSample(t)
	assert.Equal(t, ir.StageRaw, m.Stage())

	// Transforms are rejected until the module is finished.
	err := m.RunTransform(ir.DeadCodeElimination())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ir.ErrStageViolation))

	require.NoError(t, m.Finish())
	assert.Equal(t, ir.StageOptimizable, m.Stage())
	require.Error(t, m.Finish())

	require.NoError(t, m.RunTransform(ir.DeadCodeElimination()))
}

func TestAnalysisOf(t *testing.T) {
	_, f := buildSample(t)
	const kind = ir.AnalysisKind("instruction_count")
	computes := 0
	count := func() int {
		computes++
		n := 0
		for _, b := range f.Blocks() {
			n += len(b.Instructions())
		}
		return n
	}

	assert.Equal(t, 4, ir.AnalysisOf(f, kind, count))
	assert.Equal(t, 4, ir.AnalysisOf(f, kind, count))
	assert.Equal(t, 1, computes)

	// Mutations anywhere below the function invalidate the cache.
	entry := f.Entry()
	add := entry.Instructions()[0]
	neg := must1(ir.NewUnary("2", ops.OpTypeNeg, ir.UseDef(add.Def())))
	entry.InsertAfter(add, neg)
	assert.Equal(t, 5, ir.AnalysisOf(f, kind, count))
	assert.Equal(t, 2, computes)
}

func TestSymbolTable(t *testing.T) {
	_, f := buildSample(t)
	table := f.SymbolTable()
	assert.Contains(t, table, "a")
	assert.Contains(t, table, "b")
	assert.Contains(t, table, "r")
	assert.Contains(t, table, "0")
	assert.Contains(t, table, "1")
	assert.Equal(t, f.Arguments()[0].Def(), table["a"])

	// Mutations invalidate the cached analysis.
	add := f.Entry().Instructions()[0]
	neg := must1(ir.NewUnary("2", ops.OpTypeNeg, ir.UseDef(add.Def())))
	f.Entry().InsertAfter(add, neg)
	assert.Contains(t, f.SymbolTable(), "2")

	f.Entry().Remove(neg)
	neg.ReleaseUses()
	assert.NotContains(t, f.SymbolTable(), "2")
}
