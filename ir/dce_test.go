package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tensorlang/tir/ir"
	"github.com/tensorlang/tir/ops"
)

func TestDeadCodeElimination(t *testing.T) {
	m, f := buildSample(t)
	entry := f.Entry()
	add := entry.Instructions()[0]

	// A dead chain: %3 uses %2, nothing uses %3.
	dead1 := must1(ir.NewUnary("2", ops.OpTypeNeg, ir.UseDef(add.Def())))
	entry.InsertAfter(add, dead1)
	dead2 := must1(ir.NewUnary("3", ops.OpTypeExp, ir.UseDef(dead1.Def())))
	entry.InsertAfter(dead1, dead2)
	require.Len(t, entry.Instructions(), 5)

	table := f.SymbolTable()
	assert.Contains(t, table, "3")

	// Dangling uses do not delete producers implicitly; only the
	// explicit transform does.
	require.NoError(t, m.Finish())
	require.NoError(t, m.RunTransform(ir.DeadCodeElimination()))
	require.Len(t, entry.Instructions(), 3)
	assert.Equal(t, add, entry.Instructions()[0])
	require.NoError(t, ir.Verify(m))

	// The cached symbol table was invalidated by the mutation.
	table = f.SymbolTable()
	assert.NotContains(t, table, "2")
	assert.NotContains(t, table, "3")

	// The live chain feeding the terminator is untouched.
	require.NoError(t, m.RunTransform(ir.DeadCodeElimination()))
	require.Len(t, entry.Instructions(), 3)
}
