package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuleString(t *testing.T) {
	m, _ := buildSample(t)
	text := m.String()

	assert.Contains(t, text, "module @main stage raw")
	assert.Contains(t, text, "var @w: f32[2,3]")
	assert.Contains(t, text, "func @addmul(%a: f32[2,3], %b: f32[2,3]) -> f32[2,3] {")
	assert.Contains(t, text, "^entry:")
	assert.Contains(t, text, "  %0 = add %a, %b : f32[2,3]")
	assert.Contains(t, text, "  %1 = mul %0, @w : f32[2,3]")
	assert.Contains(t, text, "  br ^exit(%1)")
	assert.Contains(t, text, "^exit(%r: f32[2,3]):")
	assert.Contains(t, text, "  ret %r")
}
