// Package codegen defines the contract between a finished module and
// backend code generators. Generators consume the module read-only; all
// rewriting happens before, through transforms.
package codegen

import (
	"unsafe"

	"github.com/pkg/errors"
	"github.com/tensorlang/tir/ir"
)

// Support bundles the runtime hooks a generated program calls back into
// for buffer management. Backends that manage their own memory may leave
// the hooks nil.
type Support struct {
	// Copy moves byteCount bytes between host buffers.
	Copy func(dst, src unsafe.Pointer, byteCount int)

	// Alloc returns a buffer of byteCount bytes.
	Alloc func(byteCount int) unsafe.Pointer

	// Free releases a buffer obtained from Alloc.
	Free func(buffer unsafe.Pointer)
}

// Generator lowers a module to an executable artifact.
type Generator interface {
	// Name identifies the backend, for logs and diagnostics.
	Name() string

	// Generate lowers the module. The module must have passed Prepare;
	// the generator must not mutate it.
	Generate(m *ir.Module, support Support) ([]byte, error)
}

// Prepare checks that a module is ready for code generation: it must be
// on the optimizable stage and pass verification.
func Prepare(m *ir.Module) error {
	if m.Stage() != ir.StageOptimizable {
		return errors.Errorf("module @%s is still under construction, call Finish first", m.Name())
	}
	if err := ir.Verify(m); err != nil {
		return errors.WithMessagef(err, "module @%s failed verification", m.Name())
	}
	return nil
}
