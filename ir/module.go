// Package ir defines the intermediate representation for tensor programs
// and the machinery to mutate it.
//
// The main elements in the package are:
//
//   - Module: the top-level unit, owning Functions, global Variables,
//     Placeholders and the named type tables. A Module moves through a
//     two-phase lifecycle (Stage): it is built in the raw stage and
//     becomes optimizable after Finish, the only stage in which transform
//     passes may run.
//
//   - Function: an ordered list of BasicBlocks plus an argument list and
//     an optional result shape.
//
//   - BasicBlock: an ordered list of Instructions plus an argument list.
//     Every well-formed block ends in exactly one control instruction.
//
//   - Instruction: either a value-producing Operation, whose result lives
//     in a Def, or a Control terminator. Operations derive their shape
//     from their operands through package shapeinference; shapes are
//     never stored independently of the operands they derive from.
//
//   - Def and Use: the use-def graph. A Def is an owned, named slot for a
//     value; a Use is a non-owning edge to a Def or an inline Literal.
//     Every Def tracks the set of instructions using it, which makes
//     replace-all-uses and dead-code elimination proportional to the
//     number of users rather than the size of the graph.
//
// The IR is single-threaded, mutation-in-place: a Module must not be
// shared across goroutines. Parallel compilation means one Module per
// goroutine.
package ir

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/tensorlang/tir/types/shapes"
)

// Stage of a Module's two-phase lifecycle: built raw, then optimizable.
type Stage int

//go:generate go tool enumer -type=Stage -trimprefix=Stage -transform=lower -output=gen_stage_enumer.go module.go

const (
	// StageRaw is the construction stage: the lowering front end is still
	// populating the module, and transform passes are rejected.
	StageRaw Stage = iota

	// StageOptimizable is reached through Module.Finish; transform
	// passes may run.
	StageOptimizable
)

// Module is the top-level unit of the IR.
type Module struct {
	name  string
	stage Stage

	functions    []*Function
	variables    []*Variable
	placeholders []*Placeholder
	structs      []*StructType
	enums        []*EnumType
	aliases      []*TypeAlias

	cache *analysisCache
}

// NewModule returns an empty Module in the raw stage.
func NewModule(name string) *Module {
	return &Module{name: name, cache: newAnalysisCache()}
}

// Name of the module.
func (m *Module) Name() string { return m.name }

// Stage of the module's lifecycle.
func (m *Module) Stage() Stage { return m.stage }

// Finish moves the module from the raw to the optimizable stage. It is
// an error to finish a module twice.
func (m *Module) Finish() error {
	if m.stage != StageRaw {
		return errors.Errorf("module %q is already in stage %s, Finish must be called exactly once", m.name, m.stage)
	}
	m.stage = StageOptimizable
	return nil
}

// Functions of the module, in insertion order. The returned slice is
// owned by the module and must not be mutated directly.
func (m *Module) Functions() []*Function { return m.functions }

// Variables (globals) of the module, in insertion order.
func (m *Module) Variables() []*Variable { return m.variables }

// Placeholders of the module, in insertion order.
func (m *Module) Placeholders() []*Placeholder { return m.placeholders }

// Structs of the module, in insertion order.
func (m *Module) Structs() []*StructType { return m.structs }

// Enums of the module, in insertion order.
func (m *Module) Enums() []*EnumType { return m.enums }

// Aliases of the module, in insertion order.
func (m *Module) Aliases() []*TypeAlias { return m.aliases }

// NewFunction creates a Function with the given name and result shape
// (shapes.Invalid() for none) and appends it to the module.
func (m *Module) NewFunction(name string, result shapes.Shape) *Function {
	f := &Function{module: m, name: name, result: result, cache: newAnalysisCache()}
	m.functions = append(m.functions, f)
	m.mutated()
	return f
}

// InsertFunctionAt inserts an unattached Function at the given index.
func (m *Module) InsertFunctionAt(index int, f *Function) {
	if f.module != nil {
		exceptions.Panicf("function %q is already owned by module %q", f.name, f.module.name)
	}
	if index < 0 || index > len(m.functions) {
		exceptions.Panicf("InsertFunctionAt(%d) out-of-bounds, module %q has %d functions", index, m.name, len(m.functions))
	}
	f.module = m
	m.functions = append(m.functions, nil)
	copy(m.functions[index+1:], m.functions[index:])
	m.functions[index] = f
	m.mutated()
}

// InsertFunctionBefore inserts an unattached Function before an existing
// one.
func (m *Module) InsertFunctionBefore(existing, f *Function) {
	m.InsertFunctionAt(m.functionIndex(existing), f)
}

// InsertFunctionAfter inserts an unattached Function after an existing
// one.
func (m *Module) InsertFunctionAfter(existing, f *Function) {
	m.InsertFunctionAt(m.functionIndex(existing)+1, f)
}

func (m *Module) functionIndex(f *Function) int {
	for ii, other := range m.functions {
		if other == f {
			return ii
		}
	}
	exceptions.Panicf("function %q is not owned by module %q", f.name, m.name)
	return -1
}

// RemoveFunction detaches f from the module. The function's definitions
// may still be referenced by diff or call instructions elsewhere; the
// verifier catches those danglers.
func (m *Module) RemoveFunction(f *Function) {
	for ii, other := range m.functions {
		if other == f {
			m.functions = append(m.functions[:ii], m.functions[ii+1:]...)
			f.module = nil
			m.mutated()
			return
		}
	}
	exceptions.Panicf("RemoveFunction: function %q is not owned by module %q", f.name, m.name)
}

// FunctionByName returns the function with the given name, or nil.
// Lookup is a linear scan: module-level tables are small.
func (m *Module) FunctionByName(name string) *Function {
	for _, f := range m.functions {
		if f.name == name {
			return f
		}
	}
	return nil
}

// NewVariable creates a global variable with an optional initial value
// and appends it to the module.
func (m *Module) NewVariable(name string, shape shapes.Shape, init *Literal) *Variable {
	v := &Variable{module: m, init: init}
	v.def = newDef(name, DefGlobal, shape)
	m.variables = append(m.variables, v)
	m.mutated()
	return v
}

// VariableByName returns the global variable with the given name, or
// nil. Linear scan, as for FunctionByName.
func (m *Module) VariableByName(name string) *Variable {
	for _, v := range m.variables {
		if v.def.name == name {
			return v
		}
	}
	return nil
}

// NewPlaceholder creates an input placeholder. Recurrent placeholders
// are streams read with the pull control; non-recurrent ones are plain
// inputs.
func (m *Module) NewPlaceholder(name string, shape shapes.Shape, recurrent bool) *Placeholder {
	p := &Placeholder{module: m, recurrent: recurrent}
	p.def = newDef(name, DefPlaceholder, shape)
	m.placeholders = append(m.placeholders, p)
	m.mutated()
	return p
}

// PlaceholderByName returns the placeholder with the given name, or nil.
func (m *Module) PlaceholderByName(name string) *Placeholder {
	for _, p := range m.placeholders {
		if p.def.name == name {
			return p
		}
	}
	return nil
}

// NewStruct appends a named struct type to the module's type table.
func (m *Module) NewStruct(name string, fields []Field) *StructType {
	s := &StructType{Name: name, Fields: fields}
	m.structs = append(m.structs, s)
	m.mutated()
	return s
}

// NewEnum appends a named enum type to the module's type table.
func (m *Module) NewEnum(name string, cases []string) *EnumType {
	e := &EnumType{Name: name, Cases: cases}
	m.enums = append(m.enums, e)
	m.mutated()
	return e
}

// NewAlias appends a named type alias to the module's type table.
func (m *Module) NewAlias(name string, target shapes.Shape) *TypeAlias {
	a := &TypeAlias{Name: name, Target: target}
	m.aliases = append(m.aliases, a)
	m.mutated()
	return a
}

// AliasByName returns the type alias with the given name, or nil.
func (m *Module) AliasByName(name string) *TypeAlias {
	for _, a := range m.aliases {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Variable is a module-level mutable global, written with the store
// control.
type Variable struct {
	module *Module
	def    *Def
	init   *Literal
}

// Def of the variable: the slot store instructions and operand uses
// refer to.
func (v *Variable) Def() *Def { return v.def }

// Name of the variable.
func (v *Variable) Name() string { return v.def.name }

// Shape of the variable.
func (v *Variable) Shape() shapes.Shape { return v.def.shape }

// Init returns the initial value, or nil.
func (v *Variable) Init() *Literal { return v.init }

// Placeholder is a module-level input slot. A recurrent placeholder is a
// stream of tensors consumed one element at a time by the pull control.
type Placeholder struct {
	module    *Module
	def       *Def
	recurrent bool
}

// Def of the placeholder.
func (p *Placeholder) Def() *Def { return p.def }

// Name of the placeholder.
func (p *Placeholder) Name() string { return p.def.name }

// Shape of the placeholder. For a recurrent placeholder this is the
// shape of one element of the stream.
func (p *Placeholder) Shape() shapes.Shape { return p.def.shape }

// Recurrent returns whether the placeholder is a stream.
func (p *Placeholder) Recurrent() bool { return p.recurrent }

// Field of a StructType.
type Field struct {
	Name  string
	Shape shapes.Shape
}

// StructType is a named aggregate in the module's type table.
type StructType struct {
	Name   string
	Fields []Field
}

// EnumType is a named enumeration in the module's type table.
type EnumType struct {
	Name  string
	Cases []string
}

// TypeAlias names a shape in the module's type table.
type TypeAlias struct {
	Name   string
	Target shapes.Shape
}

// mutated invalidates the module-level analysis caches. Children call it
// after their own invalidation, so that a mutation anywhere invalidates
// every cache from the mutated container up to the module.
func (m *Module) mutated() {
	m.cache.invalidate()
}
