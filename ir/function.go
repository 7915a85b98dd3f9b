package ir

import (
	"github.com/gomlx/exceptions"
	"github.com/tensorlang/tir/types/shapes"
)

// Function is an ordered, mutable sequence of BasicBlocks plus an
// argument list, a name and an optional result shape. It is owned by
// exactly one Module.
type Function struct {
	module *Module
	name   string
	args   []*Argument
	result shapes.Shape // shapes.Invalid() for functions without a result.
	blocks []*BasicBlock

	cache *analysisCache
}

// Module that owns this function, or nil if detached.
func (f *Function) Module() *Module { return f.module }

// Name of the function.
func (f *Function) Name() string { return f.name }

// Result shape of the function; Ok() is false for functions without a
// result.
func (f *Function) Result() shapes.Shape { return f.result }

// Arguments of the function, in declaration order. The slice is owned by
// the function.
func (f *Function) Arguments() []*Argument { return f.args }

// Blocks of the function, in insertion order. The slice is owned by the
// function.
func (f *Function) Blocks() []*BasicBlock { return f.blocks }

// Entry returns the first basic block, or nil for an empty function.
func (f *Function) Entry() *BasicBlock {
	if len(f.blocks) == 0 {
		return nil
	}
	return f.blocks[0]
}

// NewArgument appends an argument to the function's signature.
func (f *Function) NewArgument(name string, shape shapes.Shape) *Argument {
	a := &Argument{function: f}
	a.def = newDef(name, DefArgument, shape)
	f.args = append(f.args, a)
	f.mutated()
	return a
}

// NewBlock creates a BasicBlock and appends it to the function.
func (f *Function) NewBlock(name string) *BasicBlock {
	b := &BasicBlock{function: f, name: name, cache: newAnalysisCache()}
	f.blocks = append(f.blocks, b)
	f.mutated()
	return b
}

// InsertBlockAt inserts an unattached block at the given index.
func (f *Function) InsertBlockAt(index int, b *BasicBlock) {
	if b.function != nil {
		exceptions.Panicf("block %q is already owned by function %q", b.name, b.function.name)
	}
	if index < 0 || index > len(f.blocks) {
		exceptions.Panicf("InsertBlockAt(%d) out-of-bounds, function %q has %d blocks", index, f.name, len(f.blocks))
	}
	b.function = f
	f.blocks = append(f.blocks, nil)
	copy(f.blocks[index+1:], f.blocks[index:])
	f.blocks[index] = b
	f.mutated()
}

// InsertBlockBefore inserts an unattached block before an existing one.
func (f *Function) InsertBlockBefore(existing, b *BasicBlock) {
	f.InsertBlockAt(f.blockIndex(existing), b)
}

// InsertBlockAfter inserts an unattached block after an existing one.
func (f *Function) InsertBlockAfter(existing, b *BasicBlock) {
	f.InsertBlockAt(f.blockIndex(existing)+1, b)
}

// RemoveBlock detaches b from the function. Instructions in the block
// keep their user-set registrations; run dead-code elimination to drop
// them.
func (f *Function) RemoveBlock(b *BasicBlock) {
	index := f.blockIndex(b)
	f.blocks = append(f.blocks[:index], f.blocks[index+1:]...)
	b.function = nil
	f.mutated()
}

// BlockByName returns the block with the given name, or nil.
func (f *Function) BlockByName(name string) *BasicBlock {
	for _, b := range f.blocks {
		if b.name == name {
			return b
		}
	}
	return nil
}

func (f *Function) blockIndex(b *BasicBlock) int {
	for ii, other := range f.blocks {
		if other == b {
			return ii
		}
	}
	exceptions.Panicf("block %q is not owned by function %q", b.name, f.name)
	return -1
}

// mutated invalidates the function's analysis caches and those of its
// ancestors.
func (f *Function) mutated() {
	f.cache.invalidate()
	if f.module != nil {
		f.module.mutated()
	}
}

// Argument is a named input slot of a Function or a BasicBlock.
type Argument struct {
	def      *Def
	function *Function
	block    *BasicBlock
}

// Def of the argument.
func (a *Argument) Def() *Def { return a.def }

// Name of the argument.
func (a *Argument) Name() string { return a.def.name }

// Shape of the argument.
func (a *Argument) Shape() shapes.Shape { return a.def.shape }
