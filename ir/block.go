package ir

import (
	"github.com/gomlx/exceptions"
	"github.com/tensorlang/tir/types/shapes"
)

// BasicBlock is an ordered, mutable sequence of Instructions plus an
// argument list. It is owned by exactly one Function. A well-formed
// block ends in exactly one control instruction, its terminator.
type BasicBlock struct {
	function     *Function
	name         string
	args         []*Argument
	instructions []*Instruction

	cache *analysisCache
}

// Function that owns this block, or nil if detached.
func (b *BasicBlock) Function() *Function { return b.function }

// Name of the block.
func (b *BasicBlock) Name() string { return b.name }

// Arguments of the block, in declaration order.
func (b *BasicBlock) Arguments() []*Argument { return b.args }

// Instructions of the block, in order. The slice is owned by the block.
func (b *BasicBlock) Instructions() []*Instruction { return b.instructions }

// NewArgument appends an argument to the block. Branches targeting the
// block pass one value per argument.
func (b *BasicBlock) NewArgument(name string, shape shapes.Shape) *Argument {
	a := &Argument{block: b}
	a.def = newDef(name, DefArgument, shape)
	b.args = append(b.args, a)
	b.mutated()
	return a
}

// Terminator returns the block's final control instruction, or nil if
// the block is empty or does not end in a control (i.e. is malformed or
// still under construction).
func (b *BasicBlock) Terminator() *Instruction {
	if len(b.instructions) == 0 {
		return nil
	}
	last := b.instructions[len(b.instructions)-1]
	if !last.IsControl() {
		return nil
	}
	return last
}

// Append adds an unattached instruction at the end of the block.
func (b *BasicBlock) Append(instr *Instruction) {
	b.InsertAt(len(b.instructions), instr)
}

// InsertAt inserts an unattached instruction at the given index.
func (b *BasicBlock) InsertAt(index int, instr *Instruction) {
	if instr.block != nil {
		exceptions.Panicf("instruction %s is already owned by block %q", instr, instr.block.name)
	}
	if index < 0 || index > len(b.instructions) {
		exceptions.Panicf("InsertAt(%d) out-of-bounds, block %q has %d instructions", index, b.name, len(b.instructions))
	}
	instr.block = b
	b.instructions = append(b.instructions, nil)
	copy(b.instructions[index+1:], b.instructions[index:])
	b.instructions[index] = instr
	b.mutated()
}

// InsertBefore inserts an unattached instruction before an existing one.
func (b *BasicBlock) InsertBefore(existing, instr *Instruction) {
	b.InsertAt(b.instructionIndex(existing), instr)
}

// InsertAfter inserts an unattached instruction after an existing one.
func (b *BasicBlock) InsertAfter(existing, instr *Instruction) {
	b.InsertAt(b.instructionIndex(existing)+1, instr)
}

// Remove detaches instr from the block. It does not touch the user-sets
// of the instruction's former operands: dead-definition elimination is a
// separate, explicit transform, never an implicit side effect of
// removal.
func (b *BasicBlock) Remove(instr *Instruction) {
	index := b.instructionIndex(instr)
	b.instructions = append(b.instructions[:index], b.instructions[index+1:]...)
	instr.block = nil
	b.mutated()
}

func (b *BasicBlock) instructionIndex(instr *Instruction) int {
	for ii, other := range b.instructions {
		if other == instr {
			return ii
		}
	}
	exceptions.Panicf("instruction %s is not owned by block %q", instr, b.name)
	return -1
}

// mutated invalidates the block's analysis caches and those of its
// ancestors.
func (b *BasicBlock) mutated() {
	b.cache.invalidate()
	if b.function != nil {
		b.function.mutated()
	}
}

// argShapes returns the shapes of the block's arguments, used by
// verifier checks of branch argument lists.
func (b *BasicBlock) argShapes() []shapes.Shape {
	result := make([]shapes.Shape, len(b.args))
	for ii, a := range b.args {
		result[ii] = a.def.shape
	}
	return result
}
