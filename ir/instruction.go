package ir

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/tensorlang/tir/ops"
	"github.com/tensorlang/tir/shapeinference"
	"github.com/tensorlang/tir/types/dtypes"
	"github.com/tensorlang/tir/types/shapes"
)

// Instruction is either a value-producing Operation or a Control
// terminator; the classification is closed and every consumer switches
// exhaustively over ops.OpType / ops.ControlType.
//
// Operation instructions own the Def holding their result; its shape is
// derived from the operands at construction time and never mutated
// independently. Control instructions have no Def.
//
// All operands (including values passed to successor blocks) live in a
// single flat operand list, so substitution covers every edge of the
// use-def graph uniformly.
type Instruction struct {
	block *BasicBlock

	def     *Def
	opType  ops.OpType
	control ops.ControlType

	operands []Use

	// Operation attributes. Only the fields relevant to opType are set.
	axes        []int
	axis        int
	count       int
	perm        []int
	targetShape shapes.Shape
	targetDType dtypes.DataType
	callee      *Function
	argIndex    int
	intrinsic   string

	// Control attributes.
	succs         []*BasicBlock
	succArgCounts [2]int
	global        *Variable
	placeholder   *Placeholder
}

// Block that owns this instruction, or nil if detached.
func (i *Instruction) Block() *BasicBlock { return i.block }

// IsControl returns whether the instruction is a control (terminator).
func (i *Instruction) IsControl() bool { return i.control != ops.ControlInvalid }

// OpType of an operation instruction; ops.OpTypeInvalid for controls.
func (i *Instruction) OpType() ops.OpType { return i.opType }

// ControlType of a control instruction; ops.ControlInvalid for
// operations.
func (i *Instruction) ControlType() ops.ControlType { return i.control }

// Def holding the instruction's result; nil for controls.
func (i *Instruction) Def() *Def { return i.def }

// Shape of the instruction's result; the invalid shape for controls.
func (i *Instruction) Shape() shapes.Shape {
	if i.def == nil {
		return shapes.Invalid()
	}
	return i.def.shape
}

// Operands of the instruction, in order. The slice is owned by the
// instruction; use SubstituteUse to change it.
func (i *Instruction) Operands() []Use { return i.operands }

// Successors of a control instruction, in order; empty for operations
// and for ret/store.
func (i *Instruction) Successors() []*BasicBlock { return i.succs }

// SuccessorArgs returns the operand values passed to the idx-th
// successor block.
func (i *Instruction) SuccessorArgs(idx int) []Use {
	start := len(i.operands)
	for s := len(i.succs) - 1; s >= idx; s-- {
		start -= i.succArgCounts[s]
	}
	return i.operands[start : start+i.succArgCounts[idx]]
}

// Axes of a reduction; nil means full reduction to a scalar.
func (i *Instruction) Axes() []int { return i.axes }

// Axis of a scan or concatenation.
func (i *Instruction) Axis() int { return i.axis }

// Count of a subtensor extraction.
func (i *Instruction) Count() int { return i.count }

// Permutation of a transpose.
func (i *Instruction) Permutation() []int { return i.perm }

// TargetShape of a reshape.
func (i *Instruction) TargetShape() shapes.Shape { return i.targetShape }

// TargetDType of a convert.
func (i *Instruction) TargetDType() dtypes.DataType { return i.targetDType }

// Callee of a call or diff instruction.
func (i *Instruction) Callee() *Function { return i.callee }

// ArgIndex of a diff instruction: which callee argument to
// differentiate with respect to.
func (i *Instruction) ArgIndex() int { return i.argIndex }

// Intrinsic name of an intrinsic call.
func (i *Instruction) Intrinsic() string { return i.intrinsic }

// Global written by a store control.
func (i *Instruction) Global() *Variable { return i.global }

// Placeholder read by a pull control.
func (i *Instruction) Placeholder() *Placeholder { return i.placeholder }

// registerUses adds the instruction to the user-set of every operand
// Def. Constructors call it exactly once, after validation.
func (i *Instruction) registerUses() {
	for _, u := range i.operands {
		if u.def != nil {
			u.def.users.Insert(i)
		}
	}
}

// newOperation assembles an operation instruction once its shape has
// been derived, wrapping it in a fresh Def.
func newOperation(name string, opType ops.OpType, shape shapes.Shape, operands []Use) *Instruction {
	i := &Instruction{opType: opType, operands: operands}
	i.def = newDef(name, DefOperation, shape)
	i.def.instr = i
	i.registerUses()
	return i
}

// NewUnary constructs a unary elementwise operation. The result shape is
// the operand's.
func NewUnary(name string, opType ops.OpType, operand Use) (*Instruction, error) {
	shape, err := shapeinference.UnaryOp(opType, operand.Shape())
	if err != nil {
		return nil, err
	}
	return newOperation(name, opType, shape, []Use{operand}), nil
}

// NewBinary constructs a binary elementwise operation. The operand
// shapes are mutually broadcast; incompatible shapes are a hard error.
func NewBinary(name string, opType ops.OpType, lhs, rhs Use) (*Instruction, error) {
	shape, err := shapeinference.BinaryOp(opType, lhs.Shape(), rhs.Shape())
	if err != nil {
		return nil, err
	}
	return newOperation(name, opType, shape, []Use{lhs, rhs}), nil
}

// NewComparison constructs a comparison: broadcast like a binary
// operation, with a boolean result.
func NewComparison(name string, opType ops.OpType, lhs, rhs Use) (*Instruction, error) {
	shape, err := shapeinference.ComparisonOp(opType, lhs.Shape(), rhs.Shape())
	if err != nil {
		return nil, err
	}
	return newOperation(name, opType, shape, []Use{lhs, rhs}), nil
}

// NewMatMul constructs a (batched) matrix multiplication.
func NewMatMul(name string, lhs, rhs Use) (*Instruction, error) {
	shape, err := shapeinference.MatMulOp(lhs.Shape(), rhs.Shape())
	if err != nil {
		return nil, err
	}
	return newOperation(name, ops.OpTypeMatMul, shape, []Use{lhs, rhs}), nil
}

// NewTensorDot constructs a generalized tensor multiplication (⊗),
// contracting lhs's trailing axis against rhs's leading axis.
func NewTensorDot(name string, lhs, rhs Use) (*Instruction, error) {
	shape, err := shapeinference.TensorDotOp(lhs.Shape(), rhs.Shape())
	if err != nil {
		return nil, err
	}
	return newOperation(name, ops.OpTypeTensorDot, shape, []Use{lhs, rhs}), nil
}

// NewConcatenate constructs a concatenation of the operands along axis.
func NewConcatenate(name string, operands []Use, axis int) (*Instruction, error) {
	operandShapes := make([]shapes.Shape, len(operands))
	for ii, op := range operands {
		operandShapes[ii] = op.Shape()
	}
	shape, err := shapeinference.ConcatenateOp(operandShapes, axis)
	if err != nil {
		return nil, err
	}
	i := newOperation(name, ops.OpTypeConcatenate, shape, slices.Clone(operands))
	i.axis = axis
	return i, nil
}

// NewReduce constructs a reduction over the given axes; nil axes reduce
// the whole operand to a scalar.
func NewReduce(name string, opType ops.OpType, operand Use, axes []int) (*Instruction, error) {
	if !shapeinference.ReduceOperations.Has(opType) {
		return nil, errors.Errorf("operation %s is not a reduction", opType)
	}
	shape, err := shapeinference.ReduceOp(operand.Shape(), axes)
	if err != nil {
		return nil, err
	}
	i := newOperation(name, opType, shape, []Use{operand})
	i.axes = slices.Clone(axes)
	return i, nil
}

// NewScan constructs a cumulative reduction along axis; the result shape
// is the operand's.
func NewScan(name string, opType ops.OpType, operand Use, axis int) (*Instruction, error) {
	if !shapeinference.ScanOperations.Has(opType) {
		return nil, errors.Errorf("operation %s is not a scan", opType)
	}
	shape, err := shapeinference.ScanOp(operand.Shape(), axis)
	if err != nil {
		return nil, err
	}
	i := newOperation(name, opType, shape, []Use{operand})
	i.axis = axis
	return i, nil
}

// NewTranspose constructs an axes permutation of the operand.
func NewTranspose(name string, operand Use, permutations []int) (*Instruction, error) {
	shape, err := shapeinference.TransposeOp(operand.Shape(), permutations)
	if err != nil {
		return nil, err
	}
	i := newOperation(name, ops.OpTypeTranspose, shape, []Use{operand})
	i.perm = slices.Clone(permutations)
	return i, nil
}

// NewReshape constructs a shape-cast of the operand to the given
// dimensions; total element counts must match.
func NewReshape(name string, operand Use, dims []int) (*Instruction, error) {
	shape, err := shapeinference.ReshapeOp(operand.Shape(), dims)
	if err != nil {
		return nil, err
	}
	i := newOperation(name, ops.OpTypeReshape, shape, []Use{operand})
	i.targetShape = shape
	return i, nil
}

// NewConvert constructs a type-cast of the operand to the target dtype.
func NewConvert(name string, operand Use, dtype dtypes.DataType) (*Instruction, error) {
	shape, err := shapeinference.ConvertOp(operand.Shape(), dtype)
	if err != nil {
		return nil, err
	}
	i := newOperation(name, ops.OpTypeConvert, shape, []Use{operand})
	i.targetDType = dtype
	return i, nil
}

// NewElement constructs the extraction of one element along the
// operand's leading axis.
func NewElement(name string, operand, index Use) (*Instruction, error) {
	shape, err := shapeinference.ElementOp(operand.Shape(), index.Shape())
	if err != nil {
		return nil, err
	}
	return newOperation(name, ops.OpTypeElement, shape, []Use{operand, index}), nil
}

// NewSubtensor constructs the extraction of count elements along the
// operand's leading axis, starting at the start index.
func NewSubtensor(name string, operand, start Use, count int) (*Instruction, error) {
	shape, err := shapeinference.SubtensorOp(operand.Shape(), start.Shape(), count)
	if err != nil {
		return nil, err
	}
	i := newOperation(name, ops.OpTypeSubtensor, shape, []Use{operand, start})
	i.count = count
	return i, nil
}

// NewIntrinsic constructs a call to a named runtime intrinsic. The
// result shape is part of the intrinsic's signature and supplied by the
// caller.
func NewIntrinsic(name, intrinsic string, operands []Use, result shapes.Shape) (*Instruction, error) {
	if intrinsic == "" {
		return nil, errors.Errorf("intrinsic call requires a non-empty intrinsic name")
	}
	if !result.Ok() {
		return nil, errors.Errorf("intrinsic %q requires a valid result shape", intrinsic)
	}
	i := newOperation(name, ops.OpTypeIntrinsic, result, slices.Clone(operands))
	i.intrinsic = intrinsic
	return i, nil
}

// NewCall constructs a call to another function of the module. Argument
// shapes must match the callee's signature exactly; the result shape is
// the callee's.
func NewCall(name string, callee *Function, args []Use) (*Instruction, error) {
	if callee == nil {
		return nil, errors.Errorf("call requires a callee function")
	}
	if !callee.result.Ok() {
		return nil, errors.Errorf("cannot call function %q with no result", callee.name)
	}
	if len(args) != len(callee.args) {
		return nil, errors.Errorf("function %q takes %d arguments, call passes %d",
			callee.name, len(callee.args), len(args))
	}
	for ii, arg := range args {
		if !arg.Shape().Equal(callee.args[ii].Shape()) {
			return nil, errors.Errorf("call argument #%d has shape %s, function %q expects %s",
				ii, arg.Shape(), callee.name, callee.args[ii].Shape())
		}
	}
	i := newOperation(name, ops.OpTypeCall, callee.result, slices.Clone(args))
	i.callee = callee
	return i, nil
}

// NewDiff constructs a differentiation request: the derivative of callee
// with respect to its argIndex-th argument. The node is only carried and
// shape-checked here; a downstream autodiff expansion resolves it. Its
// shape is the referenced argument's (the gradient has the shape of what
// is differentiated against).
func NewDiff(name string, callee *Function, argIndex int) (*Instruction, error) {
	if callee == nil {
		return nil, errors.Errorf("diff requires a callee function")
	}
	if argIndex < 0 || argIndex >= len(callee.args) {
		return nil, errors.Errorf("diff argument index %d out of range, function %q has %d arguments",
			argIndex, callee.name, len(callee.args))
	}
	if !callee.result.Ok() || !callee.result.IsScalar() {
		return nil, errors.Errorf("diff requires function %q to produce a scalar result, got %s",
			callee.name, callee.result)
	}
	i := newOperation(name, ops.OpTypeDiff, callee.args[argIndex].Shape(), nil)
	i.callee = callee
	i.argIndex = argIndex
	return i, nil
}

// newControl assembles a control instruction.
func newControl(control ops.ControlType, operands []Use) *Instruction {
	i := &Instruction{control: control, operands: operands}
	i.registerUses()
	return i
}

// NewBranch constructs an unconditional branch passing args to the
// target block's arguments.
func NewBranch(target *BasicBlock, args []Use) (*Instruction, error) {
	if target == nil {
		return nil, errors.Errorf("br requires a target block")
	}
	i := newControl(ops.ControlBr, slices.Clone(args))
	i.succs = []*BasicBlock{target}
	i.succArgCounts[0] = len(args)
	return i, nil
}

// NewCondBranch constructs a conditional branch on a scalar boolean.
func NewCondBranch(cond Use, onTrue *BasicBlock, trueArgs []Use, onFalse *BasicBlock, falseArgs []Use) (*Instruction, error) {
	if onTrue == nil || onFalse == nil {
		return nil, errors.Errorf("condbr requires both successor blocks")
	}
	if !cond.Shape().IsScalar() || !cond.DType().IsBool() {
		return nil, errors.Errorf("condbr condition must be a scalar boolean, got %s", cond.Shape())
	}
	operands := make([]Use, 0, 1+len(trueArgs)+len(falseArgs))
	operands = append(operands, cond)
	operands = append(operands, trueArgs...)
	operands = append(operands, falseArgs...)
	i := newControl(ops.ControlCondBr, operands)
	i.succs = []*BasicBlock{onTrue, onFalse}
	i.succArgCounts = [2]int{len(trueArgs), len(falseArgs)}
	return i, nil
}

// NewReturn constructs a return, with an optional value.
func NewReturn(values ...Use) (*Instruction, error) {
	if len(values) > 1 {
		return nil, errors.Errorf("ret takes at most one value, got %d", len(values))
	}
	return newControl(ops.ControlRet, slices.Clone(values)), nil
}

// NewContinue constructs the recurrence back-edge to target, passing
// args to its arguments.
func NewContinue(target *BasicBlock, args []Use) (*Instruction, error) {
	if target == nil {
		return nil, errors.Errorf("cont requires a target block")
	}
	i := newControl(ops.ControlCont, slices.Clone(args))
	i.succs = []*BasicBlock{target}
	i.succArgCounts[0] = len(args)
	return i, nil
}

// NewStore constructs a write of value to a global variable. Shapes must
// match exactly.
func NewStore(value Use, global *Variable) (*Instruction, error) {
	if global == nil {
		return nil, errors.Errorf("store requires a global variable")
	}
	if !value.Shape().Equal(global.Shape()) {
		return nil, errors.Errorf("store value shape %s does not match global @%s shape %s",
			value.Shape(), global.Name(), global.Shape())
	}
	i := newControl(ops.ControlStore, []Use{value})
	i.global = global
	return i, nil
}

// NewYield constructs the emission of value to the function's output
// stream, proceeding to next with the given args.
func NewYield(value Use, next *BasicBlock, args []Use) (*Instruction, error) {
	if next == nil {
		return nil, errors.Errorf("yield requires a successor block")
	}
	operands := append([]Use{value}, args...)
	i := newControl(ops.ControlYield, operands)
	i.succs = []*BasicBlock{next}
	i.succArgCounts[0] = len(args)
	return i, nil
}

// NewPull constructs the read of the next element of a recurrent
// placeholder: on success it branches to body, passing the pulled
// element as body's first argument followed by bodyArgs; on stream
// exhaustion it branches to exit with exitArgs.
func NewPull(ph *Placeholder, body *BasicBlock, bodyArgs []Use, exit *BasicBlock, exitArgs []Use) (*Instruction, error) {
	if ph == nil {
		return nil, errors.Errorf("pull requires a placeholder")
	}
	if !ph.recurrent {
		return nil, errors.Errorf("pull requires a recurrent placeholder, @%s is not", ph.Name())
	}
	if body == nil || exit == nil {
		return nil, errors.Errorf("pull requires both successor blocks")
	}
	operands := make([]Use, 0, len(bodyArgs)+len(exitArgs))
	operands = append(operands, bodyArgs...)
	operands = append(operands, exitArgs...)
	i := newControl(ops.ControlPull, operands)
	i.placeholder = ph
	i.succs = []*BasicBlock{body, exit}
	i.succArgCounts = [2]int{len(bodyArgs), len(exitArgs)}
	return i, nil
}

// SubstituteUse replaces every occurrence of old among the operands with
// newUse, atomically: either all occurrences change or (if old does not
// appear) none. It returns the number of occurrences replaced.
//
// SubstituteUse does not touch any user-set; it is the low-level hook
// called by ReplaceUsesOf and Def.ReplaceAllUsesWith, which do the
// bookkeeping.
func (i *Instruction) SubstituteUse(old, newUse Use) int {
	n := 0
	for ii := range i.operands {
		if i.operands[ii].Equal(old) {
			i.operands[ii] = newUse
			n++
		}
	}
	return n
}

// ReplaceUsesOf replaces every operand referring to oldDef with newUse,
// updating user-sets on both sides. It returns the number of operands
// replaced.
func (i *Instruction) ReplaceUsesOf(oldDef *Def, newUse Use) int {
	n := i.SubstituteUse(UseDef(oldDef), newUse)
	if n == 0 {
		return 0
	}
	oldDef.users.Remove(i)
	if newUse.def != nil {
		newUse.def.users.Insert(i)
	}
	return n
}

// ReleaseUses drops the instruction from the user-set of every Def it
// refers to. It must be called only on detached instructions: removal
// from a block does not release uses, so that a removed instruction can
// be re-inserted elsewhere with its edges intact.
func (i *Instruction) ReleaseUses() {
	if i.block != nil {
		exceptions.Panicf("ReleaseUses called on instruction still attached to block ^%s", i.block.name)
	}
	for _, u := range i.operands {
		if u.def != nil {
			u.def.users.Remove(i)
		}
	}
}

// String implements fmt.Stringer, printing the instruction in the
// textual listing's syntax (without the trailing newline).
func (i *Instruction) String() string {
	return formatInstruction(i)
}
