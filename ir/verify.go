package ir

import (
	"github.com/pkg/errors"
	"github.com/tensorlang/tir/ops"
	"github.com/tensorlang/tir/shapeinference"
	"github.com/tensorlang/tir/types"
	"github.com/tensorlang/tir/types/shapes"
)

// Verify checks structural and semantic consistency of the whole module:
// every block ends in exactly one control, every operand refers to a Def
// still reachable from the module, user-sets agree with the operand
// lists in both directions, every operation's shape matches what its
// operands derive, and every control's operands fit its successors.
//
// Verify is read-only and works on either stage.
func Verify(m *Module) error {
	v := &verifier{
		module: m,
		live:   types.MakeSet[*Def](),
		owners: make(map[*Instruction]*BasicBlock),
	}
	v.collect()
	for _, f := range m.Functions() {
		if err := v.function(f); err != nil {
			return err
		}
	}
	return v.userSets()
}

type verifier struct {
	module *Module

	// live holds every Def reachable from the module: globals,
	// placeholders, function and block arguments, and results of
	// instructions currently inserted in a block.
	live   types.Set[*Def]
	owners map[*Instruction]*BasicBlock
}

func (v *verifier) collect() {
	for _, g := range v.module.Variables() {
		v.live.Insert(g.Def())
	}
	for _, p := range v.module.Placeholders() {
		v.live.Insert(p.Def())
	}
	for _, f := range v.module.Functions() {
		for _, arg := range f.Arguments() {
			v.live.Insert(arg.Def())
		}
		for _, b := range f.Blocks() {
			for _, arg := range b.Arguments() {
				v.live.Insert(arg.Def())
			}
			for _, instr := range b.Instructions() {
				v.owners[instr] = b
				if instr.def != nil {
					v.live.Insert(instr.def)
				}
			}
		}
	}
}

func (v *verifier) function(f *Function) error {
	if len(f.Blocks()) == 0 {
		return errors.Errorf("function @%s has no blocks", f.Name())
	}
	for _, b := range f.Blocks() {
		if err := v.block(f, b); err != nil {
			return err
		}
	}
	return nil
}

func (v *verifier) block(f *Function, b *BasicBlock) error {
	instrs := b.Instructions()
	if len(instrs) == 0 {
		return errors.Errorf("block ^%s of @%s is empty, it must end in a control", b.Name(), f.Name())
	}
	for ii, instr := range instrs {
		last := ii == len(instrs)-1
		if instr.IsControl() != last {
			if instr.IsControl() {
				return errors.Errorf("control %s in the middle of block ^%s of @%s", instr.ControlType(), b.Name(), f.Name())
			}
			return errors.Errorf("block ^%s of @%s does not end in a control", b.Name(), f.Name())
		}
		for oi, u := range instr.Operands() {
			if u.IsLiteral() {
				continue
			}
			if !v.live.Has(u.Def()) {
				return errors.Errorf("operand #%d of %q in ^%s of @%s refers to a dangling value %s",
					oi, instr, b.Name(), f.Name(), u.Def())
			}
			if !u.Def().users.Has(instr) {
				return errors.Errorf("user-set of %s misses its user %q in ^%s of @%s",
					u.Def(), instr, b.Name(), f.Name())
			}
		}
		var err error
		if instr.IsControl() {
			err = v.control(f, b, instr)
		} else {
			err = v.operation(instr)
		}
		if err != nil {
			return errors.WithMessagef(err, "in ^%s of @%s", b.Name(), f.Name())
		}
	}
	return nil
}

// operation re-derives the instruction's shape from its operands and
// compares against the recorded one.
func (v *verifier) operation(instr *Instruction) error {
	opType := instr.OpType()
	operands := instr.Operands()
	var derived shapes.Shape
	var err error
	switch {
	case shapeinference.StandardUnaryOperations.Has(opType):
		derived, err = shapeinference.UnaryOp(opType, operands[0].Shape())
	case shapeinference.StandardBinaryOperations.Has(opType):
		derived, err = shapeinference.BinaryOp(opType, operands[0].Shape(), operands[1].Shape())
	case shapeinference.ComparisonOperations.Has(opType):
		derived, err = shapeinference.ComparisonOp(opType, operands[0].Shape(), operands[1].Shape())
	case shapeinference.ReduceOperations.Has(opType):
		derived, err = shapeinference.ReduceOp(operands[0].Shape(), instr.Axes())
	case shapeinference.ScanOperations.Has(opType):
		derived, err = shapeinference.ScanOp(operands[0].Shape(), instr.Axis())
	default:
		switch opType {
		case ops.OpTypeMatMul:
			derived, err = shapeinference.MatMulOp(operands[0].Shape(), operands[1].Shape())
		case ops.OpTypeTensorDot:
			derived, err = shapeinference.TensorDotOp(operands[0].Shape(), operands[1].Shape())
		case ops.OpTypeConcatenate:
			operandShapes := make([]shapes.Shape, len(operands))
			for ii, u := range operands {
				operandShapes[ii] = u.Shape()
			}
			derived, err = shapeinference.ConcatenateOp(operandShapes, instr.Axis())
		case ops.OpTypeTranspose:
			derived, err = shapeinference.TransposeOp(operands[0].Shape(), instr.Permutation())
		case ops.OpTypeReshape:
			derived, err = shapeinference.ReshapeOp(operands[0].Shape(), instr.TargetShape().Dimensions)
		case ops.OpTypeConvert:
			derived, err = shapeinference.ConvertOp(operands[0].Shape(), instr.TargetDType())
		case ops.OpTypeElement:
			derived, err = shapeinference.ElementOp(operands[0].Shape(), operands[1].Shape())
		case ops.OpTypeSubtensor:
			derived, err = shapeinference.SubtensorOp(operands[0].Shape(), operands[1].Shape(), instr.Count())
		case ops.OpTypeIntrinsic:
			// The result shape is part of the intrinsic's signature,
			// there is nothing to re-derive.
			derived = instr.Shape()
		case ops.OpTypeCall:
			callee := instr.Callee()
			if v.module.FunctionByName(callee.Name()) != callee {
				return errors.Errorf("call %q targets a function not in this module", instr)
			}
			if len(operands) != len(callee.Arguments()) {
				return errors.Errorf("call %q passes %d arguments, function @%s takes %d",
					instr, len(operands), callee.Name(), len(callee.Arguments()))
			}
			for ai, arg := range operands {
				if !arg.Shape().Equal(callee.Arguments()[ai].Shape()) {
					return errors.Errorf("call %q passes %s as argument #%d, function @%s expects %s",
						instr, arg.Shape(), ai, callee.Name(), callee.Arguments()[ai].Shape())
				}
			}
			derived = callee.Result()
		case ops.OpTypeDiff:
			callee := instr.Callee()
			if v.module.FunctionByName(callee.Name()) != callee {
				return errors.Errorf("diff %q targets a function not in this module", instr)
			}
			derived = callee.Arguments()[instr.ArgIndex()].Shape()
		default:
			return errors.Errorf("unknown operation type %s in %q", opType, instr)
		}
	}
	if err != nil {
		return errors.WithMessagef(err, "re-deriving shape of %q", instr)
	}
	if !derived.Equal(instr.Shape()) {
		return errors.Errorf("%q records shape %s, operands derive %s", instr, instr.Shape(), derived)
	}
	return nil
}

func (v *verifier) control(f *Function, b *BasicBlock, instr *Instruction) error {
	if len(instr.Successors()) != instr.ControlType().NumSuccessors() {
		return errors.Errorf("control %s has %d successors, want %d",
			instr.ControlType(), len(instr.Successors()), instr.ControlType().NumSuccessors())
	}
	for _, succ := range instr.Successors() {
		if succ.Function() != f {
			return errors.Errorf("control %s targets block ^%s of a different function", instr.ControlType(), succ.Name())
		}
	}
	switch instr.ControlType() {
	case ops.ControlBr, ops.ControlCont:
		return v.successorArgs(instr, 0, nil)
	case ops.ControlCondBr:
		cond := instr.Operands()[0]
		if !cond.Shape().IsScalar() || !cond.DType().IsBool() {
			return errors.Errorf("condbr condition has shape %s, want a scalar boolean", cond.Shape())
		}
		if err := v.successorArgs(instr, 0, nil); err != nil {
			return err
		}
		return v.successorArgs(instr, 1, nil)
	case ops.ControlRet:
		operands := instr.Operands()
		if f.Result().Ok() {
			if len(operands) != 1 {
				return errors.Errorf("ret returns no value, function @%s declares result %s", f.Name(), f.Result())
			}
			if !operands[0].Shape().Equal(f.Result()) {
				return errors.Errorf("ret value has shape %s, function @%s declares %s",
					operands[0].Shape(), f.Name(), f.Result())
			}
		} else if len(operands) != 0 {
			return errors.Errorf("ret returns a value, function @%s declares none", f.Name())
		}
		return nil
	case ops.ControlStore:
		value := instr.Operands()[0]
		if !value.Shape().Equal(instr.Global().Shape()) {
			return errors.Errorf("store value has shape %s, global @%s has %s",
				value.Shape(), instr.Global().Name(), instr.Global().Shape())
		}
		return nil
	case ops.ControlYield:
		// The declared result is the shape of the output stream; without
		// one, yields from different blocks could disagree.
		if !f.Result().Ok() {
			return errors.Errorf("yield in function @%s, which declares no result", f.Name())
		}
		value := instr.Operands()[0]
		if !value.Shape().Equal(f.Result()) {
			return errors.Errorf("yield value has shape %s, function @%s declares %s",
				value.Shape(), f.Name(), f.Result())
		}
		return v.successorArgs(instr, 0, nil)
	case ops.ControlPull:
		ph := instr.Placeholder()
		if !ph.Recurrent() {
			return errors.Errorf("pull reads @%s, which is not a recurrent placeholder", ph.Name())
		}
		body := instr.Successors()[0]
		if len(body.Arguments()) == 0 {
			return errors.Errorf("pull body ^%s takes no arguments, it must receive the pulled element first", body.Name())
		}
		if !body.Arguments()[0].Shape().Equal(ph.Shape()) {
			return errors.Errorf("pull body ^%s receives %s as first argument, placeholder @%s yields %s",
				body.Name(), body.Arguments()[0].Shape(), ph.Name(), ph.Shape())
		}
		// Explicit args fill the body's arguments after the element.
		if err := v.successorArgs(instr, 0, body.argShapes()[1:]); err != nil {
			return err
		}
		return v.successorArgs(instr, 1, nil)
	default:
		return errors.Errorf("unknown control type %s", instr.ControlType())
	}
}

// successorArgs checks the values passed to the idx-th successor against
// its block arguments. A non-nil want overrides the expected shapes (for
// pull, where the body's first argument is implicit).
func (v *verifier) successorArgs(instr *Instruction, idx int, want []shapes.Shape) error {
	succ := instr.Successors()[idx]
	if want == nil {
		want = succ.argShapes()
	}
	args := instr.SuccessorArgs(idx)
	if len(args) != len(want) {
		return errors.Errorf("%s passes %d values to ^%s, which expects %d",
			instr.ControlType(), len(args), succ.Name(), len(want))
	}
	for ii, arg := range args {
		if !arg.Shape().Equal(want[ii]) {
			return errors.Errorf("%s passes %s as argument #%d to ^%s, which expects %s",
				instr.ControlType(), arg.Shape(), ii, succ.Name(), want[ii])
		}
	}
	return nil
}

// userSets checks the reverse direction: every instruction listed in a
// user-set actually holds the matching operand and is inserted in a
// block of this module.
func (v *verifier) userSets() error {
	for def := range v.live {
		for user := range def.users {
			if _, ok := v.owners[user]; !ok {
				return errors.Errorf("user-set of %s lists %q, which is not inserted in any block", def, user)
			}
			found := false
			for _, u := range user.Operands() {
				if u.Def() == def {
					found = true
					break
				}
			}
			if !found {
				return errors.Errorf("user-set of %s lists %q, which holds no use of it", def, user)
			}
		}
	}
	return nil
}
