package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tensorlang/tir/ops"
	"github.com/tensorlang/tir/shapeinference"
)

// String prints the module as a textual listing. The listing is
// deterministic and parses back (syntax.Parse) to an equivalent module.
func (m *Module) String() string {
	var sb strings.Builder
	_ = Write(&sb, m)
	return sb.String()
}

// Write prints the module's textual listing to w.
func Write(w io.Writer, m *Module) error {
	pw := &printWriter{w: w}
	pw.printf("module @%s stage %s\n", m.name, m.stage)
	for _, a := range m.aliases {
		pw.printf("\nalias $%s = %s\n", a.Name, a.Target)
	}
	for _, s := range m.structs {
		pw.printf("\nstruct $%s {", s.Name)
		for ii, field := range s.Fields {
			if ii > 0 {
				pw.printf(",")
			}
			pw.printf(" %s: %s", field.Name, field.Shape)
		}
		pw.printf(" }\n")
	}
	for _, e := range m.enums {
		pw.printf("\nenum $%s { %s }\n", e.Name, strings.Join(e.Cases, ", "))
	}
	for _, v := range m.variables {
		pw.printf("\nvar @%s: %s", v.Name(), v.Shape())
		if v.init != nil {
			pw.printf(" = %s", v.init)
		}
		pw.printf("\n")
	}
	for _, p := range m.placeholders {
		pw.printf("\n")
		if p.recurrent {
			pw.printf("recurrent ")
		}
		pw.printf("placeholder @%s: %s\n", p.Name(), p.Shape())
	}
	for _, f := range m.functions {
		pw.printf("\n")
		writeFunction(pw, f)
	}
	return pw.err
}

type printWriter struct {
	w   io.Writer
	err error
}

func (pw *printWriter) printf(format string, args ...any) {
	if pw.err != nil {
		return
	}
	_, pw.err = fmt.Fprintf(pw.w, format, args...)
}

func writeFunction(pw *printWriter, f *Function) {
	pw.printf("func @%s(", f.name)
	for ii, arg := range f.args {
		if ii > 0 {
			pw.printf(", ")
		}
		pw.printf("%%%s: %s", arg.Name(), arg.Shape())
	}
	pw.printf(")")
	if f.result.Ok() {
		pw.printf(" -> %s", f.result)
	}
	pw.printf(" {\n")
	for _, b := range f.blocks {
		pw.printf("^%s", b.name)
		if len(b.args) > 0 {
			pw.printf("(")
			for ii, arg := range b.args {
				if ii > 0 {
					pw.printf(", ")
				}
				pw.printf("%%%s: %s", arg.Name(), arg.Shape())
			}
			pw.printf(")")
		}
		pw.printf(":\n")
		for _, instr := range b.instructions {
			pw.printf("  %s\n", formatInstruction(instr))
		}
	}
	pw.printf("}\n")
}

// formatInstruction prints one instruction in listing syntax, without
// indentation or trailing newline.
func formatInstruction(i *Instruction) string {
	var sb strings.Builder
	if i.IsControl() {
		formatControl(&sb, i)
		return sb.String()
	}
	fmt.Fprintf(&sb, "%s = %s ", i.def, i.opType)
	operands := i.operands
	opType := i.opType
	switch {
	case shapeinference.ReduceOperations.Has(opType):
		sb.WriteString(operands[0].String())
		if len(i.axes) > 0 {
			fmt.Fprintf(&sb, " along %s", joinInts(i.axes))
		}
		fmt.Fprintf(&sb, " : %s", i.Shape())
	case shapeinference.ScanOperations.Has(opType):
		fmt.Fprintf(&sb, "%s along %d : %s", operands[0], i.axis, i.Shape())
	default:
		switch opType {
		case ops.OpTypeConcatenate:
			writeUses(&sb, operands)
			fmt.Fprintf(&sb, " along %d : %s", i.axis, i.Shape())
		case ops.OpTypeTranspose:
			fmt.Fprintf(&sb, "%s perm %s : %s", operands[0], joinInts(i.perm), i.Shape())
		case ops.OpTypeReshape:
			fmt.Fprintf(&sb, "%s to %s", operands[0], i.targetShape)
		case ops.OpTypeConvert:
			fmt.Fprintf(&sb, "%s to %s", operands[0], i.targetDType)
		case ops.OpTypeElement:
			fmt.Fprintf(&sb, "%s at %s : %s", operands[0], operands[1], i.Shape())
		case ops.OpTypeSubtensor:
			fmt.Fprintf(&sb, "%s from %s count %d : %s", operands[0], operands[1], i.count, i.Shape())
		case ops.OpTypeIntrinsic:
			fmt.Fprintf(&sb, "%s(", i.intrinsic)
			writeUses(&sb, operands)
			fmt.Fprintf(&sb, ") : %s", i.Shape())
		case ops.OpTypeCall:
			fmt.Fprintf(&sb, "@%s(", i.callee.name)
			writeUses(&sb, operands)
			sb.WriteString(")")
		case ops.OpTypeDiff:
			fmt.Fprintf(&sb, "@%s wrt %d", i.callee.name, i.argIndex)
		default:
			// Unary, binary, comparison, matmul, tensordot.
			writeUses(&sb, operands)
			fmt.Fprintf(&sb, " : %s", i.Shape())
		}
	}
	return sb.String()
}

func formatControl(sb *strings.Builder, i *Instruction) {
	switch i.control {
	case ops.ControlBr, ops.ControlCont:
		fmt.Fprintf(sb, "%s ", i.control)
		writeSuccessor(sb, i, 0)
	case ops.ControlCondBr:
		fmt.Fprintf(sb, "condbr %s, ", i.operands[0])
		writeSuccessor(sb, i, 0)
		sb.WriteString(", ")
		writeSuccessor(sb, i, 1)
	case ops.ControlRet:
		sb.WriteString("ret")
		if len(i.operands) > 0 {
			fmt.Fprintf(sb, " %s", i.operands[0])
		}
	case ops.ControlStore:
		fmt.Fprintf(sb, "store %s to @%s", i.operands[0], i.global.Name())
	case ops.ControlYield:
		fmt.Fprintf(sb, "yield %s then ", i.operands[0])
		writeSuccessor(sb, i, 0)
	case ops.ControlPull:
		fmt.Fprintf(sb, "pull @%s to ", i.placeholder.Name())
		writeSuccessor(sb, i, 0)
		sb.WriteString(", ")
		writeSuccessor(sb, i, 1)
	}
}

func writeSuccessor(sb *strings.Builder, i *Instruction, idx int) {
	fmt.Fprintf(sb, "^%s", i.succs[idx].name)
	args := i.SuccessorArgs(idx)
	if len(args) == 0 {
		return
	}
	sb.WriteString("(")
	writeUses(sb, args)
	sb.WriteString(")")
}

func writeUses(sb *strings.Builder, uses []Use) {
	for ii, u := range uses {
		if ii > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(u.String())
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for ii, v := range values {
		parts[ii] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
