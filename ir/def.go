package ir

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/tensorlang/tir/types"
	"github.com/tensorlang/tir/types/dtypes"
	"github.com/tensorlang/tir/types/shapes"
)

// DefKind tags the kind of entity a Def names.
type DefKind int

const (
	DefInvalid DefKind = iota
	DefOperation
	DefArgument
	DefGlobal
	DefPlaceholder
)

// String implements fmt.Stringer.
func (k DefKind) String() string {
	switch k {
	case DefOperation:
		return "operation"
	case DefArgument:
		return "argument"
	case DefGlobal:
		return "global"
	case DefPlaceholder:
		return "placeholder"
	}
	return "invalid"
}

// Def is an owned, named slot for a value-producing entity: an operation
// result, a function or block argument, a global variable or a
// placeholder. Its identity is its pointer: two Defs with identical
// contents are still distinct.
//
// A Def lives as long as its owning container slot; it must only be
// discarded once it has been removed from its container and its user-set
// is empty -- the removal protocol (see BasicBlock.Remove and the
// dead-code elimination transform), not the garbage collector, enforces
// that discipline, since Go keeps the memory alive for as long as any
// operand list points at it.
type Def struct {
	name  string
	kind  DefKind
	shape shapes.Shape

	// users is the set of instructions currently holding a Use of this
	// Def. Non-owning bookkeeping only: it makes replace-all-uses and
	// dead-code elimination O(users) instead of O(graph).
	users types.Set[*Instruction]

	// instr is the producing instruction, for DefOperation only.
	instr *Instruction
}

func newDef(name string, kind DefKind, shape shapes.Shape) *Def {
	return &Def{name: name, kind: kind, shape: shape, users: types.MakeSet[*Instruction]()}
}

// Name of the definition.
func (d *Def) Name() string { return d.name }

// Kind of the definition.
func (d *Def) Kind() DefKind { return d.kind }

// Shape of the defined value.
func (d *Def) Shape() shapes.Shape { return d.shape }

// DType of the defined value.
func (d *Def) DType() dtypes.DataType { return d.shape.DType }

// Instruction returns the producing instruction for operation defs, nil
// otherwise.
func (d *Def) Instruction() *Instruction { return d.instr }

// NumUsers returns the number of instructions currently using this Def.
func (d *Def) NumUsers() int { return d.users.Len() }

// Users returns the set of instructions using this Def. The set is owned
// by the Def; callers must treat it as read-only.
func (d *Def) Users() types.Set[*Instruction] { return d.users }

// String implements fmt.Stringer, printing the operand form used by the
// textual listing: "%name" for operations and arguments, "@name" for
// globals and placeholders.
func (d *Def) String() string {
	switch d.kind {
	case DefGlobal, DefPlaceholder:
		return "@" + d.name
	default:
		return "%" + d.name
	}
}

// ReplaceAllUsesWith substitutes every use of d with newUse, across all
// of d's users, and clears d's user-set. The user-set is only cleared at
// the end: no user observes it half-updated.
func (d *Def) ReplaceAllUsesWith(newUse Use) {
	if newUse.def == d {
		exceptions.Panicf("ReplaceAllUsesWith: cannot replace uses of %s with itself", d)
	}
	users := make([]*Instruction, 0, d.users.Len())
	for user := range d.users {
		users = append(users, user)
	}
	oldUse := UseDef(d)
	for _, user := range users {
		n := user.SubstituteUse(oldUse, newUse)
		if n > 0 && newUse.def != nil {
			newUse.def.users.Insert(user)
		}
	}
	clear(d.users)
}

// Use is an edge from a consuming instruction to either a live Def or an
// inline Literal. It is a weak, non-owning reference: the removal
// protocol guarantees it never outlives the Def it points to.
type Use struct {
	def *Def
	lit *Literal
}

// UseDef returns a Use referencing a definition.
func UseDef(d *Def) Use {
	if d == nil {
		exceptions.Panicf("UseDef: nil definition")
	}
	return Use{def: d}
}

// UseLiteral returns a Use holding an inline literal value.
func UseLiteral(l *Literal) Use {
	if l == nil {
		exceptions.Panicf("UseLiteral: nil literal")
	}
	return Use{lit: l}
}

// UseScalar returns a Use holding an inline scalar literal.
func UseScalar(dtype dtypes.DataType, value float64) Use {
	return UseLiteral(NewScalarLiteral(dtype, value))
}

// IsLiteral returns whether the use holds an inline literal (as opposed
// to referencing a Def).
func (u Use) IsLiteral() bool { return u.lit != nil }

// Def returns the referenced definition, or nil for literal uses.
func (u Use) Def() *Def { return u.def }

// Literal returns the inline literal, or nil for def uses.
func (u Use) Literal() *Literal { return u.lit }

// Shape of the used value.
func (u Use) Shape() shapes.Shape {
	if u.def != nil {
		return u.def.shape
	}
	if u.lit != nil {
		return u.lit.shape
	}
	return shapes.Invalid()
}

// DType of the used value.
func (u Use) DType() dtypes.DataType { return u.Shape().DType }

// Equal reports whether two uses denote the same operand: def uses
// compare by Def identity, literal uses structurally.
func (u Use) Equal(o Use) bool {
	if u.def != nil || o.def != nil {
		return u.def == o.def
	}
	if u.lit != nil && o.lit != nil {
		return u.lit.Equal(o.lit)
	}
	return u.lit == o.lit
}

// String implements fmt.Stringer using the textual listing's operand
// syntax.
func (u Use) String() string {
	if u.def != nil {
		return u.def.String()
	}
	if u.lit != nil {
		return u.lit.String()
	}
	return "<invalid use>"
}

// Literal is an inline scalar or dense tensor value carried directly in
// an operand list, with no Def backing it.
type Literal struct {
	shape  shapes.Shape
	values []float64 // flat, row-major; quantized to shape.DType.
}

// NewScalarLiteral returns a scalar literal, quantized to the dtype.
func NewScalarLiteral(dtype dtypes.DataType, value float64) *Literal {
	if !dtype.Valid() {
		exceptions.Panicf("NewScalarLiteral: invalid data type")
	}
	return &Literal{shape: shapes.Scalar(dtype), values: []float64{dtype.Quantize(value)}}
}

// NewTensorLiteral returns a dense tensor literal with the given flat,
// row-major values, quantized to the shape's dtype.
func NewTensorLiteral(shape shapes.Shape, values []float64) (*Literal, error) {
	if !shape.Ok() {
		return nil, errors.Errorf("NewTensorLiteral: invalid shape")
	}
	if len(values) != shape.Size() {
		return nil, errors.Errorf("NewTensorLiteral: shape %s holds %d elements, got %d values",
			shape, shape.Size(), len(values))
	}
	quantized := make([]float64, len(values))
	for ii, v := range values {
		quantized[ii] = shape.DType.Quantize(v)
	}
	return &Literal{shape: shape, values: quantized}, nil
}

// Shape of the literal.
func (l *Literal) Shape() shapes.Shape { return l.shape }

// IsScalar returns whether the literal is rank 0.
func (l *Literal) IsScalar() bool { return l.shape.IsScalar() }

// Value returns the scalar value. It panics on non-scalar literals.
func (l *Literal) Value() float64 {
	if !l.IsScalar() {
		exceptions.Panicf("Literal.Value() called on non-scalar literal of shape %s", l.shape)
	}
	return l.values[0]
}

// Values returns the flat, row-major values. The slice is owned by the
// literal and must not be mutated.
func (l *Literal) Values() []float64 { return l.values }

// Equal compares two literals structurally.
func (l *Literal) Equal(o *Literal) bool {
	return l.shape.Equal(o.shape) && slices.Equal(l.values, o.values)
}

// String implements fmt.Stringer using the textual listing's literal
// syntax: "1.5:f32" for scalars, "[1,2,3]:i32[3]" for tensors.
func (l *Literal) String() string {
	if l.IsScalar() {
		return fmt.Sprintf("%s:%s", formatValue(l.values[0]), l.shape.DType)
	}
	parts := make([]string, len(l.values))
	for ii, v := range l.values {
		parts[ii] = formatValue(v)
	}
	return fmt.Sprintf("[%s]:%s", strings.Join(parts, ","), l.shape)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
