// Package dtypes defines DataType, the element type of a tensor.
//
// A DataType is a value type combining a base Kind (boolean, signed or
// unsigned integer, floating point) with a bit width. Two DataTypes are
// equal iff their Kind and Bits match (plain struct comparison).
//
// Float16 values use the github.com/x448/float16 implementation for
// conversion to and from their 16-bit representation.
package dtypes

import (
	"fmt"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Kind is the base kind of a DataType, without the bit width.
type Kind int

//go:generate go tool enumer -type=Kind -trimprefix=Kind -transform=lower -output=gen_kind_enumer.go dtypes.go

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
)

// DataType of the unit element of a tensor: a Kind plus a bit width.
//
// The zero value is the invalid DataType.
type DataType struct {
	Kind Kind
	Bits int
}

// Predefined data types. These cover every DataType the IR accepts;
// constructing others (e.g. a 3-bit integer) is not supported.
var (
	InvalidDType = DataType{}

	Bool = DataType{KindBool, 1}

	Int8  = DataType{KindInt, 8}
	Int16 = DataType{KindInt, 16}
	Int32 = DataType{KindInt, 32}
	Int64 = DataType{KindInt, 64}

	Uint8  = DataType{KindUint, 8}
	Uint16 = DataType{KindUint, 16}
	Uint32 = DataType{KindUint, 32}
	Uint64 = DataType{KindUint, 64}

	Float16 = DataType{KindFloat, 16}
	Float32 = DataType{KindFloat, 32}
	Float64 = DataType{KindFloat, 64}
)

// All lists every valid DataType, in the order used for deterministic
// reports.
var All = []DataType{
	Bool,
	Int8, Int16, Int32, Int64,
	Uint8, Uint16, Uint32, Uint64,
	Float16, Float32, Float64,
}

// Valid returns whether dt is one of the supported data types.
func (dt DataType) Valid() bool {
	switch dt.Kind {
	case KindBool:
		return dt.Bits == 1
	case KindInt, KindUint:
		switch dt.Bits {
		case 8, 16, 32, 64:
			return true
		}
	case KindFloat:
		switch dt.Bits {
		case 16, 32, 64:
			return true
		}
	}
	return false
}

// IsInt returns whether dt is a signed or unsigned integer type.
func (dt DataType) IsInt() bool { return dt.Kind == KindInt || dt.Kind == KindUint }

// IsUnsigned returns whether dt is an unsigned integer type.
func (dt DataType) IsUnsigned() bool { return dt.Kind == KindUint }

// IsFloat returns whether dt is a floating point type.
func (dt DataType) IsFloat() bool { return dt.Kind == KindFloat }

// IsBool returns whether dt is the boolean type.
func (dt DataType) IsBool() bool { return dt.Kind == KindBool }

// Size returns the storage size of one element in bytes. Bool takes one
// byte.
func (dt DataType) Size() int {
	if dt.Kind == KindBool {
		return 1
	}
	return dt.Bits / 8
}

// String implements fmt.Stringer, using the short names used by the
// textual listing: "bool", "i32", "u8", "f64", etc.
func (dt DataType) String() string {
	switch dt.Kind {
	case KindBool:
		return "bool"
	case KindInt:
		return fmt.Sprintf("i%d", dt.Bits)
	case KindUint:
		return fmt.Sprintf("u%d", dt.Bits)
	case KindFloat:
		return fmt.Sprintf("f%d", dt.Bits)
	}
	return "invalid"
}

// FromString parses the short name of a DataType, the inverse of String.
func FromString(s string) (DataType, error) {
	if s == "bool" {
		return Bool, nil
	}
	if len(s) < 2 {
		return InvalidDType, errors.Errorf("cannot parse data type from %q", s)
	}
	var kind Kind
	switch s[0] {
	case 'i':
		kind = KindInt
	case 'u':
		kind = KindUint
	case 'f':
		kind = KindFloat
	default:
		return InvalidDType, errors.Errorf("cannot parse data type from %q", s)
	}
	bits, err := strconv.Atoi(s[1:])
	if err != nil {
		return InvalidDType, errors.Wrapf(err, "cannot parse data type from %q", s)
	}
	dt := DataType{Kind: kind, Bits: bits}
	if !dt.Valid() {
		return InvalidDType, errors.Errorf("unsupported data type %q", s)
	}
	return dt, nil
}

// Quantize converts v to a value representable by dt, still returned as
// a float64: integers truncate toward zero, booleans collapse to 0 or 1,
// floats narrow to the dtype's precision. Literal operands are
// normalized with it so that serializing and re-parsing a module yields
// identical literal values.
func (dt DataType) Quantize(v float64) float64 {
	switch dt.Kind {
	case KindBool:
		if v != 0 {
			return 1
		}
		return 0
	case KindInt, KindUint:
		return math.Trunc(v)
	case KindFloat:
		// Overflowing values clamp to the dtype's finite range instead
		// of narrowing to Inf, which has no listing form.
		switch dt.Bits {
		case 16:
			const maxFloat16 = 65504
			v = math.Max(-maxFloat16, math.Min(maxFloat16, v))
			return float64(float16.Fromfloat32(float32(v)).Float32())
		case 32:
			v = math.Max(-math.MaxFloat32, math.Min(math.MaxFloat32, v))
			return float64(float32(v))
		}
	}
	return v
}
