package port

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the type stored in a port.
type Kind int

const (
	KindBool Kind = iota + 1
	KindInt64
	KindUint64
	KindDouble
	KindPointer
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindDouble:
		return "double"
	case KindPointer:
		return "pointer"
	default:
		return "invalid"
	}
}

// ParseKind returns the kind named by Kind.String.
func ParseKind(name string) (Kind, bool) {
	for k := KindBool; k <= KindPointer; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// Value is a tagged value cell. The zero Value has no kind.
type Value struct {
	kind Kind
	b    bool
	i    int64
	u    uint64
	f    float64
	p    any
}

// Bool returns a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int64 returns a signed integer value.
func Int64(v int64) Value { return Value{kind: KindInt64, i: v} }

// Uint64 returns an unsigned integer value.
func Uint64(v uint64) Value { return Value{kind: KindUint64, u: v} }

// Double returns a floating point value.
func Double(v float64) Value { return Value{kind: KindDouble, f: v} }

// Pointer returns an opaque pointer value.
func Pointer(v any) Value { return Value{kind: KindPointer, p: v} }

// Kind returns the stored kind.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the value as a boolean. Numeric kinds are true when non-zero.
func (v Value) AsBool() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt64:
		return v.i != 0
	case KindUint64:
		return v.u != 0
	case KindDouble:
		return v.f != 0
	case KindPointer:
		return v.p != nil
	default:
		return false
	}
}

// AsFloat64 returns the value converted to float64.
func (v Value) AsFloat64() float64 {
	switch v.kind {
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindInt64:
		return float64(v.i)
	case KindUint64:
		return float64(v.u)
	case KindDouble:
		return v.f
	default:
		return 0
	}
}

// AsInt64 returns the value converted to int64, truncating doubles.
func (v Value) AsInt64() int64 {
	switch v.kind {
	case KindInt64:
		return v.i
	case KindUint64:
		if v.u > math.MaxInt64 {
			return math.MaxInt64
		}
		return int64(v.u)
	default:
		return int64(v.AsFloat64())
	}
}

// AsUint64 returns the value converted to uint64; negative values map to 0.
func (v Value) AsUint64() uint64 {
	switch v.kind {
	case KindUint64:
		return v.u
	case KindInt64:
		if v.i < 0 {
			return 0
		}
		return uint64(v.i)
	default:
		f := v.AsFloat64()
		if f <= 0 || math.IsNaN(f) {
			return 0
		}
		return uint64(f)
	}
}

// AsPointer returns the opaque pointer, or nil for other kinds.
func (v Value) AsPointer() any {
	if v.kind != KindPointer {
		return nil
	}
	return v.p
}

// Convert returns v coerced to kind k. Pointers only convert to pointers.
func (v Value) Convert(k Kind) (Value, error) {
	if v.kind == k {
		return v, nil
	}
	if k == KindPointer || v.kind == KindPointer || v.kind == 0 {
		return Value{}, fmt.Errorf("%w: %s to %s", ErrKindMismatch, v.kind, k)
	}

	switch k {
	case KindBool:
		return Bool(v.AsBool()), nil
	case KindInt64:
		return Int64(v.AsInt64()), nil
	case KindUint64:
		return Uint64(v.AsUint64()), nil
	case KindDouble:
		return Double(v.AsFloat64()), nil
	default:
		return Value{}, fmt.Errorf("%w: %s to %s", ErrKindMismatch, v.kind, k)
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt64:
		return fmt.Sprintf("%d", v.i)
	case KindUint64:
		return fmt.Sprintf("%d", v.u)
	case KindDouble:
		return fmt.Sprintf("%g", v.f)
	case KindPointer:
		return fmt.Sprintf("%p", v.p)
	default:
		return "<nil>"
	}
}

// ParseValue parses s, as produced by Value.String, into a value of kind k.
// Pointer values cannot be parsed.
func ParseValue(k Kind, s string) (Value, error) {
	var (
		v   Value
		err error
	)
	switch k {
	case KindBool:
		var b bool
		b, err = strconv.ParseBool(s)
		v = Bool(b)
	case KindInt64:
		var i int64
		i, err = strconv.ParseInt(s, 10, 64)
		v = Int64(i)
	case KindUint64:
		var u uint64
		u, err = strconv.ParseUint(s, 10, 64)
		v = Uint64(u)
	case KindDouble:
		var f float64
		f, err = strconv.ParseFloat(s, 64)
		v = Double(f)
	default:
		return Value{}, fmt.Errorf("%w: cannot parse %s", ErrKindMismatch, k)
	}
	if err != nil {
		return Value{}, fmt.Errorf("port: parse %s %q: %w", k, s, err)
	}
	return v, nil
}
