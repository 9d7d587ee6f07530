package table

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind is the type tag of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a scalar cell of a table. The zero Value is null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

func Null() Value           { return Value{} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Int(i int64) Value     { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value     { return Value{kind: KindBool, b: b} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) isNumber() bool {
	return v.kind == KindInt || v.kind == KindFloat
}

// Str returns the string payload, if v is a string.
func (v Value) Str() (string, bool) {
	return v.s, v.kind == KindString
}

// Int returns the integer payload, if v is an int.
func (v Value) Int() (int64, bool) {
	return v.i, v.kind == KindInt
}

// Float returns v as float64 for both numeric kinds.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Bool returns the boolean payload, if v is a bool.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// String renders v the way it is written to tab separated output. Null renders as ".".
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return "."
	}
}

// Equal reports whether a and b have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}

// Compare orders a before b (-1), after b (1) or equal (0).
//
// Numbers compare numerically across int and float, strings lexically and false sorts
// before true. Null and NaN are missing and sort after every other value. Values of
// different non-numeric kinds are ordered by kind.
func Compare(a, b Value) int {
	switch am, bm := a.missing(), b.missing(); {
	case am && bm:
		return 0
	case am:
		return 1
	case bm:
		return -1
	}

	if a.isNumber() && b.isNumber() {
		if a.kind == KindInt && b.kind == KindInt {
			return cmpOrdered(a.i, b.i)
		}
		af, _ := a.Float()
		bf, _ := b.Float()
		return cmpOrdered(af, bf)
	}

	if a.kind != b.kind {
		return cmpOrdered(a.kind, b.kind)
	}

	switch a.kind {
	case KindString:
		return cmpOrdered(a.s, b.s)
	case KindBool:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}
	}

	return 0
}

func (v Value) missing() bool {
	return v.kind == KindNull || (v.kind == KindFloat && math.IsNaN(v.f))
}

func cmpOrdered[T ~int64 | ~float64 | ~string | ~uint8](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// MarshalJSON encodes v as a bare JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.s)
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, errors.Errorf("unsupported float value %v", v.f)
		}
		data := strconv.FormatFloat(v.f, 'g', -1, 64)
		// keep a float marker so that the value decodes as float again
		if !bytes.ContainsAny([]byte(data), ".eE") {
			data += ".0"
		}
		return []byte(data), nil
	case KindBool:
		return []byte(strconv.FormatBool(v.b)), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON scalar. Integral number literals decode as int, other
// numbers as float.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty value")
	}

	switch {
	case bytes.Equal(data, []byte("null")):
		*v = Null()
	case bytes.Equal(data, []byte("true")):
		*v = Bool(true)
	case bytes.Equal(data, []byte("false")):
		*v = Bool(false)
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.WithMessage(err, "failed to decode string value")
		}
		*v = String(s)
	case data[0] == '{' || data[0] == '[':
		return errors.Errorf("value must be a scalar, got %s", data)
	case bytes.ContainsAny(data, ".eE"):
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return errors.WithMessagef(err, "failed to decode float value %s", data)
		}
		*v = Float(f)
	default:
		i, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return errors.WithMessagef(err, "failed to decode int value %s", data)
		}
		*v = Int(i)
	}

	return nil
}
