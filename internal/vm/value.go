package vm

import (
	"math"
	"strconv"
)

// ValueType identifies the type of value stored in the Value struct
type ValueType uint8

const (
	ValNil ValueType = iota
	ValBool
	ValNumber
	ValObj // Heap object (String, Function, Native)
)

// Value is a stack-allocated tagged union.
// It avoids heap allocation for the primitives (Nil, Bool, Number).
type Value struct {
	Type ValueType
	Data uint64 // Stores float64 bits or bool (0/1)
	Obj  Object // Holds heap objects
}

// Constructors

func NilVal() Value {
	return Value{Type: ValNil}
}

func BoolVal(v bool) Value {
	var data uint64
	if v {
		data = 1
	}
	return Value{Type: ValBool, Data: data}
}

func NumberVal(v float64) Value {
	return Value{Type: ValNumber, Data: math.Float64bits(v)}
}

func ObjVal(o Object) Value {
	return Value{Type: ValObj, Obj: o}
}

// Accessors

func (v Value) AsBool() bool {
	return v.Data == 1
}

func (v Value) AsNumber() float64 {
	return math.Float64frombits(v.Data)
}

// Type checking helpers

func (v Value) IsNil() bool    { return v.Type == ValNil }
func (v Value) IsBool() bool   { return v.Type == ValBool }
func (v Value) IsNumber() bool { return v.Type == ValNumber }
func (v Value) IsObj() bool    { return v.Type == ValObj }

func (v Value) IsString() bool {
	if v.Type != ValObj {
		return false
	}
	_, ok := v.Obj.(*StringObject)
	return ok
}

// AsString returns the contents of a string value. Callers must have
// checked IsString first.
func (v Value) AsString() string {
	return v.Obj.(*StringObject).Value
}

// IsFalsey reports whether the value is false under the language's
// truthiness rule: only nil and false are falsey.
func (v Value) IsFalsey() bool {
	return v.Type == ValNil || (v.Type == ValBool && v.Data == 0)
}

// Equals implements the language's == operator: structural for
// primitives, content for strings, identity for functions and natives.
// Values of different types are never equal.
func (v Value) Equals(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case ValNil:
		return true
	case ValBool:
		return v.Data == other.Data
	case ValNumber:
		return v.AsNumber() == other.AsNumber()
	case ValObj:
		if a, ok := v.Obj.(*StringObject); ok {
			b, ok := other.Obj.(*StringObject)
			return ok && a.Value == b.Value
		}
		return v.Obj == other.Obj
	default:
		return false
	}
}

// Inspect returns the value's display form, as produced by print.
func (v Value) Inspect() string {
	switch v.Type {
	case ValNil:
		return "nil"
	case ValBool:
		if v.Data == 1 {
			return "true"
		}
		return "false"
	case ValNumber:
		return formatNumber(v.AsNumber())
	case ValObj:
		return v.Obj.Inspect()
	default:
		return "<?>"
	}
}

// formatNumber renders a number with the shortest decimal
// representation: integral doubles print without a fractional part.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
