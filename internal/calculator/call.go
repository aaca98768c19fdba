package calculator

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Operation names accepted by Call.
const (
	OpAdd = "add"
	OpSub = "sub"
	OpMul = "mul"
	OpDiv = "div"
)

// Floater is implemented by host values that can convert themselves to a float.
type Floater interface {
	Float64() float64
}

// Operation describes one named entry point.
type Operation struct {
	Name string
	Doc  string
	fn   func(a, b float64) (float64, error)
}

// Apply runs the operation on two already-validated operands.
func (o Operation) Apply(a, b float64) (float64, error) {
	return o.fn(a, b)
}

var operations = []Operation{
	{Name: OpAdd, Doc: "Addition function", fn: infallible(Add)},
	{Name: OpSub, Doc: "Subtraction function", fn: infallible(Sub)},
	{Name: OpMul, Doc: "Multiplication function", fn: infallible(Mul)},
	{Name: OpDiv, Doc: "Division function", fn: Div},
}

func infallible(f func(a, b float64) float64) func(a, b float64) (float64, error) {
	return func(a, b float64) (float64, error) {
		return f(a, b), nil
	}
}

// Operations returns the entry points in declaration order.
func Operations() []Operation {
	out := make([]Operation, len(operations))
	copy(out, operations)
	return out
}

// Lookup returns the operation registered under name.
func Lookup(name string) (Operation, bool) {
	for _, op := range operations {
		if op.Name == name {
			return op, true
		}
	}
	return Operation{}, false
}

// Call invokes the named operation with exactly two numeric arguments.
// Arity, type and name problems are reported as KindInvalidArgument before
// anything is computed.
func Call(name string, args ...any) (float64, error) {
	op, ok := Lookup(name)
	if !ok {
		return 0, invalidArgument(name, fmt.Sprintf("unknown operation %q", name))
	}
	if len(args) != 2 {
		return 0, invalidArgument(name, fmt.Sprintf("takes exactly 2 arguments (%d given)", len(args)))
	}

	a, err := ToFloat(args[0])
	if err != nil {
		return 0, invalidArgument(name, fmt.Sprintf("argument 1 %v", err))
	}
	b, err := ToFloat(args[1])
	if err != nil {
		return 0, invalidArgument(name, fmt.Sprintf("argument 2 %v", err))
	}
	return op.Apply(a, b)
}

// ToFloat interprets v as a float64. Integer and float kinds, json.Number and
// Floater are accepted, and bool counts as 1 or 0. Everything else, including
// string and nil, is not.
func ToFloat(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, fmt.Errorf("must be a number, not nil")
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("must be a number, not %q", n.String())
		}
		return f, nil
	case Floater:
		return n.Float64(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	}
	return 0, fmt.Errorf("must be a number, not %T", v)
}
