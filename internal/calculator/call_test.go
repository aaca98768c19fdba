package calculator

import (
	"encoding/json"
	"errors"
	"testing"
)

type celsius float64

type boxed struct{ v float64 }

func (b boxed) Float64() float64 { return b.v }

func TestCallScenario(t *testing.T) {
	cases := []struct {
		op       string
		a, b     any
		expected float64
	}{
		{OpAdd, 2.0, 3.0, 5},
		{OpSub, 5.0, 3.0, 2},
		{OpMul, 4.0, 2.5, 10},
		{OpDiv, 10.0, 2.0, 5},
		{OpAdd, 15, 22, 37},
		{OpAdd, 1.5, 2, 3.5},
		{OpSub, int8(15), uint16(22), -7},
		{OpMul, float32(1.5), json.Number("2"), 3},
		{OpDiv, celsius(9), boxed{3}, 3},
		{OpAdd, true, 2, 3},
		{OpMul, 2.0, false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.op, func(t *testing.T) {
			result, err := Call(tc.op, tc.a, tc.b)
			if err != nil {
				t.Fatalf("Call(%q, %v, %v) error = %v", tc.op, tc.a, tc.b, err)
			}
			if result != tc.expected {
				t.Errorf("Call(%q, %v, %v) = %v, want %v", tc.op, tc.a, tc.b, result, tc.expected)
			}
		})
	}
}

func TestCallDivByZero(t *testing.T) {
	_, err := Call(OpDiv, 1.0, 0.0)
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
	_, err = Call(OpDiv, 15, 0)
	if KindOf(err) != KindDivisionByZero {
		t.Fatalf("expected DivisionByZero for integer zero, got %v", err)
	}
	_, err = Call(OpDiv, 1.0, false)
	if KindOf(err) != KindDivisionByZero {
		t.Fatalf("expected DivisionByZero for false divisor, got %v", err)
	}
}

func TestCallInvalidArgument(t *testing.T) {
	cases := []struct {
		name string
		op   string
		args []any
	}{
		{"no arguments", OpAdd, nil},
		{"one argument", OpSub, []any{1.0}},
		{"three arguments", OpMul, []any{1.0, 2.0, 3.0}},
		{"string argument", OpAdd, []any{"2", 3.0}},
		{"nil argument", OpSub, []any{nil, 1.0}},
		{"slice argument", OpAdd, []any{[]float64{1}, 2.0}},
		{"non-numeric json number", OpAdd, []any{json.Number("abc"), 1.0}},
		{"unknown operation", "pow", []any{2.0, 3.0}},
		// Validation happens before the divisor is inspected.
		{"bad argument beats zero divisor", OpDiv, []any{"x", 0.0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Call(tc.op, tc.args...)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("Call(%q, %v) error = %v, want ErrInvalidArgument", tc.op, tc.args, err)
			}
			if KindOf(err) != KindInvalidArgument {
				t.Errorf("KindOf = %q, want %q", KindOf(err), KindInvalidArgument)
			}
		})
	}
}

func TestCallErrorMessages(t *testing.T) {
	_, err := Call(OpAdd, 1.0)
	if err.Error() != "add: takes exactly 2 arguments (1 given)" {
		t.Errorf("arity message = %q", err.Error())
	}
	_, err = Call(OpAdd, 1.0, "x")
	if err.Error() != "add: argument 2 must be a number, not string" {
		t.Errorf("type message = %q", err.Error())
	}
}

func TestOperations(t *testing.T) {
	ops := Operations()
	want := []string{OpAdd, OpSub, OpMul, OpDiv}
	if len(ops) != len(want) {
		t.Fatalf("expected %d operations, got %d", len(want), len(ops))
	}
	for i, name := range want {
		if ops[i].Name != name {
			t.Errorf("operation %d = %q, want %q", i, ops[i].Name, name)
		}
		if ops[i].Doc == "" {
			t.Errorf("operation %q has no doc", name)
		}
	}

	// Callers get a copy.
	ops[0].Name = "changed"
	if Operations()[0].Name != OpAdd {
		t.Errorf("Operations() exposed internal slice")
	}
}

func TestKindOfForeignError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != "" {
		t.Errorf("KindOf(foreign) = %q, want empty", got)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
}
