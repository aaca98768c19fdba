// Package calculator provides basic floating-point arithmetic operations.
//
// The typed functions are the Go API. Call is the name-based entry used by
// script hosts and wire surfaces, where arguments arrive untyped and must be
// validated before computing.
package calculator

// Add returns the sum of a and b.
func Add(a, b float64) float64 {
	return a + b
}

// Sub returns a minus b.
func Sub(a, b float64) float64 {
	return a - b
}

// Mul returns a times b.
func Mul(a, b float64) float64 {
	return a * b
}

// Div returns a divided by b.
// Only an exact zero divisor is rejected; NaN and Inf follow IEEE-754.
func Div(a, b float64) (float64, error) {
	if b == 0 {
		return 0, &Error{Op: OpDiv, Kind: KindDivisionByZero, Detail: "Cannot divide by zero"}
	}
	return a / b, nil
}
