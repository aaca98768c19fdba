package calculator

import "errors"

// Kind classifies a calculator error.
type Kind string

const (
	// KindInvalidArgument marks input that is not two numeric values.
	KindInvalidArgument Kind = "InvalidArgument"
	// KindDivisionByZero marks a div call with a zero divisor.
	KindDivisionByZero Kind = "DivisionByZero"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its Kind.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrDivisionByZero  = errors.New("division by zero")
)

// Error is the structured error returned by every operation.
type Error struct {
	Op     string // operation name, may be empty for unknown names
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Detail
	}
	return e.Op + ": " + e.Detail
}

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidArgument:
		return e.Kind == KindInvalidArgument
	case ErrDivisionByZero:
		return e.Kind == KindDivisionByZero
	}
	return false
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func invalidArgument(op, detail string) *Error {
	return &Error{Op: op, Kind: KindInvalidArgument, Detail: detail}
}
