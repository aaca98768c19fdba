package script

import (
	"reflect"

	"github.com/traefik/yaegi/interp"

	"github.com/pengelbrecht/calc/internal/calculator"
)

// ImportPath is the path scripts use to import the calculator module.
const ImportPath = "calculator"

// Symbols exposes the calculator to the interpreter under ImportPath.
var Symbols = interp.Exports{
	ImportPath + "/calculator": {
		"Add":  reflect.ValueOf(calculator.Add),
		"Sub":  reflect.ValueOf(calculator.Sub),
		"Mul":  reflect.ValueOf(calculator.Mul),
		"Div":  reflect.ValueOf(calculator.Div),
		"Call": reflect.ValueOf(calculator.Call),

		"KindOf":              reflect.ValueOf(calculator.KindOf),
		"KindInvalidArgument": reflect.ValueOf(calculator.KindInvalidArgument),
		"KindDivisionByZero":  reflect.ValueOf(calculator.KindDivisionByZero),
		"ErrInvalidArgument":  reflect.ValueOf(&calculator.ErrInvalidArgument).Elem(),
		"ErrDivisionByZero":   reflect.ValueOf(&calculator.ErrDivisionByZero).Elem(),

		"Error": reflect.ValueOf((*calculator.Error)(nil)),
		"Kind":  reflect.ValueOf((*calculator.Kind)(nil)),
	},
}
