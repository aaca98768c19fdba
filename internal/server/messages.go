package server

import (
	"math"
	"strconv"
)

// Message types on the call socket.
const (
	TypeCall         = "call"
	TypeCallResponse = "call_response"
	TypeError        = "error"
)

// CallRequest asks the server to run one operation.
type CallRequest struct {
	Type      string `json:"type"`      // "call"
	RequestID string `json:"requestId"` // echoed back to correlate the response
	Operation string `json:"operation"` // "add", "sub", "mul", "div"
	Args      []any  `json:"args"`      // numbers arrive as json.Number
}

// CallResponse is sent back after every CallRequest.
type CallResponse struct {
	Type      string  `json:"type"` // "call_response"
	RequestID string  `json:"requestId"`
	Success   bool    `json:"success"`
	Result    *Number `json:"result,omitempty"`
	Error     string  `json:"error,omitempty"`
	Kind      string  `json:"kind,omitempty"` // "InvalidArgument" or "DivisionByZero"
}

// ErrorMessage reports a frame that could not be handled at all.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

// OperationInfo describes one entry point on GET /operations.
type OperationInfo struct {
	Name string `json:"name"`
	Doc  string `json:"doc"`
}

// Number is a float64 that survives JSON encoding when it is not finite.
// NaN and the infinities are written as the strings "NaN", "+Inf", "-Inf".
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte(strconv.Quote(strconv.FormatFloat(f, 'g', -1, 64))), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}
