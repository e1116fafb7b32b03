// Package ascomerr is the closed taxonomy of ASCOM Alpaca error kinds
// this bridge can return. Every kind carries a fixed numeric code and a
// canonical message; values are constructed through the factory functions
// below and carried as ordinary Go errors inside a result.Result, never
// thrown.
package ascomerr

import "fmt"

// Kind identifies one of the closed set of ASCOM error kinds.
type Kind int

const (
	// KindNotImplemented: capability absent or operation not supplied.
	KindNotImplemented Kind = iota
	// KindInvalidValue: argument out of range.
	KindInvalidValue
	// KindValueNotSet: read before first write.
	KindValueNotSet
	// KindNotConnected: operation on a disconnected device.
	KindNotConnected
	// KindParked: operation forbidden while parked.
	KindParked
	// KindSlaved: operation forbidden while slaved.
	KindSlaved
	// KindInvalidOperation: driver reports failure.
	KindInvalidOperation
	// KindActionNotImplemented: unknown named action.
	KindActionNotImplemented
	// KindDriverCustom: driver-specific error in 0x500-0xFFF.
	KindDriverCustom
	// KindHTTP: dispatcher-level rejection; carries an HTTP status, not an
	// envelope error code. Never populates the JSON envelope.
	KindHTTP
)

// Fixed ASCOM Alpaca codes. KindDriverCustom and KindHTTP carry their own
// dynamic code instead of one of these.
const (
	CodeNotImplemented       = 0x400
	CodeInvalidValue         = 0x401
	CodeValueNotSet          = 0x402
	CodeNotConnected         = 0x407
	CodeParked               = 0x408
	CodeSlaved               = 0x409
	CodeInvalidOperation     = 0x40B
	CodeActionNotImplemented = 0x40C
	CodeDriverCustomBase     = 0x500
	CodeHTTPBase             = 0x1000
)

// Error is the concrete error value carried through the result algebra.
type Error struct {
	Kind    Kind
	Code    int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsHTTP reports whether this error should be rendered as a raw HTTP
// response (status = Code) instead of populating the JSON envelope.
func (e *Error) IsHTTP() bool {
	return e.Kind == KindHTTP
}

// NotImplemented builds the capability-absent / unsupported-operation error.
func NotImplemented() *Error {
	return &Error{Kind: KindNotImplemented, Code: CodeNotImplemented, Message: "Not implemented"}
}

// InvalidValue builds the argument-out-of-range error.
func InvalidValue() *Error {
	return &Error{Kind: KindInvalidValue, Code: CodeInvalidValue, Message: "Invalid value"}
}

// ValueNotSet builds the read-before-first-write error.
func ValueNotSet() *Error {
	return &Error{Kind: KindValueNotSet, Code: CodeValueNotSet, Message: "Value not set"}
}

// NotConnected builds the disconnected-device error.
func NotConnected() *Error {
	return &Error{Kind: KindNotConnected, Code: CodeNotConnected, Message: "Not connected"}
}

// Parked builds the forbidden-while-parked error.
func Parked() *Error {
	return &Error{Kind: KindParked, Code: CodeParked, Message: "Invalid operation while parked"}
}

// Slaved builds the forbidden-while-slaved error.
func Slaved() *Error {
	return &Error{Kind: KindSlaved, Code: CodeSlaved, Message: "Invalid operation while slaved"}
}

// InvalidOperation builds the driver-rejected-the-call error.
func InvalidOperation() *Error {
	return &Error{Kind: KindInvalidOperation, Code: CodeInvalidOperation, Message: "Invalid operation"}
}

// ActionNotImplemented builds the unknown-named-action error.
func ActionNotImplemented() *Error {
	return &Error{Kind: KindActionNotImplemented, Code: CodeActionNotImplemented, Message: "Action not implemented"}
}

// Custom builds a driver_custom error with a caller-supplied message, used
// both for driver-specific failures and for argument-parser field errors.
func Custom(message string) *Error {
	return &Error{Kind: KindDriverCustom, Code: CodeDriverCustomBase, Message: message}
}

// Customf is Custom with fmt.Sprintf formatting.
func Customf(format string, args ...interface{}) *Error {
	return Custom(fmt.Sprintf(format, args...))
}

// HTTP builds a dispatcher-level rejection carrying a raw HTTP status; it
// never populates the JSON envelope.
func HTTP(status int, message string) *Error {
	return &Error{Kind: KindHTTP, Code: CodeHTTPBase + status, Message: message}
}

// HTTPStatus extracts the HTTP status code from a KindHTTP error.
func (e *Error) HTTPStatus() int {
	return e.Code - CodeHTTPBase
}

// FieldMissing is the argument-parser's missing-field error.
func FieldMissing(name string) *Error {
	return Customf("Field '%s' not found", name)
}

// FieldInvalid is the argument-parser's malformed-field error: `custom_error
// ("Invalid '<name>' field")`.
func FieldInvalid(name string) *Error {
	return Customf("Invalid '%s' field", name)
}
