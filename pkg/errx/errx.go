package errx

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type categorizes an error for transport mapping and logging.
type Type string

const (
	TypeInternal      Type = "INTERNAL"
	TypeValidation    Type = "VALIDATION"
	TypeAuthorization Type = "AUTHORIZATION"
	TypeForbidden     Type = "FORBIDDEN"
	TypeNotFound      Type = "NOT_FOUND"
	TypeConflict      Type = "CONFLICT"
	TypeBusiness      Type = "BUSINESS"
	TypeExternal      Type = "EXTERNAL"
)

func (t Type) String() string { return string(t) }

// Error is the error value used across all modules. It carries a stable
// machine code, a category, the suggested HTTP status and free-form details.
type Error struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Type       Type           `json:"type"`
	HTTPStatus int            `json:"http_status"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// WithDetail attaches a key/value pair and returns the error for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails attaches several key/value pairs at once.
func (e *Error) WithDetails(details map[string]any) *Error {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// MarshalJSON includes the rendered error string alongside the fields.
func (e *Error) MarshalJSON() ([]byte, error) {
	type alias Error
	return json.Marshal(&struct {
		*alias
		Error string `json:"error,omitempty"`
	}{alias: (*alias)(e), Error: e.Error()})
}

// New creates an Error of the given type with the type's default HTTP status.
func New(message string, errType Type) *Error {
	return &Error{
		Code:       string(errType),
		Message:    message,
		Type:       errType,
		HTTPStatus: statusFor(errType),
		Details:    make(map[string]any),
	}
}

// Wrap attaches context to an existing error. The original is preserved via
// Unwrap; if it is already an *Error its code and details carry over.
func Wrap(err error, message string, errType Type) *Error {
	if err == nil {
		return nil
	}
	var inner *Error
	if errors.As(err, &inner) {
		return &Error{
			Code:       inner.Code,
			Message:    message,
			Type:       errType,
			HTTPStatus: inner.HTTPStatus,
			Details:    inner.Details,
			Err:        err,
		}
	}
	return &Error{
		Code:       string(errType),
		Message:    message,
		Type:       errType,
		HTTPStatus: statusFor(errType),
		Details:    make(map[string]any),
		Err:        err,
	}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, errType Type, format string, args ...any) *Error {
	return Wrap(err, fmt.Sprintf(format, args...), errType)
}

// Is reports whether err matches target (stdlib passthrough).
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain matching target (stdlib passthrough).
func As(err error, target any) bool { return errors.As(err, target) }

func statusFor(t Type) int {
	switch t {
	case TypeValidation:
		return 400
	case TypeAuthorization:
		return 401
	case TypeForbidden:
		return 403
	case TypeNotFound:
		return 404
	case TypeConflict:
		return 409
	case TypeBusiness:
		return 422
	case TypeExternal:
		return 502
	default:
		return 500
	}
}
