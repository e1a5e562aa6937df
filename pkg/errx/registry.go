package errx

import (
	"fmt"
	"sync"
)

// ErrorCode is an error definition registered under a module prefix.
type ErrorCode struct {
	Code       string
	Type       Type
	HTTPStatus int
	Message    string
}

// Registry holds the error codes of one module. Each module declares its
// registry at package level (prefix "JOB", "APP", "AUTH", ...), so codes like
// JOB_NOT_FOUND stay unique across the API surface.
type Registry struct {
	prefix string
	mu     sync.RWMutex
	codes  map[string]*ErrorCode
}

// NewRegistry creates a registry whose codes are prefixed with prefix.
func NewRegistry(prefix string) *Registry {
	return &Registry{prefix: prefix, codes: make(map[string]*ErrorCode)}
}

// Register declares a code. Intended for package-level var blocks.
func (r *Registry) Register(code string, errType Type, httpStatus int, message string) *ErrorCode {
	r.mu.Lock()
	defer r.mu.Unlock()

	ec := &ErrorCode{
		Code:       fmt.Sprintf("%s_%s", r.prefix, code),
		Type:       errType,
		HTTPStatus: httpStatus,
		Message:    message,
	}
	r.codes[code] = ec
	return ec
}

// New instantiates an Error from a registered code.
func (r *Registry) New(code *ErrorCode) *Error {
	return &Error{
		Code:       code.Code,
		Message:    code.Message,
		Type:       code.Type,
		HTTPStatus: code.HTTPStatus,
		Details:    make(map[string]any),
	}
}

// NewWithMessage instantiates an Error with a message override.
func (r *Registry) NewWithMessage(code *ErrorCode, message string) *Error {
	e := r.New(code)
	e.Message = message
	return e
}

// NewWithCause instantiates an Error wrapping an underlying cause.
func (r *Registry) NewWithCause(code *ErrorCode, cause error) *Error {
	e := r.New(code)
	e.Err = cause
	return e
}

// Get looks up a registered code by its unprefixed name.
func (r *Registry) Get(code string) (*ErrorCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ec, ok := r.codes[code]
	return ec, ok
}
