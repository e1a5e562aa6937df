package errx

// HTTPResponse is the JSON body returned for any API error.
type HTTPResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Type    string         `json:"type"`
	Details map[string]any `json:"details,omitempty"`
}

// ToHTTPResponse converts an Error to the wire representation.
func (e *Error) ToHTTPResponse() HTTPResponse {
	return HTTPResponse{
		Code:    e.Code,
		Message: e.Message,
		Type:    string(e.Type),
		Details: e.Details,
	}
}

// FromError normalizes any error to an *Error, wrapping unknown ones as
// internal.
func FromError(err error) *Error {
	var xerr *Error
	if As(err, &xerr) {
		return xerr
	}
	return Wrap(err, "Internal server error", TypeInternal)
}
