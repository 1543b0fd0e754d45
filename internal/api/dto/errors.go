package dto

// APIError is the JSON body of every non-2xx ledger response. Code is one of
// the ErrCode values; Message is safe to show to the user.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes, one per HTTP status the handlers map domain errors to.
const (
	ErrCodeNotFound      = "not_found"        // 404: unknown session, store purchase or item
	ErrCodeBadRequest    = "bad_request"      // 400: body is not valid JSON
	ErrCodeInternalError = "internal_error"   // 500
	ErrCodeValidation    = "validation_error" // 422: negative amount, unknown mode or status
	ErrCodeConflict      = "conflict"         // 409: delete blocked by children, session busy
)

// NewAPIError builds an error body.
func NewAPIError(code, message string) APIError {
	return APIError{
		Code:    code,
		Message: message,
	}
}

// NotFoundError reports a missing resource, e.g. "session not found".
func NotFoundError(resource string) APIError {
	return NewAPIError(ErrCodeNotFound, resource+" not found")
}

// BadRequestError reports a body that could not be decoded.
func BadRequestError(message string) APIError {
	return NewAPIError(ErrCodeBadRequest, message)
}

// InternalError hides storage and lock failures behind a generic message.
func InternalError() APIError {
	return NewAPIError(ErrCodeInternalError, "an internal error occurred")
}

// ValidationError carries the domain validation message back to the caller.
func ValidationError(message string) APIError {
	return NewAPIError(ErrCodeValidation, message)
}

// ConflictError reports a request that collides with the current ledger state.
func ConflictError(message string) APIError {
	return NewAPIError(ErrCodeConflict, message)
}
