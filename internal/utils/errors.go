package utils

import "errors"

// Error taxonomy shared by the repository, service and handler layers.
// Callers wrap these with fmt.Errorf("%w: ...") and match with errors.Is.
var (
	// ErrValidation marks a request rejected because required input is missing or invalid.
	ErrValidation = errors.New("VALIDATION_ERROR")
	// ErrNotFound marks a reference to an entity that does not exist.
	ErrNotFound = errors.New("NOT_FOUND")
	// ErrMalformedEncoding marks a stored column that cannot be decoded back into
	// its nested form. It originates from storage, never from request input.
	ErrMalformedEncoding = errors.New("MALFORMED_ENCODING")
)
