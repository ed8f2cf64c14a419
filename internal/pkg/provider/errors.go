package provider

import "errors"

// Classified provider failures. Adapters wrap every vendor error into
// exactly one of these, keeping the vendor's message in the wrap, so callers
// can map failures to responses without vendor knowledge.
var (
	// ErrAuth means the vendor rejected our credentials.
	ErrAuth = errors.New("provider rejected credentials")
	// ErrBadImage means the image format or size is unacceptable.
	ErrBadImage = errors.New("unsupported image format or size")
	// ErrTransient means a timeout, connection failure or vendor throttle;
	// the call may be retried.
	ErrTransient = errors.New("provider temporarily unavailable")
	// ErrMalformedResponse means the vendor reply could not be decoded.
	ErrMalformedResponse = errors.New("malformed provider response")
)
