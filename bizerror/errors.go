package bizerror

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	// ErrTokenInvalid covers malformed, wrongly signed and expired tokens alike,
	// so a caller can not probe which check failed.
	ErrTokenInvalid = errors.New("token invalid")

	ErrTooManyRequests = errors.New("too many requests")

	ErrInvalidPassword         = errors.New("invalid password")
	ErrUnknownUser             = errors.New("unknown user")
	ErrNotFound                = errors.New("record not found")
	ErrInvalidNotificationType = errors.New("invalid notification type")
)
