package errors

import (
	"errors"
	"fmt"
)

// Common error types for the community client
var (
	// Session errors
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrNoRefreshToken = errors.New("no refresh token")
	ErrSessionInvalid = errors.New("session invalid")

	// Token errors
	ErrMalformedToken = errors.New("malformed token")
	ErrDecode         = errors.New("token payload decode failed")

	// API errors
	ErrInvalidResponse = errors.New("invalid response")
	ErrValidation      = errors.New("validation failed")

	// Storage errors
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrSealed           = errors.New("store is sealed")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// WithCause tags cause with sentinel. Both stay reachable through Is and As,
// and the message reads "sentinel: cause".
func WithCause(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
