package auth

import (
	"github.com/jrsteele09/community-client/api"
	clienterrors "github.com/jrsteele09/community-client/internal/errors"
)

// Messages shown when the backend gives no text of its own.
const (
	GenericErrorMessage         = "Something went wrong. Please try again later."
	LoginFailedMessage          = "Login failed."
	RegistrationFailedMessage   = "Registration failed."
	VerificationFailedMessage   = "Invalid verification code."
	ForgotPasswordFailedMessage = "Something went wrong."
	ProfileUpdateFailedMessage  = "Profile update failed."
	NotLoggedInMessage          = "You are not logged in."
	SessionEndedMessage         = "Your session has ended. Please log in again."
)

// Messages for successful foreground actions.
const (
	VerificationSentMessage  = "Verification code sent to your email."
	PasswordResetSentMessage = "Password reset link has been sent to your email."
)

// FieldError is a form that failed validation before anything was sent.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return clienterrors.ErrValidation
}

// UserMessage turns a foreground failure into alert text: the validation
// message, else the server's message, else fallback when the backend answered
// but said nothing useful, else GenericErrorMessage. A missing or ended
// session always gets its own message.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	switch {
	case clienterrors.Is(err, clienterrors.ErrNotLoggedIn):
		return NotLoggedInMessage
	case clienterrors.Is(err, clienterrors.ErrSessionInvalid),
		clienterrors.Is(err, clienterrors.ErrNoRefreshToken):
		return SessionEndedMessage
	}

	var fieldErr *FieldError
	if clienterrors.As(err, &fieldErr) {
		return fieldErr.Message
	}

	var apiErr *api.APIError
	if clienterrors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}

	if clienterrors.Is(err, clienterrors.ErrInvalidResponse) {
		return fallback
	}
	return GenericErrorMessage
}
