package errors_test

import (
	"errors"
	"testing"

	clienterrors "github.com/jrsteele09/community-client/internal/errors"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type statusError struct{ code int }

func (e *statusError) Error() string { return "status" }

func TestWithCause(t *testing.T) {
	cause := &statusError{code: 401}
	err := pkgerrors.Wrap(clienterrors.WithCause(clienterrors.ErrSessionInvalid, cause), "[x]")

	require.ErrorIs(t, err, clienterrors.ErrSessionInvalid)
	var target *statusError
	require.ErrorAs(t, err, &target)
	require.Equal(t, 401, target.code)
	require.Equal(t, "[x]: session invalid: status", err.Error())

	require.Same(t, clienterrors.ErrSessionInvalid, clienterrors.WithCause(clienterrors.ErrSessionInvalid, nil))
	require.False(t, errors.Is(clienterrors.WithCause(clienterrors.ErrSessionInvalid, cause), clienterrors.ErrNotLoggedIn))
}
