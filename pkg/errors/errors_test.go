package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	err := New("OTP_INVALID_OR_EXPIRED", "Code is invalid or has expired", http.StatusBadRequest)
	require.Equal(t, "Code is invalid or has expired", err.Error())

	wrapped := err.WithInternal(errors.New("record not found"))
	require.Contains(t, wrapped.Error(), "record not found")
	require.Equal(t, err.Code, wrapped.Code)
}

func TestFromError(t *testing.T) {
	require.Nil(t, FromError(nil))

	app := FromError(ErrForbidden)
	require.Equal(t, ErrForbidden.Code, app.Code)

	generic := FromError(errors.New("boom"))
	require.Equal(t, ErrInternalServer.Code, generic.Code)
	require.Equal(t, http.StatusInternalServerError, generic.StatusCode)
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("db down")
	err := Wrap(inner, "failed to load account")
	require.ErrorIs(t, err, inner)
}

func TestWithInternalKeepsOriginal(t *testing.T) {
	base := ErrConflict
	derived := base.WithInternal(errors.New("duplicate key"))
	require.Nil(t, base.Internal)
	require.NotNil(t, derived.Internal)
}
