package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIncludesInternal(t *testing.T) {
	err := Failed("create invite", stdErrors.New("disk full"))

	require.Equal(t, "Failed to create invite: disk full", err.Error())
	require.Equal(t, http.StatusInternalServerError, err.StatusCode)
}

func TestWithInternalCopies(t *testing.T) {
	with := ErrQuotaExceeded.WithInternal(stdErrors.New("oops"))

	require.NotSame(t, ErrQuotaExceeded, with)
	require.Nil(t, ErrQuotaExceeded.Internal)
	require.ErrorIs(t, with, ErrQuotaExceeded)
}

func TestWithMessageKeepsIdentity(t *testing.T) {
	err := ErrOwnership.WithMessage("You can only delete guests you invited")

	require.ErrorIs(t, err, ErrOwnership)
	require.NotErrorIs(t, err, ErrForbidden)
	require.Equal(t, "You can only manage guests you invited", ErrOwnership.Message)
}

func TestNoInvitesDistinctFromQuota(t *testing.T) {
	require.NotErrorIs(t, ErrNoInvites, ErrQuotaExceeded)
}

func TestFromError(t *testing.T) {
	require.Same(t, ErrNotFound, FromError(ErrNotFound))

	out := FromError(stdErrors.New("raw"))
	require.Equal(t, ErrInternalServer.Code, out.Code)
	require.NotNil(t, out.Internal)
	require.Nil(t, FromError(nil))
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("Name is required")

	require.Equal(t, ErrBadRequest.Code, err.Code)
	require.Equal(t, "Name is required", err.Message)
	require.Equal(t, http.StatusBadRequest, err.StatusCode)
}
