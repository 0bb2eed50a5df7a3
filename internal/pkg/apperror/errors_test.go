package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsSurvivesCopies(t *testing.T) {
	err := fmt.Errorf("upload: %w", ErrImageLimit.WithArgs(5))

	assert.True(t, errors.Is(err, ErrImageLimit))
	assert.False(t, errors.Is(err, ErrDuplicateReport))
	assert.True(t, IsConflict(err))

	appErr, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, []any{5}, appErr.Args)
	assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("db down")
	err := Wrap(cause, ErrCodeInternal, "internal")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	assert.Contains(t, err.Error(), "db down")
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsNotFound(ErrListingNotFound))
	assert.True(t, IsUnauthorized(ErrUnauthenticated))
	assert.True(t, IsForbidden(ErrForbidden))
	assert.False(t, IsNotFound(errors.New("plain")))
}
