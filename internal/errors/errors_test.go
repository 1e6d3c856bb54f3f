package errors

import (
	"io/fs"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeValidation, http.StatusBadRequest},
		{CodeIO, http.StatusInternalServerError},
		{CodeUpstream, http.StatusBadGateway},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFoundf("tag %q not found", "Horror")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrIO))
	assert.Equal(t, `tag "Horror" not found`, err.Error())
}

func TestIO_KeepsCause(t *testing.T) {
	_, statErr := os.Lstat("/definitely/not/here")
	require.Error(t, statErr)

	err := IO(statErr, "remove link %s", "/definitely/not/here")

	assert.True(t, Is(err, ErrIO))
	assert.True(t, Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "remove link /definitely/not/here")

	var pathErr *fs.PathError
	assert.True(t, As(err, &pathErr))
}

func TestWithDetails_CopiesError(t *testing.T) {
	base := ValidationWithDetails("validation failed", nil)
	detailed := base.WithDetails(map[string]string{"movie_dir": "is required"})

	assert.Nil(t, base.Details)
	assert.Equal(t, map[string]string{"movie_dir": "is required"}, detailed.Details)
	assert.Equal(t, base.Code, detailed.Code)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeUpstream, CodeOf(Upstream("boom")))
	assert.Equal(t, CodeIO, CodeOf(Wrap(os.ErrPermission, CodeIO, "symlink")))
	assert.Equal(t, CodeInternal, CodeOf(os.ErrClosed))
}
