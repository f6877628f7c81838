package swaggermcp

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahimsaleem/Swaggermcp/internal/pylang"
)

func TestErrorKindHTTPStatus(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want int
	}{
		{KindParse, http.StatusBadRequest},
		{KindEmptyInput, http.StatusBadRequest},
		{KindInvalidArgument, http.StatusBadRequest},
		{KindInvocation, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindBusy, http.StatusServiceUnavailable},
		{KindActivation, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
		{ErrorKind("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.HTTPStatus(), "kind %s", tt.kind)
	}
}

func TestAsErrorPassesThroughServiceErrors(t *testing.T) {
	orig := NewError(KindActivation, "port in use")
	assert.Same(t, orig, AsError(orig))

	wrapped := fmt.Errorf("outer: %w", orig)
	assert.Same(t, orig, AsError(wrapped))
}

func TestAsErrorMapsInterpreterErrors(t *testing.T) {
	_, err := pylang.Parse("def f(:\n")
	require.Error(t, err)
	assert.Equal(t, KindParse, AsError(err).Kind)

	mod, err := pylang.Parse("def f():\n    return 1 / 0\n")
	require.NoError(t, err)
	interp := pylang.NewInterp()
	require.Empty(t, interp.ExecModule(mod))
	fn, ok := interp.Globals.Get("f")
	require.True(t, ok)
	_, err = interp.Apply(fn, nil)
	require.Error(t, err)
	assert.Equal(t, KindInvocation, AsError(err).Kind)
}

func TestAsErrorFallsBackToInternal(t *testing.T) {
	svcErr := AsError(errors.New("boom"))
	assert.Equal(t, KindInternal, svcErr.Kind)
	assert.Equal(t, "boom", svcErr.Message)
}

func TestAsErrorNil(t *testing.T) {
	assert.Nil(t, AsError(nil))
}

func TestErrorString(t *testing.T) {
	err := NewError(KindParse, "unexpected token")
	assert.Equal(t, "ParseError: unexpected token", err.Error())
	assert.Equal(t, "error", err.Status)
}
