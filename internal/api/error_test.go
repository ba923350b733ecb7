package api

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func errResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func Test_DecodeError(t *testing.T) {
	t.Parallel()

	t.Run("parses the error envelope", func(t *testing.T) {
		resp := errResponse(http.StatusBadRequest,
			`{"error":"validation_failed","message":"quantity out of range","fields":{"quantity":"min"}}`)

		apiErr := decodeError(resp)
		require.Equal(t, http.StatusBadRequest, apiErr.Status)
		require.Equal(t, KindValidation, apiErr.Kind)
		require.Equal(t, "quantity out of range", apiErr.Message)
		require.Equal(t, map[string]string{"quantity": "min"}, apiErr.Fields)
		require.Contains(t, apiErr.Error(), "quantity out of range")
	})

	t.Run("empty body still yields a usable error", func(t *testing.T) {
		apiErr := decodeError(errResponse(http.StatusBadGateway, ""))
		require.Equal(t, http.StatusBadGateway, apiErr.Status)
		require.Equal(t, KindUnknown, apiErr.Kind)
		require.Contains(t, apiErr.Error(), "502")
	})

	t.Run("non-json body still yields a usable error", func(t *testing.T) {
		apiErr := decodeError(errResponse(http.StatusServiceUnavailable, "<html>gateway timeout</html>"))
		require.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
		require.Equal(t, KindUnknown, apiErr.Kind)
	})
}
