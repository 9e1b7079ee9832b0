package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/dom/shopcook-api/internal/api/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v and verifies success
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorCode verifies the status and the stable error code of an error response
func AssertErrorCode(t *testing.T, resp *http.Response, expectedStatus int, expectedCode string) response.ErrorBody {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code: %s", string(body))

	var errBody response.ErrorBody
	require.NoError(t, json.Unmarshal(body, &errBody), "failed to unmarshal error: %s", string(body))
	assert.Equal(t, expectedCode, errBody.Code, "unexpected error code")
	return errBody
}
