package transport

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptstudio/api-client/internal/testutil"
)

type prompt struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version int    `json:"version"`
}

func newTestClient(t *testing.T, mock *testutil.MockAPI) *Client {
	t.Helper()
	client, err := New(Config{
		BaseURL:   mock.URL(),
		UserAgent: "api-client-test/1.0",
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)
	return client
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{UserAgent: "test/1.0"})
	assert.Error(t, err, "missing base URL must be rejected")

	_, err = New(Config{BaseURL: "http://localhost"})
	assert.Error(t, err, "missing user-agent must be rejected")
}

func TestGetDecodesStandardEnvelope(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/v1/prompts/p1", testutil.NewSuccessResponse(`{"id":"p1","name":"greeting","version":3}`))

	client := newTestClient(t, mock)
	resp, err := Get[prompt](context.Background(), client, "/v1/prompts/p1", nil)
	require.NoError(t, err)

	require.True(t, resp.IsStandard())
	data, err := resp.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, prompt{ID: "p1", Name: "greeting", Version: 3}, data)
}

func TestGetDecodesPaginatedEnvelope(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/v1/prompts", testutil.NewPaginatedResponse(
		`[{"id":"p1"},{"id":"p2"}]`, 1, 2, 5, 3))

	client := newTestClient(t, mock)
	resp, err := Get[[]prompt](context.Background(), client, "/v1/prompts", url.Values{"page": {"1"}})
	require.NoError(t, err)

	require.True(t, resp.IsPaginated())
	info := resp.PaginationInfo()
	require.NotNil(t, info)
	assert.Equal(t, 1, info.Page)
	assert.Equal(t, 3, info.TotalPages)

	items, err := resp.Unwrap()
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestGetPassesErrorEnvelopeThrough(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/v1/prompts/missing", testutil.NewErrorResponse(
		http.StatusNotFound, "Not Found", "prompt does not exist"))

	client := newTestClient(t, mock)
	resp, err := Get[prompt](context.Background(), client, "/v1/prompts/missing", nil)
	require.NoError(t, err, "an error envelope is a successful transport round trip")

	require.True(t, resp.IsError())
	assert.Equal(t, "prompt does not exist", resp.ErrorMessage())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "HTTP status is stamped onto the envelope")
}

func TestGetNormalizesNonEnvelopeErrorBody(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/v1/prompts", testutil.MockResponse{
		StatusCode: http.StatusBadGateway,
		Body:       "upstream proxy error",
	})

	client := newTestClient(t, mock)
	resp, err := Get[prompt](context.Background(), client, "/v1/prompts", nil)
	require.NoError(t, err)

	require.True(t, resp.IsError())
	assert.Equal(t, "http_error", resp.Type)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), resp.Title)
	assert.Equal(t, "upstream proxy error", resp.Detail)
}

func TestGetReturnsMalformedEnvelopeUncoerced(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/v1/prompts", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"data":{"id":"p1"}}`,
	})

	client := newTestClient(t, mock)
	resp, err := Get[prompt](context.Background(), client, "/v1/prompts", nil)
	require.NoError(t, err)

	assert.False(t, resp.IsWellFormed(), "a 2xx body without a discriminant must fail all guards")
}

func TestRequestHeaders(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	client := newTestClient(t, mock)
	_, err := Post[prompt](context.Background(), client, "/v1/prompts", map[string]string{"name": "greeting"})
	require.NoError(t, err)

	headers := mock.GetLastRequestHeader()
	assert.Equal(t, "api-client-test/1.0", headers.Get("User-Agent"))
	assert.Equal(t, "application/json", headers.Get("Accept"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.NotEmpty(t, headers.Get("X-Request-ID"))
}

func TestDeleteDecodesVoidSuccess(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/v1/prompts/p1", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"status":"success","message":"deleted","meta":{"timestamp":"2026-01-01T00:00:00Z"}}`,
	})

	client := newTestClient(t, mock)
	resp, err := Delete[struct{}](context.Background(), client, "/v1/prompts/p1")
	require.NoError(t, err)

	assert.True(t, resp.IsStandard())
	assert.Equal(t, "deleted", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestGetWithoutCacheHitsUpstreamEveryTime(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/v1/prompts/p1", testutil.NewSuccessResponse(`{"id":"p1"}`))

	client := newTestClient(t, mock)
	for i := 0; i < 3; i++ {
		_, err := Get[prompt](context.Background(), client, "/v1/prompts/p1", nil)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, mock.GetRequestCount())
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorClass
	}{
		{http.StatusBadRequest, ErrorClassClient},
		{http.StatusNotFound, ErrorClassClient},
		{http.StatusTooManyRequests, ErrorClassRateLimit},
		{http.StatusInternalServerError, ErrorClassServer},
		{http.StatusBadGateway, ErrorClassServer},
		{http.StatusOK, ErrorClass("")},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyStatus(tt.status), "status %d", tt.status)
	}
}
