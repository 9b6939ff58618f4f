// Package testutil provides testing utilities for the PromptStudio API client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock API endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is a configurable mock PromptStudio backend for testing. Every
// handler speaks the envelope wire format.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
}

// NewMockAPI creates a new mock backend server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetLastRequestHeader returns the headers of the most recent request.
func (m *MockAPI) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader
}

// defaultHandler responds with a minimal success envelope.
func (m *MockAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(SuccessBody(`{"status":"ok"}`, "")))
}

// SuccessBody builds a standard success envelope around raw data JSON.
func SuccessBody(dataJSON, message string) string {
	if message != "" {
		return fmt.Sprintf(`{"status":"success","data":%s,"message":%q,"meta":{"timestamp":%q}}`,
			dataJSON, message, time.Now().UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf(`{"status":"success","data":%s,"meta":{"timestamp":%q}}`,
		dataJSON, time.Now().UTC().Format(time.RFC3339))
}

// ErrorBody builds an error envelope.
func ErrorBody(title, detail string) string {
	return fmt.Sprintf(`{"status":"error","type":"api_error","title":%q,"detail":%q,"meta":{"timestamp":%q}}`,
		title, detail, time.Now().UTC().Format(time.RFC3339))
}

// PaginatedBody builds a paginated success envelope around raw items JSON.
func PaginatedBody(itemsJSON string, page, pageSize, total, totalPages int) string {
	return fmt.Sprintf(`{"status":"success","data":%s,"pagination":{"page":%d,"page_size":%d,"total":%d,"total_pages":%d},"meta":{"timestamp":%q}}`,
		itemsJSON, page, pageSize, total, totalPages, time.Now().UTC().Format(time.RFC3339))
}

// NewSuccessResponse creates a 200 response wrapping dataJSON in a standard
// success envelope.
func NewSuccessResponse(dataJSON string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       SuccessBody(dataJSON, ""),
	}
}

// NewErrorResponse creates an error-envelope response with the given HTTP
// status.
func NewErrorResponse(statusCode int, title, detail string) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body:       ErrorBody(title, detail),
	}
}

// NewPaginatedResponse creates a 200 paginated-envelope response.
func NewPaginatedResponse(itemsJSON string, page, pageSize, total, totalPages int) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       PaginatedBody(itemsJSON, page, pageSize, total, totalPages),
	}
}

// NewFlakyHandler creates a handler that fails with a server-error envelope
// for the first failures requests, then succeeds with the given data.
func NewFlakyHandler(failures int, dataJSON string) func(w http.ResponseWriter, r *http.Request) {
	var mu sync.Mutex
	served := 0
	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		served++
		failing := served <= failures
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if failing {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(ErrorBody("Internal Server Error", "temporary failure")))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(SuccessBody(dataJSON, "")))
	}
}
