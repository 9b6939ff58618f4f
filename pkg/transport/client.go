// Package transport provides the HTTP client that turns backend calls into
// response envelopes, with error classification, metrics, and read-through
// caching for GET requests.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/promptstudio/api-client/pkg/cache"
	"github.com/promptstudio/api-client/pkg/envelope"
	"github.com/promptstudio/api-client/pkg/logging"
)

// Prometheus metrics for transport operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_client_requests_total",
		Help: "Total API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_client_request_duration_seconds",
		Help:    "API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_client_errors_total",
		Help: "Total API errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of HTTP errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 rate limit errors.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Config holds the transport configuration.
type Config struct {
	// BaseURL of the PromptStudio backend, without a trailing slash.
	BaseURL string

	// User-Agent header sent with every request.
	UserAgent string

	// Timeout per HTTP request.
	Timeout time.Duration

	// Redis enables the read-through envelope cache for GET requests.
	// Leave nil to disable caching.
	Redis *redis.Client

	// CacheTTL is how long cached GET envelopes stay fresh.
	CacheTTL time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL, userAgent string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
		CacheTTL:  60 * time.Second,
	}
}

// Client is the envelope-producing HTTP transport. Its generic verbs are the
// natural call factories for the request orchestration layer.
type Client struct {
	httpClient *http.Client
	cfg        Config
	cache      *cache.Manager
	flight     singleflight.Group
	logger     zerolog.Logger
}

// New creates a new transport client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 60 * time.Second
	}

	var mgr *cache.Manager
	if cfg.Redis != nil {
		mgr = cache.NewManager(cfg.Redis)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg:    cfg,
		cache:  mgr,
		logger: logging.NewLogger("transport"),
	}, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// fetched carries a raw body and status through the singleflight group.
type fetched struct {
	body   []byte
	status int
}

// Get performs a GET request. With a redis cache configured, fresh cached
// envelopes are served directly, and concurrent identical requests share one
// upstream call.
func Get[T any](ctx context.Context, c *Client, path string, query url.Values) (*envelope.Response[T], error) {
	if c.cache == nil {
		body, status, err := c.fetchBody(ctx, http.MethodGet, path, query, nil)
		if err != nil {
			return nil, err
		}
		return decode[T](body, status)
	}

	key := cache.Key{Endpoint: path, Query: query}
	entry, err := c.cache.Get(ctx, key)
	if err == nil {
		c.logger.Debug().Str("endpoint", path).Msg("Serving envelope from cache")
		return decode[T](entry.Body, entry.StatusCode)
	}
	if err != cache.ErrCacheMiss {
		c.logger.Warn().Err(err).Str("endpoint", path).Msg("Cache get error")
	}

	result, err, _ := c.flight.Do(key.String(), func() (any, error) {
		// The flight is shared by every concurrent caller of this key, so
		// it must outlive the first joiner's context. The HTTP client
		// timeout still bounds the fetch.
		fetchCtx := context.WithoutCancel(ctx)
		body, status, err := c.fetchBody(fetchCtx, http.MethodGet, path, query, nil)
		if err != nil {
			return nil, err
		}
		if status == http.StatusOK {
			now := time.Now()
			entry := &cache.Entry{
				Body:       body,
				StatusCode: status,
				CachedAt:   now,
				ExpiresAt:  now.Add(c.cfg.CacheTTL),
			}
			if err := c.cache.Set(fetchCtx, key, entry); err != nil {
				c.logger.Warn().Err(err).Str("endpoint", path).Msg("Failed to cache envelope")
			}
		}
		return fetched{body: body, status: status}, nil
	})
	if err != nil {
		return nil, err
	}
	f := result.(fetched)
	return decode[T](f.body, f.status)
}

// Post performs a POST request with a JSON body.
func Post[T any](ctx context.Context, c *Client, path string, body any) (*envelope.Response[T], error) {
	return send[T](ctx, c, http.MethodPost, path, body)
}

// Put performs a PUT request with a JSON body.
func Put[T any](ctx context.Context, c *Client, path string, body any) (*envelope.Response[T], error) {
	return send[T](ctx, c, http.MethodPut, path, body)
}

// Delete performs a DELETE request.
func Delete[T any](ctx context.Context, c *Client, path string) (*envelope.Response[T], error) {
	return send[T](ctx, c, http.MethodDelete, path, nil)
}

func send[T any](ctx context.Context, c *Client, method, path string, body any) (*envelope.Response[T], error) {
	raw, status, err := c.fetchBody(ctx, method, path, nil, body)
	if err != nil {
		return nil, err
	}
	return decode[T](raw, status)
}

// fetchBody performs one HTTP round trip and returns the raw response body
// and status. A returned error means no envelope was produced.
func (c *Client) fetchBody(ctx context.Context, method, path string, query url.Values, body any) ([]byte, int, error) {
	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(path, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", path).Msg("HTTP request failed")
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, 0, fmt.Errorf("read response body: %w", err)
	}

	requestsTotal.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()
	if resp.StatusCode >= 400 {
		class := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("endpoint", path).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("API request error")
	}

	return data, resp.StatusCode, nil
}

// classifyStatus categorizes an HTTP status for observability.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// decode unmarshals an envelope body. Non-envelope error bodies (a proxy
// page, an empty body) are normalized into synthetic error envelopes carrying
// the HTTP status, so callers always see the union.
func decode[T any](body []byte, statusCode int) (*envelope.Response[T], error) {
	var resp envelope.Response[T]
	err := json.Unmarshal(body, &resp)
	if (err != nil || resp.Status == "") && statusCode >= 400 {
		r := envelope.NewError[T](http.StatusText(statusCode), strings.TrimSpace(string(body)), "http_error")
		r.StatusCode = statusCode
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.IsError() && resp.StatusCode == 0 {
		resp.StatusCode = statusCode
	}
	return &resp, nil
}
