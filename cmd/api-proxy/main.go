// Command api-proxy exposes the PromptStudio API client as a small HTTP
// proxy: incoming /api/ requests are forwarded through the envelope-aware
// transport, so downstream consumers get caching, request IDs, and metrics
// without linking the client library.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/promptstudio/api-client/pkg/envelope"
	"github.com/promptstudio/api-client/pkg/logging"
	"github.com/promptstudio/api-client/pkg/transport"
)

func main() {
	baseURL := getEnv("API_BASE_URL", "http://localhost:3000")
	port := getEnv("PORT", "8080")
	userAgent := getEnv("USER_AGENT", "promptstudio-api-proxy/1.0")
	redisURL := getEnv("REDIS_URL", "")
	logLevel := getEnv("LOG_LEVEL", "info")

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(logLevel),
		Output: os.Stderr,
	})

	cfg := transport.DefaultConfig(baseURL, userAgent)

	var redisClient *redis.Client
	if redisURL != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: redisURL})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("redis_url", redisURL).Msg("Failed to connect to Redis")
		}
		cfg.Redis = redisClient
		logger.Info().Str("redis_url", redisURL).Msg("Envelope cache enabled")
	}

	client, err := transport.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create transport client")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(redisClient))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/", apiProxyHandler(client))

	addr := ":" + port
	logger.Info().
		Str("addr", addr).
		Str("base_url", baseURL).
		Str("user_agent", userAgent).
		Msg("Starting API proxy server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// healthHandler reports process liveness.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// readyHandler reports readiness. With a Redis cache configured, readiness
// includes the cache connection.
func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	}
}

// apiProxyHandler forwards GET requests under /api/ to the backend and writes
// the envelope back verbatim. Example: /api/v1/prompts -> GET {base}/v1/prompts.
func apiProxyHandler(client *transport.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "only GET is proxied", http.StatusMethodNotAllowed)
			return
		}

		endpoint := r.URL.Path[len("/api"):]
		query, _ := url.ParseQuery(r.URL.RawQuery)

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		resp, err := transport.Get[json.RawMessage](ctx, client, endpoint, query)
		if err != nil {
			http.Error(w, "upstream request failed", http.StatusBadGateway)
			return
		}

		status := http.StatusOK
		if resp.IsError() {
			status = resp.StatusCode
			if status == 0 {
				status = http.StatusBadGateway
			}
		} else if !resp.IsWellFormed() {
			writeErrorEnvelope(w, http.StatusBadGateway, "Bad Gateway", envelope.ErrUnexpectedFormat.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}
}

// writeErrorEnvelope writes a synthetic error envelope so proxy-level
// failures keep the wire format uniform.
func writeErrorEnvelope(w http.ResponseWriter, status int, title, detail string) {
	resp := envelope.NewError[json.RawMessage](title, detail, "proxy_error")
	resp.StatusCode = status
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
