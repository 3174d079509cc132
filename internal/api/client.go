// Package api implements the HTTP client for the remote retrieval backend.
//
// All business logic (retrieval, embedding, ranking, model invocation) lives
// behind these endpoints; this package only encodes requests, decodes
// responses defensively, and reports failures as wrapped errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/plumehq/plume/internal/log"
)

// tracerName identifies spans emitted by this package.
const tracerName = "plume/api"

// Config holds client construction parameters.
type Config struct {
	// BaseURL is the backend base address (e.g. "http://127.0.0.1:5000").
	BaseURL string
	// Timeout bounds a single request. Zero means no timeout.
	Timeout time.Duration
	// RequestsPerSecond throttles calls to the backend. Zero disables
	// throttling.
	RequestsPerSecond int
}

// Client is a lightweight client for the retrieval backend.
//
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	tracer     trace.Tracer
	logger     log.Logger
}

// New creates a backend client.
//
// Parameters:
//   - cfg: Client configuration (BaseURL is required)
//   - logger: Logger for request diagnostics (nil = discard via default)
//
// Returns:
//   - *Client: Initialized client
//   - error: If BaseURL is empty or malformed
func New(cfg Config, logger log.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api.New: base URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api.New: malformed base URL %q", cfg.BaseURL)
	}
	if logger == nil {
		logger = log.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestsPerSecond)
	}

	return &Client{
		baseURL:    u.Scheme + "://" + u.Host,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		tracer:     otel.Tracer(tracerName),
		logger:     logger,
	}, nil
}

// BaseURL returns the backend base address the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// makeRequest is a helper method to make JSON HTTP requests to the backend.
//
// Parameters:
//   - ctx: Context for the request
//   - method: HTTP method (GET, POST, DELETE)
//   - path: Path and query relative to the base URL (e.g. "/auth/login")
//   - body: Request body, JSON-encoded (nil for GET/DELETE requests)
//   - result: Pointer to decode the response into (nil to discard)
//
// Returns:
//   - error: *StatusError for non-2xx responses, wrapped transport or
//     decoding errors otherwise
func (c *Client) makeRequest(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, result)
}

// do executes a prepared request: rate limit, span, request ID, status
// check, JSON decode. Shared by makeRequest and the multipart upload path.
func (c *Client) do(req *http.Request, result any) error {
	ctx := req.Context()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")

	ctx, span := c.tracer.Start(ctx, "backend."+req.Method+" "+req.URL.Path,
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.path", req.URL.Path),
			attribute.String("request.id", requestID),
		))
	defer span.End()
	req = req.WithContext(ctx)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		span.SetStatus(codes.Error, "backend error status")
		c.logger.Debug("backend error response",
			"method", req.Method,
			"path", req.URL.Path,
			"status", resp.StatusCode,
			"request_id", requestID)
		return &StatusError{Code: resp.StatusCode, Body: errorMessage(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			span.RecordError(err)
			return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}

	return nil
}

// errorMessage extracts a backend-provided error string from a response body.
// The backend reports failures as {"error": "..."}; anything else is passed
// through raw (truncated).
func errorMessage(body []byte) string {
	var wire struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &wire); err == nil && wire.Error != "" {
		return wire.Error
	}

	const maxRaw = 200
	if len(body) > maxRaw {
		body = body[:maxRaw]
	}
	return string(body)
}
