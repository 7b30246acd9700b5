// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"time"

	"ai-advisor/internal/common/logger"
)

const (
	RequestIDHeader  = "X-Request-ID"
	defaultUserAgent = "ai-advisor/1.0"
)

type requestIDKey struct{}

// ContextWithRequestID tags ctx so outbound calls carry the inbound request id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Client is the outbound HTTP client shared by the LLM and search adapters.
// It satisfies the Do based doer interfaces those SDKs accept.
type Client struct {
	httpClient *http.Client
	logger     logger.Logger
	userAgent  string
}

func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:    log,
		userAgent: defaultUserAgent,
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if id := RequestIDFromContext(req.Context()); id != "" && req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	fields := map[string]interface{}{
		"method":     req.Method,
		"host":       req.URL.Host,
		"path":       req.URL.Path,
		"durationMs": time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields["error"] = err
		c.logger.Warn("outbound request failed", fields)
		return nil, err
	}
	fields["status"] = resp.StatusCode
	c.logger.Debug("outbound request", fields)
	return resp, nil
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.Do(req.WithContext(ctx))
}

// Transport exposes the client as a RoundTripper for SDKs that take one.
func (c *Client) Transport() http.RoundTripper {
	return roundTripperFunc(c.Do)
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
