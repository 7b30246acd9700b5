// internal/advisor/ark/client.go
package ark

import (
	"context"
	"time"

	httpclient "ai-advisor/internal/common/http"
	"ai-advisor/internal/common/logger"
	"ai-advisor/internal/common/metrics"
	"ai-advisor/internal/common/observability"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
)

// ChatCompleter is the single call the advisor needs from a chat backend.
// *openai.Client satisfies it directly.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client wraps go-openai with metrics, tracing and logging.
type Client struct {
	api    ChatCompleter
	model  string
	logger logger.Logger
}

// NewClient returns nil when cfg is nil, so callers can pass the result
// straight to the agents and get a configuration error on use.
func NewClient(cfg *Config, doer openai.HTTPDoer, log logger.Logger) *Client {
	if cfg == nil {
		return nil
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if doer == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 60 * time.Second
		}
		doer = httpclient.NewClient(timeout, log)
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	oc.HTTPClient = doer

	return Wrap(openai.NewClientWithConfig(oc), cfg.Model, log)
}

// Wrap instruments an existing completer.
func Wrap(api ChatCompleter, model string, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		api:    api,
		model:  model,
		logger: log.WithFields(map[string]interface{}{"component": "ark"}),
	}
}

// Model is the default model id for this endpoint.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

func (c *Client) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	mode := modePlain
	if req.ResponseFormat != nil {
		mode = modeStructured
	}

	ctx, span := observability.StartSpan(ctx, "ark.chat_completion",
		attribute.String("llm.model", req.Model),
		attribute.String("llm.mode", mode),
		attribute.Int("llm.messages", len(req.Messages)),
	)

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	elapsed := time.Since(start)

	metrics.LLMRequestDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.LLMRequests.WithLabelValues(mode, outcome).Inc()
	observability.EndSpan(span, err)

	fields := map[string]interface{}{
		"model":      req.Model,
		"mode":       mode,
		"durationMs": elapsed.Milliseconds(),
	}
	if err != nil {
		fields["error"] = err
		c.logger.Warn("chat completion failed", fields)
		return resp, err
	}
	fields["totalTokens"] = resp.Usage.TotalTokens
	c.logger.Debug("chat completion", fields)
	return resp, nil
}

// Available reports whether c can serve requests. A nil *Client stored in
// the interface counts as unavailable.
func Available(c ChatCompleter) bool {
	if c == nil {
		return false
	}
	if cl, isClient := c.(*Client); isClient && cl == nil {
		return false
	}
	return true
}
