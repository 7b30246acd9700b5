// internal/advisor/ark/request.go
package ark

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	apperrors "ai-advisor/internal/common/errors"
	"ai-advisor/internal/common/metrics"

	openai "github.com/sashabaranov/go-openai"
)

const (
	modeStructured = "structured"
	modePlain      = "plain"

	// MaxPlainAttempts bounds the plain requests issued after the structured one.
	MaxPlainAttempts = 3
	// MaxEchoRunes caps how much of an invalid answer is fed back to the model.
	MaxEchoRunes = 2800

	CorrectiveInstruction = "上一次输出不是合法JSON。请只返回合法JSON对象，不要markdown，不要解释，字符串中的引号必须转义。"
)

var (
	ErrNoJSONObject = errors.New("response does not contain a JSON object")

	leadingJSONFence = regexp.MustCompile("(?i)^```json\\s*")
	leadingFence     = regexp.MustCompile("^```\\s*")
	trailingFence    = regexp.MustCompile("```$")
)

// ParseJSONContent extracts the outermost JSON object from model output,
// tolerating Markdown code fences and surrounding prose.
func ParseJSONContent(content string) (interface{}, error) {
	text := strings.TrimSpace(content)
	text = leadingJSONFence.ReplaceAllString(text, "")
	text = leadingFence.ReplaceAllString(text, "")
	text = trailingFence.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, ErrNoJSONObject
	}

	var out interface{}
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RequestStructuredJSON asks for a JSON object, first in JSON response mode
// and then with up to MaxPlainAttempts plain requests. Each failed plain
// attempt feeds the invalid answer back with a corrective instruction.
func RequestStructuredJSON(ctx context.Context, client ChatCompleter, model string, messages []openai.ChatCompletionMessage, temperature float32) (interface{}, error) {
	base := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
	}

	structured := base
	structured.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}
	if resp, err := client.CreateChatCompletion(ctx, structured); err == nil {
		if parsed, perr := ParseJSONContent(firstContent(resp)); perr == nil {
			return parsed, nil
		}
	} else if ctxErr := contextError(ctx); ctxErr != nil {
		return nil, ctxErr
	}

	running := make([]openai.ChatCompletionMessage, len(messages), len(messages)+2*MaxPlainAttempts)
	copy(running, messages)

	var lastErr error
	for attempt := 1; attempt <= MaxPlainAttempts; attempt++ {
		if ctxErr := contextError(ctx); ctxErr != nil {
			return nil, ctxErr
		}

		req := base
		req.Messages = running
		resp, err := client.CreateChatCompletion(ctx, req)
		if err != nil {
			if ctxErr := contextError(ctx); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, apperrors.NewLLMRequestFailedError(err)
		}

		content := firstContent(resp)
		parsed, perr := ParseJSONContent(content)
		if perr == nil {
			return parsed, nil
		}
		lastErr = perr

		if attempt < MaxPlainAttempts {
			metrics.LLMRepairAttempts.Inc()
			running = append(running,
				openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: truncateRunes(content, MaxEchoRunes)},
				openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: CorrectiveInstruction},
			)
		}
	}

	return nil, apperrors.NewUpstreamParseError(lastErr)
}

func firstContent(resp openai.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func contextError(ctx context.Context) error {
	switch err := ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewLLMTimeoutError(err)
	default:
		return apperrors.NewLLMRequestFailedError(err)
	}
}
