// Package ark talks to the OpenAI compatible Ark chat completion endpoint.
package ark

import (
	"strings"
	"time"

	"ai-advisor/internal/common/config"
)

// Config is a resolved Ark endpoint. A nil *Config means no credentials.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LoadConfigFromEnv reads ARK_API_KEY, ARK_BASE_URL and ARK_MODEL. It
// returns nil when no key is set.
func LoadConfigFromEnv(getenv func(string) string) *Config {
	key := config.SanitizeAPIKey(getenv("ARK_API_KEY"))
	if key == "" {
		return nil
	}
	baseURL := strings.TrimSpace(getenv("ARK_BASE_URL"))
	if baseURL == "" {
		baseURL = config.DefaultArkBaseURL
	}
	model := strings.TrimSpace(getenv("ARK_MODEL"))
	if model == "" {
		model = config.DefaultArkModel
	}
	return &Config{APIKey: key, BaseURL: baseURL, Model: model}
}

// ConfigFrom adapts the loaded application config. Returns nil without a key.
func ConfigFrom(c config.ArkConfig) *Config {
	key := config.SanitizeAPIKey(c.APIKey)
	if key == "" {
		return nil
	}
	out := &Config{
		APIKey:  key,
		BaseURL: strings.TrimSpace(c.BaseURL),
		Model:   strings.TrimSpace(c.Model),
		Timeout: config.GetDuration(c.Timeout),
	}
	if out.BaseURL == "" {
		out.BaseURL = config.DefaultArkBaseURL
	}
	if out.Model == "" {
		out.Model = config.DefaultArkModel
	}
	return out
}
