package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-advisor/internal/advisor/service"
	"ai-advisor/internal/common/config"
	apperrors "ai-advisor/internal/common/errors"
	"ai-advisor/internal/common/logger"
)

// ==========================
// RetryWithBackoff
// ==========================

func TestRetryWithBackoff_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, 5, time.Millisecond, logger.NewTestLogger(t), "PostgreSQL connection")

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_Exhausted(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return errors.New("connection refused")
	}, 3, time.Millisecond, logger.NewTestLogger(t), "Redis connection")

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "Redis connection failed after 3 attempts")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRetryWithBackoff_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		cancel()
		return errors.New("timeout")
	}, 5, time.Hour, logger.NewTestLogger(t), "Zeebe connection")

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

// ==========================
// Build
// ==========================

func inMemoryConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "ai-advisor", DemoUserEmail: "demo@example.com"},
	}
}

func TestBuild_InMemoryWithoutKey(t *testing.T) {
	a, err := Build(context.Background(), inMemoryConfig(), Options{InMemory: true}, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.LLM)
	assert.Nil(t, a.Ranking)
	assert.Nil(t, a.Mailer)
	assert.Empty(t, a.Checks)

	profile, err := a.Repo.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "demo@example.com", profile.Email)

	feed, err := a.Feed.GetFeed(context.Background(), profile)
	require.NoError(t, err)
	assert.NotEmpty(t, feed.Models)
	assert.Nil(t, feed.Models[0].Ranking)

	_, err = a.Advisor.HandleMessage(context.Background(), service.ChatInput{Message: "我们想做智能客服"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfiguration))
}

func TestBuild_RankingNeedsKeyAndFlag(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		llmRanking bool
		wantRanker bool
	}{
		{"flag without key", "", true, false},
		{"key without flag", "sk-test", false, false},
		{"key and flag", "sk-test", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := inMemoryConfig()
			cfg.APIs.Ark = config.ArkConfig{APIKey: tt.apiKey, Model: "doubao-test"}
			cfg.Feed.LLMRanking = tt.llmRanking

			a, err := Build(context.Background(), cfg, Options{InMemory: true}, logger.NewTestLogger(t))
			require.NoError(t, err)
			defer a.Close()

			assert.Equal(t, tt.wantRanker, a.Ranking != nil)
			assert.Equal(t, tt.apiKey != "", a.LLM != nil)
		})
	}
}
