package rankfeed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ai-advisor/internal/advisor/repository"
	"ai-advisor/internal/advisor/service"
	apperrors "ai-advisor/internal/common/errors"
	"ai-advisor/internal/common/logger"
	"ai-advisor/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenProfiles struct{}

func (brokenProfiles) GetProfile(context.Context) (models.UserProfile, error) {
	return models.UserProfile{}, apperrors.NewDatabaseQueryFailedError("get_profile", errors.New("conn refused"))
}

func newTestHandler(t *testing.T) (*Handler, *repository.MemoryRepository) {
	log := logger.NewTestLogger(t)
	repo := repository.NewMemoryRepository(repository.DemoSeed("demo@company.com"))
	feed := service.NewFeedService(repo, nil, service.FeedOptions{}, log)
	return NewHandler(&Config{Timeout: time.Second}, feed, repo, log), repo
}

// ==========================
// Input parsing
// ==========================

func TestParseInput(t *testing.T) {
	t.Run("no profile", func(t *testing.T) {
		input, err := parseInput(entities.Job{ActivatedJob: &pb.ActivatedJob{Variables: `{}`}})
		require.NoError(t, err)
		assert.Nil(t, input.Profile)
	})

	t.Run("explicit profile", func(t *testing.T) {
		input, err := parseInput(entities.Job{ActivatedJob: &pb.ActivatedJob{
			Variables: `{"profile":{"company_industry":"制造业","company_scale":"初创（<20人）"}}`,
		}})
		require.NoError(t, err)
		require.NotNil(t, input.Profile)
		assert.Equal(t, "制造业", input.Profile.CompanyIndustry)
	})

	t.Run("invalid preferences", func(t *testing.T) {
		_, err := parseInput(entities.Job{ActivatedJob: &pb.ActivatedJob{
			Variables: `{"profile":{"preferred_scenarios":"知识问答"}}`,
		}})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))
	})
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_StoredProfile(t *testing.T) {
	h, _ := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.Equal(t, models.DefaultCompanyIndustry, out.Query.Industry)
	assert.Equal(t, 20, out.Query.Limit)
	require.Len(t, out.Models, 3)
	assert.Equal(t, "m-ark-1", out.Models[0].ID)
	assert.Equal(t, []string{"a-1", "a-3", "a-2"}, []string{out.Articles[0].ID, out.Articles[1].ID, out.Articles[2].ID})
}

func TestHandler_Execute_ExplicitProfile(t *testing.T) {
	h, _ := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{Profile: &models.UserProfile{
		CompanyIndustry: "制造业",
		CompanyScale:    "初创（<20人）",
	}})

	require.NoError(t, err)
	assert.Equal(t, "制造业", out.Query.Industry)
	assert.Equal(t, "初创（<20人）", out.Query.Scale)
}

func TestHandler_Execute_ProfileLookupFails(t *testing.T) {
	h, _ := newTestHandler(t)
	h.profiles = brokenProfiles{}

	_, err := h.Execute(context.Background(), &Input{})

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatabaseQueryFailed))
}

func TestOutput_FlattensFeed(t *testing.T) {
	raw, err := json.Marshal(Output{Feed: models.Feed{Query: models.FeedQuery{Industry: "零售"}}})
	require.NoError(t, err)

	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &vars))
	assert.Contains(t, vars, "query")
	assert.Contains(t, vars, "models")
	assert.Contains(t, vars, "articles")
}
