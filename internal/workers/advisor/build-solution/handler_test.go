package buildsolution

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-advisor/internal/advisor/agents"
	apperrors "ai-advisor/internal/common/errors"
	"ai-advisor/internal/common/logger"
	"ai-advisor/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuilder struct {
	solutions []models.Solution
	err       error
	got       agents.BuildInput
}

func (f *fakeBuilder) Build(_ context.Context, in agents.BuildInput) ([]models.Solution, error) {
	f.got = in
	return f.solutions, f.err
}

func newTestHandler(t *testing.T, builder Builder) *Handler {
	return NewHandler(&Config{Timeout: time.Second}, builder, logger.NewTestLogger(t))
}

// ==========================
// Input parsing
// ==========================

func TestParseInput(t *testing.T) {
	tests := []struct {
		name    string
		vars    string
		wantErr bool
	}{
		{"valid", `{"message":"降本","demand":{"industry":"零售","pain_points":["库存"],"goals":[]}}`, false},
		{"missing demand", `{"message":"降本"}`, true},
		{"demand not object", `{"message":"降本","demand":"零售"}`, true},
		{"pain points not list", `{"message":"降本","demand":{"pain_points":"库存"}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Variables: tt.vars}}
			input, err := parseInput(job)
			if tt.wantErr {
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "零售", input.Demand.Industry)
			assert.Equal(t, []string{"库存"}, input.Demand.PainPoints)
		})
	}
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name         string
		industry     string
		wantIndustry string
	}{
		{"known industry", "金融", "金融"},
		{"empty industry", "", "其他"},
		{"unresolved industry", "未明确", "其他"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder := &fakeBuilder{solutions: []models.Solution{{Title: "方案A", Risks: []string{}}}}
			h := newTestHandler(t, builder)

			out, err := h.Execute(context.Background(), &Input{
				Message: "想提升客服效率",
				Demand:  models.StructuredDemand{Industry: tt.industry, Goals: []string{"响应更快"}},
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantIndustry, builder.got.Industry)
			assert.Equal(t, tt.wantIndustry, out.Industry)
			assert.Equal(t, "想提升客服效率", builder.got.RawUserInput)
			assert.Equal(t, []string{"响应更快"}, builder.got.Goals)
			require.Len(t, out.Solutions, 1)
			assert.Equal(t, "方案A", out.Solutions[0].Title)
		})
	}
}

func TestHandler_Execute_NormalizationIsABusinessError(t *testing.T) {
	h := newTestHandler(t, &fakeBuilder{err: apperrors.NewNormalizationError("invalid solution payload")})

	_, err := h.Execute(context.Background(), &Input{Message: "hi"})

	stdErr, ok := apperrors.As(err)
	require.True(t, ok)
	bpmn := apperrors.ConvertToBPMNError(stdErr)
	assert.Equal(t, "NORMALIZATION_FAILED", bpmn.Code)
	assert.Zero(t, bpmn.Retries)
}

func TestHandler_Execute_PropagatesUpstreamErrors(t *testing.T) {
	cause := errors.New("connection reset")
	h := newTestHandler(t, &fakeBuilder{err: apperrors.NewLLMRequestFailedError(cause)})

	_, err := h.Execute(context.Background(), &Input{Message: "hi"})

	assert.ErrorIs(t, err, cause)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeLLMRequestFailed))
}
