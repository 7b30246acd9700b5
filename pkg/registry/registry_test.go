package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ad "ai-advisor/internal/workers/advisor/analyze-demand"
	bs "ai-advisor/internal/workers/advisor/build-solution"
	rf "ai-advisor/internal/workers/advisor/rank-feed"
)

func TestBundledRegistryCoversWorkers(t *testing.T) {
	reg, err := LoadRegistry("../../configs/activity-registry.json")
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	defaults := map[string]time.Duration{
		ad.TaskType: ad.LoadConfig().Timeout,
		bs.TaskType: bs.LoadConfig().Timeout,
		rf.TaskType: rf.LoadConfig().Timeout,
	}
	for taskType, timeout := range defaults {
		activity, ok := reg.Find(taskType)
		require.True(t, ok, taskType)
		assert.Equal(t, "completed", activity.ImplementationStatus)
		assert.NotEmpty(t, activity.ErrorCodes)
		d, err := activity.TimeoutDuration()
		require.NoError(t, err)
		assert.Equal(t, timeout, d, taskType)
	}
	assert.Len(t, reg.Activities, 3)
}

func TestValidate(t *testing.T) {
	valid := Activity{ID: "a", DisplayName: "A", TaskType: "task-a", Category: "advisor"}

	tests := []struct {
		name       string
		activities []Activity
		wantErr    string
	}{
		{"empty", nil, "no activities"},
		{"missing id", []Activity{{DisplayName: "A", TaskType: "t", Category: "c"}}, "ID"},
		{"duplicate id", []Activity{valid, valid}, "duplicate activity ID"},
		{"duplicate task type", []Activity{valid, {ID: "b", DisplayName: "B", TaskType: "task-a", Category: "advisor"}}, "duplicate task type"},
		{"missing category", []Activity{{ID: "a", DisplayName: "A", TaskType: "t"}}, "Category"},
		{"bad timeout", []Activity{{ID: "a", DisplayName: "A", TaskType: "t", Category: "c", Timeout: "soon"}}, "invalid timeout"},
		{"ok", []Activity{valid}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&ActivityRegistry{Activities: tt.activities}).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRegistry_Missing(t *testing.T) {
	_, err := LoadRegistry("does-not-exist.json")
	assert.Error(t, err)
}
