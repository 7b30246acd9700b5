package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-advisor/internal/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// ==========================
// estimate / export
// ==========================

func TestEstimateCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"zero", []string{"estimate"}, "0 CNY / 月\n"},
		{"rounded", []string{"estimate", "--requests", "12345", "--tokens", "678"}, "100.44 CNY / 月\n"},
		{"whole", []string{"estimate", "--requests", "1000", "--tokens", "1000"}, "12 CNY / 月\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestEstimateCmd_RejectsNegative(t *testing.T) {
	_, err := run(t, "estimate", "--requests", "-1")
	require.Error(t, err)
}

func TestExportCmd_Markdown(t *testing.T) {
	out, err := run(t, "export", "--title", "客服助手", "--cost", "12.5", "--risk", "数据合规", "--risk", "幻觉")
	require.NoError(t, err)
	assert.Equal(t, "# 客服助手\n\n## 月度成本估算\n12.5 CNY / 月\n\n## 风险提示\n- 数据合规\n- 幻觉\n", out)
}

func TestExportCmd_HTMLToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solution.html")

	out, err := run(t, "export", "--format", "html", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<h1")
	assert.Contains(t, string(body), "未命名方案")
}

func TestExportCmd_UnknownFormat(t *testing.T) {
	_, err := run(t, "export", "--format", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

// ==========================
// in-memory commands
// ==========================

func TestFeedCmd_InMemory(t *testing.T) {
	t.Setenv("ARK_API_KEY", "")

	out, err := run(t, "feed", "--in-memory", "--log-level", "error")
	require.NoError(t, err)

	var feed models.Feed
	require.NoError(t, json.Unmarshal([]byte(out), &feed))
	assert.NotEmpty(t, feed.Models)
	assert.NotEmpty(t, feed.Articles)
}

func TestChatCmd_RequiresMessage(t *testing.T) {
	_, err := run(t, "chat", "--in-memory")
	require.Error(t, err)
}

func TestChatCmd_WithoutKeyFails(t *testing.T) {
	t.Setenv("ARK_API_KEY", "")

	_, err := run(t, "chat", "--in-memory", "--log-level", "error", "我们想做智能客服")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONFIGURATION_ERROR")
}

func TestActivitiesCmd(t *testing.T) {
	out, err := run(t, "activities", "--registry", "../../configs/activity-registry.json")
	require.NoError(t, err)
	assert.Contains(t, out, "advisor-analyze-demand")
	assert.Contains(t, out, "advisor-build-solution")
	assert.Contains(t, out, "advisor-rank-feed")
}

func TestMigrateCmd_RejectsInMemory(t *testing.T) {
	_, err := run(t, "migrate", "--in-memory")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a database")
}
