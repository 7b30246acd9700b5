package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatRequest(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantValid bool
		field     string
	}{
		{"valid", `{"message":"我们想提升销售转化"}`, true, ""},
		{"with conversation", `{"message":"hi","conversation_id":"c-1"}`, true, ""},
		{"missing message", `{}`, false, "message"},
		{"blank message", `{"message":"  \n "}`, false, "message"},
		{"wrong type", `{"message":42}`, false, "message"},
		{"not json", `message=hi`, false, "(root)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ChatRequest.Validate([]byte(tt.body))
			assert.Equal(t, tt.wantValid, result.Valid, result.Error())
			if tt.field != "" {
				assert.True(t, result.HasErrors(tt.field), result.GetErrorMessages())
			}
		})
	}
}

func TestFavoriteRequest_ExactlyOneTarget(t *testing.T) {
	tests := []struct {
		body      string
		wantValid bool
	}{
		{`{"model_id":"m-ark-1"}`, true},
		{`{"article_id":"a-1"}`, true},
		{`{}`, false},
		{`{"model_id":"m-ark-1","article_id":"a-1"}`, false},
		{`{"model_id":""}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			assert.Equal(t, tt.wantValid, FavoriteRequest.Validate([]byte(tt.body)).Valid)
		})
	}
}

func TestProfileRequest(t *testing.T) {
	assert.True(t, ProfileRequest.Validate([]byte(`{"company_industry":"制造业","company_scale":"大型（500-2000人）"}`)).Valid)

	result := ProfileRequest.Validate([]byte(`{"company_name":"Acme"}`))
	assert.False(t, result.Valid)
	assert.True(t, result.HasErrors("company_industry"))
	assert.True(t, result.HasErrors("company_scale"))
	assert.Equal(t, "REQUIRED", result.Errors[0].Code)
}

func TestCostEstimateRequest(t *testing.T) {
	assert.True(t, CostEstimateRequest.Validate([]byte(`{"requests":10000,"avg_tokens":800}`)).Valid)
	assert.False(t, CostEstimateRequest.Validate([]byte(`{"requests":-1,"avg_tokens":800}`)).Valid)
	assert.False(t, CostEstimateRequest.Validate([]byte(`{"requests":"many","avg_tokens":800}`)).Valid)
}

func TestValidateValue_JobVariables(t *testing.T) {
	valid := map[string]interface{}{
		"message": "提升客服效率",
		"demand":  map[string]interface{}{"industry": "制造业", "pain_points": []interface{}{"人力成本高"}},
	}
	assert.True(t, BuildSolutionJob.ValidateValue(valid).Valid)

	missing := map[string]interface{}{"message": "x"}
	result := BuildSolutionJob.ValidateValue(missing)
	assert.False(t, result.Valid)
	assert.True(t, result.HasErrors("demand"))
}

func TestMustCompile_PanicsOnBadSchema(t *testing.T) {
	assert.Panics(t, func() { MustCompile("broken", `{"type": 12}`) })
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("cto@corp.cn"))
	assert.False(t, ValidateEmail("not-an-email"))
}
