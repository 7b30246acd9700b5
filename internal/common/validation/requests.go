// internal/common/validation/requests.go
package validation

// A non-blank string contains at least one non-space rune.
const nonBlank = `{"type": "string", "pattern": "\\S"}`

var ChatRequest = MustCompile("chat_request", `{
	"type": "object",
	"properties": {
		"message": `+nonBlank+`,
		"conversation_id": {"type": "string"},
		"conversation_title": {"type": "string"}
	},
	"required": ["message"]
}`)

var FavoriteRequest = MustCompile("favorite_request", `{
	"type": "object",
	"properties": {
		"model_id": `+nonBlank+`,
		"article_id": `+nonBlank+`
	},
	"oneOf": [
		{"required": ["model_id"], "not": {"required": ["article_id"]}},
		{"required": ["article_id"], "not": {"required": ["model_id"]}}
	]
}`)

var ProfileRequest = MustCompile("profile_request", `{
	"type": "object",
	"properties": {
		"email": {"type": "string"},
		"company_name": {"type": "string"},
		"company_industry": `+nonBlank+`,
		"company_scale": `+nonBlank+`,
		"preferred_scenarios": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["company_industry", "company_scale"]
}`)

var ConversationRequest = MustCompile("conversation_request", `{
	"type": "object",
	"properties": {
		"title": {"type": "string"}
	}
}`)

var ExportRequest = MustCompile("export_request", `{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"estimated_monthly_cost": {"type": "number"},
		"risks": {"type": "array", "items": {"type": "string"}},
		"email": {"type": "string"}
	}
}`)

var CostEstimateRequest = MustCompile("cost_estimate_request", `{
	"type": "object",
	"properties": {
		"requests": {"type": "number", "minimum": 0},
		"avg_tokens": {"type": "number", "minimum": 0}
	},
	"required": ["requests", "avg_tokens"]
}`)

// Job variable schemas for the workflow workers.

var AnalyzeDemandJob = MustCompile("analyze_demand_job", `{
	"type": "object",
	"properties": {"message": `+nonBlank+`},
	"required": ["message"]
}`)

var BuildSolutionJob = MustCompile("build_solution_job", `{
	"type": "object",
	"properties": {
		"message": `+nonBlank+`,
		"demand": {
			"type": "object",
			"properties": {
				"industry": {"type": "string"},
				"scale": {"type": "string"},
				"pain_points": {"type": "array", "items": {"type": "string"}},
				"goals": {"type": "array", "items": {"type": "string"}}
			}
		}
	},
	"required": ["message", "demand"]
}`)

var RankFeedJob = MustCompile("rank_feed_job", `{
	"type": "object",
	"properties": {
		"profile": {
			"type": "object",
			"properties": {
				"company_industry": {"type": "string"},
				"company_scale": {"type": "string"},
				"preferred_scenarios": {"type": "array", "items": {"type": "string"}}
			}
		}
	}
}`)
