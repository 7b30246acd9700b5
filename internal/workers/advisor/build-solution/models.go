// internal/workers/advisor/build-solution/models.go
package buildsolution

import "ai-advisor/internal/models"

type Input struct {
	Message string                  `json:"message"`
	Demand  models.StructuredDemand `json:"demand"`
}

type Output struct {
	Solutions []models.Solution `json:"solutions"`
	Industry  string            `json:"industry"`
}
