// Package export renders advisor solutions for download and estimates their running cost.
package export

import "math"

// EstimateMonthlyCost prices a workload at 12 CNY per million tokens.
func EstimateMonthlyCost(requests, avgTokens float64) float64 {
	millionTokens := requests * avgTokens / 1_000_000
	return math.Round(millionTokens*12*100) / 100
}
