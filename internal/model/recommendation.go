package model

// Recommendation kinds, from most to least severe presentation.
const (
	RecommendationWarning = "warning"
	RecommendationInfo    = "info"
	RecommendationSuccess = "success"
)

// Recommendation priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Recommendation is one heuristic finding about the portfolio's risk
// profile: a concentration warning, a volatility notice, or a positive
// note about balanced exposure or risk-adjusted return.
type Recommendation struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}
