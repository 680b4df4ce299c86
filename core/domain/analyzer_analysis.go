package domain

import "time"

// AnalysisSource identifies which path produced an analysis result.
type AnalysisSource string

const (
	AnalysisSourceOpenAI    AnalysisSource = "openai"
	AnalysisSourceAnthropic AnalysisSource = "anthropic"
	AnalysisSourceLMStudio  AnalysisSource = "lmstudio"
	AnalysisSourceHeuristic AnalysisSource = "heuristic"
)

// AnalysisResult is the sole output of the analysis engine.
//
// Invariants, regardless of which path produced it:
//   - PriorityScore is clamped to [0, 100]
//   - ConfidenceScore is clamped to [0, 1]
//   - SuggestedCategories holds at most 3 distinct names, relevance order
type AnalysisResult struct {
	PriorityScore       float64    `json:"priority_score"`
	SuggestedDeadline   *time.Time `json:"suggested_deadline,omitempty"`
	EnhancedDescription string     `json:"enhanced_description"`
	SuggestedCategories []string   `json:"suggested_categories"`
	ConfidenceScore     float64    `json:"confidence_score"`
	Reasoning           string     `json:"reasoning"`

	// Source tells callers which path ran; Degraded marks results that fell
	// back to heuristics after a provider failure, with the reason recorded.
	Source         AnalysisSource `json:"source"`
	Degraded       bool           `json:"degraded,omitempty"`
	DegradedReason string         `json:"degraded_reason,omitempty"`
}

// ClampScores forces the numeric invariants. Applied as the last step of
// every path so out-of-range provider values can never leak out.
func (r *AnalysisResult) ClampScores() {
	if r.PriorityScore < 0 {
		r.PriorityScore = 0
	}
	if r.PriorityScore > 100 {
		r.PriorityScore = 100
	}
	if r.ConfidenceScore < 0 {
		r.ConfidenceScore = 0
	}
	if r.ConfidenceScore > 1 {
		r.ConfidenceScore = 1
	}
	if len(r.SuggestedCategories) > 3 {
		r.SuggestedCategories = r.SuggestedCategories[:3]
	}
}
