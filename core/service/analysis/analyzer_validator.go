package analysis

import (
	"strings"
	"time"

	"github.com/goccy/go-json"

	"analyzer_server/core/domain"
	"analyzer_server/pkg/logger"
)

// deadlineLayouts are tried in order when a reply carries a deadline without
// an offset; naive values are interpreted in the process's local timezone.
var deadlineLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// rawAnalysisPayload mirrors the JSON object the prompt asks for. Fields are
// loosely typed so one malformed field never sinks the whole reply.
type rawAnalysisPayload struct {
	PriorityScore       any      `json:"priority_score"`
	SuggestedDeadline   any      `json:"suggested_deadline"`
	EnhancedDescription string   `json:"enhanced_description"`
	SuggestedCategories []string `json:"suggested_categories"`
	ConfidenceScore     any      `json:"confidence_score"`
	Reasoning           string   `json:"reasoning"`
}

// ParseAnalysisResponse turns a raw provider reply into a validated result.
// Scores are defaulted when absent or non-numeric and clamped into range;
// an unparseable deadline is logged and dropped, never an error. Only a
// payload that is not a JSON object at all fails.
func ParseAnalysisResponse(raw string) (*domain.AnalysisResult, error) {
	cleaned := stripJSONFences(raw)

	var payload rawAnalysisPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, err
	}

	result := &domain.AnalysisResult{
		PriorityScore:       numericField(payload.PriorityScore, 50.0, "priority_score"),
		SuggestedDeadline:   parseDeadline(payload.SuggestedDeadline),
		EnhancedDescription: payload.EnhancedDescription,
		SuggestedCategories: payload.SuggestedCategories,
		ConfidenceScore:     numericField(payload.ConfidenceScore, 0.5, "confidence_score"),
		Reasoning:           payload.Reasoning,
	}
	if result.SuggestedCategories == nil {
		result.SuggestedCategories = []string{}
	}

	result.ClampScores()
	return result, nil
}

// stripJSONFences removes markdown code fences models like to wrap JSON in.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func numericField(v any, fallback float64, field string) float64 {
	switch n := v.(type) {
	case nil:
		return fallback
	case float64:
		return n
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			logger.Warn("Non-numeric %s in analysis response: %v", field, v)
			return fallback
		}
		return f
	default:
		logger.Warn("Non-numeric %s in analysis response: %v", field, v)
		return fallback
	}
}

// parseDeadline accepts an ISO-8601 string, a literal "null" (any case), or
// nothing. Naive timestamps are made timezone-aware in local time. A value
// that cannot be parsed is logged and dropped.
func parseDeadline(v any) *time.Time {
	s, ok := v.(string)
	if !ok || s == "" || strings.EqualFold(s, "null") {
		return nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t
		}
	}

	logger.Warn("Could not parse suggested deadline: %q", s)
	return nil
}
