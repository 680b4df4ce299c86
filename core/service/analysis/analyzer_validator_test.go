package analysis

import (
	"testing"
	"time"
)

func TestParseAnalysisResponse(t *testing.T) {
	tests := []struct {
		name           string
		raw            string
		wantErr        bool
		wantScore      float64
		wantConfidence float64
		wantCategories []string
		wantDeadline   bool
	}{
		{
			name: "full valid payload",
			raw: `{"priority_score": 85.0, "suggested_deadline": "2026-02-01T10:00:00Z",
				"enhanced_description": "Do the thing", "suggested_categories": ["work"],
				"confidence_score": 0.9, "reasoning": "clear urgency"}`,
			wantScore:      85.0,
			wantConfidence: 0.9,
			wantCategories: []string{"work"},
			wantDeadline:   true,
		},
		{
			name:           "markdown fenced payload",
			raw:            "```json\n{\"priority_score\": 70, \"confidence_score\": 0.8}\n```",
			wantScore:      70.0,
			wantConfidence: 0.8,
			wantCategories: []string{},
		},
		{
			name:           "bare fence without language tag",
			raw:            "```\n{\"priority_score\": 70, \"confidence_score\": 0.8}\n```",
			wantScore:      70.0,
			wantConfidence: 0.8,
			wantCategories: []string{},
		},
		{
			name:           "missing scores take defaults",
			raw:            `{"reasoning": "no numbers here"}`,
			wantScore:      50.0,
			wantConfidence: 0.5,
			wantCategories: []string{},
		},
		{
			name:           "non-numeric scores take defaults",
			raw:            `{"priority_score": "very high", "confidence_score": "sure"}`,
			wantScore:      50.0,
			wantConfidence: 0.5,
			wantCategories: []string{},
		},
		{
			name:           "out of range scores clamp",
			raw:            `{"priority_score": 150, "confidence_score": 1.7}`,
			wantScore:      100.0,
			wantConfidence: 1.0,
			wantCategories: []string{},
		},
		{
			name:           "negative scores clamp to zero",
			raw:            `{"priority_score": -20, "confidence_score": -0.4}`,
			wantScore:      0.0,
			wantConfidence: 0.0,
			wantCategories: []string{},
		},
		{
			name:           "literal null string deadline dropped",
			raw:            `{"priority_score": 60, "suggested_deadline": "null", "confidence_score": 0.7}`,
			wantScore:      60.0,
			wantConfidence: 0.7,
			wantCategories: []string{},
		},
		{
			name:           "unparseable deadline dropped not fatal",
			raw:            `{"priority_score": 60, "suggested_deadline": "next Tuesday-ish", "confidence_score": 0.7}`,
			wantScore:      60.0,
			wantConfidence: 0.7,
			wantCategories: []string{},
		},
		{
			name:           "naive date deadline accepted",
			raw:            `{"priority_score": 60, "suggested_deadline": "2026-02-01", "confidence_score": 0.7}`,
			wantScore:      60.0,
			wantConfidence: 0.7,
			wantCategories: []string{},
			wantDeadline:   true,
		},
		{
			name:           "more than three categories truncated",
			raw:            `{"priority_score": 60, "confidence_score": 0.7, "suggested_categories": ["work", "health", "finance", "personal"]}`,
			wantScore:      60.0,
			wantConfidence: 0.7,
			wantCategories: []string{"work", "health", "finance"},
		},
		{
			name:    "not JSON at all",
			raw:     "I cannot answer that.",
			wantErr: true,
		},
		{
			name:    "empty reply",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAnalysisResponse(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.PriorityScore != tt.wantScore {
				t.Errorf("expected priority score %v, got %v", tt.wantScore, got.PriorityScore)
			}
			if got.ConfidenceScore != tt.wantConfidence {
				t.Errorf("expected confidence %v, got %v", tt.wantConfidence, got.ConfidenceScore)
			}
			if got.SuggestedCategories == nil {
				t.Error("expected non-nil categories slice")
			}
			if len(got.SuggestedCategories) != len(tt.wantCategories) {
				t.Errorf("expected categories %v, got %v", tt.wantCategories, got.SuggestedCategories)
			} else {
				for i := range tt.wantCategories {
					if got.SuggestedCategories[i] != tt.wantCategories[i] {
						t.Errorf("expected categories %v, got %v", tt.wantCategories, got.SuggestedCategories)
						break
					}
				}
			}
			if tt.wantDeadline && got.SuggestedDeadline == nil {
				t.Error("expected a deadline, got nil")
			}
			if !tt.wantDeadline && got.SuggestedDeadline != nil {
				t.Errorf("expected no deadline, got %v", got.SuggestedDeadline)
			}
		})
	}
}

func TestParseAnalysisResponseDeadlineValues(t *testing.T) {
	got, err := ParseAnalysisResponse(`{"priority_score": 60, "suggested_deadline": "2026-02-01T10:00:00Z", "confidence_score": 0.7}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	if got.SuggestedDeadline == nil || !got.SuggestedDeadline.Equal(want) {
		t.Errorf("expected deadline %v, got %v", want, got.SuggestedDeadline)
	}

	got, err = ParseAnalysisResponse(`{"priority_score": 60, "suggested_deadline": "2026-02-01 10:00:00", "confidence_score": 0.7}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	localWant := time.Date(2026, 2, 1, 10, 0, 0, 0, time.Local)
	if got.SuggestedDeadline == nil || !got.SuggestedDeadline.Equal(localWant) {
		t.Errorf("expected local deadline %v, got %v", localWant, got.SuggestedDeadline)
	}
}

func TestStripJSONFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}  ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripJSONFences(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
