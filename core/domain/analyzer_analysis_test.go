package domain

import "testing"

func TestClampScores(t *testing.T) {
	tests := []struct {
		name           string
		result         AnalysisResult
		wantScore      float64
		wantConfidence float64
		wantCategories int
	}{
		{
			name:           "in-range values untouched",
			result:         AnalysisResult{PriorityScore: 55, ConfidenceScore: 0.7, SuggestedCategories: []string{"work"}},
			wantScore:      55,
			wantConfidence: 0.7,
			wantCategories: 1,
		},
		{
			name:           "high values clamp down",
			result:         AnalysisResult{PriorityScore: 240, ConfidenceScore: 3.5},
			wantScore:      100,
			wantConfidence: 1,
		},
		{
			name:           "negative values clamp up",
			result:         AnalysisResult{PriorityScore: -5, ConfidenceScore: -0.1},
			wantScore:      0,
			wantConfidence: 0,
		},
		{
			name:           "categories truncate to three",
			result:         AnalysisResult{SuggestedCategories: []string{"a", "b", "c", "d", "e"}},
			wantCategories: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.result.ClampScores()
			if tt.result.PriorityScore != tt.wantScore {
				t.Errorf("expected priority score %v, got %v", tt.wantScore, tt.result.PriorityScore)
			}
			if tt.result.ConfidenceScore != tt.wantConfidence {
				t.Errorf("expected confidence %v, got %v", tt.wantConfidence, tt.result.ConfidenceScore)
			}
			if len(tt.result.SuggestedCategories) != tt.wantCategories {
				t.Errorf("expected %d categories, got %d", tt.wantCategories, len(tt.result.SuggestedCategories))
			}
		})
	}
}

func TestTaskPriorityValid(t *testing.T) {
	for _, p := range []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent} {
		if !p.Valid() {
			t.Errorf("expected %q to be valid", p)
		}
	}
	if TaskPriority("mystery").Valid() {
		t.Error("expected unknown priority to be invalid")
	}
	if TaskPriority("").Valid() {
		t.Error("expected empty priority to be invalid")
	}
}
