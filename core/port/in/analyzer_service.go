package in

import (
	"context"

	"analyzer_server/core/domain"
)

type AnalysisService interface {
	// AnalyzeTask scores a single task. It never fails: provider problems
	// degrade to the rule-based path and are reported on the result itself.
	AnalyzeTask(ctx context.Context, task *domain.Task, entries []domain.ContextEntry, prefs map[string]any, workload *domain.WorkloadSnapshot) *domain.AnalysisResult

	// AnalyzeBatch runs AnalyzeTask over each request in order.
	AnalyzeBatch(ctx context.Context, reqs []AnalyzeRequest) []*domain.AnalysisResult

	// Mode reports the effective analysis mode after any setup downgrade.
	Mode() string
}

// AnalyzeRequest bundles one task with its optional signals.
type AnalyzeRequest struct {
	Task     *domain.Task             `json:"task"`
	Entries  []domain.ContextEntry    `json:"context_entries,omitempty"`
	Prefs    map[string]any           `json:"user_prefs,omitempty"`
	Workload *domain.WorkloadSnapshot `json:"workload,omitempty"`
}
