package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"analyzer_server/core/domain"
	"analyzer_server/core/port/in"
	"analyzer_server/core/port/out"
)

// fakeLLMClient scripts provider replies for the engine under test.
type fakeLLMClient struct {
	reply string
	err   error
	calls int
}

func (f *fakeLLMClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLMClient) Provider() domain.AnalysisSource {
	return domain.AnalysisSourceOpenAI
}

// fakeCache is an in-memory out.AnalysisCache.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*domain.AnalysisResult
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*domain.AnalysisResult)}
}

func (f *fakeCache) GetResult(ctx context.Context, key string) (*domain.AnalysisResult, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result, ok := f.entries[key]
	return result, ok, nil
}

func (f *fakeCache) SetResult(ctx context.Context, key string, result *domain.AnalysisResult, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = result
	f.sets++
	return nil
}

var _ out.LLMClient = (*fakeLLMClient)(nil)
var _ out.AnalysisCache = (*fakeCache)(nil)

const validReply = `{"priority_score": 85, "suggested_deadline": "2026-02-01T10:00:00Z",
	"enhanced_description": "Do it", "suggested_categories": ["work"],
	"confidence_score": 0.9, "reasoning": "model says so"}`

func factoryFor(client out.LLMClient, err error) ClientFactory {
	return func(mode string) (out.LLMClient, error) {
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

func TestNewModeSelection(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		deps     Deps
		wantMode string
	}{
		{
			name:     "fallback mode stays fallback",
			cfg:      Config{Mode: ModeFallback},
			wantMode: ModeFallback,
		},
		{
			name:     "unknown mode downgrades to fallback",
			cfg:      Config{Mode: "clippy"},
			wantMode: ModeFallback,
		},
		{
			name:     "provider mode with working factory",
			cfg:      Config{Mode: ModeOpenAI},
			deps:     Deps{ClientFactory: factoryFor(&fakeLLMClient{reply: validReply}, nil)},
			wantMode: ModeOpenAI,
		},
		{
			name:     "provider setup failure downgrades to fallback",
			cfg:      Config{Mode: ModeOpenAI},
			deps:     Deps{ClientFactory: factoryFor(nil, errors.New("no key"))},
			wantMode: ModeFallback,
		},
		{
			name:     "provider mode without factory downgrades",
			cfg:      Config{Mode: ModeAnthropic},
			wantMode: ModeFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(tt.cfg, tt.deps)
			if a.Mode() != tt.wantMode {
				t.Errorf("expected mode %q, got %q", tt.wantMode, a.Mode())
			}
		})
	}
}

func TestAnalyzeTaskFallback(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	a := New(Config{Mode: ModeFallback}, Deps{Clock: func() time.Time { return now }})

	task := &domain.Task{
		Title:       "URGENT: Fix server issue",
		Description: "Critical server down, needs immediate attention",
		Priority:    domain.TaskPriorityHigh,
	}

	result := a.AnalyzeTask(context.Background(), task, nil, nil, nil)

	if result.PriorityScore != 100.0 {
		t.Errorf("expected score 100, got %v", result.PriorityScore)
	}
	if result.Source != domain.AnalysisSourceHeuristic {
		t.Errorf("expected heuristic source, got %q", result.Source)
	}
	if result.Degraded {
		t.Error("configured fallback mode must not be marked degraded")
	}
	if result.ConfidenceScore != 0.6 {
		t.Errorf("expected fallback confidence 0.6, got %v", result.ConfidenceScore)
	}
	if result.Reasoning != "Analysis performed using rule-based heuristics" {
		t.Errorf("unexpected reasoning %q", result.Reasoning)
	}
	if result.SuggestedDeadline == nil {
		t.Fatal("expected a suggested deadline")
	}
	// score 100 without a time phrase in the text means one day out
	if want := now.Add(24 * time.Hour); !result.SuggestedDeadline.Equal(want) {
		t.Errorf("expected deadline %v, got %v", want, result.SuggestedDeadline)
	}
}

func TestAnalyzeTaskModelSuccess(t *testing.T) {
	client := &fakeLLMClient{reply: validReply}
	a := New(Config{Mode: ModeOpenAI}, Deps{ClientFactory: factoryFor(client, nil)})

	task := &domain.Task{Title: "Plan sprint", Priority: domain.TaskPriorityMedium}
	result := a.AnalyzeTask(context.Background(), task, nil, nil, nil)

	if client.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", client.calls)
	}
	if result.Source != domain.AnalysisSourceOpenAI {
		t.Errorf("expected openai source, got %q", result.Source)
	}
	if result.Degraded {
		t.Error("successful model analysis must not be degraded")
	}
	if result.PriorityScore != 85.0 {
		t.Errorf("expected score 85 from model, got %v", result.PriorityScore)
	}
	if result.Reasoning != "model says so" {
		t.Errorf("expected model reasoning, got %q", result.Reasoning)
	}
}

func TestAnalyzeTaskDegradesOnProviderError(t *testing.T) {
	client := &fakeLLMClient{err: errors.New("connection refused")}
	a := New(Config{Mode: ModeOpenAI}, Deps{ClientFactory: factoryFor(client, nil)})

	task := &domain.Task{Title: "Plan sprint", Priority: domain.TaskPriorityMedium}
	result := a.AnalyzeTask(context.Background(), task, nil, nil, nil)

	if result.Source != domain.AnalysisSourceHeuristic {
		t.Errorf("expected heuristic source after provider error, got %q", result.Source)
	}
	if !result.Degraded {
		t.Error("expected degraded flag after provider error")
	}
	if result.DegradedReason == "" {
		t.Error("expected a degraded reason")
	}
	if result.PriorityScore != 50.0 {
		t.Errorf("expected rule-based score 50, got %v", result.PriorityScore)
	}
}

func TestAnalyzeTaskDegradesOnMalformedReply(t *testing.T) {
	client := &fakeLLMClient{reply: "sorry, I can't do JSON today"}
	a := New(Config{Mode: ModeOpenAI}, Deps{ClientFactory: factoryFor(client, nil)})

	result := a.AnalyzeTask(context.Background(), &domain.Task{Title: "Plan sprint"}, nil, nil, nil)

	if !result.Degraded {
		t.Error("expected degraded flag after parse failure")
	}
	if result.Source != domain.AnalysisSourceHeuristic {
		t.Errorf("expected heuristic source, got %q", result.Source)
	}
}

func TestAnalyzeTaskNilTask(t *testing.T) {
	a := New(Config{Mode: ModeFallback}, Deps{})

	result := a.AnalyzeTask(context.Background(), nil, nil, nil, nil)
	if result == nil {
		t.Fatal("expected a result for nil task")
	}
	if result.PriorityScore != 50.0 {
		t.Errorf("expected default score 50, got %v", result.PriorityScore)
	}
}

func TestAnalyzeTaskInvariants(t *testing.T) {
	// out-of-range model values must be clamped before the result escapes
	client := &fakeLLMClient{reply: `{"priority_score": 400, "confidence_score": 8,
		"suggested_categories": ["a", "b", "c", "d", "e"]}`}
	a := New(Config{Mode: ModeOpenAI}, Deps{ClientFactory: factoryFor(client, nil)})

	result := a.AnalyzeTask(context.Background(), &domain.Task{Title: "Plan sprint"}, nil, nil, nil)

	if result.PriorityScore != 100.0 {
		t.Errorf("expected clamped score 100, got %v", result.PriorityScore)
	}
	if result.ConfidenceScore != 1.0 {
		t.Errorf("expected clamped confidence 1, got %v", result.ConfidenceScore)
	}
	if len(result.SuggestedCategories) > 3 {
		t.Errorf("expected at most 3 categories, got %v", result.SuggestedCategories)
	}
}

func TestAnalyzeTaskUsesCache(t *testing.T) {
	client := &fakeLLMClient{reply: validReply}
	cache := newFakeCache()
	a := New(Config{Mode: ModeOpenAI, CacheTTL: time.Hour}, Deps{
		ClientFactory: factoryFor(client, nil),
		Cache:         cache,
	})

	task := &domain.Task{Title: "Plan sprint", Priority: domain.TaskPriorityMedium}

	first := a.AnalyzeTask(context.Background(), task, nil, nil, nil)
	second := a.AnalyzeTask(context.Background(), task, nil, nil, nil)

	if client.calls != 1 {
		t.Errorf("expected cache to absorb the second call, provider called %d times", client.calls)
	}
	if cache.sets != 1 {
		t.Errorf("expected exactly one cache write, got %d", cache.sets)
	}
	if first.PriorityScore != second.PriorityScore {
		t.Errorf("cached result differs: %v vs %v", first.PriorityScore, second.PriorityScore)
	}
}

func TestAnalyzeTaskCacheKeyTracksAllInputs(t *testing.T) {
	client := &fakeLLMClient{reply: validReply}
	cache := newFakeCache()
	a := New(Config{Mode: ModeOpenAI, CacheTTL: time.Hour}, Deps{
		ClientFactory: factoryFor(client, nil),
		Cache:         cache,
	})

	task := &domain.Task{Title: "Plan sprint", Priority: domain.TaskPriorityMedium}
	entries := []domain.ContextEntry{
		{Content: "URGENT need this now", SourceType: domain.ContextSourceEmail,
			Timestamp: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)},
	}

	a.AnalyzeTask(context.Background(), task, nil, nil, nil)
	a.AnalyzeTask(context.Background(), task, entries, nil, nil)
	if client.calls != 2 {
		t.Errorf("new context entries must bypass the cached result, provider called %d times", client.calls)
	}

	a.AnalyzeTask(context.Background(), task, entries, map[string]any{"style": "short"}, nil)
	if client.calls != 3 {
		t.Errorf("changed prefs must bypass the cached result, provider called %d times", client.calls)
	}

	a.AnalyzeTask(context.Background(), task, entries, map[string]any{"style": "short"}, &domain.WorkloadSnapshot{ActiveTasks: 12})
	if client.calls != 4 {
		t.Errorf("changed workload must bypass the cached result, provider called %d times", client.calls)
	}

	// identical inputs still hit
	a.AnalyzeTask(context.Background(), task, entries, map[string]any{"style": "short"}, &domain.WorkloadSnapshot{ActiveTasks: 12})
	if client.calls != 4 {
		t.Errorf("identical inputs should be served from cache, provider called %d times", client.calls)
	}
}

func TestAnalyzeBatch(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	a := New(Config{Mode: ModeFallback}, Deps{Clock: func() time.Time { return now }})

	reqs := []in.AnalyzeRequest{
		{Task: &domain.Task{Title: "URGENT: fix it", Priority: domain.TaskPriorityHigh}},
		{Task: &domain.Task{Title: "Maybe organize someday", Priority: domain.TaskPriorityLow}},
		{Task: nil},
	}

	results := a.AnalyzeBatch(context.Background(), reqs)

	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if results[0].PriorityScore <= results[1].PriorityScore {
		t.Errorf("expected urgent task to outrank the someday task, got %v vs %v",
			results[0].PriorityScore, results[1].PriorityScore)
	}
	for i, r := range results {
		if r == nil {
			t.Errorf("result %d is nil", i)
		}
	}
}

func TestRenderTaskPrompt(t *testing.T) {
	deadline := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	task := &domain.Task{
		Title:       "Plan sprint",
		Description: "Organize the next iteration",
		Priority:    domain.TaskPriorityHigh,
		Deadline:    &deadline,
	}
	entries := []domain.ContextEntry{
		{Content: "kickoff moved up", SourceType: domain.ContextSourceEmail, Timestamp: deadline},
	}

	prompt := renderTaskPrompt(task, entries, map[string]any{"style": "short"}, &domain.WorkloadSnapshot{ActiveTasks: 4})

	for _, want := range []string{
		"Plan sprint",
		"Organize the next iteration",
		"high",
		"2026-02-01T09:00:00Z",
		"[EMAIL]",
		"kickoff moved up",
		"priority_score",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestFormatContextEntriesLimits(t *testing.T) {
	entries := make([]domain.ContextEntry, 7)
	for i := range entries {
		entries[i] = domain.ContextEntry{
			Content:    "entry",
			SourceType: domain.ContextSourceNote,
			Timestamp:  time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
		}
	}

	formatted := formatContextEntries(entries)
	if got := strings.Count(formatted, "\n") + 1; got != maxPromptEntries {
		t.Errorf("expected %d prompt entries, got %d", maxPromptEntries, got)
	}

	if formatContextEntries(nil) != "No additional context available." {
		t.Error("expected placeholder for empty context")
	}
}

func TestFormatContextEntriesTruncatesContent(t *testing.T) {
	formatted := formatContextEntries([]domain.ContextEntry{{
		Content:    strings.Repeat("a", 250),
		SourceType: domain.ContextSourceEmail,
		Timestamp:  time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
	}})

	if got := strings.Count(formatted, "a"); got != maxPromptEntryContent {
		t.Errorf("expected entry content cut to %d characters, got %d", maxPromptEntryContent, got)
	}
}
