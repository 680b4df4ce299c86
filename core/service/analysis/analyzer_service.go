package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"analyzer_server/core/domain"
	"analyzer_server/core/port/in"
	"analyzer_server/core/port/out"
	"analyzer_server/pkg/apperr"
	"analyzer_server/pkg/logger"
	"analyzer_server/pkg/resilience"
)

// Analysis modes. Anything unrecognized collapses to fallback.
const (
	ModeOpenAI    = "openai"
	ModeAnthropic = "anthropic"
	ModeLMStudio  = "lmstudio"
	ModeFallback  = "fallback"
)

const (
	maxPromptEntries      = 5   // context entries rendered into a prompt
	maxPromptEntryContent = 200 // chars of entry content per prompt line
	fallbackConfidence    = 0.6 // rule-based results carry medium confidence
)

const fallbackReasoning = "Analysis performed using rule-based heuristics"

// ClientFactory builds the provider client for a mode. Implemented by
// adapter/out/llm; the engine only sees the out.LLMClient contract.
type ClientFactory func(mode string) (out.LLMClient, error)

// Config holds engine construction options.
type Config struct {
	Mode     string
	Timeout  time.Duration // per provider call
	CacheTTL time.Duration // analysis result cache TTL
}

// Deps holds engine collaborators. Cache and Clock are optional.
type Deps struct {
	ClientFactory ClientFactory
	Cache         out.AnalysisCache
	Clock         func() time.Time
}

// Analyzer orchestrates task analysis. It selects the model-backed or
// rule-based path at construction time and degrades to the rule-based path on
// any provider failure instead of surfacing an error. Stateless after
// construction; safe to share across concurrent callers.
type Analyzer struct {
	mode     string
	client   out.LLMClient
	cache    out.AnalysisCache
	breaker  *resilience.CircuitBreaker
	timeout  time.Duration
	cacheTTL time.Duration
	now      func() time.Time
	log      *logger.Logger
}

var _ in.AnalysisService = (*Analyzer)(nil)

// New builds an Analyzer for the configured mode. A provider that cannot be
// constructed (missing credential, unreachable endpoint) downgrades the
// engine to fallback mode permanently, with a single warning logged.
func New(cfg Config, deps Deps) *Analyzer {
	a := &Analyzer{
		mode:     ModeFallback,
		cache:    deps.Cache,
		timeout:  cfg.Timeout,
		cacheTTL: cfg.CacheTTL,
		now:      deps.Clock,
		log:      logger.WithField("component", "analysis"),
	}
	if a.timeout <= 0 {
		a.timeout = 30 * time.Second
	}
	if a.now == nil {
		a.now = time.Now
	}

	switch cfg.Mode {
	case ModeOpenAI, ModeAnthropic, ModeLMStudio:
		if deps.ClientFactory == nil {
			a.log.Warn("No client factory configured for mode %q, using rule-based analysis", cfg.Mode)
			return a
		}
		client, err := deps.ClientFactory(cfg.Mode)
		if err != nil {
			a.log.WithError(err).Warn("Failed to set up %q provider, using rule-based analysis", cfg.Mode)
			return a
		}
		a.mode = cfg.Mode
		a.client = client
		a.breaker = resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("llm-" + cfg.Mode))
		a.log.Info("%s provider initialized", cfg.Mode)
	case ModeFallback:
		a.log.Info("Using rule-based analysis mode")
	default:
		a.log.Info("Unknown analysis mode %q, using rule-based analysis", cfg.Mode)
	}

	return a
}

// Mode reports the effective mode after any setup downgrade.
func (a *Analyzer) Mode() string {
	return a.mode
}

// AnalyzeTask runs one analysis. It never fails: any problem on the model
// path is logged and the call degrades to the rule-based path, with the
// reason recorded on the result.
func (a *Analyzer) AnalyzeTask(ctx context.Context, task *domain.Task, entries []domain.ContextEntry, prefs map[string]any, workload *domain.WorkloadSnapshot) *domain.AnalysisResult {
	if task == nil {
		task = &domain.Task{}
	}

	if a.mode == ModeFallback || a.client == nil {
		return a.ruleBasedAnalysis(task, entries, workload, "")
	}

	result, err := a.modelAnalysis(ctx, task, entries, prefs, workload)
	if err != nil {
		a.log.WithError(err).Error("Model analysis failed, degrading to rule-based path")
		return a.ruleBasedAnalysis(task, entries, workload, err.Error())
	}
	return result
}

// AnalyzeBatch runs AnalyzeTask over each request in order.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, reqs []in.AnalyzeRequest) []*domain.AnalysisResult {
	results := make([]*domain.AnalysisResult, len(reqs))
	for i, req := range reqs {
		results[i] = a.AnalyzeTask(ctx, req.Task, req.Entries, req.Prefs, req.Workload)
	}
	return results
}

// ruleBasedAnalysis is the deterministic path. degradedReason is empty when
// fallback is the configured mode rather than a per-call degradation.
func (a *Analyzer) ruleBasedAnalysis(task *domain.Task, entries []domain.ContextEntry, workload *domain.WorkloadSnapshot, degradedReason string) *domain.AnalysisResult {
	score := CalculatePriorityScore(task.Title, task.Description, task.Priority, entries)
	deadline := SuggestDeadline(task.Title, task.Description, score, workload, a.now())

	result := &domain.AnalysisResult{
		PriorityScore:       score,
		SuggestedDeadline:   &deadline,
		EnhancedDescription: EnhanceDescription(task.Description, entries),
		SuggestedCategories: SuggestCategories(task.Title, task.Description),
		ConfidenceScore:     fallbackConfidence,
		Reasoning:           fallbackReasoning,
		Source:              domain.AnalysisSourceHeuristic,
	}
	if degradedReason != "" {
		result.Degraded = true
		result.DegradedReason = degradedReason
	}
	result.ClampScores()
	return result
}

// modelAnalysis renders the prompt, calls the provider under the timeout and
// circuit breaker, and validates the reply.
func (a *Analyzer) modelAnalysis(ctx context.Context, task *domain.Task, entries []domain.ContextEntry, prefs map[string]any, workload *domain.WorkloadSnapshot) (*domain.AnalysisResult, error) {
	prompt := renderTaskPrompt(task, entries, prefs, workload)

	key := cacheKey(prompt)
	if a.cache != nil {
		if cached, ok, err := a.cache.GetResult(ctx, key); err == nil && ok {
			a.log.Debug("Analysis cache hit")
			return cached, nil
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var reply string
	err := a.breaker.Execute(func() error {
		var callErr error
		reply, callErr = a.client.Complete(callCtx, analysisSystemPrompt, prompt)
		return callErr
	})
	if err != nil {
		return nil, apperr.ProviderCall(string(a.client.Provider()), err)
	}

	result, err := ParseAnalysisResponse(reply)
	if err != nil {
		return nil, apperr.ResponseParse(string(a.client.Provider()), err)
	}
	result.Source = a.client.Provider()

	if a.cache != nil && a.cacheTTL > 0 {
		if err := a.cache.SetResult(ctx, key, result, a.cacheTTL); err != nil {
			a.log.WithError(err).Warn("Failed to cache analysis result")
		}
	}

	return result, nil
}

// cacheKey hashes the rendered prompt, which carries every input the model
// reply depends on: task content, context entries, prefs, and workload.
func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return "analysis:" + hex.EncodeToString(sum[:])
}

// renderTaskPrompt fills the task analysis template. At most 5 context
// entries make it into the prompt, each truncated to 200 chars.
func renderTaskPrompt(task *domain.Task, entries []domain.ContextEntry, prefs map[string]any, workload *domain.WorkloadSnapshot) string {
	priority := task.Priority
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}

	deadline := "None"
	if task.Deadline != nil {
		deadline = task.Deadline.Format(time.RFC3339)
	}

	return fmt.Sprintf(taskAnalysisTemplate,
		task.Title,
		task.Description,
		priority,
		deadline,
		formatContextEntries(entries),
		jsonBlock(prefs),
		workloadBlock(workload),
	)
}

func formatContextEntries(entries []domain.ContextEntry) string {
	if len(entries) == 0 {
		return "No additional context available."
	}

	if len(entries) > maxPromptEntries {
		entries = entries[:maxPromptEntries]
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s",
			strings.ToUpper(string(entry.SourceType)),
			entry.Timestamp.Format(time.RFC3339),
			truncate(entry.Content, maxPromptEntryContent)))
	}
	return strings.Join(lines, "\n")
}

func jsonBlock(m map[string]any) string {
	if m == nil {
		m = map[string]any{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func workloadBlock(workload *domain.WorkloadSnapshot) string {
	if workload == nil {
		return "{}"
	}
	data, err := json.MarshalIndent(workload, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
