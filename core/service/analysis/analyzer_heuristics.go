package analysis

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"analyzer_server/core/domain"
)

// Rule-based heuristics. All functions here are pure: no I/O, no mutation of
// inputs, identical output for identical input. They are the guaranteed
// terminal fallback for every provider failure, so no branch may fail.

// Base score per declared priority. Unrecognized values fall back to medium.
var priorityBaseScores = map[domain.TaskPriority]float64{
	domain.TaskPriorityLow:    25.0,
	domain.TaskPriorityMedium: 50.0,
	domain.TaskPriorityHigh:   75.0,
	domain.TaskPriorityUrgent: 90.0,
}

// Urgency keywords boost the score, calming keywords reduce it. Substring
// match on the lowercased title+description blob; each keyword counts once.
var urgencyKeywords = map[string]float64{
	"urgent": 20, "asap": 15, "immediately": 15, "critical": 20,
	"emergency": 25, "deadline": 10, "due": 8, "important": 5,
	"priority": 5, "meeting": 8, "call": 6, "email": 3,
}

var calmingKeywords = map[string]float64{
	"someday": -15, "maybe": -10, "later": -8, "whenever": -12,
	"eventually": -10, "optional": -15, "nice to have": -10,
}

// contextUrgencyWords trigger the per-entry +10 bonus for message/email context.
var contextUrgencyWords = []string{"urgent", "asap", "need", "help"}

const contextEntryBonus = 10.0

// deadlinePatterns are tested in order; the first match wins and the
// score-based offset is skipped entirely.
var deadlinePatterns = []struct {
	re   *regexp.Regexp
	days float64
}{
	{regexp.MustCompile(`(?i)today|asap|immediately`), 0.25},
	{regexp.MustCompile(`(?i)tomorrow|by tomorrow`), 1},
	{regexp.MustCompile(`(?i)this week|end of week`), 7},
	{regexp.MustCompile(`(?i)next week`), 14},
	{regexp.MustCompile(`(?i)month|monthly`), 30},
}

// categoryTable is ordered: categories are tested and emitted in this order,
// and only the first 3 matches survive.
var categoryTable = []struct {
	name     string
	keywords []string
}{
	{"work", []string{"meeting", "project", "deadline", "client", "business", "office", "presentation"}},
	{"health", []string{"doctor", "appointment", "exercise", "gym", "medicine", "health", "workout"}},
	{"finance", []string{"payment", "bill", "money", "bank", "budget", "expense", "invoice"}},
	{"personal", []string{"family", "friend", "home", "personal", "hobby", "vacation", "birthday"}},
	{"learning", []string{"study", "course", "learn", "read", "book", "training", "education"}},
	{"shopping", []string{"buy", "purchase", "shop", "order", "grocery", "store"}},
	{"maintenance", []string{"repair", "fix", "clean", "maintenance", "service", "update"}},
}

func textBlob(title, description string) string {
	return strings.ToLower(title + " " + description)
}

// CalculatePriorityScore derives a 0-100 score from the declared priority,
// keyword hits in the task text, and urgency signals in message/email context.
// Every supplied context entry is scanned, not just the ones that fit a prompt.
// Clamping happens once, at the very end.
func CalculatePriorityScore(title, description string, priority domain.TaskPriority, entries []domain.ContextEntry) float64 {
	base, ok := priorityBaseScores[priority]
	if !ok {
		base = 50.0
	}

	blob := textBlob(title, description)

	adjustment := 0.0
	for keyword, boost := range urgencyKeywords {
		if strings.Contains(blob, keyword) {
			adjustment += boost
		}
	}
	for keyword, reduction := range calmingKeywords {
		if strings.Contains(blob, keyword) {
			adjustment += reduction
		}
	}

	// Message and email context often indicates urgency. The bonus applies
	// once per qualifying entry, uncapped before the final clamp.
	for _, entry := range entries {
		if entry.SourceType != domain.ContextSourceWhatsApp && entry.SourceType != domain.ContextSourceEmail {
			continue
		}
		content := strings.ToLower(entry.Content)
		for _, word := range contextUrgencyWords {
			if strings.Contains(content, word) {
				adjustment += contextEntryBonus
				break
			}
		}
	}

	return clamp(base+adjustment, 0, 100)
}

// SuggestDeadline picks a deadline from explicit time phrases in the task
// text, or failing that from the priority score. The workload widening factor
// applies only to the score-based path. Always returns a concrete time.
func SuggestDeadline(title, description string, priorityScore float64, workload *domain.WorkloadSnapshot, now time.Time) time.Time {
	blob := textBlob(title, description)

	for _, p := range deadlinePatterns {
		if p.re.MatchString(blob) {
			return now.Add(daysToDuration(p.days))
		}
	}

	var days float64
	switch {
	case priorityScore >= 80:
		days = 1
	case priorityScore >= 60:
		days = 3
	case priorityScore >= 40:
		days = 7
	default:
		days = 14
	}

	// Overloaded users get more slack.
	if workload != nil && workload.ActiveTasks > 10 {
		days *= 1.5
	}

	return now.Add(daysToDuration(days))
}

// EnhanceDescription appends message/email context snippets to a non-empty
// description. An empty description stays empty; nothing is synthesized from
// context alone.
func EnhanceDescription(description string, entries []domain.ContextEntry) string {
	if description == "" {
		return ""
	}

	scan := entries
	if len(scan) > 2 {
		scan = scan[:2]
	}

	var contextLines []string
	for _, entry := range scan {
		if entry.SourceType != domain.ContextSourceEmail && entry.SourceType != domain.ContextSourceWhatsApp {
			continue
		}
		contextLines = append(contextLines, fmt.Sprintf("Context from %s: %s...", entry.SourceType, truncate(entry.Content, 100)))
	}

	if len(contextLines) == 0 {
		return description
	}

	return description + "\n\nAdditional context:\n" + strings.Join(contextLines, "\n")
}

// SuggestCategories returns up to 3 category names whose keyword sets hit the
// task text, in fixed table order. Matches past the third are dropped.
func SuggestCategories(title, description string) []string {
	blob := textBlob(title, description)

	var suggestions []string
	for _, cat := range categoryTable {
		for _, keyword := range cat.keywords {
			if strings.Contains(blob, keyword) {
				suggestions = append(suggestions, cat.name)
				break
			}
		}
		if len(suggestions) == 3 {
			break
		}
	}

	return suggestions
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func daysToDuration(days float64) time.Duration {
	return time.Duration(days * 24 * float64(time.Hour))
}

// truncate cuts to maxLen characters on a rune boundary, never mid-encoding.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
