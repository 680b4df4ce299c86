package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskPriority represents the user-declared priority of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether the priority is one of the known levels
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// ContextSourceType represents where a context entry came from
type ContextSourceType string

const (
	ContextSourceWhatsApp ContextSourceType = "whatsapp"
	ContextSourceEmail    ContextSourceType = "email"
	ContextSourceNote     ContextSourceType = "note"
	ContextSourceCalendar ContextSourceType = "calendar"
	ContextSourceMeeting  ContextSourceType = "meeting"
)

// Task is the analysis input. The engine does not own or persist it;
// callers hand it over per invocation.
type Task struct {
	ID          *int64       `json:"id,omitempty"`
	UserID      *uuid.UUID   `json:"user_id,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority"`
	Deadline    *time.Time   `json:"deadline,omitempty"`
}

// ContextEntry is a timestamped snippet from an external source used as
// situational evidence for scoring.
type ContextEntry struct {
	Content    string            `json:"content"`
	SourceType ContextSourceType `json:"source_type"`
	Timestamp  time.Time         `json:"timestamp"`
}

// WorkloadSnapshot summarizes the caller's current task load. Only used to
// widen or narrow the suggested deadline window.
type WorkloadSnapshot struct {
	ActiveTasks       int `json:"active_tasks"`
	HighPriorityTasks int `json:"high_priority_tasks"`
}
