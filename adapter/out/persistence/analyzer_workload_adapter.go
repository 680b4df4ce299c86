// Package persistence implements database-backed out-ports.
package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"analyzer_server/core/domain"
	"analyzer_server/core/port/out"
)

// WorkloadRepository implements out.WorkloadRepository
type WorkloadRepository struct {
	db *sqlx.DB
}

// NewWorkloadRepository creates a new WorkloadRepository
func NewWorkloadRepository(db *sqlx.DB) out.WorkloadRepository {
	return &WorkloadRepository{db: db}
}

type workloadRow struct {
	ActiveTasks       int `db:"active_tasks"`
	HighPriorityTasks int `db:"high_priority_tasks"`
}

// SnapshotForUser counts the user's open tasks and the high/urgent subset.
func (r *WorkloadRepository) SnapshotForUser(ctx context.Context, userID uuid.UUID) (*domain.WorkloadSnapshot, error) {
	query := `
		SELECT count(*) FILTER (WHERE status NOT IN ('completed', 'cancelled')) AS active_tasks,
		       count(*) FILTER (WHERE status NOT IN ('completed', 'cancelled')
		                          AND priority IN ('high', 'urgent')) AS high_priority_tasks
		FROM tasks
		WHERE user_id = $1`

	var row workloadRow
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		return nil, fmt.Errorf("workload snapshot: %w", err)
	}

	return &domain.WorkloadSnapshot{
		ActiveTasks:       row.ActiveTasks,
		HighPriorityTasks: row.HighPriorityTasks,
	}, nil
}
