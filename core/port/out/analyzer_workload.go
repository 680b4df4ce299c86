package out

import (
	"context"

	"analyzer_server/core/domain"

	"github.com/google/uuid"
)

// WorkloadRepository provides current task-load counts for a user. Used to
// build the WorkloadSnapshot handed to deadline suggestion when the caller
// does not supply one.
type WorkloadRepository interface {
	SnapshotForUser(ctx context.Context, userID uuid.UUID) (*domain.WorkloadSnapshot, error)
}
