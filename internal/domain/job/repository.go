package job

import (
	"context"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/shared"
)

// JobRepository persists jobs. Create and Save store pending domain events in
// the outbox within the same transaction.
type JobRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Job, error)
	FindByJobNo(ctx context.Context, jobNo string) (*Job, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Job, int64, error)
	// JobNumbers maps job ids to job numbers; unknown ids are absent
	JobNumbers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	// NextJobNo reserves the next generated job number (J-000001, ...)
	NextJobNo(ctx context.Context) (string, error)
	// Create inserts a new job; a taken job number yields shared.ErrAlreadyExists
	Create(ctx context.Context, j *Job) error
	// Save updates a job with an optimistic version check
	Save(ctx context.Context, j *Job) error
}
