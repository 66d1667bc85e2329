package port

import (
	"context"

	"framex/internal/domain"
)

type VideoRepository interface {
	Add(ctx context.Context, v *domain.Video) error
	// Get returns nil, nil when no video with the given id exists.
	Get(ctx context.Context, id string) (*domain.Video, error)
	Delete(ctx context.Context, id string) error
}

type JobRepository interface {
	Add(ctx context.Context, j *domain.VideoJob) error
	// Get returns nil, nil when no job with the given id exists.
	Get(ctx context.Context, id string) (*domain.VideoJob, error)
	Update(ctx context.Context, j *domain.VideoJob) error
	// ListByUser returns the user's jobs ordered by creation time descending.
	ListByUser(ctx context.Context, userID string) ([]*domain.VideoJob, error)
}

// Tx is the set of repositories bound to one transaction.
type Tx interface {
	Videos() VideoRepository
	Jobs() JobRepository
}

// UnitOfWork runs fn inside a single transaction: a nil return commits,
// a non-nil return rolls back every write made through the Tx.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}
