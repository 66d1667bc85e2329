package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"framex/internal/port"
)

// UnitOfWork scopes repository writes to a single sqlite transaction.
type UnitOfWork struct {
	db *sql.DB
}

func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{db: store.db}
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(tx port.Tx) error) error {
	sqlTx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&repoTx{tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type repoTx struct {
	tx *sql.Tx
}

func (t *repoTx) Videos() port.VideoRepository { return &videoRepository{tx: t.tx} }
func (t *repoTx) Jobs() port.JobRepository     { return &jobRepository{tx: t.tx} }

var _ port.UnitOfWork = (*UnitOfWork)(nil)
