package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/store"
)

// BatchCommitRepository stores the audit trail of batch commits.
type BatchCommitRepository struct {
	store *store.Store
}

var _ BatchCommitRepo = (*BatchCommitRepository)(nil)

func NewBatchCommitRepository(s *store.Store) *BatchCommitRepository {
	return &BatchCommitRepository{store: s}
}

func (r *BatchCommitRepository) Insert(ctx context.Context, c models.BatchCommit) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	err := r.store.Write(ctx, func(tx *gorm.DB) error {
		return tx.Create(&c).Error
	})
	if err != nil {
		return NewError(ErrInsertFailed, "batch commit", "", constraint(err))
	}
	return nil
}

func (r *BatchCommitRepository) Get(ctx context.Context, id uuid.UUID) (*models.BatchCommit, error) {
	var c models.BatchCommit
	err := r.store.Read(ctx, func(tx *gorm.DB) error {
		return tx.First(&c, "id = ?", id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, NewError(ErrFetchFailed, "batch commit", id.String(), err)
	}
	return &c, nil
}

// List returns the most recent commits first. A non-positive limit returns
// all of them.
func (r *BatchCommitRepository) List(ctx context.Context, limit int) ([]models.BatchCommit, error) {
	var out []models.BatchCommit
	err := r.store.Read(ctx, func(tx *gorm.DB) error {
		q := tx.Order("started_at DESC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q.Find(&out).Error
	})
	if err != nil {
		return nil, NewError(ErrFetchFailed, "batch commit", "list", err)
	}
	return out, nil
}
