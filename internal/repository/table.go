package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"donor-batch-ledger/internal/store"
)

// reference is a column in another table that points at this entity.
type reference struct {
	table  string
	column string
}

// table implements Repository[T] on top of the store. Entity repositories
// embed it and add their finders.
type table[T any] struct {
	store  *store.Store
	entity string
	id     func(*T) int64
	// prepare normalizes and validates v before it is written.
	prepare func(v *T, insert bool) error
	refs    []reference
}

func (t *table[T]) Insert(ctx context.Context, v T) (T, error) {
	if err := t.prepare(&v, true); err != nil {
		return v, NewError(ErrInsertFailed, t.entity, "validation failed", err)
	}
	err := t.store.Write(ctx, func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(&v).Error
	})
	if err != nil {
		return v, NewError(ErrInsertFailed, t.entity, "", constraint(err))
	}
	return v, nil
}

func (t *table[T]) GetOne(ctx context.Context, id int64) (*T, error) {
	var v T
	err := t.store.Read(ctx, func(tx *gorm.DB) error {
		return tx.First(&v, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, NewError(ErrFetchFailed, t.entity, fmt.Sprintf("id %d", id), err)
	}
	return &v, nil
}

func (t *table[T]) GetAll(ctx context.Context) ([]T, error) {
	return t.find(ctx, "all", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") })
}

func (t *table[T]) GetCount(ctx context.Context) (int64, error) {
	var n int64
	err := t.store.Read(ctx, func(tx *gorm.DB) error {
		return tx.Model(new(T)).Count(&n).Error
	})
	if err != nil {
		return 0, NewError(ErrFetchFailed, t.entity, "count", err)
	}
	return n, nil
}

func (t *table[T]) Update(ctx context.Context, v T) error {
	id := t.id(&v)
	if id == 0 {
		return NewError(ErrUpdateFailed, t.entity, "", ErrMissingID)
	}
	if err := t.prepare(&v, false); err != nil {
		return NewError(ErrUpdateFailed, t.entity, "validation failed", err)
	}
	err := t.store.Write(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&v).
			Select("*").
			Omit("id", "uuid", "created_at", clause.Associations).
			Updates(&v)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return NewError(ErrUpdateFailed, t.entity, fmt.Sprintf("id %d", id), constraint(err))
	}
	return nil
}

// constraint marks a write that pointed at a missing row or collided with
// a unique key.
func constraint(err error) error {
	switch {
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return errors.Join(ErrReferentialIntegrity, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Join(ErrConflict, err)
	}
	return err
}

func (t *table[T]) Delete(ctx context.Context, v T) error {
	id := t.id(&v)
	if id == 0 {
		return NewError(ErrDeleteFailed, t.entity, "", ErrMissingID)
	}
	return t.DeleteOne(ctx, id)
}

// DeleteOne refuses to remove a row that other records reference. The
// check and the delete share one transaction; the foreign keys back it up.
func (t *table[T]) DeleteOne(ctx context.Context, id int64) error {
	var reason string
	err := t.store.Write(ctx, func(tx *gorm.DB) error {
		for _, ref := range t.refs {
			var n int64
			if err := tx.Table(ref.table).Where(ref.column+" = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				reason = fmt.Sprintf("id %d is referenced by %d %s record(s)", id, n, ref.table)
				return ErrReferentialIntegrity
			}
		}
		res := tx.Delete(new(T), id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return NewError(ErrDeleteFailed, t.entity, fmt.Sprintf("id %d", id), errors.Join(ErrReferentialIntegrity, err))
	case reason != "":
		return NewError(ErrDeleteFailed, t.entity, reason, err)
	}
	return NewError(ErrDeleteFailed, t.entity, fmt.Sprintf("id %d", id), err)
}

// find runs a filtered read and wraps failures as fetch errors.
func (t *table[T]) find(ctx context.Context, what string, scope func(*gorm.DB) *gorm.DB) ([]T, error) {
	var out []T
	err := t.store.Read(ctx, func(tx *gorm.DB) error {
		return scope(tx).Find(&out).Error
	})
	if err != nil {
		return nil, NewError(ErrFetchFailed, t.entity, what, err)
	}
	return out, nil
}

// first is find for a single row; a miss is (nil, nil).
func (t *table[T]) first(ctx context.Context, what string, scope func(*gorm.DB) *gorm.DB) (*T, error) {
	var v T
	err := t.store.Read(ctx, func(tx *gorm.DB) error {
		return scope(tx).First(&v).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, NewError(ErrFetchFailed, t.entity, what, err)
	}
	return &v, nil
}
