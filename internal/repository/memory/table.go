package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"donor-batch-ledger/internal/repository"
)

var (
	errForeignKey = fmt.Errorf("%w: FOREIGN KEY constraint failed", repository.ErrReferentialIntegrity)
	errUnique     = fmt.Errorf("%w: UNIQUE constraint failed", repository.ErrConflict)
)

type table[T any] struct {
	db     *DB
	entity string
	rows   map[int64]T
	// fields exposes the identity columns of v.
	fields  func(v *T) (id *int64, uuid *string, created, updated *time.Time)
	prepare func(v *T, insert bool) error
	// check verifies outgoing references; called with the lock held.
	check func(v *T) error
	// referrers counts incoming references; called with the lock held.
	referrers func(id int64) (string, int)
}

func (t *table[T]) fail(kind error, reason string, err error) error {
	return repository.NewError(kind, t.entity, reason, err)
}

func (t *table[T]) Insert(ctx context.Context, v T) (T, error) {
	if err := ctx.Err(); err != nil {
		return v, t.fail(repository.ErrInsertFailed, "", err)
	}
	if err := t.db.injected("insert", t.entity); err != nil {
		return v, t.fail(repository.ErrInsertFailed, "", err)
	}
	if err := t.prepare(&v, true); err != nil {
		return v, t.fail(repository.ErrInsertFailed, "validation failed", err)
	}

	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	id, uid, created, updated := t.fields(&v)
	if err := t.unique(*id, *uid); err != nil {
		return v, t.fail(repository.ErrInsertFailed, "", err)
	}
	if t.check != nil {
		if err := t.check(&v); err != nil {
			return v, t.fail(repository.ErrInsertFailed, "", err)
		}
	}
	if *id == 0 {
		*id = t.db.nextID(t.entity)
	} else {
		t.db.seenID(t.entity, *id)
	}
	if *uid == "" {
		*uid = uuid.NewString()
	}
	now := time.Now()
	*created, *updated = now, now
	t.rows[*id] = v
	return v, nil
}

// unique rejects an explicit id or uuid that is already taken. Must be
// called with the lock held.
func (t *table[T]) unique(id int64, uid string) error {
	if _, ok := t.rows[id]; id != 0 && ok {
		return fmt.Errorf("%w: %s.id %d", errUnique, t.entity, id)
	}
	if uid == "" {
		return nil
	}
	for _, v := range t.rows {
		if _, other, _, _ := t.fields(&v); *other == uid {
			return fmt.Errorf("%w: %s.uuid %s", errUnique, t.entity, uid)
		}
	}
	return nil
}

func (t *table[T]) GetOne(ctx context.Context, id int64) (*T, error) {
	if err := t.db.injected("fetch", t.entity); err != nil {
		return nil, t.fail(repository.ErrFetchFailed, fmt.Sprintf("id %d", id), err)
	}
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	v, ok := t.rows[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (t *table[T]) GetAll(ctx context.Context) ([]T, error) {
	return t.filter("all", nil, nil)
}

func (t *table[T]) GetCount(ctx context.Context) (int64, error) {
	if err := t.db.injected("fetch", t.entity); err != nil {
		return 0, t.fail(repository.ErrFetchFailed, "count", err)
	}
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	return int64(len(t.rows)), nil
}

func (t *table[T]) Update(ctx context.Context, v T) error {
	id, uid, created, updated := t.fields(&v)
	if *id == 0 {
		return t.fail(repository.ErrUpdateFailed, "", repository.ErrMissingID)
	}
	if err := t.db.injected("update", t.entity); err != nil {
		return t.fail(repository.ErrUpdateFailed, "", err)
	}
	if err := t.prepare(&v, false); err != nil {
		return t.fail(repository.ErrUpdateFailed, "validation failed", err)
	}

	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	old, ok := t.rows[*id]
	if !ok {
		return t.fail(repository.ErrUpdateFailed, fmt.Sprintf("id %d", *id), repository.ErrNotFound)
	}
	if t.check != nil {
		if err := t.check(&v); err != nil {
			return t.fail(repository.ErrUpdateFailed, "", err)
		}
	}
	_, oldUID, oldCreated, _ := t.fields(&old)
	*uid, *created = *oldUID, *oldCreated
	*updated = time.Now()
	t.rows[*id] = v
	return nil
}

func (t *table[T]) Delete(ctx context.Context, v T) error {
	id, _, _, _ := t.fields(&v)
	if *id == 0 {
		return t.fail(repository.ErrDeleteFailed, "", repository.ErrMissingID)
	}
	return t.DeleteOne(ctx, *id)
}

func (t *table[T]) DeleteOne(ctx context.Context, id int64) error {
	if err := t.db.injected("delete", t.entity); err != nil {
		return t.fail(repository.ErrDeleteFailed, "", err)
	}
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	if t.referrers != nil {
		if table, n := t.referrers(id); n > 0 {
			reason := fmt.Sprintf("id %d is referenced by %d %s record(s)", id, n, table)
			return t.fail(repository.ErrDeleteFailed, reason, repository.ErrReferentialIntegrity)
		}
	}
	if _, ok := t.rows[id]; !ok {
		return t.fail(repository.ErrDeleteFailed, fmt.Sprintf("id %d", id), repository.ErrNotFound)
	}
	delete(t.rows, id)
	return nil
}

// filter returns copies of the rows keep accepts, sorted by less or by id.
func (t *table[T]) filter(what string, keep func(*T) bool, less func(a, b *T) bool) ([]T, error) {
	if err := t.db.injected("fetch", t.entity); err != nil {
		return nil, t.fail(repository.ErrFetchFailed, what, err)
	}
	t.db.mu.RLock()
	out := make([]T, 0, len(t.rows))
	for _, v := range t.rows {
		if keep == nil || keep(&v) {
			out = append(out, v)
		}
	}
	t.db.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if less != nil {
			return less(&out[i], &out[j])
		}
		a, _, _, _ := t.fields(&out[i])
		b, _, _, _ := t.fields(&out[j])
		return *a < *b
	})
	return out, nil
}
