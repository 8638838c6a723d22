package batchentry

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"donor-batch-ledger/internal/models"
)

// Kind selects what a batch commits.
type Kind string

const (
	KindDonation Kind = "donation"
	KindPledge   Kind = "pledge"
)

func (k Kind) Valid() bool {
	return k == KindDonation || k == KindPledge
}

// DonorLookup is the part of the donor repository resolution needs.
type DonorLookup interface {
	GetOne(ctx context.Context, id int64) (*models.Donor, error)
}

// Batch is one entry session. All methods are safe for concurrent use;
// donor lookups run without holding the lock.
type Batch struct {
	ID   uuid.UUID
	Kind Kind

	donors DonorLookup

	mu       sync.Mutex
	rows     []Row
	defaults Defaults
	focus    uuid.UUID
}

// NewBatch starts a batch with a single empty row.
func NewBatch(kind Kind, defaults Defaults, donors DonorLookup) *Batch {
	first := newRow()
	return &Batch{
		ID:       uuid.New(),
		Kind:     kind,
		donors:   donors,
		rows:     []Row{first},
		defaults: defaults,
		focus:    first.ID,
	}
}

// View is a consistent copy of the batch for display.
type View struct {
	ID       uuid.UUID `json:"id"`
	Kind     Kind      `json:"kind"`
	Rows     []Row     `json:"rows"`
	Defaults Defaults  `json:"defaults"`
	Focus    uuid.UUID `json:"focus"`
}

func (b *Batch) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return View{ID: b.ID, Kind: b.Kind, Rows: b.copyRows(), Defaults: b.defaults, Focus: b.focus}
}

func (b *Batch) Rows() []Row {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.copyRows()
}

func (b *Batch) Row(id uuid.UUID) (Row, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(id)
	if i < 0 {
		return Row{}, false
	}
	return b.rows[i], true
}

func (b *Batch) Focus() uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.focus
}

func (b *Batch) Defaults() Defaults {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.defaults
}

// SetDefaults replaces the batch defaults. Rows already resolved keep the
// values they were given.
func (b *Batch) SetDefaults(d Defaults) error {
	if err := d.Validate(b.Kind); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.defaults = d
	return nil
}

// Snapshot returns copies of the rows and defaults taken under one lock.
func (b *Batch) Snapshot() ([]Row, Defaults) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.copyRows(), b.defaults
}

// AddRow appends an empty row and focuses it.
func (b *Batch) AddRow() Row {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := newRow()
	b.rows = append(b.rows, r)
	b.focus = r.ID
	return r
}

// RemoveRow drops a row. The batch always keeps a trailing empty row.
func (b *Batch) RemoveRow(id uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(id)
	if i < 0 {
		return ErrRowNotFound
	}
	b.rows = append(b.rows[:i], b.rows[i+1:]...)
	b.ensureTrailingEmpty()
	if b.focus == id {
		b.focus = b.rows[min(i, len(b.rows)-1)].ID
	}
	return nil
}

// EnterDonorID records a typed identifier without looking it up. The row
// goes back to Empty until ResolveRow runs.
func (b *Batch) EnterDonorID(id uuid.UUID, donorID *int64) (Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(id)
	if i < 0 {
		return Row{}, ErrRowNotFound
	}
	r := &b.rows[i]
	r.DonorID = donorID
	r.Donor = nil
	r.State = RowEmpty
	r.Reason = ""
	r.DisplayText = ""
	r.Status = RowStatus{}
	r.captured = nil
	return *r, nil
}

// SetOverrides replaces the row's explicit values. On a resolved row the
// fields o leaves unset are filled again from the defaults the row captured
// when it resolved, not from the current ones.
func (b *Batch) SetOverrides(id uuid.UUID, o Overrides) (Row, error) {
	if o.Amount.IsNegative() {
		return Row{}, &ValidationError{Reason: ReasonAmountNotPositive}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(id)
	if i < 0 {
		return Row{}, ErrRowNotFound
	}
	r := &b.rows[i]
	if r.State == RowValid && r.captured != nil {
		o = MergeDefaults(o, *r.captured)
	}
	r.Overrides = o
	return *r, nil
}

// ResolveRow looks up donorID for the row. A found donor makes the row
// Valid and fills its unset overrides from the defaults as they were when
// the lookup began. A miss or a lookup error makes it Invalid; neither is
// returned as an error.
func (b *Batch) ResolveRow(ctx context.Context, id uuid.UUID, donorID int64) (Row, error) {
	b.mu.Lock()
	i := b.index(id)
	if i < 0 {
		b.mu.Unlock()
		return Row{}, ErrRowNotFound
	}
	r := &b.rows[i]
	r.DonorID = &donorID
	r.Donor = nil
	r.State = RowResolving
	r.Reason = ""
	r.Status = RowStatus{}
	r.captured = nil
	snap := b.defaults
	b.mu.Unlock()

	donor, err := b.donors.GetOne(ctx, donorID)

	b.mu.Lock()
	defer b.mu.Unlock()
	i = b.index(id)
	if i < 0 {
		return Row{}, ErrRowNotFound
	}
	r = &b.rows[i]
	if r.State != RowResolving || r.DonorID == nil || *r.DonorID != donorID {
		// The row was edited while the lookup ran; that edit wins.
		return *r, nil
	}
	switch {
	case err != nil:
		r.State = RowInvalid
		r.Reason = err.Error()
		r.DisplayText = "Error finding donor: " + err.Error()
	case donor == nil:
		r.State = RowInvalid
		r.Reason = ReasonDonorNotFound
		r.DisplayText = fmt.Sprintf("Donor ID %d not found", donorID)
	default:
		b.markValid(i, *donor, snap)
	}
	b.ensureTrailingEmpty()
	return b.rows[i], nil
}

// SelectDonor resolves the row with a donor picked from a search.
func (b *Batch) SelectDonor(ctx context.Context, id uuid.UUID, donor models.Donor) (Row, error) {
	if donor.ID == 0 {
		return Row{}, &ValidationError{Reason: ReasonDonorNotValidated}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(id)
	if i < 0 {
		return Row{}, ErrRowNotFound
	}
	b.rows[i].DonorID = &donor.ID
	b.rows[i].State = RowResolving
	b.markValid(i, donor, b.defaults)
	b.ensureTrailingEmpty()
	return b.rows[i], nil
}

// MergeDefaultsIntoRow fills the unset overrides of a Valid row from the
// current defaults. Calling it again changes nothing.
func (b *Batch) MergeDefaultsIntoRow(id uuid.UUID) (Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(id)
	if i < 0 {
		return Row{}, ErrRowNotFound
	}
	if b.rows[i].State == RowValid {
		b.rows[i].Overrides = MergeDefaults(b.rows[i].Overrides, b.defaults)
	}
	return b.rows[i], nil
}

// SetStatus records a commit outcome. It reports false when the row is
// gone.
func (b *Batch) SetStatus(id uuid.UUID, st RowStatus) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(id)
	if i < 0 {
		return false
	}
	b.rows[i].Status = st
	return true
}

// PendingRows returns the non-blank rows that have not succeeded yet.
func (b *Batch) PendingRows() []Row {
	rows, _ := b.PendingSnapshot()
	return rows
}

// PendingSnapshot is Snapshot restricted to the rows PendingRows returns.
func (b *Batch) PendingSnapshot() ([]Row, Defaults) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Row
	for _, r := range b.rows {
		if !r.IsBlank() && r.Status.Process != Succeeded {
			out = append(out, r)
		}
	}
	return out, b.defaults
}

// Clear resets the batch to one empty row. Defaults are kept.
func (b *Batch) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := newRow()
	b.rows = []Row{r}
	b.focus = r.ID
}

// markValid must be called with the lock held.
func (b *Batch) markValid(i int, donor models.Donor, snap Defaults) {
	r := &b.rows[i]
	r.Donor = &donor
	r.State = RowValid
	r.Reason = ""
	r.DisplayText = donor.DisplayText()
	r.Overrides = MergeDefaults(r.Overrides, snap)
	r.captured = &snap
	r.Status = RowStatus{}

	if i == len(b.rows)-1 {
		next := newRow()
		b.rows = append(b.rows, next)
		b.focus = next.ID
		return
	}
	b.focus = b.rows[i+1].ID
}

// ensureTrailingEmpty appends a row when the last one is in use. Must be
// called with the lock held.
func (b *Batch) ensureTrailingEmpty() {
	if len(b.rows) == 0 || !b.rows[len(b.rows)-1].IsBlank() {
		b.rows = append(b.rows, newRow())
	}
}

func (b *Batch) index(id uuid.UUID) int {
	for i := range b.rows {
		if b.rows[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Batch) copyRows() []Row {
	out := make([]Row, len(b.rows))
	copy(out, b.rows)
	return out
}
