package batchentry

import (
	"fmt"

	"github.com/google/uuid"

	"donor-batch-ledger/internal/models"
)

// RowState is where a row is in donor resolution.
type RowState int

const (
	RowEmpty RowState = iota
	RowResolving
	RowValid
	RowInvalid
)

var rowStateNames = [...]string{"empty", "resolving", "valid", "invalid"}

func (s RowState) String() string {
	if s >= 0 && int(s) < len(rowStateNames) {
		return rowStateNames[s]
	}
	return fmt.Sprintf("RowState(%d)", int(s))
}

func (s RowState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *RowState) UnmarshalText(b []byte) error {
	for i, name := range rowStateNames {
		if name == string(b) {
			*s = RowState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown row state %q", b)
}

// ProcessStatus is the outcome of the last commit for a row.
type ProcessStatus int

const (
	Unprocessed ProcessStatus = iota
	Succeeded
	Failed
)

var processStatusNames = [...]string{"unprocessed", "succeeded", "failed"}

func (s ProcessStatus) String() string {
	if s >= 0 && int(s) < len(processStatusNames) {
		return processStatusNames[s]
	}
	return fmt.Sprintf("ProcessStatus(%d)", int(s))
}

func (s ProcessStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ProcessStatus) UnmarshalText(b []byte) error {
	for i, name := range processStatusNames {
		if name == string(b) {
			*s = ProcessStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown process status %q", b)
}

type RowStatus struct {
	Process ProcessStatus `json:"process"`
	Message string        `json:"message,omitempty"`
}

// Row is one line of a batch. ID never changes while the batch lives, so
// results of slow work are applied by ID rather than by position.
type Row struct {
	ID          uuid.UUID     `json:"id"`
	DonorID     *int64        `json:"donor_id,omitempty"`
	Donor       *models.Donor `json:"donor,omitempty"`
	State       RowState      `json:"state"`
	Reason      string        `json:"reason,omitempty"`
	DisplayText string        `json:"display_text"`
	Overrides   Overrides     `json:"overrides"`
	Status      RowStatus     `json:"status"`

	// captured holds the defaults the row was resolved with.
	captured *Defaults
}

func newRow() Row {
	return Row{ID: uuid.New()}
}

// Effective returns the values the row commits with. A resolved row fills
// unset fields from the defaults it captured; any other row from d.
func (r Row) Effective(d Defaults) Overrides {
	if r.captured != nil {
		d = *r.captured
	}
	return MergeDefaults(r.Overrides, d)
}

// IsBlank reports a placeholder row: nothing was entered or selected.
func (r Row) IsBlank() bool {
	return r.DonorID == nil && r.Donor == nil
}
