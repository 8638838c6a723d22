package batchentry

import "errors"

// Row failure reasons.
const (
	ReasonAmountNotPositive = "amount must be greater than zero"
	ReasonDonorNotValidated = "donor not validated"
	ReasonDonorNotFound     = "donor id not found"
)

var (
	ErrRowNotFound   = errors.New("row not found")
	ErrBatchNotFound = errors.New("batch not found")
)

// ValidationError is a row or defaults problem the operator can fix.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
