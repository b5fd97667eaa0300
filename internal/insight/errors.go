package insight

import (
	"errors"
	"fmt"
)

// Code is a stable reason code attached to every engine failure.
type Code string

const (
	// CodeNotFound means the account could not be resolved.
	CodeNotFound Code = "not_found"
	// CodeInsufficientData means an algorithm had fewer data points than it needs.
	CodeInsufficientData Code = "insufficient_data"
	// CodeComputation means a numeric invariant was violated.
	CodeComputation Code = "computation_error"
	// CodeUnknown is reported for errors outside the engine taxonomy.
	CodeUnknown Code = "unknown"
)

// ErrAccountNotFound is returned when the transaction source cannot resolve an account.
var ErrAccountNotFound = errors.New("account not found")

// InsufficientDataError reports that an analysis lacked enough data points.
type InsufficientDataError struct {
	Analysis string
	Reason   string
	Have     int
	Need     int
}

func (e *InsufficientDataError) Error() string {
	if e.Need > 0 {
		return fmt.Sprintf("insufficient data for %s: %s (have %d, need %d)", e.Analysis, e.Reason, e.Have, e.Need)
	}
	return fmt.Sprintf("insufficient data for %s: %s", e.Analysis, e.Reason)
}

// ComputationError reports an unexpected numeric failure.
type ComputationError struct {
	Err       error
	Operation string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation failed in %s: %v", e.Operation, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

// ReasonCode maps any error returned by the engine to its stable code.
func ReasonCode(err error) Code {
	if err == nil {
		return ""
	}
	var insufficient *InsufficientDataError
	var computation *ComputationError
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return CodeNotFound
	case errors.As(err, &insufficient):
		return CodeInsufficientData
	case errors.As(err, &computation):
		return CodeComputation
	default:
		return CodeUnknown
	}
}

// IsInsufficientData reports whether err is an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var insufficient *InsufficientDataError
	return errors.As(err, &insufficient)
}

func insufficient(analysis, reason string, have, need int) error {
	return &InsufficientDataError{Analysis: analysis, Reason: reason, Have: have, Need: need}
}

var errNonFinite = errors.New("non-finite result")
