package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a referenced record is absent.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate indicates a uniqueness violation (code, email, variant tuple).
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates invalid caller input.
	ErrValidation = errors.New("validation failed")
	// ErrReferenced indicates a delete blocked by dependent rows.
	ErrReferenced = errors.New("record is referenced by dependent rows")
)

// InsufficientStockError reports a sale line requesting more units than a
// variant has on hand. Carries enough context for a user-facing message.
type InsufficientStockError struct {
	VariantID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %d: available %d, requested %d",
		e.VariantID, e.Available, e.Requested)
}

// IsInputError reports whether err is a caller-input problem, as opposed to
// an unexpected storage failure. The UI layer uses this to pick a friendly
// message over an internal-error one.
func IsInputError(err error) bool {
	var stock *InsufficientStockError
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrReferenced) ||
		errors.As(err, &stock)
}
