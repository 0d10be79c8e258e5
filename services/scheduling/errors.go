package scheduling

import (
	"errors"
	"fmt"

	"clubvoice/models"
)

// ConflictError reports that a proposed interval collides with existing
// active bookings or exceeds the resource capacity.
type ConflictError struct {
	Resource  string
	Conflicts []models.Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("resource %q is not available: %d conflicting booking(s)", e.Resource, len(e.Conflicts))
}

// InvalidSlotError reports a malformed, out-of-hours or misaligned
// request. Never retried.
type InvalidSlotError struct {
	Reason string
}

func (e *InvalidSlotError) Error() string {
	return fmt.Sprintf("invalid slot: %s", e.Reason)
}

func newInvalidSlot(format string, args ...any) *InvalidSlotError {
	return &InvalidSlotError{Reason: fmt.Sprintf(format, args...)}
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsInvalidSlot reports whether err is (or wraps) an InvalidSlotError.
func IsInvalidSlot(err error) (*InvalidSlotError, bool) {
	var ie *InvalidSlotError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
