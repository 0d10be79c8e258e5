package callsession

import (
	"errors"
	"fmt"
)

// UnknownCallError reports an event that references a call id the
// machine has never seen. The webhook still acknowledges the event; no
// side effects are applied.
type UnknownCallError struct {
	CallID string
	Kind   string
}

func (e *UnknownCallError) Error() string {
	return fmt.Sprintf("event %q references unknown call %q", e.Kind, e.CallID)
}

// IsUnknownCall reports whether err is an UnknownCallError.
func IsUnknownCall(err error) (*UnknownCallError, bool) {
	var ue *UnknownCallError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
