package clone

import "fmt"

// EntityCloneError wraps a failure while cloning one entity type. It is
// caught at the orchestrator's worker boundary and recorded in the report;
// it never propagates to sibling types.
type EntityCloneError struct {
	Type EntityType
	Err  error
}

func (e *EntityCloneError) Error() string {
	return fmt.Sprintf("clone %s: %v", e.Type, e.Err)
}

func (e *EntityCloneError) Unwrap() error {
	return e.Err
}

// cloneErrorf builds an EntityCloneError from a formatted cause.
func cloneErrorf(t EntityType, format string, args ...any) *EntityCloneError {
	return &EntityCloneError{Type: t, Err: fmt.Errorf(format, args...)}
}
