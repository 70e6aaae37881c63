package cases

import (
	"errors"
	"fmt"

	"homologacao/internal/domain"
)

var (
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrCaseClosed             = errors.New("case is finalized")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrValidation             = errors.New("validation error")
	ErrNotFound               = errors.New("not_found")
)

// TransitionError carries enough context to render a user message: the
// case, where it stands, what was attempted and which precondition
// failed. It matches ErrInvalidTransition under errors.Is.
type TransitionError struct {
	CaseID int64
	Status domain.CaseStatus
	Action string
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("case %d: cannot %s from status %q: %s", e.CaseID, e.Action, e.Status, e.Reason)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func transitionErr(cs *domain.Case, action, reason string) error {
	return &TransitionError{CaseID: cs.ID, Status: cs.Status, Action: action, Reason: reason}
}
