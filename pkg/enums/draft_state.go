package enums

import "fmt"

// DraftState captures the lifecycle of a property draft session.
type DraftState string

const (
	DraftStateActive    DraftState = "active"
	DraftStateCommitted DraftState = "committed"
	DraftStateDiscarded DraftState = "discarded"
)

var validDraftStates = []DraftState{
	DraftStateActive,
	DraftStateCommitted,
	DraftStateDiscarded,
}

// String returns the literal string for the state.
func (s DraftState) String() string {
	return string(s)
}

// IsValid reports whether the state is known.
func (s DraftState) IsValid() bool {
	for _, candidate := range validDraftStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the session can no longer accept staging operations.
func (s DraftState) IsTerminal() bool {
	return s == DraftStateCommitted || s == DraftStateDiscarded
}

// ParseDraftState converts raw input into a DraftState.
func ParseDraftState(value string) (DraftState, error) {
	for _, candidate := range validDraftStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid draft state %q", value)
}
