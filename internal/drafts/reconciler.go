package drafts

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/ivanbelmonte/fincalia-backend/pkg/enums"
	pkgerrors "github.com/ivanbelmonte/fincalia-backend/pkg/errors"
)

// Operation labels on per-item outcome reports.
const (
	OpRemove       = "remove"
	OpSetPrincipal = "set_principal"
	OpPromote      = "promote_principal"
	OpCleanup      = "cleanup_addition"
)

// ItemOutcome is one entry of a reconciliation report. Failed entries carry
// the error text so the caller can retry specific items.
type ItemOutcome struct {
	AssetID   uuid.UUID `json:"asset_id"`
	Operation string    `json:"operation"`
	Applied   bool      `json:"applied"`
	Error     string    `json:"error,omitempty"`
}

// CommitResult reports what a commit applied, item by item.
type CommitResult struct {
	SessionID   uuid.UUID     `json:"session_id"`
	PropertyID  uuid.UUID     `json:"property_id"`
	Outcomes    []ItemOutcome `json:"outcomes"`
	PrincipalID *uuid.UUID    `json:"principal_id,omitempty"`
}

// Failed reports whether any item could not be applied.
func (r *CommitResult) Failed() bool {
	for _, outcome := range r.Outcomes {
		if !outcome.Applied {
			return true
		}
	}
	return false
}

// DiscardResult reports the unwind of a session's eager additions.
type DiscardResult struct {
	SessionID  uuid.UUID     `json:"session_id"`
	PropertyID uuid.UUID     `json:"property_id"`
	Outcomes   []ItemOutcome `json:"outcomes"`
}

// Failed reports whether any addition could not be cleaned up.
func (r *DiscardResult) Failed() bool {
	for _, outcome := range r.Outcomes {
		if !outcome.Applied {
			return true
		}
	}
	return false
}

// Commit applies the session's staged intent to the store: removal-staged
// baseline assets are deleted, the pending principal selection is finalized,
// and the principal invariant is repaired when the previous principal was
// removed without a replacement choice. Item failures are collected, not
// fatal; the session always ends Committed.
func (m *Manager) Commit(ctx context.Context, session *Session) (*CommitResult, error) {
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft session not found")
	}
	if !session.transition(enums.DraftStateCommitted) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "draft session is no longer active")
	}
	started := time.Now()
	defer m.registry.Remove(ctx, session)

	result := &CommitResult{
		SessionID:  session.ID,
		PropertyID: session.PropertyID,
	}
	var errs error
	failedRemovals := make(map[uuid.UUID]struct{})

	removals := session.Removals()
	sort.Slice(removals, func(i, j int) bool { return removals[i].String() < removals[j].String() })
	for _, id := range removals {
		outcome := ItemOutcome{AssetID: id, Operation: OpRemove, Applied: true}
		if err := m.store.Delete(ctx, session.PropertyID, id); err != nil {
			outcome.Applied = false
			outcome.Error = err.Error()
			failedRemovals[id] = struct{}{}
			errs = multierr.Append(errs, err)
		}
		m.recordOutcome(outcome)
		result.Outcomes = append(result.Outcomes, outcome)
	}

	if selection := session.PrincipalSelection(); selection != nil {
		// A selection that later got removal-staged is resolved in favor of
		// the removal; the repair step below picks the new principal.
		if !session.RemovalStaged(*selection) {
			outcome := ItemOutcome{AssetID: *selection, Operation: OpSetPrincipal, Applied: true}
			if err := m.store.SetPrincipal(ctx, session.PropertyID, *selection); err != nil {
				outcome.Applied = false
				outcome.Error = err.Error()
				errs = multierr.Append(errs, err)
			} else {
				result.PrincipalID = selection
			}
			m.recordOutcome(outcome)
			result.Outcomes = append(result.Outcomes, outcome)
		}
	}

	promoted, err := m.store.EnsurePrincipal(ctx, session.PropertyID)
	if err != nil {
		errs = multierr.Append(errs, err)
		outcome := ItemOutcome{Operation: OpPromote, Error: err.Error()}
		m.recordOutcome(outcome)
		result.Outcomes = append(result.Outcomes, outcome)
	} else if promoted != nil {
		outcome := ItemOutcome{AssetID: promoted.ID, Operation: OpPromote, Applied: true}
		m.recordOutcome(outcome)
		result.Outcomes = append(result.Outcomes, outcome)
		id := promoted.ID
		result.PrincipalID = &id
	}

	m.metrics.ObserveCommitDuration(time.Since(started))
	commitLabel := "clean"
	if result.Failed() {
		commitLabel = "partial"
	}
	m.metrics.IncCommit(commitLabel)

	logCtx := m.logg.WithFields(ctx, map[string]any{
		"property_id":      session.PropertyID.String(),
		"draft_session_id": session.ID.String(),
		"outcomes":         len(result.Outcomes),
	})
	if errs != nil {
		m.logg.Warn(logCtx, "draft commit finished with partial failures")
	} else {
		m.logg.Info(logCtx, "draft committed")
	}
	return result, nil
}

// Discard unwinds the session: assets added during the session are deleted;
// removal-staged baseline assets need no action because they were never
// deleted. A video replaced mid-session stays replaced; the baseline binary
// is gone and cannot be restored.
func (m *Manager) Discard(ctx context.Context, session *Session) (*DiscardResult, error) {
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft session not found")
	}
	if !session.transition(enums.DraftStateDiscarded) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "draft session is no longer active")
	}
	defer m.registry.Remove(ctx, session)

	result := &DiscardResult{
		SessionID:  session.ID,
		PropertyID: session.PropertyID,
	}
	var errs error

	additions := session.Additions(enums.MediaKindImage, enums.MediaKindDocument)
	sort.Slice(additions, func(i, j int) bool { return additions[i].String() < additions[j].String() })
	for _, id := range additions {
		outcome := ItemOutcome{AssetID: id, Operation: OpCleanup, Applied: true}
		if err := m.store.Delete(ctx, session.PropertyID, id); err != nil {
			outcome.Applied = false
			outcome.Error = err.Error()
			errs = multierr.Append(errs, err)
		}
		m.recordOutcome(outcome)
		result.Outcomes = append(result.Outcomes, outcome)
	}

	m.metrics.IncDiscard()

	logCtx := m.logg.WithFields(ctx, map[string]any{
		"property_id":      session.PropertyID.String(),
		"draft_session_id": session.ID.String(),
		"cleaned":          len(result.Outcomes),
	})
	if errs != nil {
		m.logg.Warn(logCtx, "draft discard finished with partial failures")
	} else {
		m.logg.Info(logCtx, "draft discarded")
	}
	return result, nil
}

func (m *Manager) recordOutcome(outcome ItemOutcome) {
	label := "applied"
	if !outcome.Applied {
		label = "failed"
	}
	m.metrics.IncItemOutcome(outcome.Operation, label)
}
