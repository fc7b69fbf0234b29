package drafts

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ivanbelmonte/fincalia-backend/pkg/enums"
)

// Session tracks the staged intent of one property edit: the asset set
// observed at start, assets added during the session, baseline assets marked
// for removal, and the pending principal selection. It never duplicates asset
// content, only identities.
type Session struct {
	ID         uuid.UUID
	PropertyID uuid.UUID
	StartedAt  time.Time

	mu        sync.Mutex
	state     enums.DraftState
	baseline  map[uuid.UUID]enums.MediaKind
	additions map[uuid.UUID]enums.MediaKind
	removals  map[uuid.UUID]struct{}
	principal *uuid.UUID
	video     videoIntent
}

// videoIntent records the eager video mutations applied during the session.
// A replaced baseline video cannot be restored on discard; only its identity
// is remembered here.
type videoIntent struct {
	replacementID *uuid.UUID
	removed       bool
	baselineID    *uuid.UUID
}

func newSession(propertyID uuid.UUID, baseline map[uuid.UUID]enums.MediaKind, baselineVideoID *uuid.UUID) *Session {
	if baseline == nil {
		baseline = make(map[uuid.UUID]enums.MediaKind)
	}
	return &Session{
		ID:         uuid.New(),
		PropertyID: propertyID,
		StartedAt:  time.Now().UTC(),
		state:      enums.DraftStateActive,
		baseline:   baseline,
		additions:  make(map[uuid.UUID]enums.MediaKind),
		removals:   make(map[uuid.UUID]struct{}),
		video:      videoIntent{baselineID: baselineVideoID},
	}
}

// State returns the session's lifecycle state.
func (s *Session) State() enums.DraftState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Baseline reports whether the asset existed before the session began.
func (s *Session) Baseline(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.baseline[id]
	return ok
}

// Added reports whether the asset was created during this session.
func (s *Session) Added(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.additions[id]
	return ok
}

// RemovalStaged reports whether the baseline asset is marked for removal.
func (s *Session) RemovalStaged(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.removals[id]
	return ok
}

// PrincipalSelection returns the pending principal choice, or nil for "no
// change from baseline".
func (s *Session) PrincipalSelection() *uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal == nil {
		return nil
	}
	id := *s.principal
	return &id
}

// Additions returns the IDs of assets created during this session, restricted
// to the given kinds (all kinds when none are passed).
func (s *Session) Additions(kinds ...enums.MediaKind) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uuid.UUID
	for id, kind := range s.additions {
		if len(kinds) == 0 {
			out = append(out, id)
			continue
		}
		for _, want := range kinds {
			if kind == want {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

// Removals returns the baseline asset IDs staged for removal.
func (s *Session) Removals() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, 0, len(s.removals))
	for id := range s.removals {
		out = append(out, id)
	}
	return out
}

// VideoReplacementID returns the ID of the video created during this session,
// or nil.
func (s *Session) VideoReplacementID() *uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.video.replacementID == nil {
		return nil
	}
	id := *s.video.replacementID
	return &id
}

// VideoRemoved reports whether the session removed the video without a
// replacement.
func (s *Session) VideoRemoved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.video.removed
}

// effectiveKind resolves the kind of an asset currently visible to the
// session: baseline minus staged removals, plus session additions. The second
// return distinguishes "unknown id" from "known but removal-staged".
func (s *Session) effectiveKind(id uuid.UUID) (enums.MediaKind, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind, ok := s.additions[id]; ok {
		return kind, true, false
	}
	if kind, ok := s.baseline[id]; ok {
		_, staged := s.removals[id]
		return kind, true, staged
	}
	return "", false, false
}

func (s *Session) recordAddition(id uuid.UUID, kind enums.MediaKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.additions[id] = kind
}

func (s *Session) dropAddition(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.additions, id)
	if s.principal != nil && *s.principal == id {
		s.principal = nil
	}
}

func (s *Session) stageRemoval(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removals[id] = struct{}{}
}

func (s *Session) setPrincipalSelection(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = &id
}

func (s *Session) setVideoReplacement(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.video.replacementID = &id
	s.video.removed = false
}

func (s *Session) setVideoRemoved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.video.replacementID = nil
	s.video.removed = true
}

func (s *Session) transition(to enums.DraftState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != enums.DraftStateActive {
		return false
	}
	s.state = to
	return true
}
