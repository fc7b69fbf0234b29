package drafts

import (
	"context"

	"github.com/google/uuid"

	"github.com/ivanbelmonte/fincalia-backend/internal/media"
	"github.com/ivanbelmonte/fincalia-backend/pkg/db/models"
	"github.com/ivanbelmonte/fincalia-backend/pkg/enums"
	pkgerrors "github.com/ivanbelmonte/fincalia-backend/pkg/errors"
	"github.com/ivanbelmonte/fincalia-backend/pkg/logger"
	"github.com/ivanbelmonte/fincalia-backend/pkg/metrics"
)

// Manager drives draft sessions: lifecycle, staging operations, and the
// commit/discard reconciliation. Additions hit the store eagerly; removals
// and the principal selection stay in the session until commit.
type Manager struct {
	store    media.Store
	registry *Registry
	logg     *logger.Logger
	metrics  *metrics.DraftMetrics
}

// NewManager constructs a draft session manager.
func NewManager(store media.Store, registry *Registry, logg *logger.Logger, draftMetrics *metrics.DraftMetrics) (*Manager, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media store required")
	}
	if registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session registry required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger required")
	}
	return &Manager{
		store:    store,
		registry: registry,
		logg:     logg,
		metrics:  draftMetrics,
	}, nil
}

// Begin opens a session for the property and captures the baseline asset set.
// Fails with ConflictingSession when the property is already under edit.
func (m *Manager) Begin(ctx context.Context, propertyID uuid.UUID) (*Session, error) {
	if propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property identity missing")
	}

	// Register before listing so the baseline capture runs under exclusivity.
	placeholder := newSession(propertyID, nil, nil)
	if err := m.registry.Add(ctx, placeholder); err != nil {
		return nil, err
	}

	baseline := make(map[uuid.UUID]enums.MediaKind)
	var baselineVideoID *uuid.UUID
	for _, kind := range []enums.MediaKind{enums.MediaKindImage, enums.MediaKindDocument, enums.MediaKindVideo} {
		assets, err := m.store.List(ctx, propertyID, kind)
		if err != nil {
			m.registry.Remove(ctx, placeholder)
			return nil, err
		}
		for i := range assets {
			baseline[assets[i].ID] = kind
			if kind == enums.MediaKindVideo {
				id := assets[i].ID
				baselineVideoID = &id
			}
		}
	}

	placeholder.mu.Lock()
	placeholder.baseline = baseline
	placeholder.video.baselineID = baselineVideoID
	placeholder.mu.Unlock()

	logCtx := m.logg.WithFields(ctx, map[string]any{
		"property_id":      propertyID.String(),
		"draft_session_id": placeholder.ID.String(),
		"baseline_count":   len(baseline),
	})
	m.logg.Info(logCtx, "draft session opened")
	return placeholder, nil
}

// Session resolves an active session by ID.
func (m *Manager) Session(sessionID uuid.UUID) (*Session, error) {
	session, ok := m.registry.Find(sessionID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft session not found")
	}
	return session, nil
}

// StageAddImage uploads an image eagerly and records it as a session
// addition. Duplicate content leaves the session untouched.
func (m *Manager) StageAddImage(ctx context.Context, session *Session, upload media.Upload) (*models.PropertyMedia, error) {
	if err := requireActive(session); err != nil {
		return nil, err
	}
	asset, err := m.store.CreateImage(ctx, session.PropertyID, upload)
	if err != nil {
		return nil, err
	}
	session.recordAddition(asset.ID, enums.MediaKindImage)
	return asset, nil
}

// StageAddDocument uploads a document eagerly and records it as a session
// addition. Repeated uploads of identical content are permitted.
func (m *Manager) StageAddDocument(ctx context.Context, session *Session, upload media.Upload, documentTypeID uuid.UUID) (*models.PropertyMedia, error) {
	if err := requireActive(session); err != nil {
		return nil, err
	}
	asset, err := m.store.CreateDocument(ctx, session.PropertyID, upload, documentTypeID)
	if err != nil {
		return nil, err
	}
	session.recordAddition(asset.ID, enums.MediaKindDocument)
	return asset, nil
}

// StageRemove handles both sides of the eager/lazy asymmetry: an asset added
// this session is deleted from the store immediately and forgotten; a
// baseline asset is only marked for removal until commit. Repeating the call
// for an already-marked asset is a no-op.
func (m *Manager) StageRemove(ctx context.Context, session *Session, assetID uuid.UUID) error {
	if err := requireActive(session); err != nil {
		return err
	}
	if assetID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "asset identity missing")
	}

	if session.Added(assetID) {
		if err := m.store.Delete(ctx, session.PropertyID, assetID); err != nil {
			return err
		}
		session.dropAddition(assetID)
		return nil
	}
	if session.Baseline(assetID) {
		session.stageRemoval(assetID)
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "asset does not belong to this session's property")
}

// StagePrincipalChange records the pending principal choice. The target must
// be an image visible in the session's effective set and not staged for
// removal; on failure the prior selection is retained.
func (m *Manager) StagePrincipalChange(ctx context.Context, session *Session, assetID uuid.UUID) error {
	if err := requireActive(session); err != nil {
		return err
	}
	if assetID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "asset identity missing")
	}

	kind, known, removalStaged := session.effectiveKind(assetID)
	if !known {
		return pkgerrors.New(pkgerrors.CodeNotFound, "asset does not belong to this session's property")
	}
	if removalStaged {
		return pkgerrors.New(pkgerrors.CodeInvalidSelection, "asset is staged for removal")
	}
	if kind != enums.MediaKindImage {
		return pkgerrors.New(pkgerrors.CodeInvalidSelection, "principal selection must be an image")
	}
	session.setPrincipalSelection(assetID)
	return nil
}

// StageVideoReplace swaps the property's video eagerly. A replaced baseline
// video cannot be restored by a later discard.
func (m *Manager) StageVideoReplace(ctx context.Context, session *Session, upload media.Upload) (*models.PropertyMedia, error) {
	if err := requireActive(session); err != nil {
		return nil, err
	}
	asset, err := m.store.ReplaceVideo(ctx, session.PropertyID, upload)
	if err != nil {
		return nil, err
	}
	session.setVideoReplacement(asset.ID)
	return asset, nil
}

// StageVideoRemove deletes the property's video eagerly.
func (m *Manager) StageVideoRemove(ctx context.Context, session *Session) error {
	if err := requireActive(session); err != nil {
		return err
	}
	if err := m.store.DeleteVideo(ctx, session.PropertyID); err != nil {
		return err
	}
	session.setVideoRemoved()
	return nil
}

// EffectiveAssets lists the assets of one kind as the session currently sees
// them: store state minus removal-staged baseline assets. Additions are
// already durable, so the store view includes them.
func (m *Manager) EffectiveAssets(ctx context.Context, session *Session, kind enums.MediaKind) ([]models.PropertyMedia, error) {
	if err := requireActive(session); err != nil {
		return nil, err
	}
	assets, err := m.store.List(ctx, session.PropertyID, kind)
	if err != nil {
		return nil, err
	}
	out := assets[:0]
	for i := range assets {
		if session.RemovalStaged(assets[i].ID) {
			continue
		}
		out = append(out, assets[i])
	}
	return out, nil
}

func requireActive(session *Session) error {
	if session == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "draft session not found")
	}
	if session.State() != enums.DraftStateActive {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "draft session is no longer active")
	}
	return nil
}
