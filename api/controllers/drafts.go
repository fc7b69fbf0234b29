package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ivanbelmonte/fincalia-backend/api/responses"
	"github.com/ivanbelmonte/fincalia-backend/api/validators"
	"github.com/ivanbelmonte/fincalia-backend/internal/drafts"
	"github.com/ivanbelmonte/fincalia-backend/internal/media"
	"github.com/ivanbelmonte/fincalia-backend/pkg/config"
	"github.com/ivanbelmonte/fincalia-backend/pkg/db/models"
	"github.com/ivanbelmonte/fincalia-backend/pkg/enums"
	pkgerrors "github.com/ivanbelmonte/fincalia-backend/pkg/errors"
	"github.com/ivanbelmonte/fincalia-backend/pkg/logger"
)

const uploadField = "file"

// DraftBegin opens an edit session for a property and returns the session
// handle the wizard uses for every subsequent step.
func DraftBegin(mgr *drafts.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "draft manager unavailable"))
			return
		}

		propertyID, err := validators.PathUUID(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := mgr.Begin(r.Context(), propertyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, draftSessionResponseFromSession(session))
	}
}

// DraftGet returns the current staged intent of a session.
func DraftGet(mgr *drafts.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := resolveSession(mgr, logg, w, r)
		if !ok {
			return
		}
		responses.WriteSuccess(w, draftSessionResponseFromSession(session))
	}
}

// DraftAssets lists one kind of asset as the session currently sees it:
// durable store state minus removal-staged entries.
func DraftAssets(mgr *drafts.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := resolveSession(mgr, logg, w, r)
		if !ok {
			return
		}

		kind, err := enums.ParseMediaKind(strings.TrimSpace(r.URL.Query().Get("kind")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid kind"))
			return
		}

		assets, err := mgr.EffectiveAssets(r.Context(), session, kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]mediaAssetResponse, 0, len(assets))
		for i := range assets {
			items = append(items, mediaAssetResponseFromModel(&assets[i]))
		}
		responses.WriteSuccess(w, items)
	}
}

// DraftAddImage uploads one image into the session. The binary lands in the
// store immediately; only the membership in the session is provisional.
func DraftAddImage(mgr *drafts.Manager, mediaCfg config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := resolveSession(mgr, logg, w, r)
		if !ok {
			return
		}

		part, err := validators.ReadFilePart(r, uploadField, mediaCfg.MaxImageBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := mgr.StageAddImage(r.Context(), session, media.Upload{
			FileName: part.FileName,
			MimeType: part.MimeType,
			Content:  part.Content,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, mediaAssetResponseFromModel(asset))
	}
}

// DraftAddDocument uploads one document into the session. The document type
// arrives as a form field next to the file part.
func DraftAddDocument(mgr *drafts.Manager, mediaCfg config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := resolveSession(mgr, logg, w, r)
		if !ok {
			return
		}

		part, err := validators.ReadFilePart(r, uploadField, mediaCfg.MaxDocumentBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		docTypeID, err := uuid.Parse(strings.TrimSpace(r.FormValue("document_type_id")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid document_type_id"))
			return
		}

		asset, err := mgr.StageAddDocument(r.Context(), session, media.Upload{
			FileName: part.FileName,
			MimeType: part.MimeType,
			Content:  part.Content,
		}, docTypeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, mediaAssetResponseFromModel(asset))
	}
}

// DraftRemoveAsset stages (or immediately applies, for session additions) the
// removal of one asset.
func DraftRemoveAsset(mgr *drafts.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := resolveSession(mgr, logg, w, r)
		if !ok {
			return
		}

		assetID, err := validators.PathUUID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := mgr.StageRemove(r.Context(), session, assetID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, draftSessionResponseFromSession(session))
	}
}

type draftPrincipalRequest struct {
	AssetID string `json:"asset_id" validate:"required,uuid"`
}

// DraftSetPrincipal records the pending principal image choice.
func DraftSetPrincipal(mgr *drafts.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := resolveSession(mgr, logg, w, r)
		if !ok {
			return
		}

		var payload draftPrincipalRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		assetID, err := uuid.Parse(payload.AssetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid asset_id"))
			return
		}

		if err := mgr.StagePrincipalChange(r.Context(), session, assetID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, draftSessionResponseFromSession(session))
	}
}

// DraftReplaceVideo swaps the property's walkthrough video. The previous
// binary is gone once this succeeds, discard or not.
func DraftReplaceVideo(mgr *drafts.Manager, mediaCfg config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := resolveSession(mgr, logg, w, r)
		if !ok {
			return
		}

		part, err := validators.ReadFilePart(r, uploadField, mediaCfg.MaxVideoBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := mgr.StageVideoReplace(r.Context(), session, media.Upload{
			FileName: part.FileName,
			MimeType: part.MimeType,
			Content:  part.Content,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, mediaAssetResponseFromModel(asset))
	}
}

// DraftRemoveVideo deletes the property's video immediately.
func DraftRemoveVideo(mgr *drafts.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := resolveSession(mgr, logg, w, r)
		if !ok {
			return
		}

		if err := mgr.StageVideoRemove(r.Context(), session); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, draftSessionResponseFromSession(session))
	}
}

// DraftCommit applies the session's staged removals and principal selection.
// Per-item results land in the payload so the client can surface partial
// failures.
func DraftCommit(mgr *drafts.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := resolveSession(mgr, logg, w, r)
		if !ok {
			return
		}

		result, err := mgr.Commit(r.Context(), session)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if result.Failed() {
			status = http.StatusMultiStatus
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

// DraftDiscard abandons the session and unwinds its eager additions.
func DraftDiscard(mgr *drafts.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := resolveSession(mgr, logg, w, r)
		if !ok {
			return
		}

		result, err := mgr.Discard(r.Context(), session)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func resolveSession(mgr *drafts.Manager, logg *logger.Logger, w http.ResponseWriter, r *http.Request) (*drafts.Session, bool) {
	if mgr == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "draft manager unavailable"))
		return nil, false
	}
	sessionID, err := validators.PathUUID(r, "sessionId")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, false
	}
	session, err := mgr.Session(sessionID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, false
	}
	return session, true
}

type draftSessionResponse struct {
	ID                 uuid.UUID        `json:"id"`
	PropertyID         uuid.UUID        `json:"property_id"`
	State              enums.DraftState `json:"state"`
	StartedAt          time.Time        `json:"started_at"`
	StagedRemovals     []uuid.UUID      `json:"staged_removals"`
	PrincipalSelection *uuid.UUID       `json:"principal_selection,omitempty"`
	VideoReplaced      bool             `json:"video_replaced"`
	VideoRemoved       bool             `json:"video_removed"`
}

func draftSessionResponseFromSession(s *drafts.Session) draftSessionResponse {
	return draftSessionResponse{
		ID:                 s.ID,
		PropertyID:         s.PropertyID,
		State:              s.State(),
		StartedAt:          s.StartedAt,
		StagedRemovals:     s.Removals(),
		PrincipalSelection: s.PrincipalSelection(),
		VideoReplaced:      s.VideoReplacementID() != nil,
		VideoRemoved:       s.VideoRemoved(),
	}
}

type mediaAssetResponse struct {
	ID             uuid.UUID       `json:"id"`
	PropertyID     uuid.UUID       `json:"property_id"`
	Kind           enums.MediaKind `json:"kind"`
	FileName       string          `json:"file_name"`
	MimeType       string          `json:"mime_type"`
	SizeBytes      int64           `json:"size_bytes"`
	ContentHash    string          `json:"content_hash"`
	Position       int             `json:"position"`
	IsPrincipal    bool            `json:"is_principal"`
	DocumentTypeID *uuid.UUID      `json:"document_type_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func mediaAssetResponseFromModel(m *models.PropertyMedia) mediaAssetResponse {
	return mediaAssetResponse{
		ID:             m.ID,
		PropertyID:     m.PropertyID,
		Kind:           m.Kind,
		FileName:       m.FileName,
		MimeType:       m.MimeType,
		SizeBytes:      m.SizeBytes,
		ContentHash:    m.ContentHash,
		Position:       m.Position,
		IsPrincipal:    m.IsPrincipal,
		DocumentTypeID: m.DocumentTypeID,
		CreatedAt:      m.CreatedAt,
	}
}
