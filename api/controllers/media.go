package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ivanbelmonte/fincalia-backend/api/responses"
	"github.com/ivanbelmonte/fincalia-backend/api/validators"
	"github.com/ivanbelmonte/fincalia-backend/internal/media"
	"github.com/ivanbelmonte/fincalia-backend/pkg/enums"
	pkgerrors "github.com/ivanbelmonte/fincalia-backend/pkg/errors"
	"github.com/ivanbelmonte/fincalia-backend/pkg/logger"
)

// MediaList returns a property's committed assets of one kind in gallery
// order.
func MediaList(store media.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media store unavailable"))
			return
		}

		propertyID, err := validators.PathUUID(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseMediaKind(strings.TrimSpace(r.URL.Query().Get("kind")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid kind"))
			return
		}

		assets, err := store.List(r.Context(), propertyID, kind)
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

// MediaContent serves the stored binary with its original mime type.
func MediaContent(store media.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media store unavailable"))
			return
		}

		propertyID, err := validators.PathUUID(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		assetID, err := validators.PathUUID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := store.Get(r.Context(), propertyID, assetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", asset.MimeType)
		w.Header().Set("Content-Length", strconv.Itoa(len(asset.Content)))
		// Content hash doubles as a strong validator for client caches.
		w.Header().Set("ETag", `"`+asset.ContentHash+`"`)
		w.WriteHeader(http.StatusOK)
		w.Write(asset.Content)
	}
}
