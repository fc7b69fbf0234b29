package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ivanbelmonte/fincalia-backend/api/responses"
	"github.com/ivanbelmonte/fincalia-backend/internal/doctypes"
	"github.com/ivanbelmonte/fincalia-backend/pkg/db/models"
	pkgerrors "github.com/ivanbelmonte/fincalia-backend/pkg/errors"
	"github.com/ivanbelmonte/fincalia-backend/pkg/logger"
)

// DocumentTypeList returns the document category catalog.
func DocumentTypeList(svc doctypes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "document type service unavailable"))
			return
		}

		types, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]documentTypeResponse, 0, len(types))
		for i := range types {
			items = append(items, documentTypeResponseFromModel(&types[i]))
		}
		responses.WriteSuccess(w, items)
	}
}

type documentTypeResponse struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func documentTypeResponseFromModel(m *models.DocumentType) documentTypeResponse {
	return documentTypeResponse{
		ID:        m.ID,
		Slug:      m.Slug,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}
