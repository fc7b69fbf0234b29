package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ivanbelmonte/fincalia-backend/api/responses"
	"github.com/ivanbelmonte/fincalia-backend/api/validators"
	"github.com/ivanbelmonte/fincalia-backend/internal/leads"
	"github.com/ivanbelmonte/fincalia-backend/pkg/db/models"
	pkgerrors "github.com/ivanbelmonte/fincalia-backend/pkg/errors"
	"github.com/ivanbelmonte/fincalia-backend/pkg/logger"
)

type leadSubmitRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=32"`
	Message string `json:"message" validate:"max=4096"`
	Source  string `json:"source" validate:"max=64"`
}

// LeadSubmit captures a buyer inquiry from the public site.
func LeadSubmit(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lead service unavailable"))
			return
		}

		propertyID, err := validators.PathUUID(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload leadSubmitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Submit(r.Context(), leads.SubmitInput{
			PropertyID: propertyID,
			Name:       payload.Name,
			Email:      payload.Email,
			Phone:      payload.Phone,
			Message:    payload.Message,
			Source:     payload.Source,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, leadResponseFromModel(created))
	}
}

// LeadList returns the inquiries received for one property.
func LeadList(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lead service unavailable"))
			return
		}

		propertyID, err := validators.PathUUID(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListByProperty(r.Context(), propertyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]leadResponse, 0, len(rows))
		for i := range rows {
			items = append(items, leadResponseFromModel(&rows[i]))
		}
		responses.WriteSuccess(w, items)
	}
}

type leadResponse struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Message    string    `json:"message,omitempty"`
	Source     string    `json:"source,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func leadResponseFromModel(m *models.Lead) leadResponse {
	return leadResponse{
		ID:         m.ID,
		PropertyID: m.PropertyID,
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		Message:    m.Message,
		Source:     m.Source,
		CreatedAt:  m.CreatedAt,
	}
}
