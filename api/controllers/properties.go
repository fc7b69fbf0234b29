package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ivanbelmonte/fincalia-backend/api/responses"
	"github.com/ivanbelmonte/fincalia-backend/api/validators"
	"github.com/ivanbelmonte/fincalia-backend/internal/properties"
	"github.com/ivanbelmonte/fincalia-backend/pkg/db/models"
	"github.com/ivanbelmonte/fincalia-backend/pkg/enums"
	pkgerrors "github.com/ivanbelmonte/fincalia-backend/pkg/errors"
	"github.com/ivanbelmonte/fincalia-backend/pkg/logger"
)

type propertyCreateRequest struct {
	Reference   string `json:"reference" validate:"required,max=64"`
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	City        string `json:"city" validate:"max=128"`
	Province    string `json:"province" validate:"max=128"`
	PriceCents  int64  `json:"price_cents" validate:"min=0"`
}

func (r propertyCreateRequest) toInput() properties.CreateInput {
	return properties.CreateInput{
		Reference:   r.Reference,
		Title:       r.Title,
		Description: r.Description,
		City:        r.City,
		Province:    r.Province,
		PriceCents:  r.PriceCents,
	}
}

// PropertyCreate handles registering a new listing in draft status.
func PropertyCreate(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		var payload propertyCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, propertyResponseFromModel(created))
	}
}

// PropertyGet returns a single listing.
func PropertyGet(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		id, err := validators.PathUUID(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		property, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, propertyResponseFromModel(property))
	}
}

// PropertyList returns a cursor-paginated page of listings, optionally
// filtered by status.
func PropertyList(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := properties.ListInput{
			Status: enums.PropertyStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
			Page:   page,
		}

		out, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]propertyResponse, 0, len(out.Items))
		for i := range out.Items {
			items = append(items, propertyResponseFromModel(&out.Items[i]))
		}
		responses.WriteSuccess(w, propertyListResponse{
			Items:      items,
			NextCursor: out.NextCursor,
		})
	}
}

type propertyStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PropertyUpdateStatus moves a listing between draft, published, and archived.
func PropertyUpdateStatus(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "property service unavailable"))
			return
		}

		id, err := validators.PathUUID(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload propertyStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := enums.PropertyStatus(strings.TrimSpace(payload.Status))
		if err := svc.UpdateStatus(r.Context(), id, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": string(status)})
	}
}

type propertyResponse struct {
	ID          uuid.UUID            `json:"id"`
	Reference   string               `json:"reference"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	City        string               `json:"city,omitempty"`
	Province    string               `json:"province,omitempty"`
	PriceCents  int64                `json:"price_cents"`
	Status      enums.PropertyStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

type propertyListResponse struct {
	Items      []propertyResponse `json:"items"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

func propertyResponseFromModel(m *models.Property) propertyResponse {
	return propertyResponse{
		ID:          m.ID,
		Reference:   m.Reference,
		Title:       m.Title,
		Description: m.Description,
		City:        m.City,
		Province:    m.Province,
		PriceCents:  m.PriceCents,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
