package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ivanbelmonte/fincalia-backend/internal/properties"
	"github.com/ivanbelmonte/fincalia-backend/pkg/db/models"
	"github.com/ivanbelmonte/fincalia-backend/pkg/enums"
	pkgerrors "github.com/ivanbelmonte/fincalia-backend/pkg/errors"
)

type stubPropertyService struct {
	property *models.Property
	list     *properties.ListOutput
	err      error

	lastCreate properties.CreateInput
	lastStatus enums.PropertyStatus
}

func (s *stubPropertyService) Create(_ context.Context, input properties.CreateInput) (*models.Property, error) {
	s.lastCreate = input
	if s.err != nil {
		return nil, s.err
	}
	return s.property, nil
}

func (s *stubPropertyService) Get(context.Context, uuid.UUID) (*models.Property, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.property, nil
}

func (s *stubPropertyService) List(context.Context, properties.ListInput) (*properties.ListOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

func (s *stubPropertyService) UpdateStatus(_ context.Context, _ uuid.UUID, status enums.PropertyStatus) error {
	s.lastStatus = status
	return s.err
}

func sampleProperty() *models.Property {
	return &models.Property{
		ID:         uuid.New(),
		Reference:  "VLC-1042",
		Title:      "Flat near Turia gardens",
		City:       "Valencia",
		Province:   "Valencia",
		PriceCents: 21500000,
		Status:     enums.PropertyStatusDraft,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

func TestPropertyCreateSuccess(t *testing.T) {
	svc := &stubPropertyService{property: sampleProperty()}
	handler := PropertyCreate(svc, nil)

	body, _ := json.Marshal(map[string]any{
		"reference":   "VLC-1042",
		"title":       "Flat near Turia gardens",
		"city":        "Valencia",
		"province":    "Valencia",
		"price_cents": 21500000,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/properties", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastCreate.Reference != "VLC-1042" {
		t.Fatalf("service received reference %q", svc.lastCreate.Reference)
	}
}

func TestPropertyCreateRejectsMissingTitle(t *testing.T) {
	handler := PropertyCreate(&stubPropertyService{}, nil)

	body, _ := json.Marshal(map[string]any{"reference": "VLC-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/properties", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestPropertyGetNotFound(t *testing.T) {
	handler := PropertyGet(&stubPropertyService{err: pkgerrors.New(pkgerrors.CodeNotFound, "property not found")}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/properties/x", nil), "propertyId", uuid.NewString())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestPropertyListForwardsCursor(t *testing.T) {
	svc := &stubPropertyService{list: &properties.ListOutput{
		Items:      []models.Property{*sampleProperty()},
		NextCursor: "opaque-cursor",
	}}
	handler := PropertyList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties?limit=10", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data propertyListResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.NextCursor != "opaque-cursor" {
		t.Fatalf("expected next cursor forwarded, got %q", envelope.Data.NextCursor)
	}
	if len(envelope.Data.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(envelope.Data.Items))
	}
}

func TestPropertyUpdateStatus(t *testing.T) {
	svc := &stubPropertyService{}
	handler := PropertyUpdateStatus(svc, nil)

	body, _ := json.Marshal(map[string]string{"status": "published"})
	req := withURLParam(httptest.NewRequest(http.MethodPatch, "/api/v1/properties/x/status", bytes.NewReader(body)), "propertyId", uuid.NewString())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastStatus != enums.PropertyStatusPublished {
		t.Fatalf("service received status %q", svc.lastStatus)
	}
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
