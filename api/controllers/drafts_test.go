package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ivanbelmonte/fincalia-backend/internal/drafts"
	"github.com/ivanbelmonte/fincalia-backend/internal/media"
	"github.com/ivanbelmonte/fincalia-backend/pkg/config"
	"github.com/ivanbelmonte/fincalia-backend/pkg/db/models"
	"github.com/ivanbelmonte/fincalia-backend/pkg/enums"
	pkgerrors "github.com/ivanbelmonte/fincalia-backend/pkg/errors"
	"github.com/ivanbelmonte/fincalia-backend/pkg/logger"
)

type stubDraftStore struct {
	created []*models.PropertyMedia
}

func (s *stubDraftStore) List(context.Context, uuid.UUID, enums.MediaKind) ([]models.PropertyMedia, error) {
	return nil, nil
}

func (s *stubDraftStore) Get(context.Context, uuid.UUID, uuid.UUID) (*models.PropertyMedia, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
}

func (s *stubDraftStore) CreateImage(_ context.Context, propertyID uuid.UUID, upload media.Upload) (*models.PropertyMedia, error) {
	asset := &models.PropertyMedia{
		ID:         uuid.New(),
		PropertyID: propertyID,
		Kind:       enums.MediaKindImage,
		FileName:   upload.FileName,
		MimeType:   upload.MimeType,
		SizeBytes:  int64(len(upload.Content)),
		Position:   len(s.created) + 1,
	}
	s.created = append(s.created, asset)
	return asset, nil
}

func (s *stubDraftStore) CreateDocument(context.Context, uuid.UUID, media.Upload, uuid.UUID) (*models.PropertyMedia, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s *stubDraftStore) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (s *stubDraftStore) SetPrincipal(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (s *stubDraftStore) ReplaceVideo(context.Context, uuid.UUID, media.Upload) (*models.PropertyMedia, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s *stubDraftStore) DeleteVideo(context.Context, uuid.UUID) error { return nil }

func (s *stubDraftStore) EnsurePrincipal(context.Context, uuid.UUID) (*models.PropertyMedia, error) {
	return nil, nil
}

func newTestManager(t *testing.T) (*drafts.Manager, *stubDraftStore) {
	t.Helper()
	store := &stubDraftStore{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	manager, err := drafts.NewManager(store, drafts.NewRegistry(nil, time.Hour), logg, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return manager, store
}

func beginSession(t *testing.T, mgr *drafts.Manager) *drafts.Session {
	t.Helper()
	session, err := mgr.Begin(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return session
}

func multipartBody(t *testing.T, field, fileName, mimeType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + fileName + `"`}
	header["Content-Type"] = []string{mimeType}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestDraftAddImageUploadsEagerly(t *testing.T) {
	mgr, store := newTestManager(t)
	session := beginSession(t, mgr)

	body, contentType := multipartBody(t, uploadField, "salon.jpg", "image/jpeg", []byte("jpeg-bytes"))
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/v1/drafts/x/images", body), "sessionId", session.ID.String())
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	DraftAddImage(mgr, config.MediaConfig{MaxImageBytes: 1 << 20}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.created) != 1 {
		t.Fatalf("expected eager store write, got %d", len(store.created))
	}
	if store.created[0].FileName != "salon.jpg" {
		t.Fatalf("store received file %q", store.created[0].FileName)
	}
}

func TestDraftAddImageRejectsOversizedUpload(t *testing.T) {
	mgr, store := newTestManager(t)
	session := beginSession(t, mgr)

	body, contentType := multipartBody(t, uploadField, "big.jpg", "image/jpeg", bytes.Repeat([]byte("x"), 64))
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/v1/drafts/x/images", body), "sessionId", session.ID.String())
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	DraftAddImage(mgr, config.MediaConfig{MaxImageBytes: 16}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if len(store.created) != 0 {
		t.Fatal("oversized upload must not reach the store")
	}
}

func TestDraftSetPrincipalUnknownAsset(t *testing.T) {
	mgr, _ := newTestManager(t)
	session := beginSession(t, mgr)

	payload, _ := json.Marshal(map[string]string{"asset_id": uuid.NewString()})
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/v1/drafts/x/principal", bytes.NewReader(payload)), "sessionId", session.ID.String())
	rec := httptest.NewRecorder()

	DraftSetPrincipal(mgr, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDraftCommitReportsSessionState(t *testing.T) {
	mgr, _ := newTestManager(t)
	session := beginSession(t, mgr)

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/v1/drafts/x/commit", nil), "sessionId", session.ID.String())
	rec := httptest.NewRecorder()

	DraftCommit(mgr, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if session.State() != enums.DraftStateCommitted {
		t.Fatalf("expected committed state, got %s", session.State())
	}

	// A second commit hits a terminal session; the registry no longer knows it.
	rec = httptest.NewRecorder()
	DraftCommit(mgr, nil).ServeHTTP(rec, withURLParam(httptest.NewRequest(http.MethodPost, "/api/v1/drafts/x/commit", nil), "sessionId", session.ID.String()))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after commit, got %d", rec.Code)
	}
}
