package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/ivanbelmonte/fincalia-backend/pkg/errors"
	"github.com/ivanbelmonte/fincalia-backend/pkg/types"
)

func TestWriteErrorMapsCodesToStatuses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"duplicate content", pkgerrors.New(pkgerrors.CodeDuplicateContent, "identical image already uploaded"), http.StatusConflict, "DUPLICATE_CONTENT"},
		{"invalid selection", pkgerrors.New(pkgerrors.CodeInvalidSelection, "asset is staged for removal"), http.StatusUnprocessableEntity, "INVALID_SELECTION"},
		{"conflicting session", pkgerrors.New(pkgerrors.CodeConflictingSession, "another edit is in progress"), http.StatusConflict, "CONFLICTING_SESSION"},
		{"not found", pkgerrors.New(pkgerrors.CodeNotFound, "asset not found"), http.StatusNotFound, "NOT_FOUND"},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			WriteError(context.Background(), nil, rec, tc.err)

			if rec.Code != tc.status {
				t.Fatalf("expected %d got %d", tc.status, rec.Code)
			}
			var envelope types.ErrorEnvelope
			if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if envelope.Error.Code != tc.code {
				t.Fatalf("expected code %s got %s", tc.code, envelope.Error.Code)
			}
		})
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeInternal, "connection pool exhausted").WithDetails(map[string]any{"pool": "pgx"})
	WriteError(context.Background(), nil, rec, err)

	var envelope types.ErrorEnvelope
	if decErr := json.NewDecoder(rec.Body).Decode(&envelope); decErr != nil {
		t.Fatalf("decode body: %v", decErr)
	}
	if envelope.Error.Message != "internal server error" {
		t.Fatalf("internal message leaked: %q", envelope.Error.Message)
	}
	if envelope.Error.Details != nil {
		t.Fatal("internal details must not reach the client")
	}
}
