package validators

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/ivanbelmonte/fincalia-backend/pkg/errors"
)

// PathUUID extracts and parses a UUID URL parameter.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "missing "+name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

// FileUpload carries one multipart file part after extraction.
type FileUpload struct {
	FileName string
	MimeType string
	Content  []byte
}

// ReadFilePart pulls a named file out of a multipart form. maxBytes bounds
// how much of the part is read into memory; anything larger is rejected
// before the payload reaches a service.
func ReadFilePart(r *http.Request, field string, maxBytes int64) (FileUpload, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return FileUpload{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return FileUpload{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "missing file part "+field)
	}
	defer file.Close()

	if header.Size > maxBytes {
		return FileUpload{}, pkgerrors.New(pkgerrors.CodeValidation, "file exceeds the allowed size")
	}

	content, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return FileUpload{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read file part")
	}
	if int64(len(content)) > maxBytes {
		return FileUpload{}, pkgerrors.New(pkgerrors.CodeValidation, "file exceeds the allowed size")
	}

	return FileUpload{
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Content:  content,
	}, nil
}
