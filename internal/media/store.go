package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ivanbelmonte/fincalia-backend/internal/contenthash"
	"github.com/ivanbelmonte/fincalia-backend/pkg/config"
	"github.com/ivanbelmonte/fincalia-backend/pkg/db/models"
	"github.com/ivanbelmonte/fincalia-backend/pkg/enums"
	pkgerrors "github.com/ivanbelmonte/fincalia-backend/pkg/errors"
)

type mediaRepository interface {
	ListByKind(ctx context.Context, propertyID uuid.UUID, kind enums.MediaKind) ([]models.PropertyMedia, error)
	FindByID(ctx context.Context, propertyID, id uuid.UUID) (*models.PropertyMedia, error)
	ImageExistsWithHash(ctx context.Context, propertyID uuid.UUID, hash string) (bool, error)
	NextPosition(ctx context.Context, propertyID uuid.UUID, kind enums.MediaKind) (int, error)
	Create(ctx context.Context, asset *models.PropertyMedia) (*models.PropertyMedia, error)
	Delete(ctx context.Context, propertyID, id uuid.UUID) error
	SetPrincipal(ctx context.Context, propertyID, id uuid.UUID) error
	FindPrincipal(ctx context.Context, propertyID uuid.UUID) (*models.PropertyMedia, error)
	FirstImage(ctx context.Context, propertyID uuid.UUID) (*models.PropertyMedia, error)
	FindVideo(ctx context.Context, propertyID uuid.UUID) (*models.PropertyMedia, error)
	ReplaceVideo(ctx context.Context, propertyID uuid.UUID, asset *models.PropertyMedia) (*models.PropertyMedia, error)
}

// Upload carries the binary payload and metadata for one asset creation.
// Size/extension policy checks happen upstream; the store only enforces hard
// byte limits and content-hash dedupe.
type Upload struct {
	FileName string
	MimeType string
	Content  []byte
}

// Store owns the durable media collection of a property: ordering, the
// principal flag, and the single-video rule.
type Store interface {
	List(ctx context.Context, propertyID uuid.UUID, kind enums.MediaKind) ([]models.PropertyMedia, error)
	Get(ctx context.Context, propertyID, id uuid.UUID) (*models.PropertyMedia, error)
	CreateImage(ctx context.Context, propertyID uuid.UUID, upload Upload) (*models.PropertyMedia, error)
	CreateDocument(ctx context.Context, propertyID uuid.UUID, upload Upload, documentTypeID uuid.UUID) (*models.PropertyMedia, error)
	Delete(ctx context.Context, propertyID, id uuid.UUID) error
	SetPrincipal(ctx context.Context, propertyID, id uuid.UUID) error
	ReplaceVideo(ctx context.Context, propertyID uuid.UUID, upload Upload) (*models.PropertyMedia, error)
	DeleteVideo(ctx context.Context, propertyID uuid.UUID) error
	EnsurePrincipal(ctx context.Context, propertyID uuid.UUID) (*models.PropertyMedia, error)
}

type store struct {
	repo mediaRepository
	cfg  config.MediaConfig
}

// NewStore constructs the media asset store backed by the provided repository.
func NewStore(repo mediaRepository, cfg config.MediaConfig) (Store, error) {
	if repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	return &store{repo: repo, cfg: cfg}, nil
}

var mimeTypesByKind = map[enums.MediaKind][]string{
	enums.MediaKindImage:    {"image/png", "image/jpeg", "image/webp"},
	enums.MediaKindDocument: {"application/pdf"},
	enums.MediaKindVideo:    {"video/mp4", "video/webm"},
}

func (s *store) List(ctx context.Context, propertyID uuid.UUID, kind enums.MediaKind) ([]models.PropertyMedia, error) {
	if propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property identity missing")
	}
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind")
	}
	rows, err := s.repo.ListByKind(ctx, propertyID, kind)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list property media")
	}
	return rows, nil
}

func (s *store) Get(ctx context.Context, propertyID, id uuid.UUID) (*models.PropertyMedia, error) {
	if propertyID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset identity missing")
	}
	row, err := s.repo.FindByID(ctx, propertyID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media asset not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch media asset")
	}
	return row, nil
}

func (s *store) CreateImage(ctx context.Context, propertyID uuid.UUID, upload Upload) (*models.PropertyMedia, error) {
	if err := s.validateUpload(enums.MediaKindImage, upload, s.cfg.MaxImageBytes); err != nil {
		return nil, err
	}
	if propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property identity missing")
	}

	hash := contenthash.Digest(upload.Content)
	exists, err := s.repo.ImageExistsWithHash(ctx, propertyID, hash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check image dedupe")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicateContent, "image with identical content already exists").
			WithDetails(map[string]string{"content_hash": hash})
	}

	position, err := s.repo.NextPosition(ctx, propertyID, enums.MediaKindImage)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute image position")
	}

	// The property's first-ever image becomes principal automatically.
	asset := s.buildAsset(propertyID, enums.MediaKindImage, upload, hash, position)
	asset.IsPrincipal = position == 1

	created, err := s.repo.Create(ctx, asset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist image asset")
	}
	return created, nil
}

func (s *store) CreateDocument(ctx context.Context, propertyID uuid.UUID, upload Upload, documentTypeID uuid.UUID) (*models.PropertyMedia, error) {
	if err := s.validateUpload(enums.MediaKindDocument, upload, s.cfg.MaxDocumentBytes); err != nil {
		return nil, err
	}
	if propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property identity missing")
	}
	if documentTypeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document_type_id is required")
	}

	position, err := s.repo.NextPosition(ctx, propertyID, enums.MediaKindDocument)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute document position")
	}

	// Documents are not deduplicated by content hash; repeated uploads of the
	// same file are allowed.
	asset := s.buildAsset(propertyID, enums.MediaKindDocument, upload, contenthash.Digest(upload.Content), position)
	asset.DocumentTypeID = &documentTypeID

	created, err := s.repo.Create(ctx, asset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist document asset")
	}
	return created, nil
}

// Delete hard-removes an asset. Deleting the principal image does not promote
// a replacement; callers repair the invariant via EnsurePrincipal.
func (s *store) Delete(ctx context.Context, propertyID, id uuid.UUID) error {
	if propertyID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "asset identity missing")
	}
	err := s.repo.Delete(ctx, propertyID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "media asset not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete media asset")
	}
	return nil
}

func (s *store) SetPrincipal(ctx context.Context, propertyID, id uuid.UUID) error {
	if propertyID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "asset identity missing")
	}
	err := s.repo.SetPrincipal(ctx, propertyID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "image not found for property")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set principal image")
	}
	return nil
}

func (s *store) ReplaceVideo(ctx context.Context, propertyID uuid.UUID, upload Upload) (*models.PropertyMedia, error) {
	if err := s.validateUpload(enums.MediaKindVideo, upload, s.cfg.MaxVideoBytes); err != nil {
		return nil, err
	}
	if propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property identity missing")
	}

	// Video carries no position and no principal flag; at most one exists.
	asset := s.buildAsset(propertyID, enums.MediaKindVideo, upload, contenthash.Digest(upload.Content), 0)

	created, err := s.repo.ReplaceVideo(ctx, propertyID, asset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace property video")
	}
	return created, nil
}

func (s *store) DeleteVideo(ctx context.Context, propertyID uuid.UUID) error {
	if propertyID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "property identity missing")
	}
	current, err := s.repo.FindVideo(ctx, propertyID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch property video")
	}
	if current == nil {
		return nil
	}
	if err := s.repo.Delete(ctx, propertyID, current.ID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete property video")
	}
	return nil
}

// EnsurePrincipal promotes the lowest-position image when the property has
// images but none carries the principal flag. Returns the promoted asset, or
// nil when no repair was needed or no images remain.
func (s *store) EnsurePrincipal(ctx context.Context, propertyID uuid.UUID) (*models.PropertyMedia, error) {
	if propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property identity missing")
	}

	_, err := s.repo.FindPrincipal(ctx, propertyID)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch principal image")
	}

	first, err := s.repo.FirstImage(ctx, propertyID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch first image")
	}

	if err := s.repo.SetPrincipal(ctx, propertyID, first.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote principal image")
	}
	first.IsPrincipal = true
	return first, nil
}

func (s *store) buildAsset(propertyID uuid.UUID, kind enums.MediaKind, upload Upload, hash string, position int) *models.PropertyMedia {
	return &models.PropertyMedia{
		ID:          uuid.New(),
		PropertyID:  propertyID,
		Kind:        kind,
		FileName:    strings.TrimSpace(upload.FileName),
		MimeType:    strings.TrimSpace(upload.MimeType),
		SizeBytes:   int64(len(upload.Content)),
		Content:     upload.Content,
		ContentHash: hash,
		Position:    position,
	}
}

func (s *store) validateUpload(kind enums.MediaKind, upload Upload, maxBytes int64) error {
	if strings.TrimSpace(upload.FileName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}
	if len(upload.Content) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	}
	if maxBytes > 0 && int64(len(upload.Content)) > maxBytes {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("content must be <= %d bytes", maxBytes))
	}
	mimeType := strings.TrimSpace(upload.MimeType)
	if mimeType == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "mime_type is required")
	}
	if !isAllowedMime(kind, mimeType) {
		return pkgerrors.New(pkgerrors.CodeValidation, "mime_type not allowed for media kind")
	}
	return nil
}

func isAllowedMime(kind enums.MediaKind, mimeType string) bool {
	allowed, ok := mimeTypesByKind[kind]
	if !ok || len(allowed) == 0 {
		return true
	}
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, mimeType) {
			return true
		}
	}
	return false
}
