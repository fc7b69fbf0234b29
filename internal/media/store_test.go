package media

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ivanbelmonte/fincalia-backend/internal/contenthash"
	"github.com/ivanbelmonte/fincalia-backend/pkg/config"
	"github.com/ivanbelmonte/fincalia-backend/pkg/db/models"
	"github.com/ivanbelmonte/fincalia-backend/pkg/enums"
	pkgerrors "github.com/ivanbelmonte/fincalia-backend/pkg/errors"
)

type stubRepo struct {
	assets       []models.PropertyMedia
	created      []*models.PropertyMedia
	deleted      []uuid.UUID
	principalSet []uuid.UUID
	replaced     *models.PropertyMedia

	createErr    error
	deleteErr    error
	principalErr error
}

func (s *stubRepo) ListByKind(ctx context.Context, propertyID uuid.UUID, kind enums.MediaKind) ([]models.PropertyMedia, error) {
	var out []models.PropertyMedia
	for _, a := range s.assets {
		if a.PropertyID == propertyID && a.Kind == kind {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubRepo) FindByID(ctx context.Context, propertyID, id uuid.UUID) (*models.PropertyMedia, error) {
	for i := range s.assets {
		if s.assets[i].ID == id && s.assets[i].PropertyID == propertyID {
			return &s.assets[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) ImageExistsWithHash(ctx context.Context, propertyID uuid.UUID, hash string) (bool, error) {
	for _, a := range s.assets {
		if a.PropertyID == propertyID && a.Kind == enums.MediaKindImage && a.ContentHash == hash {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepo) NextPosition(ctx context.Context, propertyID uuid.UUID, kind enums.MediaKind) (int, error) {
	max := 0
	found := false
	for _, a := range s.assets {
		if a.PropertyID == propertyID && a.Kind == kind {
			found = true
			if a.Position > max {
				max = a.Position
			}
		}
	}
	if !found {
		return 1, nil
	}
	return max + 1, nil
}

func (s *stubRepo) Create(ctx context.Context, asset *models.PropertyMedia) (*models.PropertyMedia, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, asset)
	s.assets = append(s.assets, *asset)
	return asset, nil
}

func (s *stubRepo) Delete(ctx context.Context, propertyID, id uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i := range s.assets {
		if s.assets[i].ID == id && s.assets[i].PropertyID == propertyID {
			s.assets = append(s.assets[:i], s.assets[i+1:]...)
			s.deleted = append(s.deleted, id)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubRepo) SetPrincipal(ctx context.Context, propertyID, id uuid.UUID) error {
	if s.principalErr != nil {
		return s.principalErr
	}
	found := false
	for i := range s.assets {
		if s.assets[i].PropertyID != propertyID || s.assets[i].Kind != enums.MediaKindImage {
			continue
		}
		s.assets[i].IsPrincipal = s.assets[i].ID == id
		if s.assets[i].ID == id {
			found = true
		}
	}
	if !found {
		return gorm.ErrRecordNotFound
	}
	s.principalSet = append(s.principalSet, id)
	return nil
}

func (s *stubRepo) FindPrincipal(ctx context.Context, propertyID uuid.UUID) (*models.PropertyMedia, error) {
	for i := range s.assets {
		if s.assets[i].PropertyID == propertyID && s.assets[i].Kind == enums.MediaKindImage && s.assets[i].IsPrincipal {
			return &s.assets[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FirstImage(ctx context.Context, propertyID uuid.UUID) (*models.PropertyMedia, error) {
	var best *models.PropertyMedia
	for i := range s.assets {
		a := &s.assets[i]
		if a.PropertyID != propertyID || a.Kind != enums.MediaKindImage {
			continue
		}
		if best == nil || a.Position < best.Position {
			best = a
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (s *stubRepo) FindVideo(ctx context.Context, propertyID uuid.UUID) (*models.PropertyMedia, error) {
	for i := range s.assets {
		if s.assets[i].PropertyID == propertyID && s.assets[i].Kind == enums.MediaKindVideo {
			return &s.assets[i], nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ReplaceVideo(ctx context.Context, propertyID uuid.UUID, asset *models.PropertyMedia) (*models.PropertyMedia, error) {
	for i := 0; i < len(s.assets); i++ {
		if s.assets[i].PropertyID == propertyID && s.assets[i].Kind == enums.MediaKindVideo {
			s.assets = append(s.assets[:i], s.assets[i+1:]...)
			i--
		}
	}
	s.assets = append(s.assets, *asset)
	s.replaced = asset
	return asset, nil
}

func testMediaConfig() config.MediaConfig {
	return config.MediaConfig{
		MaxImageBytes:    1 << 20,
		MaxDocumentBytes: 1 << 20,
		MaxVideoBytes:    1 << 20,
	}
}

func imageUpload(name, content string) Upload {
	return Upload{FileName: name, MimeType: "image/jpeg", Content: []byte(content)}
}

func TestCreateImageFirstBecomesPrincipal(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	store, err := NewStore(repo, testMediaConfig())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	propertyID := uuid.New()

	first, err := store.CreateImage(context.Background(), propertyID, imageUpload("facade.jpg", "facade"))
	if err != nil {
		t.Fatalf("CreateImage returned error: %v", err)
	}
	if !first.IsPrincipal {
		t.Fatal("expected first image to become principal")
	}
	if first.Position != 1 {
		t.Fatalf("expected position 1 got %d", first.Position)
	}

	second, err := store.CreateImage(context.Background(), propertyID, imageUpload("kitchen.jpg", "kitchen"))
	if err != nil {
		t.Fatalf("CreateImage second returned error: %v", err)
	}
	if second.IsPrincipal {
		t.Fatal("second image must not be principal")
	}
	if second.Position != 2 {
		t.Fatalf("expected position 2 got %d", second.Position)
	}
}

func TestCreateImageRejectsDuplicateContent(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	store, err := NewStore(repo, testMediaConfig())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	propertyID := uuid.New()

	if _, err := store.CreateImage(context.Background(), propertyID, imageUpload("a.jpg", "same bytes")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err = store.CreateImage(context.Background(), propertyID, imageUpload("b.jpg", "same bytes"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDuplicateContent {
		t.Fatalf("expected DUPLICATE_CONTENT, got %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected no second asset, created %d", len(repo.created))
	}
}

func TestCreateImageAllowsSameContentOnOtherProperty(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	store, err := NewStore(repo, testMediaConfig())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if _, err := store.CreateImage(context.Background(), uuid.New(), imageUpload("a.jpg", "shared")); err != nil {
		t.Fatalf("first property create failed: %v", err)
	}
	if _, err := store.CreateImage(context.Background(), uuid.New(), imageUpload("a.jpg", "shared")); err != nil {
		t.Fatalf("dedupe must be scoped per property: %v", err)
	}
}

func TestCreateDocumentSkipsDedupe(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	store, err := NewStore(repo, testMediaConfig())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	propertyID := uuid.New()
	docType := uuid.New()
	upload := Upload{FileName: "deed.pdf", MimeType: "application/pdf", Content: []byte("deed bytes")}

	if _, err := store.CreateDocument(context.Background(), propertyID, upload, docType); err != nil {
		t.Fatalf("first document failed: %v", err)
	}
	if _, err := store.CreateDocument(context.Background(), propertyID, upload, docType); err != nil {
		t.Fatalf("duplicate document content must be allowed: %v", err)
	}
	if len(repo.created) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(repo.created))
	}
	if repo.created[0].DocumentTypeID == nil || *repo.created[0].DocumentTypeID != docType {
		t.Fatal("expected document type reference on created asset")
	}
}

func TestDeleteDoesNotPromotePrincipal(t *testing.T) {
	t.Parallel()

	propertyID := uuid.New()
	principal := models.PropertyMedia{ID: uuid.New(), PropertyID: propertyID, Kind: enums.MediaKindImage, Position: 1, IsPrincipal: true}
	other := models.PropertyMedia{ID: uuid.New(), PropertyID: propertyID, Kind: enums.MediaKindImage, Position: 2}
	repo := &stubRepo{assets: []models.PropertyMedia{principal, other}}
	store, err := NewStore(repo, testMediaConfig())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := store.Delete(context.Background(), propertyID, principal.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(repo.principalSet) != 0 {
		t.Fatal("delete must not promote a new principal on its own")
	}

	promoted, err := store.EnsurePrincipal(context.Background(), propertyID)
	if err != nil {
		t.Fatalf("EnsurePrincipal returned error: %v", err)
	}
	if promoted == nil || promoted.ID != other.ID {
		t.Fatalf("expected %s promoted, got %+v", other.ID, promoted)
	}
}

func TestEnsurePrincipalNoopWhenPrincipalExists(t *testing.T) {
	t.Parallel()

	propertyID := uuid.New()
	repo := &stubRepo{assets: []models.PropertyMedia{
		{ID: uuid.New(), PropertyID: propertyID, Kind: enums.MediaKindImage, Position: 1, IsPrincipal: true},
	}}
	store, err := NewStore(repo, testMediaConfig())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	promoted, err := store.EnsurePrincipal(context.Background(), propertyID)
	if err != nil {
		t.Fatalf("EnsurePrincipal returned error: %v", err)
	}
	if promoted != nil {
		t.Fatalf("expected no promotion, got %s", promoted.ID)
	}
}

func TestEnsurePrincipalNoopWithoutImages(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	store, err := NewStore(repo, testMediaConfig())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	promoted, err := store.EnsurePrincipal(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("EnsurePrincipal returned error: %v", err)
	}
	if promoted != nil {
		t.Fatal("expected no promotion when the property has no images")
	}
}

func TestSetPrincipalUnknownImage(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	store, err := NewStore(repo, testMediaConfig())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	err = store.SetPrincipal(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestReplaceVideoSwapsSingleAsset(t *testing.T) {
	t.Parallel()

	propertyID := uuid.New()
	existing := models.PropertyMedia{ID: uuid.New(), PropertyID: propertyID, Kind: enums.MediaKindVideo}
	repo := &stubRepo{assets: []models.PropertyMedia{existing}}
	store, err := NewStore(repo, testMediaConfig())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	upload := Upload{FileName: "tour.mp4", MimeType: "video/mp4", Content: []byte("new tour")}
	created, err := store.ReplaceVideo(context.Background(), propertyID, upload)
	if err != nil {
		t.Fatalf("ReplaceVideo returned error: %v", err)
	}
	if created.ContentHash != contenthash.Digest([]byte("new tour")) {
		t.Fatal("expected content hash recorded on new video")
	}

	videos, err := store.List(context.Background(), propertyID, enums.MediaKindVideo)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(videos) != 1 || videos[0].ID != created.ID {
		t.Fatalf("expected single new video, got %d", len(videos))
	}
}

func TestDeleteVideoIsIdempotent(t *testing.T) {
	t.Parallel()

	propertyID := uuid.New()
	repo := &stubRepo{assets: []models.PropertyMedia{
		{ID: uuid.New(), PropertyID: propertyID, Kind: enums.MediaKindVideo},
	}}
	store, err := NewStore(repo, testMediaConfig())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := store.DeleteVideo(context.Background(), propertyID); err != nil {
		t.Fatalf("DeleteVideo returned error: %v", err)
	}
	if err := store.DeleteVideo(context.Background(), propertyID); err != nil {
		t.Fatalf("second DeleteVideo must be a no-op: %v", err)
	}
}

func TestUploadValidation(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	store, err := NewStore(repo, testMediaConfig())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	propertyID := uuid.New()

	cases := []struct {
		name   string
		upload Upload
	}{
		{"missing file name", Upload{MimeType: "image/jpeg", Content: []byte("x")}},
		{"empty content", Upload{FileName: "a.jpg", MimeType: "image/jpeg"}},
		{"wrong mime", Upload{FileName: "a.gif", MimeType: "image/gif", Content: []byte("x")}},
		{"oversized", Upload{FileName: "a.jpg", MimeType: "image/jpeg", Content: make([]byte, (1<<20)+1)}},
	}
	for _, tc := range cases {
		_, err := store.CreateImage(context.Background(), propertyID, tc.upload)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected VALIDATION_ERROR, got %v", tc.name, err)
		}
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no assets created, got %d", len(repo.created))
	}
}
