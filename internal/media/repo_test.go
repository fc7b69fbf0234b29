package media

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ivanbelmonte/fincalia-backend/pkg/db/models"
	"github.com/ivanbelmonte/fincalia-backend/pkg/enums"
)

func setupMediaTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	propertyMedia := `
CREATE TABLE IF NOT EXISTS property_media (
  id TEXT PRIMARY KEY,
  property_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  file_name TEXT NOT NULL,
  mime_type TEXT NOT NULL,
  size_bytes INTEGER NOT NULL,
  content BLOB NOT NULL,
  content_hash TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  is_principal INTEGER NOT NULL DEFAULT 0,
  document_type_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(propertyMedia).Error)
	return db
}

func seedImage(t *testing.T, repo *Repository, propertyID uuid.UUID, position int, principal bool, content string) *models.PropertyMedia {
	t.Helper()
	asset := &models.PropertyMedia{
		ID:          uuid.New(),
		PropertyID:  propertyID,
		Kind:        enums.MediaKindImage,
		FileName:    "img.jpg",
		MimeType:    "image/jpeg",
		SizeBytes:   int64(len(content)),
		Content:     []byte(content),
		ContentHash: content,
		Position:    position,
		IsPrincipal: principal,
	}
	_, err := repo.Create(context.Background(), asset)
	require.NoError(t, err)
	return asset
}

func TestRepositoryListOrdering(t *testing.T) {
	db := setupMediaTestDB(t)
	repo := NewRepository(db)
	propertyID := uuid.New()

	seedImage(t, repo, propertyID, 3, false, "c")
	seedImage(t, repo, propertyID, 1, true, "a")
	seedImage(t, repo, propertyID, 2, false, "b")

	rows, err := repo.ListByKind(context.Background(), propertyID, enums.MediaKindImage)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, 2, rows[1].Position)
	assert.Equal(t, 3, rows[2].Position)
}

func TestRepositoryNextPosition(t *testing.T) {
	db := setupMediaTestDB(t)
	repo := NewRepository(db)
	propertyID := uuid.New()

	pos, err := repo.NextPosition(context.Background(), propertyID, enums.MediaKindImage)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	seedImage(t, repo, propertyID, 4, true, "a")
	pos, err = repo.NextPosition(context.Background(), propertyID, enums.MediaKindImage)
	require.NoError(t, err)
	assert.Equal(t, 5, pos)
}

func TestRepositoryImageExistsWithHash(t *testing.T) {
	db := setupMediaTestDB(t)
	repo := NewRepository(db)
	propertyID := uuid.New()
	seedImage(t, repo, propertyID, 1, true, "hash-1")

	exists, err := repo.ImageExistsWithHash(context.Background(), propertyID, "hash-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ImageExistsWithHash(context.Background(), propertyID, "hash-2")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ImageExistsWithHash(context.Background(), uuid.New(), "hash-1")
	require.NoError(t, err)
	assert.False(t, exists, "hash check must be scoped per property")
}

func TestRepositoryDeleteScopedToProperty(t *testing.T) {
	db := setupMediaTestDB(t)
	repo := NewRepository(db)
	propertyID := uuid.New()
	asset := seedImage(t, repo, propertyID, 1, true, "a")

	err := repo.Delete(context.Background(), uuid.New(), asset.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(context.Background(), propertyID, asset.ID))
	err = repo.Delete(context.Background(), propertyID, asset.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositorySetPrincipalClearsOthers(t *testing.T) {
	db := setupMediaTestDB(t)
	repo := NewRepository(db)
	propertyID := uuid.New()
	first := seedImage(t, repo, propertyID, 1, true, "a")
	second := seedImage(t, repo, propertyID, 2, false, "b")

	require.NoError(t, repo.SetPrincipal(context.Background(), propertyID, second.ID))

	principal, err := repo.FindPrincipal(context.Background(), propertyID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, principal.ID)

	old, err := repo.FindByID(context.Background(), propertyID, first.ID)
	require.NoError(t, err)
	assert.False(t, old.IsPrincipal)
}

func TestRepositoryReplaceVideo(t *testing.T) {
	db := setupMediaTestDB(t)
	repo := NewRepository(db)
	propertyID := uuid.New()

	old := &models.PropertyMedia{
		ID: uuid.New(), PropertyID: propertyID, Kind: enums.MediaKindVideo,
		FileName: "old.mp4", MimeType: "video/mp4", SizeBytes: 3, Content: []byte("old"), ContentHash: "old",
	}
	_, err := repo.Create(context.Background(), old)
	require.NoError(t, err)

	replacement := &models.PropertyMedia{
		ID: uuid.New(), PropertyID: propertyID, Kind: enums.MediaKindVideo,
		FileName: "new.mp4", MimeType: "video/mp4", SizeBytes: 3, Content: []byte("new"), ContentHash: "new",
	}
	_, err = repo.ReplaceVideo(context.Background(), propertyID, replacement)
	require.NoError(t, err)

	video, err := repo.FindVideo(context.Background(), propertyID)
	require.NoError(t, err)
	require.NotNil(t, video)
	assert.Equal(t, replacement.ID, video.ID)

	rows, err := repo.ListByKind(context.Background(), propertyID, enums.MediaKindVideo)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRepositoryFirstImage(t *testing.T) {
	db := setupMediaTestDB(t)
	repo := NewRepository(db)
	propertyID := uuid.New()
	seedImage(t, repo, propertyID, 5, false, "e")
	lowest := seedImage(t, repo, propertyID, 2, false, "b")

	first, err := repo.FirstImage(context.Background(), propertyID)
	require.NoError(t, err)
	assert.Equal(t, lowest.ID, first.ID)
}
