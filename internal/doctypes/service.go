package doctypes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ivanbelmonte/fincalia-backend/pkg/db/models"
	pkgerrors "github.com/ivanbelmonte/fincalia-backend/pkg/errors"
)

type documentTypeRepository interface {
	List(ctx context.Context) ([]models.DocumentType, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.DocumentType, error)
	FindBySlug(ctx context.Context, slug string) (*models.DocumentType, error)
}

// Service exposes the document-type catalog consumed by the media wizard.
type Service interface {
	List(ctx context.Context) ([]models.DocumentType, error)
	Get(ctx context.Context, id uuid.UUID) (*models.DocumentType, error)
	GetBySlug(ctx context.Context, slug string) (*models.DocumentType, error)
}

type service struct {
	repo documentTypeRepository
}

// NewService constructs the document-type catalog service.
func NewService(repo documentTypeRepository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document type repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.DocumentType, error) {
	types, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list document types")
	}
	return types, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.DocumentType, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document type identity missing")
	}
	docType, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document type not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch document type")
	}
	return docType, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.DocumentType, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	docType, err := s.repo.FindBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document type not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch document type")
	}
	return docType, nil
}
