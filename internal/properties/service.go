package properties

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ivanbelmonte/fincalia-backend/pkg/db"
	"github.com/ivanbelmonte/fincalia-backend/pkg/db/models"
	"github.com/ivanbelmonte/fincalia-backend/pkg/enums"
	pkgerrors "github.com/ivanbelmonte/fincalia-backend/pkg/errors"
	"github.com/ivanbelmonte/fincalia-backend/pkg/pagination"
)

type propertyRepository interface {
	Create(ctx context.Context, property *models.Property) (*models.Property, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListPage(ctx context.Context, status enums.PropertyStatus, limit int, cursor *pagination.Cursor) ([]models.Property, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PropertyStatus) error
}

// CreateInput models the payload for a new listing.
type CreateInput struct {
	Reference   string
	Title       string
	Description string
	City        string
	Province    string
	PriceCents  int64
}

// ListInput filters and paginates the listing index.
type ListInput struct {
	Status enums.PropertyStatus
	Page   pagination.Params
}

// ListOutput is one page of listings plus the cursor for the next one.
type ListOutput struct {
	Items      []models.Property `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// Service exposes property listing management.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Property, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Property, error)
	List(ctx context.Context, input ListInput) (*ListOutput, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PropertyStatus) error
}

type service struct {
	repo propertyRepository
}

// NewService constructs a property service.
func NewService(repo propertyRepository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Property, error) {
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference is required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_cents must not be negative")
	}

	property := &models.Property{
		ID:          uuid.New(),
		Reference:   reference,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		City:        strings.TrimSpace(input.City),
		Province:    strings.TrimSpace(input.Province),
		PriceCents:  input.PriceCents,
		Status:      enums.PropertyStatusDraft,
	}
	created, err := s.repo.Create(ctx, property)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_properties_reference") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "reference already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist property")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property identity missing")
	}
	property, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch property")
	}
	return property, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	if input.Status != "" && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid property status")
	}
	cursor, err := pagination.ParseCursor(input.Page.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Page.Limit)
	rows, err := s.repo.ListPage(ctx, input.Status, pagination.LimitWithBuffer(input.Page.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list properties")
	}

	out := &ListOutput{Items: rows}
	if len(rows) > limit {
		out.Items = rows[:limit]
		last := out.Items[limit-1]
		out.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return out, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PropertyStatus) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "property identity missing")
	}
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid property status")
	}
	err := s.repo.UpdateStatus(ctx, id, status)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update property status")
	}
	return nil
}
