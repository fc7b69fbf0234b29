package leads

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ivanbelmonte/fincalia-backend/internal/properties"
	"github.com/ivanbelmonte/fincalia-backend/pkg/db/models"
	"github.com/ivanbelmonte/fincalia-backend/pkg/enums"
	pkgerrors "github.com/ivanbelmonte/fincalia-backend/pkg/errors"
	"github.com/ivanbelmonte/fincalia-backend/pkg/logger"
)

const (
	leadThrottleWindow  = 10 * time.Minute
	maxLeadsPerWindow   = 5
	maxLeadMessageBytes = 4096
)

type leadRepository interface {
	Create(ctx context.Context, lead *models.Lead) (*models.Lead, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Lead, error)
}

type throttleClient interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	LeadThrottleKey(source string) string
}

// SubmitInput models one buyer inquiry from the public site.
type SubmitInput struct {
	PropertyID uuid.UUID
	Name       string
	Email      string
	Phone      string
	Message    string
	Source     string
}

// Service captures and lists buyer inquiries.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.Lead, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Lead, error)
}

type service struct {
	repo       leadRepository
	properties properties.Service
	throttle   throttleClient
	logg       *logger.Logger
}

// NewService constructs the lead capture service. The throttle client may be
// nil to disable per-source rate limiting.
func NewService(repo leadRepository, propertySvc properties.Service, throttle throttleClient, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lead repository required")
	}
	if propertySvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger required")
	}
	return &service{
		repo:       repo,
		properties: propertySvc,
		throttle:   throttle,
		logg:       logg,
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Lead, error) {
	if input.PropertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property identity missing")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	email := strings.TrimSpace(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(input.Message) > maxLeadMessageBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message too long")
	}

	property, err := s.properties.Get(ctx, input.PropertyID)
	if err != nil {
		return nil, err
	}
	if property.Status != enums.PropertyStatusPublished {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property is not published")
	}

	if s.throttle != nil && input.Source != "" {
		count, err := s.throttle.IncrWithTTL(ctx, s.throttle.LeadThrottleKey(input.Source), leadThrottleWindow)
		if err != nil {
			// Throttle backend trouble must not block lead capture.
			s.logg.Warn(ctx, "lead throttle unavailable")
		} else if count > maxLeadsPerWindow {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "too many inquiries, try again later")
		}
	}

	lead := &models.Lead{
		ID:         uuid.New(),
		PropertyID: input.PropertyID,
		Name:       name,
		Email:      email,
		Phone:      strings.TrimSpace(input.Phone),
		Message:    strings.TrimSpace(input.Message),
		Source:     strings.TrimSpace(input.Source),
	}
	created, err := s.repo.Create(ctx, lead)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist lead")
	}
	return created, nil
}

func (s *service) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Lead, error) {
	if propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property identity missing")
	}
	rows, err := s.repo.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list leads")
	}
	return rows, nil
}
