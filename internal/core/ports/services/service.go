package services

import (
	"context"
	"io"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	portsrepo "github.com/fintaxcl/tax_events_app/internal/core/ports/repositories"
	"github.com/fintaxcl/tax_events_app/internal/dto"
)

// IssuerSvcFacade exposes issuer registration and reads.
type IssuerSvcFacade interface {
	CreateIssuer(ctx context.Context, req dto.CreateIssuerRequest, userID, clientIP string) (*domain.Issuer, error)
	ListIssuers(ctx context.Context) ([]domain.Issuer, error)
	GetIssuerByID(ctx context.Context, issuerID string) (*domain.Issuer, error)
}

// EventSvcFacade exposes corporate-event operations.
type EventSvcFacade interface {
	CreateEvent(ctx context.Context, req dto.CreateEventRequest, creatorUserID, clientIP string) (*domain.CorporateEvent, error)
	GetEventByID(ctx context.Context, eventID string) (*domain.CorporateEvent, error)
	ListEvents(ctx context.Context) ([]domain.CorporateEvent, error)
}

// RatingSvcFacade exposes tax-rating maintenance: manual entry, edit with
// the dynamically keyed factor map, deletion and nested reads.
type RatingSvcFacade interface {
	CreateRating(ctx context.Context, req dto.CreateRatingRequest, userID, clientIP string) (*domain.RatingView, error)
	GetRatingByID(ctx context.Context, ratingID string) (*domain.RatingView, error)
	ListRatings(ctx context.Context, filter portsrepo.RatingFilter) ([]domain.RatingView, error)
	UpdateRating(ctx context.Context, ratingID string, req dto.UpdateRatingRequest, userID, clientIP string) (*domain.RatingView, error)
	DeleteRating(ctx context.Context, ratingID, userID, clientIP string) error
	ListConcepts(ctx context.Context) ([]domain.FactorConcept, error)
}

// IngestionSvcFacade runs the all-or-nothing spreadsheet ingestion batch.
type IngestionSvcFacade interface {
	IngestWorkbook(ctx context.Context, r io.Reader, userID, clientIP string) (*dto.UploadSummary, error)
}

// AuditSvcFacade exposes the audit-trail query surface and standalone
// record writes (login events).
type AuditSvcFacade interface {
	ListAuditRecords(ctx context.Context, filter portsrepo.AuditFilter, limit int, nextToken string) ([]domain.AuditRecord, string, error)
	RecordLogin(ctx context.Context, userID, clientIP string) error
}

// UserSvcFacade exposes minimal account management plus credential checks.
type UserSvcFacade interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

// ServiceContainer bundles all service facades for handler registration.
type ServiceContainer struct {
	Issuer    IssuerSvcFacade
	Event     EventSvcFacade
	Rating    RatingSvcFacade
	Ingestion IngestionSvcFacade
	Audit     AuditSvcFacade
	User      UserSvcFacade
}
