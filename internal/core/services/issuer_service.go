package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	portsrepo "github.com/fintaxcl/tax_events_app/internal/core/ports/repositories"
	portssvc "github.com/fintaxcl/tax_events_app/internal/core/ports/services"
	"github.com/fintaxcl/tax_events_app/internal/dto"
	"github.com/google/uuid"
)

type issuerService struct {
	BaseService
	issuerRepo portsrepo.IssuerRepository
}

// NewIssuerService creates the issuer registration/read facade.
func NewIssuerService(issuerRepo portsrepo.IssuerRepository) portssvc.IssuerSvcFacade {
	return &issuerService{issuerRepo: issuerRepo}
}

var _ portssvc.IssuerSvcFacade = (*issuerService)(nil)

func (s *issuerService) CreateIssuer(ctx context.Context, req dto.CreateIssuerRequest, userID, clientIP string) (*domain.Issuer, error) {
	now := time.Now()

	companyType := domain.CompanyType(req.CompanyType)
	if companyType == "" {
		companyType = domain.CompanyOpen
	}

	issuer := domain.Issuer{
		IssuerID:    uuid.NewString(),
		RUT:         req.RUT,
		LegalName:   req.LegalName,
		Ticker:      req.Ticker,
		CompanyType: companyType,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	audit := NewCreateRecord(issuer, userID, clientIP)
	if err := s.issuerRepo.SaveIssuer(ctx, issuer, audit); err != nil {
		s.LogError(ctx, err, "Failed to create issuer", "ticker", req.Ticker)
		return nil, fmt.Errorf("failed to create issuer: %w", err)
	}

	s.LogInfo(ctx, "Issuer created", "issuer_id", issuer.IssuerID, "ticker", issuer.Ticker)
	return &issuer, nil
}

func (s *issuerService) ListIssuers(ctx context.Context) ([]domain.Issuer, error) {
	issuers, err := s.issuerRepo.ListIssuers(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list issuers")
		return nil, fmt.Errorf("failed to list issuers: %w", err)
	}
	return issuers, nil
}

func (s *issuerService) GetIssuerByID(ctx context.Context, issuerID string) (*domain.Issuer, error) {
	issuer, err := s.issuerRepo.FindIssuerByID(ctx, issuerID)
	if err != nil {
		return nil, err
	}
	return issuer, nil
}
