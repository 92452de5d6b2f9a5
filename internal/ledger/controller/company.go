package controller

import (
	"context"
	"errors"
	"fmt"

	e "github.com/gartstein/biztime/internal/ledger/errors"
	"github.com/gartstein/biztime/internal/ledger/events"
	"github.com/gartstein/biztime/internal/ledger/models"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// CompanyService provides methods to manage companies via repository
// operations and event production.
type CompanyService struct {
	repo     Repository
	producer EventProducer
	logger   *zap.Logger
}

// NewCompanyService constructs a CompanyService with a repository, an event
// producer (nil disables events), and a logger.
func NewCompanyService(repo Repository, producer EventProducer, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("company_service"),
	}
}

// ListCompanies returns every company as stored, without derived fields.
func (s *CompanyService) ListCompanies(ctx context.Context) ([]models.Company, error) {
	companies, err := s.repo.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// GetCompany retrieves a company by code together with the names of the
// industries it belongs to.
func (s *CompanyService) GetCompany(ctx context.Context, code string) (*models.CompanyDetail, error) {
	company, err := s.repo.GetCompany(ctx, code)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return s.withIndustries(ctx, company)
}

// CreateCompany normalizes the requested code into a lowercase URL-safe slug
// and inserts the row. Constraint violations propagate as store errors.
func (s *CompanyService) CreateCompany(ctx context.Context, code, name, description string) (*models.CompanyDetail, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", e.ErrInvalidInput)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", e.ErrInvalidInput)
	}

	company := &models.Company{
		Code:        slug.Make(code),
		Name:        name,
		Description: description,
	}
	if err := s.repo.CreateCompany(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	emit(s.producer, events.CompanyCreated, company.Code, company)
	return s.withIndustries(ctx, company)
}

// UpdateCompany rewrites name and description for the row matching the code.
// The code itself is the lookup key and is never changed.
func (s *CompanyService) UpdateCompany(ctx context.Context, update *models.CompanyUpdate) (*models.CompanyDetail, error) {
	if update.Code == "" {
		return nil, fmt.Errorf("%w: code is required", e.ErrInvalidInput)
	}

	if err := s.repo.UpdateCompany(ctx, update); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	company, err := s.repo.GetCompany(ctx, update.Code)
	if err != nil {
		s.logger.Error("Failed to reload company after update",
			zap.Error(err),
			zap.String("company_code", update.Code),
		)
		return nil, err
	}

	emit(s.producer, events.CompanyUpdated, company.Code, company)
	return s.withIndustries(ctx, company)
}

// DeleteCompany removes a company; the store cascades the deletion to its
// invoices and industry memberships.
func (s *CompanyService) DeleteCompany(ctx context.Context, code string) error {
	company, err := s.repo.GetCompany(ctx, code)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get company for deletion: %w", err)
	}

	if err := s.repo.DeleteCompany(ctx, code); err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}

	emit(s.producer, events.CompanyDeleted, company.Code, company)
	return nil
}

func (s *CompanyService) withIndustries(ctx context.Context, company *models.Company) (*models.CompanyDetail, error) {
	industries, err := s.repo.IndustryNamesForCompany(ctx, company.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve industries: %w", err)
	}
	return &models.CompanyDetail{Company: *company, Industries: industries}, nil
}
