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

// IndustryService provides methods to manage industries and their company
// memberships.
type IndustryService struct {
	repo     Repository
	producer EventProducer
	logger   *zap.Logger
}

// NewIndustryService constructs an IndustryService.
func NewIndustryService(repo Repository, producer EventProducer, logger *zap.Logger) *IndustryService {
	return &IndustryService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("industry_service"),
	}
}

// ListIndustries returns every industry, each with the codes of its member
// companies.
func (s *IndustryService) ListIndustries(ctx context.Context) ([]models.IndustryDetail, error) {
	industries, err := s.repo.ListIndustries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list industries: %w", err)
	}

	details := make([]models.IndustryDetail, 0, len(industries))
	for _, industry := range industries {
		detail, err := s.withCompanies(ctx, &industry)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

// GetIndustry retrieves an industry by code with its member company codes.
func (s *IndustryService) GetIndustry(ctx context.Context, code string) (*models.IndustryDetail, error) {
	industry, err := s.repo.GetIndustry(ctx, code)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get industry: %w", err)
	}
	return s.withCompanies(ctx, industry)
}

// CreateIndustry slugs the requested code and inserts the row.
func (s *IndustryService) CreateIndustry(ctx context.Context, code, name string) (*models.IndustryDetail, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", e.ErrInvalidInput)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", e.ErrInvalidInput)
	}

	industry := &models.Industry{Code: slug.Make(code), Name: name}
	if err := s.repo.CreateIndustry(ctx, industry); err != nil {
		return nil, fmt.Errorf("failed to create industry: %w", err)
	}

	emit(s.producer, events.IndustryCreated, industry.Code, industry)
	return s.withCompanies(ctx, industry)
}

// UpdateIndustry rewrites the name of the row matching the code.
func (s *IndustryService) UpdateIndustry(ctx context.Context, update *models.IndustryUpdate) (*models.IndustryDetail, error) {
	if update.Code == "" {
		return nil, fmt.Errorf("%w: code is required", e.ErrInvalidInput)
	}

	if err := s.repo.UpdateIndustry(ctx, update); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update industry: %w", err)
	}

	industry, err := s.repo.GetIndustry(ctx, update.Code)
	if err != nil {
		s.logger.Error("Failed to reload industry after update",
			zap.Error(err),
			zap.String("industry_code", update.Code),
		)
		return nil, err
	}

	emit(s.producer, events.IndustryUpdated, industry.Code, industry)
	return s.withCompanies(ctx, industry)
}

// DeleteIndustry removes an industry and, through the cascade, its
// membership rows.
func (s *IndustryService) DeleteIndustry(ctx context.Context, code string) error {
	industry, err := s.repo.GetIndustry(ctx, code)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get industry for deletion: %w", err)
	}

	if err := s.repo.DeleteIndustry(ctx, code); err != nil {
		return fmt.Errorf("failed to delete industry: %w", err)
	}

	emit(s.producer, events.IndustryDeleted, industry.Code, industry)
	return nil
}

// AddCompany puts a company into an industry. Both must exist, checked
// industry first; re-adding an existing pair fails on the join table's
// primary key.
func (s *IndustryService) AddCompany(ctx context.Context, indCode, compCode string) (*models.IndustryDetail, error) {
	if err := s.repo.AddCompanyToIndustry(ctx, indCode, compCode); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to add company to industry: %w", err)
	}

	emit(s.producer, events.IndustryCompanyAdded, indCode, map[string]string{
		"ind_code":  indCode,
		"comp_code": compCode,
	})
	return s.GetIndustry(ctx, indCode)
}

// RemoveCompany takes a company out of an industry. A missing membership row
// is reported distinctly from a missing company.
func (s *IndustryService) RemoveCompany(ctx context.Context, indCode, compCode string) error {
	if err := s.repo.RemoveCompanyFromIndustry(ctx, indCode, compCode); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to remove company from industry: %w", err)
	}

	emit(s.producer, events.IndustryCompanyRemoved, indCode, map[string]string{
		"ind_code":  indCode,
		"comp_code": compCode,
	})
	return nil
}

func (s *IndustryService) withCompanies(ctx context.Context, industry *models.Industry) (*models.IndustryDetail, error) {
	companies, err := s.repo.CompanyCodesForIndustry(ctx, industry.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve companies: %w", err)
	}
	return &models.IndustryDetail{Industry: *industry, Companies: companies}, nil
}
