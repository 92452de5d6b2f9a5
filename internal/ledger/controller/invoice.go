package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	e "github.com/gartstein/biztime/internal/ledger/errors"
	"github.com/gartstein/biztime/internal/ledger/events"
	"github.com/gartstein/biztime/internal/ledger/models"
	"go.uber.org/zap"
)

// InvoiceService provides methods to manage invoices, including the
// paid/unpaid state machine driving paid_date.
type InvoiceService struct {
	repo     Repository
	producer EventProducer
	logger   *zap.Logger
}

// NewInvoiceService constructs an InvoiceService.
func NewInvoiceService(repo Repository, producer EventProducer, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("invoice_service"),
	}
}

// ListInvoices returns every invoice as stored.
func (s *InvoiceService) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	invoices, err := s.repo.ListInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

// GetInvoice retrieves one invoice by id.
func (s *InvoiceService) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	invoice, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

// CreateInvoice inserts a new unpaid invoice dated today. A comp_code that
// references no company fails on the FK constraint and propagates as a
// store error.
func (s *InvoiceService) CreateInvoice(ctx context.Context, compCode string, amt *float64) (*models.Invoice, error) {
	if compCode == "" {
		return nil, fmt.Errorf("%w: comp_code is required", e.ErrInvalidInput)
	}
	if amt == nil {
		return nil, fmt.Errorf("%w: amt is required", e.ErrInvalidInput)
	}
	if *amt <= 0 {
		return nil, fmt.Errorf("%w: amt must be positive", e.ErrInvalidInput)
	}

	invoice := &models.Invoice{
		CompCode: compCode,
		Amt:      *amt,
		Paid:     false,
		AddDate:  models.Today(),
	}
	if err := s.repo.CreateInvoice(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	emit(s.producer, events.InvoiceCreated, strconv.FormatInt(invoice.ID, 10), invoice)
	return invoice, nil
}

// UpdateInvoice applies a partial update. Which statement runs is decided
// once from field presence; whenever paid is supplied, paid_date is set to
// today on true and cleared on false.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, update *models.InvoiceUpdate) (*models.Invoice, error) {
	if update.Paid != nil && *update.Paid {
		today := models.Today()
		update.PaidDate = &today
	} else {
		update.PaidDate = nil
	}

	if err := s.repo.UpdateInvoice(ctx, update); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	invoice, err := s.repo.GetInvoice(ctx, update.ID)
	if err != nil {
		s.logger.Error("Failed to reload invoice after update",
			zap.Error(err),
			zap.Int64("invoice_id", update.ID),
		)
		return nil, err
	}

	emit(s.producer, events.InvoiceUpdated, strconv.FormatInt(invoice.ID, 10), invoice)
	return invoice, nil
}

// DeleteInvoice removes one invoice by id.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id int64) error {
	invoice, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get invoice for deletion: %w", err)
	}

	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	emit(s.producer, events.InvoiceDeleted, strconv.FormatInt(invoice.ID, 10), invoice)
	return nil
}

// CompanyInvoices returns a company with all of its invoices and the names
// of its industries. The company must exist; having no invoices is a valid
// result.
func (s *InvoiceService) CompanyInvoices(ctx context.Context, code string) (*models.CompanyInvoices, error) {
	company, err := s.repo.GetCompany(ctx, code)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	invoices, err := s.repo.InvoicesForCompany(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list company invoices: %w", err)
	}

	industries, err := s.repo.IndustryNamesForCompany(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve industries: %w", err)
	}

	return &models.CompanyInvoices{
		Company:    *company,
		Invoices:   invoices,
		Industries: industries,
	}, nil
}
