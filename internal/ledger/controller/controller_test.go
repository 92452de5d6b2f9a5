package controller

import (
	"context"
	"sync"

	"github.com/gartstein/biztime/internal/ledger/db"
	"github.com/gartstein/biztime/internal/ledger/events"
	"github.com/gartstein/biztime/internal/ledger/models"
)

// MockRepository implements the Repository interface for testing. Only the
// function fields a test sets are exercised; unset ones return zero values.
type MockRepository struct {
	listCompanies func(context.Context) ([]models.Company, error)
	getCompany    func(context.Context, string) (*models.Company, error)
	createCompany func(context.Context, *models.Company) error
	updateCompany func(context.Context, *models.CompanyUpdate) error
	deleteCompany func(context.Context, string) error

	listIndustries func(context.Context) ([]models.Industry, error)
	getIndustry    func(context.Context, string) (*models.Industry, error)
	createIndustry func(context.Context, *models.Industry) error
	updateIndustry func(context.Context, *models.IndustryUpdate) error
	deleteIndustry func(context.Context, string) error

	industryNamesForCompany   func(context.Context, string) ([]string, error)
	companyCodesForIndustry   func(context.Context, string) ([]string, error)
	addCompanyToIndustry      func(context.Context, string, string) error
	removeCompanyFromIndustry func(context.Context, string, string) error

	listInvoices       func(context.Context) ([]models.Invoice, error)
	getInvoice         func(context.Context, int64) (*models.Invoice, error)
	createInvoice      func(context.Context, *models.Invoice) error
	updateInvoice      func(context.Context, *models.InvoiceUpdate) error
	deleteInvoice      func(context.Context, int64) error
	invoicesForCompany func(context.Context, string) ([]models.Invoice, error)
}

func (m *MockRepository) ListCompanies(ctx context.Context) ([]models.Company, error) {
	if m.listCompanies == nil {
		return nil, nil
	}
	return m.listCompanies(ctx)
}

func (m *MockRepository) GetCompany(ctx context.Context, code string) (*models.Company, error) {
	if m.getCompany == nil {
		return &models.Company{Code: code}, nil
	}
	return m.getCompany(ctx, code)
}

func (m *MockRepository) CreateCompany(ctx context.Context, c *models.Company) error {
	if m.createCompany == nil {
		return nil
	}
	return m.createCompany(ctx, c)
}

func (m *MockRepository) UpdateCompany(ctx context.Context, u *models.CompanyUpdate) error {
	if m.updateCompany == nil {
		return nil
	}
	return m.updateCompany(ctx, u)
}

func (m *MockRepository) DeleteCompany(ctx context.Context, code string) error {
	if m.deleteCompany == nil {
		return nil
	}
	return m.deleteCompany(ctx, code)
}

func (m *MockRepository) ListIndustries(ctx context.Context) ([]models.Industry, error) {
	if m.listIndustries == nil {
		return nil, nil
	}
	return m.listIndustries(ctx)
}

func (m *MockRepository) GetIndustry(ctx context.Context, code string) (*models.Industry, error) {
	if m.getIndustry == nil {
		return &models.Industry{Code: code}, nil
	}
	return m.getIndustry(ctx, code)
}

func (m *MockRepository) CreateIndustry(ctx context.Context, i *models.Industry) error {
	if m.createIndustry == nil {
		return nil
	}
	return m.createIndustry(ctx, i)
}

func (m *MockRepository) UpdateIndustry(ctx context.Context, u *models.IndustryUpdate) error {
	if m.updateIndustry == nil {
		return nil
	}
	return m.updateIndustry(ctx, u)
}

func (m *MockRepository) DeleteIndustry(ctx context.Context, code string) error {
	if m.deleteIndustry == nil {
		return nil
	}
	return m.deleteIndustry(ctx, code)
}

func (m *MockRepository) IndustryNamesForCompany(ctx context.Context, code string) ([]string, error) {
	if m.industryNamesForCompany == nil {
		return []string{}, nil
	}
	return m.industryNamesForCompany(ctx, code)
}

func (m *MockRepository) CompanyCodesForIndustry(ctx context.Context, code string) ([]string, error) {
	if m.companyCodesForIndustry == nil {
		return []string{}, nil
	}
	return m.companyCodesForIndustry(ctx, code)
}

func (m *MockRepository) AddCompanyToIndustry(ctx context.Context, indCode, compCode string) error {
	if m.addCompanyToIndustry == nil {
		return nil
	}
	return m.addCompanyToIndustry(ctx, indCode, compCode)
}

func (m *MockRepository) RemoveCompanyFromIndustry(ctx context.Context, indCode, compCode string) error {
	if m.removeCompanyFromIndustry == nil {
		return nil
	}
	return m.removeCompanyFromIndustry(ctx, indCode, compCode)
}

func (m *MockRepository) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	if m.listInvoices == nil {
		return nil, nil
	}
	return m.listInvoices(ctx)
}

func (m *MockRepository) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	if m.getInvoice == nil {
		return &models.Invoice{ID: id}, nil
	}
	return m.getInvoice(ctx, id)
}

func (m *MockRepository) CreateInvoice(ctx context.Context, i *models.Invoice) error {
	if m.createInvoice == nil {
		return nil
	}
	return m.createInvoice(ctx, i)
}

func (m *MockRepository) UpdateInvoice(ctx context.Context, u *models.InvoiceUpdate) error {
	if m.updateInvoice == nil {
		return nil
	}
	return m.updateInvoice(ctx, u)
}

func (m *MockRepository) DeleteInvoice(ctx context.Context, id int64) error {
	if m.deleteInvoice == nil {
		return nil
	}
	return m.deleteInvoice(ctx, id)
}

func (m *MockRepository) InvoicesForCompany(ctx context.Context, code string) ([]models.Invoice, error) {
	if m.invoicesForCompany == nil {
		return []models.Invoice{}, nil
	}
	return m.invoicesForCompany(ctx, code)
}

func (m *MockRepository) WithTransaction(_ context.Context, _ func(*db.Repository) error) error {
	return nil
}

func (m *MockRepository) Close() error {
	return nil
}

// producedEvent captures one Produce call.
type producedEvent struct {
	EventType events.EventType
	Key       string
	Payload   interface{}
}

// MockProducer is a test double for the Kafka producer.
type MockProducer struct {
	mu             sync.Mutex
	producedEvents []producedEvent
	wg             *sync.WaitGroup
}

// Produce records the event and signals the wait group.
func (m *MockProducer) Produce(eventType events.EventType, key string, payload interface{}) {
	m.mu.Lock()
	m.producedEvents = append(m.producedEvents, producedEvent{eventType, key, payload})
	m.mu.Unlock()
	if m.wg != nil {
		m.wg.Done()
	}
}

func (m *MockProducer) Events() []producedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]producedEvent, len(m.producedEvents))
	copy(out, m.producedEvents)
	return out
}
