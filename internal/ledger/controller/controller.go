// Package controller implements the business logic (service layer) for the
// ledger: input normalization, derived-field assembly, and event production
// on top of the repository.
package controller

import (
	"context"

	"github.com/gartstein/biztime/internal/ledger/db"
	"github.com/gartstein/biztime/internal/ledger/events"
	"github.com/gartstein/biztime/internal/ledger/models"
)

// EventProducer publishes entity lifecycle events after successful
// mutations.
type EventProducer interface {
	Produce(eventType events.EventType, key string, payload interface{})
}

// Repository defines the storage interface the services depend on.
type Repository interface {
	ListCompanies(ctx context.Context) ([]models.Company, error)
	GetCompany(ctx context.Context, code string) (*models.Company, error)
	CreateCompany(ctx context.Context, company *models.Company) error
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate) error
	DeleteCompany(ctx context.Context, code string) error

	ListIndustries(ctx context.Context) ([]models.Industry, error)
	GetIndustry(ctx context.Context, code string) (*models.Industry, error)
	CreateIndustry(ctx context.Context, industry *models.Industry) error
	UpdateIndustry(ctx context.Context, update *models.IndustryUpdate) error
	DeleteIndustry(ctx context.Context, code string) error

	IndustryNamesForCompany(ctx context.Context, compCode string) ([]string, error)
	CompanyCodesForIndustry(ctx context.Context, indCode string) ([]string, error)
	AddCompanyToIndustry(ctx context.Context, indCode, compCode string) error
	RemoveCompanyFromIndustry(ctx context.Context, indCode, compCode string) error

	ListInvoices(ctx context.Context) ([]models.Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*models.Invoice, error)
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	UpdateInvoice(ctx context.Context, update *models.InvoiceUpdate) error
	DeleteInvoice(ctx context.Context, id int64) error
	InvoicesForCompany(ctx context.Context, compCode string) ([]models.Invoice, error)

	WithTransaction(ctx context.Context, fn func(repo *db.Repository) error) error
	Close() error
}

// emit fires an event on the producer without blocking the request path.
// A nil producer disables event production.
func emit(producer EventProducer, eventType events.EventType, key string, payload interface{}) {
	if producer == nil {
		return
	}
	go func() {
		producer.Produce(eventType, key, payload)
	}()
}
