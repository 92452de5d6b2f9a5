// Package db implements the relational store access for the ledger on top
// of GORM. Production runs against Postgres; tests substitute an in-memory
// SQLite database through Open.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	e "github.com/gartstein/biztime/internal/ledger/errors"
	"github.com/gartstein/biztime/internal/ledger/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const connectRetries = 5

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewRepository connects to Postgres, retrying with exponential backoff
// while the database comes up, and migrates the schema.
func NewRepository(cfg *Config) (*Repository, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var db *gorm.DB
	connect := func() error {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), gormConfig())
		return err
	}
	if err := backoff.Retry(connect, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), connectRetries)); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

// Open builds a Repository on an already-chosen dialector and migrates the
// schema. Tests use it with an in-memory SQLite dialector.
func Open(dialector gorm.Dialector) (*Repository, error) {
	db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := migrate(db); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func gormConfig() *gorm.Config {
	// TranslateError surfaces duplicate-key and FK violations as typed
	// gorm errors across dialects.
	return &gorm.Config{TranslateError: true}
}

func migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Company{},
		&models.Industry{},
		&models.CompanyIndustry{},
		&models.Invoice{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// translateStoreError maps gorm errors onto the internal taxonomy so the
// service layer can log constraint failures distinctly.
func translateStoreError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", e.ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", e.ErrConstraint, err)
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%w: %v", e.ErrConstraint, err)
	default:
		return err
	}
}

// ListCompanies returns every company, ordered by code.
func (r *Repository) ListCompanies(ctx context.Context) ([]models.Company, error) {
	companies := make([]models.Company, 0)
	result := r.db.WithContext(ctx).Order("code").Find(&companies)
	return companies, result.Error
}

// GetCompany returns one company by code.
func (r *Repository) GetCompany(ctx context.Context, code string) (*models.Company, error) {
	var company models.Company
	result := r.db.WithContext(ctx).First(&company, "code = ?", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.CompanyNotFound(code)
		}
		return nil, result.Error
	}
	return &company, nil
}

func (r *Repository) CreateCompany(ctx context.Context, company *models.Company) error {
	result := r.db.WithContext(ctx).Omit(clause.Associations).Create(company)
	if result.Error != nil {
		return translateStoreError(result.Error)
	}
	return nil
}

// UpdateCompany applies the non-nil fields of the update to the row matching
// the code. The affected-row count is the existence check.
func (r *Repository) UpdateCompany(ctx context.Context, update *models.CompanyUpdate) error {
	result := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("code = ?", update.Code).
		Updates(update)
	if result.Error != nil {
		return translateStoreError(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.CompanyNotFound(update.Code)
	}
	return nil
}

// DeleteCompany removes a company; invoices and industry memberships go with
// it through the FK cascade.
func (r *Repository) DeleteCompany(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).Delete(&models.Company{}, "code = ?", code)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.CompanyNotFound(code)
	}
	return nil
}

// ListIndustries returns every industry, ordered by code.
func (r *Repository) ListIndustries(ctx context.Context) ([]models.Industry, error) {
	industries := make([]models.Industry, 0)
	result := r.db.WithContext(ctx).Order("code").Find(&industries)
	return industries, result.Error
}

// GetIndustry returns one industry by code.
func (r *Repository) GetIndustry(ctx context.Context, code string) (*models.Industry, error) {
	var industry models.Industry
	result := r.db.WithContext(ctx).First(&industry, "code = ?", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.IndustryNotFound(code)
		}
		return nil, result.Error
	}
	return &industry, nil
}

func (r *Repository) CreateIndustry(ctx context.Context, industry *models.Industry) error {
	result := r.db.WithContext(ctx).Omit(clause.Associations).Create(industry)
	if result.Error != nil {
		return translateStoreError(result.Error)
	}
	return nil
}

func (r *Repository) UpdateIndustry(ctx context.Context, update *models.IndustryUpdate) error {
	result := r.db.WithContext(ctx).Model(&models.Industry{}).
		Where("code = ?", update.Code).
		Updates(update)
	if result.Error != nil {
		return translateStoreError(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.IndustryNotFound(update.Code)
	}
	return nil
}

func (r *Repository) DeleteIndustry(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).Delete(&models.Industry{}, "code = ?", code)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.IndustryNotFound(code)
	}
	return nil
}

// IndustryNamesForCompany resolves the industries a company belongs to into
// an ordered list of industry names.
func (r *Repository) IndustryNamesForCompany(ctx context.Context, compCode string) ([]string, error) {
	names := make([]string, 0)
	err := r.db.WithContext(ctx).
		Table("industries AS i").
		Joins("JOIN companies_industries AS ci ON i.code = ci.ind_code").
		Where("ci.comp_code = ?", compCode).
		Order("i.name").
		Pluck("i.name", &names).Error
	return names, err
}

// CompanyCodesForIndustry resolves an industry's membership into an ordered
// list of company codes.
func (r *Repository) CompanyCodesForIndustry(ctx context.Context, indCode string) ([]string, error) {
	codes := make([]string, 0)
	err := r.db.WithContext(ctx).
		Table("companies AS c").
		Joins("JOIN companies_industries AS ci ON c.code = ci.comp_code").
		Where("ci.ind_code = ?", indCode).
		Order("c.code").
		Pluck("c.code", &codes).Error
	return codes, err
}

// AddCompanyToIndustry inserts a membership row after verifying both sides
// exist, industry first. The whole sequence runs in one transaction.
func (r *Repository) AddCompanyToIndustry(ctx context.Context, indCode, compCode string) error {
	return r.WithTransaction(ctx, func(tx *Repository) error {
		if err := tx.industryExists(ctx, indCode); err != nil {
			return err
		}
		if err := tx.companyExists(ctx, compCode); err != nil {
			return err
		}
		link := &models.CompanyIndustry{IndCode: indCode, CompCode: compCode}
		result := tx.db.WithContext(ctx).Omit(clause.Associations).Create(link)
		if result.Error != nil {
			return translateStoreError(result.Error)
		}
		return nil
	})
}

// RemoveCompanyFromIndustry deletes a membership row after verifying both
// sides exist. A zero affected-row count means the company exists but is not
// in the industry.
func (r *Repository) RemoveCompanyFromIndustry(ctx context.Context, indCode, compCode string) error {
	return r.WithTransaction(ctx, func(tx *Repository) error {
		if err := tx.industryExists(ctx, indCode); err != nil {
			return err
		}
		if err := tx.companyExists(ctx, compCode); err != nil {
			return err
		}
		result := tx.db.WithContext(ctx).
			Where("ind_code = ? AND comp_code = ?", indCode, compCode).
			Delete(&models.CompanyIndustry{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return e.AssociationNotFound(compCode, indCode)
		}
		return nil
	})
}

func (r *Repository) industryExists(ctx context.Context, code string) error {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Industry{}).
		Where("code = ?", code).
		Count(&count)
	if result.Error != nil {
		return result.Error
	}
	if count == 0 {
		return e.IndustryNotFound(code)
	}
	return nil
}

func (r *Repository) companyExists(ctx context.Context, code string) error {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("code = ?", code).
		Count(&count)
	if result.Error != nil {
		return result.Error
	}
	if count == 0 {
		return e.CompanyNotFound(code)
	}
	return nil
}

// ListInvoices returns every invoice, ordered by id.
func (r *Repository) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	invoices := make([]models.Invoice, 0)
	result := r.db.WithContext(ctx).Order("id").Find(&invoices)
	return invoices, result.Error
}

// GetInvoice returns one invoice by id.
func (r *Repository) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	var invoice models.Invoice
	result := r.db.WithContext(ctx).First(&invoice, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.InvoiceNotFound(id)
		}
		return nil, result.Error
	}
	return &invoice, nil
}

func (r *Repository) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	result := r.db.WithContext(ctx).Omit(clause.Associations).Create(invoice)
	if result.Error != nil {
		return translateStoreError(result.Error)
	}
	return nil
}

// UpdateInvoice runs the single statement the update mode resolves to. Nil
// pointers in the Both arm write NULL, so a missing required field fails on
// the column constraint exactly as a direct statement would.
func (r *Repository) UpdateInvoice(ctx context.Context, update *models.InvoiceUpdate) error {
	columns := map[string]interface{}{}
	switch update.Mode() {
	case models.InvoiceUpdateAmountOnly:
		columns["amt"] = update.Amt
	case models.InvoiceUpdatePaidOnly:
		columns["paid"] = update.Paid
		columns["paid_date"] = update.PaidDate
	case models.InvoiceUpdateBoth:
		columns["amt"] = update.Amt
		columns["paid"] = update.Paid
		columns["paid_date"] = update.PaidDate
	}

	result := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("id = ?", update.ID).
		Updates(columns)
	if result.Error != nil {
		return translateStoreError(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.InvoiceNotFound(update.ID)
	}
	return nil
}

func (r *Repository) DeleteInvoice(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Invoice{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.InvoiceNotFound(id)
	}
	return nil
}

// InvoicesForCompany returns every invoice billed to the company, ordered by
// id. An empty result is valid and distinct from a missing company.
func (r *Repository) InvoicesForCompany(ctx context.Context, compCode string) ([]models.Invoice, error) {
	invoices := make([]models.Invoice, 0)
	result := r.db.WithContext(ctx).
		Where("comp_code = ?", compCode).
		Order("id").
		Find(&invoices)
	return invoices, result.Error
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	result := r.db.WithContext(ctx).Exec(query, params...)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
