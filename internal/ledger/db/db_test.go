package db

import (
	"context"
	"fmt"
	"strings"
	"testing"

	e "github.com/gartstein/biztime/internal/ledger/errors"
	"github.com/gartstein/biztime/internal/ledger/models"
	"github.com/gartstein/biztime/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

// SetupTestDB initializes an in-memory SQLite database for testing. The DSN
// is unique per test and keeps foreign keys enforced on every connection.
func SetupTestDB(t *testing.T) *Repository {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	repo, err := Open(sqlite.Open(dsn))
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

func seedCompany(t *testing.T, repo *Repository, code, name string) {
	t.Helper()
	err := repo.CreateCompany(context.Background(), &models.Company{Code: code, Name: name})
	require.NoError(t, err, "seeding company should succeed")
}

func seedIndustry(t *testing.T, repo *Repository, code, name string) {
	t.Helper()
	err := repo.CreateIndustry(context.Background(), &models.Industry{Code: code, Name: name})
	require.NoError(t, err, "seeding industry should succeed")
}

func TestCreateCompany(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	company := &models.Company{Code: "acme", Name: "Acme Corp", Description: "Makers of everything"}
	err := repo.CreateCompany(ctx, company)
	assert.NoError(t, err, "CreateCompany should not return an error")

	retrieved, err := repo.GetCompany(ctx, "acme")
	assert.NoError(t, err, "GetCompany should retrieve the created company")
	assert.Equal(t, company.Name, retrieved.Name, "Company name should match")
	assert.Equal(t, company.Description, retrieved.Description)
}

func TestCreateCompanyDuplicateCode(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	seedCompany(t, repo, "acme", "Acme Corp")
	err := repo.CreateCompany(ctx, &models.Company{Code: "acme", Name: "Other Name"})
	assert.ErrorIs(t, err, e.ErrDuplicate, "duplicate code should map to ErrDuplicate")
}

func TestGetCompanyNotFound(t *testing.T) {
	repo := SetupTestDB(t)

	_, err := repo.GetCompany(context.Background(), "ghost")
	assert.ErrorIs(t, err, e.ErrNotFound, "GetCompany should return a not-found error")
	assert.EqualError(t, err, "Company with code 'ghost' not found")
}

func TestUpdateCompany(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	seedCompany(t, repo, "acme", "Old Name")

	update := &models.CompanyUpdate{
		Code:        "acme",
		Name:        utils.Ptr("New Name"),
		Description: utils.Ptr("Updated"),
	}
	err := repo.UpdateCompany(ctx, update)
	assert.NoError(t, err, "UpdateCompany should not return an error")

	updated, err := repo.GetCompany(ctx, "acme")
	assert.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name, "Company name should be updated")
	assert.Equal(t, "acme", updated.Code, "Company code must not change")
}

func TestUpdateCompanyNotFound(t *testing.T) {
	repo := SetupTestDB(t)

	update := &models.CompanyUpdate{Code: "ghost", Name: utils.Ptr("Nobody")}
	err := repo.UpdateCompany(context.Background(), update)
	assert.ErrorIs(t, err, e.ErrNotFound, "UpdateCompany should return a not-found error")
}

func TestDeleteCompanyCascades(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	seedCompany(t, repo, "acme", "Acme Corp")
	seedIndustry(t, repo, "tech", "Technology")
	require.NoError(t, repo.AddCompanyToIndustry(ctx, "tech", "acme"))

	for i := 0; i < 2; i++ {
		invoice := &models.Invoice{CompCode: "acme", Amt: 100, AddDate: models.Today()}
		require.NoError(t, repo.CreateInvoice(ctx, invoice))
	}

	require.NoError(t, repo.DeleteCompany(ctx, "acme"))

	_, err := repo.GetCompany(ctx, "acme")
	assert.ErrorIs(t, err, e.ErrNotFound, "deleted company should not be found")

	invoices, err := repo.ListInvoices(ctx)
	assert.NoError(t, err)
	assert.Empty(t, invoices, "invoices should be removed with their company")

	codes, err := repo.CompanyCodesForIndustry(ctx, "tech")
	assert.NoError(t, err)
	assert.Empty(t, codes, "membership rows should be removed with their company")
}

func TestDeleteCompanyNotFound(t *testing.T) {
	repo := SetupTestDB(t)

	err := repo.DeleteCompany(context.Background(), "ghost")
	assert.ErrorIs(t, err, e.ErrNotFound, "DeleteCompany should return a not-found error")
}

func TestIndustryLifecycle(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	seedIndustry(t, repo, "tech", "Technology")

	industry, err := repo.GetIndustry(ctx, "tech")
	assert.NoError(t, err)
	assert.Equal(t, "Technology", industry.Name)

	err = repo.UpdateIndustry(ctx, &models.IndustryUpdate{Code: "tech", Name: utils.Ptr("Tech")})
	assert.NoError(t, err)

	industry, err = repo.GetIndustry(ctx, "tech")
	assert.NoError(t, err)
	assert.Equal(t, "Tech", industry.Name)

	err = repo.DeleteIndustry(ctx, "tech")
	assert.NoError(t, err)

	_, err = repo.GetIndustry(ctx, "tech")
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestAddCompanyToIndustry(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	seedCompany(t, repo, "acme", "Acme Corp")
	seedIndustry(t, repo, "tech", "Technology")

	err := repo.AddCompanyToIndustry(ctx, "tech", "acme")
	assert.NoError(t, err, "AddCompanyToIndustry should succeed")

	codes, err := repo.CompanyCodesForIndustry(ctx, "tech")
	assert.NoError(t, err)
	assert.Equal(t, []string{"acme"}, codes)

	names, err := repo.IndustryNamesForCompany(ctx, "acme")
	assert.NoError(t, err)
	assert.Equal(t, []string{"Technology"}, names)
}

func TestAddCompanyToIndustryDuplicate(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	seedCompany(t, repo, "acme", "Acme Corp")
	seedIndustry(t, repo, "tech", "Technology")
	require.NoError(t, repo.AddCompanyToIndustry(ctx, "tech", "acme"))

	err := repo.AddCompanyToIndustry(ctx, "tech", "acme")
	assert.ErrorIs(t, err, e.ErrDuplicate, "re-adding the pair should fail on the primary key")
}

func TestAddCompanyToIndustryMissingSides(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	seedCompany(t, repo, "acme", "Acme Corp")

	err := repo.AddCompanyToIndustry(ctx, "ghost", "acme")
	assert.EqualError(t, err, "Industry with code 'ghost' not found")

	seedIndustry(t, repo, "tech", "Technology")
	err = repo.AddCompanyToIndustry(ctx, "tech", "ghost")
	assert.EqualError(t, err, "Company with code 'ghost' not found")
}

func TestRemoveCompanyFromIndustry(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	seedCompany(t, repo, "acme", "Acme Corp")
	seedIndustry(t, repo, "tech", "Technology")
	require.NoError(t, repo.AddCompanyToIndustry(ctx, "tech", "acme"))

	err := repo.RemoveCompanyFromIndustry(ctx, "tech", "acme")
	assert.NoError(t, err, "RemoveCompanyFromIndustry should succeed")

	codes, err := repo.CompanyCodesForIndustry(ctx, "tech")
	assert.NoError(t, err)
	assert.Empty(t, codes)

	// Both sides still exist, only the membership row is gone.
	err = repo.RemoveCompanyFromIndustry(ctx, "tech", "acme")
	assert.ErrorIs(t, err, e.ErrNotFound)
	assert.EqualError(t, err, "Company with code 'acme' not found in industry with code 'tech'")
}

func TestCreateInvoiceForeignKey(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	invoice := &models.Invoice{CompCode: "ghost", Amt: 100, AddDate: models.Today()}
	err := repo.CreateInvoice(ctx, invoice)
	assert.ErrorIs(t, err, e.ErrConstraint, "missing company should violate the FK")
}

func TestUpdateInvoiceAmountOnly(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	seedCompany(t, repo, "acme", "Acme Corp")
	paidDate := models.Today()
	invoice := &models.Invoice{CompCode: "acme", Amt: 100, Paid: true, AddDate: models.Today(), PaidDate: &paidDate}
	require.NoError(t, repo.CreateInvoice(ctx, invoice))

	update := &models.InvoiceUpdate{ID: invoice.ID, Amt: utils.Ptr(250.0)}
	require.Equal(t, models.InvoiceUpdateAmountOnly, update.Mode())
	require.NoError(t, repo.UpdateInvoice(ctx, update))

	updated, err := repo.GetInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, updated.Amt)
	assert.True(t, updated.Paid, "paid must be untouched by an amount-only update")
	require.NotNil(t, updated.PaidDate, "paid_date must be untouched by an amount-only update")
	assert.True(t, updated.PaidDate.Equal(paidDate))
}

func TestUpdateInvoicePaidOnly(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	seedCompany(t, repo, "acme", "Acme Corp")
	invoice := &models.Invoice{CompCode: "acme", Amt: 100, AddDate: models.Today()}
	require.NoError(t, repo.CreateInvoice(ctx, invoice))

	today := models.Today()
	update := &models.InvoiceUpdate{ID: invoice.ID, Paid: utils.Ptr(true), PaidDate: &today}
	require.Equal(t, models.InvoiceUpdatePaidOnly, update.Mode())
	require.NoError(t, repo.UpdateInvoice(ctx, update))

	updated, err := repo.GetInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.True(t, updated.Paid)
	assert.Equal(t, 100.0, updated.Amt, "amt must be untouched by a paid-only update")
	require.NotNil(t, updated.PaidDate)
	assert.True(t, updated.PaidDate.Equal(today))

	// Flipping back to unpaid clears the date.
	update = &models.InvoiceUpdate{ID: invoice.ID, Paid: utils.Ptr(false)}
	require.NoError(t, repo.UpdateInvoice(ctx, update))

	updated, err = repo.GetInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.False(t, updated.Paid)
	assert.Nil(t, updated.PaidDate)
}

func TestUpdateInvoiceBoth(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	seedCompany(t, repo, "acme", "Acme Corp")
	invoice := &models.Invoice{CompCode: "acme", Amt: 100, AddDate: models.Today()}
	require.NoError(t, repo.CreateInvoice(ctx, invoice))

	today := models.Today()
	update := &models.InvoiceUpdate{
		ID:       invoice.ID,
		Amt:      utils.Ptr(300.0),
		Paid:     utils.Ptr(true),
		PaidDate: &today,
	}
	require.Equal(t, models.InvoiceUpdateBoth, update.Mode())
	require.NoError(t, repo.UpdateInvoice(ctx, update))

	updated, err := repo.GetInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, updated.Amt)
	assert.True(t, updated.Paid)
	require.NotNil(t, updated.PaidDate)
}

func TestUpdateInvoiceNotFound(t *testing.T) {
	repo := SetupTestDB(t)

	update := &models.InvoiceUpdate{ID: 999, Amt: utils.Ptr(10.0)}
	err := repo.UpdateInvoice(context.Background(), update)
	assert.ErrorIs(t, err, e.ErrNotFound)
	assert.EqualError(t, err, "Invoice with id '999' not found")
}

func TestDeleteInvoice(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	seedCompany(t, repo, "acme", "Acme Corp")
	invoice := &models.Invoice{CompCode: "acme", Amt: 100, AddDate: models.Today()}
	require.NoError(t, repo.CreateInvoice(ctx, invoice))

	assert.NoError(t, repo.DeleteInvoice(ctx, invoice.ID))

	_, err := repo.GetInvoice(ctx, invoice.ID)
	assert.ErrorIs(t, err, e.ErrNotFound)

	err = repo.DeleteInvoice(ctx, invoice.ID)
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestInvoicesForCompanyEmpty(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	seedCompany(t, repo, "acme", "Acme Corp")

	invoices, err := repo.InvoicesForCompany(ctx, "acme")
	assert.NoError(t, err)
	assert.NotNil(t, invoices, "no invoices must be an empty list, not nil")
	assert.Empty(t, invoices)
}

func TestWithTransaction(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	err := repo.WithTransaction(ctx, func(txRepo *Repository) error {
		return txRepo.CreateCompany(ctx, &models.Company{Code: "tx", Name: "Transactional Co"})
	})
	assert.NoError(t, err, "WithTransaction should execute successfully")

	company, err := repo.GetCompany(ctx, "tx")
	assert.NoError(t, err)
	assert.Equal(t, "Transactional Co", company.Name)
}
