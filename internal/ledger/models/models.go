// Package models defines the core domain models for the business ledger:
// companies, industries, the membership rows tying them together, and the
// invoices billed against companies. The same structs double as the GORM
// row mappings and the JSON wire shapes.
package models

// Company represents a company entity in the ledger.
// Code is a lowercase URL-safe slug assigned at creation and never changes.
type Company struct {
	// Code is the unique slug identifier of the company.
	Code string `gorm:"primaryKey;size:64" json:"code"`
	// Name is the company's display name.
	Name string `gorm:"size:128;not null;uniqueIndex" json:"name"`
	// Description provides details about the company.
	Description string `gorm:"size:3000" json:"description"`
}

// Industry represents an industry companies can belong to.
type Industry struct {
	// Code is the unique slug identifier of the industry.
	Code string `gorm:"primaryKey;size:64" json:"code"`
	// Name is the industry's display name.
	Name string `gorm:"size:128;not null" json:"name"`
}

// CompanyIndustry is a membership row in the companies/industries join
// table. The pair is the primary key, so a membership exists at most once.
type CompanyIndustry struct {
	IndCode  string `gorm:"column:ind_code;primaryKey;size:64" json:"ind_code"`
	CompCode string `gorm:"column:comp_code;primaryKey;size:64" json:"comp_code"`

	Industry Industry `gorm:"foreignKey:IndCode;references:Code;constraint:OnDelete:CASCADE" json:"-"`
	Company  Company  `gorm:"foreignKey:CompCode;references:Code;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName keeps the historical join table name.
func (CompanyIndustry) TableName() string {
	return "companies_industries"
}

// Invoice represents an invoice billed to a company.
// PaidDate is non-nil exactly while Paid is true; the invoice update logic
// maintains that relationship.
type Invoice struct {
	// ID is the auto-assigned invoice number.
	ID int64 `gorm:"primaryKey" json:"id"`
	// CompCode references the billed company.
	CompCode string `gorm:"column:comp_code;size:64;not null" json:"comp_code"`
	// Amt is the invoiced amount, always positive.
	Amt float64 `gorm:"not null;check:amt > 0" json:"amt"`
	// Paid reports whether the invoice has been settled.
	Paid bool `gorm:"not null;default:false" json:"paid"`
	// AddDate is the date the invoice was created. Immutable.
	AddDate Date `gorm:"column:add_date;not null" json:"add_date"`
	// PaidDate is the date the invoice was settled, nil while unpaid.
	PaidDate *Date `gorm:"column:paid_date" json:"paid_date"`

	Company Company `gorm:"foreignKey:CompCode;references:Code;constraint:OnDelete:CASCADE" json:"-"`
}

// CompanyUpdate represents the fields that can be updated for a Company.
// Pointer types are used to allow partial updates; Code is the lookup key
// and is never written back.
type CompanyUpdate struct {
	Code        string  `gorm:"-"`
	Name        *string
	Description *string
}

// IndustryUpdate represents the fields that can be updated for an Industry.
type IndustryUpdate struct {
	Code string `gorm:"-"`
	Name *string
}

// InvoiceUpdateMode names the statement an invoice update resolves to,
// computed once from which optional fields the caller supplied.
type InvoiceUpdateMode int

const (
	// InvoiceUpdateBoth rewrites amt, paid and paid_date together. It is
	// also the arm taken when neither field was supplied.
	InvoiceUpdateBoth InvoiceUpdateMode = iota
	// InvoiceUpdateAmountOnly rewrites amt and leaves the paid state alone.
	InvoiceUpdateAmountOnly
	// InvoiceUpdatePaidOnly rewrites paid and recomputes paid_date.
	InvoiceUpdatePaidOnly
)

// InvoiceUpdate carries a partial invoice update. PaidDate is derived from
// Paid by the service layer, never taken from the caller.
type InvoiceUpdate struct {
	ID       int64
	Amt      *float64
	Paid     *bool
	PaidDate *Date
}

// Mode resolves the field-presence combination into the statement to run.
func (u *InvoiceUpdate) Mode() InvoiceUpdateMode {
	switch {
	case u.Amt != nil && u.Paid == nil:
		return InvoiceUpdateAmountOnly
	case u.Paid != nil && u.Amt == nil:
		return InvoiceUpdatePaidOnly
	default:
		return InvoiceUpdateBoth
	}
}

// CompanyDetail is a company together with the names of the industries it
// belongs to, resolved through the join table at read time.
type CompanyDetail struct {
	Company
	Industries []string `json:"industries"`
}

// IndustryDetail is an industry together with the codes of its member
// companies.
type IndustryDetail struct {
	Industry
	Companies []string `json:"companies"`
}

// CompanyInvoices is a company together with every invoice billed to it and
// the industries it belongs to.
type CompanyInvoices struct {
	Company
	Invoices   []Invoice `json:"invoices"`
	Industries []string  `json:"industries"`
}
