// Package errors defines the internal error taxonomy for the ledger.
// NotFound errors carry the exact user-facing message; everything else is a
// store-level failure distinguished for logs but collapsed at the HTTP
// boundary.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate key")
	ErrConstraint   = errors.New("constraint violation")
	ErrInvalidInput = errors.New("invalid input")
)

// NotFoundError is a missing-resource failure with the message returned to
// the client verbatim. It matches ErrNotFound under errors.Is.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// CompanyNotFound reports a missing company code.
func CompanyNotFound(code string) error {
	return &NotFoundError{Message: fmt.Sprintf("Company with code '%s' not found", code)}
}

// IndustryNotFound reports a missing industry code.
func IndustryNotFound(code string) error {
	return &NotFoundError{Message: fmt.Sprintf("Industry with code '%s' not found", code)}
}

// InvoiceNotFound reports a missing invoice id.
func InvoiceNotFound(id int64) error {
	return &NotFoundError{Message: fmt.Sprintf("Invoice with id '%d' not found", id)}
}

// AssociationNotFound reports a company that exists but does not belong to
// the given industry.
func AssociationNotFound(compCode, indCode string) error {
	return &NotFoundError{
		Message: fmt.Sprintf("Company with code '%s' not found in industry with code '%s'", compCode, indCode),
	}
}
