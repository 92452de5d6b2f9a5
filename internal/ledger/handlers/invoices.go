package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	e "github.com/gartstein/biztime/internal/ledger/errors"
	"github.com/gartstein/biztime/internal/ledger/models"
	"github.com/gin-gonic/gin"
)

type createInvoiceRequest struct {
	CompCode string   `json:"comp_code"`
	Amt      *float64 `json:"amt"`
}

// updateInvoiceRequest uses pointers so the handler can tell an omitted
// field from a zero value.
type updateInvoiceRequest struct {
	Amt  *float64 `json:"amt"`
	Paid *bool    `json:"paid"`
}

func (s *Server) listInvoices(c *gin.Context) {
	invoices, err := s.invoices.ListInvoices(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

func (s *Server) getInvoice(c *gin.Context) {
	id, err := parseInvoiceID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	invoice, err := s.invoices.GetInvoice(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

func (s *Server) createInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", e.ErrInvalidInput, err))
		return
	}

	invoice, err := s.invoices.CreateInvoice(c.Request.Context(), req.CompCode, req.Amt)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invoice": invoice})
}

func (s *Server) updateInvoice(c *gin.Context) {
	id, err := parseInvoiceID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	var req updateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", e.ErrInvalidInput, err))
		return
	}

	update := &models.InvoiceUpdate{
		ID:   id,
		Amt:  req.Amt,
		Paid: req.Paid,
	}
	invoice, err := s.invoices.UpdateInvoice(c.Request.Context(), update)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

func (s *Server) deleteInvoice(c *gin.Context) {
	id, err := parseInvoiceID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := s.invoices.DeleteInvoice(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) companyInvoices(c *gin.Context) {
	company, err := s.invoices.CompanyInvoices(c.Request.Context(), c.Param("code"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

// parseInvoiceID reads the numeric id path parameter. A non-numeric id is a
// malformed query, surfaced as a store-level failure like any other.
func parseInvoiceID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid invoice id %q", e.ErrInvalidInput, c.Param("id"))
	}
	return id, nil
}
