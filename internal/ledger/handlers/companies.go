package handlers

import (
	"fmt"
	"net/http"

	e "github.com/gartstein/biztime/internal/ledger/errors"
	"github.com/gartstein/biztime/internal/ledger/models"
	"github.com/gin-gonic/gin"
)

type createCompanyRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateCompanyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) listCompanies(c *gin.Context) {
	companies, err := s.companies.ListCompanies(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"companies": companies})
}

func (s *Server) getCompany(c *gin.Context) {
	code := c.Param("code")
	company, err := s.companies.GetCompany(c.Request.Context(), code)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

func (s *Server) createCompany(c *gin.Context) {
	var req createCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", e.ErrInvalidInput, err))
		return
	}

	company, err := s.companies.CreateCompany(c.Request.Context(), req.Code, req.Name, req.Description)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"company": company})
}

func (s *Server) updateCompany(c *gin.Context) {
	var req updateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", e.ErrInvalidInput, err))
		return
	}

	update := &models.CompanyUpdate{
		Code:        c.Param("code"),
		Name:        &req.Name,
		Description: &req.Description,
	}
	company, err := s.companies.UpdateCompany(c.Request.Context(), update)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

func (s *Server) deleteCompany(c *gin.Context) {
	if err := s.companies.DeleteCompany(c.Request.Context(), c.Param("code")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
