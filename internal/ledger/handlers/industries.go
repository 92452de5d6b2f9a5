package handlers

import (
	"fmt"
	"net/http"

	e "github.com/gartstein/biztime/internal/ledger/errors"
	"github.com/gartstein/biztime/internal/ledger/models"
	"github.com/gin-gonic/gin"
)

type createIndustryRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type updateIndustryRequest struct {
	Name string `json:"name"`
}

type addIndustryCompanyRequest struct {
	CompCode string `json:"comp_code"`
}

func (s *Server) listIndustries(c *gin.Context) {
	industries, err := s.industries.ListIndustries(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"industries": industries})
}

func (s *Server) getIndustry(c *gin.Context) {
	industry, err := s.industries.GetIndustry(c.Request.Context(), c.Param("code"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"industry": industry})
}

func (s *Server) createIndustry(c *gin.Context) {
	var req createIndustryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", e.ErrInvalidInput, err))
		return
	}

	industry, err := s.industries.CreateIndustry(c.Request.Context(), req.Code, req.Name)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"industry": industry})
}

func (s *Server) updateIndustry(c *gin.Context) {
	var req updateIndustryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", e.ErrInvalidInput, err))
		return
	}

	update := &models.IndustryUpdate{
		Code: c.Param("code"),
		Name: &req.Name,
	}
	industry, err := s.industries.UpdateIndustry(c.Request.Context(), update)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"industry": industry})
}

func (s *Server) deleteIndustry(c *gin.Context) {
	if err := s.industries.DeleteIndustry(c.Request.Context(), c.Param("code")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) addIndustryCompany(c *gin.Context) {
	var req addIndustryCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", e.ErrInvalidInput, err))
		return
	}

	industry, err := s.industries.AddCompany(c.Request.Context(), c.Param("code"), req.CompCode)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"industry": industry})
}

func (s *Server) removeIndustryCompany(c *gin.Context) {
	err := s.industries.RemoveCompany(c.Request.Context(), c.Param("code"), c.Param("comp_code"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
