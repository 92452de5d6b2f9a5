// Package handlers provides the REST surface of the ledger, bridging gin
// routes and the service layer and mapping service errors to HTTP statuses.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gartstein/biztime/internal/ledger/auth"
	e "github.com/gartstein/biztime/internal/ledger/errors"
	"github.com/gartstein/biztime/internal/ledger/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CompanyController defines the company business logic the handlers invoke.
type CompanyController interface {
	ListCompanies(ctx context.Context) ([]models.Company, error)
	GetCompany(ctx context.Context, code string) (*models.CompanyDetail, error)
	CreateCompany(ctx context.Context, code, name, description string) (*models.CompanyDetail, error)
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate) (*models.CompanyDetail, error)
	DeleteCompany(ctx context.Context, code string) error
}

// IndustryController defines the industry business logic the handlers invoke.
type IndustryController interface {
	ListIndustries(ctx context.Context) ([]models.IndustryDetail, error)
	GetIndustry(ctx context.Context, code string) (*models.IndustryDetail, error)
	CreateIndustry(ctx context.Context, code, name string) (*models.IndustryDetail, error)
	UpdateIndustry(ctx context.Context, update *models.IndustryUpdate) (*models.IndustryDetail, error)
	DeleteIndustry(ctx context.Context, code string) error
	AddCompany(ctx context.Context, indCode, compCode string) (*models.IndustryDetail, error)
	RemoveCompany(ctx context.Context, indCode, compCode string) error
}

// InvoiceController defines the invoice business logic the handlers invoke.
type InvoiceController interface {
	ListInvoices(ctx context.Context) ([]models.Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*models.Invoice, error)
	CreateInvoice(ctx context.Context, compCode string, amt *float64) (*models.Invoice, error)
	UpdateInvoice(ctx context.Context, update *models.InvoiceUpdate) (*models.Invoice, error)
	DeleteInvoice(ctx context.Context, id int64) error
	CompanyInvoices(ctx context.Context, code string) (*models.CompanyInvoices, error)
}

// Server mounts the three resource route families on a gin engine and owns
// the HTTP listener lifecycle.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
	companies  CompanyController
	industries IndustryController
	invoices   InvoiceController
}

// NewServer wires the controllers into a gin engine. A non-empty jwtSecret
// additionally gates mutating routes behind bearer-token auth.
func NewServer(
	httpPort int,
	logger *zap.Logger,
	companies CompanyController,
	industries IndustryController,
	invoices InvoiceController,
	jwtSecret string,
) *Server {
	s := &Server{
		logger:     logger,
		companies:  companies,
		industries: industries,
		invoices:   invoices,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	engine.Use(s.errorMiddleware())
	if jwtSecret != "" {
		engine.Use(auth.Middleware(jwtSecret))
	}

	s.engine = engine
	s.registerRoutes()
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", httpPort),
		Handler: engine,
	}
	return s
}

func (s *Server) registerRoutes() {
	companies := s.engine.Group("/companies")
	{
		companies.GET("", s.listCompanies)
		companies.GET("/:code", s.getCompany)
		companies.POST("", s.createCompany)
		companies.PUT("/:code", s.updateCompany)
		companies.DELETE("/:code", s.deleteCompany)
	}

	industries := s.engine.Group("/industries")
	{
		industries.GET("", s.listIndustries)
		industries.GET("/:code", s.getIndustry)
		industries.POST("", s.createIndustry)
		industries.PUT("/:code", s.updateIndustry)
		industries.DELETE("/:code", s.deleteIndustry)
		industries.POST("/:code/companies", s.addIndustryCompany)
		industries.DELETE("/:code/companies/:comp_code", s.removeIndustryCompany)
	}

	invoices := s.engine.Group("/invoices")
	{
		invoices.GET("", s.listInvoices)
		invoices.GET("/:id", s.getInvoice)
		invoices.POST("", s.createInvoice)
		invoices.PUT("/:id", s.updateInvoice)
		invoices.DELETE("/:id", s.deleteInvoice)
		invoices.GET("/companies/:code", s.companyInvoices)
	}

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "resource not found"})
	})
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start runs the HTTP server until it fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("endpoint", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP serve error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	s.logger.Info("Server stopped")
}

// abortWithError records the error for the terminal middleware to map.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// errorMiddleware converts the last recorded error into the response:
// missing resources become 404 with a message, everything else collapses to
// 500 with the underlying error text.
func (s *Server) errorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, body := s.mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, body)
	}
}

func (s *Server) mapError(err error) (int, gin.H) {
	var notFound *e.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, gin.H{"message": notFound.Message}
	}

	// The external contract collapses store failures to 500; keep the
	// taxonomy visible in logs.
	switch {
	case errors.Is(err, e.ErrDuplicate):
		s.logger.Error("Duplicate key violation", zap.Error(err))
	case errors.Is(err, e.ErrConstraint):
		s.logger.Error("Constraint violation", zap.Error(err))
	case errors.Is(err, e.ErrInvalidInput):
		s.logger.Error("Invalid input", zap.Error(err))
	default:
		s.logger.Error("Store error", zap.Error(err))
	}
	return http.StatusInternalServerError, gin.H{"error": err.Error()}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
