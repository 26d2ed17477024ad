package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/finishing-touch/internal/http/middleware"
	"github.com/nurpe/finishing-touch/internal/model"
	"github.com/nurpe/finishing-touch/internal/service"
)

type AuthService interface {
	Login(ctx context.Context, input service.LoginInput) (*service.LoginResult, error)
	Me(ctx context.Context, principal model.Principal) (*model.User, error)
}

type EstimateService interface {
	Create(ctx context.Context, input service.CreateEstimateInput) (*model.Estimate, error)
	List(ctx context.Context, filter model.EstimateFilter) ([]model.Estimate, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Estimate, error)
	Update(ctx context.Context, id uuid.UUID, input service.UpdateEstimateInput) (*model.Estimate, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Send(ctx context.Context, id uuid.UUID) (*model.Estimate, error)
	PDF(ctx context.Context, id uuid.UUID) (*service.Document, error)
	ConvertToInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, bool, error)
}

type InvoiceService interface {
	Create(ctx context.Context, input service.CreateInvoiceInput) (*model.Invoice, error)
	List(ctx context.Context, filter model.InvoiceFilter) ([]model.Invoice, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status *model.InvoiceStatus) (*model.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	PDF(ctx context.Context, id uuid.UUID) (*service.Document, error)
}

type JobService interface {
	Create(ctx context.Context, input service.CreateJobInput) (*model.Job, error)
	CreateFromEstimate(ctx context.Context, estimateID uuid.UUID, employeeIDs []uuid.UUID) (*model.Job, error)
	List(ctx context.Context, input service.ListJobsInput) ([]model.Job, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Job, error)
	Update(ctx context.Context, id uuid.UUID, input service.UpdateJobInput) (*model.Job, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddAssignments(ctx context.Context, id uuid.UUID, employeeIDs []uuid.UUID) (*model.Job, error)
	RemoveAssignment(ctx context.Context, id, assignmentID uuid.UUID) error
}

type TimeService interface {
	Punch(ctx context.Context, input service.PunchInput) (*model.TimeEntry, error)
	Create(ctx context.Context, input service.CreateTimeEntryInput) (*model.TimeEntry, error)
	Update(ctx context.Context, id uuid.UUID, input service.UpdateTimeEntryInput) (*model.TimeEntry, error)
	List(ctx context.Context, input service.ListTimeEntriesInput) ([]model.TimeEntry, error)
	ClockedIn(ctx context.Context) ([]model.TimeEntry, error)
	Timesheet(ctx context.Context, employeeID uuid.UUID, from, to string) (*model.Timesheet, error)
	ExportTimesheet(ctx context.Context, employeeID uuid.UUID, from, to string) (*service.Document, error)
}

type EmployeeService interface {
	Create(ctx context.Context, input service.CreateEmployeeInput) (*model.Employee, error)
	List(ctx context.Context) ([]model.Employee, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Employee, error)
	Update(ctx context.Context, id uuid.UUID, input service.UpdateEmployeeInput) (*model.Employee, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type LeadService interface {
	Create(ctx context.Context, input service.CreateLeadInput) (*model.Lead, error)
	List(ctx context.Context) ([]model.Lead, error)
}

type Services struct {
	Auth      AuthService
	Estimates EstimateService
	Invoices  InvoiceService
	Jobs      JobService
	Time      TimeService
	Employees EmployeeService
	Leads     LeadService
}

type Handler struct {
	auth      AuthService
	estimates EstimateService
	invoices  InvoiceService
	jobs      JobService
	time      TimeService
	employees EmployeeService
	leads     LeadService
	log       zerolog.Logger
}

func NewHandler(services Services, log zerolog.Logger) *Handler {
	return &Handler{
		auth:      services.Auth,
		estimates: services.Estimates,
		invoices:  services.Invoices,
		jobs:      services.Jobs,
		time:      services.Time,
		employees: services.Employees,
		leads:     services.Leads,
		log:       log,
	}
}

// Register mounts every route under /api. Writes need ADMIN or MANAGER;
// reads and punches are open to any signed-in role.
func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := router.Group("/api")
	api.POST("/auth/login", h.login)
	api.POST("/leads", h.createLead)

	protected := api.Group("/")
	protected.Use(authMiddleware)

	staff := middleware.RequireRoles(model.RoleAdmin, model.RoleManager)
	adminOnly := middleware.RequireRoles(model.RoleAdmin)

	protected.GET("/auth/me", h.me)
	protected.GET("/leads", staff, h.listLeads)

	estimates := protected.Group("/estimates")
	estimates.POST("", staff, h.createEstimate)
	estimates.GET("", h.listEstimates)
	estimates.GET("/:id", h.getEstimate)
	estimates.PATCH("/:id", staff, h.updateEstimate)
	estimates.DELETE("/:id", staff, h.deleteEstimate)
	estimates.POST("/:id/send", staff, h.sendEstimate)
	estimates.POST("/:id/convert-to-invoice", staff, h.convertEstimate)
	estimates.GET("/:id/pdf", h.estimatePDF)

	invoices := protected.Group("/invoices")
	invoices.POST("", staff, h.createInvoice)
	invoices.GET("", h.listInvoices)
	invoices.GET("/:id", h.getInvoice)
	invoices.PATCH("/:id", staff, h.updateInvoice)
	invoices.DELETE("/:id", staff, h.deleteInvoice)
	invoices.GET("/:id/pdf", h.invoicePDF)

	jobs := protected.Group("/jobs")
	jobs.POST("", staff, h.createJob)
	jobs.GET("", h.listJobs)
	jobs.GET("/:id", h.getJob)
	jobs.PATCH("/:id", staff, h.updateJob)
	jobs.DELETE("/:id", staff, h.deleteJob)
	jobs.POST("/:id/assignments", staff, h.addAssignments)
	jobs.DELETE("/:id/assignments/:assignmentId", staff, h.removeAssignment)
	jobs.POST("/from-estimate/:estimateId", staff, h.createJobFromEstimate)

	entries := protected.Group("/time-entries")
	entries.GET("", h.listTimeEntries)
	entries.POST("", staff, h.createTimeEntry)
	entries.POST("/punch", h.punch)
	entries.GET("/clocked-in", h.clockedIn)
	entries.PATCH("/:id", staff, h.updateTimeEntry)

	employees := protected.Group("/employees")
	employees.POST("", staff, h.createEmployee)
	employees.GET("", h.listEmployees)
	employees.GET("/:id", h.getEmployee)
	employees.PATCH("/:id", staff, h.updateEmployee)
	employees.DELETE("/:id", adminOnly, h.deleteEmployee)
	employees.GET("/:id/timesheets", staff, h.timesheet)
	employees.GET("/:id/timesheets/export", staff, h.exportTimesheet)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// bindJSON decodes the request body and answers 400 itself on failure.
func bindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func sendDocument(c *gin.Context, doc *service.Document, contentType string) {
	c.Header("Content-Disposition", "attachment; filename=\""+doc.FileName+"\"")
	c.Data(http.StatusOK, contentType, doc.Content)
}
