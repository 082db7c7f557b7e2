// Package http exposes the e-invoicing API over Fiber.
package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Saifnaser12/peergos-sub004/internal/application/dto"
	appeinvoice "github.com/Saifnaser12/peergos-sub004/internal/application/einvoice"
	"github.com/Saifnaser12/peergos-sub004/internal/domain"
	"github.com/Saifnaser12/peergos-sub004/internal/domain/entity"
	rules "github.com/Saifnaser12/peergos-sub004/internal/domain/einvoice"
	"github.com/Saifnaser12/peergos-sub004/internal/domain/repository"
)

// InvoiceHandler handles the invoice lifecycle endpoints.
type InvoiceHandler struct {
	invoices     repository.InvoiceRepository
	orchestrator *appeinvoice.Orchestrator
	validator    *rules.Validator
}

// NewInvoiceHandler builds the handler.
func NewInvoiceHandler(invoices repository.InvoiceRepository, orchestrator *appeinvoice.Orchestrator, validator *rules.Validator) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, orchestrator: orchestrator, validator: validator}
}

// Create stores a new DRAFT invoice after schema validation.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "request body is not valid JSON"})
	}
	inv, err := in.ToEntity()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "dates must use the YYYY-MM-DD layout"})
	}

	if res := h.validator.Validate(inv); !res.IsValid() {
		fields := make([]any, len(res.Errors))
		for i, fe := range res.Errors {
			fields[i] = fe
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: "invoice failed validation",
			Fields:  fields,
		})
	}

	if err := h.invoices.Create(c.Context(), inv); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "invoice number already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromEntity(inv))
}

// Process launches the compliance pipeline for a DRAFT invoice. Asynchronous:
// answers 202 and the artifacts land on the invoice row when done.
// POST /api/invoices/:id/process
func (h *InvoiceHandler) Process(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id is required"})
	}
	inv, err := h.invoices.GetByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if inv == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "invoice not found"})
	}
	if inv.Status != entity.StatusDraft {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "only DRAFT invoices can be processed"})
	}

	h.orchestrator.ProcessAsync(id)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"id":     id,
		"status": "processing",
	})
}

// GetByID returns the invoice with its compliance report.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id is required"})
	}
	inv, report, err := h.orchestrator.Report(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if inv == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "invoice not found"})
	}

	resp := dto.ComplianceResponse{Invoice: dto.FromEntity(inv)}
	resp.Compliance.State = report.State
	resp.Compliance.Errors = report.Errors
	return c.JSON(resp)
}

// List returns invoice headers filtered by status.
// GET /api/invoices?status=DRAFT&limit=50
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	status := c.Query("status", entity.StatusDraft)
	limit := c.QueryInt("limit", 50)
	list, err := h.invoices.ListByStatus(c.Context(), status, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, dto.FromEntity(inv))
	}
	return c.JSON(out)
}
