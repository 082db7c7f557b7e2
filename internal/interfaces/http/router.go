package http

import (
	"github.com/gofiber/fiber/v2"

	appeinvoice "github.com/Saifnaser12/peergos-sub004/internal/application/einvoice"
	rules "github.com/Saifnaser12/peergos-sub004/internal/domain/einvoice"
	"github.com/Saifnaser12/peergos-sub004/internal/domain/repository"
)

// RouterDeps dependencies for the router.
type RouterDeps struct {
	Invoices     repository.InvoiceRepository
	Orchestrator *appeinvoice.Orchestrator
	Validator    *rules.Validator
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.Invoices, deps.Orchestrator, deps.Validator)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Post("/:id/process", invoiceHandler.Process)
}
