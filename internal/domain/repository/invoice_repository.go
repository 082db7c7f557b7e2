package repository

import (
	"context"

	"github.com/Saifnaser12/peergos-sub004/internal/domain/entity"
)

// InvoiceRepository is the persistence port for invoices and their derived
// artifacts. Implementations must treat lifecycle status as forward-only.
type InvoiceRepository interface {
	// Create persists a new invoice (header + lines) in DRAFT.
	Create(ctx context.Context, inv *entity.Invoice) error
	// GetByID returns the full invoice or (nil, nil) when it does not exist.
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// UpdateArtifacts persists the pipeline artifacts, submission fields and
	// status of an already created invoice.
	UpdateArtifacts(ctx context.Context, inv *entity.Invoice) error
	// ListByStatus returns invoice headers in the given status, newest first.
	ListByStatus(ctx context.Context, status string, limit int) ([]*entity.Invoice, error)
}
