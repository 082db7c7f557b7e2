package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Saifnaser12/peergos-sub004/internal/domain"
	"github.com/Saifnaser12/peergos-sub004/internal/domain/entity"
	"github.com/Saifnaser12/peergos-sub004/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implements InvoiceRepository on a pgx pool. Header and lines
// live in invoices / invoice_lines; Create writes both in one transaction.
type InvoiceRepo struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository builds the adapter.
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepo {
	return &InvoiceRepo{pool: pool}
}

// Create persists the invoice header and its lines atomically.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const header = `
		INSERT INTO invoices (
			id, invoice_number, type, status, issue_date, due_date, currency,
			seller_name, seller_trn, seller_street, seller_city, seller_emirate, seller_country, seller_postal_code, seller_phone, seller_email,
			buyer_name, buyer_trn, buyer_street, buyer_city, buyer_emirate, buyer_country, buyer_postal_code, buyer_phone, buyer_email,
			amount, vat_amount, total,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25,
			$26, $27, $28,
			$29, $30
		)`
	sellerPhone, sellerEmail := contactFields(inv.Seller.Contact)
	buyerPhone, buyerEmail := contactFields(inv.Buyer.Contact)
	_, err = tx.Exec(ctx, header,
		inv.ID, inv.InvoiceNumber, inv.Type, inv.Status, inv.IssueDate, inv.DueDate, inv.Currency,
		inv.Seller.Name, inv.Seller.TRN, inv.Seller.Address.Street, inv.Seller.Address.City, inv.Seller.Address.Emirate, inv.Seller.Address.Country, nullIfEmpty(inv.Seller.Address.PostalCode), sellerPhone, sellerEmail,
		inv.Buyer.Name, nullIfEmpty(inv.Buyer.TRN), inv.Buyer.Address.Street, inv.Buyer.Address.City, inv.Buyer.Address.Emirate, inv.Buyer.Address.Country, nullIfEmpty(inv.Buyer.Address.PostalCode), buyerPhone, buyerEmail,
		inv.Amount, inv.VATAmount, inv.Total,
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: invoice number %s", domain.ErrDuplicate, inv.InvoiceNumber)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	const line = `
		INSERT INTO invoice_lines (
			invoice_id, line_id, description, quantity, unit_price, total_amount,
			taxable_amount, tax_amount, product_code, tax_category, tax_rate, exemption_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for _, item := range inv.Items {
		_, err = tx.Exec(ctx, line,
			inv.ID, item.ID, item.Description, item.Quantity, item.UnitPrice, item.TotalAmount,
			item.TaxableAmount, item.TaxAmount, nullIfEmpty(item.ProductCode), item.TaxCategory, item.TaxRate, nullIfEmpty(item.ExemptionReason),
		)
		if err != nil {
			return fmt.Errorf("insert invoice line %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID loads the full invoice (header + lines). Returns (nil, nil) when
// it does not exist.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	const query = `
		SELECT id, invoice_number, type, status, issue_date, due_date, currency,
		       seller_name, seller_trn, seller_street, seller_city, seller_emirate, seller_country, seller_postal_code, seller_phone, seller_email,
		       buyer_name, buyer_trn, buyer_street, buyer_city, buyer_emirate, buyer_country, buyer_postal_code, buyer_phone, buyer_email,
		       amount, vat_amount, total,
		       hash, signature_value, signature_date, qr_code,
		       submission_id, submission_errors,
		       created_at, updated_at
		FROM invoices WHERE id = $1`

	var inv entity.Invoice
	var sellerPostal, sellerPhone, sellerEmail *string
	var buyerTRN, buyerPostal, buyerPhone, buyerEmail *string
	var hash, sigValue, qrCode, submissionID, submissionErrors *string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.Type, &inv.Status, &inv.IssueDate, &inv.DueDate, &inv.Currency,
		&inv.Seller.Name, &inv.Seller.TRN, &inv.Seller.Address.Street, &inv.Seller.Address.City, &inv.Seller.Address.Emirate, &inv.Seller.Address.Country, &sellerPostal, &sellerPhone, &sellerEmail,
		&inv.Buyer.Name, &buyerTRN, &inv.Buyer.Address.Street, &inv.Buyer.Address.City, &inv.Buyer.Address.Emirate, &inv.Buyer.Address.Country, &buyerPostal, &buyerPhone, &buyerEmail,
		&inv.Amount, &inv.VATAmount, &inv.Total,
		&hash, &sigValue, &inv.SignatureDate, &qrCode,
		&submissionID, &submissionErrors,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.Seller.Address.PostalCode = derefStr(sellerPostal)
	inv.Seller.Contact = contactFromFields(sellerPhone, sellerEmail)
	inv.Buyer.TRN = derefStr(buyerTRN)
	inv.Buyer.Address.PostalCode = derefStr(buyerPostal)
	inv.Buyer.Contact = contactFromFields(buyerPhone, buyerEmail)
	inv.Hash = derefStr(hash)
	inv.SignatureValue = derefStr(sigValue)
	inv.QRCode = derefStr(qrCode)
	inv.SubmissionID = derefStr(submissionID)
	inv.SubmissionErrors = derefStr(submissionErrors)

	items, err := r.linesByInvoiceID(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return &inv, nil
}

// UpdateArtifacts persists the pipeline artifacts, submission fields and
// status. COALESCE keeps previously generated artifacts when a later run
// writes only some of them.
func (r *InvoiceRepo) UpdateArtifacts(ctx context.Context, inv *entity.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()
	const query = `
		UPDATE invoices
		SET hash              = COALESCE($2, hash),
		    signature_value   = COALESCE($3, signature_value),
		    signature_date    = COALESCE($4, signature_date),
		    qr_code           = COALESCE($5, qr_code),
		    status            = $6,
		    submission_id     = COALESCE($7, submission_id),
		    submission_errors = $8,
		    updated_at        = $9
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query,
		inv.ID,
		nullIfEmpty(inv.Hash),
		nullIfEmpty(inv.SignatureValue),
		inv.SignatureDate,
		nullIfEmpty(inv.QRCode),
		inv.Status,
		nullIfEmpty(inv.SubmissionID),
		nullIfEmpty(inv.SubmissionErrors),
		inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice artifacts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice %s", domain.ErrNotFound, inv.ID)
	}
	return nil
}

// ListByStatus returns invoice headers in the given status, newest first.
// Lines are not loaded.
func (r *InvoiceRepo) ListByStatus(ctx context.Context, status string, limit int) ([]*entity.Invoice, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, invoice_number, type, status, issue_date, currency,
		       seller_trn, COALESCE(buyer_trn, ''), amount, vat_amount, total,
		       COALESCE(hash, ''), COALESCE(submission_id, ''), COALESCE(submission_errors, ''),
		       created_at, updated_at
		FROM invoices
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.InvoiceNumber, &inv.Type, &inv.Status, &inv.IssueDate, &inv.Currency,
			&inv.Seller.TRN, &inv.Buyer.TRN, &inv.Amount, &inv.VATAmount, &inv.Total,
			&inv.Hash, &inv.SubmissionID, &inv.SubmissionErrors,
			&inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, &inv)
	}
	return list, rows.Err()
}

func (r *InvoiceRepo) linesByInvoiceID(ctx context.Context, invoiceID string) ([]entity.LineItem, error) {
	const query = `
		SELECT line_id, description, quantity, unit_price, total_amount,
		       taxable_amount, tax_amount, COALESCE(product_code, ''), tax_category, tax_rate, COALESCE(exemption_reason, '')
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY line_id`
	rows, err := r.pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()

	var items []entity.LineItem
	for rows.Next() {
		var item entity.LineItem
		if err := rows.Scan(
			&item.ID, &item.Description, &item.Quantity, &item.UnitPrice, &item.TotalAmount,
			&item.TaxableAmount, &item.TaxAmount, &item.ProductCode, &item.TaxCategory, &item.TaxRate, &item.ExemptionReason,
		); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func contactFields(c *entity.ContactDetails) (phone, email *string) {
	if c == nil {
		return nil, nil
	}
	return nullIfEmpty(c.Phone), nullIfEmpty(c.Email)
}

func contactFromFields(phone, email *string) *entity.ContactDetails {
	p, e := derefStr(phone), derefStr(email)
	if p == "" && e == "" {
		return nil
	}
	return &entity.ContactDetails{Phone: p, Email: e}
}
