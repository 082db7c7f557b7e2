// Package dto defines the request/response shapes of the HTTP API.
package dto

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Saifnaser12/peergos-sub004/internal/domain/entity"
	"github.com/Saifnaser12/peergos-sub004/pkg/fta"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// PartyRequest identifies the seller or the buyer.
type PartyRequest struct {
	Name       string `json:"name"`
	TRN        string `json:"trn"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Emirate    string `json:"emirate"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

// LineItemRequest is one invoice line.
type LineItemRequest struct {
	ID              string          `json:"id,omitempty"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	TaxableAmount   decimal.Decimal `json:"taxableAmount"`
	TaxAmount       decimal.Decimal `json:"taxAmount"`
	ProductCode     string          `json:"productCode,omitempty"`
	TaxCategory     string          `json:"taxCategory,omitempty"`
	TaxRate         decimal.Decimal `json:"taxRate"`
	ExemptionReason string          `json:"exemptionReason,omitempty"`
}

// CreateInvoiceRequest creates a DRAFT invoice. IssueDate and DueDate use
// the 2006-01-02 layout.
type CreateInvoiceRequest struct {
	InvoiceNumber string            `json:"invoiceNumber"`
	Type          string            `json:"type,omitempty"` // defaults to STANDARD
	IssueDate     string            `json:"issueDate"`
	DueDate       string            `json:"dueDate,omitempty"`
	Currency      string            `json:"currency,omitempty"` // defaults to AED
	Seller        PartyRequest      `json:"seller"`
	Buyer         PartyRequest      `json:"buyer"`
	Items         []LineItemRequest `json:"items"`
	Amount        decimal.Decimal   `json:"amount"`
	VATAmount     decimal.Decimal   `json:"vatAmount"`
	Total         decimal.Decimal   `json:"total"`
}

// ToEntity converts the request into a domain invoice. Date parsing errors
// surface here; everything else is the validator's job.
func (r CreateInvoiceRequest) ToEntity() (*entity.Invoice, error) {
	issueDate, err := time.Parse("2006-01-02", r.IssueDate)
	if err != nil {
		return nil, err
	}
	inv := &entity.Invoice{
		InvoiceNumber: r.InvoiceNumber,
		Type:          r.Type,
		Status:        entity.StatusDraft,
		IssueDate:     issueDate,
		Currency:      r.Currency,
		Seller:        r.Seller.toEntity(),
		Buyer:         r.Buyer.toEntity(),
		Amount:        r.Amount,
		VATAmount:     r.VATAmount,
		Total:         r.Total,
	}
	if inv.Type == "" {
		inv.Type = entity.InvoiceTypeStandard
	}
	if inv.Currency == "" {
		inv.Currency = fta.CurrencyAED
	}
	if r.DueDate != "" {
		due, err := time.Parse("2006-01-02", r.DueDate)
		if err != nil {
			return nil, err
		}
		inv.DueDate = &due
	}
	for i, item := range r.Items {
		li := entity.LineItem{
			ID:              item.ID,
			Description:     item.Description,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TotalAmount:     item.TotalAmount,
			TaxableAmount:   item.TaxableAmount,
			TaxAmount:       item.TaxAmount,
			ProductCode:     item.ProductCode,
			TaxCategory:     item.TaxCategory,
			TaxRate:         item.TaxRate,
			ExemptionReason: item.ExemptionReason,
		}
		if li.ID == "" {
			li.ID = strconv.Itoa(i + 1)
		}
		if li.TaxCategory == "" {
			li.TaxCategory = fta.TaxCategoryStandard
		}
		inv.Items = append(inv.Items, li)
	}
	return inv, nil
}

func (p PartyRequest) toEntity() entity.Party {
	party := entity.Party{
		Name: p.Name,
		TRN:  fta.NormalizeTRN(p.TRN),
		Address: entity.Address{
			Street:     p.Street,
			City:       p.City,
			Emirate:    p.Emirate,
			Country:    p.Country,
			PostalCode: p.PostalCode,
		},
	}
	if p.Phone != "" || p.Email != "" {
		party.Contact = &entity.ContactDetails{Phone: p.Phone, Email: p.Email}
	}
	return party
}

// ── Responses ─────────────────────────────────────────────────────────────────

// InvoiceResponse is the API view of an invoice, artifacts included.
type InvoiceResponse struct {
	ID               string     `json:"id"`
	InvoiceNumber    string     `json:"invoiceNumber"`
	Type             string     `json:"type"`
	Status           string     `json:"status"`
	IssueDate        string     `json:"issueDate"`
	DueDate          string     `json:"dueDate,omitempty"`
	Currency         string     `json:"currency"`
	SellerTRN        string     `json:"sellerTrn"`
	BuyerTRN         string     `json:"buyerTrn,omitempty"`
	Amount           string     `json:"amount"`
	VATAmount        string     `json:"vatAmount"`
	Total            string     `json:"total"`
	Hash             string     `json:"hash,omitempty"`
	SignatureValue   string     `json:"signatureValue,omitempty"`
	SignatureDate    *time.Time `json:"signatureDate,omitempty"`
	QRCode           string     `json:"qrCode,omitempty"`
	SubmissionID     string     `json:"submissionId,omitempty"`
	SubmissionErrors string     `json:"submissionErrors,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// ComplianceResponse pairs the invoice with its Phase 2 gate result.
type ComplianceResponse struct {
	Invoice    InvoiceResponse `json:"invoice"`
	Compliance struct {
		State  string   `json:"state"`
		Errors []string `json:"errors,omitempty"`
	} `json:"compliance"`
}

// FromEntity maps a domain invoice into its API view.
func FromEntity(inv *entity.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:               inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		Type:             inv.Type,
		Status:           inv.Status,
		IssueDate:        inv.IssueDate.Format("2006-01-02"),
		Currency:         inv.Currency,
		SellerTRN:        inv.Seller.TRN,
		BuyerTRN:         inv.Buyer.TRN,
		Amount:           inv.Amount.StringFixed(2),
		VATAmount:        inv.VATAmount.StringFixed(2),
		Total:            inv.Total.StringFixed(2),
		Hash:             inv.Hash,
		SignatureValue:   inv.SignatureValue,
		SignatureDate:    inv.SignatureDate,
		QRCode:           inv.QRCode,
		SubmissionID:     inv.SubmissionID,
		SubmissionErrors: inv.SubmissionErrors,
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
	}
	if inv.DueDate != nil {
		resp.DueDate = inv.DueDate.Format("2006-01-02")
	}
	return resp
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Fields  []any  `json:"fields,omitempty"`
}
