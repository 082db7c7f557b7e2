package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice types recognized by the Phase 2 rules. Buyer TRN is optional only
// for SIMPLIFIED (retail) invoices.
const (
	InvoiceTypeStandard   = "STANDARD"
	InvoiceTypeSimplified = "SIMPLIFIED"
	InvoiceTypeDebitNote  = "DEBIT_NOTE"
	InvoiceTypeCreditNote = "CREDIT_NOTE"
)

// Invoice lifecycle states. The lifecycle is forward-only: the pipeline moves
// DRAFT to SIGNED, submission moves SIGNED onward. Nothing ever moves back.
const (
	StatusDraft        = "DRAFT"        // created, pipeline not yet run
	StatusSigned       = "SIGNED"       // hash + signature + QR generated
	StatusSubmitted    = "SUBMITTED"    // handed to the FTA, response pending
	StatusAcknowledged = "ACKNOWLEDGED" // accepted by the FTA (or simulated in dev)
	StatusRejected     = "REJECTED"     // rejected by the FTA with errors
	StatusCancelled    = "CANCELLED"    // withdrawn before submission
)

// Invoice is the root invoice entity. The fields below ArtifactsUpdatedAt are
// populated only after the compliance pipeline has run; their presence is what
// the Phase 2 compliance validator checks.
type Invoice struct {
	ID            string
	InvoiceNumber string
	Type          string // InvoiceType* constant
	Status        string // Status* constant
	IssueDate     time.Time
	DueDate       *time.Time
	Seller        Party
	Buyer         Party
	Items         []LineItem
	Currency      string
	Amount        decimal.Decimal // net amount, VAT excluded
	VATAmount     decimal.Decimal
	Total         decimal.Decimal // gross amount, VAT included

	// Derived artifacts (empty until the pipeline runs).
	Hash           string // lowercase hex SHA-256 of the canonical XML
	SignatureValue string // base64 signature over the hash
	SignatureDate  *time.Time
	QRCode         string // data URL of the QR image

	// Submission tracking.
	SubmissionID     string
	SubmissionErrors string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot returns a deep copy of the invoice. The pipeline operates on
// snapshots so concurrent processing never mutates the caller's value.
func (i *Invoice) Snapshot() Invoice {
	cp := *i
	cp.Items = make([]LineItem, len(i.Items))
	copy(cp.Items, i.Items)
	if i.DueDate != nil {
		d := *i.DueDate
		cp.DueDate = &d
	}
	if i.SignatureDate != nil {
		d := *i.SignatureDate
		cp.SignatureDate = &d
	}
	if i.Seller.Contact != nil {
		c := *i.Seller.Contact
		cp.Seller.Contact = &c
	}
	if i.Buyer.Contact != nil {
		c := *i.Buyer.Contact
		cp.Buyer.Contact = &c
	}
	return cp
}

// InvoicePackage is the immutable output of the compliance pipeline: the
// original invoice snapshot plus every derived artifact. Reprocessing an
// invoice produces a new package; packages are never mutated.
type InvoicePackage struct {
	Invoice       Invoice
	XML           string // canonical UBL document the hash was computed over
	SignedXML     string // XML with the ds:Signature node embedded (submission copy)
	Hash          string // lowercase hex SHA-256, 64 chars
	Signature     string // base64 signature value
	SignatureDate time.Time
	QRDataURL     string // embeddable PNG data URL
}
