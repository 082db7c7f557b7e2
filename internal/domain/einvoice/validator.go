// Package einvoice contains the domain rules for UAE Phase 2 e-invoicing:
// schema-level invoice validation ahead of the compliance pipeline.
package einvoice

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Saifnaser12/peergos-sub004/internal/domain/entity"
	"github.com/Saifnaser12/peergos-sub004/pkg/fta"
)

// FieldError is one validation violation, tied to the offending field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult carries every violation found in a single pass, in a
// stable order, so callers can display the complete list.
type ValidationResult struct {
	Errors []FieldError `json:"errors"`
}

// IsValid reports whether the invoice passed all enabled rules.
func (r ValidationResult) IsValid() bool { return len(r.Errors) == 0 }

// ValidationError wraps a failed ValidationResult as an error value for the
// pipeline boundary. Recoverable: the caller fixes the input and resubmits.
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Result.Errors))
	for i, fe := range e.Result.Errors {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "invoice validation failed: " + strings.Join(msgs, "; ")
}

// Validator checks an invoice against the Phase 2 schema rules.
//
// Two rules are deliberately opt-in because the upstream system never
// enforced them: cross-checking line sums against invoice totals, and
// requiring an exemption reason on exempt zero-rated lines. Enabling either
// can reject data the upstream system accepted.
type Validator struct {
	checkTotals            bool
	requireExemptionReason bool
	checkEmirates          bool
}

// ValidatorOption configures optional rules.
type ValidatorOption func(*Validator)

// WithTotalsConsistency enables cross-field validation: Amount must equal the
// sum of line taxable amounts and VATAmount the sum of line tax amounts.
func WithTotalsConsistency() ValidatorOption {
	return func(v *Validator) { v.checkTotals = true }
}

// WithExemptionReasonRequired enables the rule that exempt lines with a zero
// tax rate must carry an exemption reason.
func WithExemptionReasonRequired() ValidatorOption {
	return func(v *Validator) { v.requireExemptionReason = true }
}

// WithEmirateCatalogue enables checking party emirates against the FTA
// catalogue of emirate names.
func WithEmirateCatalogue() ValidatorOption {
	return func(v *Validator) { v.checkEmirates = true }
}

// NewValidator builds a validator with the default (upstream-compatible)
// rule set plus any enabled options.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs every rule and collects all violations; it never fails fast.
// Rule order is fixed so error lists are stable across runs.
//
// Note: the issue date may be in the future. Business-entry validators
// elsewhere forbid future dates; the invoice validator does not.
func (v *Validator) Validate(inv *entity.Invoice) ValidationResult {
	var res ValidationResult
	add := func(field, msg string) {
		res.Errors = append(res.Errors, FieldError{Field: field, Message: msg})
	}

	if inv == nil {
		add("invoice", "invoice is required")
		return res
	}

	if strings.TrimSpace(inv.InvoiceNumber) == "" {
		add("invoiceNumber", "invoice number is required")
	}
	if inv.IssueDate.IsZero() {
		add("issueDate", "issue date is required")
	}

	if !fta.ValidTRN(inv.Seller.TRN) {
		add("seller.taxRegistrationNumber", "seller TRN must be exactly 15 digits")
	}
	// Buyer TRN is waived only for simplified (retail) invoices.
	if inv.Type != entity.InvoiceTypeSimplified && !fta.ValidTRN(inv.Buyer.TRN) {
		add("buyer.taxRegistrationNumber", "buyer TRN must be exactly 15 digits")
	}

	if v.checkEmirates {
		if e := inv.Seller.Address.Emirate; e != "" && !fta.Emirates[e] {
			add("seller.address.emirate", fmt.Sprintf("unknown emirate %q", e))
		}
		if e := inv.Buyer.Address.Emirate; e != "" && !fta.Emirates[e] {
			add("buyer.address.emirate", fmt.Sprintf("unknown emirate %q", e))
		}
	}

	if len(inv.Items) == 0 {
		add("items", "at least one line item is required")
	}
	for i, item := range inv.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if !item.Quantity.IsPositive() {
			add(prefix+".quantity", "quantity must be greater than zero")
		}
		if item.UnitPrice.IsNegative() {
			add(prefix+".unitPrice", "unit price must not be negative")
		}
		if item.TaxableAmount.IsNegative() {
			add(prefix+".taxableAmount", "taxable amount must not be negative")
		}
		if item.TaxAmount.IsNegative() {
			add(prefix+".taxAmount", "tax amount must not be negative")
		}
		if item.TaxCategory != "" && !fta.ValidTaxCategoryCodes[item.TaxCategory] {
			add(prefix+".taxCategory", fmt.Sprintf("unknown tax category code %q", item.TaxCategory))
		}
		if v.requireExemptionReason &&
			item.TaxCategory == fta.TaxCategoryExempt &&
			item.TaxRate.IsZero() &&
			strings.TrimSpace(item.ExemptionReason) == "" {
			add(prefix+".exemptionReason", "exemption reason is required for exempt zero-rated lines")
		}
	}

	if v.checkTotals && len(inv.Items) > 0 {
		var sumTaxable, sumTax decimal.Decimal
		for _, item := range inv.Items {
			sumTaxable = sumTaxable.Add(item.TaxableAmount)
			sumTax = sumTax.Add(item.TaxAmount)
		}
		if !inv.Amount.Equal(sumTaxable.Round(2)) {
			add("amount", fmt.Sprintf("amount (%s) does not match the sum of line taxable amounts (%s)",
				inv.Amount.StringFixed(2), sumTaxable.Round(2).StringFixed(2)))
		}
		if !inv.VATAmount.Equal(sumTax.Round(2)) {
			add("vatAmount", fmt.Sprintf("vat amount (%s) does not match the sum of line tax amounts (%s)",
				inv.VATAmount.StringFixed(2), sumTax.Round(2).StringFixed(2)))
		}
	}

	return res
}
