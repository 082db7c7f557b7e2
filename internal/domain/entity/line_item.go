package entity

import "github.com/shopspring/decimal"

// LineItem is one invoice line. ID must be unique within the invoice.
type LineItem struct {
	ID              string
	Description     string
	Quantity        decimal.Decimal // > 0
	UnitPrice       decimal.Decimal // >= 0
	TotalAmount     decimal.Decimal
	TaxableAmount   decimal.Decimal // >= 0
	TaxAmount       decimal.Decimal // >= 0
	ProductCode     string
	TaxCategory     string          // fta.TaxCategory* code
	TaxRate         decimal.Decimal // percent, e.g. 5 for standard VAT
	ExemptionReason string          // required for exempt zero-rated lines when the rule is enabled
}
