// Package fta contains catalogues, identifier validation and signing ports
// for UAE Federal Tax Authority Phase 2 e-invoicing.
package fta

// =============================================================================
// Tax category codes (UNCL5305 subset used by the FTA invoice schema)
// =============================================================================

const (
	TaxCategoryStandard   = "S" // Standard rate (5% VAT)
	TaxCategoryZeroRated  = "Z" // Zero-rated supply
	TaxCategoryExempt     = "E" // Exempt supply, requires an exemption reason
	TaxCategoryOutOfScope = "O" // Outside the scope of VAT
)

// ValidTaxCategoryCodes are the tax category identifiers accepted on a line item.
var ValidTaxCategoryCodes = map[string]bool{
	TaxCategoryStandard:   true,
	TaxCategoryZeroRated:  true,
	TaxCategoryExempt:     true,
	TaxCategoryOutOfScope: true,
}

// =============================================================================
// Invoice type codes (UNCL1001 subset)
// =============================================================================

const (
	TypeCodeInvoice    = "380" // Commercial invoice (standard and simplified)
	TypeCodeCreditNote = "381" // Credit note
	TypeCodeDebitNote  = "383" // Debit note
)

// =============================================================================
// Miscellaneous
// =============================================================================

const (
	// TaxSchemeVAT is the fixed tax scheme identifier emitted in every party
	// and tax category block.
	TaxSchemeVAT = "VAT"

	// CurrencyAED is the default document currency.
	CurrencyAED = "AED"

	// CountryAE is the ISO 3166-1 alpha-2 code for the United Arab Emirates.
	CountryAE = "AE"
)

// Emirates are the emirate names accepted in postal address blocks.
var Emirates = map[string]bool{
	"Abu Dhabi":      true,
	"Dubai":          true,
	"Sharjah":        true,
	"Ajman":          true,
	"Umm Al Quwain":  true,
	"Ras Al Khaimah": true,
	"Fujairah":       true,
}
