package einvoice_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saifnaser12/peergos-sub004/internal/domain/einvoice"
	"github.com/Saifnaser12/peergos-sub004/internal/domain/entity"
	"github.com/Saifnaser12/peergos-sub004/pkg/fta"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func validInvoice() *entity.Invoice {
	return &entity.Invoice{
		InvoiceNumber: "INV-2026-0001",
		Type:          entity.InvoiceTypeStandard,
		IssueDate:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Currency:      fta.CurrencyAED,
		Seller: entity.Party{
			Name: "Peergos Trading LLC",
			TRN:  "100123456700003",
			Address: entity.Address{
				Street: "Sheikh Zayed Road", City: "Dubai", Emirate: "Dubai", Country: "AE",
			},
		},
		Buyer: entity.Party{
			Name: "Gulf Supplies FZE",
			TRN:  "100987654300003",
			Address: entity.Address{
				Street: "Corniche Street", City: "Abu Dhabi", Emirate: "Abu Dhabi", Country: "AE",
			},
		},
		Items: []entity.LineItem{{
			ID:            "1",
			Description:   "Consulting services",
			Quantity:      decimal.NewFromInt(10),
			UnitPrice:     decimal.NewFromInt(100),
			TotalAmount:   decimal.NewFromInt(1000),
			TaxableAmount: decimal.NewFromInt(1000),
			TaxAmount:     decimal.NewFromInt(50),
			TaxCategory:   fta.TaxCategoryStandard,
			TaxRate:       decimal.NewFromInt(5),
		}},
		Amount:    decimal.NewFromInt(1000),
		VATAmount: decimal.NewFromInt(50),
		Total:     decimal.NewFromInt(1050),
	}
}

// ── default rules ─────────────────────────────────────────────────────────────

func TestValidate_ValidInvoice(t *testing.T) {
	res := einvoice.NewValidator().Validate(validInvoice())
	assert.True(t, res.IsValid(), "violations: %v", res.Errors)
}

// All violations must be reported in one pass, never just the first.
func TestValidate_CollectsAllViolations(t *testing.T) {
	inv := validInvoice()
	inv.InvoiceNumber = ""
	inv.Seller.TRN = "12345"
	inv.Buyer.TRN = "10012345670000A"
	inv.Items[0].Quantity = decimal.Zero

	res := einvoice.NewValidator().Validate(inv)
	require.False(t, res.IsValid())
	assert.Len(t, res.Errors, 4)

	fields := make([]string, len(res.Errors))
	for i, fe := range res.Errors {
		fields[i] = fe.Field
	}
	assert.Contains(t, fields, "invoiceNumber")
	assert.Contains(t, fields, "seller.taxRegistrationNumber")
	assert.Contains(t, fields, "buyer.taxRegistrationNumber")
	assert.Contains(t, fields, "items[0].quantity")
}

func TestValidate_StableErrorOrder(t *testing.T) {
	inv := validInvoice()
	inv.InvoiceNumber = ""
	inv.Seller.TRN = ""

	first := einvoice.NewValidator().Validate(inv)
	second := einvoice.NewValidator().Validate(inv)
	assert.Equal(t, first.Errors, second.Errors)
}

func TestValidate_MissingIssueDate(t *testing.T) {
	inv := validInvoice()
	inv.IssueDate = time.Time{}
	res := einvoice.NewValidator().Validate(inv)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "issueDate", res.Errors[0].Field)
}

// Future issue dates pass: this validator checks shape, not business policy.
func TestValidate_FutureIssueDateAllowed(t *testing.T) {
	inv := validInvoice()
	inv.IssueDate = time.Now().AddDate(1, 0, 0)
	assert.True(t, einvoice.NewValidator().Validate(inv).IsValid())
}

func TestValidate_NoItems(t *testing.T) {
	inv := validInvoice()
	inv.Items = nil
	res := einvoice.NewValidator().Validate(inv)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "items", res.Errors[0].Field)
}

func TestValidate_NilInvoice(t *testing.T) {
	res := einvoice.NewValidator().Validate(nil)
	assert.False(t, res.IsValid())
}

// ── buyer TRN waiver ──────────────────────────────────────────────────────────

func TestValidate_SimplifiedWaivesBuyerTRN(t *testing.T) {
	inv := validInvoice()
	inv.Type = entity.InvoiceTypeSimplified
	inv.Buyer.TRN = ""
	assert.True(t, einvoice.NewValidator().Validate(inv).IsValid())
}

func TestValidate_StandardRequiresBuyerTRN(t *testing.T) {
	inv := validInvoice()
	inv.Buyer.TRN = ""
	res := einvoice.NewValidator().Validate(inv)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "buyer.taxRegistrationNumber", res.Errors[0].Field)
}

// ── line item rules ───────────────────────────────────────────────────────────

func TestValidate_NegativeAmounts(t *testing.T) {
	inv := validInvoice()
	inv.Items[0].UnitPrice = decimal.NewFromInt(-1)
	inv.Items[0].TaxAmount = decimal.NewFromInt(-5)

	res := einvoice.NewValidator().Validate(inv)
	assert.Len(t, res.Errors, 2)
}

func TestValidate_ZeroUnitPriceAllowed(t *testing.T) {
	inv := validInvoice()
	inv.Items[0].UnitPrice = decimal.Zero
	assert.True(t, einvoice.NewValidator().Validate(inv).IsValid())
}

// ── opt-in rules ──────────────────────────────────────────────────────────────

func TestValidate_ExemptionReasonOptIn(t *testing.T) {
	inv := validInvoice()
	inv.Items[0].TaxCategory = fta.TaxCategoryExempt
	inv.Items[0].TaxRate = decimal.Zero
	inv.Items[0].TaxAmount = decimal.Zero
	inv.Items[0].ExemptionReason = ""

	// Default: rule off, invoice passes.
	assert.True(t, einvoice.NewValidator().Validate(inv).IsValid())

	// Opt-in: same invoice fails.
	res := einvoice.NewValidator(einvoice.WithExemptionReasonRequired()).Validate(inv)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "items[0].exemptionReason", res.Errors[0].Field)
}

func TestValidate_TotalsConsistencyOptIn(t *testing.T) {
	inv := validInvoice()
	inv.Amount = decimal.NewFromInt(999) // off by one against the line sum

	assert.True(t, einvoice.NewValidator().Validate(inv).IsValid())

	res := einvoice.NewValidator(einvoice.WithTotalsConsistency()).Validate(inv)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "amount", res.Errors[0].Field)
}

func TestValidate_UnknownTaxCategory(t *testing.T) {
	inv := validInvoice()
	inv.Items[0].TaxCategory = "X"
	res := einvoice.NewValidator().Validate(inv)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "items[0].taxCategory", res.Errors[0].Field)
}

func TestValidate_EmirateCatalogueOptIn(t *testing.T) {
	inv := validInvoice()
	inv.Seller.Address.Emirate = "Atlantis"

	assert.True(t, einvoice.NewValidator().Validate(inv).IsValid())

	res := einvoice.NewValidator(einvoice.WithEmirateCatalogue()).Validate(inv)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "seller.address.emirate", res.Errors[0].Field)
}

func TestValidationError_MessageListsFields(t *testing.T) {
	inv := validInvoice()
	inv.InvoiceNumber = ""
	res := einvoice.NewValidator().Validate(inv)
	err := &einvoice.ValidationError{Result: res}
	assert.Contains(t, err.Error(), "invoiceNumber")
}
