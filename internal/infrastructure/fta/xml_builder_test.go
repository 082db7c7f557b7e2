package fta_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saifnaser12/peergos-sub004/internal/domain/entity"
	"github.com/Saifnaser12/peergos-sub004/internal/infrastructure/fta"
	pkgfta "github.com/Saifnaser12/peergos-sub004/pkg/fta"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func buildTestInvoice() *entity.Invoice {
	due := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	return &entity.Invoice{
		ID:            "5f0c9e04-1a13-4b6d-9a89-2a2f9a1b8c11",
		InvoiceNumber: "INV-2026-0042",
		Type:          entity.InvoiceTypeStandard,
		IssueDate:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		DueDate:       &due,
		Currency:      pkgfta.CurrencyAED,
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
			Description:   "Steel pipes",
			Quantity:      decimal.NewFromInt(20),
			UnitPrice:     decimal.NewFromInt(50),
			TotalAmount:   decimal.NewFromInt(1000),
			TaxableAmount: decimal.NewFromInt(1000),
			TaxAmount:     decimal.NewFromInt(50),
			TaxCategory:   pkgfta.TaxCategoryStandard,
			TaxRate:       decimal.NewFromInt(5),
		}},
		Amount:    decimal.NewFromInt(1000),
		VATAmount: decimal.NewFromInt(50),
		Total:     decimal.NewFromInt(1050),
	}
}

// ── determinism ───────────────────────────────────────────────────────────────

// Serializing the same invoice twice must yield byte-identical output: the
// whole hash chain anchors on it.
func TestBuild_Deterministic(t *testing.T) {
	builder := fta.NewXMLBuilder()
	inv := buildTestInvoice()

	first, err := builder.Build(inv)
	require.NoError(t, err)
	second, err := builder.Build(inv)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same invoice must serialize to identical bytes")
}

func TestBuild_SnapshotEquivalence(t *testing.T) {
	builder := fta.NewXMLBuilder()
	inv := buildTestInvoice()
	snap := inv.Snapshot()

	a, err := builder.Build(inv)
	require.NoError(t, err)
	b, err := builder.Build(&snap)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

// ── content ───────────────────────────────────────────────────────────────────

func TestBuild_ContainsMandatoryElements(t *testing.T) {
	out, err := fta.NewXMLBuilder().Build(buildTestInvoice())
	require.NoError(t, err)
	doc := string(out)

	assert.Contains(t, doc, "100123456700003", "seller TRN")
	assert.Contains(t, doc, "100987654300003", "buyer TRN")
	assert.Contains(t, doc, `schemeID="TRN"`)
	assert.Contains(t, doc, "INV-2026-0042")
	assert.Contains(t, doc, "2026-03-15")
	assert.Contains(t, doc, pkgfta.TypeCodeInvoice)
	assert.Contains(t, doc, pkgfta.CurrencyAED)
	assert.Contains(t, doc, "UBLExtensions", "signature placeholder must be present")
	assert.Contains(t, doc, fta.NsInvoice)
}

func TestBuild_AmountsTwoDecimals(t *testing.T) {
	inv := buildTestInvoice()
	inv.Amount = decimal.RequireFromString("1000.5")
	inv.VATAmount = decimal.RequireFromString("50.025")
	inv.Total = decimal.RequireFromString("1050.525")

	out, err := fta.NewXMLBuilder().Build(inv)
	require.NoError(t, err)
	doc := string(out)

	assert.Contains(t, doc, "1000.50")
	assert.Contains(t, doc, "50.03", "amounts round half-up to two decimals")
	assert.NotContains(t, doc, "1000.5<")
}

func TestBuild_CreditNoteTypeCode(t *testing.T) {
	inv := buildTestInvoice()
	inv.Type = entity.InvoiceTypeCreditNote

	out, err := fta.NewXMLBuilder().Build(inv)
	require.NoError(t, err)
	assert.Contains(t, string(out), pkgfta.TypeCodeCreditNote)
}

func TestBuild_ExemptionReasonPerLine(t *testing.T) {
	inv := buildTestInvoice()
	inv.Items[0].TaxCategory = pkgfta.TaxCategoryExempt
	inv.Items[0].TaxRate = decimal.Zero
	inv.Items[0].TaxAmount = decimal.Zero
	inv.Items[0].ExemptionReason = "Residential lease"

	out, err := fta.NewXMLBuilder().Build(inv)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Residential lease")
	assert.Contains(t, string(out), "TaxExemptionReason")
}

func TestBuild_NilInvoice(t *testing.T) {
	_, err := fta.NewXMLBuilder().Build(nil)
	assert.Error(t, err)
}

// Field reordering on input must not change output ordering: element order is
// fixed by the builder, not by the struct.
func TestBuild_LineOrderFollowsItems(t *testing.T) {
	inv := buildTestInvoice()
	inv.Items = append(inv.Items, entity.LineItem{
		ID:            "2",
		Description:   "Copper fittings",
		Quantity:      decimal.NewFromInt(5),
		UnitPrice:     decimal.NewFromInt(10),
		TotalAmount:   decimal.NewFromInt(50),
		TaxableAmount: decimal.NewFromInt(50),
		TaxAmount:     decimal.RequireFromString("2.50"),
		TaxCategory:   pkgfta.TaxCategoryStandard,
		TaxRate:       decimal.NewFromInt(5),
	})

	out, err := fta.NewXMLBuilder().Build(inv)
	require.NoError(t, err)
	doc := string(out)
	assert.Less(t, strings.Index(doc, "Steel pipes"), strings.Index(doc, "Copper fittings"))
}

// ── canonical + hash chain ────────────────────────────────────────────────────

func TestCanonicalize_StableAcrossRuns(t *testing.T) {
	out, err := fta.NewXMLBuilder().Build(buildTestInvoice())
	require.NoError(t, err)

	c1, err := fta.Canonicalize(out)
	require.NoError(t, err)
	c2, err := fta.Canonicalize(out)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}

func TestCanonicalize_InvalidXML(t *testing.T) {
	_, err := fta.Canonicalize([]byte("<unclosed"))
	assert.Error(t, err)
}
