package einvoice_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saifnaser12/peergos-sub004/internal/application/einvoice"
	"github.com/Saifnaser12/peergos-sub004/internal/domain/entity"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func compliantPackage() *entity.InvoicePackage {
	return &entity.InvoicePackage{
		Invoice: entity.Invoice{
			InvoiceNumber: "INV-2026-0001",
			Type:          entity.InvoiceTypeStandard,
			IssueDate:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			Seller:        entity.Party{Name: "Peergos Trading LLC", TRN: "100123456700003"},
			Buyer:         entity.Party{Name: "Gulf Supplies FZE", TRN: "100987654300003"},
			Amount:        decimal.NewFromInt(1000),
			VATAmount:     decimal.NewFromInt(50),
			Total:         decimal.NewFromInt(1050),
		},
		XML:       "<Invoice/>",
		Hash:      "aabbcc",
		Signature: "c2lnbmF0dXJl",
		QRDataURL: "data:image/png;base64,iVBOR",
	}
}

// ── gate evaluation ───────────────────────────────────────────────────────────

func TestEvaluate_CompliantPackage(t *testing.T) {
	report := einvoice.Evaluate(compliantPackage())
	assert.Equal(t, einvoice.ComplianceCompliant, report.State)
	assert.Empty(t, report.Errors)
	assert.True(t, report.Compliant())
}

// Removing exactly one artifact yields exactly the matching message.
func TestEvaluate_OneMissingArtifactOneMessage(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*entity.InvoicePackage)
		want   string
	}{
		{"no hash", func(p *entity.InvoicePackage) { p.Hash = "" }, einvoice.MsgMissingHash},
		{"no signature", func(p *entity.InvoicePackage) { p.Signature = "" }, einvoice.MsgMissingSignature},
		{"no qr", func(p *entity.InvoicePackage) { p.QRDataURL = "" }, einvoice.MsgMissingQR},
		{"bad seller trn", func(p *entity.InvoicePackage) { p.Invoice.Seller.TRN = "123" }, einvoice.MsgInvalidSellerTRN},
		{"bad buyer trn", func(p *entity.InvoicePackage) { p.Invoice.Buyer.TRN = "abc" }, einvoice.MsgInvalidBuyerTRN},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pkg := compliantPackage()
			tc.mutate(pkg)
			report := einvoice.Evaluate(pkg)
			assert.Equal(t, einvoice.ComplianceNonCompliant, report.State)
			require.Len(t, report.Errors, 1)
			assert.Equal(t, tc.want, report.Errors[0])
		})
	}
}

func TestEvaluate_ItemizesEveryFailure(t *testing.T) {
	pkg := compliantPackage()
	pkg.Hash = ""
	pkg.Signature = ""
	pkg.QRDataURL = ""

	report := einvoice.Evaluate(pkg)
	assert.Equal(t, []string{
		einvoice.MsgMissingHash,
		einvoice.MsgMissingSignature,
		einvoice.MsgMissingQR,
	}, report.Errors)
}

func TestEvaluate_SimplifiedWaivesEmptyBuyerTRN(t *testing.T) {
	pkg := compliantPackage()
	pkg.Invoice.Type = entity.InvoiceTypeSimplified
	pkg.Invoice.Buyer.TRN = ""
	assert.True(t, einvoice.Evaluate(pkg).Compliant())
}

// Present but malformed buyer TRN still fails, even on simplified invoices.
func TestEvaluate_SimplifiedRejectsMalformedBuyerTRN(t *testing.T) {
	pkg := compliantPackage()
	pkg.Invoice.Type = entity.InvoiceTypeSimplified
	pkg.Invoice.Buyer.TRN = "12345"
	report := einvoice.Evaluate(pkg)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, einvoice.MsgInvalidBuyerTRN, report.Errors[0])
}

func TestEvaluate_NilPackage(t *testing.T) {
	report := einvoice.Evaluate(nil)
	assert.Equal(t, einvoice.ComplianceNonCompliant, report.State)
	assert.Len(t, report.Errors, 5)
}

// Evaluation is a value, never an error, and never mutates the package.
func TestEvaluate_DoesNotMutate(t *testing.T) {
	pkg := compliantPackage()
	before := *pkg
	_ = einvoice.Evaluate(pkg)
	assert.Equal(t, before, *pkg)
}

// ── stage tracking ────────────────────────────────────────────────────────────

func TestStageState_Progression(t *testing.T) {
	pkg := compliantPackage()

	pkg.Hash, pkg.Signature, pkg.QRDataURL = "", "", ""
	assert.Equal(t, einvoice.ComplianceUnprocessed, einvoice.StageState(pkg))

	pkg.Hash = "aabbcc"
	assert.Equal(t, einvoice.ComplianceHashed, einvoice.StageState(pkg))

	pkg.Signature = "c2ln"
	assert.Equal(t, einvoice.ComplianceSigned, einvoice.StageState(pkg))

	pkg.QRDataURL = "data:image/png;base64,iVBOR"
	assert.Equal(t, einvoice.ComplianceQRGenerated, einvoice.StageState(pkg))
}

func TestStageState_NilPackage(t *testing.T) {
	assert.Equal(t, einvoice.ComplianceUnprocessed, einvoice.StageState(nil))
}

// TRN validity belongs to the full gate, not stage tracking.
func TestStageState_IgnoresTRNs(t *testing.T) {
	pkg := compliantPackage()
	pkg.Invoice.Seller.TRN = "bad"
	assert.Equal(t, einvoice.ComplianceQRGenerated, einvoice.StageState(pkg))
}
