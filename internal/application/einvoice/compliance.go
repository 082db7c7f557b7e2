package einvoice

import (
	"github.com/Saifnaser12/peergos-sub004/internal/domain/entity"
	"github.com/Saifnaser12/peergos-sub004/pkg/fta"
)

// Compliance states of a package snapshot. UNPROCESSED through QR_GENERATED
// track pipeline progress; COMPLIANT and NON_COMPLIANT are terminal for a
// given snapshot. Reprocessing produces a new snapshot, history is never
// rewritten.
const (
	ComplianceUnprocessed  = "UNPROCESSED"
	ComplianceHashed       = "HASHED"
	ComplianceSigned       = "SIGNED"
	ComplianceQRGenerated  = "QR_GENERATED"
	ComplianceCompliant    = "COMPLIANT"
	ComplianceNonCompliant = "NON_COMPLIANT"
)

// Itemized requirement messages. These exact strings are part of the
// contract with consumers displaying compliance results.
const (
	MsgMissingHash      = "Missing invoice hash"
	MsgMissingSignature = "Missing digital signature"
	MsgMissingQR        = "Missing QR code"
	MsgInvalidSellerTRN = "Invalid seller TRN"
	MsgInvalidBuyerTRN  = "Invalid buyer TRN"
)

// ComplianceReport is the result of the Phase 2 gate. It is a value, never an
// error: NON_COMPLIANT does not abort batch processing, callers branch on it
// and may retry the missing step.
type ComplianceReport struct {
	State  string   `json:"state"`
	Errors []string `json:"errors,omitempty"`
}

// Compliant reports whether the package passed the gate.
func (r ComplianceReport) Compliant() bool { return r.State == ComplianceCompliant }

// StageState returns how far the pipeline got with a package: the furthest
// state whose artifact is present. Artifacts are strictly ordered
// (hash → signature → QR), so the first gap decides.
func StageState(pkg *entity.InvoicePackage) string {
	switch {
	case pkg == nil || pkg.Hash == "":
		return ComplianceUnprocessed
	case pkg.Signature == "":
		return ComplianceHashed
	case pkg.QRDataURL == "":
		return ComplianceSigned
	default:
		return ComplianceQRGenerated
	}
}

// Evaluate runs the final Phase 2 check on a package snapshot: all four
// artifacts present (hash, signature, QR, XML is implied by the hash) and
// both party TRNs valid. Every failed requirement is itemized; a partial
// package, for example one abandoned mid-pipeline, always comes out
// NON_COMPLIANT, never silently accepted.
//
// The buyer TRN requirement is waived for simplified invoices with no buyer
// TRN at all; a present-but-malformed one still fails.
func Evaluate(pkg *entity.InvoicePackage) ComplianceReport {
	var errs []string

	if pkg == nil {
		return ComplianceReport{
			State: ComplianceNonCompliant,
			Errors: []string{
				MsgMissingHash, MsgMissingSignature, MsgMissingQR,
				MsgInvalidSellerTRN, MsgInvalidBuyerTRN,
			},
		}
	}

	if pkg.Hash == "" {
		errs = append(errs, MsgMissingHash)
	}
	if pkg.Signature == "" {
		errs = append(errs, MsgMissingSignature)
	}
	if pkg.QRDataURL == "" {
		errs = append(errs, MsgMissingQR)
	}
	if !fta.ValidTRN(pkg.Invoice.Seller.TRN) {
		errs = append(errs, MsgInvalidSellerTRN)
	}
	buyerTRN := pkg.Invoice.Buyer.TRN
	buyerWaived := pkg.Invoice.Type == entity.InvoiceTypeSimplified && buyerTRN == ""
	if !buyerWaived && !fta.ValidTRN(buyerTRN) {
		errs = append(errs, MsgInvalidBuyerTRN)
	}

	if len(errs) > 0 {
		return ComplianceReport{State: ComplianceNonCompliant, Errors: errs}
	}
	return ComplianceReport{State: ComplianceCompliant}
}
