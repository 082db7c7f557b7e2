// Package fta implements the UAE FTA Phase 2 artifact generation: UBL 2.1
// XML serialization, canonical hashing, QR payload encoding and submission.
package fta

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Saifnaser12/peergos-sub004/internal/domain/entity"
	pkgfta "github.com/Saifnaser12/peergos-sub004/pkg/fta"
)

// UBL 2.1 namespaces. The document is UBL-shaped so FTA-side tooling and
// generic UBL validators can read it.
const (
	// Default namespace (UBL Invoice)
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	// Common Aggregate Components
	NsCac = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	// Common Basic Components
	NsCbc = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
	// Extension Components (carries the signature placeholder)
	NsExt = "urn:oasis:names:specification:ubl:schema:xsd:CommonExtensionComponents-2"
	// XML Digital Signature
	NsDs = "http://www.w3.org/2000/09/xmldsig#"
)

// InvoiceElementID is the Id attribute of the root element; the embedded
// signature references it.
const InvoiceElementID = "invoice-id"

// XMLBuilder serializes a validated invoice into a deterministic UBL 2.1
// document. The element order inside every block is fixed (see the write*
// methods); re-serializing an equivalent invoice always yields byte-identical
// output, which the hash engine depends on.
//
// The builder does not re-validate: serializing an invoice that failed
// validation is undefined behavior.
type XMLBuilder struct{}

// NewXMLBuilder creates the serializer.
func NewXMLBuilder() *XMLBuilder {
	return &XMLBuilder{}
}

// Build generates the Invoice document bytes.
func (b *XMLBuilder) Build(inv *entity.Invoice) ([]byte, error) {
	if inv == nil {
		return nil, fmt.Errorf("fta: invoice is required")
	}
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Space: NsInvoice, Local: "Invoice"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "Id"}, Value: InvoiceElementID},
			{Name: xml.Name{Local: "xmlns"}, Value: NsInvoice},
			{Name: xml.Name{Local: "xmlns:cac"}, Value: NsCac},
			{Name: xml.Name{Local: "xmlns:cbc"}, Value: NsCbc},
			{Name: xml.Name{Local: "xmlns:ds"}, Value: NsDs},
			{Name: xml.Name{Local: "xmlns:ext"}, Value: NsExt},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}

	// ext:UBLExtensions always first child: one empty ExtensionContent
	// reserved for the ds:Signature node the signer injects later.
	b.writeSignaturePlaceholder(enc)

	currency := inv.Currency
	if currency == "" {
		currency = pkgfta.CurrencyAED
	}

	writeCbc(enc, "UBLVersionID", "2.1")
	writeCbc(enc, "CustomizationID", "urn:fta:gov:ae:einvoice:1.0")
	writeCbc(enc, "ProfileID", "FTA Phase 2 Tax Invoice")
	writeCbc(enc, "ID", inv.InvoiceNumber)
	if inv.ID != "" {
		writeCbc(enc, "UUID", inv.ID)
	}
	writeCbc(enc, "IssueDate", inv.IssueDate.Format("2006-01-02"))
	if inv.DueDate != nil {
		writeCbc(enc, "DueDate", inv.DueDate.Format("2006-01-02"))
	}
	writeCbc(enc, "InvoiceTypeCode", typeCode(inv.Type))
	writeCbc(enc, "DocumentCurrencyCode", currency)
	writeCbc(enc, "LineCountNumeric", strconv.Itoa(len(inv.Items)))

	b.writeParty(enc, "AccountingSupplierParty", inv.Seller)
	b.writeParty(enc, "AccountingCustomerParty", inv.Buyer)

	b.writeTaxTotal(enc, inv, currency)
	b.writeMonetaryTotal(enc, inv, currency)

	for _, item := range inv.Items {
		b.writeInvoiceLine(enc, item, currency)
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeSignaturePlaceholder emits ext:UBLExtensions with a single empty
// ExtensionContent. The signer injects ds:Signature there; keeping the
// placeholder in the hashed document means embedding the signature later does
// not disturb the element structure the hash covered.
func (b *XMLBuilder) writeSignaturePlaceholder(enc *xml.Encoder) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsExt, Local: "UBLExtensions"}})
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsExt, Local: "UBLExtension"}})
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsExt, Local: "ExtensionContent"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsExt, Local: "ExtensionContent"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsExt, Local: "UBLExtension"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsExt, Local: "UBLExtensions"}})
}

// writeParty emits a party block. Fixed order: identification (TRN), name,
// postal address, tax scheme, optional contact.
func (b *XMLBuilder) writeParty(enc *xml.Encoder, local string, p entity.Party) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: local}})
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "Party"}})

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "PartyIdentification"}})
	writeCbcWithAttr(enc, "ID", p.TRN, "schemeID", "TRN")
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "PartyIdentification"}})

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "PartyName"}})
	writeCbc(enc, "Name", p.Name)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "PartyName"}})

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "PostalAddress"}})
	writeCbc(enc, "StreetName", p.Address.Street)
	writeCbc(enc, "CityName", p.Address.City)
	if p.Address.PostalCode != "" {
		writeCbc(enc, "PostalZone", p.Address.PostalCode)
	}
	writeCbc(enc, "CountrySubentity", p.Address.Emirate)
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "Country"}})
	writeCbc(enc, "IdentificationCode", countryCode(p.Address.Country))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "Country"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "PostalAddress"}})

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "PartyTaxScheme"}})
	writeCbc(enc, "CompanyID", p.TRN)
	b.writeTaxScheme(enc)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "PartyTaxScheme"}})

	if p.Contact != nil {
		_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "Contact"}})
		if p.Contact.Phone != "" {
			writeCbc(enc, "Telephone", p.Contact.Phone)
		}
		if p.Contact.Email != "" {
			writeCbc(enc, "ElectronicMail", p.Contact.Email)
		}
		_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "Contact"}})
	}

	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "Party"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: local}})
}

func (b *XMLBuilder) writeTaxScheme(enc *xml.Encoder) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxScheme"}})
	writeCbc(enc, "ID", pkgfta.TaxSchemeVAT)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxScheme"}})
}

func (b *XMLBuilder) writeTaxTotal(enc *xml.Encoder, inv *entity.Invoice, currency string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxTotal"}})
	writeCbcAmount(enc, "TaxAmount", formatAmount(inv.VATAmount), currency)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxTotal"}})
}

func (b *XMLBuilder) writeMonetaryTotal(enc *xml.Encoder, inv *entity.Invoice, currency string) {
	total := inv.Total
	if total.IsZero() {
		total = inv.Amount.Add(inv.VATAmount)
	}
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "LegalMonetaryTotal"}})
	writeCbcAmount(enc, "LineExtensionAmount", formatAmount(inv.Amount), currency)
	writeCbcAmount(enc, "TaxExclusiveAmount", formatAmount(inv.Amount), currency)
	writeCbcAmount(enc, "TaxInclusiveAmount", formatAmount(total), currency)
	writeCbcAmount(enc, "PayableAmount", formatAmount(total), currency)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "LegalMonetaryTotal"}})
}

// writeInvoiceLine emits a line block. Fixed order: id, quantity, extension
// amount, tax subtotal, item, price.
func (b *XMLBuilder) writeInvoiceLine(enc *xml.Encoder, item entity.LineItem, currency string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "InvoiceLine"}})
	writeCbc(enc, "ID", item.ID)
	writeCbc(enc, "InvoicedQuantity", item.Quantity.String())
	writeCbcAmount(enc, "LineExtensionAmount", formatAmount(item.TotalAmount), currency)

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxTotal"}})
	writeCbcAmount(enc, "TaxAmount", formatAmount(item.TaxAmount), currency)
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxSubtotal"}})
	writeCbcAmount(enc, "TaxableAmount", formatAmount(item.TaxableAmount), currency)
	writeCbcAmount(enc, "TaxAmount", formatAmount(item.TaxAmount), currency)
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxCategory"}})
	writeCbc(enc, "ID", item.TaxCategory)
	writeCbc(enc, "Percent", item.TaxRate.String())
	if item.ExemptionReason != "" {
		writeCbc(enc, "TaxExemptionReason", item.ExemptionReason)
	}
	b.writeTaxScheme(enc)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxCategory"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxSubtotal"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxTotal"}})

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "Item"}})
	writeCbc(enc, "Name", item.Description)
	if item.ProductCode != "" {
		_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "SellersItemIdentification"}})
		writeCbc(enc, "ID", item.ProductCode)
		_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "SellersItemIdentification"}})
	}
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "Item"}})

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "Price"}})
	writeCbcAmount(enc, "PriceAmount", formatAmount(item.UnitPrice), currency)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "Price"}})

	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "InvoiceLine"}})
}

func typeCode(invoiceType string) string {
	switch invoiceType {
	case entity.InvoiceTypeCreditNote:
		return pkgfta.TypeCodeCreditNote
	case entity.InvoiceTypeDebitNote:
		return pkgfta.TypeCodeDebitNote
	default:
		return pkgfta.TypeCodeInvoice
	}
}

func countryCode(country string) string {
	if country == "" {
		return pkgfta.CountryAE
	}
	return country
}

// formatAmount: two decimals, dot separator, no thousands separator.
func formatAmount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

func writeCbc(enc *xml.Encoder, local, value string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCbc, Local: local}})
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCbc, Local: local}})
}

func writeCbcAmount(enc *xml.Encoder, local, value, currency string) {
	attr := []xml.Attr{}
	if currency != "" {
		attr = append(attr, xml.Attr{Name: xml.Name{Local: "currencyID"}, Value: currency})
	}
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCbc, Local: local}, Attr: attr})
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCbc, Local: local}})
}

func writeCbcWithAttr(enc *xml.Encoder, local, value, attrLocal, attrValue string) {
	_ = enc.EncodeToken(xml.StartElement{
		Name: xml.Name{Space: NsCbc, Local: local},
		Attr: []xml.Attr{{Name: xml.Name{Local: attrLocal}, Value: attrValue}},
	})
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCbc, Local: local}})
}
