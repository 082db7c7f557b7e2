// Embedding of the signature into the UBL document: builds the ds:Signature
// node and injects it into the empty ext:ExtensionContent the XML builder
// reserved. The embedded copy is the submission/archive artifact; the hashed
// canonical document stays untouched.

package signer

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// EmbedParams carries everything the embedded node records.
type EmbedParams struct {
	HashHex   string // lowercase hex SHA-256 of the canonical document
	Signature string // base64 signature value produced by the Signer
	KeyID     string
	SignedAt  time.Time
	// Optional: present when an RSA certificate signed the digest.
	CertB64    string
	CertDigest string
	IssuerName string
	SerialHex  string
}

// EmbedSignature injects a ds:Signature node into the reserved
// ext:ExtensionContent of xmlBytes and returns the signed document.
func EmbedSignature(xmlBytes []byte, p EmbedParams) ([]byte, error) {
	if len(xmlBytes) == 0 {
		return nil, fmt.Errorf("signer: empty XML")
	}
	if p.HashHex == "" || p.Signature == "" {
		return nil, fmt.Errorf("signer: hash and signature are required")
	}
	digestRaw, err := hex.DecodeString(p.HashHex)
	if err != nil {
		return nil, fmt.Errorf("signer: hash is not hex: %w", err)
	}
	sigXML := buildSignatureXML(base64.StdEncoding.EncodeToString(digestRaw), p)
	return injectSignature(xmlBytes, sigXML)
}

// buildSignatureXML assembles the ds:Signature block: SignedInfo with the
// document reference, the signature value, optional KeyInfo and the XAdES
// qualifying properties (signing time, key id, signing certificate).
func buildSignatureXML(docDigestB64 string, p EmbedParams) string {
	var sb strings.Builder
	sb.WriteString(`<ds:Signature xmlns:ds="` + NamespaceDS + `" xmlns:xades="` + NamespaceXAdES + `">`)

	sb.WriteString(`<ds:SignedInfo>`)
	sb.WriteString(`<ds:CanonicalizationMethod Algorithm="` + AlgC14N + `"/>`)
	sb.WriteString(`<ds:SignatureMethod Algorithm="` + AlgRSASHA256 + `"/>`)
	sb.WriteString(`<ds:Reference URI="#` + InvoiceElementID + `">`)
	sb.WriteString(`<ds:DigestMethod Algorithm="` + AlgSHA256 + `"/>`)
	sb.WriteString(`<ds:DigestValue>` + docDigestB64 + `</ds:DigestValue>`)
	sb.WriteString(`</ds:Reference>`)
	sb.WriteString(`</ds:SignedInfo>`)

	sb.WriteString(`<ds:SignatureValue>` + p.Signature + `</ds:SignatureValue>`)
	if p.CertB64 != "" {
		sb.WriteString(`<ds:KeyInfo><ds:X509Data><ds:X509Certificate>` + p.CertB64 + `</ds:X509Certificate></ds:X509Data></ds:KeyInfo>`)
	}

	sb.WriteString(`<ds:Object><xades:QualifyingProperties>`)
	sb.WriteString(`<xades:SignedProperties Id="signed-props">`)
	sb.WriteString(`<xades:SignedSignatureProperties>`)
	sb.WriteString(`<xades:SigningTime>` + p.SignedAt.UTC().Format("2006-01-02T15:04:05.000Z") + `</xades:SigningTime>`)
	if p.CertDigest != "" {
		sb.WriteString(`<xades:SigningCertificate><xades:Cert><xades:CertDigest><ds:DigestMethod Algorithm="` + AlgSHA256 + `"/>`)
		sb.WriteString(`<ds:DigestValue>` + p.CertDigest + `</ds:DigestValue></xades:CertDigest>`)
		sb.WriteString(`<xades:IssuerSerial><ds:X509IssuerName>` + escapeXML(p.IssuerName) + `</ds:X509IssuerName><ds:X509SerialNumber>` + p.SerialHex + `</ds:X509SerialNumber></xades:IssuerSerial></xades:Cert></xades:SigningCertificate>`)
	} else if p.KeyID != "" {
		sb.WriteString(`<xades:SignerRole><xades:ClaimedRoles><xades:ClaimedRole>` + escapeXML(p.KeyID) + `</xades:ClaimedRole></xades:ClaimedRoles></xades:SignerRole>`)
	}
	sb.WriteString(`</xades:SignedSignatureProperties></xades:SignedProperties></xades:QualifyingProperties></ds:Object>`)
	sb.WriteString(`</ds:Signature>`)
	return sb.String()
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

// injectSignature parses the document, locates the first empty
// ext:ExtensionContent under ext:UBLExtensions and appends the signature
// node there.
func injectSignature(xmlBytes []byte, signatureXML string) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, fmt.Errorf("signer: parse XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("signer: document has no root")
	}

	var ublExt *etree.Element
	for _, child := range root.ChildElements() {
		if localTag(child) == "UBLExtensions" {
			ublExt = child
			break
		}
	}
	if ublExt == nil {
		return nil, fmt.Errorf("signer: ext:UBLExtensions not found")
	}

	var extContent *etree.Element
	for _, ext := range ublExt.ChildElements() {
		if localTag(ext) != "UBLExtension" {
			continue
		}
		for _, ec := range ext.ChildElements() {
			if localTag(ec) == "ExtensionContent" && len(ec.ChildElements()) == 0 {
				extContent = ec
				break
			}
		}
		if extContent != nil {
			break
		}
	}
	if extContent == nil {
		return nil, fmt.Errorf("signer: no empty ext:ExtensionContent reserved for the signature")
	}

	sigDoc := etree.NewDocument()
	if err := sigDoc.ReadFromString(signatureXML); err != nil {
		return nil, fmt.Errorf("signer: parse signature node: %w", err)
	}
	if sigRoot := sigDoc.Root(); sigRoot != nil {
		extContent.AddChild(sigRoot)
	}

	var out bytes.Buffer
	if _, err := doc.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("signer: serialize signed document: %w", err)
	}
	return out.Bytes(), nil
}

// localTag strips an explicit prefix from the parsed tag ("ext:UBLExtension"
// and "UBLExtension" compare equal).
func localTag(el *etree.Element) string {
	if idx := strings.Index(el.Tag, ":"); idx != -1 {
		return el.Tag[idx+1:]
	}
	return el.Tag
}
