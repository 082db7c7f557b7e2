// Constants for the embedded XML signature node.

package signer

// XMLDSig / XAdES namespaces and algorithm identifiers.
const (
	NamespaceDS    = "http://www.w3.org/2000/09/xmldsig#"
	NamespaceXAdES = "http://uri.etsi.org/01903/v1.3.2#"
	AlgC14N        = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	AlgRSASHA256   = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	AlgSHA256      = "http://www.w3.org/2000/09/xmldsig#sha256"
)

// InvoiceElementID is the Id of the root element the Reference points at
// (must match the Id attribute the XML builder writes on <Invoice>).
const InvoiceElementID = "invoice-id"

// placeholderSeparator is the marker of the dev/test keyed signer. The value
// is part of the persisted signature format; changing it invalidates every
// signature produced by earlier builds.
const placeholderSeparator = "::signed-by-"
