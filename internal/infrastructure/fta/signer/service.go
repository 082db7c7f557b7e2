// Package signer implements the signing port over invoice digests, plus the
// embedding of the resulting signature into the UBL document.
//
// Two implementations exist: RSASigner (RSA PKCS#1 v1.5 over SHA-256, for
// real certificates) and KeyedSigner (a reversible placeholder for dev and
// test environments without key material). Both are deterministic: signing
// the same digest twice with the same key yields the same value, which keeps
// artifact generation reproducible. That determinism is an implementation
// choice: a future ECDSA or PSS signer may be randomized, and nothing in the
// pipeline depends on it beyond the tests.
package signer

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/subtle"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/Saifnaser12/peergos-sub004/pkg/fta"
)

// ── RSA signer ────────────────────────────────────────────────────────────────

// RSASigner signs invoice digests with an RSA private key (PKCS#1 v1.5,
// SHA-256). The digest string itself is hashed before signing, so the
// signature commits to the exact hex text recorded on the invoice.
type RSASigner struct {
	priv  *rsa.PrivateKey
	cert  *x509.Certificate
	keyID string
}

// NewRSASigner builds the signer from a loaded certificate with its private
// key (see LoadFromP12 / LoadFromPEM).
func NewRSASigner(cert tls.Certificate) (*RSASigner, error) {
	priv, ok := cert.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("signer: certificate must carry an RSA private key")
	}
	if len(cert.Certificate) == 0 {
		return nil, fmt.Errorf("signer: certificate chain is empty")
	}
	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("signer: parse certificate: %w", err)
	}
	return &RSASigner{
		priv:  priv,
		cert:  x509Cert,
		keyID: x509Cert.SerialNumber.Text(16),
	}, nil
}

// Sign implements fta.Signer.
func (s *RSASigner) Sign(digest string) (string, error) {
	if digest == "" {
		return "", fmt.Errorf("signer: digest is empty")
	}
	h := sha256.Sum256([]byte(digest))
	sig, err := rsa.SignPKCS1v15(nil, s.priv, crypto.SHA256, h[:])
	if err != nil {
		return "", fmt.Errorf("signer: sign digest: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify implements fta.Verifier using the signer's own public key.
func (s *RSASigner) Verify(digest, signature string) error {
	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("signer: decode signature: %w", err)
	}
	h := sha256.Sum256([]byte(digest))
	if err := rsa.VerifyPKCS1v15(&s.priv.PublicKey, crypto.SHA256, h[:], raw); err != nil {
		return fmt.Errorf("signer: signature mismatch: %w", err)
	}
	return nil
}

// KeyID implements fta.Signer.
func (s *RSASigner) KeyID() string { return s.keyID }

// Certificate returns the signing certificate for embedding into the XML.
func (s *RSASigner) Certificate() *x509.Certificate { return s.cert }

// ── Keyed placeholder signer ──────────────────────────────────────────────────

// KeyedSigner is the test-grade signer: base64 of the digest concatenated
// with the key marker. It carries no cryptographic strength and exists so dev
// environments without certificates still produce complete packages.
type KeyedSigner struct {
	keyID string
}

// NewKeyedSigner builds the placeholder signer for the given key identifier.
func NewKeyedSigner(keyID string) *KeyedSigner {
	return &KeyedSigner{keyID: keyID}
}

// Sign implements fta.Signer.
func (s *KeyedSigner) Sign(digest string) (string, error) {
	if digest == "" {
		return "", fmt.Errorf("signer: digest is empty")
	}
	return base64.StdEncoding.EncodeToString([]byte(digest + placeholderSeparator + s.keyID)), nil
}

// Verify implements fta.Verifier by reconstructing the expected value.
func (s *KeyedSigner) Verify(digest, signature string) error {
	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("signer: decode signature: %w", err)
	}
	expected := digest + placeholderSeparator + s.keyID
	if subtle.ConstantTimeCompare(raw, []byte(expected)) != 1 {
		got := string(raw)
		if idx := strings.Index(got, placeholderSeparator); idx != -1 {
			return fmt.Errorf("signer: signature was produced over a different digest or key (key %q)", got[idx+len(placeholderSeparator):])
		}
		return fmt.Errorf("signer: malformed placeholder signature")
	}
	return nil
}

// KeyID implements fta.Signer.
func (s *KeyedSigner) KeyID() string { return s.keyID }

// Interface guards.
var (
	_ fta.Signer   = (*RSASigner)(nil)
	_ fta.Verifier = (*RSASigner)(nil)
	_ fta.Signer   = (*KeyedSigner)(nil)
	_ fta.Verifier = (*KeyedSigner)(nil)
)
