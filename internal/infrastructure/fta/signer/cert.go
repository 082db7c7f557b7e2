// Certificate loading from .p12 (PKCS#12) containers or PEM pairs.

package signer

import (
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"os"

	"golang.org/x/crypto/pkcs12"
)

// LoadFromP12 loads the certificate and private key from a .p12/.pfx file.
// The password may be empty when the container is unprotected.
func LoadFromP12(path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("read p12: %w", err)
	}
	priv, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decode p12: %w", err)
	}
	// pkcs12.Decode returns a single certificate; the leaf is enough here.
	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  priv,
		Leaf:        cert,
	}, nil
}

// LoadFromPEM loads certificate and key from PEM files (separate cert and
// key files, or one combined file).
func LoadFromPEM(certPath, keyPath string) (tls.Certificate, error) {
	if certPath == "" {
		return tls.Certificate{}, nil
	}
	if keyPath == "" {
		// A single file may contain cert+key in PEM.
		return tls.LoadX509KeyPair(certPath, certPath)
	}
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("load PEM pair: %w", err)
	}
	return cert, nil
}

// CertDigestAndIssuerSerial returns the SHA-256 digest of the certificate
// (base64) plus issuer name and serial in hex, for the XAdES signing
// certificate block.
func CertDigestAndIssuerSerial(cert *x509.Certificate) (digestB64, issuerName, serialHex string) {
	h := sha256.Sum256(cert.Raw)
	digestB64 = base64.StdEncoding.EncodeToString(h[:])
	issuerName = cert.Issuer.String()
	serialHex = cert.SerialNumber.Text(16)
	return digestB64, issuerName, serialHex
}
