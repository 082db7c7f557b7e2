// Package einvoice is the application layer of the Phase 2 compliance flow:
// the artifact pipeline, the compliance gate and the async orchestrator that
// drives both against persistence and submission.
package einvoice

import (
	"context"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Saifnaser12/peergos-sub004/internal/domain"
	"github.com/Saifnaser12/peergos-sub004/internal/domain/entity"
	rules "github.com/Saifnaser12/peergos-sub004/internal/domain/einvoice"
	ftainfra "github.com/Saifnaser12/peergos-sub004/internal/infrastructure/fta"
	"github.com/Saifnaser12/peergos-sub004/internal/infrastructure/fta/signer"
	"github.com/Saifnaser12/peergos-sub004/pkg/fta"
)

// QREncoder renders a QR payload into an embeddable data URL. Injected so
// tests can force encoding failures without touching the barcode library.
type QREncoder func(payload string) (string, error)

// certified is satisfied by signers backed by an X.509 certificate; the
// pipeline embeds the certificate details into the signed document when
// available.
type certified interface {
	Certificate() *x509.Certificate
}

// Pipeline generates the full compliance artifact chain for one invoice:
// validation, deterministic XML, canonical SHA-256 hash, digital signature
// and QR code. Every primitive is injected; the pipeline owns only the
// sequencing.
type Pipeline struct {
	validator *rules.Validator
	builder   *ftainfra.XMLBuilder
	signer    fta.Signer
	encodeQR  QREncoder
	now       func() time.Time
}

// PipelineOption configures optional collaborators.
type PipelineOption func(*Pipeline)

// WithQREncoder replaces the QR encoder.
func WithQREncoder(enc QREncoder) PipelineOption {
	return func(p *Pipeline) { p.encodeQR = enc }
}

// WithClock replaces the signing-time source.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline wires the pipeline from its collaborators.
func NewPipeline(validator *rules.Validator, builder *ftainfra.XMLBuilder, sgn fta.Signer, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		validator: validator,
		builder:   builder,
		signer:    sgn,
		encodeQR:  ftainfra.EncodeQRDataURL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type qrResult struct {
	dataURL string
	err     error
}

// Process runs the whole artifact chain on a snapshot of inv and returns an
// immutable package. The caller's invoice is never mutated.
//
// Failure modes map to the domain taxonomy: invalid input returns a
// *rules.ValidationError, serialization trouble wraps domain.ErrSerialization,
// signing trouble wraps domain.ErrCrypto and QR trouble wraps
// domain.ErrEncoding. A failed step never yields a partial package.
func (p *Pipeline) Process(ctx context.Context, inv *entity.Invoice) (*entity.InvoicePackage, error) {
	if res := p.validator.Validate(inv); !res.IsValid() {
		return nil, &rules.ValidationError{Result: res}
	}
	snap := inv.Snapshot()

	xmlBytes, err := p.builder.Build(&snap)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSerialization, err)
	}
	canonical, err := ftainfra.Canonicalize(xmlBytes)
	if err != nil {
		return nil, err
	}
	hash := ftainfra.HashHex(canonical)

	// The QR depends only on invoice fields and the hash, not on the
	// signature, so it renders concurrently with signing.
	qrCh := make(chan qrResult, 1)
	go func() {
		payload := ftainfra.BuildQRPayload(
			snap.Seller.TRN, snap.Buyer.TRN, snap.IssueDate,
			p.total(&snap), snap.VATAmount, hash,
		)
		dataURL, qrErr := p.encodeQR(payload)
		qrCh <- qrResult{dataURL: dataURL, err: qrErr}
	}()

	signature, err := p.signer.Sign(hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCrypto, err)
	}
	signedAt := p.now().UTC()

	signedXML, err := p.embedSignature(canonical, hash, signature, signedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: embed signature: %v", domain.ErrCrypto, err)
	}

	qr := <-qrCh
	if qr.err != nil {
		return nil, qr.err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return &entity.InvoicePackage{
		Invoice:       snap,
		XML:           string(canonical),
		SignedXML:     string(signedXML),
		Hash:          hash,
		Signature:     signature,
		SignatureDate: signedAt,
		QRDataURL:     qr.dataURL,
	}, nil
}

// embedSignature produces the submission copy: the canonical document with
// the ds:Signature node injected. Certificate details come along when the
// signer carries one.
func (p *Pipeline) embedSignature(canonical []byte, hash, signature string, signedAt time.Time) ([]byte, error) {
	params := signer.EmbedParams{
		HashHex:   hash,
		Signature: signature,
		KeyID:     p.signer.KeyID(),
		SignedAt:  signedAt,
	}
	if c, ok := p.signer.(certified); ok {
		if cert := c.Certificate(); cert != nil {
			params.CertB64 = base64.StdEncoding.EncodeToString(cert.Raw)
			params.CertDigest, params.IssuerName, params.SerialHex = signer.CertDigestAndIssuerSerial(cert)
		}
	}
	return signer.EmbedSignature(canonical, params)
}

func (p *Pipeline) total(inv *entity.Invoice) decimal.Decimal {
	if inv.Total.IsZero() {
		return inv.Amount.Add(inv.VATAmount)
	}
	return inv.Total
}
