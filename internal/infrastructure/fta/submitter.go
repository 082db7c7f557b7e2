package fta

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ── Environment constants ─────────────────────────────────────────────────────

const (
	// AppEnvDev generates and signs locally; nothing is submitted.
	AppEnvDev = "dev"
	// AppEnvTest submits to the FTA pilot endpoint.
	AppEnvTest = "test"
	// AppEnvProd submits to the FTA production endpoint.
	AppEnvProd = "prod"

	submitURLTest = "https://einv-pilot.tax.gov.ae/api/v1/invoices"
	submitURLProd = "https://einv.tax.gov.ae/api/v1/invoices"
)

// ── Port ──────────────────────────────────────────────────────────────────────

// SubmissionBundle is the opaque package handed to the FTA: the submission
// service consumes XML, hash and signature without knowing pipeline internals.
type SubmissionBundle struct {
	InvoiceNumber string `json:"invoiceNumber"`
	SellerTRN     string `json:"sellerTrn"`
	SignedXML     string `json:"signedXml"` // base64
	Hash          string `json:"hash"`
	Signature     string `json:"signature"`
}

// SubmitResult is the FTA's answer to a submission.
type SubmitResult struct {
	SubmissionID string // clearance identifier returned by the FTA
	Accepted     bool
	Errors       string // rejection messages, empty when accepted
}

// Submitter is the outbound port for invoice submission. The concrete
// implementation talks HTTP; tests inject a stub.
type Submitter interface {
	// Submit delivers the bundle to the FTA endpoint for env ("test"|"prod").
	Submit(ctx context.Context, bundle SubmissionBundle, env string) (*SubmitResult, error)
}

// ── HTTP implementation ───────────────────────────────────────────────────────

// HTTPSubmitter implements Submitter against the FTA clearance API. The
// endpoint can take several seconds to answer, hence the generous timeout.
type HTTPSubmitter struct {
	httpClient  *http.Client
	urlOverride string
}

// NewHTTPSubmitter builds the client. urlOverride replaces the per-env
// endpoint when non-empty (used against local simulators).
func NewHTTPSubmitter(urlOverride string) *HTTPSubmitter {
	return &HTTPSubmitter{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		urlOverride: urlOverride,
	}
}

type submitResponse struct {
	SubmissionID string   `json:"submissionId"`
	Accepted     bool     `json:"accepted"`
	Errors       []string `json:"errors"`
}

// Submit posts the bundle as JSON and parses the clearance response.
func (c *HTTPSubmitter) Submit(ctx context.Context, bundle SubmissionBundle, env string) (*SubmitResult, error) {
	url, err := c.endpoint(env)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("fta: marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("fta: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("fta: submission cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("fta: submission call failed: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return nil, fmt.Errorf("fta: read response: %w", err)
	}

	var parsed submitResponse
	if err := json.Unmarshal(rawBody, &parsed); err != nil {
		// Keep the raw body visible instead of aborting: the caller records
		// it as a rejection reason.
		return &SubmitResult{
			Accepted: false,
			Errors:   "unparseable FTA response: " + string(rawBody),
		}, nil
	}

	return &SubmitResult{
		SubmissionID: parsed.SubmissionID,
		Accepted:     parsed.Accepted,
		Errors:       strings.Join(parsed.Errors, "; "),
	}, nil
}

func (c *HTTPSubmitter) endpoint(env string) (string, error) {
	if c.urlOverride != "" {
		return c.urlOverride, nil
	}
	switch env {
	case AppEnvTest:
		return submitURLTest, nil
	case AppEnvProd:
		return submitURLProd, nil
	default:
		return "", fmt.Errorf("fta: unknown environment %q (use %q or %q)", env, AppEnvTest, AppEnvProd)
	}
}

// EncodeSignedXML base64-encodes the signed document for the bundle.
func EncodeSignedXML(signedXML string) string {
	return base64.StdEncoding.EncodeToString([]byte(signedXML))
}
