package einvoice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Saifnaser12/peergos-sub004/internal/domain/entity"
	"github.com/Saifnaser12/peergos-sub004/internal/domain/repository"
	ftainfra "github.com/Saifnaser12/peergos-sub004/internal/infrastructure/fta"
	"github.com/Saifnaser12/peergos-sub004/pkg/logger"
)

// processTimeout bounds one full process-and-submit run.
const processTimeout = 30 * time.Second

// Orchestrator drives the compliance flow for persisted invoices: load,
// run the pipeline, store the artifacts, then submit (or simulate in dev)
// and record the outcome.
type Orchestrator struct {
	pipeline  *Pipeline
	invoices  repository.InvoiceRepository
	submitter ftainfra.Submitter
	env       string // fta.AppEnvDev / AppEnvTest / AppEnvProd
	log       *logger.Logger
}

// NewOrchestrator wires the orchestrator. submitter may be nil in dev.
func NewOrchestrator(pipeline *Pipeline, invoices repository.InvoiceRepository, submitter ftainfra.Submitter, env string, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		pipeline:  pipeline,
		invoices:  invoices,
		submitter: submitter,
		env:       env,
		log:       log,
	}
}

// ProcessAsync launches Process in the background. Fire and forget: the
// outcome lands in the invoice row, the HTTP layer answers 202 immediately.
func (o *Orchestrator) ProcessAsync(invoiceID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()
		if err := o.Process(ctx, invoiceID); err != nil {
			o.log.Error().Err(err).Str("invoice_id", invoiceID).Msg("invoice processing failed")
		}
	}()
}

// Process runs the pipeline on a stored DRAFT invoice, persists the artifacts
// as SIGNED, then submits according to the environment. Processing errors are
// recorded on the invoice so operators can see them; the invoice stays in its
// previous status in that case.
func (o *Orchestrator) Process(ctx context.Context, invoiceID string) error {
	inv, err := o.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("load invoice: %w", err)
	}
	if inv == nil {
		return fmt.Errorf("invoice %s not found", invoiceID)
	}
	if inv.Status != entity.StatusDraft {
		return fmt.Errorf("invoice %s is %s, only DRAFT can be processed", invoiceID, inv.Status)
	}

	markError := func(stage string, cause error) error {
		inv.SubmissionErrors = stage + ": " + cause.Error()
		if updErr := o.invoices.UpdateArtifacts(ctx, inv); updErr != nil {
			o.log.Error().Err(updErr).Str("invoice_id", invoiceID).Msg("could not record processing error")
		}
		return fmt.Errorf("%s: %w", stage, cause)
	}

	pkg, err := o.pipeline.Process(ctx, inv)
	if err != nil {
		return markError("pipeline", err)
	}

	sigDate := pkg.SignatureDate
	inv.Hash = pkg.Hash
	inv.SignatureValue = pkg.Signature
	inv.SignatureDate = &sigDate
	inv.QRCode = pkg.QRDataURL
	inv.Status = entity.StatusSigned
	inv.SubmissionErrors = ""
	if err := o.invoices.UpdateArtifacts(ctx, inv); err != nil {
		return fmt.Errorf("persist artifacts: %w", err)
	}

	o.log.Info().
		Str("invoice_id", inv.ID).
		Str("invoice_number", inv.InvoiceNumber).
		Str("hash", pkg.Hash).
		Msg("compliance artifacts generated")

	return o.submit(ctx, inv, pkg)
}

// submit hands the signed package to the FTA. In dev the clearance is
// simulated locally so the rest of the flow stays exercisable without
// credentials.
func (o *Orchestrator) submit(ctx context.Context, inv *entity.Invoice, pkg *entity.InvoicePackage) error {
	if o.env == ftainfra.AppEnvDev || o.submitter == nil {
		inv.SubmissionID = "SIM-" + uuid.NewString()
		inv.Status = entity.StatusAcknowledged
		if err := o.invoices.UpdateArtifacts(ctx, inv); err != nil {
			return fmt.Errorf("persist simulated acknowledgement: %w", err)
		}
		o.log.Info().Str("invoice_id", inv.ID).Str("submission_id", inv.SubmissionID).
			Msg("dev environment, clearance simulated")
		return nil
	}

	inv.Status = entity.StatusSubmitted
	if err := o.invoices.UpdateArtifacts(ctx, inv); err != nil {
		return fmt.Errorf("persist submitted status: %w", err)
	}

	bundle := ftainfra.SubmissionBundle{
		InvoiceNumber: inv.InvoiceNumber,
		SellerTRN:     inv.Seller.TRN,
		SignedXML:     ftainfra.EncodeSignedXML(pkg.SignedXML),
		Hash:          pkg.Hash,
		Signature:     pkg.Signature,
	}
	result, err := o.submitter.Submit(ctx, bundle, o.env)
	if err != nil {
		inv.SubmissionErrors = "submit: " + err.Error()
		if updErr := o.invoices.UpdateArtifacts(ctx, inv); updErr != nil {
			o.log.Error().Err(updErr).Str("invoice_id", inv.ID).Msg("could not record submission error")
		}
		return fmt.Errorf("submit: %w", err)
	}

	inv.SubmissionID = result.SubmissionID
	if result.Accepted {
		inv.Status = entity.StatusAcknowledged
		inv.SubmissionErrors = ""
	} else {
		inv.Status = entity.StatusRejected
		inv.SubmissionErrors = result.Errors
	}
	if err := o.invoices.UpdateArtifacts(ctx, inv); err != nil {
		return fmt.Errorf("persist submission outcome: %w", err)
	}

	o.log.Info().
		Str("invoice_id", inv.ID).
		Str("submission_id", result.SubmissionID).
		Bool("accepted", result.Accepted).
		Msg("submission completed")
	return nil
}

// Report evaluates the Phase 2 gate for a stored invoice, reconstructing the
// package view from the persisted artifacts.
func (o *Orchestrator) Report(ctx context.Context, invoiceID string) (*entity.Invoice, ComplianceReport, error) {
	inv, err := o.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, ComplianceReport{}, fmt.Errorf("load invoice: %w", err)
	}
	if inv == nil {
		return nil, ComplianceReport{}, nil
	}
	pkg := PackageFromInvoice(inv)
	return inv, Evaluate(pkg), nil
}

// PackageFromInvoice rebuilds the package view of a persisted invoice. Only
// the fields the compliance gate inspects are populated.
func PackageFromInvoice(inv *entity.Invoice) *entity.InvoicePackage {
	if inv == nil {
		return nil
	}
	pkg := &entity.InvoicePackage{
		Invoice:   inv.Snapshot(),
		Hash:      inv.Hash,
		Signature: inv.SignatureValue,
		QRDataURL: inv.QRCode,
	}
	if inv.SignatureDate != nil {
		pkg.SignatureDate = *inv.SignatureDate
	}
	return pkg
}
