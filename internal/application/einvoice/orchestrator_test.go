package einvoice_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appeinvoice "github.com/Saifnaser12/peergos-sub004/internal/application/einvoice"
	"github.com/Saifnaser12/peergos-sub004/internal/domain/entity"
	infrafta "github.com/Saifnaser12/peergos-sub004/internal/infrastructure/fta"
	"github.com/Saifnaser12/peergos-sub004/pkg/logger"
)

// ── stubs ─────────────────────────────────────────────────────────────────────

type memoryRepo struct {
	mu       sync.Mutex
	invoices map[string]*entity.Invoice
}

func newMemoryRepo(seed ...*entity.Invoice) *memoryRepo {
	r := &memoryRepo{invoices: map[string]*entity.Invoice{}}
	for _, inv := range seed {
		cp := inv.Snapshot()
		r.invoices[inv.ID] = &cp
	}
	return r
}

func (r *memoryRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := inv.Snapshot()
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := inv.Snapshot()
	return &cp, nil
}

func (r *memoryRepo) UpdateArtifacts(_ context.Context, inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := inv.Snapshot()
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *memoryRepo) ListByStatus(_ context.Context, status string, limit int) ([]*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.Status == status && len(out) < limit {
			cp := inv.Snapshot()
			out = append(out, &cp)
		}
	}
	return out, nil
}

type stubSubmitter struct {
	result *infrafta.SubmitResult
	err    error
	bundle infrafta.SubmissionBundle
}

func (s *stubSubmitter) Submit(_ context.Context, bundle infrafta.SubmissionBundle, _ string) (*infrafta.SubmitResult, error) {
	s.bundle = bundle
	return s.result, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "test", Level: "error"})
}

// ── dev environment ───────────────────────────────────────────────────────────

// Dev runs never call the FTA: the clearance is simulated locally.
func TestOrchestratorProcess_DevSimulatesClearance(t *testing.T) {
	inv := pipelineInvoice()
	repo := newMemoryRepo(inv)
	orch := appeinvoice.NewOrchestrator(newTestPipeline(), repo, nil, infrafta.AppEnvDev, testLogger())

	require.NoError(t, orch.Process(context.Background(), inv.ID))

	stored, err := repo.GetByID(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAcknowledged, stored.Status)
	assert.True(t, strings.HasPrefix(stored.SubmissionID, "SIM-"))
	assert.Len(t, stored.Hash, 64)
	assert.NotEmpty(t, stored.SignatureValue)
	assert.NotEmpty(t, stored.QRCode)
	require.NotNil(t, stored.SignatureDate)
}

// ── submission outcomes ───────────────────────────────────────────────────────

func TestOrchestratorProcess_AcceptedSubmission(t *testing.T) {
	inv := pipelineInvoice()
	repo := newMemoryRepo(inv)
	sub := &stubSubmitter{result: &infrafta.SubmitResult{SubmissionID: "FTA-001", Accepted: true}}
	orch := appeinvoice.NewOrchestrator(newTestPipeline(), repo, sub, infrafta.AppEnvTest, testLogger())

	require.NoError(t, orch.Process(context.Background(), inv.ID))

	stored, _ := repo.GetByID(context.Background(), inv.ID)
	assert.Equal(t, entity.StatusAcknowledged, stored.Status)
	assert.Equal(t, "FTA-001", stored.SubmissionID)
	assert.Empty(t, stored.SubmissionErrors)

	// Bundle content matches the persisted artifacts.
	assert.Equal(t, inv.InvoiceNumber, sub.bundle.InvoiceNumber)
	assert.Equal(t, stored.Hash, sub.bundle.Hash)
	assert.NotEmpty(t, sub.bundle.SignedXML)
}

func TestOrchestratorProcess_RejectedSubmission(t *testing.T) {
	inv := pipelineInvoice()
	repo := newMemoryRepo(inv)
	sub := &stubSubmitter{result: &infrafta.SubmitResult{SubmissionID: "FTA-002", Accepted: false, Errors: "schema mismatch"}}
	orch := appeinvoice.NewOrchestrator(newTestPipeline(), repo, sub, infrafta.AppEnvTest, testLogger())

	require.NoError(t, orch.Process(context.Background(), inv.ID))

	stored, _ := repo.GetByID(context.Background(), inv.ID)
	assert.Equal(t, entity.StatusRejected, stored.Status)
	assert.Equal(t, "schema mismatch", stored.SubmissionErrors)
}

// ── guards and error recording ────────────────────────────────────────────────

func TestOrchestratorProcess_OnlyDraft(t *testing.T) {
	inv := pipelineInvoice()
	inv.Status = entity.StatusSigned
	repo := newMemoryRepo(inv)
	orch := appeinvoice.NewOrchestrator(newTestPipeline(), repo, nil, infrafta.AppEnvDev, testLogger())

	err := orch.Process(context.Background(), inv.ID)
	assert.Error(t, err)
}

func TestOrchestratorProcess_UnknownInvoice(t *testing.T) {
	orch := appeinvoice.NewOrchestrator(newTestPipeline(), newMemoryRepo(), nil, infrafta.AppEnvDev, testLogger())
	assert.Error(t, orch.Process(context.Background(), "missing-id"))
}

// Pipeline failures are recorded on the invoice row for operators.
func TestOrchestratorProcess_RecordsPipelineFailure(t *testing.T) {
	inv := pipelineInvoice()
	inv.Seller.TRN = "bad"
	repo := newMemoryRepo(inv)
	orch := appeinvoice.NewOrchestrator(newTestPipeline(), repo, nil, infrafta.AppEnvDev, testLogger())

	err := orch.Process(context.Background(), inv.ID)
	require.Error(t, err)

	stored, _ := repo.GetByID(context.Background(), inv.ID)
	assert.Equal(t, entity.StatusDraft, stored.Status, "status must not advance on failure")
	assert.Contains(t, stored.SubmissionErrors, "pipeline")
}

// ── reporting ─────────────────────────────────────────────────────────────────

func TestOrchestratorReport_AfterProcessing(t *testing.T) {
	inv := pipelineInvoice()
	repo := newMemoryRepo(inv)
	orch := appeinvoice.NewOrchestrator(newTestPipeline(), repo, nil, infrafta.AppEnvDev, testLogger())
	require.NoError(t, orch.Process(context.Background(), inv.ID))

	stored, report, err := orch.Report(context.Background(), inv.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, report.Compliant())
}

func TestOrchestratorReport_UnprocessedInvoice(t *testing.T) {
	inv := pipelineInvoice()
	repo := newMemoryRepo(inv)
	orch := appeinvoice.NewOrchestrator(newTestPipeline(), repo, nil, infrafta.AppEnvDev, testLogger())

	_, report, err := orch.Report(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, appeinvoice.ComplianceNonCompliant, report.State)
	assert.Contains(t, report.Errors, appeinvoice.MsgMissingHash)
}
