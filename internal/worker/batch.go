package worker

import (
	"context"

	"github.com/ppiankov/driftscan/internal/model"
)

// Evaluator gathers evidence for a single claim
type Evaluator interface {
	Evaluate(ctx context.Context, claim model.FeatureClaim) model.EvidenceRecord
}

// ClaimJob evaluates one claim
type ClaimJob struct {
	Index     int
	Claim     model.FeatureClaim
	Evaluator Evaluator
}

// Execute executes the claim job
func (j *ClaimJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &ClaimResult{Index: j.Index, Error: err}
	}
	return &ClaimResult{Index: j.Index, Record: j.Evaluator.Evaluate(ctx, j.Claim)}
}

// ClaimResult is the outcome of a claim job
type ClaimResult struct {
	Index  int
	Record model.EvidenceRecord
	Error  error
}

// GetError returns the error from the claim result
func (r *ClaimResult) GetError() error {
	return r.Error
}

// BatchProcessor evaluates many claims concurrently
type BatchProcessor struct {
	evaluator   Evaluator
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(evaluator Evaluator, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		evaluator:   evaluator,
		concurrency: concurrency,
	}
}

// ProcessClaims evaluates claims and returns one record per claim in input
// order. Claims left unevaluated by cancellation get a missing record with
// reason model.ReasonNotEvaluated. The second result counts evaluated claims.
func (b *BatchProcessor) ProcessClaims(ctx context.Context, claims []model.FeatureClaim) ([]model.EvidenceRecord, int) {
	if len(claims) == 0 {
		return []model.EvidenceRecord{}, 0
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, claim := range claims {
		if !pool.Submit(&ClaimJob{Index: i, Claim: claim, Evaluator: b.evaluator}) {
			break
		}
	}

	results := pool.Wait()

	records := make([]model.EvidenceRecord, len(claims))
	done := make([]bool, len(claims))
	evaluated := 0
	for _, r := range results {
		cr, ok := r.(*ClaimResult)
		if !ok || cr.Error != nil {
			continue
		}
		records[cr.Index] = cr.Record
		done[cr.Index] = true
		evaluated++
	}
	for i, claim := range claims {
		if !done[i] {
			records[i] = model.EvidenceRecord{
				Claim:           claim.RawText,
				SourceFile:      claim.SourceFile,
				SourceLine:      claim.SourceLine,
				Status:          model.StatusMissing,
				Reason:          model.ReasonNotEvaluated,
				Definitions:     []model.Definition{},
				UsageReferences: []model.UsageReference{},
				Snippets:        []model.Snippet{},
			}
		}
	}
	return records, evaluated
}
