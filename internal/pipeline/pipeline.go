// Package pipeline drives extraction end to end: candidate extraction,
// subject/body reconciliation, rule application, record assembly.
package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/shipment-cli/internal/extractor"
	"github.com/sells-group/shipment-cli/internal/model"
	"github.com/sells-group/shipment-cli/internal/rules"
)

// Processor runs the extraction pipeline for emails. It is stateless per
// invocation beyond the immutable engine and extractor, so one Processor
// serves any number of concurrent emails.
type Processor struct {
	extractor extractor.Extractor
	engine    *rules.Engine
}

// New creates a Processor.
func New(ex extractor.Extractor, engine *rules.Engine) *Processor {
	return &Processor{extractor: ex, engine: engine}
}

// ExtractorName reports which extraction variant the processor uses.
func (p *Processor) ExtractorName() string {
	return p.extractor.Name()
}

// Process produces the shipment record for one email. An extraction
// failure degrades to empty candidates — the engine then emits an
// all-sentinel record flagged for review — so a bad email never takes the
// batch down.
func (p *Processor) Process(ctx context.Context, email model.Email) model.ShipmentRecord {
	subject, body, err := p.extractor.Extract(ctx, email)
	if err != nil {
		zap.L().Warn("pipeline: extraction failed, degrading to empty candidates",
			zap.String("email_id", email.ID),
			zap.Error(err),
		)
		subject = model.CandidateSet{Source: model.SourceSubject}
		body = model.CandidateSet{Source: model.SourceBody}
	}

	reconciled := rules.ReconcileSets(subject, body)
	return p.engine.Apply(email.ID, reconciled, email.FullText())
}

// ProcessBatch processes emails concurrently with the given limit and
// returns one record per email in input order. The only error is caller
// cancellation; per-email conditions surface as review flags on the
// records themselves.
func (p *Processor) ProcessBatch(ctx context.Context, emails []model.Email, concurrency int) ([]model.ShipmentRecord, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	records := make([]model.ShipmentRecord, len(emails))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, email := range emails {
		g.Go(func() error {
			records[i] = p.Process(gCtx, email)
			return nil
		})
	}

	// Workers never return errors; Wait just barriers.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return records, err
	}

	flagged := 0
	for _, r := range records {
		if r.NeedsReview() {
			flagged++
		}
	}
	zap.L().Info("pipeline: batch complete",
		zap.Int("emails", len(emails)),
		zap.Int("flagged", flagged),
		zap.String("extractor", p.extractor.Name()),
	)
	return records, nil
}
