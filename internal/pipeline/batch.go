package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/ofxpostern/internal/model"
)

// DefaultConcurrency is the number of targets scanned at once unless
// WithConcurrency says otherwise.
const DefaultConcurrency = 4

// Factory builds the pipeline and the empty report for one target.
// It is called once per target so that no state is shared between scans.
type Factory func(ctx context.Context, target string) (*Pipeline, *model.ScanReport, error)

// BatchProcessor scans several targets concurrently.
type BatchProcessor struct {
	factory     Factory
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger for batch-level messages.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent scans.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor using factory for every target.
func NewBatchProcessor(factory Factory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch scans targets and returns one report per target in input
// order. A failed scan does not stop the others; its error is recorded in
// its report. The returned error is non-nil only when ctx was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.ScanReport, error) {
	results := make([]*model.ScanReport, len(targets))
	err := bp.ProcessBatchWithCallback(ctx, targets, func(report *model.ScanReport, index int) {
		results[index] = report
	})
	return results, err
}

// ProcessBatchWithCallback scans targets and calls callback as each scan
// finishes. callback runs on the scanning goroutine and must be safe for
// concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(report *model.ScanReport, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				report := model.NewScanReport(target, "", "", 0)
				report.TimedOut = true
				report.SetError(err)
				callback(report, i)
				return err
			}

			bp.logger.Info("scanning target",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)
			callback(bp.scan(ctx, target), i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch processing complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)
	return err
}

func (bp *BatchProcessor) scan(ctx context.Context, target string) *model.ScanReport {
	p, report, err := bp.factory(ctx, target)
	if report == nil {
		report = model.NewScanReport(target, "", "", 0)
	}
	if err != nil {
		bp.logger.Warn("cannot prepare scan", "target", target, "error", err)
		report.SetError(err)
		return report
	}

	if err := p.Execute(ctx, report); err != nil {
		bp.logger.Warn("scan failed", "target", target, "error", err)
		return report
	}
	bp.logger.Info("scan completed", "target", target)
	return report
}
