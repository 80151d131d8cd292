package index

import (
	"log/slog"
	"time"
)

// PipelineConfig carries the tunables of the per-batch pipeline.
type PipelineConfig struct {
	Filter         FilterConfig
	ResampleWindow int
}

// DefaultPipelineConfig returns the production pipeline settings.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Filter:         DefaultFilterConfig(),
		ResampleWindow: DefaultResampleWindow,
	}
}

// Pipeline converts one classified batch into a dense daily index slice.
type Pipeline struct {
	cfg    PipelineConfig
	logger *slog.Logger
}

// NewPipeline creates a batch pipeline. A nil logger falls back to the
// default slog logger.
func NewPipeline(logger *slog.Logger, cfg PipelineConfig) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Filter.Topic == "" {
		cfg.Filter = DefaultFilterConfig()
	}
	if cfg.ResampleWindow <= 0 {
		cfg.ResampleWindow = DefaultResampleWindow
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// Run filters, aggregates, resamples and trims one batch. asOf is the current
// processing date for the incomplete-day guard; it is an explicit input so
// runs are reproducible with a fixed clock.
//
// Returns ErrEmptyBatch when nothing survives filtering or the guard. That is
// the normal outcome for sparse periods, not a failure.
func (p *Pipeline) Run(records []HeadlineRecord, asOf time.Time) (Series, error) {
	filtered := FilterRecords(records, p.cfg.Filter)
	if len(filtered) == 0 {
		return nil, ErrEmptyBatch
	}

	rows := ComputeRawIndex(AggregateDaily(filtered))
	rows = ResampleDaily(rows, p.cfg.ResampleWindow)
	rows = DropIncompleteDay(rows, asOf)
	if len(rows) == 0 {
		return nil, ErrEmptyBatch
	}

	p.logger.Debug("batch pipeline produced slice",
		slog.Int("in_scope_records", len(filtered)),
		slog.Int("days", len(rows)),
		slog.String("first_date", rows[0].Date.Format("2006-01-02")),
		slog.String("last_date", rows[len(rows)-1].Date.Format("2006-01-02")))

	return rows, nil
}
