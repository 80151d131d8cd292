package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchRef identifies one period's batch without loading it. Period is the
// first day of the batch's month, derived from the period key alone.
type BatchRef struct {
	Name   string
	Period time.Time
}

// BatchSource lists and loads classified batches. Implemented by the
// batches package over a directory of period files.
type BatchSource interface {
	List(ctx context.Context) ([]BatchRef, error)
	Load(ctx context.Context, ref BatchRef) ([]HeadlineRecord, error)
}

// Store persists the index series. Load must return fs.ErrNotExist (wrapped is
// fine) when no store has been written yet.
type Store interface {
	Load(ctx context.Context) (Series, error)
	Store(ctx context.Context, rows Series) error
}

// SmoothingConfig carries the parameters of the smoothing/detrending
// transform.
type SmoothingConfig struct {
	Span            int
	TrendWindowDays int
}

// DefaultSmoothingConfig returns the production smoothing settings.
func DefaultSmoothingConfig() SmoothingConfig {
	return SmoothingConfig{
		Span:            DefaultSmoothingSpan,
		TrendWindowDays: DefaultTrendWindowDays,
	}
}

// Controller drives the batch pipeline across the available batches and keeps
// the persisted series consistent. It owns the only two operations the engine
// exposes: full rebuild and incremental append.
type Controller struct {
	pipeline  *Pipeline
	source    BatchSource
	store     Store
	smoothing SmoothingConfig
	workers   int
	logger    *slog.Logger
}

// NewController wires a controller. workers <= 0 means one worker per CPU.
func NewController(logger *slog.Logger, pipeline *Pipeline, source BatchSource, store Store, smoothing SmoothingConfig, workers int) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if smoothing.Span <= 0 {
		smoothing.Span = DefaultSmoothingSpan
	}
	if smoothing.TrendWindowDays <= 0 {
		smoothing.TrendWindowDays = DefaultTrendWindowDays
	}
	return &Controller{
		pipeline:  pipeline,
		source:    source,
		store:     store,
		smoothing: smoothing,
		workers:   workers,
		logger:    logger,
	}
}

// Rebuild constructs the index from nothing: every batch is run through the
// pipeline, the slices are merged in period order, the smoothing transform is
// applied over the whole series and the result is persisted. A non-zero
// periodStart restricts the rebuild to batches from that month onward.
func (c *Controller) Rebuild(ctx context.Context, asOf, periodStart time.Time) (Series, error) {
	refs, err := c.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	if !periodStart.IsZero() {
		monthStart := MonthStart(periodStart)
		kept := refs[:0:0]
		for _, ref := range refs {
			if !ref.Period.Before(monthStart) {
				kept = append(kept, ref)
			}
		}
		refs = kept
	}
	c.logger.Info("starting full rebuild",
		slog.Int("batches", len(refs)),
		slog.String("as_of", Day(asOf).Format("2006-01-02")))

	slices, err := c.runBatches(ctx, refs, asOf)
	if err != nil {
		return nil, err
	}

	merged, err := mergeSlices(slices)
	if err != nil {
		return nil, err
	}
	return c.finish(ctx, merged)
}

// Append extends the persisted series with batches newer than its last date.
// Counts and raw index values of already-persisted rows are never recomputed;
// only the smoothed column is rewritten, and always from the full series.
//
// With no valid baseline present the append degrades to a full rebuild. A
// store that exists but cannot be loaded is ErrStoreCorrupt and fatal.
func (c *Controller) Append(ctx context.Context, asOf time.Time) (Series, error) {
	persisted, err := c.store.Load(ctx)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("no existing index store, falling back to full rebuild")
			return c.Rebuild(ctx, asOf, time.Time{})
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreCorrupt, err)
	}
	lastDate, ok := persisted.LastDate()
	if !ok {
		c.logger.Warn("index store is empty, falling back to full rebuild")
		return c.Rebuild(ctx, asOf, time.Time{})
	}
	appendStart := lastDate.AddDate(0, 0, 1)

	refs, err := c.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	// Coarse filter by period key: a batch wholly before the month containing
	// appendStart cannot contribute rows on or after it.
	monthStart := MonthStart(appendStart)
	selected := refs[:0:0]
	for _, ref := range refs {
		if !ref.Period.Before(monthStart) {
			selected = append(selected, ref)
		}
	}
	c.logger.Info("starting incremental append",
		slog.String("append_start", appendStart.Format("2006-01-02")),
		slog.Int("candidate_batches", len(selected)),
		slog.String("as_of", Day(asOf).Format("2006-01-02")))

	slices, err := c.runBatches(ctx, selected, asOf)
	if err != nil {
		return nil, err
	}
	for i, slice := range slices {
		slices[i] = truncateBefore(slice, appendStart)
	}

	appended, err := mergeSlices(slices)
	if err != nil {
		return nil, err
	}
	merged := append(persisted[:len(persisted):len(persisted)], appended...)
	return c.finish(ctx, merged)
}

// runBatches executes the pipeline for each ref, concurrently up to the worker
// limit, and returns the resulting slices in ref order. Empty and malformed
// batches contribute nil slices; only store-level failures abort the run.
func (c *Controller) runBatches(ctx context.Context, refs []BatchRef, asOf time.Time) ([]Series, error) {
	slices := make([]Series, len(refs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			records, err := c.source.Load(ctx, ref)
			if err != nil {
				if errors.Is(err, ErrMalformedBatch) {
					c.logger.Warn("skipping malformed batch",
						slog.String("batch", ref.Name),
						slog.String("error", err.Error()))
					return nil
				}
				return fmt.Errorf("loading batch %s: %w", ref.Name, err)
			}

			slice, err := c.pipeline.Run(records, asOf)
			if err != nil {
				if errors.Is(err, ErrEmptyBatch) {
					c.logger.Info("batch has no usable data", slog.String("batch", ref.Name))
					return nil
				}
				return fmt.Errorf("processing batch %s: %w", ref.Name, err)
			}
			slices[i] = slice
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices, nil
}

// finish applies the smoothing transform over the complete series and
// persists it. The transform is the sole synchronization point: it runs once,
// sequentially, after all per-batch work has merged.
func (c *Controller) finish(ctx context.Context, merged Series) (Series, error) {
	result := ApplySmoothing(merged, c.smoothing.Span, c.smoothing.TrendWindowDays)
	if err := c.store.Store(ctx, result); err != nil {
		return nil, fmt.Errorf("persisting index: %w", err)
	}
	c.logger.Info("index persisted", slog.Int("rows", len(result)))
	return result, nil
}

// mergeSlices concatenates per-batch slices into one date-ascending series.
// Batches are expected not to overlap; a duplicated date is a data-integrity
// violation surfaced as OverlapError rather than silently overwritten.
func mergeSlices(slices []Series) (Series, error) {
	nonEmpty := slices[:0:0]
	total := 0
	for _, slice := range slices {
		if len(slice) > 0 {
			nonEmpty = append(nonEmpty, slice)
			total += len(slice)
		}
	}
	sort.SliceStable(nonEmpty, func(i, j int) bool {
		return nonEmpty[i][0].Date.Before(nonEmpty[j][0].Date)
	})

	merged := make(Series, 0, total)
	for _, slice := range nonEmpty {
		if len(merged) > 0 && !slice[0].Date.After(merged[len(merged)-1].Date) {
			return nil, &OverlapError{Date: slice[0].Date}
		}
		merged = append(merged, slice...)
	}
	return merged, nil
}

// truncateBefore drops rows dated before start. A batch whose period overlaps
// the append boundary may span dates already persisted.
func truncateBefore(rows Series, start time.Time) Series {
	for i, row := range rows {
		if !row.Date.Before(start) {
			return rows[i:]
		}
	}
	return nil
}
