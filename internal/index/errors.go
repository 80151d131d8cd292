package index

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyBatch signals a batch with no in-scope records after filtering.
	// It is a normal outcome for sparse periods, never a run failure.
	ErrEmptyBatch = errors.New("batch has no usable records")

	// ErrMalformedBatch signals a batch that cannot be parsed into headline
	// records at all. The batch is skipped with a warning.
	ErrMalformedBatch = errors.New("batch is malformed")

	// ErrStoreCorrupt signals that the persisted index cannot serve as an
	// append baseline. The caller must fall back to a full rebuild.
	ErrStoreCorrupt = errors.New("index store is corrupt")
)

// OverlapError reports two batches claiming the same calendar day during a
// merge. Silent overwrite could mask a double-classification bug upstream, so
// the run surfaces it instead.
type OverlapError struct {
	Date time.Time
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("batches overlap on %s", e.Date.Format("2006-01-02"))
}
