package batches

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"nsicli/internal/index"
)

// Batch period files are named by their year-month key, e.g. "2022-03.csv".
var fileRe = regexp.MustCompile(`^(\d{4})-(\d{2})\.csv$`)

// Required columns of a classified batch. Extra columns are ignored and
// header order does not matter.
var requiredColumns = []string{"date", "headline", "model topic", "sentiment"}

// Dir serves classified headline batches from a directory of period CSV
// files. It implements index.BatchSource.
type Dir struct {
	path   string
	logger *slog.Logger
}

// NewDir creates a batch source over the given directory.
func NewDir(path string, logger *slog.Logger) *Dir {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dir{path: path, logger: logger}
}

// List discovers the period files in the directory, sorted ascending by
// period. Files that do not match the period naming convention are ignored.
func (d *Dir) List(ctx context.Context) ([]index.BatchRef, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("reading batch directory %s: %w", d.path, err)
	}

	var refs []index.BatchRef
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := fileRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		period, err := time.Parse("2006-01", m[1]+"-"+m[2])
		if err != nil {
			d.logger.Debug("ignoring file with invalid period key",
				slog.String("filename", entry.Name()))
			continue
		}
		refs = append(refs, index.BatchRef{Name: entry.Name(), Period: period})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Period.Before(refs[j].Period) })
	return refs, nil
}

// Load parses one period file into headline records. A file that cannot be
// read as CSV or lacks a required column is reported as
// index.ErrMalformedBatch so the caller can skip it and continue.
func (d *Dir) Load(ctx context.Context, ref index.BatchRef) ([]index.HeadlineRecord, error) {
	f, err := os.Open(filepath.Join(d.path, ref.Name))
	if err != nil {
		return nil, fmt.Errorf("opening batch %s: %w", ref.Name, err)
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", index.ErrMalformedBatch, ref.Name, err)
	}
	return records, nil
}

// Parse reads classified headline records from CSV data. The header row maps
// columns by name; rows with unparsable dates or unknown sentiment labels are
// dropped, since they can contribute nothing to the counts.
func Parse(r io.Reader) ([]index.HeadlineRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	var records []index.HeadlineRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		field := func(name string) string {
			i := cols[name]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		timestamp, ok := parseTimestamp(field("date"))
		if !ok {
			continue
		}
		sentiment := index.Sentiment(field("sentiment"))
		switch sentiment {
		case index.SentimentNegative, index.SentimentNeutral, index.SentimentPositive:
		default:
			continue
		}

		records = append(records, index.HeadlineRecord{
			Timestamp: timestamp,
			Headline:  field("headline"),
			Topic:     field("model topic"),
			Sentiment: sentiment,
		})
	}
	return records, nil
}

// parseTimestamp accepts the timestamp formats the classifier emits.
func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
