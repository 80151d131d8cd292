package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"nsicli/internal/index"
)

// Columns of the persisted index table, in written order. The date column is
// the table's sole key.
var columns = []string{"date", "negative", "neutral", "positive", "total", "index_value", "smoothed_index_value"}

// FileStore persists the index series to a single file. The encoding is
// selected by the file extension: ".csv" writes a row-oriented text table,
// ".xlsx" a binary workbook. Writes go to a temporary file in the same
// directory followed by a rename, so readers never observe a partial store.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// New creates a file store for the given path.
func New(path string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
	default:
		return nil, fmt.Errorf("unsupported index store extension %q (want .csv or .xlsx)", filepath.Ext(path))
	}
	return &FileStore{path: path, logger: logger}, nil
}

// Path returns the store's file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the persisted series. A missing file surfaces as fs.ErrNotExist
// via os.Open so callers can distinguish "no store yet" from corruption.
func (s *FileStore) Load(ctx context.Context) (index.Series, error) {
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".xlsx":
		return s.loadXLSX()
	default:
		return s.loadCSV()
	}
}

// Store writes the full series, replacing any previous store atomically.
func (s *FileStore) Store(ctx context.Context, rows index.Series) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	// The temp file keeps the real extension: excelize refuses to save a
	// workbook under an extension it does not recognize.
	ext := filepath.Ext(s.path)
	tmp := strings.TrimSuffix(s.path, ext) + ".tmp" + ext

	var err error
	switch strings.ToLower(ext) {
	case ".xlsx":
		err = writeXLSX(tmp, rows)
	default:
		err = writeCSV(tmp, rows)
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing index store: %w", err)
	}

	s.logger.Info("index store written",
		slog.String("path", s.path),
		slog.Int("rows", len(rows)))
	return nil
}

func (s *FileStore) loadCSV() (index.Series, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading index store %s: %w", s.path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if err := checkHeader(records[0]); err != nil {
		return nil, fmt.Errorf("index store %s: %w", s.path, err)
	}

	rows := make(index.Series, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("index store %s row %d: %w", s.path, i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func writeCSV(path string, rows index.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating index store: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(formatRow(row)); err != nil {
			return fmt.Errorf("writing row %s: %w", row.Date.Format("2006-01-02"), err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing index store: %w", err)
	}
	return f.Close()
}

func checkHeader(header []string) error {
	if len(header) < len(columns) {
		return fmt.Errorf("header has %d columns, want %d", len(header), len(columns))
	}
	for i, name := range columns {
		if strings.TrimSpace(header[i]) != name {
			return fmt.Errorf("header column %d is %q, want %q", i, header[i], name)
		}
	}
	return nil
}

func formatRow(row index.IndexRow) []string {
	return []string{
		row.Date.Format("2006-01-02"),
		strconv.Itoa(row.Negative),
		strconv.Itoa(row.Neutral),
		strconv.Itoa(row.Positive),
		strconv.Itoa(row.Total),
		formatValue(row.IndexValue),
		formatValue(row.SmoothedIndexValue),
	}
}

func parseRow(record []string) (index.IndexRow, error) {
	if len(record) < len(columns) {
		return index.IndexRow{}, fmt.Errorf("row has %d fields, want %d", len(record), len(columns))
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
	if err != nil {
		return index.IndexRow{}, fmt.Errorf("invalid date %q: %w", record[0], err)
	}
	ints := make([]int, 4)
	for i := range ints {
		v, err := strconv.Atoi(strings.TrimSpace(record[i+1]))
		if err != nil {
			return index.IndexRow{}, fmt.Errorf("invalid %s %q: %w", columns[i+1], record[i+1], err)
		}
		ints[i] = v
	}
	indexValue, err := parseValue(record[5])
	if err != nil {
		return index.IndexRow{}, fmt.Errorf("invalid index_value %q: %w", record[5], err)
	}
	smoothed, err := parseValue(record[6])
	if err != nil {
		return index.IndexRow{}, fmt.Errorf("invalid smoothed_index_value %q: %w", record[6], err)
	}
	return index.IndexRow{
		Date:               date,
		Negative:           ints[0],
		Neutral:            ints[1],
		Positive:           ints[2],
		Total:              ints[3],
		IndexValue:         indexValue,
		SmoothedIndexValue: smoothed,
	}, nil
}

// formatValue encodes an index value; the undefined sentinel becomes the
// empty field. Full precision keeps store round trips exact.
func formatValue(v float64) string {
	if !index.IsDefined(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return index.Undefined(), nil
	}
	return strconv.ParseFloat(s, 64)
}
