package storage

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"airquality-dashboard/models"
)

// CSVWriter exports a derived table to a CSV file. The export never targets
// the source dataset. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter prepares an export to path. Intermediate directories are
// created automatically; the file itself is created (or truncated) by Write.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{path: path}, nil
}

// Write writes the header and every record of t. Missing readings are
// written as empty cells.
func (c *CSVWriter) Write(t *models.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.Source != "" && sameFile(t.Source, c.path) {
		return fmt.Errorf("csv: refusing to overwrite source dataset %q", t.Source)
	}

	if c.file == nil {
		f, err := os.Create(c.path)
		if err != nil {
			return fmt.Errorf("csv: create file %q: %w", c.path, err)
		}
		c.file = f
		c.writer = csv.NewWriter(f)
	}

	header := make([]string, 0, 3+len(t.NumericColumns)+len(t.TextColumns))
	header = append(header, "timestamp")
	header = append(header, t.NumericColumns...)
	header = append(header, t.TextColumns...)
	header = append(header, "time_category", "season")
	if err := c.writer.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, r := range t.Records {
		row := make([]string, 0, len(header))
		row = append(row, r.Timestamp.Format(time.RFC3339))
		for _, col := range t.NumericColumns {
			row = append(row, formatReading(r.Value(col)))
		}
		for _, col := range t.TextColumns {
			row = append(row, r.Labels[col])
		}
		row = append(row, string(r.TimeCategory), string(r.Season))
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file == nil {
		return nil
	}
	c.writer.Flush()
	err := c.file.Close()
	c.file, c.writer = nil, nil
	return err
}

func formatReading(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sameFile(a, b string) bool {
	ia, err := os.Stat(a)
	if err != nil {
		return false
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ia, ib)
}
