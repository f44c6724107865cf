package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"

	"airquality-dashboard/models"
	"airquality-dashboard/utils"
)

// Source columns with fixed meaning. The identifier is dropped and the four
// date/time fields are consolidated into the timestamp key.
const (
	colID    = "No"
	colYear  = "year"
	colMonth = "month"
	colDay   = "day"
	colHour  = "hour"
)

var requiredColumns = []string{colID, colYear, colMonth, colDay, colHour}

// Loader builds time-indexed measurement tables from row-oriented files.
type Loader struct {
	logger *utils.Logger
}

// NewLoader creates a Loader with the given logger.
func NewLoader(logger *utils.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the CSV file at path into a Table.
func (l *Loader) Load(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("dataset: open %q: %w", path, err)
	}
	defer f.Close()

	return l.Read(f, path)
}

// LoadDerived loads the file at path and applies the derived columns.
func (l *Loader) LoadDerived(path string) (*models.Table, error) {
	t, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	return ApplyDerivedColumns(t)
}

// Read parses CSV data from r. Source names the data in errors and on the
// resulting table. The first malformed row fails the whole read.
func (l *Loader) Read(r io.Reader, source string) (*models.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s: empty file", ErrSchemaMismatch, source)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read header: %w", ErrSchemaMismatch, source, err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		name := normaliseHeader(h)
		if name == "" {
			return nil, fmt.Errorf("%w: %s: empty column name at position %d", ErrSchemaMismatch, source, i+1)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate column %q", ErrSchemaMismatch, source, name)
		}
		index[name] = i
		header[i] = name
	}
	for _, req := range requiredColumns {
		if _, ok := index[req]; !ok {
			return nil, fmt.Errorf("%w: %s: missing required column %q", ErrSchemaMismatch, source, req)
		}
	}

	// Everything that is not a key column is carried through.
	var fieldIdx []int
	for i, name := range header {
		if !isKeyColumn(name) {
			fieldIdx = append(fieldIdx, i)
		}
	}

	var (
		rows       [][]string
		lines      []int
		timestamps []time.Time
		seen       = make(map[time.Time]int)
	)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSchemaMismatch, source, err)
		}
		line, _ := reader.FieldPos(0)

		ts, err := consolidateTimestamp(row, index)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %w", ErrMalformedTimestamp, source, line, err)
		}
		if prev, dup := seen[ts]; dup {
			return nil, fmt.Errorf("%w: %s line %d: duplicate timestamp %s (first seen on line %d)",
				ErrMalformedTimestamp, source, line, ts.Format(time.RFC3339), prev)
		}
		seen[ts] = line

		rows = append(rows, row)
		lines = append(lines, line)
		timestamps = append(timestamps, ts)
	}

	numeric, err := classifyColumns(header, rows, lines, fieldIdx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %w", ErrSchemaMismatch, source, err)
	}

	t := &models.Table{
		Source:    source,
		SessionID: uuid.NewString(),
		LoadedAt:  time.Now(),
		Records:   make([]*models.Measurement, 0, len(rows)),
	}
	for _, i := range fieldIdx {
		if numeric[i] {
			t.NumericColumns = append(t.NumericColumns, header[i])
		} else {
			t.TextColumns = append(t.TextColumns, header[i])
		}
	}

	for n, row := range rows {
		m := &models.Measurement{
			Timestamp: timestamps[n],
			Values:    make(map[string]float64, len(t.NumericColumns)),
			Labels:    make(map[string]string, len(t.TextColumns)),
		}
		for _, i := range fieldIdx {
			if numeric[i] {
				v, _ := parseReading(row[i])
				m.Values[header[i]] = v
			} else if !isMissing(row[i]) {
				m.Labels[header[i]] = normaliseText(row[i])
			}
		}
		t.Records = append(t.Records, m)
	}

	l.logger.Info("[loader] Loaded %d records from %s (%d numeric, %d text columns)",
		t.Len(), source, len(t.NumericColumns), len(t.TextColumns))
	return t, nil
}

func isKeyColumn(name string) bool {
	for _, req := range requiredColumns {
		if name == req {
			return true
		}
	}
	return false
}

// classifyColumns marks a column numeric when every non-missing cell parses
// as a number. A column with no readings at all stays numeric. Charted
// columns must be numeric: a stray value there is an error rather than a
// silent demotion to text.
func classifyColumns(header []string, rows [][]string, lines []int, fieldIdx []int) (map[int]bool, error) {
	numeric := make(map[int]bool, len(fieldIdx))
	for _, i := range fieldIdx {
		numeric[i] = true
	}
	for n, row := range rows {
		for _, i := range fieldIdx {
			if !numeric[i] {
				continue
			}
			if _, ok := parseReading(row[i]); ok {
				continue
			}
			if isChartedColumn(header[i]) {
				return nil, fmt.Errorf("line %d: column %q holds non-numeric value %q", lines[n], header[i], row[i])
			}
			numeric[i] = false
		}
	}
	return numeric, nil
}

func isChartedColumn(name string) bool {
	for _, c := range DashboardColumns {
		if name == c {
			return true
		}
	}
	return false
}

// consolidateTimestamp combines the year/month/day/hour fields of a row into a
// UTC timestamp, rejecting combinations that are not a calendar date-time.
func consolidateTimestamp(row []string, index map[string]int) (time.Time, error) {
	var parts [4]int
	for k, name := range []string{colYear, colMonth, colDay, colHour} {
		v, err := parseField(row[index[name]])
		if err != nil {
			return time.Time{}, fmt.Errorf("%s=%q is not an integer", name, row[index[name]])
		}
		parts[k] = v
	}
	return makeTimestamp(parts[0], parts[1], parts[2], parts[3])
}

func makeTimestamp(year, month, day, hour int) (time.Time, error) {
	switch {
	case year < 1 || year > 9999:
		return time.Time{}, fmt.Errorf("year %d out of range", year)
	case month < 1 || month > 12:
		return time.Time{}, fmt.Errorf("month %d out of range", month)
	case hour < 0 || hour > 23:
		return time.Time{}, fmt.Errorf("hour %d out of range", hour)
	case day < 1 || day > daysIn(time.Month(month), year):
		return time.Time{}, fmt.Errorf("day %d out of range for %04d-%02d", day, year, month)
	}
	return time.Date(year, time.Month(month), day, hour, 0, 0, 0, time.UTC), nil
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
