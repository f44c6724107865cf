package storage

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/lib/pq"

	"airquality-dashboard/models"
	"airquality-dashboard/utils"
)

const insertColumns = 7

// PostgresWriter exports a snapshot of the derived table to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, waits for it to answer,
// runs schema migrations, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string, retry *utils.RetryConfig) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do("postgres ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw, err := newPostgresWriter(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return pw, nil
}

func newPostgresWriter(db *sql.DB) (*PostgresWriter, error) {
	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS measurements (
			ts            TIMESTAMPTZ PRIMARY KEY,
			readings      JSONB       NOT NULL DEFAULT '{}',
			labels        JSONB       NOT NULL DEFAULT '{}',
			time_category VARCHAR(16) NOT NULL,
			season        VARCHAR(16) NOT NULL,
			source        TEXT        NOT NULL DEFAULT '',
			session_id    TEXT        NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_measurements_season        ON measurements(season);
		CREATE INDEX IF NOT EXISTS idx_measurements_time_category ON measurements(time_category);
	`)
	return err
}

// Write replaces the stored snapshot with every record of t inside one
// transaction. Missing readings are omitted from the readings document.
func (pw *PostgresWriter) Write(t *models.Table) error {
	if t.Len() == 0 {
		return nil
	}
	if !t.Derived {
		return fmt.Errorf("postgres: table %s has no derived columns", t.Source)
	}

	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM measurements"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	const batchSize = 500
	for i := 0; i < t.Len(); i += batchSize {
		end := i + batchSize
		if end > t.Len() {
			end = t.Len()
		}
		if err := insertBatch(tx, t, t.Records[i:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func insertBatch(tx *sql.Tx, t *models.Table, batch []*models.Measurement) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*insertColumns)

	for idx, r := range batch {
		readings, err := encodeReadings(r.Values)
		if err != nil {
			return err
		}
		labels, err := json.Marshal(r.Labels)
		if err != nil {
			return fmt.Errorf("postgres: encode labels: %w", err)
		}

		base := idx * insertColumns
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		valueArgs = append(valueArgs,
			r.Timestamp, string(readings), string(labels),
			string(r.TimeCategory), string(r.Season), t.Source, t.SessionID)
	}

	query := fmt.Sprintf(`
		INSERT INTO measurements (ts, readings, labels, time_category, season, source, session_id)
		VALUES %s
		ON CONFLICT (ts) DO NOTHING
	`, strings.Join(valueStrings, ","))

	if _, err := tx.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

func encodeReadings(values map[string]float64) ([]byte, error) {
	present := make(map[string]float64, len(values))
	for k, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			present[k] = v
		}
	}
	b, err := json.Marshal(present)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode readings: %w", err)
	}
	return b, nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll reads the stored snapshot back in timestamp order.
func (pw *PostgresWriter) FetchAll() ([]*models.Measurement, error) {
	rows, err := pw.db.Query(`
		SELECT ts, readings, labels, time_category, season
		FROM measurements
		ORDER BY ts
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var out []*models.Measurement
	for rows.Next() {
		var (
			ts               time.Time
			readings, labels []byte
			category, season string
		)
		if err := rows.Scan(&ts, &readings, &labels, &category, &season); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}

		m := &models.Measurement{
			Timestamp:    ts.UTC(),
			TimeCategory: models.TimeCategory(category),
			Season:       models.Season(season),
		}
		if err := json.Unmarshal(readings, &m.Values); err != nil {
			return nil, fmt.Errorf("postgres: decode readings at %s: %w", ts.Format(time.RFC3339), err)
		}
		if err := json.Unmarshal(labels, &m.Labels); err != nil {
			return nil, fmt.Errorf("postgres: decode labels at %s: %w", ts.Format(time.RFC3339), err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
