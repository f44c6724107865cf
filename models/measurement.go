package models

import (
	"math"
	"time"
)

// TimeCategory is the traffic-peak classification of an hour of day.
type TimeCategory string

const (
	Busy    TimeCategory = "Busy"
	NonBusy TimeCategory = "Non-Busy"
)

// TimeCategories lists the categories in display order.
var TimeCategories = []TimeCategory{Busy, NonBusy}

// Season is the meteorological season of a month.
type Season string

const (
	Winter Season = "Winter"
	Spring Season = "Spring"
	Summer Season = "Summer"
	Autumn Season = "Autumn"
)

// Seasons lists the seasons in display order.
var Seasons = []Season{Winter, Spring, Summer, Autumn}

// Measurement is one timestamped row of pollutant and weather readings.
// Values holds the numeric fields with NaN for a missing reading; Labels
// holds the non-numeric fields (wind direction, station name) verbatim.
type Measurement struct {
	Timestamp time.Time
	Values    map[string]float64
	Labels    map[string]string

	// Derived after load; empty until ApplyDerivedColumns runs.
	TimeCategory TimeCategory
	Season       Season
}

// Value returns the named numeric field, NaN when absent or missing.
func (m *Measurement) Value(column string) float64 {
	v, ok := m.Values[column]
	if !ok {
		return math.NaN()
	}
	return v
}

// Table is the in-memory, timestamp-keyed collection of measurements for one
// analysis session.
type Table struct {
	Source         string
	SessionID      string
	LoadedAt       time.Time
	NumericColumns []string
	TextColumns    []string
	Records        []*Measurement
	Derived        bool
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// HasColumn reports whether name is a numeric column of the table.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.NumericColumns {
		if c == name {
			return true
		}
	}
	return false
}

// Column returns the values of a numeric column in record order, NaN
// included. Nil when the column does not exist.
func (t *Table) Column(name string) []float64 {
	if !t.HasColumn(name) {
		return nil
	}
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Value(name)
	}
	return out
}

// Span returns the first and last timestamps in record order.
func (t *Table) Span() (first, last time.Time) {
	if len(t.Records) == 0 {
		return time.Time{}, time.Time{}
	}
	return t.Records[0].Timestamp, t.Records[len(t.Records)-1].Timestamp
}
