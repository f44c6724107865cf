package models

import (
	"math"
	"strconv"
	"time"
)

// Number is a float64 that marshals NaN and ±Inf as JSON null, since
// aggregates over columns with no readings have no value.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

// Valid reports whether the number holds a finite value.
func (n Number) Valid() bool {
	f := float64(n)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ColumnSummary mirrors a describe() row for one numeric column.
type ColumnSummary struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
	Mean   Number `json:"mean"`
	Std    Number `json:"std"`
	Min    Number `json:"min"`
	Q1     Number `json:"q1"`
	Median Number `json:"median"`
	Q3     Number `json:"q3"`
	Max    Number `json:"max"`
}

// Distribution is a histogram of one column plus its skewness.
type Distribution struct {
	Column   string   `json:"column"`
	Edges    []Number `json:"edges"`
	Counts   []int    `json:"counts"`
	Skewness Number   `json:"skewness"`
}

// CorrelationMatrix holds pairwise Pearson coefficients; Values[i][j] is the
// correlation of Columns[i] with Columns[j].
type CorrelationMatrix struct {
	Columns []string   `json:"columns"`
	Values  [][]Number `json:"values"`
}

// Get returns the coefficient for a pair of columns, NaN when either is absent.
func (c *CorrelationMatrix) Get(a, b string) float64 {
	ia, ib := -1, -1
	for i, col := range c.Columns {
		if col == a {
			ia = i
		}
		if col == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return math.NaN()
	}
	return float64(c.Values[ia][ib])
}

// MonthlyMean is the mean of a set of columns for one calendar month.
type MonthlyMean struct {
	Month time.Month        `json:"month"`
	Means map[string]Number `json:"means"`
}

// YearTrend holds the monthly means of one calendar year.
type YearTrend struct {
	Year   int           `json:"year"`
	Months []MonthlyMean `json:"months"`
}

// BoxStats are the box-plot statistics of one column within one group.
type BoxStats struct {
	Count        int    `json:"count"`
	LowerWhisker Number `json:"lower_whisker"`
	Q1           Number `json:"q1"`
	Median       Number `json:"median"`
	Q3           Number `json:"q3"`
	UpperWhisker Number `json:"upper_whisker"`
	Outliers     int    `json:"outliers"`
}

// SeasonalStats groups box statistics per column for one season.
type SeasonalStats struct {
	Season  Season              `json:"season"`
	Columns map[string]BoxStats `json:"columns"`
}

// CategoryMean is the mean of a set of columns for one time category.
type CategoryMean struct {
	Category TimeCategory      `json:"category"`
	Count    int               `json:"count"`
	Means    map[string]Number `json:"means"`
}

// Conclusion is one fixed narrative finding shown below the charts.
type Conclusion struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// InsightReport holds the computed analytics over the derived table.
type InsightReport struct {
	Source        string            `json:"source"`
	SessionID     string            `json:"session_id"`
	TotalRecords  int               `json:"total_records"`
	From          time.Time         `json:"from"`
	To            time.Time         `json:"to"`
	Summary       []ColumnSummary   `json:"summary"`
	Distributions []Distribution    `json:"distributions"`
	Correlation   CorrelationMatrix `json:"correlation"`
	YearlyTrend   []YearTrend       `json:"yearly_trend"`
	Seasonal      []SeasonalStats   `json:"seasonal"`
	BusyHours     []CategoryMean    `json:"busy_hours"`
	Conclusions   []Conclusion      `json:"conclusions"`
}
