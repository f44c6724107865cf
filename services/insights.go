package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"airquality-dashboard/models"
	"airquality-dashboard/utils"
)

// DashboardColumns are the pollutant and weather columns charted by the
// dashboard, in display order.
var DashboardColumns = []string{
	"PM2.5", "PM10", "SO2", "NO2", "CO", "O3",
	"TEMP", "PRES", "DEWP", "RAIN", "WSPM",
}

// ParticulateColumns are the columns compared across years, seasons and
// time categories.
var ParticulateColumns = []string{"PM2.5", "PM10"}

// InsightOptions tunes report generation.
type InsightOptions struct {
	HistogramBins int
	Columns       []string
	TrendColumns  []string
}

// DefaultInsightOptions returns the dashboard's settings.
func DefaultInsightOptions() InsightOptions {
	return InsightOptions{
		HistogramBins: 30,
		Columns:       DashboardColumns,
		TrendColumns:  ParticulateColumns,
	}
}

// InsightService computes the dashboard's chart inputs from a derived table.
// It only reads the table.
type InsightService struct {
	logger *utils.Logger
	opts   InsightOptions
}

func NewInsightService(logger *utils.Logger, opts InsightOptions) *InsightService {
	if opts.HistogramBins < 1 {
		opts.HistogramBins = DefaultInsightOptions().HistogramBins
	}
	if len(opts.Columns) == 0 {
		opts.Columns = DashboardColumns
	}
	if len(opts.TrendColumns) == 0 {
		opts.TrendColumns = ParticulateColumns
	}
	return &InsightService{logger: logger, opts: opts}
}

func (s *InsightService) Generate(t *models.Table) (*models.InsightReport, error) {
	if t == nil || !t.Derived {
		return nil, fmt.Errorf("%w: insights need a table with derived columns", ErrInvalidInput)
	}

	report := &models.InsightReport{
		Source:       t.Source,
		SessionID:    t.SessionID,
		TotalRecords: t.Len(),
		Conclusions:  Conclusions(),
	}
	report.From, report.To = t.Span()

	columns := presentColumns(t, s.opts.Columns)
	trend := presentColumns(t, s.opts.TrendColumns)

	data := make(map[string][]float64, len(t.NumericColumns))
	for _, c := range t.NumericColumns {
		data[c] = t.Column(c)
	}

	for _, c := range t.NumericColumns {
		report.Summary = append(report.Summary, summarize(c, data[c]))
	}
	for _, c := range columns {
		report.Distributions = append(report.Distributions, histogram(c, data[c], s.opts.HistogramBins))
	}
	report.Correlation = correlationMatrix(columns, data)
	report.YearlyTrend = yearlyTrend(t, trend)
	report.Seasonal = seasonal(t, trend)
	report.BusyHours = busyHours(t, trend)

	s.logger.Info("[insights] Generated report for %s: %d records, %d columns charted",
		t.Source, report.TotalRecords, len(columns))
	return report, nil
}

func presentColumns(t *models.Table, wanted []string) []string {
	var out []string
	for _, c := range wanted {
		if t.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

func correlationMatrix(columns []string, data map[string][]float64) models.CorrelationMatrix {
	m := models.CorrelationMatrix{
		Columns: columns,
		Values:  make([][]models.Number, len(columns)),
	}
	for i := range columns {
		m.Values[i] = make([]models.Number, len(columns))
	}
	for i, a := range columns {
		for j := i; j < len(columns); j++ {
			r := models.Number(correlation(data[a], data[columns[j]]))
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

func yearlyTrend(t *models.Table, columns []string) []models.YearTrend {
	type key struct {
		year  int
		month time.Month
	}
	buckets := make(map[key]map[string][]float64)
	years := make(map[int]struct{})

	for _, r := range t.Records {
		k := key{r.Timestamp.Year(), r.Timestamp.Month()}
		b, ok := buckets[k]
		if !ok {
			b = make(map[string][]float64, len(columns))
			buckets[k] = b
		}
		for _, c := range columns {
			b[c] = append(b[c], r.Value(c))
		}
		years[k.year] = struct{}{}
	}

	sorted := make([]int, 0, len(years))
	for y := range years {
		sorted = append(sorted, y)
	}
	sort.Ints(sorted)

	out := make([]models.YearTrend, 0, len(sorted))
	for _, y := range sorted {
		yt := models.YearTrend{Year: y}
		for m := time.January; m <= time.December; m++ {
			b, ok := buckets[key{y, m}]
			if !ok {
				continue
			}
			mm := models.MonthlyMean{Month: m, Means: make(map[string]models.Number, len(columns))}
			for _, c := range columns {
				mm.Means[c] = models.Number(mean(b[c]))
			}
			yt.Months = append(yt.Months, mm)
		}
		out = append(out, yt)
	}
	return out
}

func seasonal(t *models.Table, columns []string) []models.SeasonalStats {
	values := make(map[models.Season]map[string][]float64, len(models.Seasons))
	for _, season := range models.Seasons {
		values[season] = make(map[string][]float64, len(columns))
	}
	for _, r := range t.Records {
		v, ok := values[r.Season]
		if !ok {
			continue
		}
		for _, c := range columns {
			v[c] = append(v[c], r.Value(c))
		}
	}

	out := make([]models.SeasonalStats, 0, len(models.Seasons))
	for _, season := range models.Seasons {
		ss := models.SeasonalStats{Season: season, Columns: make(map[string]models.BoxStats, len(columns))}
		for _, c := range columns {
			ss.Columns[c] = boxStats(values[season][c])
		}
		out = append(out, ss)
	}
	return out
}

func busyHours(t *models.Table, columns []string) []models.CategoryMean {
	values := make(map[models.TimeCategory]map[string][]float64, len(models.TimeCategories))
	counts := make(map[models.TimeCategory]int, len(models.TimeCategories))
	for _, cat := range models.TimeCategories {
		values[cat] = make(map[string][]float64, len(columns))
	}
	for _, r := range t.Records {
		v, ok := values[r.TimeCategory]
		if !ok {
			continue
		}
		counts[r.TimeCategory]++
		for _, c := range columns {
			v[c] = append(v[c], r.Value(c))
		}
	}

	out := make([]models.CategoryMean, 0, len(models.TimeCategories))
	for _, cat := range models.TimeCategories {
		cm := models.CategoryMean{Category: cat, Count: counts[cat], Means: make(map[string]models.Number, len(columns))}
		for _, c := range columns {
			cm.Means[c] = models.Number(mean(values[cat][c]))
		}
		out = append(out, cm)
	}
	return out
}

func (s *InsightService) Print(r *models.InsightReport) {
	sep := strings.Repeat("═", 64)
	thin := strings.Repeat("─", 64)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  AIR QUALITY ANALYSIS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Source   : \033[1m%s\033[0m\n", r.Source)
	fmt.Printf("  Records  : \033[1m%d\033[0m\n", r.TotalRecords)
	if r.TotalRecords > 0 {
		fmt.Printf("  Period   : %s → %s\n", r.From.Format("2006-01-02 15:04"), r.To.Format("2006-01-02 15:04"))
	}
	fmt.Printf("  Session  : %s\n", r.SessionID)
	fmt.Println()

	// Dataset info
	fmt.Printf("\033[1;33m  Dataset Info\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  %-7s %7s %9s %9s %9s %9s %9s\n", "column", "count", "mean", "std", "min", "median", "max")
	for _, c := range r.Summary {
		fmt.Printf("  %-7s %7d %9s %9s %9s %9s %9s\n", c.Column, c.Count,
			num(c.Mean), num(c.Std), num(c.Min), num(c.Median), num(c.Max))
	}
	fmt.Println()

	// Distributions
	fmt.Printf("\033[1;33m  Distributions\033[0m\n")
	fmt.Printf("  %s\n", thin)
	for _, d := range r.Distributions {
		fmt.Printf("  %-7s skewness %6s  %s\n", d.Column, num(d.Skewness), sparkline(d.Counts))
	}
	fmt.Println()

	// Correlations
	fmt.Printf("\033[1;33m  Correlation Between Variables\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  %-6s", "")
	for _, c := range r.Correlation.Columns {
		fmt.Printf(" %6s", truncate(c, 6))
	}
	fmt.Println()
	for i, c := range r.Correlation.Columns {
		fmt.Printf("  %-6s", truncate(c, 6))
		for _, v := range r.Correlation.Values[i] {
			fmt.Printf(" %6s", num(v))
		}
		fmt.Println()
	}
	fmt.Println()

	// Yearly trend
	fmt.Printf("\033[1;33m  Monthly Trend per Year\033[0m\n")
	fmt.Printf("  %s\n", thin)
	for _, yt := range r.YearlyTrend {
		fmt.Printf("  \033[1m%d\033[0m\n", yt.Year)
		for _, m := range yt.Months {
			fmt.Printf("    %s", m.Month.String()[:3])
			for _, c := range sortedKeys(m.Means) {
				fmt.Printf("  %s %8s", c, num(m.Means[c]))
			}
			fmt.Println()
		}
	}
	fmt.Println()

	// Seasons
	fmt.Printf("\033[1;33m  Seasonal Variations\033[0m\n")
	fmt.Printf("  %s\n", thin)
	for _, ss := range r.Seasonal {
		for _, c := range sortedKeys(ss.Columns) {
			b := ss.Columns[c]
			fmt.Printf("  %-7s %-6s q1 %8s  median %8s  q3 %8s  outliers %d\n",
				ss.Season, c, num(b.Q1), num(b.Median), num(b.Q3), b.Outliers)
		}
	}
	fmt.Println()

	// Busy vs non-busy
	fmt.Printf("\033[1;33m  Pollution during Busy and Non-Busy Hours\033[0m\n")
	fmt.Printf("  %s\n", thin)
	for _, cm := range r.BusyHours {
		for _, c := range sortedKeys(cm.Means) {
			v := cm.Means[c]
			bar := ""
			if v.Valid() && v > 0 {
				bar = strings.Repeat("█", int(math.Round(float64(v)/5)))
			}
			fmt.Printf("  %-9s %-6s %s %s\n", cm.Category, c, bar, num(v))
		}
	}
	fmt.Println()

	// Conclusions
	fmt.Printf("\033[1;33m  Conclusion\033[0m\n")
	fmt.Printf("  %s\n", thin)
	for _, c := range r.Conclusions {
		fmt.Printf("  \033[1m%s\033[0m\n  %s\n\n", c.Title, c.Text)
	}

	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)
}

func num(n models.Number) string {
	if !n.Valid() {
		return "-"
	}
	return fmt.Sprintf("%.2f", float64(n))
}

func sparkline(counts []int) string {
	levels := []rune("▁▂▃▄▅▆▇█")
	peak := 0
	for _, c := range counts {
		if c > peak {
			peak = c
		}
	}
	if peak == 0 {
		return ""
	}
	var b strings.Builder
	for _, c := range counts {
		b.WriteRune(levels[c*(len(levels)-1)/peak])
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
