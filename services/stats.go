package services

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"airquality-dashboard/models"
)

// finite returns the non-NaN, non-Inf values of xs in a new slice.
func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// sortedFinite returns the finite values of xs sorted ascending.
func sortedFinite(xs []float64) []float64 {
	out := finite(xs)
	sort.Float64s(out)
	return out
}

// mean of the finite values, NaN when there are none.
func mean(xs []float64) float64 {
	f := finite(xs)
	if len(f) == 0 {
		return math.NaN()
	}
	return stat.Mean(f, nil)
}

// percentile interpolates linearly between closest ranks, the convention
// of numpy's default percentile and of pandas describe. sorted must be
// ascending and non-empty.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// summarize computes the describe() statistics of one column.
func summarize(column string, xs []float64) models.ColumnSummary {
	s := sortedFinite(xs)
	sum := models.ColumnSummary{Column: column, Count: len(s)}
	if len(s) == 0 {
		nan := models.Number(math.NaN())
		sum.Mean, sum.Std, sum.Min, sum.Q1, sum.Median, sum.Q3, sum.Max = nan, nan, nan, nan, nan, nan, nan
		return sum
	}

	m, std := stat.MeanStdDev(s, nil)
	if len(s) < 2 {
		std = math.NaN()
	}
	sum.Mean = models.Number(m)
	sum.Std = models.Number(std)
	sum.Min = models.Number(s[0])
	sum.Q1 = models.Number(percentile(s, 0.25))
	sum.Median = models.Number(percentile(s, 0.5))
	sum.Q3 = models.Number(percentile(s, 0.75))
	sum.Max = models.Number(s[len(s)-1])
	return sum
}

// skewness is the adjusted Fisher-Pearson coefficient; NaN below three values.
func skewness(xs []float64) float64 {
	f := finite(xs)
	if len(f) < 3 {
		return math.NaN()
	}
	return stat.Skew(f, nil)
}

// histogram bins the finite values of xs into equal-width bins spanning
// [min, max]; the maximum falls into the last bin.
func histogram(column string, xs []float64, bins int) models.Distribution {
	d := models.Distribution{Column: column, Skewness: models.Number(skewness(xs))}
	s := sortedFinite(xs)
	if len(s) == 0 || bins < 1 {
		return d
	}

	lo, hi := s[0], s[len(s)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := floats.Span(make([]float64, bins+1), lo, hi)

	d.Edges = make([]models.Number, len(edges))
	for i, e := range edges {
		d.Edges[i] = models.Number(e)
	}

	// Histogram treats the last divider as exclusive.
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, s, nil)
	d.Counts = make([]int, len(counts))
	for i, c := range counts {
		d.Counts[i] = int(c)
	}
	return d
}

// correlation is the Pearson coefficient over the rows where both values are
// present; NaN with fewer than two such rows.
func correlation(x, y []float64) float64 {
	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// boxStats computes box-plot statistics with whiskers at 1.5 IQR, each
// whisker ending at the most extreme value inside the fence.
func boxStats(xs []float64) models.BoxStats {
	s := sortedFinite(xs)
	b := models.BoxStats{Count: len(s)}
	if len(s) == 0 {
		nan := models.Number(math.NaN())
		b.LowerWhisker, b.Q1, b.Median, b.Q3, b.UpperWhisker = nan, nan, nan, nan, nan
		return b
	}

	q1, med, q3 := percentile(s, 0.25), percentile(s, 0.5), percentile(s, 0.75)
	iqr := q3 - q1
	lowFence, highFence := q1-1.5*iqr, q3+1.5*iqr

	lower, upper := q1, q3
	for _, v := range s {
		if v >= lowFence {
			lower = v
			break
		}
	}
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] <= highFence {
			upper = s[i]
			break
		}
	}
	for _, v := range s {
		if v < lowFence || v > highFence {
			b.Outliers++
		}
	}

	b.LowerWhisker = models.Number(lower)
	b.Q1 = models.Number(q1)
	b.Median = models.Number(med)
	b.Q3 = models.Number(q3)
	b.UpperWhisker = models.Number(upper)
	return b
}
