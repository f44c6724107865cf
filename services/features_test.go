package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airquality-dashboard/models"
)

func TestCategorizeHour(t *testing.T) {
	busy := map[int]bool{7: true, 8: true, 9: true, 17: true, 18: true, 19: true}

	for hour := 0; hour <= 23; hour++ {
		got, err := CategorizeHour(hour)
		require.NoError(t, err)

		want := models.NonBusy
		if busy[hour] {
			want = models.Busy
		}
		if got != want {
			t.Errorf("CategorizeHour(%d) = %s; want %s", hour, got, want)
		}
	}
}

func TestCategorizeHourRejectsOutOfRange(t *testing.T) {
	for _, hour := range []int{-1, 24, 100} {
		_, err := CategorizeHour(hour)
		assert.ErrorIs(t, err, ErrInvalidInput, "hour %d", hour)
	}
}

func TestGetSeasonPartitionsMonths(t *testing.T) {
	want := map[models.Season][]int{
		models.Winter: {1, 2, 12},
		models.Spring: {3, 4, 5},
		models.Summer: {6, 7, 8},
		models.Autumn: {9, 10, 11},
	}

	got := make(map[models.Season][]int)
	for month := 1; month <= 12; month++ {
		season, err := GetSeason(month)
		require.NoError(t, err)
		got[season] = append(got[season], month)
	}
	assert.Equal(t, want, got)
}

func TestGetSeasonRejectsOutOfRange(t *testing.T) {
	for _, month := range []int{0, 13, -3} {
		_, err := GetSeason(month)
		assert.ErrorIs(t, err, ErrInvalidInput, "month %d", month)
	}
}

func TestApplyDerivedColumns(t *testing.T) {
	table, err := NewLoader(newTestLogger()).Read(strings.NewReader(sampleCSV), "sample")
	require.NoError(t, err)

	derived, err := ApplyDerivedColumns(table)
	require.NoError(t, err)
	require.Equal(t, table.Len(), derived.Len())
	assert.True(t, derived.Derived)

	want := []struct {
		category models.TimeCategory
		season   models.Season
	}{
		{models.NonBusy, models.Spring},
		{models.Busy, models.Spring},
		{models.Busy, models.Summer},
		{models.NonBusy, models.Winter},
		{models.Busy, models.Winter},
	}
	for i, r := range derived.Records {
		assert.Equal(t, table.Records[i].Timestamp, r.Timestamp, "row order must be preserved")
		assert.Equal(t, want[i].category, r.TimeCategory, "row %d", i)
		assert.Equal(t, want[i].season, r.Season, "row %d", i)
	}

	// The input table is left as loaded.
	assert.False(t, table.Derived)
	for _, r := range table.Records {
		assert.Empty(t, r.TimeCategory)
		assert.Empty(t, r.Season)
	}
}

func TestApplyDerivedColumnsIsIdempotent(t *testing.T) {
	table, err := NewLoader(newTestLogger()).Read(strings.NewReader(sampleCSV), "sample")
	require.NoError(t, err)

	once, err := ApplyDerivedColumns(table)
	require.NoError(t, err)
	twice, err := ApplyDerivedColumns(once)
	require.NoError(t, err)

	require.Equal(t, once.Len(), twice.Len())
	assert.Equal(t, once.NumericColumns, twice.NumericColumns)
	assert.Equal(t, once.TextColumns, twice.TextColumns)
	for i := range once.Records {
		assert.Equal(t, once.Records[i].Timestamp, twice.Records[i].Timestamp)
		assert.Equal(t, once.Records[i].TimeCategory, twice.Records[i].TimeCategory)
		assert.Equal(t, once.Records[i].Season, twice.Records[i].Season)
	}
}

func TestGuanyuanFirstRushHourRow(t *testing.T) {
	csv := "No,year,month,day,hour,PM2.5\n1,2013,3,1,8,12\n"
	table, err := NewLoader(newTestLogger()).Read(strings.NewReader(csv), "example")
	require.NoError(t, err)
	derived, err := ApplyDerivedColumns(table)
	require.NoError(t, err)

	r := derived.Records[0]
	assert.Equal(t, "2013-03-01T08:00", r.Timestamp.Format("2006-01-02T15:04"))
	assert.Equal(t, 12.0, r.Value("PM2.5"))
	assert.Equal(t, models.Busy, r.TimeCategory)
	assert.Equal(t, models.Spring, r.Season)
	assert.Equal(t, []string{"PM2.5"}, derived.NumericColumns)
	assert.Empty(t, derived.TextColumns)
}

func TestApplyDerivedColumnsNilTable(t *testing.T) {
	_, err := ApplyDerivedColumns(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
