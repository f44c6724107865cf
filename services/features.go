package services

import (
	"fmt"

	"airquality-dashboard/models"
)

// CategorizeHour classifies an hour of day by traffic peak: 07–09 and 17–19
// inclusive are Busy, everything else Non-Busy.
func CategorizeHour(hour int) (models.TimeCategory, error) {
	if hour < 0 || hour > 23 {
		return "", fmt.Errorf("%w: hour %d outside [0,23]", ErrInvalidInput, hour)
	}
	if (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19) {
		return models.Busy, nil
	}
	return models.NonBusy, nil
}

// GetSeason maps a month to its meteorological season.
func GetSeason(month int) (models.Season, error) {
	switch month {
	case 12, 1, 2:
		return models.Winter, nil
	case 3, 4, 5:
		return models.Spring, nil
	case 6, 7, 8:
		return models.Summer, nil
	case 9, 10, 11:
		return models.Autumn, nil
	}
	return "", fmt.Errorf("%w: month %d outside [1,12]", ErrInvalidInput, month)
}

// ApplyDerivedColumns returns a copy of t with TimeCategory and Season set on
// every record. Rows and their order are unchanged and measurement maps are
// shared with t, never modified. Applying it to an already derived table
// yields identical values.
func ApplyDerivedColumns(t *models.Table) (*models.Table, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil table", ErrInvalidInput)
	}

	out := *t
	out.Records = make([]*models.Measurement, len(t.Records))
	for i, r := range t.Records {
		category, err := CategorizeHour(r.Timestamp.Hour())
		if err != nil {
			return nil, err
		}
		season, err := GetSeason(int(r.Timestamp.Month()))
		if err != nil {
			return nil, err
		}

		rec := *r
		rec.TimeCategory = category
		rec.Season = season
		out.Records[i] = &rec
	}
	out.Derived = true
	return &out, nil
}
