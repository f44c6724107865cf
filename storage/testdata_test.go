package storage

import (
	"math"
	"time"

	"airquality-dashboard/models"
)

func sampleTable() *models.Table {
	return &models.Table{
		Source:         "PRSA_Data_Guanyuan.csv",
		SessionID:      "2f1c9a52-8f3e-4b5e-9d39-5d3c1f7b9a10",
		NumericColumns: []string{"PM2.5", "PM10"},
		TextColumns:    []string{"wd", "station"},
		Derived:        true,
		Records: []*models.Measurement{
			{
				Timestamp:    time.Date(2013, 3, 1, 8, 0, 0, 0, time.UTC),
				Values:       map[string]float64{"PM2.5": 12, "PM10": 4.5},
				Labels:       map[string]string{"wd": "NNW", "station": "Guanyuan"},
				TimeCategory: models.Busy,
				Season:       models.Spring,
			},
			{
				Timestamp:    time.Date(2013, 3, 1, 9, 0, 0, 0, time.UTC),
				Values:       map[string]float64{"PM2.5": math.NaN(), "PM10": 7},
				Labels:       map[string]string{"station": "Guanyuan"},
				TimeCategory: models.Busy,
				Season:       models.Spring,
			},
		},
	}
}
