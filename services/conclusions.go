package services

import "airquality-dashboard/models"

// Conclusions returns the fixed narrative findings shown below the charts.
func Conclusions() []models.Conclusion {
	return []models.Conclusion{
		{
			Title: "Correlation between pollutants and weather",
			Text: "PM2.5 and PM10 concentrations are very strongly related, which points to shared sources " +
				"such as vehicle emissions and road dust; controlling one is likely to reduce the other. " +
				"Temperature correlates positively with ozone (O3): chemical reactions that form ozone run " +
				"faster at higher temperatures, especially under strong sunlight.",
		},
		{
			Title: "Monthly trend",
			Text: "Pollutant concentrations tend to be higher in March and April and lower in July and " +
				"August, plausibly driven by weather and human activity. The pattern can guide when " +
				"pollution controls are most effective during the year.",
		},
		{
			Title: "Seasonal variation",
			Text: "Concentrations are highest in winter, when heating, air stagnation and weather conditions " +
				"trap pollutants, and lowest in summer, when stronger winds, higher temperatures and better " +
				"mixing disperse them. Pollution policy can be tuned to the season.",
		},
		{
			Title: "Busy versus non-busy hours",
			Text: "PM2.5 and PM10 differ little between busy and non-busy hours, so traffic is not the main " +
				"driver of changes in air pollution; constant sources such as industry or combustion " +
				"dominate. PM10 exceeds PM2.5 in both categories, so coarse particles from dust and " +
				"construction deserve particular attention.",
		},
	}
}
