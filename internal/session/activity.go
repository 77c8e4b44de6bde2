package session

import "github.com/example/leerbot/pkg/models"

// ClassifyActivity maps recent review throughput (the last seven days of
// per-day counts) onto an exposure policy. Busier learners get more exposure
// slots with tighter spacing; an empty history defaults to low.
func ClassifyActivity(history []models.DailyActivity) models.ActivityProfile {
	low := models.ActivityProfile{
		Level:                  models.ActivityLow,
		ExposureSlots:          2,
		MinDaysBetweenExposure: 21,
	}
	if len(history) == 0 {
		return low
	}

	total := 0
	for _, day := range history {
		total += day.ReviewCount
	}
	avg := float64(total) / float64(len(history))

	switch {
	case avg >= 100:
		return models.ActivityProfile{
			Level:                  models.ActivityHigh,
			ExposureSlots:          10,
			MinDaysBetweenExposure: 7,
		}
	case avg >= 50:
		return models.ActivityProfile{
			Level:                  models.ActivityMedium,
			ExposureSlots:          5,
			MinDaysBetweenExposure: 14,
		}
	default:
		return low
	}
}
