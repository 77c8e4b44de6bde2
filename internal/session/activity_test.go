package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/leerbot/pkg/models"
)

func history(counts ...int) []models.DailyActivity {
	days := make([]models.DailyActivity, len(counts))
	for i, c := range counts {
		days[i] = models.DailyActivity{ReviewCount: c}
	}
	return days
}

func TestClassifyActivity(t *testing.T) {
	cases := []struct {
		name    string
		history []models.DailyActivity
		level   models.ActivityLevel
		slots   int
		minDays int
	}{
		{"empty history defaults low", nil, models.ActivityLow, 2, 21},
		{"light usage", history(10, 5, 0, 20), models.ActivityLow, 2, 21},
		{"medium at threshold", history(50, 50, 50), models.ActivityMedium, 5, 14},
		{"medium below high", history(80, 90, 99), models.ActivityMedium, 5, 14},
		{"high at threshold", history(100), models.ActivityHigh, 10, 7},
		{"high heavy usage", history(200, 150, 120), models.ActivityHigh, 10, 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyActivity(tc.history)
			assert.Equal(t, tc.level, got.Level)
			assert.Equal(t, tc.slots, got.ExposureSlots)
			assert.Equal(t, tc.minDays, got.MinDaysBetweenExposure)
		})
	}
}
