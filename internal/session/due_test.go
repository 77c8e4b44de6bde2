package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/leerbot/pkg/models"
)

func TestIsDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsDue(models.NewProgressRecord(1, 1, models.KindLemma), now),
		"never-reviewed items are always due")

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	rec := models.ProgressRecord{State: models.StateReview, Reps: 2, DueAt: &past}
	assert.True(t, IsDue(rec, now))

	rec.DueAt = &now
	assert.True(t, IsDue(rec, now), "due exactly now counts as due")

	rec.DueAt = &future
	assert.False(t, IsDue(rec, now))

	rec.DueAt = nil
	assert.True(t, IsDue(rec, now), "reviewed rows without a due date fall back to due")
}

func TestIsExposureEligible(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	strong := 40.0
	weak := 20.0

	rec := models.ProgressRecord{State: models.StateReview, Reps: 5, Stability: &strong}
	assert.True(t, IsExposureEligible(rec, now, 21), "never-seen strong item is eligible")

	rec.Stability = &weak
	assert.False(t, IsExposureEligible(rec, now, 21), "stability below the floor")

	rec.Stability = nil
	assert.False(t, IsExposureEligible(rec, now, 21))

	rec.Stability = &strong
	rec.State = models.StateLearning
	assert.False(t, IsExposureEligible(rec, now, 21), "only consolidated review items qualify")

	rec.State = models.StateReview
	recent := now.AddDate(0, 0, -10)
	rec.LastSeenAt = &recent
	assert.False(t, IsExposureEligible(rec, now, 21), "seen too recently")

	longAgo := now.AddDate(0, 0, -30)
	rec.LastSeenAt = &longAgo
	assert.True(t, IsExposureEligible(rec, now, 21))
}
