package fsrs

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/leerbot/pkg/models"
)

func noFuzzParams() Params {
	p := DefaultParams()
	p.EnableFuzz = false
	return p
}

func reviewRecord(stability, difficulty float64, reviewedAt time.Time) models.ProgressRecord {
	due := reviewedAt.AddDate(0, 0, int(stability))
	return models.ProgressRecord{
		UserID:         1,
		ItemID:         1,
		Kind:           models.KindLemma,
		Stability:      &stability,
		Difficulty:     difficulty,
		State:          models.StateReview,
		DueAt:          &due,
		Reps:           3,
		LastReviewedAt: &reviewedAt,
	}
}

func TestRepeatNewCandidates(t *testing.T) {
	s := NewScheduler(noFuzzParams())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	out := s.Repeat(models.NewProgressRecord(1, 1, models.KindLemma), now)
	require.Len(t, out, 4)

	again := out[models.RatingAgain]
	assert.Equal(t, models.StateLearning, again.State)
	assert.Equal(t, now.Add(1*time.Minute), again.Due)
	assert.InDelta(t, 0.4872, again.Stability, 1e-9)

	good := out[models.RatingGood]
	assert.Equal(t, models.StateLearning, good.State)
	assert.Equal(t, now.Add(10*time.Minute), good.Due)
	assert.InDelta(t, 3.7145, good.Stability, 1e-9)
	assert.InDelta(t, 5.1618, good.Difficulty, 1e-9)

	easy := out[models.RatingEasy]
	assert.Equal(t, models.StateReview, easy.State)
	assert.InDelta(t, 13.8206, easy.Stability, 1e-9)
	assert.GreaterOrEqual(t, easy.ScheduledDays, 1)
	assert.True(t, easy.Due.After(now))
}

func TestRepeatNewDifficultySpread(t *testing.T) {
	s := NewScheduler(noFuzzParams())
	now := time.Now()

	out := s.Repeat(models.NewProgressRecord(1, 1, models.KindLemma), now)
	assert.Greater(t, out[models.RatingAgain].Difficulty, out[models.RatingHard].Difficulty)
	assert.Greater(t, out[models.RatingHard].Difficulty, out[models.RatingGood].Difficulty)
	assert.Greater(t, out[models.RatingGood].Difficulty, out[models.RatingEasy].Difficulty)
}

func TestRepeatLearningGraduation(t *testing.T) {
	s := NewScheduler(noFuzzParams())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	stability := 3.7145
	rec := models.ProgressRecord{
		Stability:  &stability,
		Difficulty: 5.1618,
		State:      models.StateLearning,
		Reps:       1,
	}
	out := s.Repeat(rec, now)

	assert.Equal(t, models.StateLearning, out[models.RatingAgain].State)
	assert.Equal(t, models.StateLearning, out[models.RatingHard].State)

	good := out[models.RatingGood]
	assert.Equal(t, models.StateReview, good.State)
	assert.GreaterOrEqual(t, good.ScheduledDays, 1)

	easy := out[models.RatingEasy]
	assert.Equal(t, models.StateReview, easy.State)
	assert.Greater(t, easy.ScheduledDays, good.ScheduledDays)
}

func TestRepeatReviewIntervalOrdering(t *testing.T) {
	s := NewScheduler(noFuzzParams())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := reviewRecord(10, 5, now.AddDate(0, 0, -10))

	out := s.Repeat(rec, now)
	hard := out[models.RatingHard].ScheduledDays
	good := out[models.RatingGood].ScheduledDays
	easy := out[models.RatingEasy].ScheduledDays

	assert.LessOrEqual(t, hard, good)
	assert.Less(t, good, easy)
}

func TestRepeatReviewLapse(t *testing.T) {
	s := NewScheduler(noFuzzParams())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := reviewRecord(20, 5, now.AddDate(0, 0, -20))

	again := s.Repeat(rec, now)[models.RatingAgain]
	assert.Equal(t, models.StateRelearning, again.State)
	assert.Equal(t, now.Add(10*time.Minute), again.Due)
	assert.Less(t, again.Stability, 20.0, "lapse must shrink stability")
	assert.Greater(t, again.Stability, 0.0)
}

func TestRepeatReviewGrowsStability(t *testing.T) {
	s := NewScheduler(noFuzzParams())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := reviewRecord(10, 5, now.AddDate(0, 0, -10))

	good := s.Repeat(rec, now)[models.RatingGood]
	assert.Greater(t, good.Stability, 10.0)
}

func TestNextIntervalMatchesRetention(t *testing.T) {
	// At the default 0.9 retention the interval equals the stability by
	// construction of the decay factor.
	s := NewScheduler(noFuzzParams())
	assert.Equal(t, 10, s.nextInterval(10))
	assert.Equal(t, 100, s.nextInterval(100))

	// Higher retention targets shorten the interval.
	p := noFuzzParams()
	p.RequestRetention = 0.94
	tight := NewScheduler(p)
	assert.Less(t, tight.nextInterval(10), 10)
}

func TestNextIntervalBounds(t *testing.T) {
	p := noFuzzParams()
	p.MaximumInterval = 365
	s := NewScheduler(p)

	assert.Equal(t, 1, s.nextInterval(0.01))
	assert.Equal(t, 365, s.nextInterval(100000))
}

func TestFuzzStaysWithinSpread(t *testing.T) {
	p := DefaultParams()
	s := NewScheduler(p).WithRand(rand.New(rand.NewSource(42)))

	for i := 0; i < 100; i++ {
		days := s.fuzz(100)
		assert.GreaterOrEqual(t, days, 95)
		assert.LessOrEqual(t, days, 105)
	}
}

func TestForgettingCurve(t *testing.T) {
	assert.InDelta(t, 1.0, forgettingCurve(0, 10), 1e-9)
	assert.InDelta(t, 0.9, forgettingCurve(10, 10), 1e-9)
	assert.Greater(t, forgettingCurve(5, 10), forgettingCurve(20, 10))
}
