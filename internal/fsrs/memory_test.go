package fsrs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/leerbot/pkg/models"
)

func testModel() *MemoryModel {
	cfg := DefaultConfig()
	cfg.EnableFuzz = false
	return NewMemoryModel(cfg)
}

func TestProfileFor(t *testing.T) {
	assert.Equal(t, ProfileFragment, ProfileFor(models.KindFragment))
	assert.Equal(t, ProfileWord, ProfileFor(models.KindLemma))
	assert.Equal(t, ProfileWord, ProfileFor(models.KindPhrase))
	assert.Equal(t, ProfileWord, ProfileFor(models.KindSlang))
}

func TestUpdateNewWord(t *testing.T) {
	m := testModel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := models.NewProgressRecord(7, 42, models.KindLemma)

	out := m.Update(rec, models.RatingGood, ProfileWord, now)

	assert.Equal(t, models.StateLearning, out.State)
	require.NotNil(t, out.DueAt)
	assert.Equal(t, now.Add(10*time.Minute), *out.DueAt)
	require.NotNil(t, out.Stability)
	assert.InDelta(t, 3.7145, *out.Stability, 1e-9)
	assert.Equal(t, 1, out.Reps)
	assert.Equal(t, 0, out.Lapses)
	require.NotNil(t, out.LastReviewedAt)
	assert.Equal(t, now, *out.LastReviewedAt)
	require.NotNil(t, out.LastSeenAt)
	assert.Equal(t, now, *out.LastSeenAt)
}

func TestUpdateAgainIncrementsLapses(t *testing.T) {
	m := testModel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := reviewRecord(20, 5, now.AddDate(0, 0, -20))
	rec.Lapses = 1

	out := m.Update(rec, models.RatingAgain, ProfileWord, now)

	assert.Equal(t, 2, out.Lapses)
	assert.Equal(t, rec.Reps+1, out.Reps)
	assert.Equal(t, models.StateRelearning, out.State)
	require.NotNil(t, out.DueAt)
	assert.Equal(t, now.Add(10*time.Minute), *out.DueAt)
}

func TestUpdateSuccessDoesNotTouchLapses(t *testing.T) {
	m := testModel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := reviewRecord(20, 5, now.AddDate(0, 0, -20))
	rec.Lapses = 3

	for _, g := range []models.Rating{models.RatingHard, models.RatingGood, models.RatingEasy} {
		out := m.Update(rec, g, ProfileWord, now)
		assert.Equal(t, 3, out.Lapses, "rating %d", g)
	}
}

func TestUpdateHardCapsDueDate(t *testing.T) {
	m := testModel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// A very stable item would normally be pushed weeks out even on Hard.
	rec := reviewRecord(100, 5, now.AddDate(0, 0, -100))
	out := m.Update(rec, models.RatingHard, ProfileWord, now)

	require.NotNil(t, out.DueAt)
	assert.Equal(t, now.AddDate(0, 0, 5), *out.DueAt)

	// Good on the same item is free to go further out.
	good := m.Update(rec, models.RatingGood, ProfileWord, now)
	require.NotNil(t, good.DueAt)
	assert.True(t, good.DueAt.After(*out.DueAt))
}

func TestUpdateDueNeverInPast(t *testing.T) {
	m := testModel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	recs := []models.ProgressRecord{
		models.NewProgressRecord(1, 1, models.KindLemma),
		reviewRecord(0.5, 8, now.AddDate(0, 0, -30)),
		reviewRecord(50, 3, now.Add(-time.Hour)),
	}
	for _, rec := range recs {
		for _, g := range []models.Rating{models.RatingAgain, models.RatingHard, models.RatingGood, models.RatingEasy} {
			out := m.Update(rec, g, ProfileWord, now)
			require.NotNil(t, out.DueAt)
			assert.True(t, out.DueAt.After(now), "rating %d", g)
		}
	}
}

func TestUpdateIsPure(t *testing.T) {
	m := testModel()
	now := time.Now()
	rec := models.NewProgressRecord(1, 1, models.KindLemma)

	_ = m.Update(rec, models.RatingGood, ProfileWord, now)

	assert.Equal(t, models.StateNew, rec.State)
	assert.Equal(t, 0, rec.Reps)
	assert.Nil(t, rec.Stability)
	assert.Nil(t, rec.DueAt)
}

func TestNewFragmentShortCircuit(t *testing.T) {
	m := testModel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		rating     models.Rating
		stability  float64
		difficulty float64
		state      models.CardState
		due        time.Time
		lapses     int
	}{
		{models.RatingAgain, 0.5, 7, models.StateLearning, now.Add(10 * time.Minute), 1},
		{models.RatingHard, 3, 6, models.StateReview, now.AddDate(0, 0, 3), 0},
		{models.RatingGood, 14, 5, models.StateReview, now.AddDate(0, 0, 14), 0},
		{models.RatingEasy, 30, 3, models.StateReview, now.AddDate(0, 0, 30), 0},
	}
	for _, tc := range cases {
		rec := models.NewProgressRecord(1, 9, models.KindFragment)
		out := m.Update(rec, tc.rating, ProfileFragment, now)

		require.NotNil(t, out.Stability, "rating %d", tc.rating)
		assert.Equal(t, tc.stability, *out.Stability, "rating %d", tc.rating)
		assert.Equal(t, tc.difficulty, out.Difficulty, "rating %d", tc.rating)
		assert.Equal(t, tc.state, out.State, "rating %d", tc.rating)
		require.NotNil(t, out.DueAt, "rating %d", tc.rating)
		assert.Equal(t, tc.due, *out.DueAt, "rating %d", tc.rating)
		assert.Equal(t, 1, out.Reps, "rating %d", tc.rating)
		assert.Equal(t, tc.lapses, out.Lapses, "rating %d", tc.rating)
	}
}

func TestSeenFragmentUsesFragmentTrack(t *testing.T) {
	m := testModel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Identical review-state records on both tracks: the fragment track's
	// lower retention target schedules further out.
	wordRec := reviewRecord(14, 5, now.AddDate(0, 0, -14))
	fragRec := wordRec
	fragRec.Kind = models.KindFragment

	word := m.Update(wordRec, models.RatingGood, ProfileWord, now)
	frag := m.Update(fragRec, models.RatingGood, ProfileFragment, now)

	require.NotNil(t, word.DueAt)
	require.NotNil(t, frag.DueAt)
	assert.True(t, frag.DueAt.After(*word.DueAt))
}

func TestWordLearningStepsThenGraduate(t *testing.T) {
	m := testModel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rec := models.NewProgressRecord(1, 1, models.KindLemma)
	first := m.Update(rec, models.RatingGood, ProfileWord, now)
	assert.Equal(t, models.StateLearning, first.State)

	later := now.Add(15 * time.Minute)
	second := m.Update(first, models.RatingGood, ProfileWord, later)
	assert.Equal(t, models.StateReview, second.State)
	assert.Equal(t, 2, second.Reps)
	require.NotNil(t, second.DueAt)
	assert.True(t, second.DueAt.After(later.Add(23*time.Hour)), "graduation schedules at least a day out")
}
