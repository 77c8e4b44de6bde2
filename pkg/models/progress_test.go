package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRating(t *testing.T) {
	cases := map[string]Rating{
		"again":     RatingAgain,
		"dont-know": RatingAgain,
		"hard":      RatingHard,
		"good":      RatingGood,
		"got-it":    RatingGood,
		"easy":      RatingEasy,
		"":          RatingGood,
		"whatever":  RatingGood,
	}
	for label, want := range cases {
		assert.Equal(t, want, ParseRating(label), "label %q", label)
	}
}

func TestNewProgressRecordSentinel(t *testing.T) {
	rec := NewProgressRecord(1, 2, KindPhrase)
	assert.Equal(t, StateNew, rec.State)
	assert.Equal(t, 0, rec.Reps)
	assert.Nil(t, rec.Stability)
	assert.Nil(t, rec.DueAt)
	assert.Equal(t, 0.0, rec.StabilityDays())
}

func TestElapsedDays(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var rec ProgressRecord
	assert.Equal(t, 0.0, rec.ElapsedDays(now))

	reviewed := now.AddDate(0, 0, -3)
	rec.LastReviewedAt = &reviewed
	assert.InDelta(t, 3.0, rec.ElapsedDays(now), 1e-9)

	// Clock moved backwards: clamp instead of going negative.
	future := now.Add(time.Hour)
	rec.LastReviewedAt = &future
	assert.Equal(t, 0.0, rec.ElapsedDays(now))
}

func TestTracksLapses(t *testing.T) {
	assert.True(t, KindLemma.TracksLapses())
	assert.True(t, KindFragment.TracksLapses())
	assert.False(t, KindPhrase.TracksLapses())
	assert.False(t, KindSlang.TracksLapses())
}
