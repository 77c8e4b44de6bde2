package fsrs

import (
	"time"

	"github.com/example/leerbot/pkg/models"
)

// Profile selects the scheduler track for an update.
type Profile int

const (
	// ProfileWord is the vocabulary track: high target retention, standard
	// learning phase.
	ProfileWord Profile = iota
	// ProfileFragment is the reading-comprehension track: lower target
	// retention, and brand-new fragments skip the learning phase entirely.
	ProfileFragment
)

// ProfileFor returns the scheduler track appropriate for an item kind.
func ProfileFor(kind models.ItemKind) Profile {
	if kind == models.KindFragment {
		return ProfileFragment
	}
	return ProfileWord
}

// MemoryModel applies ratings to progress records. It owns one scheduler per
// track; all tunables arrive through the Config, never ambient state.
type MemoryModel struct {
	cfg      Config
	word     *Scheduler
	fragment *Scheduler
}

// NewMemoryModel builds the dual-track model from configuration.
func NewMemoryModel(cfg Config) *MemoryModel {
	cfg = cfg.withDefaults()
	wordParams := DefaultParams()
	wordParams.RequestRetention = cfg.RequestRetention
	wordParams.MaximumInterval = cfg.MaximumInterval
	wordParams.EnableFuzz = cfg.EnableFuzz

	fragParams := wordParams
	fragParams.RequestRetention = cfg.FragmentRequestRetention

	return &MemoryModel{
		cfg:      cfg,
		word:     NewScheduler(wordParams),
		fragment: NewScheduler(fragParams),
	}
}

// WordScheduler exposes the word track, mainly for tests.
func (m *MemoryModel) WordScheduler() *Scheduler { return m.word }

// FragmentScheduler exposes the fragment track, mainly for tests.
func (m *MemoryModel) FragmentScheduler() *Scheduler { return m.fragment }

// Update computes the next memory state for a rating. It is pure: the caller
// applies the returned record to its own view and persists it separately.
// If the repeat step yields no candidate for the rating the input record is
// returned unchanged; callers treat that as a soft failure, not a crash.
func (m *MemoryModel) Update(rec models.ProgressRecord, rating models.Rating, profile Profile, now time.Time) models.ProgressRecord {
	if profile == ProfileFragment && rec.Reps == 0 {
		return m.newFragment(rec, rating, now)
	}

	sched := m.word
	if profile == ProfileFragment {
		sched = m.fragment
	}

	c, ok := sched.Repeat(rec, now)[rating]
	if !ok {
		return rec
	}

	out := rec
	stability := c.Stability
	out.Stability = &stability
	out.Difficulty = c.Difficulty
	out.State = c.State

	due := c.Due
	if rating == models.RatingHard {
		// Training wheel: a single Hard answer must not fling an item weeks
		// into the future early on.
		capAt := now.AddDate(0, 0, m.cfg.HardIntervalCapDays)
		if due.After(capAt) {
			due = capAt
		}
	}
	out.DueAt = &due

	return m.stamp(out, rating, now)
}

// newFragment handles the first rating of a fragment: instead of the short
// learning-phase steps it jumps straight to hand-tuned review intervals, since
// fragments are comprehension scaffolding rather than vocabulary.
func (m *MemoryModel) newFragment(rec models.ProgressRecord, rating models.Rating, now time.Time) models.ProgressRecord {
	out := rec
	var stability float64
	var due time.Time

	switch rating {
	case models.RatingAgain:
		stability = 0.5
		out.Difficulty = 7
		out.State = models.StateLearning
		due = now.Add(10 * time.Minute)
	case models.RatingHard:
		stability = 3
		out.Difficulty = 6
		out.State = models.StateReview
		due = now.AddDate(0, 0, 3)
	case models.RatingEasy:
		stability = 30
		out.Difficulty = 3
		out.State = models.StateReview
		due = now.AddDate(0, 0, 30)
	default: // Good, and any unrecognized rating
		stability = 14
		out.Difficulty = 5
		out.State = models.StateReview
		due = now.AddDate(0, 0, 14)
	}

	out.Stability = &stability
	out.DueAt = &due
	return m.stamp(out, rating, now)
}

// stamp applies the bookkeeping common to every successful update.
func (m *MemoryModel) stamp(rec models.ProgressRecord, rating models.Rating, now time.Time) models.ProgressRecord {
	rec.Reps++
	if rating == models.RatingAgain {
		rec.Lapses++
	}
	reviewed := now
	rec.LastReviewedAt = &reviewed
	rec.LastSeenAt = &reviewed
	return rec
}
