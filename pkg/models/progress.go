package models

import "time"

// CardState is the FSRS state machine position of an item for one user.
// The integer values match the storage representation.
type CardState int

const (
	StateNew CardState = iota
	StateLearning
	StateReview
	StateRelearning
)

// Rating is a learner's answer quality for one review.
type Rating int

const (
	RatingAgain Rating = iota + 1
	RatingHard
	RatingGood
	RatingEasy
)

// ParseRating maps UI-level answer labels onto ratings. Unknown or legacy
// labels fall back to Good so a stray label never interrupts a session.
func ParseRating(label string) Rating {
	switch label {
	case "again", "dont-know":
		return RatingAgain
	case "hard":
		return RatingHard
	case "got-it", "good":
		return RatingGood
	case "easy":
		return RatingEasy
	default:
		return RatingGood
	}
}

// ProgressRecord tracks one user's memory state for one item. A nil Stability
// together with Reps == 0 and StateNew means the item has never been reviewed;
// the three always move together.
type ProgressRecord struct {
	UserID         int64      `json:"user_id" db:"user_id"`
	ItemID         int64      `json:"item_id" db:"item_id"`
	Kind           ItemKind   `json:"kind" db:"kind"`
	Stability      *float64   `json:"stability" db:"stability"`
	Difficulty     float64    `json:"difficulty" db:"difficulty"`
	State          CardState  `json:"state" db:"state"`
	DueAt          *time.Time `json:"due_at" db:"due_at"`
	Reps           int        `json:"reps" db:"reps"`
	Lapses         int        `json:"lapses" db:"lapses"`
	LastReviewedAt *time.Time `json:"last_reviewed_at" db:"last_reviewed_at"`
	LastSeenAt     *time.Time `json:"last_seen_at" db:"last_seen_at"`
}

// NewProgressRecord returns the never-reviewed sentinel for an item.
func NewProgressRecord(userID, itemID int64, kind ItemKind) ProgressRecord {
	return ProgressRecord{
		UserID: userID,
		ItemID: itemID,
		Kind:   kind,
		State:  StateNew,
	}
}

// StabilityDays returns the stored stability or 0 for never-reviewed items.
func (p ProgressRecord) StabilityDays() float64 {
	if p.Stability == nil {
		return 0
	}
	return *p.Stability
}

// ElapsedDays returns full days since the last review, 0 if never reviewed
// or if the clock appears to have moved backwards.
func (p ProgressRecord) ElapsedDays(now time.Time) float64 {
	if p.LastReviewedAt == nil {
		return 0
	}
	d := now.Sub(*p.LastReviewedAt).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}
