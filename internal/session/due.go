// Package session holds the pure selection policies and the session-assembly
// algorithm that turns candidate pools into a bounded, ordered card queue.
package session

import (
	"time"

	"github.com/example/leerbot/pkg/models"
)

// Exposure requires a well-consolidated memory; below this stability an item
// still comes due often enough on its own.
const exposureMinStabilityDays = 30

// IsDue reports whether an item should be reviewed now. Items that have never
// been reviewed are always due, regardless of any stored due date.
func IsDue(rec models.ProgressRecord, now time.Time) bool {
	if rec.Reps == 0 || rec.State == models.StateNew {
		return true
	}
	if rec.DueAt == nil {
		return true
	}
	return !rec.DueAt.After(now)
}

// IsExposureEligible reports whether a well-learned item may be oversampled.
// Exposure counters silent forgetting of "easy" items that stop appearing
// because they are never due.
func IsExposureEligible(rec models.ProgressRecord, now time.Time, minDaysBetween int) bool {
	if rec.State != models.StateReview {
		return false
	}
	if rec.Stability == nil || *rec.Stability < exposureMinStabilityDays {
		return false
	}
	if rec.LastSeenAt == nil {
		return true
	}
	return now.Sub(*rec.LastSeenAt) >= time.Duration(minDaysBetween)*24*time.Hour
}
