package fsrs

import (
	"math"
	"time"

	"github.com/example/leerbot/pkg/models"
)

// Retrievability estimates current recall probability as a 0-100 display
// value. Never-reviewed items report 0; reviewed rows with no stored
// stability (degenerate legacy data) report 50.
func Retrievability(rec models.ProgressRecord, now time.Time) int {
	if rec.Reps == 0 || rec.LastReviewedAt == nil {
		return 0
	}
	if rec.Stability == nil || *rec.Stability <= 0 {
		return 50
	}
	r := 1 / (1 + rec.ElapsedDays(now)/(9**rec.Stability))
	return int(math.Round(r * 100))
}

// MasteryPercent compresses stability logarithmically onto a 0-100 display
// scale. It is a legacy display metric only and plays no part in scheduling.
func MasteryPercent(stability *float64) int {
	if stability == nil || *stability <= 0 {
		return 0
	}
	p := int(math.Round(100 * (1 - math.Exp(-*stability/120))))
	if p > 100 {
		p = 100
	}
	return p
}
