// Package fsrs implements the FSRS (Free Spaced Repetition Scheduler) update
// rule used to evolve per-item memory state. All functions here are pure with
// respect to the clock: callers pass now explicitly.
package fsrs

import (
	"math"
	"math/rand"
	"time"

	"github.com/example/leerbot/pkg/models"
)

// Retrievability decay constants. factor is chosen so that an item reviewed
// exactly at its stability interval sits at 90% recall probability.
const (
	decay  = -0.5
	factor = 19.0 / 81.0
)

// Intra-day requeue steps for items still in the learning phase.
const (
	againStep = 1 * time.Minute
	hardStep  = 5 * time.Minute
	goodStep  = 10 * time.Minute
	lapseStep = 10 * time.Minute
)

// Candidate is one possible next memory state, produced by Repeat for each of
// the four ratings before the observed rating picks the winner.
type Candidate struct {
	Stability     float64
	Difficulty    float64
	State         models.CardState
	Due           time.Time
	ScheduledDays int
}

// Scheduler runs the FSRS repeat step for one parameter track.
type Scheduler struct {
	p   Params
	rng *rand.Rand
}

// NewScheduler creates a scheduler for the given parameters, seeding interval
// fuzz from the wall clock.
func NewScheduler(p Params) *Scheduler {
	return &Scheduler{
		p:   p,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand replaces the fuzz source; tests use a fixed seed.
func (s *Scheduler) WithRand(r *rand.Rand) *Scheduler {
	s.rng = r
	return s
}

// Repeat computes the candidate next state for every rating. The observed
// rating is resolved by the caller so that all four branches stay comparable
// and testable.
func (s *Scheduler) Repeat(rec models.ProgressRecord, now time.Time) map[models.Rating]Candidate {
	switch rec.State {
	case models.StateNew:
		return s.repeatNew(now)
	case models.StateLearning, models.StateRelearning:
		return s.repeatLearning(rec, now)
	default:
		return s.repeatReview(rec, now)
	}
}

func (s *Scheduler) repeatNew(now time.Time) map[models.Rating]Candidate {
	out := make(map[models.Rating]Candidate, 4)
	for _, g := range []models.Rating{models.RatingAgain, models.RatingHard, models.RatingGood, models.RatingEasy} {
		c := Candidate{
			Stability:  s.initStability(g),
			Difficulty: s.initDifficulty(g),
		}
		switch g {
		case models.RatingAgain:
			c.State = models.StateLearning
			c.Due = now.Add(againStep)
		case models.RatingHard:
			c.State = models.StateLearning
			c.Due = now.Add(hardStep)
		case models.RatingGood:
			c.State = models.StateLearning
			c.Due = now.Add(goodStep)
		case models.RatingEasy:
			c.State = models.StateReview
			c.ScheduledDays = s.nextInterval(c.Stability)
			c.Due = now.AddDate(0, 0, c.ScheduledDays)
		}
		out[g] = c
	}
	return out
}

func (s *Scheduler) repeatLearning(rec models.ProgressRecord, now time.Time) map[models.Rating]Candidate {
	stability := rec.StabilityDays()
	if stability <= 0 {
		stability = s.initStability(models.RatingGood)
	}
	difficulty := rec.Difficulty
	if difficulty <= 0 {
		difficulty = s.initDifficulty(models.RatingGood)
	}

	out := make(map[models.Rating]Candidate, 4)
	for _, g := range []models.Rating{models.RatingAgain, models.RatingHard, models.RatingGood, models.RatingEasy} {
		c := Candidate{
			Stability:  stability,
			Difficulty: s.nextDifficulty(difficulty, g),
		}
		switch g {
		case models.RatingAgain:
			// Stay in the learning phase, requeue shortly.
			c.State = rec.State
			c.Due = now.Add(hardStep)
		case models.RatingHard:
			c.State = rec.State
			c.Due = now.Add(goodStep)
		case models.RatingGood:
			c.State = models.StateReview
			c.ScheduledDays = s.nextInterval(stability)
			c.Due = now.AddDate(0, 0, c.ScheduledDays)
		case models.RatingEasy:
			// Graduate with a strictly longer interval than Good.
			good := s.nextInterval(stability)
			c.State = models.StateReview
			c.ScheduledDays = maxInt(good+1, s.nextInterval(stability*math.Exp(s.p.W[16]*0.1)))
			c.Due = now.AddDate(0, 0, c.ScheduledDays)
		}
		out[g] = c
	}
	return out
}

func (s *Scheduler) repeatReview(rec models.ProgressRecord, now time.Time) map[models.Rating]Candidate {
	stability := rec.StabilityDays()
	if stability <= 0 {
		stability = s.initStability(models.RatingGood)
	}
	difficulty := clamp(rec.Difficulty, 1, 10)
	if rec.Difficulty <= 0 {
		difficulty = s.initDifficulty(models.RatingGood)
	}
	retr := forgettingCurve(rec.ElapsedDays(now), stability)

	out := make(map[models.Rating]Candidate, 4)
	for _, g := range []models.Rating{models.RatingAgain, models.RatingHard, models.RatingGood, models.RatingEasy} {
		c := Candidate{Difficulty: s.nextDifficulty(difficulty, g)}
		switch g {
		case models.RatingAgain:
			c.Stability = s.nextForgetStability(difficulty, stability, retr)
			c.State = models.StateRelearning
			c.Due = now.Add(lapseStep)
		default:
			c.Stability = s.nextRecallStability(difficulty, stability, retr, g)
			c.State = models.StateReview
			c.ScheduledDays = s.nextInterval(c.Stability)
			c.Due = now.AddDate(0, 0, c.ScheduledDays)
		}
		out[g] = c
	}

	// Keep the interval ordering Hard <= Good < Easy even after rounding
	// and fuzz.
	hard, good, easy := out[models.RatingHard], out[models.RatingGood], out[models.RatingEasy]
	if hard.ScheduledDays > good.ScheduledDays {
		hard.ScheduledDays = good.ScheduledDays
		hard.Due = now.AddDate(0, 0, hard.ScheduledDays)
		out[models.RatingHard] = hard
	}
	if easy.ScheduledDays <= good.ScheduledDays {
		easy.ScheduledDays = good.ScheduledDays + 1
		easy.Due = now.AddDate(0, 0, easy.ScheduledDays)
		out[models.RatingEasy] = easy
	}
	return out
}

// initStability is the first-review stability, taken straight from the weight
// vector, one value per rating.
func (s *Scheduler) initStability(g models.Rating) float64 {
	return math.Max(s.p.W[int(g)-1], 0.1)
}

// initDifficulty is the first-review difficulty on the 1-10 scale.
func (s *Scheduler) initDifficulty(g models.Rating) float64 {
	return clamp(s.p.W[4]-float64(int(g)-3)*s.p.W[5], 1, 10)
}

// nextDifficulty nudges difficulty by the rating and reverts it toward the
// Good-rated baseline so it cannot drift unboundedly.
func (s *Scheduler) nextDifficulty(d float64, g models.Rating) float64 {
	next := d - s.p.W[6]*float64(int(g)-3)
	reverted := s.p.W[7]*s.initDifficulty(models.RatingGood) + (1-s.p.W[7])*next
	return clamp(reverted, 1, 10)
}

// nextRecallStability grows stability after a successful review. Hard applies
// the w15 penalty, Easy the w16 bonus.
func (s *Scheduler) nextRecallStability(d, stability, retr float64, g models.Rating) float64 {
	hardPenalty := 1.0
	if g == models.RatingHard {
		hardPenalty = s.p.W[15]
	}
	easyBonus := 1.0
	if g == models.RatingEasy {
		easyBonus = s.p.W[16]
	}
	grow := math.Exp(s.p.W[8]) *
		(11 - d) *
		math.Pow(stability, -s.p.W[9]) *
		(math.Exp(s.p.W[10]*(1-retr)) - 1) *
		hardPenalty * easyBonus
	return stability * (1 + grow)
}

// nextForgetStability shrinks stability after a lapse; it never exceeds the
// pre-lapse stability.
func (s *Scheduler) nextForgetStability(d, stability, retr float64) float64 {
	next := s.p.W[11] *
		math.Pow(d, -s.p.W[12]) *
		(math.Pow(stability+1, s.p.W[13]) - 1) *
		math.Exp(s.p.W[14]*(1-retr))
	return math.Min(next, stability)
}

// nextInterval converts stability into a whole-day interval hitting the
// requested retention, with optional fuzz, clamped to [1, MaximumInterval].
func (s *Scheduler) nextInterval(stability float64) int {
	raw := stability / factor * (math.Pow(s.p.RequestRetention, 1/decay) - 1)
	days := int(math.Round(raw))
	if s.p.EnableFuzz && days >= 3 {
		days = s.fuzz(days)
	}
	if days < 1 {
		days = 1
	}
	if days > s.p.MaximumInterval {
		days = s.p.MaximumInterval
	}
	return days
}

// fuzz spreads an interval by roughly ±5% so that cards reviewed together do
// not stay clustered forever.
func (s *Scheduler) fuzz(days int) int {
	spread := maxInt(1, days*5/100)
	return days + s.rng.Intn(2*spread+1) - spread
}

// forgettingCurve is the FSRS power-law recall probability after elapsed days
// at the given stability.
func forgettingCurve(elapsedDays, stability float64) float64 {
	return math.Pow(1+factor*elapsedDays/stability, decay)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
