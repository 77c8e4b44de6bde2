package session

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/example/leerbot/pkg/models"
)

// Scope parameters are caller obligations; their absence is a programming
// error, not an empty pool.
var (
	ErrMissingChapter = errors.New("session requires a chapter number")
	ErrMissingSong    = errors.New("session requires a song id")
	ErrMissingBook    = errors.New("session requires a book id")
)

// Store is the read surface the assembler needs from the persistence layer.
// Pools arrive as item/progress snapshots; all filtering, quota, and ordering
// decisions happen here.
type Store interface {
	// ReviewPool returns every vocabulary item (lemma, phrase, slang) the
	// user has a progress record for.
	ReviewPool(userID int64) ([]models.Card, error)
	// UnseenVocab returns never-reviewed lemmas and phrases within the given
	// chapters, each list in book order (chapter, then sentence order).
	UnseenVocab(userID int64, chapters []int) (lemmas, phrases []models.Card, err error)
	// SongPool returns a song's vocabulary (lemma, phrase, slang) with any
	// existing progress attached.
	SongPool(userID, songID int64) ([]models.Card, error)
	// FragmentsAfter returns a chapter's fragments strictly after the cursor,
	// ordered by (sentence order, fragment order).
	FragmentsAfter(userID int64, chapter int, cursor models.ReadingCursor) ([]models.Card, error)
	// FragmentPool returns every fragment of a book the user has progress on.
	FragmentPool(userID, bookID int64) ([]models.Card, error)
	// ChapterVocabStats returns per-chapter vocabulary totals and introduced
	// counts, in chapter order.
	ChapterVocabStats(userID int64) ([]ChapterVocabStats, error)
	// ActivityHistory returns per-day review counts for the trailing window.
	ActivityHistory(userID int64, days int) ([]models.DailyActivity, error)
	// Cursor returns the learner's reading position within a chapter.
	Cursor(userID int64, chapter int) (models.ReadingCursor, error)
	// User returns the learner's profile and study preferences.
	User(userID int64) (models.User, error)
}

// Config bounds session sizes. Zero values fall back to the defaults.
type Config struct {
	SessionSize             int
	FragmentReadBatchSize   int
	FragmentReviewBatchSize int
}

// DefaultConfig returns the production session sizes.
func DefaultConfig() Config {
	return Config{
		SessionSize:             20,
		FragmentReadBatchSize:   15,
		FragmentReviewBatchSize: 15,
	}
}

// ChapterFocus quota split: due items from the chapter, exposure items from
// the chapter, due items from everywhere else.
const (
	focusDuePercent      = 60
	focusExposurePercent = 20
)

// Assembler builds sessions from store pools. It holds its own PRNG so tests
// can seed shuffling deterministically.
type Assembler struct {
	store Store
	cfg   Config
	rng   *rand.Rand
	now   func() time.Time
}

// NewAssembler creates an assembler over the given store.
func NewAssembler(store Store, cfg Config) *Assembler {
	def := DefaultConfig()
	if cfg.SessionSize <= 0 {
		cfg.SessionSize = def.SessionSize
	}
	if cfg.FragmentReadBatchSize <= 0 {
		cfg.FragmentReadBatchSize = def.FragmentReadBatchSize
	}
	if cfg.FragmentReviewBatchSize <= 0 {
		cfg.FragmentReviewBatchSize = def.FragmentReviewBatchSize
	}
	return &Assembler{
		store: store,
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		now:   time.Now,
	}
}

// WithRand replaces the shuffle source; tests use a fixed seed.
func (a *Assembler) WithRand(r *rand.Rand) *Assembler {
	a.rng = r
	return a
}

// WithClock replaces the time source; tests freeze it.
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	a.now = now
	return a
}

// Build assembles the session for a request. Empty pools produce an empty
// session with a descriptive message; only missing scope parameters and store
// failures surface as errors.
func (a *Assembler) Build(req models.SessionRequest) (models.Session, error) {
	switch req.Mode {
	case models.ModeReview:
		return a.buildReview(req)
	case models.ModeLearn:
		return a.buildLearn(req)
	case models.ModeChapterFocus:
		return a.buildChapterFocus(req)
	case models.ModeSong:
		return a.buildSong(req)
	case models.ModeFragmentRead:
		return a.buildFragmentRead(req)
	case models.ModeFragmentReview:
		return a.buildFragmentReview(req)
	default:
		return models.Session{}, fmt.Errorf("unknown session mode %q", req.Mode)
	}
}

// targetSize resolves the effective session size: explicit request, then the
// user's preference, then the configured default.
func (a *Assembler) targetSize(req models.SessionRequest) int {
	if req.TargetSize > 0 {
		return req.TargetSize
	}
	if user, err := a.store.User(req.UserID); err == nil && user.SessionSize > 0 {
		return user.SessionSize
	}
	return a.cfg.SessionSize
}

// buildReview selects due items first, most overdue first, then fills spare
// slots with exposure candidates up to the activity profile's quota.
func (a *Assembler) buildReview(req models.SessionRequest) (models.Session, error) {
	now := a.now()
	target := a.targetSize(req)

	pool, err := a.store.ReviewPool(req.UserID)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load review pool: %v", err)
	}
	profile := a.activityProfile(req.UserID)

	var due, exposure []models.Card
	for _, card := range pool {
		switch {
		case IsDue(card.Progress, now):
			due = append(due, card)
		case IsExposureEligible(card.Progress, now, profile.MinDaysBetweenExposure):
			card.IsExposure = true
			exposure = append(exposure, card)
		}
	}

	sortByDueAt(due)
	if len(due) > target {
		due = due[:target]
	}

	slots := target - len(due)
	if slots > profile.ExposureSlots {
		slots = profile.ExposureSlots
	}
	a.shuffle(exposure)
	if slots < len(exposure) {
		exposure = exposure[:slots]
	}

	cards := append(due, exposure...)
	a.shuffle(cards)

	session := models.Session{Mode: models.ModeReview, Cards: cards}
	if len(cards) == 0 {
		session.Message = "No cards due right now. Come back later or learn something new."
	}
	return session, nil
}

// buildLearn introduces unseen vocabulary from unlocked chapters, allocating
// slots to lemmas and phrases proportionally to their share of the unseen
// pool, and preserving book order within each kind so new words appear in the
// order they are met while reading.
func (a *Assembler) buildLearn(req models.SessionRequest) (models.Session, error) {
	target := a.targetSize(req)

	stats, err := a.store.ChapterVocabStats(req.UserID)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load chapter stats: %v", err)
	}
	unlocked := UnlockedChapters(stats)
	if len(unlocked) == 0 {
		return models.Session{Mode: models.ModeLearn, Message: "No chapters are unlocked yet."}, nil
	}

	lemmas, phrases, err := a.store.UnseenVocab(req.UserID, unlocked)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load unseen vocabulary: %v", err)
	}

	// Phrases wait for a minimal vocabulary footing in their chapter.
	phraseGate := PhraseEligibleChapters(stats)
	eligible := phrases[:0]
	for _, card := range phrases {
		if phraseGate[card.Item.ChapterNumber] {
			eligible = append(eligible, card)
		}
	}
	phrases = eligible

	total := len(lemmas) + len(phrases)
	if total == 0 {
		return models.Session{Mode: models.ModeLearn, Message: "No new words available. Keep reading to unlock more."}, nil
	}

	lemmaSlots, phraseSlots := proportionalSplit(target, len(lemmas), len(phrases))
	cards := make([]models.Card, 0, lemmaSlots+phraseSlots)
	for _, card := range lemmas[:lemmaSlots] {
		card.IsNew = true
		cards = append(cards, card)
	}
	for _, card := range phrases[:phraseSlots] {
		card.IsNew = true
		cards = append(cards, card)
	}

	// Selection kept book order; presentation order is shuffled.
	a.shuffle(cards)
	return models.Session{Mode: models.ModeLearn, Cards: cards}, nil
}

// buildChapterFocus fills a fixed 60/20/20 split: due items from the target
// chapter, exposure items from the target chapter, due items from any other
// chapter. Each bucket is shuffled independently before truncation.
func (a *Assembler) buildChapterFocus(req models.SessionRequest) (models.Session, error) {
	if req.ChapterNumber <= 0 {
		return models.Session{}, ErrMissingChapter
	}
	now := a.now()
	target := a.targetSize(req)

	pool, err := a.store.ReviewPool(req.UserID)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load review pool: %v", err)
	}
	profile := a.activityProfile(req.UserID)

	var chapterDue, chapterExposure, otherDue []models.Card
	for _, card := range pool {
		inChapter := card.Item.ChapterNumber == req.ChapterNumber
		switch {
		case inChapter && IsDue(card.Progress, now):
			chapterDue = append(chapterDue, card)
		case inChapter && IsExposureEligible(card.Progress, now, profile.MinDaysBetweenExposure):
			card.IsExposure = true
			chapterExposure = append(chapterExposure, card)
		case !inChapter && IsDue(card.Progress, now):
			otherDue = append(otherDue, card)
		}
	}

	dueSlots := target * focusDuePercent / 100
	exposureSlots := target * focusExposurePercent / 100
	otherSlots := target - dueSlots - exposureSlots

	a.shuffle(chapterDue)
	a.shuffle(chapterExposure)
	a.shuffle(otherDue)

	cards := make([]models.Card, 0, target)
	cards = append(cards, truncate(chapterDue, dueSlots)...)
	cards = append(cards, truncate(chapterExposure, exposureSlots)...)
	cards = append(cards, truncate(otherDue, otherSlots)...)
	a.shuffle(cards)

	session := models.Session{Mode: models.ModeChapterFocus, Cards: cards}
	if len(cards) == 0 {
		session.Message = fmt.Sprintf("Nothing to practice in chapter %d right now.", req.ChapterNumber)
	}
	return session, nil
}

// buildSong selects a song's due vocabulary first, then fills with shuffled
// unseen items. Vulgar slang is dropped for users who disallow explicit
// content; learn-only requests skip the due pool entirely.
func (a *Assembler) buildSong(req models.SessionRequest) (models.Session, error) {
	if req.SongID <= 0 {
		return models.Session{}, ErrMissingSong
	}
	now := a.now()
	target := a.targetSize(req)

	pool, err := a.store.SongPool(req.UserID, req.SongID)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load song pool: %v", err)
	}
	allowExplicit := false
	if user, err := a.store.User(req.UserID); err == nil {
		allowExplicit = user.AllowExplicit
	}

	var fresh, due []models.Card
	for _, card := range pool {
		if card.Item.Kind == models.KindSlang && card.Item.IsVulgar && !allowExplicit {
			continue
		}
		switch {
		case card.Progress.Reps == 0:
			card.IsNew = true
			fresh = append(fresh, card)
		case !req.LearnOnly && IsDue(card.Progress, now):
			due = append(due, card)
		}
	}

	a.shuffle(fresh)
	cards := make([]models.Card, 0, target)
	if !req.LearnOnly {
		cards = append(cards, truncate(due, target)...)
	}
	cards = append(cards, truncate(fresh, target-len(cards))...)
	a.shuffle(cards)

	session := models.Session{Mode: models.ModeSong, Cards: cards}
	if len(cards) == 0 {
		session.Message = "Nothing to study in this song right now."
	}
	return session, nil
}

// buildFragmentRead walks a chapter's fragments sequentially from just after
// the reading cursor. Once the nominal batch size is reached the selection
// extends to the end of the current paragraph instead of cutting mid-thought.
// Presentation order stays sequential; this is reading, not drilling.
func (a *Assembler) buildFragmentRead(req models.SessionRequest) (models.Session, error) {
	if req.ChapterNumber <= 0 {
		return models.Session{}, ErrMissingChapter
	}
	target := req.TargetSize
	if target <= 0 {
		target = a.cfg.FragmentReadBatchSize
	}

	cursor, err := a.store.Cursor(req.UserID, req.ChapterNumber)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load reading cursor: %v", err)
	}
	fragments, err := a.store.FragmentsAfter(req.UserID, req.ChapterNumber, cursor)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load fragments: %v", err)
	}
	if len(fragments) == 0 {
		return models.Session{Mode: models.ModeFragmentRead, Message: "You have reached the end of this chapter."}, nil
	}

	var cards []models.Card
	for _, card := range fragments {
		if len(cards) >= target && startsNewParagraph(card, cards[len(cards)-1]) {
			break
		}
		card.IsNew = card.Progress.Reps == 0
		cards = append(cards, card)
	}
	return models.Session{Mode: models.ModeFragmentRead, Cards: cards}, nil
}

// buildFragmentReview gathers a book's due fragments, most overdue first,
// capped at the batch size. TotalDue reports the uncapped count for display.
func (a *Assembler) buildFragmentReview(req models.SessionRequest) (models.Session, error) {
	if req.BookID <= 0 {
		return models.Session{}, ErrMissingBook
	}
	now := a.now()
	target := req.TargetSize
	if target <= 0 {
		target = a.cfg.FragmentReviewBatchSize
	}

	pool, err := a.store.FragmentPool(req.UserID, req.BookID)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load fragment pool: %v", err)
	}

	var due []models.Card
	for _, card := range pool {
		if card.Progress.State == models.StateNew || card.Progress.Reps == 0 {
			continue
		}
		if IsDue(card.Progress, now) {
			due = append(due, card)
		}
	}
	sortByDueAt(due)

	session := models.Session{
		Mode:     models.ModeFragmentReview,
		Cards:    truncate(due, target),
		TotalDue: len(due),
	}
	if len(due) == 0 {
		session.Message = "No fragments due for review."
	}
	return session, nil
}

// activityProfile derives the exposure policy; a store failure just degrades
// to the low-activity default rather than failing the session.
func (a *Assembler) activityProfile(userID int64) models.ActivityProfile {
	history, err := a.store.ActivityHistory(userID, 7)
	if err != nil {
		history = nil
	}
	return ClassifyActivity(history)
}

// proportionalSplit allocates target slots between two pools by pool share,
// spilling unusable slots over to the other kind.
func proportionalSplit(target, lemmaCount, phraseCount int) (lemmaSlots, phraseSlots int) {
	total := lemmaCount + phraseCount
	if total == 0 {
		return 0, 0
	}
	if total <= target {
		return lemmaCount, phraseCount
	}
	lemmaSlots = int(float64(target)*float64(lemmaCount)/float64(total) + 0.5)
	if lemmaSlots > lemmaCount {
		lemmaSlots = lemmaCount
	}
	phraseSlots = target - lemmaSlots
	if phraseSlots > phraseCount {
		spill := phraseSlots - phraseCount
		phraseSlots = phraseCount
		lemmaSlots = minInt(lemmaSlots+spill, lemmaCount)
	}
	return lemmaSlots, phraseSlots
}

// startsNewParagraph reports whether card opens a paragraph the previous card
// is not part of.
func startsNewParagraph(card, prev models.Card) bool {
	return card.Item.ParagraphStart && card.Item.SentenceOrder > prev.Item.SentenceOrder
}

// sortByDueAt orders cards most overdue first. Cards with no due date (new or
// degenerate rows) sort ahead of dated ones.
func sortByDueAt(cards []models.Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		di, dj := cards[i].Progress.DueAt, cards[j].Progress.DueAt
		if di == nil {
			return dj != nil
		}
		if dj == nil {
			return false
		}
		return di.Before(*dj)
	})
}

// shuffle is a uniform Fisher-Yates pass over the slice.
func (a *Assembler) shuffle(cards []models.Card) {
	a.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

func truncate(cards []models.Card, n int) []models.Card {
	if n < 0 {
		n = 0
	}
	if len(cards) > n {
		return cards[:n]
	}
	return cards
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
