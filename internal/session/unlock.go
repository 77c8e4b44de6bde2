package session

// Chapter gating thresholds: the next chapter opens once nearly all of the
// previous chapter's vocabulary has been introduced; phrases start surfacing
// within a chapter once a modest share of its lemmas has been seen.
const (
	chapterUnlockThreshold = 0.95
	phraseGateThreshold    = 0.20
)

// ChapterVocabStats aggregates one chapter's vocabulary footprint for one
// user. Counting and joining is the store's job; the policy only consumes
// the resulting ratios.
type ChapterVocabStats struct {
	ChapterNumber     int `db:"chapter_number"`
	TotalLemmas       int `db:"total_lemmas"`
	IntroducedLemmas  int `db:"introduced_lemmas"`
	TotalPhrases      int `db:"total_phrases"`
	IntroducedPhrases int `db:"introduced_phrases"`
}

// UnlockedChapters returns the chapter numbers the learner may study, in
// order. The first chapter is always unlocked; each subsequent chapter
// unlocks only when the one before it crosses the introduction threshold.
// Evaluation stops at the first failure, so chapters can never unlock out of
// sequence even if a later one coincidentally satisfies the ratio.
func UnlockedChapters(chapters []ChapterVocabStats) []int {
	var unlocked []int
	for i, ch := range chapters {
		if i == 0 {
			unlocked = append(unlocked, ch.ChapterNumber)
			continue
		}
		prev := chapters[i-1]
		if introductionRatio(prev.TotalLemmas+prev.TotalPhrases, prev.IntroducedLemmas+prev.IntroducedPhrases) < chapterUnlockThreshold {
			break
		}
		unlocked = append(unlocked, ch.ChapterNumber)
	}
	return unlocked
}

// PhraseEligibleChapters returns the chapters allowed to introduce phrase
// items: those where at least a fifth of the lemmas have been seen. This
// delays multi-word expressions until some vocabulary footing exists.
func PhraseEligibleChapters(chapters []ChapterVocabStats) map[int]bool {
	eligible := make(map[int]bool, len(chapters))
	for _, ch := range chapters {
		if introductionRatio(ch.TotalLemmas, ch.IntroducedLemmas) >= phraseGateThreshold {
			eligible[ch.ChapterNumber] = true
		}
	}
	return eligible
}

// introductionRatio treats an empty chapter as fully introduced so it never
// blocks progression.
func introductionRatio(total, introduced int) float64 {
	if total <= 0 {
		return 1
	}
	return float64(introduced) / float64(total)
}
