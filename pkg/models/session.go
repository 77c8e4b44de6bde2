package models

// SessionMode selects the session-assembly strategy.
type SessionMode string

const (
	ModeReview         SessionMode = "review"
	ModeLearn          SessionMode = "learn"
	ModeChapterFocus   SessionMode = "chapter_focus"
	ModeSong           SessionMode = "song"
	ModeFragmentRead   SessionMode = "fragment_read"
	ModeFragmentReview SessionMode = "fragment_review"
)

// SessionRequest describes the session a learner asked for. TargetSize 0
// means "use the configured default for the mode".
type SessionRequest struct {
	UserID        int64
	Mode          SessionMode
	TargetSize    int
	ChapterNumber int   // ChapterFocus and FragmentRead scope
	SongID        int64 // Song scope
	BookID        int64 // FragmentReview scope
	LearnOnly     bool  // Song mode: skip the due pool entirely
}

// Card is one queue entry: an item snapshot plus the learner's progress on it.
type Card struct {
	Item       Item
	Progress   ProgressRecord
	IsNew      bool
	IsExposure bool
}

// Session is an ordered card queue. An empty session is not an error: Message
// carries the human-readable reason ("no cards due", "end of chapter").
type Session struct {
	Mode    SessionMode
	Cards   []Card
	Message string
	// TotalDue reports the uncapped due count for FragmentReview sessions,
	// independent of the capped selection.
	TotalDue int
}

// ReadingCursor is the learner's position in a chapter's fragment stream.
// Tracking (sentence, fragment) order instead of a raw count keeps the cursor
// stable when content is inserted upstream.
type ReadingCursor struct {
	SentenceOrder int `db:"sentence_order"`
	FragmentOrder int `db:"fragment_order"`
}
