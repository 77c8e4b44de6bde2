package models

// ItemKind discriminates the reviewable vocabulary kinds. It is set once when
// a record is constructed and never inferred from which ID fields happen to be
// populated.
type ItemKind string

const (
	KindLemma    ItemKind = "lemma"
	KindPhrase   ItemKind = "phrase"
	KindSlang    ItemKind = "slang"
	KindFragment ItemKind = "fragment"
)

// TracksLapses reports whether progress rows for this kind carry lapse
// bookkeeping. Phrase and slang tables are lighter-weight and omit it.
func (k ItemKind) TracksLapses() bool {
	return k == KindLemma || k == KindFragment
}

// Item is a reviewable unit of content. Items are read-only reference data
// from the scheduler's perspective; only the per-user progress row mutates.
type Item struct {
	ID                 int64    `json:"id" db:"id"`
	Kind               ItemKind `json:"kind" db:"kind"`
	DisplayText        string   `json:"display_text" db:"display_text"`
	Translation        string   `json:"translation" db:"translation"`
	PartOfSpeech       string   `json:"part_of_speech" db:"part_of_speech"`
	CulturalNote       string   `json:"cultural_note" db:"cultural_note"`
	ExampleText        string   `json:"example_text" db:"example_text"`
	ExampleTranslation string   `json:"example_translation" db:"example_translation"`
	IsStopWord         bool     `json:"is_stop_word" db:"is_stop_word"`
	IsVulgar           bool     `json:"is_vulgar" db:"is_vulgar"`

	// Position of the item's first occurrence in the book, used for
	// chapter gating and for introducing new vocabulary in reading order.
	ChapterNumber int `json:"chapter_number" db:"chapter_number"`
	SentenceOrder int `json:"sentence_order" db:"sentence_order"`

	// Fragment-only ordering fields. ParagraphStart marks fragments whose
	// sentence opens a new paragraph.
	FragmentOrder  int  `json:"fragment_order" db:"fragment_order"`
	ParagraphStart bool `json:"paragraph_start" db:"paragraph_start"`
}
