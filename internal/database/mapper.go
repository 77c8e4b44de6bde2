package database

import (
	"database/sql"
	"fmt"

	"github.com/example/leerbot/pkg/models"
)

// kindSpec describes how one item kind is laid out in storage: which tables
// hold it and which optional bookkeeping columns exist. Phrase and slang
// progress tables omit lapse tracking; their select lists alias a constant so
// every kind scans into the same row shape.
type kindSpec struct {
	kind          models.ItemKind
	table         string
	progressTable string
	idColumn      string
	hasLapses     bool
	itemColumns   string
}

var kindSpecs = map[models.ItemKind]kindSpec{
	models.KindLemma: {
		kind:          models.KindLemma,
		table:         "lemmas",
		progressTable: "lemma_progress",
		idColumn:      "lemma_id",
		hasLapses:     true,
		itemColumns: `v.id AS item_id, 'lemma' AS kind, v.display_text, v.translation,
			v.part_of_speech, '' AS cultural_note, v.example_text, v.example_translation,
			v.is_stop_word, 0 AS is_vulgar, v.chapter_number, v.sentence_order,
			0 AS fragment_order, 0 AS paragraph_start`,
	},
	models.KindPhrase: {
		kind:          models.KindPhrase,
		table:         "phrases",
		progressTable: "phrase_progress",
		idColumn:      "phrase_id",
		hasLapses:     false,
		itemColumns: `v.id AS item_id, 'phrase' AS kind, v.display_text, v.translation,
			'' AS part_of_speech, v.cultural_note, '' AS example_text, '' AS example_translation,
			0 AS is_stop_word, 0 AS is_vulgar, v.chapter_number, v.sentence_order,
			0 AS fragment_order, 0 AS paragraph_start`,
	},
	models.KindSlang: {
		kind:          models.KindSlang,
		table:         "slang",
		progressTable: "slang_progress",
		idColumn:      "slang_id",
		hasLapses:     false,
		itemColumns: `v.id AS item_id, 'slang' AS kind, v.display_text, v.translation,
			'' AS part_of_speech, v.cultural_note, '' AS example_text, '' AS example_translation,
			0 AS is_stop_word, v.is_vulgar, 0 AS chapter_number, 0 AS sentence_order,
			0 AS fragment_order, 0 AS paragraph_start`,
	},
	models.KindFragment: {
		kind:          models.KindFragment,
		table:         "fragments",
		progressTable: "fragment_progress",
		idColumn:      "fragment_id",
		hasLapses:     true,
		itemColumns: `v.id AS item_id, 'fragment' AS kind, v.display_text, v.translation,
			'' AS part_of_speech, '' AS cultural_note, '' AS example_text, '' AS example_translation,
			0 AS is_stop_word, 0 AS is_vulgar, v.chapter_number, v.sentence_order,
			v.fragment_order, v.paragraph_start`,
	},
}

// lapsesColumn returns the lapse select expression for this kind.
func (s kindSpec) lapsesColumn() string {
	if s.hasLapses {
		return "p.lapses"
	}
	return "0 AS lapses"
}

// progressColumns is the select list for the progress side of a joined query.
func (s kindSpec) progressColumns() string {
	return fmt.Sprintf(`p.stability, p.difficulty, p.state, p.due_at, p.reps, %s,
		p.last_reviewed_at, p.last_seen_at`, s.lapsesColumn())
}

// cardRow is the uniform scan target for every item/progress join. The
// progress side is fully nullable so LEFT JOINs of never-reviewed items map
// onto the New-state sentinel.
type cardRow struct {
	ItemID             int64           `db:"item_id"`
	Kind               string          `db:"kind"`
	DisplayText        string          `db:"display_text"`
	Translation        string          `db:"translation"`
	PartOfSpeech       string          `db:"part_of_speech"`
	CulturalNote       string          `db:"cultural_note"`
	ExampleText        string          `db:"example_text"`
	ExampleTranslation string          `db:"example_translation"`
	IsStopWord         bool            `db:"is_stop_word"`
	IsVulgar           bool            `db:"is_vulgar"`
	ChapterNumber      int             `db:"chapter_number"`
	SentenceOrder      int             `db:"sentence_order"`
	FragmentOrder      int             `db:"fragment_order"`
	ParagraphStart     bool            `db:"paragraph_start"`
	Stability          sql.NullFloat64 `db:"stability"`
	Difficulty         sql.NullFloat64 `db:"difficulty"`
	State              sql.NullInt64   `db:"state"`
	DueAt              sql.NullTime    `db:"due_at"`
	Reps               sql.NullInt64   `db:"reps"`
	Lapses             sql.NullInt64   `db:"lapses"`
	LastReviewedAt     sql.NullTime    `db:"last_reviewed_at"`
	LastSeenAt         sql.NullTime    `db:"last_seen_at"`
}

// toCard converts a storage row into the item/progress snapshot the scheduler
// consumes. The kind discriminant is set here, at construction, and never
// inferred from which ID fields happen to be populated.
func (r cardRow) toCard(userID int64) models.Card {
	kind := models.ItemKind(r.Kind)
	item := models.Item{
		ID:                 r.ItemID,
		Kind:               kind,
		DisplayText:        r.DisplayText,
		Translation:        r.Translation,
		PartOfSpeech:       r.PartOfSpeech,
		CulturalNote:       r.CulturalNote,
		ExampleText:        r.ExampleText,
		ExampleTranslation: r.ExampleTranslation,
		IsStopWord:         r.IsStopWord,
		IsVulgar:           r.IsVulgar,
		ChapterNumber:      r.ChapterNumber,
		SentenceOrder:      r.SentenceOrder,
		FragmentOrder:      r.FragmentOrder,
		ParagraphStart:     r.ParagraphStart,
	}

	progress := models.NewProgressRecord(userID, r.ItemID, kind)
	if r.Reps.Valid && r.Reps.Int64 > 0 {
		progress.Reps = int(r.Reps.Int64)
		progress.State = models.CardState(r.State.Int64)
		if r.Stability.Valid {
			stability := r.Stability.Float64
			progress.Stability = &stability
		}
		progress.Difficulty = r.Difficulty.Float64
		if r.DueAt.Valid {
			due := r.DueAt.Time
			progress.DueAt = &due
		}
		progress.Lapses = int(r.Lapses.Int64)
		if r.LastReviewedAt.Valid {
			reviewed := r.LastReviewedAt.Time
			progress.LastReviewedAt = &reviewed
		}
		if r.LastSeenAt.Valid {
			seen := r.LastSeenAt.Time
			progress.LastSeenAt = &seen
		}
	}

	return models.Card{Item: item, Progress: progress}
}

func rowsToCards(rows []cardRow, userID int64) []models.Card {
	cards := make([]models.Card, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, row.toCard(userID))
	}
	return cards
}
