package database

import (
	"database/sql"
	"fmt"

	"github.com/example/leerbot/pkg/models"
)

// VocabRepository handles the vocabulary reference tables (lemmas, phrases,
// slang) and song-vocabulary links. Written by the importer, read-only for
// everything else.
type VocabRepository struct{}

// NewVocabRepository creates a new repository instance
func NewVocabRepository() *VocabRepository {
	return &VocabRepository{}
}

// UpsertLemma inserts or refreshes a lemma, returning its ID. The first
// occurrence position is only set on insert so re-imports do not move
// vocabulary between chapters.
func (r *VocabRepository) UpsertLemma(item models.Item) (int64, error) {
	_, err := DB.Exec(`
		INSERT INTO lemmas (display_text, translation, part_of_speech, is_stop_word,
			chapter_number, sentence_order, example_text, example_translation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (display_text) DO UPDATE SET
			translation = excluded.translation,
			part_of_speech = excluded.part_of_speech,
			example_text = excluded.example_text,
			example_translation = excluded.example_translation
	`, item.DisplayText, item.Translation, item.PartOfSpeech, item.IsStopWord,
		item.ChapterNumber, item.SentenceOrder, item.ExampleText, item.ExampleTranslation)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert lemma: %v", err)
	}
	return r.idByText("lemmas", item.DisplayText)
}

// UpsertPhrase inserts or refreshes a phrase, returning its ID.
func (r *VocabRepository) UpsertPhrase(item models.Item) (int64, error) {
	_, err := DB.Exec(`
		INSERT INTO phrases (display_text, translation, cultural_note, chapter_number, sentence_order)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (display_text) DO UPDATE SET
			translation = excluded.translation,
			cultural_note = excluded.cultural_note
	`, item.DisplayText, item.Translation, item.CulturalNote, item.ChapterNumber, item.SentenceOrder)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert phrase: %v", err)
	}
	return r.idByText("phrases", item.DisplayText)
}

// UpsertSlang inserts or refreshes a slang term, returning its ID.
func (r *VocabRepository) UpsertSlang(item models.Item) (int64, error) {
	_, err := DB.Exec(`
		INSERT INTO slang (display_text, translation, cultural_note, is_vulgar)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (display_text) DO UPDATE SET
			translation = excluded.translation,
			cultural_note = excluded.cultural_note,
			is_vulgar = excluded.is_vulgar
	`, item.DisplayText, item.Translation, item.CulturalNote, item.IsVulgar)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert slang: %v", err)
	}
	return r.idByText("slang", item.DisplayText)
}

// LinkSongVocab attaches a vocabulary item to a song.
func (r *VocabRepository) LinkSongVocab(songID int64, kind models.ItemKind, itemID int64) error {
	_, err := DB.Exec(`
		INSERT INTO song_vocab (song_id, kind, item_id) VALUES ($1, $2, $3)
		ON CONFLICT (song_id, kind, item_id) DO NOTHING
	`, songID, string(kind), itemID)
	if err != nil {
		return fmt.Errorf("failed to link song vocabulary: %v", err)
	}
	return nil
}

// CreateSong inserts a song if absent, returning its ID.
func (r *VocabRepository) CreateSong(title, artist string) (int64, error) {
	var id int64
	err := DB.Get(&id, "SELECT id FROM songs WHERE title = $1 AND artist = $2", title, artist)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up song: %v", err)
	}
	res, err := DB.Exec("INSERT INTO songs (title, artist) VALUES ($1, $2)", title, artist)
	if err != nil {
		return 0, fmt.Errorf("failed to create song: %v", err)
	}
	if id, err = res.LastInsertId(); err == nil && id > 0 {
		return id, nil
	}
	// Postgres does not report LastInsertId; fall back to a lookup.
	if err := DB.Get(&id, "SELECT id FROM songs WHERE title = $1 AND artist = $2", title, artist); err != nil {
		return 0, fmt.Errorf("failed to resolve song id: %v", err)
	}
	return id, nil
}

func (r *VocabRepository) idByText(table, text string) (int64, error) {
	var id int64
	query := fmt.Sprintf("SELECT id FROM %s WHERE display_text = $1", table)
	if err := DB.Get(&id, query, text); err != nil {
		return 0, fmt.Errorf("failed to resolve id in %s: %v", table, err)
	}
	return id, nil
}
