package database

import (
	"database/sql"
	"fmt"

	"github.com/example/leerbot/internal/session"
	"github.com/example/leerbot/pkg/models"
)

// ContentRepository handles read-only book/song content and the aggregates
// the unlock policy consumes. Content rows are written by the importer and
// never mutated by the scheduler.
type ContentRepository struct{}

// NewContentRepository creates a new repository instance
func NewContentRepository() *ContentRepository {
	return &ContentRepository{}
}

// GetBooks returns all books.
func (r *ContentRepository) GetBooks() ([]models.Book, error) {
	var books []models.Book
	if err := DB.Select(&books, "SELECT * FROM books ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to get books: %v", err)
	}
	return books, nil
}

// GetChapters returns a book's chapters in order.
func (r *ContentRepository) GetChapters(bookID int64) ([]models.Chapter, error) {
	var chapters []models.Chapter
	err := DB.Select(&chapters, "SELECT * FROM chapters WHERE book_id = $1 ORDER BY chapter_number", bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chapters: %v", err)
	}
	return chapters, nil
}

// GetSongs returns all songs.
func (r *ContentRepository) GetSongs() ([]models.Song, error) {
	var songs []models.Song
	if err := DB.Select(&songs, "SELECT * FROM songs ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to get songs: %v", err)
	}
	return songs, nil
}

// ChapterVocabStats returns per-chapter vocabulary totals and per-user
// introduced counts, in chapter order. The unlock policy consumes the ratios;
// the aggregation lives here.
func (r *ContentRepository) ChapterVocabStats(userID int64) ([]session.ChapterVocabStats, error) {
	query := `
		SELECT c.chapter_number,
			(SELECT COUNT(*) FROM lemmas l
				WHERE l.chapter_number = c.chapter_number AND NOT l.is_stop_word) AS total_lemmas,
			(SELECT COUNT(*) FROM lemmas l
				JOIN lemma_progress p ON p.lemma_id = l.id AND p.user_id = $1
				WHERE l.chapter_number = c.chapter_number AND NOT l.is_stop_word AND p.reps >= 1) AS introduced_lemmas,
			(SELECT COUNT(*) FROM phrases f
				WHERE f.chapter_number = c.chapter_number) AS total_phrases,
			(SELECT COUNT(*) FROM phrases f
				JOIN phrase_progress p ON p.phrase_id = f.id AND p.user_id = $1
				WHERE f.chapter_number = c.chapter_number AND p.reps >= 1) AS introduced_phrases
		FROM chapters c
		ORDER BY c.chapter_number
	`
	var stats []session.ChapterVocabStats
	if err := DB.Select(&stats, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get chapter vocabulary stats: %v", err)
	}
	return stats, nil
}

// Cursor returns the learner's reading position within a chapter. A missing
// row means the chapter has not been started: the zero cursor.
func (r *ContentRepository) Cursor(userID int64, chapter int) (models.ReadingCursor, error) {
	var cursor models.ReadingCursor
	err := DB.Get(&cursor, `
		SELECT sentence_order, fragment_order FROM reading_cursor
		WHERE user_id = $1 AND chapter_number = $2
	`, userID, chapter)
	if err == sql.ErrNoRows {
		return models.ReadingCursor{}, nil
	}
	if err != nil {
		return models.ReadingCursor{}, fmt.Errorf("failed to get reading cursor: %v", err)
	}
	return cursor, nil
}

// SaveCursor advances the learner's reading position within a chapter. The
// cursor only ever moves forward: a position at or before the stored one is a
// no-op, so late or re-ordered writes cannot roll back reading progress.
func (r *ContentRepository) SaveCursor(userID int64, chapter int, cursor models.ReadingCursor) error {
	_, err := DB.Exec(`
		INSERT INTO reading_cursor (user_id, chapter_number, sentence_order, fragment_order)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, chapter_number) DO UPDATE SET
			sentence_order = excluded.sentence_order,
			fragment_order = excluded.fragment_order
		WHERE excluded.sentence_order > reading_cursor.sentence_order
		   OR (excluded.sentence_order = reading_cursor.sentence_order
		       AND excluded.fragment_order > reading_cursor.fragment_order)
	`, userID, chapter, cursor.SentenceOrder, cursor.FragmentOrder)
	if err != nil {
		return fmt.Errorf("failed to save reading cursor: %v", err)
	}
	return nil
}

// CreateChapter inserts a chapter if it does not exist yet.
func (r *ContentRepository) CreateChapter(bookID int64, number int, title string) error {
	_, err := DB.Exec(`
		INSERT INTO chapters (book_id, chapter_number, title) VALUES ($1, $2, $3)
		ON CONFLICT (chapter_number) DO UPDATE SET title = excluded.title
	`, bookID, number, title)
	if err != nil {
		return fmt.Errorf("failed to create chapter: %v", err)
	}
	return nil
}

// CreateSentence inserts one sentence of a chapter.
func (r *ContentRepository) CreateSentence(s models.Sentence) error {
	_, err := DB.Exec(`
		INSERT INTO sentences (chapter_number, sentence_order, text, translation, paragraph_start)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (chapter_number, sentence_order) DO UPDATE SET
			text = excluded.text,
			translation = excluded.translation,
			paragraph_start = excluded.paragraph_start
	`, s.ChapterNumber, s.SentenceOrder, s.Text, s.Translation, s.ParagraphStart)
	if err != nil {
		return fmt.Errorf("failed to create sentence: %v", err)
	}
	return nil
}

// CreateFragment inserts one reading fragment. Ordering fields and the
// paragraph flag are denormalized onto the row so the reader needs one query.
func (r *ContentRepository) CreateFragment(chapter, sentenceOrder, fragmentOrder int, text, translation string, paragraphStart bool) error {
	_, err := DB.Exec(`
		INSERT INTO fragments (chapter_number, sentence_order, fragment_order, display_text, translation, paragraph_start)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (chapter_number, sentence_order, fragment_order) DO UPDATE SET
			display_text = excluded.display_text,
			translation = excluded.translation,
			paragraph_start = excluded.paragraph_start
	`, chapter, sentenceOrder, fragmentOrder, text, translation, paragraphStart)
	if err != nil {
		return fmt.Errorf("failed to create fragment: %v", err)
	}
	return nil
}
