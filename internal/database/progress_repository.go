package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/leerbot/pkg/models"
)

// ProgressRepository handles the per-kind progress tables and the item pools
// the session assembler draws from.
type ProgressRepository struct{}

// NewProgressRepository creates a new repository instance
func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{}
}

// Get returns the progress record for one (user, item) pair. A missing row is
// not an error: records are created implicitly on first review, so absence
// maps to the never-reviewed sentinel.
func (r *ProgressRepository) Get(userID, itemID int64, kind models.ItemKind) (models.ProgressRecord, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return models.ProgressRecord{}, fmt.Errorf("unknown item kind %q", kind)
	}
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM %s p JOIN %s v ON v.id = p.%s
		WHERE p.user_id = $1 AND p.%s = $2
	`, spec.itemColumns, spec.progressColumns(), spec.progressTable, spec.table, spec.idColumn, spec.idColumn)

	var row cardRow
	err := DB.Get(&row, query, userID, itemID)
	if err == sql.ErrNoRows {
		return models.NewProgressRecord(userID, itemID, kind), nil
	}
	if err != nil {
		return models.ProgressRecord{}, fmt.Errorf("failed to get progress: %v", err)
	}
	return row.toCard(userID).Progress, nil
}

// Upsert writes a progress record, creating the row on first review. Kinds
// without lapse tracking simply do not persist that counter.
func (r *ProgressRepository) Upsert(rec models.ProgressRecord) error {
	spec, ok := kindSpecs[rec.Kind]
	if !ok {
		return fmt.Errorf("unknown item kind %q", rec.Kind)
	}

	if spec.hasLapses {
		query := fmt.Sprintf(`
			INSERT INTO %s (user_id, %s, stability, difficulty, state, due_at, reps, lapses, last_reviewed_at, last_seen_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (user_id, %s) DO UPDATE SET
				stability = excluded.stability,
				difficulty = excluded.difficulty,
				state = excluded.state,
				due_at = excluded.due_at,
				reps = excluded.reps,
				lapses = excluded.lapses,
				last_reviewed_at = excluded.last_reviewed_at,
				last_seen_at = excluded.last_seen_at
		`, spec.progressTable, spec.idColumn, spec.idColumn)
		_, err := DB.Exec(query,
			rec.UserID, rec.ItemID, rec.Stability, rec.Difficulty, int(rec.State),
			rec.DueAt, rec.Reps, rec.Lapses, rec.LastReviewedAt, rec.LastSeenAt)
		if err != nil {
			return fmt.Errorf("failed to upsert progress: %v", err)
		}
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, %s, stability, difficulty, state, due_at, reps, last_reviewed_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, %s) DO UPDATE SET
			stability = excluded.stability,
			difficulty = excluded.difficulty,
			state = excluded.state,
			due_at = excluded.due_at,
			reps = excluded.reps,
			last_reviewed_at = excluded.last_reviewed_at,
			last_seen_at = excluded.last_seen_at
	`, spec.progressTable, spec.idColumn, spec.idColumn)
	_, err := DB.Exec(query,
		rec.UserID, rec.ItemID, rec.Stability, rec.Difficulty, int(rec.State),
		rec.DueAt, rec.Reps, rec.LastReviewedAt, rec.LastSeenAt)
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %v", err)
	}
	return nil
}

// MarkSeen stamps last_seen_at without a full review. Exposure cards are
// bookkept this way when presented, so the spacing policy can rest them.
func (r *ProgressRepository) MarkSeen(rec models.ProgressRecord) error {
	spec, ok := kindSpecs[rec.Kind]
	if !ok {
		return fmt.Errorf("unknown item kind %q", rec.Kind)
	}
	query := fmt.Sprintf("UPDATE %s SET last_seen_at = $1 WHERE user_id = $2 AND %s = $3",
		spec.progressTable, spec.idColumn)
	_, err := DB.Exec(query, rec.LastSeenAt, rec.UserID, rec.ItemID)
	if err != nil {
		return fmt.Errorf("failed to mark item seen: %v", err)
	}
	return nil
}

// ReviewPool returns every vocabulary item the user has a progress record for.
func (r *ProgressRepository) ReviewPool(userID int64) ([]models.Card, error) {
	var cards []models.Card
	for _, kind := range []models.ItemKind{models.KindLemma, models.KindPhrase, models.KindSlang} {
		spec := kindSpecs[kind]
		query := fmt.Sprintf(`
			SELECT %s, %s
			FROM %s p JOIN %s v ON v.id = p.%s
			WHERE p.user_id = $1
		`, spec.itemColumns, spec.progressColumns(), spec.progressTable, spec.table, spec.idColumn)

		var rows []cardRow
		if err := DB.Select(&rows, query, userID); err != nil {
			return nil, fmt.Errorf("failed to load %s review pool: %v", kind, err)
		}
		cards = append(cards, rowsToCards(rows, userID)...)
	}
	return cards, nil
}

// UnseenVocab returns never-reviewed lemmas and phrases within the given
// chapters, each in book order. Stop words are excluded from introduction.
func (r *ProgressRepository) UnseenVocab(userID int64, chapters []int) ([]models.Card, []models.Card, error) {
	if len(chapters) == 0 {
		return nil, nil, nil
	}
	lemmas, err := r.unseenByKind(userID, models.KindLemma, chapters)
	if err != nil {
		return nil, nil, err
	}
	phrases, err := r.unseenByKind(userID, models.KindPhrase, chapters)
	if err != nil {
		return nil, nil, err
	}
	return lemmas, phrases, nil
}

func (r *ProgressRepository) unseenByKind(userID int64, kind models.ItemKind, chapters []int) ([]models.Card, error) {
	spec := kindSpecs[kind]
	stopWordFilter := ""
	if kind == models.KindLemma {
		stopWordFilter = "AND NOT v.is_stop_word"
	}
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM %s v
		LEFT JOIN %s p ON p.%s = v.id AND p.user_id = ?
		WHERE v.chapter_number IN (?) AND COALESCE(p.reps, 0) = 0 %s
		ORDER BY v.chapter_number, v.sentence_order, v.id
	`, spec.itemColumns, spec.progressColumns(), spec.table, spec.progressTable, spec.idColumn, stopWordFilter)

	query, args, err := sqlx.In(query, userID, chapters)
	if err != nil {
		return nil, fmt.Errorf("failed to expand chapter list: %v", err)
	}
	var rows []cardRow
	if err := DB.Select(&rows, DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load unseen %s pool: %v", kind, err)
	}
	return rowsToCards(rows, userID), nil
}

// SongPool returns a song's vocabulary with any existing progress attached.
// Never-studied items arrive with the New-state sentinel.
func (r *ProgressRepository) SongPool(userID, songID int64) ([]models.Card, error) {
	var cards []models.Card
	for _, kind := range []models.ItemKind{models.KindLemma, models.KindPhrase, models.KindSlang} {
		spec := kindSpecs[kind]
		query := fmt.Sprintf(`
			SELECT %s, %s
			FROM song_vocab sv
			JOIN %s v ON v.id = sv.item_id
			LEFT JOIN %s p ON p.%s = v.id AND p.user_id = $1
			WHERE sv.song_id = $2 AND sv.kind = '%s'
		`, spec.itemColumns, spec.progressColumns(), spec.table, spec.progressTable, spec.idColumn, kind)

		var rows []cardRow
		if err := DB.Select(&rows, query, userID, songID); err != nil {
			return nil, fmt.Errorf("failed to load %s song pool: %v", kind, err)
		}
		cards = append(cards, rowsToCards(rows, userID)...)
	}
	return cards, nil
}

// FragmentsAfter returns a chapter's fragments strictly after the reading
// cursor, in reading order, with any existing progress attached.
func (r *ProgressRepository) FragmentsAfter(userID int64, chapter int, cursor models.ReadingCursor) ([]models.Card, error) {
	spec := kindSpecs[models.KindFragment]
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM %s v
		LEFT JOIN %s p ON p.%s = v.id AND p.user_id = $1
		WHERE v.chapter_number = $2
		  AND (v.sentence_order > $3 OR (v.sentence_order = $3 AND v.fragment_order > $4))
		ORDER BY v.sentence_order, v.fragment_order
	`, spec.itemColumns, spec.progressColumns(), spec.table, spec.progressTable, spec.idColumn)

	var rows []cardRow
	if err := DB.Select(&rows, query, userID, chapter, cursor.SentenceOrder, cursor.FragmentOrder); err != nil {
		return nil, fmt.Errorf("failed to load fragments: %v", err)
	}
	return rowsToCards(rows, userID), nil
}

// FragmentPool returns every fragment of a book the user has progress on.
func (r *ProgressRepository) FragmentPool(userID, bookID int64) ([]models.Card, error) {
	spec := kindSpecs[models.KindFragment]
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM %s p
		JOIN %s v ON v.id = p.%s
		JOIN chapters c ON c.chapter_number = v.chapter_number
		WHERE p.user_id = $1 AND c.book_id = $2
	`, spec.itemColumns, spec.progressColumns(), spec.progressTable, spec.table, spec.idColumn)

	var rows []cardRow
	if err := DB.Select(&rows, query, userID, bookID); err != nil {
		return nil, fmt.Errorf("failed to load fragment pool: %v", err)
	}
	return rowsToCards(rows, userID), nil
}
