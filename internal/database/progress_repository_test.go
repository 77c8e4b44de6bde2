package database

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/leerbot/pkg/models"
)

// setupTestDB swaps the global connection for an in-memory SQLite database
// with the full schema applied.
func setupTestDB(t *testing.T) {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	DB = db
	require.NoError(t, initializeSchema())
}

func insertLemma(t *testing.T, text string, chapter, order int, stopWord bool) int64 {
	t.Helper()
	id, err := NewVocabRepository().UpsertLemma(models.Item{
		DisplayText:   text,
		Translation:   text + " (en)",
		IsStopWord:    stopWord,
		ChapterNumber: chapter,
		SentenceOrder: order,
	})
	require.NoError(t, err)
	return id
}

func TestProgressGetMissingReturnsSentinel(t *testing.T) {
	setupTestDB(t)
	repo := NewProgressRepository()

	rec, err := repo.Get(1, 42, models.KindLemma)
	require.NoError(t, err)
	assert.Equal(t, models.StateNew, rec.State)
	assert.Equal(t, 0, rec.Reps)
	assert.Nil(t, rec.Stability)
	assert.Equal(t, models.KindLemma, rec.Kind)
}

func TestProgressUpsertRoundTrip(t *testing.T) {
	setupTestDB(t)
	repo := NewProgressRepository()
	lemmaID := insertLemma(t, "hola", 1, 1, false)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stability := 3.7145
	due := now.AddDate(0, 0, 2)
	rec := models.ProgressRecord{
		UserID: 1, ItemID: lemmaID, Kind: models.KindLemma,
		Stability: &stability, Difficulty: 5.16, State: models.StateReview,
		DueAt: &due, Reps: 2, Lapses: 1, LastReviewedAt: &now, LastSeenAt: &now,
	}
	require.NoError(t, repo.Upsert(rec))

	got, err := repo.Get(1, lemmaID, models.KindLemma)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Reps)
	assert.Equal(t, 1, got.Lapses)
	assert.Equal(t, models.StateReview, got.State)
	require.NotNil(t, got.Stability)
	assert.InDelta(t, stability, *got.Stability, 1e-9)
	require.NotNil(t, got.DueAt)
	assert.WithinDuration(t, due, *got.DueAt, time.Second)

	// Second upsert replaces, never duplicates.
	rec.Reps = 3
	require.NoError(t, repo.Upsert(rec))
	got, err = repo.Get(1, lemmaID, models.KindLemma)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Reps)
}

func TestProgressUpsertPhraseWithoutLapses(t *testing.T) {
	setupTestDB(t)
	repo := NewProgressRepository()
	phraseID, err := NewVocabRepository().UpsertPhrase(models.Item{
		DisplayText: "echar de menos", ChapterNumber: 1, SentenceOrder: 3,
	})
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stability := 1.0
	rec := models.ProgressRecord{
		UserID: 1, ItemID: phraseID, Kind: models.KindPhrase,
		Stability: &stability, State: models.StateLearning, Reps: 1,
		Lapses: 5, // silently dropped: phrase rows carry no lapse column
		LastReviewedAt: &now, LastSeenAt: &now,
	}
	require.NoError(t, repo.Upsert(rec))

	got, err := repo.Get(1, phraseID, models.KindPhrase)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Reps)
	assert.Equal(t, 0, got.Lapses)
}

func TestReviewPoolCollectsAllKinds(t *testing.T) {
	setupTestDB(t)
	repo := NewProgressRepository()
	vocab := NewVocabRepository()

	lemmaID := insertLemma(t, "correr", 1, 1, false)
	phraseID, err := vocab.UpsertPhrase(models.Item{DisplayText: "tener ganas", ChapterNumber: 1})
	require.NoError(t, err)
	slangID, err := vocab.UpsertSlang(models.Item{DisplayText: "chido", IsVulgar: false})
	require.NoError(t, err)

	now := time.Now().UTC()
	s := 2.0
	for _, pair := range []struct {
		id   int64
		kind models.ItemKind
	}{{lemmaID, models.KindLemma}, {phraseID, models.KindPhrase}, {slangID, models.KindSlang}} {
		require.NoError(t, repo.Upsert(models.ProgressRecord{
			UserID: 1, ItemID: pair.id, Kind: pair.kind,
			Stability: &s, State: models.StateReview, Reps: 1,
			LastReviewedAt: &now, LastSeenAt: &now,
		}))
	}

	pool, err := repo.ReviewPool(1)
	require.NoError(t, err)
	require.Len(t, pool, 3)

	kinds := map[models.ItemKind]bool{}
	for _, card := range pool {
		kinds[card.Item.Kind] = true
		assert.Equal(t, 1, card.Progress.Reps)
		assert.NotEmpty(t, card.Item.DisplayText)
	}
	assert.True(t, kinds[models.KindLemma])
	assert.True(t, kinds[models.KindPhrase])
	assert.True(t, kinds[models.KindSlang])
}

func TestUnseenVocabOrderAndFilters(t *testing.T) {
	setupTestDB(t)
	repo := NewProgressRepository()

	insertLemma(t, "el", 1, 1, true) // stop word, never introduced
	second := insertLemma(t, "caminar", 1, 5, false)
	first := insertLemma(t, "casa", 1, 2, false)
	seen := insertLemma(t, "perro", 1, 3, false)
	insertLemma(t, "luna", 2, 1, false) // locked chapter

	now := time.Now().UTC()
	s := 1.0
	require.NoError(t, repo.Upsert(models.ProgressRecord{
		UserID: 1, ItemID: seen, Kind: models.KindLemma,
		Stability: &s, State: models.StateLearning, Reps: 1,
		LastReviewedAt: &now, LastSeenAt: &now,
	}))

	lemmas, phrases, err := repo.UnseenVocab(1, []int{1})
	require.NoError(t, err)
	assert.Empty(t, phrases)
	require.Len(t, lemmas, 2)
	assert.Equal(t, first, lemmas[0].Item.ID, "book order: sentence 2 before sentence 5")
	assert.Equal(t, second, lemmas[1].Item.ID)
	for _, card := range lemmas {
		assert.Equal(t, 0, card.Progress.Reps)
		assert.Equal(t, models.StateNew, card.Progress.State)
	}
}

func TestFragmentsAfterCursor(t *testing.T) {
	setupTestDB(t)
	repo := NewProgressRepository()
	content := NewContentRepository()

	frags := []struct {
		sentence, fragment int
		paragraphStart     bool
	}{
		{1, 1, true}, {1, 2, false}, {2, 1, false}, {3, 1, true},
	}
	for _, f := range frags {
		require.NoError(t, content.CreateFragment(1, f.sentence, f.fragment, "texto", "text", f.paragraphStart))
	}

	cards, err := repo.FragmentsAfter(1, 1, models.ReadingCursor{SentenceOrder: 1, FragmentOrder: 1})
	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, 1, cards[0].Item.SentenceOrder)
	assert.Equal(t, 2, cards[0].Item.FragmentOrder)
	assert.Equal(t, 2, cards[1].Item.SentenceOrder)
	assert.True(t, cards[2].Item.ParagraphStart)
}

func TestReadingCursorRoundTrip(t *testing.T) {
	setupTestDB(t)
	content := NewContentRepository()

	cursor, err := content.Cursor(1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ReadingCursor{}, cursor, "unstarted chapter reads as the zero cursor")

	require.NoError(t, content.SaveCursor(1, 1, models.ReadingCursor{SentenceOrder: 4, FragmentOrder: 2}))
	require.NoError(t, content.SaveCursor(1, 1, models.ReadingCursor{SentenceOrder: 5, FragmentOrder: 1}))

	cursor, err = content.Cursor(1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ReadingCursor{SentenceOrder: 5, FragmentOrder: 1}, cursor)
}

func TestReadingCursorNeverMovesBackwards(t *testing.T) {
	setupTestDB(t)
	content := NewContentRepository()

	// Writes can land out of order (background saves, a retried fragment
	// rated after later ones); the furthest position must win regardless.
	require.NoError(t, content.SaveCursor(1, 1, models.ReadingCursor{SentenceOrder: 2, FragmentOrder: 1}))
	require.NoError(t, content.SaveCursor(1, 1, models.ReadingCursor{SentenceOrder: 3, FragmentOrder: 2}))
	require.NoError(t, content.SaveCursor(1, 1, models.ReadingCursor{SentenceOrder: 1, FragmentOrder: 1}))

	cursor, err := content.Cursor(1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ReadingCursor{SentenceOrder: 3, FragmentOrder: 2}, cursor)

	// Same sentence, earlier fragment: still a no-op.
	require.NoError(t, content.SaveCursor(1, 1, models.ReadingCursor{SentenceOrder: 3, FragmentOrder: 1}))
	cursor, err = content.Cursor(1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ReadingCursor{SentenceOrder: 3, FragmentOrder: 2}, cursor)

	// A strictly later fragment in the same sentence advances.
	require.NoError(t, content.SaveCursor(1, 1, models.ReadingCursor{SentenceOrder: 3, FragmentOrder: 3}))
	cursor, err = content.Cursor(1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ReadingCursor{SentenceOrder: 3, FragmentOrder: 3}, cursor)
}

func TestChaptersGroupedByBook(t *testing.T) {
	setupTestDB(t)
	content := NewContentRepository()

	// Chapter numbers form one sequence across books; the second book picks
	// up where the first left off.
	require.NoError(t, content.CreateChapter(1, 1, "Uno"))
	require.NoError(t, content.CreateChapter(1, 2, "Dos"))
	require.NoError(t, content.CreateChapter(2, 3, "Tres"))

	first, err := content.GetChapters(1)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 1, first[0].ChapterNumber)
	assert.Equal(t, 2, first[1].ChapterNumber)

	second, err := content.GetChapters(2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 3, second[0].ChapterNumber)
}

func TestActivityRecordAndHistory(t *testing.T) {
	setupTestDB(t)
	repo := NewActivityRepository()

	now := time.Now().UTC()
	require.NoError(t, repo.RecordReview(1, now))
	require.NoError(t, repo.RecordReview(1, now))
	require.NoError(t, repo.RecordReview(2, now))

	history, err := repo.History(1, 7)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].ReviewCount)
}

func TestChapterVocabStats(t *testing.T) {
	setupTestDB(t)
	content := NewContentRepository()
	progress := NewProgressRepository()

	require.NoError(t, content.CreateChapter(1, 1, "Uno"))
	require.NoError(t, content.CreateChapter(1, 2, "Dos"))
	a := insertLemma(t, "uno", 1, 1, false)
	insertLemma(t, "dos", 1, 2, false)
	insertLemma(t, "y", 1, 3, true) // stop words do not count
	insertLemma(t, "tres", 2, 1, false)

	now := time.Now().UTC()
	s := 1.0
	require.NoError(t, progress.Upsert(models.ProgressRecord{
		UserID: 1, ItemID: a, Kind: models.KindLemma,
		Stability: &s, State: models.StateLearning, Reps: 1,
		LastReviewedAt: &now, LastSeenAt: &now,
	}))

	stats, err := content.ChapterVocabStats(1)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 1, stats[0].ChapterNumber)
	assert.Equal(t, 2, stats[0].TotalLemmas)
	assert.Equal(t, 1, stats[0].IntroducedLemmas)
	assert.Equal(t, 1, stats[1].TotalLemmas)
	assert.Equal(t, 0, stats[1].IntroducedLemmas)
}
