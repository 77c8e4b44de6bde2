package database

import (
	"github.com/example/leerbot/internal/session"
	"github.com/example/leerbot/pkg/models"
)

// Store bundles the repositories behind the read surface the session
// assembler expects. It satisfies session.Store.
type Store struct {
	Progress *ProgressRepository
	Content  *ContentRepository
	Vocab    *VocabRepository
	Users    *UserRepository
	Activity *ActivityRepository
}

// NewStore wires the repositories over the global connection.
func NewStore() *Store {
	return &Store{
		Progress: NewProgressRepository(),
		Content:  NewContentRepository(),
		Vocab:    NewVocabRepository(),
		Users:    NewUserRepository(),
		Activity: NewActivityRepository(),
	}
}

var _ session.Store = (*Store)(nil)

// ReviewPool implements session.Store.
func (s *Store) ReviewPool(userID int64) ([]models.Card, error) {
	return s.Progress.ReviewPool(userID)
}

// UnseenVocab implements session.Store.
func (s *Store) UnseenVocab(userID int64, chapters []int) ([]models.Card, []models.Card, error) {
	return s.Progress.UnseenVocab(userID, chapters)
}

// SongPool implements session.Store.
func (s *Store) SongPool(userID, songID int64) ([]models.Card, error) {
	return s.Progress.SongPool(userID, songID)
}

// FragmentsAfter implements session.Store.
func (s *Store) FragmentsAfter(userID int64, chapter int, cursor models.ReadingCursor) ([]models.Card, error) {
	return s.Progress.FragmentsAfter(userID, chapter, cursor)
}

// FragmentPool implements session.Store.
func (s *Store) FragmentPool(userID, bookID int64) ([]models.Card, error) {
	return s.Progress.FragmentPool(userID, bookID)
}

// ChapterVocabStats implements session.Store.
func (s *Store) ChapterVocabStats(userID int64) ([]session.ChapterVocabStats, error) {
	return s.Content.ChapterVocabStats(userID)
}

// ActivityHistory implements session.Store.
func (s *Store) ActivityHistory(userID int64, days int) ([]models.DailyActivity, error) {
	return s.Activity.History(userID, days)
}

// Cursor implements session.Store.
func (s *Store) Cursor(userID int64, chapter int) (models.ReadingCursor, error) {
	return s.Content.Cursor(userID, chapter)
}

// User implements session.Store.
func (s *Store) User(userID int64) (models.User, error) {
	return s.Users.Get(userID)
}
