package database

import (
	"fmt"
	"time"

	"github.com/example/leerbot/pkg/models"
)

// ActivityRepository tracks per-day review throughput, which drives the
// exposure policy.
type ActivityRepository struct{}

// NewActivityRepository creates a new repository instance
func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{}
}

// RecordReview bumps the day's review counter for a user.
func (r *ActivityRepository) RecordReview(userID int64, at time.Time) error {
	day := at.UTC().Format("2006-01-02")
	_, err := DB.Exec(`
		INSERT INTO review_activity (user_id, day, review_count) VALUES ($1, $2, 1)
		ON CONFLICT (user_id, day) DO UPDATE SET review_count = review_activity.review_count + 1
	`, userID, day)
	if err != nil {
		return fmt.Errorf("failed to record review activity: %v", err)
	}
	return nil
}

// History returns per-day review counts for the trailing window. Days with no
// reviews are simply absent.
func (r *ActivityRepository) History(userID int64, days int) ([]models.DailyActivity, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
	var history []models.DailyActivity
	err := DB.Select(&history, `
		SELECT day, review_count FROM review_activity
		WHERE user_id = $1 AND day >= $2
		ORDER BY day
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity history: %v", err)
	}
	return history, nil
}
