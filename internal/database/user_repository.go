package database

import (
	"database/sql"
	"fmt"

	"github.com/example/leerbot/pkg/models"
)

// UserRepository handles database operations for users and their study
// preferences.
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// GetOrCreate returns the user, registering them on first contact.
func (r *UserRepository) GetOrCreate(id int64, username, firstName, lastName string) (models.User, error) {
	user, err := r.Get(id)
	if err == nil {
		return user, nil
	}
	if err != sql.ErrNoRows {
		return models.User{}, err
	}
	_, err = DB.Exec(`
		INSERT INTO users (telegram_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
	`, id, username, firstName, lastName)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %v", err)
	}
	return r.Get(id)
}

// Get returns one user by Telegram ID. sql.ErrNoRows passes through so
// callers can distinguish "unknown user".
func (r *UserRepository) Get(id int64) (models.User, error) {
	var user models.User
	err := DB.Get(&user, "SELECT * FROM users WHERE telegram_id = $1", id)
	return user, err
}

// SetAllowExplicit updates the learner's content-safety setting.
func (r *UserRepository) SetAllowExplicit(id int64, allow bool) error {
	_, err := DB.Exec("UPDATE users SET allow_explicit = $1 WHERE telegram_id = $2", allow, id)
	if err != nil {
		return fmt.Errorf("failed to update explicit setting: %v", err)
	}
	return nil
}

// SetSessionSize updates the learner's per-session card count override.
func (r *UserRepository) SetSessionSize(id int64, size int) error {
	_, err := DB.Exec("UPDATE users SET session_size = $1 WHERE telegram_id = $2", size, id)
	if err != nil {
		return fmt.Errorf("failed to update session size: %v", err)
	}
	return nil
}

// SetNotificationHour updates when the learner wants reminders.
func (r *UserRepository) SetNotificationHour(id int64, hour int) error {
	_, err := DB.Exec("UPDATE users SET notification_hour = $1 WHERE telegram_id = $2", hour, id)
	if err != nil {
		return fmt.Errorf("failed to update notification hour: %v", err)
	}
	return nil
}

// GetAllUsers returns every registered user.
func (r *UserRepository) GetAllUsers() ([]models.User, error) {
	var users []models.User
	if err := DB.Select(&users, "SELECT * FROM users ORDER BY telegram_id"); err != nil {
		return nil, fmt.Errorf("failed to get users: %v", err)
	}
	return users, nil
}

// GetUsersForNotification returns users who want a reminder at the given hour.
func (r *UserRepository) GetUsersForNotification(hour int) ([]models.User, error) {
	var users []models.User
	err := DB.Select(&users, `
		SELECT * FROM users
		WHERE notification_enabled = $1 AND notification_hour = $2
	`, true, hour)
	if err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %v", err)
	}
	return users, nil
}
