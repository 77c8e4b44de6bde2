package models

import "time"

// User represents a Telegram user of the bot together with their study
// preferences. SessionSize overrides the configured default when > 0.
type User struct {
	ID                  int64     `json:"id" db:"telegram_id"` // Telegram user ID
	Username            string    `json:"username" db:"username"`
	FirstName           string    `json:"first_name" db:"first_name"`
	LastName            string    `json:"last_name" db:"last_name"`
	IsAdmin             bool      `json:"is_admin" db:"is_admin"`
	AllowExplicit       bool      `json:"allow_explicit" db:"allow_explicit"`
	SessionSize         int       `json:"session_size" db:"session_size"`
	NotificationEnabled bool      `json:"notification_enabled" db:"notification_enabled"`
	NotificationHour    int       `json:"notification_hour" db:"notification_hour"` // hour of day, 0-23
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}
