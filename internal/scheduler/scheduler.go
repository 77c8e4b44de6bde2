// Package scheduler runs the recurring reminder job: once an hour it checks,
// inside the configured notification window, which users have due cards and
// pings them through the notifier.
package scheduler

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/leerbot/internal/database"
)

// Default notification window (UTC hours).
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Notifier delivers reminders; the bot implements it.
type Notifier interface {
	SendReminders(userID int64, count int) error
}

// DueCounter reports how many items are due for a user; the bot implements it
// on top of the review pool.
type DueCounter interface {
	DueCount(userID int64) (int, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	counter   DueCounter
	users     *database.UserRepository
}

// New creates a new scheduler instance
func New(notifier Notifier, counter DueCounter) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		counter:   counter,
		users:     database.NewUserRepository(),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders checks for users who need reminders and sends them
func (s *Scheduler) checkAndSendReminders() {
	currentHour := time.Now().UTC().Hour()

	startHour := envHour("NOTIFICATION_START_HOUR", DefaultNotificationStartHour)
	endHour := envHour("NOTIFICATION_END_HOUR", DefaultNotificationEndHour)
	if currentHour < startHour || currentHour > endHour {
		return
	}

	users, err := s.users.GetUsersForNotification(currentHour)
	if err != nil {
		log.Printf("Error getting users for notification: %v", err)
		return
	}

	for _, user := range users {
		count, err := s.counter.DueCount(user.ID)
		if err != nil {
			log.Printf("Error counting due items for user %d: %v", user.ID, err)
			continue
		}
		if count == 0 {
			continue
		}
		if err := s.notifier.SendReminders(user.ID, count); err != nil {
			log.Printf("Error sending reminder to user %d: %v", user.ID, err)
		}
	}
}

// RunManualCheck forces a reminder check for a specific user.
func (s *Scheduler) RunManualCheck(userID int64) error {
	count, err := s.counter.DueCount(userID)
	if err != nil {
		return err
	}
	if count > 0 {
		return s.notifier.SendReminders(userID, count)
	}
	return nil
}

func envHour(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			return h
		}
	}
	return fallback
}
