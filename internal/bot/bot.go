// Package bot is the Telegram delivery surface: it turns assembled sessions
// into a card-at-a-time conversation and feeds ratings back into the memory
// model. Persistence is optimistic: the conversation advances immediately and
// writes happen in the background.
package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/leerbot/internal/database"
	"github.com/example/leerbot/internal/fsrs"
	"github.com/example/leerbot/internal/session"
	"github.com/example/leerbot/pkg/models"
)

// MenuButton represents a button in an inline menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// activeSession is one user's in-flight card queue. Again-rated cards are
// requeued at the back so they reappear within the same pass; firstPass marks
// where the original queue ends and the requeued copies begin.
type activeSession struct {
	mode      models.SessionMode
	chapter   int
	queue     []models.Card
	idx       int
	firstPass int
	rated     int
	lapses    int
}

// ReminderRunner triggers an on-demand due-count reminder; the scheduler
// implements it.
type ReminderRunner interface {
	RunManualCheck(userID int64) error
}

// Bot represents the Telegram bot application
type Bot struct {
	api       *tgbotapi.BotAPI
	store     *database.Store
	assembler *session.Assembler
	memory    *fsrs.MemoryModel
	reminders ReminderRunner

	mu       sync.Mutex
	sessions map[int64]*activeSession

	adminUserIDs map[int64]bool
}

// New creates a new bot instance over the given store and scheduling core.
func New(store *database.Store, assembler *session.Assembler, memory *fsrs.MemoryModel) (*Bot, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %v", err)
	}

	b := &Bot{
		api:          api,
		store:        store,
		assembler:    assembler,
		memory:       memory,
		sessions:     make(map[int64]*activeSession),
		adminUserIDs: make(map[int64]bool),
	}

	if ids := os.Getenv("ADMIN_USER_IDS"); ids != "" {
		for _, idStr := range strings.Split(ids, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
			if err != nil {
				log.Printf("Warning: invalid admin user ID: %s", idStr)
				continue
			}
			b.adminUserIDs[id] = true
		}
	}
	return b, nil
}

// SetReminderRunner attaches the reminder scheduler after construction; the
// scheduler needs the bot first, so the wiring is two-step.
func (b *Bot) SetReminderRunner(r ReminderRunner) {
	b.reminders = r
}

// IsAdmin reports whether the user may run administrative commands.
func (b *Bot) IsAdmin(userID int64) bool {
	return b.adminUserIDs[userID]
}

// Start begins processing updates until the context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	log.Printf("Bot authorized as @%s", b.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(update)
		}
	}
}

// Stop shuts down the update channel.
func (b *Bot) Stop(ctx context.Context) error {
	b.api.StopReceivingUpdates()
	return nil
}

// SendReminders notifies a user about due cards. The scheduler calls this.
func (b *Bot) SendReminders(userID int64, count int) error {
	text := fmt.Sprintf("You have %d cards waiting for review. Send /review when you're ready.", count)
	_, err := b.api.Send(tgbotapi.NewMessage(userID, text))
	return err
}

// DueCount reports how many vocabulary items are due for a user right now.
func (b *Bot) DueCount(userID int64) (int, error) {
	pool, err := b.store.ReviewPool(userID)
	if err != nil {
		return 0, err
	}
	now := time.Now()
	count := 0
	for _, card := range pool {
		if card.Progress.Reps > 0 && session.IsDue(card.Progress, now) {
			count++
		}
	}
	return count, nil
}

// send wraps api.Send with error logging; delivery failures never interrupt
// the session flow.
func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		log.Printf("Error sending telegram message: %v", err)
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	b.send(msg)
}

// persistAsync writes a progress update in the background. The session has
// already advanced; a failed write just leaves the item due for a future
// session.
func (b *Bot) persistAsync(rec models.ProgressRecord, reviewedAt time.Time) {
	go func() {
		if err := b.store.Progress.Upsert(rec); err != nil {
			log.Printf("Error persisting progress for user %d item %d (%s): %v",
				rec.UserID, rec.ItemID, rec.Kind, err)
			return
		}
		if err := b.store.Activity.RecordReview(rec.UserID, reviewedAt); err != nil {
			log.Printf("Error recording activity for user %d: %v", rec.UserID, err)
		}
	}()
}

// markSeenAsync stamps exposure presentations without blocking.
func (b *Bot) markSeenAsync(rec models.ProgressRecord, seenAt time.Time) {
	go func() {
		rec.LastSeenAt = &seenAt
		if err := b.store.Progress.MarkSeen(rec); err != nil {
			log.Printf("Error marking item seen for user %d item %d: %v", rec.UserID, rec.ItemID, err)
		}
	}()
}
