package bot

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/leerbot/internal/fsrs"
	"github.com/example/leerbot/internal/session"
	"github.com/example/leerbot/pkg/models"
)

const helpText = `<b>leerbot</b> — learn Spanish by reading

/review — review due vocabulary
/learn — learn new words from unlocked chapters
/chapter N — focused practice on chapter N
/books — list books and their chapters
/songs — list available songs
/song N — study a song's vocabulary (add "new" for new words only)
/read N — continue reading chapter N in fragments
/fragments N — review due fragments from book N
/stats — your progress
/remind — check right now whether anything is due
/settings — explicit content, session size, reminder hour`

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	userID := msg.From.ID
	if _, err := b.store.Users.GetOrCreate(userID, msg.From.UserName, msg.From.FirstName, msg.From.LastName); err != nil {
		log.Printf("Error registering user %d: %v", userID, err)
	}

	args := strings.Fields(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		b.sendText(msg.Chat.ID, helpText)
	case "review":
		b.startSession(msg.Chat.ID, models.SessionRequest{UserID: userID, Mode: models.ModeReview})
	case "learn":
		b.startSession(msg.Chat.ID, models.SessionRequest{UserID: userID, Mode: models.ModeLearn})
	case "chapter":
		chapter, ok := firstInt(args)
		if !ok {
			b.sendText(msg.Chat.ID, "Usage: /chapter N")
			return
		}
		b.startSession(msg.Chat.ID, models.SessionRequest{
			UserID: userID, Mode: models.ModeChapterFocus, ChapterNumber: chapter,
		})
	case "books":
		b.sendBookList(msg.Chat.ID)
	case "songs":
		b.sendSongList(msg.Chat.ID)
	case "song":
		songID, ok := firstInt(args)
		if !ok {
			b.sendText(msg.Chat.ID, "Usage: /song N [new]")
			return
		}
		learnOnly := len(args) > 1 && args[1] == "new"
		b.startSession(msg.Chat.ID, models.SessionRequest{
			UserID: userID, Mode: models.ModeSong, SongID: int64(songID), LearnOnly: learnOnly,
		})
	case "read":
		chapter, ok := firstInt(args)
		if !ok {
			b.sendText(msg.Chat.ID, "Usage: /read N")
			return
		}
		b.startSession(msg.Chat.ID, models.SessionRequest{
			UserID: userID, Mode: models.ModeFragmentRead, ChapterNumber: chapter,
		})
	case "fragments":
		bookID, ok := firstInt(args)
		if !ok {
			b.sendText(msg.Chat.ID, "Usage: /fragments N")
			return
		}
		b.startSession(msg.Chat.ID, models.SessionRequest{
			UserID: userID, Mode: models.ModeFragmentReview, BookID: int64(bookID),
		})
	case "stats":
		b.sendStats(msg.Chat.ID, userID)
	case "remind":
		if b.reminders == nil {
			return
		}
		if err := b.reminders.RunManualCheck(userID); err != nil {
			log.Printf("Error running manual reminder for user %d: %v", userID, err)
		}
	case "broadcast":
		b.handleBroadcast(msg.Chat.ID, userID, msg.CommandArguments())
	case "settings":
		b.handleSettings(msg.Chat.ID, userID, args)
	case "stop":
		b.mu.Lock()
		delete(b.sessions, userID)
		b.mu.Unlock()
		b.sendText(msg.Chat.ID, "Session abandoned. Rated cards are saved; the rest stay as they were.")
	default:
		b.sendText(msg.Chat.ID, "Unknown command. Send /help for the list.")
	}
}

// handleBroadcast sends an announcement to every registered user. Admins only.
func (b *Bot) handleBroadcast(chatID, userID int64, text string) {
	if !b.IsAdmin(userID) {
		b.sendText(chatID, "This command is for administrators.")
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		b.sendText(chatID, "Usage: /broadcast message")
		return
	}
	users, err := b.store.Users.GetAllUsers()
	if err != nil {
		log.Printf("Error loading users for broadcast: %v", err)
		b.sendText(chatID, "Could not load the user list.")
		return
	}
	for _, user := range users {
		b.sendText(user.ID, text)
	}
	b.sendText(chatID, fmt.Sprintf("Broadcast sent to %d users.", len(users)))
}

const settingsUsage = "Usage: /settings explicit on|off, /settings size N, /settings hour H"

func (b *Bot) handleSettings(chatID, userID int64, args []string) {
	if len(args) == 0 {
		b.sendText(chatID, settingsUsage)
		return
	}
	switch args[0] {
	case "explicit":
		allow := len(args) > 1 && args[1] == "on"
		if err := b.store.Users.SetAllowExplicit(userID, allow); err != nil {
			log.Printf("Error updating settings for user %d: %v", userID, err)
			b.sendText(chatID, "Could not save your settings, try again later.")
			return
		}
		b.sendText(chatID, fmt.Sprintf("Explicit content: %v", allow))
	case "size":
		size, ok := firstInt(args[1:])
		if !ok || size < 1 || size > 100 {
			b.sendText(chatID, "Session size must be between 1 and 100.")
			return
		}
		if err := b.store.Users.SetSessionSize(userID, size); err != nil {
			log.Printf("Error updating settings for user %d: %v", userID, err)
			b.sendText(chatID, "Could not save your settings, try again later.")
			return
		}
		b.sendText(chatID, fmt.Sprintf("Session size set to %d cards.", size))
	case "hour":
		hour, ok := firstInt(args[1:])
		if !ok || hour < 0 || hour > 23 {
			b.sendText(chatID, "Reminder hour must be between 0 and 23 (UTC).")
			return
		}
		if err := b.store.Users.SetNotificationHour(userID, hour); err != nil {
			log.Printf("Error updating settings for user %d: %v", userID, err)
			b.sendText(chatID, "Could not save your settings, try again later.")
			return
		}
		b.sendText(chatID, fmt.Sprintf("Reminders will arrive around %02d:00 UTC.", hour))
	default:
		b.sendText(chatID, settingsUsage)
	}
}

func (b *Bot) sendBookList(chatID int64) {
	books, err := b.store.Content.GetBooks()
	if err != nil {
		log.Printf("Error listing books: %v", err)
		b.sendText(chatID, "Could not load the book list, try again later.")
		return
	}
	if len(books) == 0 {
		b.sendText(chatID, "No books have been imported yet.")
		return
	}
	var sb strings.Builder
	for _, book := range books {
		fmt.Fprintf(&sb, "<b>%s</b>", book.Title)
		if book.Author != "" {
			fmt.Fprintf(&sb, " — %s", book.Author)
		}
		fmt.Fprintf(&sb, " (book %d)\n", book.ID)

		chapters, err := b.store.Content.GetChapters(book.ID)
		if err != nil {
			log.Printf("Error listing chapters for book %d: %v", book.ID, err)
			continue
		}
		for _, ch := range chapters {
			fmt.Fprintf(&sb, "  %d. %s\n", ch.ChapterNumber, ch.Title)
		}
	}
	sb.WriteString("\nRead with /read N, review fragments with /fragments N")
	b.sendText(chatID, sb.String())
}

func (b *Bot) sendSongList(chatID int64) {
	songs, err := b.store.Content.GetSongs()
	if err != nil {
		log.Printf("Error listing songs: %v", err)
		b.sendText(chatID, "Could not load the song list, try again later.")
		return
	}
	if len(songs) == 0 {
		b.sendText(chatID, "No songs have been imported yet.")
		return
	}
	var sb strings.Builder
	sb.WriteString("<b>Songs</b>\n")
	for _, song := range songs {
		fmt.Fprintf(&sb, "%d. %s", song.ID, song.Title)
		if song.Artist != "" {
			fmt.Fprintf(&sb, " (%s)", song.Artist)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nStart one with /song N")
	b.sendText(chatID, sb.String())
}

func (b *Bot) sendStats(chatID, userID int64) {
	pool, err := b.store.ReviewPool(userID)
	if err != nil {
		log.Printf("Error loading stats for user %d: %v", userID, err)
		b.sendText(chatID, "Could not load your stats, try again later.")
		return
	}
	now := time.Now()
	due, masterySum := 0, 0
	for _, card := range pool {
		if session.IsDue(card.Progress, now) {
			due++
		}
		masterySum += fsrs.MasteryPercent(card.Progress.Stability)
	}
	avgMastery := 0
	if len(pool) > 0 {
		avgMastery = masterySum / len(pool)
	}
	b.sendText(chatID, fmt.Sprintf(
		"Tracked items: <b>%d</b>\nDue now: <b>%d</b>\nAverage mastery: <b>%d%%</b>",
		len(pool), due, avgMastery))
}

// startSession builds a session and presents its first card. Empty sessions
// surface their message; missing scope parameters surface as usage hints.
func (b *Bot) startSession(chatID int64, req models.SessionRequest) {
	sess, err := b.assembler.Build(req)
	switch {
	case errors.Is(err, session.ErrMissingChapter), errors.Is(err, session.ErrMissingSong), errors.Is(err, session.ErrMissingBook):
		b.sendText(chatID, "Could not start the session: "+err.Error())
		return
	case err != nil:
		log.Printf("Error building %s session for user %d: %v", req.Mode, req.UserID, err)
		b.sendText(chatID, "Could not start the session, try again later.")
		return
	}
	if len(sess.Cards) == 0 {
		b.sendText(chatID, sess.Message)
		return
	}

	b.mu.Lock()
	b.sessions[req.UserID] = &activeSession{
		mode:      sess.Mode,
		chapter:   req.ChapterNumber,
		queue:     sess.Cards,
		firstPass: len(sess.Cards),
	}
	b.mu.Unlock()

	intro := fmt.Sprintf("Starting a %d-card session.", len(sess.Cards))
	if sess.Mode == models.ModeFragmentReview && sess.TotalDue > len(sess.Cards) {
		intro = fmt.Sprintf("Starting a %d-card session (%d fragments due in total).", len(sess.Cards), sess.TotalDue)
	}
	b.sendText(chatID, intro)
	b.presentCard(chatID, req.UserID)
}

// presentCard shows the current card's front with a reveal button.
func (b *Bot) presentCard(chatID, userID int64) {
	b.mu.Lock()
	sess, ok := b.sessions[userID]
	if !ok || sess.idx >= len(sess.queue) {
		b.mu.Unlock()
		return
	}
	card := sess.queue[sess.idx]
	b.mu.Unlock()

	if card.IsExposure {
		b.markSeenAsync(card.Progress, time.Now())
	}

	front := fmt.Sprintf("<b>%s</b>", card.Item.DisplayText)
	if card.Item.PartOfSpeech != "" {
		front += fmt.Sprintf(" <i>(%s)</i>", card.Item.PartOfSpeech)
	}
	if card.IsNew {
		front += "\n\nNew word — take a guess, then reveal."
	}

	msg := tgbotapi.NewMessage(chatID, front)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = createKeyboard([][]MenuButton{{{Text: "Show answer", CallbackData: "show"}}})
	b.send(msg)
}

func ratingKeyboard() tgbotapi.InlineKeyboardMarkup {
	return createKeyboard([][]MenuButton{{
		{Text: "Again", CallbackData: "rate:again"},
		{Text: "Hard", CallbackData: "rate:hard"},
		{Text: "Got it", CallbackData: "rate:good"},
		{Text: "Easy", CallbackData: "rate:easy"},
	}})
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	// Acknowledge immediately so the client stops its spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("Error acknowledging callback: %v", err)
	}

	userID := cb.From.ID
	chatID := cb.Message.Chat.ID
	switch {
	case cb.Data == "show":
		b.revealCard(chatID, userID, cb.Message.MessageID)
	case strings.HasPrefix(cb.Data, "rate:"):
		b.rateCard(chatID, userID, strings.TrimPrefix(cb.Data, "rate:"))
	}
}

// revealCard edits the card message to include the back side and the rating
// buttons.
func (b *Bot) revealCard(chatID, userID int64, messageID int) {
	b.mu.Lock()
	sess, ok := b.sessions[userID]
	if !ok || sess.idx >= len(sess.queue) {
		b.mu.Unlock()
		return
	}
	card := sess.queue[sess.idx]
	b.mu.Unlock()

	text := fmt.Sprintf("<b>%s</b>\n%s", card.Item.DisplayText, card.Item.Translation)
	if card.Item.ExampleText != "" {
		text += fmt.Sprintf("\n\n<i>%s</i>\n%s", card.Item.ExampleText, card.Item.ExampleTranslation)
	}
	if card.Item.CulturalNote != "" {
		text += "\n\n" + card.Item.CulturalNote
	}

	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	keyboard := ratingKeyboard()
	edit.ReplyMarkup = &keyboard
	b.send(edit)
}

// rateCard applies a rating to the current card, requeues it on Again, and
// advances. The write happens in the background; the queue never waits.
func (b *Bot) rateCard(chatID, userID int64, label string) {
	rating := models.ParseRating(label)
	now := time.Now()

	b.mu.Lock()
	sess, ok := b.sessions[userID]
	if !ok || sess.idx >= len(sess.queue) {
		b.mu.Unlock()
		return
	}
	card := sess.queue[sess.idx]
	onFirstPass := sess.idx < sess.firstPass
	updated := b.memory.Update(card.Progress, rating, fsrs.ProfileFor(card.Item.Kind), now)
	sess.rated++
	if rating == models.RatingAgain {
		sess.lapses++
		requeued := card
		requeued.Progress = updated
		sess.queue = append(sess.queue, requeued)
	}
	sess.idx++
	done := sess.idx >= len(sess.queue)
	mode, chapter := sess.mode, sess.chapter
	rated, lapses := sess.rated, sess.lapses
	if done {
		delete(b.sessions, userID)
	}
	b.mu.Unlock()

	b.persistAsync(updated, now)

	// Reading sessions advance the cursor as fragments are completed. Requeued
	// copies sit at an earlier position than fragments already rated, so only
	// first-pass cards report theirs; SaveCursor itself refuses to move back.
	if mode == models.ModeFragmentRead && onFirstPass {
		cursor := models.ReadingCursor{
			SentenceOrder: card.Item.SentenceOrder,
			FragmentOrder: card.Item.FragmentOrder,
		}
		go func() {
			if err := b.store.Content.SaveCursor(userID, chapter, cursor); err != nil {
				log.Printf("Error saving reading cursor for user %d: %v", userID, err)
			}
		}()
	}

	if done {
		b.sendText(chatID, fmt.Sprintf("Session complete: %d answers, %d retries. Hasta luego.", rated, lapses))
		return
	}
	b.presentCard(chatID, userID)
}

func firstInt(args []string) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, false
	}
	return n, true
}
