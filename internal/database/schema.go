package database

import "fmt"

// schema statements are portable across SQLite and Postgres: timestamps are
// always bound from Go, so no NOW()/datetime('now') divergence exists here.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		telegram_id BIGINT PRIMARY KEY,
		username TEXT DEFAULT '',
		first_name TEXT DEFAULT '',
		last_name TEXT DEFAULT '',
		is_admin BOOLEAN DEFAULT FALSE,
		allow_explicit BOOLEAN DEFAULT FALSE,
		session_size INTEGER DEFAULT 0,
		notification_enabled BOOLEAN DEFAULT TRUE,
		notification_hour INTEGER DEFAULT 9,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	// chapter_number is one global reading sequence across books: a second
	// book continues the numbering. Sentences, fragments, vocabulary, the
	// reading cursor and the unlock order all key on that bare number;
	// book_id only groups chapters for listings and fragment-review scope.
	`CREATE TABLE IF NOT EXISTS chapters (
		id INTEGER PRIMARY KEY,
		book_id INTEGER NOT NULL,
		chapter_number INTEGER NOT NULL UNIQUE,
		title TEXT DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS sentences (
		id INTEGER PRIMARY KEY,
		chapter_number INTEGER NOT NULL,
		sentence_order INTEGER NOT NULL,
		text TEXT NOT NULL,
		translation TEXT DEFAULT '',
		paragraph_start BOOLEAN DEFAULT FALSE,
		UNIQUE (chapter_number, sentence_order)
	)`,
	`CREATE TABLE IF NOT EXISTS fragments (
		id INTEGER PRIMARY KEY,
		chapter_number INTEGER NOT NULL,
		sentence_order INTEGER NOT NULL,
		fragment_order INTEGER NOT NULL,
		display_text TEXT NOT NULL,
		translation TEXT DEFAULT '',
		paragraph_start BOOLEAN DEFAULT FALSE,
		UNIQUE (chapter_number, sentence_order, fragment_order)
	)`,
	`CREATE TABLE IF NOT EXISTS lemmas (
		id INTEGER PRIMARY KEY,
		display_text TEXT NOT NULL,
		translation TEXT DEFAULT '',
		part_of_speech TEXT DEFAULT '',
		is_stop_word BOOLEAN DEFAULT FALSE,
		chapter_number INTEGER DEFAULT 0,
		sentence_order INTEGER DEFAULT 0,
		example_text TEXT DEFAULT '',
		example_translation TEXT DEFAULT '',
		UNIQUE (display_text)
	)`,
	`CREATE TABLE IF NOT EXISTS phrases (
		id INTEGER PRIMARY KEY,
		display_text TEXT NOT NULL,
		translation TEXT DEFAULT '',
		cultural_note TEXT DEFAULT '',
		chapter_number INTEGER DEFAULT 0,
		sentence_order INTEGER DEFAULT 0,
		UNIQUE (display_text)
	)`,
	`CREATE TABLE IF NOT EXISTS slang (
		id INTEGER PRIMARY KEY,
		display_text TEXT NOT NULL,
		translation TEXT DEFAULT '',
		cultural_note TEXT DEFAULT '',
		is_vulgar BOOLEAN DEFAULT FALSE,
		UNIQUE (display_text)
	)`,
	`CREATE TABLE IF NOT EXISTS songs (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS song_vocab (
		song_id INTEGER NOT NULL,
		kind TEXT NOT NULL,
		item_id INTEGER NOT NULL,
		PRIMARY KEY (song_id, kind, item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS lemma_progress (
		user_id BIGINT NOT NULL,
		lemma_id INTEGER NOT NULL,
		stability REAL,
		difficulty REAL DEFAULT 0,
		state INTEGER DEFAULT 0,
		due_at TIMESTAMP,
		reps INTEGER DEFAULT 0,
		lapses INTEGER DEFAULT 0,
		last_reviewed_at TIMESTAMP,
		last_seen_at TIMESTAMP,
		PRIMARY KEY (user_id, lemma_id)
	)`,
	`CREATE TABLE IF NOT EXISTS phrase_progress (
		user_id BIGINT NOT NULL,
		phrase_id INTEGER NOT NULL,
		stability REAL,
		difficulty REAL DEFAULT 0,
		state INTEGER DEFAULT 0,
		due_at TIMESTAMP,
		reps INTEGER DEFAULT 0,
		last_reviewed_at TIMESTAMP,
		last_seen_at TIMESTAMP,
		PRIMARY KEY (user_id, phrase_id)
	)`,
	`CREATE TABLE IF NOT EXISTS slang_progress (
		user_id BIGINT NOT NULL,
		slang_id INTEGER NOT NULL,
		stability REAL,
		difficulty REAL DEFAULT 0,
		state INTEGER DEFAULT 0,
		due_at TIMESTAMP,
		reps INTEGER DEFAULT 0,
		last_reviewed_at TIMESTAMP,
		last_seen_at TIMESTAMP,
		PRIMARY KEY (user_id, slang_id)
	)`,
	`CREATE TABLE IF NOT EXISTS fragment_progress (
		user_id BIGINT NOT NULL,
		fragment_id INTEGER NOT NULL,
		stability REAL,
		difficulty REAL DEFAULT 0,
		state INTEGER DEFAULT 0,
		due_at TIMESTAMP,
		reps INTEGER DEFAULT 0,
		lapses INTEGER DEFAULT 0,
		last_reviewed_at TIMESTAMP,
		last_seen_at TIMESTAMP,
		PRIMARY KEY (user_id, fragment_id)
	)`,
	`CREATE TABLE IF NOT EXISTS review_activity (
		user_id BIGINT NOT NULL,
		day DATE NOT NULL,
		review_count INTEGER DEFAULT 0,
		PRIMARY KEY (user_id, day)
	)`,
	`CREATE TABLE IF NOT EXISTS reading_cursor (
		user_id BIGINT NOT NULL,
		chapter_number INTEGER NOT NULL,
		sentence_order INTEGER DEFAULT 0,
		fragment_order INTEGER DEFAULT 0,
		PRIMARY KEY (user_id, chapter_number)
	)`,
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %v", err)
		}
	}
	return nil
}
