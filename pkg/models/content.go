package models

import "time"

// Book is a reading-content volume split into chapters.
type Book struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Author    string    `json:"author" db:"author"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Chapter is one ordered unit of a book; unlock gating runs over chapters.
type Chapter struct {
	ID            int64  `json:"id" db:"id"`
	BookID        int64  `json:"book_id" db:"book_id"`
	ChapterNumber int    `json:"chapter_number" db:"chapter_number"`
	Title         string `json:"title" db:"title"`
}

// Sentence is one sentence of a chapter in reading order. ParagraphStart
// marks sentences that open a paragraph; the fragment reader uses it to avoid
// cutting a reading batch mid-paragraph.
type Sentence struct {
	ID             int64  `json:"id" db:"id"`
	ChapterNumber  int    `json:"chapter_number" db:"chapter_number"`
	SentenceOrder  int    `json:"sentence_order" db:"sentence_order"`
	Text           string `json:"text" db:"text"`
	Translation    string `json:"translation" db:"translation"`
	ParagraphStart bool   `json:"paragraph_start" db:"paragraph_start"`
}

// Song is a lyrics unit whose vocabulary (lemmas, phrases, slang) can be
// studied as its own session scope.
type Song struct {
	ID     int64  `json:"id" db:"id"`
	Title  string `json:"title" db:"title"`
	Artist string `json:"artist" db:"artist"`
}
