// Package importer loads chapter vocabulary and reading fragments from Excel
// or CSV files produced by the content pipeline. Rows are upserted, so
// re-importing a corrected file is safe.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/leerbot/internal/ai"
	"github.com/example/leerbot/internal/database"
	"github.com/example/leerbot/pkg/models"
)

// VocabConfig defines a vocabulary import: one file for one chapter.
// Expected columns: text, translation, kind (lemma|phrase|slang),
// part of speech, cultural note, example, example translation, vulgar flag,
// sentence order. When BookID is set the chapter row is registered first.
type VocabConfig struct {
	FilePath      string
	ChapterNumber int
	BookID        int64
	ChapterTitle  string
	SheetName     string
	StartRow      int // 1-based; rows before it are skipped
}

// FragmentConfig defines a fragment import for one chapter. Expected columns:
// sentence order, fragment order, text, translation, paragraph-start flag.
type FragmentConfig struct {
	FilePath      string
	ChapterNumber int
	SheetName     string
	StartRow      int
}

// SentenceConfig defines a full-sentence import for one chapter. Expected
// columns: sentence order, text, translation, paragraph-start flag.
type SentenceConfig struct {
	FilePath      string
	ChapterNumber int
	SheetName     string
	StartRow      int
}

// SongConfig defines a song-vocabulary import. Rows use the vocabulary column
// layout; every imported item is linked to the song.
type SongConfig struct {
	FilePath  string
	Title     string
	Artist    string
	SheetName string
	StartRow  int
}

// Result holds the outcome of an import operation.
type Result struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// Importer writes parsed content through the store. The translator is
// optional; when present it fills missing translations.
type Importer struct {
	vocab      *database.VocabRepository
	content    *database.ContentRepository
	translator *ai.Translator
}

// New creates an importer over the given repositories.
func New(vocab *database.VocabRepository, content *database.ContentRepository, translator *ai.Translator) *Importer {
	return &Importer{vocab: vocab, content: content, translator: translator}
}

// ImportVocab loads a chapter's vocabulary file.
func (im *Importer) ImportVocab(cfg VocabConfig) (*Result, error) {
	if cfg.SheetName == "" {
		cfg.SheetName = "Sheet1"
	}
	if cfg.StartRow <= 0 {
		cfg.StartRow = 2 // skip the header by default
	}
	rows, err := readRows(cfg.FilePath, cfg.SheetName)
	if err != nil {
		return nil, err
	}
	if cfg.BookID > 0 {
		if err := im.content.CreateChapter(cfg.BookID, cfg.ChapterNumber, cfg.ChapterTitle); err != nil {
			return nil, err
		}
	}

	result := &Result{}
	for i, row := range rows {
		if i < cfg.StartRow-1 {
			continue
		}
		result.TotalProcessed++
		if _, _, err := im.upsertVocabRow(row, cfg.ChapterNumber, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

// upsertVocabRow writes one vocabulary row, returning the stored kind and ID
// so song imports can link the item afterwards. A blank row reports kind ""
// with no error.
func (im *Importer) upsertVocabRow(row []string, chapter int, result *Result) (models.ItemKind, int64, error) {
	text := cell(row, 0)
	if text == "" {
		result.Skipped++
		return "", 0, nil
	}
	translation := cell(row, 1)
	if translation == "" && im.translator != nil {
		translated, err := im.translator.Translate(text)
		if err != nil {
			return "", 0, fmt.Errorf("failed to translate %q: %v", text, err)
		}
		translation = translated
	}

	item := models.Item{
		DisplayText:        text,
		Translation:        translation,
		PartOfSpeech:       cell(row, 3),
		CulturalNote:       cell(row, 4),
		ExampleText:        cell(row, 5),
		ExampleTranslation: cell(row, 6),
		IsVulgar:           parseBool(cell(row, 7)),
		ChapterNumber:      chapter,
		SentenceOrder:      parseInt(cell(row, 8)),
	}

	var id int64
	var err error
	switch strings.ToLower(cell(row, 2)) {
	case "phrase":
		item.Kind = models.KindPhrase
		id, err = im.vocab.UpsertPhrase(item)
	case "slang":
		item.Kind = models.KindSlang
		id, err = im.vocab.UpsertSlang(item)
	default:
		item.Kind = models.KindLemma
		id, err = im.vocab.UpsertLemma(item)
	}
	if err != nil {
		return "", 0, err
	}
	result.Created++
	return item.Kind, id, nil
}

// ImportSong creates the song and imports its vocabulary file, linking every
// row to the song.
func (im *Importer) ImportSong(cfg SongConfig) (*Result, error) {
	if cfg.SheetName == "" {
		cfg.SheetName = "Sheet1"
	}
	if cfg.StartRow <= 0 {
		cfg.StartRow = 2
	}
	rows, err := readRows(cfg.FilePath, cfg.SheetName)
	if err != nil {
		return nil, err
	}
	songID, err := im.vocab.CreateSong(cfg.Title, cfg.Artist)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, row := range rows {
		if i < cfg.StartRow-1 {
			continue
		}
		result.TotalProcessed++
		kind, itemID, err := im.upsertVocabRow(row, 0, result)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		if kind == "" {
			continue
		}
		if err := im.vocab.LinkSongVocab(songID, kind, itemID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

// ImportSentences loads a chapter's full sentences, the unit the fragment
// reader's paragraph flags derive from.
func (im *Importer) ImportSentences(cfg SentenceConfig) (*Result, error) {
	if cfg.SheetName == "" {
		cfg.SheetName = "Sheet1"
	}
	if cfg.StartRow <= 0 {
		cfg.StartRow = 2
	}
	rows, err := readRows(cfg.FilePath, cfg.SheetName)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, row := range rows {
		if i < cfg.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		text := cell(row, 1)
		if text == "" {
			result.Skipped++
			continue
		}
		err := im.content.CreateSentence(models.Sentence{
			ChapterNumber:  cfg.ChapterNumber,
			SentenceOrder:  parseInt(cell(row, 0)),
			Text:           text,
			Translation:    cell(row, 2),
			ParagraphStart: parseBool(cell(row, 3)),
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.Created++
	}
	return result, nil
}

// ImportFragments loads a chapter's reading fragments.
func (im *Importer) ImportFragments(cfg FragmentConfig) (*Result, error) {
	if cfg.SheetName == "" {
		cfg.SheetName = "Sheet1"
	}
	if cfg.StartRow <= 0 {
		cfg.StartRow = 2
	}
	rows, err := readRows(cfg.FilePath, cfg.SheetName)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, row := range rows {
		if i < cfg.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		text := cell(row, 2)
		if text == "" {
			result.Skipped++
			continue
		}
		translation := cell(row, 3)
		if translation == "" && im.translator != nil {
			translated, err := im.translator.Translate(text)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: failed to translate: %v", i+1, err))
				continue
			}
			translation = translated
		}

		err := im.content.CreateFragment(
			cfg.ChapterNumber,
			parseInt(cell(row, 0)),
			parseInt(cell(row, 1)),
			text,
			translation,
			parseBool(cell(row, 4)),
		)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.Created++
	}
	return result, nil
}

// readRows loads a spreadsheet or CSV file into string rows.
func readRows(path, sheet string) ([][]string, error) {
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		return readCSV(path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}
