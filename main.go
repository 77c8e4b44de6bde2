package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/leerbot/internal/ai"
	"github.com/example/leerbot/internal/bot"
	"github.com/example/leerbot/internal/database"
	"github.com/example/leerbot/internal/fsrs"
	"github.com/example/leerbot/internal/importer"
	"github.com/example/leerbot/internal/scheduler"
	"github.com/example/leerbot/internal/session"
)

func main() {
	var opts importOptions
	flag.StringVar(&opts.vocabFile, "import-vocab", "", "Import chapter vocabulary from an xlsx/csv file")
	flag.StringVar(&opts.fragmentFile, "import-fragments", "", "Import chapter fragments from an xlsx/csv file")
	flag.StringVar(&opts.sentenceFile, "import-sentences", "", "Import chapter sentences from an xlsx/csv file")
	flag.StringVar(&opts.songFile, "import-song", "", "Import song vocabulary from an xlsx/csv file")
	flag.IntVar(&opts.chapter, "chapter", 0, "Chapter number for chapter imports")
	flag.Int64Var(&opts.bookID, "book", 0, "Book ID to register the chapter under")
	flag.StringVar(&opts.chapterTitle, "chapter-title", "", "Chapter title when registering a chapter")
	flag.StringVar(&opts.songTitle, "song-title", "", "Song title for -import-song")
	flag.StringVar(&opts.songArtist, "song-artist", "", "Song artist for -import-song")
	flag.StringVar(&opts.sheet, "sheet", "", "Sheet name for xlsx imports (default Sheet1)")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	store := database.NewStore()

	if opts.requested() {
		runImport(store, opts)
		return
	}

	memory := fsrs.NewMemoryModel(fsrs.DefaultConfig())
	assembler := session.NewAssembler(store, session.DefaultConfig())

	b, err := bot.New(store, assembler, memory)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	reminders := scheduler.New(b, b)
	b.SetReminderRunner(reminders)
	reminders.Start()
	defer reminders.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := b.Stop(shutdownCtx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
		close(done)
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	go func() {
		if err := b.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Bot error: %v", err)
		}
	}()

	<-done
	log.Println("Bot stopped successfully")
}

type importOptions struct {
	vocabFile    string
	fragmentFile string
	sentenceFile string
	songFile     string
	chapter      int
	bookID       int64
	chapterTitle string
	songTitle    string
	songArtist   string
	sheet        string
}

func (o importOptions) requested() bool {
	return o.vocabFile != "" || o.fragmentFile != "" || o.sentenceFile != "" || o.songFile != ""
}

// runImport executes the requested imports and prints a summary for each.
func runImport(store *database.Store, opts importOptions) {
	if (opts.vocabFile != "" || opts.fragmentFile != "" || opts.sentenceFile != "") && opts.chapter <= 0 {
		log.Fatal("Chapter imports require -chapter N")
	}
	if opts.songFile != "" && opts.songTitle == "" {
		log.Fatal("-import-song requires -song-title")
	}

	translator := ai.NewTranslator(os.Getenv("OPENAI_API_KEY"))
	im := importer.New(store.Vocab, store.Content, translator)

	if opts.vocabFile != "" {
		result, err := im.ImportVocab(importer.VocabConfig{
			FilePath:      opts.vocabFile,
			ChapterNumber: opts.chapter,
			BookID:        opts.bookID,
			ChapterTitle:  opts.chapterTitle,
			SheetName:     opts.sheet,
		})
		if err != nil {
			log.Fatalf("Vocabulary import failed: %v", err)
		}
		logResult("vocabulary", result)
	}

	if opts.sentenceFile != "" {
		result, err := im.ImportSentences(importer.SentenceConfig{
			FilePath:      opts.sentenceFile,
			ChapterNumber: opts.chapter,
			SheetName:     opts.sheet,
		})
		if err != nil {
			log.Fatalf("Sentence import failed: %v", err)
		}
		logResult("sentences", result)
	}

	if opts.fragmentFile != "" {
		result, err := im.ImportFragments(importer.FragmentConfig{
			FilePath:      opts.fragmentFile,
			ChapterNumber: opts.chapter,
			SheetName:     opts.sheet,
		})
		if err != nil {
			log.Fatalf("Fragment import failed: %v", err)
		}
		logResult("fragments", result)
	}

	if opts.songFile != "" {
		result, err := im.ImportSong(importer.SongConfig{
			FilePath:  opts.songFile,
			Title:     opts.songTitle,
			Artist:    opts.songArtist,
			SheetName: opts.sheet,
		})
		if err != nil {
			log.Fatalf("Song import failed: %v", err)
		}
		logResult("song vocabulary", result)
	}
}

func logResult(what string, r *importer.Result) {
	log.Printf("Imported %s: %d processed, %d created, %d skipped", what, r.TotalProcessed, r.Created, r.Skipped)
	if len(r.Errors) > 0 {
		log.Printf("Errors:\n%s", strings.Join(r.Errors, "\n"))
	}
}
