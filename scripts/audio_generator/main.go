// Command audio_generator pre-renders English audio for every sentence that
// has a model translation, writing MEDIA_DIR/{sentence_id}.mp3. The API
// serves these files before falling back to live synthesis.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tarjama/internal/app"
	"tarjama/internal/config"
	"tarjama/internal/database"
	"tarjama/internal/models"
	"tarjama/internal/speech"
	"tarjama/internal/store"
)

type options struct {
	configPath string
	workers    int
	pause      time.Duration
	force      bool
}

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:           "audio_generator",
		Short:         "Render model translations to MP3 files",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "optional YAML config file")
	cmd.Flags().IntVar(&opts.workers, "workers", 10, "concurrent synthesis requests")
	// 10 workers at 700ms each stays under the 1000 requests/minute quota.
	cmd.Flags().DurationVar(&opts.pause, "pause", 700*time.Millisecond, "delay between requests per worker")
	cmd.Flags().BoolVar(&opts.force, "force", false, "re-render sentences that already have audio")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type result struct {
	id   int64
	path string
	err  error
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if opts.workers < 1 {
		opts.workers = 1
	}

	db, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBConnectRetries, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	synth, err := speech.New(ctx, cfg.Speech, logger)
	if err != nil {
		return err
	}
	defer synth.Close()

	if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
		return fmt.Errorf("create media dir %s: %w", cfg.MediaDir, err)
	}

	sentences, err := store.NewPostgresStore(db).ListTranslatedSentences(ctx)
	if err != nil {
		return err
	}
	pending := pendingSentences(sentences, cfg.MediaDir, opts.force)
	if len(pending) == 0 {
		logger.Info("All sentences already have audio")
		return nil
	}
	logger.WithField("count", len(pending)).Info("Rendering sentence audio")

	start := time.Now()
	results := render(ctx, synth, cfg.MediaDir, pending, opts.workers, opts.pause)

	rendered, failed := tally(results, logger)

	logger.WithFields(logrus.Fields{
		"rendered": rendered,
		"failed":   failed,
		"skipped":  len(pending) - rendered - failed,
		"duration": time.Since(start).Round(time.Millisecond).String(),
	}).Info("Audio generation finished")

	if failed > 0 {
		return fmt.Errorf("%d of %d sentences failed", failed, len(pending))
	}
	return ctx.Err()
}

// tally drains results, logging each failure, and counts the outcomes.
// Sentences never handed to a worker appear in neither count.
func tally(results <-chan result, logger *logrus.Logger) (rendered, failed int) {
	for r := range results {
		entry := logger.WithField("sentence_id", r.id)
		if r.err != nil {
			failed++
			entry.WithError(r.err).Error("Audio rendering failed")
			continue
		}
		rendered++
		entry.WithField("path", r.path).Debug("Audio rendered")
	}
	return rendered, failed
}

// pendingSentences drops sentences whose audio file already exists unless
// force is set.
func pendingSentences(sentences []models.Sentence, mediaDir string, force bool) []models.Sentence {
	if force {
		return sentences
	}

	pending := make([]models.Sentence, 0, len(sentences))
	for _, s := range sentences {
		if _, err := os.Stat(speech.AudioPath(mediaDir, s.ID)); errors.Is(err, os.ErrNotExist) {
			pending = append(pending, s)
		}
	}
	return pending
}

type audioSaver interface {
	SaveAudio(ctx context.Context, mediaDir string, sentenceID int64, text string) (string, error)
}

// render fans sentences out to a fixed pool of workers. The returned channel
// is closed once every worker has exited.
func render(ctx context.Context, saver audioSaver, mediaDir string, sentences []models.Sentence, workers int, pause time.Duration) <-chan result {
	jobs := make(chan models.Sentence)
	results := make(chan result, len(sentences))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				path, err := saver.SaveAudio(ctx, mediaDir, s.ID, s.Reference())
				results <- result{id: s.ID, path: path, err: err}

				select {
				case <-ctx.Done():
				case <-time.After(pause):
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, s := range sentences {
			if ctx.Err() != nil {
				return
			}
			select {
			case jobs <- s:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
