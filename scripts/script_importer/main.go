// Command script_importer loads a directory of Arabic text files as practice
// scripts. Each *.txt file becomes one script titled after the file name, and
// goes through the same split and translate pipeline as the API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tarjama/internal/app"
	"tarjama/internal/config"
	"tarjama/internal/models"
	"tarjama/internal/service"
)

type options struct {
	configPath   string
	dir          string
	skipExisting bool
}

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:           "script_importer",
		Short:         "Import a directory of Arabic .txt files as scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "optional YAML config file")
	cmd.Flags().StringVar(&opts.dir, "dir", "scripts/texts", "directory with .txt files")
	cmd.Flags().BoolVar(&opts.skipExisting, "skip-existing", true, "skip files whose title already exists")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg.LogLevel, cfg.LogFormat)

	files, err := findScriptFiles(opts.dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.WithField("dir", opts.dir).Warn("No .txt files found")
		return nil
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return importAll(ctx, a.Service, files, opts.skipExisting, logger)
}

type scriptFile struct {
	Path  string
	Title string
	Num   int
	Stem  string
}

var numberedName = regexp.MustCompile(`^(.*?)(\d+)$`)

// findScriptFiles lists *.txt files in dir ordered so that "lesson_2" sorts
// before "lesson_10".
func findScriptFiles(dir string) ([]scriptFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var files []scriptFile
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}

		title := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		f := scriptFile{Path: filepath.Join(dir, e.Name()), Title: title, Num: -1, Stem: title}
		if m := numberedName.FindStringSubmatch(title); m != nil {
			f.Stem = m[1]
			f.Num, _ = strconv.Atoi(m[2])
		}
		files = append(files, f)
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Stem != files[j].Stem {
			return files[i].Stem < files[j].Stem
		}
		return files[i].Num < files[j].Num
	})

	return files, nil
}

type scriptCreator interface {
	ListScripts(ctx context.Context) ([]models.ScriptSummary, error)
	CreateScript(ctx context.Context, r service.CreateScriptRequest) (service.CreateScriptResult, error)
}

func importAll(ctx context.Context, svc scriptCreator, files []scriptFile, skipExisting bool, logger *logrus.Logger) error {
	start := time.Now()

	existing := map[string]bool{}
	if skipExisting {
		scripts, err := svc.ListScripts(ctx)
		if err != nil {
			return err
		}
		for _, sc := range scripts {
			existing[sc.Title] = true
		}
	}

	var imported, sentences int
	for _, f := range files {
		entry := logger.WithFields(logrus.Fields{"file": filepath.Base(f.Path), "title": f.Title})
		if existing[f.Title] {
			entry.Info("Script already exists, skipping")
			continue
		}

		content, err := os.ReadFile(f.Path)
		if err != nil {
			return fmt.Errorf("read %s: %w", f.Path, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			entry.Warn("Empty file, skipping")
			continue
		}

		res, err := svc.CreateScript(ctx, service.CreateScriptRequest{Title: f.Title, Content: string(content)})
		if err != nil {
			return fmt.Errorf("import %s: %w", f.Path, err)
		}
		imported++
		sentences += res.SentencesCount
		entry.WithFields(logrus.Fields{
			"script_id": res.ScriptID,
			"sentences": res.SentencesCount,
		}).Info("Script imported")
	}

	logger.WithFields(logrus.Fields{
		"scripts":   imported,
		"sentences": sentences,
		"duration":  time.Since(start).Round(time.Millisecond).String(),
	}).Info("Import finished")

	return nil
}
