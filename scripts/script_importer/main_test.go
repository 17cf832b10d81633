package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarjama/internal/models"
	"tarjama/internal/service"
)

type fakeCreator struct {
	existing []models.ScriptSummary
	created  []service.CreateScriptRequest
}

func (f *fakeCreator) ListScripts(context.Context) ([]models.ScriptSummary, error) {
	return f.existing, nil
}

func (f *fakeCreator) CreateScript(_ context.Context, r service.CreateScriptRequest) (service.CreateScriptResult, error) {
	f.created = append(f.created, r)
	return service.CreateScriptResult{ScriptID: int64(len(f.created)), SentencesCount: 1}, nil
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestFindScriptFiles_NaturalOrder(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"lesson_10.txt": "x",
		"lesson_2.txt":  "x",
		"intro.TXT":     "x",
		"notes.md":      "x",
	})

	files, err := findScriptFiles(dir)
	require.NoError(t, err)

	var titles []string
	for _, f := range files {
		titles = append(titles, f.Title)
	}
	assert.Equal(t, []string{"intro", "lesson_2", "lesson_10"}, titles)
}

func TestImportAll(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.txt":     "مرحبا. كيف حالك؟",
		"b.txt":     "   ",
		"known.txt": "قديم.",
	})
	files, err := findScriptFiles(dir)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := &fakeCreator{existing: []models.ScriptSummary{{ID: 7, Title: "known"}}}
	require.NoError(t, importAll(context.Background(), svc, files, true, logger))

	require.Len(t, svc.created, 1)
	assert.Equal(t, "a", svc.created[0].Title)
	assert.Equal(t, "مرحبا. كيف حالك؟", svc.created[0].Content)
}
