package store_test

import (
	"context"
	"database/sql"
	"io"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarjama/internal/database"
	"tarjama/internal/models"
	"tarjama/internal/store"
)

// testDSN skips the test unless TARJAMA_TEST_DATABASE_URL points at a
// disposable PostgreSQL database.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TARJAMA_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TARJAMA_TEST_DATABASE_URL not set, skipping PostgreSQL integration tests")
	}
	return dsn
}

func newTestStore(t *testing.T) (*store.PostgresStore, *sql.DB) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := database.Connect(context.Background(), testDSN(t), 1, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.MigrateDown(context.Background(), db, logger))
	require.NoError(t, database.MigrateUp(context.Background(), db, logger))

	return store.NewPostgresStore(db), db
}

func ptr[T any](v T) *T { return &v }

func seedScript(t *testing.T, s *store.PostgresStore, title string, texts ...string) models.Script {
	t.Helper()
	ctx := context.Background()

	sc, err := s.CreateScript(ctx, title)
	require.NoError(t, err)

	batch := make([]models.NewSentence, len(texts))
	for i, text := range texts {
		batch[i] = models.NewSentence{OriginalText: text, OrderIndex: i, ModelTranslation: ptr("en " + text)}
	}
	require.NoError(t, s.InsertSentences(ctx, sc.ID, batch))
	return sc
}

func TestPostgres_ScriptLifecycle(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sc := seedScript(t, s, "Lesson 1", "أ.", "ب.", "ج.")

	got, err := s.GetScript(ctx, sc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lesson 1", got.Title)

	list, err := s.ListScripts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].SentencesCount)

	sentences, err := s.ListSentences(ctx, store.ListSentencesRequest{ScriptID: sc.ID})
	require.NoError(t, err)
	require.Len(t, sentences, 3)
	for i, se := range sentences {
		assert.Equal(t, i, se.OrderIndex)
		assert.Equal(t, models.DefaultDifficulty, se.Difficulty)
	}

	random, err := s.ListSentences(ctx, store.ListSentencesRequest{ScriptID: sc.ID, Random: true})
	require.NoError(t, err)
	assert.Len(t, random, 3)

	require.NoError(t, s.UpdateScriptTitle(ctx, sc.ID, "Renamed"))
	got, err = s.GetScript(ctx, sc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	assert.ErrorIs(t, s.UpdateScriptTitle(ctx, sc.ID+1000, "x"), store.ErrNotFound)
	_, err = s.GetScript(ctx, sc.ID+1000)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgres_DeleteCascades(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	sc := seedScript(t, s, "Cascade", "واحد.", "اثنان.")
	sentences, err := s.ListSentences(ctx, store.ListSentencesRequest{ScriptID: sc.ID})
	require.NoError(t, err)

	_, err = s.CreateSession(ctx, store.CreateSessionRequest{
		SentenceID: sentences[0].ID, UserTranslation: "one", TranslationScore: 0.5,
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteScript(ctx, sc.ID))

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sentences").Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM practice_sessions").Scan(&n))
	assert.Zero(t, n)

	assert.ErrorIs(t, s.DeleteScript(ctx, sc.ID), store.ErrNotFound)
}

func TestPostgres_WithinTxRollsBack(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sc := seedScript(t, s, "Tx", "أ.", "ب.")

	errBoom := assert.AnError
	err := s.WithinTx(ctx, func(tx store.DataStore) error {
		n, err := tx.DeleteSentences(ctx, sc.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	sentences, err := s.ListSentences(ctx, store.ListSentencesRequest{ScriptID: sc.ID})
	require.NoError(t, err)
	assert.Len(t, sentences, 2)
}

func TestPostgres_SessionsAndStats(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sc := seedScript(t, s, "Stats", "أ.")
	sentences, err := s.ListSentences(ctx, store.ListSentencesRequest{ScriptID: sc.ID})
	require.NoError(t, err)
	sentenceID := sentences[0].ID

	first, err := s.CreateSession(ctx, store.CreateSessionRequest{SentenceID: sentenceID, UserTranslation: "a", TranslationScore: 0.4})
	require.NoError(t, err)
	_, err = s.CreateSession(ctx, store.CreateSessionRequest{SentenceID: sentenceID, UserTranslation: "b", TranslationScore: 0.8})
	require.NoError(t, err)

	require.NoError(t, s.UpdatePronunciation(ctx, store.UpdatePronunciationRequest{
		SessionID: first.ID, PronunciationText: "a", PronunciationScore: 1,
	}))

	got, err := s.GetSession(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PronunciationText)
	assert.Equal(t, "a", *got.PronunciationText)
	require.NotNil(t, got.PronunciationScore)
	assert.Equal(t, 1.0, *got.PronunciationScore)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, st.TotalScripts)
	assert.EqualValues(t, 1, st.TotalSentences)
	assert.EqualValues(t, 2, st.TotalPracticeSessions)
	assert.InDelta(t, 0.6, st.AvgTranslationScore, 1e-9)
	assert.InDelta(t, 1.0, st.AvgPronunciationScore, 1e-9)

	recent, err := s.RecentSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "أ.", recent[0].SentenceText)

	_, err = s.GetSession(ctx, first.ID+1000)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgres_SearchIsLiteralSubstring(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	seedScript(t, s, "Search", "ذهبت إلى السوق.", "100% صحيح.", "كتاب.")

	res, err := s.SearchSentences(ctx, "السوق", 20)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Search", res[0].ScriptTitle)

	res, err = s.SearchSentences(ctx, "%", 20)
	require.NoError(t, err)
	assert.Len(t, res, 1)

	res, err = s.SearchSentences(ctx, ".", 2)
	require.NoError(t, err)
	assert.Len(t, res, 2)
}

func TestPostgres_SetModelTranslation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sc := seedScript(t, s, "MT", "أ.")
	sentences, err := s.ListSentences(ctx, store.ListSentencesRequest{ScriptID: sc.ID})
	require.NoError(t, err)

	require.NoError(t, s.SetModelTranslation(ctx, sentences[0].ID, "A."))
	got, err := s.GetSentence(ctx, sentences[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got.ModelTranslation)
	assert.Equal(t, "A.", *got.ModelTranslation)

	assert.ErrorIs(t, s.SetModelTranslation(ctx, sentences[0].ID+1000, "x"), store.ErrNotFound)
}

func TestPostgres_ListTranslatedSentences(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sc, err := s.CreateScript(ctx, "Mixed")
	require.NoError(t, err)
	require.NoError(t, s.InsertSentences(ctx, sc.ID, []models.NewSentence{
		{OriginalText: "أ.", OrderIndex: 0, ModelTranslation: ptr("A.")},
		{OriginalText: "ب.", OrderIndex: 1},
		{OriginalText: "ت.", OrderIndex: 2, ModelTranslation: ptr("")},
	}))

	got, err := s.ListTranslatedSentences(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "أ.", got[0].OriginalText)
	assert.Equal(t, "A.", got[0].Reference())
}

func TestPostgres_ListScriptsByID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first := seedScript(t, s, "First", "أ.")
	second := seedScript(t, s, "Second", "ب.", "ت.")

	list, err := s.ListScripts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	assert.Equal(t, 2, list[1].SentencesCount)
}
