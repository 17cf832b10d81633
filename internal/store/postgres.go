package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tarjama/internal/models"
)

type dbtx interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// PostgresStore implements DataStore on PostgreSQL through database/sql.
type PostgresStore struct {
	db dbtx
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateScript(ctx context.Context, title string) (models.Script, error) {
	sc := models.Script{Title: title}
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO scripts (title) VALUES ($1) RETURNING id, created_at", title,
	).Scan(&sc.ID, &sc.CreatedAt)
	if err != nil {
		return models.Script{}, fmt.Errorf("insert script: %w", err)
	}

	return sc, nil
}

func (s *PostgresStore) GetScript(ctx context.Context, id int64) (models.Script, error) {
	var sc models.Script
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, created_at FROM scripts WHERE id = $1", id,
	).Scan(&sc.ID, &sc.Title, &sc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Script{}, ErrNotFound
		}
		return models.Script{}, fmt.Errorf("get script: %w", err)
	}

	return sc, nil
}

func (s *PostgresStore) ListScripts(ctx context.Context) ([]models.ScriptSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sc.id, sc.title, sc.created_at, COUNT(se.id)
		FROM scripts sc
		LEFT JOIN sentences se ON se.script_id = sc.id
		GROUP BY sc.id
		ORDER BY sc.id`)
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	defer rows.Close()

	scripts := []models.ScriptSummary{}
	for rows.Next() {
		var sc models.ScriptSummary
		if err := rows.Scan(&sc.ID, &sc.Title, &sc.CreatedAt, &sc.SentencesCount); err != nil {
			return nil, fmt.Errorf("scan script: %w", err)
		}
		scripts = append(scripts, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scripts: %w", err)
	}

	return scripts, nil
}

func (s *PostgresStore) UpdateScriptTitle(ctx context.Context, id int64, title string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE scripts SET title = $1 WHERE id = $2", title, id)
	if err != nil {
		return fmt.Errorf("update script title: %w", err)
	}

	return requireAffected(res)
}

// DeleteScript removes the script; sentences and sessions go with it through
// the ON DELETE CASCADE foreign keys.
func (s *PostgresStore) DeleteScript(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM scripts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete script: %w", err)
	}

	return requireAffected(res)
}

func (s *PostgresStore) InsertSentences(ctx context.Context, scriptID int64, sentences []models.NewSentence) error {
	for _, se := range sentences {
		difficulty := se.Difficulty
		if difficulty == "" {
			difficulty = models.DefaultDifficulty
		}

		_, err := s.db.ExecContext(ctx,
			`INSERT INTO sentences (script_id, original_text, order_index, difficulty, model_translation)
			 VALUES ($1, $2, $3, $4, $5)`,
			scriptID, se.OriginalText, se.OrderIndex, difficulty, nullString(se.ModelTranslation))
		if err != nil {
			return fmt.Errorf("insert sentence %d: %w", se.OrderIndex, err)
		}
	}

	return nil
}

func (s *PostgresStore) DeleteSentences(ctx context.Context, scriptID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sentences WHERE script_id = $1", scriptID)
	if err != nil {
		return 0, fmt.Errorf("delete sentences: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListSentences(ctx context.Context, r ListSentencesRequest) ([]models.Sentence, error) {
	order := "order_index, id"
	if r.Random {
		order = "random()"
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, script_id, original_text, order_index, difficulty, model_translation
		 FROM sentences WHERE script_id = $1 ORDER BY `+order, r.ScriptID)
	if err != nil {
		return nil, fmt.Errorf("list sentences: %w", err)
	}
	defer rows.Close()

	sentences := []models.Sentence{}
	for rows.Next() {
		se, err := scanSentence(rows)
		if err != nil {
			return nil, err
		}
		sentences = append(sentences, se)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sentences: %w", err)
	}

	return sentences, nil
}

// ListTranslatedSentences returns every sentence that carries a non-empty
// model translation, ordered by id. It backs the offline audio renderer.
func (s *PostgresStore) ListTranslatedSentences(ctx context.Context) ([]models.Sentence, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, script_id, original_text, order_index, difficulty, model_translation
		 FROM sentences
		 WHERE model_translation IS NOT NULL AND model_translation <> ''
		 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list translated sentences: %w", err)
	}
	defer rows.Close()

	sentences := []models.Sentence{}
	for rows.Next() {
		se, err := scanSentence(rows)
		if err != nil {
			return nil, err
		}
		sentences = append(sentences, se)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sentences: %w", err)
	}

	return sentences, nil
}

func (s *PostgresStore) GetSentence(ctx context.Context, id int64) (models.Sentence, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, script_id, original_text, order_index, difficulty, model_translation
		 FROM sentences WHERE id = $1`, id)

	se, err := scanSentence(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Sentence{}, ErrNotFound
		}
		return models.Sentence{}, err
	}
	return se, nil
}

func (s *PostgresStore) SetModelTranslation(ctx context.Context, id int64, text string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE sentences SET model_translation = $1 WHERE id = $2", text, id)
	if err != nil {
		return fmt.Errorf("set model translation: %w", err)
	}

	return requireAffected(res)
}

// SearchSentences is a case-sensitive substring match. strpos keeps % and _
// literal.
func (s *PostgresStore) SearchSentences(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT se.id, se.original_text, sc.title, se.order_index
		FROM sentences se
		JOIN scripts sc ON sc.id = se.script_id
		WHERE strpos(se.original_text, $1) > 0
		ORDER BY se.id
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search sentences: %w", err)
	}
	defer rows.Close()

	results := []models.SearchResult{}
	for rows.Next() {
		var r models.SearchResult
		if err := rows.Scan(&r.ID, &r.OriginalText, &r.ScriptTitle, &r.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}

	return results, nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, r CreateSessionRequest) (models.PracticeSession, error) {
	ps := models.PracticeSession{
		SentenceID:       r.SentenceID,
		UserTranslation:  r.UserTranslation,
		TranslationScore: r.TranslationScore,
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO practice_sessions (sentence_id, user_translation, translation_score)
		 VALUES ($1, $2, $3) RETURNING id, practice_date`,
		r.SentenceID, r.UserTranslation, r.TranslationScore,
	).Scan(&ps.ID, &ps.PracticeDate)
	if err != nil {
		return models.PracticeSession{}, fmt.Errorf("insert practice session: %w", err)
	}

	return ps, nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id int64) (models.PracticeSession, error) {
	var (
		ps    models.PracticeSession
		text  sql.NullString
		score sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, sentence_id, user_translation, translation_score,
		        pronunciation_text, pronunciation_score, practice_date
		 FROM practice_sessions WHERE id = $1`, id,
	).Scan(&ps.ID, &ps.SentenceID, &ps.UserTranslation, &ps.TranslationScore, &text, &score, &ps.PracticeDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PracticeSession{}, ErrNotFound
		}
		return models.PracticeSession{}, fmt.Errorf("get practice session: %w", err)
	}

	ps.PronunciationText = stringPtr(text)
	ps.PronunciationScore = floatPtr(score)
	return ps, nil
}

func (s *PostgresStore) UpdatePronunciation(ctx context.Context, r UpdatePronunciationRequest) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE practice_sessions SET pronunciation_text = $1, pronunciation_score = $2 WHERE id = $3",
		r.PronunciationText, r.PronunciationScore, r.SessionID)
	if err != nil {
		return fmt.Errorf("update pronunciation: %w", err)
	}

	return requireAffected(res)
}

// Stats averages ignore NULL scores and fall back to 0 on an empty table.
func (s *PostgresStore) Stats(ctx context.Context) (models.Stats, error) {
	var st models.Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM scripts),
			(SELECT COUNT(*) FROM sentences),
			(SELECT COUNT(*) FROM practice_sessions),
			(SELECT COALESCE(AVG(translation_score), 0) FROM practice_sessions),
			(SELECT COALESCE(AVG(pronunciation_score), 0) FROM practice_sessions)`,
	).Scan(&st.TotalScripts, &st.TotalSentences, &st.TotalPracticeSessions,
		&st.AvgTranslationScore, &st.AvgPronunciationScore)
	if err != nil {
		return models.Stats{}, fmt.Errorf("query stats: %w", err)
	}

	return st, nil
}

func (s *PostgresStore) RecentSessions(ctx context.Context, limit int) ([]models.RecentSession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ps.id, se.original_text, ps.user_translation, ps.translation_score,
		       ps.pronunciation_score, ps.practice_date
		FROM practice_sessions ps
		JOIN sentences se ON se.id = ps.sentence_id
		ORDER BY ps.practice_date DESC, ps.id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.RecentSession{}
	for rows.Next() {
		var (
			rs    models.RecentSession
			score sql.NullFloat64
		)
		if err := rows.Scan(&rs.ID, &rs.SentenceText, &rs.UserTranslation, &rs.TranslationScore, &score, &rs.PracticeDate); err != nil {
			return nil, fmt.Errorf("scan recent session: %w", err)
		}
		rs.PronunciationScore = floatPtr(score)
		sessions = append(sessions, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent sessions: %w", err)
	}

	return sessions, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	db, ok := s.db.(*sql.DB)
	if !ok {
		return nil
	}
	return db.PingContext(ctx)
}

// WithinTx runs fn against a store bound to a single transaction. Any error
// from fn rolls the transaction back.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx DataStore) error) error {
	db, ok := s.db.(*sql.DB)
	if !ok {
		return errors.New("already in transaction")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	sx := &PostgresStore{db: tx}
	if err = fn(sx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback: %v after: %w", rbErr, err)
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSentence(row rowScanner) (models.Sentence, error) {
	var (
		se models.Sentence
		mt sql.NullString
	)
	if err := row.Scan(&se.ID, &se.ScriptID, &se.OriginalText, &se.OrderIndex, &se.Difficulty, &mt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Sentence{}, err
		}
		return models.Sentence{}, fmt.Errorf("scan sentence: %w", err)
	}
	se.ModelTranslation = stringPtr(mt)
	return se, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Float64
}
