package service

import (
	"context"
	"errors"
	"io"
	"maps"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"tarjama/internal/feedback"
	"tarjama/internal/models"
	"tarjama/internal/store"
)

// memStore is an in-memory DataStore with cascading deletes and
// snapshot-based transactions.
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	scripts   map[int64]models.Script
	sentences map[int64]models.Sentence
	sessions  map[int64]models.PracticeSession

	insertSentencesErr error
	deleteScriptErr    error
}

func newMemStore() *memStore {
	return &memStore{
		scripts:   map[int64]models.Script{},
		sentences: map[int64]models.Sentence{},
		sessions:  map[int64]models.PracticeSession{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) CreateScript(ctx context.Context, title string) (models.Script, error) {
	sc := models.Script{ID: m.id(), Title: title, CreatedAt: time.Now()}
	m.scripts[sc.ID] = sc
	return sc, nil
}

func (m *memStore) GetScript(ctx context.Context, id int64) (models.Script, error) {
	sc, ok := m.scripts[id]
	if !ok {
		return models.Script{}, store.ErrNotFound
	}
	return sc, nil
}

func (m *memStore) ListScripts(ctx context.Context) ([]models.ScriptSummary, error) {
	out := []models.ScriptSummary{}
	for _, id := range slices.Sorted(maps.Keys(m.scripts)) {
		sc := m.scripts[id]
		n := 0
		for _, se := range m.sentences {
			if se.ScriptID == id {
				n++
			}
		}
		out = append(out, models.ScriptSummary{ID: sc.ID, Title: sc.Title, CreatedAt: sc.CreatedAt, SentencesCount: n})
	}
	return out, nil
}

func (m *memStore) UpdateScriptTitle(ctx context.Context, id int64, title string) error {
	sc, ok := m.scripts[id]
	if !ok {
		return store.ErrNotFound
	}
	sc.Title = title
	m.scripts[id] = sc
	return nil
}

func (m *memStore) DeleteScript(ctx context.Context, id int64) error {
	if m.deleteScriptErr != nil {
		return m.deleteScriptErr
	}
	if _, ok := m.scripts[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.scripts, id)
	_, _ = m.DeleteSentences(ctx, id)
	return nil
}

func (m *memStore) InsertSentences(ctx context.Context, scriptID int64, batch []models.NewSentence) error {
	if m.insertSentencesErr != nil {
		return m.insertSentencesErr
	}
	for _, ns := range batch {
		se := models.Sentence{
			ID:               m.id(),
			ScriptID:         scriptID,
			OriginalText:     ns.OriginalText,
			OrderIndex:       ns.OrderIndex,
			Difficulty:       ns.Difficulty,
			ModelTranslation: ns.ModelTranslation,
		}
		m.sentences[se.ID] = se
	}
	return nil
}

func (m *memStore) DeleteSentences(ctx context.Context, scriptID int64) (int64, error) {
	var n int64
	for id, se := range m.sentences {
		if se.ScriptID != scriptID {
			continue
		}
		delete(m.sentences, id)
		for sid, ps := range m.sessions {
			if ps.SentenceID == id {
				delete(m.sessions, sid)
			}
		}
		n++
	}
	return n, nil
}

func (m *memStore) ListSentences(ctx context.Context, r store.ListSentencesRequest) ([]models.Sentence, error) {
	out := []models.Sentence{}
	for _, se := range m.sentences {
		if se.ScriptID == r.ScriptID {
			out = append(out, se)
		}
	}
	slices.SortFunc(out, func(a, b models.Sentence) int { return a.OrderIndex - b.OrderIndex })
	if r.Random {
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out, nil
}

func (m *memStore) GetSentence(ctx context.Context, id int64) (models.Sentence, error) {
	se, ok := m.sentences[id]
	if !ok {
		return models.Sentence{}, store.ErrNotFound
	}
	return se, nil
}

func (m *memStore) SetModelTranslation(ctx context.Context, id int64, text string) error {
	se, ok := m.sentences[id]
	if !ok {
		return store.ErrNotFound
	}
	se.ModelTranslation = &text
	m.sentences[id] = se
	return nil
}

func (m *memStore) SearchSentences(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	out := []models.SearchResult{}
	for _, id := range slices.Sorted(maps.Keys(m.sentences)) {
		se := m.sentences[id]
		if !strings.Contains(se.OriginalText, query) {
			continue
		}
		out = append(out, models.SearchResult{
			ID: se.ID, OriginalText: se.OriginalText, ScriptTitle: m.scripts[se.ScriptID].Title, OrderIndex: se.OrderIndex,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) CreateSession(ctx context.Context, r store.CreateSessionRequest) (models.PracticeSession, error) {
	ps := models.PracticeSession{
		ID:               m.id(),
		SentenceID:       r.SentenceID,
		UserTranslation:  r.UserTranslation,
		TranslationScore: r.TranslationScore,
		PracticeDate:     time.Now(),
	}
	m.sessions[ps.ID] = ps
	return ps, nil
}

func (m *memStore) GetSession(ctx context.Context, id int64) (models.PracticeSession, error) {
	ps, ok := m.sessions[id]
	if !ok {
		return models.PracticeSession{}, store.ErrNotFound
	}
	return ps, nil
}

func (m *memStore) UpdatePronunciation(ctx context.Context, r store.UpdatePronunciationRequest) error {
	ps, ok := m.sessions[r.SessionID]
	if !ok {
		return store.ErrNotFound
	}
	text, score := r.PronunciationText, r.PronunciationScore
	ps.PronunciationText = &text
	ps.PronunciationScore = &score
	m.sessions[r.SessionID] = ps
	return nil
}

func (m *memStore) Stats(ctx context.Context) (models.Stats, error) {
	st := models.Stats{
		TotalScripts:          int64(len(m.scripts)),
		TotalSentences:        int64(len(m.sentences)),
		TotalPracticeSessions: int64(len(m.sessions)),
	}
	var pronounced int
	for _, ps := range m.sessions {
		st.AvgTranslationScore += ps.TranslationScore
		if ps.PronunciationScore != nil {
			st.AvgPronunciationScore += *ps.PronunciationScore
			pronounced++
		}
	}
	if len(m.sessions) > 0 {
		st.AvgTranslationScore /= float64(len(m.sessions))
	}
	if pronounced > 0 {
		st.AvgPronunciationScore /= float64(pronounced)
	}
	return st, nil
}

func (m *memStore) RecentSessions(ctx context.Context, limit int) ([]models.RecentSession, error) {
	ids := slices.Sorted(maps.Keys(m.sessions))
	slices.Reverse(ids)

	out := []models.RecentSession{}
	for _, id := range ids {
		ps := m.sessions[id]
		out = append(out, models.RecentSession{
			ID:                 ps.ID,
			SentenceText:       m.sentences[ps.SentenceID].OriginalText,
			UserTranslation:    ps.UserTranslation,
			TranslationScore:   ps.TranslationScore,
			PronunciationScore: ps.PronunciationScore,
			PracticeDate:       ps.PracticeDate,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) Ping(ctx context.Context) error { return nil }

func (m *memStore) WithinTx(ctx context.Context, fn func(tx store.DataStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	scripts, sentences, sessions := maps.Clone(m.scripts), maps.Clone(m.sentences), maps.Clone(m.sessions)
	if err := fn(m); err != nil {
		m.scripts, m.sentences, m.sessions = scripts, sentences, sessions
		return err
	}
	return nil
}

// periodSplitter splits after every period.
type periodSplitter struct{}

func (periodSplitter) Split(text string) []string {
	out := []string{}
	for _, part := range strings.SplitAfter(text, ".") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type fakeTranslator struct {
	calls int
	err   error
}

func (f *fakeTranslator) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = "en:" + t
	}
	return out, nil
}

type fakeAdvisor struct {
	calls     int
	reference string
	candidate string
	result    feedback.Result
}

func (f *fakeAdvisor) Feedback(ctx context.Context, reference, candidate string) feedback.Result {
	f.calls++
	f.reference, f.candidate = reference, candidate
	return f.result
}

type fakeSpeech struct {
	calls int
	text  string
}

func (f *fakeSpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.calls++
	f.text = text
	if text == "" {
		return nil, errors.New("empty text")
	}
	return []byte("mp3:" + text), nil
}

type fixture struct {
	svc        *PracticeService
	store      *memStore
	translator *fakeTranslator
	advisor    *fakeAdvisor
	speech     *fakeSpeech
}

func newFixture(mediaDir string) *fixture {
	return newFixtureWithSplitter(mediaDir, periodSplitter{})
}

func newFixtureWithSplitter(mediaDir string, splitter Splitter) *fixture {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		store:      newMemStore(),
		translator: &fakeTranslator{},
		advisor:    &fakeAdvisor{result: feedback.Success("Check your verb tense.")},
		speech:     &fakeSpeech{},
	}
	f.svc = NewPracticeService(Deps{
		Store:      f.store,
		Splitter:   splitter,
		Translator: f.translator,
		Advisor:    f.advisor,
		Speech:     f.speech,
		Logger:     logger,
	}, Config{MediaDir: mediaDir})
	return f
}

func withScore(ps models.PracticeSession, score float64) models.PracticeSession {
	ps.TranslationScore = score
	return ps
}

func strconvID(id int64) string {
	return strconv.FormatInt(id, 10)
}
