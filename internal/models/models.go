package models

import "time"

// Script is a block of Arabic text submitted for practice.
type Script struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// ScriptSummary is a script row in the listing, with its sentence count.
type ScriptSummary struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	SentencesCount int       `json:"sentences_count"`
}

// ScriptDetail is a script with its sentences joined back into text.
type ScriptDetail struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Sentence is one tokenized sentence of a script.
type Sentence struct {
	ID               int64   `json:"id"`
	ScriptID         int64   `json:"-"`
	OriginalText     string  `json:"original_text"`
	OrderIndex       int     `json:"order_index"`
	Difficulty       string  `json:"difficulty"`
	ModelTranslation *string `json:"model_translation"`
}

// Reference is the text attempts are scored against: the model translation
// when there is one, otherwise the original sentence.
func (s Sentence) Reference() string {
	if s.ModelTranslation != nil && *s.ModelTranslation != "" {
		return *s.ModelTranslation
	}
	return s.OriginalText
}

// HasModelTranslation reports whether a non-empty reference translation exists.
func (s Sentence) HasModelTranslation() bool {
	return s.ModelTranslation != nil && *s.ModelTranslation != ""
}

const DefaultDifficulty = "medium"

// NewSentence is a sentence about to be inserted.
type NewSentence struct {
	OriginalText     string
	OrderIndex       int
	Difficulty       string
	ModelTranslation *string
}

// PracticeSession records one translation attempt and, later, the
// pronunciation attempt made against it.
type PracticeSession struct {
	ID                 int64     `json:"id"`
	SentenceID         int64     `json:"sentence_id"`
	UserTranslation    string    `json:"user_translation"`
	TranslationScore   float64   `json:"translation_score"`
	PronunciationText  *string   `json:"pronunciation_text"`
	PronunciationScore *float64  `json:"pronunciation_score"`
	PracticeDate       time.Time `json:"practice_date"`
}

// RecentSession is a practice session joined with its sentence text.
type RecentSession struct {
	ID                 int64     `json:"id"`
	SentenceText       string    `json:"sentence_text"`
	UserTranslation    string    `json:"user_translation"`
	TranslationScore   float64   `json:"translation_score"`
	PronunciationScore *float64  `json:"pronunciation_score"`
	PracticeDate       time.Time `json:"practice_date"`
}

// Stats are the raw aggregates behind the progress report.
type Stats struct {
	TotalScripts          int64
	TotalSentences        int64
	TotalPracticeSessions int64
	AvgTranslationScore   float64
	AvgPronunciationScore float64
}

// SearchResult is a sentence matched by substring search.
type SearchResult struct {
	ID           int64  `json:"id"`
	OriginalText string `json:"original_text"`
	ScriptTitle  string `json:"script_title"`
	OrderIndex   int    `json:"order_index"`
}
