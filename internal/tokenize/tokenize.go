// Package tokenize splits script text into sentences with the Punkt
// algorithm and the pretrained English model bundled with
// github.com/neurosnap/sentences.
package tokenize

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	sentencesdata "github.com/neurosnap/sentences/data"
)

// punktModel is the bindata key of the bundled English training set.
const punktModel = "data/english.json"

type Splitter struct {
	punkt *sentences.DefaultSentenceTokenizer
}

// New loads the Punkt model. It is meant to be called once at startup.
func New() (*Splitter, error) {
	training, err := sentencesdata.Asset(punktModel)
	if err != nil {
		return nil, fmt.Errorf("load punkt model: %w", err)
	}

	storage, err := sentences.LoadTraining(training)
	if err != nil {
		return nil, fmt.Errorf("parse punkt model: %w", err)
	}

	punkt := sentences.NewSentenceTokenizer(storage)
	punkt.Annotations = append(punkt.Annotations, &letterRunAnnotation{parser: punkt.WordTokenizer})

	return &Splitter{punkt: punkt}, nil
}

// Split returns the sentences of text in order, trimmed of surrounding
// whitespace. Blank sentences are dropped.
func (s *Splitter) Split(text string) []string {
	out := []string{}
	for _, sent := range s.punkt.Tokenize(text) {
		t := strings.TrimSpace(sent.Text)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// letterRunAnnotation breaks a run of single-letter tokens ("A. B. C.")
// into one sentence per letter when the run closes a sentence. Punkt
// otherwise reads the run as initials. Runs followed by a word, as in
// "J. K. Rowling", are left alone.
type letterRunAnnotation struct {
	parser sentences.TokenExistential
}

func (a *letterRunAnnotation) Annotate(tokens []*sentences.Token) []*sentences.Token {
	for i := len(tokens) - 2; i >= 0; i-- {
		cur, next := tokens[i], tokens[i+1]
		if !a.parser.IsInitial(cur) || !a.parser.IsInitial(next) {
			continue
		}

		last := i+1 == len(tokens)-1
		if last || next.SentBreak {
			cur.SentBreak = true
			cur.Abbr = false
		}
	}
	return tokens
}
