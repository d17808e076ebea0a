// Copyright 2017 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2017 Charles University, Faculty of Arts,
//                Institute of the Czech National Corpus
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package predictor implements the facade (C8, spec §4.8) that
// orchestrates the character n-gram scorer, the character-type
// scorer and, optionally, the tag scorer, turning a built model into
// word-boundary and tag predictions over a sentence.Sentence.
package predictor

import (
	"unicode/utf8"

	"github.com/kobun-nlp/vaporetto/model"
	"github.com/kobun-nlp/vaporetto/scorer"
	"github.com/kobun-nlp/vaporetto/sentence"
	"github.com/kobun-nlp/vaporetto/tagger"
)

// Predictor is an immutable, built model ready to score sentences. A
// Predictor holds no mutable state after New and is safe for
// concurrent use by multiple goroutines driving distinct Sentence
// buffers (spec §5); a single Sentence must not be shared across
// concurrent predictions.
type Predictor struct {
	char *scorer.CharScorer
	typ  *scorer.TypeScorer
	tags []*tagger.Tagger // one per model.Model.Tags dimension, in order

	bias    int32
	padding int
}

// New builds a Predictor from m. When predictTags is true, one
// tagger.Tagger is built per entry of m.Tags (spec §4.9's "for each
// tag dimension t"); FillTags on a Predictor with no tag dimensions is
// a no-op.
func New(m *model.Model, predictTags bool) (*Predictor, error) {
	cs, err := scorer.NewCharScorer(m.CharNgrams, m.CharWindowSize, m.Dict)
	if err != nil {
		return nil, err
	}
	ts, err := scorer.NewTypeScorer(m.TypeNgrams, m.TypeWindowSize)
	if err != nil {
		return nil, err
	}

	p := &Predictor{
		char:    cs,
		typ:     ts,
		bias:    m.Bias,
		padding: scorePadding(m),
	}

	if predictTags && len(m.Tags) > 0 {
		p.tags = make([]*tagger.Tagger, len(m.Tags))
		for i, tt := range m.Tags {
			tg, err := tagger.New(tt.Classes, m.TagWindowSize, tt.Self)
			if err != nil {
				return nil, err
			}
			p.tags[i] = tg
		}
	}
	return p, nil
}

// scorePadding computes spec §4.5/§9's score_padding: the largest
// window any scorer needs, so every positional weight write lands
// in bounds without a per-write bounds check.
func scorePadding(m *model.Model) int {
	padding := m.CharWindowSize
	if m.TypeWindowSize > padding {
		padding = m.TypeWindowSize
	}
	for _, d := range m.Dict {
		n := utf8.RuneCountInString(d.Word)
		if n > padding {
			padding = n
		}
	}
	return padding
}

// Padding reports the score-array padding this Predictor requires on
// each side of a sentence's boundary-score accumulator (spec §4.5/§9),
// so callers can slice sentence.Sentence.BoundaryScores() down to the
// meaningful range themselves.
func (p *Predictor) Padding() int {
	return p.padding
}

// Predict scores s and writes its boundary labels (spec §4.8): the
// boundary-score array is reset to the bias, the character and
// character-type scorers add their contributions, and each position's
// sign decides the label.
func (p *Predictor) Predict(s *sentence.Sentence) {
	ys := s.EnsureBoundaryScores(p.padding)
	n := s.NumChars() - 1
	for i := 0; i < n; i++ {
		ys[p.padding+i] = p.bias
	}

	p.char.AddScores(s, p.padding, ys)
	p.typ.AddScores(s, p.padding, ys)

	boundaries := s.BoundariesMut()
	for i := 0; i < n; i++ {
		if ys[p.padding+i] >= 0 {
			boundaries[i] = sentence.WordBoundary
		} else {
			boundaries[i] = sentence.NotWordBoundary
		}
	}
}

// FillTags runs the tag scorer over s's (already predicted) token
// boundaries, once per tag dimension, sizing s's tag dimensions to
// match. A Predictor with no tag dimensions leaves s's tags untouched.
func (p *Predictor) FillTags(s *sentence.Sentence) error {
	if len(p.tags) == 0 {
		return nil
	}
	s.EnsureTagDimensions(len(p.tags))
	for dim, tg := range p.tags {
		if err := tg.FillTags(s, dim); err != nil {
			return err
		}
	}
	return nil
}

// PredictWithTags runs Predict followed by FillTags, for callers that
// always want both passes.
func (p *Predictor) PredictWithTags(s *sentence.Sentence) error {
	p.Predict(s)
	return p.FillTags(s)
}
