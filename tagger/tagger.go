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

// Package tagger implements the per-token tag scorer (C7, spec §4.9):
// for every token produced by the (already corrected) boundary
// predictions, it scores every tag class from three feature sources —
// left context, right context and the token's own text — and assigns
// the argmax class.
//
// The left/right context scorers are ordinary instances of
// scorer.CharScorer, one per class, reusing the same n-gram
// automaton/merge machinery the boundary scorer is built on rather
// than a bespoke strided encoding. This is a deliberate simplification
// of the single-merged-automaton-with-per-relative-position-state-map
// design (see DESIGN.md): it keeps one well-tested scorer type instead
// of a second automaton flavour, at the cost of one automaton per tag
// class instead of one automaton shared by all classes. Scores are
// identical either way; only the construction is simpler.
package tagger

import (
	"github.com/kobun-nlp/vaporetto/automaton"
	"github.com/kobun-nlp/vaporetto/scorer"
	"github.com/kobun-nlp/vaporetto/sentence"
	"github.com/kobun-nlp/vaporetto/ud"
	"github.com/kobun-nlp/vaporetto/vaporettoerr"
)

// SelfEntry is one row of the self-feature table: a substring pattern
// and the vector of per-class scores it contributes to every tag
// class when it matches entirely inside a token.
type SelfEntry struct {
	Key     string
	Weights []int32 // length == number of classes
}

// ClassModel is one tag class's trained left/right n-gram tables and
// bias.
type ClassModel struct {
	Name  string
	Bias  int32
	Left  []scorer.NgramEntry
	Right []scorer.NgramEntry
}

// Tagger scores and assigns per-token tags (C7). A built Tagger is
// immutable and safe for concurrent use across distinct Sentence
// values, matching spec §5.
type Tagger struct {
	classNames []string
	bias       []int32
	left       []*scorer.CharScorer
	right      []*scorer.CharScorer
	leftWindow int

	selfAutomaton *automaton.Automaton[rune]
	selfPatterns  [][]rune
	selfWeights   [][]int32
}

// New builds a Tagger from per-class left/right n-gram tables (all
// sharing the same window size) and a shared self-feature table.
func New(classes []ClassModel, windowSize int, self []SelfEntry) (*Tagger, error) {
	if len(classes) == 0 {
		return nil, vaporettoerr.New(vaporettoerr.InvalidModel, "tag model has no classes")
	}
	t := &Tagger{
		classNames: make([]string, len(classes)),
		bias:       make([]int32, len(classes)),
		left:       make([]*scorer.CharScorer, len(classes)),
		right:      make([]*scorer.CharScorer, len(classes)),
		leftWindow: windowSize,
	}
	for i, c := range classes {
		t.classNames[i] = canonicalClassName(c.Name)
		t.bias[i] = c.Bias
		l, err := scorer.NewCharScorer(c.Left, windowSize, nil)
		if err != nil {
			return nil, err
		}
		r, err := scorer.NewCharScorer(c.Right, windowSize, nil)
		if err != nil {
			return nil, err
		}
		t.left[i] = l
		t.right[i] = r
	}

	// Unlike the n-gram scorers, self-feature patterns are not run
	// through package merge: each match contributes one independent
	// TagRangeScore rather than folding into a single positional
	// vector, so the usual "no-suffix" rule does mean a self pattern
	// that is a proper suffix of another self pattern never fires
	// where the longer one also matches. Self tables are expected to
	// hold whole surface forms (dictionary-style), which in practice
	// are not constructed as suffixes of one another.
	b := automaton.NewBuilder[rune]()
	for i, e := range self {
		if len(e.Weights) != len(classes) {
			return nil, vaporettoerr.New(vaporettoerr.InvalidModel, "self-feature %q has %d weights, want %d", e.Key, len(e.Weights), len(classes))
		}
		key := []rune(e.Key)
		if len(key) == 0 {
			return nil, vaporettoerr.New(vaporettoerr.InvalidModel, "self-feature table contains an empty key")
		}
		if !b.Add(key, int32(i)) {
			return nil, vaporettoerr.New(vaporettoerr.InvalidModel, "duplicate self-feature key %q", e.Key)
		}
		t.selfPatterns = append(t.selfPatterns, key)
		t.selfWeights = append(t.selfWeights, e.Weights)
	}
	t.selfAutomaton = b.Build()
	return t, nil
}

// canonicalClassName normalizes a class name that encodes a Universal
// Dependencies feature bundle (e.g. "Number=Sing|Case=Nom") into a
// stable, alphabetically-ordered key, so two models trained with the
// same feature set in different orders end up with identical class
// names. A name that does not parse as a feature bundle (a plain POS
// tag like "NOUN") is returned unchanged.
func canonicalClassName(name string) string {
	feats, err := ud.ParseFeats(name)
	if err != nil || len(feats) == 0 {
		return name
	}
	feats.Normalize()
	return feats.Key()
}

// NumClasses returns the number of tag classes the Tagger was built
// with.
func (t *Tagger) NumClasses() int {
	return len(t.classNames)
}

// FillTags scores every token in s and writes the winning class name
// into s's dim-th tag dimension (sentence.Sentence.SetTagAt), per
// spec §4.9's "for each tag dimension t ... store the class name at
// tags[(e-1)*n_tag_classes+t]". The caller is responsible for sizing
// s's tag dimensions (sentence.Sentence.EnsureTagDimensions) before
// calling FillTags for every dimension it is scoring. It requires
// every boundary to already be resolved (spec §4.9 runs after
// boundary prediction/correction).
func (t *Tagger) FillTags(s *sentence.Sentence, dim int) error {
	nChars := s.NumChars()
	if nChars == 0 {
		return nil
	}
	boundaries := s.Boundaries()
	for _, b := range boundaries {
		if b == sentence.Unknown {
			return vaporettoerr.New(vaporettoerr.InvalidSentence, "cannot tag a sentence with unresolved boundaries")
		}
	}

	nTags := len(t.classNames)
	ts := s.TagScores()
	ts.Init(nChars, nTags)

	padding := t.leftWindow
	for c := range t.classNames {
		ys := make([]int32, nChars-1+2*padding)
		t.left[c].AddScores(s, padding, ys)
		for i := 1; i < nChars; i++ {
			ts.Left[i*nTags+c] = ys[padding+i-1]
		}
		ys = make([]int32, nChars-1+2*padding)
		t.right[c].AddScores(s, padding, ys)
		for i := 0; i < nChars-1; i++ {
			ts.Right[i*nTags+c] = ys[padding+i]
		}
	}

	if t.selfAutomaton != nil {
		text := []rune(s.RawString())
		t.selfAutomaton.OverlappingNoSuffix(text, func(m automaton.Match) {
			key := t.selfPatterns[m.Value]
			start := m.End - len(key)
			pos := m.End - 1
			weights := append([]int32(nil), t.selfWeights[m.Value]...)
			ts.Self[pos] = append(ts.Self[pos], sentence.TagRangeScore{
				Weight:           weights,
				StartRelPosition: int16(start),
			})
		})
	}

	start := 0
	for i, b := range boundaries {
		if b == sentence.WordBoundary {
			t.assignTag(s, ts, dim, nTags, start, i+1, i)
			start = i + 1
		}
	}
	t.assignTag(s, ts, dim, nTags, start, nChars, nChars-1)
	return nil
}

// assignTag scores the token spanning char range [start, end) and
// writes the winning class name into s's dim-th tag dimension at
// tagIndex, matching the boundary-index tag layout
// sentence.Sentence.Tokens expects.
func (t *Tagger) assignTag(s *sentence.Sentence, ts *sentence.TagScores, dim, nTags, start, end, tagIndex int) {
	scores := make([]int32, nTags)
	copy(scores, t.bias)
	for c := 0; c < nTags; c++ {
		scores[c] += ts.Left[start*nTags+c]
		scores[c] += ts.Right[(end-1)*nTags+c]
	}
	for p := start; p < end; p++ {
		for _, r := range ts.Self[p] {
			if int(r.StartRelPosition) < start {
				continue
			}
			for c := 0; c < nTags; c++ {
				scores[c] += r.Weight[c]
			}
		}
	}

	best := 0
	for c := 1; c < nTags; c++ {
		if scores[c] > scores[best] {
			best = c
		}
	}
	s.SetTagAt(tagIndex, dim, t.classNames[best])
}
