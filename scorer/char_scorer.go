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

// Package scorer implements the character n-gram/dictionary scorer
// (C4+C6) and the character-type n-gram scorer (C5) of spec §4.6/4.7.
// Both are built on package automaton/merge/pweight: every n-gram
// (character or dictionary word) becomes a pattern in a single
// no-suffix automaton, with weights pre-folded by the merger so the
// one (longest) match the automaton reports at a position already
// carries the full overlapping contribution.
package scorer

import (
	"unicode/utf8"

	"github.com/kobun-nlp/vaporetto/automaton"
	"github.com/kobun-nlp/vaporetto/merge"
	"github.com/kobun-nlp/vaporetto/pweight"
	"github.com/kobun-nlp/vaporetto/sentence"
	"github.com/kobun-nlp/vaporetto/vaporettoerr"
)

// NgramEntry is one row of a trained character or character-type
// n-gram table: a pattern and the weight vector it contributes when
// matched, relative to the scorer's window size.
type NgramEntry struct {
	Key     string
	Weights []int32
}

// DictEntry is one row of the dictionary table: a word and its three
// boundary weights (Right at the boundary immediately before the word,
// Inside at every boundary strictly inside it, and Left at the
// boundary immediately after it — spec §4.6).
type DictEntry struct {
	Word   string
	Right  int32
	Inside int32
	Left   int32
}

// CharScorer scores character n-gram and dictionary-word matches
// (C4/C6). A built CharScorer is immutable and safe for concurrent
// use.
type CharScorer struct {
	automaton *automaton.Automaton[rune]
	entries   []merge.Entry[rune]
}

// NewCharScorer builds a CharScorer from a trained character n-gram
// table and dictionary. windowSize is the character n-gram model's
// window size (spec §4.6): every n-gram weight vector is anchored at
// offset -windowSize, so that the vector's k-th lane lands at
// character position (matchEnd - windowSize + k - 1).
func NewCharScorer(ngrams []NgramEntry, windowSize int, dict []DictEntry) (*CharScorer, error) {
	var raw []merge.Entry[rune]
	for _, d := range ngrams {
		raw = append(raw, merge.Entry[rune]{
			Key:    []rune(d.Key),
			Weight: pweight.NewPositional(int32(-windowSize), d.Weights),
		})
	}
	for _, d := range dict {
		wordLen := utf8.RuneCountInString(d.Word)
		if wordLen == 0 {
			return nil, vaporettoerr.New(vaporettoerr.InvalidModel, "dictionary contains an empty word")
		}
		w := make([]int32, wordLen+1)
		w[0] = d.Right
		for i := 1; i < wordLen; i++ {
			w[i] = d.Inside
		}
		w[wordLen] = d.Left
		raw = append(raw, merge.Entry[rune]{
			Key:    []rune(d.Word),
			Weight: pweight.NewPositional(int32(-wordLen), w),
		})
	}

	merged := merge.Merge(raw)
	b := automaton.NewBuilder[rune]()
	for i, e := range merged {
		if !b.Add(e.Key, int32(i)) {
			return nil, vaporettoerr.New(vaporettoerr.InvalidModel, "duplicate character n-gram or dictionary word %q", string(e.Key))
		}
	}
	return &CharScorer{automaton: b.Build(), entries: merged}, nil
}

// AddScores scans s's raw text and adds every matching n-gram's or
// dictionary word's weight vector into ys, a boundary-score buffer
// padded by padding cells on each side (spec §4.4/§9: padding must be
// at least the scorer's window size, so every write lands in bounds).
func (cs *CharScorer) AddScores(s *sentence.Sentence, padding int, ys []int32) {
	text := []rune(s.RawString())
	cs.automaton.OverlappingNoSuffix(text, func(m automaton.Match) {
		e := cs.entries[m.Value]
		target := m.End + padding + int(e.Weight.Offset) - 1
		e.Weight.Weight.AddInto(ys, target)
	})
}
