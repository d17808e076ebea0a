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

package scorer

import (
	"github.com/kobun-nlp/vaporetto/automaton"
	"github.com/kobun-nlp/vaporetto/chartype"
	"github.com/kobun-nlp/vaporetto/merge"
	"github.com/kobun-nlp/vaporetto/pweight"
	"github.com/kobun-nlp/vaporetto/sentence"
	"github.com/kobun-nlp/vaporetto/vaporettoerr"
)

// cachedWindowLimit is the character-type window size at or below
// which TypeScorer precomputes every possible window's score instead
// of walking an automaton per prediction (spec §4.7's "cache variant",
// grounded on type_scorer.rs's TypeScorerCache: a window size of 3
// keeps the precomputed table to 8^6 = 262144 entries).
const cachedWindowLimit = 3

// alphabetShift is the number of bits used to pack one character-type
// id into TypeScorerCache's sequence id; alphabetSize = 1<<alphabetShift
// must exceed the highest chartype.Type value (6) plus the reserved
// "no character" id 0.
const (
	alphabetShift = 3
	alphabetSize  = 1 << alphabetShift
	alphabetMask  = alphabetSize - 1
)

// TypeScorer scores character-type n-gram matches (C5). It picks
// between two implementations at construction time depending on
// windowSize, mirroring the upstream TypeScorer::new dispatch.
type TypeScorer struct {
	pma   *typeScorerPMA
	cache *typeScorerCache
}

// NewTypeScorer builds a TypeScorer from a trained character-type
// n-gram table (keys are strings of raw chartype.Type byte values,
// not text).
func NewTypeScorer(ngrams []NgramEntry, windowSize int) (*TypeScorer, error) {
	if windowSize <= cachedWindowLimit {
		c, err := newTypeScorerCache(ngrams, windowSize)
		if err != nil {
			return nil, err
		}
		return &TypeScorer{cache: c}, nil
	}
	p, err := newTypeScorerPMA(ngrams, windowSize)
	if err != nil {
		return nil, err
	}
	return &TypeScorer{pma: p}, nil
}

// AddScores adds every matching character-type n-gram's weight into
// ys, using the same padded-buffer convention as CharScorer.AddScores.
func (t *TypeScorer) AddScores(s *sentence.Sentence, padding int, ys []int32) {
	if t.cache != nil {
		t.cache.addScores(s.CharTypes(), padding, ys)
		return
	}
	t.pma.addScores(s.CharTypes(), padding, ys)
}

// typeScorerPMA is the general-window implementation: an automaton
// over the byte alphabet of chartype.Type values, weights pre-folded
// by the same merger used for CharScorer.
type typeScorerPMA struct {
	automaton  *automaton.Automaton[byte]
	entries    []merge.Entry[byte]
	windowSize int
}

func newTypeScorerPMA(ngrams []NgramEntry, windowSize int) (*typeScorerPMA, error) {
	var raw []merge.Entry[byte]
	for _, d := range ngrams {
		raw = append(raw, merge.Entry[byte]{
			Key:    []byte(d.Key),
			Weight: pweight.NewPositional(int32(-windowSize), d.Weights),
		})
	}
	merged := merge.Merge(raw)
	b := automaton.NewBuilder[byte]()
	for i, e := range merged {
		if !b.Add(e.Key, int32(i)) {
			return nil, vaporettoerr.New(vaporettoerr.InvalidModel, "duplicate character-type n-gram")
		}
	}
	return &typeScorerPMA{automaton: b.Build(), entries: merged, windowSize: windowSize}, nil
}

func (t *typeScorerPMA) addScores(types []chartype.Type, padding int, ys []int32) {
	seq := make([]byte, len(types))
	for i, c := range types {
		seq[i] = byte(c)
	}
	t.automaton.OverlappingNoSuffix(seq, func(m automaton.Match) {
		e := t.entries[m.Value]
		target := m.End + padding + int(e.Weight.Offset) - 1
		e.Weight.Weight.AddInto(ys, target)
	})
}

// typeScorerCache precomputes the contribution of every possible
// 2*windowSize-long character-type window, so a prediction only has
// to pack the window into an integer id and look the score up (spec
// §4.7, grounded on type_scorer.rs's TypeScorerCache).
//
// Unlike typeScorerPMA, the table is built from a brute-force full
// overlapping scan over each small fixed-length window rather than
// through the no-suffix automaton: the table is built once, so a
// straightforward substring scan (the window is at most 2*3 = 6
// symbols) is both simpler and exactly as correct as the merged
// automaton, without needing a second matching mode in package
// automaton.
type typeScorerCache struct {
	scores       []int32
	windowSize   int
	sequenceMask int
}

func newTypeScorerCache(ngrams []NgramEntry, windowSize int) (*typeScorerCache, error) {
	seqLen := windowSize * 2
	for _, d := range ngrams {
		if len(d.Weights) <= seqLen-len(d.Key) {
			return nil, vaporettoerr.New(vaporettoerr.InvalidModel, "invalid size of weight vector for character-type n-gram %q", d.Key)
		}
	}

	total := 1
	for i := 0; i < seqLen; i++ {
		total *= alphabetSize
	}
	scores := make([]int32, total)
	seq := make([]byte, seqLen)

	for id := 0; id < total; id++ {
		if !seqIDToSeq(id, seq) {
			continue
		}
		var y int32
		for _, d := range ngrams {
			key := []byte(d.Key)
			n := len(key)
			for end := n; end <= seqLen; end++ {
				match := true
				for k := 0; k < n; k++ {
					if seq[end-n+k] != key[k] {
						match = false
						break
					}
				}
				if match {
					y += d.Weights[seqLen-end]
				}
			}
		}
		scores[id] = y
	}

	return &typeScorerCache{
		scores:       scores,
		windowSize:   windowSize,
		sequenceMask: (1 << (alphabetShift * seqLen)) - 1,
	}, nil
}

// seqIDToSeq decodes seqid into sequence, rejecting ids that encode
// the reserved alphabetMask symbol (which a valid window scan never
// produces) so the corresponding table cell is left at its zero
// default.
func seqIDToSeq(seqid int, sequence []byte) bool {
	for i := len(sequence) - 1; i >= 0; i-- {
		x := seqid & alphabetMask
		if x == alphabetMask {
			return false
		}
		sequence[i] = byte(x)
		seqid >>= alphabetShift
	}
	return seqid == 0
}

func (c *typeScorerCache) addScores(types []chartype.Type, padding int, ys []int32) {
	seqid := 0
	for i := 0; i < c.windowSize; i++ {
		seqid = c.advance(seqid, types, i)
	}
	n := len(types) - 1
	for i := 0; i < n; i++ {
		seqid = c.advance(seqid, types, i+c.windowSize)
		ys[padding+i] += c.scores[seqid]
	}
}

func (c *typeScorerCache) advance(seqid int, types []chartype.Type, i int) int {
	var id byte
	if i < len(types) {
		id = byte(types[i])
	}
	return ((seqid << alphabetShift) | int(id)) & c.sequenceMask
}
