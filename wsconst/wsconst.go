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

// Package wsconst implements word-shape boundary constraints, a
// post-processing step applied after a raw boundary prediction that
// forces certain boundary decisions based on surrounding character
// types: KyTea's "wsconst" behaviour of never splitting inside a run
// of same-typed characters (digits, Roman letters, Hiragana,
// Katakana, Kanji or any other single class), plus a grapheme-cluster
// constraint that never splits inside a single user-perceived
// character (e.g. an emoji ZWJ sequence).
package wsconst

import (
	"github.com/clipperhouse/uax29/v2/graphemes"

	"github.com/kobun-nlp/vaporetto/chartype"
	"github.com/kobun-nlp/vaporetto/sentence"
)

// Kind selects one word-shape constraint.
type Kind byte

const (
	KindDigit Kind = iota
	KindRoman
	KindHiragana
	KindKatakana
	KindKanji
	KindOther
	KindGraphemeCluster
)

// charType reports the chartype.Type a same-type Kind constrains, and
// whether k is a same-type constraint at all (as opposed to
// KindGraphemeCluster).
func (k Kind) charType() (chartype.Type, bool) {
	switch k {
	case KindDigit:
		return chartype.Digit, true
	case KindRoman:
		return chartype.Roman, true
	case KindHiragana:
		return chartype.Hiragana, true
	case KindKatakana:
		return chartype.Katakana, true
	case KindKanji:
		return chartype.Kanji, true
	case KindOther:
		return chartype.Other, true
	default:
		return 0, false
	}
}

// Apply forces s's boundaries to NotWordBoundary wherever k's
// constraint requires it, unconditionally overwriting whatever label
// (including Unknown) was there before — matching kytea_wsconst.rs
// and concat_grapheme_clusters.rs, which both assign without first
// checking the existing value.
func Apply(s *sentence.Sentence, k Kind) {
	if t, ok := k.charType(); ok {
		applySameType(s, t)
		return
	}
	applyGraphemeClusters(s)
}

func applySameType(s *sentence.Sentence, t chartype.Type) {
	types := s.CharTypes()
	boundaries := s.BoundariesMut()
	for i := range boundaries {
		if types[i] == t && types[i+1] == t {
			boundaries[i] = sentence.NotWordBoundary
		}
	}
}

func applyGraphemeClusters(s *sentence.Sentence) {
	boundaries := s.BoundariesMut()
	start := 0
	g := graphemes.FromString(s.RawString())
	for g.Next() {
		n := countRunes(g.Value())
		end := start + n
		for i := start; i < end-1 && i < len(boundaries); i++ {
			boundaries[i] = sentence.NotWordBoundary
		}
		start = end
	}
}

func countRunes(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

// Constraint bundles the set of Kinds a caller wants enforced together,
// e.g. the CLI's --wsconst flag, which accepts a combination of
// single-letter codes.
type Constraint struct {
	Kinds []Kind
}

// Apply runs every one of c's Kinds over s, in order.
func (c Constraint) Apply(s *sentence.Sentence) {
	for _, k := range c.Kinds {
		Apply(s, k)
	}
}
