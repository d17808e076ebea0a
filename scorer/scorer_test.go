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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kobun-nlp/vaporetto/chartype"
	"github.com/kobun-nlp/vaporetto/sentence"
)

func TestCharScorerNgramOnly(t *testing.T) {
	cs, err := NewCharScorer([]NgramEntry{
		{Key: "he", Weights: []int32{1, 2}},
		{Key: "she", Weights: []int32{10, 20, 30}},
	}, 2, nil)
	require.NoError(t, err)

	s, err := sentence.FromRaw("ushers")
	require.NoError(t, err)

	padding := 2
	ys := make([]int32, s.NumChars()-1+2*padding)
	cs.AddScores(s, padding, ys)

	// "she" ends at char index 4 (u-s-h-e); "he" is a suffix of "she"
	// at the same position, so the merger has already folded "he"'s
	// weight {1,2} into "she"'s {10,20,30} before the automaton is
	// built: {11,22,30}, anchored at offset -windowSize(-2), landing
	// at target = 4 + padding - 2 - 1 = padding + 1.
	want := make([]int32, len(ys))
	want[padding+1] = 11
	want[padding+2] = 22
	want[padding+3] = 30
	assert.Equal(t, want, ys)
}

func TestCharScorerMergesNgramAndDictSameKey(t *testing.T) {
	_, err := NewCharScorer([]NgramEntry{
		{Key: "ab", Weights: []int32{1}},
	}, 1, []DictEntry{
		{Word: "ab", Right: 1, Inside: 1, Left: 1},
	})
	// "ab" merges cleanly (same key combined, not rejected) since the
	// merger folds duplicate keys rather than rejecting them.
	assert.NoError(t, err)
}

func TestCharScorerDictWeights(t *testing.T) {
	cs, err := NewCharScorer(nil, 1, []DictEntry{
		{Word: "cat", Right: 100, Inside: 10, Left: 1},
	})
	require.NoError(t, err)

	s, err := sentence.FromRaw("a cat.")
	require.NoError(t, err)

	padding := 3
	ys := make([]int32, s.NumChars()-1+2*padding)
	cs.AddScores(s, padding, ys)

	// "cat" occupies chars 2..5 (0-indexed: 'a',' ','c','a','t','.'),
	// matches ending at char 5. Weight vector is [right, inside, inside,
	// left] = [100, 10, 10, 1], offset -3, so target = 5+padding-3-1 =
	// padding+1.
	assert.Equal(t, int32(100), ys[padding+1])
	assert.Equal(t, int32(10), ys[padding+2])
	assert.Equal(t, int32(10), ys[padding+3])
	assert.Equal(t, int32(1), ys[padding+4])
}

func TestTypeScorerCacheAndPMAAgree(t *testing.T) {
	// A mixed Hiragana/Katakana type sequence exercised by both
	// implementations should produce identical boundary scores: build
	// the same n-gram table (weight length 2*windowSize-n+1 = 3) through
	// both paths and compare the unpadded boundary range.
	h := byte(chartype.Hiragana)
	k := byte(chartype.Katakana)
	ngrams := []NgramEntry{
		{Key: string([]byte{h, h}), Weights: []int32{1, 2, 3}},
		{Key: string([]byte{h, k}), Weights: []int32{5, 6, 7}},
	}

	cache, err := newTypeScorerCache(ngrams, 2)
	require.NoError(t, err)
	pma, err := newTypeScorerPMA(ngrams, 2)
	require.NoError(t, err)

	types := []chartype.Type{chartype.Hiragana, chartype.Hiragana, chartype.Katakana, chartype.Hiragana}
	padding := 2
	ysCache := make([]int32, len(types)-1+2*padding)
	ysPMA := make([]int32, len(types)-1+2*padding)
	cache.addScores(types, padding, ysCache)
	pma.addScores(types, padding, ysPMA)

	n := len(types) - 1
	assert.Equal(t, ysPMA[padding:padding+n], ysCache[padding:padding+n])
}

func TestTypeScorerDispatchesByWindowSize(t *testing.T) {
	ngrams := []NgramEntry{{Key: string([]byte{1, 1}), Weights: []int32{1, 2, 3, 4}}}

	small, err := NewTypeScorer(ngrams, 2)
	require.NoError(t, err)
	assert.NotNil(t, small.cache)
	assert.Nil(t, small.pma)

	big, err := NewTypeScorer(ngrams, 4)
	require.NoError(t, err)
	assert.NotNil(t, big.pma)
	assert.Nil(t, big.cache)
}
