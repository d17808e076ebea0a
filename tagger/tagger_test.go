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

package tagger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kobun-nlp/vaporetto/sentence"
)

func TestNewRejectsEmptyClasses(t *testing.T) {
	_, err := New(nil, 1, nil)
	assert.Error(t, err)
}

func TestFillTagsBiasOnlyTieBreak(t *testing.T) {
	tg, err := New([]ClassModel{
		{Name: "NOUN", Bias: 5},
		{Name: "VERB", Bias: 10},
		{Name: "ADJ", Bias: 10},
	}, 1, nil)
	require.NoError(t, err)

	s, err := sentence.FromRaw("ab")
	require.NoError(t, err)
	s.BoundariesMut()[0] = sentence.WordBoundary

	require.NoError(t, tg.FillTags(s, 0))
	assert.Equal(t, []string{"VERB", "VERB"}, s.Tags(0))
}

func TestFillTagsRequiresResolvedBoundaries(t *testing.T) {
	tg, err := New([]ClassModel{{Name: "NOUN"}}, 1, nil)
	require.NoError(t, err)

	s, err := sentence.FromRaw("ab")
	require.NoError(t, err)
	// boundaries default to Unknown
	err = tg.FillTags(s, 0)
	assert.Error(t, err)
}

func TestFillTagsSelfFeatureOverridesBias(t *testing.T) {
	tg, err := New([]ClassModel{
		{Name: "NOUN", Bias: 100},
		{Name: "VERB", Bias: 0},
	}, 1, []SelfEntry{
		{Key: "run", Weights: []int32{0, 1000}},
	})
	require.NoError(t, err)

	s, err := sentence.FromRaw("I run")
	require.NoError(t, err)
	b := s.BoundariesMut()
	// "I run": chars I,' ',r,u,n -> boundaries between each pair (4 of them)
	b[0] = sentence.WordBoundary // "I" | " run"
	b[1] = sentence.NotWordBoundary
	b[2] = sentence.NotWordBoundary
	b[3] = sentence.NotWordBoundary

	require.NoError(t, tg.FillTags(s, 0))
	tags := s.Tags(0)
	// token "I" has no self match, so bias wins: NOUN.
	assert.Equal(t, "NOUN", tags[0])
	// token " run" contains "run" as a self match, which outweighs bias: VERB.
	assert.Equal(t, "VERB", tags[len(tags)-1])
}

func TestFillTagsEmptySentence(t *testing.T) {
	tg, err := New([]ClassModel{{Name: "NOUN"}}, 1, nil)
	require.NoError(t, err)
	s, err := sentence.FromRaw(" ")
	require.NoError(t, err)
	assert.NoError(t, tg.FillTags(s, 0))
}
