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

package wsconst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kobun-nlp/vaporetto/sentence"
)

func TestApplyDigitConcatenatesRuns(t *testing.T) {
	s, err := sentence.FromTokenized("5 00 0")
	require.NoError(t, err)
	Apply(s, KindDigit)
	out, err := s.TokenizedString()
	require.NoError(t, err)
	assert.Equal(t, "5000", out)
}

func TestApplyDigitCombinedWithOtherTypes(t *testing.T) {
	s, err := sentence.FromTokenized("20 21 年 8 月 2 4 日")
	require.NoError(t, err)
	Apply(s, KindDigit)
	out, err := s.TokenizedString()
	require.NoError(t, err)
	assert.Equal(t, "2021 年 8 月 24 日", out)
}

func TestApplyDigitNoopOnSingleChar(t *testing.T) {
	s, err := sentence.FromTokenized("5")
	require.NoError(t, err)
	Apply(s, KindDigit)
	out, err := s.TokenizedString()
	require.NoError(t, err)
	assert.Equal(t, "5", out)
}

func TestApplyOverridesUnknownBoundary(t *testing.T) {
	s, err := sentence.FromRaw("11")
	require.NoError(t, err)
	assert.Equal(t, sentence.Unknown, s.Boundaries()[0])
	Apply(s, KindDigit)
	assert.Equal(t, sentence.NotWordBoundary, s.Boundaries()[0])
}

func TestApplyGraphemeClusterCombiningMark(t *testing.T) {
	// "e" + COMBINING ACUTE ACCENT (U+0301) is a single grapheme
	// cluster spanning two codepoints; the boundary between them must
	// be forced to NotWordBoundary even though from_raw leaves it
	// Unknown.
	s, err := sentence.FromRaw("éx")
	require.NoError(t, err)
	Apply(s, KindGraphemeCluster)
	assert.Equal(t, sentence.NotWordBoundary, s.Boundaries()[0])
}
