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

package sentence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kobun-nlp/vaporetto/chartype"
)

func TestFromRawEmpty(t *testing.T) {
	_, err := FromRaw("")
	assert.Error(t, err)
}

func TestFromRawRejectsNUL(t *testing.T) {
	_, err := FromRaw("ab\x00cd")
	assert.Error(t, err)
}

func TestFromRawBasic(t *testing.T) {
	s, err := FromRaw("How are you?")
	assert.NoError(t, err)
	assert.Equal(t, "How are you?", s.RawString())
	assert.Equal(t, 12, s.NumChars())
	assert.Len(t, s.Boundaries(), 11)
	for _, b := range s.Boundaries() {
		assert.Equal(t, Unknown, b)
	}
}

func TestFromRawMixedScript(t *testing.T) {
	s, err := FromRaw("A1あエ漢?")
	assert.NoError(t, err)
	want := []chartype.Type{
		chartype.Roman,
		chartype.Digit,
		chartype.Hiragana,
		chartype.Katakana,
		chartype.Kanji,
		chartype.Other,
	}
	assert.Equal(t, want, s.CharTypes())
}

func TestUpdateRawRecoversOnError(t *testing.T) {
	s, err := FromRaw("12345")
	assert.NoError(t, err)
	err = s.UpdateRaw("")
	assert.Error(t, err)
	assert.Equal(t, " ", s.RawString())
	assert.Equal(t, 1, s.NumChars())
}

func TestFromTokenizedBasic(t *testing.T) {
	s, err := FromTokenized("How are you?")
	assert.NoError(t, err)
	assert.Equal(t, "Howareyou?", s.RawString())
	out, err := s.TokenizedString()
	assert.NoError(t, err)
	assert.Equal(t, "How are you?", out)
}

func TestFromTokenizedWithTags(t *testing.T) {
	s, err := FromTokenized("How/WRB are/VBP you?")
	assert.NoError(t, err)
	out, err := s.TokenizedString()
	assert.NoError(t, err)
	assert.Equal(t, "How/WRB are/VBP you?", out)

	toks, err := s.Tokens()
	assert.NoError(t, err)
	assert.Equal(t, []Token{
		{Surface: "How", Tag: "WRB"},
		{Surface: "are", Tag: "VBP"},
		{Surface: "you?", Tag: ""},
	}, toks)
}

func TestFromTokenizedRejectsConsecutiveWhitespace(t *testing.T) {
	_, err := FromTokenized("How  are you?")
	assert.Error(t, err)
}

func TestFromTokenizedRejectsLeadingWhitespace(t *testing.T) {
	_, err := FromTokenized(" How are you?")
	assert.Error(t, err)
}

func TestFromTokenizedRejectsTrailingWhitespace(t *testing.T) {
	_, err := FromTokenized("How are you? ")
	assert.Error(t, err)
}

func TestFromTokenizedRejectsLeadingSlash(t *testing.T) {
	_, err := FromTokenized("/WRB How")
	assert.Error(t, err)
}

func TestFromTokenizedRejectsSlashAfterBoundary(t *testing.T) {
	_, err := FromTokenized("How /are you?")
	assert.Error(t, err)
}

func TestFromTokenizedEscaping(t *testing.T) {
	s, err := FromTokenized(`a\/b c\ d`)
	assert.NoError(t, err)
	assert.Equal(t, "a/b c d", s.RawString())
	out, err := s.TokenizedString()
	assert.NoError(t, err)
	assert.Equal(t, `a\/b c\ d`, out)
}

func TestFromPartialAnnotationBasic(t *testing.T) {
	s, err := FromPartialAnnotation("g-o-o-d|i-d e-a")
	assert.NoError(t, err)
	assert.Equal(t, "goodidea", s.RawString())
	assert.Equal(t, "g-o-o-d|i-d e-a", s.PartialAnnotationString())
}

func TestFromPartialAnnotationWithTags(t *testing.T) {
	s, err := FromPartialAnnotation("I-t/PRP|'-s/VBZ|o-k-a-y/JJ|./.")
	assert.NoError(t, err)
	assert.Equal(t, "It'sokay.", s.RawString())
	assert.Equal(t, "I-t/PRP|'-s/VBZ|o-k-a-y/JJ|./.", s.PartialAnnotationString())
}

func TestFromPartialAnnotationRejectsInvalidLength(t *testing.T) {
	_, err := FromPartialAnnotation("b-a-d/i-d-e-a")
	assert.Error(t, err)
}

func TestFromPartialAnnotationRejectsTagOnUnknownBoundary(t *testing.T) {
	_, err := FromPartialAnnotation("a/TAG b")
	assert.Error(t, err)
}

func TestTokensFailsOnUnknownBoundary(t *testing.T) {
	s, err := FromPartialAnnotation("a b")
	assert.NoError(t, err)
	_, err = s.Tokens()
	assert.Error(t, err)

	_, err = s.TokenizedString()
	assert.Error(t, err)
}

func TestPartialAnnotationRoundTripsUnknown(t *testing.T) {
	s, err := FromPartialAnnotation("a b")
	assert.NoError(t, err)
	assert.Equal(t, "a b", s.PartialAnnotationString())
}

func TestCharPosForBytePos(t *testing.T) {
	s, err := FromRaw("Aあ1")
	assert.NoError(t, err)
	pos, err := s.CharPosForBytePos(0)
	assert.NoError(t, err)
	assert.Equal(t, 0, pos)

	pos, err = s.CharPosForBytePos(1)
	assert.NoError(t, err)
	assert.Equal(t, 1, pos)

	// byte offset 2 falls inside the 3-byte encoding of 'あ'.
	_, err = s.CharPosForBytePos(2)
	assert.Error(t, err)
}

func TestEnsureBoundaryScoresReusesBacking(t *testing.T) {
	s, err := FromRaw("hello")
	assert.NoError(t, err)
	first := s.EnsureBoundaryScores(3)
	assert.Len(t, first, 4+6)
	first[0] = 42
	second := s.EnsureBoundaryScores(3)
	assert.Equal(t, int32(0), second[0])
}

func TestNumTagDimensionsDefaultsToOne(t *testing.T) {
	s, err := FromRaw("hello")
	assert.NoError(t, err)
	assert.Equal(t, 1, s.NumTagDimensions())
}

func TestEnsureTagDimensionsGrowsAndPreservesDimZero(t *testing.T) {
	s, err := FromTokenized("How/WRB are/VBP you?")
	assert.NoError(t, err)

	// Tags are stored per character ("Howareyou?", 10 chars), at the
	// index of each token's last character: "How" ends at 2, "are" at 5.
	s.EnsureTagDimensions(3)
	assert.Equal(t, 3, s.NumTagDimensions())
	assert.Equal(t, []string{"", "", "WRB", "", "", "VBP", "", "", "", ""}, s.Tags(0))
	assert.Equal(t, []string{"", "", "", "", "", "", "", "", "", ""}, s.Tags(1))
	assert.Equal(t, []string{"", "", "", "", "", "", "", "", "", ""}, s.Tags(2))

	s.SetTagAt(0, 1, "NOUN")
	s.SetTagAt(1, 2, "SING")
	assert.Equal(t, "NOUN", s.TagAt(0, 1))
	assert.Equal(t, "SING", s.TagAt(1, 2))
	assert.Equal(t, "WRB", s.TagAt(2, 0))
}

func TestEnsureTagDimensionsShrinkDropsExtraDims(t *testing.T) {
	s, err := FromRaw("hi")
	assert.NoError(t, err)
	s.EnsureTagDimensions(2)
	s.SetTagAt(0, 0, "A")
	s.SetTagAt(0, 1, "B")

	s.EnsureTagDimensions(1)
	assert.Equal(t, 1, s.NumTagDimensions())
	assert.Equal(t, "A", s.TagAt(0, 0))
}

func TestEnsureTagDimensionsNoopWhenUnchanged(t *testing.T) {
	s, err := FromRaw("hi")
	assert.NoError(t, err)
	s.SetTagAt(0, 0, "A")
	s.EnsureTagDimensions(1)
	assert.Equal(t, "A", s.TagAt(0, 0))
}
