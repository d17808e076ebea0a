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

// Package sentence implements the mutable text buffer shared by every
// stage of the pipeline: the three text formats (raw, tokenized,
// partial-annotation) are parsed into it, the scorer/tagger packages
// accumulate their per-character scores into its scratch arrays, and
// the predictor reads the finished boundary labels back out of it.
//
// A Sentence never materializes a []rune copy of its text. Character
// indices are translated to byte offsets through charToByte (and back
// through byteToChar), so scanning and substring extraction stay
// allocation-free beyond the two index arrays themselves.
package sentence

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kobun-nlp/vaporetto/chartype"
	"github.com/kobun-nlp/vaporetto/vaporettoerr"
)

// Boundary labels the gap between two adjacent characters.
type Boundary byte

const (
	NotWordBoundary Boundary = iota
	WordBoundary
	Unknown
)

func (b Boundary) String() string {
	switch b {
	case NotWordBoundary:
		return "NotWordBoundary"
	case WordBoundary:
		return "WordBoundary"
	case Unknown:
		return "Unknown"
	default:
		return "invalid"
	}
}

// Token is one element of a fully-bounded sentence: a surface string
// and its optional trailing tag.
type Token struct {
	Surface string
	Tag     string
}

// TagRangeScore is a weight array attached to the end of a character
// range, used by the tag scorer's dictionary-style per-token lookup
// (spec §4.9).
type TagRangeScore struct {
	Weight           []int32
	StartRelPosition int16
}

// TagScores holds the tag scorer's per-character accumulators. Left
// and Right are flat n_chars*n_tags arrays; Self holds, for each
// character, the list of TagRangeScore entries whose range ends at
// that character (nil when none).
type TagScores struct {
	Left  []int32
	Right []int32
	Self  [][]TagRangeScore
}

// Init resizes the three arrays for nChars characters and nTags tag
// classes, reusing existing backing storage when large enough.
func (ts *TagScores) Init(nChars, nTags int) {
	ts.Left = resizeInt32(ts.Left, nChars*nTags)
	ts.Right = resizeInt32(ts.Right, nChars*nTags)
	if cap(ts.Self) < nChars {
		ts.Self = make([][]TagRangeScore, nChars)
	} else {
		ts.Self = ts.Self[:nChars]
		for i := range ts.Self {
			ts.Self[i] = nil
		}
	}
}

func (ts *TagScores) clear() {
	ts.Left = ts.Left[:0]
	ts.Right = ts.Right[:0]
	ts.Self = ts.Self[:0]
}

func resizeInt32(s []int32, n int) []int32 {
	if cap(s) < n {
		return make([]int32, n)
	}
	s = s[:n]
	for i := range s {
		s[i] = 0
	}
	return s
}

// Sentence is a text buffer with boundary annotations. The zero value
// is not ready for use; construct one with FromRaw, FromTokenized or
// FromPartialAnnotation.
type Sentence struct {
	text       string
	charToByte []int32 // len = NumChars()+1, byte offset of the start of each char plus len(text)
	byteToChar []int32 // len = len(text)+1, char index at each char-start byte offset
	charTypes  []chartype.Type
	boundaries []Boundary // len = NumChars()-1

	// tags is the flat array spec §3 describes: length
	// NumChars()*nTagDims, tags[i*nTagDims+k] holds the k-th tag
	// dimension of the token whose last codepoint is i ("" means no
	// tag for that dimension). Text-format parsing only ever produces
	// one dimension; EnsureTagDimensions grows it for multi-dimension
	// tagging (spec §4.9's "for each tag dimension t").
	tags     []string
	nTagDims int

	boundaryScores []int32
	tagScores      TagScores
}

func (s *Sentence) clear() {
	s.text = " "
	s.charToByte = []int32{0, 1}
	s.byteToChar = []int32{0, 1}
	s.charTypes = []chartype.Type{chartype.Other}
	s.boundaries = nil
	s.tags = []string{""}
	s.nTagDims = 1
	s.boundaryScores = nil
	s.tagScores.clear()
}

func (s *Sentence) updateCommonInfo() {
	s.charToByte = s.charToByte[:0]
	s.charTypes = s.charTypes[:0]
	s.charToByte = append(s.charToByte, 0)
	pos := 0
	for _, r := range s.text {
		pos += utf8.RuneLen(r)
		s.charToByte = append(s.charToByte, int32(pos))
		s.charTypes = append(s.charTypes, chartype.Of(r))
	}
	if cap(s.byteToChar) < len(s.text)+1 {
		s.byteToChar = make([]int32, len(s.text)+1)
	} else {
		s.byteToChar = s.byteToChar[:len(s.text)+1]
		for i := range s.byteToChar {
			s.byteToChar[i] = 0
		}
	}
	for i, j := range s.charToByte {
		s.byteToChar[j] = int32(i)
	}
	s.boundaryScores = s.boundaryScores[:0]
	s.tagScores.clear()
}

// NumChars returns the number of characters (code points) the
// sentence currently holds.
func (s *Sentence) NumChars() int {
	return len(s.charToByte) - 1
}

// RawString returns the unannotated text.
func (s *Sentence) RawString() string {
	return s.text
}

// RuneAt decodes the i-th character. Callers that only need the
// character type should prefer CharTypes, which is precomputed.
func (s *Sentence) RuneAt(i int) rune {
	r, _ := utf8.DecodeRuneInString(s.text[s.charToByte[i]:])
	return r
}

// CharToByte returns the byte offset of the start of each character,
// with one trailing entry equal to len(RawString()).
func (s *Sentence) CharToByte() []int32 {
	return s.charToByte
}

// ByteToChar returns, at every char-start byte offset, the
// corresponding character index. Offsets that fall inside a
// multi-byte character hold 0 and must not be used directly; callers
// should use CharPosForBytePos, which validates the offset.
func (s *Sentence) ByteToChar() []int32 {
	return s.byteToChar
}

// CharPosForBytePos converts a byte offset into RawString() to a
// character index, failing if the offset does not fall on a
// character boundary (other than the implicit 0).
func (s *Sentence) CharPosForBytePos(index int) (int, error) {
	if index == 0 {
		return 0, nil
	}
	if index < 0 || index >= len(s.byteToChar) {
		return 0, vaporettoerr.New(vaporettoerr.InvalidArgument, "index: invalid index")
	}
	c := s.byteToChar[index]
	if c == 0 {
		return 0, vaporettoerr.New(vaporettoerr.InvalidArgument, "index: invalid index")
	}
	return int(c), nil
}

// Boundaries returns the boundary label between every pair of
// adjacent characters, length NumChars()-1.
func (s *Sentence) Boundaries() []Boundary {
	return s.boundaries
}

// BoundariesMut returns a mutable view of the same slice, used by
// wsconst filters and the predictor to fix labels in place.
func (s *Sentence) BoundariesMut() []Boundary {
	return s.boundaries
}

// CharTypes returns the character-type classification of every
// character, length NumChars().
func (s *Sentence) CharTypes() []chartype.Type {
	return s.charTypes
}

// NumTagDimensions returns how many tag dimensions the sentence's flat
// tags array currently holds (spec §3's n_tag_classes), at least 1.
func (s *Sentence) NumTagDimensions() int {
	return s.nTagDims
}

// EnsureTagDimensions resizes the flat tags array to hold n tag
// dimensions per character, preserving the existing values of every
// dimension below min(old, n) (always including dimension 0, the tag
// the text-format parsers fill in), filling newly added dimensions
// with "" and dropping dimensions at or above n. A no-op when n
// already matches.
func (s *Sentence) EnsureTagDimensions(n int) {
	if n < 1 {
		n = 1
	}
	if n == s.nTagDims {
		return
	}
	nChars := s.NumChars()
	newTags := make([]string, nChars*n)
	keep := s.nTagDims
	if n < keep {
		keep = n
	}
	for i := 0; i < nChars; i++ {
		for k := 0; k < keep; k++ {
			newTags[i*n+k] = s.tags[i*s.nTagDims+k]
		}
	}
	s.tags = newTags
	s.nTagDims = n
}

// Tags materializes the dim-th tag dimension as one entry per
// character index, aligned so that the returned slice's i-th entry is
// the tag of the token that Boundaries()[i] closes, with the final
// entry belonging to the trailing token (spec §3: tags[i*n_tag_classes+dim]).
func (s *Sentence) Tags(dim int) []string {
	out := make([]string, s.NumChars())
	for i := range out {
		out[i] = s.tags[i*s.nTagDims+dim]
	}
	return out
}

// TagAt returns the dim-th tag dimension of the token whose last
// codepoint is character index i.
func (s *Sentence) TagAt(i, dim int) string {
	return s.tags[i*s.nTagDims+dim]
}

// SetTagAt sets the dim-th tag dimension of the token whose last
// codepoint is character index i. Callers writing a whole dimension
// (the tagger's FillTags) call this once per token rather than
// through a shared mutable slice, since dimensions are interleaved in
// the backing array.
func (s *Sentence) SetTagAt(i, dim int, tag string) {
	s.tags[i*s.nTagDims+dim] = tag
}

// BoundaryScores returns the boundary scorer's accumulator, sized and
// filled by the predictor package; empty until a prediction has run.
func (s *Sentence) BoundaryScores() []int32 {
	return s.boundaryScores
}

// EnsureBoundaryScores (re)sizes the boundary-score accumulator to
// NumChars()-1 cells plus padding cells on each side and zeroes it,
// reusing backing storage across predictions on the same Sentence.
func (s *Sentence) EnsureBoundaryScores(padding int) []int32 {
	need := s.NumChars() - 1 + 2*padding
	if need < 0 {
		need = 0
	}
	s.boundaryScores = resizeInt32(s.boundaryScores, need)
	return s.boundaryScores
}

// TagScores returns the tag scorer's scratch accumulator for mutation
// in place.
func (s *Sentence) TagScores() *TagScores {
	return &s.tagScores
}

// FromRaw parses text with no annotation at all.
func FromRaw(text string) (*Sentence, error) {
	s := &Sentence{}
	if err := s.UpdateRaw(text); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateRaw replaces the sentence's contents with text, with no
// annotation at all. On error the sentence is reset to a single
// space, mirroring the teacher's recovery-to-known-state convention.
func (s *Sentence) UpdateRaw(text string) error {
	boundaries, tags, err := parseRawText(text)
	if err != nil {
		s.clear()
		return err
	}
	s.text = text
	s.boundaries = boundaries
	s.tags = tags
	s.nTagDims = 1
	s.updateCommonInfo()
	return nil
}

func parseRawText(text string) ([]Boundary, []string, error) {
	if len(text) == 0 {
		return nil, nil, vaporettoerr.New(vaporettoerr.InvalidArgument, "raw_text: must contain at least one character")
	}
	n := 0
	for _, r := range text {
		if r == 0 {
			return nil, nil, vaporettoerr.New(vaporettoerr.InvalidArgument, "raw_text: must not contain NULL")
		}
		n++
	}
	var boundaries []Boundary
	if n > 1 {
		boundaries = make([]Boundary, n-1)
		for i := range boundaries {
			boundaries[i] = Unknown
		}
	}
	return boundaries, make([]string, n), nil
}

// FromTokenized parses a tokenized text: ' ' marks a token boundary,
// '/' introduces a trailing tag, '\\' escapes the following
// character.
func FromTokenized(text string) (*Sentence, error) {
	s := &Sentence{}
	if err := s.UpdateTokenized(text); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateTokenized replaces the sentence's contents by parsing a
// tokenized text. On error the sentence is reset to a single space.
func (s *Sentence) UpdateTokenized(text string) error {
	surface, boundaries, tags, err := parseTokenizedText(text)
	if err != nil {
		s.clear()
		return err
	}
	s.text = surface
	s.boundaries = boundaries
	s.tags = tags
	s.nTagDims = 1
	s.updateCommonInfo()
	return nil
}

func parseTokenizedText(text string) (string, []Boundary, []string, error) {
	if len(text) == 0 {
		return "", nil, nil, vaporettoerr.New(vaporettoerr.InvalidArgument, "tokenized_text: must contain at least one character")
	}

	var surface strings.Builder
	surface.Grow(len(text))
	var boundaries []Boundary
	var tags []string

	var tagStrTmp *string
	var tagStr *string
	prevBoundary := false
	escape := false
	numChars := 0

	for _, c := range text {
		switch {
		case !escape && c == '\\':
			escape = true

		case !escape && c == ' ':
			if numChars == 0 {
				return "", nil, nil, vaporettoerr.New(vaporettoerr.InvalidArgument, "tokenized_text: must not start with a whitespace")
			}
			if prevBoundary {
				return "", nil, nil, vaporettoerr.New(vaporettoerr.InvalidArgument, "tokenized_text: must not contain consecutive whitespaces")
			}
			prevBoundary = true
			tagStr = tagStrTmp
			tagStrTmp = nil

		case !escape && c == '/':
			if numChars == 0 {
				return "", nil, nil, vaporettoerr.New(vaporettoerr.InvalidArgument, "tokenized_text: must not start with a slash")
			}
			if prevBoundary {
				return "", nil, nil, vaporettoerr.New(vaporettoerr.InvalidArgument, "tokenized_text: a slash must follow a character")
			}
			empty := ""
			tagStrTmp = &empty

		default:
			// escaped character, or any other character
			if tagStrTmp != nil {
				*tagStrTmp += string(c)
				continue
			}
			if numChars > 0 {
				if prevBoundary {
					boundaries = append(boundaries, WordBoundary)
				} else {
					boundaries = append(boundaries, NotWordBoundary)
				}
				if tagStr != nil {
					tags = append(tags, *tagStr)
				} else {
					tags = append(tags, "")
				}
				tagStr = nil
			}
			if c == 0 {
				return "", nil, nil, vaporettoerr.New(vaporettoerr.InvalidArgument, "tokenized_text: must not contain NULL")
			}
			prevBoundary = false
			escape = false
			surface.WriteRune(c)
			numChars++
		}
	}

	if prevBoundary {
		return "", nil, nil, vaporettoerr.New(vaporettoerr.InvalidArgument, "tokenized_text: must not end with a whitespace")
	}
	if tagStrTmp != nil {
		tags = append(tags, *tagStrTmp)
	} else {
		tags = append(tags, "")
	}

	return surface.String(), boundaries, tags, nil
}

// FromPartialAnnotation parses a partially-annotated text: even
// (0-based) positions hold a character, odd positions hold a boundary
// marker ('|' word boundary, '-' not a word boundary, ' ' unknown),
// and '/' right after a character introduces a tag for the token that
// ends there; the tag must be followed by '|' or the end of the text.
func FromPartialAnnotation(text string) (*Sentence, error) {
	s := &Sentence{}
	if err := s.UpdatePartialAnnotation(text); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdatePartialAnnotation replaces the sentence's contents by parsing
// a partially-annotated text. On error the sentence is reset to a
// single space.
func (s *Sentence) UpdatePartialAnnotation(text string) error {
	surface, boundaries, tags, err := parsePartialAnnotation(text)
	if err != nil {
		s.clear()
		return err
	}
	s.text = surface
	s.boundaries = boundaries
	s.tags = tags
	s.nTagDims = 1
	s.updateCommonInfo()
	return nil
}

func parsePartialAnnotation(text string) (string, []Boundary, []string, error) {
	if len(text) == 0 {
		return "", nil, nil, vaporettoerr.New(vaporettoerr.InvalidArgument, "labeled_text: must contain at least one character")
	}

	var surface strings.Builder
	surface.Grow(len(text))
	var boundaries []Boundary
	var tags []string

	var tagStr *string
	isChar := true
	fixedToken := true
	numChars := 0

	for _, c := range text {
		if isChar {
			if c == 0 {
				return "", nil, nil, vaporettoerr.New(vaporettoerr.InvalidArgument, "labeled_text: must not contain NULL")
			}
			surface.WriteRune(c)
			numChars++
			isChar = false
			continue
		}
		switch c {
		case ' ':
			if tagStr != nil {
				return "", nil, nil, vaporettoerr.New(vaporettoerr.InvalidArgument, "labeled_text: POS tag must be annotated to a token")
			}
			tags = append(tags, "")
			boundaries = append(boundaries, Unknown)
			isChar = true
			fixedToken = false

		case '|':
			if !fixedToken && tagStr != nil {
				return "", nil, nil, vaporettoerr.New(vaporettoerr.InvalidArgument, "labeled_text: POS tag must be annotated to a token")
			}
			if tagStr != nil {
				tags = append(tags, *tagStr)
			} else {
				tags = append(tags, "")
			}
			tagStr = nil
			boundaries = append(boundaries, WordBoundary)
			isChar = true
			fixedToken = true

		case '-':
			if tagStr != nil {
				return "", nil, nil, vaporettoerr.New(vaporettoerr.InvalidArgument, "labeled_text: POS tag must be annotated to a token")
			}
			tags = append(tags, "")
			boundaries = append(boundaries, NotWordBoundary)
			isChar = true

		case '/':
			empty := ""
			tagStr = &empty

		default:
			if tagStr != nil {
				*tagStr += string(c)
			} else {
				return "", nil, nil, vaporettoerr.New(vaporettoerr.InvalidArgument, "labeled_text: contains an invalid boundary character: '%c'", c)
			}
		}
	}
	if tagStr != nil {
		tags = append(tags, *tagStr)
	} else {
		tags = append(tags, "")
	}
	if numChars != len(boundaries)+1 {
		return "", nil, nil, vaporettoerr.New(vaporettoerr.InvalidArgument, "labeled_text: invalid annotation")
	}

	return surface.String(), boundaries, tags, nil
}

func needsTokenizedEscape(r rune) bool {
	return r == '\\' || r == '/' || r == '&' || r == ' '
}

// WriteTokenizedString renders the sentence as tokenized text into
// buf, failing if any boundary is still Unknown.
func (s *Sentence) WriteTokenizedString(buf *strings.Builder) error {
	buf.Reset()
	charIdx := 0
	for _, r := range s.text {
		if charIdx == 0 {
			if needsTokenizedEscape(r) {
				buf.WriteByte('\\')
			}
			buf.WriteRune(r)
			charIdx++
			continue
		}
		switch s.boundaries[charIdx-1] {
		case WordBoundary:
			if tag := s.TagAt(charIdx-1, 0); tag != "" {
				buf.WriteByte('/')
				buf.WriteString(tag)
			}
			buf.WriteByte(' ')
		case NotWordBoundary:
		case Unknown:
			return vaporettoerr.New(vaporettoerr.InvalidSentence, "contains an unknown boundary")
		}
		if needsTokenizedEscape(r) {
			buf.WriteByte('\\')
		}
		buf.WriteRune(r)
		charIdx++
	}
	if tag := s.TagAt(s.NumChars()-1, 0); tag != "" {
		buf.WriteByte('/')
		buf.WriteString(tag)
	}
	return nil
}

// TokenizedString renders the sentence as tokenized text, failing if
// any boundary is still Unknown.
func (s *Sentence) TokenizedString() (string, error) {
	var b strings.Builder
	b.Grow(len(s.text)*2 - 1)
	if err := s.WriteTokenizedString(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Tokens splits the sentence into its tokens, failing if any boundary
// is still Unknown.
func (s *Sentence) Tokens() ([]Token, error) {
	var result []Token
	start := 0
	for i, b := range s.boundaries {
		switch b {
		case WordBoundary:
			end := int(s.charToByte[i+1])
			result = append(result, Token{Surface: s.text[start:end], Tag: s.TagAt(i, 0)})
			start = end
		case NotWordBoundary:
		case Unknown:
			return nil, vaporettoerr.New(vaporettoerr.InvalidSentence, "contains an unknown boundary")
		}
	}
	result = append(result, Token{Surface: s.text[start:], Tag: s.TagAt(s.NumChars()-1, 0)})
	return result, nil
}

// WritePartialAnnotationString renders the sentence as
// partial-annotation text into buf. Unlike WriteTokenizedString this
// never fails: Unknown boundaries round-trip as a plain space.
func (s *Sentence) WritePartialAnnotationString(buf *strings.Builder) {
	buf.Reset()
	charIdx := 0
	for _, r := range s.text {
		if charIdx == 0 {
			buf.WriteRune(r)
			charIdx++
			continue
		}
		switch s.boundaries[charIdx-1] {
		case WordBoundary:
			if tag := s.TagAt(charIdx-1, 0); tag != "" {
				buf.WriteByte('/')
				buf.WriteString(tag)
			}
			buf.WriteByte('|')
		case NotWordBoundary:
			buf.WriteByte('-')
		case Unknown:
			buf.WriteByte(' ')
		}
		buf.WriteRune(r)
		charIdx++
	}
	if tag := s.TagAt(s.NumChars()-1, 0); tag != "" {
		buf.WriteByte('/')
		buf.WriteString(tag)
	}
}

// PartialAnnotationString renders the sentence as partial-annotation
// text.
func (s *Sentence) PartialAnnotationString() string {
	var b strings.Builder
	b.Grow(len(s.text)*2 - 1)
	s.WritePartialAnnotationString(&b)
	return b.String()
}

// String implements fmt.Stringer for debugging; it is not one of the
// three wire formats.
func (s *Sentence) String() string {
	return fmt.Sprintf("Sentence(%q)", s.text)
}
