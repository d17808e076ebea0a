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

// Package chartype classifies codepoints into the six coarse script
// classes the scoring engine uses as its secondary feature alphabet.
package chartype

// Type is a character's coarse script class. The numeric values are
// part of the model's on-wire format (spec §6) and must not change.
type Type byte

const (
	// Digit covers ASCII and full-width digits.
	Digit Type = 1

	// Roman covers ASCII and full-width Latin letters.
	Roman Type = 2

	// Hiragana covers the Hiragana block.
	Hiragana Type = 3

	// Katakana covers the Katakana block and half-width Katakana.
	Katakana Type = 4

	// Kanji covers CJK ideograph blocks, including the extension
	// planes and compatibility ideographs.
	Kanji Type = 5

	// Other is every codepoint not covered by the above.
	Other Type = 6
)

func (t Type) String() string {
	switch t {
	case Digit:
		return "Digit"
	case Roman:
		return "Roman"
	case Hiragana:
		return "Hiragana"
	case Katakana:
		return "Katakana"
	case Kanji:
		return "Kanji"
	case Other:
		return "Other"
	default:
		return "Invalid"
	}
}

// Of classifies a single codepoint. The ranges mirror spec §4.2
// exactly; rune values outside all listed ranges are Other.
func Of(r rune) Type {
	switch {
	case r >= 0x30 && r <= 0x39, r >= 0xFF10 && r <= 0xFF19:
		return Digit
	case r >= 0x41 && r <= 0x5A,
		r >= 0x61 && r <= 0x7A,
		r >= 0xFF21 && r <= 0xFF3A,
		r >= 0xFF41 && r <= 0xFF5A:
		return Roman
	case r >= 0x3040 && r <= 0x3096:
		return Hiragana
	case r >= 0x30A0 && r <= 0x30FA,
		r >= 0x30FC && r <= 0x30FF,
		r >= 0xFF66 && r <= 0xFF9F:
		return Katakana
	case r >= 0x3400 && r <= 0x4DBF,
		r >= 0x4E00 && r <= 0x9FFF,
		r >= 0xF900 && r <= 0xFAFF,
		r >= 0x20000 && r <= 0x2A6DF,
		r >= 0x2A700 && r <= 0x2B73F,
		r >= 0x2B740 && r <= 0x2B81F,
		r >= 0x2B820 && r <= 0x2CEAF,
		r >= 0x2F800 && r <= 0x2FA1F:
		return Kanji
	default:
		return Other
	}
}
