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

// Package model implements the trained-model value object and its
// binary codec (C9, spec §4.10): a flat, versioned, little-endian
// layout covering the character and character-type n-gram tables, the
// dictionary table, the bias/window sizes and the optional per-tag-
// dimension tables the tagger package consumes.
package model

import (
	"bufio"
	"encoding/binary"
	"io"
	"unicode/utf8"

	"github.com/kobun-nlp/vaporetto/scorer"
	"github.com/kobun-nlp/vaporetto/tagger"
	"github.com/kobun-nlp/vaporetto/vaporettoerr"
)

// magic identifies a vaporetto model file; version allows the layout
// to evolve without breaking older readers outright (an unknown
// version is rejected rather than guessed at).
const (
	magic   uint32 = 0x564f5254 // "VORT"
	version uint32 = 1
)

// maxWordChars bounds dictionary word length, per spec §7
// (InvalidModel: "word longer than 32,767 codepoints").
const maxWordChars = 32767

// TagTable is one tag dimension's trained tables, as read from or
// written to the model file.
type TagTable struct {
	Classes []tagger.ClassModel
	Self    []tagger.SelfEntry
}

// Model is the full trained-model value object (spec §3 "Model").
type Model struct {
	CharWindowSize int
	TypeWindowSize int
	Bias           int32
	QuantizeMultiplier float64

	CharNgrams []scorer.NgramEntry
	TypeNgrams []scorer.NgramEntry
	Dict       []scorer.DictEntry

	// TagWindowSize is the left/right context window shared by every
	// tag dimension's contextual n-grams (spec §4.9); zero when Tags
	// is empty.
	TagWindowSize int
	Tags          []TagTable
}

// Write serializes m to w, little-endian: magic, version, the two
// window sizes (one byte each), bias, quantize multiplier, then the
// char n-gram, type n-gram and dictionary tables, then the tag
// dimension count, the tag window size (only when there are tag
// dimensions) and each tag table. Every variable-length field is a u32
// length immediately followed by its data; length prefixes are not
// grouped ahead of an entry's data. A tag table is stored class by
// class (name, bias, left n-gram table, right n-gram table), followed
// by its self-feature table.
func (m *Model) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := writeU32(bw, magic); err != nil {
		return err
	}
	if err := writeU32(bw, version); err != nil {
		return err
	}
	if err := bw.WriteByte(byte(m.CharWindowSize)); err != nil {
		return vaporettoerr.Wrap(vaporettoerr.Io, err, "writing char window size")
	}
	if err := bw.WriteByte(byte(m.TypeWindowSize)); err != nil {
		return vaporettoerr.Wrap(vaporettoerr.Io, err, "writing type window size")
	}
	if err := writeI32(bw, m.Bias); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, m.QuantizeMultiplier); err != nil {
		return vaporettoerr.Wrap(vaporettoerr.Io, err, "writing quantize multiplier")
	}

	if err := writeNgramTable(bw, m.CharNgrams); err != nil {
		return err
	}
	if err := writeNgramTable(bw, m.TypeNgrams); err != nil {
		return err
	}
	if err := writeDictTable(bw, m.Dict); err != nil {
		return err
	}

	if err := writeU32(bw, uint32(len(m.Tags))); err != nil {
		return err
	}
	if len(m.Tags) > 0 {
		if err := bw.WriteByte(byte(m.TagWindowSize)); err != nil {
			return vaporettoerr.Wrap(vaporettoerr.Io, err, "writing tag window size")
		}
	}
	for _, tt := range m.Tags {
		if err := writeTagTable(bw, tt); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return vaporettoerr.Wrap(vaporettoerr.Io, err, "flushing model")
	}
	return nil
}

// Read deserializes a Model from r.
func Read(r io.Reader) (*Model, error) {
	br := bufio.NewReader(r)

	gotMagic, err := readU32(br)
	if err != nil {
		return nil, err
	}
	if gotMagic != magic {
		return nil, vaporettoerr.New(vaporettoerr.InvalidModel, "not a vaporetto model file (bad magic)")
	}
	gotVersion, err := readU32(br)
	if err != nil {
		return nil, err
	}
	if gotVersion != version {
		return nil, vaporettoerr.New(vaporettoerr.InvalidModel, "unsupported model version %d", gotVersion)
	}

	m := &Model{}
	cw, err := br.ReadByte()
	if err != nil {
		return nil, vaporettoerr.Wrap(vaporettoerr.Io, err, "reading char window size")
	}
	m.CharWindowSize = int(cw)
	tw, err := br.ReadByte()
	if err != nil {
		return nil, vaporettoerr.Wrap(vaporettoerr.Io, err, "reading type window size")
	}
	m.TypeWindowSize = int(tw)

	if m.Bias, err = readI32(br); err != nil {
		return nil, err
	}
	if err := binary.Read(br, binary.LittleEndian, &m.QuantizeMultiplier); err != nil {
		return nil, vaporettoerr.Wrap(vaporettoerr.Io, err, "reading quantize multiplier")
	}

	if m.CharNgrams, err = readNgramTable(br, true); err != nil {
		return nil, err
	}
	if m.TypeNgrams, err = readNgramTable(br, false); err != nil {
		return nil, err
	}
	if m.Dict, err = readDictTable(br); err != nil {
		return nil, err
	}

	nTagDims, err := readU32(br)
	if err != nil {
		return nil, err
	}
	if nTagDims > 0 {
		wsz, err := br.ReadByte()
		if err != nil {
			return nil, vaporettoerr.Wrap(vaporettoerr.Io, err, "reading tag window size")
		}
		m.TagWindowSize = int(wsz)
	}
	for i := uint32(0); i < nTagDims; i++ {
		tt, err := readTagTable(br)
		if err != nil {
			return nil, err
		}
		m.Tags = append(m.Tags, tt)
	}
	return m, nil
}

func writeU32(w io.Writer, v uint32) error {
	if err := binary.Write(w, binary.LittleEndian, v); err != nil {
		return vaporettoerr.Wrap(vaporettoerr.Io, err, "writing u32")
	}
	return nil
}

func writeI32(w io.Writer, v int32) error {
	if err := binary.Write(w, binary.LittleEndian, v); err != nil {
		return vaporettoerr.Wrap(vaporettoerr.Io, err, "writing i32")
	}
	return nil
}

func readU32(r io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, vaporettoerr.Wrap(vaporettoerr.Io, err, "reading u32")
	}
	return v, nil
}

func readI32(r io.Reader) (int32, error) {
	var v int32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, vaporettoerr.Wrap(vaporettoerr.Io, err, "reading i32")
	}
	return v, nil
}

func writeBytes(w io.Writer, b []byte) error {
	if err := writeU32(w, uint32(len(b))); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	if _, err := w.Write(b); err != nil {
		return vaporettoerr.Wrap(vaporettoerr.Io, err, "writing byte section")
	}
	return nil
}

func readBytes(r io.Reader) ([]byte, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, vaporettoerr.Wrap(vaporettoerr.Io, err, "reading byte section")
	}
	return buf, nil
}

func writeI32s(w io.Writer, v []int32) error {
	if err := writeU32(w, uint32(len(v))); err != nil {
		return err
	}
	for _, x := range v {
		if err := writeI32(w, x); err != nil {
			return err
		}
	}
	return nil
}

func readI32s(r io.Reader) ([]int32, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]int32, n)
	for i := range out {
		if out[i], err = readI32(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeNgramTable(w io.Writer, entries []scorer.NgramEntry) error {
	if err := writeU32(w, uint32(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writeBytes(w, []byte(e.Key)); err != nil {
			return err
		}
		if err := writeI32s(w, e.Weights); err != nil {
			return err
		}
	}
	return nil
}

func readNgramTable(r io.Reader, utf8Key bool) ([]scorer.NgramEntry, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]scorer.NgramEntry, n)
	for i := range out {
		key, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		if utf8Key && !isValidUTF8(key) {
			return nil, vaporettoerr.New(vaporettoerr.CharsetOverflow, "character n-gram key is not valid UTF-8")
		}
		w, err := readI32s(r)
		if err != nil {
			return nil, err
		}
		out[i] = scorer.NgramEntry{Key: string(key), Weights: w}
	}
	return out, nil
}

func writeDictTable(w io.Writer, entries []scorer.DictEntry) error {
	if err := writeU32(w, uint32(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writeBytes(w, []byte(e.Word)); err != nil {
			return err
		}
		if err := writeBytes(w, nil); err != nil { // comment, unused here
			return err
		}
		if err := writeI32(w, e.Right); err != nil {
			return err
		}
		if err := writeI32(w, e.Inside); err != nil {
			return err
		}
		if err := writeI32(w, e.Left); err != nil {
			return err
		}
	}
	return nil
}

func readDictTable(r io.Reader) ([]scorer.DictEntry, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]scorer.DictEntry, n)
	for i := range out {
		word, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		if !isValidUTF8(word) {
			return nil, vaporettoerr.New(vaporettoerr.CharsetOverflow, "dictionary word is not valid UTF-8")
		}
		if runeLen(word) > maxWordChars {
			return nil, vaporettoerr.New(vaporettoerr.InvalidModel, "dictionary word %q exceeds %d codepoints", word, maxWordChars)
		}
		if _, err := readBytes(r); err != nil { // comment, discarded
			return nil, err
		}
		right, err := readI32(r)
		if err != nil {
			return nil, err
		}
		inside, err := readI32(r)
		if err != nil {
			return nil, err
		}
		left, err := readI32(r)
		if err != nil {
			return nil, err
		}
		out[i] = scorer.DictEntry{Word: string(word), Right: right, Inside: inside, Left: left}
	}
	return out, nil
}

func writeTagTable(w io.Writer, tt TagTable) error {
	if err := writeU32(w, uint32(len(tt.Classes))); err != nil {
		return err
	}
	for _, c := range tt.Classes {
		if err := writeBytes(w, []byte(c.Name)); err != nil {
			return err
		}
		if err := writeI32(w, c.Bias); err != nil {
			return err
		}
		if err := writeNgramTable(w, c.Left); err != nil {
			return err
		}
		if err := writeNgramTable(w, c.Right); err != nil {
			return err
		}
	}
	if err := writeU32(w, uint32(len(tt.Self))); err != nil {
		return err
	}
	for _, s := range tt.Self {
		if err := writeBytes(w, []byte(s.Key)); err != nil {
			return err
		}
		if err := writeI32s(w, s.Weights); err != nil {
			return err
		}
	}
	return nil
}

func readTagTable(r io.Reader) (TagTable, error) {
	var tt TagTable
	n, err := readU32(r)
	if err != nil {
		return tt, err
	}
	if n > 0 {
		tt.Classes = make([]tagger.ClassModel, n)
	}
	for i := range tt.Classes {
		name, err := readBytes(r)
		if err != nil {
			return tt, err
		}
		bias, err := readI32(r)
		if err != nil {
			return tt, err
		}
		left, err := readNgramTable(r, true)
		if err != nil {
			return tt, err
		}
		right, err := readNgramTable(r, true)
		if err != nil {
			return tt, err
		}
		tt.Classes[i] = tagger.ClassModel{Name: string(name), Bias: bias, Left: left, Right: right}
	}
	nSelf, err := readU32(r)
	if err != nil {
		return tt, err
	}
	if nSelf > 0 {
		tt.Self = make([]tagger.SelfEntry, nSelf)
	}
	for i := range tt.Self {
		key, err := readBytes(r)
		if err != nil {
			return tt, err
		}
		w, err := readI32s(r)
		if err != nil {
			return tt, err
		}
		tt.Self[i] = tagger.SelfEntry{Key: string(key), Weights: w}
	}
	return tt, nil
}

func isValidUTF8(b []byte) bool {
	return utf8.Valid(b)
}

func runeLen(b []byte) int {
	return utf8.RuneCount(b)
}
