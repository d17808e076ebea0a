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

package model

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kobun-nlp/vaporetto/scorer"
	"github.com/kobun-nlp/vaporetto/tagger"
)

func TestWriteReadRoundTrip(t *testing.T) {
	m := &Model{
		CharWindowSize:     3,
		TypeWindowSize:     2,
		Bias:               -5,
		QuantizeMultiplier: 0.015625,
		CharNgrams: []scorer.NgramEntry{
			{Key: "ab", Weights: []int32{1, 2, 3}},
		},
		TypeNgrams: []scorer.NgramEntry{
			{Key: string([]byte{3, 4}), Weights: []int32{9, 8, 7, 6}},
		},
		Dict: []scorer.DictEntry{
			{Word: "cat", Right: 1, Inside: 2, Left: 3},
		},
		TagWindowSize: 1,
		Tags: []TagTable{
			{
				Classes: []tagger.ClassModel{
					{Name: "NOUN", Bias: 10, Left: []scorer.NgramEntry{{Key: "x", Weights: []int32{1}}}},
					{Name: "VERB", Bias: -10},
				},
				Self: []tagger.SelfEntry{
					{Key: "run", Weights: []int32{0, 100}},
				},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestReadRejectsBadMagic(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte{1, 2, 3, 4}))
	assert.Error(t, err)
}

func TestReadRejectsTruncated(t *testing.T) {
	m := &Model{CharWindowSize: 1, TypeWindowSize: 1}
	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))
	truncated := buf.Bytes()[:buf.Len()-2]
	_, err := Read(bytes.NewReader(truncated))
	assert.Error(t, err)
}
