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

// Package merge implements the weight merger of spec §4.3: given a
// list of (key, PositionalWeight) pairs, some keys possibly repeated,
// it produces an injective list whose weights already fold in the
// contribution of every proper suffix present in the same key set.
// This lets the automaton (package automaton) report only the longest
// match ending at a position while still reproducing the sum every
// matching suffix would have contributed under full overlapping scan.
package merge

import (
	"github.com/czcorpus/cnc-gokit/collections"

	"github.com/kobun-nlp/vaporetto/pweight"
)

// Symbol is the alphabet constraint shared with package automaton:
// n-gram keys are either codepoints (rune) or character-type codes
// (byte).
type Symbol interface {
	~byte | ~rune
}

// Entry pairs a pattern key with its own (pre-merge) positional
// weight contribution.
type Entry[K Symbol] struct {
	Key    []K
	Weight pweight.Positional
}

func keyString[K Symbol](key []K) string {
	runes := make([]rune, len(key))
	for i, k := range key {
		runes[i] = rune(k)
	}
	return string(runes)
}

// sortableEntry adapts a key string for cnc-gokit's sorted container,
// used here exactly as the teacher's own cmd/udex/udex.go uses it: to
// obtain a deterministic sorted-unique ordering over a key set before
// a following data-dependent pass.
type sortableEntry struct {
	key string
	idx int
}

func (e *sortableEntry) Compare(other collections.Comparable) int {
	o := other.(*sortableEntry)
	switch {
	case e.key < o.key:
		return -1
	case e.key > o.key:
		return 1
	default:
		return 0
	}
}

// Merge combines entries sharing a key (by summing their weights) and
// then folds each entry's longest present proper suffix into it,
// transitively, so the result only needs the single longest match the
// automaton reports at each position to reproduce the full
// overlapping-scan sum.
func Merge[K Symbol](entries []Entry[K]) []Entry[K] {
	if len(entries) == 0 {
		return nil
	}

	byKey := make(map[string]int, len(entries))
	var combined []Entry[K]
	var keys []string
	for _, e := range entries {
		ks := keyString(e.Key)
		if idx, ok := byKey[ks]; ok {
			combined[idx].Weight = pweight.Merge(combined[idx].Weight, e.Weight)
			continue
		}
		byKey[ks] = len(combined)
		combined = append(combined, e)
		keys = append(keys, ks)
	}

	tree := new(collections.BinTree[*sortableEntry])
	tree.UniqValues = true
	for i, ks := range keys {
		tree.Add(&sortableEntry{key: ks, idx: i})
	}
	order := tree.ToSlice()

	done := make([]bool, len(combined))
	weight := make([]pweight.Positional, len(combined))

	var resolve func(i int)
	resolve = func(i int) {
		// Explicit stack (arena-index based, per spec §9 design
		// note) rather than naive recursion, so the closure for a
		// long suffix chain cannot grow the Go call stack.
		stack := []int{i}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			if done[cur] {
				stack = stack[:len(stack)-1]
				continue
			}
			sufIdx, ok := longestSuffixIndex(keys[cur], byKey)
			if !ok {
				weight[cur] = combined[cur].Weight
				done[cur] = true
				stack = stack[:len(stack)-1]
				continue
			}
			if !done[sufIdx] {
				stack = append(stack, sufIdx)
				continue
			}
			weight[cur] = pweight.Merge(combined[cur].Weight, weight[sufIdx])
			done[cur] = true
			stack = stack[:len(stack)-1]
		}
	}

	for _, se := range order {
		if !done[se.idx] {
			resolve(se.idx)
		}
	}

	out := make([]Entry[K], len(combined))
	for i, e := range combined {
		out[i] = Entry[K]{Key: e.Key, Weight: weight[i]}
	}
	return out
}

// longestSuffixIndex finds the longest proper suffix of ks that is
// itself a key in byKey, trying decreasing lengths so the first hit
// is the longest one.
func longestSuffixIndex(ks string, byKey map[string]int) (int, bool) {
	runes := []rune(ks)
	for l := len(runes) - 1; l >= 1; l-- {
		cand := string(runes[len(runes)-l:])
		if idx, ok := byKey[cand]; ok {
			return idx, true
		}
	}
	return 0, false
}
