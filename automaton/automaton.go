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

// Package automaton implements a multi-pattern Aho-Corasick matcher
// over an arbitrary comparable alphabet. Two flavours are used
// elsewhere in this module: Automaton[byte] for the character-type
// alphabet (scorer/type_scorer.go) and Automaton[rune] for
// character n-grams and dictionary words (scorer package) — this
// avoids the UTF-8 state explosion a byte-level automaton would incur
// on multi-byte codepoints.
//
// The transition function is fully precomputed at build time (a
// table-driven goto function, not a literal double-array encoding as
// in the spec's reference implementation): every state has an entry
// for every symbol seen anywhere in the pattern set, so a state
// transition never walks the failure chain at run time; only match
// reporting follows failure links, to find the longest pattern that
// ends at the current position.
package automaton

// Match is reported once per position where some pattern ends, for the
// longest such pattern — see OverlappingNoSuffix.
type Match struct {
	Value int32
	End   int
}

type node[K comparable] struct {
	children map[K]int32 // original trie edges, kept for the build pass
	delta    map[K]int32 // fully resolved goto function
	fail     int32
	isEnd    bool
	value    int32
}

// Automaton is a built, read-only multi-pattern matcher. A value is
// immutable and safe for concurrent use by multiple goroutines, each
// driving the walk over its own input (spec §5).
type Automaton[K comparable] struct {
	nodes []node[K]
}

// Builder accumulates patterns before Build finalizes the automaton.
type Builder[K comparable] struct {
	nodes []node[K]
}

// NewBuilder creates an empty builder, pre-seeded with the root state.
func NewBuilder[K comparable]() *Builder[K] {
	b := &Builder[K]{}
	b.nodes = append(b.nodes, node[K]{children: map[K]int32{}})
	return b
}

// Add inserts a pattern with an associated value id, returned later by
// OverlappingNoSuffix at every position the pattern matches. Add
// returns false if the same key was already inserted (patterns must
// be distinct, per spec §4.4).
func (b *Builder[K]) Add(key []K, value int32) bool {
	cur := int32(0)
	for _, sym := range key {
		next, ok := b.nodes[cur].children[sym]
		if !ok {
			next = int32(len(b.nodes))
			b.nodes = append(b.nodes, node[K]{children: map[K]int32{}})
			b.nodes[cur].children[sym] = next
		}
		cur = next
	}
	if b.nodes[cur].isEnd {
		return false
	}
	b.nodes[cur].isEnd = true
	b.nodes[cur].value = value
	return true
}

// Build computes failure links and the full transition table via one
// breadth-first pass, then freezes the result.
func (b *Builder[K]) Build() *Automaton[K] {
	nodes := b.nodes
	alphabet := map[K]struct{}{}
	for _, n := range nodes {
		for sym := range n.children {
			alphabet[sym] = struct{}{}
		}
	}

	nodes[0].delta = map[K]int32{}
	for sym, child := range nodes[0].children {
		nodes[0].delta[sym] = child
	}
	nodes[0].fail = 0

	queue := make([]int32, 0, len(nodes))
	for _, child := range nodes[0].children {
		nodes[child].fail = 0
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		nodes[u].delta = make(map[K]int32, len(nodes[u].children))
		for sym, child := range nodes[u].children {
			nodes[u].delta[sym] = child
		}

		for sym, child := range nodes[u].children {
			fu := nodes[u].fail
			nodes[child].fail = gotoOf(nodes, fu, sym)
			queue = append(queue, child)
		}

		fu := nodes[u].fail
		for sym := range alphabet {
			if _, ok := nodes[u].children[sym]; !ok {
				nodes[u].delta[sym] = gotoOf(nodes, fu, sym)
			}
		}
	}
	return &Automaton[K]{nodes: nodes}
}

// gotoOf reads the fully-resolved transition of an already-finalized
// node. The caller guarantees fu was processed earlier in BFS order
// (fail links always point to a strictly shallower node), so its
// delta map is complete.
func gotoOf[K comparable](nodes []node[K], state int32, sym K) int32 {
	if d, ok := nodes[state].delta[sym]; ok {
		return d
	}
	return 0
}

// OverlappingNoSuffix walks seq, calling fn once for every position
// where at least one pattern ends, with the longest pattern ending
// there (found by following failure links from the arrival state).
// Per spec §4.4, shorter patterns that are proper suffixes of a longer
// match ending at the same position are not reported separately — the
// weight merger (see package merge) has already folded their
// contribution into the longer pattern's weight, so emitting both
// would double-count.
func (a *Automaton[K]) OverlappingNoSuffix(seq []K, fn func(m Match)) {
	state := int32(0)
	for i, sym := range seq {
		state = gotoOf(a.nodes, state, sym)
		for o := state; o != 0; o = a.nodes[o].fail {
			if a.nodes[o].isEnd {
				fn(Match{Value: a.nodes[o].value, End: i + 1})
				break
			}
		}
	}
}

