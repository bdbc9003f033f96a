// Package dfa implements the optional NFA-to-DFA subset construction of
// spec.md §4.5: states are sorted sets of NFA node ids, and every
// non-epsilon transition kind -- including QuerySetRange, Open, and
// Close -- is carried onto the resulting DFA edges unchanged rather
// than merged with ordinary character classes.
//
// Grounded on the teacher's two DFA strategies (dfa/lazy, dfa/onepass):
// the same builder/cache shape (a Build step that turns an automaton
// into a flat table of states addressed by index) stands in here for
// the teacher's on-the-fly byte-class determinization, using
// internal/sparse.SparseSet for epsilon-closure membership exactly as
// the teacher's dfa/lazy builder uses it for its state sets -- the
// teacher's byte-class/SIMD machinery has no analogue here because
// this automaton's alphabet is code points and structural markers, not
// bytes.
//
// Per spec.md §4.6 and Design Notes §9, the matcher never runs over
// this DFA directly: a QuerySetRange's consumed length depends on the
// query engine, which can only be resolved by attempting the
// transition against live input, so the required backtracking search
// walks the NFA. This package exists because spec.md names it as part
// of the core design and requires that group/query markers survive
// determinization; it is exercised by its own tests against the
// teacher's "same accepted prefix paths" sampling invariant.
package dfa

import (
	"sort"
	"strconv"
	"strings"

	"github.com/coregx/sed/internal/conv"
	"github.com/coregx/sed/internal/sparse"
	"github.com/coregx/sed/nfa"
)

// Edge is one outgoing transition of a DFA State, carrying the same
// label a matching NFA transition would -- including QuerySetRange,
// Open, and Close, per spec.md §4.5's "markers are copied onto DFA
// edges, not collapsed".
type Edge struct {
	Kind       nfa.TransitionKind
	Rune       rune
	Class      string
	GroupIndex int
	Dest       int // index into DFA.States
}

// State is one DFA state: the (sorted, deduplicated) set of NFA node
// ids reached by its epsilon closure, plus the transitions computed by
// grouping that closure's outgoing non-epsilon edges by label.
type State struct {
	NFANodes []nfa.NodeID
	Accept   bool
	Edges    []Edge
}

// DFA is the complete determinized automaton: a flat, growable slice of
// states plus the start state's index.
type DFA struct {
	States []State
	Start  int
}

// Build runs subset construction over n, producing a DFA whose states
// are canonicalized NFA-node-id sets and whose edges preserve every
// non-epsilon transition kind of the source NFA unchanged.
func Build(n *nfa.NFA) *DFA {
	b := &builder{nfa: n, indexOf: make(map[string]int)}
	start := closure(n, []nfa.NodeID{n.Start})
	b.Start = b.stateIndex(start)
	for i := 0; i < len(b.states); i++ {
		b.expand(i)
	}
	return &DFA{States: b.states, Start: b.Start}
}

type builder struct {
	nfa     *nfa.NFA
	states  []State
	indexOf map[string]int
	Start   int
}

// stateIndex returns the index of the DFA state for this exact
// (already-closed, sorted, deduplicated) node set, creating it if this
// is the first time subset construction has reached it.
func (b *builder) stateIndex(nodes []nfa.NodeID) int {
	key := canonicalKey(nodes)
	if idx, ok := b.indexOf[key]; ok {
		return idx
	}
	idx := len(b.states)
	b.indexOf[key] = idx
	b.states = append(b.states, State{
		NFANodes: nodes,
		Accept:   containsAccept(b.nfa, nodes),
	})
	return idx
}

// expand computes state i's outgoing edges by grouping every
// non-epsilon, non-marker-collapsing transition reachable from its
// node set by (kind, label), then epsilon-closing each group's
// destinations into the next state.
func (b *builder) expand(i int) {
	nodes := b.states[i].NFANodes
	type groupKey struct {
		kind       nfa.TransitionKind
		rune_      rune
		class      string
		groupIndex int
	}
	groups := make(map[groupKey][]nfa.NodeID)
	var order []groupKey

	for _, id := range nodes {
		for _, t := range b.nfa.Get(id).Transitions {
			if t.Kind == nfa.Epsilon {
				continue
			}
			k := groupKey{kind: t.Kind, rune_: t.Rune, class: t.Class, groupIndex: t.GroupIndex}
			if _, ok := groups[k]; !ok {
				order = append(order, k)
			}
			groups[k] = append(groups[k], t.Dest)
		}
	}

	for _, k := range order {
		dests := closure(b.nfa, groups[k])
		destIdx := b.stateIndex(dests)
		b.states[i].Edges = append(b.states[i].Edges, Edge{
			Kind:       k.kind,
			Rune:       k.rune_,
			Class:      k.class,
			GroupIndex: k.groupIndex,
			Dest:       destIdx,
		})
	}
}

// closure computes the epsilon closure of seeds: every node reachable
// from seeds by following zero or more Epsilon transitions. Open and
// Close are not followed here; spec.md §4.5 keeps them as first-class
// DFA edges, which expand above creates, matching "Group markers on
// DFA edges" in Design Notes §9.
func closure(n *nfa.NFA, seeds []nfa.NodeID) []nfa.NodeID {
	capacity := conv.IntToUint32(len(n.Nodes))
	seen := sparse.NewSparseSet(capacity)
	var stack []nfa.NodeID
	for _, s := range seeds {
		if !seen.Contains(uint32(s)) {
			seen.Insert(uint32(s))
			stack = append(stack, s)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, t := range n.Get(id).Transitions {
			if t.Kind != nfa.Epsilon {
				continue
			}
			if !seen.Contains(uint32(t.Dest)) {
				seen.Insert(uint32(t.Dest))
				stack = append(stack, t.Dest)
			}
		}
	}
	out := make([]nfa.NodeID, 0, seen.Size())
	for _, v := range seen.Values() {
		out = append(out, nfa.NodeID(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func containsAccept(n *nfa.NFA, nodes []nfa.NodeID) bool {
	for _, id := range nodes {
		if n.IsAccept(id) {
			return true
		}
	}
	return false
}

// canonicalKey renders a sorted node-id set to a string suitable as a
// map key, so subset construction recognizes when two different seed
// sets close to the same DFA state.
func canonicalKey(nodes []nfa.NodeID) string {
	var b strings.Builder
	for i, id := range nodes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	return b.String()
}
