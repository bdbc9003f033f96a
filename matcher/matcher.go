// Package matcher implements the backtracking longest-path search of
// spec.md §4.6, run directly over an *nfa.NFA (never the DFA): because
// a QuerySetRange transition's consumed length depends on the query
// engine's answer, and that answer can only be known by actually
// attempting the transition, the search has to walk the NFA's real
// Open/Close/QuerySetRange edges rather than the DFA's pre-merged
// character classes.
//
// Grounded on original_source's nfa::matcher (find/path_to_matches):
// the same two-phase shape (a recursive search collecting a Step path,
// then a second pass turning that path into group offsets) survives
// here, generalized to the query-set and capture semantics spec.md
// adds on top of the original's plain character automaton. The
// memoized-by-(node) search within one scan index is this module's own
// addition: the teacher's byte-oriented NFA has no epsilon cycles
// reachable without consuming a byte, but Star/Plus here can produce a
// pure zero-width entry/exit loop, so a plain unmemoized recursive walk
// would never terminate.
package matcher

import (
	"github.com/coregx/sed/nfa"
	"github.com/coregx/sed/queryengine"
)

// Group is one capture group's half-open span, in code points relative
// to the start of the input the match ran over.
type Group struct {
	Start  int
	Length int
}

// Match is one non-overlapping match produced by Find.
type Match struct {
	Start  int
	Length int
	Groups []Group
}

// Text returns the matched substring of input for group i (1-based; 0
// is reserved and always empty, matching original_source's group
// numbering where the compiler's group counter starts at 1). Returns
// "" if the group never participated in the match.
func (m Match) Text(input []rune, i int) string {
	if i < 0 || i >= len(m.Groups) {
		return ""
	}
	g := m.Groups[i]
	return string(input[g.Start : g.Start+g.Length])
}

// stepKind discriminates the path events find_path records, matching
// original_source's nfa::Path enum.
type stepKind uint8

const (
	stepChar stepKind = iota
	stepQuery
	stepOpen
	stepClose
)

type step struct {
	kind  stepKind
	n     int // stepQuery's consumed length
	group int // stepOpen/stepClose's group index
}

// Find runs the backtracking search from every starting index of input
// in turn, producing the non-overlapping left-to-right match sequence
// of spec.md §4.6. A zero-length accept still advances the scan by one
// position (spec.md §4.6 step 4's "zero-length matches advance by
// one"), but is never itself recorded -- matching original_source's
// nfa::matcher::find exactly ("is += m.len; if m.len > 0 { v.push(m) }
// else { is += 1 }"): only a non-empty match is ever pushed to the
// result.
func Find(automaton *nfa.NFA, qe *queryengine.Engine, input []rune) []Match {
	var matches []Match
	n := len(input)
	for s := 0; s <= n; {
		qe.SetOffset(s)
		path, ok := findPath(automaton, qe, input, s, automaton.Start, 0, newMemo())
		if !ok {
			s++
			continue
		}
		m := pathToMatch(path, s)
		if m.Length > 0 {
			matches = append(matches, m)
			s += m.Length
		} else {
			s++
		}
	}
	return matches
}

// memoEntry caches the best accepting continuation found from one node
// at one scan index, or records that the node is currently being
// explored (so a zero-width cycle back to it is a dead end, not
// infinite recursion).
type memoEntry struct {
	computing bool
	ok        bool
	suffix    []step
}

func newMemo() map[nfa.NodeID]*memoEntry {
	return make(map[nfa.NodeID]*memoEntry)
}

// findPath returns the steps of the longest accepting path from node
// onward, given that index code points have already been consumed
// since the scan attempt started at base (not including whatever path
// led to node), per spec.md §4.6. index is local to this attempt --
// base+index is the absolute position into input, and index alone is
// what queryengine.Engine.Query expects once qe.SetOffset(base) has
// been called, matching original_source's nfa::matcher resetting its
// per-attempt position to 0 at every new scan start. memo is shared
// across every zero-width (Epsilon/Open/Close) call at the same index;
// a consuming transition starts a fresh memo for its new index, since
// results no longer depend on the old one.
func findPath(automaton *nfa.NFA, qe *queryengine.Engine, input []rune, base int, node nfa.NodeID, index int, memo map[nfa.NodeID]*memoEntry) ([]step, bool) {
	if entry, ok := memo[node]; ok {
		if entry.computing {
			return nil, false
		}
		return entry.suffix, entry.ok
	}
	memo[node] = &memoEntry{computing: true}

	n := len(input)
	var best []step
	bestLen := -1
	consider := func(cand []step) {
		total := consumedLength(cand)
		if total > bestLen {
			best = cand
			bestLen = total
		}
	}

	for _, t := range automaton.Get(node).Transitions {
		switch t.Kind {
		case nfa.Epsilon:
			if sub, ok := findPath(automaton, qe, input, base, t.Dest, index, memo); ok {
				consider(sub)
			}
		case nfa.Open:
			if sub, ok := findPath(automaton, qe, input, base, t.Dest, index, memo); ok {
				consider(prepend(step{kind: stepOpen, group: t.GroupIndex}, sub))
			}
		case nfa.Close:
			if sub, ok := findPath(automaton, qe, input, base, t.Dest, index, memo); ok {
				consider(prepend(step{kind: stepClose, group: t.GroupIndex}, sub))
			}
		case nfa.Char:
			if base+index < n && input[base+index] == t.Rune {
				if sub, ok := findPath(automaton, qe, input, base, t.Dest, index+1, newMemo()); ok {
					consider(prepend(step{kind: stepChar}, sub))
				}
			}
		case nfa.Any:
			if base+index < n {
				if sub, ok := findPath(automaton, qe, input, base, t.Dest, index+1, newMemo()); ok {
					consider(prepend(step{kind: stepChar}, sub))
				}
			}
		case nfa.Range:
			if base+index < n && containsRune(t.Class, input[base+index]) {
				if sub, ok := findPath(automaton, qe, input, base, t.Dest, index+1, newMemo()); ok {
					consider(prepend(step{kind: stepChar}, sub))
				}
			}
		case nfa.NegativeRange:
			if base+index < n && !containsRune(t.Class, input[base+index]) {
				if sub, ok := findPath(automaton, qe, input, base, t.Dest, index+1, newMemo()); ok {
					consider(prepend(step{kind: stepChar}, sub))
				}
			}
		case nfa.QuerySetRange:
			if base+index < n {
				if consumed, ok := qe.Query(index, t.Class); ok {
					if sub, ok := findPath(automaton, qe, input, base, t.Dest, index+consumed, newMemo()); ok {
						consider(prepend(step{kind: stepQuery, n: consumed}, sub))
					}
				}
			}
		}
	}

	result := memo[node]
	result.computing = false
	if bestLen >= 0 {
		result.ok = true
		result.suffix = best
		return best, true
	}
	if automaton.IsAccept(node) {
		result.ok = true
		result.suffix = nil
		return nil, true
	}
	result.ok = false
	return nil, false
}

func prepend(s step, rest []step) []step {
	out := make([]step, 0, len(rest)+1)
	out = append(out, s)
	out = append(out, rest...)
	return out
}

func consumedLength(path []step) int {
	n := 0
	for _, s := range path {
		switch s.kind {
		case stepChar:
			n++
		case stepQuery:
			n += s.n
		}
	}
	return n
}

func containsRune(class string, r rune) bool {
	for _, c := range class {
		if c == r {
			return true
		}
	}
	return false
}

// pathToMatch replays a completed step path into a Match, matching
// original_source's path_to_matches exactly, including its one quirk: a
// group's Start is fixed by whichever Open set it first (via the
// padding loop filling in any skipped indices at the current offset),
// and is never moved by a later re-Open of the same index -- only
// Close ever updates a group afterward. This matters only for a group
// nested under a Star/Plus that re-enters more than once.
func pathToMatch(path []step, start int) Match {
	var groups []Group
	length := 0
	ensure := func(i int) {
		for i >= len(groups) {
			groups = append(groups, Group{Start: start + length})
		}
	}
	for _, s := range path {
		switch s.kind {
		case stepOpen:
			ensure(s.group)
		case stepClose:
			ensure(s.group)
			groups[s.group].Length = length + start - groups[s.group].Start
		case stepChar:
			length++
		case stepQuery:
			length += s.n
		}
	}
	return Match{Start: start, Length: length, Groups: groups}
}
