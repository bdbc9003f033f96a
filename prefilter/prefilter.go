// Package prefilter extracts mandatory literal substrings from a
// compiled pattern and uses them to reject a whole file before running
// the backtracking matcher at all, the way the teacher's prefilter
// package rejects candidate positions before running its NFA/DFA.
//
// Grounded on the teacher's prefilter/literal.Extractor split: Required
// plays the role of literal.Extractor.ExtractPrefixes (finding text any
// match must contain), and Scanner plays the role of
// prefilter.AhoCorasickPrefilter (github.com/coregx/ahocorasick wired
// for multi-literal scanning) with the teacher's
// simd/ascii_amd64.go-style CPU-feature gate (golang.org/x/sys/cpu)
// picking the fast path for the common single-byte-literal case. This
// is strictly a speed-up: Required/Scanner only ever decide "no match
// is possible anywhere in this file", never which matches are
// reported -- the required backtracking search of spec.md §4.6 always
// runs when a literal-presence check doesn't rule the file out.
package prefilter

import (
	"bytes"

	"golang.org/x/sys/cpu"

	"github.com/coregx/ahocorasick"
	"github.com/coregx/sed/ast"
)

// Required returns the literal substrings a concatenation-only pattern
// (no top-level Union) is guaranteed to contain verbatim in any match.
// Each run is a maximal sequence of unquantified Char elementaries;
// anything else (Star, Plus, Any, Set, QuerySet, Group, EndOfString,
// Nothing) breaks the current run without invalidating runs already
// collected, since those pieces remain mandatory even though they
// aren't contiguous with what follows.
//
// ok is false only when re has a top-level Union: an alternation's
// branches each guarantee their own, generally different, literals,
// and combining "branch A's literals OR branch B's literals" correctly
// requires the caller to try each branch's requirement independently,
// which this module does not attempt (conservative: no prefilter
// benefit for alternations, never an incorrect one).
func Required(re *ast.Regex) (runs []string, ok bool) {
	if re.Kind == ast.RegexUnion {
		return nil, false
	}
	return requiredSimple(re.Body), true
}

func requiredSimple(s *ast.Simple) []string {
	var runs []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			runs = append(runs, string(current))
			current = nil
		}
	}

	var walkBasic func(*ast.Basic)
	walkBasic = func(b *ast.Basic) {
		if b.Kind == ast.BasicElementary && b.Elem.Kind == ast.ElemChar {
			current = append(current, b.Elem.Char.Rune)
			return
		}
		flush()
	}

	var walk func(*ast.Simple)
	walk = func(s *ast.Simple) {
		if s.Kind == ast.SimpleConcat {
			walk(s.Left)
			walkBasic(s.Right)
			return
		}
		walkBasic(s.Body)
	}

	walk(s)
	flush()
	return runs
}

// Scanner answers "are all of these literals present somewhere in this
// haystack" using one Aho-Corasick automaton shared across every
// literal, the way the teacher's AhoCorasickPrefilter shares one
// automaton across every extracted literal instead of scanning once
// per literal.
type Scanner struct {
	automaton *ahocorasick.Automaton
	literals  []string
}

// NewScanner builds a Scanner over literals. Returns an error only if
// the underlying automaton fails to build (e.g. literals is empty).
func NewScanner(literals []string) (*Scanner, error) {
	b := ahocorasick.NewBuilder()
	for _, lit := range literals {
		b.AddPattern([]byte(lit))
	}
	automaton, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &Scanner{automaton: automaton, literals: literals}, nil
}

// AllPresent reports whether every literal the scanner was built with
// occurs somewhere in haystack. A single short-byte literal is checked
// with a direct byte scan first (fastByteScan) before falling back to
// the automaton, since a single-byte literal needs no multi-pattern
// matching at all.
func (s *Scanner) AllPresent(haystack []byte) bool {
	need := make(map[string]bool, len(s.literals))
	for _, lit := range s.literals {
		if len(lit) == 1 {
			if !fastByteScan(haystack, lit[0]) {
				return false
			}
			continue
		}
		need[lit] = true
	}
	if len(need) == 0 {
		return true
	}

	pos := 0
	for pos <= len(haystack) {
		m := s.automaton.Find(haystack, pos)
		if m == nil {
			break
		}
		lit := string(haystack[m.Start:m.End])
		if need[lit] {
			delete(need, lit)
			if len(need) == 0 {
				return true
			}
		}
		pos = m.Start + 1
	}
	return len(need) == 0
}

// fastByteScan reports whether b appears anywhere in haystack,
// preferring the runtime's SIMD-accelerated bytes.IndexByte when the
// CPU exposes SSE4.2-class string instructions, mirroring the
// teacher's simd/ascii_amd64.go dispatch on cpu.X86.HasSSE42. This
// package never ports the teacher's full Teddy multi-literal SIMD
// kernel (see DESIGN.md); the CPU-feature gate here only chooses
// between bytes.IndexByte and a manual byte loop.
func fastByteScan(haystack []byte, b byte) bool {
	if cpu.X86.HasSSE42 {
		return bytes.IndexByte(haystack, b) >= 0
	}
	for _, c := range haystack {
		if c == b {
			return true
		}
	}
	return false
}
