// Package replacer drives one compiled ast.Replace end to end over one
// file's text: scan for matches, build each replacement string,
// consult the location predicate and the caller's acceptor, and edit a
// textbuffer.Buffer in place.
//
// Grounded on original_source's nfa::replacer (replace/replace_to_string):
// the same accumulate-offset-while-replacing shape, generalized to this
// module's Location grammar (the original only ever had All/Path) and
// to a pluggable Identifiers/Functions scanner pair instead of a single
// hardcoded Clike.
package replacer

import (
	"strings"

	"github.com/coregx/sed/ast"
	"github.com/coregx/sed/compiler"
	"github.com/coregx/sed/location"
	"github.com/coregx/sed/matcher"
	"github.com/coregx/sed/prefilter"
	"github.com/coregx/sed/queryengine"
	"github.com/coregx/sed/scanner"
	"github.com/coregx/sed/textbuffer"
)

// Acceptor gates an individual replacement on its before/after text,
// independent of the location predicate (spec.md §4.8's user
// acceptor).
type Acceptor func(before, after string) bool

// Replace runs repl's regex over input, instantiating repl.Replace for
// every match and applying it when both the location predicate and
// accept agree, per spec.md §4.8. Returns the rewritten text and
// whether anything actually changed.
//
// The "global" flag is parsed but not consulted here: per spec.md
// §4.8's note ("even when global = false, the current design applies
// replacements to every match in order") and SPEC_FULL.md's Open
// Questions resolution, every match found by the scan is a replacement
// candidate regardless of repl.Global.
func Replace(pathName, input string, repl *ast.Replace, idents scanner.Identifiers, funcs scanner.Functions, accept Acceptor) (string, bool, error) {
	if !mayContainMatch(repl.Find, input) {
		return input, false, nil
	}

	qe := queryengine.Build(input, idents, funcs)
	automaton := compiler.Compile(repl.Find)
	runes := []rune(input)
	matches := matcher.Find(automaton, qe, runes)

	tb := textbuffer.NewFromString(input)
	offset := 0
	changed := false

	for _, m := range matches {
		replacement := instantiate(repl.Replace, m, runes)
		start := m.Start + offset

		before, err := tb.Get(start, m.Length)
		if err != nil {
			return "", false, err
		}

		if !location.Check(repl.Location, input, m.Start, pathName, qe) {
			continue
		}
		if !accept(before, replacement) {
			continue
		}

		if err := tb.Replace(start, m.Length, replacement); err != nil {
			return "", false, err
		}
		offset += len([]rune(replacement)) - m.Length
		if before != replacement {
			changed = true
		}
	}

	return tb.Consume(), changed, nil
}

// mayContainMatch is a non-behavioral speed-up: when Find's pattern has
// no top-level alternation, prefilter.Required extracts the literal
// runs any match must contain verbatim, and a single Aho-Corasick pass
// over input checks all of them are present before the backtracking
// matcher ever runs (spec.md §4.6 still runs unconditionally whenever
// this returns true; it never decides which matches are reported,
// only whether it's worth looking at all).
func mayContainMatch(find *ast.Regex, input string) bool {
	literals, ok := prefilter.Required(find)
	if !ok || len(literals) == 0 {
		return true
	}
	sc, err := prefilter.NewScanner(literals)
	if err != nil {
		return true
	}
	return sc.AllPresent([]byte(input))
}

// instantiate builds the replacement text for one match, substituting
// each BackRef with the matched group's text (or "" if the group never
// participated), matching original_source's replace_to_string.
func instantiate(repl *ast.Replacement, m matcher.Match, input []rune) string {
	var b strings.Builder
	for _, item := range repl.Items {
		switch item.Kind {
		case ast.ReplaceLiteral:
			b.WriteString(item.Literal)
		case ast.ReplaceBackRef:
			b.WriteString(m.Text(input, item.BackRef))
		}
	}
	return b.String()
}
