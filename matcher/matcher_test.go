package matcher_test

import (
	"testing"

	"github.com/coregx/sed/compiler"
	"github.com/coregx/sed/matcher"
	"github.com/coregx/sed/queryengine"
	"github.com/coregx/sed/regexparser"
)

func find(t *testing.T, pattern, input string) []matcher.Match {
	t.Helper()
	re, err := regexparser.Parse(pattern)
	if err != nil {
		t.Fatalf("Parse(%q): %v", pattern, err)
	}
	automaton := compiler.Compile(re)
	qe := queryengine.Build(input, nil, nil)
	return matcher.Find(automaton, qe, []rune(input))
}

func TestFindLiteral(t *testing.T) {
	matches := find(t, "joe", "joejoe")
	if len(matches) != 2 {
		t.Fatalf("matches = %+v, want 2", matches)
	}
	if matches[0].Start != 0 || matches[0].Length != 3 {
		t.Fatalf("matches[0] = %+v", matches[0])
	}
	if matches[1].Start != 3 || matches[1].Length != 3 {
		t.Fatalf("matches[1] = %+v", matches[1])
	}
}

func TestFindPlusTakesLongestRun(t *testing.T) {
	matches := find(t, "jo+e", "jejoejooeej")
	if len(matches) != 2 {
		t.Fatalf("matches = %+v, want 2", matches)
	}
	if matches[0].Length != 3 { // "joe"
		t.Fatalf("matches[0].Length = %d, want 3", matches[0].Length)
	}
	if matches[1].Length != 4 { // "jooe"
		t.Fatalf("matches[1].Length = %d, want 4", matches[1].Length)
	}
}

func TestFindZeroWidthStarAdvancesByOne(t *testing.T) {
	matches := find(t, "x*", "aaa")
	// x* matches the empty string at every position including past the
	// last rune, without ever looping forever on the zero-width cycle --
	// but per spec.md §4.6 step 4 and original_source's nfa::matcher::find,
	// a zero-length accept only advances the scan by one; it is never
	// itself recorded as a match.
	if len(matches) != 0 {
		t.Fatalf("matches = %+v, want 0 (zero-length accepts are never recorded)", matches)
	}
}

func TestFindCapturesGroupSpan(t *testing.T) {
	matches := find(t, "(jo+e)", "jooe")
	if len(matches) != 1 {
		t.Fatalf("matches = %+v, want 1", matches)
	}
	g := matches[0].Groups[1]
	if g.Start != 0 || g.Length != 4 {
		t.Fatalf("group 1 = %+v, want {0 4}", g)
	}
}

func TestFindAlternationTakesLongestAlternative(t *testing.T) {
	matches := find(t, "(joe)|(bob)|(a*)", "joejoe")
	if len(matches) != 2 {
		t.Fatalf("matches = %+v, want 2", matches)
	}
	for _, m := range matches {
		if m.Length != 3 {
			t.Fatalf("match %+v, want Length 3", m)
		}
	}
}

func TestMatchTextReturnsEmptyForUnparticipatingGroup(t *testing.T) {
	matches := find(t, "(joe)|(bob)", "joe")
	m := matches[0]
	input := []rune("joe")
	if got := m.Text(input, 1); got != "joe" {
		t.Fatalf("Text(1) = %q, want %q", got, "joe")
	}
	if got := m.Text(input, 2); got != "" {
		t.Fatalf("Text(2) = %q, want empty (group 2 never participated)", got)
	}
}
