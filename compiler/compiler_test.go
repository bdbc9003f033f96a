package compiler_test

import (
	"strings"
	"testing"

	"github.com/coregx/sed/compiler"
	"github.com/coregx/sed/nfa"
	"github.com/coregx/sed/regexparser"
)

func compile(t *testing.T, pattern string) *nfa.NFA {
	t.Helper()
	re, err := regexparser.Parse(pattern)
	if err != nil {
		t.Fatalf("Parse(%q): %v", pattern, err)
	}
	return compiler.Compile(re)
}

func TestCompileSingleCharProducesOneTransition(t *testing.T) {
	n := compile(t, "a")
	if n.Start == n.Accept {
		t.Fatal("Start and Accept should differ for a non-empty fragment")
	}
	tr := n.Get(n.Start).Transitions
	if len(tr) != 1 || tr[0].Kind != nfa.Char || tr[0].Rune != 'a' {
		t.Fatalf("Start transitions = %+v, want a single Char('a')", tr)
	}
}

func TestCompileGroupEmitsOpenAndClose(t *testing.T) {
	n := compile(t, "(a)")
	var sawOpen, sawClose bool
	var openIdx, closeIdx int
	for _, node := range n.Nodes {
		for _, tr := range node.Transitions {
			if tr.Kind == nfa.Open {
				sawOpen = true
				openIdx = tr.GroupIndex
			}
			if tr.Kind == nfa.Close {
				sawClose = true
				closeIdx = tr.GroupIndex
			}
		}
	}
	if !sawOpen || !sawClose {
		t.Fatalf("expected both Open and Close transitions, got open=%v close=%v", sawOpen, sawClose)
	}
	if openIdx != closeIdx || openIdx != 1 {
		t.Fatalf("group indices = open:%d close:%d, want both 1", openIdx, closeIdx)
	}
}

func TestCompileNestedGroupsGetDistinctIndices(t *testing.T) {
	n := compile(t, "((a)(b))")
	seen := map[int]bool{}
	for _, node := range n.Nodes {
		for _, tr := range node.Transitions {
			if tr.Kind == nfa.Open {
				seen[tr.GroupIndex] = true
			}
		}
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct group indices, got %v", seen)
	}
}

func TestCompileStarAllowsSkippingBody(t *testing.T) {
	n := compile(t, "a*")
	// The entry node of the Star fragment must have a direct epsilon
	// path to the exit node (skip the loop body entirely).
	entry := n.Get(n.Start)
	var sawEpsilonToExit bool
	for _, tr := range entry.Transitions {
		if tr.Kind == nfa.Epsilon && tr.Dest == n.Accept {
			sawEpsilonToExit = true
		}
	}
	if !sawEpsilonToExit {
		t.Fatal("expected an epsilon transition from Start directly to Accept for a*")
	}
}

func TestCompileSetMaterializesSortedClass(t *testing.T) {
	n := compile(t, "[ca-b]")
	tr := n.Get(n.Start).Transitions
	if len(tr) != 1 || tr[0].Kind != nfa.Range {
		t.Fatalf("transitions = %+v, want a single Range", tr)
	}
	if tr[0].Class != "abc" {
		t.Fatalf("Class = %q, want sorted deduped \"abc\"", tr[0].Class)
	}
}

func TestCompileNegatedSet(t *testing.T) {
	n := compile(t, "[^a-z]")
	tr := n.Get(n.Start).Transitions
	if len(tr) != 1 || tr[0].Kind != nfa.NegativeRange {
		t.Fatalf("transitions = %+v, want a single NegativeRange", tr)
	}
}

func TestCompileQuerySetMaterializesBodyText(t *testing.T) {
	n := compile(t, "[[name=me,type=Session]]")
	tr := n.Get(n.Start).Transitions
	if len(tr) != 1 || tr[0].Kind != nfa.QuerySetRange {
		t.Fatalf("transitions = %+v, want a single QuerySetRange", tr)
	}
	if tr[0].Class != "name=me,type=Session" {
		t.Fatalf("Class = %q, want re-serialized query text", tr[0].Class)
	}
}

func TestDefaultConfigMatchesTeacherLimit(t *testing.T) {
	cfg := compiler.DefaultConfig()
	if cfg.MaxRecursionDepth != 100 {
		t.Fatalf("MaxRecursionDepth = %d, want 100", cfg.MaxRecursionDepth)
	}
}

func TestCompileWithConfigPanicsPastMaxRecursionDepth(t *testing.T) {
	nesting := strings.Repeat("(", 10) + "a" + strings.Repeat(")", 10)
	re, err := regexparser.Parse(nesting)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a pattern nested past MaxRecursionDepth")
		}
	}()
	compiler.CompileWithConfig(re, compiler.Config{MaxRecursionDepth: 3})
}

func TestCompileUnionBranchesBothReachAccept(t *testing.T) {
	n := compile(t, "a|b")
	entry := n.Get(n.Start)
	if len(entry.Transitions) != 2 {
		t.Fatalf("Start transitions = %+v, want 2 epsilon branches", entry.Transitions)
	}
	for _, tr := range entry.Transitions {
		if tr.Kind != nfa.Epsilon {
			t.Fatalf("branch transition kind = %v, want Epsilon", tr.Kind)
		}
	}
}
