package nfa_test

import (
	"testing"

	"github.com/coregx/sed/nfa"
)

func TestGetAndIsAccept(t *testing.T) {
	n := &nfa.NFA{
		Nodes: []nfa.Node{
			{Transitions: []nfa.Transition{{Kind: nfa.Char, Rune: 'a', Dest: 1}}},
			{},
		},
		Start:  0,
		Accept: 1,
	}

	if got := n.Get(0).Transitions[0].Rune; got != 'a' {
		t.Fatalf("Get(0).Transitions[0].Rune = %q, want 'a'", got)
	}
	if n.IsAccept(0) {
		t.Fatal("node 0 should not be the accept node")
	}
	if !n.IsAccept(1) {
		t.Fatal("node 1 should be the accept node")
	}
}

func TestTransitionKindString(t *testing.T) {
	cases := map[nfa.TransitionKind]string{
		nfa.Epsilon:       "Epsilon",
		nfa.Char:          "Char",
		nfa.Any:           "Any",
		nfa.Range:         "Range",
		nfa.NegativeRange: "NegativeRange",
		nfa.QuerySetRange: "QuerySetRange",
		nfa.Open:          "Open",
		nfa.Close:         "Close",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
	if got := nfa.TransitionKind(255).String(); got != "Unknown(255)" {
		t.Errorf("unknown kind String() = %q, want %q", got, "Unknown(255)")
	}
}

func TestNodeString(t *testing.T) {
	node := &nfa.Node{Transitions: []nfa.Transition{{}, {}}}
	if got := node.String(); got != "Node(2 transitions)" {
		t.Errorf("Node.String() = %q, want %q", got, "Node(2 transitions)")
	}
}
