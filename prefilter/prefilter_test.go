package prefilter

import (
	"testing"

	"github.com/coregx/sed/regexparser"
)

func TestRequiredExtractsLiteralRuns(t *testing.T) {
	re, err := regexparser.Parse("jo+e")
	if err != nil {
		t.Fatal(err)
	}
	runs, ok := Required(re)
	if !ok {
		t.Fatal("expected ok=true for a concatenation-only pattern")
	}
	want := []string{"j", "e"}
	if len(runs) != len(want) {
		t.Fatalf("got runs %v, want %v", runs, want)
	}
	for i := range want {
		if runs[i] != want[i] {
			t.Fatalf("got runs %v, want %v", runs, want)
		}
	}
}

func TestRequiredMergesAdjacentLiterals(t *testing.T) {
	re, err := regexparser.Parse("bill")
	if err != nil {
		t.Fatal(err)
	}
	runs, ok := Required(re)
	if !ok || len(runs) != 1 || runs[0] != "bill" {
		t.Fatalf("got runs=%v ok=%v, want [\"bill\"] true", runs, ok)
	}
}

func TestRequiredBailsOutOnTopLevelUnion(t *testing.T) {
	re, err := regexparser.Parse("joe|bob")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := Required(re); ok {
		t.Fatal("expected ok=false for a top-level alternation")
	}
}

func TestScannerAllPresent(t *testing.T) {
	s, err := NewScanner([]string{"j", "e"})
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	if !s.AllPresent([]byte("jejoejooeej")) {
		t.Fatal("expected both literals to be present")
	}
	if s.AllPresent([]byte("xyz")) {
		t.Fatal("expected AllPresent to fail when a literal is missing")
	}
}

func TestScannerAllPresentMultiByteLiteral(t *testing.T) {
	s, err := NewScanner([]string{"bill", "dole"})
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	if !s.AllPresent([]byte("bob billdole joe")) {
		t.Fatal("expected both multi-byte literals to be found")
	}
	if s.AllPresent([]byte("bob dole")) {
		t.Fatal("expected AllPresent to fail when \"bill\" is missing")
	}
}
