package command_test

import (
	"testing"

	"github.com/coregx/sed/ast"
	"github.com/coregx/sed/command"
)

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		want    command.Unparsed
		wantErr bool
	}{
		{
			name: "all location with global flag",
			text: "%s/joe/bob/g",
			want: command.Unparsed{Location: "%", Find: "joe", Replace: "bob", Global: true},
		},
		{
			name: "path location without global flag",
			text: "<.go>s/joe/bob/",
			want: command.Unparsed{Location: "<.go>", Find: "joe", Replace: "bob", Global: false},
		},
		{
			name: "escaped slash inside FIND survives",
			text: `%s/a\/b/c/`,
			want: command.Unparsed{Location: "%", Find: `a\/b`, Replace: "c", Global: false},
		},
		{
			name:    "missing trailing s is a syntax error",
			text:    "%/joe/bob/g",
			wantErr: true,
		},
		{
			name:    "missing third slash is a syntax error",
			text:    "%s/joe/bob",
			wantErr: true,
		},
		{
			name:    "flag other than g is a syntax error",
			text:    "%s/joe/bob/x",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := command.SplitCommand(tc.text)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("SplitCommand(%q): expected error, got %+v", tc.text, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("SplitCommand(%q): unexpected error: %v", tc.text, err)
			}
			if got != tc.want {
				t.Fatalf("SplitCommand(%q) = %+v, want %+v", tc.text, got, tc.want)
			}
		})
	}
}

func TestParseBuildsReplace(t *testing.T) {
	repl, err := command.Parse("%s/joe/bob/g")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if repl.Location.Kind != ast.LocationAll {
		t.Fatalf("Location.Kind = %v, want LocationAll", repl.Location.Kind)
	}
	if !repl.Global {
		t.Fatal("Global = false, want true")
	}
	if repl.Find == nil || repl.Replace == nil {
		t.Fatal("Find/Replace not populated")
	}
}

func TestParsePropagatesFindSyntaxError(t *testing.T) {
	if _, err := command.Parse("%s/(joe/bob/g"); err == nil {
		t.Fatal("expected an error for an unbalanced group in FIND")
	}
}

func TestParseRenameForcesAllLocationAndGlobal(t *testing.T) {
	repl, err := command.ParseRename("joe", "bob")
	if err != nil {
		t.Fatalf("ParseRename: %v", err)
	}
	if repl.Location.Kind != ast.LocationAll {
		t.Fatalf("Location.Kind = %v, want LocationAll", repl.Location.Kind)
	}
	if !repl.Global {
		t.Fatal("Global = false, want true")
	}
}
