// Command coresed is the CLI driver for the structural search-and-replace
// engine: it walks a root directory, parses one LOCATION s/FIND/REPLACE/[g]
// command, builds a scanner/clike query engine per file, and calls
// replacer.Replace -- exactly the "external collaborator" boundary
// spec.md §1 draws around the core (directory traversal, file I/O,
// and the language scanner are all named as out of core scope).
//
// Grounded in shape on the original Rust main.rs (WalkDir + per-file
// read/print) and on the pack's CLI conventions: stdlib flag parsing
// and a zap.Logger for structured per-file errors, in the same idiom
// as gnoverse-tlin/cmd/tlin/main.go's zap.NewProduction()+defer
// logger.Sync(), plus fatih/color for highlighting changed spans in
// dry-run output, following abcxyz-abc's and gnoverse-tlin's shared
// use of that library for CLI diagnostics.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/coregx/sed/ast"
	"github.com/coregx/sed/command"
	"github.com/coregx/sed/replacer"
	"github.com/coregx/sed/scanner"
	"github.com/coregx/sed/scanner/clike"
)

const (
	exitOK            = 0
	exitCommandSyntax = 1
	exitFileFailure   = 2
)

var (
	removedStyle = color.New(color.FgRed, color.Strikethrough)
	addedStyle   = color.New(color.FgGreen, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := flag.NewFlagSet("coresed", flag.ContinueOnError)
	root := flags.String("root", ".", "root directory to search under")
	dryRun := flags.Bool("dry-run", false, "report matches without writing files")
	noColor := flags.Bool("no-color", false, "disable colored dry-run diffs")
	if err := flags.Parse(args); err != nil {
		return exitCommandSyntax
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: coresed [-root dir] [-dry-run] [-no-color] 'LOCATION s/FIND/REPLACE/[g]'")
		return exitCommandSyntax
	}
	if *noColor {
		color.NoColor = true
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	repl, err := command.Parse(flags.Arg(0))
	if err != nil {
		logger.Error("failed to parse command", zap.Error(err))
		return exitCommandSyntax
	}

	var idents scanner.Identifiers = clike.Clike{}
	var funcs scanner.Functions = clike.Clike{}

	failures := 0
	walkErr := filepath.WalkDir(*root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Error("walk error", zap.String("path", path), zap.Error(err))
			failures++
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if procErr := processFile(path, repl, idents, funcs, *dryRun); procErr != nil {
			logger.Error("failed to process file", zap.String("path", path), zap.Error(procErr))
			failures++
		}
		return nil
	})
	if walkErr != nil {
		logger.Error("walk failed", zap.Error(walkErr))
		return exitFileFailure
	}
	if failures > 0 {
		return exitFileFailure
	}
	return exitOK
}

// processFile reads one file, runs the replacer over it, and (unless
// dryRun) writes the result back. In dry-run mode it prints a colored
// before/after summary instead of touching the file.
func processFile(path string, repl *ast.Replace, idents scanner.Identifiers, funcs scanner.Functions, dryRun bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	out, changed, err := replacer.Replace(path, string(raw), repl, idents, funcs, acceptAll)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if dryRun {
		printDiff(path, string(raw), out)
		return nil
	}
	return os.WriteFile(path, []byte(out), info.Mode().Perm())
}

// acceptAll is the acceptor spec.md §4.8 names as a user-supplied gate
// independent of the location predicate; coresed never prompts
// interactively (spec.md §1 places that outside core scope), so every
// location-approved match is taken.
func acceptAll(before, after string) bool { return true }

func printDiff(path, before, after string) {
	fileStyle.Printf("%s\n", path)
	removedStyle.Printf("- %s\n", before)
	addedStyle.Printf("+ %s\n", after)
}
