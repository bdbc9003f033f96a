// Package replacement parses the REPLACE component of a command into an
// ordered sequence of literal runs and backreferences, per spec.md §4.3.
package replacement

import (
	"strconv"

	"github.com/coregx/sed/ast"
	coreerrors "github.com/coregx/sed/errors"
)

// Parse splits text into ast.ReplaceItem values. A backslash followed
// by one or more decimal digits forms a BackRef(N) where N is the
// maximal digit run; a backslash followed by a non-digit starts a
// literal run that keeps the backslash itself and runs up to the next
// backslash. No other escape is interpreted, so "\\" in the input
// appears as two literal backslashes in the template.
func Parse(text string) (*ast.Replacement, error) {
	runes := []rune(text)
	var items []ast.ReplaceItem
	i := 0
	for i < len(runes) {
		item, next, err := parseItem(runes, i, text)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		i = next
	}
	return &ast.Replacement{Items: items}, nil
}

func parseItem(runes []rune, start int, text string) (ast.ReplaceItem, int, error) {
	if runes[start] == '\\' {
		j := start + 1
		for j < len(runes) && isDigit(runes[j]) {
			j++
		}
		if j > start+1 {
			n, err := strconv.Atoi(string(runes[start+1 : j]))
			if err != nil {
				return ast.ReplaceItem{}, 0, &coreerrors.ReplacementSyntaxError{
					Text: text, Offset: start, Message: "backreference index overflow",
				}
			}
			return ast.ReplaceItem{Kind: ast.ReplaceBackRef, BackRef: n}, j, nil
		}
	}
	// Literal run: consume until the next backslash (exclusive) or end
	// of input.
	j := start + 1
	for j < len(runes) && runes[j] != '\\' {
		j++
	}
	return ast.ReplaceItem{Kind: ast.ReplaceLiteral, Literal: string(runes[start:j])}, j, nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
