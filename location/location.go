// Package location parses and evaluates the LOCATION predicate grammar
// of spec.md §6: `%` (all), `<suffix>` (path suffix), `{name}`
// (function), `lA-B` (line range), `cA-B` (char range), infix `|`/`&`,
// prefix `^`, and parenthesization.
//
// original_source ships this grammar as a LALRPOP file, not plain Rust,
// so it isn't present in the retrieved source; the grammar here is
// reconstructed from original_source's regexparser/mod.rs test cases
// (parsing_location) and spec.md §6/§4.9, written in the same
// hand-rolled recursive-descent style as this module's regexparser
// package rather than a parser-generator.
package location

import (
	"strconv"
	"strings"

	"github.com/coregx/sed/ast"
	coreerrors "github.com/coregx/sed/errors"
	"github.com/coregx/sed/queryengine"
)

type parser struct {
	runes []rune
	src   string
	pos   int
}

// Parse parses a LOCATION predicate. An empty string denotes All.
// command.SplitCommand rejects an empty LOCATION, so a command still
// needs an explicit "%" for All; the "" case is a convenience for
// callers that call Parse directly.
func Parse(text string) (*ast.Location, error) {
	if text == "" {
		return &ast.Location{Kind: ast.LocationAll}, nil
	}
	p := &parser{runes: []rune(text), src: text}
	loc, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errorf("unexpected trailing input")
	}
	return loc, nil
}

func (p *parser) errorf(msg string) error {
	return &coreerrors.LocationSyntaxError{Text: p.src, Offset: p.pos, Message: msg}
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.runes)
}

func (p *parser) peek() (rune, bool) {
	if p.atEnd() {
		return 0, false
	}
	return p.runes[p.pos], true
}

func (p *parser) advance() rune {
	c := p.runes[p.pos]
	p.pos++
	return c
}

// parseOr handles infix '|', the lowest-precedence combinator.
func (p *parser) parseOr() (*ast.Location, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		c, ok := p.peek()
		if !ok || c != '|' {
			return left, nil
		}
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Location{Kind: ast.LocationOr, Left: left, Right: right}
	}
}

// parseAnd handles infix '&', binding tighter than '|'.
func (p *parser) parseAnd() (*ast.Location, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		c, ok := p.peek()
		if !ok || c != '&' {
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.Location{Kind: ast.LocationAnd, Left: left, Right: right}
	}
}

// parseUnary handles prefix '^', binding tighter than '&' so that
// "^{f}|l1-5" negates only the function predicate.
func (p *parser) parseUnary() (*ast.Location, error) {
	if c, ok := p.peek(); ok && c == '^' {
		p.advance()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Location{Kind: ast.LocationNot, Inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*ast.Location, error) {
	c, ok := p.peek()
	if !ok {
		return nil, p.errorf("unexpected end of location")
	}
	switch c {
	case '%':
		p.advance()
		return &ast.Location{Kind: ast.LocationAll}, nil
	case '<':
		p.advance()
		start := p.pos
		for {
			c, ok := p.peek()
			if !ok {
				return nil, p.errorf("unterminated '<suffix>'")
			}
			if c == '>' {
				suffix := string(p.runes[start:p.pos])
				p.advance()
				return &ast.Location{Kind: ast.LocationPath, Suffix: suffix}, nil
			}
			p.advance()
		}
	case '{':
		p.advance()
		start := p.pos
		for {
			c, ok := p.peek()
			if !ok {
				return nil, p.errorf("unterminated '{name}'")
			}
			if c == '}' {
				name := string(p.runes[start:p.pos])
				p.advance()
				return &ast.Location{Kind: ast.LocationFunction, Name: name}, nil
			}
			p.advance()
		}
	case 'l', 'c':
		p.advance()
		lo, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		if c2, ok := p.peek(); !ok || c2 != '-' {
			return nil, p.errorf("expected '-' in range")
		}
		p.advance()
		hi, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		if c == 'l' {
			return &ast.Location{Kind: ast.LocationLineRange, Lo: lo, Hi: hi}, nil
		}
		return &ast.Location{Kind: ast.LocationCharRange, Lo: lo, Hi: hi}, nil
	case '(':
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if c2, ok := p.peek(); !ok || c2 != ')' {
			return nil, p.errorf("expected ')'")
		}
		p.advance()
		return inner, nil
	default:
		return nil, p.errorf("unexpected character in location")
	}
}

func (p *parser) parseInt() (int, error) {
	start := p.pos
	for {
		c, ok := p.peek()
		if !ok || c < '0' || c > '9' {
			break
		}
		p.advance()
	}
	if p.pos == start {
		return 0, p.errorf("expected a number")
	}
	n, err := strconv.Atoi(string(p.runes[start:p.pos]))
	if err != nil {
		return 0, p.errorf("invalid number")
	}
	return n, nil
}

// Check evaluates loc against a single candidate match per spec.md
// §4.9. absStart is the match's absolute start offset (code points)
// into input; pathName is the file path being rewritten; qe is the
// query engine built for this file (used to resolve Function bodies).
func Check(loc *ast.Location, input string, absStart int, pathName string, qe *queryengine.Engine) bool {
	switch loc.Kind {
	case ast.LocationAll:
		return true
	case ast.LocationPath:
		return strings.HasSuffix(pathName, loc.Suffix)
	case ast.LocationFunction:
		start, end, ok := qe.FunctionLocation(loc.Name)
		return ok && start <= absStart && absStart < end
	case ast.LocationLineRange:
		line := lineOf(input, absStart)
		return loc.Lo <= line && line < loc.Hi
	case ast.LocationCharRange:
		return loc.Lo <= absStart && absStart < loc.Hi
	case ast.LocationAnd:
		return Check(loc.Left, input, absStart, pathName, qe) && Check(loc.Right, input, absStart, pathName, qe)
	case ast.LocationOr:
		return Check(loc.Left, input, absStart, pathName, qe) || Check(loc.Right, input, absStart, pathName, qe)
	case ast.LocationNot:
		return !Check(loc.Inner, input, absStart, pathName, qe)
	default:
		return false
	}
}

// lineOf counts '\n' code points in input[1:k], exactly as spec.md
// §4.9 describes: "the exclusion of index 0 is intentional in the
// source and is preserved here". k is code-point indexed, matching the
// rest of the matcher's position accounting.
func lineOf(input string, k int) int {
	runes := []rune(input)
	if k > len(runes) {
		k = len(runes)
	}
	if k < 1 {
		return 0
	}
	count := 0
	for _, c := range runes[1:k] {
		if c == '\n' {
			count++
		}
	}
	return count
}
