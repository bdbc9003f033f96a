// Package regexparser implements the recursive-descent parser for the
// regex grammar of spec.md §3-§4.2:
//
//	RE          ::= union | simple-RE
//	union       ::= RE "|" simple-RE
//	simple-RE   ::= concatenation | basic-RE
//	concatenation ::= simple-RE basic-RE
//	basic-RE    ::= star | plus | elementary-RE
//	star        ::= elementary-RE "*"
//	plus        ::= elementary-RE "+"
//	elementary-RE ::= group | any | eos | char | set
//	group       ::= "(" RE ")"
//	set         ::= positive-set | negative-set | query-set
//
// Union binds loosest, then concatenation (implicit juxtaposition), then
// the postfix quantifiers. Parentheses form capturing groups; there is
// no non-capturing form. This is hand-written rather than generated,
// in the same spirit as the teacher compiling straight off
// regexp/syntax.Regexp without an intermediate grammar-generator step --
// only here the grammar itself, and therefore the parser, is this
// module's own rather than Go's stdlib regex syntax.
package regexparser

import (
	"fmt"
	"strings"

	"github.com/coregx/sed/ast"
	coreerrors "github.com/coregx/sed/errors"
)

// Parse parses src into a Regex AST. An empty src compiles to the
// special Nothing elementary (spec.md §4.2), which never reaches an
// accept state, avoiding an empty-pattern infinite-match loop.
func Parse(src string) (*ast.Regex, error) {
	if src == "" {
		return &ast.Regex{
			Kind: ast.RegexSimple,
			Body: &ast.Simple{
				Kind: ast.SimpleBasic,
				Body: &ast.Basic{
					Kind: ast.BasicElementary,
					Elem: &ast.Elementary{Kind: ast.ElemNothing},
				},
			},
		}, nil
	}
	p := &parser{runes: []rune(src), src: src}
	re, err := p.parseRegex()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errorf("unexpected trailing input %q", string(p.runes[p.pos:]))
	}
	return re, nil
}

type parser struct {
	runes []rune
	src   string
	pos   int
}

func (p *parser) errorf(format string, args ...any) error {
	return &coreerrors.RegexSyntaxError{
		Pattern: p.src,
		Offset:  p.pos,
		Message: fmt.Sprintf(format, args...),
	}
}

func (p *parser) atEnd() bool { return p.pos >= len(p.runes) }

func (p *parser) peek() (rune, bool) {
	if p.atEnd() {
		return 0, false
	}
	return p.runes[p.pos], true
}

func (p *parser) advance() rune {
	r := p.runes[p.pos]
	p.pos++
	return r
}

// parseRegex parses <RE> ::= <union> | <simple-RE>, i.e. a
// "|"-separated chain of simples, left-associative.
func (p *parser) parseRegex() (*ast.Regex, error) {
	simple, err := p.parseSimple()
	if err != nil {
		return nil, err
	}
	re := &ast.Regex{Kind: ast.RegexSimple, Body: simple}
	for {
		c, ok := p.peek()
		if !ok || c != '|' {
			break
		}
		p.advance()
		rhs, err := p.parseSimple()
		if err != nil {
			return nil, err
		}
		re = &ast.Regex{Kind: ast.RegexUnion, Left: re, Right: rhs}
	}
	return re, nil
}

// parseSimple parses <simple-RE> ::= <concatenation> | <basic-RE>, a
// left-associative chain of <basic-RE>s joined by implicit juxtaposition.
func (p *parser) parseSimple() (*ast.Simple, error) {
	basic, err := p.parseBasic()
	if err != nil {
		return nil, err
	}
	simple := &ast.Simple{Kind: ast.SimpleBasic, Body: basic}
	for {
		c, ok := p.peek()
		if !ok || c == '|' || c == ')' {
			break
		}
		nextBasic, err := p.parseBasic()
		if err != nil {
			return nil, err
		}
		simple = &ast.Simple{Kind: ast.SimpleConcat, Left: simple, Right: nextBasic}
	}
	return simple, nil
}

// parseBasic parses <basic-RE> ::= <star> | <plus> | <elementary-RE>.
func (p *parser) parseBasic() (*ast.Basic, error) {
	elem, err := p.parseElementary()
	if err != nil {
		return nil, err
	}
	c, ok := p.peek()
	if ok && c == '*' {
		p.advance()
		return &ast.Basic{Kind: ast.BasicStar, Elem: elem}, nil
	}
	if ok && c == '+' {
		p.advance()
		return &ast.Basic{Kind: ast.BasicPlus, Elem: elem}, nil
	}
	return &ast.Basic{Kind: ast.BasicElementary, Elem: elem}, nil
}

// parseElementary parses <elementary-RE> ::= <group> | <any> | <eos> |
// <char> | <set>.
func (p *parser) parseElementary() (*ast.Elementary, error) {
	c, ok := p.peek()
	if !ok {
		return nil, p.errorf("unexpected end of pattern")
	}
	switch c {
	case '(':
		p.advance()
		inner, err := p.parseRegex()
		if err != nil {
			return nil, err
		}
		c2, ok := p.peek()
		if !ok || c2 != ')' {
			return nil, p.errorf("unterminated group, expected ')'")
		}
		p.advance()
		return &ast.Elementary{Kind: ast.ElemGroup, Group: inner}, nil
	case '.':
		p.advance()
		return &ast.Elementary{Kind: ast.ElemAny}, nil
	case '$':
		p.advance()
		return &ast.Elementary{Kind: ast.ElemEndOfString}, nil
	case '[':
		return p.parseSet()
	case '\\':
		p.advance()
		c2, ok := p.peek()
		if !ok {
			return nil, p.errorf("dangling backslash")
		}
		p.advance()
		return &ast.Elementary{Kind: ast.ElemChar, Char: ast.Char{Kind: ast.CharMeta, Rune: c2}}, nil
	case '|', ')', '*', '+':
		return nil, p.errorf("unexpected metacharacter %q", c)
	default:
		p.advance()
		return &ast.Elementary{Kind: ast.ElemChar, Char: ast.Char{Kind: ast.CharPlain, Rune: c}}, nil
	}
}

// parseSet parses <set> ::= <positive-set> | <negative-set> | <query-set>.
// Entry point sees the leading '['.
func (p *parser) parseSet() (*ast.Elementary, error) {
	p.advance() // consume '['
	c, ok := p.peek()
	if ok && c == '[' {
		p.advance() // consume second '['
		return p.parseQuerySet()
	}
	negative := false
	if c2, ok2 := p.peek(); ok2 && c2 == '^' {
		negative = true
		p.advance()
	}
	items, err := p.parseItems()
	if err != nil {
		return nil, err
	}
	if c3, ok3 := p.peek(); !ok3 || c3 != ']' {
		return nil, p.errorf("unterminated set, expected ']'")
	}
	p.advance()
	kind := ast.SetPositive
	if negative {
		kind = ast.SetNegative
	}
	return &ast.Elementary{Kind: ast.ElemSet, Set: &ast.Set{Kind: kind, Items: items}}, nil
}

// parseItems parses <set-items> ::= <set-item>+ where <set-item> is a
// <range> or a <char>, stopping before the closing ']'.
func (p *parser) parseItems() ([]ast.Item, error) {
	var items []ast.Item
	for {
		c, ok := p.peek()
		if !ok || c == ']' {
			break
		}
		first, err := p.parseSetChar()
		if err != nil {
			return nil, err
		}
		if c2, ok2 := p.peek(); ok2 && c2 == '-' {
			// Lookahead: "-" followed immediately by "]" is a lone
			// char, not an unterminated range.
			save := p.pos
			p.advance()
			if c3, ok3 := p.peek(); ok3 && c3 != ']' {
				second, err := p.parseSetChar()
				if err != nil {
					return nil, err
				}
				items = append(items, ast.Item{Kind: ast.ItemRange, Lo: first, Hi: second})
				continue
			}
			p.pos = save
		}
		items = append(items, ast.Item{Kind: ast.ItemChar, Char: first})
	}
	if len(items) == 0 {
		return nil, p.errorf("empty character set")
	}
	return items, nil
}

func (p *parser) parseSetChar() (ast.Char, error) {
	c, ok := p.peek()
	if !ok {
		return ast.Char{}, p.errorf("unterminated set")
	}
	if c == '\\' {
		p.advance()
		c2, ok2 := p.peek()
		if !ok2 {
			return ast.Char{}, p.errorf("dangling backslash in set")
		}
		p.advance()
		return ast.Char{Kind: ast.CharMeta, Rune: c2}, nil
	}
	p.advance()
	return ast.Char{Kind: ast.CharPlain, Rune: c}, nil
}

// parseQuerySet parses <query-items> up to the closing "]]". The body
// is a comma-separated list of key=value pairs (or bare markers); the
// parser records key/value text verbatim without validating the key --
// spec.md §4.2: "the parser does not validate key semantics; the
// matcher does."
func (p *parser) parseQuerySet() (*ast.Elementary, error) {
	start := p.pos
	for {
		c, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated query set, expected ']]'")
		}
		if c == ']' && p.pos+1 < len(p.runes) && p.runes[p.pos+1] == ']' {
			break
		}
		p.advance()
	}
	body := string(p.runes[start:p.pos])
	p.advance()
	p.advance()
	if strings.TrimSpace(body) == "" {
		return nil, p.errorf("empty query set")
	}
	queries, err := parseQueryBody(body)
	if err != nil {
		return nil, &coreerrors.RegexSyntaxError{Pattern: p.src, Offset: start, Message: err.Error()}
	}
	return &ast.Elementary{Kind: ast.ElemSet, Set: &ast.Set{Kind: ast.SetQuery, Queries: queries}}, nil
}

// parseQueryBody parses the comma-separated key=value list shared by
// both the regex parser (building a Set) and the query engine
// (re-parsing a QuerySetRange's stored body text at match time).
func parseQueryBody(body string) ([]ast.Query, error) {
	parts := splitTopLevel(body, ',')
	if len(parts) == 0 || (len(parts) == 1 && parts[0] == "") {
		return nil, &coreerrors.QueryMalformedError{Body: body, Message: "empty query set"}
	}
	queries := make([]ast.Query, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, &coreerrors.QueryMalformedError{Body: body, Message: "empty query item"}
		}
		if idx := strings.IndexByte(part, '='); idx >= 0 {
			key := part[:idx]
			value := part[idx+1:]
			queries = append(queries, ast.Query{Kind: ast.QueryKv, Key: key, Value: value})
		} else {
			queries = append(queries, ast.Query{Kind: ast.QueryFun, Name: part})
		}
	}
	return queries, nil
}

// splitTopLevel splits on sep without any escaping semantics (the
// query-set body has none per spec.md §6).
func splitTopLevel(s string, sep byte) []string {
	return strings.Split(s, string(sep))
}

// ParseQueryBody is exported for queryengine, which must re-parse the
// literal text captured inside a QuerySetRange transition at match
// time (spec.md §4.7).
func ParseQueryBody(body string) ([]ast.Query, error) {
	return parseQueryBody(body)
}
