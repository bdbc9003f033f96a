// Package queryengine answers the structural questions that query-set
// regex transitions and the {name} location predicate depend on: "is
// there an identifier (of this name/type) starting here?" and "where
// does function X's body start and end?".
//
// It is built once per file from the raw file text plus whatever
// scanner.Identifiers/scanner.Functions implementation the caller
// supplies, per spec.md §4.7. The engine itself never re-scans the
// text; it only indexes what the scanner already extracted.
package queryengine

import (
	"strconv"
	"strings"

	"github.com/coregx/sed/ast"
	"github.com/coregx/sed/regexparser"
	"github.com/coregx/sed/scanner"
)

// Engine holds a file's extracted identifiers and functions plus the
// offset the matcher uses to translate its local (per-match-attempt)
// positions into absolute file offsets.
type Engine struct {
	identifiers []scanner.Identifier
	functions   []scanner.Function
	offset      int
}

// Build runs the given scanners over text once and indexes their
// output. Either scanner may be nil if the language in question
// doesn't support that feature (spec.md §6: "not all languages have
// the same features to be extracted").
func Build(text string, idents scanner.Identifiers, funcs scanner.Functions) *Engine {
	qe := &Engine{}
	if idents != nil {
		qe.identifiers = idents.ReadIdentifiers(text)
	}
	if funcs != nil {
		qe.functions = funcs.ReadFunctions(text)
	}
	return qe
}

// SetOffset sets the absolute file offset corresponding to local
// position 0 in the matcher's current scan attempt (spec.md §4.6 step
// 1: "Set query_engine.offset = s").
func (qe *Engine) SetOffset(offset int) {
	qe.offset = offset
}

// Offset returns the engine's currently configured offset.
func (qe *Engine) Offset() int {
	return qe.offset
}

// Query answers a query-set transition's body against the current
// offset-adjusted position, per spec.md §4.7:
//
//   - If any pos=a:b pair is present, the query succeeds iff
//     pos+offset == a, returning b; pos pairs short-circuit the
//     identifier scan entirely (confirmed by SPEC_FULL.md's Open
//     Questions resolution).
//   - Otherwise, gather name=/type= constraints (if any) and scan
//     identifiers for the first record whose start matches
//     pos+offset and whose name/type satisfy every present
//     constraint, returning end-offset as the consumed length.
//
// querySet is the raw text captured inside "[[...]]" at compile time;
// it is re-parsed here because the query engine, not the regex
// compiler, owns query semantics (spec.md §4.2: "the parser does not
// validate key semantics; the matcher does").
func (qe *Engine) Query(position int, querySet string) (int, bool) {
	queries, err := regexparser.ParseQueryBody(querySet)
	if err != nil {
		return 0, false
	}

	var name, kind *string
	for _, q := range queries {
		if q.Kind != ast.QueryKv {
			continue
		}
		switch q.Key {
		case "pos":
			return qe.queryPos(position, q.Value)
		case "name":
			v := q.Value
			name = &v
		case "type":
			v := q.Value
			kind = &v
		}
	}

	for _, ident := range qe.identifiers {
		if name != nil && *name != ident.Name {
			continue
		}
		if kind != nil && *kind != ident.Type {
			continue
		}
		if position+qe.offset == ident.Start {
			return ident.End - qe.offset, true
		}
	}
	return 0, false
}

// queryPos implements the pos=a:b branch: succeeds iff position+offset
// equals a, in which case the match consumes exactly b code points.
func (qe *Engine) queryPos(position int, value string) (int, bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	a, err1 := strconv.Atoi(parts[0])
	b, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, false
	}
	if position+qe.offset != a {
		return 0, false
	}
	return b, true
}

// FunctionLocation linearly searches the scanned functions for one
// matching name, returning its body's start/end offsets.
func (qe *Engine) FunctionLocation(name string) (start, end int, ok bool) {
	for _, fn := range qe.functions {
		if fn.Name == name {
			return fn.BodyStart, fn.BodyEnd, true
		}
	}
	return 0, 0, false
}
