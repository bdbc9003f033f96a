// Package compiler lowers a regex AST (ast.Regex) to an NFA fragment,
// per spec.md §4.4: a classic Thompson construction extended with two
// non-standard pieces the distilled grammar requires -- Open/Close
// transitions as first-class capture-group markers, and a
// QuerySetRange transition whose firing condition is deferred entirely
// to the query engine at match time.
//
// Grounded on the teacher's nfa.Compiler (nfa/compile.go): a recursive,
// post-order walk building Thompson fragments through an nfa.Builder,
// exactly the shape compileRegexp/compileUnicodeClassReversed use there
// -- only here the AST, the class representation, and the transition
// set come from this module's own grammar rather than regexp/syntax.
package compiler

import (
	"sort"
	"strings"

	"github.com/coregx/sed/ast"
	"github.com/coregx/sed/nfa"
)

// Config tunes compilation limits, following the teacher's
// nfa.CompilerConfig/DefaultCompilerConfig split (nfa/compile.go).
type Config struct {
	// MaxRecursionDepth bounds the compiler's recursive AST walk, the
	// same guard nfa.CompilerConfig.MaxRecursionDepth provides against
	// a pathologically deep pattern blowing the Go call stack.
	MaxRecursionDepth int
}

// DefaultConfig mirrors nfa.DefaultCompilerConfig's MaxRecursionDepth
// of 100.
func DefaultConfig() Config {
	return Config{MaxRecursionDepth: 100}
}

// Compile lowers re to a complete NFA under DefaultConfig, its single
// accept state the exit node of the top-level fragment, per spec.md §3.
func Compile(re *ast.Regex) *nfa.NFA {
	return CompileWithConfig(re, DefaultConfig())
}

// CompileWithConfig lowers re to a complete NFA under cfg. A pattern
// nested deeper than cfg.MaxRecursionDepth panics rather than
// overflowing the stack, the same tradeoff nfa.Compiler.compileRegexp
// makes by returning a CompileError at its own depth limit -- this
// compiler's Compile has no existing error-return contract to extend,
// so the limit is enforced the same way nfa.Get treats an invalid
// NodeID: a precondition violation, not a recoverable error.
func CompileWithConfig(re *ast.Regex, cfg Config) *nfa.NFA {
	if cfg.MaxRecursionDepth <= 0 {
		cfg.MaxRecursionDepth = DefaultConfig().MaxRecursionDepth
	}
	b := newBuilder()
	b.maxDepth = cfg.MaxRecursionDepth
	frag := b.compileRegex(re)
	return &nfa.NFA{
		Nodes:  b.nodes,
		Start:  frag.entry,
		Accept: frag.exit,
	}
}

// fragment is a Thompson fragment: an entry node and an exit node, with
// the property that any accepting path through the whole automaton
// passes through exit exactly once having entered at entry.
type fragment struct {
	entry, exit nfa.NodeID
}

type builder struct {
	nodes     []nfa.Node
	nextGroup int
	maxDepth  int
	depth     int
}

func newBuilder() *builder {
	return &builder{}
}

func (b *builder) newNode() nfa.NodeID {
	id := nfa.NodeID(len(b.nodes))
	b.nodes = append(b.nodes, nfa.Node{})
	return id
}

func (b *builder) addTransition(from nfa.NodeID, t nfa.Transition) {
	b.nodes[from].Transitions = append(b.nodes[from].Transitions, t)
}

func (b *builder) addEpsilon(from, to nfa.NodeID) {
	b.addTransition(from, nfa.Transition{Kind: nfa.Epsilon, Dest: to})
}

// compileRegex walks <RE> ::= <union> | <simple-RE>. Recurses once per
// nested group and once per '|' in an alternation chain, so its own
// depth is what MaxRecursionDepth bounds.
func (b *builder) compileRegex(re *ast.Regex) fragment {
	b.depth++
	if b.depth > b.maxDepth {
		panic("compiler: pattern nesting exceeds MaxRecursionDepth")
	}
	defer func() { b.depth-- }()

	switch re.Kind {
	case ast.RegexUnion:
		left := b.compileRegex(re.Left)
		right := b.compileSimple(re.Right)
		return b.union(left, right)
	default: // ast.RegexSimple
		return b.compileSimple(re.Body)
	}
}

// compileSimple walks <simple-RE> ::= <concatenation> | <basic-RE>.
func (b *builder) compileSimple(s *ast.Simple) fragment {
	switch s.Kind {
	case ast.SimpleConcat:
		left := b.compileSimple(s.Left)
		right := b.compileBasic(s.Right)
		return b.concat(left, right)
	default: // ast.SimpleBasic
		return b.compileBasic(s.Body)
	}
}

// compileBasic walks <basic-RE> ::= <star> | <plus> | <elementary-RE>.
func (b *builder) compileBasic(basic *ast.Basic) fragment {
	inner := b.compileElementary(basic.Elem)
	switch basic.Kind {
	case ast.BasicStar:
		// epsilon both ways between entry and exit: skip the loop
		// body entirely, or repeat it any number of times.
		b.addEpsilon(inner.entry, inner.exit)
		b.addEpsilon(inner.exit, inner.entry)
		return inner
	case ast.BasicPlus:
		// epsilon only from exit back to entry: the body must run at
		// least once, then may repeat.
		b.addEpsilon(inner.exit, inner.entry)
		return inner
	default: // ast.BasicElementary
		return inner
	}
}

// compileElementary walks <elementary-RE> ::= <group> | <any> | <eos> |
// <char> | <set> | Nothing.
func (b *builder) compileElementary(elem *ast.Elementary) fragment {
	switch elem.Kind {
	case ast.ElemGroup:
		idx := b.nextGroup + 1
		b.nextGroup++
		elem.GroupIndex = idx
		inner := b.compileRegex(elem.Group)
		entry, exit := b.newNode(), b.newNode()
		b.addTransition(entry, nfa.Transition{Kind: nfa.Open, GroupIndex: idx, Dest: inner.entry})
		b.addTransition(inner.exit, nfa.Transition{Kind: nfa.Close, GroupIndex: idx, Dest: exit})
		return fragment{entry, exit}
	case ast.ElemAny:
		entry, exit := b.newNode(), b.newNode()
		b.addTransition(entry, nfa.Transition{Kind: nfa.Any, Dest: exit})
		return fragment{entry, exit}
	case ast.ElemEndOfString:
		// original_source's regex2nfa::do_elem never implements Eos
		// (unimplemented!()), and spec.md §4.4's compiler walk omits
		// it from its transition-kind enumeration entirely. Preserved
		// here as the same gap rather than inventing end-of-buffer
		// match semantics the source never specified: compiles to an
		// unreachable fragment, identically to Nothing.
		entry, exit := b.newNode(), b.newNode()
		return fragment{entry, exit}
	case ast.ElemChar:
		entry, exit := b.newNode(), b.newNode()
		b.addTransition(entry, nfa.Transition{Kind: nfa.Char, Rune: elem.Char.Rune, Dest: exit})
		return fragment{entry, exit}
	case ast.ElemSet:
		return b.compileSet(elem.Set)
	default: // ast.ElemNothing
		// Two nodes with no transition between them: exit is
		// structurally unreachable from entry, so no path compiled
		// from this fragment (or any fragment containing it) can
		// ever reach an accept state.
		entry, exit := b.newNode(), b.newNode()
		return fragment{entry, exit}
	}
}

func (b *builder) compileSet(set *ast.Set) fragment {
	entry, exit := b.newNode(), b.newNode()
	switch set.Kind {
	case ast.SetPositive:
		b.addTransition(entry, nfa.Transition{Kind: nfa.Range, Class: materializeClass(set.Items), Dest: exit})
	case ast.SetNegative:
		b.addTransition(entry, nfa.Transition{Kind: nfa.NegativeRange, Class: materializeClass(set.Items), Dest: exit})
	default: // ast.SetQuery
		b.addTransition(entry, nfa.Transition{Kind: nfa.QuerySetRange, Class: materializeQuery(set.Queries), Dest: exit})
	}
	return fragment{entry, exit}
}

// union builds the standard Thompson alternation: a new entry epsilons
// into both branches, both branches epsilon into a new exit.
func (b *builder) union(a, c fragment) fragment {
	entry, exit := b.newNode(), b.newNode()
	b.addEpsilon(entry, a.entry)
	b.addEpsilon(entry, c.entry)
	b.addEpsilon(a.exit, exit)
	b.addEpsilon(c.exit, exit)
	return fragment{entry, exit}
}

// concat splices b's exit directly into c's entry -- no new nodes.
func (b *builder) concat(a, c fragment) fragment {
	b.addEpsilon(a.exit, c.entry)
	return fragment{a.entry, c.exit}
}

// materializeClass expands a set's items (lone chars and ranges) into a
// sorted, deduplicated string of member code points, the representation
// Range/NegativeRange transitions test membership against at match time.
func materializeClass(items []ast.Item) string {
	seen := make(map[rune]bool)
	for _, it := range items {
		if it.Kind == ast.ItemChar {
			seen[it.Char.Rune] = true
			continue
		}
		lo, hi := it.Lo.Rune, it.Hi.Rune
		if hi < lo {
			lo, hi = hi, lo
		}
		for r := lo; r <= hi; r++ {
			seen[r] = true
		}
	}
	runes := make([]rune, 0, len(seen))
	for r := range seen {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return string(runes)
}

// materializeQuery re-serializes a query-set's parsed items back to the
// "key=value,key=value" text queryengine.Query expects to re-parse at
// match time (spec.md §4.7: query semantics belong to the query engine,
// not the compiler, so only the raw text is carried on the transition).
func materializeQuery(queries []ast.Query) string {
	parts := make([]string, 0, len(queries))
	for _, q := range queries {
		if q.Kind == ast.QueryKv {
			parts = append(parts, q.Key+"="+q.Value)
		} else {
			parts = append(parts, q.Name)
		}
	}
	return strings.Join(parts, ",")
}
