/*
File    : raven/ast/pattern.go
Package : ast
*/
package ast

// Pattern is matched against a runtime value by the match package, binding
// identifiers into a fresh scope. See spec section 4.E for the matching
// contract and section 3 for the pattern grammar.
type Pattern interface {
	Node
	pattNode()
}

// IdentPattern always matches, binding the whole value under Name.
type IdentPattern struct {
	Base
	Name string
}

// Constant patterns match only a value of the same kind, by value.
type IntPattern struct {
	Base
	Value int64
}

type FloatPattern struct {
	Base
	Value float64
}

type StringPattern struct {
	Base
	Value string
}

// RawStringPattern compares raw bytes against string values (an `rstr`
// pattern in spec section 4.E).
type RawStringPattern struct {
	Base
	Value string
}

type NilPattern struct{ Base }
type TruePattern struct{ Base }
type FalsePattern struct{ Base }

// ListPattern requires the value be a list of at least len(Elems),
// matching the leading elements element-wise. Tail is nil for a plain
// `[a, b]` pattern (which then also requires the length equal len(Elems));
// when present (`[a, b | t]`), it binds the remaining elements, still as a
// list, after matching the leading ones.
type ListPattern struct {
	Base
	Elems []Pattern
	Tail  Pattern
}

// PairPattern is `(Head | Tail)`: the value must be a non-empty list; Head
// matches its first element, Tail matches the rest (still a list).
type PairPattern struct {
	Base
	Head Pattern
	Tail Pattern
}

// HashPatternKeyKind mirrors HashKeyKind for patterns: a hash pattern key
// can be a bare symbol, a computed expression evaluated in the enclosing
// scope, or an implicit positional index.
type HashPatternKeyKind int

const (
	HashSymbolKey HashPatternKeyKind = iota
	HashExprKey
	HashIndexKey
)

type HashPatternKey struct {
	Kind   HashPatternKeyKind
	Symbol string
	Expr   Expr
	Index  uint32
}

// HashPattern requires the value be a hash containing every key, each
// sub-value matching the corresponding sub-pattern.
type HashPattern struct {
	Base
	Keys  []HashPatternKey
	Patts []Pattern
}

// ConstructorPattern requires the value be a variant built by the named
// constructor, matching each field positionally.
type ConstructorPattern struct {
	Base
	Name  string
	Elems []Pattern
}

func (*IdentPattern) pattNode()        {}
func (*IntPattern) pattNode()          {}
func (*FloatPattern) pattNode()        {}
func (*StringPattern) pattNode()       {}
func (*RawStringPattern) pattNode()    {}
func (*NilPattern) pattNode()          {}
func (*TruePattern) pattNode()         {}
func (*FalsePattern) pattNode()        {}
func (*ListPattern) pattNode()         {}
func (*PairPattern) pattNode()         {}
func (*HashPattern) pattNode()         {}
func (*ConstructorPattern) pattNode()  {}
