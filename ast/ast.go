/*
File    : raven/ast/ast.go
Package : ast
*/

// Package ast defines the typed tree produced by the parser: statements,
// expressions, and (in pattern.go) patterns. Every node keeps a back-pointer
// token (Tok) into the lexer's stream so that later stages — the resolver,
// the tree evaluator, and the bytecode compiler — can report diagnostics at
// the right source line.
//
// The teacher (go-mix) dispatches over its tree with a NodeVisitor
// interface implementing double dispatch. Raven's AST is a much larger
// grammar (patterns, match arms, hash literals with two kinds of key,
// closures) and a second visitor would have to be written three times over
// — once for the resolver, once for the tree evaluator, once for the
// compiler. Instead each node is a plain struct behind a narrow marker
// interface, and each stage switches on concrete type. This keeps the
// teacher's "one interface per concern" spirit without tripling the
// boilerplate.
package ast

import "github.com/mahrr/l-lang/lexer"

// Node is the base of every AST piece: it carries the token that produced
// it, for error messages.
type Node interface {
	Where() lexer.Token
}

// Stmt is a statement: `let`, `fn`, `return`, `break`, `continue`, `type`,
// or a bare expression.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression. Every expression is usable as a statement (an
// ExprStmt simply wraps one), matching the expression-oriented nature of
// the language described in section 1.
type Expr interface {
	Node
	exprNode()
}

// Piece is an ordered sequence of statements forming a block — the unit of
// parsing and evaluation (see GLOSSARY).
type Piece []Stmt

// Base is embedded in every concrete node to provide Where() without
// repeating the field and method on each type.
type Base struct {
	Tok lexer.Token
}

func (b Base) Where() lexer.Token { return b.Tok }

// ---- Statements ----

type ExprStmt struct {
	Base
	X Expr
}

type LetStmt struct {
	Base
	Patt  Pattern
	Value Expr
}

// FnStmt is sugar for `let Name = fn(Params) Body end`, kept distinct so
// the resolver can declare Name before resolving Body, enabling direct
// recursion by name (`fn fact(n) ... fact(n-1) ... end`).
type FnStmt struct {
	Base
	Name   string
	Params []Pattern
	Body   Piece
}

type ReturnStmt struct {
	Base
	Value Expr // nil means a bare `return` (yields Void)
}

type BreakStmt struct{ Base }
type ContinueStmt struct{ Base }

// Variant is one constructor of a `type` declaration: a name and a fixed
// positional arity (see SPEC_FULL.md's supplemented variant feature).
type Variant struct {
	Name  string
	Arity int
}

type TypeStmt struct {
	Base
	Name     string
	Variants []Variant
}

func (*ExprStmt) stmtNode()     {}
func (*LetStmt) stmtNode()      {}
func (*FnStmt) stmtNode()       {}
func (*ReturnStmt) stmtNode()   {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*TypeStmt) stmtNode()     {}

// ---- Expressions ----

type Ident struct {
	Base
	Name string
}

type IntLit struct {
	Base
	Value int64
}

type FloatLit struct {
	Base
	Value float64
}

type StringLit struct {
	Base
	Value string
}

// RawStringLit holds a backtick-quoted string's verbatim bytes.
type RawStringLit struct {
	Base
	Value string
}

type BoolLit struct {
	Base
	Value bool
}

type NilLit struct{ Base }

type ListLit struct {
	Base
	Elems []Expr
}

// HashKeyKind distinguishes the two ways a hash literal's key can be
// written: a bare identifier used as a symbol, or a bracketed expression
// evaluated at runtime.
type HashKeyKind int

const (
	SymbolKey HashKeyKind = iota
	ExprKey
)

type HashKey struct {
	Kind   HashKeyKind
	Symbol string
	Expr   Expr
}

type HashLit struct {
	Base
	Keys   []HashKey
	Values []Expr
}

type FnLit struct {
	Base
	Params []Pattern
	Body   Piece
}

type Group struct {
	Base
	X Expr
}

type Unary struct {
	Base
	Op lexer.Kind
	X  Expr
}

type Binary struct {
	Base
	Op   lexer.Kind
	L, R Expr
}

type Call struct {
	Base
	Fn   Expr
	Args []Expr
}

type Index struct {
	Base
	X   Expr
	Idx Expr
}

type Access struct {
	Base
	X     Expr
	Field string
}

type ElifBranch struct {
	Cond Expr
	Then Piece
}

type If struct {
	Base
	Cond  Expr
	Then  Piece
	Elifs []ElifBranch
	Else  Piece // nil if no else branch
}

type While struct {
	Base
	Cond Expr
	Body Piece
}

type For struct {
	Base
	Patt Pattern
	Iter Expr
	Body Piece
}

// Arm is the right-hand side of a cond/match branch: either a bare
// expression or a `do ... end` piece (see GLOSSARY). The parser always
// normalizes to a Piece; a bare-expression arm becomes a one-statement
// piece, so downstream stages don't need to special-case the shape.
type Arm Piece

type CondArm struct {
	Cond Expr
	Body Arm
}

type Cond struct {
	Base
	Arms []CondArm
}

type MatchCase struct {
	Patt Pattern
	Body Arm
}

type Match struct {
	Base
	Value Expr
	Cases []MatchCase
}

type Assign struct {
	Base
	Target Expr
	Value  Expr
}

func (*Ident) exprNode()        {}
func (*IntLit) exprNode()       {}
func (*FloatLit) exprNode()     {}
func (*StringLit) exprNode()    {}
func (*RawStringLit) exprNode() {}
func (*BoolLit) exprNode()      {}
func (*NilLit) exprNode()       {}
func (*ListLit) exprNode()      {}
func (*HashLit) exprNode()      {}
func (*FnLit) exprNode()        {}
func (*Group) exprNode()        {}
func (*Unary) exprNode()        {}
func (*Binary) exprNode()       {}
func (*Call) exprNode()         {}
func (*Index) exprNode()        {}
func (*Access) exprNode()       {}
func (*If) exprNode()           {}
func (*While) exprNode()        {}
func (*For) exprNode()          {}
func (*Cond) exprNode()         {}
func (*Match) exprNode()        {}
func (*Assign) exprNode()       {}

// NewBase constructs the embeddable Base from a token; exported so the
// parser package (which lives outside ast) can build nodes without each
// literal constructor repeating `Base{Tok: tok}`.
func NewBase(tok lexer.Token) Base { return Base{Tok: tok} }
