/*
File    : raven/parser/parser.go
Package : parser
*/

// Package parser turns a Raven token stream into the ast package's typed
// tree, by Pratt-style single-pass parsing (spec section 4.C): each token
// kind carries at most one prefix and one infix parse rule plus a binding
// precedence, and parseExpr loops consuming infix operators whose
// precedence exceeds the caller's until it runs out of room. There is no
// backtracking; a syntax error is recorded and the parser resynchronises
// at the next statement boundary so later errors in the same file can
// still be reported in one pass.
package parser

import (
	"fmt"

	"github.com/mahrr/l-lang/ast"
	"github.com/mahrr/l-lang/lexer"
)

// precedence levels, lowest to highest binding. `=` and `|` (pair-cons) are
// parsed right-associative by having their infix rule recurse at the SAME
// level instead of level+1; every other binary operator recurses at
// level+1.
const (
	precNone = iota
	precAssign
	precOr
	precAnd
	precEquality
	precComparison
	precCons
	precConcat
	precTerm
	precFactor
	precUnary
	precCall
)

var infixPrec = map[lexer.Kind]int{
	lexer.ASSIGN:  precAssign,
	lexer.OR:      precOr,
	lexer.AND:     precAnd,
	lexer.EQ:      precEquality,
	lexer.NE:      precEquality,
	lexer.LT:      precComparison,
	lexer.LE:      precComparison,
	lexer.GT:      precComparison,
	lexer.GE:      precComparison,
	lexer.PIPE:    precCons,
	lexer.AT:      precConcat,
	lexer.PLUS:    precTerm,
	lexer.MINUS:   precTerm,
	lexer.STAR:    precFactor,
	lexer.SLASH:   precFactor,
	lexer.PERCENT: precFactor,
	lexer.LPAREN:  precCall,
	lexer.LBRACKET: precCall,
	lexer.DOT:     precCall,
}

// blockEnders lists the statement-sequence terminators a `piece` stops at
// without consuming; the caller decides which of them is acceptable in its
// position and reports an error for anything else.
var blockEnders = map[lexer.Kind]bool{
	lexer.END:  true,
	lexer.ELIF: true,
	lexer.ELSE: true,
	lexer.CASE: true,
}

// Error is a single parse diagnostic, carrying the source line so callers
// can render `file:line: message` without re-deriving it.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%d: %s", e.Line, e.Message) }

// Parser drives a Lexer one token of lookahead at a time.
type Parser struct {
	lex    *lexer.Lexer
	cur    lexer.Token
	peek   lexer.Token
	errors []error
}

// New creates a Parser over src, attributing diagnostics to file.
func New(src, file string) *Parser {
	p := &Parser{lex: lexer.New(src, file)}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.Next()
}

// ParseProgram parses a whole source file as a top-level piece, returning
// every statement recognized even if some contained errors; callers should
// treat a non-empty error slice as "do not run this".
func ParseProgram(src, file string) (ast.Piece, []error) {
	p := New(src, file)
	piece := p.piece(map[lexer.Kind]bool{})
	p.expectKind(lexer.EOF, "expected end of file")
	return piece, p.errors
}

func (p *Parser) fail(format string, args ...interface{}) {
	p.errors = append(p.errors, &Error{Line: p.cur.Line, Message: fmt.Sprintf(format, args...)})
}

func (p *Parser) expectKind(kind lexer.Kind, what string) lexer.Token {
	if p.cur.Kind != kind {
		p.fail("%s, found %s", what, p.cur)
		return p.cur
	}
	tok := p.cur
	p.advance()
	return tok
}

// synchronize discards tokens until a likely statement boundary, so one
// error doesn't cascade into a page of misleading ones.
func (p *Parser) synchronize() {
	for p.cur.Kind != lexer.EOF {
		if p.cur.Kind == lexer.NEWLINE || p.cur.Kind == lexer.SEMICOLON {
			p.advance()
			return
		}
		switch p.cur.Kind {
		case lexer.FN, lexer.LET, lexer.IF, lexer.WHILE, lexer.FOR,
			lexer.RETURN, lexer.TYPE, lexer.END:
			return
		}
		p.advance()
	}
}

func (p *Parser) skipSeparators() {
	for p.cur.Kind == lexer.NEWLINE || p.cur.Kind == lexer.SEMICOLON {
		p.advance()
	}
}

// piece parses statements until EOF or a token in enders, consuming
// separators between statements but never the ender itself.
func (p *Parser) piece(enders map[lexer.Kind]bool) ast.Piece {
	var out ast.Piece
	p.skipSeparators()
	for p.cur.Kind != lexer.EOF && !enders[p.cur.Kind] {
		before := p.cur
		s := p.statement()
		if s != nil {
			out = append(out, s)
		}
		if p.cur == before {
			// No progress was made (a broken token stream); force advance
			// to avoid looping forever.
			p.advance()
		}
		p.skipSeparators()
	}
	return out
}

func (p *Parser) statement() ast.Stmt {
	switch p.cur.Kind {
	case lexer.LET:
		return p.letStatement()
	case lexer.FN:
		if p.peek.Kind == lexer.IDENT {
			return p.fnStatement()
		}
		return p.exprStatement()
	case lexer.RETURN:
		return p.returnStatement()
	case lexer.BREAK:
		tok := p.cur
		p.advance()
		return &ast.BreakStmt{Base: ast.NewBase(tok)}
	case lexer.CONTINUE:
		tok := p.cur
		p.advance()
		return &ast.ContinueStmt{Base: ast.NewBase(tok)}
	case lexer.TYPE:
		return p.typeStatement()
	default:
		return p.exprStatement()
	}
}

func (p *Parser) letStatement() ast.Stmt {
	tok := p.cur
	p.advance()
	patt := p.pattern()
	p.expectKind(lexer.ASSIGN, "expected '=' in let statement")
	value := p.expr(precAssign)
	if value == nil {
		p.synchronize()
		return nil
	}
	return &ast.LetStmt{Base: ast.NewBase(tok), Patt: patt, Value: value}
}

func (p *Parser) fnStatement() ast.Stmt {
	tok := p.cur
	p.advance() // fn
	name := p.expectKind(lexer.IDENT, "expected function name")
	params := p.paramList()
	body := p.piece(blockEnders)
	p.expectKind(lexer.END, "expected 'end' to close function body")
	return &ast.FnStmt{Base: ast.NewBase(tok), Name: name.Lexeme, Params: params, Body: body}
}

func (p *Parser) returnStatement() ast.Stmt {
	tok := p.cur
	p.advance()
	if p.cur.Kind == lexer.NEWLINE || p.cur.Kind == lexer.SEMICOLON || p.cur.Kind == lexer.EOF || blockEnders[p.cur.Kind] {
		return &ast.ReturnStmt{Base: ast.NewBase(tok)}
	}
	value := p.expr(precAssign)
	return &ast.ReturnStmt{Base: ast.NewBase(tok), Value: value}
}

func (p *Parser) typeStatement() ast.Stmt {
	tok := p.cur
	p.advance() // type
	name := p.expectKind(lexer.IDENT, "expected type name")
	p.expectKind(lexer.ASSIGN, "expected '=' in type declaration")
	var variants []ast.Variant
	for {
		vname := p.expectKind(lexer.IDENT, "expected variant name")
		arity := 0
		if p.cur.Kind == lexer.LPAREN {
			p.advance()
			for p.cur.Kind != lexer.RPAREN && p.cur.Kind != lexer.EOF {
				p.expectKind(lexer.IDENT, "expected field name")
				arity++
				if p.cur.Kind == lexer.COMMA {
					p.advance()
				}
			}
			p.expectKind(lexer.RPAREN, "expected ')' to close variant fields")
		}
		variants = append(variants, ast.Variant{Name: vname.Lexeme, Arity: arity})
		if p.cur.Kind != lexer.PIPE {
			break
		}
		p.advance()
	}
	return &ast.TypeStmt{Base: ast.NewBase(tok), Name: name.Lexeme, Variants: variants}
}

func (p *Parser) exprStatement() ast.Stmt {
	tok := p.cur
	x := p.expr(precAssign)
	if x == nil {
		p.synchronize()
		return nil
	}
	return &ast.ExprStmt{Base: ast.NewBase(tok), X: x}
}

func (p *Parser) paramList() []ast.Pattern {
	p.expectKind(lexer.LPAREN, "expected '(' to start parameter list")
	var params []ast.Pattern
	for p.cur.Kind != lexer.RPAREN && p.cur.Kind != lexer.EOF {
		params = append(params, p.pattern())
		if p.cur.Kind == lexer.COMMA {
			p.advance()
		} else {
			break
		}
	}
	p.expectKind(lexer.RPAREN, "expected ')' to close parameter list")
	return params
}

// ---- Expressions ----

func (p *Parser) expr(min int) ast.Expr {
	left := p.prefix()
	if left == nil {
		return nil
	}
	for {
		prec, ok := infixPrec[p.cur.Kind]
		if !ok || prec < min {
			return left
		}
		left = p.infix(left, prec)
	}
}

func (p *Parser) prefix() ast.Expr {
	tok := p.cur
	switch tok.Kind {
	case lexer.IDENT:
		p.advance()
		return &ast.Ident{Base: ast.NewBase(tok), Name: tok.Lexeme}
	case lexer.INT:
		p.advance()
		return &ast.IntLit{Base: ast.NewBase(tok), Value: parseInt(tok.Lexeme)}
	case lexer.FLOAT:
		p.advance()
		return &ast.FloatLit{Base: ast.NewBase(tok), Value: parseFloat(tok.Lexeme)}
	case lexer.STRING:
		p.advance()
		return &ast.StringLit{Base: ast.NewBase(tok), Value: unescape(tok.Lexeme)}
	case lexer.RSTR:
		p.advance()
		return &ast.RawStringLit{Base: ast.NewBase(tok), Value: tok.Lexeme}
	case lexer.TRUE:
		p.advance()
		return &ast.BoolLit{Base: ast.NewBase(tok), Value: true}
	case lexer.FALSE:
		p.advance()
		return &ast.BoolLit{Base: ast.NewBase(tok), Value: false}
	case lexer.NIL:
		p.advance()
		return &ast.NilLit{Base: ast.NewBase(tok)}
	case lexer.MINUS:
		p.advance()
		x := p.expr(precUnary)
		return &ast.Unary{Base: ast.NewBase(tok), Op: lexer.MINUS, X: x}
	case lexer.NOT:
		p.advance()
		x := p.expr(precUnary)
		return &ast.Unary{Base: ast.NewBase(tok), Op: lexer.NOT, X: x}
	case lexer.LPAREN:
		p.advance()
		x := p.expr(precAssign)
		p.expectKind(lexer.RPAREN, "expected ')' to close grouped expression")
		return &ast.Group{Base: ast.NewBase(tok), X: x}
	case lexer.LBRACKET:
		return p.listLit(tok)
	case lexer.LBRACE:
		return p.hashLit(tok)
	case lexer.FN:
		return p.fnLit(tok)
	case lexer.IF:
		return p.ifExpr(tok)
	case lexer.WHILE:
		return p.whileExpr(tok)
	case lexer.FOR:
		return p.forExpr(tok)
	case lexer.COND:
		return p.condExpr(tok)
	case lexer.MATCH:
		return p.matchExpr(tok)
	default:
		p.fail("unexpected token %s in expression", tok)
		p.advance()
		return nil
	}
}

func (p *Parser) infix(left ast.Expr, prec int) ast.Expr {
	tok := p.cur
	switch tok.Kind {
	case lexer.ASSIGN:
		p.advance()
		value := p.expr(precAssign) // right-associative
		return &ast.Assign{Base: ast.NewBase(tok), Target: left, Value: value}
	case lexer.PIPE:
		p.advance()
		right := p.expr(precCons) // right-associative
		return &ast.Binary{Base: ast.NewBase(tok), Op: lexer.PIPE, L: left, R: right}
	case lexer.LPAREN:
		return p.call(tok, left)
	case lexer.LBRACKET:
		return p.index(tok, left)
	case lexer.DOT:
		p.advance()
		field := p.expectKind(lexer.IDENT, "expected field name after '.'")
		return &ast.Access{Base: ast.NewBase(tok), X: left, Field: field.Lexeme}
	default:
		p.advance()
		right := p.expr(prec + 1) // left-associative
		return &ast.Binary{Base: ast.NewBase(tok), Op: tok.Kind, L: left, R: right}
	}
}

func (p *Parser) call(tok lexer.Token, fn ast.Expr) ast.Expr {
	p.advance() // (
	var args []ast.Expr
	for p.cur.Kind != lexer.RPAREN && p.cur.Kind != lexer.EOF {
		args = append(args, p.expr(precAssign))
		if p.cur.Kind == lexer.COMMA {
			p.advance()
		} else {
			break
		}
	}
	p.expectKind(lexer.RPAREN, "expected ')' to close call arguments")
	return &ast.Call{Base: ast.NewBase(tok), Fn: fn, Args: args}
}

func (p *Parser) index(tok lexer.Token, x ast.Expr) ast.Expr {
	p.advance() // [
	idx := p.expr(precAssign)
	p.expectKind(lexer.RBRACKET, "expected ']' to close index expression")
	return &ast.Index{Base: ast.NewBase(tok), X: x, Idx: idx}
}

func (p *Parser) listLit(tok lexer.Token) ast.Expr {
	p.advance() // [
	var elems []ast.Expr
	for p.cur.Kind != lexer.RBRACKET && p.cur.Kind != lexer.EOF {
		elems = append(elems, p.expr(precAssign))
		if p.cur.Kind == lexer.COMMA {
			p.advance()
		} else {
			break
		}
	}
	p.expectKind(lexer.RBRACKET, "expected ']' to close list literal")
	return &ast.ListLit{Base: ast.NewBase(tok), Elems: elems}
}

func (p *Parser) hashLit(tok lexer.Token) ast.Expr {
	p.advance() // {
	var keys []ast.HashKey
	var values []ast.Expr
	for p.cur.Kind != lexer.RBRACE && p.cur.Kind != lexer.EOF {
		var key ast.HashKey
		if p.cur.Kind == lexer.LBRACKET {
			p.advance()
			keyExpr := p.expr(precAssign)
			p.expectKind(lexer.RBRACKET, "expected ']' to close computed hash key")
			key = ast.HashKey{Kind: ast.ExprKey, Expr: keyExpr}
		} else {
			name := p.expectKind(lexer.IDENT, "expected hash field name")
			key = ast.HashKey{Kind: ast.SymbolKey, Symbol: name.Lexeme}
		}
		p.expectKind(lexer.COLON, "expected ':' after hash key")
		value := p.expr(precAssign)
		keys = append(keys, key)
		values = append(values, value)
		if p.cur.Kind == lexer.COMMA {
			p.advance()
		} else {
			break
		}
	}
	p.expectKind(lexer.RBRACE, "expected '}' to close hash literal")
	return &ast.HashLit{Base: ast.NewBase(tok), Keys: keys, Values: values}
}

func (p *Parser) fnLit(tok lexer.Token) ast.Expr {
	p.advance() // fn
	params := p.paramList()
	body := p.piece(blockEnders)
	p.expectKind(lexer.END, "expected 'end' to close function literal")
	return &ast.FnLit{Base: ast.NewBase(tok), Params: params, Body: body}
}

func (p *Parser) ifExpr(tok lexer.Token) ast.Expr {
	p.advance() // if
	cond := p.expr(precAssign)
	then := p.piece(blockEnders)
	node := &ast.If{Base: ast.NewBase(tok), Cond: cond, Then: then}
	for p.cur.Kind == lexer.ELIF {
		p.advance()
		econd := p.expr(precAssign)
		ethen := p.piece(blockEnders)
		node.Elifs = append(node.Elifs, ast.ElifBranch{Cond: econd, Then: ethen})
	}
	if p.cur.Kind == lexer.ELSE {
		p.advance()
		node.Else = p.piece(blockEnders)
	}
	p.expectKind(lexer.END, "expected 'end' to close if expression")
	return node
}

func (p *Parser) whileExpr(tok lexer.Token) ast.Expr {
	p.advance() // while
	cond := p.expr(precAssign)
	if p.cur.Kind == lexer.DO {
		p.advance()
	}
	body := p.piece(blockEnders)
	p.expectKind(lexer.END, "expected 'end' to close while expression")
	return &ast.While{Base: ast.NewBase(tok), Cond: cond, Body: body}
}

func (p *Parser) forExpr(tok lexer.Token) ast.Expr {
	p.advance() // for
	patt := p.pattern()
	p.expectKind(lexer.IN, "expected 'in' in for expression")
	iter := p.expr(precAssign)
	if p.cur.Kind == lexer.DO {
		p.advance()
	}
	body := p.piece(blockEnders)
	p.expectKind(lexer.END, "expected 'end' to close for expression")
	return &ast.For{Base: ast.NewBase(tok), Patt: patt, Iter: iter, Body: body}
}

// arm parses a bare expression arm, or a `do ... end` piece when the arm
// opens with `do` (spec 4.C: "Arms may be a single expression or a
// `do … end` piece").
func (p *Parser) arm() ast.Arm {
	if p.cur.Kind == lexer.DO {
		p.advance()
		body := p.piece(blockEnders)
		p.expectKind(lexer.END, "expected 'end' to close 'do' arm")
		return ast.Arm(body)
	}
	tok := p.cur
	x := p.expr(precAssign)
	return ast.Arm{&ast.ExprStmt{Base: ast.NewBase(tok), X: x}}
}

func (p *Parser) condExpr(tok lexer.Token) ast.Expr {
	p.advance() // cond
	if p.cur.Kind == lexer.DO {
		p.advance()
	}
	node := &ast.Cond{Base: ast.NewBase(tok)}
	for p.cur.Kind != lexer.END && p.cur.Kind != lexer.EOF {
		p.skipSeparators()
		if p.cur.Kind == lexer.END {
			break
		}
		var cond ast.Expr
		if p.cur.Kind == lexer.ELSE {
			etok := p.cur
			p.advance()
			cond = &ast.BoolLit{Base: ast.NewBase(etok), Value: true}
		} else {
			cond = p.expr(precAssign)
		}
		p.expectKind(lexer.ARROW, "expected '->' after cond branch condition")
		body := p.arm()
		node.Arms = append(node.Arms, ast.CondArm{Cond: cond, Body: body})
		p.skipSeparators()
	}
	p.expectKind(lexer.END, "expected 'end' to close cond expression")
	return node
}

func (p *Parser) matchExpr(tok lexer.Token) ast.Expr {
	p.advance() // match
	value := p.expr(precAssign)
	if p.cur.Kind == lexer.DO {
		p.advance()
	}
	node := &ast.Match{Base: ast.NewBase(tok), Value: value}
	p.skipSeparators()
	for p.cur.Kind == lexer.CASE {
		p.advance()
		patt := p.pattern()
		p.expectKind(lexer.ARROW, "expected '->' after match pattern")
		body := p.arm()
		node.Cases = append(node.Cases, ast.MatchCase{Patt: patt, Body: body})
		p.skipSeparators()
	}
	p.expectKind(lexer.END, "expected 'end' to close match expression")
	return node
}

// ---- Patterns ----

func (p *Parser) pattern() ast.Pattern {
	tok := p.cur
	switch tok.Kind {
	case lexer.IDENT:
		if isConstructorName(tok.Lexeme) && p.peek.Kind == lexer.LPAREN {
			return p.constructorPattern(tok)
		}
		p.advance()
		return &ast.IdentPattern{Base: ast.NewBase(tok), Name: tok.Lexeme}
	case lexer.INT:
		p.advance()
		return &ast.IntPattern{Base: ast.NewBase(tok), Value: parseInt(tok.Lexeme)}
	case lexer.FLOAT:
		p.advance()
		return &ast.FloatPattern{Base: ast.NewBase(tok), Value: parseFloat(tok.Lexeme)}
	case lexer.STRING:
		p.advance()
		return &ast.StringPattern{Base: ast.NewBase(tok), Value: unescape(tok.Lexeme)}
	case lexer.RSTR:
		p.advance()
		return &ast.RawStringPattern{Base: ast.NewBase(tok), Value: tok.Lexeme}
	case lexer.NIL:
		p.advance()
		return &ast.NilPattern{Base: ast.NewBase(tok)}
	case lexer.TRUE:
		p.advance()
		return &ast.TruePattern{Base: ast.NewBase(tok)}
	case lexer.FALSE:
		p.advance()
		return &ast.FalsePattern{Base: ast.NewBase(tok)}
	case lexer.LBRACKET:
		return p.listPattern(tok)
	case lexer.LBRACE:
		return p.hashPattern(tok)
	case lexer.LPAREN:
		return p.parenPattern(tok)
	default:
		p.fail("unexpected token %s in pattern", tok)
		p.advance()
		return &ast.IdentPattern{Base: ast.NewBase(tok), Name: "_"}
	}
}

// isConstructorName reports whether an identifier is capitalized, the
// convention a `type` declaration's variant names follow; only a
// capitalized name directly followed by '(' is parsed as a constructor
// pattern rather than a binding identifier.
func isConstructorName(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}

func (p *Parser) constructorPattern(tok lexer.Token) ast.Pattern {
	p.advance() // name
	p.advance() // (
	var elems []ast.Pattern
	for p.cur.Kind != lexer.RPAREN && p.cur.Kind != lexer.EOF {
		elems = append(elems, p.pattern())
		if p.cur.Kind == lexer.COMMA {
			p.advance()
		} else {
			break
		}
	}
	p.expectKind(lexer.RPAREN, "expected ')' to close constructor pattern")
	return &ast.ConstructorPattern{Base: ast.NewBase(tok), Name: tok.Lexeme, Elems: elems}
}

// listPattern parses `[a, b, c]` and, since a trailing `| tail` binds the
// remainder of the list (spec 4.E's pair-pattern semantics generalized to
// an arbitrary fixed prefix), `[a, b | t]`.
func (p *Parser) listPattern(tok lexer.Token) ast.Pattern {
	p.advance() // [
	var elems []ast.Pattern
	var tail ast.Pattern
	for p.cur.Kind != lexer.RBRACKET && p.cur.Kind != lexer.EOF {
		elems = append(elems, p.pattern())
		if p.cur.Kind == lexer.COMMA {
			p.advance()
		} else if p.cur.Kind == lexer.PIPE {
			p.advance()
			tail = p.pattern()
			break
		} else {
			break
		}
	}
	p.expectKind(lexer.RBRACKET, "expected ']' to close list pattern")
	return &ast.ListPattern{Base: ast.NewBase(tok), Elems: elems, Tail: tail}
}

// parenPattern handles `(h | t)` pair patterns and, since constructor
// arguments reuse paren-delimited pattern lists, `Name(a, b)` constructor
// patterns when the identifier directly precedes '('.
func (p *Parser) parenPattern(tok lexer.Token) ast.Pattern {
	p.advance() // (
	head := p.pattern()
	if p.cur.Kind == lexer.PIPE {
		p.advance()
		tail := p.pattern()
		p.expectKind(lexer.RPAREN, "expected ')' to close pair pattern")
		return &ast.PairPattern{Base: ast.NewBase(tok), Head: head, Tail: tail}
	}
	p.expectKind(lexer.RPAREN, "expected ')' to close pattern group")
	return head
}

func (p *Parser) hashPattern(tok lexer.Token) ast.Pattern {
	p.advance() // {
	var keys []ast.HashPatternKey
	var patts []ast.Pattern
	for p.cur.Kind != lexer.RBRACE && p.cur.Kind != lexer.EOF {
		var key ast.HashPatternKey
		if p.cur.Kind == lexer.LBRACKET {
			p.advance()
			keyExpr := p.expr(precAssign)
			p.expectKind(lexer.RBRACKET, "expected ']' to close computed hash pattern key")
			key = ast.HashPatternKey{Kind: ast.HashExprKey, Expr: keyExpr}
		} else {
			name := p.expectKind(lexer.IDENT, "expected hash pattern field name")
			key = ast.HashPatternKey{Kind: ast.HashSymbolKey, Symbol: name.Lexeme}
		}
		p.expectKind(lexer.COLON, "expected ':' after hash pattern key")
		sub := p.pattern()
		keys = append(keys, key)
		patts = append(patts, sub)
		if p.cur.Kind == lexer.COMMA {
			p.advance()
		} else {
			break
		}
	}
	p.expectKind(lexer.RBRACE, "expected '}' to close hash pattern")
	return &ast.HashPattern{Base: ast.NewBase(tok), Keys: keys, Patts: patts}
}
