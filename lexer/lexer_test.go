package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func collectKinds(src string) []Kind {
	l := New(src, "test")
	var kinds []Kind
	for {
		tok := l.Next()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == EOF {
			break
		}
	}
	return kinds
}

func assertKinds(t *testing.T, src string, want []Kind) {
	t.Helper()
	assert.Equal(t, want, collectKinds(src), "tokens for %q", src)
}

func TestNumbers(t *testing.T) {
	assertKinds(t, "42", []Kind{INT, EOF})
	assertKinds(t, "3.14", []Kind{FLOAT, EOF})
	assertKinds(t, "1e10", []Kind{FLOAT, EOF})
	assertKinds(t, "1.5e-3", []Kind{FLOAT, EOF})
}

func TestStrings(t *testing.T) {
	l := New(`"hello\n" `+"`raw\\n`", "test")
	tok := l.Next()
	assert.Equal(t, STRING, tok.Kind)
	assert.Equal(t, `hello\n`, tok.Lexeme)
	tok = l.Next()
	assert.Equal(t, RSTR, tok.Kind)
	assert.Equal(t, `raw\n`, tok.Lexeme)
}

func TestKeywordsAndIdents(t *testing.T) {
	assertKinds(t, "let x = fn() end", []Kind{LET, IDENT, ASSIGN, FN, LPAREN, RPAREN, END, EOF})
}

func TestOperators(t *testing.T) {
	assertKinds(t, "1 :: 2 | 3 -> 4 <= 5 >= 6 == 7 != 8",
		[]Kind{INT, CONS, INT, PIPE, INT, ARROW, INT, LE, INT, GE, INT, EQ, INT, NE, INT, EOF})
}

func TestNewlineIsSignificant(t *testing.T) {
	assertKinds(t, "let x = 1\nx", []Kind{LET, IDENT, ASSIGN, INT, NEWLINE, IDENT, EOF})
}

func TestCommentSkipped(t *testing.T) {
	assertKinds(t, "1 # a comment\n2", []Kind{INT, NEWLINE, INT, EOF})
}

func TestErrorToken(t *testing.T) {
	assertKinds(t, "1 ! 2", []Kind{INT, ERROR, INT, EOF})
}

// Lexer round-trip: concatenating lexemes of non-ERROR tokens reproduces
// the source with whitespace, comments, and quote delimiters removed.
func TestRoundTripShape(t *testing.T) {
	l := New("let x = 1 + 2", "test")
	var got string
	for {
		tok := l.Next()
		if tok.Kind == EOF {
			break
		}
		if tok.Kind == NEWLINE {
			continue
		}
		got += tok.Lexeme
	}
	assert.Equal(t, "letx=1+2", got)
}
