/*
File    : raven/object/closure.go
Package : object
*/
package object

import (
	"fmt"
	"strings"

	"github.com/mahrr/l-lang/ast"
)

// Closure is a first-class function produced by a function literal or
// `fn` statement in the tree-walking evaluator. It captures parameter
// patterns (call-argument binding goes through the same matcher as `let`
// and `match`, per spec 4.E), a body piece, and the environment it closed
// over by reference.
type Closure struct {
	Name   string
	Params []ast.Pattern
	Body   ast.Piece
	Env    *Environment
}

func (*Closure) Type() Type { return ClosureType }

func (c *Closure) String() string {
	var b strings.Builder
	b.WriteString("<closure")
	if c.Name != "" {
		b.WriteString(" ")
		b.WriteString(c.Name)
	}
	b.WriteString(fmt.Sprintf("/%d>", len(c.Params)))
	return b.String()
}
