/*
File    : raven/std/builtins.go
Package : std
*/

// Package std is Raven's builtin function table: the small set of native
// values every program's top-level global scope starts with, installed by
// the REPL and file-mode drivers into both package eval's Environment and
// package vm's VM before a program runs (the two execution paths share one
// object.Builtin set rather than each defining its own).
//
// Grounded on the teacher's std/builtins.go and std/common.go: a flat slice
// of {name, callback} pairs registered into the global scope at startup.
// Raven's surface is far smaller than go-mix's (no arrays/maps/json/http
// packages — those belong to a standard library the spec places out of
// scope), but the shape — a Builtin value with a name, a fixed or variadic
// arity, and a plain Go closure — is the same.
package std

import (
	"fmt"
	"strings"

	"github.com/mahrr/l-lang/object"
)

// Builtins returns a fresh set of Raven's native global functions. Fresh
// per call so the VM and the tree evaluator each get their own Builtin
// values (the underlying closures are stateless, so sharing would also be
// safe, but a fresh set matches object.Environment/vm.VM each owning their
// own global map outright).
func Builtins() map[string]object.Value {
	return map[string]object.Value{
		"print":    &object.Builtin{Name: "print", Arity: -1, Fn: biPrint},
		"println":  &object.Builtin{Name: "println", Arity: -1, Fn: biPrintln},
		"len":      &object.Builtin{Name: "len", Arity: 1, Fn: biLen},
		"str":      &object.Builtin{Name: "str", Arity: 1, Fn: biStr},
		"type":     &object.Builtin{Name: "type", Arity: 1, Fn: biType},
		"int":      &object.Builtin{Name: "int", Arity: 1, Fn: biInt},
		"float":    &object.Builtin{Name: "float", Arity: 1, Fn: biFloat},
	}
}

// Install defines every builtin as a global on env (used by the tree
// evaluator path).
func Install(env *object.Environment) {
	for name, v := range Builtins() {
		env.DefineGlobal(name, v)
	}
}

// biPrint writes its arguments space-separated, without a trailing newline,
// matching the teacher's print/println split in std/common.go.
func biPrint(args []object.Value) (object.Value, error) {
	fmt.Print(joinArgs(args))
	return object.VoidValue, nil
}

func biPrintln(args []object.Value) (object.Value, error) {
	fmt.Println(joinArgs(args))
	return object.VoidValue, nil
}

func joinArgs(args []object.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}

// biLen returns the element count of a list or string, or the populated
// key count of a hash; any other kind is a runtime error. Raven's compiled
// `for` loop (compiler.forExpr) calls this builtin by name to bound its
// hidden index, so its contract (error, not panic, on a non-sized value)
// must hold for both execution paths.
func biLen(args []object.Value) (object.Value, error) {
	switch v := args[0].(type) {
	case *object.List:
		return &object.Int{Value: int64(len(v.Elements))}, nil
	case *object.String:
		return &object.Int{Value: int64(len(v.Value))}, nil
	case *object.Hash:
		return &object.Int{Value: int64(v.Len())}, nil
	default:
		return nil, fmt.Errorf("len: value of type %s has no length", v.Type())
	}
}

// biStr renders any value the way the REPL would echo it at the top level
// (object.Value.String, not object.Echo — a bare string argument comes
// back unquoted).
func biStr(args []object.Value) (object.Value, error) {
	return &object.String{Value: args[0].String()}, nil
}

func biType(args []object.Value) (object.Value, error) {
	return &object.String{Value: string(args[0].Type())}, nil
}

func biInt(args []object.Value) (object.Value, error) {
	switch v := args[0].(type) {
	case *object.Int:
		return v, nil
	case *object.Float:
		return &object.Int{Value: int64(v.Value)}, nil
	case *object.String:
		var n int64
		if _, err := fmt.Sscanf(strings.TrimSpace(v.Value), "%d", &n); err != nil {
			return nil, fmt.Errorf("int: cannot convert %q to int", v.Value)
		}
		return &object.Int{Value: n}, nil
	default:
		return nil, fmt.Errorf("int: cannot convert a value of type %s", v.Type())
	}
}

func biFloat(args []object.Value) (object.Value, error) {
	switch v := args[0].(type) {
	case *object.Float:
		return v, nil
	case *object.Int:
		return &object.Float{Value: float64(v.Value)}, nil
	case *object.String:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(v.Value), "%g", &f); err != nil {
			return nil, fmt.Errorf("float: cannot convert %q to float", v.Value)
		}
		return &object.Float{Value: f}, nil
	default:
		return nil, fmt.Errorf("float: cannot convert a value of type %s", v.Type())
	}
}
