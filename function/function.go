/*
File    : graft/function/function.go
*/

// Package function holds UserFunction, the runtime representation of
// a Graft function literal. It lives in its own package, separate
// from objects and scope, for the same reason the teacher interpreter
// splits out its Function type: objects.Value must not import
// scope.Env (scope has no business knowing about values beyond what
// it stores), so the type that needs both lives one layer up.
package function

import (
	"fmt"
	"strings"

	"github.com/rje4242/graft/objects"
	"github.com/rje4242/graft/parser"
	"github.com/rje4242/graft/scope"
)

// UserFunction is a Graft function literal bound to the environment it
// closed over, the way graftlib's FunctionValue pairs an AST body with
// its defining env.
type UserFunction struct {
	Params []*parser.SymbolNode
	Body   []parser.Node
	Env    *scope.Env
}

func (*UserFunction) Kind() objects.Kind { return objects.UserFuncKind }

func (f *UserFunction) String() string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return fmt.Sprintf("{:(%s) ...}", strings.Join(names, ", "))
}

func (*UserFunction) Truthy() bool { return true }

// CallEnv builds the frame a call to f should evaluate its body
// against: a fresh child of f.Env (so the closure sees its defining
// scope, not the caller's), with args bound to Params positionally.
// Extra args are ignored; a call short on args still binds every
// remaining param, to NoneValue, so a lookup inside the body never
// falls through to the closure's outer scope for a name the call site
// simply didn't supply.
func (f *UserFunction) CallEnv(args []objects.Value) *scope.Env {
	env := scope.New(f.Env)
	for i, p := range f.Params {
		if i < len(args) {
			env.Bind(p.Name, args[i])
		} else {
			env.Bind(p.Name, &objects.None{})
		}
	}
	return env
}
