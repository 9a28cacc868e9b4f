/*
File    : graft/parser/ast.go
*/

// Package parser turns a Graft token stream into a tree of immutable
// expression nodes via straightforward recursive descent. Graft has
// only one flat precedence level for binary operators and a small,
// closed set of node shapes, so the grammar needs no Pratt-style
// precedence table.
package parser

import (
	"fmt"
	"strings"
)

// Node is any Graft AST node. All concrete node types are pointers
// and are never mutated after construction.
type Node interface {
	// node is unexported so only this package can implement Node,
	// keeping the AST a closed sum type as described in the language
	// spec.
	node()
	// String renders a debug representation of the node, used in
	// parser error messages (e.g. reporting a non-symbol function
	// parameter) and in tests.
	String() string
}

// NumberNode is a numeric literal, still in source text form; the
// evaluator parses it to a float64 at eval time.
type NumberNode struct{ Text string }

// StringNode is a string literal.
type StringNode struct{ Text string }

// SymbolNode is an identifier reference, assignment target, function
// parameter name, or modify-statement target.
type SymbolNode struct{ Name string }

// NegativeNode negates its wrapped primary. "--3" nests two of these.
type NegativeNode struct{ Inner Node }

// OperationNode is a binary arithmetic or comparison expression. Op
// is one of "+", "-", "*", "/", "<", ">", "<=", ">=", "==".
type OperationNode struct {
	Op          string
	Left, Right Node
}

// ModifyNode is a compound-assignment statement ("x += 3"). Symbol is
// always a bare symbol; the parser rejects any other LHS.
type ModifyNode struct {
	Op     string
	Symbol *SymbolNode
	Value  Node
}

// AssignmentNode is a plain assignment statement ("x = 3").
type AssignmentNode struct {
	Symbol *SymbolNode
	Value  Node
}

// FunctionCallNode applies Callee to Args. Callee may be any node
// (a symbol, a function literal, or another call — "f()()" chains).
type FunctionCallNode struct {
	Callee Node
	Args   []Node
}

// FunctionDefNode is a function literal: "{ body }" or
// "{ :(p1, p2) body }".
type FunctionDefNode struct {
	Params []*SymbolNode
	Body   []Node
}

// ArrayNode is an array literal "[e1, e2, ...]".
type ArrayNode struct{ Items []Node }

// LabelNode ("^") marks a turtle's loop restart point. It may appear
// anywhere a statement may.
type LabelNode struct{}

func (*NumberNode) node()       {}
func (*StringNode) node()       {}
func (*SymbolNode) node()       {}
func (*NegativeNode) node()     {}
func (*OperationNode) node()    {}
func (*ModifyNode) node()       {}
func (*AssignmentNode) node()   {}
func (*FunctionCallNode) node() {}
func (*FunctionDefNode) node()  {}
func (*ArrayNode) node()        {}
func (*LabelNode) node()        {}

func (n *NumberNode) String() string { return fmt.Sprintf("Number(%s)", n.Text) }
func (n *StringNode) String() string { return fmt.Sprintf("String(%q)", n.Text) }
func (n *SymbolNode) String() string { return fmt.Sprintf("Symbol(%s)", n.Name) }
func (n *NegativeNode) String() string {
	return fmt.Sprintf("Negative(%s)", n.Inner)
}
func (n *OperationNode) String() string {
	return fmt.Sprintf("Operation(%s, %s, %s)", n.Op, n.Left, n.Right)
}
func (n *ModifyNode) String() string {
	return fmt.Sprintf("Modify(%s, %s, %s)", n.Op, n.Symbol, n.Value)
}
func (n *AssignmentNode) String() string {
	return fmt.Sprintf("Assignment(%s, %s)", n.Symbol, n.Value)
}
func (n *FunctionCallNode) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("FunctionCall(%s, [%s])", n.Callee, strings.Join(args, ", "))
}
func (n *FunctionDefNode) String() string {
	params := make([]string, len(n.Params))
	for i, p := range n.Params {
		params[i] = p.Name
	}
	return fmt.Sprintf("FunctionDef([%s], <%d stmts>)", strings.Join(params, ", "), len(n.Body))
}
func (n *ArrayNode) String() string {
	items := make([]string, len(n.Items))
	for i, it := range n.Items {
		items[i] = it.String()
	}
	return fmt.Sprintf("Array([%s])", strings.Join(items, ", "))
}
func (*LabelNode) String() string { return "Label" }
