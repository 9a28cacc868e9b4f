/*
File    : graft/eval/eval.go
*/

// Package eval is the tree-walking expression evaluator for a single
// turtle's single tick. It knows how to evaluate any AST node to a
// value (bubbling up any strokes emitted along the way) and how to
// dispatch Graft's ten native functions. It knows nothing about
// multiple turtles, ticks, or scheduling — that is the scheduler
// package's job, one layer up, which calls EvalNode statement by
// statement and decides when a tick ends.
package eval

import (
	"math"
	"strconv"

	"github.com/rje4242/graft/errs"
	"github.com/rje4242/graft/function"
	"github.com/rje4242/graft/objects"
	"github.com/rje4242/graft/parser"
	"github.com/rje4242/graft/scope"
)

// nativeNames lists the identifiers NewTurtleEnv binds to their
// corresponding objects.Native, matching the native function table in
// the language's value-operations section.
var nativeNames = []objects.NativeID{
	objects.NativeS, objects.NativeD, objects.NativeJ, objects.NativeL,
	objects.NativeF, objects.NativeR, objects.NativeT, objects.NativeIf,
	objects.NativeFor, objects.NativeGet,
}

// NewTurtleEnv builds a root environment (default pose/color/brush
// bindings) with every native function bound alongside them, ready for
// a primordial turtle to evaluate against.
func NewTurtleEnv() *scope.Env {
	env := scope.NewRoot()
	for _, id := range nativeNames {
		env.Bind(string(id), &objects.Native{ID: id})
	}
	return env
}

// Context carries the per-run collaborators a tick needs but that the
// evaluator itself has no business owning: the random source behind
// R(), and the callback F() uses to hand a freshly-forked turtle back
// to the scheduler.
type Context struct {
	Rand        func(lo, hi float64) float64
	RequestFork func(childEnv *scope.Env)
}

// EvalNode evaluates node in env and returns its value together with
// any strokes emitted while producing it. Nested calls bubble their
// strokes up into the returned slice; only the scheduler decides
// whether those strokes count as "this tick's output" for a given
// turtle.
func EvalNode(node parser.Node, env *scope.Env, ctx *Context) (objects.Value, []objects.Value, error) {
	switch n := node.(type) {
	case *parser.NumberNode:
		v, err := strconv.ParseFloat(n.Text, 64)
		if err != nil {
			return nil, nil, errs.New(errs.Type, "Invalid number literal: %s", n.Text)
		}
		return &objects.Number{Value: v}, nil, nil

	case *parser.StringNode:
		return &objects.String{Value: n.Text}, nil, nil

	case *parser.SymbolNode:
		if v, ok := env.Get(n.Name); ok {
			return v, nil, nil
		}
		return nil, nil, errs.New(errs.Name, "Unknown variable: %s", n.Name)

	case *parser.NegativeNode:
		v, strokes, err := EvalNode(n.Inner, env, ctx)
		if err != nil {
			return nil, nil, err
		}
		num, ok := v.(*objects.Number)
		if !ok {
			return nil, nil, errs.New(errs.Type, "Can't negate a %s.", v.Kind())
		}
		return &objects.Number{Value: -num.Value}, strokes, nil

	case *parser.OperationNode:
		return evalOperation(n, env, ctx)

	case *parser.AssignmentNode:
		v, strokes, err := EvalNode(n.Value, env, ctx)
		if err != nil {
			return nil, nil, err
		}
		scope.SetVariable(env, n.Symbol.Name, v)
		return &objects.None{}, strokes, nil

	case *parser.ModifyNode:
		return evalModify(n, env, ctx)

	case *parser.ArrayNode:
		items := make([]objects.Value, len(n.Items))
		var strokes []objects.Value
		for i, it := range n.Items {
			v, s, err := EvalNode(it, env, ctx)
			if err != nil {
				return nil, nil, err
			}
			items[i] = v
			strokes = append(strokes, s...)
		}
		return &objects.Array{Items: items}, strokes, nil

	case *parser.FunctionDefNode:
		return &function.UserFunction{Params: n.Params, Body: n.Body, Env: env}, nil, nil

	case *parser.FunctionCallNode:
		return evalCall(n, env, ctx)

	case *parser.LabelNode:
		// The scheduler intercepts labels before they reach the
		// evaluator; reaching here means eval was driven directly
		// (e.g. from a test). Treat it as a no-op.
		return &objects.None{}, nil, nil
	}
	return nil, nil, errs.New(errs.Type, "Don't know how to evaluate %s.", node)
}

func evalOperation(n *parser.OperationNode, env *scope.Env, ctx *Context) (objects.Value, []objects.Value, error) {
	lv, ls, err := EvalNode(n.Left, env, ctx)
	if err != nil {
		return nil, nil, err
	}
	rv, rs, err := EvalNode(n.Right, env, ctx)
	if err != nil {
		return nil, nil, err
	}
	strokes := append(ls, rs...)

	ln, ok := lv.(*objects.Number)
	if !ok {
		return nil, nil, errs.New(errs.Type, "%s needs a number on the left, got %s.", n.Op, lv.Kind())
	}
	rn, ok := rv.(*objects.Number)
	if !ok {
		return nil, nil, errs.New(errs.Type, "%s needs a number on the right, got %s.", n.Op, rv.Kind())
	}

	switch n.Op {
	case "+":
		return &objects.Number{Value: ln.Value + rn.Value}, strokes, nil
	case "-":
		return &objects.Number{Value: ln.Value - rn.Value}, strokes, nil
	case "*":
		return &objects.Number{Value: ln.Value * rn.Value}, strokes, nil
	case "/":
		return &objects.Number{Value: ln.Value / rn.Value}, strokes, nil
	case "<":
		return boolNumber(ln.Value < rn.Value), strokes, nil
	case ">":
		return boolNumber(ln.Value > rn.Value), strokes, nil
	case "<=":
		return boolNumber(ln.Value <= rn.Value), strokes, nil
	case ">=":
		return boolNumber(ln.Value >= rn.Value), strokes, nil
	case "==":
		return boolNumber(ln.Value == rn.Value), strokes, nil
	}
	return nil, nil, errs.New(errs.Type, "Unknown operator: %s", n.Op)
}

func boolNumber(b bool) *objects.Number {
	if b {
		return &objects.Number{Value: 1}
	}
	return &objects.Number{Value: 0}
}

func evalModify(n *parser.ModifyNode, env *scope.Env, ctx *Context) (objects.Value, []objects.Value, error) {
	rhs, strokes, err := EvalNode(n.Value, env, ctx)
	if err != nil {
		return nil, nil, err
	}
	rn, ok := rhs.(*objects.Number)
	if !ok {
		return nil, nil, errs.New(errs.Type, "%s needs a number, got %s.", n.Op, rhs.Kind())
	}
	cur := env.MustGet(n.Symbol.Name)
	cn, ok := cur.(*objects.Number)
	if !ok {
		return nil, nil, errs.New(errs.Type, "Can't modify %s, it isn't a number.", n.Symbol.Name)
	}
	var result float64
	switch n.Op {
	case "+=":
		result = cn.Value + rn.Value
	case "-=":
		result = cn.Value - rn.Value
	case "*=":
		result = cn.Value * rn.Value
	case "/=":
		result = cn.Value / rn.Value
	default:
		return nil, nil, errs.New(errs.Type, "Unknown modify operator: %s", n.Op)
	}
	scope.SetVariable(env, n.Symbol.Name, &objects.Number{Value: result})
	return &objects.None{}, strokes, nil
}

func evalCall(n *parser.FunctionCallNode, env *scope.Env, ctx *Context) (objects.Value, []objects.Value, error) {
	callee, strokes, err := EvalNode(n.Callee, env, ctx)
	if err != nil {
		return nil, nil, err
	}
	args := make([]objects.Value, len(n.Args))
	for i, a := range n.Args {
		v, s, err := EvalNode(a, env, ctx)
		if err != nil {
			return nil, nil, err
		}
		args[i] = v
		strokes = append(strokes, s...)
	}
	v, callStrokes, err := Apply(callee, args, env, ctx)
	if err != nil {
		return nil, nil, err
	}
	return v, append(strokes, callStrokes...), nil
}

// Apply invokes a callable Value (a native or user function) with
// already-evaluated args, in the ambient env (used by natives that
// read/write the current turtle's pose rather than a fresh frame).
func Apply(callee objects.Value, args []objects.Value, env *scope.Env, ctx *Context) (objects.Value, []objects.Value, error) {
	switch f := callee.(type) {
	case *objects.Native:
		return dispatchNative(f.ID, args, env, ctx)
	case *function.UserFunction:
		callEnv := f.CallEnv(args)
		return evalBody(f.Body, callEnv, ctx)
	default:
		return nil, nil, errs.New(errs.Type, "%s is not callable.", callee.Kind())
	}
}

// evalBody evaluates a sequence of statements (a function body or a
// block literal) in order, returning the last statement's value and
// the concatenation of every statement's strokes.
func evalBody(body []parser.Node, env *scope.Env, ctx *Context) (objects.Value, []objects.Value, error) {
	var last objects.Value = &objects.None{}
	var strokes []objects.Value
	for _, stmt := range body {
		if _, ok := stmt.(*parser.LabelNode); ok {
			continue
		}
		v, s, err := EvalNode(stmt, env, ctx)
		if err != nil {
			return nil, nil, err
		}
		last = v
		strokes = append(strokes, s...)
	}
	return last, strokes, nil
}

func theta(env *scope.Env) float64 {
	d := env.MustGet("d").(*objects.Number).Value
	return 2 * math.Pi * (d / 360.0)
}

func pos(env *scope.Env) objects.Pt {
	return objects.Pt{X: numOf(env, "x"), Y: numOf(env, "y")}
}

func prevPos(env *scope.Env) objects.Pt {
	return objects.Pt{X: numOf(env, "xprev"), Y: numOf(env, "yprev")}
}

func stepSize(env *scope.Env) float64 { return numOf(env, "s") }
func brushSize(env *scope.Env) float64 { return numOf(env, "z") }

func color(env *scope.Env) objects.Color {
	return objects.Color{R: numOf(env, "r"), G: numOf(env, "g"), B: numOf(env, "b"), A: numOf(env, "a")}
}

func numOf(env *scope.Env, name string) float64 {
	if n, ok := env.MustGet(name).(*objects.Number); ok {
		return n.Value
	}
	return 0
}

// advance performs the position update shared by S() and J(): the
// turtle moves step_size along its current heading, shadowing the old
// position into xprev/yprev. It returns the position before and after
// the move so callers can build a Line from it (S) or discard it (J).
func advance(env *scope.Env) (old, moved objects.Pt) {
	th := theta(env)
	s := stepSize(env)
	old = pos(env)
	moved = objects.Pt{X: old.X + s*math.Sin(th), Y: old.Y + s*math.Cos(th)}
	scope.SetVariable(env, "x", &objects.Number{Value: moved.X})
	scope.SetVariable(env, "y", &objects.Number{Value: moved.Y})
	return old, moved
}

func dispatchNative(id objects.NativeID, args []objects.Value, env *scope.Env, ctx *Context) (objects.Value, []objects.Value, error) {
	switch id {
	case objects.NativeS:
		old, moved := advance(env)
		line := &objects.Line{Start: old, End: moved, Color: color(env), Size: brushSize(env)}
		return line, []objects.Value{line}, nil

	case objects.NativeD:
		dot := &objects.Dot{Pos: pos(env), Color: color(env), Size: brushSize(env)}
		return dot, []objects.Value{dot}, nil

	case objects.NativeJ:
		advance(env)
		return &objects.None{}, nil, nil

	case objects.NativeL:
		line := &objects.Line{Start: prevPos(env), End: pos(env), Color: color(env), Size: brushSize(env)}
		return line, []objects.Value{line}, nil

	case objects.NativeF:
		child := env.Fork()
		if ctx.RequestFork != nil {
			ctx.RequestFork(child)
		}
		return &objects.None{}, nil, nil

	case objects.NativeR:
		lo, hi := -10.0, 10.0
		var v float64
		if ctx.Rand != nil {
			v = ctx.Rand(lo, hi)
		}
		return &objects.Number{Value: v}, nil, nil

	case objects.NativeT:
		return dispatchT(args, env, ctx)

	case objects.NativeIf:
		return dispatchIf(args, env, ctx)

	case objects.NativeFor:
		return dispatchFor(args, env, ctx)

	case objects.NativeGet:
		return dispatchGet(args)
	}
	return nil, nil, errs.New(errs.Name, "Unknown native function: %s", id)
}

// dispatchT runs all n repetitions synchronously, concatenating their
// strokes into one batch. A bare top-level T(...) statement is instead
// intercepted by eval.PlanTopLevelLoop and stepped once per tick; this
// path still handles every nested call (inside a function body, an If
// branch, or another loop's callback).
func dispatchT(args []objects.Value, env *scope.Env, ctx *Context) (objects.Value, []objects.Value, error) {
	if len(args) != 2 {
		return nil, nil, errs.New(errs.Arity, "T needs 2 arguments, got %d.", len(args))
	}
	n, ok := args[0].(*objects.Number)
	if !ok {
		return nil, nil, errs.New(errs.Type, "T's first argument must be a number.")
	}
	var last objects.Value = &objects.None{}
	var strokes []objects.Value
	for i := 0; i < int(n.Value); i++ {
		v, s, err := Apply(args[1], nil, env, ctx)
		if err != nil {
			return nil, nil, err
		}
		last = v
		strokes = append(strokes, s...)
	}
	return last, strokes, nil
}

func dispatchIf(args []objects.Value, env *scope.Env, ctx *Context) (objects.Value, []objects.Value, error) {
	if len(args) != 3 {
		return nil, nil, errs.New(errs.Arity, "If needs 3 arguments, got %d.", len(args))
	}
	cond, ok := args[0].(*objects.Number)
	if !ok {
		return nil, nil, errs.New(errs.Type, "If's condition must be a number.")
	}
	branch := args[2]
	if cond.Value != 0 {
		branch = args[1]
	}
	return Apply(branch, nil, env, ctx)
}

func dispatchFor(args []objects.Value, env *scope.Env, ctx *Context) (objects.Value, []objects.Value, error) {
	if len(args) != 2 {
		return nil, nil, errs.New(errs.Arity, "For needs 2 arguments, got %d.", len(args))
	}
	f := args[1]
	var strokes []objects.Value
	var last objects.Value = &objects.None{}

	if arr, ok := args[0].(*objects.Array); ok {
		for _, item := range arr.Items {
			v, s, err := Apply(f, []objects.Value{item}, env, ctx)
			if err != nil {
				return nil, nil, err
			}
			last = v
			strokes = append(strokes, s...)
		}
		return last, strokes, nil
	}

	iterator := args[0]
	for {
		item, s, err := Apply(iterator, nil, env, ctx)
		if err != nil {
			return nil, nil, err
		}
		strokes = append(strokes, s...)
		if _, done := item.(*objects.EndOfLoop); done {
			break
		}
		v, s2, err := Apply(f, []objects.Value{item}, env, ctx)
		if err != nil {
			return nil, nil, err
		}
		last = v
		strokes = append(strokes, s2...)
	}
	return last, strokes, nil
}

func dispatchGet(args []objects.Value) (objects.Value, []objects.Value, error) {
	if len(args) != 2 {
		return nil, nil, errs.New(errs.Arity, "Get needs 2 arguments, got %d.", len(args))
	}
	arr, ok := args[0].(*objects.Array)
	if !ok {
		return nil, nil, errs.New(errs.Type, "Get's first argument must be an array.")
	}
	idx, ok := args[1].(*objects.Number)
	if !ok {
		return nil, nil, errs.New(errs.Type, "Get's second argument must be a number.")
	}
	i := int(idx.Value)
	if i < 0 || i >= len(arr.Items) {
		return nil, nil, errs.New(errs.Type, "Get index %d out of range for array of length %d.", i, len(arr.Items))
	}
	return arr.Items[i], nil, nil
}
