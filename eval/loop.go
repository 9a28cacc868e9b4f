/*
File    : graft/eval/loop.go
*/

package eval

import (
	"github.com/rje4242/graft/errs"
	"github.com/rje4242/graft/objects"
	"github.com/rje4242/graft/parser"
	"github.com/rje4242/graft/scope"
)

// LoopPlan is a resumable, one-iteration-at-a-time execution of a
// top-level loop statement (For or T). A bare top-level statement that
// calls one of these natives gets iteration-by-iteration tick
// granularity: each call to its callback lands in its own tick's
// stroke batch, rather than every repetition's strokes being
// concatenated into a single tick the way a nested For or T (inside a
// function body, an If branch, or another loop's callback) still is.
// Nested loops keep running fully synchronously through dispatchFor
// and dispatchT; only a direct top-level statement gets planned here.
type LoopPlan struct {
	f        objects.Value
	items    []objects.Value
	index    int
	iterator objects.Value

	// counting is true for a top-level T(n, f): remaining counts down
	// from n, calling f with no argument each step, instead of walking
	// items or an iterator.
	counting  bool
	remaining int
}

// PlanTopLevelLoop inspects a top-level statement. If it is a direct
// call to the For or T native, it evaluates the call's own arguments
// and returns a LoopPlan ready to be stepped once per tick, plus any
// strokes those argument expressions emitted while being evaluated. ok
// is false for any other statement, including a call that merely
// returns a loop's result indirectly (e.g. wrapped in an assignment)
// — those still run as one synchronous EvalNode call.
func PlanTopLevelLoop(n *parser.FunctionCallNode, env *scope.Env, ctx *Context) (plan *LoopPlan, strokes []objects.Value, ok bool, err error) {
	callee, cs, err := EvalNode(n.Callee, env, ctx)
	if err != nil {
		return nil, nil, false, err
	}
	native, isNative := callee.(*objects.Native)
	if !isNative || (native.ID != objects.NativeFor && native.ID != objects.NativeT) {
		return nil, nil, false, nil
	}

	strokes = cs
	args := make([]objects.Value, len(n.Args))
	for i, a := range n.Args {
		v, s, err := EvalNode(a, env, ctx)
		if err != nil {
			return nil, nil, false, err
		}
		args[i] = v
		strokes = append(strokes, s...)
	}
	if len(args) != 2 {
		return nil, nil, false, errs.New(errs.Arity, "%s needs 2 arguments, got %d.", native.ID, len(args))
	}

	if native.ID == objects.NativeT {
		count, ok := args[0].(*objects.Number)
		if !ok {
			return nil, nil, false, errs.New(errs.Type, "T's first argument must be a number.")
		}
		return &LoopPlan{f: args[1], counting: true, remaining: int(count.Value)}, strokes, true, nil
	}

	if arr, ok := args[0].(*objects.Array); ok {
		return &LoopPlan{f: args[1], items: arr.Items}, strokes, true, nil
	}
	return &LoopPlan{f: args[1], iterator: args[0]}, strokes, true, nil
}

// Step runs exactly one iteration — one array element, one iterator
// call plus (unless it signalled endofloop) the callback it feeds, or
// one bare call to T's callback — and reports whether the plan has
// nothing left to do.
func (p *LoopPlan) Step(env *scope.Env, ctx *Context) (strokes []objects.Value, done bool, err error) {
	if p.counting {
		if p.remaining <= 0 {
			return nil, true, nil
		}
		p.remaining--
		_, s, err := Apply(p.f, nil, env, ctx)
		if err != nil {
			return nil, false, err
		}
		return s, p.remaining <= 0, nil
	}

	if p.iterator != nil {
		item, s, err := Apply(p.iterator, nil, env, ctx)
		if err != nil {
			return nil, false, err
		}
		if _, eol := item.(*objects.EndOfLoop); eol {
			return s, true, nil
		}
		_, s2, err := Apply(p.f, []objects.Value{item}, env, ctx)
		if err != nil {
			return nil, false, err
		}
		return append(s, s2...), false, nil
	}

	if p.index >= len(p.items) {
		return nil, true, nil
	}
	item := p.items[p.index]
	p.index++
	_, s, err := Apply(p.f, []objects.Value{item}, env, ctx)
	if err != nil {
		return nil, false, err
	}
	return s, p.index >= len(p.items), nil
}
