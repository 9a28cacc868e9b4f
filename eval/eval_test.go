package eval_test

import (
	"testing"

	"github.com/rje4242/graft/eval"
	"github.com/rje4242/graft/objects"
	"github.com/rje4242/graft/parser"
	"github.com/rje4242/graft/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) []parser.Node {
	t.Helper()
	nodes, err := parser.Parse(src)
	require.NoError(t, err)
	return nodes
}

func newCtx() *eval.Context {
	return &eval.Context{
		Rand:        func(lo, hi float64) float64 { return lo },
		RequestFork: func(*scope.Env) {},
	}
}

func runAll(t *testing.T, env *scope.Env, ctx *eval.Context, nodes []parser.Node) (objects.Value, []objects.Value) {
	t.Helper()
	var last objects.Value = &objects.None{}
	var strokes []objects.Value
	for _, n := range nodes {
		v, s, err := eval.EvalNode(n, env, ctx)
		require.NoError(t, err)
		last = v
		strokes = append(strokes, s...)
	}
	return last, strokes
}

func TestArithmeticOperatorsAreLeftToRight(t *testing.T) {
	env := eval.NewTurtleEnv()
	v, _ := runAll(t, env, newCtx(), mustParse(t, "1+2*3"))
	assert.Equal(t, 6.0, v.(*objects.Number).Value)
}

func TestComparisonOperatorsReturnZeroOrOne(t *testing.T) {
	env := eval.NewTurtleEnv()
	v, _ := runAll(t, env, newCtx(), mustParse(t, "3<5"))
	assert.Equal(t, 1.0, v.(*objects.Number).Value)
	v, _ = runAll(t, env, newCtx(), mustParse(t, "3>5"))
	assert.Equal(t, 0.0, v.(*objects.Number).Value)
}

func TestNegativeNegatesNumber(t *testing.T) {
	env := eval.NewTurtleEnv()
	v, _ := runAll(t, env, newCtx(), mustParse(t, "-5"))
	assert.Equal(t, -5.0, v.(*objects.Number).Value)
}

func TestUnknownSymbolIsNameError(t *testing.T) {
	env := eval.NewTurtleEnv()
	_, _, err := eval.EvalNode(&parser.SymbolNode{Name: "nope"}, env, newCtx())
	require.Error(t, err)
}

func TestEndOfLoopSymbolIsTheSentinelNotAnError(t *testing.T) {
	env := eval.NewTurtleEnv()
	v, _, err := eval.EvalNode(&parser.SymbolNode{Name: "endofloop"}, env, newCtx())
	require.NoError(t, err)
	assert.IsType(t, &objects.EndOfLoop{}, v)
}

func TestAssignmentShadowsXIntoXprev(t *testing.T) {
	env := eval.NewTurtleEnv()
	runAll(t, env, newCtx(), mustParse(t, "x=5"))
	xprev, _ := env.Get("xprev")
	assert.Equal(t, 0.0, xprev.(*objects.Number).Value)
	runAll(t, env, newCtx(), mustParse(t, "x=8"))
	xprev, _ = env.Get("xprev")
	assert.Equal(t, 5.0, xprev.(*objects.Number).Value)
}

func TestModifyAddsToExistingValue(t *testing.T) {
	env := eval.NewTurtleEnv()
	runAll(t, env, newCtx(), mustParse(t, "d+=90"))
	d, _ := env.Get("d")
	assert.Equal(t, 90.0, d.(*objects.Number).Value)
}

func TestSEmitsLineAndMovesTurtle(t *testing.T) {
	env := eval.NewTurtleEnv()
	_, strokes := runAll(t, env, newCtx(), mustParse(t, "S()"))
	require.Len(t, strokes, 1)
	line := strokes[0].(*objects.Line)
	assert.Equal(t, objects.Pt{X: 0, Y: 0}, line.Start)
	assert.InDelta(t, 0, line.End.X, 1e-9)
	assert.InDelta(t, 10, line.End.Y, 1e-9)

	x, _ := env.Get("x")
	y, _ := env.Get("y")
	assert.InDelta(t, 0, x.(*objects.Number).Value, 1e-9)
	assert.InDelta(t, 10, y.(*objects.Number).Value, 1e-9)
}

func TestJMovesWithoutEmittingAStroke(t *testing.T) {
	env := eval.NewTurtleEnv()
	_, strokes := runAll(t, env, newCtx(), mustParse(t, "J()"))
	assert.Empty(t, strokes)
	y, _ := env.Get("y")
	assert.InDelta(t, 10, y.(*objects.Number).Value, 1e-9)
}

func TestDEmitsADotAtCurrentPosition(t *testing.T) {
	env := eval.NewTurtleEnv()
	_, strokes := runAll(t, env, newCtx(), mustParse(t, "x=3 y=4 D()"))
	require.Len(t, strokes, 1)
	dotVal := strokes[0].(*objects.Dot)
	assert.Equal(t, objects.Pt{X: 3, Y: 4}, dotVal.Pos)
}

func TestLDrawsFromPrevPosToPosWithoutMoving(t *testing.T) {
	env := eval.NewTurtleEnv()
	runAll(t, env, newCtx(), mustParse(t, "x=1 x=4"))
	_, strokes := runAll(t, env, newCtx(), mustParse(t, "L()"))
	require.Len(t, strokes, 1)
	line := strokes[0].(*objects.Line)
	assert.Equal(t, 1.0, line.Start.X)
	assert.Equal(t, 4.0, line.End.X)

	x, _ := env.Get("x")
	assert.Equal(t, 4.0, x.(*objects.Number).Value, "L must not move the turtle")
}

func TestFRequestsAForkAndReturnsNone(t *testing.T) {
	env := eval.NewTurtleEnv()
	var forked *scope.Env
	ctx := &eval.Context{
		Rand:        func(lo, hi float64) float64 { return lo },
		RequestFork: func(e *scope.Env) { forked = e },
	}
	v, strokes := runAll(t, env, ctx, mustParse(t, "F()"))
	assert.IsType(t, &objects.None{}, v)
	assert.Empty(t, strokes)
	require.NotNil(t, forked)
}

func TestRUsesTheContextRandomSource(t *testing.T) {
	env := eval.NewTurtleEnv()
	ctx := &eval.Context{
		Rand:        func(lo, hi float64) float64 { return hi },
		RequestFork: func(*scope.Env) {},
	}
	v, _ := runAll(t, env, ctx, mustParse(t, "R()"))
	assert.Equal(t, 10.0, v.(*objects.Number).Value)
}

func TestTCallsBlockNTimesAndConcatenatesStrokes(t *testing.T) {
	env := eval.NewTurtleEnv()
	_, strokes := runAll(t, env, newCtx(), mustParse(t, "T(3, {D()})"))
	assert.Len(t, strokes, 3)
}

func TestIfChoosesThenBranchOnNonZero(t *testing.T) {
	env := eval.NewTurtleEnv()
	v, _ := runAll(t, env, newCtx(), mustParse(t, "If(1, {5}, {6})"))
	assert.Equal(t, 5.0, v.(*objects.Number).Value)
}

func TestIfChoosesElseBranchOnZero(t *testing.T) {
	env := eval.NewTurtleEnv()
	v, _ := runAll(t, env, newCtx(), mustParse(t, "If(0, {5}, {6})"))
	assert.Equal(t, 6.0, v.(*objects.Number).Value)
}

func TestForOverArrayCallsFunctionForEachItem(t *testing.T) {
	env := eval.NewTurtleEnv()
	_, strokes := runAll(t, env, newCtx(), mustParse(t, "For([7,2],{:(it)x=it D()})"))
	require.Len(t, strokes, 2)
	assert.Equal(t, 7.0, strokes[0].(*objects.Dot).Pos.X)
	assert.Equal(t, 2.0, strokes[1].(*objects.Dot).Pos.X)
}

func TestForStopsAtEndOfLoopSentinel(t *testing.T) {
	env := eval.NewTurtleEnv()
	src := "count=0 iter={count+=1 If(count>3,{endofloop},{count})} For(iter,{:(it)D()})"
	_, strokes := runAll(t, env, newCtx(), mustParse(t, src))
	assert.Len(t, strokes, 3, "the iterator yields 1, 2, 3 before signalling endofloop")
}

func TestGetReturnsArrayElementByIndex(t *testing.T) {
	env := eval.NewTurtleEnv()
	v, _ := runAll(t, env, newCtx(), mustParse(t, "Get([10,20,30],1)"))
	assert.Equal(t, 20.0, v.(*objects.Number).Value)
}

func TestGetOutOfRangeIsAnError(t *testing.T) {
	env := eval.NewTurtleEnv()
	nodes := mustParse(t, "Get([1],5)")
	_, _, err := eval.EvalNode(nodes[0], env, newCtx())
	require.Error(t, err)
}

func TestUserFunctionCallBindsParamsAndReturnsLastValue(t *testing.T) {
	env := eval.NewTurtleEnv()
	v, _ := runAll(t, env, newCtx(), mustParse(t, "f={:(a,b)a+b} f(3,4)"))
	assert.Equal(t, 7.0, v.(*objects.Number).Value)
}

func TestNestedFunctionCallSurfacesItsStrokes(t *testing.T) {
	env := eval.NewTurtleEnv()
	_, strokes := runAll(t, env, newCtx(), mustParse(t, "p={S()} p()"))
	assert.Len(t, strokes, 1)
}

func TestOperatorOnNonNumberIsTypeError(t *testing.T) {
	env := eval.NewTurtleEnv()
	nodes := mustParse(t, "1+'a'")
	_, _, err := eval.EvalNode(nodes[0], env, newCtx())
	require.Error(t, err)
}
