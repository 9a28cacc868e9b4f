/*
File    : graft/scheduler/scheduler.go
*/

// Package scheduler runs a parsed Graft program as a population of
// cooperatively time-sliced turtles. It owns the one piece of state
// the evaluator deliberately knows nothing about: which turtles are
// alive, where each one's program counter sits, and how forks and the
// fork-count ceiling reshape the live list between ticks.
package scheduler

import (
	"github.com/rje4242/graft/eval"
	"github.com/rje4242/graft/objects"
	"github.com/rje4242/graft/parser"
	"github.com/rje4242/graft/scope"
)

// Turtle is one strand of execution: a position in the shared program
// (PC), the point it rewinds to when it reaches the end (Restart),
// its own leaf environment, and the fork id it was assigned at birth
// (0 for the primordial turtle).
type Turtle struct {
	Env     *scope.Env
	PC      int
	Restart int
	ForkID  int

	// loop is non-nil while a top-level For(...) or T(...) statement at
	// PC is mid-iteration; see eval.LoopPlan for why a bare top-level
	// loop, unlike a nested one, spans more than one tick.
	loop *eval.LoopPlan
}

// Step is one turtle's contribution to a single time step: the
// strokes it emitted (possibly none) and a snapshot of its
// environment afterward, for callers that want to inspect state
// changes rather than just strokes (graftrun_debug in the original
// driver terminology).
type Step struct {
	Strokes []objects.Value
	Env     *scope.Env
	ForkID  int
}

type forkRequest struct {
	parentID int
	env      *scope.Env
}

// Scheduler drives a fixed program against a population of turtles.
// It is not safe for concurrent use; turtles are virtual and the
// whole simulation is single-threaded by design (see the concurrency
// model in the language's design notes).
type Scheduler struct {
	program     []parser.Node
	live        []*Turtle
	nextForkID  int
	maxForks    int
	rand        func(lo, hi float64) float64
}

// New creates a Scheduler with a single primordial turtle (fork id 0)
// positioned at the start of program.
func New(program []parser.Node, rand func(lo, hi float64) float64, maxForks int) *Scheduler {
	if maxForks < 1 {
		maxForks = 1
	}
	primordial := &Turtle{Env: eval.NewTurtleEnv(), PC: 0, Restart: 0, ForkID: 0}
	return &Scheduler{
		program:    program,
		live:       []*Turtle{primordial},
		nextForkID: 1,
		maxForks:   maxForks,
		rand:       rand,
	}
}

// stepOne executes the single statement at t's PC, advancing PC (or
// recording a new restart point for a Label) and queuing any fork
// request it makes. It returns the strokes that statement emitted.
func (s *Scheduler) stepOne(t *Turtle, forkQueue *[]forkRequest) ([]objects.Value, error) {
	if len(s.program) == 0 {
		return nil, nil
	}

	ctx := &eval.Context{
		Rand: s.rand,
		RequestFork: func(childEnv *scope.Env) {
			*forkQueue = append(*forkQueue, forkRequest{parentID: t.ForkID, env: childEnv})
		},
	}

	if t.loop != nil {
		strokes, done, err := t.loop.Step(t.Env, ctx)
		if err != nil {
			return nil, err
		}
		if done {
			t.loop = nil
			t.PC = s.advanceWithRestart(t.PC, t.Restart)
		}
		return strokes, nil
	}

	node := s.program[t.PC]

	if _, ok := node.(*parser.LabelNode); ok {
		t.Restart = (t.PC + 1) % len(s.program)
		t.PC = s.advanceWithRestart(t.PC, t.Restart)
		return nil, nil
	}

	if call, ok := node.(*parser.FunctionCallNode); ok {
		plan, argStrokes, planned, err := eval.PlanTopLevelLoop(call, t.Env, ctx)
		if err != nil {
			return nil, err
		}
		if planned {
			strokes, done, err := plan.Step(t.Env, ctx)
			if err != nil {
				return nil, err
			}
			strokes = append(argStrokes, strokes...)
			if done {
				t.PC = s.advanceWithRestart(t.PC, t.Restart)
			} else {
				t.loop = plan
			}
			return strokes, nil
		}
	}

	_, strokes, err := eval.EvalNode(node, t.Env, ctx)
	if err != nil {
		return nil, err
	}
	t.PC = s.advanceWithRestart(t.PC, t.Restart)
	return strokes, nil
}

func (s *Scheduler) advanceWithRestart(pc, restart int) int {
	if len(s.program) == 0 {
		return 0
	}
	next := pc + 1
	if next >= len(s.program) {
		if restart < 0 || restart >= len(s.program) {
			return 0
		}
		return restart
	}
	return next
}

// Tick runs one raw time step: every currently-live turtle executes
// exactly one top-level statement, or one iteration of a top-level
// For/T loop (in live-list order), then queued
// forks are spliced in and the population is trimmed to maxForks by
// dropping the oldest lineages first.
func (s *Scheduler) Tick() ([]Step, error) {
	thisTick := make([]*Turtle, len(s.live))
	copy(thisTick, s.live)

	var forkQueue []forkRequest
	steps := make([]Step, len(thisTick))
	for i, t := range thisTick {
		strokes, err := s.stepOne(t, &forkQueue)
		if err != nil {
			return nil, err
		}
		steps[i] = Step{Strokes: strokes, Env: t.Env.Fork(), ForkID: t.ForkID}
	}

	parentByID := make(map[int]*Turtle, len(thisTick))
	for _, t := range thisTick {
		parentByID[t.ForkID] = t
	}

	// lastSplicePoint tracks, per parent, the live-list index the most
	// recently spliced-in sibling landed at, so a parent forking
	// several times in one tick gets its children inserted in
	// chronological order (each after the last) rather than all
	// crowding in right after the parent.
	lastSplicePoint := make(map[int]int)
	for _, req := range forkQueue {
		idx, ok := lastSplicePoint[req.parentID]
		if !ok {
			idx = s.indexOf(req.parentID)
			if idx < 0 {
				idx = len(s.live) - 1
			}
		}
		parent := parentByID[req.parentID]
		newID := s.nextForkID
		s.nextForkID++
		// f names the fork's own id, per the language's fork-id
		// variable: the snapshot req.env carries from Fork() still
		// holds the parent's f, so it must be overwritten now that the
		// child's real id is known.
		scope.SetVariable(req.env, "f", &objects.Number{Value: float64(newID)})
		child := &Turtle{Env: req.env, PC: parent.PC, Restart: parent.Restart, ForkID: newID}
		s.live = insertAfter(s.live, idx, child)
		lastSplicePoint[req.parentID] = idx + 1
	}

	if len(s.live) > s.maxForks {
		drop := len(s.live) - s.maxForks
		s.live = s.live[drop:]
	}

	return steps, nil
}

func (s *Scheduler) indexOf(forkID int) int {
	for i, t := range s.live {
		if t.ForkID == forkID {
			return i
		}
	}
	return -1
}

func insertAfter(live []*Turtle, idx int, t *Turtle) []*Turtle {
	out := make([]*Turtle, 0, len(live)+1)
	out = append(out, live[:idx+1]...)
	out = append(out, t)
	out = append(out, live[idx+1:]...)
	return out
}

// RunDebug drives n raw time steps and returns every one of them,
// including steps where every turtle produced no strokes. This is the
// scheduler's graftrun_debug.
func RunDebug(program []parser.Node, n int, rand func(lo, hi float64) float64, maxForks int) ([][]Step, error) {
	s := New(program, rand, maxForks)
	out := make([][]Step, 0, n)
	for i := 0; i < n; i++ {
		if len(s.live) == 0 {
			break
		}
		step, err := s.Tick()
		if err != nil {
			return nil, err
		}
		out = append(out, step)
	}
	return out, nil
}

// Run drives the scheduler and collects only the non-empty stroke
// batches, stopping once n have been collected. If a full revolution
// of the program elapses (one tick per statement) without any turtle
// producing a stroke, the run concludes early rather than looping
// forever — the "natural pause" termination guarantee for programs
// like "d+=10" that never draw anything.
func Run(program []parser.Node, n int, rand func(lo, hi float64) float64, maxForks int) ([][]objects.Value, error) {
	s := New(program, rand, maxForks)
	out := make([][]objects.Value, 0, n)
	revolutionLen := len(program)
	if revolutionLen == 0 {
		return out, nil
	}
	sinceLastStroke := 0
	for len(out) < n {
		if len(s.live) == 0 {
			break
		}
		steps, err := s.Tick()
		if err != nil {
			return nil, err
		}
		var batch []objects.Value
		for _, st := range steps {
			batch = append(batch, st.Strokes...)
		}
		if len(batch) == 0 {
			sinceLastStroke++
			if sinceLastStroke >= revolutionLen {
				break
			}
			continue
		}
		sinceLastStroke = 0
		out = append(out, batch)
	}
	return out, nil
}
