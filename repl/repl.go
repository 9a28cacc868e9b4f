/*
File    : graft/repl/repl.go
*/

// Package repl implements a line-at-a-time interactive shell for
// Graft. Each line the user enters is parsed and run as a tiny
// program against one persistent turtle: assignments accumulate
// across lines the way a turtle's state accumulates across ticks (a
// fork request is accepted but its child is discarded), and whatever
// strokes the line emits are printed immediately, colorized by kind.
package repl

import (
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/rje4242/graft/eval"
	"github.com/rje4242/graft/internal/roundutil"
	"github.com/rje4242/graft/objects"
	"github.com/rje4242/graft/parser"
	"github.com/rje4242/graft/scope"
)

// session is one REPL turtle: a persistent environment that survives
// across lines, the way a turtle's environment survives across ticks.
// The REPL has no scheduler and no fork-count ceiling, so a fork
// request (F()) is accepted but its child environment is discarded —
// there is only ever one turtle to print strokes for in an
// interactive session.
type session struct {
	env *scope.Env
}

func newSession(env *scope.Env) *session {
	return &session{env: env}
}

// Run evaluates every node parsed from one line against the session's
// environment and returns the strokes it emitted. Evaluation stops at
// the first error, matching a turtle's single-error-aborts-the-tick
// behavior, but the strokes already emitted by earlier nodes on the
// same line are still returned.
func (s *session) Run(nodes []parser.Node) ([]objects.Value, error) {
	ctx := &eval.Context{
		Rand:        func(lo, hi float64) float64 { return lo + (hi-lo)/2 },
		RequestFork: func(*scope.Env) {},
	}
	var strokes []objects.Value
	for _, n := range nodes {
		_, cs, err := eval.EvalNode(n, s.env, ctx)
		strokes = append(strokes, cs...)
		if err != nil {
			return strokes, err
		}
	}
	return strokes, nil
}

var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

// Repl is an interactive Graft session: a banner to show at startup
// and the prompt string readline shows the user.
type Repl struct {
	Banner  string
	Version string
	Author  string
	Line    string
	License string
	Prompt  string
}

// NewRepl builds a Repl with the given banner and prompt text.
func NewRepl(banner, version, author, line, license, prompt string) *Repl {
	return &Repl{Banner: banner, Version: version, Author: author, Line: line, License: license, Prompt: prompt}
}

// PrintBannerInfo writes the startup banner to writer.
func (r *Repl) PrintBannerInfo(writer io.Writer) {
	blueColor.Fprintf(writer, "%s\n", r.Line)
	greenColor.Fprintf(writer, "%s\n", r.Banner)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	yellowColor.Fprintln(writer, "Version: "+r.Version+" | Author: "+r.Author+" | License: "+r.License)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	cyanColor.Fprintf(writer, "%s\n", "Welcome to Graft!")
	cyanColor.Fprintf(writer, "%s\n", "Type a Graft statement and press enter")
	cyanColor.Fprintf(writer, "%s\n", "Type '.exit' to quit")
	cyanColor.Fprintf(writer, "%s\n", "Use up/down arrows to navigate command history")
	blueColor.Fprintf(writer, "%s\n", r.Line)
}

// Start runs the REPL loop, reading lines from a readline.Instance
// (reader is unused, kept for parity with a conventional io.Reader
// driven loop) until '.exit' or EOF.
func (r *Repl) Start(reader io.Reader, writer io.Writer) {
	r.PrintBannerInfo(writer)

	rl, err := readline.New(r.Prompt)
	if err != nil {
		panic(err)
	}
	defer rl.Close()

	sess := newSession(eval.NewTurtleEnv())

	for {
		line, err := rl.Readline()
		if err != nil {
			writer.Write([]byte("Good Bye!\n"))
			break
		}

		line = strings.Trim(line, " \n\t\r")
		if line == "" {
			continue
		}
		if line == ".exit" {
			writer.Write([]byte("Good Bye!\n"))
			break
		}

		rl.SaveHistory(line)
		r.executeWithRecovery(writer, line, sess)
	}
}

// executeWithRecovery parses and evaluates one line against the
// session's persistent turtle, printing whatever it produces. Unlike
// a script run, a parse or evaluation error ends that line only; the
// REPL keeps the turtle's state and waits for the next line.
func (r *Repl) executeWithRecovery(writer io.Writer, line string, sess *session) {
	defer func() {
		if recovered := recover(); recovered != nil {
			redColor.Fprintf(writer, "[RUNTIME ERROR] %v\n", recovered)
		}
	}()

	nodes, err := parser.Parse(line)
	if err != nil {
		redColor.Fprintf(writer, "%v\n", err)
		return
	}

	strokes, lastErr := sess.Run(nodes)
	for _, s := range roundutil.RoundBatch(strokes) {
		printStroke(writer, s)
	}
	printChangedVars(writer, sess.env)
	if lastErr != nil {
		redColor.Fprintf(writer, "%v\n", lastErr)
	}
}

// printChangedVars reports the magic variables the line just moved
// away from their defaults, so a turtle with a dozen live bindings
// doesn't dump its whole pose after every line.
func printChangedVars(writer io.Writer, env *scope.Env) {
	diff := scope.DiffFromDefault(env)
	if len(diff) == 0 {
		return
	}
	names := make([]string, 0, len(diff))
	for name := range diff {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := diff[name]
		if n, ok := v.(*objects.Number); ok {
			greenColor.Fprintf(writer, "%s=%v\n", name, roundutil.RoundFloat(n.Value))
			continue
		}
		greenColor.Fprintf(writer, "%s=%s\n", name, v.String())
	}
}

func printStroke(writer io.Writer, s objects.Value) {
	switch v := s.(type) {
	case *objects.Line:
		cyanColor.Fprintf(writer, "%s\n", v.String())
	case *objects.Dot:
		yellowColor.Fprintf(writer, "%s\n", v.String())
	default:
		yellowColor.Fprintf(writer, "%s\n", v.String())
	}
}
