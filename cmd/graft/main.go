/*
File    : graft/cmd/graft/main.go
*/

// Command graft is a thin driver over the scheduler package: it reads
// a Graft program, runs it for a requested number of strokes (or
// ticks, in debug mode), and prints what comes out. It contains no
// language semantics of its own.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/rje4242/graft/internal/roundutil"
	"github.com/rje4242/graft/objects"
	"github.com/rje4242/graft/parser"
	"github.com/rje4242/graft/scheduler"
	"github.com/rje4242/graft/scope"
	"github.com/spf13/cobra"
)

var (
	numStrokes int
	maxForks   int
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "graft <program>",
	Short: "Run a Graft turtle-graphics program",
	Long: `graft runs a Graft program through a single call to the scheduler,
either collecting the first N stroke batches it draws or, with
--debug, every raw tick including the silent ones.`,
	Args: cobra.ExactArgs(1),
	RunE: runGraft,
}

func init() {
	rootCmd.Flags().IntVarP(&numStrokes, "n", "n", 10, "number of stroke batches (or ticks, with --debug) to collect")
	rootCmd.Flags().IntVar(&maxForks, "max-forks", 16, "maximum number of live turtles")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "collect every tick, including ones with no strokes (graftrun_debug)")
}

func runGraft(cmd *cobra.Command, args []string) error {
	src := args[0]
	if info, err := os.Stat(src); err == nil && !info.IsDir() {
		content, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("reading %s: %w", src, err)
		}
		src = string(content)
	}

	program, err := parser.Parse(src)
	if err != nil {
		color.Red("parse error: %v", err)
		return err
	}

	randFn := func(lo, hi float64) float64 { return lo + rand.Float64()*(hi-lo) }

	if debug {
		steps, err := scheduler.RunDebug(program, numStrokes, randFn, maxForks)
		if err != nil {
			color.Red("runtime error: %v", err)
			return err
		}
		for i, tick := range steps {
			fmt.Printf("tick %d:\n", i)
			for _, st := range tick {
				printStep(st)
			}
		}
		return nil
	}

	out, err := scheduler.Run(program, numStrokes, randFn, maxForks)
	if err != nil {
		color.Red("runtime error: %v", err)
		return err
	}
	for i, batch := range out {
		fmt.Printf("step %d:\n", i)
		for _, s := range roundutil.RoundBatch(batch) {
			printStroke(s)
		}
	}
	return nil
}

func printStep(st scheduler.Step) {
	fmt.Printf("  turtle %d:", st.ForkID)
	if len(st.Strokes) == 0 && len(scope.DiffFromDefault(st.Env)) == 0 {
		fmt.Println(" (none)")
		return
	}
	fmt.Println()
	for _, s := range roundutil.RoundBatch(st.Strokes) {
		fmt.Print("    ")
		printStroke(s)
	}
	printChangedVars(st.Env)
}

// printChangedVars reports only the magic variables a tick actually
// moved, instead of a turtle's full twelve-variable pose every time.
func printChangedVars(env *scope.Env) {
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
			color.Magenta("    %s=%v\n", name, roundutil.RoundFloat(n.Value))
			continue
		}
		color.Magenta("    %s=%s\n", name, v.String())
	}
}

func printStroke(s objects.Value) {
	switch v := s.(type) {
	case *objects.Line:
		color.Cyan("line %s\n", v.String())
	case *objects.Dot:
		color.Yellow("dot %s\n", v.String())
	default:
		fmt.Println(v.String())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
