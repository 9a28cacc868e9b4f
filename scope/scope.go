/*
File    : graft/scope/scope.go
*/

// Package scope implements the lexical environment a Graft turtle
// evaluates against: a chain of variable frames, exactly like a
// conventional scope chain, plus the handful of Graft-specific rules
// layered on top of plain variable lookup (the x/y position shadow
// into xprev/yprev, and the default bindings every turtle starts
// with).
package scope

import "github.com/rje4242/graft/objects"

// Env is one frame of a Graft turtle's variable chain. A function
// call pushes a fresh child frame onto its closure's Env. Forking a
// turtle shares no frame at all: Fork copies every visible binding
// into a new parentless Env, so writes after the fork are invisible
// to the turtle that forked (and vice versa).
type Env struct {
	Variables map[string]objects.Value
	Parent    *Env
}

// New creates an Env with the given parent. parent is nil only for
// the root environment created by NewRoot.
func New(parent *Env) *Env {
	return &Env{Variables: make(map[string]objects.Value), Parent: parent}
}

// Get looks up name in this Env and, failing that, in each ancestor
// in turn. It reports whether the name was bound anywhere in the
// chain.
func (e *Env) Get(name string) (objects.Value, bool) {
	if e == nil {
		return nil, false
	}
	if v, ok := e.Variables[name]; ok {
		return v, true
	}
	return e.Parent.Get(name)
}

// MustGet is Get without the ok flag, for callers (most native
// functions) that rely on the root environment always providing the
// magic variables.
func (e *Env) MustGet(name string) objects.Value {
	v, _ := e.Get(name)
	if v == nil {
		return &objects.Number{Value: 0}
	}
	return v
}

// Set writes name in the Env where it is already bound, walking up
// the chain to find it; if it is bound nowhere, it is created in this
// Env. This mirrors Python's graftlib.env.Env.set, which Graft's
// assignment statement and native functions both rely on: "x=3" at
// any nesting depth updates the same x that S() reads.
func (e *Env) Set(name string, value objects.Value) {
	for env := e; env != nil; env = env.Parent {
		if _, ok := env.Variables[name]; ok {
			env.Variables[name] = value
			return
		}
	}
	e.Variables[name] = value
}

// Bind creates or overwrites name in this Env specifically, ignoring
// any binding of the same name in an ancestor. It is used to install
// function parameters into a fresh call frame.
func (e *Env) Bind(name string, value objects.Value) {
	e.Variables[name] = value
}

// LocalItems returns this Env's own bindings, not walking the parent
// chain. Used by debug tooling that wants to report exactly what
// changed at this scope depth.
func (e *Env) LocalItems() map[string]objects.Value {
	return e.Variables
}

// Fork returns a fresh, parentless Env holding a snapshot of every
// variable currently visible to e — its own bindings plus everything
// inherited from its ancestors, innermost wins. This is the
// copy-on-write half of Graft's fork semantics: the snapshot gives the
// new turtle the parent's state as of the moment it forked (defaults,
// natives, anything assigned so far) without sharing a mutable frame
// with it, so neither turtle's later writes are visible to the other.
// A pointer-sharing fork (child's parent = e.Parent) would work for a
// turtle nested in a function call, but breaks for the common case of
// a primordial turtle forking from its own root env, which has no
// parent to share.
func (e *Env) Fork() *Env {
	child := New(nil)
	for env := e; env != nil; env = env.Parent {
		for k, v := range env.Variables {
			if _, ok := child.Variables[k]; !ok {
				child.Variables[k] = v
			}
		}
	}
	return child
}

// rootDefaults are the magic variables every turtle starts with: home
// position and heading, a black, fully opaque pen, and fork id 0.
var rootDefaults = map[string]float64{
	"d": 0, "s": 10, "x": 0, "y": 0, "xprev": 0, "yprev": 0,
	"z": 5, "r": 0, "g": 0, "b": 0, "a": 100, "f": 0,
}

// NewRoot builds the environment a freshly-started turtle runs
// against, with the default pose/color/brush bindings in place and no
// parent. Native function bindings are installed separately by the
// eval package, which is the one that knows how to dispatch them.
func NewRoot() *Env {
	env := New(nil)
	for name, v := range rootDefaults {
		env.Variables[name] = &objects.Number{Value: v}
	}
	// endofloop is a singleton sentinel, not a number: binding it here
	// (rather than special-casing an unbound lookup of that one name)
	// keeps Get a uniform lookup for every caller, including Fork's
	// snapshot copy.
	env.Variables["endofloop"] = &objects.EndOfLoop{}
	return env
}

// DiffFromDefault reports every default variable visible from e
// (looked up through the whole chain) whose value differs from the just-initialized root defaults (natives and
// endofloop excluded, since those never change). It is not used by
// the scheduler itself; driver and debug tooling use it to print only
// what a tick actually changed instead of a turtle's full state.
func DiffFromDefault(e *Env) map[string]objects.Value {
	diff := make(map[string]objects.Value)
	for name, def := range rootDefaults {
		v, ok := e.Get(name)
		if !ok {
			continue
		}
		n, ok := v.(*objects.Number)
		if !ok || n.Value != def {
			diff[name] = v
		}
	}
	return diff
}

// SetVariable implements Graft's x/y magic-shadow rule: writing x or y
// first copies the outgoing value into xprev/yprev, then writes the
// new value, all via Set so the write lands wherever the name was
// already bound. Plain assignment and native position updates
// (S and J, set_pos in the original) both go through this.
func SetVariable(env *Env, name string, value objects.Value) {
	switch name {
	case "x":
		env.Set("xprev", env.MustGet("x"))
	case "y":
		env.Set("yprev", env.MustGet("y"))
	}
	env.Set(name, value)
}

// HasVariable reports whether name is bound anywhere in e's chain.
func HasVariable(e *Env, name string) bool {
	_, ok := e.Get(name)
	return ok
}
