/*
File    : graft/internal/roundutil/roundutil.go
*/

// Package roundutil rounds turtle-graphics coordinates to the single
// decimal place Graft's own scenario tables use. S() and J() land on
// sin/cos of angles like pi/2 that aren't exactly representable in
// float64, so two runs that are mathematically identical can disagree
// in their fifteenth decimal digit; comparing or displaying raw
// coordinates would surface that noise instead of the turtle's actual
// behavior.
package roundutil

import (
	"math"

	"github.com/rje4242/graft/objects"
)

// RoundFloat rounds f to one decimal place.
func RoundFloat(f float64) float64 {
	return math.Round(f*10) / 10
}

func roundPt(p objects.Pt) objects.Pt {
	return objects.Pt{X: RoundFloat(p.X), Y: RoundFloat(p.Y)}
}

// RoundStroke rounds the position fields of a Line or Dot to one
// decimal place, leaving any other Value untouched. It never mutates
// v; it returns a rounded copy.
func RoundStroke(v objects.Value) objects.Value {
	switch t := v.(type) {
	case *objects.Line:
		r := *t
		r.Start = roundPt(t.Start)
		r.End = roundPt(t.End)
		return &r
	case *objects.Dot:
		r := *t
		r.Pos = roundPt(t.Pos)
		return &r
	default:
		return v
	}
}

// RoundBatch rounds every stroke in a tick's batch.
func RoundBatch(batch []objects.Value) []objects.Value {
	out := make([]objects.Value, len(batch))
	for i, v := range batch {
		out[i] = RoundStroke(v)
	}
	return out
}

// RoundBatches rounds every stroke in every tick's batch.
func RoundBatches(batches [][]objects.Value) [][]objects.Value {
	out := make([][]objects.Value, len(batches))
	for i, b := range batches {
		out[i] = RoundBatch(b)
	}
	return out
}
