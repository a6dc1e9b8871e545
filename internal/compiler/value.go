// Package compiler implements components C and D of the lowering
// pipeline: the tagged union of compile-time values (Lambda, Sequence,
// Parameter, Conditional and the rest) and the recursive evaluator
// that turns parsed s-expressions into emitted instructions against
// that union.
package compiler

import (
	"fmt"

	"github.com/cjayross/pietc/internal/env"
)

// Value is the tagged union occupying every "compile-time value" slot:
// Integer, Lambda, Sequence, MacroSequence, LambdaSequence, Parameter,
// Intrinsic, Conditional and ConditionalLambda all implement it. Apply
// gives each variant its own call behaviour in operator position,
// standing in for the source's per-class dynamic dispatch.
type Value interface {
	env.Value
	Apply(u *CompilationUnit, seq *Sequence, args []Value) (Value, error)
}

// Integer is a literal compile-time integer value.
type Integer int64

func (Integer) envValue() {}

// Apply always fails: an Integer is never callable.
func (i Integer) Apply(*CompilationUnit, *Sequence, []Value) (Value, error) {
	return nil, fmt.Errorf("cannot apply %d: not callable", int64(i))
}
