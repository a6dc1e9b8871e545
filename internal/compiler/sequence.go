package compiler

import (
	"github.com/cjayross/pietc/internal/code"
	"github.com/cjayross/pietc/internal/env"
	"github.com/cjayross/pietc/internal/sexpr"
)

// Item is one entry of a Sequence's emission buffer: either a resolved
// Instruction, or a reference to a nested compile-time Value (another
// Sequence, a MacroSequence such as a lambda activation's body, or a
// Conditional) that the simulator expands and inlines in place when it
// reaches it.
type Item struct {
	Instr *code.Instruction
	Ref   Value
}

func instrItem(i code.Instruction) Item { return Item{Instr: &i} }
func refItem(v Value) Item              { return Item{Ref: v} }

// Sequence is the compile-time thunk of 3: an unevaluated s-expression
// plus its capturing environment, together with the append-only buffer
// of Items produced by expanding it. expand() is idempotent; the
// buffer is never reordered once emitted.
type Sequence struct {
	Expr     sexpr.Expr
	Env      *env.Environment
	Items    []Item
	expanded bool
	result   Value
}

// NewSequence builds an unexpanded Sequence over e, capturing environment.
func NewSequence(e sexpr.Expr, environment *env.Environment) *Sequence {
	return &Sequence{Expr: e, Env: environment}
}

func (s *Sequence) envValue() {}

// Expanded reports whether s has already been expanded (property 3,
// expansion idempotence).
func (s *Sequence) Expanded() bool { return s.expanded }

// Apply expands s if needed and, if the resulting value is itself
// callable, delegates to it — this lets a `define`'d alias of a
// callable still be used as an operator.
func (s *Sequence) Apply(u *CompilationUnit, seq *Sequence, args []Value) (Value, error) {
	res, err := u.Expand(s)
	if err != nil {
		return nil, err
	}
	return res.Apply(u, seq, args)
}

// NonEmpty reports whether s's buffer carries at least one item after
// expansion. isPushable does not consult it: every Sequence counts as
// pushable there.
func (s *Sequence) NonEmpty() bool { return len(s.Items) > 0 }

// MacroSequence is a Sequence whose identity is preserved because it
// will be referenced more than once: a named definition or a lambda
// body. A downstream painter renders it as a reusable subroutine.
type MacroSequence struct {
	*Sequence
}

// NewMacroSequence builds an unexpanded MacroSequence over e.
func NewMacroSequence(e sexpr.Expr, environment *env.Environment) *MacroSequence {
	return &MacroSequence{Sequence: NewSequence(e, environment)}
}
