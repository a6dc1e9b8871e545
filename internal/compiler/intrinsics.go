package compiler

import (
	"fmt"

	"github.com/cjayross/pietc/internal/code"
	"github.com/cjayross/pietc/internal/env"
)

// arity names the three arity disciplines §4.C assigns to intrinsics:
// unary takes exactly one operand, strictBinary exactly two, and
// assocBinary two or more (left-folded by foldOp).
type arity int

const (
	unary arity = iota
	strictBinary
	assocBinary
)

// Intrinsic is a built-in callable whose Apply only ever emits the
// trailing opcode(s) of its lowering: by the time Apply runs, every
// operand sub-expression has already been evaluated and pushed onto
// seq by the generic per-argument recursion in Evaluate (the same
// is_pushable/push_op rule applied uniformly to every argument; the
// head is only evaluated for its callable value, never pushed). An
// Intrinsic never re-pushes an operand it did not itself introduce.
type Intrinsic struct {
	Name  string
	Arity arity
	apply func(u *CompilationUnit, seq *Sequence, args []Value) (Value, error)
}

func (*Intrinsic) envValue() {}

func (in *Intrinsic) Apply(u *CompilationUnit, seq *Sequence, args []Value) (Value, error) {
	n := len(args)
	switch in.Arity {
	case unary:
		if n != 1 {
			return nil, fmt.Errorf("%s: expects exactly 1 argument, got %d", in.Name, n)
		}
	case strictBinary:
		if n != 2 {
			return nil, fmt.Errorf("%s: expects exactly 2 arguments, got %d", in.Name, n)
		}
	case assocBinary:
		if n < 2 {
			return nil, fmt.Errorf("%s: expects at least 2 arguments, got %d", in.Name, n)
		}
	}
	return in.apply(u, seq, args)
}

// foldOp emits len(args)-1 copies of op: with n operands already on
// the stack left-to-right, n-1 binary applications of op reduce them
// to a single result, matching the left-fold semantics of variadic
// +, -, *, /, and, or. For n > 2 the first two operands are rolled up
// from the bottom of the operand window and combined, then each
// remaining operand (always the deepest left in the shrinking window)
// is rolled up above the running result before the next op.
func foldOp(op code.Op) func(u *CompilationUnit, seq *Sequence, args []Value) (Value, error) {
	return func(u *CompilationUnit, seq *Sequence, args []Value) (Value, error) {
		n := len(args)
		if n > 2 {
			u.emitRoll(seq, int64(n-1), -1)
			u.emitRoll(seq, int64(n-1), -1)
		}
		u.emitOp(seq, op)
		for k := n - 2; k >= 1; k-- {
			u.emitRoll(seq, int64(k), -1)
			u.emitOp(seq, op)
		}
		return nil, nil
	}
}

// compareOp emits a single opcode, used by the intrinsics whose whole
// lowering is one opcode (modulo, neq, > and not).
func compareOp(op code.Op) func(u *CompilationUnit, seq *Sequence, args []Value) (Value, error) {
	return func(u *CompilationUnit, seq *Sequence, args []Value) (Value, error) {
		u.emitOp(seq, op)
		return nil, nil
	}
}

var intrinsicTable = map[string]*Intrinsic{
	"+": {Name: "+", Arity: assocBinary, apply: foldOp(code.Add)},
	"-": {Name: "-", Arity: assocBinary, apply: foldOp(code.Subtract)},
	"*": {Name: "*", Arity: assocBinary, apply: foldOp(code.Multiply)},
	"/": {Name: "/", Arity: assocBinary, apply: foldOp(code.Divide)},
	// and/or alias directly onto multiply/add: with 0/1-valued
	// operands this produces logical AND/OR; with arbitrary integers
	// it reproduces the source's un-normalized behaviour verbatim.
	"and":    {Name: "and", Arity: assocBinary, apply: foldOp(code.Multiply)},
	"or":     {Name: "or", Arity: assocBinary, apply: foldOp(code.Add)},
	"modulo": {Name: "modulo", Arity: strictBinary, apply: compareOp(code.Mod)},

	// negate is the sole intrinsic that introduces a value of its own:
	// a synthetic literal 0 with no corresponding source sexpr. x is
	// already pushed by the time Apply runs, so 0 is pushed afterward
	// and then swapped beneath it before subtracting, reproducing the
	// "push 0; push x; subtract" stack arrangement without violating
	// evaluate-then-apply ordering.
	"negate": {Name: "negate", Arity: unary, apply: func(u *CompilationUnit, seq *Sequence, args []Value) (Value, error) {
		u.emitPush(seq, 0)
		u.emitSwap(seq)
		u.emitOp(seq, code.Subtract)
		return nil, nil
	}},

	"eq": {Name: "eq", Arity: strictBinary, apply: func(u *CompilationUnit, seq *Sequence, args []Value) (Value, error) {
		u.emitOp(seq, code.Subtract)
		u.emitOp(seq, code.Not)
		return nil, nil
	}},
	// neq is deliberately left as a bare subtract: zero means equal,
	// any non-zero difference is truthy. This does not normalize to
	// {0,1} the way every other comparison here does, matching the
	// source's behaviour exactly rather than "fixing" it.
	"neq": {Name: "neq", Arity: strictBinary, apply: compareOp(code.Subtract)},
	">":   {Name: ">", Arity: strictBinary, apply: compareOp(code.Greater)},
	"<": {Name: "<", Arity: strictBinary, apply: func(u *CompilationUnit, seq *Sequence, args []Value) (Value, error) {
		u.emitSwap(seq)
		u.emitOp(seq, code.Greater)
		return nil, nil
	}},
	">=": {Name: ">=", Arity: strictBinary, apply: func(u *CompilationUnit, seq *Sequence, args []Value) (Value, error) {
		u.emitSwap(seq)
		u.emitOp(seq, code.Greater)
		u.emitOp(seq, code.Not)
		return nil, nil
	}},
	"<=": {Name: "<=", Arity: strictBinary, apply: func(u *CompilationUnit, seq *Sequence, args []Value) (Value, error) {
		u.emitOp(seq, code.Greater)
		u.emitOp(seq, code.Not)
		return nil, nil
	}},
	"not": {Name: "not", Arity: unary, apply: compareOp(code.Not)},
}

// populateGlobals binds every intrinsic, per §6's default top-level
// environment, into top. `if` is handled separately as a special form
// in Evaluate and is never bound as a callable Value.
func populateGlobals(top *env.Environment) {
	for name, in := range intrinsicTable {
		top.Bind(name, in)
	}
}
