package compiler

import (
	"fmt"

	"github.com/cjayross/pietc/internal/code"
	"github.com/cjayross/pietc/internal/env"
	"github.com/cjayross/pietc/internal/sexpr"
)

// Lambda is the static description of a `lambda` form: its formal
// parameter names, unevaluated body, and the environment captured at
// definition time. It is not itself callable on the logical stack —
// calling it materializes a LambdaSequence activation.
type Lambda struct {
	Params []string
	Body   sexpr.Expr
	Env    *env.Environment
}

func (*Lambda) envValue() {}

// Apply materializes one activation of l against args and expands its
// body, returning whatever value the body produces. len(args) must
// equal len(l.Params): this lowering never supports varargs or partial
// application.
func (l *Lambda) Apply(u *CompilationUnit, seq *Sequence, args []Value) (Value, error) {
	if len(args) != len(l.Params) {
		return nil, fmt.Errorf("lambda expects %d argument(s), got %d", len(l.Params), len(args))
	}

	// stack_size counts only the arguments the caller actually pushed:
	// a non-pushable argument (a Lambda/Intrinsic/unresolved Conditional
	// passed positionally to a higher-order parameter) occupies an env
	// binding but never a physical stack slot, so it must not inflate
	// the cleanup below. A nil argument is the result of a nested
	// intrinsic or call, already left on the stack by its own emission.
	pushedArgs := 0
	for _, a := range args {
		if a == nil || isPushable(a) {
			pushedArgs++
		}
	}

	localEnv := env.NewEnclosed(l.Env)
	ls := &LambdaSequence{
		MacroSequence: NewMacroSequence(l.Body, localEnv),
		Lambda:        l,
		Args:          args,
		StackSize:     pushedArgs,
	}
	ls.arenaIndex = u.allocArena(ls)

	ls.Params = make([]*Parameter, len(l.Params))
	ls.ParamOffset = make([]int, len(l.Params))
	for i, name := range l.Params {
		// ParamOffset[i] = len(Params)-1-i: the closed form of the
		// source's identity-keyed per-parameter depth table, derived
		// from deque.rotate() semantics — parameter 0 sits deepest,
		// the last parameter sits shallowest, directly beneath
		// whatever the call pushes next.
		offset := len(l.Params) - 1 - i
		p := &Parameter{unit: u, arenaIndex: ls.arenaIndex, slot: i, Sym: name}
		ls.Params[i] = p
		ls.ParamOffset[i] = offset
		localEnv.Bind(name, p)
	}

	u.openActivation(ls.arenaIndex)
	result, err := u.Expand(ls.Sequence)
	resultSize := ls.StackOffset
	u.closeActivation(ls.arenaIndex)
	if err != nil {
		return nil, err
	}

	// Link the now-expanded body into the calling sequence: without
	// this reference the instructions just emitted onto ls would sit
	// unreachable from the program's own instruction stream.
	u.emitRef(seq, ls.MacroSequence)

	// Cleanup: the pushedArgs physically-pushed arguments are still
	// sitting on the stack beneath whatever the body's own expansion
	// left on top of them (resultSize values — the call's actual
	// result, if any). Since this lowering has no separate call frame,
	// discarding the stale arguments means rolling each one, deepest
	// first, to the top of its shrinking window and popping it there,
	// leaving exactly the resultSize result values behind in their
	// original relative order. A non-pushable argument never occupied a
	// slot here, so it contributes neither to the loop bound nor to the
	// window.
	//
	// Guarded on resultSize, not StackSize, per original_source/pietc/eval.py's
	// `if lamda_seq.stack_offset != 0`: a body whose own evaluation pushed
	// nothing net (most commonly, a lambda expression that only builds and
	// returns a new closure value, never itself a stack value) has no
	// result to shrink the window down to, so there is nothing here to
	// clean up — emitting the roll/pop pairs regardless of resultSize
	// would pop arguments that happen to still be needed at that depth.
	if resultSize != 0 {
		window := ls.StackSize + resultSize
		for j := 0; j < ls.StackSize; j++ {
			depth := int64(window - j - 1)
			u.emitRoll(seq, depth, -1)
			u.emitOp(seq, code.Pop)
		}
	}

	return result, nil
}

// LambdaSequence is one activation record: a MacroSequence (so its
// body, once expanded, is addressable as a reusable subroutine) paired
// with the Lambda it instantiates, the actual argument Values bound to
// its Parameters, and the running stack-offset/stack-size bookkeeping
// that every broadcast during its open lifetime updates.
type LambdaSequence struct {
	*MacroSequence
	Lambda      *Lambda
	Args        []Value
	Params      []*Parameter
	ParamOffset []int
	// StackOffset tracks the net number of values pushed onto the
	// logical stack since this activation opened; broadcast to on
	// every push/pop anywhere in the program while it remains open.
	StackOffset int
	// StackSize is the count of this activation's arguments that were
	// actually pushable at the call site — set once, before the body
	// expands, per spec: the number of cleanup pops its caller must
	// emit, independent of however many values the body itself leaves
	// behind.
	StackSize  int
	arenaIndex int
}

// Parameter is a reference to one formal parameter slot of a still-open
// (or since-closed) LambdaSequence activation. Pushing it as an operand
// (pushOp) computes its live compile-time stack depth and emits the
// roll/duplicate/roll dance that exposes the bound argument without
// disturbing anything beneath it; in operator position it emits nothing
// itself and delegates to the bound value's Apply.
type Parameter struct {
	unit       *CompilationUnit
	arenaIndex int
	slot       int
	Sym        string
}

func (p *Parameter) owner() *LambdaSequence { return p.unit.arena[p.arenaIndex] }

// ParamDepth returns the current compile-time stack depth of p:
// stack_offset + param_offset[slot], per the documented depth law.
func (p *Parameter) ParamDepth() int {
	ls := p.owner()
	return ls.StackOffset + ls.ParamOffset[p.slot]
}

// Value resolves to the actual argument Value bound to p at its
// owner's most recent activation — recursing if that argument was
// itself another (outer) Parameter reference, so nested closures over
// parameters resolve to the original compile-time value.
func (p *Parameter) Value() Value {
	v := p.owner().Args[p.slot]
	if outer, ok := v.(*Parameter); ok {
		return outer.Value()
	}
	return v
}

func (*Parameter) envValue() {}

// Apply delegates to the resolved argument value's own Apply, so a
// parameter bound to a callable (a Lambda passed by a caller) can
// itself be called.
func (p *Parameter) Apply(u *CompilationUnit, seq *Sequence, args []Value) (Value, error) {
	return p.Value().Apply(u, seq, args)
}
