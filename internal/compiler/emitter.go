package compiler

import (
	"fmt"

	"github.com/cjayross/pietc/internal/code"
	"github.com/cjayross/pietc/internal/sexpr"
	"github.com/cjayross/pietc/internal/tracelog"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompilationUnit is the single mutable shared resource per compile:
// the bump arena of LambdaSequences (resolving the Parameter <->
// LambdaSequence reference cycle by arena index rather than a direct
// pointer cycle) and the stack of currently-open activations that
// every stack-mutating emission broadcasts against. The module-global
// `active_lambdas` of the source this replaces becomes a field here,
// created fresh per invocation.
type CompilationUnit struct {
	ID    uuid.UUID
	log   *tracelog.Logger
	arena []*LambdaSequence
	// activeLambdas holds arena indices of every LambdaSequence whose
	// body is currently being expanded, innermost last.
	activeLambdas []int
}

// NewCompilationUnit creates a fresh unit with an empty arena.
func NewCompilationUnit(log *tracelog.Logger) *CompilationUnit {
	if log == nil {
		log = tracelog.Noop()
	}
	return &CompilationUnit{ID: uuid.New(), log: log}
}

func (u *CompilationUnit) allocArena(ls *LambdaSequence) int {
	u.arena = append(u.arena, ls)
	return len(u.arena) - 1
}

func (u *CompilationUnit) openActivation(idx int) {
	u.activeLambdas = append(u.activeLambdas, idx)
}

func (u *CompilationUnit) closeActivation(idx int) {
	for i := len(u.activeLambdas) - 1; i >= 0; i-- {
		if u.activeLambdas[i] == idx {
			u.activeLambdas = append(u.activeLambdas[:i], u.activeLambdas[i+1:]...)
			return
		}
	}
}

// broadcast applies delta to stack_offset of every currently-open
// LambdaSequence, in program order, per the concurrency model's
// ordering guarantee.
func (u *CompilationUnit) broadcast(delta int) {
	if delta == 0 {
		return
	}
	for _, idx := range u.activeLambdas {
		u.arena[idx].StackOffset += delta
	}
}

// emitRaw appends instr to seq without broadcasting: used only for the
// depth/count control operands immediately consumed by a following
// Roll, and for Roll itself, none of which are real values entering
// the shared logical stack.
func (u *CompilationUnit) emitRaw(seq *Sequence, instr code.Instruction) {
	seq.Items = append(seq.Items, instrItem(instr))
}

// emitPush appends a literal integer push and broadcasts +1: every
// genuine new value entering the logical stack, whether it came from
// source text or (as with negate's implicit zero) from an intrinsic's
// own lowering.
func (u *CompilationUnit) emitPush(seq *Sequence, n int64) {
	u.emitRaw(seq, code.MakePush(n))
	u.broadcast(1)
}

// emitRef appends a pseudo Push instruction referencing a nested
// Sequence/Conditional value. No broadcast here: the referenced value
// manages its own stack accounting when it is expanded and inlined.
func (u *CompilationUnit) emitRef(seq *Sequence, v Value) {
	seq.Items = append(seq.Items, refItem(v))
}

// netDelta is the net effect on the logical stack of emitting a
// nullary opcode: positive for a net push, negative for a net pop.
func netDelta(op code.Op) int {
	switch op {
	case code.Pop, code.Add, code.Subtract, code.Multiply, code.Divide, code.Mod, code.Greater, code.OutInt, code.Out:
		return -1
	case code.Duplicate, code.InInt, code.In:
		return 1
	default: // Not, Roll, Pointer, Switch: net zero
		return 0
	}
}

// emitOp appends a nullary opcode and broadcasts its inherent net
// stack effect — the single surface every intrinsic lowering and
// cleanup routine in this package goes through, so the broadcast can
// never be skipped.
func (u *CompilationUnit) emitOp(seq *Sequence, op code.Op) {
	u.emitRaw(seq, code.Make(op))
	u.broadcast(netDelta(op))
}

// emitRoll emits the PUSH depth, PUSH count, ROLL bookkeeping triplet
// that rotates the top depth+1 stack elements by count positions
// toward the top. depth and count are themselves raw control operands
// and never broadcast; only the rotation's net logical effect (always
// zero — roll rearranges, it never adds or removes a value) matters,
// and it is implicitly accounted for by never broadcasting here.
func (u *CompilationUnit) emitRoll(seq *Sequence, depth, count int64) {
	u.emitRaw(seq, code.MakePush(depth))
	u.emitRaw(seq, code.MakePush(count))
	u.emitRaw(seq, code.Make(code.Roll))
}

// emitSwap rolls the top two stack elements past each other.
func (u *CompilationUnit) emitSwap(seq *Sequence) {
	u.emitRoll(seq, 1, 1)
}

// Expand evaluates s.Expr against s.Env exactly once, caching the
// result on s (property: expansion idempotence). Every subsequent
// reference to the same Sequence — by its own Apply, or by another
// value that captured it — returns the cached result without
// re-emitting its body.
func (u *CompilationUnit) Expand(s *Sequence) (Value, error) {
	if s.expanded {
		return s.result, nil
	}
	u.log.Sequence().Debug("expanding sequence", zap.Stringer("unit", u.ID))
	res, err := u.Evaluate(s.Expr, s.Env, s)
	if err != nil {
		return nil, err
	}
	// A Sequence's own tail value is never pushed by Evaluate itself
	// (that responsibility belongs to whichever context consumes the
	// value — an argument slot, a top-level form, here). Push it into
	// s's own buffer now so the value this Sequence represents is
	// actually realized on the stack wherever s is later inlined.
	if isPushable(res) {
		if err := pushOp(u, s, res); err != nil {
			return nil, err
		}
	}
	s.expanded = true
	s.result = res
	return res, nil
}

// PeekSexpr is the peephole a top-level `define` binds through instead
// of the raw MacroSequence it just wrapped, mirroring the source's
// `define_proc`, which binds `MacroSequence(sexpr, env).peek_sexpr()`
// rather than the bare MacroSequence. A `(quote ...)` or `(lambda
// ...)` body resolves immediately to its own value (an inert Datum, or
// a Lambda — neither carries any stack effect worth deferring through
// another layer of Sequence indirection); anything else, including a
// nested `define`, is returned as ms itself, unevaluated — peeking
// never performs a generic expansion, since most bodies (`(+ 1 2)`,
// an `if`, a call) must stay lazy until something actually references
// the defined name.
func (u *CompilationUnit) PeekSexpr(ms *MacroSequence) (Value, error) {
	e := ms.Expr
	if e.Kind != sexpr.List || e.IsNil() || len(e.Items) == 0 {
		return ms, nil
	}
	head := e.Items[0]
	if head.Kind == sexpr.Symbol {
		switch head.Sym {
		case "quote":
			if len(e.Items) != 2 {
				return nil, fmt.Errorf("quote: expects exactly 1 argument, got %d", len(e.Items)-1)
			}
			return quoteValue(e.Items[1]), nil
		case "lambda":
			return u.evalLambda(e, ms.Env)
		}
	}
	return ms, nil
}
