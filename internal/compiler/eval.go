package compiler

import (
	"fmt"

	"github.com/cjayross/pietc/internal/code"
	"github.com/cjayross/pietc/internal/env"
	"github.com/cjayross/pietc/internal/sexpr"
)

// NilV is the compile-time value of the `nil` literal and the empty
// list. It is pushable, lowering to a literal zero — this stack
// machine has no tagged representation for "nothing", so nil and
// false share the same runtime encoding as every other falsy value.
type NilV struct{}

func (NilV) envValue() {}
func (NilV) Apply(*CompilationUnit, *Sequence, []Value) (Value, error) {
	return nil, fmt.Errorf("cannot apply nil: not callable")
}

// Datum is an inert compile-time value produced by `quote`-ing a
// symbol or a list (a list of integers included): it carries data for comparison and
// storage but is never itself a stack value, since this instruction
// set has no representation for a symbol or a compound structure.
type Datum struct {
	Expr sexpr.Expr
}

func (*Datum) envValue() {}
func (d *Datum) Apply(*CompilationUnit, *Sequence, []Value) (Value, error) {
	return nil, fmt.Errorf("cannot apply quoted datum %s: not callable", d.Expr.String())
}

// quoteValue builds the compile-time value `quote` produces for e
// without evaluating e: an integer literal quotes to itself, nil quotes
// to NilV, anything else quotes to an inert Datum.
func quoteValue(e sexpr.Expr) Value {
	switch e.Kind {
	case sexpr.Integer:
		return Integer(e.Int)
	case sexpr.Nil:
		return NilV{}
	default:
		return &Datum{Expr: e}
	}
}

// isDefineForm reports whether e is a top-level `(define name expr)`
// form — used by the program driver to decide whether a top-level
// form's evaluation is a pure binding side effect (no stack output)
// or an ordinary expression whose value, if pushable, contributes to
// the program's output.
func isDefineForm(e sexpr.Expr) bool {
	if e.Kind != sexpr.List || len(e.Items) == 0 {
		return false
	}
	head := e.Items[0]
	return head.Kind == sexpr.Symbol && head.Sym == "define"
}

// isPushable reports whether v is a genuine stack value that must be
// emitted (a literal, a parameter reference, or a reference to a
// nested Sequence/Conditional the simulator will later inline) as
// opposed to a callable or inert datum that exists only at compile
// time. A Parameter is classified by its bound argument's own
// pushability, not unconditionally: a parameter bound to a Lambda,
// Intrinsic, or unresolved Conditional passed by a higher-order caller
// was never physically pushed onto the stack, so treating it as
// pushable here would push a Duplicate/Roll against a slot that was
// never populated. A parameter bound to nil (a nested intrinsic or
// call result, already on the stack) does name a real slot.
func isPushable(v Value) bool {
	if v == nil {
		return false
	}
	if p, ok := v.(*Parameter); ok {
		pv := p.Value()
		return pv == nil || isPushable(pv)
	}
	switch v.(type) {
	case Integer, NilV, *Sequence, *Conditional:
		return true
	case *MacroSequence:
		return true
	default:
		return false
	}
}

// pushOp emits whatever is necessary to place v's value onto seq's
// logical stack, broadcasting as appropriate. It is the sole surface
// through which the evaluator's generic per-argument recursion turns
// an evaluated operand into stack effect.
func pushOp(u *CompilationUnit, seq *Sequence, v Value) error {
	switch val := v.(type) {
	case Integer:
		u.emitPush(seq, int64(val))
	case NilV:
		u.emitPush(seq, 0)
	case *Parameter:
		d := val.ParamDepth()
		if d != 0 {
			u.emitRoll(seq, int64(d), -1)
			u.emitOp(seq, code.Duplicate)
			u.emitRoll(seq, int64(d+1), 1)
		} else {
			u.emitOp(seq, code.Duplicate)
		}
	case *Sequence:
		u.emitRef(seq, val)
	case *MacroSequence:
		u.emitRef(seq, val)
	case *Conditional:
		u.emitRef(seq, val)
	default:
		return fmt.Errorf("value of type %T is not a stack value", v)
	}
	return nil
}

// Evaluate is the central recursion that turns a parsed s-expression
// into a compile-time Value, emitting instructions onto seq as a side
// effect. Non-list expressions resolve directly; list expressions
// dispatch on a special-form head (quote, define, lambda, if) or else
// evaluate every element generically — the head for its callable
// value, each remaining element for its value AND, if pushable, its
// stack effect — before applying the head to the evaluated arguments.
func (u *CompilationUnit) Evaluate(e sexpr.Expr, environment *env.Environment, seq *Sequence) (Value, error) {
	switch e.Kind {
	case sexpr.Integer:
		return Integer(e.Int), nil
	case sexpr.Nil:
		return NilV{}, nil
	case sexpr.Symbol:
		v, err := environment.Lookup(e.Sym)
		if err != nil {
			return nil, err
		}
		return v, nil
	case sexpr.List:
		if e.IsNil() {
			return NilV{}, nil
		}
		return u.evalList(e, environment, seq)
	default:
		return nil, fmt.Errorf("compiler: unhandled expression kind %s", e.Kind)
	}
}

func (u *CompilationUnit) evalList(e sexpr.Expr, environment *env.Environment, seq *Sequence) (Value, error) {
	head := e.Items[0]
	if head.Kind == sexpr.Symbol {
		switch head.Sym {
		case "quote":
			if len(e.Items) != 2 {
				return nil, fmt.Errorf("quote: expects exactly 1 argument, got %d", len(e.Items)-1)
			}
			return quoteValue(e.Items[1]), nil
		case "define":
			return u.evalDefine(e, environment, seq)
		case "lambda":
			return u.evalLambda(e, environment)
		case "if":
			return u.evalIf(e, environment, seq)
		}
	}

	headVal, err := u.Evaluate(head, environment, seq)
	if err != nil {
		return nil, err
	}

	args := make([]Value, len(e.Items)-1)
	for i, a := range e.Items[1:] {
		av, err := u.Evaluate(a, environment, seq)
		if err != nil {
			return nil, err
		}
		if isPushable(av) {
			if err := pushOp(u, seq, av); err != nil {
				return nil, err
			}
		}
		args[i] = av
	}

	return headVal.Apply(u, seq, args)
}

func (u *CompilationUnit) evalDefine(e sexpr.Expr, environment *env.Environment, seq *Sequence) (Value, error) {
	if len(e.Items) != 3 {
		return nil, fmt.Errorf("define: expects exactly 2 arguments, got %d", len(e.Items)-1)
	}
	nameExpr := e.Items[1]
	if nameExpr.Kind != sexpr.Symbol {
		return nil, fmt.Errorf("define: first argument must be a symbol, got %s", nameExpr.Kind)
	}
	ms := NewMacroSequence(e.Items[2], environment)
	v, err := u.PeekSexpr(ms)
	if err != nil {
		return nil, err
	}
	environment.Bind(nameExpr.Sym, v)
	return v, nil
}

func (u *CompilationUnit) evalLambda(e sexpr.Expr, environment *env.Environment) (Value, error) {
	if len(e.Items) != 3 {
		return nil, fmt.Errorf("lambda: expects exactly 2 arguments, got %d", len(e.Items)-1)
	}
	paramsExpr := e.Items[1]
	if paramsExpr.Kind != sexpr.List {
		return nil, fmt.Errorf("lambda: parameter list must be a list, got %s", paramsExpr.Kind)
	}
	params := make([]string, len(paramsExpr.Items))
	for i, p := range paramsExpr.Items {
		if p.Kind != sexpr.Symbol {
			return nil, fmt.Errorf("lambda: parameter %d is not a symbol", i)
		}
		params[i] = p.Sym
	}
	return &Lambda{Params: params, Body: e.Items[2], Env: environment}, nil
}

func (u *CompilationUnit) evalIf(e sexpr.Expr, environment *env.Environment, seq *Sequence) (Value, error) {
	// A 2-arg form (if test then) is accepted with an implicit nil
	// else-branch; anything besides 2 or 3 arguments is a bad-syntax
	// arity mismatch.
	if len(e.Items) != 3 && len(e.Items) != 4 {
		return nil, fmt.Errorf("if: expects 2 or 3 arguments, got %d", len(e.Items)-1)
	}
	testExpr, ifExpr := e.Items[1], e.Items[2]
	elseExpr := sexpr.MakeNil()
	if len(e.Items) == 4 {
		elseExpr = e.Items[3]
	}

	testVal, err := u.Evaluate(testExpr, environment, seq)
	if err != nil {
		return nil, err
	}

	// A test that resolves to a known compile-time constant folds
	// away entirely: no predicate is pushed, no Conditional is built,
	// and the chosen branch is evaluated directly into seq.
	switch tv := testVal.(type) {
	case Integer:
		if tv != 0 {
			return u.Evaluate(ifExpr, environment, seq)
		}
		return u.Evaluate(elseExpr, environment, seq)
	case NilV:
		return u.Evaluate(elseExpr, environment, seq)
	}

	// Anything else (an intrinsic comparison's emitted-but-unresolved
	// result, a Parameter, a deferred Sequence) is only known once the
	// instruction stream actually runs: push it and defer the branch
	// choice to simulation time via a Conditional.
	if isPushable(testVal) {
		if err := pushOp(u, seq, testVal); err != nil {
			return nil, err
		}
	}
	// The Conditional itself is returned unpushed: whichever context
	// consumes this if-expression's value (an argument slot, a
	// top-level form, an enclosing Sequence's own Expand) is
	// responsible for pushing it exactly once, via the same
	// isPushable/pushOp step used everywhere else.
	return NewConditional(ifExpr, elseExpr, environment), nil
}

// Run drives a whole program: a sequence of top-level forms sharing
// topEnv. A `define` form's evaluation is a pure binding side effect
// and contributes nothing to the output; every other form's value, if
// pushable, is emitted — mirroring a REPL where each entered
// expression's result is shown in turn, not just the program's last.
func (u *CompilationUnit) Run(forms []sexpr.Expr, topEnv *env.Environment) (*Sequence, error) {
	prog := NewSequence(sexpr.MakeList(forms...), topEnv)
	for _, form := range forms {
		v, err := u.Evaluate(form, topEnv, prog)
		if err != nil {
			return nil, err
		}
		if isDefineForm(form) {
			continue
		}
		if isPushable(v) {
			if err := pushOp(u, prog, v); err != nil {
				return nil, err
			}
		}
	}
	prog.expanded = true
	prog.result = NilV{}
	return prog, nil
}

// NewTopLevel builds the default pre-populated global environment
// (every intrinsic bound, `if` handled as syntax rather than a value).
func NewTopLevel() *env.Environment {
	top := env.New()
	populateGlobals(top)
	return top
}
