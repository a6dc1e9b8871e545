package compiler

import (
	"testing"

	"github.com/cjayross/pietc/internal/lexer"
	"github.com/cjayross/pietc/internal/sexpr"
)

func parseOne(t *testing.T, source string) sexpr.Expr {
	t.Helper()
	l := lexer.New(source)
	p := sexpr.New(l)
	forms := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if len(forms) != 1 {
		t.Fatalf("expected exactly 1 form, got %d", len(forms))
	}
	return forms[0]
}

// TestQuoteIntegerIsSelfEvaluating verifies quoting an integer literal
// yields the same Integer a bare literal would, not an inert Datum.
func TestQuoteIntegerIsSelfEvaluating(t *testing.T) {
	u := NewCompilationUnit(nil)
	top := NewTopLevel()
	seq := NewSequence(parseOne(t, "(quote 5)"), top)

	v, err := u.Evaluate(seq.Expr, top, seq)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	i, ok := v.(Integer)
	if !ok || i != 5 {
		t.Fatalf("got %#v, want Integer(5)", v)
	}
}

// TestQuoteSymbolIsInertDatum verifies quoting a symbol produces a
// Datum that cannot be applied and is not pushable.
func TestQuoteSymbolIsInertDatum(t *testing.T) {
	u := NewCompilationUnit(nil)
	top := NewTopLevel()
	seq := NewSequence(parseOne(t, "(quote foo)"), top)

	v, err := u.Evaluate(seq.Expr, top, seq)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, ok := v.(*Datum); !ok {
		t.Fatalf("got %#v, want *Datum", v)
	}
	if isPushable(v) {
		t.Fatal("a quoted symbol must not be pushable")
	}
	if _, err := v.Apply(u, seq, nil); err == nil {
		t.Fatal("expected an error applying a quoted datum")
	}
}

// TestDefineBindsWithoutEmitting verifies a top-level define produces
// no instructions and binds the name into the environment.
func TestDefineBindsWithoutEmitting(t *testing.T) {
	u := NewCompilationUnit(nil)
	top := NewTopLevel()
	seq := NewSequence(parseOne(t, "(define x 5)"), top)

	v, err := u.Evaluate(seq.Expr, top, seq)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(seq.Items) != 0 {
		t.Fatalf("define emitted %d items, want 0", len(seq.Items))
	}
	if _, ok := v.(*MacroSequence); !ok {
		t.Fatalf("define should return a *MacroSequence, got %#v", v)
	}
	if _, err := top.Lookup("x"); err != nil {
		t.Fatalf("define did not bind x: %s", err)
	}
}

// TestLambdaArityMismatchErrors verifies calling a lambda with the
// wrong number of arguments is reported rather than silently
// truncated or padded.
func TestLambdaArityMismatchErrors(t *testing.T) {
	u := NewCompilationUnit(nil)
	top := NewTopLevel()
	seq := NewSequence(parseOne(t, "((lambda (x y) x) 1)"), top)

	_, err := u.Evaluate(seq.Expr, top, seq)
	if err == nil {
		t.Fatal("expected an arity mismatch error")
	}
}

// TestParameterPushabilityFollowsBoundValue verifies isPushable
// unwraps a Parameter to its bound argument before classifying it: a
// parameter bound to a Lambda (never itself a stack value) must not be
// reported pushable just because it is, syntactically, a Parameter.
func TestParameterPushabilityFollowsBoundValue(t *testing.T) {
	u := NewCompilationUnit(nil)
	top := NewTopLevel()
	lambdaVal, err := u.Evaluate(parseOne(t, "(lambda (y) y)"), top, NewSequence(parseOne(t, "0"), top))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	ls := &LambdaSequence{
		MacroSequence: NewMacroSequence(parseOne(t, "0"), top),
		Args:          []Value{lambdaVal, Integer(5)},
	}
	ls.arenaIndex = u.allocArena(ls)
	ls.ParamOffset = []int{1, 0}

	fParam := &Parameter{unit: u, arenaIndex: ls.arenaIndex, slot: 0, Sym: "f"}
	xParam := &Parameter{unit: u, arenaIndex: ls.arenaIndex, slot: 1, Sym: "x"}

	if isPushable(fParam) {
		t.Fatal("a parameter bound to a Lambda must not be pushable")
	}
	if !isPushable(xParam) {
		t.Fatal("a parameter bound to an Integer must be pushable")
	}
}

// TestIfConstantFoldsAndNeverEmitsConditional verifies a test that
// resolves to a compile-time constant selects its branch directly,
// with no Conditional reference appearing in the emitted Items.
func TestIfConstantFoldsAndNeverEmitsConditional(t *testing.T) {
	u := NewCompilationUnit(nil)
	top := NewTopLevel()
	seq := NewSequence(parseOne(t, "(if 1 10 20)"), top)

	v, err := u.Evaluate(seq.Expr, top, seq)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	i, ok := v.(Integer)
	if !ok || i != 10 {
		t.Fatalf("got %#v, want Integer(10)", v)
	}
	for _, item := range seq.Items {
		if _, ok := item.Ref.(*Conditional); ok {
			t.Fatal("a constant-folded if must never emit a Conditional")
		}
	}
}

// TestIfTwoArgFormDefaultsElseToNil verifies the 2-arg (if test then)
// form is accepted, with a falsy test falling through to an implicit
// nil else-branch rather than an arity error.
func TestIfTwoArgFormDefaultsElseToNil(t *testing.T) {
	u := NewCompilationUnit(nil)
	top := NewTopLevel()
	seq := NewSequence(parseOne(t, "(if 0 10)"), top)

	v, err := u.Evaluate(seq.Expr, top, seq)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, ok := v.(NilV); !ok {
		t.Fatalf("got %#v, want NilV (implicit else branch)", v)
	}
}

// TestIfWithRuntimeTestDefersToConditional verifies a non-constant
// test builds a Conditional, and that pushing it yields exactly one
// Conditional reference in the emitted Items.
func TestIfWithRuntimeTestDefersToConditional(t *testing.T) {
	u := NewCompilationUnit(nil)
	top := NewTopLevel()
	seq := NewSequence(parseOne(t, "(if (> 3 2) 10 20)"), top)

	v, err := u.Evaluate(seq.Expr, top, seq)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, ok := v.(*Conditional); !ok {
		t.Fatalf("got %#v, want *Conditional", v)
	}

	if err := pushOp(u, seq, v); err != nil {
		t.Fatalf("unexpected error pushing conditional: %s", err)
	}

	refCount := 0
	for _, item := range seq.Items {
		if _, ok := item.Ref.(*Conditional); ok {
			refCount++
		}
	}
	if refCount != 1 {
		t.Fatalf("expected exactly 1 Conditional reference in Items, got %d", refCount)
	}
}
