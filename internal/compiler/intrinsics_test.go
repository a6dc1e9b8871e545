package compiler

import "testing"

// TestAssociativeBinaryRejectsSingleArgument verifies the assoc ≥2
// arity discipline: a single operand is a fatal arity mismatch for
// `+`, not silently treated as identity.
func TestAssociativeBinaryRejectsSingleArgument(t *testing.T) {
	u := NewCompilationUnit(nil)
	top := NewTopLevel()
	seq := NewSequence(parseOne(t, "(+ 1)"), top)

	_, err := u.Evaluate(seq.Expr, top, seq)
	if err == nil {
		t.Fatal("expected an arity error for (+ 1)")
	}
}

// TestStrictBinaryRejectsExtraArguments verifies the strict-binary
// discipline: a comparison intrinsic called with three operands is an
// arity mismatch, not silently truncated to its first two.
func TestStrictBinaryRejectsExtraArguments(t *testing.T) {
	u := NewCompilationUnit(nil)
	top := NewTopLevel()
	seq := NewSequence(parseOne(t, "(eq 1 2 3)"), top)

	_, err := u.Evaluate(seq.Expr, top, seq)
	if err == nil {
		t.Fatal("expected an arity error for (eq 1 2 3)")
	}
}

// TestUnaryRejectsExtraArguments verifies the unary discipline applies
// to `not`.
func TestUnaryRejectsExtraArguments(t *testing.T) {
	u := NewCompilationUnit(nil)
	top := NewTopLevel()
	seq := NewSequence(parseOne(t, "(not 1 2)"), top)

	_, err := u.Evaluate(seq.Expr, top, seq)
	if err == nil {
		t.Fatal("expected an arity error for (not 1 2)")
	}
}

// TestAssociativeBinaryAcceptsMinimumArity verifies exactly 2
// arguments is the floor, not the ceiling, for an assoc-binary
// intrinsic.
func TestAssociativeBinaryAcceptsMinimumArity(t *testing.T) {
	u := NewCompilationUnit(nil)
	top := NewTopLevel()
	seq := NewSequence(parseOne(t, "(* 3 4)"), top)

	if _, err := u.Evaluate(seq.Expr, top, seq); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
}
