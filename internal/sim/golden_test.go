package sim_test

import (
	"testing"

	"github.com/cjayross/pietc/internal/compiler"
	"github.com/cjayross/pietc/internal/lexer"
	"github.com/cjayross/pietc/internal/sexpr"
	"github.com/cjayross/pietc/internal/sim"
)

// run lexes, parses, compiles and simulates source, returning the
// final stack contents bottom-to-top — one entry per top-level
// expression (defines contribute none), matching a REPL transcript
// where each entered form's value is shown in turn.
func run(t *testing.T, source string) []int64 {
	t.Helper()
	l := lexer.New(source)
	p := sexpr.New(l)
	forms := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}

	unit := compiler.NewCompilationUnit(nil)
	top := compiler.NewTopLevel()
	prog, err := unit.Run(forms, top)
	if err != nil {
		t.Fatalf("compile error: %s", err)
	}

	s := sim.New(unit)
	if err := s.Run(prog); err != nil {
		t.Fatalf("simulation error: %s", err)
	}
	return s.Stack()
}

func TestGoldenArithmetic(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int64
	}{
		{"add", "(+ 2 3)", 5},
		{"subtract-variadic", "(- 10 3 2)", 5},
		{"compare-true", "(if (> 3 2) 100 200)", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(t, tt.source)
			if len(out) != 1 || out[0] != tt.want {
				t.Fatalf("%s: got %v, want [%d]", tt.source, out, tt.want)
			}
		})
	}
}

func TestGoldenLambdaApplication(t *testing.T) {
	out := run(t, "(define twice (lambda (x) (* 2 x))) (twice 7)")
	if len(out) != 1 || out[0] != 14 {
		t.Fatalf("got %v, want [14]", out)
	}
}

func TestGoldenImmediateLambda(t *testing.T) {
	out := run(t, "((lambda (x y) (+ x y)) 4 5)")
	if len(out) != 1 || out[0] != 9 {
		t.Fatalf("got %v, want [9]", out)
	}
}

func TestGoldenNestedLambdaApplication(t *testing.T) {
	out := run(t, "(define dbl (lambda (x) (+ x x))) (dbl (dbl 3))")
	if len(out) != 1 || out[0] != 12 {
		t.Fatalf("got %v, want [12]", out)
	}
}

// TestGoldenHigherOrderArgument exercises a lambda called with a
// non-pushable positional argument (another Lambda, passed by
// reference rather than by stack value): the cleanup after the outer
// call must count only the one physically-pushed argument (`x`), not
// both formals, or it rolls against a window deeper than what was
// actually pushed.
func TestGoldenHigherOrderArgument(t *testing.T) {
	out := run(t, "((lambda (f x) (f x)) (lambda (y) (* y y)) 5)")
	if len(out) != 1 || out[0] != 25 {
		t.Fatalf("got %v, want [25]", out)
	}
}

func TestGoldenSequentialTopLevelForms(t *testing.T) {
	out := run(t, "(and 1 1 0) (or 0 0 1)")
	if len(out) != 2 || out[0] != 0 || out[1] != 1 {
		t.Fatalf("got %v, want [0 1]", out)
	}
}
