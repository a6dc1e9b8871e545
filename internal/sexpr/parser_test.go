package sexpr

import (
	"testing"

	"github.com/cjayross/pietc/internal/lexer"
)

func parse(t *testing.T, input string) []Expr {
	t.Helper()
	p := New(lexer.New(input))
	forms := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("parser errors for %q: %v", input, p.Errors())
	}
	return forms
}

func TestParseAtoms(t *testing.T) {
	forms := parse(t, `42 -7 x nil #t #f`)
	want := []Expr{
		MakeInteger(42),
		MakeInteger(-7),
		MakeSymbol("x"),
		MakeNil(),
		MakeInteger(1),
		MakeInteger(0),
	}
	if len(forms) != len(want) {
		t.Fatalf("got %d forms, want %d", len(forms), len(want))
	}
	for i := range want {
		if forms[i].String() != want[i].String() {
			t.Errorf("forms[%d] = %s, want %s", i, forms[i], want[i])
		}
	}
}

func TestParseList(t *testing.T) {
	forms := parse(t, `(+ 2 3)`)
	if len(forms) != 1 {
		t.Fatalf("got %d forms, want 1", len(forms))
	}
	got := forms[0]
	if got.Kind != List || len(got.Items) != 3 {
		t.Fatalf("got %#v", got)
	}
	if got.Items[0].Sym != "+" || got.Items[1].Int != 2 || got.Items[2].Int != 3 {
		t.Errorf("wrong items: %s", got)
	}
}

func TestQuoteShorthand(t *testing.T) {
	forms := parse(t, `'(1 2 3)`)
	if len(forms) != 1 {
		t.Fatalf("got %d forms, want 1", len(forms))
	}
	got := forms[0]
	if got.Kind != List || len(got.Items) != 2 || got.Items[0].Sym != "quote" {
		t.Fatalf("expected (quote (1 2 3)), got %s", got)
	}
}

func TestStringDesugarsToQuotedCodeList(t *testing.T) {
	forms := parse(t, `"ab"`)
	got := forms[0]
	if got.Kind != List || got.Items[0].Sym != "quote" {
		t.Fatalf("expected quoted list, got %s", got)
	}
	inner := got.Items[1]
	if inner.Kind != List || len(inner.Items) != 2 {
		t.Fatalf("expected 2-element char-code list, got %s", inner)
	}
	if inner.Items[0].Int != int64('a') || inner.Items[1].Int != int64('b') {
		t.Errorf("wrong char codes: %s", inner)
	}
}

func TestUnterminatedListIsAnError(t *testing.T) {
	p := New(lexer.New(`(+ 1 2`))
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected a parse error for unterminated list")
	}
}
