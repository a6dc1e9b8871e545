// Package sexpr defines the already-parsed s-expression value tree that
// the evaluator consumes: the external lexer/parser boundary of the
// compiler. Surface forms that are purely syntactic sugar over this
// tree — booleans, characters, strings — are desugared to Integer and
// List nodes by the parser itself, so the tree carries only the four
// kinds the evaluator's contract (§4.D) actually distinguishes.
package sexpr

import "fmt"

// Kind tags the variant of an Expr.
type Kind int

const (
	// Integer holds a literal integer value (also used for desugared
	// #t/#f and #\X character literals).
	Integer Kind = iota
	// Symbol holds an identifier to be resolved against an environment.
	Symbol
	// Nil is the empty/absent value.
	Nil
	// List holds an ordered sequence of sub-expressions, i.e. a
	// parenthesised form.
	List
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "Integer"
	case Symbol:
		return "Symbol"
	case Nil:
		return "Nil"
	case List:
		return "List"
	default:
		return "Unknown"
	}
}

// Expr is a tagged s-expression node.
type Expr struct {
	Kind  Kind
	Int   int64
	Sym   string
	Items []Expr
}

// MakeInteger builds an Integer node.
func MakeInteger(v int64) Expr { return Expr{Kind: Integer, Int: v} }

// MakeSymbol builds a Symbol node.
func MakeSymbol(s string) Expr { return Expr{Kind: Symbol, Sym: s} }

// MakeNil builds a Nil node.
func MakeNil() Expr { return Expr{Kind: Nil} }

// MakeList builds a List node from the given items.
func MakeList(items ...Expr) Expr { return Expr{Kind: List, Items: items} }

// IsNil reports whether e is the Nil atom or an empty List (both
// represent "nothing" at the surface grammar level).
func (e Expr) IsNil() bool {
	return e.Kind == Nil || (e.Kind == List && len(e.Items) == 0)
}

// Head returns the first element of a List; it panics if e is not a
// non-empty List, mirroring the evaluator's assumption that call sites
// never inspect Head without first checking Kind.
func (e Expr) Head() Expr {
	if e.Kind != List || len(e.Items) == 0 {
		panic("sexpr: Head of non-list or empty list")
	}
	return e.Items[0]
}

// Tail returns all elements of a List after the first.
func (e Expr) Tail() []Expr {
	if e.Kind != List || len(e.Items) == 0 {
		panic("sexpr: Tail of non-list or empty list")
	}
	return e.Items[1:]
}

// String renders e in the surface syntax, used in error messages and
// the REPL's history/highlighting.
func (e Expr) String() string {
	switch e.Kind {
	case Integer:
		return fmt.Sprintf("%d", e.Int)
	case Symbol:
		return e.Sym
	case Nil:
		return "nil"
	case List:
		s := "("
		for i, it := range e.Items {
			if i > 0 {
				s += " "
			}
			s += it.String()
		}
		return s + ")"
	default:
		return "<invalid>"
	}
}
