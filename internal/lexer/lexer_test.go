package lexer

import (
	"testing"

	"github.com/cjayross/pietc/internal/token"
)

// TestNextToken tests the functionality of the NextToken method in the
// Lexer to ensure all tokens are correctly identified.
func TestNextToken(t *testing.T) {
	input := `(define twice (lambda (x) (* 2 x)))
(twice 7) ; a comment
'(1 2 3)
#t #f #\a #\space #\newline
"foo\nbar" nil -5`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.LPAREN, "("},
		{token.SYMBOL, "define"},
		{token.SYMBOL, "twice"},
		{token.LPAREN, "("},
		{token.SYMBOL, "lambda"},
		{token.LPAREN, "("},
		{token.SYMBOL, "x"},
		{token.RPAREN, ")"},
		{token.LPAREN, "("},
		{token.SYMBOL, "*"},
		{token.INTEGER, "2"},
		{token.SYMBOL, "x"},
		{token.RPAREN, ")"},
		{token.RPAREN, ")"},
		{token.RPAREN, ")"},
		{token.LPAREN, "("},
		{token.SYMBOL, "twice"},
		{token.INTEGER, "7"},
		{token.RPAREN, ")"},
		{token.QUOTE, "'"},
		{token.LPAREN, "("},
		{token.INTEGER, "1"},
		{token.INTEGER, "2"},
		{token.INTEGER, "3"},
		{token.RPAREN, ")"},
		{token.BOOL, "#t"},
		{token.BOOL, "#f"},
		{token.CHAR, "a"},
		{token.CHAR, " "},
		{token.CHAR, "\n"},
		{token.STRING, "foo\nbar"},
		{token.NIL, "nil"},
		{token.INTEGER, "-5"},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

// TestNegativeNumberVsMinusSymbol ensures a bare '-' still lexes as the
// subtraction symbol while '-5' lexes as a single negative integer.
func TestNegativeNumberVsMinusSymbol(t *testing.T) {
	input := `(- 5 -3)`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.LPAREN, "("},
		{token.SYMBOL, "-"},
		{token.INTEGER, "5"},
		{token.INTEGER, "-3"},
		{token.RPAREN, ")"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType || tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - expected {%q %q}, got {%q %q}", i, tt.expectedType, tt.expectedLiteral, tok.Type, tok.Literal)
		}
	}
}

// TestUnterminatedString verifies the lexer reports an ILLEGAL token
// for a string literal missing its closing quote.
func TestUnterminatedString(t *testing.T) {
	l := New(`"no end`)
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL token for unterminated string, got %q", tok.Type)
	}
	if tok.Literal != "unterminated string" {
		t.Fatalf("expected literal 'unterminated string', got %q", tok.Literal)
	}
}

// TestLineComment ensures ';' comments run to end of line and are skipped.
func TestLineComment(t *testing.T) {
	input := "1 ; a comment about 2\n3"
	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.INTEGER, "1"},
		{token.INTEGER, "3"},
		{token.EOF, ""},
	}
	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType || tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - expected {%q %q}, got {%q %q}", i, tt.expectedType, tt.expectedLiteral, tok.Type, tok.Literal)
		}
	}
}
