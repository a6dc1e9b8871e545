// Package lexer implements the lexical analyzer for the surface
// s-expression grammar: symbols, integers, booleans, characters,
// strings, nil, parens and quote.
package lexer

import (
	"strings"

	"github.com/cjayross/pietc/internal/token"
)

// Common tokens that are reused to reduce allocations.
var (
	tokenLParen = token.Token{Type: token.LPAREN, Literal: "("}
	tokenRParen = token.Token{Type: token.RPAREN, Literal: ")"}
	tokenQuote  = token.Token{Type: token.QUOTE, Literal: "'"}
	tokenEOF    = token.Token{Type: token.EOF, Literal: ""}
)

// symbolStart is the first-character class of a SYMBOL atom:
// [A-Za-z!$%&*+./:<=>?"@^_~-]
func symbolStart(ch byte) bool {
	switch {
	case 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z':
		return true
	case strings.IndexByte(`!$%&*+./:<=>?"@^_~-`, ch) >= 0:
		return true
	}
	return false
}

// symbolCont is the continuation-character class of a SYMBOL atom:
// symbolStart plus digits.
func symbolCont(ch byte) bool {
	return symbolStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// Lexer tokenizes s-expression source text.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
	singleCharToken token.Token
}

// New creates a Lexer over input, priming the first character.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken scans and returns the next token in the input.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	switch {
	case l.ch == '(':
		l.readChar()
		return tokenLParen
	case l.ch == ')':
		l.readChar()
		return tokenRParen
	case l.ch == '\'':
		l.readChar()
		return tokenQuote
	case l.ch == '"':
		lit, ok := l.readString()
		if !ok {
			l.singleCharToken = token.Token{Type: token.ILLEGAL, Literal: "unterminated string"}
			return l.singleCharToken
		}
		l.readChar()
		return token.Token{Type: token.STRING, Literal: lit}
	case l.ch == '#':
		return l.readHash()
	case l.ch == '-' && isDigit(l.peekChar()):
		return token.Token{Type: token.INTEGER, Literal: l.readNumber()}
	case isDigit(l.ch):
		return token.Token{Type: token.INTEGER, Literal: l.readNumber()}
	case symbolStart(l.ch):
		lit := l.readSymbol()
		if lit == "nil" {
			return token.Token{Type: token.NIL, Literal: lit}
		}
		return token.Token{Type: token.SYMBOL, Literal: lit}
	case l.ch == 0:
		return tokenEOF
	default:
		l.singleCharToken = token.Token{Type: token.ILLEGAL, Literal: string(l.ch)}
		l.readChar()
		return l.singleCharToken
	}
}

// readHash scans #t, #f, #\space, #\newline and #\X character literals.
func (l *Lexer) readHash() token.Token {
	l.readChar() // consume '#'
	switch l.ch {
	case 't':
		l.readChar()
		return token.Token{Type: token.BOOL, Literal: "#t"}
	case 'f':
		l.readChar()
		return token.Token{Type: token.BOOL, Literal: "#f"}
	case '\\':
		l.readChar() // consume '\'
		if strings.HasPrefix(l.input[l.position:], "space") && !symbolCont(l.peekNAfter(5)) {
			for range "space" {
				l.readChar()
			}
			return token.Token{Type: token.CHAR, Literal: " "}
		}
		if strings.HasPrefix(l.input[l.position:], "newline") && !symbolCont(l.peekNAfter(7)) {
			for range "newline" {
				l.readChar()
			}
			return token.Token{Type: token.CHAR, Literal: "\n"}
		}
		ch := l.ch
		l.readChar()
		return token.Token{Type: token.CHAR, Literal: string(ch)}
	default:
		l.singleCharToken = token.Token{Type: token.ILLEGAL, Literal: "#" + string(l.ch)}
		l.readChar()
		return l.singleCharToken
	}
}

// peekNAfter returns the byte n positions past the current one, or 0 past EOF.
func (l *Lexer) peekNAfter(n int) byte {
	idx := l.position + n
	if idx >= len(l.input) {
		return 0
	}
	return l.input[idx]
}

func (l *Lexer) readNumber() string {
	start := l.position
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readSymbol() string {
	start := l.position
	l.readChar()
	for symbolCont(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch l.ch {
		case ' ', '\t', '\n', '\r':
			l.readChar()
			continue
		case ';':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

// readString scans the interior of a "..." literal, handling \" and \n
// escapes, and reports whether the string was properly terminated.
func (l *Lexer) readString() (string, bool) {
	var b strings.Builder
	l.readChar() // consume opening quote

	for {
		switch l.ch {
		case '"':
			return b.String(), true
		case 0:
			return b.String(), false
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				b.WriteByte('\n')
			case '"':
				b.WriteByte('"')
			case 0:
				return b.String(), false
			default:
				b.WriteByte('\\')
				b.WriteByte(l.ch)
			}
		default:
			b.WriteByte(l.ch)
		}
		l.readChar()
	}
}
