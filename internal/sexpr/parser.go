package sexpr

import (
	"fmt"

	"github.com/cjayross/pietc/internal/lexer"
	"github.com/cjayross/pietc/internal/token"
)

// Parser turns a token stream into a slice of top-level Expr forms.
// It implements the surface grammar of §6: atoms, parenthesised lists,
// and the `'E` quote shorthand.
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors []string
}

// New creates a Parser over l, priming the current and peek tokens.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns every syntax error accumulated while parsing.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

// ParseProgram consumes the entire token stream and returns every
// top-level s-expression in program order. Parsing stops at the first
// malformed form; callers should check Errors() afterward.
func (p *Parser) ParseProgram() []Expr {
	var forms []Expr
	for p.curToken.Type != token.EOF {
		e, ok := p.parseExpr()
		if !ok {
			return forms
		}
		forms = append(forms, e)
		p.nextToken()
	}
	return forms
}

// parseExpr parses one s-expression starting at p.curToken, leaving
// p.curToken on the expression's last consumed token.
func (p *Parser) parseExpr() (Expr, bool) {
	switch p.curToken.Type {
	case token.LPAREN:
		return p.parseList()
	case token.QUOTE:
		p.nextToken()
		inner, ok := p.parseExpr()
		if !ok {
			return Expr{}, false
		}
		return MakeList(MakeSymbol("quote"), inner), true
	case token.SYMBOL:
		return MakeSymbol(p.curToken.Literal), true
	case token.INTEGER:
		return p.parseInteger()
	case token.BOOL:
		if p.curToken.Literal == "#t" {
			return MakeInteger(1), true
		}
		return MakeInteger(0), true
	case token.CHAR:
		r := []rune(p.curToken.Literal)
		return MakeInteger(int64(r[0])), true
	case token.STRING:
		return p.parseString(), true
	case token.NIL:
		return MakeNil(), true
	default:
		p.errorf("unexpected token %s (%q)", p.curToken.Type, p.curToken.Literal)
		return Expr{}, false
	}
}

func (p *Parser) parseInteger() (Expr, bool) {
	var v int64
	_, err := fmt.Sscanf(p.curToken.Literal, "%d", &v)
	if err != nil {
		p.errorf("could not parse %q as integer", p.curToken.Literal)
		return Expr{}, false
	}
	return MakeInteger(v), true
}

// parseString desugars a STRING atom into (quote (c1 c2 … cn)) where
// each ci is the integer code point of the corresponding character, per
// §6's surface grammar.
func (p *Parser) parseString() Expr {
	items := make([]Expr, 0, len(p.curToken.Literal))
	for _, r := range p.curToken.Literal {
		items = append(items, MakeInteger(int64(r)))
	}
	return MakeList(MakeSymbol("quote"), MakeList(items...))
}

// parseList parses `( e1 e2 … )`, p.curToken starting on the LPAREN.
func (p *Parser) parseList() (Expr, bool) {
	var items []Expr
	p.nextToken() // consume '('

	for p.curToken.Type != token.RPAREN {
		if p.curToken.Type == token.EOF {
			p.errorf("unexpected EOF, expected )")
			return Expr{}, false
		}
		e, ok := p.parseExpr()
		if !ok {
			return Expr{}, false
		}
		items = append(items, e)
		p.nextToken()
	}
	return MakeList(items...), true
}
