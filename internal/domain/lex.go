package domain

import (
	"strings"
	"unicode"

	"github.com/dekarrin/ltlplan/internal/ltlerr"
)

// tokenKind classifies a single lexeme in the PDDL s-expression stream.
type tokenKind int

const (
	tokLParen tokenKind = iota
	tokRParen
	tokSymbol
	tokVariable // begins with '?'
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	line int
}

// lexer is a straightforward hand-rolled scanner over PDDL's s-expression
// syntax: parens, bare symbols, "?"-prefixed variables, and ";"-to-end-of-
// line comments. There is no need for anything heavier; PDDL domains have
// no operator precedence or string literals.
type lexer struct {
	src  []rune
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src), line: 1}
}

func isSymbolRune(r rune) bool {
	if unicode.IsSpace(r) || r == '(' || r == ')' || r == ';' {
		return false
	}
	return true
}

func (l *lexer) peekRune() (rune, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *lexer) skipTrivia() {
	for {
		r, ok := l.peekRune()
		if !ok {
			return
		}
		switch {
		case r == '\n':
			l.line++
			l.pos++
		case unicode.IsSpace(r):
			l.pos++
		case r == ';':
			for {
				r, ok := l.peekRune()
				if !ok || r == '\n' {
					break
				}
				l.pos++
			}
		default:
			return
		}
	}
}

// next returns the next token in the stream, or a tokEOF token once the
// input is exhausted.
func (l *lexer) next() (token, error) {
	l.skipTrivia()
	r, ok := l.peekRune()
	if !ok {
		return token{kind: tokEOF, line: l.line}, nil
	}

	switch r {
	case '(':
		l.pos++
		return token{kind: tokLParen, text: "(", line: l.line}, nil
	case ')':
		l.pos++
		return token{kind: tokRParen, text: ")", line: l.line}, nil
	}

	start := l.pos
	for {
		r, ok := l.peekRune()
		if !ok || !isSymbolRune(r) {
			break
		}
		l.pos++
	}
	if l.pos == start {
		return token{}, ltlerr.Newf(ltlerr.KindDomainParse, "unexpected character %q at line %d", r, l.line)
	}

	text := string(l.src[start:l.pos])
	kind := tokSymbol
	if strings.HasPrefix(text, "?") {
		kind = tokVariable
	}
	return token{kind: kind, text: text, line: l.line}, nil
}
