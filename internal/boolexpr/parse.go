package boolexpr

import (
	"unicode"

	"github.com/dekarrin/ltlplan/internal/ltlerr"
)

// Parse reads a boolean expression over propositional symbols, in a small
// infix syntax supporting the usual connectives: `!` (not),
// `&` (and), `|` (or), `->` (implies), `<->` (iff), and parentheses.
// Operator precedence, tightest first: !, &, |, ->, <->. `->` and `<->`
// are right-associative and desugared away immediately, per Implies/Iff.
func Parse(src string) (*Expr, error) {
	p := &exprParser{toks: tokenize(src)}
	e, err := p.parseIff()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, ltlerr.Newf(ltlerr.KindDFAParse, "unexpected trailing input in boolean expression: %q", p.toks[p.pos].text)
	}
	return e, nil
}

type exprTokKind int

const (
	exprSymbol exprTokKind = iota
	exprTrue
	exprFalse
	exprNot
	exprAnd
	exprOr
	exprImplies
	exprIff
	exprLParen
	exprRParen
)

type exprTok struct {
	kind exprTokKind
	text string
}

func tokenize(src string) []exprTok {
	runes := []rune(src)
	var toks []exprTok
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, exprTok{kind: exprLParen, text: "("})
			i++
		case r == ')':
			toks = append(toks, exprTok{kind: exprRParen, text: ")"})
			i++
		case r == '!' || r == '¬':
			toks = append(toks, exprTok{kind: exprNot, text: "!"})
			i++
		case r == '&' || r == '∧':
			toks = append(toks, exprTok{kind: exprAnd, text: "&"})
			i++
		case r == '|' || r == '∨':
			toks = append(toks, exprTok{kind: exprOr, text: "|"})
			i++
		case r == '↔':
			toks = append(toks, exprTok{kind: exprIff, text: "<->"})
			i++
		case r == '→':
			toks = append(toks, exprTok{kind: exprImplies, text: "->"})
			i++
		case r == '-' && i+1 < len(runes) && runes[i+1] == '>':
			toks = append(toks, exprTok{kind: exprImplies, text: "->"})
			i += 2
		case r == '<' && i+2 < len(runes) && runes[i+1] == '-' && runes[i+2] == '>':
			toks = append(toks, exprTok{kind: exprIff, text: "<->"})
			i += 3
		default:
			start := i
			for i < len(runes) && isSymbolRune(runes[i]) {
				i++
			}
			if i == start {
				// unrecognized rune; skip it rather than abort, matching
				// the tolerant-parsing posture used at this boundary.
				i++
				continue
			}
			text := string(runes[start:i])
			switch text {
			case "true", "True", "TRUE":
				toks = append(toks, exprTok{kind: exprTrue, text: text})
			case "false", "False", "FALSE":
				toks = append(toks, exprTok{kind: exprFalse, text: text})
			default:
				toks = append(toks, exprTok{kind: exprSymbol, text: text})
			}
		}
	}
	return toks
}

func isSymbolRune(r rune) bool {
	if unicode.IsSpace(r) {
		return false
	}
	switch r {
	case '(', ')', '!', '&', '|', '¬', '∧', '∨', '↔', '→', '-', '<':
		return false
	}
	return true
}

type exprParser struct {
	toks []exprTok
	pos  int
}

func (p *exprParser) peek() (exprTok, bool) {
	if p.pos >= len(p.toks) {
		return exprTok{}, false
	}
	return p.toks[p.pos], true
}

func (p *exprParser) parseIff() (*Expr, error) {
	left, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	if t, ok := p.peek(); ok && t.kind == exprIff {
		p.pos++
		right, err := p.parseIff()
		if err != nil {
			return nil, err
		}
		return Iff(left, right), nil
	}
	return left, nil
}

func (p *exprParser) parseImplies() (*Expr, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t, ok := p.peek(); ok && t.kind == exprImplies {
		p.pos++
		right, err := p.parseImplies()
		if err != nil {
			return nil, err
		}
		return Implies(left, right), nil
	}
	return left, nil
}

func (p *exprParser) parseOr() (*Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != exprOr {
			return left, nil
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or(left, right)
	}
}

func (p *exprParser) parseAnd() (*Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != exprAnd {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = And(left, right)
	}
}

func (p *exprParser) parseUnary() (*Expr, error) {
	if t, ok := p.peek(); ok && t.kind == exprNot {
		p.pos++
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not(operand), nil
	}
	return p.parseAtom()
}

func (p *exprParser) parseAtom() (*Expr, error) {
	t, ok := p.peek()
	if !ok {
		return nil, ltlerr.New(ltlerr.KindDFAParse, "unexpected end of boolean expression")
	}
	switch t.kind {
	case exprTrue:
		p.pos++
		return Const(true), nil
	case exprFalse:
		p.pos++
		return Const(false), nil
	case exprSymbol:
		p.pos++
		return Lit(t.text), nil
	case exprLParen:
		p.pos++
		inner, err := p.parseIff()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != exprRParen {
			return nil, ltlerr.New(ltlerr.KindDFAParse, "missing closing ')' in boolean expression")
		}
		p.pos++
		return inner, nil
	default:
		return nil, ltlerr.Newf(ltlerr.KindDFAParse, "unexpected token %q in boolean expression", t.text)
	}
}
