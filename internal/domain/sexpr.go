package domain

import "github.com/dekarrin/ltlplan/internal/ltlerr"

// sexpr is a generic parenthesised term: either an atomic symbol/variable
// or a list of child sexprs. Parsing PDDL in two stages (a generic reader
// here, then a semantic walk in parse.go) keeps the parser honest: there
// is no grammar formalism or parser generator involved, just a recursive
// read of balanced parens.
type sexpr struct {
	atom     string
	isVar    bool
	children []sexpr
	line     int
}

func (s sexpr) isAtom() bool { return s.children == nil }

// readAll parses every top-level s-expression in src.
func readAll(src string) ([]sexpr, error) {
	lx := newLexer(src)
	var forms []sexpr
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokEOF {
			return forms, nil
		}
		if tok.kind != tokLParen {
			return nil, ltlerr.Newf(ltlerr.KindDomainParse, "line %d: expected '(' to start a top-level form, got %q", tok.line, tok.text)
		}
		form, err := readForm(lx)
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
}

// readForm reads the children of a list whose opening '(' has already been
// consumed, stopping at the matching ')'.
func readForm(lx *lexer) (sexpr, error) {
	var node sexpr
	for {
		tok, err := lx.next()
		if err != nil {
			return sexpr{}, err
		}
		switch tok.kind {
		case tokEOF:
			return sexpr{}, ltlerr.New(ltlerr.KindDomainParse, "unexpected end of input inside a parenthesised form")
		case tokRParen:
			return node, nil
		case tokLParen:
			child, err := readForm(lx)
			if err != nil {
				return sexpr{}, err
			}
			node.children = append(node.children, child)
		default:
			node.children = append(node.children, sexpr{atom: tok.text, isVar: tok.kind == tokVariable, line: tok.line})
		}
	}
}
