package domain

import (
	"strings"

	"github.com/dekarrin/ltlplan/internal/ltlerr"
	"github.com/dekarrin/ltlplan/internal/symbol"
	"github.com/hashicorp/go-multierror"
)

// Parse reads a PDDL-style domain declaration and returns the fully
// parsed Domain. Malformed input aborts with a DomainParseError. Parse
// reports no warnings; ParseWithWarnings is the variant that also returns
// recoverable issues.
func Parse(src string) (Domain, error) {
	forms, err := readAll(src)
	if err != nil {
		return Domain{}, err
	}
	if len(forms) != 1 {
		return Domain{}, ltlerr.New(ltlerr.KindDomainParse, "expected exactly one top-level (define ...) form")
	}
	return parseDefine(forms[0])
}

// ParseWithWarnings is Parse but also returns the accumulated recoverable
// warnings as a single combined error (nil if there were none), following
// the hashicorp/go-multierror accumulation pattern for batches of
// non-fatal issues. The one issue checked is a predicate parameter whose
// type is not among the domain's declared types (when any are declared);
// unused types and unused action parameters are not reported.
func ParseWithWarnings(src string) (Domain, error, error) {
	var warnings *multierror.Error

	forms, err := readAll(src)
	if err != nil {
		return Domain{}, nil, err
	}
	if len(forms) != 1 {
		return Domain{}, nil, ltlerr.New(ltlerr.KindDomainParse, "expected exactly one top-level (define ...) form")
	}

	d, err := parseDefine(forms[0])
	if err != nil {
		return Domain{}, nil, err
	}

	declaredTypes := map[string]bool{}
	for _, ty := range d.Types {
		declaredTypes[ty] = true
	}
	for _, p := range d.Predicates {
		for _, param := range p.Params {
			if param.Type != "" && len(d.Types) > 0 && !declaredTypes[param.Type] {
				warnings = multierror.Append(warnings, ltlerr.Newf(ltlerr.KindDomainParse,
					"predicate %q references undeclared type %q", p.Name, param.Type))
			}
		}
	}

	return d, warnings.ErrorOrNil(), nil
}

func parseDefine(form sexpr) (Domain, error) {
	if form.isAtom() || len(form.children) < 2 {
		return Domain{}, ltlerr.New(ltlerr.KindDomainParse, "malformed (define ...) form")
	}
	if form.children[0].atom != "define" {
		return Domain{}, ltlerr.Newf(ltlerr.KindDomainParse, "expected 'define', got %q", form.children[0].atom)
	}

	domainHeader := form.children[1]
	if domainHeader.isAtom() || len(domainHeader.children) < 2 || domainHeader.children[0].atom != "domain" {
		return Domain{}, ltlerr.New(ltlerr.KindDomainParse, "expected (domain NAME) header")
	}

	d := Domain{Name: domainHeader.children[1].atom}

	for _, section := range form.children[2:] {
		if section.isAtom() || len(section.children) == 0 {
			continue
		}
		head := section.children[0].atom
		switch head {
		case ":types":
			for _, c := range section.children[1:] {
				if c.atom != "-" {
					d.Types = append(d.Types, c.atom)
				}
			}
		case ":predicates":
			for _, predForm := range section.children[1:] {
				pred, err := parsePredicate(predForm)
				if err != nil {
					return Domain{}, err
				}
				d.Predicates = append(d.Predicates, pred)
			}
		case ":action":
			action, err := parseAction(section)
			if err != nil {
				return Domain{}, err
			}
			d.Actions = append(d.Actions, action)
		}
	}

	return d, nil
}

func parsePredicate(form sexpr) (Predicate, error) {
	if form.isAtom() || len(form.children) == 0 {
		return Predicate{}, ltlerr.New(ltlerr.KindDomainParse, "malformed predicate declaration")
	}
	pred := Predicate{Name: form.children[0].atom}
	params, err := parseTypedVarList(form.children[1:])
	if err != nil {
		return Predicate{}, err
	}
	pred.Params = params
	return pred, nil
}

// parseTypedVarList reads a flat "?x ?y - type1 ?z - type2" sequence,
// PDDL's convention of trailing-typing a run of variables.
func parseTypedVarList(items []sexpr) ([]TypedVar, error) {
	var pending []string
	var result []TypedVar
	i := 0
	for i < len(items) {
		item := items[i]
		if item.atom == "-" {
			if i+1 >= len(items) {
				return nil, ltlerr.New(ltlerr.KindDomainParse, "'-' type marker with no following type name")
			}
			ty := items[i+1].atom
			for _, name := range pending {
				result = append(result, TypedVar{Name: name, Type: ty})
			}
			pending = nil
			i += 2
			continue
		}
		pending = append(pending, item.atom)
		i++
	}
	for _, name := range pending {
		result = append(result, TypedVar{Name: name})
	}
	return result, nil
}

func parseAction(form sexpr) (ActionSchema, error) {
	if len(form.children) < 2 {
		return ActionSchema{}, ltlerr.New(ltlerr.KindDomainParse, "malformed action declaration")
	}
	action := ActionSchema{Name: form.children[1].atom}

	items := form.children[2:]
	for i := 0; i < len(items); i++ {
		key := items[i].atom
		if !strings.HasPrefix(key, ":") || i+1 >= len(items) {
			continue
		}
		val := items[i+1]
		i++
		switch key {
		case ":parameters":
			params, err := parseTypedVarList(val.children)
			if err != nil {
				return ActionSchema{}, err
			}
			action.Params = params
		case ":precondition":
			atoms, neqs, err := parsePrecondition(val)
			if err != nil {
				return ActionSchema{}, err
			}
			action.PrecondAtoms = atoms
			action.PrecondNeqs = neqs
		case ":effect":
			branches, err := parseEffect(val)
			if err != nil {
				return ActionSchema{}, err
			}
			action.Branches = branches
		}
	}
	if len(action.Branches) == 0 {
		action.Branches = []Branch{{}}
	}
	return action, nil
}

// parsePrecondition walks an (and ...) conjunction (or a bare literal),
// splitting out "(not (= ?x ?y))" inequality constraints from ordinary
// atoms.
func parsePrecondition(form sexpr) ([]symbol.Atom, []Neq, error) {
	var atoms []symbol.Atom
	var neqs []Neq

	var walk func(sexpr) error
	walk = func(f sexpr) error {
		if f.isAtom() {
			return ltlerr.New(ltlerr.KindDomainParse, "precondition literal is not a list")
		}
		if len(f.children) == 0 {
			return nil
		}
		head := f.children[0].atom
		switch head {
		case "and":
			for _, c := range f.children[1:] {
				if err := walk(c); err != nil {
					return err
				}
			}
			return nil
		case "not":
			if len(f.children) != 2 {
				return ltlerr.New(ltlerr.KindDomainParse, "'not' takes exactly one argument")
			}
			inner := f.children[1]
			if !inner.isAtom() && len(inner.children) == 3 && inner.children[0].atom == "=" {
				neqs = append(neqs, Neq{A: inner.children[1].atom, B: inner.children[2].atom})
				return nil
			}
			atom, err := parseLiteral(inner, true)
			if err != nil {
				return err
			}
			atoms = append(atoms, atom)
			return nil
		default:
			atom, err := parseLiteral(f, false)
			if err != nil {
				return err
			}
			atoms = append(atoms, atom)
			return nil
		}
	}

	if err := walk(form); err != nil {
		return nil, nil, err
	}
	return atoms, neqs, nil
}

func parseLiteral(f sexpr, negated bool) (symbol.Atom, error) {
	if f.isAtom() || len(f.children) == 0 {
		return symbol.Atom{}, ltlerr.New(ltlerr.KindDomainParse, "malformed predicate literal")
	}
	pred := f.children[0].atom
	args := make([]symbol.Term, 0, len(f.children)-1)
	for _, c := range f.children[1:] {
		if c.isVar {
			args = append(args, symbol.Var(c.atom))
		} else {
			args = append(args, symbol.Const(c.atom))
		}
	}
	return symbol.Atom{Predicate: pred, Args: args, Negated: negated}, nil
}

// parseEffect walks an effect form: a bare conjunction (one deterministic
// branch) or an "(oneof (and ...) (and ...))" non-deterministic effect.
func parseEffect(form sexpr) ([]Branch, error) {
	if form.isAtom() || len(form.children) == 0 {
		return []Branch{{}}, nil
	}
	if form.children[0].atom == "oneof" {
		var branches []Branch
		for _, c := range form.children[1:] {
			b, err := parseBranch(c)
			if err != nil {
				return nil, err
			}
			branches = append(branches, b)
		}
		return branches, nil
	}
	b, err := parseBranch(form)
	if err != nil {
		return nil, err
	}
	return []Branch{b}, nil
}

func parseBranch(form sexpr) (Branch, error) {
	var branch Branch
	var walk func(sexpr) error
	walk = func(f sexpr) error {
		if f.isAtom() || len(f.children) == 0 {
			return nil
		}
		head := f.children[0].atom
		if head == "and" {
			for _, c := range f.children[1:] {
				if err := walk(c); err != nil {
					return err
				}
			}
			return nil
		}
		if head == "not" {
			if len(f.children) != 2 {
				return ltlerr.New(ltlerr.KindDomainParse, "'not' takes exactly one argument")
			}
			atom, err := parseLiteral(f.children[1], false)
			if err != nil {
				return err
			}
			branch.Del = append(branch.Del, atom)
			return nil
		}
		atom, err := parseLiteral(f, false)
		if err != nil {
			return err
		}
		branch.Add = append(branch.Add, atom)
		return nil
	}
	if err := walk(form); err != nil {
		return Branch{}, err
	}
	return branch, nil
}
