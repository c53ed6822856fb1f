package query

import (
	"fmt"
	"strconv"
)

// Grammar, lowest precedence first:
//
//	or       → and ( "or" and )*
//	and      → equality ( "and" equality )*
//	equality → relation ( ( "=" | "!=" ) relation )*
//	relation → additive ( ( "<" | "<=" | ">" | ">=" ) additive )*
//	additive → multiply ( ( "+" | "-" ) multiply )*
//	multiply → unary ( ( "*" | "div" | "mod" ) unary )*
//	unary    → "-" unary | union
//	union    → path ( "|" path )*
//	path     → location | filter ( ( "/" | "//" ) relative )?
//	filter   → primary predicate*
//	primary  → string | number | call | "(" or ")"
type parser struct {
	src    string
	tokens []token
	pos    int
}

func parse(src string) (expr, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, tokens: tokens}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.typ != tokEOF {
		return nil, p.errorf(t, "unexpected %s", t.typ)
	}
	return e, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(n int) token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) advance() token {
	t := p.tokens[p.pos]
	if t.typ != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) match(types ...tokenType) (token, bool) {
	t := p.peek()
	for _, typ := range types {
		if t.typ == typ {
			p.advance()
			return t, true
		}
	}
	return t, false
}

func (p *parser) consume(typ tokenType) (token, error) {
	t := p.peek()
	if t.typ != typ {
		return t, p.errorf(t, "expected %s, found %s", typ, t.typ)
	}
	return p.advance(), nil
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &SyntaxError{Query: p.src, Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

// binary parses a left-associative level.
func (p *parser) binary(next func() (expr, error), ops ...tokenType) (expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.match(ops...)
		if !ok {
			return left, nil
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: t.typ, left: left, right: right}
	}
}

func (p *parser) parseOr() (expr, error) {
	return p.binary(p.parseAnd, tokOr)
}

func (p *parser) parseAnd() (expr, error) {
	return p.binary(p.parseEquality, tokAnd)
}

func (p *parser) parseEquality() (expr, error) {
	return p.binary(p.parseRelation, tokEq, tokNeq)
}

func (p *parser) parseRelation() (expr, error) {
	return p.binary(p.parseAdditive, tokLt, tokLte, tokGt, tokGte)
}

func (p *parser) parseAdditive() (expr, error) {
	return p.binary(p.parseMultiply, tokPlus, tokMinus)
}

func (p *parser) parseMultiply() (expr, error) {
	return p.binary(p.parseUnary, tokMul, tokDiv, tokMod)
}

func (p *parser) parseUnary() (expr, error) {
	if _, ok := p.match(tokMinus); ok {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &negExpr{operand: operand}, nil
	}
	return p.parseUnion()
}

func (p *parser) parseUnion() (expr, error) {
	left, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.match(tokPipe); !ok {
			return left, nil
		}
		right, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		left = &unionExpr{left: left, right: right}
	}
}

func (p *parser) parsePath() (expr, error) {
	t := p.peek()
	switch t.typ {
	case tokSlash:
		p.advance()
		path := &pathExpr{absolute: true}
		if !p.startsStep() {
			return path, nil
		}
		if err := p.parseRelative(path); err != nil {
			return nil, err
		}
		return path, nil
	case tokDoubleSlash:
		p.advance()
		path := &pathExpr{absolute: true, steps: []step{descendantOrSelf()}}
		if err := p.parseRelative(path); err != nil {
			return nil, err
		}
		return path, nil
	case tokString, tokNumber, tokLParen:
		return p.parseFilter()
	case tokName:
		if p.peekAt(1).typ == tokLParen {
			return p.parseFilter()
		}
	}
	if !p.startsStep() {
		return nil, p.errorf(t, "unexpected %s", t.typ)
	}
	path := &pathExpr{}
	if err := p.parseRelative(path); err != nil {
		return nil, err
	}
	return path, nil
}

func (p *parser) parseFilter() (expr, error) {
	primary, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	preds, err := p.parsePredicates()
	if err != nil {
		return nil, err
	}
	var base expr = primary
	if len(preds) > 0 {
		base = &filterExpr{primary: primary, predicates: preds}
	}
	switch p.peek().typ {
	case tokSlash:
		p.advance()
	case tokDoubleSlash:
		p.advance()
		path := &pathExpr{base: base, steps: []step{descendantOrSelf()}}
		return path, p.parseRelative(path)
	default:
		return base, nil
	}
	path := &pathExpr{base: base}
	return path, p.parseRelative(path)
}

func (p *parser) startsStep() bool {
	switch p.peek().typ {
	case tokName, tokStar, tokDot, tokDotDot, tokAt:
		return true
	default:
		return false
	}
}

func (p *parser) parseRelative(path *pathExpr) error {
	for {
		s, err := p.parseStep()
		if err != nil {
			return err
		}
		path.steps = append(path.steps, s)

		switch p.peek().typ {
		case tokSlash:
			p.advance()
		case tokDoubleSlash:
			p.advance()
			path.steps = append(path.steps, descendantOrSelf())
		default:
			return nil
		}
	}
}

func (p *parser) parseStep() (step, error) {
	t := p.advance()
	switch t.typ {
	case tokDot:
		return step{axis: axisSelf, anyNode: true}, nil
	case tokDotDot:
		return step{axis: axisParent, anyNode: true}, nil
	case tokStar, tokName, tokAt:
		s := step{axis: axisChild, name: t.text}
		if t.typ == tokAt {
			// Attributes are projected as child elements; '@' is accepted
			// as a synonym for the child axis.
			n := p.advance()
			if n.typ != tokName && n.typ != tokStar {
				return step{}, p.errorf(n, "expected name after '@', found %s", n.typ)
			}
			s.name = n.text
		}
		preds, err := p.parsePredicates()
		if err != nil {
			return step{}, err
		}
		s.predicates = preds
		return s, nil
	default:
		return step{}, p.errorf(t, "expected location step, found %s", t.typ)
	}
}

func (p *parser) parsePredicates() ([]expr, error) {
	var preds []expr
	for {
		if _, ok := p.match(tokLBracket); !ok {
			return preds, nil
		}
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(tokRBracket); err != nil {
			return nil, err
		}
		preds = append(preds, e)
	}
}

func (p *parser) parsePrimary() (expr, error) {
	t := p.advance()
	switch t.typ {
	case tokString:
		return &literal{v: stringValue(t.text)}, nil
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, p.errorf(t, "invalid number %q", t.text)
		}
		return &literal{v: numberValue(f)}, nil
	case tokLParen:
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(tokRParen); err != nil {
			return nil, err
		}
		return e, nil
	case tokName:
		return p.parseCall(t)
	default:
		return nil, p.errorf(t, "unexpected %s", t.typ)
	}
}

func (p *parser) parseCall(name token) (expr, error) {
	fn, ok := functions[name.text]
	if !ok {
		return nil, p.errorf(name, "unknown function %s()", name.text)
	}
	if _, err := p.consume(tokLParen); err != nil {
		return nil, err
	}
	call := &funcCall{name: name.text, fn: fn}
	if _, ok := p.match(tokRParen); !ok {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			call.args = append(call.args, arg)
			if _, ok := p.match(tokComma); ok {
				continue
			}
			if _, err := p.consume(tokRParen); err != nil {
				return nil, err
			}
			break
		}
	}
	if len(call.args) < fn.minArgs || (fn.maxArgs >= 0 && len(call.args) > fn.maxArgs) {
		return nil, p.errorf(name, "%s() takes %s, got %d", name.text, fn.arity(), len(call.args))
	}
	return call, nil
}

func descendantOrSelf() step {
	return step{axis: axisDescendantOrSelf, anyNode: true}
}
