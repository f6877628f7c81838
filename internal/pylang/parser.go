package pylang

import "fmt"

// Parse builds a Module AST from source text without evaluating anything.
// It returns a *SyntaxError when the text is not well formed.
func Parse(src string) (*Module, error) {
	toks, err := scanAll(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	return p.parseModule()
}

type parser struct {
	src     string
	toks    []Token
	pos     int
	lastEnd int // byte offset just past the last consumed substantive token
}

func (p *parser) cur() Token { return p.toks[p.pos] }

func (p *parser) peek() Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	switch t.Type {
	case NEWLINE, INDENT, DEDENT, EOF:
	default:
		p.lastEnd = t.Offset + len(t.Lexeme)
	}
	return t
}

func (p *parser) check(tt TokenType) bool { return p.cur().Type == tt }

func (p *parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(tt TokenType, what string) (Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	t := p.cur()
	return Token{}, syntaxErrorf(t.Line, t.Col, "expected %s, found %q", what, describeToken(t))
}

func describeToken(t Token) string {
	switch t.Type {
	case EOF:
		return "end of input"
	case NEWLINE:
		return "end of line"
	case INDENT:
		return "indent"
	case DEDENT:
		return "dedent"
	default:
		return t.Lexeme
	}
}

func (p *parser) errHere(format string, args ...any) error {
	t := p.cur()
	return syntaxErrorf(t.Line, t.Col, format, args...)
}

func at(t Token) position { return position{P: Position{Line: t.Line, Col: t.Col}} }

func (p *parser) parseModule() (*Module, error) {
	m := &Module{}
	for !p.check(EOF) {
		if p.match(NEWLINE) {
			continue
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		m.Stmts = append(m.Stmts, s)
	}
	return m, nil
}

func (p *parser) parseStatement() (Stmt, error) {
	switch p.cur().Type {
	case KwDef:
		return p.parseFuncDef()
	case KwIf:
		return p.parseIf()
	case KwWhile:
		return p.parseWhile()
	case KwFor:
		return p.parseFor()
	default:
		s, err := p.parseSimpleStatement()
		if err != nil {
			return nil, err
		}
		if !p.check(EOF) && !p.check(DEDENT) {
			if _, err := p.expect(NEWLINE, "end of line"); err != nil {
				return nil, err
			}
		}
		return s, nil
	}
}

func (p *parser) parseFuncDef() (Stmt, error) {
	defTok := p.advance()
	nameTok, err := p.expect(IDENT, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN, `"("`); err != nil {
		return nil, err
	}

	var params []Param
	for !p.check(RPAREN) {
		pn, err := p.expect(IDENT, "parameter name")
		if err != nil {
			return nil, err
		}
		param := Param{Name: pn.Lexeme}
		if p.match(COLON) {
			start := p.cur().Offset
			if _, err := p.parseExpr(); err != nil {
				return nil, err
			}
			param.Annotation = p.src[start:p.lastEnd]
		}
		if p.match(ASSIGN) {
			start := p.cur().Offset
			def, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			param.Default = def
			param.DefaultText = p.src[start:p.lastEnd]
		}
		params = append(params, param)
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.expect(RPAREN, `")"`); err != nil {
		return nil, err
	}

	retHint := ""
	if p.match(ARROW) {
		start := p.cur().Offset
		if _, err := p.parseExpr(); err != nil {
			return nil, err
		}
		retHint = p.src[start:p.lastEnd]
	}

	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}

	doc := ""
	if len(body) > 0 {
		if es, ok := body[0].(*ExprStmt); ok {
			if sl, ok := es.Value.(*StringLit); ok {
				doc = sl.Value
			}
		}
	}

	return &FuncDef{
		position:   at(nameTok),
		Name:       nameTok.Lexeme,
		Params:     params,
		ReturnHint: retHint,
		Doc:        doc,
		Body:       body,
		Span:       Span{Start: defTok.Offset, End: p.lastEnd},
	}, nil
}

func (p *parser) parseIf() (Stmt, error) {
	tok := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{position: at(tok), Cond: cond, Body: body}
	switch {
	case p.check(KwElif):
		nested, err := p.parseIf() // consumes the elif as a fresh if
		if err != nil {
			return nil, err
		}
		stmt.Else = []Stmt{nested}
	case p.match(KwElse):
		els, err := p.parseSuite()
		if err != nil {
			return nil, err
		}
		stmt.Else = els
	}
	return stmt, nil
}

func (p *parser) parseWhile() (Stmt, error) {
	tok := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{position: at(tok), Cond: cond, Body: body}, nil
}

func (p *parser) parseFor() (Stmt, error) {
	tok := p.advance()
	targets, err := p.parseTargetList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KwIn, `"in"`); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	return &ForStmt{position: at(tok), Targets: targets, Iter: iter, Body: body}, nil
}

// parseSuite parses ":" followed by either an inline simple statement or an
// indented block.
func (p *parser) parseSuite() ([]Stmt, error) {
	if _, err := p.expect(COLON, `":"`); err != nil {
		return nil, err
	}
	if !p.check(NEWLINE) {
		s, err := p.parseSimpleStatement()
		if err != nil {
			return nil, err
		}
		if !p.check(EOF) && !p.check(DEDENT) {
			if _, err := p.expect(NEWLINE, "end of line"); err != nil {
				return nil, err
			}
		}
		return []Stmt{s}, nil
	}
	p.advance() // NEWLINE
	if _, err := p.expect(INDENT, "an indented block"); err != nil {
		return nil, err
	}
	var body []Stmt
	for !p.check(DEDENT) && !p.check(EOF) {
		if p.match(NEWLINE) {
			continue
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, s)
	}
	p.match(DEDENT)
	if len(body) == 0 {
		return nil, p.errHere("expected at least one statement in block")
	}
	return body, nil
}

func (p *parser) parseSimpleStatement() (Stmt, error) {
	tok := p.cur()
	switch tok.Type {
	case KwReturn:
		p.advance()
		if p.check(NEWLINE) || p.check(EOF) || p.check(DEDENT) {
			return &ReturnStmt{position: at(tok)}, nil
		}
		v, err := p.parseExprOrTuple()
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{position: at(tok), Value: v}, nil
	case KwPass:
		p.advance()
		return &PassStmt{position: at(tok)}, nil
	case KwBreak:
		p.advance()
		return &BreakStmt{position: at(tok)}, nil
	case KwContinue:
		p.advance()
		return &ContinueStmt{position: at(tok)}, nil
	case KwAssert:
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		var msg Expr
		if p.match(COMMA) {
			if msg, err = p.parseExpr(); err != nil {
				return nil, err
			}
		}
		return &AssertStmt{position: at(tok), Cond: cond, Msg: msg}, nil
	case KwImport:
		p.advance()
		mod, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		alias := mod
		if p.match(KwAs) {
			a, err := p.expect(IDENT, "import alias")
			if err != nil {
				return nil, err
			}
			alias = a.Lexeme
		}
		return &ImportStmt{position: at(tok), Module: mod, Alias: alias}, nil
	case KwFrom:
		p.advance()
		mod, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(KwImport, `"import"`); err != nil {
			return nil, err
		}
		var names []string
		for {
			n, err := p.expect(IDENT, "imported name")
			if err != nil {
				return nil, err
			}
			names = append(names, n.Lexeme)
			if !p.match(COMMA) {
				break
			}
		}
		return &ImportStmt{position: at(tok), Module: mod, Names: names}, nil
	default:
		return p.parseExprOrAssign()
	}
}

func (p *parser) parseDottedName() (string, error) {
	n, err := p.expect(IDENT, "module name")
	if err != nil {
		return "", err
	}
	name := n.Lexeme
	for p.match(DOT) {
		part, err := p.expect(IDENT, "module name")
		if err != nil {
			return "", err
		}
		name += "." + part.Lexeme
	}
	return name, nil
}

// parseExprOrAssign parses an expression statement, a plain assignment
// (including tuple targets), or an augmented assignment.
func (p *parser) parseExprOrAssign() (Stmt, error) {
	tok := p.cur()
	targets, err := p.parseExprList()
	if err != nil {
		return nil, err
	}

	switch p.cur().Type {
	case ASSIGN:
		p.advance()
		value, err := p.parseExprOrTuple()
		if err != nil {
			return nil, err
		}
		for _, t := range targets {
			if !isAssignable(t) {
				return nil, syntaxErrorf(t.Pos().Line, t.Pos().Col, "cannot assign to this expression")
			}
		}
		return &AssignStmt{position: at(tok), Targets: targets, Op: ASSIGN, Value: value}, nil
	case PLUSEQ, MINUSEQ, STAREQ, SLASHEQ, FLOORDIVEQ, PERCENTEQ:
		op := p.advance().Type
		if len(targets) != 1 {
			return nil, syntaxErrorf(tok.Line, tok.Col, "augmented assignment requires a single target")
		}
		if !isAssignable(targets[0]) {
			return nil, syntaxErrorf(tok.Line, tok.Col, "cannot assign to this expression")
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &AssignStmt{position: at(tok), Targets: targets, Op: op, Value: value}, nil
	}

	if len(targets) == 1 {
		return &ExprStmt{position: at(tok), Value: targets[0]}, nil
	}
	return &ExprStmt{position: at(tok), Value: &TupleLit{position: at(tok), Elems: targets}}, nil
}

func isAssignable(e Expr) bool {
	switch e.(type) {
	case *Ident, *IndexExpr, *AttrExpr:
		return true
	}
	return false
}

func (p *parser) parseExprList() ([]Expr, error) {
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	exprs := []Expr{first}
	for p.check(COMMA) {
		// A trailing comma stays unconsumed for the caller to interpret.
		switch p.peek().Type {
		case RPAREN, RBRACKET, RBRACE, COLON, NEWLINE, EOF:
			return exprs, nil
		}
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

// parseTargetList parses loop targets: one or more assignable expressions
// (identifiers, subscripts, attributes) separated by commas. Targets sit at
// postfix level so the loop's "in" is never consumed as a membership
// operator.
func (p *parser) parseTargetList() ([]Expr, error) {
	first, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	targets := []Expr{first}
	for p.match(COMMA) {
		t, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// parseExprOrTuple parses "a" or "a, b, c" (an unparenthesized tuple).
func (p *parser) parseExprOrTuple() (Expr, error) {
	tok := p.cur()
	exprs, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &TupleLit{position: at(tok), Elems: exprs}, nil
}

// Expression precedence, lowest first: or, and, not, comparison/membership,
// additive, multiplicative, unary, power, postfix (call/index/attr).

func (p *parser) parseExpr() (Expr, error) { return p.parseOr() }

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.check(KwOr) {
		op := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{position: at(op), Op: KwOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.check(KwAnd) {
		op := p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{position: at(op), Op: KwAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Expr, error) {
	if p.check(KwNot) {
		op := p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{position: at(op), Op: KwNot, Operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Type {
		case EQ, NEQ, LT, LTE, GT, GTE, KwIn:
			op := p.advance()
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{position: at(op), Op: op.Type, Left: left, Right: right}
		case KwNot:
			// "not in" only; bare "not" cannot appear infix.
			if p.peek().Type != KwIn {
				return left, nil
			}
			op := p.advance()
			p.advance() // in
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = &UnaryExpr{position: at(op), Op: KwNot,
				Operand: &BinaryExpr{position: at(op), Op: KwIn, Left: left, Right: right}}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(PLUS) || p.check(MINUS) {
		op := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{position: at(op), Op: op.Type, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Type {
		case STAR, SLASH, FLOORDIV, PERCENT:
			op := p.advance()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{position: at(op), Op: op.Type, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	if p.check(MINUS) || p.check(PLUS) {
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{position: at(op), Op: op.Type, Operand: operand}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.check(POW) {
		op := p.advance()
		// Right-associative; the exponent may itself be unary ("2 ** -1").
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{position: at(op), Op: POW, Left: base, Right: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePostfix() (Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Type {
		case LPAREN:
			open := p.advance()
			var args []Expr
			for !p.check(RPAREN) {
				a, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if !p.match(COMMA) {
					break
				}
			}
			if _, err := p.expect(RPAREN, `")"`); err != nil {
				return nil, err
			}
			e = &CallExpr{position: at(open), Func: e, Args: args}
		case LBRACKET:
			open := p.advance()
			sub, err := p.parseSubscript(e, open)
			if err != nil {
				return nil, err
			}
			e = sub
		case DOT:
			p.advance()
			name, err := p.expect(IDENT, "attribute name")
			if err != nil {
				return nil, err
			}
			e = &AttrExpr{position: at(name), Obj: e, Name: name.Lexeme}
		default:
			return e, nil
		}
	}
}

// parseSubscript parses an index or slice after "[" has been consumed.
func (p *parser) parseSubscript(obj Expr, open Token) (Expr, error) {
	var low, high, step Expr
	var err error
	isSlice := false

	if !p.check(COLON) {
		if low, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	if p.match(COLON) {
		isSlice = true
		if !p.check(COLON) && !p.check(RBRACKET) {
			if high, err = p.parseExpr(); err != nil {
				return nil, err
			}
		}
		if p.match(COLON) {
			if !p.check(RBRACKET) {
				if step, err = p.parseExpr(); err != nil {
					return nil, err
				}
			}
		}
	}
	if _, err := p.expect(RBRACKET, `"]"`); err != nil {
		return nil, err
	}
	if isSlice {
		return &SliceExpr{position: at(open), Obj: obj, Low: low, High: high, Step: step}, nil
	}
	return &IndexExpr{position: at(open), Obj: obj, Index: low}, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.cur()
	switch tok.Type {
	case IDENT:
		p.advance()
		return &Ident{position: at(tok), Name: tok.Lexeme}, nil
	case INT:
		p.advance()
		return &IntLit{position: at(tok), Value: tok.Literal.(int64)}, nil
	case FLOAT:
		p.advance()
		return &FloatLit{position: at(tok), Value: tok.Literal.(float64)}, nil
	case STRING:
		p.advance()
		return &StringLit{position: at(tok), Value: tok.Literal.(string)}, nil
	case KwTrue:
		p.advance()
		return &BoolLit{position: at(tok), Value: true}, nil
	case KwFalse:
		p.advance()
		return &BoolLit{position: at(tok), Value: false}, nil
	case KwNone:
		p.advance()
		return &NoneLit{position: at(tok)}, nil
	case LPAREN:
		p.advance()
		if p.match(RPAREN) {
			return &TupleLit{position: at(tok)}, nil
		}
		exprs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		trailingComma := false
		// "(x,)" is a 1-tuple, "(x)" is just x.
		if p.check(COMMA) {
			trailingComma = true
			p.advance()
		}
		if _, err := p.expect(RPAREN, `")"`); err != nil {
			return nil, err
		}
		if len(exprs) == 1 && !trailingComma {
			return exprs[0], nil
		}
		return &TupleLit{position: at(tok), Elems: exprs}, nil
	case LBRACKET:
		p.advance()
		var elems []Expr
		for !p.check(RBRACKET) {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if !p.match(COMMA) {
				break
			}
		}
		if _, err := p.expect(RBRACKET, `"]"`); err != nil {
			return nil, err
		}
		return &ListLit{position: at(tok), Elems: elems}, nil
	case LBRACE:
		p.advance()
		var keys, values []Expr
		for !p.check(RBRACE) {
			k, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(COLON, `":"`); err != nil {
				return nil, err
			}
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			keys = append(keys, k)
			values = append(values, v)
			if !p.match(COMMA) {
				break
			}
		}
		if _, err := p.expect(RBRACE, `"}"`); err != nil {
			return nil, err
		}
		return &DictLit{position: at(tok), Keys: keys, Values: values}, nil
	default:
		return nil, syntaxErrorf(tok.Line, tok.Col, "unexpected %s", fmt.Sprintf("%q", describeToken(tok)))
	}
}
