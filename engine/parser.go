package engine

import "fmt"

// Program is the parsed, executable representation of a script. Hosts store
// and pass it back to Evaluate without inspecting it.
type Program struct {
	stmts []node
}

type node interface{}

type literalNode struct {
	val Value
}

type varNode struct {
	name string
	line int
}

type listNode struct {
	elems []node
}

type scopeEntry struct {
	name string
	expr node
}

type scopeNode struct {
	entries []scopeEntry
}

type unaryNode struct {
	op      tokenType
	operand node
	line    int
}

type binaryNode struct {
	op       tokenType
	lhs, rhs node
	line     int
}

type attrNode struct {
	target node
	name   string
	line   int
}

type callNode struct {
	name  string
	args  []node     // positional arguments; nil when named is set
	named *scopeNode // single scope-literal argument
	line  int
}

type assignNode struct {
	name string
	op   tokenType // tEqual or a compound assignment operator
	expr node
	line int
}

type ifNode struct {
	cond node
	then []node
	els  []node
}

type fnNode struct {
	name   string
	params []string
	body   []node
}

type returnNode struct {
	expr node // nil returns none
}

type importNode struct {
	name string
	line int
}

// Parse builds a Program from a token stream.
func Parse(tokens []Token) (*Program, error) {
	p := &parser{tokens: tokens}
	stmts, err := p.statements(tEOF)
	if err != nil {
		return nil, err
	}
	return &Program{stmts: stmts}, nil
}

type parser struct {
	tokens []Token
	pos    int

	// noScopeCall suppresses the "ident followed by scope literal" call form
	// while parsing an if condition, where the brace opens the block instead.
	noScopeCall bool
}

func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{typ: tEOF, line: p.lastLine()}
	}
	return p.tokens[p.pos]
}

func (p *parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return Token{typ: tEOF, line: p.lastLine()}
	}
	return p.tokens[p.pos+offset]
}

func (p *parser) lastLine() int {
	if len(p.tokens) == 0 {
		return 1
	}
	return p.tokens[len(p.tokens)-1].line
}

func (p *parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) match(typ tokenType) bool {
	if p.peek().typ == typ {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(typ tokenType) (Token, error) {
	tok := p.peek()
	if tok.typ != typ {
		return Token{}, fmt.Errorf("syntax error on line %d: expected %v, found %v", tok.line, typ, tok.typ)
	}
	return p.advance(), nil
}

// statements parses until the terminator token, which is left unconsumed.
func (p *parser) statements(until tokenType) ([]node, error) {
	var stmts []node
	for p.peek().typ != until && p.peek().typ != tEOF {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		for p.match(tSemicolon) {
		}
	}
	if p.peek().typ != until {
		return nil, fmt.Errorf("syntax error on line %d: expected %v", p.peek().line, until)
	}
	return stmts, nil
}

func (p *parser) statement() (node, error) {
	switch tok := p.peek(); tok.typ {
	case tImport:
		p.advance()
		name, err := p.expect(tIdent)
		if err != nil {
			return nil, err
		}
		return importNode{name: name.text, line: tok.line}, nil
	case tFn:
		return p.fnStatement()
	case tIf:
		return p.ifStatement()
	case tReturn:
		p.advance()
		if p.peek().typ == tSemicolon || p.peek().typ == tRightBrace || p.peek().typ == tEOF {
			return returnNode{}, nil
		}
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		return returnNode{expr: expr}, nil
	case tIdent:
		if isAssignOp(p.peekAt(1).typ) {
			name := p.advance()
			op := p.advance()
			expr, err := p.expression()
			if err != nil {
				return nil, err
			}
			return assignNode{name: name.text, op: op.typ, expr: expr, line: name.line}, nil
		}
	}
	return p.expression()
}

func isAssignOp(typ tokenType) bool {
	switch typ {
	case tEqual, tPlusEqual, tMinusEqual, tStarEqual, tSlashEqual, tPercentEqual:
		return true
	}
	return false
}

func (p *parser) fnStatement() (node, error) {
	p.advance() // fn
	name, err := p.expect(tIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tLeftParen); err != nil {
		return nil, err
	}
	var params []string
	for p.peek().typ != tRightParen {
		param, err := p.expect(tIdent)
		if err != nil {
			return nil, err
		}
		params = append(params, param.text)
		if !p.match(tComma) {
			break
		}
	}
	if _, err := p.expect(tRightParen); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return fnNode{name: name.text, params: params, body: body}, nil
}

func (p *parser) ifStatement() (node, error) {
	p.advance() // if
	saved := p.noScopeCall
	p.noScopeCall = true
	cond, err := p.expression()
	p.noScopeCall = saved
	if err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	var els []node
	if p.match(tElse) {
		if p.peek().typ == tIf {
			chained, err := p.ifStatement()
			if err != nil {
				return nil, err
			}
			els = []node{chained}
		} else {
			els, err = p.block()
			if err != nil {
				return nil, err
			}
		}
	}
	return ifNode{cond: cond, then: then, els: els}, nil
}

func (p *parser) block() ([]node, error) {
	if _, err := p.expect(tLeftBrace); err != nil {
		return nil, err
	}
	stmts, err := p.statements(tRightBrace)
	if err != nil {
		return nil, err
	}
	p.advance() // }
	return stmts, nil
}

// Binding powers, loosest first.
func precedence(typ tokenType) int {
	switch typ {
	case tOr:
		return 1
	case tAnd:
		return 2
	case tEqualTo, tNotEqual:
		return 3
	case tGreater, tLess, tGreaterEqual, tLessEqual:
		return 4
	case tPlus, tMinus:
		return 5
	case tStar, tSlash, tPercent:
		return 6
	}
	return 0
}

func (p *parser) expression() (node, error) {
	return p.binary(1)
}

func (p *parser) binary(minPrec int) (node, error) {
	lhs, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		prec := precedence(tok.typ)
		if prec < minPrec {
			return lhs, nil
		}
		p.advance()
		rhs, err := p.binary(prec + 1)
		if err != nil {
			return nil, err
		}
		lhs = binaryNode{op: tok.typ, lhs: lhs, rhs: rhs, line: tok.line}
	}
}

func (p *parser) unary() (node, error) {
	tok := p.peek()
	if tok.typ == tMinus || tok.typ == tNot {
		p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: tok.typ, operand: operand, line: tok.line}, nil
	}
	return p.postfix()
}

func (p *parser) postfix() (node, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.peek().typ == tDot {
		dot := p.advance()
		name, err := p.expect(tIdent)
		if err != nil {
			return nil, err
		}
		expr = attrNode{target: expr, name: name.text, line: dot.line}
	}
	return expr, nil
}

func (p *parser) primary() (node, error) {
	tok := p.peek()
	switch tok.typ {
	case tNum:
		p.advance()
		return literalNode{val: NewInt(tok.num)}, nil
	case tStr:
		p.advance()
		return literalNode{val: NewStr(tok.text)}, nil
	case tBool:
		p.advance()
		return literalNode{val: NewBool(tok.num != 0)}, nil
	case tNone:
		p.advance()
		return literalNode{val: None()}, nil
	case tLeftBracket:
		return p.list()
	case tLeftBrace:
		return p.scopeLiteral()
	case tLeftParen:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tRightParen); err != nil {
			return nil, err
		}
		return expr, nil
	case tIdent:
		p.advance()
		switch {
		case p.peek().typ == tLeftParen:
			return p.call(tok)
		case p.peek().typ == tLeftBrace && !p.noScopeCall:
			lit, err := p.scopeLiteral()
			if err != nil {
				return nil, err
			}
			scope := lit.(scopeNode)
			return callNode{name: tok.text, named: &scope, line: tok.line}, nil
		}
		return varNode{name: tok.text, line: tok.line}, nil
	}
	return nil, fmt.Errorf("syntax error on line %d: unexpected %v", tok.line, tok.typ)
}

func (p *parser) call(name Token) (node, error) {
	p.advance() // (
	var args []node
	for p.peek().typ != tRightParen {
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(tComma) {
			break
		}
	}
	if _, err := p.expect(tRightParen); err != nil {
		return nil, err
	}
	return callNode{name: name.text, args: args, line: name.line}, nil
}

func (p *parser) list() (node, error) {
	p.advance() // [
	var elems []node
	for p.peek().typ != tRightBracket {
		elem, err := p.expression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if !p.match(tComma) {
			break
		}
	}
	if _, err := p.expect(tRightBracket); err != nil {
		return nil, err
	}
	return listNode{elems: elems}, nil
}

func (p *parser) scopeLiteral() (node, error) {
	p.advance() // {
	var entries []scopeEntry
	for p.peek().typ != tRightBrace {
		name, err := p.expect(tIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tEqual); err != nil {
			return nil, err
		}
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		entries = append(entries, scopeEntry{name: name.text, expr: expr})
		for p.match(tSemicolon) {
		}
	}
	p.advance() // }
	return scopeNode{entries: entries}, nil
}
