package parser

import (
	"github.com/rje4242/graft/errs"
	"github.com/rje4242/graft/lexer"
)

// Parser consumes a fixed token slice and produces AST nodes. Unlike
// a parser that collects many errors for batch reporting, Parser
// aborts on the first problem: Graft programs are small, and the
// spec treats every parse failure as fatal.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New creates a Parser over an already-lexed token slice.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse lexes and parses src in one step, returning the top-level
// statement sequence.
func Parse(src string) ([]Node, error) {
	tokens, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}
	return New(tokens).ParseProgram()
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *Parser) skipSeparators() {
	for p.cur().Type == lexer.StatementSeparator {
		p.advance()
	}
}

func (p *Parser) errAt(tok lexer.Token, format string, args ...interface{}) error {
	return errs.At(errs.Parse, tok.Line, tok.Column, format, args...)
}

// ParseProgram parses the whole token stream as a top-level statement
// list, ignoring leading/trailing separators between statements.
func (p *Parser) ParseProgram() ([]Node, error) {
	return p.parseStatements(lexer.EOF)
}

// parseStatements parses statements until it sees a token of type end
// (lexer.EOF for the top level, lexer.EndFunctionDef for a function
// body).
func (p *Parser) parseStatements(end lexer.TokenType) ([]Node, error) {
	var stmts []Node
	p.skipSeparators()
	for p.cur().Type != end {
		if p.cur().Type == lexer.EOF {
			return nil, p.errAt(p.cur(), "Hit end of file - expected '%s'", closerFor(end))
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		p.skipSeparators()
	}
	return stmts, nil
}

func closerFor(end lexer.TokenType) string {
	switch end {
	case lexer.EndFunctionDef:
		return "}"
	case lexer.EndParamList:
		return ")"
	case lexer.EndArray:
		return "]"
	default:
		return string(end)
	}
}

// parseStatement parses one statement: a label, an assignment, a
// modify-assignment, or a bare expression.
func (p *Parser) parseStatement() (Node, error) {
	if p.cur().Type == lexer.Label {
		p.advance()
		return &LabelNode{}, nil
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	switch p.cur().Type {
	case lexer.Assignment:
		tok := p.advance()
		sym, ok := expr.(*SymbolNode)
		if !ok {
			return nil, p.errAt(tok, "You can't assign to anything except a symbol.")
		}
		rhs, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &AssignmentNode{Symbol: sym, Value: rhs}, nil
	case lexer.Modify:
		tok := p.advance()
		sym, ok := expr.(*SymbolNode)
		if !ok {
			return nil, p.errAt(tok, "You can't modify (%s) anything except a symbol.", tok.Literal)
		}
		rhs, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ModifyNode{Op: tok.Literal, Symbol: sym, Value: rhs}, nil
	default:
		return expr, nil
	}
}

// parseExpression parses a postfix-call chain, then folds any
// following binary operators left to right. Both the postfix-call
// chain and the operator chain only continue while the next token
// immediately follows (no intervening StatementSeparator); a space
// ends the expression, matching the language's use of whitespace as a
// statement boundary.
func (p *Parser) parseExpression() (Node, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == lexer.Operator {
		op := p.advance().Literal
		right, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		left = &OperationNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parsePostfix parses a primary and then greedily chains any
// directly-following call argument lists onto it.
func (p *Parser) parsePostfix() (Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == lexer.StartParamList {
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		expr = &FunctionCallNode{Callee: expr, Args: args}
	}
	return expr, nil
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.cur()
	switch tok.Type {
	case lexer.Number:
		p.advance()
		return &NumberNode{Text: tok.Literal}, nil
	case lexer.String:
		p.advance()
		return &StringNode{Text: tok.Literal}, nil
	case lexer.Symbol:
		p.advance()
		return &SymbolNode{Name: tok.Literal}, nil
	case lexer.Operator:
		if tok.Literal == "-" {
			p.advance()
			inner, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			return &NegativeNode{Inner: inner}, nil
		}
	case lexer.StartParamList:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.cur().Type != lexer.EndParamList {
			return nil, p.errAt(p.cur(), "Hit end of file - expected ')'")
		}
		p.advance()
		return inner, nil
	case lexer.StartFunctionDef:
		return p.parseFunctionDef()
	case lexer.StartArray:
		return p.parseArray()
	}
	return nil, p.errAt(tok, "Unexpected token: %s", tok.Literal)
}

func (p *Parser) parseFunctionDef() (Node, error) {
	p.advance() // '{'
	p.skipSeparators()

	var params []*SymbolNode
	if p.cur().Type == lexer.ParamListPrelude {
		colon := p.advance()
		if p.cur().Type != lexer.StartParamList {
			return nil, p.errAt(colon, "':' must be followed by '(' in a function.")
		}
		p.advance() // '('
		var err error
		params, err = p.parseParamList()
		if err != nil {
			return nil, err
		}
		p.skipSeparators()
	}

	body, err := p.parseStatements(lexer.EndFunctionDef)
	if err != nil {
		return nil, err
	}
	p.advance() // '}'
	return &FunctionDefNode{Params: params, Body: body}, nil
}

func (p *Parser) parseParamList() ([]*SymbolNode, error) {
	var params []*SymbolNode
	p.skipSeparators()
	for p.cur().Type != lexer.EndParamList {
		if p.cur().Type == lexer.EOF {
			return nil, p.errAt(p.cur(), "Hit end of file - expected ')'")
		}
		item, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		sym, ok := item.(*SymbolNode)
		if !ok {
			return nil, p.errAt(p.cur(), "Only symbols are allowed in function parameter lists. I found: %s.", item)
		}
		params = append(params, sym)
		p.skipSeparators()
		if p.cur().Type == lexer.ListSeparator {
			p.advance()
			p.skipSeparators()
			continue
		}
		break
	}
	if p.cur().Type != lexer.EndParamList {
		return nil, p.errAt(p.cur(), "Unexpected token: %s", p.cur().Literal)
	}
	p.advance() // ')'
	return params, nil
}

func (p *Parser) parseArgs() ([]Node, error) {
	p.advance() // '('
	var args []Node
	p.skipSeparators()
	for p.cur().Type != lexer.EndParamList {
		if p.cur().Type == lexer.EOF {
			return nil, p.errAt(p.cur(), "Hit end of file - expected ')'")
		}
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipSeparators()
		if p.cur().Type == lexer.ListSeparator {
			p.advance()
			p.skipSeparators()
			continue
		}
		break
	}
	if p.cur().Type != lexer.EndParamList {
		return nil, p.errAt(p.cur(), "Unexpected token: %s", p.cur().Literal)
	}
	p.advance() // ')'
	return args, nil
}

func (p *Parser) parseArray() (Node, error) {
	p.advance() // '['
	var items []Node
	p.skipSeparators()
	for p.cur().Type != lexer.EndArray {
		if p.cur().Type == lexer.EOF {
			return nil, p.errAt(p.cur(), "Hit end of file - expected ']'")
		}
		item, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		p.skipSeparators()
		if p.cur().Type == lexer.ListSeparator {
			p.advance()
			p.skipSeparators()
			continue
		}
		break
	}
	if p.cur().Type != lexer.EndArray {
		return nil, p.errAt(p.cur(), "Unexpected token: %s", p.cur().Literal)
	}
	p.advance() // ']'
	return &ArrayNode{Items: items}, nil
}
