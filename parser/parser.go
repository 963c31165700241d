// Package parser hand-writes a single-token-lookahead, deterministic
// parser over objectfilter/scanner's token stream, turning query text
// into an objectfilter/ast tree (spec.md §4.5). Like the scanner, this
// replaces the teacher's alecthomas/participle grammar rather than
// reusing its combinator style: spec.md calls for a state-machine
// parser, not a grammar-struct-tag DSL.
package parser

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/google/objectfilter/ast"
	"github.com/google/objectfilter/scanner"
)

var binaryOps = map[scanner.Kind]string{
	scanner.EQ: "==",
	scanner.NEQ: "!=",
	scanner.LT: "<",
	scanner.LE: "<=",
	scanner.GT: ">",
	scanner.GE: ">=",
}

var identOps = map[string]string{
	"IS":          "is",
	"ISNOT":       "isnot",
	"CONTAINS":    "contains",
	"NOTCONTAINS": "notcontains",
	"INSET":       "inset",
	"NOTINSET":    "notinset",
	"REGEXP":      "regexp",
}

// Parser walks a token stream built from Scanner.Next, producing one
// ast.Node per Parse call.
type Parser struct {
	src string
	sc  *scanner.Scanner
	tok scanner.Token
	err error
}

func New(src string) *Parser {
	p := &Parser{src: src, sc: scanner.New(src)}
	p.advance()
	return p
}

// Parse consumes the whole query and returns its ast.Node, or the
// first error encountered.
func Parse(src string) (ast.Node, error) {
	p := New(src)
	node := p.parseExpr()
	if p.err != nil {
		return nil, p.err
	}
	if p.tok.Kind != scanner.EOF {
		return nil, p.errorf("unexpected trailing input: %s", p.tok)
	}
	return node, nil
}

func (p *Parser) advance() {
	if p.err != nil {
		return
	}
	tok, err := p.sc.Next()
	if err != nil {
		p.err = err
		return
	}
	p.tok = tok
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return errors.Wrapf(fmtErr(format, args...), "parse error at offset %d in %q", p.tok.Offset, p.src)
}

func fmtErr(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

func (p *Parser) parseExpr() ast.Node {
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Node {
	first := p.parseAnd()
	if p.err != nil {
		return nil
	}
	operands := []ast.Node{first}
	for p.identIs("OR") {
		p.advance()
		next := p.parseAnd()
		if p.err != nil {
			return nil
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return operands[0]
	}
	return &ast.OrExpr{Operands: operands}
}

func (p *Parser) parseAnd() ast.Node {
	first := p.parseUnary()
	if p.err != nil {
		return nil
	}
	operands := []ast.Node{first}
	for p.identIs("AND") {
		p.advance()
		next := p.parseUnary()
		if p.err != nil {
			return nil
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return operands[0]
	}
	return &ast.AndExpr{Operands: operands}
}

func (p *Parser) parseUnary() ast.Node {
	if p.identIs("NOT") {
		p.advance()
		operand := p.parseUnary()
		if p.err != nil {
			return nil
		}
		return &ast.NotExpr{Operand: operand}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Node {
	switch {
	case p.tok.Kind == scanner.LPAREN:
		p.advance()
		inner := p.parseExpr()
		if p.err != nil {
			return nil
		}
		p.expect(scanner.RPAREN, ")")
		return inner

	case p.tok.Kind == scanner.CONTEXT:
		return p.parseContext()

	case p.tok.Kind == scanner.IDENT:
		return p.parseBinary()
	}

	p.err = p.errorf("expected expression, got %s", p.tok)
	return nil
}

// parseContext implements spec.md §4.5's '@' IDENT '(' query ')'
// context expression: the inner body is a full recursively-parsed
// query, re-rooted at each value the path expands to. A bare "@name"
// without a following parenthesised body is a parse error rather than
// a lex error — the '@' itself always lexes fine.
func (p *Parser) parseContext() ast.Node {
	p.advance() // "@"
	path := p.parsePath()
	if p.err != nil {
		return nil
	}
	p.expect(scanner.LPAREN, "(")
	operand := p.parseExpr()
	if p.err != nil {
		return nil
	}
	p.expect(scanner.RPAREN, ")")
	return &ast.ContextExpr{Path: path, Operand: operand}
}

func (p *Parser) parseBinary() ast.Node {
	path := p.parsePath()
	if p.err != nil {
		return nil
	}
	op, ok := p.parseOperator()
	if !ok {
		p.err = p.errorf("expected an operator after path %q, got %s", strings.Join(path, "."), p.tok)
		return nil
	}
	lit := p.parseLiteral()
	if p.err != nil {
		return nil
	}
	return &ast.BinaryExpr{Path: path, Op: op, Literal: lit}
}

func (p *Parser) parsePath() []string {
	if p.tok.Kind != scanner.IDENT {
		p.err = p.errorf("expected an attribute path, got %s", p.tok)
		return nil
	}
	if _, isKeyword := scanner.Keywords[strings.ToLower(p.tok.Text)]; isKeyword {
		p.err = p.errorf("%q is a reserved keyword, not a valid path", p.tok.Text)
		return nil
	}
	path := strings.Split(p.tok.Text, ".")
	p.advance()
	return path
}

func (p *Parser) parseOperator() (string, bool) {
	if sym, ok := binaryOps[p.tok.Kind]; ok {
		p.advance()
		return sym, true
	}
	if p.tok.Kind == scanner.IDENT {
		if name, ok := identOps[scanner.Keywords[strings.ToLower(p.tok.Text)]]; ok {
			p.advance()
			return name, true
		}
	}
	return "", false
}

func (p *Parser) parseLiteral() ast.Literal {
	switch p.tok.Kind {
	case scanner.STRING:
		lit := ast.Literal{Kind: ast.LitString, Str: p.tok.Text}
		p.advance()
		return lit

	case scanner.NUMBER:
		n, err := parseNumberLiteral(p.tok.Text)
		if err != nil {
			p.err = p.errorf("invalid number literal %q", p.tok.Text)
			return ast.Literal{}
		}
		lit := ast.Literal{Kind: ast.LitNumber, Num: n}
		p.advance()
		return lit

	case scanner.IDENT:
		switch scanner.Keywords[strings.ToLower(p.tok.Text)] {
		case "TRUE":
			p.advance()
			return ast.Literal{Kind: ast.LitBool, Bool: true}
		case "FALSE":
			p.advance()
			return ast.Literal{Kind: ast.LitBool, Bool: false}
		}
		p.err = p.errorf("expected a literal, got identifier %q", p.tok.Text)
		return ast.Literal{}

	case scanner.LBRACKET:
		return p.parseListLiteral()
	}

	p.err = p.errorf("expected a literal, got %s", p.tok)
	return ast.Literal{}
}

// parseNumberLiteral decodes a scanner.NUMBER token's text. Hex
// integer literals (0x[0-9A-Fa-f]+, spec.md §4.4) are parsed via
// strconv.ParseInt: strconv.ParseFloat only accepts hex *floats* with
// a trailing p-exponent and rejects a bare hex integer outright.
func parseNumberLiteral(text string) (float64, error) {
	body := text
	neg := false
	if strings.HasPrefix(body, "-") {
		neg = true
		body = body[1:]
	}
	if len(body) > 2 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		iv, err := strconv.ParseInt(body[2:], 16, 64)
		if err != nil {
			return 0, err
		}
		n := float64(iv)
		if neg {
			n = -n
		}
		return n, nil
	}
	return strconv.ParseFloat(text, 64)
}

// parseListLiteral implements spec.md §4.4's leniency rule for list
// literals: a stray/doubled/trailing comma denotes an absent element
// and is silently skipped ("[,,]" parses as an empty list), but a
// genuinely malformed element ("[,']", an unterminated string) is
// still a hard parse error — the leniency is about comma placement,
// not about tolerating bad literals.
func (p *Parser) parseListLiteral() ast.Literal {
	p.advance() // "["
	var items []ast.Literal
	for p.err == nil && p.tok.Kind != scanner.RBRACKET {
		if p.tok.Kind == scanner.COMMA {
			p.advance()
			continue
		}
		if p.tok.Kind == scanner.EOF {
			p.err = p.errorf("unterminated list literal")
			return ast.Literal{}
		}
		if p.tok.Kind == scanner.LBRACKET {
			p.err = p.errorf("nested list literals are not allowed")
			return ast.Literal{}
		}
		item := p.parseLiteral()
		if p.err != nil {
			return ast.Literal{}
		}
		items = append(items, item)
		if p.tok.Kind == scanner.COMMA {
			p.advance()
		}
	}
	p.advance() // "]"
	return ast.Literal{Kind: ast.LitList, List: items}
}

func (p *Parser) identIs(keyword string) bool {
	return p.tok.Kind == scanner.IDENT && scanner.Keywords[strings.ToLower(p.tok.Text)] == keyword
}

func (p *Parser) expect(kind scanner.Kind, text string) {
	if p.err != nil {
		return
	}
	if p.tok.Kind != kind {
		p.err = p.errorf("expected %q, got %s", text, p.tok)
		return
	}
	p.advance()
}
