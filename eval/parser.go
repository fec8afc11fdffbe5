package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sqlcraft/sqlcraft/value"
)

// allowedMethods is the closed whitelist of method names the expression
// language recognises on any receiver.
var allowedMethods = map[string]bool{
	"len":       true,
	"is_empty":  true,
	"sql":       true,
	"to_string": true,
}

// Parser is a standard precedence-climbing recursive-descent parser:
// || < && < equality < ordering < additive < multiplicative < unary <
// postfix (. field, [ index, ( call).
type Parser struct {
	lex  *Lexer
	tok  Token
	errd error
}

// Parse tokenises and parses src into an Expression Tree. The parser is
// total on well-formed input and returns a *ParseError carrying a column
// offset on any other input.
func Parse(src string) (Expr, error) {
	p := &Parser{lex: NewLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != EOF {
		return nil, &ParseError{Message: fmt.Sprintf("unexpected token %q", p.tok.Lit), Column: p.tok.Column}
	}
	return Translate(expr)
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *Parser) expect(k TokenKind) error {
	if p.tok.Kind != k {
		return &ParseError{Message: fmt.Sprintf("expected %q, got %q", k, p.tok.Lit), Column: p.tok.Column}
	}
	return p.advance()
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == LOR {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: BinLor, X: left, Y: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == LAND {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: BinLand, X: left, Y: right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (Expr, error) {
	left, err := p.parseOrdering()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == EQL || p.tok.Kind == NEQ {
		op := BinEql
		if p.tok.Kind == NEQ {
			op = BinNeq
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseOrdering()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, X: left, Y: right}
	}
	return left, nil
}

func (p *Parser) parseOrdering() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.tok.Kind {
		case LSS:
			op = BinLss
		case LEQ:
			op = BinLeq
		case GTR:
			op = BinGtr
		case GEQ:
			op = BinGeq
		default:
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, X: left, Y: right}
	}
}

func (p *Parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.tok.Kind {
		case ADD:
			op = BinAdd
		case SUB:
			op = BinSub
		case OR:
			op = BinBitOr
		case XOR:
			op = BinBitXor
		default:
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, X: left, Y: right}
	}
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.tok.Kind {
		case MUL:
			op = BinMul
		case QUO:
			op = BinQuo
		case REM:
			op = BinRem
		case AND:
			op = BinBitAnd
		default:
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, X: left, Y: right}
	}
}

func (p *Parser) parseUnary() (Expr, error) {
	switch p.tok.Kind {
	case SUB:
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: UnaryNeg, X: x}, nil
	case NOT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: UnaryNot, X: x}, nil
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() (Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.tok.Kind {
		case DOT:
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.Kind != IDENT {
				return nil, &ParseError{Message: "expected identifier after '.'", Column: p.tok.Column}
			}
			name := p.tok.Lit
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.Kind == LPAREN {
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				if !allowedMethods[name] {
					return nil, &ParseError{Message: fmt.Sprintf("unrecognised method %q", name), Column: p.tok.Column}
				}
				x = &MethodCall{Receiver: x, Name: name, Args: args}
				continue
			}
			if path, ok := x.(*Path); ok {
				x = &Path{Segments: append(append([]string{}, path.Segments...), name)}
			} else {
				x = &Index{X: x, Index: &Literal{Val: value.String(name)}}
			}
		case LBRACKET:
			if err := p.advance(); err != nil {
				return nil, err
			}
			idx, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(RBRACKET); err != nil {
				return nil, err
			}
			x = &Index{X: x, Index: idx}
		default:
			return x, nil
		}
	}
}

func (p *Parser) parseArgs() ([]Expr, error) {
	if err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	var args []Expr
	if p.tok.Kind == RPAREN {
		return args, p.advance()
	}
	for {
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.tok.Kind == COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return args, p.expect(RPAREN)
}

func (p *Parser) parsePrimary() (Expr, error) {
	switch p.tok.Kind {
	case NULL:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{Val: value.Null}, nil
	case INT:
		lit := p.tok.Lit
		col := p.tok.Column
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return nil, &ParseError{Message: fmt.Sprintf("invalid integer literal %q", lit), Column: col}
		}
		return &Literal{Val: value.Int64(n)}, nil
	case FLOAT:
		lit := p.tok.Lit
		col := p.tok.Column
		if err := p.advance(); err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, &ParseError{Message: fmt.Sprintf("invalid float literal %q", lit), Column: col}
		}
		return &Literal{Val: value.Float64(f)}, nil
	case STRING:
		lit := p.tok.Lit
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{Val: value.String(lit)}, nil
	case IDENT:
		if p.tok.Lit == "true" || p.tok.Lit == "false" {
			b := p.tok.Lit == "true"
			if err := p.advance(); err != nil {
				return nil, err
			}
			return &Literal{Val: value.Bool(b)}, nil
		}
		name := p.tok.Lit
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Path{Segments: []string{name}}, nil
	case LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return &Parenthesised{X: inner}, nil
	default:
		return nil, &ParseError{Message: fmt.Sprintf("unexpected token %q", strings.TrimSpace(p.tok.Kind.String())), Column: p.tok.Column}
	}
}
