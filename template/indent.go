package template

import (
	"fmt"
	"strings"

	"github.com/sqlcraft/sqlcraft/eval"
	"github.com/sqlcraft/sqlcraft/node"
)

// ParseIndent parses the indentation-structured mini-language front-end:
// significant-whitespace nesting instead of XML tags, with headers
//
//	if <expr>:
//	choose:
//	when <expr>:
//	otherwise:
//	where:
//	set:
//	trim '<token>':
//	for <item> in <coll>:
//	for <idx>,<item> in <coll>:
//	bind <name>=<expr>:
//	continue:
//
// A backtick-delimited line is a literal SQL fragment (itself run
// through node.ParseFragment for #{}/${} interpolation); any other
// line with no trailing ':' is treated the same way.
func ParseIndent(body string) (node.Node, error) {
	lines := splitIndentLines(body)
	p := &indentParser{lines: lines}
	n, next, err := p.parseBlock(0, -1)
	if err != nil {
		return nil, err
	}
	if next != len(lines) {
		return nil, fmt.Errorf("template: unexpected indentation at line %d", next+1)
	}
	return n, nil
}

type indentLine struct {
	indent int
	text   string
}

func splitIndentLines(body string) []indentLine {
	var out []indentLine
	for _, raw := range strings.Split(body, "\n") {
		trimmed := strings.TrimRight(raw, " \t\r")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		indent := 0
		for indent < len(trimmed) && trimmed[indent] == ' ' {
			indent++
		}
		out = append(out, indentLine{indent: indent, text: strings.TrimSpace(trimmed)})
	}
	return out
}

type indentParser struct {
	lines    []indentLine
	forDepth int
}

// parseBlock consumes every line whose indent is strictly greater than
// parentIndent, starting at idx, returning the assembled node and the
// index of the first line NOT consumed (either dedented back to
// parentIndent or EOF).
func (p *indentParser) parseBlock(idx int, parentIndent int) (node.Node, int, error) {
	var group node.NodeGroup
	if idx >= len(p.lines) {
		return group, idx, nil
	}
	blockIndent := p.lines[idx].indent
	if blockIndent <= parentIndent {
		return group, idx, nil
	}

	for idx < len(p.lines) {
		line := p.lines[idx]
		if line.indent < blockIndent {
			break
		}
		if line.indent > blockIndent {
			return nil, idx, fmt.Errorf("template: unexpected indentation at line content %q", line.text)
		}

		n, next, err := p.parseLine(idx)
		if err != nil {
			return nil, idx, err
		}
		group = append(group, n)
		idx = next
	}
	return group, idx, nil
}

func (p *indentParser) childBlock(idx int, headerIndent int) (node.Node, int, error) {
	return p.parseBlock(idx, headerIndent)
}

func (p *indentParser) parseLine(idx int) (node.Node, int, error) {
	line := p.lines[idx]
	text := line.text

	if strings.HasPrefix(text, "`") {
		literal, err := parseBacktick(text)
		if err != nil {
			return nil, idx, err
		}
		frag, err := node.ParseFragment(literal)
		if err != nil {
			return nil, idx, err
		}
		return frag, idx + 1, nil
	}

	if !strings.HasSuffix(text, ":") {
		frag, err := node.ParseFragment(text)
		if err != nil {
			return nil, idx, err
		}
		return frag, idx + 1, nil
	}

	header := strings.TrimSuffix(text, ":")

	switch {
	case header == "where":
		body, next, err := p.childBlock(idx+1, line.indent)
		if err != nil {
			return nil, idx, err
		}
		return &node.WhereNode{Body: body}, next, nil

	case header == "set":
		body, next, err := p.childBlock(idx+1, line.indent)
		if err != nil {
			return nil, idx, err
		}
		return &node.SetNode{Body: body}, next, nil

	case header == "choose":
		return p.parseChoose(idx, line.indent)

	case header == "otherwise":
		return nil, idx, fmt.Errorf("template: otherwise outside a choose block at %q", text)

	case header == "continue":
		if p.forDepth == 0 {
			return nil, idx, &danglingContinueError{}
		}
		return node.ContinueNode{}, idx + 1, nil

	case strings.HasPrefix(header, "if "):
		exprSrc := strings.TrimSpace(strings.TrimPrefix(header, "if "))
		expr, err := eval.Parse(exprSrc)
		if err != nil {
			return nil, idx, fmt.Errorf("template: if %q: %w", exprSrc, err)
		}
		body, next, err := p.childBlock(idx+1, line.indent)
		if err != nil {
			return nil, idx, err
		}
		return &node.IfNode{Test: expr, Body: body}, next, nil

	case strings.HasPrefix(header, "trim "):
		tok, err := parseQuoted(strings.TrimSpace(strings.TrimPrefix(header, "trim ")))
		if err != nil {
			return nil, idx, fmt.Errorf("template: trim token: %w", err)
		}
		body, next, err := p.childBlock(idx+1, line.indent)
		if err != nil {
			return nil, idx, err
		}
		return &node.TrimNode{
			Body:            body,
			PrefixOverrides: []string{tok},
			SuffixOverrides: []string{tok},
		}, next, nil

	case strings.HasPrefix(header, "for "):
		return p.parseFor(idx, line.indent, strings.TrimPrefix(header, "for "))

	case strings.HasPrefix(header, "bind "):
		name, exprSrc, err := splitBind(strings.TrimPrefix(header, "bind "))
		if err != nil {
			return nil, idx, err
		}
		expr, err := eval.Parse(exprSrc)
		if err != nil {
			return nil, idx, fmt.Errorf("template: bind %s=%q: %w", name, exprSrc, err)
		}
		return &node.BindNode{Name: name, Expr: expr}, idx + 1, nil
	}

	return nil, idx, &unknownElementError{element: text}
}

func (p *indentParser) parseChoose(idx int, chooseIndent int) (node.Node, int, error) {
	c := &node.ChooseNode{}
	idx++
	childIndent := -1
	if idx < len(p.lines) {
		childIndent = p.lines[idx].indent
	}
	for idx < len(p.lines) && p.lines[idx].indent == childIndent && childIndent > chooseIndent {
		line := p.lines[idx]
		header := strings.TrimSuffix(line.text, ":")
		switch {
		case strings.HasPrefix(header, "when "):
			exprSrc := strings.TrimSpace(strings.TrimPrefix(header, "when "))
			expr, err := eval.Parse(exprSrc)
			if err != nil {
				return nil, idx, fmt.Errorf("template: when %q: %w", exprSrc, err)
			}
			body, next, err := p.childBlock(idx+1, childIndent)
			if err != nil {
				return nil, idx, err
			}
			c.Whens = append(c.Whens, node.WhenClause{Test: expr, Body: body})
			idx = next
		case header == "otherwise":
			if c.Otherwise != nil {
				return nil, idx, fmt.Errorf("template: choose may have at most one otherwise")
			}
			body, next, err := p.childBlock(idx+1, childIndent)
			if err != nil {
				return nil, idx, err
			}
			c.Otherwise = body
			idx = next
		default:
			return nil, idx, fmt.Errorf("template: expected when/otherwise inside choose, got %q", line.text)
		}
	}
	return c, idx, nil
}

func (p *indentParser) parseFor(idx int, headerIndent int, rest string) (node.Node, int, error) {
	parts := strings.SplitN(rest, " in ", 2)
	if len(parts) != 2 {
		return nil, idx, fmt.Errorf("template: malformed for header %q, want 'for <item> in <coll>:'", rest)
	}
	vars := strings.TrimSpace(parts[0])
	collSrc := strings.TrimSpace(parts[1])
	collExpr, err := eval.Parse(collSrc)
	if err != nil {
		return nil, idx, fmt.Errorf("template: for collection %q: %w", collSrc, err)
	}

	var indexVar, itemVar string
	if strings.Contains(vars, ",") {
		vp := strings.SplitN(vars, ",", 2)
		indexVar = strings.TrimSpace(vp[0])
		itemVar = strings.TrimSpace(vp[1])
	} else {
		itemVar = vars
	}

	p.forDepth++
	body, next, err := p.childBlock(idx+1, headerIndent)
	p.forDepth--
	if err != nil {
		return nil, idx, err
	}

	return &node.ForeachNode{
		Collection: collExpr,
		IndexVar:   indexVar,
		ItemVar:    itemVar,
		Open:       "",
		Close:      "",
		Separator:  " ",
		Body:       body,
	}, next, nil
}

func splitBind(rest string) (name, exprSrc string, err error) {
	i := strings.Index(rest, "=")
	if i < 0 {
		return "", "", fmt.Errorf("template: malformed bind header %q, want 'bind <name>=<expr>:'", rest)
	}
	return strings.TrimSpace(rest[:i]), strings.TrimSpace(rest[i+1:]), nil
}

func parseQuoted(s string) (string, error) {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1], nil
	}
	return "", fmt.Errorf("expected a single-quoted token, got %q", s)
}

// parseBacktick strips the delimiting backticks from a literal SQL
// line, so a fragment that would otherwise be mistaken for a block
// header (it ends in ':') or an expression is always recognised as
// literal text.
func parseBacktick(s string) (string, error) {
	if len(s) >= 2 && strings.HasPrefix(s, "`") && strings.HasSuffix(s, "`") {
		return s[1 : len(s)-1], nil
	}
	return "", fmt.Errorf("template: unterminated backtick literal %q", s)
}
