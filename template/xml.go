package template

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sqlcraft/sqlcraft/eval"
	"github.com/sqlcraft/sqlcraft/node"
	"github.com/sqlcraft/sqlcraft/sql"
)

// xmlParser streams a mapping file with encoding/xml.Decoder, mirroring
// the teacher's XMLParser/XMLElementParser chain but emitting node.Node
// trees against this module's eval/driver contracts instead of the
// teacher's.
type xmlParser struct {
	mappers  *Mappers
	forDepth int
}

// ParseXML parses a single mapping file's XML text into a Mapper and
// registers it on mappers.
func ParseXML(mappers *Mappers, r io.Reader) (*Mapper, error) {
	p := &xmlParser{mappers: mappers}
	decoder := xml.NewDecoder(r)
	for {
		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local == "mapper" {
			return p.parseMapper(decoder, start)
		}
	}
	return nil, errors.New("template: no <mapper> root element found")
}

func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (p *xmlParser) parseMapper(decoder *xml.Decoder, start xml.StartElement) (*Mapper, error) {
	namespace := attr(start, "namespace")
	if namespace == "" {
		return nil, &missingAttributeError{element: "mapper", attribute: "namespace"}
	}
	m := &Mapper{namespace: namespace}
	for _, a := range start.Attr {
		m.setAttribute(a.Name.Local, a.Value)
	}

	for {
		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "select", "insert", "update", "delete":
				stmt, err := p.parseStatement(m, sql.Action(t.Name.Local), decoder, t)
				if err != nil {
					return nil, err
				}
				if err := m.addStatement(stmt); err != nil {
					return nil, err
				}
			case "sql":
				id, n, err := p.parseSQLFragment(m, decoder, t)
				if err != nil {
					return nil, err
				}
				if err := m.addFragment(id, n); err != nil {
					return nil, err
				}
			default:
				return nil, &unknownElementError{element: t.Name.Local}
			}
		case xml.EndElement:
			if t.Name.Local == "mapper" {
				return m, nil
			}
		}
	}
	return nil, &unclosedElementError{element: "mapper"}
}

func (p *xmlParser) parseStatement(m *Mapper, action sql.Action, decoder *xml.Decoder, start xml.StartElement) (*mappingStatement, error) {
	id := attr(start, "id")
	if id == "" {
		return nil, &missingAttributeError{element: string(action), attribute: "id"}
	}
	stmt := &mappingStatement{action: action, id: id, attrs: map[string]string{}}
	for _, a := range start.Attr {
		stmt.attrs[a.Name.Local] = a.Value
	}

	body, err := p.parseBody(m, decoder, string(action))
	if err != nil {
		return nil, err
	}
	stmt.body = body
	return stmt, nil
}

func (p *xmlParser) parseSQLFragment(m *Mapper, decoder *xml.Decoder, start xml.StartElement) (string, node.Node, error) {
	id := attr(start, "id")
	if id == "" {
		return "", nil, &missingAttributeError{element: "sql", attribute: "id"}
	}
	body, err := p.parseBody(m, decoder, "sql")
	if err != nil {
		return "", nil, err
	}
	return id, body, nil
}

// parseBody consumes child StartElement/CharData/EndElement tokens
// until it sees an EndElement matching endTag, assembling a NodeGroup.
func (p *xmlParser) parseBody(m *Mapper, decoder *xml.Decoder, endTag string) (node.Node, error) {
	var group node.NodeGroup
	for {
		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n, err := p.parseTag(m, decoder, t)
			if err != nil {
				return nil, err
			}
			group = append(group, n)
		case xml.CharData:
			if text := strings.TrimSpace(string(t)); text != "" {
				frag, err := node.ParseFragment(text)
				if err != nil {
					return nil, err
				}
				group = append(group, frag)
			}
		case xml.EndElement:
			if t.Name.Local == endTag {
				return group, nil
			}
		}
	}
	return nil, &unclosedElementError{element: endTag}
}

func (p *xmlParser) parseTag(m *Mapper, decoder *xml.Decoder, start xml.StartElement) (node.Node, error) {
	switch start.Name.Local {
	case "if":
		return p.parseIf(m, decoder, start)
	case "where":
		body, err := p.parseBody(m, decoder, "where")
		if err != nil {
			return nil, err
		}
		return &node.WhereNode{Body: body}, nil
	case "set":
		body, err := p.parseBody(m, decoder, "set")
		if err != nil {
			return nil, err
		}
		return &node.SetNode{Body: body}, nil
	case "trim":
		return p.parseTrim(m, decoder, start)
	case "foreach":
		return p.parseForeach(m, decoder, start)
	case "choose":
		return p.parseChoose(m, decoder, start)
	case "bind":
		return p.parseBind(decoder, start)
	case "include":
		return p.parseInclude(m, decoder, start)
	case "continue":
		if p.forDepth == 0 {
			return nil, &danglingContinueError{}
		}
		return p.consumeEmpty(decoder, "continue")
	}
	return nil, &unknownElementError{element: start.Name.Local}
}

func (p *xmlParser) consumeEmpty(decoder *xml.Decoder, endTag string) (node.Node, error) {
	for {
		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if end, ok := tok.(xml.EndElement); ok && end.Name.Local == endTag {
			return node.ContinueNode{}, nil
		}
	}
	return nil, &unclosedElementError{element: endTag}
}

func (p *xmlParser) parseIf(m *Mapper, decoder *xml.Decoder, start xml.StartElement) (node.Node, error) {
	test := attr(start, "test")
	if test == "" {
		return nil, &missingAttributeError{element: "if", attribute: "test"}
	}
	expr, err := eval.Parse(test)
	if err != nil {
		return nil, fmt.Errorf("template: if test %q: %w", test, err)
	}
	body, err := p.parseBody(m, decoder, "if")
	if err != nil {
		return nil, err
	}
	return &node.IfNode{Test: expr, Body: body}, nil
}

func (p *xmlParser) parseTrim(m *Mapper, decoder *xml.Decoder, start xml.StartElement) (node.Node, error) {
	t := &node.TrimNode{
		Prefix: attr(start, "prefix"),
		Suffix: attr(start, "suffix"),
	}
	if v := attr(start, "prefixOverrides"); v != "" {
		t.PrefixOverrides = splitPipeList(v)
	}
	if v := attr(start, "suffixOverrides"); v != "" {
		t.SuffixOverrides = splitPipeList(v)
	}
	body, err := p.parseBody(m, decoder, "trim")
	if err != nil {
		return nil, err
	}
	t.Body = body
	return t, nil
}

func splitPipeList(s string) []string {
	parts := strings.Split(s, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func (p *xmlParser) parseForeach(m *Mapper, decoder *xml.Decoder, start xml.StartElement) (node.Node, error) {
	collSrc := attr(start, "collection")
	if collSrc == "" {
		collSrc = "."
	}
	collExpr, err := eval.Parse(collSrc)
	if err != nil {
		return nil, fmt.Errorf("template: foreach collection %q: %w", collSrc, err)
	}
	item := attr(start, "item")
	if item == "" {
		return nil, &missingAttributeError{element: "foreach", attribute: "item"}
	}

	p.forDepth++
	body, err := p.parseBody(m, decoder, "foreach")
	p.forDepth--
	if err != nil {
		return nil, err
	}

	return &node.ForeachNode{
		Collection: collExpr,
		IndexVar:   attr(start, "index"),
		ItemVar:    item,
		Open:       attr(start, "open"),
		Close:      attr(start, "close"),
		Separator:  attr(start, "separator"),
		Body:       body,
	}, nil
}

func (p *xmlParser) parseChoose(m *Mapper, decoder *xml.Decoder, _ xml.StartElement) (node.Node, error) {
	c := &node.ChooseNode{}
	for {
		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "when":
				test := attr(t, "test")
				if test == "" {
					return nil, &missingAttributeError{element: "when", attribute: "test"}
				}
				expr, err := eval.Parse(test)
				if err != nil {
					return nil, fmt.Errorf("template: when test %q: %w", test, err)
				}
				body, err := p.parseBody(m, decoder, "when")
				if err != nil {
					return nil, err
				}
				c.Whens = append(c.Whens, node.WhenClause{Test: expr, Body: body})
			case "otherwise":
				if c.Otherwise != nil {
					return nil, errors.New("template: choose may have at most one otherwise")
				}
				body, err := p.parseBody(m, decoder, "otherwise")
				if err != nil {
					return nil, err
				}
				c.Otherwise = body
			default:
				return nil, &unknownElementError{element: t.Name.Local}
			}
		case xml.EndElement:
			if t.Name.Local == "choose" {
				return c, nil
			}
		}
	}
	return nil, &unclosedElementError{element: "choose"}
}

func (p *xmlParser) parseBind(decoder *xml.Decoder, start xml.StartElement) (node.Node, error) {
	name := attr(start, "name")
	valueSrc := attr(start, "value")
	if name == "" {
		return nil, &missingAttributeError{element: "bind", attribute: "name"}
	}
	if valueSrc == "" {
		return nil, &missingAttributeError{element: "bind", attribute: "value"}
	}
	expr, err := eval.Parse(valueSrc)
	if err != nil {
		return nil, fmt.Errorf("template: bind value %q: %w", valueSrc, err)
	}
	for {
		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if end, ok := tok.(xml.EndElement); ok && end.Name.Local == "bind" {
			return &node.BindNode{Name: name, Expr: expr}, nil
		}
	}
	return nil, &unclosedElementError{element: "bind"}
}

func (p *xmlParser) parseInclude(m *Mapper, decoder *xml.Decoder, start xml.StartElement) (node.Node, error) {
	refid := attr(start, "refid")
	if refid == "" {
		return nil, &missingAttributeError{element: "include", attribute: "refid"}
	}
	// The referenced fragment may not have been parsed yet (forward
	// reference within the same file, or another file entirely); it is
	// resolved lazily by the Mappers registry after every mapping file
	// in a configuration has loaded (see Mappers.Link).
	inc := &node.IncludeNode{Refid: refid}
	for {
		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if end, ok := tok.(xml.EndElement); ok && end.Name.Local == "include" {
			return inc, nil
		}
	}
	return nil, &unclosedElementError{element: "include"}
}
