// Package template holds the compiled form of a mapping file: Statements
// (select/insert/update/delete bodies) and named sql fragments, grouped
// under namespaced Mappers, with two front-ends (XML, indent-based) that
// parse source text down to a node.Node tree.
package template

import (
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/sqlcraft/sqlcraft/driver"
	"github.com/sqlcraft/sqlcraft/eval"
	"github.com/sqlcraft/sqlcraft/node"
	"github.com/sqlcraft/sqlcraft/sql"
	"github.com/sqlcraft/sqlcraft/value"
)

// Statement is a single compiled mapping entry: a SQL Action paired with
// the node tree that generates its text and bound arguments.
type Statement interface {
	ID() string
	Name() string
	Action() sql.Action
	Attribute(key string) string
	Build(t driver.Translator, args value.Value) (query string, argv []value.Value, err error)
}

// mappingStatement is a select/insert/update/delete body parsed from
// either front-end.
type mappingStatement struct {
	mapper *Mapper
	action sql.Action
	id     string
	attrs  map[string]string
	body   node.Node
}

func (s *mappingStatement) ID() string { return s.id }

func (s *mappingStatement) Name() string {
	if s.mapper == nil {
		return s.id
	}
	return s.mapper.namespace + "." + s.id
}

func (s *mappingStatement) Action() sql.Action { return s.action }

func (s *mappingStatement) Attribute(key string) string {
	if v, ok := s.attrs[key]; ok {
		return v
	}
	if s.mapper != nil {
		return s.mapper.Attribute(key)
	}
	return ""
}

// Build runs the generator: the node tree Accept walk IS the code
// generator, there is no separate source-emission step (see
// node.GenContext).
func (s *mappingStatement) Build(t driver.Translator, args value.Value) (string, []value.Value, error) {
	ctx := node.NewGenContext(t, eval.NewScope(args))
	query, argv, err := s.body.Accept(ctx)
	if err != nil {
		return "", nil, err
	}
	if query == "" {
		return "", nil, fmt.Errorf("template: statement %q produced an empty query", s.Name())
	}
	return query, argv, nil
}

// RawStatement is a fixed SQL string with no templating, identified by
// the hash of its text rather than an author-assigned id.
type RawStatement struct {
	Query  string
	action sql.Action
}

// NewRawStatement wraps a literal query string as a Statement.
func NewRawStatement(query string, action sql.Action) *RawStatement {
	return &RawStatement{Query: query, action: action}
}

func (s *RawStatement) hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s.Query))
	return h.Sum64()
}

func (s *RawStatement) ID() string          { return "raw:" + strconv.FormatUint(s.hash(), 16) }
func (s *RawStatement) Name() string        { return s.ID() }
func (s *RawStatement) Action() sql.Action  { return s.action }
func (s *RawStatement) Attribute(string) string { return "" }

func (s *RawStatement) Build(t driver.Translator, args value.Value) (string, []value.Value, error) {
	frag, err := node.ParseFragment(s.Query)
	if err != nil {
		return "", nil, err
	}
	ctx := node.NewGenContext(t, eval.NewScope(args))
	return frag.Accept(ctx)
}
