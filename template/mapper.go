package template

import (
	"fmt"
	"strings"

	"github.com/sqlcraft/sqlcraft/internal/container"
	"github.com/sqlcraft/sqlcraft/node"
)

// Mapper is a namespaced set of Statements and named sql fragments
// (included by refid from a Statement body).
type Mapper struct {
	namespace  string
	mappers    *Mappers
	statements map[string]*mappingStatement
	fragments  map[string]node.Node
	attrs      map[string]string
}

func (m *Mapper) Namespace() string { return m.namespace }

func (m *Mapper) setAttribute(key, v string) {
	if m.attrs == nil {
		m.attrs = make(map[string]string)
	}
	m.attrs[key] = v
}

func (m *Mapper) Attribute(key string) string { return m.attrs[key] }

func (m *Mapper) addStatement(stmt *mappingStatement) error {
	if m.statements == nil {
		m.statements = make(map[string]*mappingStatement)
	}
	if _, exists := m.statements[stmt.id]; exists {
		return fmt.Errorf("template: duplicate statement id %q in namespace %q", stmt.id, m.namespace)
	}
	stmt.mapper = m
	m.statements[stmt.id] = stmt
	return nil
}

func (m *Mapper) addFragment(id string, n node.Node) error {
	if strings.Contains(id, ".") {
		return fmt.Errorf("template: sql fragment id %q may not contain '.'", id)
	}
	if m.fragments == nil {
		m.fragments = make(map[string]node.Node)
	}
	if _, exists := m.fragments[id]; exists {
		return fmt.Errorf("template: duplicate sql fragment id %q in namespace %q", id, m.namespace)
	}
	m.fragments[id] = n
	return nil
}

// FragmentByID resolves a `<include refid="...">` reference, supporting
// a cross-namespace id ("other.namespace.fragmentID").
func (m *Mapper) FragmentByID(id string) (node.Node, error) {
	if !strings.Contains(id, ".") {
		n, ok := m.fragments[id]
		if !ok {
			return nil, fmt.Errorf("template: sql fragment %q not found in namespace %q", id, m.namespace)
		}
		return n, nil
	}
	return m.mappers.FragmentByID(id)
}

func (m *Mapper) StatementByID(id string) (Statement, bool) {
	stmt, ok := m.statements[id]
	return stmt, ok
}

// Mappers is the registry of every parsed Mapper, keyed by namespace. A
// Trie backs the registry because namespaces commonly share dotted
// prefixes (mirrors the teacher's mapper registry design).
type Mappers struct {
	attrs   map[string]string
	mappers *container.Trie[*Mapper]
	list    []*Mapper
}

func NewMappers() *Mappers {
	return &Mappers{mappers: container.NewTrie[*Mapper]()}
}

func (ms *Mappers) setAttribute(key, v string) {
	if ms.attrs == nil {
		ms.attrs = make(map[string]string)
	}
	ms.attrs[key] = v
}

func (ms *Mappers) Attribute(key string) string { return ms.attrs[key] }
func (ms *Mappers) Prefix() string              { return ms.Attribute("prefix") }

func (ms *Mappers) Add(m *Mapper) error {
	key := m.namespace
	if prefix := ms.Prefix(); prefix != "" {
		key = prefix + "." + key
	}
	if ms.mappers == nil {
		ms.mappers = container.NewTrie[*Mapper]()
	}
	if _, exists := ms.mappers.Get(key); exists {
		return fmt.Errorf("template: duplicate mapper namespace %q", key)
	}
	m.mappers = ms
	ms.mappers.Insert(key, m)
	ms.list = append(ms.list, m)
	return nil
}

func (ms *Mappers) ByNamespace(namespace string) (*Mapper, bool) {
	if ms == nil || ms.mappers == nil {
		return nil, false
	}
	return ms.mappers.Get(namespace)
}

func splitNamespaceID(id string) (namespace, localID string, err error) {
	i := strings.LastIndex(id, ".")
	if i <= 0 {
		return "", "", fmt.Errorf("template: id %q is not of the form namespace.id", id)
	}
	return id[:i], id[i+1:], nil
}

func (ms *Mappers) StatementByID(id string) (Statement, error) {
	namespace, local, err := splitNamespaceID(id)
	if err != nil {
		return nil, err
	}
	m, ok := ms.ByNamespace(namespace)
	if !ok {
		return nil, fmt.Errorf("template: mapper namespace %q not found", namespace)
	}
	stmt, ok := m.StatementByID(local)
	if !ok {
		return nil, fmt.Errorf("template: statement %q not found in namespace %q", local, namespace)
	}
	return stmt, nil
}

func (ms *Mappers) FragmentByID(id string) (node.Node, error) {
	namespace, local, err := splitNamespaceID(id)
	if err != nil {
		return nil, err
	}
	m, ok := ms.ByNamespace(namespace)
	if !ok {
		return nil, fmt.Errorf("template: mapper namespace %q not found", namespace)
	}
	return m.FragmentByID(local)
}
