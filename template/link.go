package template

import "github.com/sqlcraft/sqlcraft/node"

// Link resolves every IncludeNode produced by either front-end against
// the fully-populated Mappers registry. Fragments may be defined after
// the statement that references them (forward references within a
// file, or references across files loaded in any order), so resolution
// happens once as a whole-registry pass rather than at parse time.
func (ms *Mappers) Link() error {
	var walkMapper func(m *Mapper) error
	walkMapper = func(m *Mapper) error {
		for _, stmt := range m.statements {
			resolved, err := resolveIncludes(m, stmt.body)
			if err != nil {
				return err
			}
			stmt.body = resolved
		}
		for id, frag := range m.fragments {
			resolved, err := resolveIncludes(m, frag)
			if err != nil {
				return err
			}
			m.fragments[id] = resolved
		}
		return nil
	}

	var err error
	for _, m := range ms.list {
		if e := walkMapper(m); e != nil {
			err = e
		}
	}
	return err
}

func resolveIncludes(m *Mapper, n node.Node) (node.Node, error) {
	switch v := n.(type) {
	case *node.IncludeNode:
		target, err := m.FragmentByID(v.Refid)
		if err != nil {
			return nil, err
		}
		resolvedTarget, err := resolveIncludes(m, target)
		if err != nil {
			return nil, err
		}
		v.Target = resolvedTarget
		return v, nil
	case node.NodeGroup:
		for i, child := range v {
			resolved, err := resolveIncludes(m, child)
			if err != nil {
				return nil, err
			}
			v[i] = resolved
		}
		return v, nil
	case *node.IfNode:
		resolved, err := resolveIncludes(m, v.Body)
		if err != nil {
			return nil, err
		}
		v.Body = resolved
		return v, nil
	case *node.WhereNode:
		resolved, err := resolveIncludes(m, v.Body)
		if err != nil {
			return nil, err
		}
		v.Body = resolved
		return v, nil
	case *node.SetNode:
		resolved, err := resolveIncludes(m, v.Body)
		if err != nil {
			return nil, err
		}
		v.Body = resolved
		return v, nil
	case *node.TrimNode:
		resolved, err := resolveIncludes(m, v.Body)
		if err != nil {
			return nil, err
		}
		v.Body = resolved
		return v, nil
	case *node.ForeachNode:
		resolved, err := resolveIncludes(m, v.Body)
		if err != nil {
			return nil, err
		}
		v.Body = resolved
		return v, nil
	case *node.ChooseNode:
		for i, w := range v.Whens {
			resolved, err := resolveIncludes(m, w.Body)
			if err != nil {
				return nil, err
			}
			v.Whens[i].Body = resolved
		}
		if v.Otherwise != nil {
			resolved, err := resolveIncludes(m, v.Otherwise)
			if err != nil {
				return nil, err
			}
			v.Otherwise = resolved
		}
		return v, nil
	default:
		return n, nil
	}
}
