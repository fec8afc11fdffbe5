package node

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sqlcraft/sqlcraft/eval"
	"github.com/sqlcraft/sqlcraft/value"
)

// errContinueIteration is the sentinel a ContinueNode raises to abandon
// the remainder of the current foreach iteration without aborting the
// whole statement. ForeachNode is the only Accept that ever observes it;
// any other caller seeing it escape indicates a continue outside a for
// body, which the template front-end is responsible for rejecting
// statically before generation ever runs.
var errContinueIteration = errors.New("node: continue outside foreach")

// ContinueNode skips the rest of the current foreach iteration.
type ContinueNode struct{}

func (ContinueNode) Accept(*GenContext) (string, []value.Value, error) {
	return "", nil, errContinueIteration
}

// ForeachNode iterates Collection (a Sequence or a Map), binding each
// element to IndexVar/ItemVar in a child scope and rendering Body once
// per element, joining non-empty renders with Separator and wrapping the
// whole thing in Open/Close.
type ForeachNode struct {
	Collection eval.Expr
	IndexVar   string
	ItemVar    string
	Open       string
	Close      string
	Separator  string
	Body       Node
}

func (n *ForeachNode) Accept(ctx *GenContext) (string, []value.Value, error) {
	coll, err := ctx.Eval(n.Collection)
	if err != nil {
		return "", nil, fmt.Errorf("node: foreach collection: %w", err)
	}

	var parts []string
	var args []value.Value

	emit := func(idx value.Value, item value.Value) error {
		child := ctx.Scope.Child()
		if n.IndexVar != "" {
			child.Bind(n.IndexVar, idx)
		}
		if n.ItemVar != "" {
			child.Bind(n.ItemVar, item)
		}
		iterCtx := ctx.WithScope(child)
		sql, a, err := n.Body.Accept(iterCtx)
		if err != nil {
			if errors.Is(err, errContinueIteration) {
				return nil
			}
			return err
		}
		sql = strings.TrimSpace(sql)
		if sql == "" {
			return nil
		}
		parts = append(parts, sql)
		args = append(args, a...)
		return nil
	}

	switch {
	case coll.Kind() == value.KindSequence:
		seq := coll.AsSequence()
		for i, item := range seq {
			if err := emit(value.Int64(int64(i)), item); err != nil {
				return "", nil, err
			}
		}
	case coll.Kind() == value.KindMap:
		m := coll.AsMap()
		for _, k := range m.Keys() {
			v, _ := m.Get(k)
			if err := emit(value.String(k), v); err != nil {
				return "", nil, err
			}
		}
	default:
		return "", nil, fmt.Errorf("node: foreach collection is not a sequence or map (kind %s)", coll.Kind())
	}

	sep := n.Separator
	if sep == "" {
		sep = ","
	}
	return n.Open + strings.Join(parts, sep) + n.Close, args, nil
}
