package node

import (
	"fmt"

	"github.com/sqlcraft/sqlcraft/eval"
	"github.com/sqlcraft/sqlcraft/value"
)

// WhenClause is one branch of a ChooseNode: Body is emitted when Test is
// the first truthy clause in source order.
type WhenClause struct {
	Test eval.Expr
	Body Node
}

// ChooseNode picks the first truthy When clause, falling back to
// Otherwise (if present) when none match — mirroring a switch statement
// with no fallthrough between branches.
type ChooseNode struct {
	Whens     []WhenClause
	Otherwise Node
}

func (n *ChooseNode) Accept(ctx *GenContext) (string, []value.Value, error) {
	for _, w := range n.Whens {
		v, err := ctx.Eval(w.Test)
		if err != nil {
			return "", nil, fmt.Errorf("node: choose/when test: %w", err)
		}
		if v.Truthy() {
			return w.Body.Accept(ctx)
		}
	}
	if n.Otherwise != nil {
		return n.Otherwise.Accept(ctx)
	}
	return "", nil, nil
}
