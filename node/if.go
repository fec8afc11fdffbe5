package node

import (
	"fmt"

	"github.com/sqlcraft/sqlcraft/eval"
	"github.com/sqlcraft/sqlcraft/value"
)

// IfNode emits Body only when Test evaluates truthy.
type IfNode struct {
	Test eval.Expr
	Body Node
}

func (n *IfNode) Accept(ctx *GenContext) (string, []value.Value, error) {
	v, err := ctx.Eval(n.Test)
	if err != nil {
		return "", nil, fmt.Errorf("node: if test: %w", err)
	}
	if !v.Truthy() {
		return "", nil, nil
	}
	return n.Body.Accept(ctx)
}
