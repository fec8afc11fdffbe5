package node

import (
	"fmt"

	"github.com/sqlcraft/sqlcraft/eval"
	"github.com/sqlcraft/sqlcraft/value"
)

// BindNode evaluates Expr against the current scope, binds the result
// under Name as a local, and leaves the binding visible to every sibling
// node rendered after it in the same body (achieved by mutating ctx's
// own scope in place rather than rendering into a child).
type BindNode struct {
	Name string
	Expr eval.Expr
}

func (n *BindNode) Accept(ctx *GenContext) (string, []value.Value, error) {
	v, err := ctx.Eval(n.Expr)
	if err != nil {
		return "", nil, fmt.Errorf("node: bind %s: %w", n.Name, err)
	}
	ctx.Scope.Bind(n.Name, v)
	return "", nil, nil
}
