package node

import "github.com/sqlcraft/sqlcraft/value"

// IncludeNode splices another statement's compiled body into this one.
// Resolution of the Refid to a concrete Target happens once, at compile
// time, when the owning template registry links cross-statement
// references (so a typo in refid surfaces as a compile error rather
// than a runtime one); by the time Accept runs, Target is always set.
type IncludeNode struct {
	Refid  string
	Target Node
}

func (n *IncludeNode) Accept(ctx *GenContext) (string, []value.Value, error) {
	return n.Target.Accept(ctx)
}
