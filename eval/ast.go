package eval

import "github.com/sqlcraft/sqlcraft/value"

// Binding classifies how an identifier node resolves at evaluation time:
// against the call-site argument map, or against a local introduced
// earlier in scope (a foreach index/item var, or a bind target).
type Binding uint8

const (
	ArgBound Binding = iota
	LocalBound
)

// Expr is the tagged-variant Expression Tree node interface. Every
// concrete type below implements it; dispatch happens by type switch in
// the evaluator, not through virtual "eval" methods on the node itself.
type Expr interface {
	exprNode()
}

// Path is a dotted identifier sequence, e.g. user.name. A single-segment
// Path is the unit an identifier-classification pass tags as ArgBound or
// LocalBound (see Scope.Resolve); a missing segment at any depth evaluates
// to Null rather than erroring.
type Path struct {
	Segments []string
}

// Literal carries a constant Value fixed at parse time.
type Literal struct {
	Val value.Value
}

// UnaryOp identifies the unary operators recognised by the language.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota // -
	UnaryNot                // !
)

type Unary struct {
	Op UnaryOp
	X  Expr
}

// BinaryOp identifies the binary operators recognised by the language,
// including the short-circuiting logical forms.
type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinQuo
	BinRem
	BinBitAnd
	BinBitOr
	BinBitXor
	BinEql
	BinNeq
	BinLss
	BinLeq
	BinGtr
	BinGeq
	BinLand
	BinLor
)

type Binary struct {
	Op   BinaryOp
	X, Y Expr
}

// Index is bracket access into a sequence (integer index) or map (key).
type Index struct {
	X     Expr
	Index Expr
}

// MethodCall is name+receiver+args for the closed method whitelist:
// len, is_empty, sql, to_string.
type MethodCall struct {
	Receiver Expr
	Name     string
	Args     []Expr
}

// Parenthesised is pure grouping, preserved so precedence is explicit in
// the tree even though it carries no runtime behavior of its own.
type Parenthesised struct {
	X Expr
}

func (*Path) exprNode()          {}
func (*Literal) exprNode()       {}
func (*Unary) exprNode()         {}
func (*Binary) exprNode()        {}
func (*Index) exprNode()         {}
func (*MethodCall) exprNode()    {}
func (*Parenthesised) exprNode() {}
