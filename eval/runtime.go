package eval

import (
	"fmt"

	"github.com/sqlcraft/sqlcraft/value"
)

// Scope threads the call-site argument map together with locals
// introduced by `bind` targets and `foreach` index/item variables. Locals
// shadow argument names; a Path whose first segment resolves to a local
// is local-bound, otherwise it is arg-bound (the classification spec §3
// calls for — realised here as a lookup order rather than a separate
// tagging pass, since the evaluator is the only consumer of the
// distinction).
type Scope struct {
	parent *Scope
	locals map[string]value.Value
	args   value.Value
}

// NewScope creates a root scope over a Value::Map argument root.
func NewScope(args value.Value) *Scope {
	return &Scope{args: args}
}

// Child creates a nested scope (used by foreach bodies) that inherits the
// parent's locals and argument root but can introduce its own locals
// without leaking them back out once the block ends.
func (s *Scope) Child() *Scope {
	return &Scope{parent: s, locals: nil, args: s.args}
}

// Bind introduces name into the innermost scope, shadowing both parent
// locals and argument-map entries of the same name for the remainder of
// this scope's lifetime.
func (s *Scope) Bind(name string, v value.Value) {
	if s.locals == nil {
		s.locals = make(map[string]value.Value)
	}
	s.locals[name] = v
}

// IsLocal reports whether name resolves against a local binding anywhere
// in the scope chain (local-bound) as opposed to the argument map
// (arg-bound).
func (s *Scope) IsLocal(name string) bool {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.locals != nil {
			if _, ok := sc.locals[name]; ok {
				return true
			}
		}
	}
	return false
}

// Resolve looks up a single identifier: locals first (nearest scope
// wins), then the argument map.
func (s *Scope) Resolve(name string) (value.Value, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.locals != nil {
			if v, ok := sc.locals[name]; ok {
				return v, true
			}
		}
	}
	if s.args.Kind() == value.KindMap {
		return s.args.AsMap().Get(name)
	}
	return value.Null, false
}

// Eval evaluates an Expression Tree against a Scope, producing a Value.
// The evaluator is pure and reentrant: it never mutates scope or args.
func Eval(expr Expr, scope *Scope) (value.Value, error) {
	switch e := expr.(type) {
	case *Literal:
		return e.Val, nil

	case *Path:
		return evalPath(e, scope), nil

	case *Parenthesised:
		return Eval(e.X, scope)

	case *Unary:
		return evalUnary(e, scope)

	case *Binary:
		return evalBinary(e, scope)

	case *Index:
		return evalIndex(e, scope)

	case *MethodCall:
		return evalMethodCall(e, scope)

	default:
		return value.Null, fmt.Errorf("eval: unsupported expression node %T", expr)
	}
}

func evalPath(p *Path, scope *Scope) value.Value {
	cur, ok := scope.Resolve(p.Segments[0])
	if !ok {
		return value.Null
	}
	for _, seg := range p.Segments[1:] {
		cur = navigate(cur, seg)
	}
	return cur
}

func navigate(v value.Value, key string) value.Value {
	if v.Kind() != value.KindMap {
		return value.Null
	}
	r, ok := v.AsMap().Get(key)
	if !ok {
		return value.Null
	}
	return r
}

func evalUnary(e *Unary, scope *Scope) (value.Value, error) {
	x, err := Eval(e.X, scope)
	if err != nil {
		return value.Null, err
	}
	switch e.Op {
	case UnaryNeg:
		return value.Int64(0).OpSub(x), nil
	case UnaryNot:
		return value.Bool(!x.Truthy()), nil
	default:
		return value.Null, fmt.Errorf("eval: unsupported unary operator %v", e.Op)
	}
}

func evalBinary(e *Binary, scope *Scope) (value.Value, error) {
	// Logical operators short-circuit: the right operand is only
	// evaluated when needed.
	if e.Op == BinLand {
		x, err := Eval(e.X, scope)
		if err != nil {
			return value.Null, err
		}
		if !x.Truthy() {
			return value.Bool(false), nil
		}
		y, err := Eval(e.Y, scope)
		if err != nil {
			return value.Null, err
		}
		return value.Bool(y.Truthy()), nil
	}
	if e.Op == BinLor {
		x, err := Eval(e.X, scope)
		if err != nil {
			return value.Null, err
		}
		if x.Truthy() {
			return value.Bool(true), nil
		}
		y, err := Eval(e.Y, scope)
		if err != nil {
			return value.Null, err
		}
		return value.Bool(y.Truthy()), nil
	}

	x, err := Eval(e.X, scope)
	if err != nil {
		return value.Null, err
	}
	y, err := Eval(e.Y, scope)
	if err != nil {
		return value.Null, err
	}
	switch e.Op {
	case BinAdd:
		return x.OpAdd(y), nil
	case BinSub:
		return x.OpSub(y), nil
	case BinMul:
		return x.OpMul(y), nil
	case BinQuo:
		return x.OpDiv(y), nil
	case BinRem:
		return x.OpRem(y), nil
	case BinBitAnd:
		return x.OpBitAnd(y), nil
	case BinBitOr:
		return x.OpBitOr(y), nil
	case BinBitXor:
		return x.OpBitXor(y), nil
	case BinEql:
		return x.OpEq(y), nil
	case BinNeq:
		return x.OpNe(y), nil
	case BinLss:
		return x.OpLt(y), nil
	case BinLeq:
		return x.OpLe(y), nil
	case BinGtr:
		return x.OpGt(y), nil
	case BinGeq:
		return x.OpGe(y), nil
	default:
		return value.Null, fmt.Errorf("eval: unsupported binary operator %v", e.Op)
	}
}

func evalIndex(e *Index, scope *Scope) (value.Value, error) {
	x, err := Eval(e.X, scope)
	if err != nil {
		return value.Null, err
	}
	idx, err := Eval(e.Index, scope)
	if err != nil {
		return value.Null, err
	}
	switch x.Kind() {
	case value.KindSequence:
		if idx.Kind() != value.KindInt64 && idx.Kind() != value.KindUInt64 {
			return value.Null, nil
		}
		i := idx.AsInt64()
		if idx.Kind() == value.KindUInt64 {
			i = int64(idx.AsUInt64())
		}
		seq := x.AsSequence()
		if i < 0 || int(i) >= len(seq) {
			return value.Null, nil
		}
		return seq[i], nil
	case value.KindMap:
		r, ok := x.AsMap().Get(idx.String())
		if !ok {
			return value.Null, nil
		}
		return r, nil
	default:
		return value.Null, nil
	}
}

func evalMethodCall(e *MethodCall, scope *Scope) (value.Value, error) {
	recv, err := Eval(e.Receiver, scope)
	if err != nil {
		return value.Null, err
	}
	switch e.Name {
	case "len":
		return value.Int64(int64(recv.Len())), nil
	case "is_empty":
		return value.Bool(recv.IsEmpty()), nil
	case "sql":
		return value.String(recv.SQLLiteral()), nil
	case "to_string":
		return value.String(recv.String()), nil
	default:
		return value.Null, fmt.Errorf("eval: unrecognised method %q", e.Name)
	}
}
