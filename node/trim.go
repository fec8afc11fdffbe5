package node

import (
	"strings"

	"github.com/sqlcraft/sqlcraft/value"
)

// TrimNode renders Body and then strips a configurable prefix/suffix
// from the result, additionally rewriting a leading/trailing overriden
// token (e.g. a stray "AND"/"OR" left behind by a conditional clause, or
// a trailing comma left behind by an omitted SET assignment). Produces
// nothing if Body renders to whitespace only.
type TrimNode struct {
	Body            Node
	Prefix          string
	Suffix          string
	PrefixOverrides []string
	SuffixOverrides []string
}

func (n *TrimNode) Accept(ctx *GenContext) (string, []value.Value, error) {
	sql, args, err := n.Body.Accept(ctx)
	if err != nil {
		return "", nil, err
	}
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return "", nil, nil
	}

	for _, tok := range n.PrefixOverrides {
		if rest, ok := tokenHasPrefix(trimmed, tok); ok {
			trimmed = strings.TrimSpace(rest)
			break
		}
	}
	for _, tok := range n.SuffixOverrides {
		if rest, ok := tokenHasSuffix(trimmed, tok); ok {
			trimmed = strings.TrimSpace(rest)
			break
		}
	}

	if n.Prefix != "" {
		trimmed = n.Prefix + " " + trimmed
	}
	if n.Suffix != "" {
		trimmed = trimmed + n.Suffix
	}
	return trimmed, args, nil
}

// tokenHasPrefix reports whether s begins with tok as a whole word
// (case-insensitive) — e.g. "AND" matches "and x=1" but not
// "android = 1" — and returns the remainder with tok removed.
func tokenHasPrefix(s, tok string) (rest string, ok bool) {
	if len(s) < len(tok) || !strings.EqualFold(s[:len(tok)], tok) {
		return "", false
	}
	if len(s) > len(tok) && !isWordBoundary(s[len(tok)]) {
		return "", false
	}
	return s[len(tok):], true
}

// tokenHasSuffix is tokenHasPrefix's mirror for trailing tokens.
func tokenHasSuffix(s, tok string) (rest string, ok bool) {
	if len(s) < len(tok) || !strings.EqualFold(s[len(s)-len(tok):], tok) {
		return "", false
	}
	if len(s) > len(tok) && !isWordBoundary(s[len(s)-len(tok)-1]) {
		return "", false
	}
	return s[:len(s)-len(tok)], true
}

func isWordBoundary(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// WhereNode prepends "WHERE" to Body once its leading "AND"/"OR" (left
// behind by conditionally-omitted predicates) is stripped, and produces
// nothing if every predicate inside was itself omitted.
type WhereNode struct {
	Body Node
}

func (n *WhereNode) Accept(ctx *GenContext) (string, []value.Value, error) {
	t := &TrimNode{
		Body:            n.Body,
		Prefix:          "WHERE",
		PrefixOverrides: []string{"AND", "OR", "and", "or"},
	}
	return t.Accept(ctx)
}

// SetNode prepends "SET" to Body once its trailing comma (left behind
// by a conditionally-omitted final assignment) is stripped.
type SetNode struct {
	Body Node
}

func (n *SetNode) Accept(ctx *GenContext) (string, []value.Value, error) {
	sql, args, err := n.Body.Accept(ctx)
	if err != nil {
		return "", nil, err
	}
	trimmed := strings.TrimSpace(sql)
	trimmed = strings.TrimSuffix(trimmed, ",")
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return "", nil, nil
	}
	return "SET " + trimmed, args, nil
}
