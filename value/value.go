// Package value implements the universal tagged leaf/container type
// exchanged between templates, expressions, interceptors, and drivers.
//
// A Value is a small, never-faulting dynamically-typed value: every
// arithmetic and comparison operator is total across the whole variant
// set, returning Null (arithmetic) or false (ordering) instead of
// panicking or erroring on an unsupported pairing.
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind identifies which variant a Value currently holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindUInt64
	KindFloat64
	KindString
	KindBytes
	KindTimestamp
	KindDate
	KindTime
	KindDecimal
	KindObjectID
	KindSequence
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindUInt64:
		return "uint64"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindTimestamp:
		return "timestamp"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindDecimal:
		return "decimal"
	case KindObjectID:
		return "object_id"
	case KindSequence:
		return "sequence"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// BytesSubtype tags the flavor of a Bytes variant.
type BytesSubtype uint8

const (
	BytesGeneric BytesSubtype = iota
	BytesUUID
	BytesJSON
)

// Value is the tagged union described by the data model: exactly one of
// the typed fields below is meaningful, selected by Kind.
type Value struct {
	kind Kind

	b        bool
	i64      int64
	u64      uint64
	f64      float64
	str      string
	bytes    []byte
	bytesSub BytesSubtype
	ts       time.Time
	hasTZ    bool
	dec      decimal.Decimal
	objID    [12]byte
	seq      []Value
	m        *OrderedMap
}

// Null is the canonical nullable zero value.
var Null = Value{kind: KindNull}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func Bool(b bool) Value          { return Value{kind: KindBool, b: b} }
func Int64(i int64) Value        { return Value{kind: KindInt64, i64: i} }
func UInt64(u uint64) Value      { return Value{kind: KindUInt64, u64: u} }
func Float64(f float64) Value    { return Value{kind: KindFloat64, f64: f} }
func String(s string) Value      { return Value{kind: KindString, str: s} }
func Decimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, dec: d} }
func ObjectID(b [12]byte) Value  { return Value{kind: KindObjectID, objID: b} }
func Sequence(items []Value) Value { return Value{kind: KindSequence, seq: items} }
func Map(m *OrderedMap) Value    { return Value{kind: KindMap, m: m} }

// Bytes builds a generic, UUID-subtyped, or JSON-subtyped byte variant.
func Bytes(b []byte, sub BytesSubtype) Value {
	return Value{kind: KindBytes, bytes: b, bytesSub: sub}
}

// UUID builds a Bytes(UUID) variant from a google/uuid value.
func UUID(id uuid.UUID) Value {
	b := make([]byte, 16)
	copy(b, id[:])
	return Bytes(b, BytesUUID)
}

// Timestamp builds a Timestamp variant. hasOffset records whether the
// zone offset is semantically meaningful (vs. an implicit UTC default).
func Timestamp(t time.Time, hasOffset bool) Value {
	return Value{kind: KindTimestamp, ts: t, hasTZ: hasOffset}
}

// Date builds a Date variant (the time-of-day component is ignored).
func Date(t time.Time) Value {
	return Value{kind: KindDate, ts: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// Time builds a Time-of-day variant (the date component is ignored).
func Time(t time.Time) Value {
	return Value{kind: KindTime, ts: time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)}
}

// As* accessors. Each returns the zero value of its Go type when the
// Value does not hold that variant; callers that care should check Kind.

func (v Value) AsBool() bool { return v.b }
func (v Value) AsInt64() int64 { return v.i64 }
func (v Value) AsUInt64() uint64 { return v.u64 }
func (v Value) AsFloat64() float64 { return v.f64 }
func (v Value) AsString() string { return v.str }
func (v Value) AsBytes() ([]byte, BytesSubtype) { return v.bytes, v.bytesSub }
func (v Value) AsTime() time.Time { return v.ts }
func (v Value) HasOffset() bool { return v.hasTZ }
func (v Value) AsDecimal() decimal.Decimal { return v.dec }
func (v Value) AsObjectID() [12]byte { return v.objID }
func (v Value) AsSequence() []Value { return v.seq }
func (v Value) AsMap() *OrderedMap { return v.m }

// truthy implements the truthiness projection used by boolean operators
// and by conditional nodes: false for Null, false, 0, 0.0, ""; true for
// everything else.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindInt64:
		return v.i64 != 0
	case KindUInt64:
		return v.u64 != 0
	case KindFloat64:
		return v.f64 != 0
	case KindString:
		return v.str != ""
	default:
		return true
	}
}

func (v Value) isNumeric() bool {
	switch v.kind {
	case KindInt64, KindUInt64, KindFloat64:
		return true
	default:
		return false
	}
}

// asFloat reads any numeric variant (or Null, treated as 0) as a float64.
func (v Value) asFloat() (float64, bool) {
	switch v.kind {
	case KindInt64:
		return float64(v.i64), true
	case KindUInt64:
		return float64(v.u64), true
	case KindFloat64:
		return v.f64, true
	case KindNull:
		return 0, true
	default:
		return 0, false
	}
}

// String renders a stable textual diagnostic form.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt64:
		return strconv.FormatInt(v.i64, 10)
	case KindUInt64:
		return strconv.FormatUint(v.u64, 10)
	case KindFloat64:
		return strconv.FormatFloat(v.f64, 'g', -1, 64)
	case KindString:
		return v.str
	case KindBytes:
		if v.bytesSub == BytesUUID && len(v.bytes) == 16 {
			id, err := uuid.FromBytes(v.bytes)
			if err == nil {
				return id.String()
			}
		}
		return string(v.bytes)
	case KindTimestamp:
		if v.hasTZ {
			return v.ts.Format(time.RFC3339Nano)
		}
		return v.ts.UTC().Format("2006-01-02 15:04:05.999999999")
	case KindDate:
		return v.ts.Format("2006-01-02")
	case KindTime:
		return v.ts.Format("15:04:05.999999999")
	case KindDecimal:
		return v.dec.String()
	case KindObjectID:
		return fmt.Sprintf("%x", v.objID[:])
	case KindSequence:
		parts := make([]string, len(v.seq))
		for i, e := range v.seq {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		if v.m == nil {
			return "{}"
		}
		return v.m.String()
	default:
		return ""
	}
}

// SQLLiteral renders a Value as a SQL-ready literal for `${...}` splicing:
// strings are single-quoted with internal quotes doubled, numbers render
// textually, null renders as NULL, sequences render as a parenthesised
// comma-separated list (used by the `coll.sql()` method).
func (v Value) SQLLiteral() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindString:
		return "'" + strings.ReplaceAll(v.str, "'", "''") + "'"
	case KindSequence:
		parts := make([]string, len(v.seq))
		for i, e := range v.seq {
			parts[i] = e.SQLLiteral()
		}
		return "(" + strings.Join(parts, ",") + ")"
	case KindBool:
		if v.b {
			return "1"
		}
		return "0"
	default:
		return v.String()
	}
}

// OpAdd is total: string+string concatenates, null+numeric treats null as
// zero, numeric+numeric widens per the standard rule, anything else is Null.
func (v Value) OpAdd(o Value) Value {
	if v.kind == KindString || o.kind == KindString {
		return String(concatText(v) + concatText(o))
	}
	return numericOp(v, o, func(a, b int64) (int64, bool) { return a + b, true }, func(a, b uint64) uint64 { return a + b }, func(a, b float64) float64 { return a + b })
}

// concatText renders a Value for string concatenation, treating Null as
// the empty string rather than the literal text "null".
func concatText(v Value) string {
	if v.kind == KindNull {
		return ""
	}
	return v.String()
}

func (v Value) OpSub(o Value) Value {
	return numericOp(v, o, func(a, b int64) (int64, bool) { return a - b, true }, func(a, b uint64) uint64 { return a - b }, func(a, b float64) float64 { return a - b })
}

func (v Value) OpMul(o Value) Value {
	return numericOp(v, o, func(a, b int64) (int64, bool) { return a * b, true }, func(a, b uint64) uint64 { return a * b }, func(a, b float64) float64 { return a * b })
}

// OpDiv never faults: division by zero returns Null.
func (v Value) OpDiv(o Value) Value {
	af, aok := v.asFloat()
	bf, bok := o.asFloat()
	if !aok || !bok {
		return Null
	}
	if bf == 0 {
		return Null
	}
	if v.kind == KindInt64 && o.kind == KindInt64 {
		if o.i64 == 0 {
			return Null
		}
		if v.i64%o.i64 == 0 {
			return Int64(v.i64 / o.i64)
		}
		return Float64(af / bf)
	}
	return Float64(af / bf)
}

func (v Value) OpRem(o Value) Value {
	af, aok := v.asFloat()
	bf, bok := o.asFloat()
	if !aok || !bok || bf == 0 {
		return Null
	}
	if v.kind == KindInt64 && o.kind == KindInt64 {
		if o.i64 == 0 {
			return Null
		}
		return Int64(v.i64 % o.i64)
	}
	return Float64(math.Mod(af, bf))
}

func (v Value) OpBitAnd(o Value) Value { return bitwiseOp(v, o, func(a, b int64) int64 { return a & b }) }
func (v Value) OpBitOr(o Value) Value  { return bitwiseOp(v, o, func(a, b int64) int64 { return a | b }) }
func (v Value) OpBitXor(o Value) Value { return bitwiseOp(v, o, func(a, b int64) int64 { return a ^ b }) }

func bitwiseOp(v, o Value, f func(a, b int64) int64) Value {
	if v.kind != KindInt64 && v.kind != KindUInt64 {
		return Null
	}
	if o.kind != KindInt64 && o.kind != KindUInt64 {
		return Null
	}
	a := v.i64
	if v.kind == KindUInt64 {
		a = int64(v.u64)
	}
	b := o.i64
	if o.kind == KindUInt64 {
		b = int64(o.u64)
	}
	return Int64(f(a, b))
}

// numericOp implements the widening rule: Int64 op Int64 -> Int64 (unless
// overflow-prone mixed sign forces a Float64 widen, handled by the
// Int64/UInt64 combination below); any Float64 operand -> Float64; null
// participating acts as zero; anything non-numeric -> Null.
func numericOp(v, o Value, iop func(a, b int64) (int64, bool), uop func(a, b uint64) uint64, fop func(a, b float64) float64) Value {
	if !v.isNumeric() && v.kind != KindNull {
		return Null
	}
	if !o.isNumeric() && o.kind != KindNull {
		return Null
	}
	if v.kind == KindFloat64 || o.kind == KindFloat64 {
		af, _ := v.asFloat()
		bf, _ := o.asFloat()
		return Float64(fop(af, bf))
	}
	// Mixed Int64/UInt64: widen to Float64 only when the UInt64 operand
	// would not fit in an int64 (the only case direct conversion could
	// silently wrap); otherwise compute directly in int64.
	if (v.kind == KindUInt64 && v.u64 > math.MaxInt64) || (o.kind == KindUInt64 && o.u64 > math.MaxInt64) {
		af, _ := v.asFloat()
		bf, _ := o.asFloat()
		return Float64(fop(af, bf))
	}
	if v.kind == KindUInt64 && o.kind == KindUInt64 {
		return UInt64(uop(v.u64, o.u64))
	}
	ai := v.i64
	if v.kind == KindUInt64 {
		ai = int64(v.u64)
	}
	bi := o.i64
	if o.kind == KindUInt64 {
		bi = int64(o.u64)
	}
	r, _ := iop(ai, bi)
	return Int64(r)
}

// Equal implements structural equality.
func (v Value) Equal(o Value) bool {
	if v.kind == KindNull && o.kind == KindNull {
		return true
	}
	if v.isNumeric() && o.isNumeric() {
		af, _ := v.asFloat()
		bf, _ := o.asFloat()
		return af == bf
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.str == o.str
	case KindBytes:
		return string(v.bytes) == string(o.bytes)
	case KindTimestamp, KindDate, KindTime:
		return v.ts.Equal(o.ts)
	case KindDecimal:
		return v.dec.Equal(o.dec)
	case KindObjectID:
		return v.objID == o.objID
	case KindSequence:
		if len(v.seq) != len(o.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(o.seq[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.m.Equal(o.m)
	default:
		return false
	}
}

func (v Value) OpEq(o Value) Value { return Bool(v.Equal(o)) }
func (v Value) OpNe(o Value) Value { return Bool(!v.Equal(o)) }

// compare returns -1/0/1 and ok=false when the pair is not comparable.
// Null compares as less than any real number (spec-pinned rule, used only
// to make >= and <= against null behave predictably).
func (v Value) compare(o Value) (int, bool) {
	if v.kind == KindNull && o.isNumeric() {
		return -1, true
	}
	if o.kind == KindNull && v.isNumeric() {
		return 1, true
	}
	if v.isNumeric() && o.isNumeric() {
		af, _ := v.asFloat()
		bf, _ := o.asFloat()
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	if v.kind == KindString && o.kind == KindString {
		return strings.Compare(v.str, o.str), true
	}
	if (v.kind == KindTimestamp || v.kind == KindDate || v.kind == KindTime) && v.kind == o.kind {
		switch {
		case v.ts.Before(o.ts):
			return -1, true
		case v.ts.After(o.ts):
			return 1, true
		default:
			return 0, true
		}
	}
	if v.kind == KindDecimal && o.kind == KindDecimal {
		return v.dec.Cmp(o.dec), true
	}
	return 0, false
}

func (v Value) OpLt(o Value) Value {
	c, ok := v.compare(o)
	return Bool(ok && c < 0)
}

func (v Value) OpLe(o Value) Value {
	c, ok := v.compare(o)
	return Bool(ok && c <= 0)
}

func (v Value) OpGt(o Value) Value {
	c, ok := v.compare(o)
	return Bool(ok && c > 0)
}

func (v Value) OpGe(o Value) Value {
	c, ok := v.compare(o)
	return Bool(ok && c >= 0)
}

// Len implements the `len` whitelisted method.
func (v Value) Len() int {
	switch v.kind {
	case KindString:
		return len(v.str)
	case KindBytes:
		return len(v.bytes)
	case KindSequence:
		return len(v.seq)
	case KindMap:
		if v.m == nil {
			return 0
		}
		return v.m.Len()
	default:
		return 0
	}
}

// IsEmpty implements the `is_empty` whitelisted method.
func (v Value) IsEmpty() bool {
	if v.kind == KindNull {
		return true
	}
	return v.Len() == 0
}

// OrderedMap is an insertion-order-preserving mapping from string to Value.
type OrderedMap struct {
	keys   []string
	values map[string]Value
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]Value)}
}

func (m *OrderedMap) Set(key string, v Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

func (m *OrderedMap) Get(key string) (Value, bool) {
	if m == nil {
		return Null, false
	}
	v, ok := m.values[key]
	return v, ok
}

func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

func (m *OrderedMap) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

func (m *OrderedMap) Equal(o *OrderedMap) bool {
	if m.Len() != o.Len() {
		return false
	}
	for _, k := range m.Keys() {
		a, _ := m.Get(k)
		b, ok := o.Get(k)
		if !ok || !a.Equal(b) {
			return false
		}
	}
	return true
}

func (m *OrderedMap) String() string {
	keys := append([]string(nil), m.keys...)
	sort.Strings(keys)
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		v, _ := m.Get(k)
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v.String())
	}
	b.WriteByte('}')
	return b.String()
}
