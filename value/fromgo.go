package value

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ParamTag is the struct tag examined by FromGo when a field's exported
// name does not match the path segment being resolved.
const ParamTag = "param"

// FromGo converts an arbitrary Go value — the argument a caller passes
// to a statement — into the Value tree expressions and templates walk.
//
// Maps with string keys and structs become KindMap; struct fields are
// addressed by their `param:"name"` tag when present, by their exported
// Go name otherwise. Slices and arrays become KindSequence. Recognized
// scalar types (numbers, strings, bool, time.Time, decimal.Decimal,
// uuid.UUID, []byte) map onto their matching Value constructor. A nil
// value, or a nil pointer/map/slice/interface, converts to Null.
func FromGo(v any) (Value, error) {
	if v == nil {
		return Null, nil
	}
	if val, ok := v.(Value); ok {
		return val, nil
	}
	return fromReflect(reflect.ValueOf(v))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return Null, nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Null, nil
		}
		return fromReflect(rv.Elem())
	}

	if rv.CanInterface() {
		switch x := rv.Interface().(type) {
		case time.Time:
			return Timestamp(x, true), nil
		case decimal.Decimal:
			return Decimal(x), nil
		case uuid.UUID:
			return UUID(x), nil
		case []byte:
			return Bytes(x, BytesGeneric), nil
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return UInt64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Float64(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Map:
		return mapFromReflect(rv)
	case reflect.Struct:
		return structFromReflect(rv)
	case reflect.Slice, reflect.Array:
		return sequenceFromReflect(rv)
	default:
		return Null, fmt.Errorf("value: cannot convert %s to Value", rv.Type())
	}
}

func mapFromReflect(rv reflect.Value) (Value, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return Null, fmt.Errorf("value: map key must be string, got %s", rv.Type().Key())
	}
	if rv.IsNil() {
		return Null, nil
	}
	m := NewOrderedMap()
	iter := rv.MapRange()
	for iter.Next() {
		elem, err := fromReflect(iter.Value())
		if err != nil {
			return Null, err
		}
		m.Set(iter.Key().String(), elem)
	}
	return Map(m), nil
}

func structFromReflect(rv reflect.Value) (Value, error) {
	typ := rv.Type()
	m := NewOrderedMap()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name := f.Tag.Get(ParamTag)
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		elem, err := fromReflect(rv.Field(i))
		if err != nil {
			return Null, fmt.Errorf("value: field %q: %w", f.Name, err)
		}
		m.Set(name, elem)
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.Anonymous {
			continue
		}
		embedded, err := fromReflect(rv.Field(i))
		if err != nil {
			return Null, err
		}
		if embedded.Kind() != KindMap {
			continue
		}
		for _, k := range embedded.AsMap().Keys() {
			if _, exists := m.Get(k); exists {
				continue
			}
			ev, _ := embedded.AsMap().Get(k)
			m.Set(k, ev)
		}
	}
	return Map(m), nil
}

func sequenceFromReflect(rv reflect.Value) (Value, error) {
	items := make([]Value, rv.Len())
	for i := range items {
		elem, err := fromReflect(rv.Index(i))
		if err != nil {
			return Null, err
		}
		items[i] = elem
	}
	return Sequence(items), nil
}
