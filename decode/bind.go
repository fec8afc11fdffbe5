package decode

import (
	"errors"
	"iter"
	"reflect"
)

func bindWithResultMap(rows Rows, v any, resultMap ResultMap) error {
	if v == nil {
		return ErrNilDestination
	}
	if rows == nil {
		return ErrNilRows
	}
	if scanner, ok := v.(RowScanner); ok {
		return scanner.ScanRows(rows)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr {
		return ErrPointerRequired
	}

	if resultMap == nil {
		if reflect.Indirect(rv).Kind() == reflect.Slice {
			resultMap = MultiRowsResultMap{}
		} else {
			resultMap = SingleRowResultMap{}
		}
	}
	return resultMap.MapTo(rv, rows)
}

// BindWithResultMap decodes rows into a freshly constructed T using resultMap.
func BindWithResultMap[T any](rows Rows, resultMap ResultMap) (result T, err error) {
	var ptr any = &result
	if t := reflect.TypeOf(result); t != nil && t.Kind() == reflect.Ptr {
		result = reflect.New(t.Elem()).Interface().(T)
		ptr = result
	}
	err = bindWithResultMap(rows, ptr, resultMap)
	return
}

// Bind decodes rows into T using the default ResultMap for T's kind: a
// SingleRowResultMap for a struct destination, a MultiRowsResultMap for
// a slice destination.
func Bind[T any](rows Rows) (result T, err error) {
	return BindWithResultMap[T](rows, nil)
}

// List decodes rows into a []T, returning an empty (non-nil) slice when
// the query produced no rows, unless SQLCRAFT_RESULT_MAP_PRESERVE_NIL_SLICE
// was "true" at process start, in which case the result stays nil.
func List[T any](rows Rows) (result []T, err error) {
	var resultMap MultiRowsResultMap
	element := reflect.TypeOf((*T)(nil)).Elem()
	if element.Kind() != reflect.Ptr {
		resultMap.New = func() reflect.Value { return reflect.ValueOf(new(T)) }
	}
	err = bindWithResultMap(rows, &result, resultMap)
	return
}

// ListPointers decodes rows into a []*T.
func ListPointers[T any](rows Rows) ([]*T, error) {
	items, err := List[T](rows)
	if err != nil {
		return nil, err
	}
	result := make([]*T, len(items))
	for i := range items {
		result[i] = &items[i]
	}
	return result, nil
}

// RowIter iterates Rows one decoded T at a time without materializing a
// slice. Err reports any error raised during iteration (including one
// raised by the underlying Rows).
type RowIter[T any] struct {
	rows Rows
	err  error
}

func (r *RowIter[T]) Err() error {
	return errors.Join(r.err, r.rows.Err())
}

func (r *RowIter[T]) Seq() iter.Seq[T] {
	columns, err := r.rows.Columns()
	if err != nil {
		r.err = err
		return func(func(T) bool) {}
	}
	dest := &rowDestination{}
	t := reflect.TypeFor[T]()
	isPtr := t.Kind() == reflect.Ptr

	newT := func() T { return *new(T) }
	if isPtr {
		newT = func() T { return reflect.New(t.Elem()).Interface().(T) }
	}

	decodeOne := func() (T, error) {
		v := newT()
		var rv reflect.Value
		if isPtr {
			rv = reflect.ValueOf(v)
		} else {
			rv = reflect.ValueOf(&v)
		}
		scanDest, err := dest.Destination(rv, columns)
		if err != nil {
			return v, err
		}
		if err = r.rows.Scan(scanDest...); err != nil {
			return v, err
		}
		return v, nil
	}

	return func(yield func(T) bool) {
		for r.rows.Next() {
			v, err := decodeOne()
			if err != nil {
				r.err = err
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Iter wraps rows in a RowIter[T]. The caller remains responsible for
// closing rows.
func Iter[T any](rows Rows) *RowIter[T] {
	return &RowIter[T]{rows: rows}
}
