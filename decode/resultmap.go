package decode

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"slices"
	"time"
)

// ResultMap maps the rows of a query result to a reflect.Value.
type ResultMap interface {
	MapTo(rv reflect.Value, rows Rows) error
}

// SingleRowResultMap maps exactly one row to a non-slice destination.
type SingleRowResultMap struct{}

func (SingleRowResultMap) MapTo(rv reflect.Value, rows Rows) error {
	if rv.Kind() != reflect.Ptr {
		return ErrPointerRequired
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("decode: error fetching row: %w", err)
		}
		return sql.ErrNoRows
	}

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("decode: failed to get columns: %w", err)
	}

	dest := &rowDestination{}
	scanDest, err := dest.Destination(rv, columns)
	if err != nil {
		return fmt.Errorf("decode: failed to build destination: %w", err)
	}

	if err = rows.Scan(scanDest...); err != nil {
		return fmt.Errorf("decode: failed to scan row: %w", err)
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("decode: error during scan: %w", err)
	}

	if rows.Next() {
		return ErrTooManyRows
	}
	return nil
}

// preserveNilSlice controls whether MultiRowsResultMap leaves a nil
// slice destination nil when the query returned zero rows, instead of
// replacing it with an empty (but non-nil) slice.
var preserveNilSlice = os.Getenv("SQLCRAFT_RESULT_MAP_PRESERVE_NIL_SLICE") == "true"

// MultiRowsResultMap maps every row to a new element of a slice
// destination. New, when set, constructs each element; otherwise one is
// derived from the slice's element type via reflection.
type MultiRowsResultMap struct {
	New func() reflect.Value
}

func (m MultiRowsResultMap) MapTo(rv reflect.Value, rows Rows) error {
	if rv.Kind() != reflect.Ptr {
		return fmt.Errorf("%w: expected pointer to slice", ErrPointerRequired)
	}
	if rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("decode: expected pointer to slice, got pointer to %v", rv.Elem().Kind())
	}

	target := rv.Elem()
	elementType := target.Type().Elem()
	isPointer := elementType.Kind() == reflect.Ptr
	pointerType := elementType
	if !isPointer {
		pointerType = reflect.PointerTo(elementType)
	}
	useScanner := pointerType.Implements(rowScannerType)

	if m.New == nil {
		targetElementType := elementType
		if isPointer {
			targetElementType = targetElementType.Elem()
		}
		m.New = func() reflect.Value { return reflect.New(targetElementType) }
	}

	var (
		values []reflect.Value
		err    error
	)
	if useScanner {
		values, err = m.mapWithRowScanner(rows, isPointer)
	} else {
		values, err = m.mapWithColumnDestination(rows, isPointer)
	}
	if err != nil {
		return err
	}

	if len(values) > 0 {
		target.Grow(len(values))
		target.Set(reflect.Append(target, values...))
	} else if !preserveNilSlice {
		target.Set(reflect.MakeSlice(target.Type(), 0, 0))
	}
	return nil
}

func (m MultiRowsResultMap) mapWithRowScanner(rows Rows, isPointer bool) ([]reflect.Value, error) {
	values := make([]reflect.Value, 0, 8)
	for rows.Next() {
		newValue := m.New()
		if err := newValue.Interface().(RowScanner).ScanRows(rows); err != nil {
			return nil, fmt.Errorf("decode: failed to scan row via RowScanner: %w", err)
		}
		if isPointer {
			values = append(values, newValue)
		} else {
			values = append(values, newValue.Elem())
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("decode: error iterating rows: %w", err)
	}
	return values, nil
}

func (m MultiRowsResultMap) mapWithColumnDestination(rows Rows, isPointer bool) ([]reflect.Value, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("decode: failed to get columns: %w", err)
	}
	dest := &rowDestination{}
	values := make([]reflect.Value, 0, 8)

	for rows.Next() {
		newValue := m.New()
		scanDest, err := dest.Destination(newValue, columns)
		if err != nil {
			return nil, fmt.Errorf("decode: failed to build destination: %w", err)
		}
		if err = rows.Scan(scanDest...); err != nil {
			return nil, fmt.Errorf("decode: failed to scan row: %w", err)
		}
		if isPointer {
			values = append(values, newValue)
		} else {
			values = append(values, newValue.Elem())
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("decode: error iterating rows: %w", err)
	}
	return values, nil
}

var (
	rowScannerType = reflect.TypeOf((*RowScanner)(nil)).Elem()
	scannerType    = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	timeType       = reflect.TypeOf((*time.Time)(nil)).Elem()
)

// columnTagName is the struct tag used to associate a field with a column.
var columnTagName = "column"

// SetColumnTagName changes the struct tag decode looks for. Defaults to
// "column"; SQLCRAFT_COLUMN_TAG_NAME overrides it at process start.
func SetColumnTagName(tag string) {
	if tag == "" {
		panic("decode: column tag name cannot be empty")
	}
	columnTagName = tag
}

func init() {
	if tag := os.Getenv("SQLCRAFT_COLUMN_TAG_NAME"); tag != "" {
		columnTagName = tag
	}
}

// sink discards columns that have no corresponding destination field.
var sink any

// rowDestination maps struct fields to scan destinations by struct tag,
// caching the column->field-index mapping across repeated calls for the
// same shape of row.
type rowDestination struct {
	indexes [][]int
	checked bool
	dest    []any
}

func (s *rowDestination) Destination(rv reflect.Value, columns []string) ([]any, error) {
	dest, err := s.destination(rv, columns)
	if err != nil {
		return nil, err
	}
	if !s.checked {
		if err = checkDestination(dest); err != nil {
			return nil, err
		}
		s.checked = true
	}
	return dest, nil
}

func (s *rowDestination) destinationForOneColumn(rv reflect.Value, columns []string) ([]any, error) {
	if rv.Elem().Type() == timeType || rv.Type().Implements(scannerType) {
		return []any{rv.Interface()}, nil
	}
	if reflect.Indirect(rv).Kind() == reflect.Struct {
		return s.destinationForStruct(rv, columns)
	}
	return []any{rv.Interface()}, nil
}

func (s *rowDestination) destination(rv reflect.Value, columns []string) ([]any, error) {
	if len(columns) == 1 {
		return s.destinationForOneColumn(rv, columns)
	}
	kind := reflect.Indirect(rv).Kind()
	if kind != reflect.Struct {
		return nil, fmt.Errorf("decode: expected struct, got %s", kind)
	}
	return s.destinationForStruct(rv, columns)
}

func (s *rowDestination) destinationForStruct(rv reflect.Value, columns []string) ([]any, error) {
	rv = reflect.Indirect(rv)
	if len(s.indexes) == 0 {
		s.setIndexes(rv, columns)
	}
	if s.dest == nil {
		s.dest = make([]any, len(columns))
	} else {
		clear(s.dest)
	}
	for i, idx := range s.indexes {
		if len(idx) == 0 {
			s.dest[i] = &sink
		} else {
			s.dest[i] = rv.FieldByIndex(idx).Addr().Interface()
		}
	}
	return s.dest, nil
}

func (s *rowDestination) setIndexes(rv reflect.Value, columns []string) {
	tp := rv.Type()
	s.indexes = make([][]int, len(columns))

	columnIndex := make(map[string]int, len(columns))
	for i, column := range columns {
		columnIndex[column] = i
	}
	s.findFromStruct(tp, columnIndex, nil)
}

func (s *rowDestination) findFromStruct(tp reflect.Type, columnIndex map[string]int, walk []int) {
	finished := func() bool {
		return slices.IndexFunc(s.indexes, func(v []int) bool { return len(v) == 0 }) == -1
	}

	for i := 0; i < tp.NumField(); i++ {
		if finished() {
			break
		}
		field := tp.Field(i)
		tag := field.Tag.Get(columnTagName)
		if (tag == "" && !field.Anonymous) || tag == "-" {
			continue
		}
		if field.Anonymous && field.Type.Kind() == reflect.Struct && tag == "" {
			s.findFromStruct(field.Type, columnIndex, append(append([]int(nil), walk...), i))
			continue
		}
		index, ok := columnIndex[tag]
		if !ok {
			continue
		}
		s.indexes[index] = append(append([]int(nil), walk...), field.Index...)
	}
}

func checkDestination(dest []any) error {
	for _, d := range dest {
		if _, ok := d.(*sql.RawBytes); ok {
			return ErrRawBytesScan
		}
	}
	return nil
}
