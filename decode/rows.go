// Package decode maps database/sql rows to Go values: a single struct, a
// slice of structs, or a caller-supplied RowScanner. Grounded on the
// teacher's root-level rows.go/result_map.go/binder.go trio — the Rows
// interface, the SingleRowResultMap/MultiRowsResultMap split, and the
// struct-tag column destination walk are all kept in shape. The column
// tag name is a package-wide setting (SetColumnTagName, or the
// SQLCRAFT_COLUMN_TAG_NAME environment variable at process start).
package decode

import "database/sql"

// Rows is the result of a query. It is satisfied by *sql.Rows; tests use
// a fake to avoid a live database connection.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
	Columns() ([]string, error)
}

var _ Rows = (*sql.Rows)(nil)

// RowScanner lets a destination type take over its own row decoding,
// bypassing struct-tag reflection entirely.
type RowScanner interface {
	ScanRows(rows Rows) error
}
