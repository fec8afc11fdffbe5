package decode

import "errors"

var (
	// ErrNilDestination is returned when the destination passed to Bind is nil.
	ErrNilDestination = errors.New("decode: destination can not be nil")

	// ErrNilRows is returned when the rows passed to Bind is nil.
	ErrNilRows = errors.New("decode: rows can not be nil")

	// ErrPointerRequired is returned when the destination is not a pointer.
	ErrPointerRequired = errors.New("decode: destination must be a pointer")

	// ErrTooManyRows is returned by SingleRowResultMap when the query
	// produced more than one row.
	ErrTooManyRows = errors.New("decode: too many rows in result set")

	// ErrRawBytesScan is returned when a destination field resolves to
	// *sql.RawBytes, whose backing memory is only valid until the next
	// Scan call and so cannot be held past a single row.
	ErrRawBytesScan = errors.New("decode: sql.RawBytes isn't allowed on scan")
)
