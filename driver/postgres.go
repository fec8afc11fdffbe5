package driver

import (
	"fmt"

	// Registers the "pgx" database/sql driver name.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sqlcraft/sqlcraft/value"
)

type postgresDriver struct{}

func (postgresDriver) Tag() Tag              { return PostgreSQL }
func (postgresDriver) SQLDriverName() string { return "pgx" }
func (postgresDriver) Translator() Translator { return postgresTranslator{} }

// postgresTranslator numbers placeholders sequentially; the generator
// tracks the running count across a whole statement and calls
// Placeholder with that running index.
type postgresTranslator struct{}

func (postgresTranslator) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index+1)
}

func (postgresTranslator) QuoteIdentifier(name string) string {
	return `"` + name + `"`
}

func (postgresTranslator) PaginationClause(offset, size uint64) string {
	return fmt.Sprintf("LIMIT %d OFFSET %d", size, offset)
}

func (postgresTranslator) RequiresOrderBy() bool  { return false }
func (postgresTranslator) DefaultOrderBy() string { return "" }

func (postgresTranslator) ProjectParam(v value.Value) (any, error) {
	return projectCommon(v)
}

func init() {
	register(postgresDriver{})
}
