package driver

import (
	"fmt"

	// Registers the "sqlite3" database/sql driver name.
	_ "github.com/mattn/go-sqlite3"

	"github.com/sqlcraft/sqlcraft/value"
)

type sqliteDriver struct{}

func (sqliteDriver) Tag() Tag              { return SQLite }
func (sqliteDriver) SQLDriverName() string { return "sqlite3" }
func (sqliteDriver) Translator() Translator { return sqliteTranslator{} }

type sqliteTranslator struct{}

func (sqliteTranslator) Placeholder(int) string { return "?" }

func (sqliteTranslator) QuoteIdentifier(name string) string {
	return `"` + name + `"`
}

func (sqliteTranslator) PaginationClause(offset, size uint64) string {
	return fmt.Sprintf("LIMIT %d OFFSET %d", size, offset)
}

func (sqliteTranslator) RequiresOrderBy() bool  { return false }
func (sqliteTranslator) DefaultOrderBy() string { return "" }

func (sqliteTranslator) ProjectParam(v value.Value) (any, error) {
	return projectCommon(v)
}

func init() {
	register(sqliteDriver{})
}
