package driver

import (
	"fmt"

	// Registers the "sqlserver" database/sql driver name.
	_ "github.com/microsoft/go-mssqldb"

	"github.com/sqlcraft/sqlcraft/value"
)

type mssqlDriver struct{}

func (mssqlDriver) Tag() Tag              { return MSSQL }
func (mssqlDriver) SQLDriverName() string { return "sqlserver" }
func (mssqlDriver) Translator() Translator { return mssqlTranslator{} }

type mssqlTranslator struct{}

func (mssqlTranslator) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index+1)
}

func (mssqlTranslator) QuoteIdentifier(name string) string {
	return "[" + name + "]"
}

// PaginationClause implements MSSQL's OFFSET/FETCH form, which requires a
// preceding ORDER BY (see RequiresOrderBy/DefaultOrderBy).
func (mssqlTranslator) PaginationClause(offset, size uint64) string {
	return fmt.Sprintf("OFFSET %d ROWS FETCH NEXT %d ROWS ONLY", offset, size)
}

func (mssqlTranslator) RequiresOrderBy() bool  { return true }
func (mssqlTranslator) DefaultOrderBy() string { return "ORDER BY id DESC" }

func (mssqlTranslator) ProjectParam(v value.Value) (any, error) {
	return projectCommon(v)
}

func init() {
	register(mssqlDriver{})
}
