package driver

import (
	"fmt"

	// Registers the "mysql" database/sql driver name.
	_ "github.com/go-sql-driver/mysql"

	"github.com/sqlcraft/sqlcraft/value"
)

type mysqlDriver struct{}

func (mysqlDriver) Tag() Tag              { return MySQL }
func (mysqlDriver) SQLDriverName() string { return "mysql" }
func (mysqlDriver) Translator() Translator { return mysqlTranslator{} }

type mysqlTranslator struct{}

func (mysqlTranslator) Placeholder(int) string { return "?" }

func (mysqlTranslator) QuoteIdentifier(name string) string {
	return "`" + name + "`"
}

// PaginationClause implements MySQL's positional LIMIT offset,size form.
func (mysqlTranslator) PaginationClause(offset, size uint64) string {
	return fmt.Sprintf("LIMIT %d,%d", offset, size)
}

func (mysqlTranslator) RequiresOrderBy() bool  { return false }
func (mysqlTranslator) DefaultOrderBy() string { return "" }

func (mysqlTranslator) ProjectParam(v value.Value) (any, error) {
	return projectCommon(v)
}

func init() {
	register(mysqlDriver{})
}
