package utils

import (
	"fmt"
	"strings"

	"github.com/pingcap/parser"
	"github.com/pingcap/parser/ast"
	_ "github.com/pingcap/tidb/types/parser_driver"
)

// TableName identifies a table inside a schema.
type TableName struct {
	SchemaName string
	TableName  string
}

// Key returns the key of the table name.
func (t TableName) Key() string {
	return strings.ToLower(fmt.Sprintf("%v.%v", t.SchemaName, t.TableName))
}

// ParseOneSQL parses the given statement text and returns the AST.
func ParseOneSQL(sqlText string) (ast.StmtNode, error) {
	p := parser.New()
	return p.ParseOneStmt(sqlText, "", "")
}

// NormalizeDigest normalizes the given statement text and returns the
// normalized text and its digest.
func NormalizeDigest(sqlText string) (string, string) {
	return parser.NormalizeDigest(sqlText)
}

type tableNameCollector struct {
	defaultSchemaName string
	tableNames        Set[TableName]
}

func (c *tableNameCollector) Enter(n ast.Node) (out ast.Node, skipChildren bool) {
	if x, ok := n.(*ast.TableName); ok {
		if x.Schema.L == "" {
			c.tableNames.Add(TableName{SchemaName: c.defaultSchemaName, TableName: x.Name.L})
		} else {
			c.tableNames.Add(TableName{SchemaName: x.Schema.L, TableName: x.Name.L})
		}
	}
	return n, false
}

func (c *tableNameCollector) Leave(n ast.Node) (out ast.Node, ok bool) {
	return n, true
}

// CollectTableNames returns all table names referenced below the given node.
// Unqualified names are put under the default schema.
func CollectTableNames(defaultSchemaName string, node ast.Node) Set[TableName] {
	c := &tableNameCollector{
		defaultSchemaName: strings.ToLower(defaultSchemaName),
		tableNames:        NewSet[TableName](),
	}
	if node != nil {
		node.Accept(c)
	}
	return c.tableNames
}

// CollectTableNamesFromSQL parses the statement and returns all referenced
// table names.
func CollectTableNamesFromSQL(defaultSchemaName, sqlText string) (Set[TableName], error) {
	node, err := ParseOneSQL(sqlText)
	if err != nil {
		return nil, err
	}
	return CollectTableNames(defaultSchemaName, node), nil
}

// IsSystemSchemaName returns whether the given schema is a system schema that
// the advisor must never touch.
func IsSystemSchemaName(schemaName string) bool {
	switch strings.ToLower(schemaName) {
	case "information_schema", "metrics_schema", "performance_schema", "mysql", "pg_catalog":
		return true
	}
	return false
}
