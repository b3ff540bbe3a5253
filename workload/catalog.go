package workload

import (
	"strings"

	"github.com/pingcap/errors"
	"github.com/pingcap/parser/ast"
	"github.com/pingcap/parser/mysql"
	"github.com/pingcap/parser/types"
	_ "github.com/pingcap/tidb/types/parser_driver"

	"github.com/dbrainlab/autoindex/utils"
)

// ColumnSchema is one column of a catalog table.
type ColumnSchema struct {
	ID   int64
	Name string
	Tp   *types.FieldType
}

// Indexable reports whether a column of this type may back an index.
func (c *ColumnSchema) Indexable() bool {
	return IndexableType(c.Tp)
}

// IndexableType reports whether a column of the given type may back an index.
// A nil type (schema loaded without type information) is assumed indexable.
func IndexableType(tp *types.FieldType) bool {
	if tp == nil {
		return true
	}
	switch tp.Tp {
	case mysql.TypeTiny, mysql.TypeShort, mysql.TypeInt24, mysql.TypeLong, mysql.TypeLonglong, mysql.TypeYear,
		mysql.TypeFloat, mysql.TypeDouble, mysql.TypeNewDecimal,
		mysql.TypeDuration, mysql.TypeDate, mysql.TypeDatetime, mysql.TypeTimestamp:
		return true
	case mysql.TypeVarchar, mysql.TypeString, mysql.TypeVarString:
		return tp.Flen <= 512
	}
	return false
}

// TableSchema is one table of the catalog.
type TableSchema struct {
	DBID       int64
	ID         int64
	SchemaName string
	Name       string
	Columns    []*ColumnSchema

	byName map[string]*ColumnSchema
}

// Column looks a column up by name.
func (t *TableSchema) Column(name string) (*ColumnSchema, bool) {
	c, ok := t.byName[strings.ToLower(name)]
	return c, ok
}

type databaseSchema struct {
	id     int64
	name   string
	tables map[string]*TableSchema
}

// Catalog holds the bound schemas of one advisor run. Every database, table
// and column carries a numeric id; ids are assigned in registration order so
// identical inputs always produce identical ids.
type Catalog struct {
	databases map[string]*databaseSchema

	nextDBID     int64
	nextTableID  int64
	nextColumnID int64
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{databases: make(map[string]*databaseSchema)}
}

// BuildCatalog builds a catalog from `CREATE TABLE` statements under the
// given default schema.
func BuildCatalog(defaultSchema string, createStmts []string) (*Catalog, error) {
	c := NewCatalog()
	for _, stmt := range createStmts {
		if err := c.AddTableFromCreateStmt(defaultSchema, stmt); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) database(name string) *databaseSchema {
	name = strings.ToLower(name)
	if db, ok := c.databases[name]; ok {
		return db
	}
	c.nextDBID++
	db := &databaseSchema{id: c.nextDBID, name: name, tables: make(map[string]*TableSchema)}
	c.databases[name] = db
	return db
}

// AddTableFromCreateStmt parses one `CREATE TABLE` statement and registers the
// table it defines.
func (c *Catalog) AddTableFromCreateStmt(defaultSchema, createSQL string) error {
	node, err := utils.ParseOneSQL(createSQL)
	if err != nil {
		return errors.Annotatef(err, "parse create table statement %q", createSQL)
	}
	create, ok := node.(*ast.CreateTableStmt)
	if !ok {
		return errors.Errorf("not a create table statement: %q", createSQL)
	}
	schemaName := create.Table.Schema.L
	if schemaName == "" {
		schemaName = strings.ToLower(defaultSchema)
	}

	db := c.database(schemaName)
	c.nextTableID++
	table := &TableSchema{
		DBID:       db.id,
		ID:         c.nextTableID,
		SchemaName: schemaName,
		Name:       create.Table.Name.L,
		byName:     make(map[string]*ColumnSchema),
	}
	for _, colDef := range create.Cols {
		c.nextColumnID++
		col := &ColumnSchema{
			ID:   c.nextColumnID,
			Name: colDef.Name.Name.L,
			Tp:   colDef.Tp,
		}
		table.Columns = append(table.Columns, col)
		table.byName[col.Name] = col
	}
	db.tables[table.Name] = table
	return nil
}

// Table looks a table up by schema and name.
func (c *Catalog) Table(schemaName, tableName string) (*TableSchema, bool) {
	db, ok := c.databases[strings.ToLower(schemaName)]
	if !ok {
		return nil, false
	}
	t, ok := db.tables[strings.ToLower(tableName)]
	return t, ok
}
