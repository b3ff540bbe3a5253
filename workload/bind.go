package workload

import (
	"github.com/pingcap/errors"
	"github.com/pingcap/parser/ast"
	"github.com/pingcap/parser/types"

	"github.com/dbrainlab/autoindex/utils"
)

// ErrUnboundColumn is reported when a referenced column cannot be resolved to
// exactly one catalog column.
var ErrUnboundColumn = errors.New("unbound column reference")

// ColumnRef is a column reference fully bound against the catalog.
type ColumnRef struct {
	DBID     int64
	TableID  int64
	ColumnID int64

	SchemaName string
	TableName  string
	ColumnName string
	Tp         *types.FieldType
}

// Indexable reports whether the referenced column may back an index.
func (r ColumnRef) Indexable() bool {
	return IndexableType(r.Tp)
}

// Scope is the set of tables a statement (or subquery) may reference,
// resolved against the catalog.
type Scope struct {
	defaultSchema string
	catalog       *Catalog
	tables        []*TableSchema
}

// NewScope resolves the table references below the given FROM (or target
// table) node. Tables missing from the catalog stay out of the scope, so
// their columns later fail to bind.
func NewScope(catalog *Catalog, defaultSchema string, from ast.Node) *Scope {
	s := &Scope{defaultSchema: defaultSchema, catalog: catalog}
	for _, name := range utils.CollectTableNames(defaultSchema, from).ToList() {
		if t, ok := catalog.Table(name.SchemaName, name.TableName); ok {
			s.tables = append(s.tables, t)
		}
	}
	return s
}

// ResolveColumn binds one parsed column name to a catalog column.
// Qualified names resolve directly; unqualified names must match exactly one
// column across the tables in scope.
func (s *Scope) ResolveColumn(name *ast.ColumnName) (ColumnRef, error) {
	schemaName := name.Schema.L
	if schemaName == "" {
		schemaName = s.defaultSchema
	}

	if name.Table.L != "" {
		for _, t := range s.tables {
			if t.SchemaName != schemaName || t.Name != name.Table.L {
				continue
			}
			col, ok := t.Column(name.Name.L)
			if !ok {
				return ColumnRef{}, errors.Annotatef(ErrUnboundColumn, "no column %v in %v.%v", name.Name.L, t.SchemaName, t.Name)
			}
			return newColumnRef(t, col), nil
		}
		return ColumnRef{}, errors.Annotatef(ErrUnboundColumn, "table %v.%v is not in scope", schemaName, name.Table.L)
	}

	var found ColumnRef
	matches := 0
	for _, t := range s.tables {
		if t.SchemaName != schemaName {
			continue
		}
		if col, ok := t.Column(name.Name.L); ok {
			found = newColumnRef(t, col)
			matches++
		}
	}
	switch matches {
	case 0:
		return ColumnRef{}, errors.Annotatef(ErrUnboundColumn, "column %v not found in scope", name.Name.L)
	case 1:
		return found, nil
	default:
		return ColumnRef{}, errors.Annotatef(ErrUnboundColumn, "column %v is ambiguous", name.Name.L)
	}
}

func newColumnRef(t *TableSchema, c *ColumnSchema) ColumnRef {
	return ColumnRef{
		DBID:       t.DBID,
		TableID:    t.ID,
		ColumnID:   c.ID,
		SchemaName: t.SchemaName,
		TableName:  t.Name,
		ColumnName: c.Name,
		Tp:         c.Tp,
	}
}
