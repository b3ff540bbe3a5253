package tuner

import (
	"database/sql"
	"fmt"

	"github.com/pingcap/errors"

	"github.com/dbrainlab/autoindex/optimizer"
	"github.com/dbrainlab/autoindex/utils"
	"github.com/dbrainlab/autoindex/workload"
)

// ExistingIndex is one physical secondary index currently in the database.
type ExistingIndex struct {
	ID         int64
	SchemaName string
	TableName  string
	IndexName  string
	Columns    []string
}

// IndexCatalog lists the physical indexes the tuner manages.
type IndexCatalog interface {
	ExistingIndexes() ([]ExistingIndex, error)
}

// SchemaLoader builds the bound schema catalog for a workload.
type SchemaLoader interface {
	LoadCatalog(w *workload.Workload) (*workload.Catalog, error)
}

// IndexCommands issues the create/drop index commands of a recommendation.
type IndexCommands interface {
	CreateIndex(idx optimizer.HypoIndex) error
	DropIndex(schemaName, tableName, indexName string) error
}

type sqlIndexCatalog struct {
	db     *sql.DB
	schema string
}

// NewIndexCatalog lists the secondary indexes of one schema through
// information_schema.
func NewIndexCatalog(db *sql.DB, schema string) IndexCatalog {
	return &sqlIndexCatalog{db: db, schema: schema}
}

func (c *sqlIndexCatalog) ExistingIndexes() ([]ExistingIndex, error) {
	rows, err := c.db.Query(`select table_schema, table_name, index_name, column_name
		from information_schema.statistics
		where table_schema = ? and index_name != 'PRIMARY'
		order by table_schema, table_name, index_name, seq_in_index`, c.schema)
	if err != nil {
		return nil, errors.Annotatef(ErrCatalogUnavailable, "read index catalog: %v", err)
	}
	defer rows.Close()

	var indexes []ExistingIndex
	for rows.Next() {
		var schemaName, tableName, indexName, columnName string
		if err := rows.Scan(&schemaName, &tableName, &indexName, &columnName); err != nil {
			return nil, errors.Annotatef(ErrCatalogUnavailable, "scan index catalog: %v", err)
		}
		n := len(indexes)
		if n > 0 && indexes[n-1].SchemaName == schemaName && indexes[n-1].TableName == tableName && indexes[n-1].IndexName == indexName {
			indexes[n-1].Columns = append(indexes[n-1].Columns, columnName)
			continue
		}
		indexes = append(indexes, ExistingIndex{
			ID:         int64(n + 1),
			SchemaName: schemaName,
			TableName:  tableName,
			IndexName:  indexName,
			Columns:    []string{columnName},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Annotatef(ErrCatalogUnavailable, "read index catalog: %v", err)
	}
	return indexes, nil
}

type sqlSchemaLoader struct {
	db *sql.DB
}

// NewSchemaLoader builds catalogs from `show create table` output for every
// table the workload references.
func NewSchemaLoader(db *sql.DB) SchemaLoader {
	return &sqlSchemaLoader{db: db}
}

func (l *sqlSchemaLoader) LoadCatalog(w *workload.Workload) (*workload.Catalog, error) {
	tables := utils.NewSet[utils.TableName]()
	for _, q := range w.Queries() {
		tables.AddSet(utils.CollectTableNames(q.SchemaName, q.Stmt))
	}

	catalog := workload.NewCatalog()
	for _, t := range tables.ToList() {
		if utils.IsSystemSchemaName(t.SchemaName) {
			continue
		}
		var name, createSQL string
		row := l.db.QueryRow(fmt.Sprintf("show create table `%v`.`%v`", t.SchemaName, t.TableName))
		if err := row.Scan(&name, &createSQL); err != nil {
			return nil, errors.Annotatef(ErrCatalogUnavailable, "show create table %v.%v: %v", t.SchemaName, t.TableName, err)
		}
		if err := catalog.AddTableFromCreateStmt(t.SchemaName, createSQL); err != nil {
			return nil, errors.Annotatef(ErrCatalogUnavailable, "register table %v.%v: %v", t.SchemaName, t.TableName, err)
		}
	}
	return catalog, nil
}

type sqlIndexCommands struct {
	db *sql.DB
}

// NewIndexCommands issues index DDL through the given connection.
func NewIndexCommands(db *sql.DB) IndexCommands {
	return &sqlIndexCommands{db: db}
}

func (c *sqlIndexCommands) CreateIndex(idx optimizer.HypoIndex) error {
	_, err := c.db.Exec(idx.DDL())
	return err
}

func (c *sqlIndexCommands) DropIndex(schemaName, tableName, indexName string) error {
	_, err := c.db.Exec(fmt.Sprintf("drop index %v on %v.%v", indexName, schemaName, tableName))
	return err
}
