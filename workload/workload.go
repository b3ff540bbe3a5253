package workload

import (
	"fmt"
	"strings"

	"github.com/pingcap/parser/ast"
	_ "github.com/pingcap/tidb/types/parser_driver"

	"github.com/dbrainlab/autoindex/utils"
)

// Query is one bound statement of a workload.
type Query struct {
	SchemaName string
	Text       string
	Frequency  int
	Stmt       ast.StmtNode
}

// ParseQuery parses the statement text under the given default schema.
func ParseQuery(schemaName, text string) (*Query, error) {
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), ";"))
	stmt, err := utils.ParseOneSQL(text)
	if err != nil {
		return nil, err
	}
	return &Query{
		SchemaName: strings.ToLower(schemaName),
		Text:       text,
		Frequency:  1,
		Stmt:       stmt,
	}, nil
}

// Key returns the memo identity of this query: its schema-qualified textual
// form. Two independently parsed copies of the same statement share it.
func (q *Query) Key() string {
	return fmt.Sprintf("%v/%v", q.SchemaName, q.Text)
}

// Workload is an ordered sequence of queries. The order carries no meaning for
// the advisor but is preserved so runs iterate deterministically.
type Workload struct {
	queries []*Query
}

// NewWorkload creates a workload over the given queries.
func NewWorkload(queries ...*Query) *Workload {
	w := &Workload{}
	for _, q := range queries {
		w.Add(q)
	}
	return w
}

// Add appends a query to the workload.
func (w *Workload) Add(q *Query) {
	w.queries = append(w.queries, q)
}

// Queries returns the queries in insertion order.
func (w *Workload) Queries() []*Query {
	return w.queries
}

// Size returns the number of queries.
func (w *Workload) Size() int {
	return len(w.queries)
}

// SingleQuery wraps one query as a workload of its own.
func SingleQuery(q *Query) *Workload {
	return NewWorkload(q)
}
