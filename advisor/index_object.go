package advisor

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"github.com/dbrainlab/autoindex/optimizer"
	"github.com/dbrainlab/autoindex/workload"
)

// IndexColumn is one member column of a hypothetical index.
type IndexColumn struct {
	ID   int64
	Name string
}

// IndexObject is a hypothetical index identified by (db id, table id, column
// id set). Identity is by value on this triple; the column order inside the
// set is irrelevant. Names are carried only for DDL and logs.
type IndexObject struct {
	DBID       int64
	TableID    int64
	SchemaName string
	TableName  string

	columns map[int64]string // column id -> name
	key     string
}

// NewIndexObject creates a single-column index object over a bound column.
func NewIndexObject(ref workload.ColumnRef) IndexObject {
	o := IndexObject{
		DBID:       ref.DBID,
		TableID:    ref.TableID,
		SchemaName: ref.SchemaName,
		TableName:  ref.TableName,
		columns:    map[int64]string{ref.ColumnID: ref.ColumnName},
	}
	o.key = o.buildKey()
	return o
}

func (o IndexObject) buildKey() string {
	ids := make([]string, 0, len(o.columns))
	for _, id := range o.columnIDs() {
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	return fmt.Sprintf("%d.%d(%s)", o.DBID, o.TableID, strings.Join(ids, ","))
}

func (o IndexObject) columnIDs() []int64 {
	ids := make([]int64, 0, len(o.columns))
	for id := range o.columns {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Key returns the canonical string form of this index. It is the pool hash
// key and the tie-breaker everywhere a deterministic order is needed.
func (o IndexObject) Key() string {
	return o.key
}

// Columns returns the member columns, ordered by column id.
func (o IndexObject) Columns() []IndexColumn {
	cols := make([]IndexColumn, 0, len(o.columns))
	for _, id := range o.columnIDs() {
		cols = append(cols, IndexColumn{ID: id, Name: o.columns[id]})
	}
	return cols
}

// ColumnNames returns the member column names, ordered by column id.
func (o IndexObject) ColumnNames() []string {
	names := make([]string, 0, len(o.columns))
	for _, id := range o.columnIDs() {
		names = append(names, o.columns[id])
	}
	return names
}

// NumColumns returns the number of member columns.
func (o IndexObject) NumColumns() int {
	return len(o.columns)
}

// Compatible reports whether o and other can merge into one multi-column
// index of at most maxWidth columns.
func (o IndexObject) Compatible(other *IndexObject, maxWidth int) bool {
	if o.DBID != other.DBID || o.TableID != other.TableID {
		return false
	}
	width := len(o.columns)
	for id := range other.columns {
		if _, ok := o.columns[id]; !ok {
			width++
		}
	}
	return width <= maxWidth
}

// Merge returns the multi-column index over the union of both column sets.
// Callers must check Compatible first.
func (o IndexObject) Merge(other *IndexObject) IndexObject {
	merged := IndexObject{
		DBID:       o.DBID,
		TableID:    o.TableID,
		SchemaName: o.SchemaName,
		TableName:  o.TableName,
		columns:    make(map[int64]string, len(o.columns)+len(other.columns)),
	}
	for id, name := range o.columns {
		merged.columns[id] = name
	}
	for id, name := range other.columns {
		merged.columns[id] = name
	}
	merged.key = merged.buildKey()
	return merged
}

// HypoIndexName returns the deterministic name under which this index is
// created as a hypothetical index, so plan rows can be mapped back to it.
func (o IndexObject) HypoIndexName() string {
	name := fmt.Sprintf("hypo_%s_%s", o.TableName, strings.Join(o.ColumnNames(), "_"))
	if len(name) <= 64 {
		return name
	}
	h := fnv.New32a()
	h.Write([]byte(o.key))
	return fmt.Sprintf("hypo_%x", h.Sum32())
}

// Hypo returns the what-if representation of this index.
func (o IndexObject) Hypo() optimizer.HypoIndex {
	return optimizer.HypoIndex{
		SchemaName: o.SchemaName,
		TableName:  o.TableName,
		IndexName:  o.HypoIndexName(),
		Columns:    o.ColumnNames(),
	}
}

// String returns a readable form, e.g. `test.t(a,b)`.
func (o IndexObject) String() string {
	return fmt.Sprintf("%s.%s(%s)", o.SchemaName, o.TableName, strings.Join(o.ColumnNames(), ","))
}

// IndexObjectPool interns IndexObjects so every distinct value has exactly one
// shared reference. All identity comparisons downstream are then pointer
// comparisons. Not safe for concurrent use; an advisor run is single-threaded.
type IndexObjectPool struct {
	m map[string]*IndexObject
}

// NewIndexObjectPool creates an empty pool.
func NewIndexObjectPool() *IndexObjectPool {
	return &IndexObjectPool{m: make(map[string]*IndexObject)}
}

// Get returns the canonical reference for obj's value, if present.
func (p *IndexObjectPool) Get(obj IndexObject) (*IndexObject, bool) {
	ref, ok := p.m[obj.Key()]
	return ref, ok
}

// Put interns obj and returns its canonical reference. Value-equal arguments
// always return the identical reference.
func (p *IndexObjectPool) Put(obj IndexObject) *IndexObject {
	if ref, ok := p.m[obj.Key()]; ok {
		return ref
	}
	ref := new(IndexObject)
	*ref = obj
	p.m[obj.Key()] = ref
	return ref
}
