package optimizer

import (
	"fmt"
	"strings"
	"time"
)

// HypoIndex describes a hypothetical index for the what-if service.
type HypoIndex struct {
	SchemaName string
	TableName  string
	IndexName  string
	Columns    []string
}

// DDL returns the create-index statement for this index.
func (h HypoIndex) DDL() string {
	return fmt.Sprintf("CREATE INDEX %v ON %v.%v (%v)", h.IndexName, h.SchemaName, h.TableName, strings.Join(h.Columns, ", "))
}

// WhatIfOptimizerStats counts the traffic an advisor run sends to the
// optimizer.
type WhatIfOptimizerStats struct {
	ExecuteCount             int
	ExecuteTime              time.Duration
	CreateOrDropHypoIdxCount int
	CreateOrDropHypoIdxTime  time.Duration
	ExplainCount             int
	ExplainTime              time.Duration
}

func (s WhatIfOptimizerStats) Format() string {
	return fmt.Sprintf(`Execute(count/time): (%v/%v), CreateOrDropHypoIndex: (%v/%v), Explain: (%v/%v)`,
		s.ExecuteCount, s.ExecuteTime, s.CreateOrDropHypoIdxCount, s.CreateOrDropHypoIdxTime, s.ExplainCount, s.ExplainTime)
}

// WhatIfOptimizer is the costing service of an external optimizer that can
// plan queries as if a set of hypothetical indexes existed.
type WhatIfOptimizer interface {
	Execute(sql string) error
	Close() error // release the underlying database connection

	CreateHypoIndex(index HypoIndex) error
	DropHypoIndex(index HypoIndex) error

	// Explain returns the what-if plan of the query under the currently
	// created hypothetical indexes.
	Explain(query string) (Plan, error)

	ResetStats()
	Stats() WhatIfOptimizerStats
}
