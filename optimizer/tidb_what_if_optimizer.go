package optimizer

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/dbrainlab/autoindex/utils"
)

// TiDBWhatIfOptimizer is the what-if optimizer implementation for TiDB, built
// on its hypothetical-index feature.
type TiDBWhatIfOptimizer struct {
	db    *sql.DB
	stats WhatIfOptimizerStats
}

// NewTiDBWhatIfOptimizer creates a new TiDB what-if optimizer with the
// specified DSN.
func NewTiDBWhatIfOptimizer(DSN string) (WhatIfOptimizer, error) {
	utils.Debugf("connecting to %v", DSN)
	db, err := sql.Open("mysql", DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &TiDBWhatIfOptimizer{db: db}, nil
}

// ResetStats resets the statistics.
func (o *TiDBWhatIfOptimizer) ResetStats() {
	o.stats = WhatIfOptimizerStats{}
}

// Stats returns the statistics.
func (o *TiDBWhatIfOptimizer) Stats() WhatIfOptimizerStats {
	return o.stats
}

func (o *TiDBWhatIfOptimizer) recordStats(startTime time.Time, dur *time.Duration, counter *int) {
	*dur = *dur + time.Since(startTime)
	*counter = *counter + 1
}

// Execute executes the specified statement.
func (o *TiDBWhatIfOptimizer) Execute(sql string) error {
	defer o.recordStats(time.Now(), &o.stats.ExecuteTime, &o.stats.ExecuteCount)
	_, err := o.db.Exec(sql)
	return err
}

// Close releases the underlying database connection.
func (o *TiDBWhatIfOptimizer) Close() error {
	return o.db.Close()
}

// CreateHypoIndex creates a hypothetical index.
func (o *TiDBWhatIfOptimizer) CreateHypoIndex(index HypoIndex) error {
	defer o.recordStats(time.Now(), &o.stats.CreateOrDropHypoIdxTime, &o.stats.CreateOrDropHypoIdxCount)
	createStmt := fmt.Sprintf(`create index %v type hypo on %v.%v (%v)`,
		index.IndexName, index.SchemaName, index.TableName, strings.Join(index.Columns, ", "))
	err := o.Execute(createStmt)
	if err != nil {
		utils.Errorf("failed to create hypo index '%v': %v", createStmt, err)
	}
	return err
}

// DropHypoIndex drops a hypothetical index.
func (o *TiDBWhatIfOptimizer) DropHypoIndex(index HypoIndex) error {
	defer o.recordStats(time.Now(), &o.stats.CreateOrDropHypoIdxTime, &o.stats.CreateOrDropHypoIdxCount)
	return o.Execute(fmt.Sprintf("drop hypo index %v on %v.%v", index.IndexName, index.SchemaName, index.TableName))
}

// Explain returns the what-if plan of the specified query.
func (o *TiDBWhatIfOptimizer) Explain(query string) (Plan, error) {
	defer o.recordStats(time.Now(), &o.stats.ExplainTime, &o.stats.ExplainCount)
	result, err := o.db.Query("explain format = 'verbose' " + query)
	if err != nil {
		return nil, err
	}
	defer result.Close()
	var p Plan
	for result.Next() {
		// | id | estRows | estCost | task | access object | operator info |
		var id, estRows, estCost, task, obj, opInfo string
		if err = result.Scan(&id, &estRows, &estCost, &task, &obj, &opInfo); err != nil {
			return nil, err
		}
		p = append(p, []string{id, estRows, estCost, task, obj, opInfo})
	}
	return p, result.Err()
}
