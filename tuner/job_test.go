package tuner

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/dbrainlab/autoindex/optimizer"
	"github.com/dbrainlab/autoindex/workload"
)

type fakeHistory struct {
	records []QueryRecord
	calls   atomic.Int32
}

func (h *fakeHistory) QueriesAfter(ts int64) ([]QueryRecord, error) {
	h.calls.Add(1)
	var out []QueryRecord
	for _, r := range h.records {
		if r.Timestamp > ts {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeSchemas struct {
	createStmts []string
}

func (s *fakeSchemas) LoadCatalog(*workload.Workload) (*workload.Catalog, error) {
	return workload.BuildCatalog("test", s.createStmts)
}

type fakeIndexCatalog struct {
	existing []ExistingIndex
}

func (c *fakeIndexCatalog) ExistingIndexes() ([]ExistingIndex, error) {
	return c.existing, nil
}

type fakeCommands struct {
	created []string
	dropped []string
}

func (c *fakeCommands) CreateIndex(idx optimizer.HypoIndex) error {
	c.created = append(c.created, idx.DDL())
	return nil
}

func (c *fakeCommands) DropIndex(schemaName, tableName, indexName string) error {
	c.dropped = append(c.dropped, fmt.Sprintf("%v.%v.%v", schemaName, tableName, indexName))
	return nil
}

// fakeWhatIf reports cost 100 with no hypothetical indexes and cost 50 with
// any, and lists every present hypo index as used by the plan.
type fakeWhatIf struct {
	hypos map[string]optimizer.HypoIndex
}

func newFakeWhatIf() *fakeWhatIf {
	return &fakeWhatIf{hypos: make(map[string]optimizer.HypoIndex)}
}

func (f *fakeWhatIf) Execute(string) error { return nil }
func (f *fakeWhatIf) Close() error         { return nil }

func (f *fakeWhatIf) CreateHypoIndex(idx optimizer.HypoIndex) error {
	f.hypos[idx.IndexName] = idx
	return nil
}

func (f *fakeWhatIf) DropHypoIndex(idx optimizer.HypoIndex) error {
	delete(f.hypos, idx.IndexName)
	return nil
}

func (f *fakeWhatIf) Explain(string) (optimizer.Plan, error) {
	cost := 100.0
	if len(f.hypos) > 0 {
		cost = 50.0
	}
	plan := optimizer.Plan{{"Projection_1", "10.00", fmt.Sprintf("%.2f", cost), "root", "", ""}}
	for name, h := range f.hypos {
		plan = append(plan, []string{"IndexRangeScan_2", "10.00", "0.00", "cop[tikv]",
			fmt.Sprintf("table:%s, index:%s(x)", h.TableName, name), ""})
	}
	return plan, nil
}

func (f *fakeWhatIf) ResetStats()                           {}
func (f *fakeWhatIf) Stats() optimizer.WhatIfOptimizerStats { return optimizer.WhatIfOptimizerStats{} }

func testSettings() Settings {
	s := DefaultSettings()
	s.NumQueriesThreshold = 10
	s.MaxIndexCols = 1
	s.EnumerationThreshold = 2
	s.NumIndexes = 2
	s.WaitInterval = Duration{time.Minute}
	return s
}

func historyRecords(n int) []QueryRecord {
	var records []QueryRecord
	for i := 1; i <= n; i++ {
		column := "a"
		if i%2 == 0 {
			column = "b"
		}
		records = append(records, QueryRecord{
			Timestamp: int64(i),
			SQLText:   fmt.Sprintf("select * from t where %v = %v", column, i),
		})
	}
	return records
}

func newTestJob(records []QueryRecord) (*Job, *fakeHistory, *fakeCommands) {
	history := &fakeHistory{records: records}
	commands := &fakeCommands{}
	job := NewJob(testSettings(), "test", JobDeps{
		History:   history,
		Schemas:   &fakeSchemas{createStmts: []string{"create table t (a int, b int)"}},
		Indexes:   &fakeIndexCatalog{existing: []ExistingIndex{{ID: 1, SchemaName: "test", TableName: "t", IndexName: "idx_old", Columns: []string{"b"}}}},
		Commands:  commands,
		Optimizer: newFakeWhatIf(),
	})
	return job, history, commands
}

func TestTickBelowThresholdDoesNothing(t *testing.T) {
	job, _, commands := newTestJob(historyRecords(9))

	require.NoError(t, job.Tick(context.Background()))
	require.Empty(t, commands.dropped)
	require.Empty(t, commands.created)
	require.Equal(t, int64(0), job.LastTimestamp()) // the high-water mark does not advance
}

func TestTickRunsTuningPass(t *testing.T) {
	job, history, commands := newTestJob(historyRecords(11))

	require.NoError(t, job.Tick(context.Background()))
	require.Equal(t, []string{"test.t.idx_old"}, commands.dropped)
	require.NotEmpty(t, commands.created)
	require.Equal(t, int64(11), job.LastTimestamp())

	// everything was consumed: the next tick is below the threshold again
	require.NoError(t, job.Tick(context.Background()))
	require.Equal(t, int64(11), job.LastTimestamp())
	require.GreaterOrEqual(t, int(history.calls.Load()), 2)
	require.Equal(t, []string{"test.t.idx_old"}, commands.dropped) // no second drop round
}

func TestRunDisabled(t *testing.T) {
	settings := testSettings()
	settings.BrainEnabled = false
	job := NewJob(settings, "test", JobDeps{})
	require.NoError(t, job.Run(context.Background()))
}

func TestRunTicksOnClock(t *testing.T) {
	mock := clock.NewMock()
	history := &fakeHistory{records: historyRecords(3)}
	job := NewJob(testSettings(), "test", JobDeps{
		History:   history,
		Schemas:   &fakeSchemas{createStmts: []string{"create table t (a int, b int)"}},
		Indexes:   &fakeIndexCatalog{},
		Commands:  &fakeCommands{},
		Optimizer: newFakeWhatIf(),
		Clock:     mock,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- job.Run(ctx) }()

	require.Eventually(t, func() bool {
		mock.Add(time.Minute)
		return history.calls.Load() >= 2
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
