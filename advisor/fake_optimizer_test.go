package advisor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pingcap/errors"

	"github.com/dbrainlab/autoindex/optimizer"
)

// fakeOptimizer is a deterministic in-memory what-if service. Each query has
// a base cost (default 100); per-query gains declare the cost when the plan
// uses a hypothetical index with a given signature, e.g. `t(a,b)`. The plan
// picks the strictly cheapest applicable hypo index (ties to the smaller
// name) and reports it in the access-object column.
type fakeOptimizer struct {
	base    map[string]float64
	gains   map[string]map[string]float64
	failing map[string]bool

	hypos        map[string]optimizer.HypoIndex
	explainCalls int
	stats        optimizer.WhatIfOptimizerStats
}

func newFakeOptimizer() *fakeOptimizer {
	return &fakeOptimizer{
		base:    make(map[string]float64),
		gains:   make(map[string]map[string]float64),
		failing: make(map[string]bool),
		hypos:   make(map[string]optimizer.HypoIndex),
	}
}

func (f *fakeOptimizer) setBase(query string, cost float64) {
	f.base[query] = cost
}

func (f *fakeOptimizer) setGain(query, signature string, cost float64) {
	if f.gains[query] == nil {
		f.gains[query] = make(map[string]float64)
	}
	f.gains[query][signature] = cost
}

func (f *fakeOptimizer) setFailing(query string) {
	f.failing[query] = true
}

func hypoSignature(h optimizer.HypoIndex) string {
	cols := append([]string{}, h.Columns...)
	sort.Strings(cols)
	return fmt.Sprintf("%s(%s)", strings.ToLower(h.TableName), strings.ToLower(strings.Join(cols, ",")))
}

func (f *fakeOptimizer) Execute(string) error { return nil }
func (f *fakeOptimizer) Close() error         { return nil }

func (f *fakeOptimizer) CreateHypoIndex(index optimizer.HypoIndex) error {
	f.hypos[index.IndexName] = index
	return nil
}

func (f *fakeOptimizer) DropHypoIndex(index optimizer.HypoIndex) error {
	delete(f.hypos, index.IndexName)
	return nil
}

func (f *fakeOptimizer) Explain(query string) (optimizer.Plan, error) {
	f.explainCalls++
	if f.failing[query] {
		return nil, errors.New("no plan")
	}

	cost, ok := f.base[query]
	if !ok {
		cost = 100
	}
	names := make([]string, 0, len(f.hypos))
	for name := range f.hypos {
		names = append(names, name)
	}
	sort.Strings(names)

	usedName, usedTable := "", ""
	for _, name := range names {
		h := f.hypos[name]
		if c, ok := f.gains[query][hypoSignature(h)]; ok && c < cost {
			cost, usedName, usedTable = c, name, h.TableName
		}
	}

	plan := optimizer.Plan{{"Projection_1", "10.00", fmt.Sprintf("%.2f", cost), "root", "", ""}}
	if usedName != "" {
		plan = append(plan, []string{
			"IndexRangeScan_2", "10.00", "0.00", "cop[tikv]",
			fmt.Sprintf("table:%s, index:%s(x)", usedTable, usedName), "",
		})
	}
	return plan, nil
}

func (f *fakeOptimizer) ResetStats() {
	f.stats = optimizer.WhatIfOptimizerStats{}
}

func (f *fakeOptimizer) Stats() optimizer.WhatIfOptimizerStats {
	return f.stats
}

var _ optimizer.WhatIfOptimizer = (*fakeOptimizer)(nil)
