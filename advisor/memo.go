package advisor

import (
	"fmt"
	"math"

	"github.com/pingcap/errors"

	"github.com/dbrainlab/autoindex/optimizer"
	"github.com/dbrainlab/autoindex/utils"
	"github.com/dbrainlab/autoindex/workload"
)

// whatIfEntry is one memoized what-if result.
type whatIfEntry struct {
	cost        float64
	usedIndexes []string // canonical keys of the configuration members the plan chose
}

// costEvaluator answers (configuration, query) cost questions through a memo.
// A memo hit never re-calls the optimizer; costs are pure with respect to the
// statistics snapshot of the run. Plan failures are recorded as +Inf so the
// search treats that branch as non-improving instead of retrying.
type costEvaluator struct {
	optimizer optimizer.WhatIfOptimizer
	memo      map[string]whatIfEntry
}

func newCostEvaluator(opt optimizer.WhatIfOptimizer) *costEvaluator {
	return &costEvaluator{optimizer: opt, memo: make(map[string]whatIfEntry)}
}

func memoKey(cfg *IndexConfiguration, q *workload.Query) string {
	return cfg.Key() + "|" + q.Key()
}

// queryCost returns the what-if cost of the query under the configuration.
func (ev *costEvaluator) queryCost(cfg *IndexConfiguration, q *workload.Query) (whatIfEntry, error) {
	key := memoKey(cfg, q)
	if entry, ok := ev.memo[key]; ok {
		return entry, nil
	}

	for _, idx := range cfg.List() {
		if err := ev.optimizer.CreateHypoIndex(idx.Hypo()); err != nil {
			return whatIfEntry{}, errors.Annotatef(err, "create hypothetical index %v", idx)
		}
	}
	if q.SchemaName != "" {
		if err := ev.optimizer.Execute(fmt.Sprintf("use %v", q.SchemaName)); err != nil {
			return whatIfEntry{}, errors.Annotatef(err, "switch to schema %v", q.SchemaName)
		}
	}
	plan, planErr := ev.optimizer.Explain(q.Text)
	for _, idx := range cfg.List() {
		if err := ev.optimizer.DropHypoIndex(idx.Hypo()); err != nil {
			return whatIfEntry{}, errors.Annotatef(err, "drop hypothetical index %v", idx)
		}
	}

	entry, err := ev.planEntry(cfg, plan, planErr)
	if err != nil {
		utils.Warningf("what-if planning failed for %q under %v: %v", q.Text, cfg, err)
		entry = whatIfEntry{cost: math.Inf(1)}
	}
	ev.memo[key] = entry
	return entry, nil
}

func (ev *costEvaluator) planEntry(cfg *IndexConfiguration, plan optimizer.Plan, planErr error) (whatIfEntry, error) {
	if planErr != nil {
		return whatIfEntry{}, planErr
	}
	cost, err := plan.RootCost()
	if err != nil {
		return whatIfEntry{}, err
	}

	hypoNames := make(map[string]string, cfg.Count()) // hypo index name -> canonical key
	for _, idx := range cfg.List() {
		hypoNames[idx.HypoIndexName()] = idx.Key()
	}
	var used []string
	for _, name := range plan.UsedIndexNames() {
		if key, ok := hypoNames[name]; ok {
			used = append(used, key)
		}
	}
	return whatIfEntry{cost: cost, usedIndexes: used}, nil
}

// workloadCost returns the summed per-query cost, weighted by frequency.
func (ev *costEvaluator) workloadCost(cfg *IndexConfiguration, w *workload.Workload) (float64, error) {
	total := 0.0
	for _, q := range w.Queries() {
		entry, err := ev.queryCost(cfg, q)
		if err != nil {
			return 0, err
		}
		freq := q.Frequency
		if freq < 1 {
			freq = 1
		}
		total += entry.cost * float64(freq)
	}
	return total, nil
}
