package advisor

import (
	"context"

	"github.com/dbrainlab/autoindex/optimizer"
	"github.com/dbrainlab/autoindex/utils"
	"github.com/dbrainlab/autoindex/workload"
)

// Knobs are the tunables of one advisor run.
type Knobs struct {
	// MaxIndexCols is the maximum number of columns per recommended index.
	MaxIndexCols int
	// EnumerationThreshold bounds the width of the exhaustive enumeration.
	EnumerationThreshold int
	// NumIndexes caps the number of recommended indexes.
	NumIndexes int
}

// DefaultKnobs returns the default tunables.
func DefaultKnobs() Knobs {
	return Knobs{MaxIndexCols: 3, EnumerationThreshold: 2, NumIndexes: 5}
}

func validateKnobs(k Knobs) Knobs {
	if k.NumIndexes < 1 {
		utils.Warningf("number of indexes should be at least 1, set from %v to 1", k.NumIndexes)
		k.NumIndexes = 1
	}
	if k.NumIndexes > 20 {
		utils.Warningf("number of indexes should be at most 20, set from %v to 20", k.NumIndexes)
		k.NumIndexes = 20
	}
	if k.MaxIndexCols < 1 {
		utils.Warningf("max index width should be at least 1, set from %v to 1", k.MaxIndexCols)
		k.MaxIndexCols = 1
	}
	if k.MaxIndexCols > 5 {
		utils.Warningf("max index width should be at most 5, set from %v to 5", k.MaxIndexCols)
		k.MaxIndexCols = 5
	}
	if k.EnumerationThreshold < 1 {
		utils.Warningf("enumeration threshold should be at least 1, set from %v to 1", k.EnumerationThreshold)
		k.EnumerationThreshold = 1
	}
	return k
}

// advisor is the state of one BestIndexes run. The pool and the memo live
// exactly as long as the run.
type advisor struct {
	catalog   *workload.Catalog
	pool      *IndexObjectPool
	evaluator *costEvaluator
	knobs     Knobs
}

// BestIndexes recommends a configuration of up to knobs.NumIndexes indexes
// minimizing the estimated workload cost. Statements the extractor cannot
// handle are skipped with a warning; a cancelled context aborts the run with
// no recommendation.
func BestIndexes(ctx context.Context, opt optimizer.WhatIfOptimizer, catalog *workload.Catalog, w *workload.Workload, knobs Knobs) (*IndexConfiguration, error) {
	a := &advisor{
		catalog:   catalog,
		pool:      NewIndexObjectPool(),
		evaluator: newCostEvaluator(opt),
		knobs:     validateKnobs(knobs),
	}
	return a.bestIndexes(ctx, w)
}

func (a *advisor) bestIndexes(ctx context.Context, w *workload.Workload) (*IndexConfiguration, error) {
	// Divide and conquer: the best candidates of each single-query workload
	// form the candidate set of the whole workload, which keeps the greedy
	// sweeps over the full workload small. The union of the admissible
	// single-column indexes is kept aside as the width-1 generation of the
	// multi-column expansion.
	candidates := NewIndexConfiguration()
	singleColumns := NewIndexConfiguration()
	for _, q := range w.Queries() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		admissible, err := extractAdmissibleIndexes(q, a.catalog, a.pool)
		if err != nil {
			if isStatementError(err) {
				utils.Warningf("skip query %q: %v", q.Text, err)
				continue
			}
			return nil, err
		}
		if admissible.Count() == 0 {
			continue
		}
		singleColumns.Merge(admissible)
		wi := workload.SingleQuery(q)
		admissible, err = a.pruneUselessIndexes(admissible, wi)
		if err != nil {
			return nil, err
		}
		best, err := a.enumerate(ctx, admissible, wi, a.knobs.EnumerationThreshold)
		if err != nil {
			return nil, err
		}
		candidates.Merge(best)
	}

	candidates, err := a.pruneUselessIndexes(candidates, w)
	if err != nil {
		return nil, err
	}

	for width := 2; width <= a.knobs.MaxIndexCols; width++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidates.Merge(a.crossProduct(candidates, singleColumns))
		candidates, err = a.pruneUselessIndexes(candidates, w)
		if err != nil {
			return nil, err
		}
	}

	utils.Debugf("enumerating %v candidates for %v queries", candidates.Count(), w.Size())
	return a.enumerate(ctx, candidates, w, a.knobs.NumIndexes)
}
