package advisor

import (
	"github.com/dbrainlab/autoindex/utils"
	"github.com/dbrainlab/autoindex/workload"
)

// pruneUselessIndexes removes every candidate that no what-if plan chooses:
// each query is planned under the full candidate set, and a candidate that
// appears in none of the selected plans cannot improve the workload.
func (a *advisor) pruneUselessIndexes(candidates *IndexConfiguration, w *workload.Workload) (*IndexConfiguration, error) {
	if candidates.Count() == 0 {
		return candidates, nil
	}

	used := make(map[string]struct{})
	for _, q := range w.Queries() {
		entry, err := a.evaluator.queryCost(candidates, q)
		if err != nil {
			return nil, err
		}
		for _, key := range entry.usedIndexes {
			used[key] = struct{}{}
		}
	}

	pruned := NewIndexConfiguration()
	for _, idx := range candidates.List() {
		if _, ok := used[idx.Key()]; ok {
			pruned.Add(idx)
		} else {
			utils.Debugf("prune candidate %v: unused by every what-if plan", idx)
		}
	}
	return pruned, nil
}
