package advisor

import (
	"context"
	"math"

	"github.com/dbrainlab/autoindex/utils"
	"github.com/dbrainlab/autoindex/workload"
)

// scoredConfig orders configurations by (cost, member count, stable key).
// The order is total, so equally-cheap configurations still rank
// deterministically.
type scoredConfig struct {
	config *IndexConfiguration
	cost   float64
	count  int
	key    string
}

func (s *scoredConfig) betterThan(other *scoredConfig) bool {
	if other == nil {
		return true
	}
	if s.cost != other.cost {
		return s.cost < other.cost
	}
	if s.count != other.count {
		return s.count < other.count
	}
	return s.key < other.key
}

// enumerate picks up to k indexes out of the candidates: an exhaustive seed
// over subsets of bounded size, then greedy extension.
func (a *advisor) enumerate(ctx context.Context, candidates *IndexConfiguration, w *workload.Workload, k int) (*IndexConfiguration, error) {
	if k <= 0 || candidates.Count() == 0 {
		return NewIndexConfiguration(), nil
	}

	m := utils.Min(a.knobs.EnumerationThreshold, candidates.Count())
	seed, err := a.exhaustiveEnumeration(candidates, w, m)
	if err != nil {
		return nil, err
	}
	if k <= m {
		return truncateConfiguration(seed.config, k), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.greedyExtension(seed, candidates.Difference(seed.config), w, k)
}

// exhaustiveEnumeration scores every subset of size 1..m and returns the best.
func (a *advisor) exhaustiveEnumeration(candidates *IndexConfiguration, w *workload.Workload, m int) (*scoredConfig, error) {
	var best *scoredConfig
	for size := 1; size <= m; size++ {
		for _, subset := range candidates.Subsets(size) {
			cost, err := a.evaluator.workloadCost(subset, w)
			if err != nil {
				return nil, err
			}
			scored := &scoredConfig{config: subset, cost: cost, count: size, key: subset.Key()}
			if scored.betterThan(best) {
				best = scored
			}
		}
	}
	return best, nil
}

// truncateConfiguration keeps the k members with the smallest canonical keys.
func truncateConfiguration(cfg *IndexConfiguration, k int) *IndexConfiguration {
	if cfg.Count() <= k {
		return cfg
	}
	truncated := NewIndexConfiguration()
	for _, idx := range cfg.List()[:k] {
		truncated.Add(idx)
	}
	return truncated
}

// greedyExtension grows the seed one index at a time. Each step adopts the
// remaining index with the cheapest extended configuration (ties to the
// smaller key) and stops as soon as no addition strictly improves the cost.
func (a *advisor) greedyExtension(seed *scoredConfig, remaining *IndexConfiguration, w *workload.Workload, k int) (*IndexConfiguration, error) {
	current := seed.config.Clone()
	currentCost := seed.cost
	remaining = remaining.Clone()

	for current.Count() < k && remaining.Count() > 0 {
		var bestIdx *IndexObject
		bestCost := math.Inf(1)
		for _, x := range remaining.List() {
			trial := current.Clone()
			trial.Add(x)
			cost, err := a.evaluator.workloadCost(trial, w)
			if err != nil {
				return nil, err
			}
			if cost < bestCost {
				bestCost, bestIdx = cost, x
			}
		}
		if bestIdx == nil || bestCost >= currentCost {
			break
		}
		current.Add(bestIdx)
		remaining.Remove(bestIdx)
		currentCost = bestCost
	}
	return current, nil
}
