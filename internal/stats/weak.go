package stats

import (
	"sort"

	"github.com/verte-zerg/tuimath/internal/arith"
	"github.com/verte-zerg/tuimath/internal/model"
)

// SelectWeakOps selects the lowest-accuracy operators from aggregates.
func SelectWeakOps(aggs []model.OpAggregate, top int) map[arith.Op]struct{} {
	weakSet := map[arith.Op]struct{}{}
	if len(aggs) == 0 {
		return weakSet
	}
	candidates := make([]model.OpAggregate, len(aggs))
	copy(candidates, aggs)
	sort.Slice(candidates, func(i, j int) bool {
		ai := accuracy(candidates[i])
		aj := accuracy(candidates[j])
		if ai == aj {
			return candidates[i].Op < candidates[j].Op
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for i := 0; i < top; i++ {
		op, err := arith.ParseOp(candidates[i].Op)
		if err != nil {
			continue
		}
		weakSet[op] = struct{}{}
	}
	return weakSet
}

func accuracy(agg model.OpAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}
