package clade

import (
	"cladeshift/domain/tree"
)

// Assign greedily selects non-overlapping qualifying clades until no
// tip-disjoint qualifying candidate remains. Qualification is static, so
// only the overlap filter is recomputed per iteration. The returned
// Selection may be empty; that is a valid result.
//
// Each iteration removes at least min_targeted >= 1 targeted tips from the
// unassigned set, so iterations are bounded by the targeted tip count.
func Assign(t *tree.Tree, candidates []Candidate, policy Policy) Selection {
	sel := Selection{Dataset: t.Dataset()}
	assigned := make([]bool, t.TipCount())

	for {
		pick := -1
		for i, c := range candidates {
			if !c.Qualifies {
				continue
			}
			if !tipDisjoint(t, c.Node, assigned) {
				continue
			}
			// Candidates arrive in pre-order and the comparator is strict,
			// so the earliest pre-order position wins every tie.
			if pick < 0 || ranksAbove(policy, c, candidates[pick]) {
				pick = i
			}
		}
		if pick < 0 {
			break
		}

		chosen := candidates[pick]
		sel.Clades = append(sel.Clades, SelectedClade{
			Node:       chosen.Node,
			Label:      t.Label(chosen.Node),
			Stats:      chosen.Stats,
			SampleIDs:  t.TipSampleIDs(chosen.Node),
			Enrichment: chosen.Enrichment,
		})

		start, end := t.TipRange(chosen.Node)
		for ord := start; ord < end; ord++ {
			assigned[ord] = true
		}
	}
	return sel
}

// tipDisjoint reports whether the node shares no tip with any previously
// selected clade. Chosen clades must stay pairwise tip-disjoint, so a
// candidate overlapping an earlier pick is excluded outright.
func tipDisjoint(t *tree.Tree, id tree.NodeID, assigned []bool) bool {
	start, end := t.TipRange(id)
	for ord := start; ord < end; ord++ {
		if assigned[ord] {
			return false
		}
	}
	return true
}

// ranksAbove reports whether a strictly outranks b under the policy.
func ranksAbove(policy Policy, a, b Candidate) bool {
	switch policy {
	case PolicyFirst:
		return false
	case PolicyLargest:
		return a.Stats.TotalTips > b.Stats.TotalTips
	case PolicySmallest:
		return a.Stats.TotalTips < b.Stats.TotalTips
	default: // PolicyBest
		if a.Stats.TargetedCount != b.Stats.TargetedCount {
			return a.Stats.TargetedCount > b.Stats.TargetedCount
		}
		if a.Stats.OtherCount != b.Stats.OtherCount {
			return a.Stats.OtherCount < b.Stats.OtherCount
		}
		return a.Stats.TotalTips < b.Stats.TotalTips
	}
}
