package clade

import (
	"gonum.org/v1/gonum/stat/distuv"

	"cladeshift/domain/tree"
)

// Evaluate scores every node of the tree against the thresholds, in
// pre-order. Pure function of (tree, thresholds): no side effects, and the
// output order is the traversal order downstream policies depend on.
func Evaluate(t *tree.Tree, th Thresholds) []Candidate {
	order := t.Preorder()
	out := make([]Candidate, 0, len(order))

	total := t.TipCount()
	targetFraction := 0.0
	if total > 0 {
		targetFraction = float64(t.TargetedTotal()) / float64(total)
	}

	for pos, id := range order {
		st := t.Stats(id)
		out = append(out, Candidate{
			Node:        id,
			PreorderPos: pos,
			Stats:       st,
			Qualifies: st.TargetedCount >= th.MinTargeted &&
				st.OtherCount <= th.MaxOtherSamples &&
				st.TotalTips <= th.MaxTotalSamples,
			Enrichment: enrichment(st, targetFraction),
		})
	}
	return out
}

// enrichment computes P(X >= targeted) for X ~ Binomial(total, p). Clades
// that concentrate targeted samples beyond the tree-wide fraction score
// close to zero.
func enrichment(st tree.CladeStats, p float64) float64 {
	if st.TotalTips == 0 || st.TargetedCount == 0 {
		return 1.0
	}
	if p <= 0 {
		return 1.0
	}
	if p >= 1 {
		return 1.0
	}
	b := distuv.Binomial{N: float64(st.TotalTips), P: p}
	// Survival(k-1) gives P(X >= k) for the discrete distribution.
	return b.Survival(float64(st.TargetedCount) - 1)
}
