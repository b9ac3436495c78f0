package testkit

import (
	"fmt"

	"cladeshift/domain/core"
	"cladeshift/domain/tree"
)

// Tip builds a leaf ParsedNode.
func Tip(id string) *tree.ParsedNode {
	return &tree.ParsedNode{SampleID: id}
}

// Clade builds an internal ParsedNode.
func Clade(label string, children ...*tree.ParsedNode) *tree.ParsedNode {
	return &tree.ParsedNode{Label: label, Children: children}
}

// BalancedTree builds a two-clade tree with nTargeted targeted tips under
// "case" and nOther non-targeted tips under "control", plus matching
// labels. Sample ids are t1..tN and c1..cM.
func BalancedTree(nTargeted, nOther int) (*tree.ParsedNode, map[core.SampleID]bool) {
	labels := make(map[core.SampleID]bool, nTargeted+nOther)

	caseClade := &tree.ParsedNode{Label: "case"}
	for i := 1; i <= nTargeted; i++ {
		id := fmt.Sprintf("t%d", i)
		caseClade.Children = append(caseClade.Children, Tip(id))
		labels[core.SampleID(id)] = true
	}

	controlClade := &tree.ParsedNode{Label: "control"}
	for i := 1; i <= nOther; i++ {
		id := fmt.Sprintf("c%d", i)
		controlClade.Children = append(controlClade.Children, Tip(id))
		labels[core.SampleID(id)] = false
	}

	return Clade("root", caseClade, controlClade), labels
}

// Abundance builds a per-element abundance matrix where elements in `up`
// are elevated in targeted samples and elements in `down` depressed.
// Useful with the heuristic shift computer.
func Abundance(labels map[core.SampleID]bool, up, down []string) map[string]map[core.SampleID]float64 {
	matrix := make(map[string]map[core.SampleID]float64)
	fill := func(element string, targetedVal, otherVal float64) {
		row := make(map[core.SampleID]float64, len(labels))
		for sid, targeted := range labels {
			if targeted {
				row[sid] = targetedVal
			} else {
				row[sid] = otherVal
			}
		}
		matrix[element] = row
	}
	for _, el := range up {
		fill(el, 10, 1)
	}
	for _, el := range down {
		fill(el, 1, 10)
	}
	return matrix
}
