package combine

import (
	"fmt"
	"strings"

	"cladeshift/domain/core"
)

// Combine enumerates every valid joint combination across the supplied
// datasets: for each non-empty subset of datasets whose members all pass
// the significance predicate, one clade is chosen per included dataset and
// the clades' rows are merged by element identity.
//
// A combination of {A} and one of {A,B} are both emitted; they are
// distinct evidentiary groupings, never deduplicated against each other.
//
// Enumeration order is fixed: subsets largest-first, within a size in
// lexicographic order of the supplied dataset order, and within a subset
// the cartesian product iterates each dataset's clades in selection order
// with the last dataset varying fastest. Identical inputs therefore
// produce byte-identical output order.
func Combine(results []DatasetResults, significant SignificanceFunc) []CombinationTable {
	if significant == nil {
		significant = AlwaysSignificant
	}

	// Datasets with an empty selection cannot contribute a clade.
	var usable []DatasetResults
	for _, dr := range results {
		if len(dr.Clades) > 0 {
			usable = append(usable, dr)
		}
	}
	if len(usable) == 0 {
		return nil
	}

	var tables []CombinationTable
	counter := 0

	for size := len(usable); size >= 1; size-- {
		forEachSubset(len(usable), size, func(idx []int) {
			grouping := make([]core.DatasetID, len(idx))
			for i, j := range idx {
				grouping[i] = usable[j].Dataset
			}
			for _, j := range idx {
				if !significant(usable[j].Dataset, grouping) {
					return
				}
			}

			choice := make([]int, len(idx))
			for {
				counter++
				tables = append(tables, materialize(usable, idx, choice, counter))
				if !advance(choice, idx, usable) {
					break
				}
			}
		})
	}
	return tables
}

// materialize builds one combination table from the current clade choice.
func materialize(usable []DatasetResults, idx, choice []int, ordinal int) CombinationTable {
	members := make([]Member, len(idx))
	rowSets := make([][]ShiftRow, len(idx))
	tags := make([]string, len(idx))

	for i, j := range idx {
		clade := usable[j].Clades[choice[i]]
		members[i] = Member{Dataset: usable[j].Dataset, Clade: clade.Clade}
		rowSets[i] = clade.Rows
		tags[i] = tag(usable[j].Dataset, clade.Clade)
	}

	return CombinationTable{
		Label:   fmt.Sprintf("%03d_%s", ordinal, strings.Join(tags, "_")),
		Members: members,
		Rows:    MergeRows(rowSets...),
	}
}

// tag builds the compact combination tag: first letter of the dataset,
// upper-cased, followed by the clade label.
func tag(dataset core.DatasetID, clade string) string {
	abbrev := "T"
	if len(dataset) > 0 {
		abbrev = strings.ToUpper(string(dataset)[:1])
	}
	return abbrev + clade
}

// advance steps the clade-choice odometer; the last dataset varies fastest.
func advance(choice, idx []int, usable []DatasetResults) bool {
	for i := len(choice) - 1; i >= 0; i-- {
		choice[i]++
		if choice[i] < len(usable[idx[i]].Clades) {
			return true
		}
		choice[i] = 0
	}
	return false
}

// forEachSubset visits every size-k index subset of [0, n) in
// lexicographic order.
func forEachSubset(n, k int, visit func(idx []int)) {
	idx := make([]int, k)
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == k {
			visit(idx)
			return
		}
		for i := start; i <= n-(k-depth); i++ {
			idx[depth] = i
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
}
