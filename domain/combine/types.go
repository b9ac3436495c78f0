package combine

import (
	"cladeshift/domain/core"
)

// ShiftRow is one externally computed result row for a clade: an element
// and the direction of its observed shift (1, -1, or 0).
type ShiftRow struct {
	Element       string  `json:"element"`
	ObservedShift float64 `json:"observed_shift"`
}

// CladeResult pairs one selected clade with its result rows.
type CladeResult struct {
	Clade string     `json:"clade"`
	Rows  []ShiftRow `json:"rows"`
}

// DatasetResults holds one dataset's clade results in selection order.
type DatasetResults struct {
	Dataset core.DatasetID `json:"dataset"`
	Clades  []CladeResult  `json:"clades"`
}

// Member records which clade a dataset contributed to a combination.
type Member struct {
	Dataset core.DatasetID `json:"dataset"`
	Clade   string         `json:"clade"`
}

// CombinationTable is one materialized joint result set: one clade chosen
// per included dataset, rows merged by element identity. Rows own copies
// of the merged scalars, independent of any tree.
type CombinationTable struct {
	Label   string     `json:"label"`
	Members []Member   `json:"members"`
	Rows    []ShiftRow `json:"rows"`
}

// SignificanceFunc is the external predicate deciding whether a dataset
// contributes a statistically significant feature for a grouping. The
// engine treats it as opaque.
type SignificanceFunc func(dataset core.DatasetID, grouping []core.DatasetID) bool

// AlwaysSignificant includes every dataset in every grouping.
func AlwaysSignificant(core.DatasetID, []core.DatasetID) bool { return true }
