package ports

import (
	"cladeshift/domain/combine"
	"cladeshift/domain/core"
)

// LabelReader loads the sample -> targeted mapping for a dataset.
type LabelReader interface {
	ReadLabels(path string) (map[core.SampleID]bool, error)
}

// ShiftTableReader loads externally produced (Element, Observed Shift)
// rows for a clade.
type ShiftTableReader interface {
	ReadShiftRows(path string) ([]combine.ShiftRow, error)
}
