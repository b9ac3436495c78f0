package ports

import (
	"context"

	"cladeshift/domain/clade"
	"cladeshift/domain/combine"
	"cladeshift/domain/core"
)

// SelectionRepository persists per-dataset selections and the combination
// tables derived from them.
type SelectionRepository interface {
	SaveSelection(ctx context.Context, runID core.RunID, sel clade.Selection) error
	GetSelections(ctx context.Context, runID core.RunID) ([]clade.Selection, error)
	SaveCombination(ctx context.Context, runID core.RunID, table combine.CombinationTable) error
	ListCombinations(ctx context.Context, runID core.RunID) ([]combine.CombinationTable, error)
}
