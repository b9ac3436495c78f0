package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cladeshift/domain/clade"
	"cladeshift/domain/combine"
	"cladeshift/domain/core"
	"cladeshift/ports"
)

// SelectionRepository is an in-memory SelectionRepository for CLI runs
// without a database and for tests.
type SelectionRepository struct {
	mu           sync.RWMutex
	selections   map[core.RunID]map[core.DatasetID]clade.Selection
	combinations map[core.RunID]map[string]combine.CombinationTable
}

// NewSelectionRepository creates an empty in-memory repository.
func NewSelectionRepository() *SelectionRepository {
	return &SelectionRepository{
		selections:   make(map[core.RunID]map[core.DatasetID]clade.Selection),
		combinations: make(map[core.RunID]map[string]combine.CombinationTable),
	}
}

var _ ports.SelectionRepository = (*SelectionRepository)(nil)

func (r *SelectionRepository) SaveSelection(_ context.Context, runID core.RunID, sel clade.Selection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selections[runID] == nil {
		r.selections[runID] = make(map[core.DatasetID]clade.Selection)
	}
	r.selections[runID][sel.Dataset] = sel
	return nil
}

func (r *SelectionRepository) GetSelections(_ context.Context, runID core.RunID) ([]clade.Selection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byDataset, ok := r.selections[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, runID)
	}
	out := make([]clade.Selection, 0, len(byDataset))
	for _, sel := range byDataset {
		out = append(out, sel)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dataset < out[j].Dataset })
	return out, nil
}

func (r *SelectionRepository) SaveCombination(_ context.Context, runID core.RunID, table combine.CombinationTable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.combinations[runID] == nil {
		r.combinations[runID] = make(map[string]combine.CombinationTable)
	}
	r.combinations[runID][table.Label] = table
	return nil
}

// ListCombinations returns tables in label order; labels carry zero-padded
// sequence numbers, so lexical order is generation order.
func (r *SelectionRepository) ListCombinations(_ context.Context, runID core.RunID) ([]combine.CombinationTable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byLabel := r.combinations[runID]
	out := make([]combine.CombinationTable, 0, len(byLabel))
	for _, table := range byLabel {
		out = append(out, table)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}
