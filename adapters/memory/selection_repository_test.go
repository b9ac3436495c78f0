package memory

import (
	"context"
	"testing"

	"cladeshift/domain/clade"
	"cladeshift/domain/combine"
	"cladeshift/domain/core"
)

func TestGetSelections_OrderedByDataset(t *testing.T) {
	repo := NewSelectionRepository()
	runID := core.RunID(core.NewID())

	for _, name := range []string{"microbes", "cells"} {
		err := repo.SaveSelection(context.Background(), runID, clade.Selection{Dataset: core.DatasetID(name)})
		if err != nil {
			t.Fatalf("SaveSelection failed: %v", err)
		}
	}

	got, err := repo.GetSelections(context.Background(), runID)
	if err != nil {
		t.Fatalf("GetSelections failed: %v", err)
	}
	if len(got) != 2 || got[0].Dataset != "cells" || got[1].Dataset != "microbes" {
		t.Errorf("selections = %+v", got)
	}
}

func TestGetSelections_UnknownRun(t *testing.T) {
	repo := NewSelectionRepository()

	_, err := repo.GetSelections(context.Background(), core.RunID(core.NewID()))
	if !core.IsNotFoundError(err) {
		t.Errorf("expected run-not-found error, got %v", err)
	}
}

func TestListCombinations_LabelOrder(t *testing.T) {
	repo := NewSelectionRepository()
	runID := core.RunID(core.NewID())

	for _, label := range []string{"002_Mnode10", "001_Cnode201_Mnode10"} {
		err := repo.SaveCombination(context.Background(), runID, combine.CombinationTable{Label: label})
		if err != nil {
			t.Fatalf("SaveCombination failed: %v", err)
		}
	}

	got, err := repo.ListCombinations(context.Background(), runID)
	if err != nil {
		t.Fatalf("ListCombinations failed: %v", err)
	}
	if len(got) != 2 || got[0].Label != "001_Cnode201_Mnode10" || got[1].Label != "002_Mnode10" {
		t.Errorf("combinations = %+v", got)
	}
}
