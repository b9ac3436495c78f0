package heuristic

import (
	"context"
	"testing"

	"cladeshift/domain/core"
	"cladeshift/ports"
)

func TestComputeShifts_Directions(t *testing.T) {
	abundance := map[string]map[core.SampleID]float64{
		"IL-6":  {"s1": 10, "s2": 12, "s3": 11, "s4": 1, "s5": 2},
		"IL-10": {"s1": 1, "s2": 2, "s3": 1, "s4": 9, "s5": 10},
		"CD4":   {"s1": 5, "s2": 5, "s3": 5, "s4": 5, "s5": 5},
	}
	c := NewComputer(abundance)

	rows, err := c.ComputeShifts(context.Background(), ports.ShiftRequest{
		Dataset:    "cell",
		Clade:      "left",
		SampleIDs:  []core.SampleID{"s1", "s2", "s3"},
		Complement: []core.SampleID{"s4", "s5"},
	})
	if err != nil {
		t.Fatalf("ComputeShifts failed: %v", err)
	}

	// Sorted element order: CD4, IL-10, IL-6.
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Element != "CD4" || rows[0].ObservedShift != 0 {
		t.Errorf("CD4 row = %+v, want no shift", rows[0])
	}
	if rows[1].Element != "IL-10" || rows[1].ObservedShift != -1 {
		t.Errorf("IL-10 row = %+v, want -1", rows[1])
	}
	if rows[2].Element != "IL-6" || rows[2].ObservedShift != 1 {
		t.Errorf("IL-6 row = %+v, want 1", rows[2])
	}
}

func TestComputeShifts_SkipsElementsWithoutCoverage(t *testing.T) {
	c := NewComputer(map[string]map[core.SampleID]float64{
		"orphan": {"x1": 3},
	})

	rows, err := c.ComputeShifts(context.Background(), ports.ShiftRequest{
		SampleIDs:  []core.SampleID{"s1"},
		Complement: []core.SampleID{"s2"},
	})
	if err != nil {
		t.Fatalf("ComputeShifts failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}
