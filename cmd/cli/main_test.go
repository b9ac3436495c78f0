package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"cladeshift/domain/combine"
	"cladeshift/domain/core"
)

func writeShiftFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write shift file: %v", err)
	}
	return path
}

func TestLoadShiftTables_SameCladeFilesMerge(t *testing.T) {
	// Two result files for the same selected clade are one row set, not
	// two alternative choices; disagreeing shifts collapse to 0.
	a := writeShiftFile(t, t.TempDir(), "cells__node201.csv",
		"Element,Observed Shift\nIL-6,1\nIL-10,-1\n")
	b := writeShiftFile(t, t.TempDir(), "cells__node201.csv",
		"Element,Observed Shift\nIL-6,-1\nCD4,1\n")

	results, err := loadShiftTables([]string{a, b})
	if err != nil {
		t.Fatalf("loadShiftTables failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("got %d datasets, want 1", len(results))
	}
	if got := len(results[0].Clades); got != 1 {
		t.Fatalf("got %d clade entries for cells, want 1 merged entry", got)
	}

	want := []combine.ShiftRow{
		{Element: "IL-6", ObservedShift: 0},
		{Element: "IL-10", ObservedShift: -1},
		{Element: "CD4", ObservedShift: 1},
	}
	if !reflect.DeepEqual(results[0].Clades[0].Rows, want) {
		t.Errorf("merged rows = %v, want %v", results[0].Clades[0].Rows, want)
	}
}

func TestLoadShiftTables_DistinctCladesStaySeparate(t *testing.T) {
	dir := t.TempDir()
	a := writeShiftFile(t, dir, "cells__node201.csv", "Element,Observed Shift\nIL-6,1\n")
	b := writeShiftFile(t, dir, "cells__node305.csv", "Element,Observed Shift\nIL-6,-1\n")
	c := writeShiftFile(t, dir, "microbes__node10.csv", "Element,Observed Shift\nP.g,1\n")

	results, err := loadShiftTables([]string{a, b, c})
	if err != nil {
		t.Fatalf("loadShiftTables failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d datasets, want 2", len(results))
	}
	if results[0].Dataset != core.DatasetID("cells") || len(results[0].Clades) != 2 {
		t.Errorf("cells = %+v", results[0])
	}
	if results[1].Dataset != core.DatasetID("microbes") || len(results[1].Clades) != 1 {
		t.Errorf("microbes = %+v", results[1])
	}
	if results[0].Clades[0].Clade != "node201" || results[0].Clades[1].Clade != "node305" {
		t.Errorf("clade order = %s, %s", results[0].Clades[0].Clade, results[0].Clades[1].Clade)
	}
}
