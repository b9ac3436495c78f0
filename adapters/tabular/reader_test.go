package tabular

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"cladeshift/domain/combine"
	"cladeshift/domain/core"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestReadLabels_CSVWithHeader(t *testing.T) {
	path := writeTemp(t, "labels.csv", "sample_id,target\ns1,Y\ns2,N\ns3,y\n")

	labels, err := NewReader().ReadLabels(path)
	if err != nil {
		t.Fatalf("ReadLabels failed: %v", err)
	}
	want := map[core.SampleID]bool{"s1": true, "s2": false, "s3": true}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("labels = %v, want %v", labels, want)
	}
}

func TestReadLabels_NoHeader(t *testing.T) {
	path := writeTemp(t, "labels.csv", "s1,Y\ns2,N\n")

	labels, err := NewReader().ReadLabels(path)
	if err != nil {
		t.Fatalf("ReadLabels failed: %v", err)
	}
	if len(labels) != 2 || !labels["s1"] || labels["s2"] {
		t.Errorf("labels = %v", labels)
	}
}

func TestReadLabels_InvalidValue(t *testing.T) {
	path := writeTemp(t, "labels.csv", "sample,target\ns1,maybe\n")

	if _, err := NewReader().ReadLabels(path); err == nil {
		t.Error("expected error for invalid label value")
	}
}

func TestReadShiftRows_CSV(t *testing.T) {
	path := writeTemp(t, "shifts.csv", "Element,Observed Shift\nIL-6,1\nIL-10,-1\n,5\n")

	rows, err := NewReader().ReadShiftRows(path)
	if err != nil {
		t.Fatalf("ReadShiftRows failed: %v", err)
	}
	want := []combine.ShiftRow{
		{Element: "IL-6", ObservedShift: 1},
		{Element: "IL-10", ObservedShift: -1},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

func TestReadShiftRows_MissingColumns(t *testing.T) {
	path := writeTemp(t, "shifts.csv", "Name,Value\nIL-6,1\n")

	if _, err := NewReader().ReadShiftRows(path); err == nil {
		t.Error("expected error for missing columns")
	}
}

func TestReadAbundance_CSV(t *testing.T) {
	path := writeTemp(t, "abundance.csv", "element,s1,s2,s3\nIL-6,10,11,\nIL-10,1,2,3\n")

	matrix, err := NewReader().ReadAbundance(path)
	if err != nil {
		t.Fatalf("ReadAbundance failed: %v", err)
	}
	if len(matrix) != 2 {
		t.Fatalf("got %d elements, want 2", len(matrix))
	}
	if matrix["IL-6"]["s1"] != 10 || matrix["IL-10"]["s3"] != 3 {
		t.Errorf("matrix = %v", matrix)
	}
	if _, ok := matrix["IL-6"]["s3"]; ok {
		t.Error("blank cell should be missing, not zero")
	}
}

func TestReadRows_MissingFile(t *testing.T) {
	if _, err := NewReader().ReadLabels(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
