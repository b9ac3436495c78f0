package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"cladeshift/domain/combine"
	"cladeshift/domain/core"
)

// Reader loads label tables and observed-shift tables from CSV or XLSX
// files. Format is decided by extension.
type Reader struct{}

// NewReader creates a table reader for both file formats.
func NewReader() *Reader { return &Reader{} }

// ReadLabels reads a sample -> {Y,N} table. The first column holds sample
// ids, the second the label; a header row is skipped when present.
func (r *Reader) ReadLabels(path string) (map[core.SampleID]bool, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	labels := make(map[core.SampleID]bool)
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		sample := strings.TrimSpace(row[0])
		value := strings.TrimSpace(row[1])
		if sample == "" {
			continue
		}
		if i == 0 && !isLabelValue(value) {
			// Header row.
			continue
		}
		switch strings.ToUpper(value) {
		case "Y":
			labels[core.SampleID(sample)] = true
		case "N":
			labels[core.SampleID(sample)] = false
		default:
			return nil, fmt.Errorf("invalid label %q for sample %s in %s", value, sample, path)
		}
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("no labels found in %s", path)
	}
	return labels, nil
}

// ReadShiftRows reads (Element, Observed Shift) rows. Column positions are
// located by header name, case-insensitively, matching the pipeline's
// loose "starts with element" convention.
func (r *Reader) ReadShiftRows(path string) ([]combine.ShiftRow, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s must have a header row and at least one data row", path)
	}

	elementCol, shiftCol := -1, -1
	for i, h := range rows[0] {
		name := strings.ToLower(strings.TrimSpace(h))
		if elementCol < 0 && strings.HasPrefix(name, "element") {
			elementCol = i
		}
		if shiftCol < 0 && strings.HasPrefix(name, "observed") {
			shiftCol = i
		}
	}
	if elementCol < 0 || shiftCol < 0 {
		return nil, fmt.Errorf("%s missing Element or Observed Shift column", path)
	}

	var out []combine.ShiftRow
	for _, row := range rows[1:] {
		if len(row) <= elementCol || len(row) <= shiftCol {
			continue
		}
		element := strings.TrimSpace(row[elementCol])
		if element == "" {
			continue
		}
		shift, err := strconv.ParseFloat(strings.TrimSpace(row[shiftCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid observed shift for %s in %s: %w", element, path, err)
		}
		out = append(out, combine.ShiftRow{Element: element, ObservedShift: shift})
	}
	return out, nil
}

// ReadAbundance reads an element-by-sample matrix: the header row names
// samples (first cell ignored), each data row is an element followed by
// its per-sample values. Blank cells are treated as missing.
func (r *Reader) ReadAbundance(path string) (map[string]map[core.SampleID]float64, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 || len(rows[0]) < 2 {
		return nil, fmt.Errorf("%s must have a sample header row and at least one element row", path)
	}

	samples := make([]core.SampleID, len(rows[0]))
	for i, h := range rows[0][1:] {
		samples[i+1] = core.SampleID(strings.TrimSpace(h))
	}

	out := make(map[string]map[core.SampleID]float64)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		element := strings.TrimSpace(row[0])
		if element == "" {
			continue
		}
		values := make(map[core.SampleID]float64)
		for i := 1; i < len(row) && i < len(samples); i++ {
			cell := strings.TrimSpace(row[i])
			if cell == "" || samples[i] == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid abundance for %s/%s in %s: %w", element, samples[i], path, err)
			}
			values[samples[i]] = v
		}
		out[element] = values
	}
	return out, nil
}

func isLabelValue(v string) bool {
	switch strings.ToUpper(v) {
	case "Y", "N":
		return true
	}
	return false
}

func readRows(path string) ([][]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("table file not found: %s", path)
	}

	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer file.Close()

		reader := csv.NewReader(file)
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file: %w", err)
		}
		return rows, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	return rows, nil
}
