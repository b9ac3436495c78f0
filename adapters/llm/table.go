package llm

import (
	"strings"

	"cladeshift/domain/combine"
)

// expectation is one parsed row of the model's joint-shift table.
type expectation struct {
	Shift string // "1", "-1", "0", or "X"
	Group string
}

// agreementRow is an observed row whose direction the model's expectation
// confirmed, kept with its group for the interpretation prompt.
type agreementRow struct {
	Element  string
	Observed float64
	Expected string
	Group    string
}

// extractPipeTable keeps only the pipe-separated lines of a model
// response, trimming cells and dropping rows with fewer than minCols
// parts. Markdown separator rows (all dashes) are discarded.
func extractPipeTable(raw string, minCols int) [][]string {
	var rows [][]string
	for _, line := range strings.Split(raw, "\n") {
		if !strings.Contains(line, "|") {
			continue
		}
		parts := strings.Split(line, "|")
		cells := make([]string, 0, len(parts))
		nonEmpty := false
		for _, p := range parts {
			c := strings.TrimSpace(p)
			cells = append(cells, c)
			if c != "" {
				nonEmpty = true
			}
		}
		// Leading/trailing pipes produce empty edge cells.
		for len(cells) > 0 && cells[0] == "" {
			cells = cells[1:]
		}
		for len(cells) > 0 && cells[len(cells)-1] == "" {
			cells = cells[:len(cells)-1]
		}
		if len(cells) < minCols || !nonEmpty || isSeparatorRow(cells) {
			continue
		}
		rows = append(rows, cells)
	}
	return rows
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}

// parseExpectations reads the joint-shift table into element -> expectation.
// Columns are located by header prefix; a headerless table falls back to
// positional (Element, Expected Shift, Group).
func parseExpectations(raw string) map[string]expectation {
	rows := extractPipeTable(raw, 2)
	if len(rows) == 0 {
		return nil
	}

	elementCol, shiftCol, groupCol := 0, 1, 2
	start := 0
	if isHeaderRow(rows[0]) {
		for i, h := range rows[0] {
			name := strings.ToLower(h)
			switch {
			case strings.HasPrefix(name, "element"):
				elementCol = i
			case strings.HasPrefix(name, "expected") || strings.Contains(name, "shift"):
				shiftCol = i
			case strings.HasPrefix(name, "group") || strings.Contains(name, "group"):
				groupCol = i
			}
		}
		start = 1
	}

	out := make(map[string]expectation)
	for _, row := range rows[start:] {
		if len(row) <= shiftCol {
			continue
		}
		element := row[elementCol]
		if element == "" {
			continue
		}
		exp := expectation{Shift: row[shiftCol]}
		if len(row) > groupCol {
			exp.Group = row[groupCol]
		}
		out[element] = exp
	}
	return out
}

func isHeaderRow(cells []string) bool {
	return strings.HasPrefix(strings.ToLower(cells[0]), "element")
}

// filterAgreement keeps observed rows whose direction matches the model's
// expected direction and whose group has more than one surviving member.
// "X" expectations never agree.
func filterAgreement(rows []combine.ShiftRow, expected map[string]expectation) []agreementRow {
	var agreed []agreementRow
	groupSize := make(map[string]int)
	for _, r := range rows {
		exp, ok := expected[r.Element]
		if !ok || exp.Shift == "X" || exp.Shift != formatShift(r.ObservedShift) {
			continue
		}
		agreed = append(agreed, agreementRow{
			Element:  r.Element,
			Observed: r.ObservedShift,
			Expected: exp.Shift,
			Group:    exp.Group,
		})
		groupSize[exp.Group]++
	}

	out := make([]agreementRow, 0, len(agreed))
	for _, r := range agreed {
		if groupSize[r.Group] > 1 {
			out = append(out, r)
		}
	}
	return out
}
