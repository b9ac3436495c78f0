package combine

// MergeRows outer-merges result rows by element identity. Element order is
// first appearance across the inputs. When the same element occurs in
// several sets, identical shift values are kept and any disagreement
// collapses to 0.
func MergeRows(rowSets ...[]ShiftRow) []ShiftRow {
	var order []string
	values := make(map[string][]float64)

	for _, rows := range rowSets {
		for _, r := range rows {
			if _, seen := values[r.Element]; !seen {
				order = append(order, r.Element)
			}
			values[r.Element] = append(values[r.Element], r.ObservedShift)
		}
	}

	out := make([]ShiftRow, 0, len(order))
	for _, el := range order {
		out = append(out, ShiftRow{Element: el, ObservedShift: resolveShift(values[el])})
	}
	return out
}

func resolveShift(vals []float64) float64 {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return 0
		}
	}
	return vals[0]
}
