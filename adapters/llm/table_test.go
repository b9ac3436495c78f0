package llm

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"cladeshift/domain/combine"
)

func TestExtractPipeTable_StripsProse(t *testing.T) {
	raw := "Here is the summary table you asked for:\n\n" +
		"| Element | Expected Shift | Group |\n" +
		"|---|---|---|\n" +
		"| IL-6 | 1 | inflammatory axis |\n" +
		"| IL-10 | -1 | inflammatory axis |\n\n" +
		"Let me know if you need anything else."

	rows := extractPipeTable(raw, 2)
	want := [][]string{
		{"Element", "Expected Shift", "Group"},
		{"IL-6", "1", "inflammatory axis"},
		{"IL-10", "-1", "inflammatory axis"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

func TestParseExpectations_HeaderAndHeaderless(t *testing.T) {
	withHeader := parseExpectations("Element|Expected Shift|Group\nIL-6|1|axis\nIL-10|X|axis")
	if withHeader["IL-6"].Shift != "1" || withHeader["IL-6"].Group != "axis" {
		t.Errorf("IL-6 = %+v", withHeader["IL-6"])
	}
	if withHeader["IL-10"].Shift != "X" {
		t.Errorf("IL-10 = %+v", withHeader["IL-10"])
	}

	headerless := parseExpectations("IL-6|1|axis")
	if headerless["IL-6"].Shift != "1" {
		t.Errorf("headerless IL-6 = %+v", headerless["IL-6"])
	}
}

func TestFilterAgreement(t *testing.T) {
	observed := []combine.ShiftRow{
		{Element: "IL-6", ObservedShift: 1},   // agrees, group of 2
		{Element: "IL-10", ObservedShift: -1}, // agrees, group of 2
		{Element: "CD4", ObservedShift: 1},    // disagrees (expected -1)
		{Element: "CD8", ObservedShift: 1},    // expectation is X
		{Element: "Lone", ObservedShift: -1},  // agrees but group of 1
		{Element: "Novel", ObservedShift: 1},  // no expectation at all
	}
	expected := map[string]expectation{
		"IL-6":  {Shift: "1", Group: "axis"},
		"IL-10": {Shift: "-1", Group: "axis"},
		"CD4":   {Shift: "-1", Group: "cellular"},
		"CD8":   {Shift: "X", Group: "cellular"},
		"Lone":  {Shift: "-1", Group: "solo"},
	}

	got := filterAgreement(observed, expected)
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(got), got)
	}
	if got[0].Element != "IL-6" || got[1].Element != "IL-10" {
		t.Errorf("elements = %s, %s", got[0].Element, got[1].Element)
	}
	if got[0].Group != "axis" || got[0].Expected != "1" {
		t.Errorf("row = %+v", got[0])
	}
}

func TestInterpret_TwoStageFlow(t *testing.T) {
	mock := &MockLLMClient{Responses: []string{
		"Element|Expected Shift|Group\nIL-6|1|axis\nIL-10|-1|axis",
		"The inflammatory axis shifted as expected.",
	}}
	adapter := NewInterpreterAdapterWithClient(Config{Model: "test-model"}, mock)

	table := combine.CombinationTable{
		Label: "001_Cnode201",
		Rows: []combine.ShiftRow{
			{Element: "IL-6", ObservedShift: 1},
			{Element: "IL-10", ObservedShift: -1},
		},
	}
	interp, err := adapter.Interpret(context.Background(), table)
	if err != nil {
		t.Fatalf("Interpret failed: %v", err)
	}
	if interp.Label != "001_Cnode201" {
		t.Errorf("label = %s", interp.Label)
	}
	if interp.Text != "The inflammatory axis shifted as expected." {
		t.Errorf("text = %q", interp.Text)
	}
	if len(mock.Calls) != 2 {
		t.Errorf("llm calls = %d, want 2", len(mock.Calls))
	}
}

func TestInterpret_NoAgreementSkipsSecondStage(t *testing.T) {
	mock := &MockLLMClient{Responses: []string{
		"Element|Expected Shift|Group\nIL-6|-1|axis",
	}}
	adapter := NewInterpreterAdapterWithClient(Config{Model: "test-model"}, mock)

	interp, err := adapter.Interpret(context.Background(), combine.CombinationTable{
		Label: "002_X",
		Rows:  []combine.ShiftRow{{Element: "IL-6", ObservedShift: 1}},
	})
	if err != nil {
		t.Fatalf("Interpret failed: %v", err)
	}
	if interp.Text != "" {
		t.Errorf("text = %q, want empty", interp.Text)
	}
	if len(mock.Calls) != 1 {
		t.Errorf("llm calls = %d, want 1", len(mock.Calls))
	}
}

func TestInterpret_ErrorSurfacesAfterRetries(t *testing.T) {
	mock := &MockLLMClient{Error: errors.New("rate limited")}
	adapter := NewInterpreterAdapterWithClient(Config{Model: "test-model"}, mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // skip backoff sleeps

	_, err := adapter.Interpret(ctx, combine.CombinationTable{
		Label: "003_X",
		Rows:  []combine.ShiftRow{{Element: "IL-6", ObservedShift: 1}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
}
