package llm

import (
	"fmt"
	"strings"

	"cladeshift/domain/combine"
)

// Prompt templates for the two-stage interpretation flow. Stage one asks
// the model which elements are reported to shift jointly and in which
// direction; stage two asks for a reading of the rows that survived the
// observed-vs-expected agreement filter.

const jointShiftPrompt = `AI Role:
You are a domain expert with deep knowledge of the measured biological elements and the condition under study.

Input Elements:
Below is a list of elements observed to shift between a selected group of samples and the remaining samples.

%s

Analysis Instructions:
For each item in the input list, identify any groups or pairs of elements that are commonly reported to shift jointly in this condition. If there is no established evidence of joint shifts, do not report them.
For each identified group or pair, determine whether each element is typically reported to increase, decrease, or show mixed patterns. If the direction is unknown or unclear, indicate this as well.

Reporting Instructions:
Report a summary table with columns "Element", "Expected Shift", "Group". "Group" should name the shared functional activity of the grouped elements, without generic labels; every member of a group carries the same group name.
Always use numbers: increase = 1, decrease = -1, mixed = 0, information not available = X. Present the table using "|" (pipe) as the column separator, one element per row, and ensure there are no extra spaces.

USE SAME NAME OF INPUT ELEMENTS FOR WHOLE PART.
`

const interpretationPrompt = `AI Role:
You are a domain expert with deep knowledge of the measured biological elements and the condition under study.

Analysis and Reporting Instructions:
These are groups of jointly shifted elements observed in the condition (1 represents increase and -1 represents decrease). What is the biological interpretation? If well-established pathways are involved, describe them and integrate them into the interpretation. The expected directions of the shifts agree with the observed ones, and the interpretation should always consider the direction of the shifts.

%s

Provide your analysis in a clear, structured format for the joint shifts.

USE SAME NAME OF INPUT ELEMENTS FOR WHOLE PART.
`

func buildJointShiftPrompt(rows []combine.ShiftRow) string {
	elements := make([]string, 0, len(rows))
	for _, r := range rows {
		elements = append(elements, r.Element)
	}
	return fmt.Sprintf(jointShiftPrompt, strings.Join(elements, "\n"))
}

func buildInterpretationPrompt(rows []agreementRow) string {
	var b strings.Builder
	b.WriteString("Element|Observed Shift|Expected Shift|Group\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s|%s|%s|%s\n", r.Element, formatShift(r.Observed), r.Expected, r.Group)
	}
	return fmt.Sprintf(interpretationPrompt, b.String())
}

// formatShift renders observed shifts the way the expected column uses
// them, so 1.0 and "1" compare equal.
func formatShift(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
