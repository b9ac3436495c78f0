package clade

import (
	"fmt"

	"cladeshift/domain/core"
	"cladeshift/domain/tree"
)

// Policy selects among multiple qualifying, non-overlapping candidates.
type Policy string

const (
	PolicyBest     Policy = "best"     // targeted desc, other asc, total asc
	PolicyFirst    Policy = "first"    // earliest pre-order position
	PolicyLargest  Policy = "largest"  // total tips desc
	PolicySmallest Policy = "smallest" // total tips asc
)

// ParsePolicy parses a policy name, defaulting to best for the empty string.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return PolicyBest, nil
	case PolicyBest, PolicyFirst, PolicyLargest, PolicySmallest:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnknownPolicy, s)
	}
}

// Thresholds are the per-run control values for candidate qualification.
type Thresholds struct {
	MinTargeted     int    `json:"min_targeted"`
	MaxOtherSamples int    `json:"max_other_samples"`
	MaxTotalSamples int    `json:"max_total_samples"`
	AssignPolicy    Policy `json:"assign_policy"`
}

// Validate checks threshold ranges. It runs before any tree processing so
// configuration defects never reach the assignment loop.
func (t Thresholds) Validate() error {
	if t.MinTargeted < 1 {
		return core.NewInvalidConfigError("min_targeted", fmt.Sprintf("must be >= 1, got %d", t.MinTargeted))
	}
	if t.MaxOtherSamples < 0 {
		return core.NewInvalidConfigError("max_other_samples", fmt.Sprintf("must be >= 0, got %d", t.MaxOtherSamples))
	}
	if t.MaxTotalSamples < t.MinTargeted {
		return core.NewInvalidConfigError("max_total_samples",
			fmt.Sprintf("must be >= min_targeted (%d), got %d", t.MinTargeted, t.MaxTotalSamples))
	}
	if _, err := ParsePolicy(string(t.AssignPolicy)); err != nil {
		return err
	}
	return nil
}

// NewThresholds creates validated thresholds.
func NewThresholds(minTargeted, maxOther, maxTotal int, policy Policy) (Thresholds, error) {
	t := Thresholds{
		MinTargeted:     minTargeted,
		MaxOtherSamples: maxOther,
		MaxTotalSamples: maxTotal,
		AssignPolicy:    policy,
	}
	if t.AssignPolicy == "" {
		t.AssignPolicy = PolicyBest
	}
	if err := t.Validate(); err != nil {
		return Thresholds{}, err
	}
	return t, nil
}

// Candidate is a node scored against the thresholds. PreorderPos fixes the
// "first encountered" semantics and every tie-break.
type Candidate struct {
	Node        tree.NodeID     `json:"node"`
	PreorderPos int             `json:"preorder_pos"`
	Stats       tree.CladeStats `json:"stats"`
	Qualifies   bool            `json:"qualifies"`

	// Enrichment is the binomial tail probability of observing at least
	// this many targeted tips in a clade of this size, given the tree-wide
	// target fraction. Annotation only; it never affects qualification.
	Enrichment float64 `json:"enrichment"`
}

// SelectedClade is one chosen clade inside a Selection, with owned copies
// of everything downstream consumers need.
type SelectedClade struct {
	Node       tree.NodeID     `json:"node"`
	Label      string          `json:"label"`
	Stats      tree.CladeStats `json:"stats"`
	SampleIDs  []core.SampleID `json:"sample_ids"`
	Enrichment float64         `json:"enrichment"`
}

// Selection is the ordered, pairwise tip-disjoint set of clades chosen for
// one dataset. Built once by Assign, immutable thereafter. An empty
// Selection is a valid outcome, not an error.
type Selection struct {
	Dataset core.DatasetID  `json:"dataset"`
	Clades  []SelectedClade `json:"clades"`
}

// IsEmpty reports whether no clade qualified.
func (s Selection) IsEmpty() bool { return len(s.Clades) == 0 }
