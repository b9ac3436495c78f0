package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"cladeshift/domain/clade"
	"cladeshift/domain/core"
	"cladeshift/domain/tree"
	"cladeshift/internal"
	"cladeshift/ports"
)

// DatasetInput is one dataset's parsed tree plus its label table.
type DatasetInput struct {
	Dataset core.DatasetID
	Root    *tree.ParsedNode
	Labels  map[core.SampleID]bool
}

// DatasetOutcome is the per-dataset result of assignment. Err is set when
// the dataset's input was defective; sibling datasets are unaffected.
type DatasetOutcome struct {
	Dataset    core.DatasetID  `json:"dataset"`
	Selection  clade.Selection `json:"selection"`
	AllSamples []core.SampleID `json:"all_samples"`
	Candidates int             `json:"candidates"`
	Qualifying int             `json:"qualifying"`
	Err        error           `json:"-"`
}

// AssignmentService builds trees and runs clade assignment per dataset.
// Datasets are independent, so they are evaluated in parallel; each
// dataset's tree is read-only once built.
type AssignmentService struct {
	thresholds clade.Thresholds
	repo       ports.SelectionRepository
	log        *internal.Logger
}

// NewAssignmentService creates an assignment service. Thresholds are
// validated here so configuration defects surface before any tree work.
// The repository is optional.
func NewAssignmentService(th clade.Thresholds, repo ports.SelectionRepository, logger *internal.Logger) (*AssignmentService, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AssignmentService{thresholds: th, repo: repo, log: logger}, nil
}

// RunAssignments processes every dataset and returns one outcome each, in
// input order. A structural defect in one dataset is recorded on its
// outcome and never aborts the others; selections are persisted for the
// datasets that succeeded.
func (s *AssignmentService) RunAssignments(ctx context.Context, runID core.RunID, inputs []DatasetInput) ([]DatasetOutcome, error) {
	outcomes := make([]DatasetOutcome, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	for i, in := range inputs {
		g.Go(func() error {
			outcomes[i] = s.assignOne(gctx, in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range outcomes {
		o := &outcomes[i]
		switch {
		case o.Err != nil:
			s.log.Error("dataset %s failed: %v", o.Dataset, o.Err)
		case o.Selection.IsEmpty():
			s.log.Warn("dataset %s: no qualifying clade found", o.Dataset)
		default:
			s.log.Info("dataset %s: selected %d clades from %d qualifying candidates",
				o.Dataset, len(o.Selection.Clades), o.Qualifying)
		}
		if o.Err == nil && s.repo != nil {
			if err := s.repo.SaveSelection(ctx, runID, o.Selection); err != nil {
				return nil, err
			}
		}
	}
	return outcomes, nil
}

func (s *AssignmentService) assignOne(_ context.Context, in DatasetInput) DatasetOutcome {
	out := DatasetOutcome{Dataset: in.Dataset}

	t, err := tree.Build(in.Dataset, in.Root, in.Labels)
	if err != nil {
		out.Err = err
		return out
	}

	candidates := clade.Evaluate(t, s.thresholds)
	out.Candidates = len(candidates)
	for _, c := range candidates {
		if c.Qualifies {
			out.Qualifying++
		}
	}

	out.Selection = clade.Assign(t, candidates, s.thresholds.AssignPolicy)
	out.AllSamples = t.TipSampleIDs(t.Root())
	return out
}
