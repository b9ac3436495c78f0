package app

import (
	"context"
	"fmt"

	"cladeshift/domain/combine"
	"cladeshift/domain/core"
	"cladeshift/internal"
	"cladeshift/ports"
)

// CombinationResult holds the materialized combination tables and any
// interpretations produced for them.
type CombinationResult struct {
	RunID           core.RunID                 `json:"run_id"`
	CreatedAt       core.Timestamp             `json:"created_at"`
	Tables          []combine.CombinationTable `json:"tables"`
	Interpretations []ports.Interpretation     `json:"interpretations,omitempty"`
}

// CombinationService is the single synchronization point: it waits for all
// per-dataset selections, fetches each clade's shift rows from the
// external collaborator, and enumerates merged combinations.
type CombinationService struct {
	shifts       ports.ShiftComputer
	significance ports.SignificancePort
	interpreter  ports.InterpreterPort
	repo         ports.SelectionRepository
	log          *internal.Logger
}

// NewCombinationService creates a combination service. The significance
// port, interpreter and repository are optional; a nil significance port
// includes every dataset in every grouping.
func NewCombinationService(shifts ports.ShiftComputer, significance ports.SignificancePort,
	interpreter ports.InterpreterPort, repo ports.SelectionRepository, logger *internal.Logger) *CombinationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CombinationService{
		shifts:       shifts,
		significance: significance,
		interpreter:  interpreter,
		repo:         repo,
		log:          logger,
	}
}

// BuildCombinations consumes assignment outcomes in input order and emits
// the merged combination tables. Failed datasets are skipped; empty
// selections contribute nothing but do not abort the run.
func (s *CombinationService) BuildCombinations(ctx context.Context, runID core.RunID, outcomes []DatasetOutcome) (*CombinationResult, error) {
	var results []combine.DatasetResults
	for _, o := range outcomes {
		if o.Err != nil {
			s.log.Warn("skipping failed dataset %s in combination", o.Dataset)
			continue
		}
		dr, err := s.collectShifts(ctx, o)
		if err != nil {
			return nil, fmt.Errorf("shift computation for dataset %s: %w", o.Dataset, err)
		}
		results = append(results, dr)
	}

	tables := combine.Combine(results, s.significanceFunc(ctx))
	res := &CombinationResult{RunID: runID, CreatedAt: core.Now(), Tables: tables}

	for _, table := range tables {
		if s.repo != nil {
			if err := s.repo.SaveCombination(ctx, runID, table); err != nil {
				return nil, err
			}
		}
		if s.interpreter != nil {
			interp, err := s.interpreter.Interpret(ctx, table)
			if err != nil {
				// Interpretation is a best-effort annotation layer.
				s.log.Warn("interpretation failed for %s: %v", table.Label, err)
				continue
			}
			res.Interpretations = append(res.Interpretations, *interp)
		}
	}
	return res, nil
}

func (s *CombinationService) collectShifts(ctx context.Context, o DatasetOutcome) (combine.DatasetResults, error) {
	dr := combine.DatasetResults{Dataset: o.Dataset}
	for _, sel := range o.Selection.Clades {
		rows, err := s.shifts.ComputeShifts(ctx, ports.ShiftRequest{
			Dataset:    o.Dataset,
			Clade:      sel.Label,
			SampleIDs:  sel.SampleIDs,
			Complement: complementOf(o.AllSamples, sel.SampleIDs),
		})
		if err != nil {
			return combine.DatasetResults{}, err
		}
		dr.Clades = append(dr.Clades, combine.CladeResult{Clade: sel.Label, Rows: rows})
	}
	return dr, nil
}

func (s *CombinationService) significanceFunc(ctx context.Context) combine.SignificanceFunc {
	if s.significance == nil {
		return combine.AlwaysSignificant
	}
	return func(dataset core.DatasetID, grouping []core.DatasetID) bool {
		ok, err := s.significance.Significant(ctx, dataset, grouping)
		if err != nil {
			s.log.Warn("significance check failed for %s: %v", dataset, err)
			return false
		}
		return ok
	}
}

func complementOf(all, members []core.SampleID) []core.SampleID {
	in := make(map[core.SampleID]struct{}, len(members))
	for _, m := range members {
		in[m] = struct{}{}
	}
	out := make([]core.SampleID, 0, len(all)-len(members))
	for _, s := range all {
		if _, ok := in[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}
