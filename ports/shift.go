package ports

import (
	"context"

	"cladeshift/domain/combine"
	"cladeshift/domain/core"
)

// ShiftRequest describes one clade-versus-complement comparison.
type ShiftRequest struct {
	Dataset    core.DatasetID  `json:"dataset"`
	Clade      string          `json:"clade"`
	SampleIDs  []core.SampleID `json:"sample_ids"`
	Complement []core.SampleID `json:"complement"`
}

// ShiftComputer is the external statistical collaborator: given a clade's
// samples versus its complement it returns per-element observed shifts.
// Dissimilarity and differential-abundance internals live behind it.
type ShiftComputer interface {
	ComputeShifts(ctx context.Context, req ShiftRequest) ([]combine.ShiftRow, error)
}
