package ports

import (
	"context"

	"cladeshift/domain/combine"
)

// Interpretation is the free-text reading of one combination table.
type Interpretation struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// InterpreterPort produces a free-text interpretation for a merged
// combination table. Retry and rate-limit behavior belong to the adapter.
type InterpreterPort interface {
	Interpret(ctx context.Context, table combine.CombinationTable) (*Interpretation, error)
}
