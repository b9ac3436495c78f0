package ports

import (
	"context"

	"cladeshift/domain/core"
)

// SignificancePort answers whether a dataset contributes a statistically
// significant feature for a candidate grouping. Supplied by the external
// statistical layer; the combination engine treats it as opaque.
type SignificancePort interface {
	Significant(ctx context.Context, dataset core.DatasetID, grouping []core.DatasetID) (bool, error)
}
