package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"cladeshift/domain/clade"
	"cladeshift/domain/combine"
	"cladeshift/domain/core"
	"cladeshift/ports"
)

// selectionRepository implements the SelectionRepository interface
type selectionRepository struct {
	db *sqlx.DB
}

// NewSelectionRepository creates a new selection repository
func NewSelectionRepository(db *sqlx.DB) ports.SelectionRepository {
	return &selectionRepository{db: db}
}

// EnsureSchema creates the selection tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS selections (
		run_id     TEXT NOT NULL,
		dataset    TEXT NOT NULL,
		clades     JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (run_id, dataset)
	);
	CREATE TABLE IF NOT EXISTS combinations (
		run_id     TEXT NOT NULL,
		label      TEXT NOT NULL,
		members    JSONB NOT NULL,
		rows       JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (run_id, label)
	);`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create selection schema: %w", err)
	}
	return nil
}

// SaveSelection upserts one dataset's selection for a run
func (r *selectionRepository) SaveSelection(ctx context.Context, runID core.RunID, sel clade.Selection) error {
	cladesJSON, err := json.Marshal(sel.Clades)
	if err != nil {
		return fmt.Errorf("failed to marshal clades: %w", err)
	}

	query := `INSERT INTO selections (run_id, dataset, clades, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id, dataset) DO UPDATE SET clades = $3`

	_, err = r.db.ExecContext(ctx, query, string(runID), string(sel.Dataset), cladesJSON, core.Now().Time())
	if err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}

	return nil
}

// GetSelections retrieves all selections for a run, ordered by dataset
func (r *selectionRepository) GetSelections(ctx context.Context, runID core.RunID) ([]clade.Selection, error) {
	query := `SELECT dataset, clades FROM selections WHERE run_id = $1 ORDER BY dataset`

	rows, err := r.db.QueryContext(ctx, query, string(runID))
	if err != nil {
		return nil, fmt.Errorf("failed to query selections: %w", err)
	}
	defer rows.Close()

	var selections []clade.Selection
	for rows.Next() {
		var dataset string
		var cladesJSON []byte
		if err := rows.Scan(&dataset, &cladesJSON); err != nil {
			return nil, fmt.Errorf("failed to scan selection: %w", err)
		}

		sel := clade.Selection{Dataset: core.DatasetID(dataset)}
		if err := json.Unmarshal(cladesJSON, &sel.Clades); err != nil {
			return nil, fmt.Errorf("failed to unmarshal clades: %w", err)
		}
		selections = append(selections, sel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate selections: %w", err)
	}
	if len(selections) == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, runID)
	}

	return selections, nil
}

// SaveCombination upserts one combination table for a run
func (r *selectionRepository) SaveCombination(ctx context.Context, runID core.RunID, table combine.CombinationTable) error {
	membersJSON, err := json.Marshal(table.Members)
	if err != nil {
		return fmt.Errorf("failed to marshal members: %w", err)
	}
	rowsJSON, err := json.Marshal(table.Rows)
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}

	query := `INSERT INTO combinations (run_id, label, members, rows, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id, label) DO UPDATE SET members = $3, rows = $4`

	_, err = r.db.ExecContext(ctx, query, string(runID), table.Label, membersJSON, rowsJSON, core.Now().Time())
	if err != nil {
		return fmt.Errorf("failed to save combination: %w", err)
	}

	return nil
}

// ListCombinations retrieves all combination tables for a run. Labels are
// zero-padded sequence numbers, so lexical order is generation order.
func (r *selectionRepository) ListCombinations(ctx context.Context, runID core.RunID) ([]combine.CombinationTable, error) {
	query := `SELECT label, members, rows FROM combinations WHERE run_id = $1 ORDER BY label`

	rows, err := r.db.QueryContext(ctx, query, string(runID))
	if err != nil {
		return nil, fmt.Errorf("failed to query combinations: %w", err)
	}
	defer rows.Close()

	var tables []combine.CombinationTable
	for rows.Next() {
		var table combine.CombinationTable
		var membersJSON, rowsJSON []byte
		if err := rows.Scan(&table.Label, &membersJSON, &rowsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan combination: %w", err)
		}
		if err := json.Unmarshal(membersJSON, &table.Members); err != nil {
			return nil, fmt.Errorf("failed to unmarshal members: %w", err)
		}
		if err := json.Unmarshal(rowsJSON, &table.Rows); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rows: %w", err)
		}
		tables = append(tables, table)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate combinations: %w", err)
	}

	return tables, nil
}
