package clone

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RowSet holds the column layout and row values of one entity table, in
// the order they were read.
type RowSet struct {
	Columns []string
	Rows    [][]any
}

// EntityStore is the relational-store boundary used by the clone engine.
// InsertRows must return the generated ids in the same order as the rows
// it was given; the remap store's correctness depends on it.
type EntityStore interface {
	// SourceRows reads every row of table owned by orgID, ordered by id.
	SourceRows(ctx context.Context, table, tenantColumn string, orgID uuid.UUID) (*RowSet, error)

	// InsertRows batch-inserts rows and returns the generated ids in
	// insertion order.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) ([]int64, error)

	// RefExists reports whether a row with the given id exists in table
	// under orgID.
	RefExists(ctx context.Context, table, tenantColumn string, orgID uuid.UUID, id int64) (bool, error)
}

// TypeResult describes one entity type's clone outcome.
type TypeResult struct {
	Rows    int
	Skipped int
}

// TypeCloner clones all rows of a single entity type. Implemented by
// Cloner; faked in orchestrator tests.
type TypeCloner interface {
	CloneType(ctx context.Context, desc Descriptor, sourceOrg, newOrg uuid.UUID, remap *RemapStore) (TypeResult, error)
}

// Cloner is the generic, table-driven clone operation. One invocation
// handles one entity type: it drops source primary keys, rewrites
// ownership to the new organization, rewrites FK fields through the remap
// store per field policy, scrubs non-clonable fields, batch-inserts the
// result and records the id correspondence.
type Cloner struct {
	plan   *Plan
	store  EntityStore
	logger *zap.Logger
}

// NewCloner creates a clone engine over the given store.
func NewCloner(plan *Plan, store EntityStore, logger *zap.Logger) *Cloner {
	return &Cloner{
		plan:   plan,
		store:  store,
		logger: logger.Named("cloner"),
	}
}

var _ TypeCloner = (*Cloner)(nil)

// CloneType clones every row of one entity type from sourceOrg into
// newOrg. All failures come back as *EntityCloneError so the orchestrator
// can contain them per type.
func (c *Cloner) CloneType(ctx context.Context, desc Descriptor, sourceOrg, newOrg uuid.UUID, remap *RemapStore) (TypeResult, error) {
	rs, err := c.store.SourceRows(ctx, desc.Table, desc.TenantColumn, sourceOrg)
	if err != nil {
		return TypeResult{}, cloneErrorf(desc.Type, "read source rows: %w", err)
	}
	if len(rs.Rows) == 0 {
		return TypeResult{}, nil
	}

	colIdx := make(map[string]int, len(rs.Columns))
	for i, col := range rs.Columns {
		colIdx[col] = i
	}

	idIdx, ok := colIdx["id"]
	if !ok {
		return TypeResult{}, cloneErrorf(desc.Type, "table %s has no id column", desc.Table)
	}
	if _, ok := colIdx[desc.TenantColumn]; !ok {
		return TypeResult{}, cloneErrorf(desc.Type, "table %s has no %s column", desc.Table, desc.TenantColumn)
	}
	for _, fk := range desc.FKs {
		if _, ok := colIdx[fk.Column]; !ok {
			return TypeResult{}, cloneErrorf(desc.Type, "declared FK column %s missing from table %s", fk.Column, desc.Table)
		}
	}

	// The clone keeps every column except the source primary key.
	insertCols := make([]string, 0, len(rs.Columns)-1)
	srcIdx := make([]int, 0, len(rs.Columns)-1)
	for i, col := range rs.Columns {
		if i == idIdx {
			continue
		}
		insertCols = append(insertCols, col)
		srcIdx = append(srcIdx, i)
	}

	originalIDs := make([]int64, 0, len(rs.Rows))
	outRows := make([][]any, 0, len(rs.Rows))
	skipped := 0

	for _, row := range rs.Rows {
		origID, err := asInt64(row[idIdx])
		if err != nil {
			return TypeResult{}, cloneErrorf(desc.Type, "source row id: %w", err)
		}

		out := make([]any, len(insertCols))
		for i, si := range srcIdx {
			out[i] = row[si]
		}
		rewriteColumn(out, insertCols, desc.TenantColumn, newOrg)

		skip := false
		for _, fk := range desc.FKs {
			value, skipRow, err := c.rewriteFK(ctx, desc, fk, row[colIdx[fk.Column]], sourceOrg, remap)
			if err != nil {
				return TypeResult{}, err
			}
			if skipRow {
				c.logger.Warn("Skipping row with unresolvable required reference",
					zap.String("entity_type", string(desc.Type)),
					zap.String("column", fk.Column),
					zap.Int64("source_id", origID))
				skip = true
				break
			}
			rewriteColumn(out, insertCols, fk.Column, value)
		}
		if skip {
			skipped++
			continue
		}

		for _, sc := range desc.Scrub {
			rewriteColumn(out, insertCols, sc.Column, sc.Value)
		}

		originalIDs = append(originalIDs, origID)
		outRows = append(outRows, out)
	}

	var newIDs []int64
	if len(outRows) > 0 {
		newIDs, err = c.store.InsertRows(ctx, desc.Table, insertCols, outRows)
		if err != nil {
			return TypeResult{}, cloneErrorf(desc.Type, "insert rows: %w", err)
		}
	}
	if err := remap.PutBatch(desc.Type, originalIDs, newIDs); err != nil {
		return TypeResult{}, cloneErrorf(desc.Type, "record id mapping: %w", err)
	}

	return TypeResult{Rows: len(newIDs), Skipped: skipped}, nil
}

// rewriteFK resolves one FK value for one row. It returns the rewritten
// value, or skipRow=true when the field's policy forbids both keeping and
// nulling an unresolved reference.
func (c *Cloner) rewriteFK(ctx context.Context, desc Descriptor, fk FKField, raw any, sourceOrg uuid.UUID, remap *RemapStore) (value any, skipRow bool, err error) {
	if raw == nil {
		return nil, false, nil
	}
	id, convErr := asInt64(raw)
	if convErr != nil {
		return nil, false, cloneErrorf(desc.Type, "FK column %s: %w", fk.Column, convErr)
	}

	if fk.Policy == FKValidateFirst {
		table := fk.RefTable
		if table == "" {
			if refDesc, ok := c.plan.Descriptor(fk.Ref); ok {
				table = refDesc.Table
			}
		}
		exists, err := c.store.RefExists(ctx, table, desc.TenantColumn, sourceOrg, id)
		if err != nil {
			return nil, false, cloneErrorf(desc.Type, "check %s.%d: %w", table, id, err)
		}
		// The source row already pointed at nothing; the clone gets NULL.
		if !exists {
			return nil, false, nil
		}
		if fk.Ref != "" {
			if newID, ok := remap.Get(fk.Ref, id); ok {
				return newID, false, nil
			}
			return nil, false, nil
		}
		// Validated reference into a table outside the clone set; the row
		// it points at outlives the clone, so the id is kept.
		return raw, false, nil
	}

	if fk.Ref != "" {
		if newID, ok := remap.Get(fk.Ref, id); ok {
			return newID, false, nil
		}
	}

	// Unresolved clone-set reference. A source-organization id must never
	// survive into the clone, so the only choices left are NULL or dropping
	// the row.
	if fk.Policy == FKRequireRemap {
		return nil, true, nil
	}
	return nil, false, nil
}

// rewriteColumn sets the value of a named column in an already-projected
// row. Missing scrub columns are ignored; schema drift there is harmless.
func rewriteColumn(row []any, columns []string, column string, value any) {
	for i, col := range columns {
		if col == column {
			row[i] = value
			return
		}
	}
}

// asInt64 normalizes the integer kinds pgx produces for bigint/int
// columns.
func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("expected integer id, got %T", v)
	}
}
