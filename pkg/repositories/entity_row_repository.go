package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sitecraft-inc/sitecraft-engine/pkg/clone"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/database"
)

// entityRowRepository implements clone.EntityStore over the shared pool.
//
// Unlike the scoped repositories, it talks to the pool directly: clone
// workers within a tier run concurrently and a single scoped connection
// cannot serve them. Table and column names come exclusively from the
// descriptor registry, never from request input, so building SQL with
// identifier interpolation is safe here.
type entityRowRepository struct {
	db *database.DB
}

// NewEntityRowRepository creates the relational store used by the clone
// engine.
func NewEntityRowRepository(db *database.DB) clone.EntityStore {
	return &entityRowRepository{db: db}
}

var _ clone.EntityStore = (*entityRowRepository)(nil)

// SourceRows reads all rows of table owned by orgID. Rows are ordered by
// id so repeated reads see a stable order.
func (r *entityRowRepository) SourceRows(ctx context.Context, table, tenantColumn string, orgID uuid.UUID) (*clone.RowSet, error) {
	query := fmt.Sprintf(`SELECT * FROM %s WHERE %s = $1 ORDER BY id`,
		quoteIdent(table), quoteIdent(tenantColumn))

	rows, err := r.db.Pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	result := &clone.RowSet{Columns: columns}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values from %s: %w", table, err)
		}
		row := make([]any, len(values))
		copy(row, values)
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	return result, nil
}

// InsertRows batch-inserts rows and returns generated ids in insertion
// order. pgx returns batch results in queue order, which is what carries
// the remap store's positional-correspondence contract.
func (r *entityRowRepository) InsertRows(ctx context.Context, table string, columns []string, rowValues [][]any) ([]int64, error) {
	if len(rowValues) == 0 {
		return nil, nil
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdent(col)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING id`,
		quoteIdent(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "))

	batch := &pgx.Batch{}
	for _, row := range rowValues {
		batch.Queue(query, row...)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	newIDs := make([]int64, 0, len(rowValues))
	for range rowValues {
		var id int64
		if err := br.QueryRow().Scan(&id); err != nil {
			return nil, fmt.Errorf("batch insert into %s: %w", table, err)
		}
		newIDs = append(newIDs, id)
	}

	return newIDs, nil
}

// RefExists reports whether a row with the given id exists in table under
// orgID.
func (r *entityRowRepository) RefExists(ctx context.Context, table, tenantColumn string, orgID uuid.UUID, id int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1 AND %s = $2)`,
		quoteIdent(table), quoteIdent(tenantColumn))

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, id, orgID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check existence in %s: %w", table, err)
	}
	return exists, nil
}

// quoteIdent double-quotes a SQL identifier from the registry.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
