package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrgScope wraps a connection with organization context and ensures
// cleanup. The connection has app.current_org_id set for RLS policy
// evaluation.
type OrgScope struct {
	Conn *pgxpool.Conn
}

// Close resets organization context and releases connection to pool.
// This MUST be called to prevent org context from leaking to the next
// request.
func (s *OrgScope) Close() {
	if s.Conn == nil {
		return
	}
	// Reset the org context before returning connection to pool
	_, _ = s.Conn.Exec(context.Background(), "RESET app.current_org_id")
	s.Conn.Release()
}

// WithOrg acquires a connection and sets the organization context for RLS.
// The returned OrgScope MUST be closed with defer scope.Close().
func (db *DB) WithOrg(ctx context.Context, orgID uuid.UUID) (*OrgScope, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	_, err = conn.Exec(ctx, "SELECT set_config('app.current_org_id', $1, false)", orgID.String())
	if err != nil {
		conn.Release()
		return nil, err
	}

	return &OrgScope{Conn: conn}, nil
}

// WithoutOrg acquires a connection without organization context. Use this
// for control-plane operations that need full access (organization
// creation, the clone pipeline itself).
// The returned OrgScope MUST be closed with defer scope.Close().
func (db *DB) WithoutOrg(ctx context.Context) (*OrgScope, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &OrgScope{Conn: conn}, nil
}
