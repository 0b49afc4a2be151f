// Package services contains the business operations of sitecraft-engine.
package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/sitecraft-inc/sitecraft-engine/pkg/database"
)

// OrgContextFunc acquires an org-scoped database connection.
// Returns the scoped context, a cleanup function (MUST be called), and any
// error.
type OrgContextFunc func(ctx context.Context, orgID uuid.UUID) (context.Context, func(), error)

// NewOrgContextFunc creates an OrgContextFunc that uses the given database.
func NewOrgContextFunc(db *database.DB) OrgContextFunc {
	return func(ctx context.Context, orgID uuid.UUID) (context.Context, func(), error) {
		scope, err := db.WithOrg(ctx, orgID)
		if err != nil {
			return nil, nil, err
		}
		orgCtx := database.SetOrgScope(ctx, scope)
		return orgCtx, func() { scope.Close() }, nil
	}
}
