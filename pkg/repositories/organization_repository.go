// Package repositories contains PostgreSQL data access for
// sitecraft-engine.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sitecraft-inc/sitecraft-engine/pkg/apperrors"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/database"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/models"
)

// OrganizationRepository defines the interface for organization data access.
type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	Get(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	UpdateDeploymentStatus(ctx context.Context, id uuid.UUID, status string) error
}

// organizationRepository implements OrganizationRepository using PostgreSQL.
type organizationRepository struct{}

// NewOrganizationRepository creates a new organization repository.
func NewOrganizationRepository() OrganizationRepository {
	return &organizationRepository{}
}

// Create inserts a new organization row.
func (r *organizationRepository) Create(ctx context.Context, org *models.Organization) error {
	scope, ok := database.GetOrgScope(ctx)
	if !ok {
		return fmt.Errorf("no org scope in context")
	}

	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}

	now := time.Now()
	org.CreatedAt = now
	org.UpdatedAt = now
	if org.Kind == "" {
		org.Kind = models.OrgKindStandard
	}
	if org.DeploymentStatus == "" {
		org.DeploymentStatus = models.DeployStatusPending
	}

	query := `
		INSERT INTO engine_organizations (id, name, kind, base_url, deployment_status, billing_customer_id, domain, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := scope.Conn.Exec(ctx, query,
		org.ID,
		org.Name,
		org.Kind,
		org.BaseURL,
		org.DeploymentStatus,
		org.BillingCustomerID,
		org.Domain,
		org.CreatedAt,
		org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}

// Get retrieves an organization by ID.
func (r *organizationRepository) Get(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	scope, ok := database.GetOrgScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no org scope in context")
	}

	query := `
		SELECT id, name, kind, base_url, deployment_status, billing_customer_id, domain, created_at, updated_at
		FROM engine_organizations
		WHERE id = $1`

	var org models.Organization
	err := scope.Conn.QueryRow(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.Kind,
		&org.BaseURL,
		&org.DeploymentStatus,
		&org.BillingCustomerID,
		&org.Domain,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return &org, nil
}

// UpdateDeploymentStatus updates the deployment status after provisioning.
func (r *organizationRepository) UpdateDeploymentStatus(ctx context.Context, id uuid.UUID, status string) error {
	scope, ok := database.GetOrgScope(ctx)
	if !ok {
		return fmt.Errorf("no org scope in context")
	}

	query := `UPDATE engine_organizations SET deployment_status = $2, updated_at = $3 WHERE id = $1`

	result, err := scope.Conn.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update deployment status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Ensure organizationRepository implements OrganizationRepository at compile time.
var _ OrganizationRepository = (*organizationRepository)(nil)
