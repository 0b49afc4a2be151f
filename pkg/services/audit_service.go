package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitecraft-inc/sitecraft-engine/pkg/apperrors"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/auth"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/models"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/repositories"
)

// AuditService records and retrieves organization-level activity. Record
// failures are logged but never fail the operation being audited.
type AuditService interface {
	// RecordOrgCloned logs a completed clone operation.
	RecordOrgCloned(ctx context.Context, sourceOrgID, newOrgID uuid.UUID, actorID *uuid.UUID, report *models.CloneReport) error

	// History returns recent activity for an organization, newest first.
	// The actor's token must belong to that organization.
	History(ctx context.Context, orgID uuid.UUID, limit int) ([]*models.AuditLogEntry, error)
}

type auditService struct {
	repo       repositories.AuditRepository
	orgContext OrgContextFunc
	logger     *zap.Logger
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo repositories.AuditRepository, orgContext OrgContextFunc, logger *zap.Logger) AuditService {
	return &auditService{
		repo:       repo,
		orgContext: orgContext,
		logger:     logger.Named("audit-service"),
	}
}

var _ AuditService = (*auditService)(nil)

func (s *auditService) RecordOrgCloned(ctx context.Context, sourceOrgID, newOrgID uuid.UUID, actorID *uuid.UUID, report *models.CloneReport) error {
	entry := &models.AuditLogEntry{
		OrganizationID: newOrgID,
		Action:         models.AuditActionOrgCloned,
		ActorID:        actorID,
		Details: map[string]any{
			"source_organization_id": sourceOrgID.String(),
			"rows_cloned":            report.TotalRows(),
			"all_succeeded":          report.Succeeded(),
		},
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to create audit log entry",
			zap.String("action", models.AuditActionOrgCloned),
			zap.String("organization_id", newOrgID.String()),
			zap.Error(err))
		return fmt.Errorf("create audit log entry: %w", err)
	}

	return nil
}

func (s *auditService) History(ctx context.Context, orgID uuid.UUID, limit int) ([]*models.AuditLogEntry, error) {
	actorOrgID, err := auth.RequireOrgID(ctx)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if actorOrgID != orgID {
		return nil, fmt.Errorf("%w: activity log belongs to another organization", apperrors.ErrForbidden)
	}

	orgCtx, cleanup, err := s.orgContext(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer cleanup()

	return s.repo.GetByOrganization(orgCtx, orgID, limit)
}
