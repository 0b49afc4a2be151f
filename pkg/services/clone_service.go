package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitecraft-inc/sitecraft-engine/pkg/apperrors"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/auth"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/clone"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/database"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/metrics"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/models"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/repositories"
)

// Display name length bounds for a cloned organization.
const (
	MinOrgNameLength = 2
	MaxOrgNameLength = 50
)

// CloneResult is the full outcome of one clone request.
type CloneResult struct {
	Organization       *models.Organization
	SourceOrganization *models.Organization
	Report             *models.CloneReport
	Deployment         *models.DeploymentResult
	DeploymentError    string
}

// CloneService runs the full organization clone operation: precondition
// checks, new organization creation, the tiered data clone, decoupled
// post-clone provisioning, and activity logging.
type CloneService interface {
	// Clone duplicates sourceOrgID's data into a newly created
	// organization named newName. The actor is taken from the context's
	// auth claims. Precondition violations surface as apperrors
	// sentinels; individual entity-type failures are data inside the
	// returned report, not errors.
	Clone(ctx context.Context, sourceOrgID uuid.UUID, newName string) (*CloneResult, error)
}

type cloneService struct {
	db           *database.DB
	orgRepo      repositories.OrganizationRepository
	orchestrator *clone.Orchestrator
	deployer     DeployService
	audit        AuditService
	metrics      *metrics.CloneMetrics
	logger       *zap.Logger
}

// NewCloneService creates the clone service.
func NewCloneService(
	db *database.DB,
	orgRepo repositories.OrganizationRepository,
	orchestrator *clone.Orchestrator,
	deployer DeployService,
	audit AuditService,
	cloneMetrics *metrics.CloneMetrics,
	logger *zap.Logger,
) CloneService {
	return &cloneService{
		db:           db,
		orgRepo:      orgRepo,
		orchestrator: orchestrator,
		deployer:     deployer,
		audit:        audit,
		metrics:      cloneMetrics,
		logger:       logger.Named("clone-service"),
	}
}

var _ CloneService = (*cloneService)(nil)

func (s *cloneService) Clone(ctx context.Context, sourceOrgID uuid.UUID, newName string) (*CloneResult, error) {
	claims, ok := auth.GetClaims(ctx)
	if !ok || claims == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	// All preconditions are checked before any write. Past this point the
	// operation runs to completion; failures become report entries.
	if !claims.HasCapability(auth.CapabilityOrgCreate) {
		return nil, fmt.Errorf("%w: missing %s capability", apperrors.ErrForbidden, auth.CapabilityOrgCreate)
	}
	if !models.CanCloneFrom(claims.OrgKind) {
		return nil, fmt.Errorf("%w: organization kind %q cannot clone", apperrors.ErrForbidden, claims.OrgKind)
	}
	if l := utf8.RuneCountInString(newName); l < MinOrgNameLength || l > MaxOrgNameLength {
		return nil, fmt.Errorf("%w: name must be between %d and %d characters", apperrors.ErrValidation, MinOrgNameLength, MaxOrgNameLength)
	}

	// The clone pipeline works across two organizations, so it runs on a
	// control-plane scope rather than a single-org one.
	scope, err := s.db.WithoutOrg(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer scope.Close()
	ctx = database.SetOrgScope(ctx, scope)

	source, err := s.orgRepo.Get(ctx, sourceOrgID)
	if err != nil {
		return nil, err
	}
	if !models.CloneableKind(source.Kind) {
		return nil, fmt.Errorf("%w: organization kind %q cannot be cloned", apperrors.ErrForbidden, source.Kind)
	}

	// Billing, domain and deployment identity never carry over; the new
	// organization starts unprovisioned.
	newOrg := &models.Organization{
		Name:             newName,
		Kind:             models.OrgKindStandard,
		DeploymentStatus: models.DeployStatusPending,
	}
	if err := s.orgRepo.Create(ctx, newOrg); err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}

	s.metrics.ClonesStarted.Inc()
	s.logger.Info("Cloning organization",
		zap.String("source_org", source.ID.String()),
		zap.String("new_org", newOrg.ID.String()),
		zap.String("actor", claims.Subject))

	report := s.orchestrator.Run(ctx, source.ID, newOrg.ID)

	s.metrics.ClonesCompleted.Inc()
	s.metrics.RowsCloned.Add(float64(report.TotalRows()))
	for entityType, outcome := range report.Outcomes {
		if !outcome.Succeeded {
			s.metrics.TypeFailures.WithLabelValues(entityType).Inc()
		}
	}

	if err := s.audit.RecordOrgCloned(ctx, source.ID, newOrg.ID, claims.ActorID(), report); err != nil {
		s.logger.Warn("Audit logging failed", zap.Error(err))
	}

	result := &CloneResult{
		Organization:       newOrg,
		SourceOrganization: source,
		Report:             report,
	}

	// Provisioning is decoupled: it starts only after the report is
	// final, and its failure lands in DeploymentError without touching
	// the clone outcome.
	deployment, deployErr := s.deployer.Provision(ctx, newOrg)
	if deployErr != nil {
		s.logger.Error("Post-clone provisioning failed",
			zap.String("new_org", newOrg.ID.String()),
			zap.Error(deployErr))
		result.DeploymentError = deployErr.Error()
		s.setDeploymentStatus(ctx, newOrg, models.DeployStatusFailed)
	} else if deployment != nil {
		result.Deployment = deployment
		newOrg.BaseURL = deployment.URL
		s.setDeploymentStatus(ctx, newOrg, models.DeployStatusDeployed)
	}

	return result, nil
}

// setDeploymentStatus is best-effort; a status write failure is logged and
// otherwise ignored.
func (s *cloneService) setDeploymentStatus(ctx context.Context, org *models.Organization, status string) {
	org.DeploymentStatus = status
	if err := s.orgRepo.UpdateDeploymentStatus(ctx, org.ID, status); err != nil {
		s.logger.Warn("Failed to update deployment status",
			zap.String("org_id", org.ID.String()),
			zap.String("status", status),
			zap.Error(err))
	}
}
