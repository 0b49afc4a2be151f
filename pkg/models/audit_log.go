package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction constants for organization-level operations.
const (
	AuditActionOrgCreated = "organization.created"
	AuditActionOrgCloned  = "organization.cloned"
	AuditActionOrgDeleted = "organization.deleted"
)

// AuditLogEntry represents a single entry in the activity log.
// Stored in engine_audit_log table.
type AuditLogEntry struct {
	ID             uuid.UUID      `json:"id"`
	OrganizationID uuid.UUID      `json:"organization_id"`
	Action         string         `json:"action"`
	ActorID        *uuid.UUID     `json:"actor_id,omitempty"` // from JWT, nil for system operations
	Details        map[string]any `json:"details,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
