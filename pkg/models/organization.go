// Package models contains domain types for sitecraft-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents an isolated customer account. Every site entity
// row is owned by exactly one organization.
type Organization struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Kind              string    `json:"kind"`
	BaseURL           string    `json:"base_url"`
	DeploymentStatus  string    `json:"deployment_status"`
	BillingCustomerID *string   `json:"-"`
	Domain            *string   `json:"domain,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Organization kind constants.
const (
	OrgKindStandard = "standard"
	OrgKindAgency   = "agency"
	OrgKindTemplate = "template"
	OrgKindPlatform = "platform"
)

// Deployment status constants.
const (
	DeployStatusPending  = "pending"
	DeployStatusDeployed = "deployed"
	DeployStatusFailed   = "failed"
)

// CloneableKind reports whether an organization of the given kind may be
// used as a clone source. Platform organizations hold shared infrastructure
// rows and are never cloned.
func CloneableKind(kind string) bool {
	return kind != OrgKindPlatform
}

// CanCloneFrom reports whether an actor whose own organization is of the
// given kind is allowed to start a clone.
func CanCloneFrom(actorKind string) bool {
	return actorKind == OrgKindStandard || actorKind == OrgKindAgency
}
