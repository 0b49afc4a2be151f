//go:build integration

package repositories

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitecraft-inc/sitecraft-engine/pkg/models"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/testhelpers"
)

func TestAuditRepository_CreateAndGet(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	ctx := controlPlaneContext(t, engineDB)
	repo := NewAuditRepository()

	orgID := seedOrg(t, engineDB, "Audit Org")
	actorID := uuid.New()

	entry := &models.AuditLogEntry{
		OrganizationID: orgID,
		Action:         models.AuditActionOrgCloned,
		ActorID:        &actorID,
		Details: map[string]any{
			"source_organization_id": uuid.NewString(),
			"rows_cloned":            float64(42),
		},
	}
	require.NoError(t, repo.Create(ctx, entry))
	require.NotEqual(t, uuid.Nil, entry.ID)

	entries, err := repo.GetByOrganization(ctx, orgID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionOrgCloned, entries[0].Action)
	assert.Equal(t, actorID, *entries[0].ActorID)
	assert.Equal(t, float64(42), entries[0].Details["rows_cloned"])
}

func TestAuditRepository_CreateWithoutDetails(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	ctx := controlPlaneContext(t, engineDB)
	repo := NewAuditRepository()

	orgID := seedOrg(t, engineDB, "Audit Org Bare")

	entry := &models.AuditLogEntry{
		OrganizationID: orgID,
		Action:         models.AuditActionOrgCloned,
	}
	require.NoError(t, repo.Create(ctx, entry))

	entries, err := repo.GetByOrganization(ctx, orgID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].ActorID)
}
