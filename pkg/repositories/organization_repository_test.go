//go:build integration

package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitecraft-inc/sitecraft-engine/pkg/apperrors"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/database"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/models"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/testhelpers"
)

// controlPlaneContext returns a context carrying an unscoped connection,
// as the clone service does for cross-organization work.
func controlPlaneContext(t *testing.T, engineDB *testhelpers.EngineDB) context.Context {
	t.Helper()
	ctx := context.Background()
	scope, err := engineDB.DB.WithoutOrg(ctx)
	require.NoError(t, err)
	t.Cleanup(scope.Close)
	return database.SetOrgScope(ctx, scope)
}

func TestOrganizationRepository_CreateAndGet(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	ctx := controlPlaneContext(t, engineDB)
	repo := NewOrganizationRepository()

	org := &models.Organization{
		Name: "Acme Sites",
		Kind: models.OrgKindAgency,
	}
	require.NoError(t, repo.Create(ctx, org))
	require.NotEqual(t, uuid.Nil, org.ID)

	got, err := repo.Get(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Sites", got.Name)
	assert.Equal(t, models.OrgKindAgency, got.Kind)
	assert.Equal(t, models.DeployStatusPending, got.DeploymentStatus)
	assert.Nil(t, got.BillingCustomerID)
	assert.Nil(t, got.Domain)
}

func TestOrganizationRepository_GetMissing(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	ctx := controlPlaneContext(t, engineDB)
	repo := NewOrganizationRepository()

	_, err := repo.Get(ctx, uuid.New())
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestOrganizationRepository_UpdateDeploymentStatus(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	ctx := controlPlaneContext(t, engineDB)
	repo := NewOrganizationRepository()

	org := &models.Organization{Name: "Deploy Target"}
	require.NoError(t, repo.Create(ctx, org))

	require.NoError(t, repo.UpdateDeploymentStatus(ctx, org.ID, models.DeployStatusDeployed))

	got, err := repo.Get(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeployStatusDeployed, got.DeploymentStatus)

	err = repo.UpdateDeploymentStatus(ctx, uuid.New(), models.DeployStatusFailed)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
