package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgcatalog/backend/internal/apperrors"
	"github.com/tgcatalog/backend/internal/models"
)

func newUserService(t *testing.T) (*UserService, *fakeManager) {
	t.Helper()
	m := &fakeManager{
		users: newMemUsersRepo(),
		audit: newMemAuditRepo(),
	}
	return NewUserService(nil, m, nopLogger{}), m
}

func TestListUsers(t *testing.T) {
	svc, m := newUserService(t)
	seedUser(t, m, models.RoleUser)
	seedUser(t, m, models.RoleUser)
	seedUser(t, m, models.RoleAdmin)

	list, total, err := svc.ListUsers(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, int64(3), total)
}

func TestGetUser_NotFound(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.GetUser(context.Background(), 404)
	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "User not found", notFound.Message)
}

func TestSetBlocked(t *testing.T) {
	svc, m := newUserService(t)
	admin := seedUser(t, m, models.RoleAdmin)
	target := seedUser(t, m, models.RoleUser)

	updated, err := svc.SetBlocked(context.Background(), admin, target.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsBlocked)

	entries, err := m.audit.ListByEntity(context.Background(), models.EntityUser, target.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, admin.ID, entries[0].ActorID)
	assert.Equal(t, models.ActionUpdate, entries[0].Action)

	unblocked, err := svc.SetBlocked(context.Background(), admin, target.ID, false)
	require.NoError(t, err)
	assert.False(t, unblocked.IsBlocked)
}

func TestSetBlocked_CannotBlockYourself(t *testing.T) {
	svc, m := newUserService(t)
	admin := seedUser(t, m, models.RoleAdmin)

	_, err := svc.SetBlocked(context.Background(), admin, admin.ID, true)
	var validation *apperrors.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "Cannot block yourself", validation.Message)
}

func TestSetBlocked_NoopWhenUnchanged(t *testing.T) {
	svc, m := newUserService(t)
	admin := seedUser(t, m, models.RoleAdmin)
	target := seedUser(t, m, models.RoleUser)

	_, err := svc.SetBlocked(context.Background(), admin, target.ID, false)
	require.NoError(t, err)

	entries, err := m.audit.ListByEntity(context.Background(), models.EntityUser, target.ID, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, entries, "a no-op change should not be audited")
}

func TestSetRole(t *testing.T) {
	svc, m := newUserService(t)
	admin := seedUser(t, m, models.RoleAdmin)
	target := seedUser(t, m, models.RoleUser)

	updated, err := svc.SetRole(context.Background(), admin, target.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	entries, err := m.audit.ListByEntity(context.Background(), models.EntityUser, target.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionUpdate, entries[0].Action)
}

func TestSetRole_Validation(t *testing.T) {
	svc, m := newUserService(t)
	admin := seedUser(t, m, models.RoleAdmin)
	target := seedUser(t, m, models.RoleUser)

	t.Run("unknown role", func(t *testing.T) {
		_, err := svc.SetRole(context.Background(), admin, target.ID, models.UserRole("superuser"))
		var validation *apperrors.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "Invalid role", validation.Message)
	})

	t.Run("own role", func(t *testing.T) {
		_, err := svc.SetRole(context.Background(), admin, admin.ID, models.RoleUser)
		var validation *apperrors.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "Cannot change your own role", validation.Message)
	})
}
