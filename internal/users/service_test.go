package users_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"number-inventory/internal/apperr"
	"number-inventory/internal/rbac"
	"number-inventory/internal/store/memstore"
	"number-inventory/internal/users"
)

func newService(t *testing.T) (*users.Service, users.User) {
	t.Helper()
	svc := users.NewService(memstore.New(), users.NewHasher(bcrypt.MinCost))
	admin, created, err := svc.EnsureAdmin(context.Background(), "admin", "Admin@Example.com", "admin123")
	require.NoError(t, err)
	require.True(t, created)
	return svc, admin
}

func TestAuthenticate(t *testing.T) {
	svc, admin := newService(t)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "admin", "nope")
	require.ErrorIs(t, err, users.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "ghost", "admin123")
	require.ErrorIs(t, err, users.ErrInvalidCredentials)

	u, err := svc.Authenticate(ctx, "admin", "admin123")
	require.NoError(t, err)
	require.Equal(t, admin.ID, u.ID)
	require.NotNil(t, u.LastLogin)

	stored, err := svc.Get(ctx, admin.ID)
	require.NoError(t, err)
	require.Equal(t, u.LastLogin, stored.LastLogin)
}

func TestAuthenticate_Inactive(t *testing.T) {
	svc, admin := newService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, rbac.RoleAdmin, users.NewUser{Username: "ops", Email: "ops@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, admin.ID, rbac.RoleAdmin, u.ID))

	_, err = svc.Authenticate(ctx, "ops", "secret1")
	require.ErrorIs(t, err, users.ErrInactive)

	id, err := svc.Identity(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, id.Active)
}

func TestCreate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, rbac.RoleAdmin, users.NewUser{Username: " ops ", Email: "OPS@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, "ops", u.Username)
	require.Equal(t, "ops@example.com", u.Email)
	require.Equal(t, rbac.RolePlanner, u.Role)
	require.True(t, u.IsActive)
	require.NotEqual(t, "secret1", u.PasswordHash)

	_, err = svc.Create(ctx, rbac.RoleAdmin, users.NewUser{Username: "other", Email: "Ops@Example.com", Password: "secret1"})
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.Create(ctx, rbac.RoleAdmin, users.NewUser{Username: "x", Email: "x@example.com", Password: "secret1"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Create(ctx, rbac.RolePlanner, users.NewUser{Username: "sneaky", Email: "s@example.com", Password: "secret1"})
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestUpdate(t *testing.T) {
	svc, admin := newService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, rbac.RoleAdmin, users.NewUser{Username: "ops", Email: "ops@example.com", Password: "secret1"})
	require.NoError(t, err)

	role := rbac.RoleAdmin
	upd, err := svc.Update(ctx, rbac.RoleAdmin, u.ID, users.Changes{Role: &role})
	require.NoError(t, err)
	require.Equal(t, rbac.RoleAdmin, upd.Role)

	taken := "admin"
	_, err = svc.Update(ctx, rbac.RoleAdmin, u.ID, users.Changes{Username: &taken})
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.Update(ctx, rbac.RoleAdmin, "missing", users.Changes{Role: &role})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	err = svc.Deactivate(ctx, admin.ID, rbac.RoleAdmin, admin.ID)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateProfile(t *testing.T) {
	svc, admin := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, rbac.RoleAdmin, users.NewUser{Username: "ops", Email: "ops@example.com", Password: "secret1"})
	require.NoError(t, err)

	u, err := svc.UpdateProfile(ctx, admin.ID, " New@Example.com ")
	require.NoError(t, err)
	require.Equal(t, "new@example.com", u.Email)

	_, err = svc.UpdateProfile(ctx, admin.ID, "ops@example.com")
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.UpdateProfile(ctx, admin.ID, "not-an-email")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	svc, admin := newService(t)

	again, created, err := svc.EnsureAdmin(context.Background(), "admin", "admin@example.com", "different")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, admin.ID, again.ID)
}

func TestListAndStats(t *testing.T) {
	svc, admin := newService(t)
	ctx := context.Background()

	for _, name := range []string{"alpha", "bravo", "charlie"} {
		_, err := svc.Create(ctx, rbac.RoleAdmin, users.NewUser{Username: name, Email: name + "@example.com", Password: "secret1"})
		require.NoError(t, err)
	}
	list, total, err := svc.List(ctx, rbac.RoleAdmin, users.ListQuery{Search: "BRA"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "bravo", list[0].Username)

	list, total, err = svc.List(ctx, rbac.RoleAdmin, users.ListQuery{Role: rbac.RolePlanner, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, list, 2)

	list, _, err = svc.List(ctx, rbac.RoleAdmin, users.ListQuery{Search: "charlie"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, admin.ID, rbac.RoleAdmin, list[0].ID))

	st, err := svc.Stats(ctx, rbac.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, users.Stats{
		TotalUsers:          4,
		ActiveUsers:         3,
		InactiveUsers:       1,
		AdminUsers:          1,
		PlannerUsers:        3,
		RecentRegistrations: 4,
	}, st)
}

func TestStats_AdminOnly(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Stats(context.Background(), rbac.RolePlanner)
	require.True(t, errors.Is(err, apperr.ErrUnauthorized), "got %v", err)
}
