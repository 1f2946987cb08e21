package services

import (
	"context"
	"testing"

	"github.com/Brijesh59/kite/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestAdminServiceImpl_ListUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		env.seedUser(t, email, "", domain.RoleUser)
	}
	env.seedUser(t, "admin@example.com", "", domain.RoleAdmin)

	page, err := env.admin.ListUsers(ctx, domain.UserFilter{Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, int64(4), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Users, 3)

	page, err = env.admin.ListUsers(ctx, domain.UserFilter{Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, 10, page.Limit)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "admin@example.com", page.Users[0].Email)

	page, err = env.admin.ListUsers(ctx, domain.UserFilter{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 100, page.Limit)

	_, err = env.admin.ListUsers(ctx, domain.UserFilter{Role: "ROOT"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestAdminServiceImpl_CreateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "taken@example.com", "5551234567", domain.RoleUser)

	user, err := env.admin.CreateUser(ctx, domain.CreateUserInput{
		Name: "Org", Email: "Org@Example.com", Password: testPassword, Role: domain.RoleOrganiser,
	})
	require.NoError(t, err)
	assert.Equal(t, "org@example.com", user.Email)
	assert.Equal(t, domain.RoleOrganiser, user.Role)
	assert.True(t, user.IsActive)

	_, err = env.svc.Login(ctx, domain.LoginInput{Email: "org@example.com", Password: testPassword})
	assert.NoError(t, err)

	defaulted, err := env.admin.CreateUser(ctx, domain.CreateUserInput{Name: "U", Email: "u@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, defaulted.Role)

	tests := []struct {
		name    string
		in      domain.CreateUserInput
		wantErr error
	}{
		{"duplicate email", domain.CreateUserInput{Name: "X", Email: "taken@example.com", Password: testPassword}, domain.ErrAlreadyExists},
		{"duplicate mobile", domain.CreateUserInput{Name: "X", Email: "x@example.com", Mobile: "5551234567", Password: testPassword}, domain.ErrAlreadyExists},
		{"unknown role", domain.CreateUserInput{Name: "X", Email: "y@example.com", Password: testPassword, Role: "ROOT"}, domain.ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.admin.CreateUser(ctx, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantErr.Error(), err.Error())
		})
	}
}

func TestAdminServiceImpl_UpdateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.seedUser(t, "alice@example.com", "5551234567", domain.RoleUser)
	env.seedUser(t, "bob@example.com", "5559876543", domain.RoleUser)

	updated, err := env.admin.UpdateUser(ctx, alice.ID, domain.UpdateUserInput{
		Name: ptr("Alice Artist"),
		Role: ptr(domain.RoleArtist),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Artist", updated.Name)
	assert.Equal(t, domain.RoleArtist, updated.Role)
	require.NotNil(t, updated.Mobile)

	_, err = env.admin.UpdateUser(ctx, alice.ID, domain.UpdateUserInput{Email: ptr("BOB@example.com")})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = env.admin.UpdateUser(ctx, alice.ID, domain.UpdateUserInput{Mobile: ptr("5559876543")})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = env.admin.UpdateUser(ctx, alice.ID, domain.UpdateUserInput{Email: ptr("alice@example.com")})
	assert.NoError(t, err, "keeping one's own email is not a duplicate")

	cleared, err := env.admin.UpdateUser(ctx, alice.ID, domain.UpdateUserInput{Mobile: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.Mobile)

	_, err = env.admin.UpdateUser(ctx, alice.ID, domain.UpdateUserInput{Role: ptr(domain.Role("ROOT"))})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	_, err = env.admin.UpdateUser(ctx, "missing", domain.UpdateUserInput{Name: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminServiceImpl_DeactivationRevokesSessions(t *testing.T) {
	tests := []struct {
		name       string
		deactivate func(env *testEnv, id string) error
	}{
		{"deactivate", func(env *testEnv, id string) error {
			_, err := env.admin.DeactivateUser(context.Background(), id)
			return err
		}},
		{"update isActive", func(env *testEnv, id string) error {
			_, err := env.admin.UpdateUser(context.Background(), id, domain.UpdateUserInput{IsActive: ptr(false)})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			user := env.seedUser(t, "alice@example.com", "", domain.RoleUser)

			login, err := env.svc.Login(ctx, domain.LoginInput{Email: "alice@example.com", Password: testPassword})
			require.NoError(t, err)

			require.NoError(t, tt.deactivate(env, user.ID))

			_, err = env.sessions.FindByToken(ctx, login.Tokens.RefreshToken)
			assert.ErrorIs(t, err, domain.ErrSessionNotFound)

			_, err = env.svc.Login(ctx, domain.LoginInput{Email: "alice@example.com", Password: testPassword})
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

			_, err = env.svc.GetCurrentUser(ctx, user.ID)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestAdminServiceImpl_DeleteUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedUser(t, "admin@example.com", "", domain.RoleAdmin)
	user := env.seedUser(t, "alice@example.com", "", domain.RoleUser)

	err := env.admin.DeleteUser(ctx, admin.ID)
	assert.ErrorIs(t, err, domain.ErrLastAdmin)
	assert.EqualError(t, err, "Cannot delete the last admin user")

	login, err := env.svc.Login(ctx, domain.LoginInput{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)

	require.NoError(t, env.admin.DeleteUser(ctx, user.ID))
	_, err = env.admin.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.sessions.FindByToken(ctx, login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	second := env.seedUser(t, "admin2@example.com", "", domain.RoleAdmin)
	require.NoError(t, env.admin.DeleteUser(ctx, second.ID))

	assert.ErrorIs(t, env.admin.DeleteUser(ctx, "missing"), domain.ErrNotFound)
	assert.Len(t, env.audit.Events(domain.UserDeletedEvent), 4)
}
