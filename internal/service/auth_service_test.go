package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticketdesk/internal/config"
	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/service"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util"
)

func newAuthService(users *memoryUserRepo) *service.AuthService {
	cfg := config.AuthConfig{JWTSecret: "test-secret", TokenTTLHours: 1, BcryptCost: bcrypt.MinCost}
	return service.NewAuthService(cfg, service.AuthDependencies{UserRepo: users})
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, status, apperrors.ToDomainError(err).HTTPStatus)
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(newMemoryUserRepo())

	user, token, _, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.NotEmpty(t, token)
	require.Equal(t, domain.RoleUser, user.Role)
	require.True(t, user.IsActive)
	require.NotEqual(t, "password1", user.PasswordHash)

	loggedIn, loginToken, _, err := svc.Login(ctx, "alice@example.com", "password1")
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)

	claims, err := svc.TokenManager().ParseToken(loginToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, domain.RoleUser, claims.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(newMemoryUserRepo())

	_, _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	// different name and password must not matter
	_, _, _, err = svc.Register(ctx, "Other", "alice@example.com", "different")
	requireStatus(t, err, http.StatusConflict)
	require.EqualError(t, apperrors.ToDomainError(err), "Email already registered")
}

func TestRegisterMissingFields(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(newMemoryUserRepo())

	_, _, _, err := svc.Register(ctx, "", "alice@example.com", "password1")
	requireStatus(t, err, http.StatusBadRequest)
	_, _, _, err = svc.Register(ctx, "Alice", "", "password1")
	requireStatus(t, err, http.StatusBadRequest)
	_, _, _, err = svc.Register(ctx, "Alice", "alice@example.com", "")
	requireStatus(t, err, http.StatusBadRequest)
}

func TestLoginNeverRevealsWhichFieldWasWrong(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(newMemoryUserRepo())

	_, _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	_, _, _, unknownEmail := svc.Login(ctx, "nobody@example.com", "password1")
	requireStatus(t, unknownEmail, http.StatusUnauthorized)

	_, _, _, wrongPassword := svc.Login(ctx, "alice@example.com", "wrong")
	requireStatus(t, wrongPassword, http.StatusUnauthorized)

	require.Equal(t,
		apperrors.ToDomainError(unknownEmail).Message,
		apperrors.ToDomainError(wrongPassword).Message)
}

func TestLoginRoleComesFromStoredRecord(t *testing.T) {
	ctx := context.Background()
	users := newMemoryUserRepo()
	svc := newAuthService(users)

	user, _, _, err := svc.Register(ctx, "Root", "root@example.com", "password1")
	require.NoError(t, err)

	// promote out of band, then log in again
	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	stored.Role = domain.RoleAdmin
	require.NoError(t, users.Update(ctx, stored))

	_, token, _, err := svc.Login(ctx, "root@example.com", "password1")
	require.NoError(t, err)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestUpdateProfilePartialFields(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(newMemoryUserRepo())

	user, _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	contact := "555-0100"
	updated, err := svc.UpdateProfile(ctx, user.ID, service.ProfileUpdateInput{Contact: &contact})
	require.NoError(t, err)
	require.Equal(t, "Alice", updated.Name)
	require.Equal(t, "555-0100", updated.Contact)

	name := "Alice B"
	addresses := []domain.Address{{Street: "1 Main St", City: "Springfield", Country: "US"}}
	updated, err = svc.UpdateProfile(ctx, user.ID, service.ProfileUpdateInput{Name: &name, Addresses: &addresses})
	require.NoError(t, err)
	require.Equal(t, "Alice B", updated.Name)
	require.Equal(t, "555-0100", updated.Contact)
	require.Len(t, updated.Addresses, 1)

	empty := "   "
	_, err = svc.UpdateProfile(ctx, user.ID, service.ProfileUpdateInput{Name: &empty})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestProfileOfDeletedUser(t *testing.T) {
	ctx := context.Background()
	users := newMemoryUserRepo()
	svc := newAuthService(users)

	user, _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)
	require.NoError(t, users.Delete(ctx, user.ID))

	_, err = svc.GetProfile(ctx, user.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestDeactivateDoesNotRevokeTokens(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(newMemoryUserRepo())

	user, token, _, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	deactivated, err := svc.SetActive(ctx, user.ID, false)
	require.NoError(t, err)
	require.False(t, deactivated.IsActive)

	// the outstanding token keeps verifying until natural expiry
	_, err = svc.TokenManager().ParseToken(token)
	require.NoError(t, err)

	activated, err := svc.SetActive(ctx, user.ID, true)
	require.NoError(t, err)
	require.True(t, activated.IsActive)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(newMemoryUserRepo())

	user, _, _, err := svc.Register(ctx, "Alice", "alice@example.com", "password1")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))
	requireStatus(t, svc.DeleteUser(ctx, user.ID), http.StatusNotFound)
	requireStatus(t, svc.DeleteUser(ctx, "not-a-uuid"), http.StatusBadRequest)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Empty(t, users)
}
