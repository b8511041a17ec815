package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lablink/internal/logging"
	"github.com/example/lablink/internal/persistence"
	"github.com/example/lablink/internal/statestore"
)

func newAuthService(t *testing.T, store *statestore.Store) *AuthService {
	t.Helper()
	ids := &sequence{}
	tokens := &sequence{}
	return NewAuthServiceWithLogger(store, ids.next, func() string { return "token-" + tokens.next() }, testHasher(), logging.Discard())
}

func loginAdmin(t *testing.T, svc *AuthService) LoginResult {
	t.Helper()
	result, err := svc.Login(context.Background(), LoginParams{Email: "admin@lablink.test", Password: "Admin12345!"})
	require.NoError(t, err)
	return result
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("issues a token for the seeded administrator", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		svc := newAuthService(t, store)

		result := loginAdmin(t, svc)
		assert.Equal(t, "token-1", result.Token)
		assert.Equal(t, User{ID: "user-admin", Email: "admin@lablink.test", Name: "Test Admin"}, result.User)
		assert.Equal(t, "user-admin", store.Snapshot().Tokens["token-1"])
	})

	t.Run("matches email case-insensitively", func(t *testing.T) {
		t.Parallel()
		svc := newAuthService(t, newTestStore(t))

		_, err := svc.Login(ctx, LoginParams{Email: "  Admin@LabLink.test ", Password: "Admin12345!"})
		require.NoError(t, err)
	})

	t.Run("every login mints a distinct token", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		svc := newAuthService(t, store)

		first := loginAdmin(t, svc)
		second := loginAdmin(t, svc)

		assert.NotEqual(t, first.Token, second.Token)
		assert.Len(t, store.Snapshot().Tokens, 2)
	})

	t.Run("rejects bad credentials without touching state", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		svc := newAuthService(t, store)

		cases := []LoginParams{
			{Email: "admin@lablink.test", Password: "wrong"},
			{Email: "nobody@lablink.test", Password: "Admin12345!"},
			{Email: "", Password: "Admin12345!"},
			{Email: "admin@lablink.test", Password: ""},
		}
		for _, params := range cases {
			_, err := svc.Login(ctx, params)
			require.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Equal(t, "Invalid credentials", err.Error())
		}
		assert.Empty(t, store.Snapshot().Tokens)
		assert.EqualValues(t, 0, store.Revision())
	})

	t.Run("upgrades plaintext secrets to a hash", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		seedState(t, store, func(state *persistence.State) {
			state.Users = append(state.Users, persistence.User{ID: "user-legacy", Email: "legacy@lablink.test", Name: "Legacy", Password: "secret"})
		})
		svc := newAuthService(t, store)

		_, err := svc.Login(ctx, LoginParams{Email: "legacy@lablink.test", Password: "nope"})
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Login(ctx, LoginParams{Email: "legacy@lablink.test", Password: "secret"})
		require.NoError(t, err)

		legacy := store.Snapshot().Users[1]
		assert.Empty(t, legacy.Password)
		require.NotEmpty(t, legacy.PasswordHash)
		require.NoError(t, VerifyPassword(legacy.PasswordHash, "secret"))

		_, err = svc.Login(ctx, LoginParams{Email: "legacy@lablink.test", Password: "secret"})
		require.NoError(t, err, "hashed secret keeps working")
	})
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("requires email and password", func(t *testing.T) {
		t.Parallel()
		svc := newAuthService(t, newTestStore(t))

		_, err := svc.Register(ctx, RegisterParams{Email: " ", Password: ""})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "email and password are required", vErr.Error())
		assert.Contains(t, vErr.FieldErrors, "email")
		assert.Contains(t, vErr.FieldErrors, "password")
	})

	t.Run("rejects duplicate emails", func(t *testing.T) {
		t.Parallel()
		svc := newAuthService(t, newTestStore(t))

		_, err := svc.Register(ctx, RegisterParams{Email: "ADMIN@lablink.test", Password: "x"})
		require.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, "User already exists", err.Error())
	})

	t.Run("stores a hash and defaults the name to the email", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		svc := newAuthService(t, store)

		user, err := svc.Register(ctx, RegisterParams{Email: "New@Lablink.test", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, User{ID: "user-1", Email: "new@lablink.test", Name: "new@lablink.test"}, user)

		stored := store.Snapshot().Users[1]
		assert.Empty(t, stored.Password)
		require.NoError(t, VerifyPassword(stored.PasswordHash, "pw"))

		result, err := svc.Login(ctx, LoginParams{Email: "new@lablink.test", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "user-1", result.User.ID)
	})
}

func TestAuthService_Resolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	svc := newAuthService(t, store)
	token := loginAdmin(t, svc).Token

	user, err := svc.CurrentUser(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "user-admin", user.ID)

	cases := map[string]string{
		"":                 "Missing bearer token",
		"Token " + token:   "Missing bearer token",
		"Bearer ":          "Missing bearer token",
		"bearer " + token:  "Missing bearer token",
		"Bearer not-valid": "Invalid session",
	}
	for header, message := range cases {
		_, err := svc.CurrentUser(ctx, header)
		require.ErrorIs(t, err, ErrUnauthorized, header)
		assert.Equal(t, message, err.Error(), header)
	}

	seedState(t, store, func(state *persistence.State) {
		state.Users = state.Users[:0]
	})
	_, err = svc.Resolve(ctx, token)
	require.ErrorIs(t, err, ErrUnauthorized, "token of a removed user is stale")
}

func TestAuthService_Logout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	svc := newAuthService(t, store)
	token := loginAdmin(t, svc).Token

	require.NoError(t, svc.Logout(ctx, token))
	assert.Empty(t, store.Snapshot().Tokens)

	_, err := svc.Resolve(ctx, token)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.ErrorIs(t, svc.Logout(ctx, token), ErrUnauthorized)
}

func TestAuthService_StaleWriterSurfacesAsConflict(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	slot := persistence.NewMemorySlot()
	first := newAuthService(t, openTestStore(t, slot))
	second := newAuthService(t, openTestStore(t, slot))

	loginAdmin(t, first)

	_, err := second.Login(ctx, LoginParams{Email: "admin@lablink.test", Password: "Admin12345!"})
	require.ErrorIs(t, err, ErrConflict)

	// The failed writer reloaded, so a retry by the caller succeeds.
	loginAdmin(t, second)
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	token, ok := BearerToken("Bearer  abc ")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)
}
