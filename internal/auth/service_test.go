package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Techtuskers-redefined/shopgenie/internal/auth/credentials"
	"github.com/Techtuskers-redefined/shopgenie/internal/logger"
	"github.com/Techtuskers-redefined/shopgenie/internal/token"
	"github.com/Techtuskers-redefined/shopgenie/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeVerifier struct {
	name     string
	identity *Identity
	err      error
}

func (f *fakeVerifier) Name() string { return f.name }

func (f *fakeVerifier) Verify(_ context.Context, _ string) (*Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

type fakeRegistry struct {
	verifiers map[string]Verifier
}

func (r *fakeRegistry) Get(name string) (Verifier, error) {
	v, ok := r.verifiers[name]
	if !ok {
		return nil, fmt.Errorf("unknown federated provider: %s", name)
	}
	return v, nil
}

func newTestService(t *testing.T, verifiers ...Verifier) (*Service, *user.MemoryStore) {
	t.Helper()

	store := user.NewMemoryStore()
	reg := &fakeRegistry{verifiers: map[string]Verifier{}}
	for _, v := range verifiers {
		reg.verifiers[v.Name()] = v
	}

	svc := NewService(
		store,
		credentials.NewHasher(bcrypt.MinCost),
		token.NewManager(token.Config{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
		}),
		token.NewMemoryDenylist(),
		reg,
		logger.New(8), // quiet below error
	)
	return svc, store
}

func TestService_RegisterThenLogin_SameSubject(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	registered, pair, err := svc.Register(ctx, "Alice", "a@x.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	loggedIn, _, err := svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, loggedIn.ID)
	assert.Equal(t, "Alice", loggedIn.Name)
}

func TestService_Register_ValidationOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		want     string
	}{
		{"short name", "A", "a@x.com", "secret1", "Name must be at least 2 characters"},
		{"bad email", "Alice", "not-an-email", "secret1", "Please provide a valid email"},
		{"short password", "Alice", "a@x.com", "12345", "Password must be at least 6 characters"},
		{"name checked first", "A", "not-an-email", "1", "Name must be at least 2 characters"},
		{"email checked before password", "Alice", "not-an-email", "1", "Please provide a valid email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tt.userName, tt.email, tt.password)
			ve, ok := AsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Equal(t, tt.want, ve.Message)
		})
	}
}

func TestService_Register_Duplicate(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	first, _, err := svc.Register(ctx, "Alice", "a@x.com", "secret1")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "Mallory", "a@x.com", "other-password")
	require.ErrorIs(t, err, ErrDuplicateAccount)

	// Case variants collide too, and the original record is untouched.
	_, _, err = svc.Register(ctx, "Mallory", "A@X.COM", "other-password")
	require.ErrorIs(t, err, ErrDuplicateAccount)

	existing, err := store.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, existing.ID)
	assert.Equal(t, "Alice", existing.Name)
}

func TestService_Login_CollapsedErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, _, err := svc.Register(ctx, "Alice", "a@x.com", "secret1")
	require.NoError(t, err)

	_, _, wrongPassword := svc.Login(ctx, "a@x.com", "wrong")
	_, _, unknownEmail := svc.Login(ctx, "nobody@x.com", "secret1")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	// Identical error values, so responses cannot reveal which part
	// was wrong.
	assert.Equal(t, wrongPassword, unknownEmail)
}

func TestService_Login_FederatedOnlyAccount(t *testing.T) {
	ctx := context.Background()
	v := &fakeVerifier{
		name: "google",
		identity: &Identity{
			Provider:       "google",
			ProviderUserID: "sub-123",
			Email:          "fed@x.com",
			Name:           "Fed User",
		},
	}
	svc, _ := newTestService(t, v)

	_, _, err := svc.FederatedLogin(ctx, "google", "raw-id-token")
	require.NoError(t, err)

	// No password on the account; login must fail with the same
	// generic error as any bad credential.
	_, _, err = svc.Login(ctx, "fed@x.com", "anything")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Refresh_RotatesPair(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	registered, pair, err := svc.Register(ctx, "Alice", "a@x.com", "secret1")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The rotated pair still belongs to the same subject.
	again, _, err := svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, again.ID)
}

func TestService_Refresh_RejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, pair, err := svc.Register(ctx, "Alice", "a@x.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestService_Refresh_CollapsesFailureKinds(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Refresh(ctx, tok)
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	}
}

func TestService_Logout_RevokesRefreshToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, pair, err := svc.Register(ctx, "Alice", "a@x.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestService_Logout_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.Logout(ctx, "garbage"))

	_, pair, err := svc.Register(ctx, "Alice", "a@x.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))
	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))
}

func TestService_FederatedLogin_CreatesOnFirstContact(t *testing.T) {
	ctx := context.Background()
	v := &fakeVerifier{
		name: "google",
		identity: &Identity{
			Provider:       "google",
			ProviderUserID: "sub-123",
			Email:          "fed@x.com",
			Name:           "Fed User",
		},
	}
	svc, store := newTestService(t, v)

	first, pair, err := svc.FederatedLogin(ctx, "google", "raw-id-token")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, "Fed User", first.Name)
	assert.Nil(t, first.PasswordHash)
	assert.Equal(t, map[string]string{"google": "sub-123"}, first.FederatedIDs)

	// Second login resolves to the same account.
	second, _, err := svc.FederatedLogin(ctx, "google", "raw-id-token")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	stored, err := store.GetByEmail(ctx, "fed@x.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
}

func TestService_FederatedLogin_NameFallsBackToEmail(t *testing.T) {
	ctx := context.Background()
	v := &fakeVerifier{
		name: "apple",
		identity: &Identity{
			Provider:       "apple",
			ProviderUserID: "apple-sub",
			Email:          "fruit@x.com",
		},
	}
	svc, _ := newTestService(t, v)

	u, _, err := svc.FederatedLogin(ctx, "apple", "raw-id-token")
	require.NoError(t, err)
	assert.Equal(t, "fruit@x.com", u.Name)
}

func TestService_FederatedLogin_NoBackfillOnExistingAccount(t *testing.T) {
	ctx := context.Background()
	v := &fakeVerifier{
		name: "google",
		identity: &Identity{
			Provider:       "google",
			ProviderUserID: "sub-123",
			Email:          "a@x.com",
			Name:           "Alice G",
		},
	}
	svc, store := newTestService(t, v)

	registered, _, err := svc.Register(ctx, "Alice", "a@x.com", "secret1")
	require.NoError(t, err)

	resolved, _, err := svc.FederatedLogin(ctx, "google", "raw-id-token")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, resolved.ID)

	// Resolution is by email alone; the federated id is not linked
	// onto the existing record.
	stored, err := store.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.FederatedIDs)
	assert.Equal(t, "Alice", stored.Name)
}

func TestService_FederatedLogin_UnknownProvider(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.FederatedLogin(context.Background(), "myspace", "raw-id-token")
	require.ErrorIs(t, err, ErrUnknownProvider)
}

func TestService_FederatedLogin_VerificationFailure(t *testing.T) {
	v := &fakeVerifier{
		name: "google",
		err:  errors.New("bad signature"),
	}
	svc, _ := newTestService(t, v)

	_, _, err := svc.FederatedLogin(context.Background(), "google", "raw-id-token")
	require.ErrorIs(t, err, ErrFederatedVerification)
}

func TestService_FederatedLogin_UpstreamTimeout(t *testing.T) {
	v := &fakeVerifier{
		name: "google",
		err:  fmt.Errorf("fetching keys: %w", context.DeadlineExceeded),
	}
	svc, _ := newTestService(t, v)

	_, _, err := svc.FederatedLogin(context.Background(), "google", "raw-id-token")
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestService_UserByID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	registered, _, err := svc.Register(ctx, "Alice", "a@x.com", "secret1")
	require.NoError(t, err)

	u, err := svc.UserByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
}
