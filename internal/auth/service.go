package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/Techtuskers-redefined/shopgenie/internal/auth/credentials"
	"github.com/Techtuskers-redefined/shopgenie/internal/logger"
	"github.com/Techtuskers-redefined/shopgenie/internal/token"
	"github.com/Techtuskers-redefined/shopgenie/internal/user"

	"github.com/google/uuid"
)

// TokenPair is the access/refresh token pair returned by every
// successful auth flow.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Service implements the register, login, refresh and federated-login
// flows. It holds no persistent state of its own; every flow is a
// short-lived composition of the hasher, the token manager, the
// provider registry and the user store.
type Service struct {
	users    user.Store
	hasher   *credentials.Hasher
	tokens   *token.Manager
	denylist token.Denylist
	registry VerifierRegistry
	log      *logger.Logger
}

// NewService wires the auth service. denylist may be nil, in which
// case refresh tokens stay valid until expiry and logout is a no-op.
func NewService(
	users user.Store,
	hasher *credentials.Hasher,
	tokens *token.Manager,
	denylist token.Denylist,
	registry VerifierRegistry,
	log *logger.Logger,
) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		denylist: denylist,
		registry: registry,
		log:      log,
	}
}

// Register creates a password account and returns it with a fresh
// token pair. Email uniqueness is ultimately enforced by the store's
// unique constraint; the lookup here only provides the common-case
// error before hashing work is spent.
func (s *Service) Register(ctx context.Context, name, email, password string) (user.User, TokenPair, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if err := validateRegistration(name, email, password); err != nil {
		return user.User{}, TokenPair{}, err
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return user.User{}, TokenPair{}, ErrDuplicateAccount
	case !errors.Is(err, user.ErrNotFound):
		s.log.Error("auth: register lookup failed", "error", err.Error())
		return user.User{}, TokenPair{}, ErrStoreUnavailable
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user.User{}, TokenPair{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.users.Create(ctx, user.User{
		Name:         name,
		Email:        email,
		PasswordHash: &hash,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return user.User{}, TokenPair{}, ErrDuplicateAccount
		}
		s.log.Error("auth: register create failed", "error", err.Error())
		return user.User{}, TokenPair{}, ErrStoreUnavailable
	}

	pair, err := s.issuePair(created.ID)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}

	s.log.Info("auth: user registered", "user_id", created.ID.String())
	return created, pair, nil
}

// Login authenticates a password account. Unknown email, federated-only
// account and wrong password all collapse into ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (user.User, TokenPair, error) {
	email = strings.TrimSpace(email)

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, TokenPair{}, ErrInvalidCredentials
		}
		s.log.Error("auth: login lookup failed", "error", err.Error())
		return user.User{}, TokenPair{}, ErrStoreUnavailable
	}

	if u.PasswordHash == nil {
		return user.User{}, TokenPair{}, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, *u.PasswordHash) {
		return user.User{}, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(u.ID)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}

	s.log.Info("auth: user logged in", "user_id", u.ID.String())
	return u, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair.
// Rotation happens on every use: callers are expected to discard the
// presented token. Verification is pure; no store lookup is made, so a
// deleted account stays valid until its tokens expire.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	userID, jti, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, jti)
		if err != nil {
			s.log.Error("auth: denylist check failed", "error", err.Error())
			return TokenPair{}, ErrStoreUnavailable
		}
		if revoked {
			return TokenPair{}, ErrInvalidRefreshToken
		}
	}

	return s.issuePair(userID)
}

// FederatedLogin verifies a provider id_token and resolves it to an
// account by email, creating one on first contact. Accounts that
// already exist under the email are used as-is; the federated id is
// not back-linked onto them.
func (s *Service) FederatedLogin(ctx context.Context, providerName, idToken string) (user.User, TokenPair, error) {
	v, err := s.registry.Get(providerName)
	if err != nil {
		return user.User{}, TokenPair{}, ErrUnknownProvider
	}

	identity, err := v.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.log.Error("auth: provider key fetch timed out", "provider", providerName)
			return user.User{}, TokenPair{}, ErrUpstreamUnavailable
		}
		s.log.Info("auth: federated verification failed",
			"provider", providerName,
			"error", err.Error())
		return user.User{}, TokenPair{}, ErrFederatedVerification
	}

	u, err := s.users.GetByEmail(ctx, identity.Email)
	if errors.Is(err, user.ErrNotFound) {
		u, err = s.createFederated(ctx, identity)
	}
	if err != nil {
		s.log.Error("auth: federated resolve failed", "error", err.Error())
		return user.User{}, TokenPair{}, ErrStoreUnavailable
	}

	pair, err := s.issuePair(u.ID)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}

	s.log.Info("auth: federated login",
		"provider", providerName,
		"user_id", u.ID.String())
	return u, pair, nil
}

// Logout revokes the presented refresh token. It is idempotent and
// best-effort: an unverifiable token or a missing denylist is not an
// error, since the client drops its copy either way.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if s.denylist == nil {
		return nil
	}

	_, jti, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil
	}

	// The exact remaining lifetime is not tracked; the configured
	// refresh TTL is a safe upper bound for the denylist entry.
	if err := s.denylist.Revoke(ctx, jti, s.tokens.RefreshTTL()); err != nil {
		s.log.Error("auth: revoke failed", "error", err.Error())
		return ErrStoreUnavailable
	}
	return nil
}

// UserByID fetches the account summary behind a verified access token.
func (s *Service) UserByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, user.ErrNotFound
		}
		s.log.Error("auth: user fetch failed", "error", err.Error())
		return user.User{}, ErrStoreUnavailable
	}
	return u, nil
}

func (s *Service) createFederated(ctx context.Context, identity *Identity) (user.User, error) {
	name := identity.Name
	if name == "" {
		name = identity.Email
	}

	created, err := s.users.Create(ctx, user.User{
		Name:  name,
		Email: identity.Email,
		FederatedIDs: map[string]string{
			identity.Provider: identity.ProviderUserID,
		},
	})
	if errors.Is(err, user.ErrDuplicateEmail) {
		// Lost a create race with a concurrent first login; the row
		// now exists, use it.
		return s.users.GetByEmail(ctx, identity.Email)
	}
	return created, err
}

func (s *Service) issuePair(userID uuid.UUID) (TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.IssueRefreshToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// validateRegistration checks input rules in order and reports the
// first violation.
func validateRegistration(name, email, password string) error {
	if len(name) < 2 {
		return &ValidationError{Message: "Name must be at least 2 characters"}
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return &ValidationError{Message: "Please provide a valid email"}
	}
	if len(password) < 6 {
		return &ValidationError{Message: "Password must be at least 6 characters"}
	}
	return nil
}
