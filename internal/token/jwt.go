package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failure kinds. Callers that must not leak the failure
// mode to clients collapse these into a single response category.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenInvalid   = errors.New("token invalid")
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// Claims represents JWT claims with token type and user ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID `json:"user_id"`
	TokenType string    `json:"typ"`
}

// Config holds signing material and lifetimes for both token classes.
// It is injected at construction; the manager never reads process-wide
// state.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Manager issues and verifies access and refresh tokens backed by
// symmetric HMAC. Access and refresh tokens use distinct secrets, so a
// token signed with one class's key never verifies as the other.
type Manager struct {
	cfg Config
}

// NewManager creates a token manager from the given config.
func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg}
}

// RefreshTTL returns the configured refresh token lifetime. Revocation
// uses it as an upper bound on how long a denylist entry must live.
func (m *Manager) RefreshTTL() time.Duration {
	return m.cfg.RefreshTTL
}

// IssueAccessToken creates a short-lived access token for the user.
func (m *Manager) IssueAccessToken(userID uuid.UUID) (string, error) {
	return m.issue(userID, typeAccess, m.cfg.AccessTTL, m.cfg.AccessSecret)
}

// IssueRefreshToken creates a long-lived refresh token for the user.
// Each refresh token carries a unique JTI so it can be revoked
// individually.
func (m *Manager) IssueRefreshToken(userID uuid.UUID) (string, error) {
	return m.issue(userID, typeRefresh, m.cfg.RefreshTTL, m.cfg.RefreshSecret)
}

func (m *Manager) issue(userID uuid.UUID, typ string, ttl time.Duration, secret string) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		TokenType: typ,
	})

	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", typ, err)
	}
	return signed, nil
}

// VerifyAccess validates an access token and returns the embedded user ID.
func (m *Manager) VerifyAccess(tokenString string) (uuid.UUID, error) {
	claims, err := m.verify(tokenString, typeAccess, m.cfg.AccessSecret)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

// VerifyRefresh validates a refresh token and returns the embedded user
// ID along with the token's JTI.
func (m *Manager) VerifyRefresh(tokenString string) (uuid.UUID, string, error) {
	claims, err := m.verify(tokenString, typeRefresh, m.cfg.RefreshSecret)
	if err != nil {
		return uuid.Nil, "", err
	}
	return claims.UserID, claims.ID, nil
}

func (m *Manager) verify(tokenString, typ, secret string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, ErrTokenInvalid
		}
	}
	if !tok.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != typ {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
