package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Techtuskers-redefined/shopgenie/internal/auth"

	"github.com/coreos/go-oidc/v3/oidc"
)

const (
	providerName  = "google"
	issuerURL     = "https://accounts.google.com"
	verifyTimeout = 10 * time.Second
)

// Provider verifies Google-issued id_tokens. It returns identity facts
// only; no user or token decisions are made here.
type Provider struct {
	verifier *oidc.IDTokenVerifier
}

// New initializes the Google verifier using OIDC discovery. clientID
// is the OAuth client id expected as the id_token audience.
func New(ctx context.Context, clientID string) (*Provider, error) {
	if clientID == "" {
		return nil, errors.New("google config missing client id")
	}

	oidcProvider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}

	return &Provider{
		verifier: oidcProvider.Verifier(&oidc.Config{
			ClientID: clientID,
		}),
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// Verify validates the id_token signature, audience and expiry against
// Google's published keys and returns a normalized identity.
func (p *Provider) Verify(ctx context.Context, rawIDToken string) (*auth.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("google id_token verification failed: %w", err)
	}

	var claims struct {
		Subject string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
	}

	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("google id_token claims parse failed: %w", err)
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, errors.New("google id_token missing required claims")
	}

	return &auth.Identity{
		Provider:       providerName,
		ProviderUserID: claims.Subject,
		Email:          claims.Email,
		Name:           claims.Name,
	}, nil
}
