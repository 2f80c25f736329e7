package apple

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Techtuskers-redefined/shopgenie/internal/auth"

	"github.com/coreos/go-oidc/v3/oidc"
)

const (
	providerName  = "apple"
	issuerURL     = "https://appleid.apple.com"
	verifyTimeout = 10 * time.Second
)

// Provider verifies Sign in with Apple id_tokens. Apple id_tokens
// never carry a display name, so Identity.Name is always empty and
// callers fall back to the email.
type Provider struct {
	verifier *oidc.IDTokenVerifier
}

// New initializes the Apple verifier using OIDC discovery. serviceID
// is the Services ID expected as the id_token audience.
func New(ctx context.Context, serviceID string) (*Provider, error) {
	if serviceID == "" {
		return nil, errors.New("apple config missing service id")
	}

	oidcProvider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init apple oidc provider: %w", err)
	}

	return &Provider{
		verifier: oidcProvider.Verifier(&oidc.Config{
			ClientID: serviceID,
		}),
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// Verify validates the id_token signature, audience and expiry against
// Apple's published keys and returns a normalized identity.
func (p *Provider) Verify(ctx context.Context, rawIDToken string) (*auth.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("apple id_token verification failed: %w", err)
	}

	var claims struct {
		Subject string `json:"sub"`
		Email   string `json:"email"`
	}

	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("apple id_token claims parse failed: %w", err)
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, errors.New("apple id_token missing required claims")
	}

	return &auth.Identity{
		Provider:       providerName,
		ProviderUserID: claims.Subject,
		Email:          claims.Email,
	}, nil
}
