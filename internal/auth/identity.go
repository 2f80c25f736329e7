package auth

import "context"

// Identity represents a normalized external authentication identity
// returned by a federated provider. It contains facts only, no
// decisions.
type Identity struct {
	Provider       string // e.g. "google", "apple"
	ProviderUserID string // provider-scoped unique user identifier (sub)
	Email          string // email asserted by the provider
	Name           string // display name, empty when the provider sends none
}

// Verifier is the contract every federated identity provider must
// implement. Implementations validate a provider-issued id_token
// (signature against the provider's published keys, audience, expiry)
// and return identity facts only; they must not perform user creation,
// linking, or token issuance.
type Verifier interface {
	// Name returns the provider identifier (e.g. "google", "apple").
	Name() string

	// Verify validates the raw id_token and returns a normalized
	// identity. No auth decisions are made here.
	Verify(ctx context.Context, rawIDToken string) (*Identity, error)
}

// VerifierRegistry resolves a provider name to its Verifier.
type VerifierRegistry interface {
	Get(name string) (Verifier, error)
}
